// Package tui is the terminal rendition of the question widget.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/nunnai/marketmentor/internal/widget"
)

const (
	labelSend    = "Ask"
	labelSending = "Sending..."
)

// Options configures the chat model.
type Options struct {
	Timeout time.Duration
	Logger  *zap.Logger
	// Title is shown in the header.
	Title string
}

type speaker int

const (
	speakerUser speaker = iota
	speakerMentor
	speakerNotice
)

type entry struct {
	who  speaker
	text string
}

// uiEvent carries a control or indicator change from the controller to the
// bubbletea loop.
type uiEvent int

const (
	eventBusy uiEvent = iota
	eventReady
	eventShow
	eventHide
)

// bridge implements widget.Control and widget.Indicator by forwarding to
// the event loop. The buffer holds a whole exchange so the controller never
// waits on rendering.
type bridge chan uiEvent

func (b bridge) Busy()  { b <- eventBusy }
func (b bridge) Ready() { b <- eventReady }
func (b bridge) Show()  { b <- eventShow }
func (b bridge) Hide()  { b <- eventHide }

type outcomeMsg widget.Outcome

// Model is the bubbletea model for the chat widget.
type Model struct {
	ctx     context.Context
	ctl     *widget.Controller
	events  bridge
	title   string
	entries []entry

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	renderer *glamour.TermRenderer

	busy    bool
	loading bool
	width   int
	height  int
}

// New creates a chat model sending questions through t.
func New(ctx context.Context, t widget.Transport, opts Options) Model {
	events := make(bridge, 16)

	ctl := widget.New(t,
		widget.WithTimeout(opts.Timeout),
		widget.WithControl(events),
		widget.WithIndicator(events),
		widget.WithLogger(opts.Logger),
	)

	in := textinput.New()
	in.Placeholder = "Ask about Walmart supplier processes..."
	in.Prompt = "> "
	in.CharLimit = 2000
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	title := opts.Title
	if title == "" {
		title = "Market Mentor"
	}

	return Model{
		ctx:      ctx,
		ctl:      ctl,
		events:   events,
		title:    title,
		input:    in,
		spinner:  sp,
		viewport: viewport.New(80, 20),
		width:    80,
		height:   24,
	}
}

// Init starts listening for controller events.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForEvent())
}

func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg { return <-m.events }
}

func (m Model) submit(question string) tea.Cmd {
	return func() tea.Msg {
		return outcomeMsg(m.ctl.Submit(m.ctx, question))
	}
}

// Update handles input, controller events and outcomes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			q := m.input.Value()
			if strings.TrimSpace(q) != "" {
				m.entries = append(m.entries, entry{who: speakerUser, text: strings.TrimSpace(q)})
				m.input.Reset()
				m.refresh()
			}
			return m, m.submit(q)
		}

	case uiEvent:
		cmds := []tea.Cmd{m.waitForEvent()}
		switch msg {
		case eventBusy:
			m.busy = true
			m.input.Blur()
		case eventReady:
			m.busy = false
			cmds = append(cmds, m.input.Focus())
		case eventShow:
			m.loading = true
			cmds = append(cmds, m.spinner.Tick)
		case eventHide:
			m.loading = false
		}
		return m, tea.Batch(cmds...)

	case outcomeMsg:
		m.record(widget.Outcome(msg))
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	var vcmd tea.Cmd
	m.viewport, vcmd = m.viewport.Update(msg)
	return m, tea.Batch(cmd, vcmd)
}

// record adds an outcome to the transcript. Dropped submits leave no trace.
func (m *Model) record(out widget.Outcome) {
	switch out.Kind {
	case widget.KindDropped:
		return
	case widget.KindSuccess:
		m.entries = append(m.entries, entry{who: speakerMentor, text: out.Raw})
	default:
		m.entries = append(m.entries, entry{who: speakerNotice, text: out.Message()})
	}
	m.refresh()
}

func (m *Model) resize() {
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-6, 3)
	m.input.Width = max(m.width-len(labelSending)-6, 10)
	m.renderer = nil
	m.refresh()
}

// refresh re-renders the transcript into the viewport.
func (m *Model) refresh() {
	var b strings.Builder
	for i, e := range m.entries {
		if i > 0 {
			b.WriteString("\n")
		}
		switch e.who {
		case speakerUser:
			b.WriteString(userStyle.Render("You: " + e.text))
			b.WriteString("\n")
		case speakerMentor:
			b.WriteString(mentorStyle.Render("Mentor:"))
			b.WriteString("\n")
			b.WriteString(m.renderAnswer(e.text))
		case speakerNotice:
			b.WriteString(noticeStyle.Render(e.text))
			b.WriteString("\n")
		}
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m *Model) renderAnswer(raw string) string {
	if m.renderer == nil {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(max(m.width-4, 20)),
		)
		if err != nil {
			return raw + "\n"
		}
		m.renderer = r
	}
	out, err := m.renderer.Render(raw)
	if err != nil {
		return raw + "\n"
	}
	return out
}

// View renders the widget.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.loading {
		b.WriteString(m.spinner.View() + " Thinking...")
	}
	b.WriteString("\n")

	label := labelSend
	style := buttonStyle
	if m.busy {
		label = labelSending
		style = buttonBusyStyle
	}
	b.WriteString(m.input.View())
	b.WriteString(" ")
	b.WriteString(style.Render(label))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: ask • esc: quit"))
	return b.String()
}
