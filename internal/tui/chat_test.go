package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nunnai/marketmentor/internal/widget"
)

type fixedTransport struct {
	answer string
	err    error
	calls  int
}

func (f *fixedTransport) Ask(context.Context, string) (string, error) {
	f.calls++
	return f.answer, f.err
}

// drain applies every queued controller event to the model.
func drain(t *testing.T, m Model) Model {
	t.Helper()
	for {
		select {
		case ev := <-m.events:
			next, _ := m.Update(ev)
			m = next.(Model)
		default:
			return m
		}
	}
}

func typeAndSubmit(t *testing.T, m Model, text string) (Model, tea.Msg) {
	t.Helper()
	m.input.SetValue(text)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.NotNil(t, cmd)
	return m, cmd()
}

func TestChatSuccess(t *testing.T) {
	tr := &fixedTransport{answer: "Use **EDI** for invoices."}
	m := New(context.Background(), tr, Options{})

	m, msg := typeAndSubmit(t, m, "  How do I invoice?  ")
	assert.Equal(t, "", m.input.Value())
	require.Len(t, m.entries, 1)
	assert.Equal(t, entry{who: speakerUser, text: "How do I invoice?"}, m.entries[0])

	out, ok := msg.(outcomeMsg)
	require.True(t, ok)
	assert.Equal(t, widget.KindSuccess, out.Kind)

	m = drain(t, m)
	assert.False(t, m.busy)
	assert.False(t, m.loading)

	next, _ := m.Update(msg)
	m = next.(Model)
	require.Len(t, m.entries, 2)
	assert.Equal(t, speakerMentor, m.entries[1].who)
	assert.Equal(t, "Use **EDI** for invoices.", m.entries[1].text)
	assert.Equal(t, 1, tr.calls)
	assert.Contains(t, m.View(), labelSend)
}

func TestChatEmptyInput(t *testing.T) {
	tr := &fixedTransport{answer: "unused"}
	m := New(context.Background(), tr, Options{})

	m, msg := typeAndSubmit(t, m, "   ")
	next, _ := m.Update(msg)
	m = next.(Model)

	assert.Zero(t, tr.calls)
	require.Len(t, m.entries, 1)
	assert.Equal(t, entry{who: speakerNotice, text: widget.MessageEmptyInput}, m.entries[0])
	assert.Empty(t, m.events, "empty input must not touch the controls")
}

func TestChatFailure(t *testing.T) {
	tr := &fixedTransport{err: errors.New("dial tcp: refused")}
	m := New(context.Background(), tr, Options{})

	m, msg := typeAndSubmit(t, m, "walmart?")
	m = drain(t, m)
	next, _ := m.Update(msg)
	m = next.(Model)

	require.Len(t, m.entries, 2)
	assert.Equal(t, entry{who: speakerNotice, text: widget.MessageFailure}, m.entries[1])
}

func TestChatBusyState(t *testing.T) {
	m := New(context.Background(), &fixedTransport{}, Options{})

	next, _ := m.Update(eventBusy)
	m = next.(Model)
	next, _ = m.Update(eventShow)
	m = next.(Model)
	assert.True(t, m.busy)
	assert.True(t, m.loading)
	assert.Contains(t, m.View(), labelSending)
	assert.Contains(t, m.View(), "Thinking...")

	// Enter is ignored while a question is in flight.
	m.input.SetValue("second")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.Equal(t, "second", m.input.Value())

	next, _ = m.Update(eventReady)
	m = next.(Model)
	next, _ = m.Update(eventHide)
	m = next.(Model)
	assert.False(t, m.busy)
	assert.False(t, m.loading)
}

func TestChatDroppedLeavesNoTrace(t *testing.T) {
	m := New(context.Background(), &fixedTransport{}, Options{})
	next, _ := m.Update(outcomeMsg(widget.Outcome{Kind: widget.KindDropped}))
	m = next.(Model)
	assert.Empty(t, m.entries)
}

func TestChatQuit(t *testing.T) {
	m := New(context.Background(), &fixedTransport{}, Options{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
