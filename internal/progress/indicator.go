// Package progress provides loading indicators for the terminal clients.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Indicator is shown while a question is in flight.
type Indicator interface {
	Show()
	Hide()
}

// NewIndicator returns a line-based indicator when running in CI, and an
// animated spinner otherwise. Output goes to w (stderr when nil).
func NewIndicator(w io.Writer, label string) Indicator {
	if w == nil {
		w = os.Stderr
	}
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &LineIndicator{w: w, label: label}
	}
	return &Spinner{w: w, label: label, interval: 100 * time.Millisecond}
}

// Spinner animates an indeterminate progress bar until hidden.
type Spinner struct {
	w        io.Writer
	label    string
	interval time.Duration

	mu   sync.Mutex
	bar  *progressbar.ProgressBar
	stop chan struct{}
	done chan struct{}
}

func (s *Spinner) Show() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bar != nil {
		return
	}

	s.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(s.w),
		progressbar.OptionSetDescription(s.label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.spin(s.bar, s.stop, s.done)
}

func (s *Spinner) spin(bar *progressbar.ProgressBar, stop, done chan struct{}) {
	defer close(done)
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			_ = bar.Add(1)
		}
	}
}

func (s *Spinner) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bar == nil {
		return
	}
	close(s.stop)
	<-s.done
	_ = s.bar.Finish()
	s.bar = nil
}

// LineIndicator prints start and finish lines, suitable for CI logs.
type LineIndicator struct {
	w     io.Writer
	label string
	start time.Time
}

func (l *LineIndicator) Show() {
	l.start = time.Now()
	fmt.Fprintf(l.w, "%s...\n", l.label)
}

func (l *LineIndicator) Hide() {
	fmt.Fprintf(l.w, "done in %s\n", time.Since(l.start).Round(time.Millisecond))
}
