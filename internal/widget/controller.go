// Package widget drives the question box: it owns the single in-flight
// request, enforces the response deadline, classifies the result and keeps the
// surrounding UI controls consistent no matter how the request ends.
package widget

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nunnai/marketmentor/internal/format"
)

// DefaultTimeout is how long a request may run before it is aborted.
const DefaultTimeout = 60 * time.Second

var errTimedOut = errors.New("request timed out")

// Transport performs the network exchange for one question and returns the
// raw answer text. Non-2xx responses must be reported as *StatusError.
type Transport interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Control is the triggering control, e.g. a submit button.
type Control interface {
	// Busy disables the control and shows the busy label.
	Busy()
	// Ready re-enables the control and restores its label.
	Ready()
}

// Indicator is a loading indicator shown while a request is in flight.
type Indicator interface {
	Show()
	Hide()
}

// RenderFunc receives every outcome except KindDropped.
type RenderFunc func(Outcome)

type nopControl struct{}

func (nopControl) Busy()  {}
func (nopControl) Ready() {}

type nopIndicator struct{}

func (nopIndicator) Show() {}
func (nopIndicator) Hide() {}

// Option configures a Controller.
type Option func(*Controller)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithControl attaches the triggering control.
func WithControl(ctrl Control) Option {
	return func(c *Controller) { c.control = ctrl }
}

// WithIndicator attaches the loading indicator.
func WithIndicator(ind Indicator) Option {
	return func(c *Controller) { c.indicator = ind }
}

// WithRenderer sets the callback that displays outcomes.
func WithRenderer(fn RenderFunc) Option {
	return func(c *Controller) { c.render = fn }
}

// WithFooter replaces the footer appended to successful answers.
func WithFooter(f format.Footer) Option {
	return func(c *Controller) { c.footer = f }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// Controller submits questions one at a time. A Submit that arrives while
// another is in flight is dropped, not queued.
type Controller struct {
	transport Transport
	timeout   time.Duration
	control   Control
	indicator Indicator
	render    RenderFunc
	footer    format.Footer
	logger    *zap.Logger

	inFlight atomic.Bool
}

// New creates a Controller that sends questions through t.
func New(t Transport, opts ...Option) *Controller {
	c := &Controller{
		transport: t,
		timeout:   DefaultTimeout,
		control:   nopControl{},
		indicator: nopIndicator{},
		footer:    format.DefaultFooter,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// InFlight reports whether a request is currently running.
func (c *Controller) InFlight() bool {
	return c.inFlight.Load()
}

// Submit sends question and blocks until the exchange finishes, the deadline
// fires or ctx is cancelled. The outcome is passed to the renderer before it
// is returned.
func (c *Controller) Submit(ctx context.Context, question string) Outcome {
	question = strings.TrimSpace(question)
	if question == "" {
		return c.deliver(Outcome{Kind: KindEmptyInput})
	}

	if !c.inFlight.CompareAndSwap(false, true) {
		c.logger.Info("request already in progress, dropping submit")
		return Outcome{Kind: KindDropped}
	}

	return c.deliver(c.run(ctx, question))
}

// run owns the in-flight window. Its deferred cleanup runs on every path.
func (c *Controller) run(ctx context.Context, question string) Outcome {
	c.control.Busy()
	c.indicator.Show()
	defer func() {
		c.inFlight.Store(false)
		c.control.Ready()
		c.indicator.Hide()
	}()

	id := uuid.NewString()
	log := c.logger.With(zap.String("exchange_id", id))

	reqCtx, cancel := context.WithTimeoutCause(ctx, c.timeout, errTimedOut)
	defer cancel()

	log.Debug("sending question", zap.Int("question_len", len(question)))
	start := time.Now()
	answer, err := c.transport.Ask(reqCtx, question)
	elapsed := time.Since(start)

	out := classify(reqCtx, err)
	out.ID = id
	if out.Kind == KindSuccess {
		out.Raw = answer
		out.HTML = c.footer.Append(format.Format(answer))
		log.Info("answer received", zap.Duration("elapsed", elapsed), zap.Int("answer_len", len(answer)))
		return out
	}

	log.Warn("question failed",
		zap.Stringer("outcome", out.Kind),
		zap.Int("status", out.Status),
		zap.Duration("elapsed", elapsed),
		zap.Error(err),
	)
	return out
}

func classify(reqCtx context.Context, err error) Outcome {
	if err == nil {
		return Outcome{Kind: KindSuccess}
	}

	var se *StatusError
	switch {
	case errors.As(err, &se):
		return Outcome{Kind: KindHTTPError, Status: se.Code, Err: err}
	case errors.Is(context.Cause(reqCtx), errTimedOut):
		return Outcome{Kind: KindTimeout, Err: err}
	default:
		return Outcome{Kind: KindNetworkError, Err: err}
	}
}

func (c *Controller) deliver(out Outcome) Outcome {
	if c.render != nil {
		c.render(out)
	}
	return out
}
