package widget

import "fmt"

// Kind classifies how a submitted question ended.
type Kind int

const (
	// KindSuccess carries a formatted answer.
	KindSuccess Kind = iota
	// KindEmptyInput means the question was blank after trimming; nothing was sent.
	KindEmptyInput
	// KindHTTPError means the endpoint answered with a non-2xx status.
	KindHTTPError
	// KindTimeout means the request deadline fired before a response arrived.
	KindTimeout
	// KindNetworkError covers every other transport or decoding failure.
	KindNetworkError
	// KindDropped means another request was already in flight. Nothing was
	// sent and nothing should be rendered.
	KindDropped
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindEmptyInput:
		return "empty_input"
	case KindHTTPError:
		return "http_error"
	case KindTimeout:
		return "timeout"
	case KindNetworkError:
		return "network_error"
	case KindDropped:
		return "dropped"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// User-facing copy for the non-success kinds.
const (
	MessageEmptyInput = "Please enter a question."
	MessageTimeout    = "Request timed out. Please try again."
	MessageFailure    = "An error occurred. Please try again later."
)

// Outcome is the result of one Submit call. It is produced per call and not
// retained by the Controller.
type Outcome struct {
	Kind Kind
	// ID identifies the exchange in logs. Empty when nothing was sent.
	ID string
	// HTML is the formatted answer with the footer appended (KindSuccess).
	HTML string
	// Raw is the unformatted answer text (KindSuccess).
	Raw string
	// Status is the HTTP status for KindHTTPError.
	Status int
	// Err is the underlying failure for error kinds.
	Err error
}

// Message returns the text the UI shows for a non-success outcome, or "" for
// success and dropped outcomes.
func (o Outcome) Message() string {
	switch o.Kind {
	case KindEmptyInput:
		return MessageEmptyInput
	case KindTimeout:
		return MessageTimeout
	case KindHTTPError, KindNetworkError:
		return MessageFailure
	default:
		return ""
	}
}

// StatusError reports a non-2xx response from the answer endpoint.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error: %d", e.Code)
}
