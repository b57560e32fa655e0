// Package history keeps a log of the questions the backend answered.
package history

import "time"

// Channel is the surface a question arrived on.
type Channel string

const (
	ChannelAPI    Channel = "api"
	ChannelForm   Channel = "form"
	ChannelSocket Channel = "socket"
)

// RouteError marks a question the pipeline returned an error for.
const RouteError = "error"

// Entry is one answered (or failed) question.
type Entry struct {
	ID        string        `json:"id"`
	AskedAt   time.Time     `json:"asked_at"`
	RequestID string        `json:"request_id,omitempty"`
	Channel   Channel       `json:"channel"`
	Question  string        `json:"question"`
	Route     string        `json:"route"`
	Failed    bool          `json:"failed"`
	AnswerLen int           `json:"answer_len"`
	Duration  time.Duration `json:"duration_ns"`
	Error     string        `json:"error,omitempty"`
}
