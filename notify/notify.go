// Package notify is the outcome-message sink: human-readable success and
// error lines handed to whatever renders them. The registry never depends on
// delivery, and a sink must never mutate lending state.
package notify

import "log"

type Sink interface {
	Success(msg string)
	Failure(msg string)
}

// LogSink writes outcomes to the process log. The default until a real
// frontend channel is wired in.
type LogSink struct{}

func NewLogSink() *LogSink { return &LogSink{} }

func (LogSink) Success(msg string) { log.Printf("[notify] %s", msg) }
func (LogSink) Failure(msg string) { log.Printf("[notify] error: %s", msg) }

// Discard drops every message; used in tests.
type Discard struct{}

func (Discard) Success(string) {}
func (Discard) Failure(string) {}
