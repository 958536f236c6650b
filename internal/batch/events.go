// Package batch sequences one request's generation jobs through the
// generator with a bounded concurrency window, emitting structured progress
// events and tolerating individual job failure.
package batch

import "github.com/fpang/dreamroom/internal/postprocess"

// Event kinds. The wire shape matches what the web client consumes over the
// progress stream.
const (
	EventProgress   = "progress"
	EventImageReady = "complete"
	EventWarning    = "warning"
	EventFinished   = "finished"
)

// Per-job statuses carried by progress events. For a given sequence number,
// generating events precede exactly one terminal state: complete (paired
// with an image-ready event) or error.
const (
	StatusPending    = "pending"
	StatusGenerating = "generating"
	StatusComplete   = "complete"
	StatusError      = "error"
)

// Event is one progress-stream entry. Type discriminates which of the
// optional fields are meaningful.
type Event struct {
	Type string `json:"type"`

	// progress fields. Percent is a pointer so warning, finished and
	// image-ready events omit the field entirely while a genuine 0% tick
	// still serializes.
	SequenceNumber int    `json:"imageNumber,omitempty"`
	Status         string `json:"status,omitempty"`
	Percent        *int   `json:"progress,omitempty"`
	Error          string `json:"error,omitempty"`

	// warning field
	Message string `json:"message,omitempty"`

	// image-ready field
	Artifact *postprocess.Artifact `json:"image,omitempty"`
}

// Sink receives events in emission order. Implementations must be safe for
// concurrent use: jobs inside one window report concurrently.
type Sink interface {
	Send(Event)
}

// Pct boxes a progress percentage for Event.Percent.
func Pct(v int) *int { return &v }

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

// Send calls f(ev).
func (f SinkFunc) Send(ev Event) { f(ev) }
