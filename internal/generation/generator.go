// Package generation wraps the external image-generation provider behind a
// capability interface, with a deterministic mock stand-in for when no live
// provider session is configured.
package generation

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrGenerationFailed means the provider rejected or errored the job.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrGenerationTimeout means the provider completion wait exceeded its
	// deadline. The wait is the pipeline's dominant blocking point; the
	// deadline is the only structural protection against a hung provider.
	ErrGenerationTimeout = errors.New("generation timed out")

	// ErrUpstreamUnavailable means the provider session is absent or has
	// disconnected. It triggers the mock fallback at the wiring site and is
	// never surfaced to the batch orchestrator.
	ErrUpstreamUnavailable = errors.New("generation provider unavailable")
)

// Request is one generation job handed to a Generator.
type Request struct {
	PositivePrompt string
	NegativePrompt string

	// SourceImage, when set, anchors an image-to-image generation.
	// SourceInfluence in [0,1] controls how strongly: 0 ignores the source,
	// 1 is a near-copy. Ignored when SourceImage is nil.
	SourceImage     []byte
	SourceInfluence float64
}

// Result is the raw provider output: either fetchable by URL or inline bytes.
// Exactly one of the two fields is set.
type Result struct {
	URL  string
	Data []byte
}

// ProgressFunc receives intermediate completion percentages for one job.
type ProgressFunc func(percent int)

// Generator submits one job and blocks until its image is ready or the job
// has failed. Implementations report intermediate progress through the given
// callback; a nil callback is allowed.
type Generator interface {
	Generate(ctx context.Context, req Request, progress ProgressFunc) (*Result, error)
}

// Params are the fixed technical parameters sent with every provider job.
// They are deliberately constant across a batch: output geometry and quality
// must match so post-processing yields a uniform set.
type Params struct {
	ModelID         string
	Steps           int
	Guidance        float64
	Width           int
	Height          int
	NumberOfImages  int
	Scheduler       string
	TimeStepSpacing string
}

// DefaultParams returns the production parameter set: a single square
// render per job at the provider's fast-network architecture model.
func DefaultParams() Params {
	return Params{
		ModelID:         "coreml-architecturerealmix_v11_768",
		Steps:           20,
		Guidance:        1,
		Width:           512,
		Height:          512,
		NumberOfImages:  1,
		Scheduler:       "Euler",
		TimeStepSpacing: "Linear",
	}
}

// DefaultTimeout bounds the completion wait for one provider job.
const DefaultTimeout = 2 * time.Minute
