package batch

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/fpang/dreamroom/internal/generation"
	"github.com/fpang/dreamroom/internal/postprocess"
	"github.com/fpang/dreamroom/internal/prompt"
)

// DefaultWindowDelay is the courtesy pause between concurrency windows. It
// exists for the external provider's benefit, not for throughput.
const DefaultWindowDelay = time.Second

// ArtifactProcessor normalizes one raw result into a published artifact.
// Satisfied by postprocess.Processor.
type ArtifactProcessor interface {
	Process(ctx context.Context, raw *generation.Result, number int, styleLabel string) (*postprocess.Artifact, error)
}

// Orchestrator drives a batch of prompt jobs to completion.
type Orchestrator struct {
	gen         generation.Generator
	proc        ArtifactProcessor
	windowDelay time.Duration
}

// New builds an Orchestrator. windowDelay < 0 disables the inter-window
// pause; zero means DefaultWindowDelay.
func New(gen generation.Generator, proc ArtifactProcessor, windowDelay time.Duration) *Orchestrator {
	if windowDelay == 0 {
		windowDelay = DefaultWindowDelay
	}
	return &Orchestrator{gen: gen, proc: proc, windowDelay: windowDelay}
}

// Options tune one batch run.
type Options struct {
	// Concurrency is the window size. Values below 1 mean strictly
	// sequential, the default that respects provider rate limits.
	Concurrency int

	// SourceImage, when set, anchors every job of the batch to the uploaded
	// photo with the given influence.
	SourceImage     []byte
	SourceInfluence float64
}

// Run executes jobs in consecutive windows of size opts.Concurrency. Windows
// never overlap: window k+1 starts only after every member of window k
// reached a terminal state. This is deliberate backpressure on the provider,
// not a performance choice.
//
// A failing job is reported through the sink and does not cancel siblings or
// later windows. The returned artifacts cover only the jobs that succeeded,
// in sequence order; callers interpret a short result as partial success.
// Exactly one finished event is sent, after every job is terminal.
func (o *Orchestrator) Run(ctx context.Context, jobs []prompt.Job, opts Options, sink Sink) []postprocess.Artifact {
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	log.Info().
		Int("jobs", len(jobs)).
		Int("concurrency", concurrency).
		Msg("Starting generation batch")

	var (
		mu        sync.Mutex
		artifacts []postprocess.Artifact
	)

	for start := 0; start < len(jobs); start += concurrency {
		end := start + concurrency
		if end > len(jobs) {
			end = len(jobs)
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, job := range jobs[start:end] {
			job := job
			g.Go(func() error {
				if artifact := o.runJob(gctx, job, opts, sink); artifact != nil {
					mu.Lock()
					artifacts = append(artifacts, *artifact)
					mu.Unlock()
				}
				// Job failures are absorbed into events; returning an error
				// here would cancel window siblings.
				return nil
			})
		}
		// Every closure returns nil; Wait only joins the window.
		_ = g.Wait()

		if end < len(jobs) && o.windowDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(o.windowDelay):
			}
		}
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Number < artifacts[j].Number
	})

	sink.Send(Event{Type: EventFinished})

	log.Info().
		Int("succeeded", len(artifacts)).
		Int("requested", len(jobs)).
		Msg("Generation batch finished")

	return artifacts
}

// runJob takes one job through generation and post-processing, reporting
// every state transition. Returns nil when the job failed.
func (o *Orchestrator) runJob(ctx context.Context, job prompt.Job, opts Options, sink Sink) *postprocess.Artifact {
	sink.Send(Event{
		Type:           EventProgress,
		SequenceNumber: job.SequenceNumber,
		Status:         StatusGenerating,
		Percent:        Pct(0),
	})

	log.Debug().
		Int("image", job.SequenceNumber).
		Str("style", job.StyleLabel).
		Msg("Generating image")

	raw, err := o.gen.Generate(ctx, generation.Request{
		PositivePrompt:  job.PositivePrompt,
		NegativePrompt:  job.NegativePrompt,
		SourceImage:     opts.SourceImage,
		SourceInfluence: opts.SourceInfluence,
	}, func(percent int) {
		sink.Send(Event{
			Type:           EventProgress,
			SequenceNumber: job.SequenceNumber,
			Status:         StatusGenerating,
			Percent:        Pct(percent),
		})
	})
	if err != nil {
		log.Error().Err(err).Int("image", job.SequenceNumber).Msg("Image generation failed")
		sink.Send(Event{
			Type:           EventProgress,
			SequenceNumber: job.SequenceNumber,
			Status:         StatusError,
			Error:          err.Error(),
		})
		return nil
	}

	artifact, err := o.proc.Process(ctx, raw, job.SequenceNumber, job.StyleLabel)
	if err != nil {
		log.Error().Err(err).Int("image", job.SequenceNumber).Msg("Image post-processing failed")
		sink.Send(Event{
			Type:           EventProgress,
			SequenceNumber: job.SequenceNumber,
			Status:         StatusError,
			Error:          err.Error(),
		})
		return nil
	}

	sink.Send(Event{
		Type:           EventProgress,
		SequenceNumber: job.SequenceNumber,
		Status:         StatusComplete,
		Percent:        Pct(100),
	})
	sink.Send(Event{
		Type:     EventImageReady,
		Artifact: artifact,
	})
	return artifact
}
