package batch

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fpang/dreamroom/internal/generation"
	"github.com/fpang/dreamroom/internal/postprocess"
	"github.com/fpang/dreamroom/internal/prompt"
)

// scriptedGenerator fails the sequence numbers listed in failOn and records
// the requests it saw.
type scriptedGenerator struct {
	mu       sync.Mutex
	failOn   map[int]bool
	requests []generation.Request
	seqByReq map[string]int
}

func (g *scriptedGenerator) Generate(ctx context.Context, req generation.Request, progress generation.ProgressFunc) (*generation.Result, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	seq := g.seqByReq[req.PositivePrompt]
	g.mu.Unlock()

	if progress != nil {
		progress(50)
	}
	if g.failOn[seq] {
		return nil, fmt.Errorf("%w: scripted failure", generation.ErrGenerationFailed)
	}
	return &generation.Result{Data: []byte("raw-" + req.PositivePrompt)}, nil
}

// passthroughProcessor turns a raw result into a minimal artifact without
// touching pixels or storage.
type passthroughProcessor struct{}

func (passthroughProcessor) Process(ctx context.Context, raw *generation.Result, number int, styleLabel string) (*postprocess.Artifact, error) {
	return &postprocess.Artifact{
		ID:     fmt.Sprintf("artifact-%d", number),
		Number: number,
		Style:  styleLabel,
	}, nil
}

// collectSink records events in emission order.
type collectSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *collectSink) Send(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func threeJobs() ([]prompt.Job, map[string]int) {
	jobs := make([]prompt.Job, 3)
	seqByReq := make(map[string]int)
	for i := range jobs {
		n := i + 1
		pp := fmt.Sprintf("prompt %d", n)
		jobs[i] = prompt.Job{
			SequenceNumber: n,
			PositivePrompt: pp,
			NegativePrompt: "blurry",
			StyleLabel:     "Cozy Cabin Retreat",
		}
		seqByReq[pp] = n
	}
	return jobs, seqByReq
}

func TestRunPartialFailure(t *testing.T) {
	jobs, seqByReq := threeJobs()
	gen := &scriptedGenerator{failOn: map[int]bool{2: true}, seqByReq: seqByReq}
	sink := &collectSink{}

	o := New(gen, passthroughProcessor{}, -1)
	artifacts := o.Run(context.Background(), jobs, Options{Concurrency: 1}, sink)

	if len(artifacts) != 2 {
		t.Fatalf("artifacts = %d, want 2", len(artifacts))
	}
	if artifacts[0].Number != 1 || artifacts[1].Number != 3 {
		t.Fatalf("artifact numbers = %d, %d, want 1, 3", artifacts[0].Number, artifacts[1].Number)
	}

	var errorEvents, finishedEvents int
	finishedLast := false
	for i, ev := range sink.events {
		switch {
		case ev.Type == EventProgress && ev.Status == StatusError:
			errorEvents++
			if ev.SequenceNumber != 2 {
				t.Errorf("error event for image %d, want 2", ev.SequenceNumber)
			}
			if ev.Error == "" {
				t.Error("error event carries no message")
			}
		case ev.Type == EventFinished:
			finishedEvents++
			finishedLast = i == len(sink.events)-1
		}
	}
	if errorEvents != 1 {
		t.Errorf("error events = %d, want 1", errorEvents)
	}
	if finishedEvents != 1 {
		t.Errorf("finished events = %d, want 1", finishedEvents)
	}
	if !finishedLast {
		t.Error("finished event was not the last event")
	}
}

func TestRunEventOrderingPerJob(t *testing.T) {
	jobs, seqByReq := threeJobs()
	gen := &scriptedGenerator{seqByReq: seqByReq}
	sink := &collectSink{}

	o := New(gen, passthroughProcessor{}, -1)
	o.Run(context.Background(), jobs, Options{Concurrency: 1}, sink)

	// Sequential run: every job shows generating 0% before its completion,
	// and each complete status is immediately followed by its image event.
	for n := 1; n <= 3; n++ {
		var sawStart, sawComplete, sawImage bool
		for _, ev := range sink.events {
			switch {
			case ev.Type == EventProgress && ev.SequenceNumber == n && ev.Status == StatusGenerating && ev.Percent != nil && *ev.Percent == 0:
				sawStart = true
			case ev.Type == EventProgress && ev.SequenceNumber == n && ev.Status == StatusComplete:
				if !sawStart {
					t.Errorf("image %d completed before it started", n)
				}
				sawComplete = true
			case ev.Type == EventImageReady && ev.Artifact != nil && ev.Artifact.Number == n:
				if !sawComplete {
					t.Errorf("image %d delivered before complete status", n)
				}
				sawImage = true
			}
		}
		if !sawImage {
			t.Errorf("no image event for image %d", n)
		}
	}
}

func TestRunForwardsSourceImage(t *testing.T) {
	jobs, seqByReq := threeJobs()
	gen := &scriptedGenerator{seqByReq: seqByReq}

	o := New(gen, passthroughProcessor{}, -1)
	source := []byte{0xff, 0xd8, 0xff}
	o.Run(context.Background(), jobs, Options{
		Concurrency:     3,
		SourceImage:     source,
		SourceInfluence: 0.6,
	}, &collectSink{})

	if len(gen.requests) != 3 {
		t.Fatalf("generator saw %d requests, want 3", len(gen.requests))
	}
	for _, req := range gen.requests {
		if string(req.SourceImage) != string(source) {
			t.Error("request missing source image")
		}
		if req.SourceInfluence != 0.6 {
			t.Errorf("source influence = %v, want 0.6", req.SourceInfluence)
		}
	}
}

func TestRunWindowDelayBetweenWindows(t *testing.T) {
	jobs, seqByReq := threeJobs()
	gen := &scriptedGenerator{seqByReq: seqByReq}

	delay := 30 * time.Millisecond
	o := New(gen, passthroughProcessor{}, delay)

	start := time.Now()
	o.Run(context.Background(), jobs, Options{Concurrency: 1}, &collectSink{})
	elapsed := time.Since(start)

	// Three sequential windows means two inter-window pauses.
	if elapsed < 2*delay {
		t.Errorf("run took %v, want at least %v of window delay", elapsed, 2*delay)
	}
}
