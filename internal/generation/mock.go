package generation

// mock.go is the deterministic stand-in used when no live provider session
// is configured. It is a design requirement, not a stopgap: the orchestration
// and post-processing pipeline can be exercised end to end without external
// dependencies, and callers cannot distinguish mock from real jobs except by
// output content.

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"time"

	"github.com/rs/zerolog/log"
)

// mockRamp is the simulated progress sequence, reported through the same
// progress channel real jobs use.
var mockRamp = []int{20, 40, 60, 80, 100}

// DefaultMockStepDelay paces the simulated ramp so the UI experience
// resembles a real generation.
const DefaultMockStepDelay = 500 * time.Millisecond

// MockGenerator synthesizes a placeholder image derived deterministically
// from the prompt text.
type MockGenerator struct {
	// StepDelay is the pause between simulated progress steps. Zero means
	// DefaultMockStepDelay; tests use a negative value to disable pacing.
	StepDelay time.Duration

	// Size is the placeholder edge length. Zero means 512, matching the
	// provider's output geometry.
	Size int
}

// Generate walks the simulated ramp and returns the placeholder bytes.
func (m *MockGenerator) Generate(ctx context.Context, req Request, progress ProgressFunc) (*Result, error) {
	delay := m.StepDelay
	if delay == 0 {
		delay = DefaultMockStepDelay
	}

	log.Info().
		Str("prompt", truncateString(req.PositivePrompt, 50)).
		Msg("Mock generating image (no provider session)")

	for _, pct := range mockRamp {
		if progress != nil {
			progress(pct)
		}
		if delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	data, err := m.render(req.PositivePrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: render placeholder: %v", ErrGenerationFailed, err)
	}
	return &Result{Data: data}, nil
}

// render paints a vertically shaded field in a color hashed from the prompt,
// so distinct prompts yield visibly distinct placeholders while identical
// prompts yield identical bytes.
func (m *MockGenerator) render(prompt string) ([]byte, error) {
	size := m.Size
	if size == 0 {
		size = 512
	}

	h := fnv.New32a()
	h.Write([]byte(prompt))
	sum := h.Sum32()
	base := color.RGBA{
		R: uint8(sum >> 16),
		G: uint8(sum >> 8),
		B: uint8(sum),
		A: 255,
	}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		shade := uint8(40 * y / size)
		c := color.RGBA{
			R: clampSub(base.R, shade),
			G: clampSub(base.G, shade),
			B: clampSub(base.B, shade),
			A: 255,
		}
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func clampSub(v, d uint8) uint8 {
	if v < d {
		return 0
	}
	return v - d
}
