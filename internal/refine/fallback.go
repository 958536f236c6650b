package refine

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Fallback routes refinement to the AI refiner when one is configured and
// drops to the heuristic when it is absent or errors. Heuristic errors are
// shape errors on the input itself (empty text) and are returned as-is.
type Fallback struct {
	ai        Refiner
	heuristic Refiner
}

// NewFallback builds the two-variant refiner. ai may be nil when no API key
// is configured.
func NewFallback(ai Refiner) *Fallback {
	return &Fallback{ai: ai, heuristic: Heuristic{}}
}

// Refine implements Refiner.
func (f *Fallback) Refine(ctx context.Context, input string) (*Style, error) {
	if f.ai == nil {
		return f.heuristic.Refine(ctx, input)
	}
	s, err := f.ai.Refine(ctx, input)
	if err != nil {
		log.Warn().Err(err).Msg("AI refinement failed, using heuristic refinement")
		return f.heuristic.Refine(ctx, input)
	}
	return s, nil
}
