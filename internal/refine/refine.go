// Package refine turns free-text room descriptions into structured custom
// styles. An AI-backed refiner produces the style when a Gemini API key is
// configured; a deterministic keyword heuristic covers the rest. The
// heuristic path is a contract, not a degradation: refinement never fails
// for lack of an upstream model.
package refine

import (
	"context"
	"errors"
	"strings"

	"github.com/fpang/dreamroom/internal/styles"
)

// ErrEmptyInput is returned when the description to refine is blank.
var ErrEmptyInput = errors.New("refinement input is empty")

// Style is a refined custom room style: a usable catalog entry plus display
// metadata for the client's custom-style list.
type Style struct {
	styles.RoomStyle

	Emoji   string `json:"emoji"`
	Refined bool   `json:"isRefined"`
}

// Refiner produces a structured style from a free-text room description.
type Refiner interface {
	Refine(ctx context.Context, input string) (*Style, error)
}

// slugify derives a style id from a display name: lowercase, hyphenated,
// alphanumerics only.
func slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
