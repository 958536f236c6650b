// Package styles holds the room style catalog: the built-in room types with
// their base prompt fragments and scene variations, plus validation for
// user-authored custom styles.
package styles

import (
	"errors"
	"fmt"
)

// ErrUnknownStyle is returned when a room type id is not in the built-in
// catalog and no custom style payload was supplied.
var ErrUnknownStyle = errors.New("unknown room style")

// MinVariations is the minimum number of scene variations a style must carry.
// One generation batch consumes the first MinVariations entries in order.
const MinVariations = 3

// MaxCustomStyles is the cap on user-created custom styles. The client-side
// history store evicts the oldest entry on overflow; the server only ever
// sees one custom style per request.
const MaxCustomStyles = 5

// RoomStyle is a named visual theme: a reusable base prompt fragment plus an
// ordered list of concrete scene variations used to diversify one batch.
type RoomStyle struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	BasePrompt  string   `json:"basePrompt"`
	Variations  []string `json:"styleVariations"`
}

// Summary is the display form of a style, without prompt internals.
type Summary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Resolve looks up a built-in style by id, or validates and returns the
// supplied custom style when the id is not built-in. Pure lookup, no side
// effects.
func Resolve(roomTypeID string, custom *RoomStyle) (RoomStyle, error) {
	for _, s := range builtins {
		if s.ID == roomTypeID {
			return s, nil
		}
	}
	if custom != nil {
		if err := ValidateCustom(custom); err != nil {
			return RoomStyle{}, err
		}
		return *custom, nil
	}
	return RoomStyle{}, fmt.Errorf("%w: %s", ErrUnknownStyle, roomTypeID)
}

// ValidateCustom checks that a user-authored style is usable by the prompt
// builder. Variation count is checked again at build time against the batch
// size; this is the structural shape check.
func ValidateCustom(s *RoomStyle) error {
	if s.ID == "" || s.BasePrompt == "" {
		return fmt.Errorf("%w: custom style missing id or base prompt", ErrUnknownStyle)
	}
	return nil
}

// ListBuiltins returns display summaries for the built-in styles in catalog
// order.
func ListBuiltins() []Summary {
	out := make([]Summary, 0, len(builtins))
	for _, s := range builtins {
		out = append(out, Summary{ID: s.ID, Name: s.Name, Description: s.Description})
	}
	return out
}

// Builtins returns the full built-in styles in catalog order. The returned
// slice is shared; callers must not mutate it.
func Builtins() []RoomStyle {
	return builtins
}
