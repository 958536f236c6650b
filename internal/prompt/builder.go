// Package prompt builds the fully-formed generation prompts for one batch.
//
// Building is deterministic: the same style, features, and customizations
// always produce byte-identical prompts. Variety between the images of a
// batch comes from the catalog variations plus a fixed descriptor rotation,
// not from randomness.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fpang/dreamroom/internal/styles"
	"github.com/fpang/dreamroom/internal/vision"
)

// ErrInsufficientVariations is returned when a style carries fewer scene
// variations than the batch needs. This is a structural misconfiguration:
// no valid job list can be built, so the whole batch must abort.
var ErrInsufficientVariations = errors.New("insufficient style variations")

// BatchSize is the fixed number of images produced for one request.
const BatchSize = 3

// NegativePrompt is assigned to every job. It discourages render artifacts,
// structural drift (added or missing windows and walls), watermarks, and
// extraneous people or text.
const NegativePrompt = "blurry, low quality, bad quality, jpeg artifacts, distorted, cluttered, messy, " +
	"added windows, missing windows, missing walls, watermark, people, humans, text"

// qualityTail is appended to every positive prompt. Identical across jobs on
// purpose: it anchors the provider to a consistent output register.
var qualityTail = []string{
	"high quality bedroom interior design",
	"comfortable sleeping area prominently featured",
	"professional interior photography lighting",
	"detailed textures and materials",
	"dreamy and inviting atmosphere",
	"8k uhd, photorealistic, architectural photography",
	"perfect composition, rule of thirds",
	"soft natural lighting, warm color temperature",
}

// Descriptor triples rotated across the batch by index so the three outputs
// are not trivially identical in framing language.
var (
	varietyLighting = []string{"golden hour", "natural daylight", "warm"}
	varietyView     = []string{"interior view", "panoramic view", "wide angle view"}
	varietyMood     = []string{"cozy", "serene", "luxurious"}
)

// Customizations are the free-text fields a user may add to a request.
// Absent fields contribute nothing to the prompts.
type Customizations struct {
	ColorPalette      string `json:"colorPalette,omitempty"`
	Mood              string `json:"mood,omitempty"`
	AdditionalDetails string `json:"additionalDetails,omitempty"`
}

// Job is one fully-formed generation prompt. Immutable once constructed.
// SequenceNumber is the stable ordering key for progress reporting and
// artifact numbering; it is never reused within a batch.
type Job struct {
	SequenceNumber int
	PositivePrompt string
	NegativePrompt string
	StyleLabel     string
	SourceID       string
}

// Build combines a style's first BatchSize variations with optional photo
// features and customizations into exactly BatchSize jobs.
func Build(style styles.RoomStyle, features *vision.Features, custom *Customizations) ([]Job, error) {
	if len(style.Variations) < BatchSize {
		return nil, fmt.Errorf("%w: style %q has %d, need %d",
			ErrInsufficientVariations, style.ID, len(style.Variations), BatchSize)
	}

	jobs := make([]Job, 0, BatchSize)
	for i, variation := range style.Variations[:BatchSize] {
		var b strings.Builder
		b.WriteString(variation)
		b.WriteString(", ")
		b.WriteString(style.BasePrompt)

		if features != nil {
			if len(features.DominantColors) > 0 {
				fmt.Fprintf(&b, ", incorporating %s color tones", strings.Join(features.DominantColors, " and "))
			}
			if features.Lighting != "" {
				fmt.Fprintf(&b, ", %s lighting atmosphere", features.Lighting)
			}
			if features.Style != "" {
				fmt.Fprintf(&b, ", maintaining %s aesthetic elements", features.Style)
			}
		}

		if custom != nil {
			if custom.ColorPalette != "" {
				fmt.Fprintf(&b, ", %s color scheme", custom.ColorPalette)
			}
			if custom.Mood != "" {
				fmt.Fprintf(&b, ", %s mood and atmosphere", custom.Mood)
			}
			if custom.AdditionalDetails != "" {
				fmt.Fprintf(&b, ", %s", custom.AdditionalDetails)
			}
		}

		for _, clause := range qualityTail {
			b.WriteString(", ")
			b.WriteString(clause)
		}

		// Variety rotation: index-keyed, so still deterministic.
		fmt.Fprintf(&b, ", %s lighting", varietyLighting[i%len(varietyLighting)])
		fmt.Fprintf(&b, ", %s", varietyView[i%len(varietyView)])
		fmt.Fprintf(&b, ", %s ambiance", varietyMood[i%len(varietyMood)])

		jobs = append(jobs, Job{
			SequenceNumber: i + 1,
			PositivePrompt: b.String(),
			NegativePrompt: NegativePrompt,
			StyleLabel:     variation,
			SourceID:       fmt.Sprintf("%s-%d", style.ID, i+1),
		})
	}

	log.Debug().
		Str("style", style.ID).
		Int("jobs", len(jobs)).
		Bool("has_features", features != nil).
		Bool("has_customizations", custom != nil).
		Msg("Prompt batch built")

	return jobs, nil
}
