package refine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/dreamroom/internal/assets"
	"github.com/fpang/dreamroom/internal/jsonutil"
	"github.com/fpang/dreamroom/internal/styles"
)

// DefaultModel is the Gemini model used for style refinement.
const DefaultModel = "gemini-2.5-flash"

// geminiStyle is the JSON shape the refinement system prompt asks the model
// to produce.
type geminiStyle struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	BasePrompt  string   `json:"basePrompt"`
	Variations  []string `json:"styleVariations"`
	Emoji       string   `json:"emoji"`
}

// Gemini refines descriptions with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini builds a Gemini refiner. model may be empty to use DefaultModel.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{client: client, model: model}, nil
}

// Refine asks Gemini for a structured style and validates the result against
// catalog requirements.
func (g *Gemini) Refine(ctx context.Context, input string) (*Style, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: assets.RefinementSystemPrompt}},
		},
	}
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: input}},
	}}

	log.Debug().
		Str("model", g.model).
		Int("input_length", len(input)).
		Msg("Starting Gemini API call for style refinement")

	callStart := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	duration := time.Since(callStart)
	if err != nil {
		log.Error().Err(err).Dur("duration", duration).Msg("Failed to refine style with Gemini")
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("received empty response from Gemini API")
	}

	responseText := resp.Text()
	log.Debug().
		Int("response_length", len(responseText)).
		Dur("duration", duration).
		Msg("Gemini API response received for style refinement")

	parsed, err := jsonutil.ParseJSON[geminiStyle](responseText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse refinement response: %w", err)
	}
	if parsed.Name == "" || parsed.BasePrompt == "" {
		return nil, fmt.Errorf("refinement response missing name or base prompt")
	}
	if len(parsed.Variations) < styles.MinVariations {
		return nil, fmt.Errorf("refinement response has %d variations, need %d",
			len(parsed.Variations), styles.MinVariations)
	}

	s := &Style{
		RoomStyle: styles.RoomStyle{
			ID:          slugify(parsed.Name),
			Name:        parsed.Name,
			Description: parsed.Description,
			BasePrompt:  parsed.BasePrompt,
			Variations:  parsed.Variations,
		},
		Emoji:   parsed.Emoji,
		Refined: true,
	}
	if s.Emoji == "" {
		s.Emoji = "🏠"
	}
	return s, nil
}
