// Package assets provides embedded static assets for the application.
//
// Prompt templates are stored as text files under prompts/ and embedded at
// compile time, keeping prompt wording out of Go source.
package assets

import (
	_ "embed"
)

// RefinementSystemPrompt instructs the model to turn a free-text room idea
// into a structured custom style JSON object.
//
//go:embed prompts/refinement-system.txt
var RefinementSystemPrompt string
