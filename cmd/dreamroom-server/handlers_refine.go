package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fpang/dreamroom/internal/refine"
)

type refineRequest struct {
	UserInput string `json:"userInput"`
}

// handleRefinePrompt turns a free-text room idea into a structured custom
// style.
func (s *server) handleRefinePrompt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req refineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.UserInput) == "" {
		httpError(w, http.StatusBadRequest, "User input is required")
		return
	}

	style, err := s.refiner.Refine(r.Context(), req.UserInput)
	if err != nil {
		if errors.Is(err, refine.ErrEmptyInput) {
			httpError(w, http.StatusBadRequest, "User input is required")
			return
		}
		log.Error().Err(err).Msg("Prompt refinement failed")
		httpError(w, http.StatusInternalServerError, "Failed to refine prompt")
		return
	}

	respondJSON(w, http.StatusOK, style)
}
