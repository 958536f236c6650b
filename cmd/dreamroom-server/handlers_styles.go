package main

import (
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fpang/dreamroom/internal/styles"
)

// handleStyles lists the built-in catalog.
func (s *server) handleStyles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}

	builtins := styles.Builtins()
	total := 0
	for _, st := range builtins {
		total += len(st.Variations)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"roomTypes":       styles.ListBuiltins(),
			"styles":          builtins,
			"totalVariations": total,
		},
	})
}

// handleStyleRoutes dispatches /api/styles/{id} and
// /api/styles/inspiration/random.
func (s *server) handleStyleRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/styles/")
	if rest == "inspiration/random" {
		s.handleInspiration(w, r)
		return
	}
	if strings.Contains(rest, "/") || rest == "" {
		httpError(w, http.StatusNotFound, "Endpoint not found")
		return
	}

	style, err := styles.Resolve(rest, nil)
	if err != nil {
		httpError(w, http.StatusNotFound, "Room type not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"roomType":        style,
			"variations":      style.Variations,
			"totalVariations": len(style.Variations),
		},
	})
}

// handleInspiration returns random style and variation pairings.
func (s *server) handleInspiration(w http.ResponseWriter, r *http.Request) {
	count := 3
	if raw := r.URL.Query().Get("count"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			count = v
		}
	}
	if count > 6 {
		count = 6
	}

	builtins := styles.Builtins()
	type inspiration struct {
		RoomType       styles.Summary `json:"roomType"`
		Variation      string         `json:"variation"`
		CombinedPrompt string         `json:"combinedPrompt"`
	}
	out := make([]inspiration, 0, count)
	for i := 0; i < count; i++ {
		st := builtins[rand.Intn(len(builtins))]
		variation := st.Variations[rand.Intn(len(st.Variations))]
		out = append(out, inspiration{
			RoomType:       styles.Summary{ID: st.ID, Name: st.Name, Description: st.Description},
			Variation:      variation,
			CombinedPrompt: variation + ", " + st.BasePrompt,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"inspirations": out,
			"generated_at": time.Now().UTC().Format(time.RFC3339),
		},
	})
}
