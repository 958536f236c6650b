package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/fpang/dreamroom/internal/batch"
	"github.com/fpang/dreamroom/internal/prompt"
	"github.com/fpang/dreamroom/internal/styles"
	"github.com/fpang/dreamroom/internal/vision"
)

// maxUploadBytes caps the source photo size.
const maxUploadBytes = 10 << 20

// defaultSourceInfluence is how strongly the uploaded photo anchors
// generation when the client does not say.
const defaultSourceInfluence = 0.6

var allowedUploadTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// sseSink streams batch events as Server-Sent Events. Safe for concurrent
// Send calls from jobs inside one window.
type sseSink struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

func (s *sseSink) Send(ev batch.Event) {
	s.sendJSON(ev)
}

func (s *sseSink) sendJSON(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal progress event")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "data: %s\n\n", payload)
	s.flusher.Flush()
}

// handleGenerate runs one generation batch, streaming progress as SSE.
// Validation failures are reported as plain JSON errors before the stream
// starts; anything after that arrives as stream events.
func (s *server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	roomType := r.FormValue("roomType")
	if roomType == "" {
		httpError(w, http.StatusBadRequest, "Room type is required")
		return
	}

	var custom *styles.RoomStyle
	if raw := r.FormValue("customRoomType"); raw != "" {
		custom = &styles.RoomStyle{}
		if err := json.Unmarshal([]byte(raw), custom); err != nil {
			httpError(w, http.StatusBadRequest, "invalid customRoomType")
			return
		}
	}

	var customizations *prompt.Customizations
	if raw := r.FormValue("customPrompts"); raw != "" {
		customizations = &prompt.Customizations{}
		if err := json.Unmarshal([]byte(raw), customizations); err != nil {
			httpError(w, http.StatusBadRequest, "invalid customPrompts")
			return
		}
	}

	influence := defaultSourceInfluence
	if raw := r.FormValue("generationStrength"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 1 {
			httpError(w, http.StatusBadRequest, "generationStrength must be between 0 and 1")
			return
		}
		influence = v
	}

	sourceImage, uploadWarning := readUpload(r)

	style, err := styles.Resolve(roomType, custom)
	if err != nil {
		if errors.Is(err, styles.ErrUnknownStyle) {
			httpError(w, http.StatusBadRequest, err.Error())
			return
		}
		httpError(w, http.StatusInternalServerError, "failed to resolve style")
		return
	}

	// Features only bias prompt wording, so extraction runs before the
	// stream opens and never blocks the batch.
	var features *vision.Features
	if len(sourceImage) > 0 {
		features = vision.Extract(sourceImage)
	}

	jobs, err := prompt.Build(style, features, customizations)
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httpError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sink := &sseSink{w: w, flusher: flusher}
	if uploadWarning != "" {
		sink.Send(batch.Event{Type: batch.EventWarning, Message: uploadWarning})
	}
	if features != nil {
		sink.sendJSON(map[string]any{"type": "image_processed", "features": features})
	}

	log.Info().
		Str("roomType", style.ID).
		Bool("sourceImage", len(sourceImage) > 0).
		Int("jobs", len(jobs)).
		Msg("Starting generation request")

	s.orch.Run(r.Context(), jobs, batch.Options{
		Concurrency:     s.cfg.Generation.Concurrency,
		SourceImage:     sourceImage,
		SourceInfluence: influence,
	}, sink)
}

// readUpload returns the uploaded photo bytes, or a warning message when a
// photo was sent but unusable. A missing photo is not a warning.
func readUpload(r *http.Request) ([]byte, string) {
	file, header, err := r.FormFile("userImage")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, ""
		}
		return nil, "Could not read uploaded image, proceeding without it"
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); ct != "" && !allowedUploadTypes[ct] {
		return nil, "Invalid file type. Only JPEG, PNG, and WebP are allowed."
	}

	data, err := io.ReadAll(file)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read uploaded image")
		return nil, "Could not read uploaded image, proceeding without it"
	}
	return data, ""
}
