package main

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
)

// zipMethodZstd is the ZIP compression method ID for Zstandard (APPNOTE
// 6.3.7). Registered in init() with zstd level 12, the highest level
// klauspost/compress supports.
const zipMethodZstd uint16 = 93

func init() {
	zip.RegisterCompressor(zipMethodZstd, func(w io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(12)))
	})
}

type downloadRequest struct {
	Filenames []string `json:"filenames"`
}

// handleDownloadZip bundles the requested artifacts into one ZIP. Artifacts
// are JPEGs, so zstd is about archive convenience, not ratio.
func (s *server) handleDownloadZip(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Filenames) == 0 {
		httpError(w, http.StatusBadRequest, "filenames are required")
		return
	}
	for _, name := range req.Filenames {
		if name == "" || containsPathTraversal(name) {
			httpError(w, http.StatusBadRequest, "invalid filename")
			return
		}
	}

	zipName := fmt.Sprintf("dreamroom-%s.zip", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", zipName))

	zw := zip.NewWriter(w)
	written := 0
	for _, name := range req.Filenames {
		data, err := s.store.Read(r.Context(), name)
		if err != nil {
			log.Warn().Err(err).Str("filename", name).Msg("Artifact missing, skipping in ZIP")
			continue
		}
		hdr := &zip.FileHeader{
			Name:     name,
			Method:   zipMethodZstd,
			Modified: time.Now(),
		}
		f, err := zw.CreateHeader(hdr)
		if err != nil {
			log.Error().Err(err).Str("filename", name).Msg("Failed to add ZIP entry")
			break
		}
		if _, err := f.Write(data); err != nil {
			log.Error().Err(err).Str("filename", name).Msg("Failed to write ZIP entry")
			break
		}
		written++
	}
	if err := zw.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to finalize ZIP")
		return
	}

	log.Info().Int("files", written).Str("zip", zipName).Msg("Artifact ZIP served")
}

// handleHealth is the liveness probe.
func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
