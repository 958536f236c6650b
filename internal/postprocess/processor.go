// Package postprocess turns raw generated images into canonical artifacts:
// fixed square geometry, numbered badge overlay, durable storage, public
// URLs.
package postprocess

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/fpang/dreamroom/internal/generation"
	"github.com/fpang/dreamroom/internal/storage"
)

// ErrProcessingFailed means a raw image could not be normalized. Unlike
// feature extraction this is not swallowed: a job whose output cannot be
// normalized is a failed job.
var ErrProcessingFailed = errors.New("image processing failed")

// CanonicalSize is the fixed square edge of every published artifact.
const CanonicalSize = 1080

// jpegQuality is the fixed re-encode quality.
const jpegQuality = 95

// Artifact is the final, square, badge-overlaid, durably stored image
// returned to the client. Immutable once created; the backing file is
// reclaimed by the storage sweep.
type Artifact struct {
	ID          string `json:"id"`
	Number      int    `json:"number"`
	URL         string `json:"url"`
	Style       string `json:"style"`
	DownloadURL string `json:"downloadUrl"`
	ShareURL    string `json:"shareUrl"`
	StoragePath string `json:"filename"`
}

// Processor normalizes raw generation output and persists it.
type Processor struct {
	store      storage.BlobStore
	httpClient *http.Client
}

// NewProcessor builds a Processor over the given blob store.
func NewProcessor(store storage.BlobStore) *Processor {
	return &Processor{
		store: store,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Process fetches (if needed), squares, badges, and persists one raw result.
// number becomes the badge digit and part of the artifact filename.
func (p *Processor) Process(ctx context.Context, raw *generation.Result, number int, styleLabel string) (*Artifact, error) {
	startTime := time.Now()

	data := raw.Data
	if data == nil {
		fetched, err := p.fetch(ctx, raw.URL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProcessingFailed, err)
		}
		data = fetched
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrProcessingFailed, err)
	}

	square := coverResize(img, CanonicalSize)

	// Badge is cosmetic; geometry and format normalization are not. A badge
	// failure downgrades to the un-badged square rather than failing the job.
	if err := compositeBadge(square, number); err != nil {
		log.Warn().Err(err).Int("number", number).Msg("Badge compositing failed, publishing un-badged image")
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, square, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("%w: encode: %v", ErrProcessingFailed, err)
	}

	filename := fmt.Sprintf("bedroom-option-%d-%s.jpg", number, uuid.NewString())
	url, err := p.store.Write(ctx, filename, buf.Bytes(), "image/jpeg")
	if err != nil {
		return nil, fmt.Errorf("%w: persist: %v", ErrProcessingFailed, err)
	}

	log.Debug().
		Int("number", number).
		Str("file", filename).
		Int("bytes", buf.Len()).
		Dur("duration", time.Since(startTime)).
		Msg("Artifact processed")

	return &Artifact{
		ID:          fmt.Sprintf("option-%d", number),
		Number:      number,
		URL:         url,
		Style:       styleLabel,
		DownloadURL: url,
		ShareURL:    url,
		StoragePath: filename,
	}, nil
}

func (p *Processor) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download raw image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download raw image: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// coverResize center-crops the source to a square and scales it to size.
// The longer dimension is cropped, never padded, so every artifact shares
// identical geometry regardless of the source aspect ratio.
func coverResize(src image.Image, size int) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	edge := w
	if h < w {
		edge = h
	}
	crop := image.Rect(0, 0, edge, edge).
		Add(image.Pt(b.Min.X+(w-edge)/2, b.Min.Y+(h-edge)/2))

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)
	return dst
}
