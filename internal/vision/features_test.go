package vision

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func solidPNG(t *testing.T, c color.RGBA, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestExtractMalformedBytes(t *testing.T) {
	f := Extract([]byte("definitely not an image"))
	if f.Brightness != BrightnessMedium {
		t.Errorf("Brightness = %q, want medium", f.Brightness)
	}
	if f.Lighting != "natural" {
		t.Errorf("Lighting = %q, want natural", f.Lighting)
	}
	if f.Style != "contemporary" {
		t.Errorf("Style = %q, want contemporary", f.Style)
	}
	if len(f.DominantColors) != 0 {
		t.Errorf("DominantColors = %v, want empty", f.DominantColors)
	}
}

func TestExtractGreenPhoto(t *testing.T) {
	f := Extract(solidPNG(t, color.RGBA{40, 180, 50, 255}, 200, 100))
	if f.Width != 200 || f.Height != 100 {
		t.Errorf("dimensions = %dx%d, want 200x100", f.Width, f.Height)
	}
	if f.Format != "png" {
		t.Errorf("Format = %q, want png", f.Format)
	}
	if len(f.DominantColors) != 1 || f.DominantColors[0] != "natural green" {
		t.Errorf("DominantColors = %v, want [natural green]", f.DominantColors)
	}
	if f.Style != "natural organic" {
		t.Errorf("Style = %q, want natural organic", f.Style)
	}
}

func TestExtractBrightnessBuckets(t *testing.T) {
	tests := []struct {
		name           string
		c              color.RGBA
		wantBrightness string
		wantLighting   string
	}{
		{"dark", color.RGBA{30, 30, 40, 255}, BrightnessDark, "moody ambient"},
		{"medium", color.RGBA{120, 120, 130, 255}, BrightnessMedium, "balanced natural"},
		{"bright", color.RGBA{220, 225, 230, 255}, BrightnessBright, "bright airy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Extract(solidPNG(t, tt.c, 50, 50))
			if f.Brightness != tt.wantBrightness {
				t.Errorf("Brightness = %q, want %q", f.Brightness, tt.wantBrightness)
			}
			if f.Lighting != tt.wantLighting {
				t.Errorf("Lighting = %q, want %q", f.Lighting, tt.wantLighting)
			}
		})
	}
}

func TestExtractNeutralPalette(t *testing.T) {
	f := Extract(solidPNG(t, color.RGBA{128, 130, 126, 255}, 50, 50))
	if f.Style != "minimalist neutral" {
		t.Errorf("Style = %q, want minimalist neutral", f.Style)
	}
}
