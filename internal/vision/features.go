// Package vision analyzes an uploaded room photo to bias prompt construction.
//
// The analysis is advisory: generation works without it, so decode or
// analysis failures degrade to neutral defaults instead of propagating.
package vision

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Brightness buckets over the average channel mean.
const (
	BrightnessDark   = "dark"
	BrightnessMedium = "medium"
	BrightnessBright = "bright"
)

// analysisSize is the square edge the image is downsampled to before
// computing channel statistics.
const analysisSize = 64

// dominanceMargin is how far one channel mean must exceed both others to be
// called a clear dominant.
const dominanceMargin = 20

// neutralTolerance is the pairwise channel-mean spread under which the photo
// reads as a neutral palette.
const neutralTolerance = 10

// Features describes an uploaded source photo. Consumed read-only by the
// prompt builder; all label fields are always populated.
type Features struct {
	Width          int      `json:"width"`
	Height         int      `json:"height"`
	Format         string   `json:"format"`
	DominantColors []string `json:"dominantColors"`
	Brightness     string   `json:"brightness"`
	Lighting       string   `json:"lighting"`
	Style          string   `json:"style"`
}

// defaultFeatures is what Extract returns when the photo cannot be decoded
// or analyzed.
func defaultFeatures() *Features {
	return &Features{
		DominantColors: nil,
		Brightness:     BrightnessMedium,
		Lighting:       "natural",
		Style:          "contemporary",
	}
}

// Extract analyzes a source photo and returns its features. It never fails:
// on any decode error it returns neutral defaults, since the features only
// bias prompt wording.
func Extract(data []byte) *Features {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		log.Warn().Err(err).Int("bytes", len(data)).Msg("Source photo decode failed, using default features")
		return defaultFeatures()
	}

	bounds := img.Bounds()
	f := defaultFeatures()
	f.Width = bounds.Dx()
	f.Height = bounds.Dy()
	f.Format = format

	// Downsample before measuring so a handful of pixels stands in for the
	// whole photo.
	small := image.NewRGBA(image.Rect(0, 0, analysisSize, analysisSize))
	draw.ApproxBiLinear.Scale(small, small.Bounds(), img, bounds, draw.Src, nil)

	rMean, gMean, bMean := channelMeans(small)

	f.DominantColors = dominantColors(rMean, gMean, bMean)
	f.Brightness, f.Lighting = brightnessLabels((rMean + gMean + bMean) / 3)
	f.Style = styleLabel(rMean, gMean, bMean)

	log.Debug().
		Int("width", f.Width).
		Int("height", f.Height).
		Str("format", f.Format).
		Strs("dominant_colors", f.DominantColors).
		Str("brightness", f.Brightness).
		Str("style", f.Style).
		Msg("Source photo analyzed")

	return f
}

func channelMeans(img *image.RGBA) (r, g, b float64) {
	var rSum, gSum, bSum uint64
	n := uint64(analysisSize * analysisSize)
	for y := 0; y < analysisSize; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+analysisSize*4]
		for x := 0; x < analysisSize; x++ {
			rSum += uint64(row[x*4])
			gSum += uint64(row[x*4+1])
			bSum += uint64(row[x*4+2])
		}
	}
	return float64(rSum) / float64(n), float64(gSum) / float64(n), float64(bSum) / float64(n)
}

// dominantColors maps channel means to a coarse color label. A channel that
// clears both others by dominanceMargin wins outright; otherwise the simple
// greatest-of-three wins.
func dominantColors(r, g, b float64) []string {
	switch {
	case r > g+dominanceMargin && r > b+dominanceMargin:
		return []string{"warm red"}
	case g > r+dominanceMargin && g > b+dominanceMargin:
		return []string{"natural green"}
	case b > r+dominanceMargin && b > g+dominanceMargin:
		return []string{"cool blue"}
	case r >= g && r >= b:
		return []string{"warm red"}
	case g >= r && g >= b:
		return []string{"natural green"}
	default:
		return []string{"cool blue"}
	}
}

func brightnessLabels(avg float64) (brightness, lighting string) {
	switch {
	case avg < 85:
		return BrightnessDark, "moody ambient"
	case avg < 170:
		return BrightnessMedium, "balanced natural"
	default:
		return BrightnessBright, "bright airy"
	}
}

// styleLabel derives a coarse decor style from the color balance: strongly
// green photos read as organic, near-neutral palettes as minimalist.
func styleLabel(r, g, b float64) string {
	if g > r+dominanceMargin {
		return "natural organic"
	}
	if abs(r-g) < neutralTolerance && abs(g-b) < neutralTolerance {
		return "minimalist neutral"
	}
	return "contemporary"
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
