package postprocess

// badge.go rasterizes the small circular numeric badge and composites it
// into the top-left corner of every artifact. The badge is rendered at 2x
// and downscaled so the circle edge stays smooth without a vector stack.

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"
)

const (
	badgeSize   = 64  // final badge edge in artifact pixels
	badgePad    = 16  // fixed corner offset, identical across the whole set
	badgeScale  = 2   // supersampling factor for the circle raster
	ringStroke  = 4   // ring width at supersampled scale (2px final)
	circleAlpha = 204 // fill rgba(0,0,0,0.8)
	ringAlpha   = 77  // stroke rgba(255,255,255,0.3)
)

// compositeBadge draws the numbered badge onto img in place. img must be at
// least badgeSize+badgePad on both edges.
func compositeBadge(img *image.RGBA, number int) error {
	bounds := img.Bounds()
	if bounds.Dx() < badgeSize+badgePad || bounds.Dy() < badgeSize+badgePad {
		return fmt.Errorf("image %v too small for badge", bounds)
	}

	badge, err := renderBadge(number)
	if err != nil {
		return err
	}

	target := image.Rect(badgePad, badgePad, badgePad+badgeSize, badgePad+badgeSize).
		Add(bounds.Min)
	draw.Draw(img, target, badge, image.Point{}, draw.Over)
	return nil
}

// renderBadge produces the badgeSize x badgeSize RGBA badge: dark circle,
// faint ring, white digits centered.
func renderBadge(number int) (*image.RGBA, error) {
	big := badgeSize * badgeScale
	cx, cy := big/2, big/2
	rOuter := big/2 - badgeScale
	rInner := rOuter - ringStroke

	circle := image.NewRGBA(image.Rect(0, 0, big, big))
	for y := 0; y < big; y++ {
		for x := 0; x < big; x++ {
			dx, dy := x-cx, y-cy
			d2 := dx*dx + dy*dy
			switch {
			case d2 <= rInner*rInner:
				circle.SetRGBA(x, y, color.RGBA{0, 0, 0, circleAlpha})
			case d2 <= rOuter*rOuter:
				circle.SetRGBA(x, y, color.RGBA{255, 255, 255, ringAlpha})
			}
		}
	}

	badge := image.NewRGBA(image.Rect(0, 0, badgeSize, badgeSize))
	draw.CatmullRom.Scale(badge, badge.Bounds(), circle, circle.Bounds(), draw.Src, nil)

	if err := drawNumber(badge, number); err != nil {
		return nil, err
	}
	return badge, nil
}

// drawNumber rasterizes the digits with the embedded bitmap face and scales
// them up to roughly half the badge height before centering them.
func drawNumber(badge *image.RGBA, number int) error {
	text := strconv.Itoa(number)
	face := inconsolata.Bold8x16

	width := font.MeasureString(face, text).Ceil()
	if width <= 0 {
		return fmt.Errorf("unmeasurable badge text %q", text)
	}
	metrics := face.Metrics()
	height := metrics.Height.Ceil()

	raster := image.NewRGBA(image.Rect(0, 0, width, height))
	drawer := &font.Drawer{
		Dst:  raster,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(0, metrics.Ascent.Ceil()),
	}
	drawer.DrawString(text)

	scaled := image.NewRGBA(image.Rect(0, 0, width*badgeScale, height*badgeScale))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), raster, raster.Bounds(), draw.Src, nil)

	offset := image.Pt(
		(badgeSize-scaled.Bounds().Dx())/2,
		(badgeSize-scaled.Bounds().Dy())/2,
	)
	draw.Draw(badge, scaled.Bounds().Add(offset), scaled, image.Point{}, draw.Over)
	return nil
}
