package scoring

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/mcoot/colorclaim/internal/model"
)

const bytesPerPixel = 4

// Territory colors as exact RGBA values
var (
	rgbaPurple = [bytesPerPixel]byte{128, 0, 128, 255}
	rgbaRed    = [bytesPerPixel]byte{255, 0, 0, 255}
	rgbaGreen  = [bytesPerPixel]byte{0, 255, 0, 255}
	rgbaBlue   = [bytesPerPixel]byte{0, 0, 255, 255}
)

// Service turns rendered canvases into verdicts
type Service struct{}

// New creates a new scoring Service
func New() *Service {
	return &Service{}
}

// Score counts exact territory-color matches over the first pixelCount bytes of an
// RGBA buffer and returns the verdict. pixelCount must be a non-negative multiple of 4
// no larger than the buffer.
func (s *Service) Score(buf []byte, pixelCount int) (model.Verdict, error) {
	if pixelCount < 0 || pixelCount%bytesPerPixel != 0 || pixelCount > len(buf) {
		return model.Verdict{}, fmt.Errorf("%w: pixel count %d for %d byte buffer",
			model.ErrInvalidBuffer, pixelCount, len(buf))
	}

	var counts model.ColorCounts
	for i := 0; i < pixelCount; i += bytesPerPixel {
		px := [bytesPerPixel]byte(buf[i : i+bytesPerPixel])
		switch px {
		case rgbaPurple:
			counts.Purple++
		case rgbaRed:
			counts.Red++
		case rgbaGreen:
			counts.Green++
		case rgbaBlue:
			counts.Blue++
		}
	}

	return model.Verdict{
		Winner: winner(counts),
		Counts: counts,
	}, nil
}

// ScoreImage scores a decoded image
func (s *Service) ScoreImage(img image.Image) (model.Verdict, error) {
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != rgba.Rect.Dx()*bytesPerPixel || len(rgba.Pix) != rgba.Stride*rgba.Rect.Dy() {
		bounds := img.Bounds()
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	return s.Score(rgba.Pix, len(rgba.Pix))
}

// winner returns the color with the strictly greatest count, or empty on any tie at the top
func winner(c model.ColorCounts) model.Color {
	ranked := [...]struct {
		color model.Color
		count int
	}{
		{model.ColorPurple, c.Purple},
		{model.ColorRed, c.Red},
		{model.ColorGreen, c.Green},
		{model.ColorBlue, c.Blue},
	}

	best := ranked[0]
	tied := false
	for _, r := range ranked[1:] {
		switch {
		case r.count > best.count:
			best = r
			tied = false
		case r.count == best.count:
			tied = true
		}
	}
	if tied {
		return ""
	}
	return best.color
}
