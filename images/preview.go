package images

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"

	"github.com/nvr-ai/go-cityscapes/labels"
)

// Colorize renders a coarse label grid with the preview color of each class.
// Ids without a coarse class are drawn black.
func Colorize(g *labels.Grid) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, g.Width, g.Height))
	for i, v := range g.Pix {
		c := color.RGBA{A: 0xff}
		if int(v) < len(labels.CoarseClasses) {
			c = labels.CoarseClasses[v].Color
		}
		dst.Pix[4*i+0] = c.R
		dst.Pix[4*i+1] = c.G
		dst.Pix[4*i+2] = c.B
		dst.Pix[4*i+3] = 0xff
	}
	return dst
}

// MaskImage renders a binary grid as black (0) and white (any non-zero value).
func MaskImage(g *labels.Grid) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	for i, v := range g.Pix {
		if v != 0 {
			dst.Pix[i] = 0xff
		}
	}
	return dst
}

// Denormalize inverts per-channel standardization of a CHW float32 tensor and
// returns the corresponding 8-bit RGB image.
//
// Arguments:
// - data: CHW data holding 3*width*height values.
// - width: Tensor width.
// - height: Tensor height.
// - mean: Per-channel mean that was subtracted.
// - std: Per-channel standard deviation that was divided by.
//
// Returns:
// - The reconstructed image.
//
// @example
// img := Denormalize(sample.Data(), 1024, 512, mean, std)
func Denormalize(data []float32, width, height int, mean, std [3]float32) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	plane := width * height
	if len(data) < 3*plane {
		return dst
	}

	Parallel(height, func(partStart, partEnd int) {
		for y := partStart; y < partEnd; y++ {
			for x := 0; x < width; x++ {
				i := y*width + x
				di := dst.PixOffset(x, y)
				for c := 0; c < 3; c++ {
					v := (data[c*plane+i]*std[c] + mean[c]) * 255
					dst.Pix[di+c] = uint8(Clamp(math32.Round(v), 0, 255))
				}
				dst.Pix[di+3] = 0xff
			}
		}
	})

	return dst
}
