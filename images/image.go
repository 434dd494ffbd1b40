// Package images - Pixel-level operations shared by the sample pipeline: color
// coercion, interpolation-aware resizing, synchronized flips and previews.
package images

import (
	"image"
	"image/color"
)

// ToRGB coerces any decoded image into an opaque 3-channel *image.RGBA.
//
// Gray and paletted sources are expanded to RGB and any alpha channel is dropped
// (the straight, non-premultiplied color is kept), so the result always carries
// exactly three meaningful channels with A=255.
//
// Arguments:
// - img: The decoded source image.
//
// Returns:
// - A new *image.RGBA anchored at (0, 0).
//
// @example
// rgb := images.ToRGB(decoded)
func ToRGB(img image.Image) *image.RGBA {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, width, height))

	switch src := img.(type) {
	case *image.NRGBA:
		Parallel(height, func(partStart, partEnd int) {
			for y := partStart; y < partEnd; y++ {
				si := src.PixOffset(b.Min.X, b.Min.Y+y)
				di := dst.PixOffset(0, y)
				for x := 0; x < width; x++ {
					dst.Pix[di+0] = src.Pix[si+0]
					dst.Pix[di+1] = src.Pix[si+1]
					dst.Pix[di+2] = src.Pix[si+2]
					dst.Pix[di+3] = 0xff
					si += 4
					di += 4
				}
			}
		})
	case *image.Gray:
		Parallel(height, func(partStart, partEnd int) {
			for y := partStart; y < partEnd; y++ {
				si := src.PixOffset(b.Min.X, b.Min.Y+y)
				di := dst.PixOffset(0, y)
				for x := 0; x < width; x++ {
					v := src.Pix[si+x]
					dst.Pix[di+0] = v
					dst.Pix[di+1] = v
					dst.Pix[di+2] = v
					dst.Pix[di+3] = 0xff
					di += 4
				}
			}
		})
	default:
		Parallel(height, func(partStart, partEnd int) {
			for y := partStart; y < partEnd; y++ {
				di := dst.PixOffset(0, y)
				for x := 0; x < width; x++ {
					c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
					dst.Pix[di+0] = c.R
					dst.Pix[di+1] = c.G
					dst.Pix[di+2] = c.B
					dst.Pix[di+3] = 0xff
					di += 4
				}
			}
		})
	}

	return dst
}
