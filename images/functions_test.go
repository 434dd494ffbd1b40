package images

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-cityscapes/labels"
)

func getTestImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func gradientImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 5), B: uint8(x + y), A: 255})
		}
	}
	return img
}

func TestToRGB(t *testing.T) {
	t.Run("nrgba drops alpha", func(t *testing.T) {
		src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
		src.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 0})
		src.SetNRGBA(1, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 128})

		rgb := ToRGB(src)
		assert.Equal(t, []uint8{10, 20, 30, 255, 200, 100, 50, 255}, rgb.Pix)
	})

	t.Run("gray expands to three channels", func(t *testing.T) {
		src := image.NewGray(image.Rect(0, 0, 2, 1))
		src.Pix = []uint8{7, 250}

		rgb := ToRGB(src)
		assert.Equal(t, []uint8{7, 7, 7, 255, 250, 250, 250, 255}, rgb.Pix)
	})

	t.Run("paletted resolves colors", func(t *testing.T) {
		src := image.NewPaletted(image.Rect(0, 0, 1, 1), color.Palette{color.RGBA{R: 1, G: 2, B: 3, A: 255}})

		rgb := ToRGB(src)
		assert.Equal(t, []uint8{1, 2, 3, 255}, rgb.Pix)
	})

	t.Run("offset bounds are normalized", func(t *testing.T) {
		src := gradientImage(6, 6).SubImage(image.Rect(2, 3, 5, 6))

		rgb := ToRGB(src)
		assert.Equal(t, image.Rect(0, 0, 3, 3), rgb.Bounds())
		assert.Equal(t, src.At(2, 3), rgb.At(0, 0))
	})
}

func TestResizeShapes(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"downscale", 2048, 1024},
		{"upscale", 37, 19},
		{"portrait", 300, 900},
		{"same size", 1024, 512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Resize(gradientImage(tt.width, tt.height), 1024, 512, BilinearFilter)
			assert.Equal(t, 1024, out.Bounds().Dx())
			assert.Equal(t, 512, out.Bounds().Dy())
		})
	}
}

func TestResizeUniformImageKeepsColor(t *testing.T) {
	c := color.RGBA{R: 90, G: 140, B: 210, A: 255}
	out := Resize(getTestImage(300, 200, c), 64, 32, BilinearFilter)

	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			require.Equal(t, c, out.RGBAAt(x, y))
		}
	}
}

func TestResizeSameSizeCopies(t *testing.T) {
	src := gradientImage(8, 4)
	out := Resize(src, 8, 4, BilinearFilter)

	assert.Equal(t, src.Pix, out.Pix)
	out.Pix[0] = 99
	assert.NotEqual(t, src.Pix[0], out.Pix[0], "result must not alias the source")
}

func TestResizeGridNearestUpscale(t *testing.T) {
	g := &labels.Grid{Width: 2, Height: 2, Pix: []uint8{1, 2, 3, 4}}
	out := ResizeGridNearest(g, 4, 4)

	assert.Equal(t, []uint8{
		1, 1, 2, 2,
		1, 1, 2, 2,
		3, 3, 4, 4,
		3, 3, 4, 4,
	}, out.Pix)
}

func TestResizeGridNearestDownscale(t *testing.T) {
	g := &labels.Grid{Width: 4, Height: 1, Pix: []uint8{10, 11, 12, 13}}
	out := ResizeGridNearest(g, 2, 1)

	assert.Equal(t, []uint8{11, 13}, out.Pix)
}

func TestResizeGridNearestNeverInventsValues(t *testing.T) {
	g := labels.NewGrid(97, 53)
	for i := range g.Pix {
		if (i/7)%2 == 0 {
			g.Pix[i] = labels.Vehicle
		} else {
			g.Pix[i] = labels.Void
		}
	}

	for _, size := range [][2]int{{1024, 512}, {13, 7}, {97, 53}} {
		out := ResizeGridNearest(g, size[0], size[1])
		assert.Equal(t, size[0], out.Width)
		assert.Equal(t, size[1], out.Height)
		assert.Subset(t, []uint8{labels.Vehicle, labels.Void}, out.Unique())
	}
}

func TestFlipHorizontal(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 1))
	src.Pix = []uint8{1, 1, 1, 255, 2, 2, 2, 255, 3, 3, 3, 255}

	out := FlipHorizontal(src)
	assert.Equal(t, []uint8{3, 3, 3, 255, 2, 2, 2, 255, 1, 1, 1, 255}, out.Pix)
	assert.Equal(t, []uint8{1, 1, 1, 255, 2, 2, 2, 255, 3, 3, 3, 255}, src.Pix, "source untouched")

	big := gradientImage(64, 40)
	assert.Equal(t, big.Pix, FlipHorizontal(FlipHorizontal(big)).Pix)
}

func TestFlipGridHorizontal(t *testing.T) {
	g := &labels.Grid{Width: 3, Height: 2, Pix: []uint8{0, 1, 2, 3, 4, 5}}
	out := FlipGridHorizontal(g)

	assert.Equal(t, []uint8{2, 1, 0, 5, 4, 3}, out.Pix)
	assert.True(t, g.Equal(FlipGridHorizontal(out)))
}

func TestDenormalizeRoundTrip(t *testing.T) {
	mean := [3]float32{0.485, 0.456, 0.406}
	std := [3]float32{0.229, 0.224, 0.225}
	src := gradientImage(5, 4)

	plane := 5 * 4
	data := make([]float32, 3*plane)
	for y := 0; y < 4; y++ {
		for x := 0; x < 5; x++ {
			c := src.RGBAAt(x, y)
			for ch, v := range []uint8{c.R, c.G, c.B} {
				data[ch*plane+y*5+x] = (float32(v)/255 - mean[ch]) / std[ch]
			}
		}
	}

	out := Denormalize(data, 5, 4, mean, std)
	assert.Equal(t, src.Pix, out.Pix)
}

func TestPreviews(t *testing.T) {
	g := &labels.Grid{Width: 2, Height: 1, Pix: []uint8{labels.Road, labels.Void}}

	col := Colorize(g)
	assert.Equal(t, labels.CoarseClasses[labels.Road].Color, col.RGBAAt(0, 0))
	assert.Equal(t, labels.CoarseClasses[labels.Void].Color, col.RGBAAt(1, 0))

	mask := MaskImage(&labels.Grid{Width: 2, Height: 1, Pix: []uint8{0, 1}})
	assert.Equal(t, []uint8{0, 255}, mask.Pix)
}

func TestComputeChecksum(t *testing.T) {
	a := gradientImage(10, 10)
	b := gradientImage(10, 10)

	assert.Equal(t, ComputeChecksum(a), ComputeChecksum(b))
	b.Pix[5]++
	assert.NotEqual(t, ComputeChecksum(a), ComputeChecksum(b))
	assert.Equal(t, "empty", ComputeChecksum(image.NewRGBA(image.Rect(0, 0, 0, 0))))

	g := &labels.Grid{Width: 1, Height: 2, Pix: []uint8{1, 2}}
	assert.Equal(t, ComputeGridChecksum(g), ComputeGridChecksum(g.Clone()))
}

func TestParallelCoversEveryRowOnce(t *testing.T) {
	for _, size := range []int{0, 1, 7, 513} {
		hits := make([]int, size)
		Parallel(size, func(start, end int) {
			for i := start; i < end; i++ {
				hits[i]++
			}
		})
		for i, n := range hits {
			require.Equal(t, 1, n, "size %d row %d", size, i)
		}
	}

	assert.Equal(t, float32(255), Clamp(300.5, 0, 255))
	assert.Equal(t, float32(0), Clamp(-10, 0, 255))
	assert.Equal(t, float32(12.5), Clamp(12.5, 0, 255))
}
