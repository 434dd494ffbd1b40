package images

import (
	"image"
	"runtime"
	"sync"

	"github.com/nfnt/resize"

	"github.com/nvr-ai/go-cityscapes/labels"
)

// ResampleFilter defines the resampling algorithm used for image scaling.
type ResampleFilter int

const (
	// NearestNeighborFilter copies the closest source pixel. It is the only filter
	// allowed for label data because it never produces values absent from the source.
	NearestNeighborFilter ResampleFilter = iota
	// BilinearFilter uses bilinear interpolation (smooth, for photographic data).
	BilinearFilter
	// BicubicFilter uses bicubic interpolation.
	BicubicFilter
	// LanczosFilter uses Lanczos3 resampling.
	LanczosFilter
)

// interpolation maps a filter onto its nfnt/resize implementation.
func (f ResampleFilter) interpolation() resize.InterpolationFunction {
	switch f {
	case NearestNeighborFilter:
		return resize.NearestNeighbor
	case BicubicFilter:
		return resize.Bicubic
	case LanczosFilter:
		return resize.Lanczos3
	default:
		return resize.Bilinear
	}
}

// Resize scales an RGB image to exactly width x height.
//
// The source is coerced through ToRGB first so the result is always an opaque
// *image.RGBA regardless of what the decoder produced. Resizing is unconditional:
// a source that already has the target size still yields a new image.
//
// Arguments:
// - img: The source image.
// - width: Target width in pixels.
// - height: Target height in pixels.
// - filter: The resampling filter.
//
// Returns:
// - The resized image.
//
// @example
// resized := Resize(src, 1024, 512, BilinearFilter)
func Resize(img image.Image, width, height int, filter ResampleFilter) *image.RGBA {
	if width <= 0 || height <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}

	rgb, ok := img.(*image.RGBA)
	if !ok || rgb.Bounds().Min != (image.Point{}) {
		rgb = ToRGB(img)
	}

	if rgb.Bounds().Dx() == width && rgb.Bounds().Dy() == height {
		dst := image.NewRGBA(rgb.Bounds())
		copy(dst.Pix, rgb.Pix)
		return dst
	}

	out := resize.Resize(uint(width), uint(height), rgb, filter.interpolation())
	if dst, ok := out.(*image.RGBA); ok {
		return dst
	}
	return ToRGB(out)
}

// ResizeGridNearest scales a label grid to width x height with nearest-neighbor
// sampling.
//
// Destination cell (x, y) takes the source cell whose center is closest to the
// destination cell's center, floor((x+0.5)*srcW/dstW), computed in integers. The
// result only ever contains ids present in the source. nfnt/resize is not used
// here: its nearest filter averages several source pixels when downsampling.
//
// Arguments:
// - g: The source grid.
// - width: Target width.
// - height: Target height.
//
// Returns:
// - A new grid of the requested size.
func ResizeGridNearest(g *labels.Grid, width, height int) *labels.Grid {
	dst := labels.NewGrid(width, height)
	if g.Width == 0 || g.Height == 0 || width <= 0 || height <= 0 {
		return dst
	}

	srcX := make([]int, width)
	for x := range srcX {
		srcX[x] = (2*x + 1) * g.Width / (2 * width)
	}

	Parallel(height, func(partStart, partEnd int) {
		for y := partStart; y < partEnd; y++ {
			sy := (2*y + 1) * g.Height / (2 * height)
			srcRow := g.Pix[sy*g.Width : (sy+1)*g.Width]
			dstRow := dst.Pix[y*width : (y+1)*width]
			for x, sx := range srcX {
				dstRow[x] = srcRow[sx]
			}
		}
	})

	return dst
}

// FlipHorizontal mirrors an image along its vertical axis.
//
// Arguments:
// - img: The source image.
//
// Returns:
// - A new mirrored image; the source is untouched.
func FlipHorizontal(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, width, height))

	Parallel(height, func(partStart, partEnd int) {
		for y := partStart; y < partEnd; y++ {
			si := img.PixOffset(b.Min.X, b.Min.Y+y)
			di := dst.PixOffset(width-1, y)
			for x := 0; x < width; x++ {
				copy(dst.Pix[di:di+4], img.Pix[si:si+4])
				si += 4
				di -= 4
			}
		}
	})

	return dst
}

// FlipGridHorizontal mirrors a label grid along its vertical axis.
func FlipGridHorizontal(g *labels.Grid) *labels.Grid {
	dst := labels.NewGrid(g.Width, g.Height)
	for y := 0; y < g.Height; y++ {
		row := g.Pix[y*g.Width : (y+1)*g.Width]
		out := dst.Pix[y*g.Width : (y+1)*g.Width]
		for x, v := range row {
			out[g.Width-1-x] = v
		}
	}
	return dst
}

// Clamp restricts a value to the specified range [min, max].
//
// Arguments:
// - value: The value to clamp.
// - min: Minimum allowed value.
// - max: Maximum allowed value.
//
// Returns:
// - The clamped value within [min, max].
//
// @example
// clamped := Clamp(300.5, 0, 255) // Returns 255
// clamped := Clamp(-10.0, 0, 255) // Returns 0
func Clamp(value, min, max float32) float32 {
	// Check lower bound first (denormalized values undershoot more often).
	if value < min {
		return min
	}
	// Check upper bound.
	if value > max {
		return max
	}
	// Value is within range.
	return value
}

// Parallel executes a function in parallel across multiple goroutines, one
// contiguous partition of [0, dataSize) each.
//
// Arguments:
// - dataSize: The size of the data to process, usually the image height.
// - fn: Function to execute for each partition (receives start and end indices).
//
// Returns:
// - None. Parallel returns once every partition has been processed.
//
// @example
//
//	Parallel(height, func(start, end int) {
//	    for y := start; y < end; y++ {
//	        // Process row y
//	    }
//	})
func Parallel(dataSize int, fn func(partStart, partEnd int)) {
	// One goroutine per CPU core.
	numGoroutines := runtime.NumCPU()

	// Small inputs (e.g. label grids in tests) run serially on the caller.
	if dataSize < numGoroutines*2 {
		fn(0, dataSize)
		return
	}

	// Calculate partition size for each goroutine.
	partSize := dataSize / numGoroutines

	// Create wait group to synchronize goroutines.
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	// Launch goroutines to process partitions.
	for i := 0; i < numGoroutines; i++ {
		// Calculate partition boundaries.
		partStart := i * partSize
		partEnd := partStart + partSize

		// Last partition gets any remaining rows.
		if i == numGoroutines-1 {
			partEnd = dataSize
		}

		// Partitions never overlap, so fn may write its rows without locking.
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(partStart, partEnd)
	}

	// Wait for all goroutines to complete.
	wg.Wait()
}
