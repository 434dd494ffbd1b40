// Package labels - Dense label grids, the fine and coarse street-scene taxonomies
// and the fine-to-coarse remapping used to build training targets.
package labels

import (
	"image"
	"sort"

	"github.com/pkg/errors"
)

// ErrNotSingleChannel is returned when a label raster carries color data instead of raw ids.
var ErrNotSingleChannel = errors.New("label raster is not single-channel")

// Grid is a row-major 2-D array of label ids.
type Grid struct {
	// Width is the number of columns.
	Width int
	// Height is the number of rows.
	Height int
	// Pix holds Width*Height label ids, row by row.
	Pix []uint8
}

// NewGrid allocates a zero-filled grid.
//
// Arguments:
// - width: Number of columns.
// - height: Number of rows.
//
// Returns:
// - A grid whose cells are all 0.
func NewGrid(width, height int) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Grid{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// At returns the id stored at column x, row y.
func (g *Grid) At(x, y int) uint8 {
	return g.Pix[y*g.Width+x]
}

// Set stores v at column x, row y.
func (g *Grid) Set(x, y int, v uint8) {
	g.Pix[y*g.Width+x] = v
}

// Fill sets every cell to v.
func (g *Grid) Fill(v uint8) {
	for i := range g.Pix {
		g.Pix[i] = v
	}
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	pix := make([]uint8, len(g.Pix))
	copy(pix, g.Pix)
	return &Grid{Width: g.Width, Height: g.Height, Pix: pix}
}

// Equal reports whether both grids have the same shape and contents.
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	if g.Width != o.Width || g.Height != o.Height || len(g.Pix) != len(o.Pix) {
		return false
	}
	for i := range g.Pix {
		if g.Pix[i] != o.Pix[i] {
			return false
		}
	}
	return true
}

// Histogram counts the occurrences of every id.
func (g *Grid) Histogram() [256]int {
	var h [256]int
	for _, v := range g.Pix {
		h[v]++
	}
	return h
}

// Unique returns the distinct ids present in the grid, sorted ascending.
func (g *Grid) Unique() []uint8 {
	h := g.Histogram()
	out := make([]uint8, 0, 8)
	for v, n := range h {
		if n > 0 {
			out = append(out, uint8(v))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Gray exposes the grid as an 8-bit grayscale image without copying.
func (g *Grid) Gray() *image.Gray {
	return &image.Gray{
		Pix:    g.Pix,
		Stride: g.Width,
		Rect:   image.Rect(0, 0, g.Width, g.Height),
	}
}

// GridFromImage reads raw label ids out of a decoded single-channel raster.
//
// The values are taken verbatim: 8-bit gray samples, palette indices for paletted
// rasters, and 16-bit gray samples (values above 255 are stored as Unlabeled, which
// the remapper sends to void anyway). Any color raster is rejected because pushing
// label ids through a color model would corrupt them.
//
// Arguments:
// - img: The decoded label raster.
//
// Returns:
// - The label grid.
// - ErrNotSingleChannel if the raster is a color image.
func GridFromImage(img image.Image) (*Grid, error) {
	b := img.Bounds()
	g := NewGrid(b.Dx(), b.Dy())

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < g.Height; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(g.Pix[y*g.Width:(y+1)*g.Width], src.Pix[off:off+g.Width])
		}
	case *image.Paletted:
		for y := 0; y < g.Height; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(g.Pix[y*g.Width:(y+1)*g.Width], src.Pix[off:off+g.Width])
		}
	case *image.Gray16:
		for y := 0; y < g.Height; y++ {
			for x := 0; x < g.Width; x++ {
				v := src.Gray16At(b.Min.X+x, b.Min.Y+y).Y
				if v > 255 {
					v = uint16(Unlabeled)
				}
				g.Pix[y*g.Width+x] = uint8(v)
			}
		}
	default:
		return nil, errors.Wrapf(ErrNotSingleChannel, "unsupported label color model %T", img)
	}

	return g, nil
}
