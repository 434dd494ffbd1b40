package labels

import "github.com/pkg/errors"

// Remapper converts fine label grids to coarse label grids.
//
// The table is validated once at construction and frozen into a lookup array, so a
// Remapper is immutable and safe for concurrent use.
type Remapper struct {
	lut [256]uint8
}

// NewRemapper validates the table and builds a remapper from it.
//
// Arguments:
// - table: The fine-to-coarse table, usually CityscapesToCoarse.
//
// Returns:
// - The remapper.
// - ErrIncompleteTable (wrapped) when the table does not cover the fine domain.
//
// @example
// remapper, err := labels.NewRemapper(labels.CityscapesToCoarse)
func NewRemapper(table Table) (*Remapper, error) {
	if err := table.Validate(); err != nil {
		return nil, errors.WithMessage(err, "cannot build label remapper")
	}

	r := &Remapper{}
	for i := range r.lut {
		r.lut[i] = DefaultCoarse
	}
	for fine, coarse := range table {
		r.lut[fine] = coarse
	}
	return r, nil
}

// Lookup returns the coarse id of a single fine id.
func (r *Remapper) Lookup(fine uint8) uint8 {
	return r.lut[fine]
}

// Remap returns a new grid of the same shape with every cell mapped to its
// coarse id. Values outside the table become DefaultCoarse.
func (r *Remapper) Remap(fine *Grid) *Grid {
	out := NewGrid(fine.Width, fine.Height)
	for i, v := range fine.Pix {
		out.Pix[i] = r.lut[v]
	}
	return out
}
