package labels

// objectClasses are the coarse classes flagged by the objectness mask.
var objectClasses = [...]uint8{Human, Vehicle, Construction, Object}

// isObject is the lookup table built from objectClasses.
var isObject [256]bool

func init() {
	for _, c := range objectClasses {
		isObject[c] = true
	}
}

// ObjectClasses returns the coarse classes flagged by the objectness mask, in
// ascending order. The slice is a copy.
func ObjectClasses() []uint8 {
	out := make([]uint8, len(objectClasses))
	copy(out, objectClasses[:])
	return out
}

// IsObject reports whether a coarse id is one of ObjectClasses.
func IsObject(coarse uint8) bool {
	return isObject[coarse]
}

// Objectness derives the binary object mask from a coarse grid: 1 where the class
// is in ObjectClasses, 0 elsewhere. The input must already be remapped; fine ids
// give meaningless results.
func Objectness(coarse *Grid) *Grid {
	out := NewGrid(coarse.Width, coarse.Height)
	for i, v := range coarse.Pix {
		if isObject[v] {
			out.Pix[i] = 1
		}
	}
	return out
}
