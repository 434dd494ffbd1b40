package dataset

import "path/filepath"

const (
	// ImageSuffix is appended to an identifier to name its RGB image.
	ImageSuffix = "_leftImg8bit.png"
	// LabelSuffix is appended to an identifier to name its fine label raster.
	LabelSuffix = "_gtFine_labelIds.png"
)

// Layout resolves identifiers to files.
type Layout struct {
	// ImageSuffix is appended to the identifier under the images root.
	ImageSuffix string
	// LabelSuffix is appended to the identifier under the labels root.
	LabelSuffix string
}

// CityscapesLayout returns the standard leftImg8bit / gtFine layout.
func CityscapesLayout() Layout {
	return Layout{ImageSuffix: ImageSuffix, LabelSuffix: LabelSuffix}
}

// ImagePath returns <root>/<id><ImageSuffix>.
func (l Layout) ImagePath(root, id string) string {
	return filepath.Join(root, filepath.FromSlash(id)+l.ImageSuffix)
}

// LabelPath returns <root>/<id><LabelSuffix>.
func (l Layout) LabelPath(root, id string) string {
	return filepath.Join(root, filepath.FromSlash(id)+l.LabelSuffix)
}
