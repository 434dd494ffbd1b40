package images

import (
	"crypto/md5"
	"fmt"
	"image"

	"github.com/nvr-ai/go-cityscapes/labels"
)

// ComputeChecksum generates a deterministic checksum of an image's pixel data, used
// to verify that repeated retrievals produce identical samples.
//
// Arguments:
// - img: The image to compute the checksum for.
//
// Returns:
// - A hex-encoded MD5 checksum string, or "empty" for a zero-sized image.
//
// Example:
//
// ```go
//
//	checksum := ComputeChecksum(frame)
//	fmt.Printf("Frame checksum: %s\n", checksum)
//
// ```
func ComputeChecksum(img *image.RGBA) string {
	if img == nil || img.Bounds().Empty() {
		return "empty"
	}

	hash := md5.New()
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		hash.Write(img.Pix[off : off+4*b.Dx()])
	}
	return fmt.Sprintf("%x", hash.Sum(nil))
}

// ComputeGridChecksum is ComputeChecksum for label grids.
func ComputeGridChecksum(g *labels.Grid) string {
	if g == nil || len(g.Pix) == 0 {
		return "empty"
	}
	return fmt.Sprintf("%x", md5.Sum(g.Pix))
}
