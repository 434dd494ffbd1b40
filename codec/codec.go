// Package codec - Decoders that turn sample files on disk into RGB images and raw
// label grids.
package codec

import (
	"fmt"
	"image"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-cityscapes/labels"
)

// ErrDecode is the error kind for missing, unreadable or malformed sample files.
var ErrDecode = errors.New("cannot decode sample file")

// DecodeError records which file failed to decode and why.
type DecodeError struct {
	// Path is the file that failed.
	Path string
	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

// Unwrap exposes the underlying failure, e.g. os.ErrNotExist.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is makes every DecodeError match ErrDecode.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// Decoder reads sample files.
type Decoder interface {
	// DecodeRGB reads a color image and coerces it to three channels.
	DecodeRGB(path string) (*image.RGBA, error)
	// DecodeLabels reads a single-channel label raster verbatim, without any color
	// conversion.
	DecodeLabels(path string) (*labels.Grid, error)
}
