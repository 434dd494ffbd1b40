package codec

import (
	"image"
	_ "image/jpeg" // register JPEG for image.Decode
	_ "image/png"  // register PNG for image.Decode
	"io"
	"os"

	"github.com/chai2010/webp"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-cityscapes/images"
	"github.com/nvr-ai/go-cityscapes/labels"
)

var _ Decoder = (*FileDecoder)(nil)

// FileDecoder decodes PNG, JPEG and WebP files with pure Go codecs.
type FileDecoder struct{}

// NewFileDecoder returns the default decoder.
func NewFileDecoder() *FileDecoder {
	return &FileDecoder{}
}

// DecodeRGB implements Decoder.
func (d *FileDecoder) DecodeRGB(path string) (*image.RGBA, error) {
	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	return images.ToRGB(img), nil
}

// DecodeLabels implements Decoder.
func (d *FileDecoder) DecodeLabels(path string) (*labels.Grid, error) {
	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	g, err := labels.GridFromImage(img)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return g, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	img, err := decodeReader(f, FormatFromPath(path))
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return img, nil
}

// decodeReader dispatches WebP to the webp codec; everything else goes through
// the registered image decoders, which sniff the content.
func decodeReader(r io.Reader, format ImageFormat) (image.Image, error) {
	if format == FormatWebP {
		img, err := webp.Decode(r)
		if err != nil {
			return nil, errors.Wrap(err, "webp")
		}
		return img, nil
	}

	img, name, err := image.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "image")
	}
	if name == "" {
		return nil, errors.New("unknown image format")
	}
	return img, nil
}
