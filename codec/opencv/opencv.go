// Package opencv - Sample decoder backed by OpenCV through gocv.
package opencv

import (
	"image"
	"os"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-cityscapes/codec"
	"github.com/nvr-ai/go-cityscapes/images"
	"github.com/nvr-ai/go-cityscapes/labels"
)

var _ codec.Decoder = (*Decoder)(nil)

// Decoder reads sample files with cv::imread.
type Decoder struct{}

// New returns an OpenCV decoder.
func New() *Decoder {
	return &Decoder{}
}

// DecodeRGB implements codec.Decoder. Images are read with IMReadColor, which
// always yields three channels.
func (d *Decoder) DecodeRGB(path string) (*image.RGBA, error) {
	mat, err := read(path, gocv.IMReadColor)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	img, err := mat.ToImage()
	if err != nil {
		return nil, &codec.DecodeError{Path: path, Err: errors.Wrap(err, "mat to image")}
	}
	return images.ToRGB(img), nil
}

// DecodeLabels implements codec.Decoder. Labels are read with IMReadUnchanged so
// the stored ids reach the grid without any color conversion.
func (d *Decoder) DecodeLabels(path string) (*labels.Grid, error) {
	mat, err := read(path, gocv.IMReadUnchanged)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	if mat.Channels() != 1 {
		return nil, &codec.DecodeError{
			Path: path,
			Err:  errors.Wrapf(labels.ErrNotSingleChannel, "%d channels", mat.Channels()),
		}
	}

	g := labels.NewGrid(mat.Cols(), mat.Rows())

	switch mat.Type() {
	case gocv.MatTypeCV8U:
		data, err := mat.DataPtrUint8()
		if err != nil {
			return nil, &codec.DecodeError{Path: path, Err: err}
		}
		copy(g.Pix, data)
	case gocv.MatTypeCV16U:
		data, err := mat.DataPtrUint16()
		if err != nil {
			return nil, &codec.DecodeError{Path: path, Err: err}
		}
		for i, v := range data[:len(g.Pix)] {
			if v > 255 {
				v = uint16(labels.Unlabeled)
			}
			g.Pix[i] = uint8(v)
		}
	default:
		return nil, &codec.DecodeError{Path: path, Err: errors.Errorf("unsupported label mat type %v", mat.Type())}
	}

	return g, nil
}

func read(path string, flags gocv.IMReadFlag) (gocv.Mat, error) {
	if _, err := os.Stat(path); err != nil {
		return gocv.Mat{}, &codec.DecodeError{Path: path, Err: err}
	}

	mat := gocv.IMRead(path, flags)
	if mat.Empty() {
		mat.Close()
		return gocv.Mat{}, &codec.DecodeError{Path: path, Err: errors.New("opencv could not read file")}
	}
	return mat, nil
}
