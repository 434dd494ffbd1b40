// Package preprocess - Turns a decoded image and its coarse label and objectness
// grids into aligned, fixed-size training tensors.
package preprocess

import (
	"fmt"
	"image"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-cityscapes/images"
	"github.com/nvr-ai/go-cityscapes/labels"
)

// ErrInvalidConfig is returned for a transform configuration that cannot produce tensors.
var ErrInvalidConfig = errors.New("invalid transform configuration")

// NormalizationType defines how pixel values are normalized.
type NormalizationType int

const (
	// NormalizeZeroToOne scales pixel values to [0, 1].
	NormalizeZeroToOne NormalizationType = iota
	// NormalizeStandardize scales to [0, 1] and then applies (v - mean) / std per channel.
	NormalizeStandardize
)

// Config defines the fixed geometry and photometric normalization of samples.
type Config struct {
	// Name of the configuration for debugging purposes.
	Name string
	// InputWidth is the width every sample is resized to.
	InputWidth int
	// InputHeight is the height every sample is resized to.
	InputHeight int
	// ImageFilter is the interpolation used for the image. Label grids always use
	// nearest-neighbor regardless of this setting.
	ImageFilter images.ResampleFilter
	// NormalizationType defines how pixel values are normalized.
	NormalizationType NormalizationType
	// MeanValues are per-channel means on the [0, 1] scale.
	MeanValues [3]float32
	// StdValues are per-channel standard deviations on the [0, 1] scale.
	StdValues [3]float32
	// FlipProbability is the chance of mirroring a sample when augmentation is on.
	FlipProbability float64
}

// GetCityscapesConfig returns the 512x1024 configuration with ImageNet statistics.
//
// @example
// transformer, err := NewTransformer(GetCityscapesConfig(), logger)
func GetCityscapesConfig() *Config {
	return &Config{
		Name:              "cityscapes-512x1024",
		InputWidth:        1024,
		InputHeight:       512,
		ImageFilter:       images.BilinearFilter,
		NormalizationType: NormalizeStandardize,
		MeanValues:        [3]float32{0.485, 0.456, 0.406},
		StdValues:         [3]float32{0.229, 0.224, 0.225},
		FlipProbability:   0.5,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.InputWidth <= 0 || c.InputHeight <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "invalid input dimensions: %dx%d", c.InputWidth, c.InputHeight)
	}
	if c.FlipProbability < 0 || c.FlipProbability > 1 {
		return errors.Wrapf(ErrInvalidConfig, "flip probability %v outside [0, 1]", c.FlipProbability)
	}
	if c.NormalizationType == NormalizeStandardize {
		for i, s := range c.StdValues {
			if s == 0 {
				return errors.Wrapf(ErrInvalidConfig, "std of channel %d is zero", i)
			}
		}
	}
	return nil
}

// Coin is the random source consulted for the flip decision. *rand.Rand satisfies it.
type Coin interface {
	Float64() float64
}

// Result holds the aligned tensors of one sample.
type Result struct {
	// Image is the normalized float32 image, shape (3, H, W).
	Image *tensor.Dense
	// Labels holds the coarse ids as int64, shape (H, W).
	Labels *tensor.Dense
	// Objectness is the float32 {0, 1} mask, shape (H, W).
	Objectness *tensor.Dense
	// Flipped reports whether the sample was mirrored.
	Flipped bool
}

// Transformer applies the resize, flip and tensor conversion steps.
//
// A Transformer holds only immutable configuration and may be shared across
// goroutines; the Coin passed to Transform is the caller's responsibility.
type Transformer struct {
	config *Config
	logger zerolog.Logger
}

// NewTransformer creates a transformer with the given configuration.
//
// Arguments:
// - config: The transform configuration.
// - logger: Receives debug events; pass zerolog.Nop() to silence them.
//
// Returns:
// - The transformer.
// - ErrInvalidConfig (wrapped) for an unusable configuration.
func NewTransformer(config *Config, logger zerolog.Logger) (*Transformer, error) {
	if config == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "config is nil")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Transformer{config: config, logger: logger}, nil
}

// Config returns the transformer's configuration.
func (p *Transformer) Config() *Config {
	return p.config
}

// Transform resizes, optionally mirrors, and converts one sample.
//
// The steps run in a fixed order: bilinear resize of the image, nearest-neighbor
// resize of both grids, at most one coin draw shared by all three when augment is
// set, then tensor conversion with normalization applied to the image only.
//
// Arguments:
// - img: The decoded RGB image, any size.
// - coarse: The remapped coarse label grid.
// - objectness: The objectness grid derived from coarse.
// - augment: Whether the flip augmentation may run.
// - coin: Random source for the flip; unused when augment is false.
//
// Returns:
// - The sample tensors.
// - An error when inputs are missing or the two grids disagree in shape.
func (p *Transformer) Transform(img image.Image, coarse, objectness *labels.Grid, augment bool, coin Coin) (*Result, error) {
	if err := p.validateInput(img, coarse, objectness, augment, coin); err != nil {
		return nil, errors.Wrap(err, "input validation failed")
	}

	w, h := p.config.InputWidth, p.config.InputHeight

	if b := img.Bounds(); b.Dx() != coarse.Width || b.Dy() != coarse.Height {
		p.logger.Warn().
			Str("image", fmt.Sprintf("%dx%d", b.Dx(), b.Dy())).
			Str("labels", fmt.Sprintf("%dx%d", coarse.Width, coarse.Height)).
			Msg("image and label sizes differ, both are resized independently")
	}

	resized := images.Resize(img, w, h, p.config.ImageFilter)
	coarse = images.ResizeGridNearest(coarse, w, h)
	objectness = images.ResizeGridNearest(objectness, w, h)

	p.logger.Debug().Int("width", w).Int("height", h).Msg("resized to fixed size")

	flipped := false
	if augment && coin.Float64() < p.config.FlipProbability {
		resized = images.FlipHorizontal(resized)
		coarse = images.FlipGridHorizontal(coarse)
		objectness = images.FlipGridHorizontal(objectness)
		flipped = true
		p.logger.Debug().Msg("horizontal flip applied")
	}

	data := p.imageToTensor(resized)
	p.normalize(data)

	result := &Result{
		Image:      tensor.New(tensor.WithShape(3, h, w), tensor.WithBacking(data)),
		Labels:     tensor.New(tensor.WithShape(h, w), tensor.WithBacking(gridToInt64(coarse))),
		Objectness: tensor.New(tensor.WithShape(h, w), tensor.WithBacking(gridToFloat32(objectness))),
		Flipped:    flipped,
	}

	p.logger.Debug().
		Ints("image_shape", []int(result.Image.Shape())).
		Ints("labels_shape", []int(result.Labels.Shape())).
		Ints("objectness_shape", []int(result.Objectness.Shape())).
		Msg("sample tensors ready")

	return result, nil
}

func (p *Transformer) validateInput(img image.Image, coarse, objectness *labels.Grid, augment bool, coin Coin) error {
	if img == nil {
		return errors.New("image is nil")
	}
	if coarse == nil || objectness == nil {
		return errors.New("label grids are nil")
	}
	if coarse.Width != objectness.Width || coarse.Height != objectness.Height {
		return errors.Errorf("label grid %dx%d and objectness grid %dx%d differ",
			coarse.Width, coarse.Height, objectness.Width, objectness.Height)
	}
	if b := img.Bounds(); b.Empty() || coarse.Width == 0 || coarse.Height == 0 {
		return errors.Errorf("empty input: image %dx%d, labels %dx%d", b.Dx(), b.Dy(), coarse.Width, coarse.Height)
	}
	if augment && coin == nil {
		return errors.New("augmentation requested without a random source")
	}
	return nil
}

// imageToTensor converts an RGB image into CHW float32 data on the [0, 255] scale.
func (p *Transformer) imageToTensor(img *image.RGBA) []float32 {
	width, height := img.Bounds().Dx(), img.Bounds().Dy()
	plane := width * height
	data := make([]float32, 3*plane)

	images.Parallel(height, func(partStart, partEnd int) {
		for y := partStart; y < partEnd; y++ {
			si := img.PixOffset(0, y)
			for x := 0; x < width; x++ {
				i := y*width + x
				data[i] = float32(img.Pix[si+0])
				data[plane+i] = float32(img.Pix[si+1])
				data[2*plane+i] = float32(img.Pix[si+2])
				si += 4
			}
		}
	})

	return data
}

// normalize applies normalization to CHW data in-place.
func (p *Transformer) normalize(data []float32) {
	plane := len(data) / 3

	for c := 0; c < 3; c++ {
		channel := data[c*plane : (c+1)*plane]
		switch p.config.NormalizationType {
		case NormalizeStandardize:
			mean := p.config.MeanValues[c]
			std := p.config.StdValues[c]
			for i, v := range channel {
				channel[i] = (v/255.0 - mean) / std
			}
		default:
			for i, v := range channel {
				channel[i] = v / 255.0
			}
		}
	}
}

func gridToInt64(g *labels.Grid) []int64 {
	out := make([]int64, len(g.Pix))
	for i, v := range g.Pix {
		out[i] = int64(v)
	}
	return out
}

func gridToFloat32(g *labels.Grid) []float32 {
	out := make([]float32, len(g.Pix))
	for i, v := range g.Pix {
		out[i] = float32(v)
	}
	return out
}
