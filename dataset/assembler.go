package dataset

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-cityscapes/codec"
	"github.com/nvr-ai/go-cityscapes/labels"
	"github.com/nvr-ai/go-cityscapes/preprocess"
)

// Sample is one retrieved training example.
type Sample struct {
	// ID is the identifier the sample was resolved from.
	ID string
	// Image is the normalized float32 image, shape (3, 512, 1024).
	Image *tensor.Dense
	// Labels holds the coarse ids as int64, shape (512, 1024).
	Labels *tensor.Dense
	// Objectness is the float32 {0, 1} mask, shape (512, 1024).
	Objectness *tensor.Dense
	// Flipped reports whether the augmentation mirrored the sample.
	Flipped bool
}

// Assembler builds samples from identifiers: resolve, decode, remap, derive
// objectness, transform.
type Assembler struct {
	imagesRoot  string
	labelsRoot  string
	layout      Layout
	decoder     codec.Decoder
	remapper    *labels.Remapper
	transformer *preprocess.Transformer
	logger      zerolog.Logger
}

// Assemble loads and converts the sample named by id.
//
// Nothing is cached or retried: a missing or corrupt file fails this call with an
// ErrDecode error.
//
// Arguments:
// - id: Relative identifier, e.g. "aachen/aachen_000000_000019".
// - augment: Whether the flip augmentation may run.
// - coin: Random source for the flip decision.
//
// Returns:
// - The sample.
// - An error wrapping ErrDecode when a file cannot be read.
func (a *Assembler) Assemble(id string, augment bool, coin preprocess.Coin) (*Sample, error) {
	imagePath := a.layout.ImagePath(a.imagesRoot, id)
	labelPath := a.layout.LabelPath(a.labelsRoot, id)

	log := a.logger.With().Str("id", id).Logger()
	log.Debug().Str("image_path", imagePath).Str("label_path", labelPath).Msg("loading sample")

	img, err := a.decoder.DecodeRGB(imagePath)
	if err != nil {
		return nil, errors.WithMessagef(err, "sample %q image", id)
	}

	fine, err := a.decoder.DecodeLabels(labelPath)
	if err != nil {
		return nil, errors.WithMessagef(err, "sample %q labels", id)
	}

	log.Debug().
		Int("image_width", img.Bounds().Dx()).
		Int("image_height", img.Bounds().Dy()).
		Int("label_width", fine.Width).
		Int("label_height", fine.Height).
		Msg("sample decoded")

	coarse := a.remapper.Remap(fine)
	objectness := labels.Objectness(coarse)

	if e := log.Debug(); e.Enabled() {
		e.Ints("coarse_values", toInts(coarse.Unique())).
			Ints("objectness_values", toInts(objectness.Unique())).
			Msg("labels remapped")
	}

	result, err := a.transformer.Transform(img, coarse, objectness, augment, coin)
	if err != nil {
		return nil, errors.Wrapf(err, "sample %q transform", id)
	}

	return &Sample{
		ID:         id,
		Image:      result.Image,
		Labels:     result.Labels,
		Objectness: result.Objectness,
		Flipped:    result.Flipped,
	}, nil
}

func toInts(ids []uint8) []int {
	out := make([]int, len(ids))
	for i, v := range ids {
		out[i] = int(v)
	}
	return out
}
