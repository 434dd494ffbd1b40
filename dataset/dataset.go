// Package dataset - Indexed access to street-scene segmentation samples, built on
// the label remapping and transform pipeline.
package dataset

import (
	"math/rand"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/nvr-ai/go-cityscapes/codec"
	"github.com/nvr-ai/go-cityscapes/labels"
	"github.com/nvr-ai/go-cityscapes/preprocess"
)

// Source is the capability set a training loop needs from a dataset.
type Source interface {
	// Len returns the number of samples.
	Len() int
	// Get returns the sample at index.
	Get(index int) (*Sample, error)
}

var _ Source = (*Dataset)(nil)

// Options configures a Dataset. ImagesRoot and LabelsRoot are required; every
// other field has a default.
type Options struct {
	// ImagesRoot is the directory holding <id>_leftImg8bit.png files.
	ImagesRoot string
	// LabelsRoot is the directory holding <id>_gtFine_labelIds.png files.
	LabelsRoot string
	// IDs is the ordered identifier list. It is copied at construction.
	IDs []string
	// Augment enables the random horizontal flip. Defaults to off.
	Augment bool
	// Logger receives debug events. Defaults to a disabled logger.
	Logger *zerolog.Logger
	// Rand is the shared random source used by Get. Defaults to a source seeded with 1.
	Rand *rand.Rand
	// Decoder reads files. Defaults to codec.NewFileDecoder().
	Decoder codec.Decoder
	// Table is the fine-to-coarse table. Defaults to labels.CityscapesToCoarse.
	Table labels.Table
	// Layout maps identifiers to files. Defaults to CityscapesLayout().
	Layout *Layout
	// Transform is the geometry and normalization. Defaults to
	// preprocess.GetCityscapesConfig().
	Transform *preprocess.Config
}

// Dataset maps integer positions to samples. Its configuration is fixed at
// construction; Get may be called from several goroutines.
type Dataset struct {
	ids       []string
	augment   bool
	assembler *Assembler
	coin      *lockedCoin
	logger    zerolog.Logger
}

// New validates the options and builds the dataset.
//
// Construction fails with ErrIncompleteTable when the remapping table does not
// cover the fine label domain, and with ErrInvalidOptions when a root is missing.
//
// @example
//
//	ds, err := dataset.New(dataset.Options{
//	    ImagesRoot: "leftImg8bit/train",
//	    LabelsRoot: "gtFine/train",
//	    IDs:        ids,
//	    Augment:    true,
//	})
func New(opts Options) (*Dataset, error) {
	if opts.ImagesRoot == "" {
		return nil, errors.Wrap(ErrInvalidOptions, "images root is required")
	}
	if opts.LabelsRoot == "" {
		return nil, errors.Wrap(ErrInvalidOptions, "labels root is required")
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	table := opts.Table
	if table == nil {
		table = labels.CityscapesToCoarse
	}
	remapper, err := labels.NewRemapper(table)
	if err != nil {
		return nil, err
	}

	transformConfig := opts.Transform
	if transformConfig == nil {
		transformConfig = preprocess.GetCityscapesConfig()
	}
	transformer, err := preprocess.NewTransformer(transformConfig, logger)
	if err != nil {
		return nil, err
	}

	layout := CityscapesLayout()
	if opts.Layout != nil {
		layout = *opts.Layout
	}

	decoder := opts.Decoder
	if decoder == nil {
		decoder = codec.NewFileDecoder()
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	ids := make([]string, len(opts.IDs))
	copy(ids, opts.IDs)

	logger.Debug().
		Int("samples", len(ids)).
		Bool("augment", opts.Augment).
		Str("images_root", opts.ImagesRoot).
		Str("labels_root", opts.LabelsRoot).
		Msg("dataset initialized")

	return &Dataset{
		ids:     ids,
		augment: opts.Augment,
		assembler: &Assembler{
			imagesRoot:  opts.ImagesRoot,
			labelsRoot:  opts.LabelsRoot,
			layout:      layout,
			decoder:     decoder,
			remapper:    remapper,
			transformer: transformer,
			logger:      logger,
		},
		coin:   &lockedCoin{rng: rng},
		logger: logger,
	}, nil
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.ids)
}

// Augment reports whether the flip augmentation is enabled.
func (d *Dataset) Augment() bool {
	return d.augment
}

// TransformConfig returns a copy of the geometry and normalization applied to
// every sample, e.g. to denormalize image tensors for previews.
func (d *Dataset) TransformConfig() preprocess.Config {
	return *d.assembler.transformer.Config()
}

// ID returns the identifier at index.
func (d *Dataset) ID(index int) (string, error) {
	if index < 0 || index >= len(d.ids) {
		return "", errors.Wrapf(ErrIndexOutOfRange, "index %d, length %d", index, len(d.ids))
	}
	return d.ids[index], nil
}

// Get returns the sample at index, drawing the flip decision from the dataset's
// shared random source.
func (d *Dataset) Get(index int) (*Sample, error) {
	return d.GetWithRand(index, d.coin)
}

// GetWithRand returns the sample at index using the caller's random source, e.g.
// one *rand.Rand per worker goroutine.
func (d *Dataset) GetWithRand(index int, coin preprocess.Coin) (*Sample, error) {
	id, err := d.ID(index)
	if err != nil {
		return nil, err
	}
	return d.assembler.Assemble(id, d.augment, coin)
}

// lockedCoin serializes draws from a shared *rand.Rand, which is not safe for
// concurrent use on its own.
type lockedCoin struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (c *lockedCoin) Float64() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.Float64()
}
