package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/nvr-ai/go-cityscapes/codec"
	"github.com/nvr-ai/go-cityscapes/codec/opencv"
	"github.com/nvr-ai/go-cityscapes/config"
	"github.com/nvr-ai/go-cityscapes/dataset"
	"github.com/nvr-ai/go-cityscapes/images"
	"github.com/nvr-ai/go-cityscapes/labels"
	"github.com/nvr-ai/go-cityscapes/logger"
	"github.com/nvr-ai/go-cityscapes/preprocess"
	"github.com/nvr-ai/go-cityscapes/util"
)

// options holds the command line flags.
type options struct {
	configPath string
	index      int
	count      int
	workers    int
	dumpDir    string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to a config file (CITYSCAPES_* env vars also apply)")
	flag.IntVar(&opts.index, "index", 0, "First sample index to retrieve")
	flag.IntVar(&opts.count, "count", 1, "Number of consecutive samples to retrieve")
	flag.IntVar(&opts.workers, "workers", 1, "Number of goroutines retrieving samples")
	flag.StringVar(&opts.dumpDir, "dump", "", "Directory to write image, label and objectness previews to")
	flag.Parse()

	if err := run(opts, os.Stderr); err != nil {
		// Failures after logger construction have already been logged.
		if !errors.Is(err, errLogged) {
			fmt.Fprintf(os.Stderr, "cityscapes-inspect: %v\n", err)
		}
		os.Exit(1)
	}
}

// errLogged marks a failure that run has already reported through the logger.
var errLogged = errors.New("inspection failed")

func run(opts options, out io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel, out)
	if err != nil {
		return err
	}

	if err := execute(cfg, opts, log); err != nil {
		log.Error().Err(err).Msg("inspection failed")
		return errors.WithMessage(errLogged, err.Error())
	}
	return nil
}

func execute(cfg *config.Config, opts options, log zerolog.Logger) error {
	var decoder codec.Decoder = codec.NewFileDecoder()
	if cfg.Decoder == config.DecoderOpenCV {
		decoder = opencv.New()
	}

	ids, err := loadIdentifiers(cfg)
	if err != nil {
		return err
	}

	ds, err := dataset.New(dataset.Options{
		ImagesRoot: cfg.ImagesRoot,
		LabelsRoot: cfg.LabelsRoot,
		IDs:        ids,
		Augment:    cfg.Augment,
		Logger:     &log,
		Rand:       rand.New(rand.NewSource(cfg.Seed)),
		Decoder:    decoder,
		Layout:     &dataset.Layout{ImageSuffix: cfg.ImageSuffix, LabelSuffix: cfg.LabelSuffix},
	})
	if err != nil {
		return err
	}

	log.Info().
		Int("samples", ds.Len()).
		Bool("augment", ds.Augment()).
		Str("decoder", cfg.Decoder).
		Msg("dataset ready")

	if opts.count <= 0 {
		return nil
	}
	if opts.dumpDir != "" {
		if err := os.MkdirAll(opts.dumpDir, 0o755); err != nil {
			return errors.Wrap(err, "create dump directory")
		}
	}

	return inspect(ds, cfg.Seed, opts, log)
}

func loadIdentifiers(cfg *config.Config) ([]string, error) {
	if cfg.IDsFile != "" {
		return util.LoadIdentifiers(cfg.IDsFile)
	}
	return util.ScanIdentifiers(cfg.ImagesRoot, cfg.ImageSuffix)
}

// inspect retrieves opts.count samples starting at opts.index. With more than
// one worker each goroutine draws flips from its own random source.
func inspect(ds *dataset.Dataset, seed int64, opts options, log zerolog.Logger) error {
	workers := opts.workers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	errs := make([]error, workers)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()

			var coin preprocess.Coin
			if workers > 1 {
				coin = rand.New(rand.NewSource(seed + int64(w) + 1))
			}

			for index := range jobs {
				if errs[w] != nil {
					continue
				}
				errs[w] = inspectOne(ds, index, coin, opts.dumpDir, log)
			}
		}(w)
	}

	for i := 0; i < opts.count; i++ {
		jobs <- opts.index + i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func inspectOne(ds *dataset.Dataset, index int, coin preprocess.Coin, dumpDir string, log zerolog.Logger) error {
	start := time.Now()

	var (
		s   *dataset.Sample
		err error
	)
	if coin == nil {
		s, err = ds.Get(index)
	} else {
		s, err = ds.GetWithRand(index, coin)
	}
	if err != nil {
		return err
	}

	coarse, objectness := sampleGrids(s)
	preview := previewImage(ds, s, coarse.Width, coarse.Height)

	log.Info().
		Int("index", index).
		Str("id", s.ID).
		Ints("image_shape", s.Image.Shape()).
		Ints("labels_shape", s.Labels.Shape()).
		Ints("objectness_shape", s.Objectness.Shape()).
		Bool("flipped", s.Flipped).
		Str("classes", classNames(coarse.Unique())).
		Float64("objectness_ratio", objectnessRatio(objectness)).
		Str("image_md5", images.ComputeChecksum(preview)).
		Str("labels_md5", images.ComputeGridChecksum(coarse)).
		Dur("elapsed", time.Since(start)).
		Msg("sample")

	if dumpDir == "" {
		return nil
	}
	return dump(s.ID, preview, coarse, objectness, dumpDir)
}

// previewImage denormalizes the image tensor back to 8-bit RGB with the
// dataset's own normalization statistics.
func previewImage(ds *dataset.Dataset, s *dataset.Sample, width, height int) *image.RGBA {
	transform := ds.TransformConfig()
	return images.Denormalize(s.Image.Data().([]float32), width, height,
		transform.MeanValues, transform.StdValues)
}

// sampleGrids turns the label and objectness tensors back into grids.
func sampleGrids(s *dataset.Sample) (*labels.Grid, *labels.Grid) {
	shape := s.Labels.Shape()
	height, width := shape[0], shape[1]

	coarse := labels.NewGrid(width, height)
	for i, v := range s.Labels.Data().([]int64) {
		coarse.Pix[i] = uint8(v)
	}

	objectness := labels.NewGrid(width, height)
	for i, v := range s.Objectness.Data().([]float32) {
		if v > 0 {
			objectness.Pix[i] = 1
		}
	}

	return coarse, objectness
}

func classNames(ids []uint8) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = labels.CoarseName(id)
	}
	return strings.Join(names, ",")
}

func objectnessRatio(g *labels.Grid) float64 {
	if len(g.Pix) == 0 {
		return 0
	}
	return float64(g.Histogram()[1]) / float64(len(g.Pix))
}

// dump writes <id>_image.png, <id>_labels.png and <id>_objectness.png, with
// the "/" of the identifier replaced by "_".
func dump(id string, img *image.RGBA, coarse, objectness *labels.Grid, dir string) error {
	base := filepath.Join(dir, strings.ReplaceAll(id, "/", "_"))

	files := map[string]image.Image{
		base + "_image.png":      img,
		base + "_labels.png":     images.Colorize(coarse),
		base + "_objectness.png": images.MaskImage(objectness),
	}
	for path, img := range files {
		if err := writePNG(path, img); err != nil {
			return err
		}
	}
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create preview")
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return errors.Wrapf(err, "encode %s", path)
	}
	return f.Close()
}
