// Package config - Settings for the dataset tools, read from an optional file and
// CITYSCAPES_* environment variables.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every key when reading the environment, e.g.
// images_root is read from CITYSCAPES_IMAGES_ROOT.
const EnvPrefix = "CITYSCAPES"

// ErrInvalidConfig is returned when a required setting is missing or malformed.
var ErrInvalidConfig = errors.New("invalid config")

// Decoder backends.
const (
	DecoderStd    = "std"
	DecoderOpenCV = "opencv"
)

// Config holds the settings.
type Config struct {
	// ImagesRoot is the directory of <city>/<id>_leftImg8bit.png files.
	ImagesRoot string `mapstructure:"images_root"`
	// LabelsRoot is the directory of <city>/<id>_gtFine_labelIds.png files.
	LabelsRoot string `mapstructure:"labels_root"`
	// IDsFile lists one identifier per line. When empty the images root is scanned.
	IDsFile string `mapstructure:"ids_file"`
	// Augment enables the random horizontal flip.
	Augment bool `mapstructure:"augment"`
	// Seed seeds the dataset's shared random source.
	Seed int64 `mapstructure:"seed"`
	// LogLevel is one of DEBUG, INFO, WARN, ERROR, DISABLED.
	LogLevel string `mapstructure:"log_level"`
	// Decoder selects the file decoder backend: "std" or "opencv".
	Decoder string `mapstructure:"decoder"`
	// ImageSuffix is appended to an identifier to name its image file.
	ImageSuffix string `mapstructure:"image_suffix"`
	// LabelSuffix is appended to an identifier to name its label file.
	LabelSuffix string `mapstructure:"label_suffix"`
}

var defaults = map[string]any{
	"images_root":  "",
	"labels_root":  "",
	"ids_file":     "",
	"augment":      false,
	"seed":         int64(1),
	"log_level":    "INFO",
	"decoder":      DecoderStd,
	"image_suffix": "_leftImg8bit.png",
	"label_suffix": "_gtFine_labelIds.png",
}

// Load reads the settings.
//
// Values come from, in increasing priority: defaults, the file at path (skipped
// when path is empty) and CITYSCAPES_* environment variables.
//
// Arguments:
// - path: Optional YAML, JSON or TOML file.
//
// Returns:
// - The validated settings.
// - An error wrapping ErrInvalidConfig, or a read error for an unreadable file.
//
// @example
// cfg, err := config.Load("cityscapes.yaml")
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "decode: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that both roots are set and the decoder is known.
func (c *Config) Validate() error {
	if c.ImagesRoot == "" {
		return errors.Wrap(ErrInvalidConfig, "images_root is required")
	}
	if c.LabelsRoot == "" {
		return errors.Wrap(ErrInvalidConfig, "labels_root is required")
	}
	switch c.Decoder {
	case DecoderStd, DecoderOpenCV:
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown decoder %q", c.Decoder)
	}
	if c.ImageSuffix == "" || c.LabelSuffix == "" {
		return errors.Wrap(ErrInvalidConfig, "file suffixes must not be empty")
	}
	return nil
}
