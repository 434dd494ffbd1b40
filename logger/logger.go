// Package logger builds the zerolog logger injected into the dataset pipeline.
package logger

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// TimeFormat is the console timestamp layout.
const TimeFormat = "02-01-2006 15:04:05.000"

// ErrUnknownLevel is returned for a level name ParseLevel does not recognize.
var ErrUnknownLevel = errors.New("unknown log level")

// ParseLevel maps DEBUG, INFO, WARN, ERROR, FATAL, PANIC and DISABLED (any case)
// onto zerolog levels.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return zerolog.DebugLevel, nil
	case "INFO", "":
		return zerolog.InfoLevel, nil
	case "WARN":
		return zerolog.WarnLevel, nil
	case "ERROR":
		return zerolog.ErrorLevel, nil
	case "FATAL":
		return zerolog.FatalLevel, nil
	case "PANIC":
		return zerolog.PanicLevel, nil
	case "DISABLED":
		return zerolog.Disabled, nil
	default:
		return zerolog.NoLevel, errors.Wrapf(ErrUnknownLevel, "%q", level)
	}
}

// New returns a console logger writing to w at the given level.
//
// Arguments:
// - level: Level name, see ParseLevel.
// - w: Destination, usually os.Stderr.
//
// Returns:
// - The logger, with timestamps and short caller locations.
// - An error wrapping ErrUnknownLevel.
//
// @example
// log, err := logger.New("DEBUG", os.Stderr)
func New(level string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}

	out := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: TimeFormat,
		FormatLevel: func(i interface{}) string {
			return strings.ToUpper(fmt.Sprintf("%-6s", i))
		},
		FormatCaller: func(i interface{}) string {
			s, ok := i.(string)
			if !ok {
				return ""
			}
			return shortCaller(s)
		},
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Caller().Logger(), nil
}

// shortCaller trims "dir/dir/file.go:12" down to "file.go:12".
func shortCaller(s string) string {
	idx := strings.LastIndex(s, ":")
	if idx < 0 {
		return s
	}
	file, line := s[:idx], s[idx+1:]
	if _, err := strconv.Atoi(line); err != nil {
		return s
	}
	if slash := strings.LastIndex(file, "/"); slash >= 0 {
		file = file[slash+1:]
	}
	return file + ":" + line
}
