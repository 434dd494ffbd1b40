package codec

import (
	"path/filepath"
	"strings"
)

// ImageFormat represents supported image formats
type ImageFormat string

const (
	FormatJPEG ImageFormat = "jpeg"
	FormatWebP ImageFormat = "webp"
	FormatPNG  ImageFormat = "png"
)

// FormatFromPath infers the format from a file extension. Unknown extensions
// return "" and are left to content sniffing.
func FormatFromPath(path string) ImageFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return FormatJPEG
	case ".webp":
		return FormatWebP
	case ".png":
		return FormatPNG
	default:
		return ""
	}
}
