package util

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// LoadIdentifiers reads a sample identifier list, one identifier per line.
//
// Surrounding whitespace is trimmed; blank lines and lines starting with '#'
// are skipped. Order is preserved.
//
// Arguments:
// - path: Path to the list file.
//
// Returns:
// - []string: The identifiers, e.g. "aachen/aachen_000000_000019".
// - error: Error if the file cannot be read.
func LoadIdentifiers(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open identifier list")
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, filepath.ToSlash(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read identifier list %s", path)
	}

	return ids, nil
}

// ScanIdentifiers lists the samples under an images root laid out as
// <root>/<city>/<id><suffix>.
//
// Arguments:
// - root: The images root, e.g. "leftImg8bit/train".
// - suffix: The image file suffix, e.g. "_leftImg8bit.png".
//
// Returns:
// - []string: Sorted identifiers of the form "<city>/<id>".
// - error: Error if the root cannot be read.
func ScanIdentifiers(root, suffix string) ([]string, error) {
	cities, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrap(err, "scan images root")
	}

	var ids []string
	for _, city := range cities {
		if !city.IsDir() {
			continue
		}

		files, err := os.ReadDir(filepath.Join(root, city.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "scan city %s", city.Name())
		}
		for _, file := range files {
			if file.IsDir() || !strings.HasSuffix(file.Name(), suffix) {
				continue
			}
			ids = append(ids, city.Name()+"/"+strings.TrimSuffix(file.Name(), suffix))
		}
	}

	sort.Strings(ids)
	return ids, nil
}
