package dataset

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-cityscapes/codec"
	"github.com/nvr-ai/go-cityscapes/labels"
)

var (
	// ErrIndexOutOfRange is returned by Get for an index outside [0, Len()).
	ErrIndexOutOfRange = errors.New("sample index out of range")
	// ErrInvalidOptions is returned by New when a required option is missing.
	ErrInvalidOptions = errors.New("invalid dataset options")
	// ErrDecode is the decode failure kind, re-exported from codec.
	ErrDecode = codec.ErrDecode
	// ErrIncompleteTable is the remapping configuration failure, re-exported from labels.
	ErrIncompleteTable = labels.ErrIncompleteTable
)
