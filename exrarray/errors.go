package exrarray

import (
	"errors"

	"github.com/mrjoshuak/go-exrarray/internal/binding"
	"github.com/mrjoshuak/go-exrarray/ndarray"
)

// Errors returned by this package. Every failure wraps exactly one of these;
// use errors.Is to classify.
var (
	ErrChannelCountMismatch    = errors.New("exrarray: channel count mismatch")
	ErrChannelNotFound         = errors.New("exrarray: channel not found")
	ErrUnsupportedChannelCount = errors.New("exrarray: no default channel names for channel count")
	ErrInvalidConvention       = errors.New("exrarray: invalid channel name convention")
	ErrInvalidChannelName      = errors.New("exrarray: invalid channel name")

	ErrShapeMismatch          = ndarray.ErrShapeMismatch
	ErrDTypeMismatch          = ndarray.ErrDTypeMismatch
	ErrUnsupportedDType       = ndarray.ErrUnsupportedDType
	ErrInvalidStructuredArray = ndarray.ErrInvalidStructuredArray

	ErrFileNotFound    = binding.ErrFileNotFound
	ErrUnsupportedFile = binding.ErrUnsupportedFile
)
