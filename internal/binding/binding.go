// Package binding adapts the go-openexr engine to the small surface the
// array layer needs: write a header and a set of named planes, read a header
// and a set of named planes back.
package binding

import (
	"errors"
	"fmt"

	"github.com/mrjoshuak/go-openexr/exr"

	"github.com/mrjoshuak/go-exrarray/ndarray"
)

// Binding errors
var (
	ErrFileNotFound    = errors.New("binding: file not found")
	ErrUnsupportedFile = errors.New("binding: unsupported file")
	ErrInvalidHeader   = errors.New("binding: invalid header")
)

// Channel is one entry of a header channel list. Zero sampling factors
// mean full resolution.
type Channel struct {
	Name      string
	DType     ndarray.DType
	XSampling int
	YSampling int
}

// Subsampled reports whether the channel is stored below full resolution.
func (c Channel) Subsampled() bool {
	return c.XSampling > 1 || c.YSampling > 1
}

// Header describes the image dimensions and the channels of a file.
// Channels are listed in file order.
type Header struct {
	Width       int
	Height      int
	Channels    []Channel
	Compression exr.Compression
	Tiled       bool
	MultiPart   bool
	// Attributes lists the names of non-structural header attributes.
	Attributes []string
	Owner      string
	Comments   string
}

// Names returns the channel names in header order.
func (h *Header) Names() []string {
	names := make([]string, len(h.Channels))
	for i, ch := range h.Channels {
		names[i] = ch.Name
	}
	return names
}

// Channel returns the entry for name, or nil.
func (h *Header) Channel(name string) *Channel {
	for i := range h.Channels {
		if h.Channels[i].Name == name {
			return &h.Channels[i]
		}
	}
	return nil
}

// Config carries writer settings that are passed to the engine untouched.
type Config struct {
	Compression exr.Compression
	LineOrder   exr.LineOrder
	Attributes  []*exr.Attribute
	Owner       string
	Comments    string
	// Mmap reads files through a memory mapping instead of read calls.
	Mmap bool
}

// DefaultConfig returns ZIP compression with increasing line order.
func DefaultConfig() Config {
	return Config{
		Compression: exr.CompressionZIP,
		LineOrder:   exr.LineOrderIncreasing,
	}
}

// structural lists attributes owned by the writer. They describe the pixel
// layout and cannot be overridden by callers.
var structural = map[string]bool{
	"channels":           true,
	"compression":        true,
	"dataWindow":         true,
	"displayWindow":      true,
	"lineOrder":          true,
	"pixelAspectRatio":   true,
	"screenWindowCenter": true,
	"screenWindowWidth":  true,
	"tiles":              true,
	"type":               true,
	"name":               true,
	"version":            true,
	"chunkCount":         true,
}

// IsStructural reports whether the attribute name is managed by the writer.
func IsStructural(name string) bool {
	return structural[name]
}

// PixelType maps a dtype to the EXR pixel type storing it.
func PixelType(d ndarray.DType) (exr.PixelType, error) {
	switch d {
	case ndarray.Float16:
		return exr.PixelTypeHalf, nil
	case ndarray.Float32:
		return exr.PixelTypeFloat, nil
	case ndarray.Uint32:
		return exr.PixelTypeUint, nil
	}
	return 0, fmt.Errorf("%w: %v", ndarray.ErrUnsupportedDType, d)
}

// DTypeOf maps an EXR pixel type to the dtype holding it.
func DTypeOf(pt exr.PixelType) (ndarray.DType, error) {
	switch pt {
	case exr.PixelTypeHalf:
		return ndarray.Float16, nil
	case exr.PixelTypeFloat:
		return ndarray.Float32, nil
	case exr.PixelTypeUint:
		return ndarray.Uint32, nil
	}
	return ndarray.Invalid, fmt.Errorf("%w: pixel type %v", ndarray.ErrUnsupportedDType, pt)
}
