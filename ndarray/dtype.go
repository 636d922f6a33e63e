// Package ndarray provides the dense numeric containers exchanged with EXR files.
//
// Three element types are supported, matching the pixel types an OpenEXR
// channel can hold:
//
//	Float16  half.Half  (EXR "half")
//	Float32  float32    (EXR "float")
//	Uint32   uint32     (EXR "uint")
//
// Data is stored row-major (C order), the same layout numpy uses, so a Dense
// array of shape (height, width, channels) keeps the channels of one pixel
// adjacent in memory.
package ndarray

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mrjoshuak/go-openexr/half"
)

// Container errors
var (
	ErrUnsupportedDType       = errors.New("ndarray: unsupported dtype")
	ErrShapeMismatch          = errors.New("ndarray: shape mismatch")
	ErrDTypeMismatch          = errors.New("ndarray: dtype mismatch")
	ErrInvalidStructuredArray = errors.New("ndarray: invalid structured array")
)

// DType identifies the element type of a buffer.
type DType uint8

const (
	Invalid DType = iota
	Float16
	Float32
	Uint32
)

// Element is the set of Go types that back a supported DType.
type Element interface {
	half.Half | float32 | uint32
}

// String returns the numpy name of the dtype.
func (d DType) String() string {
	switch d {
	case Float16:
		return "float16"
	case Float32:
		return "float32"
	case Uint32:
		return "uint32"
	default:
		return "invalid"
	}
}

// Size returns the number of bytes in one element, or 0 for Invalid.
func (d DType) Size() int {
	switch d {
	case Float16:
		return 2
	case Float32, Uint32:
		return 4
	default:
		return 0
	}
}

// TypeStr returns the little-endian numpy array-protocol type string.
func (d DType) TypeStr() string {
	switch d {
	case Float16:
		return "<f2"
	case Float32:
		return "<f4"
	case Uint32:
		return "<u4"
	default:
		return ""
	}
}

// IsValid reports whether d is one of the supported element types.
func (d DType) IsValid() bool {
	return d == Float16 || d == Float32 || d == Uint32
}

// ParseDType accepts numpy names ("float32"), EXR pixel type names ("half")
// and numpy typestrs ("<f4", "=u4"). Any other type, including valid numpy
// types EXR cannot store such as "float64", is ErrUnsupportedDType.
func ParseDType(s string) (DType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "float16", "half", "f2", "<f2", "=f2":
		return Float16, nil
	case "float32", "float", "f4", "<f4", "=f4":
		return Float32, nil
	case "uint32", "uint", "u4", "<u4", "=u4":
		return Uint32, nil
	}
	return Invalid, fmt.Errorf("%w: %q", ErrUnsupportedDType, s)
}

// MarshalText implements encoding.TextMarshaler using the numpy name.
func (d DType) MarshalText() ([]byte, error) {
	if !d.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedDType, uint8(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It accepts every
// spelling ParseDType does.
func (d *DType) UnmarshalText(text []byte) error {
	v, err := ParseDType(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// DTypeOf returns the DType backing the element type T.
func DTypeOf[T Element]() DType {
	var zero T
	switch any(zero).(type) {
	case half.Half:
		return Float16
	case float32:
		return Float32
	default:
		return Uint32
	}
}

// dtypeOfSlice identifies a typed slice held in an interface.
func dtypeOfSlice(data any) (DType, int, error) {
	switch v := data.(type) {
	case []half.Half:
		return Float16, len(v), nil
	case []float32:
		return Float32, len(v), nil
	case []uint32:
		return Uint32, len(v), nil
	case nil:
		return Invalid, 0, fmt.Errorf("%w: nil data", ErrUnsupportedDType)
	default:
		return Invalid, 0, fmt.Errorf("%w: %T", ErrUnsupportedDType, data)
	}
}

// makeSlice allocates a zeroed slice of n elements of the given dtype.
func makeSlice(d DType, n int) any {
	switch d {
	case Float16:
		return make([]half.Half, n)
	case Float32:
		return make([]float32, n)
	case Uint32:
		return make([]uint32, n)
	}
	return nil
}
