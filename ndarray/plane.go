package ndarray

import (
	"fmt"
	"math"

	"github.com/mrjoshuak/go-openexr/half"
	"golang.org/x/exp/constraints"
)

// Plane is one 2-D buffer of a single dtype, stored row-major.
// A Plane is the unit of data stored in one EXR channel.
type Plane struct {
	dtype  DType
	height int
	width  int
	data   any // []half.Half, []float32 or []uint32
}

// NewPlane allocates a zeroed plane.
func NewPlane(dtype DType, height, width int) (*Plane, error) {
	if !dtype.IsValid() {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedDType, dtype)
	}
	if err := checkDims(height, width); err != nil {
		return nil, err
	}
	return &Plane{
		dtype:  dtype,
		height: height,
		width:  width,
		data:   makeSlice(dtype, height*width),
	}, nil
}

// PlaneOf wraps data as a height x width plane without copying it.
func PlaneOf[T Element](data []T, height, width int) (*Plane, error) {
	if err := checkDims(height, width); err != nil {
		return nil, err
	}
	if len(data) != height*width {
		return nil, fmt.Errorf("%w: %d elements for a %dx%d plane", ErrShapeMismatch, len(data), height, width)
	}
	return &Plane{dtype: DTypeOf[T](), height: height, width: width, data: data}, nil
}

// PlaneFrom wraps a typed slice held in an interface. Slices of any element
// type other than half.Half, float32 or uint32 fail with ErrUnsupportedDType.
func PlaneFrom(data any, height, width int) (*Plane, error) {
	switch v := data.(type) {
	case []half.Half:
		return PlaneOf(v, height, width)
	case []float32:
		return PlaneOf(v, height, width)
	case []uint32:
		return PlaneOf(v, height, width)
	}
	_, _, err := dtypeOfSlice(data)
	return nil, err
}

func checkDims(height, width int) error {
	if height <= 0 || width <= 0 {
		return fmt.Errorf("%w: empty plane %dx%d", ErrShapeMismatch, height, width)
	}
	return nil
}

// DType returns the element type.
func (p *Plane) DType() DType { return p.dtype }

// Height returns the number of rows.
func (p *Plane) Height() int { return p.height }

// Width returns the number of columns.
func (p *Plane) Width() int { return p.width }

// Shape returns (height, width).
func (p *Plane) Shape() (int, int) { return p.height, p.width }

// Len returns the number of elements.
func (p *Plane) Len() int { return p.height * p.width }

// Data returns the backing slice: []half.Half, []float32 or []uint32.
func (p *Plane) Data() any { return p.data }

// PlaneData returns the backing slice of p if its element type is T.
func PlaneData[T Element](p *Plane) ([]T, bool) {
	s, ok := p.data.([]T)
	return s, ok
}

// At returns the element at row y, column x widened to float64.
func (p *Plane) At(y, x int) float64 {
	return p.index(y*p.width + x)
}

// Set stores v at row y, column x, converting it to the plane's dtype.
func (p *Plane) Set(y, x int, v float64) {
	p.setIndex(y*p.width+x, v)
}

func (p *Plane) index(i int) float64 {
	switch s := p.data.(type) {
	case []half.Half:
		return s[i].Float64()
	case []float32:
		return float64(s[i])
	case []uint32:
		return float64(s[i])
	}
	return 0
}

func (p *Plane) setIndex(i int, v float64) {
	switch s := p.data.(type) {
	case []half.Half:
		s[i] = half.FromFloat64(v)
	case []float32:
		s[i] = float32(v)
	case []uint32:
		s[i] = toUint32(v)
	}
}

// Clone returns a deep copy.
func (p *Plane) Clone() *Plane {
	c := &Plane{dtype: p.dtype, height: p.height, width: p.width}
	switch s := p.data.(type) {
	case []half.Half:
		c.data = append([]half.Half(nil), s...)
	case []float32:
		c.data = append([]float32(nil), s...)
	case []uint32:
		c.data = append([]uint32(nil), s...)
	}
	return c
}

// Equal reports whether both planes have the same dtype, shape and
// bit-identical elements.
func (p *Plane) Equal(o *Plane) bool {
	if p == nil || o == nil {
		return p == o
	}
	if p.dtype != o.dtype || p.height != o.height || p.width != o.width {
		return false
	}
	switch a := p.data.(type) {
	case []half.Half:
		return equalSlices(a, o.data.([]half.Half))
	case []float32:
		b := o.data.([]float32)
		for i := range a {
			if math.Float32bits(a[i]) != math.Float32bits(b[i]) {
				return false
			}
		}
		return true
	case []uint32:
		return equalSlices(a, o.data.([]uint32))
	}
	return false
}

func equalSlices[T half.Half | uint32](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// AllClose reports whether both planes have the same shape and every pair of
// elements satisfies |a-b| <= atol + rtol*|b|, the numpy allclose rule.
// The dtypes may differ. Two Float32 planes are compared in float32, mixed
// dtypes in float64. NaNs never compare close.
func (p *Plane) AllClose(o *Plane, rtol, atol float64) bool {
	if p.height != o.height || p.width != o.width {
		return false
	}
	if a, ok := PlaneData[float32](p); ok {
		if b, ok := PlaneData[float32](o); ok {
			return allClose(a, b, float32(rtol), float32(atol))
		}
	}
	for i := 0; i < p.Len(); i++ {
		if !closeEnough(p.index(i), o.index(i), rtol, atol) {
			return false
		}
	}
	return true
}

func allClose[T constraints.Float](a, b []T, rtol, atol T) bool {
	for i := range a {
		if !closeEnough(a[i], b[i], rtol, atol) {
			return false
		}
	}
	return true
}

func closeEnough[T constraints.Float](a, b, rtol, atol T) bool {
	if a == b {
		return true
	}
	d := a - b
	if d < 0 {
		d = -d
	}
	mb := b
	if mb < 0 {
		mb = -mb
	}
	return d <= atol+rtol*mb
}

// Cast returns a copy of p converted to dtype. Conversion to Uint32
// truncates toward zero and saturates at the type bounds; NaN becomes 0.
// Casting to the plane's own dtype returns a copy.
func (p *Plane) Cast(dtype DType) (*Plane, error) {
	if dtype == p.dtype {
		return p.Clone(), nil
	}
	c, err := NewPlane(dtype, p.height, p.width)
	if err != nil {
		return nil, err
	}
	if src, ok := PlaneData[half.Half](p); ok {
		if dst, ok := PlaneData[float32](c); ok {
			half.ConvertSliceToFloat32(dst, src)
			return c, nil
		}
	}
	if src, ok := PlaneData[float32](p); ok {
		if dst, ok := PlaneData[half.Half](c); ok {
			half.ConvertSlice32(dst, src)
			return c, nil
		}
	}
	for i := 0; i < p.Len(); i++ {
		c.setIndex(i, p.index(i))
	}
	return c, nil
}

func toUint32(v float64) uint32 {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(v)
}

// String implements fmt.Stringer.
func (p *Plane) String() string {
	return fmt.Sprintf("Plane(%dx%d, %v)", p.height, p.width, p.dtype)
}
