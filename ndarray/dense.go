package ndarray

import (
	"fmt"

	"github.com/mrjoshuak/go-openexr/half"
)

// Dense is a homogeneous array of shape (height, width) or
// (height, width, channels), stored row-major with channels interleaved.
type Dense struct {
	dtype DType
	shape []int
	data  any
}

// NewDense allocates a zeroed array. shape must have 2 or 3 positive entries.
func NewDense(dtype DType, shape ...int) (*Dense, error) {
	if !dtype.IsValid() {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedDType, dtype)
	}
	n, err := checkShape(shape)
	if err != nil {
		return nil, err
	}
	return &Dense{dtype: dtype, shape: append([]int(nil), shape...), data: makeSlice(dtype, n)}, nil
}

// DenseOf wraps data as an array of the given shape without copying it.
func DenseOf[T Element](data []T, shape ...int) (*Dense, error) {
	n, err := checkShape(shape)
	if err != nil {
		return nil, err
	}
	if len(data) != n {
		return nil, fmt.Errorf("%w: %d elements for shape %v", ErrShapeMismatch, len(data), shape)
	}
	return &Dense{dtype: DTypeOf[T](), shape: append([]int(nil), shape...), data: data}, nil
}

// DenseFrom wraps a typed slice held in an interface. Element types other
// than half.Half, float32 and uint32 fail with ErrUnsupportedDType.
func DenseFrom(data any, shape ...int) (*Dense, error) {
	switch v := data.(type) {
	case []half.Half:
		return DenseOf(v, shape...)
	case []float32:
		return DenseOf(v, shape...)
	case []uint32:
		return DenseOf(v, shape...)
	}
	_, _, err := dtypeOfSlice(data)
	return nil, err
}

// FromPlane returns a 2-D array sharing the plane's data.
func FromPlane(p *Plane) *Dense {
	return &Dense{dtype: p.dtype, shape: []int{p.height, p.width}, data: p.data}
}

func checkShape(shape []int) (int, error) {
	if len(shape) != 2 && len(shape) != 3 {
		return 0, fmt.Errorf("%w: %d dimensions, must be 2 or 3", ErrShapeMismatch, len(shape))
	}
	n := 1
	for _, d := range shape {
		if d <= 0 {
			return 0, fmt.Errorf("%w: empty shape %v", ErrShapeMismatch, shape)
		}
		n *= d
	}
	return n, nil
}

// DType returns the element type.
func (d *Dense) DType() DType { return d.dtype }

// Shape returns a copy of the shape.
func (d *Dense) Shape() []int { return append([]int(nil), d.shape...) }

// NDim returns 2 or 3.
func (d *Dense) NDim() int { return len(d.shape) }

// Height returns the size of the first axis.
func (d *Dense) Height() int { return d.shape[0] }

// Width returns the size of the second axis.
func (d *Dense) Width() int { return d.shape[1] }

// Channels returns the size of the last axis, or 1 for a 2-D array.
func (d *Dense) Channels() int {
	if len(d.shape) == 2 {
		return 1
	}
	return d.shape[2]
}

// Data returns the backing slice.
func (d *Dense) Data() any { return d.data }

// DenseData returns the backing slice of d if its element type is T.
func DenseData[T Element](d *Dense) ([]T, bool) {
	s, ok := d.data.([]T)
	return s, ok
}

// At returns the element at (y, x, c) widened to float64. c must be 0 for a
// 2-D array.
func (d *Dense) At(y, x, c int) float64 {
	return d.plane().index(d.offset(y, x, c))
}

// Set stores v at (y, x, c), converting it to the array's dtype.
func (d *Dense) Set(y, x, c int, v float64) {
	d.plane().setIndex(d.offset(y, x, c), v)
}

func (d *Dense) offset(y, x, c int) int {
	ch := d.Channels()
	return (y*d.shape[1]+x)*ch + c
}

// plane views the whole buffer as a flat plane for element access.
func (d *Dense) plane() *Plane {
	return &Plane{dtype: d.dtype, height: 1, width: d.Len(), data: d.data}
}

// Len returns the total number of elements.
func (d *Dense) Len() int {
	return d.shape[0] * d.shape[1] * d.Channels()
}

// Plane returns a copy of channel c as a 2-D plane.
func (d *Dense) Plane(c int) (*Plane, error) {
	ch := d.Channels()
	if c < 0 || c >= ch {
		return nil, fmt.Errorf("%w: channel %d out of range [0,%d)", ErrShapeMismatch, c, ch)
	}
	h, w := d.shape[0], d.shape[1]
	p := &Plane{dtype: d.dtype, height: h, width: w}
	switch s := d.data.(type) {
	case []half.Half:
		p.data = extract(s, ch, c)
	case []float32:
		p.data = extract(s, ch, c)
	case []uint32:
		p.data = extract(s, ch, c)
	}
	return p, nil
}

// Split returns a copy of every channel, in axis order.
func (d *Dense) Split() []*Plane {
	planes := make([]*Plane, d.Channels())
	for c := range planes {
		planes[c], _ = d.Plane(c)
	}
	return planes
}

func extract[T Element](src []T, stride, c int) []T {
	out := make([]T, len(src)/stride)
	for i := range out {
		out[i] = src[i*stride+c]
	}
	return out
}

func interleave[T Element](dst []T, src []T, stride, c int) {
	for i, v := range src {
		dst[i*stride+c] = v
	}
}

// Stack combines planes along a new last axis into a (height, width, n)
// array. All planes must share shape and dtype: stacking never converts
// values, so mixed dtypes fail with ErrDTypeMismatch.
func Stack(planes ...*Plane) (*Dense, error) {
	if len(planes) == 0 {
		return nil, fmt.Errorf("%w: nothing to stack", ErrShapeMismatch)
	}
	first := planes[0]
	for i, p := range planes[1:] {
		if p.dtype != first.dtype {
			return nil, fmt.Errorf("%w: plane %d is %v, plane 0 is %v", ErrDTypeMismatch, i+1, p.dtype, first.dtype)
		}
		if p.height != first.height || p.width != first.width {
			return nil, fmt.Errorf("%w: plane %d is %dx%d, plane 0 is %dx%d",
				ErrShapeMismatch, i+1, p.height, p.width, first.height, first.width)
		}
	}
	n := len(planes)
	d, err := NewDense(first.dtype, first.height, first.width, n)
	if err != nil {
		return nil, err
	}
	for c, p := range planes {
		switch dst := d.data.(type) {
		case []half.Half:
			interleave(dst, p.data.([]half.Half), n, c)
		case []float32:
			interleave(dst, p.data.([]float32), n, c)
		case []uint32:
			interleave(dst, p.data.([]uint32), n, c)
		}
	}
	return d, nil
}

// Equal reports whether both arrays have the same dtype, shape and
// bit-identical elements.
func (d *Dense) Equal(o *Dense) bool {
	if !sameShape(d.shape, o.shape) {
		return false
	}
	return d.plane().Equal(o.plane())
}

// AllClose applies Plane.AllClose element-wise; shapes must match exactly.
func (d *Dense) AllClose(o *Dense, rtol, atol float64) bool {
	if !sameShape(d.shape, o.shape) {
		return false
	}
	return d.plane().AllClose(o.plane(), rtol, atol)
}

func sameShape(a, b []int) bool {
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

// String implements fmt.Stringer.
func (d *Dense) String() string {
	return fmt.Sprintf("Dense(%v, %v)", d.shape, d.dtype)
}
