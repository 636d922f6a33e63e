package ndarray

import (
	"fmt"
	"sort"
	"strings"
)

// Field describes one named, typed member of a structured array element.
// Shape is the sub-array shape of the member and is empty for scalar
// members; only scalar members can map to an image channel.
type Field struct {
	Name  string
	DType DType
	Shape []int
}

// Record is a 2-D structured array: every element is a fixed, ordered set
// of named fields. Field data is held as one plane per field.
type Record struct {
	fields []Field
	planes []*Plane
	height int
	width  int
}

// NewRecord allocates a zeroed structured array.
func NewRecord(fields []Field, height, width int) (*Record, error) {
	if err := checkFields(fields); err != nil {
		return nil, err
	}
	planes := make([]*Plane, len(fields))
	for i, f := range fields {
		p, err := NewPlane(f.DType, height, width)
		if err != nil {
			return nil, err
		}
		planes[i] = p
	}
	return &Record{fields: cloneFields(fields), planes: planes, height: height, width: width}, nil
}

// RecordOf assembles a structured array from one plane per field. Planes are
// shared, not copied.
func RecordOf(fields []Field, planes []*Plane) (*Record, error) {
	if err := checkFields(fields); err != nil {
		return nil, err
	}
	if len(planes) != len(fields) {
		return nil, fmt.Errorf("%w: %d fields, %d planes", ErrInvalidStructuredArray, len(fields), len(planes))
	}
	var h, w int
	for i, p := range planes {
		if p == nil {
			return nil, fmt.Errorf("%w: field %q has no data", ErrInvalidStructuredArray, fields[i].Name)
		}
		if p.dtype != fields[i].DType {
			return nil, fmt.Errorf("%w: field %q declared %v, data is %v",
				ErrInvalidStructuredArray, fields[i].Name, fields[i].DType, p.dtype)
		}
		if i == 0 {
			h, w = p.Shape()
		} else if p.height != h || p.width != w {
			return nil, fmt.Errorf("%w: field %q is %dx%d, field %q is %dx%d",
				ErrShapeMismatch, fields[i].Name, p.height, p.width, fields[0].Name, h, w)
		}
	}
	return &Record{fields: cloneFields(fields), planes: append([]*Plane(nil), planes...), height: h, width: w}, nil
}

func checkFields(fields []Field) error {
	if len(fields) == 0 {
		return fmt.Errorf("%w: no fields", ErrInvalidStructuredArray)
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return fmt.Errorf("%w: empty field name", ErrInvalidStructuredArray)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: duplicate field %q", ErrInvalidStructuredArray, f.Name)
		}
		seen[f.Name] = true
		if len(f.Shape) != 0 {
			return fmt.Errorf("%w: field %q has sub-array shape %v", ErrInvalidStructuredArray, f.Name, f.Shape)
		}
		if !f.DType.IsValid() {
			return fmt.Errorf("%w: field %q", ErrUnsupportedDType, f.Name)
		}
	}
	return nil
}

func cloneFields(fields []Field) []Field {
	out := make([]Field, len(fields))
	for i, f := range fields {
		out[i] = Field{Name: f.Name, DType: f.DType}
	}
	return out
}

// Fields returns the field descriptors in declaration order.
func (r *Record) Fields() []Field {
	return cloneFields(r.fields)
}

// Names returns the field names in declaration order.
func (r *Record) Names() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.Name
	}
	return names
}

// Field returns the plane holding a field, or nil if absent.
func (r *Record) Field(name string) *Plane {
	for i, f := range r.fields {
		if f.Name == name {
			return r.planes[i]
		}
	}
	return nil
}

// Shape returns (height, width).
func (r *Record) Shape() (int, int) { return r.height, r.width }

// IsSorted reports whether the fields are declared in ascending name order,
// the order an EXR file stores its channels in.
func (r *Record) IsSorted() bool {
	return sort.SliceIsSorted(r.fields, func(i, j int) bool {
		return r.fields[i].Name < r.fields[j].Name
	})
}

// ChannelMap returns the fields as a channel map in declaration order.
// Planes are shared.
func (r *Record) ChannelMap() *ChannelMap {
	m := NewChannelMap()
	for i, f := range r.fields {
		m.Set(f.Name, r.planes[i])
	}
	return m
}

// DTypeString describes the element type the way numpy prints a structured
// dtype, e.g. [('A', '<f4'), ('B', '<u4')].
func (r *Record) DTypeString() string {
	parts := make([]string, len(r.fields))
	for i, f := range r.fields {
		parts[i] = fmt.Sprintf("('%s', '%s')", f.Name, f.DType.TypeStr())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// SameDType reports whether both records declare the same fields in the
// same order.
func (r *Record) SameDType(o *Record) bool {
	if len(r.fields) != len(o.fields) {
		return false
	}
	for i := range r.fields {
		if r.fields[i].Name != o.fields[i].Name || r.fields[i].DType != o.fields[i].DType {
			return false
		}
	}
	return true
}

// Equal reports whether both records have the same dtype, shape and
// bit-identical field data.
func (r *Record) Equal(o *Record) bool {
	if !r.SameDType(o) || r.height != o.height || r.width != o.width {
		return false
	}
	for i := range r.planes {
		if !r.planes[i].Equal(o.planes[i]) {
			return false
		}
	}
	return true
}
