package ndarray

import (
	"fmt"
	"sort"
)

// ChannelMap maps channel names to planes. Each plane keeps its own dtype;
// iteration order is insertion order. The zero value is an empty map ready
// to use.
type ChannelMap struct {
	names  []string
	planes map[string]*Plane
}

// NewChannelMap creates an empty map.
func NewChannelMap() *ChannelMap {
	return &ChannelMap{planes: make(map[string]*Plane)}
}

// Set adds or replaces the plane for a channel. A replaced channel keeps its
// position.
func (m *ChannelMap) Set(name string, p *Plane) {
	if m.planes == nil {
		m.planes = make(map[string]*Plane)
	}
	if _, exists := m.planes[name]; !exists {
		m.names = append(m.names, name)
	}
	m.planes[name] = p
}

// Get returns the plane for a channel, or nil if not present.
func (m *ChannelMap) Get(name string) *Plane {
	return m.planes[name]
}

// Has returns true if the channel is present.
func (m *ChannelMap) Has(name string) bool {
	_, exists := m.planes[name]
	return exists
}

// Delete removes a channel.
func (m *ChannelMap) Delete(name string) {
	if _, exists := m.planes[name]; !exists {
		return
	}
	delete(m.planes, name)
	for i, n := range m.names {
		if n == name {
			m.names = append(m.names[:i], m.names[i+1:]...)
			break
		}
	}
}

// Names returns the channel names in iteration order.
func (m *ChannelMap) Names() []string {
	return append([]string(nil), m.names...)
}

// Len returns the number of channels.
func (m *ChannelMap) Len() int {
	return len(m.names)
}

// Shape returns the (height, width) shared by every plane. An empty map, a
// nil plane or planes of different shapes fail with ErrShapeMismatch.
func (m *ChannelMap) Shape() (int, int, error) {
	if len(m.names) == 0 {
		return 0, 0, fmt.Errorf("%w: no channels", ErrShapeMismatch)
	}
	var h, w int
	for i, name := range m.names {
		p := m.planes[name]
		if p == nil {
			return 0, 0, fmt.Errorf("%w: channel %q has no data", ErrShapeMismatch, name)
		}
		if i == 0 {
			h, w = p.Shape()
			continue
		}
		if p.height != h || p.width != w {
			return 0, 0, fmt.Errorf("%w: channel %q is %dx%d, channel %q is %dx%d",
				ErrShapeMismatch, name, p.height, p.width, m.names[0], h, w)
		}
	}
	return h, w, nil
}

// Sorted returns a map holding the same planes with names in ascending
// byte order.
func (m *ChannelMap) Sorted() *ChannelMap {
	names := m.Names()
	sort.Strings(names)
	out := NewChannelMap()
	for _, name := range names {
		out.Set(name, m.planes[name])
	}
	return out
}

// ToRecord builds a structured array with one field per channel, in
// iteration order. Planes are shared, not copied.
func (m *ChannelMap) ToRecord() (*Record, error) {
	fields := make([]Field, len(m.names))
	planes := make([]*Plane, len(m.names))
	for i, name := range m.names {
		p := m.planes[name]
		if p == nil {
			return nil, fmt.Errorf("%w: channel %q has no data", ErrShapeMismatch, name)
		}
		fields[i] = Field{Name: name, DType: p.dtype}
		planes[i] = p
	}
	return RecordOf(fields, planes)
}

// Equal reports whether both maps hold the same names in the same order with
// equal planes.
func (m *ChannelMap) Equal(o *ChannelMap) bool {
	if len(m.names) != len(o.names) {
		return false
	}
	for i, name := range m.names {
		if o.names[i] != name || !m.planes[name].Equal(o.planes[name]) {
			return false
		}
	}
	return true
}
