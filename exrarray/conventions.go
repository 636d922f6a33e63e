package exrarray

import (
	"fmt"
	"sort"
	"strings"
)

// Conventions maps a channel count to the channel names used when the caller
// gives none. Every entry holds exactly as many unique, non-empty names as
// its key.
//
// A Conventions value is not safe for concurrent mutation. Reads and writes
// only read it, so sharing one across goroutines is fine as long as Set is not
// called at the same time.
type Conventions struct {
	names map[int][]string
}

// NewConventions returns the standard table:
//
//	1: Y
//	3: R G B
//	4: R G B A
func NewConventions() *Conventions {
	return &Conventions{names: map[int][]string{
		1: {"Y"},
		3: {"R", "G", "B"},
		4: {"R", "G", "B", "A"},
	}}
}

// DefaultConventions is used by calls without WithConventions. It is
// mutated by SetDefaultChannelNames; callers that change it while other
// goroutines read or write images must synchronize themselves.
var DefaultConventions = NewConventions()

// SetDefaultChannelNames sets the default names for count channels in
// DefaultConventions.
func SetDefaultChannelNames(count int, names ...string) error {
	return DefaultConventions.Set(count, names...)
}

// DefaultChannelNames returns the default names for count channels from
// DefaultConventions.
func DefaultChannelNames(count int) ([]string, error) {
	return DefaultConventions.Names(count)
}

// Set registers names for count channels, replacing any existing entry.
func (c *Conventions) Set(count int, names ...string) error {
	if count < 1 {
		return fmt.Errorf("%w: channel count %d", ErrInvalidConvention, count)
	}
	if len(names) != count {
		return fmt.Errorf("%w: %d names %v for %d channels", ErrInvalidConvention, len(names), names, count)
	}
	if err := checkNames(names); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConvention, err)
	}
	if c.names == nil {
		c.names = make(map[int][]string)
	}
	c.names[count] = append([]string(nil), names...)
	return nil
}

// Names returns a copy of the names for count channels.
func (c *Conventions) Names(count int) ([]string, error) {
	names, ok := c.names[count]
	if !ok {
		return nil, fmt.Errorf("%w: %d (defined for %v); register names with SetDefaultChannelNames",
			ErrUnsupportedChannelCount, count, c.Counts())
	}
	return append([]string(nil), names...), nil
}

// Counts returns the channel counts with registered names, ascending.
func (c *Conventions) Counts() []int {
	counts := make([]int, 0, len(c.names))
	for n := range c.names {
		counts = append(counts, n)
	}
	sort.Ints(counts)
	return counts
}

// Clone returns an independent copy.
func (c *Conventions) Clone() *Conventions {
	out := &Conventions{names: make(map[int][]string, len(c.names))}
	for n, names := range c.names {
		out.names[n] = append([]string(nil), names...)
	}
	return out
}

// String implements fmt.Stringer.
func (c *Conventions) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, n := range c.Counts() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d: %s", n, strings.Join(c.names[n], ","))
	}
	b.WriteByte('}')
	return b.String()
}
