package exrarray

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConventions(t *testing.T) {
	c := NewConventions()
	assert.Equal(t, []int{1, 3, 4}, c.Counts())
	for _, tc := range []struct {
		count    int
		expected []string
	}{
		{1, []string{"Y"}},
		{3, []string{"R", "G", "B"}},
		{4, []string{"R", "G", "B", "A"}},
	} {
		names, err := c.Names(tc.count)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, names)
	}

	_, err := c.Names(2)
	assert.ErrorIs(t, err, ErrUnsupportedChannelCount)
	assert.Equal(t, "{1: Y, 3: R,G,B, 4: R,G,B,A}", c.String())
}

func TestConventionsSet(t *testing.T) {
	for _, tc := range []struct {
		name      string
		count     int
		names     []string
		expectErr bool
	}{
		{name: "new count", count: 2, names: []string{"X", "Y"}},
		{name: "override", count: 3, names: []string{"B", "G", "R"}},
		{name: "long names", count: 2, names: []string{"diffuse.R", "diffuse.G"}},
		{name: "too few", count: 3, names: []string{"X", "Y"}, expectErr: true},
		{name: "too many", count: 1, names: []string{"X", "Y"}, expectErr: true},
		{name: "duplicate", count: 2, names: []string{"X", "X"}, expectErr: true},
		{name: "empty name", count: 2, names: []string{"X", ""}, expectErr: true},
		{name: "zero count", count: 0, names: nil, expectErr: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := NewConventions()
			err := c.Set(tc.count, tc.names...)
			if tc.expectErr {
				assert.ErrorIs(t, err, ErrInvalidConvention)
				return
			}
			require.NoError(t, err)
			names, err := c.Names(tc.count)
			require.NoError(t, err)
			assert.Equal(t, tc.names, names)
		})
	}
}

func TestConventionsCopies(t *testing.T) {
	c := NewConventions()
	names, _ := c.Names(3)
	names[0] = "Z"
	again, _ := c.Names(3)
	assert.Equal(t, "R", again[0], "Names returns a copy")

	clone := c.Clone()
	require.NoError(t, clone.Set(3, "X", "Y", "Z"))
	orig, _ := c.Names(3)
	assert.Equal(t, []string{"R", "G", "B"}, orig, "Clone is independent")

	var zero Conventions
	require.NoError(t, zero.Set(1, "L"))
	l, err := zero.Names(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"L"}, l)
}

func TestSetDefaultChannelNames(t *testing.T) {
	saved := DefaultConventions
	t.Cleanup(func() { DefaultConventions = saved })
	DefaultConventions = NewConventions()

	_, err := DefaultChannelNames(2)
	assert.ErrorIs(t, err, ErrUnsupportedChannelCount)

	require.NoError(t, SetDefaultChannelNames(2, "X", "Y"))
	names, err := DefaultChannelNames(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y"}, names)

	assert.ErrorIs(t, SetDefaultChannelNames(2, "X"), ErrInvalidConvention)
}
