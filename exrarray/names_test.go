package exrarray

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrjoshuak/go-exrarray/ndarray"
)

func TestLetters(t *testing.T) {
	assert.Equal(t, []string{"B", "G", "R"}, Letters("BGR"))
	assert.Equal(t, []string{"R"}, Letters("R"))
	assert.Empty(t, Letters(""))
}

func TestResolve(t *testing.T) {
	conv := NewConventions()
	for _, tc := range []struct {
		name      string
		explicit  []string
		count     int
		expected  []string
		expectErr error
	}{
		{name: "default rgb", count: 3, expected: []string{"R", "G", "B"}},
		{name: "default y", count: 1, expected: []string{"Y"}},
		{name: "explicit letters", explicit: Letters("BGR"), count: 3, expected: []string{"B", "G", "R"}},
		{name: "explicit names", explicit: []string{"depth", "normal.x"}, count: 2, expected: []string{"depth", "normal.x"}},
		{name: "no default", count: 5, expectErr: ErrUnsupportedChannelCount},
		{name: "count mismatch", explicit: Letters("RGB"), count: 5, expectErr: ErrChannelCountMismatch},
		{name: "duplicate", explicit: Letters("RR"), count: 2, expectErr: ErrInvalidChannelName},
		{name: "empty", explicit: []string{"R", ""}, count: 2, expectErr: ErrInvalidChannelName},
	} {
		t.Run(tc.name, func(t *testing.T) {
			names, err := Resolve(tc.explicit, tc.count, conv)
			if tc.expectErr != nil {
				assert.ErrorIs(t, err, tc.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, names)
		})
	}
}

func TestResolveNilConventions(t *testing.T) {
	names, err := Resolve(nil, 4, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"R", "G", "B", "A"}, names)
}

func TestSelectChannels(t *testing.T) {
	available := []string{"B", "G", "R"}

	names, err := SelectChannels(available, Letters("RGB"))
	require.NoError(t, err)
	assert.Equal(t, []string{"R", "G", "B"}, names)

	names, err = SelectChannels(available, []string{"G"})
	require.NoError(t, err)
	assert.Equal(t, []string{"G"}, names)

	_, err = SelectChannels(available, Letters("RZA"))
	require.ErrorIs(t, err, ErrChannelNotFound)
	assert.Contains(t, err.Error(), "[Z A]")
}

func TestSortChannels(t *testing.T) {
	p, _ := ndarray.NewPlane(ndarray.Float32, 1, 1)
	chs := []channel{{"R", p}, {"G", p}, {"B", p}, {"A", p}, {"a", p}, {"Z.b", p}, {"Z", p}}
	sortChannels(chs)

	got := make([]string, len(chs))
	for i, ch := range chs {
		got[i] = ch.name
	}
	assert.Equal(t, []string{"A", "B", "G", "R", "Z", "Z.b", "a"}, got)
}
