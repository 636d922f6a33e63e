package exrarray

import (
	"fmt"
	"testing"

	"github.com/mrjoshuak/go-openexr/exr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrjoshuak/go-exrarray/ndarray"
)

func TestImWriteImReadRoundTrip(t *testing.T) {
	for _, dtype := range []ndarray.DType{ndarray.Float32, ndarray.Uint32, ndarray.Float16} {
		for _, shape := range [][]int{{12, 30}, {12, 30, 1}, {12, 30, 3}, {12, 30, 4}} {
			t.Run(fmt.Sprintf("%v/%v", dtype, shape), func(t *testing.T) {
				path := tempPath(t)
				img := randomDense(t, dtype, shape...)
				require.NoError(t, ImWrite(path, img))

				back, err := ImRead(path)
				require.NoError(t, err)
				if len(shape) == 3 && shape[2] == 1 {
					// a single channel always reads back as 2-D
					assert.Equal(t, []int{12, 30}, back.Shape())
					assert.True(t, img.Split()[0].Equal(back.Split()[0]))
					return
				}
				assert.True(t, img.Equal(back), "round trip of %v", img)
			})
		}
	}
}

func TestRoundTripCompression(t *testing.T) {
	for _, c := range []exr.Compression{exr.CompressionNone, exr.CompressionZIP, exr.CompressionPIZ} {
		t.Run(c.String(), func(t *testing.T) {
			path := tempPath(t)
			img := randomDense(t, ndarray.Float32, 16, 20, 4)
			require.NoError(t, ImWrite(path, img, WithCompression(c)))

			info, err := Stat(path)
			require.NoError(t, err)
			assert.Equal(t, c, info.Compression)

			back, err := ImRead(path)
			require.NoError(t, err)
			assert.True(t, img.Equal(back))
		})
	}
}

func TestExplicitChannelOrder(t *testing.T) {
	path := tempPath(t)
	bgr := randomDense(t, ndarray.Float32, 8, 10, 3)
	require.NoError(t, ImWrite(path, bgr, WithLetters("BGR")))

	info, err := Stat(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "G", "R"}, info.Names(), "stored sorted")

	same, err := ImRead(path, WithLetters("BGR"))
	require.NoError(t, err)
	assert.True(t, bgr.Equal(same))

	planes := bgr.Split()
	reversed, err := ndarray.Stack(planes[2], planes[1], planes[0])
	require.NoError(t, err)

	rgb, err := ImRead(path, WithLetters("RGB"))
	require.NoError(t, err)
	assert.True(t, reversed.Equal(rgb))

	defaults, err := ImRead(path)
	require.NoError(t, err)
	assert.True(t, reversed.Equal(defaults), "default names for 3 channels are R, G, B")
}

func TestSingleChannelSelection(t *testing.T) {
	path := tempPath(t)
	img := randomDense(t, ndarray.Uint32, 12, 30, 3)
	require.NoError(t, ImWrite(path, img))

	r, err := ImRead(path, WithChannelNames("R"))
	require.NoError(t, err)
	assert.Equal(t, 2, r.NDim())

	want, err := img.Plane(0)
	require.NoError(t, err)
	assert.True(t, ndarray.FromPlane(want).Equal(r))

	// WithLetters with one letter behaves the same
	r2, err := ImRead(path, WithLetters("R"))
	require.NoError(t, err)
	assert.True(t, r.Equal(r2))
}

func TestChannelMapRoundTrip(t *testing.T) {
	path := tempPath(t)
	m := ndarray.NewChannelMap()
	m.Set("c", randomPlane(t, 1, ndarray.Float16, 5, 7))
	m.Set("a", randomPlane(t, 2, ndarray.Float32, 5, 7))
	m.Set("b", randomPlane(t, 3, ndarray.Uint32, 5, 7))
	require.NoError(t, Write(path, m))

	back, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, back.Names(), "file order is sorted")
	for _, name := range m.Names() {
		assert.Equal(t, m.Get(name).DType(), back.Get(name).DType(), name)
		assert.True(t, m.Get(name).Equal(back.Get(name)), name)
	}

	subset, err := Read(path, WithChannelNames("c", "a"))
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, subset.Names())
	assert.True(t, m.Get("c").Equal(subset.Get("c")))

	payload, err := ReadPayload(path, false)
	require.NoError(t, err)
	require.IsType(t, &ndarray.ChannelMap{}, payload)
}

func TestStructuredRoundTrip(t *testing.T) {
	path := tempPath(t)
	fields := []ndarray.Field{
		{Name: "A", DType: ndarray.Float32},
		{Name: "B", DType: ndarray.Uint32},
		{Name: "C", DType: ndarray.Float16},
	}
	planes := []*ndarray.Plane{
		randomPlane(t, 1, ndarray.Float32, 4, 6),
		randomPlane(t, 2, ndarray.Uint32, 4, 6),
		randomPlane(t, 3, ndarray.Float16, 4, 6),
	}
	rec, err := ndarray.RecordOf(fields, planes)
	require.NoError(t, err)
	require.NoError(t, Write(path, rec))

	back, err := ReadStructured(path)
	require.NoError(t, err)
	assert.Equal(t, rec.DTypeString(), back.DTypeString())
	assert.True(t, rec.Equal(back))

	payload, err := ReadPayload(path, true)
	require.NoError(t, err)
	require.IsType(t, &ndarray.Record{}, payload)

	// a requested order does not change the field order
	reordered, err := ReadStructured(path, WithChannelNames("C", "A"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, reordered.Names())
}

func TestStructuredUnsortedFields(t *testing.T) {
	path := tempPath(t)
	fields := []ndarray.Field{
		{Name: "z", DType: ndarray.Uint32},
		{Name: "m", DType: ndarray.Float32},
	}
	planes := []*ndarray.Plane{
		randomPlane(t, 4, ndarray.Uint32, 3, 3),
		randomPlane(t, 5, ndarray.Float32, 3, 3),
	}
	rec, err := ndarray.RecordOf(fields, planes)
	require.NoError(t, err)
	require.NoError(t, Write(path, rec))

	back, err := ReadStructured(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"m", "z"}, back.Names(), "fields come back sorted")
	assert.False(t, rec.SameDType(back))
	for _, name := range rec.Names() {
		assert.True(t, rec.Field(name).Equal(back.Field(name)), name)
	}
}

func TestConventionOverride(t *testing.T) {
	t.Run("explicit conventions", func(t *testing.T) {
		path := tempPath(t)
		conv := NewConventions()
		require.NoError(t, conv.Set(2, "X", "Y"))

		img := randomDense(t, ndarray.Float32, 6, 5, 2)
		require.NoError(t, ImWrite(path, img, WithConventions(conv)))

		info, err := Stat(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"X", "Y"}, info.Names())

		back, err := ImRead(path, WithConventions(conv))
		require.NoError(t, err)
		assert.True(t, img.Equal(back))

		_, err = ImRead(path)
		assert.ErrorIs(t, err, ErrUnsupportedChannelCount, "default table has no 2-channel entry")
	})

	t.Run("default conventions", func(t *testing.T) {
		saved := DefaultConventions
		t.Cleanup(func() { DefaultConventions = saved })
		DefaultConventions = NewConventions()
		require.NoError(t, SetDefaultChannelNames(2, "X", "Y"))

		path := tempPath(t)
		img := randomDense(t, ndarray.Uint32, 6, 5, 2)
		require.NoError(t, ImWrite(path, img))

		info, err := Stat(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"X", "Y"}, info.Names())

		back, err := ImRead(path)
		require.NoError(t, err)
		assert.True(t, img.Equal(back))
	})
}

func TestReadMmap(t *testing.T) {
	path := tempPath(t)
	img := randomDense(t, ndarray.Float16, 9, 11, 4)
	require.NoError(t, ImWrite(path, img))

	back, err := ImRead(path, WithMmap())
	require.NoError(t, err)
	assert.True(t, img.Equal(back))
}

func TestWriteAttributes(t *testing.T) {
	path := tempPath(t)
	img := randomDense(t, ndarray.Float32, 4, 4)
	require.NoError(t, ImWrite(path, img,
		WithAttribute(&exr.Attribute{Name: "owner", Type: exr.AttrTypeString, Value: "exrarray"}),
		WithLineOrder(exr.LineOrderIncreasing),
		WithComments("test plate"),
	))

	info, err := Stat(path)
	require.NoError(t, err)
	assert.Contains(t, info.Attributes, "owner")
	assert.Equal(t, "exrarray", info.Owner)
	assert.Equal(t, "test plate", info.Comments)
	assert.Equal(t, []string{"Y"}, info.Names())
	assert.Equal(t, 4, info.Width)
	assert.Equal(t, 4, info.Height)
}

func TestWriteOwner(t *testing.T) {
	path := tempPath(t)
	require.NoError(t, ImWrite(path, randomDense(t, ndarray.Uint32, 2, 3), WithOwner("lighting")))

	info, err := Stat(path)
	require.NoError(t, err)
	assert.Equal(t, "lighting", info.Owner)
	assert.Empty(t, info.Comments)
}
