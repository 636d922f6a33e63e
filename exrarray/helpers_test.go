package exrarray

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/mrjoshuak/go-openexr/half"
	"github.com/stretchr/testify/require"

	"github.com/mrjoshuak/go-exrarray/ndarray"
)

// fill sets every element of data to a reproducible random value.
func fill(rng *rand.Rand, data any) {
	switch s := data.(type) {
	case []half.Half:
		for i := range s {
			s[i] = half.FromFloat32(rng.Float32())
		}
	case []float32:
		for i := range s {
			s[i] = rng.Float32()
		}
	case []uint32:
		for i := range s {
			s[i] = rng.Uint32()
		}
	}
}

func randomDense(t *testing.T, dtype ndarray.DType, shape ...int) *ndarray.Dense {
	t.Helper()
	d, err := ndarray.NewDense(dtype, shape...)
	require.NoError(t, err)
	fill(rand.New(rand.NewSource(int64(len(shape)*10+int(dtype)))), d.Data())
	return d
}

func randomPlane(t *testing.T, seed int64, dtype ndarray.DType, height, width int) *ndarray.Plane {
	t.Helper()
	p, err := ndarray.NewPlane(dtype, height, width)
	require.NoError(t, err)
	fill(rand.New(rand.NewSource(seed)), p.Data())
	return p
}

func tempPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.exr")
}

// dirEntries lists the file names in the directory holding path.
func dirEntries(t *testing.T, path string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}
