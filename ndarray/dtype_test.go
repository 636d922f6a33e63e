package ndarray

import (
	"encoding/json"
	"testing"

	"github.com/mrjoshuak/go-openexr/half"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDType(t *testing.T) {
	for _, tc := range []struct {
		dtype   DType
		str     string
		typeStr string
		size    int
	}{
		{Float16, "float16", "<f2", 2},
		{Float32, "float32", "<f4", 4},
		{Uint32, "uint32", "<u4", 4},
		{Invalid, "invalid", "", 0},
	} {
		t.Run(tc.str, func(t *testing.T) {
			assert.Equal(t, tc.str, tc.dtype.String())
			assert.Equal(t, tc.typeStr, tc.dtype.TypeStr())
			assert.Equal(t, tc.size, tc.dtype.Size())
			assert.Equal(t, tc.dtype != Invalid, tc.dtype.IsValid())
		})
	}
}

func TestParseDType(t *testing.T) {
	for _, tc := range []struct {
		in        string
		expected  DType
		expectErr bool
	}{
		{in: "float16", expected: Float16},
		{in: "half", expected: Float16},
		{in: "<f2", expected: Float16},
		{in: "Float32", expected: Float32},
		{in: " float ", expected: Float32},
		{in: "<f4", expected: Float32},
		{in: "uint32", expected: Uint32},
		{in: "uint", expected: Uint32},
		{in: "=u4", expected: Uint32},
		{in: "float64", expectErr: true},
		{in: "uint8", expectErr: true},
		{in: "", expectErr: true},
	} {
		t.Run(tc.in, func(t *testing.T) {
			d, err := ParseDType(tc.in)
			if tc.expectErr {
				assert.ErrorIs(t, err, ErrUnsupportedDType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, d)
		})
	}
}

func TestDTypeOf(t *testing.T) {
	assert.Equal(t, Float16, DTypeOf[half.Half]())
	assert.Equal(t, Float32, DTypeOf[float32]())
	assert.Equal(t, Uint32, DTypeOf[uint32]())
}

func TestDTypeText(t *testing.T) {
	for _, d := range []DType{Float16, Float32, Uint32} {
		text, err := d.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, d.String(), string(text))

		var back DType
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, d, back)
	}

	_, err := Invalid.MarshalText()
	assert.ErrorIs(t, err, ErrUnsupportedDType)

	var d DType
	require.NoError(t, d.UnmarshalText([]byte("<u4")))
	assert.Equal(t, Uint32, d)
	assert.ErrorIs(t, d.UnmarshalText([]byte("float64")), ErrUnsupportedDType)
	assert.Equal(t, Uint32, d, "failed unmarshal leaves the value unchanged")

	type field struct {
		DType DType `json:"dtype"`
	}
	out, err := json.Marshal(field{DType: Float16})
	require.NoError(t, err)
	assert.JSONEq(t, `{"dtype":"float16"}`, string(out))

	var in field
	require.NoError(t, json.Unmarshal([]byte(`{"dtype":"half"}`), &in))
	assert.Equal(t, Float16, in.DType)
}
