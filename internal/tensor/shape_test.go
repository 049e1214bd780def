package tensor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataType(t *testing.T) {
	tests := []struct {
		dtype DataType
		size  int
		str   string
	}{
		{Float32, 4, "float32"},
		{Float64, 8, "float64"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.size, tt.dtype.Size())
		assert.Equal(t, tt.str, tt.dtype.String())
	}
	assert.Equal(t, "unknown", DataType(99).String())
	assert.Panics(t, func() { DataType(99).Size() })
}

func TestShape(t *testing.T) {
	s := Shape{2, 3, 4}
	assert.Equal(t, 24, s.NumElements())
	assert.Equal(t, 1, Shape{}.NumElements())
	assert.Equal(t, []int{12, 4, 1}, s.ComputeStrides())
	assert.True(t, s.Equal(Shape{2, 3, 4}))
	assert.False(t, s.Equal(Shape{2, 3}))
	assert.False(t, s.Equal(Shape{2, 3, 5}))

	c := s.Clone()
	c[0] = 9
	assert.Equal(t, 2, s[0])

	require.NoError(t, s.Validate())
	assert.Error(t, Shape{2, 0}.Validate())
	assert.Error(t, Shape{-1}.Validate())
}

func TestNormalizeDim(t *testing.T) {
	dim, err := NormalizeDim(-1, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, dim)

	dim, err = NormalizeDim(2, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, dim)

	_, err = NormalizeDim(4, 4)
	assert.Error(t, err)
	_, err = NormalizeDim(-5, 4)
	assert.Error(t, err)
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		a, b      Shape
		want      Shape
		broadcast bool
	}{
		{Shape{3, 1}, Shape{3, 5}, Shape{3, 5}, true},
		{Shape{1, 5}, Shape{3, 5}, Shape{3, 5}, true},
		{Shape{3, 5}, Shape{3, 5}, Shape{3, 5}, false},
		{Shape{1}, Shape{2, 4, 6}, Shape{2, 4, 6}, true},
		{Shape{2, 4, 1}, Shape{2, 4, 4}, Shape{2, 4, 4}, true},
	}

	for _, tt := range tests {
		got, broadcast, err := BroadcastShapes(tt.a, tt.b)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.broadcast, broadcast, "%v + %v", tt.a, tt.b)
	}

	_, _, err := BroadcastShapes(Shape{3, 4}, Shape{3, 5})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestShapeError(t *testing.T) {
	err := Mismatch("conv2d", Shape{1, 4, 8, 8}, "dimension %d is %d, expected %d", 1, 4, 3)
	assert.EqualError(t, err, "conv2d: shape mismatch: got [1 4 8 8] (dimension 1 is 4, expected 3)")
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	full := &ShapeError{Op: "view", Got: Shape{2, 3}, Want: Shape{7}}
	assert.EqualError(t, full, "view: shape mismatch: got [2 3], want [7]")

	var se *ShapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "conv2d", se.Op)
}

func TestCheckRankAndDim(t *testing.T) {
	s := Shape{1, 3, 8, 8}
	require.NoError(t, CheckRank("op", s, 4))
	require.NoError(t, CheckDim("op", s, 1, 3))
	assert.ErrorIs(t, CheckRank("op", s, 5), ErrShapeMismatch)
	assert.ErrorIs(t, CheckDim("op", s, 1, 4), ErrShapeMismatch)
}

func TestRawTensor(t *testing.T) {
	raw, err := NewRaw(Shape{2, 3}, Float32, CPU)
	require.NoError(t, err)
	assert.Equal(t, 6, raw.NumElements())
	assert.Equal(t, 24, raw.ByteSize())
	assert.Equal(t, []int{3, 1}, raw.Strides())
	assert.Equal(t, CPU, raw.Device())

	data := raw.AsFloat32()
	for i := range data {
		data[i] = float32(i)
	}
	assert.Panics(t, func() { raw.AsFloat64() })

	view, err := raw.View(Shape{3, 2})
	require.NoError(t, err)
	view.AsFloat32()[5] = 42
	assert.Equal(t, float32(42), data[5], "view shares memory")

	clone := raw.Clone()
	clone.AsFloat32()[0] = -1
	assert.Equal(t, float32(0), data[0], "clone copies memory")

	_, err = raw.View(Shape{4})
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = NewRaw(Shape{0, 3}, Float32, CPU)
	assert.Error(t, err)
}
