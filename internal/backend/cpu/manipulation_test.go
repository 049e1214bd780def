package cpu

import (
	"testing"

	"github.com/born-ml/han/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReshape_ViewAndInfer(t *testing.T) {
	backend := New()
	x := rawFrom(t, tensor.Shape{2, 3, 4}, seq(24))

	y := backend.Reshape(x, tensor.Shape{2, -1})
	require.Equal(t, tensor.Shape{2, 12}, y.Shape())

	// Views share memory.
	y.AsFloat32()[0] = 100
	assert.Equal(t, float32(100), x.AsFloat32()[0])

	assert.Panics(t, func() { backend.Reshape(x, tensor.Shape{5, -1}) })
	assert.Panics(t, func() { backend.Reshape(x, tensor.Shape{-1, -1}) })
}

func TestUnsqueeze(t *testing.T) {
	backend := New()
	x := rawFrom(t, tensor.Shape{2, 3}, seq(6))

	assert.Equal(t, tensor.Shape{1, 2, 3}, backend.Unsqueeze(x, 0).Shape())
	assert.Equal(t, tensor.Shape{2, 1, 3}, backend.Unsqueeze(x, 1).Shape())
	assert.Equal(t, tensor.Shape{2, 3, 1}, backend.Unsqueeze(x, -1).Shape())
}

func TestTranspose(t *testing.T) {
	backend := New()

	x := rawFrom(t, tensor.Shape{2, 3}, seq(6))
	y := backend.Transpose(x)
	require.Equal(t, tensor.Shape{3, 2}, y.Shape())
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, y.AsFloat32())

	// [1, 2, 3] -> [1, 3, 2]
	z := backend.Transpose(backend.Reshape(x, tensor.Shape{1, 2, 3}), 0, 2, 1)
	require.Equal(t, tensor.Shape{1, 3, 2}, z.Shape())
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, z.AsFloat32())

	assert.Panics(t, func() { backend.Transpose(x, 0, 0) })
}

func TestCat(t *testing.T) {
	backend := New()

	a := rawFrom(t, tensor.Shape{2, 1}, []float32{1, 2})
	b := rawFrom(t, tensor.Shape{2, 2}, []float32{3, 4, 5, 6})

	out := backend.Cat([]*tensor.RawTensor{a, b}, 1)
	require.Equal(t, tensor.Shape{2, 3}, out.Shape())
	assert.Equal(t, []float32{1, 3, 4, 2, 5, 6}, out.AsFloat32())

	rows := backend.Cat([]*tensor.RawTensor{b, b}, 0)
	require.Equal(t, tensor.Shape{4, 2}, rows.Shape())
	assert.Equal(t, []float32{3, 4, 5, 6, 3, 4, 5, 6}, rows.AsFloat32())
}

func TestCat_MismatchPanics(t *testing.T) {
	backend := New()
	a := rawFrom(t, tensor.Shape{2, 2}, seq(4))
	b := rawFrom(t, tensor.Shape{3, 2}, seq(6))

	assert.Panics(t, func() { backend.Cat([]*tensor.RawTensor{a, b}, 1) })
}

func TestPixelShuffle(t *testing.T) {
	backend := New()

	// Four 1x1 channels become one 2x2 plane in row-major sub-pixel order.
	x := rawFrom(t, tensor.Shape{1, 4, 1, 1}, seq(4))
	out := backend.PixelShuffle(x, 2)
	require.Equal(t, tensor.Shape{1, 1, 2, 2}, out.Shape())
	assert.Equal(t, []float32{1, 2, 3, 4}, out.AsFloat32())

	// Two spatial positions: channel k holds sub-pixel k of each position.
	y := rawFrom(t, tensor.Shape{1, 4, 1, 2}, []float32{
		1, 5, // sub-pixel (0,0)
		2, 6, // (0,1)
		3, 7, // (1,0)
		4, 8, // (1,1)
	})
	out = backend.PixelShuffle(y, 2)
	require.Equal(t, tensor.Shape{1, 1, 2, 4}, out.Shape())
	assert.Equal(t, []float32{1, 2, 5, 6, 3, 4, 7, 8}, out.AsFloat32())

	assert.Panics(t, func() { backend.PixelShuffle(rawFrom(t, tensor.Shape{1, 3, 1, 1}, seq(3)), 2) })
}
