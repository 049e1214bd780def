package cpu

import (
	"math"
	"testing"

	"github.com/born-ml/han/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoftmax_LastDim(t *testing.T) {
	backend := New()

	x := rawFrom(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 0, 0, 0})
	out := backend.Softmax(x, -1)

	e1, e2, e3 := math.Exp(1), math.Exp(2), math.Exp(3)
	s := e1 + e2 + e3
	expected := []float32{
		float32(e1 / s), float32(e2 / s), float32(e3 / s),
		1.0 / 3, 1.0 / 3, 1.0 / 3,
	}
	assert.InDeltaSlice(t, expected, out.AsFloat32(), 1e-6)
}

func TestSoftmax_InnerDim(t *testing.T) {
	backend := New()

	// Softmax over dim 0 of a [2, 2] matrix normalizes columns.
	x := rawFrom(t, tensor.Shape{2, 2}, []float32{0, 5, 0, 5})
	out := backend.Softmax(x, 0)
	assert.InDeltaSlice(t, []float32{0.5, 0.5, 0.5, 0.5}, out.AsFloat32(), 1e-6)
}

func TestSoftmax_LargeValuesStayFinite(t *testing.T) {
	backend := New()

	x := rawFrom(t, tensor.Shape{1, 2}, []float32{1e4, 1e4})
	out := backend.Softmax(x, -1).AsFloat32()
	assert.InDelta(t, 0.5, out[0], 1e-6)
	assert.InDelta(t, 0.5, out[1], 1e-6)
}

func TestMeanDim(t *testing.T) {
	backend := New()

	x := rawFrom(t, tensor.Shape{2, 3}, seq(6))

	rows := backend.MeanDim(x, 1, true)
	require.Equal(t, tensor.Shape{2, 1}, rows.Shape())
	assert.Equal(t, []float32{2, 5}, rows.AsFloat32())

	cols := backend.MeanDim(x, 0, false)
	require.Equal(t, tensor.Shape{3}, cols.Shape())
	assert.Equal(t, []float32{2.5, 3.5, 4.5}, cols.AsFloat32())
}

func TestMaxDim(t *testing.T) {
	backend := New()

	x := rawFrom(t, tensor.Shape{2, 3}, []float32{3, -1, 2, -5, -4, -6})
	out := backend.MaxDim(x, -1, true)
	require.Equal(t, tensor.Shape{2, 1}, out.Shape())
	assert.Equal(t, []float32{3, -4}, out.AsFloat32())
}

func TestSigmoidAndReLU(t *testing.T) {
	backend := New()

	x := rawFrom(t, tensor.Shape{3}, []float32{-2, 0, 2})

	assert.Equal(t, []float32{0, 0, 2}, backend.ReLU(x).AsFloat32())

	sig := backend.Sigmoid(x).AsFloat32()
	assert.InDelta(t, 1/(1+math.Exp(2)), sig[0], 1e-6)
	assert.InDelta(t, 0.5, sig[1], 1e-6)
	assert.InDelta(t, 1/(1+math.Exp(-2)), sig[2], 1e-6)
}
