package cpu

import (
	"testing"

	"github.com/born-ml/han/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchMatMul_3D(t *testing.T) {
	backend := New()

	// Batch 0: [[1,2],[3,4]] @ I ; batch 1: [[1,0],[0,1]] @ [[5,6],[7,8]]
	a := rawFrom(t, tensor.Shape{2, 2, 2}, []float32{1, 2, 3, 4, 1, 0, 0, 1})
	b := rawFrom(t, tensor.Shape{2, 2, 2}, []float32{1, 0, 0, 1, 5, 6, 7, 8})

	c := backend.BatchMatMul(a, b)
	require.Equal(t, tensor.Shape{2, 2, 2}, c.Shape())
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, c.AsFloat32())
}

func TestBatchMatMul_Rectangular(t *testing.T) {
	backend := New()

	// [1, 2, 3] @ [1, 3, 1]
	a := rawFrom(t, tensor.Shape{1, 2, 3}, []float32{1, 2, 3, 4, 5, 6})
	b := rawFrom(t, tensor.Shape{1, 3, 1}, []float32{1, 1, 1})

	c := backend.BatchMatMul(a, b)
	require.Equal(t, tensor.Shape{1, 2, 1}, c.Shape())
	assert.Equal(t, []float32{6, 15}, c.AsFloat32())
}

func TestBatchMatMul_InnerMismatchPanics(t *testing.T) {
	backend := New()
	a := rawFrom(t, tensor.Shape{1, 2, 3}, seq(6))
	b := rawFrom(t, tensor.Shape{1, 2, 3}, seq(6))

	assert.Panics(t, func() { backend.BatchMatMul(a, b) })
}
