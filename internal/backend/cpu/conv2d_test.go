package cpu

import (
	"testing"

	"github.com/born-ml/han/internal/parallel"
	"github.com/born-ml/han/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawFrom(t *testing.T, shape tensor.Shape, data []float32) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(raw.AsFloat32(), data)
	return raw
}

func seq(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(i + 1)
	}
	return out
}

// TestConv2D_BasicForward tests basic Conv2D forward pass.
func TestConv2D_BasicForward(t *testing.T) {
	backend := New()

	// Input [1, 1, 3, 3]:
	// 1 2 3
	// 4 5 6
	// 7 8 9
	input := rawFrom(t, tensor.Shape{1, 1, 3, 3}, seq(9))

	// Kernel:
	// 1 0
	// 0 1
	kernel := rawFrom(t, tensor.Shape{1, 1, 2, 2}, []float32{1, 0, 0, 1})

	output := backend.Conv2D(input, kernel, 1, 0)

	// out_h = (3 + 2*0 - 2) / 1 + 1 = 2
	require.Equal(t, tensor.Shape{1, 1, 2, 2}, output.Shape())

	// Diagonal sums: 1+5, 2+6, 4+8, 5+9
	assert.Equal(t, []float32{6, 8, 12, 14}, output.AsFloat32())
}

// TestConv2D_Padding checks zero padding keeps the spatial size for a 3x3 kernel.
func TestConv2D_Padding(t *testing.T) {
	backend := New()

	input := rawFrom(t, tensor.Shape{1, 1, 3, 3}, seq(9))
	ones := make([]float32, 9)
	for i := range ones {
		ones[i] = 1
	}
	kernel := rawFrom(t, tensor.Shape{1, 1, 3, 3}, ones)

	output := backend.Conv2D(input, kernel, 1, 1)
	require.Equal(t, tensor.Shape{1, 1, 3, 3}, output.Shape())

	// Box sums over the neighbourhood that lies inside the image.
	expected := []float32{
		12, 21, 16,
		27, 45, 33,
		24, 39, 28,
	}
	assert.Equal(t, expected, output.AsFloat32())
}

// TestConv2D_MultiChannel sums over input channels and produces one plane per filter.
func TestConv2D_MultiChannel(t *testing.T) {
	backend := New()

	// Two 2x2 channels: ch0 = 1..4, ch1 = 5..8
	input := rawFrom(t, tensor.Shape{1, 2, 2, 2}, seq(8))

	// Filter 0 copies channel 0, filter 1 sums both channels.
	kernel := rawFrom(t, tensor.Shape{2, 2, 1, 1}, []float32{
		1, 0,
		1, 1,
	})

	output := backend.Conv2D(input, kernel, 1, 0)
	require.Equal(t, tensor.Shape{1, 2, 2, 2}, output.Shape())
	assert.Equal(t, []float32{
		1, 2, 3, 4,
		6, 8, 10, 12,
	}, output.AsFloat32())
}

// TestConv2D_Stride checks the output size formula with stride 2.
func TestConv2D_Stride(t *testing.T) {
	backend := New()

	input := rawFrom(t, tensor.Shape{1, 1, 4, 4}, seq(16))
	kernel := rawFrom(t, tensor.Shape{1, 1, 1, 1}, []float32{1})

	output := backend.Conv2D(input, kernel, 2, 0)
	require.Equal(t, tensor.Shape{1, 1, 2, 2}, output.Shape())
	assert.Equal(t, []float32{1, 3, 9, 11}, output.AsFloat32())
}

// TestConv2D_ParallelMatchesSequential runs the same batch with and without fan-out.
func TestConv2D_ParallelMatchesSequential(t *testing.T) {
	input := tensor.Randn[float32](tensor.Shape{6, 3, 5, 5}, nil, New()).Raw()
	kernel := tensor.Randn[float32](tensor.Shape{4, 3, 3, 3}, nil, New()).Raw()

	seqOut := NewWithConfig(parallel.WithWorkers(1)).Conv2D(input, kernel, 1, 1)
	parOut := NewWithConfig(parallel.WithWorkers(4)).Conv2D(input, kernel, 1, 1)

	require.Equal(t, seqOut.Shape(), parOut.Shape())
	assert.InDeltaSlice(t, seqOut.AsFloat32(), parOut.AsFloat32(), 1e-5)
}

// TestConv2D_Float64 exercises the float64 GEMM path.
func TestConv2D_Float64(t *testing.T) {
	backend := New()

	input, err := tensor.NewRaw(tensor.Shape{1, 1, 2, 2}, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	copy(input.AsFloat64(), []float64{1, 2, 3, 4})

	kernel, err := tensor.NewRaw(tensor.Shape{1, 1, 2, 2}, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	copy(kernel.AsFloat64(), []float64{1, 1, 1, 1})

	output := backend.Conv2D(input, kernel, 1, 0)
	assert.Equal(t, []float64{10}, output.AsFloat64())
}

func TestConv2D_ChannelMismatchPanics(t *testing.T) {
	backend := New()
	input := rawFrom(t, tensor.Shape{1, 2, 3, 3}, make([]float32, 18))
	kernel := rawFrom(t, tensor.Shape{1, 3, 3, 3}, make([]float32, 27))

	assert.Panics(t, func() { backend.Conv2D(input, kernel, 1, 1) })
}
