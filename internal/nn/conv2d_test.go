package nn

import (
	"math"
	"math/rand"
	"testing"

	"github.com/born-ml/han/internal/backend/cpu"
	"github.com/born-ml/han/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConv2D_Creation tests Conv2D layer creation.
func TestConv2D_Creation(t *testing.T) {
	backend := cpu.New()

	// Create Conv2D: 1 -> 6 channels, 5x5 kernel
	conv, err := NewConv2D(1, 6, 5, 5, 1, 0, true, nil, backend)
	require.NoError(t, err)

	assert.Equal(t, 1, conv.InChannels())
	assert.Equal(t, 6, conv.OutChannels())
	assert.Equal(t, [2]int{5, 5}, conv.KernelSize())

	assert.True(t, conv.weight.Tensor().Shape().Equal(tensor.Shape{6, 1, 5, 5}))
	assert.True(t, conv.bias.Tensor().Shape().Equal(tensor.Shape{6}))
	assert.Len(t, conv.Parameters(), 2)
}

func TestConv2D_NoBias(t *testing.T) {
	conv, err := NewConv2D(4, 4, 1, 1, 1, 0, false, nil, cpu.New())
	require.NoError(t, err)
	assert.Nil(t, conv.Bias())
	assert.Len(t, conv.Parameters(), 1)
}

func TestConv2D_InvalidArguments(t *testing.T) {
	backend := cpu.New()

	_, err := NewConv2D(0, 4, 3, 3, 1, 1, true, nil, backend)
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)

	_, err = NewConv2D(4, 4, 0, 3, 1, 1, true, nil, backend)
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)

	_, err = NewConv2D(4, 4, 3, 3, 0, 1, true, nil, backend)
	assert.Error(t, err)

	_, err = NewConv2D(4, 4, 3, 3, 1, -1, true, nil, backend)
	assert.Error(t, err)
}

// TestConv2D_Initialization checks the PyTorch default bound 1/sqrt(fan_in).
func TestConv2D_Initialization(t *testing.T) {
	conv, err := NewConv2D(16, 32, 3, 3, 1, 1, true, rand.New(rand.NewSource(1)), cpu.New())
	require.NoError(t, err)

	bound := float32(1 / math.Sqrt(16*3*3))
	for _, v := range conv.weight.Tensor().Data() {
		assert.LessOrEqual(t, v, bound)
		assert.GreaterOrEqual(t, v, -bound)
	}
	for _, v := range conv.bias.Tensor().Data() {
		assert.LessOrEqual(t, v, bound)
		assert.GreaterOrEqual(t, v, -bound)
	}
}

// TestConv2D_Deterministic checks that equal seeds give equal weights.
func TestConv2D_Deterministic(t *testing.T) {
	backend := cpu.New()
	a, err := NewConv2D(3, 8, 3, 3, 1, 1, true, rand.New(rand.NewSource(7)), backend)
	require.NoError(t, err)
	b, err := NewConv2D(3, 8, 3, 3, 1, 1, true, rand.New(rand.NewSource(7)), backend)
	require.NoError(t, err)

	assert.Equal(t, a.weight.Tensor().Data(), b.weight.Tensor().Data())
	assert.Equal(t, a.bias.Tensor().Data(), b.bias.Tensor().Data())
}

// TestConv2D_ForwardShape tests forward pass output shape.
func TestConv2D_ForwardShape(t *testing.T) {
	backend := cpu.New()

	tests := []struct {
		name           string
		kernel, stride int
		padding        int
		inputH, inputW int
		outH, outW     int
	}{
		{"same 3x3", 3, 1, 1, 16, 12, 16, 12},
		{"valid 5x5", 5, 1, 0, 28, 28, 24, 24},
		{"stride 2", 3, 2, 1, 8, 8, 4, 4},
		{"pointwise", 1, 1, 0, 5, 7, 5, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv, err := NewConv2D(2, 3, tt.kernel, tt.kernel, tt.stride, tt.padding, true, nil, backend)
			require.NoError(t, err)

			input := tensor.Zeros[float32](tensor.Shape{2, 2, tt.inputH, tt.inputW}, backend)
			out, err := conv.Forward(input)
			require.NoError(t, err)
			assert.Equal(t, tensor.Shape{2, 3, tt.outH, tt.outW}, out.Shape())
			assert.Equal(t, [2]int{tt.outH, tt.outW}, conv.ComputeOutputSize(tt.inputH, tt.inputW))
		})
	}
}

// TestConv2D_ForwardValues convolves a 3x3 box filter over ones.
func TestConv2D_ForwardValues(t *testing.T) {
	backend := cpu.New()

	conv, err := NewConv2D(1, 1, 3, 3, 1, 1, true, nil, backend)
	require.NoError(t, err)
	for i := range conv.weight.Tensor().Data() {
		conv.weight.Tensor().Data()[i] = 1
	}
	conv.bias.Tensor().Data()[0] = 0.5

	input := tensor.Ones[float32](tensor.Shape{1, 1, 3, 3}, backend)
	out, err := conv.Forward(input)
	require.NoError(t, err)

	expected := []float32{
		4.5, 6.5, 4.5,
		6.5, 9.5, 6.5,
		4.5, 6.5, 4.5,
	}
	assert.InDeltaSlice(t, expected, out.Data(), 1e-5)
}

func TestConv2D_ForwardErrors(t *testing.T) {
	backend := cpu.New()
	conv, err := NewConv2D(3, 4, 3, 3, 1, 0, true, nil, backend)
	require.NoError(t, err)

	tests := []struct {
		name  string
		shape tensor.Shape
	}{
		{"rank 3", tensor.Shape{3, 8, 8}},
		{"wrong channels", tensor.Shape{1, 2, 8, 8}},
		{"too small", tensor.Shape{1, 3, 2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := conv.Forward(tensor.Zeros[float32](tt.shape, backend))
			require.Error(t, err)
			assert.ErrorIs(t, err, tensor.ErrShapeMismatch)

			var shapeErr *tensor.ShapeError
			require.ErrorAs(t, err, &shapeErr)
			assert.Equal(t, "conv2d", shapeErr.Op)
		})
	}
}

func TestConv2D_String(t *testing.T) {
	conv, err := NewConv2D(3, 64, 3, 3, 1, 1, true, nil, cpu.New())
	require.NoError(t, err)
	assert.Equal(t,
		"Conv2D(in_channels=3, out_channels=64, kernel_size=(3, 3), stride=1, padding=1, bias=true)",
		conv.String())
}
