package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/han/internal/tensor"
)

// Conv2D is a 2D convolutional layer.
//
// Performs convolution: output = Conv2D(input, weight) + bias
//
// Input shape:  [batch, in_channels, height, width]
// Weight shape: [out_channels, in_channels, kernel_h, kernel_w]
// Bias shape:   [out_channels]
// Output shape: [batch, out_channels, out_h, out_w]
//
// Where:
//
//	out_h = (height + 2*padding - kernel_h) / stride + 1
//	out_w = (width + 2*padding - kernel_w) / stride + 1
//
// Example:
//
//	// 3x3 "same" convolution: 3 -> 64 channels
//	conv, err := nn.NewConv2D(3, 64, 3, 3, 1, 1, true, nil, backend)
//	output, err := conv.Forward(input) // [N, 64, H, W]
type Conv2D[B tensor.Backend] struct {
	inChannels  int
	outChannels int
	kernelSize  [2]int
	stride      int
	padding     int
	useBias     bool

	weight *Parameter[B] // [out_channels, in_channels, kernel_h, kernel_w]
	bias   *Parameter[B] // [out_channels] or nil

	backend B
}

// NewConv2D creates a new 2D convolutional layer.
//
// Parameters:
//   - inChannels: Number of input channels
//   - outChannels: Number of output channels (number of filters)
//   - kernelH, kernelW: Kernel dimensions
//   - stride: Stride for convolution (commonly 1 or 2)
//   - padding: Zero padding to apply to input
//   - useBias: Whether to include bias term
//   - rng: Random source for initialization, nil for the global source
//   - backend: Backend for computation
//
// Initialization matches PyTorch's nn.Conv2d defaults (see KaimingUniform).
func NewConv2D[B tensor.Backend](
	inChannels, outChannels int,
	kernelH, kernelW int,
	stride, padding int,
	useBias bool,
	rng *rand.Rand,
	backend B,
) (*Conv2D[B], error) {
	if inChannels <= 0 || outChannels <= 0 {
		return nil, tensor.Mismatch("conv2d", tensor.Shape{outChannels, inChannels, kernelH, kernelW},
			"invalid channels in=%d, out=%d", inChannels, outChannels)
	}
	if kernelH <= 0 || kernelW <= 0 {
		return nil, tensor.Mismatch("conv2d", tensor.Shape{outChannels, inChannels, kernelH, kernelW},
			"invalid kernel size h=%d, w=%d", kernelH, kernelW)
	}
	if stride <= 0 {
		return nil, fmt.Errorf("conv2d: invalid stride %d", stride)
	}
	if padding < 0 {
		return nil, fmt.Errorf("conv2d: invalid padding %d", padding)
	}

	fanIn := inChannels * kernelH * kernelW
	weight := KaimingUniform(fanIn, tensor.Shape{outChannels, inChannels, kernelH, kernelW}, rng, backend)

	var biasParam *Parameter[B]
	if useBias {
		biasParam = NewParameter("bias", BiasUniform(fanIn, outChannels, rng, backend))
	}

	return &Conv2D[B]{
		inChannels:  inChannels,
		outChannels: outChannels,
		kernelSize:  [2]int{kernelH, kernelW},
		stride:      stride,
		padding:     padding,
		useBias:     useBias,
		weight:      NewParameter("weight", weight),
		bias:        biasParam,
		backend:     backend,
	}, nil
}

// Forward performs the forward pass.
//
// Input: [batch, in_channels, height, width]
// Output: [batch, out_channels, out_h, out_w].
func (c *Conv2D[B]) Forward(input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	inputShape := input.Shape()
	if err := tensor.CheckRank("conv2d", inputShape, 4); err != nil {
		return nil, err
	}
	if err := tensor.CheckDim("conv2d", inputShape, 1, c.inChannels); err != nil {
		return nil, err
	}
	out := c.ComputeOutputSize(inputShape[2], inputShape[3])
	if out[0] <= 0 || out[1] <= 0 {
		return nil, tensor.Mismatch("conv2d", inputShape,
			"spatial size too small for kernel %v with padding %d", c.kernelSize, c.padding)
	}

	outputRaw := c.backend.Conv2D(input.Raw(), c.weight.Tensor().Raw(), c.stride, c.padding)
	output := tensor.New[float32, B](outputRaw, c.backend)

	if c.useBias {
		// [out_channels] -> [1, out_channels, 1, 1] for broadcasting
		output = output.Add(c.bias.Tensor().Reshape(1, c.outChannels, 1, 1))
	}

	return output, nil
}

// Parameters returns all trainable parameters.
func (c *Conv2D[B]) Parameters() []*Parameter[B] {
	if c.useBias {
		return []*Parameter[B]{c.weight, c.bias}
	}
	return []*Parameter[B]{c.weight}
}

// Weight returns the weight parameter.
func (c *Conv2D[B]) Weight() *Parameter[B] {
	return c.weight
}

// Bias returns the bias parameter, or nil when the layer has none.
func (c *Conv2D[B]) Bias() *Parameter[B] {
	return c.bias
}

// String returns a string representation of the layer.
func (c *Conv2D[B]) String() string {
	return fmt.Sprintf("Conv2D(in_channels=%d, out_channels=%d, kernel_size=(%d, %d), stride=%d, padding=%d, bias=%v)",
		c.inChannels, c.outChannels,
		c.kernelSize[0], c.kernelSize[1],
		c.stride, c.padding, c.useBias)
}

// OutChannels returns the number of output channels.
func (c *Conv2D[B]) OutChannels() int {
	return c.outChannels
}

// InChannels returns the number of input channels.
func (c *Conv2D[B]) InChannels() int {
	return c.inChannels
}

// KernelSize returns the kernel size [height, width].
func (c *Conv2D[B]) KernelSize() [2]int {
	return c.kernelSize
}

// ComputeOutputSize computes output spatial dimensions for given input size.
//
// Returns: [out_height, out_width].
func (c *Conv2D[B]) ComputeOutputSize(inputH, inputW int) [2]int {
	outH := (inputH+2*c.padding-c.kernelSize[0])/c.stride + 1
	outW := (inputW+2*c.padding-c.kernelSize[1])/c.stride + 1
	return [2]int{outH, outW}
}
