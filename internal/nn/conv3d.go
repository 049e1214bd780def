package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/han/internal/tensor"
)

// Conv3D is a volumetric convolution with a cubic kernel.
//
// Input shape:  [batch, in_channels, depth, height, width]
// Weight shape: [out_channels, in_channels, k, k, k]
// Bias shape:   [out_channels]
// Output shape: [batch, out_channels, out_d, out_h, out_w]
//
// Stride and padding are shared by the three spatial axes.
type Conv3D[B tensor.Backend] struct {
	inChannels  int
	outChannels int
	kernelSize  int
	stride      int
	padding     int

	weight *Parameter[B]
	bias   *Parameter[B] // nil without bias

	backend B
}

// NewConv3D creates a volumetric convolution initialized like PyTorch's nn.Conv3d.
func NewConv3D[B tensor.Backend](
	inChannels, outChannels, kernelSize, stride, padding int,
	useBias bool,
	rng *rand.Rand,
	backend B,
) (*Conv3D[B], error) {
	shape := tensor.Shape{outChannels, inChannels, kernelSize, kernelSize, kernelSize}
	if inChannels <= 0 || outChannels <= 0 || kernelSize <= 0 {
		return nil, tensor.Mismatch("conv3d", shape,
			"invalid channels in=%d, out=%d or kernel %d", inChannels, outChannels, kernelSize)
	}
	if stride <= 0 || padding < 0 {
		return nil, fmt.Errorf("conv3d: invalid stride %d / padding %d", stride, padding)
	}

	fanIn := inChannels * kernelSize * kernelSize * kernelSize
	c := &Conv3D[B]{
		inChannels:  inChannels,
		outChannels: outChannels,
		kernelSize:  kernelSize,
		stride:      stride,
		padding:     padding,
		weight:      NewParameter("weight", KaimingUniform(fanIn, shape, rng, backend)),
		backend:     backend,
	}
	if useBias {
		c.bias = NewParameter("bias", BiasUniform(fanIn, outChannels, rng, backend))
	}
	return c, nil
}

// Forward performs the forward pass.
func (c *Conv3D[B]) Forward(input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	shape := input.Shape()
	if err := tensor.CheckRank("conv3d", shape, 5); err != nil {
		return nil, err
	}
	if err := tensor.CheckDim("conv3d", shape, 1, c.inChannels); err != nil {
		return nil, err
	}
	for _, d := range shape[2:] {
		if d+2*c.padding < c.kernelSize {
			return nil, tensor.Mismatch("conv3d", shape,
				"spatial size too small for kernel %d with padding %d", c.kernelSize, c.padding)
		}
	}

	out := tensor.New[float32, B](c.backend.Conv3D(input.Raw(), c.weight.Tensor().Raw(), c.stride, c.padding), c.backend)
	if c.bias != nil {
		out = out.Add(c.bias.Tensor().Reshape(1, c.outChannels, 1, 1, 1))
	}
	return out, nil
}

// Parameters returns the weight and, when present, the bias.
func (c *Conv3D[B]) Parameters() []*Parameter[B] {
	if c.bias != nil {
		return []*Parameter[B]{c.weight, c.bias}
	}
	return []*Parameter[B]{c.weight}
}

// String returns a string representation of the layer.
func (c *Conv3D[B]) String() string {
	return fmt.Sprintf("Conv3D(in_channels=%d, out_channels=%d, kernel_size=%d, stride=%d, padding=%d, bias=%v)",
		c.inChannels, c.outChannels, c.kernelSize, c.stride, c.padding, c.bias != nil)
}
