package nn

import (
	"github.com/born-ml/han/internal/tensor"
)

// GlobalAvgPool2D averages every channel over its spatial extent.
//
// Equivalent to PyTorch's nn.AdaptiveAvgPool2d(1).
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, 1, 1]
type GlobalAvgPool2D[B tensor.Backend] struct{}

// NewGlobalAvgPool2D creates a global average pooling module.
func NewGlobalAvgPool2D[B tensor.Backend]() *GlobalAvgPool2D[B] {
	return &GlobalAvgPool2D[B]{}
}

// Forward reduces the two spatial axes to size one.
func (p *GlobalAvgPool2D[B]) Forward(input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	if err := tensor.CheckRank("global_avg_pool2d", input.Shape(), 4); err != nil {
		return nil, err
	}
	return input.MeanDim(3, true).MeanDim(2, true), nil
}

// Parameters returns nil.
func (p *GlobalAvgPool2D[B]) Parameters() []*Parameter[B] {
	return nil
}
