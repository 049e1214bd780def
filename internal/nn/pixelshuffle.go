package nn

import (
	"fmt"

	"github.com/born-ml/han/internal/tensor"
)

// PixelShuffle rearranges channel blocks into spatial resolution.
//
// Input shape:  [batch, channels*r*r, height, width]
// Output shape: [batch, channels, height*r, width*r]
//
// Element (c*r*r + i*r + j, h, w) of the input lands at (c, h*r+i, w*r+j),
// the layout of PyTorch's nn.PixelShuffle.
type PixelShuffle[B tensor.Backend] struct {
	factor int
}

// NewPixelShuffle creates a pixel shuffle with upscale factor r.
func NewPixelShuffle[B tensor.Backend](factor int) (*PixelShuffle[B], error) {
	if factor <= 0 {
		return nil, fmt.Errorf("pixel_shuffle: invalid upscale factor %d", factor)
	}
	return &PixelShuffle[B]{factor: factor}, nil
}

// Forward performs the rearrangement.
func (p *PixelShuffle[B]) Forward(input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	shape := input.Shape()
	if err := tensor.CheckRank("pixel_shuffle", shape, 4); err != nil {
		return nil, err
	}
	if r2 := p.factor * p.factor; shape[1]%r2 != 0 {
		return nil, tensor.Mismatch("pixel_shuffle", shape,
			"channels %d not divisible by factor^2 = %d", shape[1], r2)
	}
	b := input.Backend()
	return tensor.New[float32, B](b.PixelShuffle(input.Raw(), p.factor), b), nil
}

// Factor returns the upscale factor.
func (p *PixelShuffle[B]) Factor() int {
	return p.factor
}

// Parameters returns nil.
func (p *PixelShuffle[B]) Parameters() []*Parameter[B] {
	return nil
}
