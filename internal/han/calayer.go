package han

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/han/internal/nn"
	"github.com/born-ml/han/internal/tensor"
)

// channelReduction is the squeeze ratio of channel attention. It does not
// follow the reduction argument.
const channelReduction = 16

// CALayer is squeeze-and-excitation channel attention.
//
// A global average pool summarizes each channel, two 1x1 convolutions
// (channels -> channels/16 -> channels) with a ReLU between them and a
// sigmoid after produce a per-channel gate in (0, 1), and the input is
// scaled by that gate.
type CALayer[B tensor.Backend] struct {
	channels int
	pool     *nn.GlobalAvgPool2D[B]
	body     *nn.Sequential[B]
}

// NewCALayer creates channel attention over channels feature maps.
//
// channels must be a positive multiple of 16, otherwise the error matches
// tensor.ErrShapeMismatch. The reduction argument is ignored.
func NewCALayer[B tensor.Backend](channels, _ int, rng *rand.Rand, backend B) (*CALayer[B], error) {
	if channels <= 0 || channels%channelReduction != 0 {
		return nil, &tensor.ShapeError{
			Op:      "calayer",
			Got:     tensor.Shape{channels},
			Details: fmt.Sprintf("channels must be a positive multiple of %d", channelReduction),
		}
	}

	squeezed := channels / channelReduction
	down, err := nn.NewConv2D(channels, squeezed, 1, 1, 1, 0, true, rng, backend)
	if err != nil {
		return nil, err
	}
	up, err := nn.NewConv2D(squeezed, channels, 1, 1, 1, 0, true, rng, backend)
	if err != nil {
		return nil, err
	}
	nn.Prefix("body.0", down.Parameters())
	nn.Prefix("body.2", up.Parameters())

	return &CALayer[B]{
		channels: channels,
		pool:     nn.NewGlobalAvgPool2D[B](),
		body:     nn.NewSequential[B](down, nn.NewReLU[B](), up, nn.NewSigmoid[B]()),
	}, nil
}

// Gate returns the [batch, channels, 1, 1] attention weights for x.
func (l *CALayer[B]) Gate(x *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	if err := checkFeatureMap("calayer", x.Shape(), l.channels); err != nil {
		return nil, err
	}
	pooled, err := l.pool.Forward(x)
	if err != nil {
		return nil, err
	}
	return l.body.Forward(pooled)
}

// Forward scales every channel of x by its gate.
func (l *CALayer[B]) Forward(x *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	gate, err := l.Gate(x)
	if err != nil {
		return nil, err
	}
	return x.Mul(gate), nil
}

// Parameters returns the weights of both 1x1 convolutions.
func (l *CALayer[B]) Parameters() []*nn.Parameter[B] {
	return l.body.Parameters()
}
