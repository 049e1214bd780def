package han

import (
	"math/rand"

	"github.com/born-ml/han/internal/nn"
	"github.com/born-ml/han/internal/tensor"
)

// CSAM is the channel-spatial attention module.
//
// A 3x3x3 convolution over the (channel, height, width) volume followed by
// a sigmoid yields an attention map. The map is passed through
// self-attention with a single token, scaled by beta and applied as
//
//	out = x * (beta * map) + x
//
// so a zero beta makes CSAM the identity.
type CSAM[B tensor.Backend] struct {
	channels int
	conv     *nn.Conv3D[B]
	beta     *nn.Parameter[B]
}

// NewCSAM creates a channel-spatial attention module with beta = 0.
func NewCSAM[B tensor.Backend](channels int, rng *rand.Rand, backend B) (*CSAM[B], error) {
	conv, err := nn.NewConv3D(1, 1, 3, 1, 1, true, rng, backend)
	if err != nil {
		return nil, err
	}
	nn.Prefix("conv3d", conv.Parameters())

	return &CSAM[B]{
		channels: channels,
		conv:     conv,
		beta:     newScale("beta", backend),
	}, nil
}

// Forward applies channel-spatial attention to a [batch, channels, height, width] input.
func (m *CSAM[B]) Forward(x *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	s := x.Shape()
	if err := checkFeatureMap("csam", s, m.channels); err != nil {
		return nil, err
	}

	volume, err := m.conv.Forward(x.Unsqueeze(1))
	if err != nil {
		return nil, err
	}
	_, attended := selfAttention(volume.Sigmoid().Reshape(s[0], 1, -1))

	out := attended.Mul(m.beta.Tensor()).Reshape(s...)
	return x.Mul(out).Add(x), nil
}

// Beta returns the learnable output scale.
func (m *CSAM[B]) Beta() *nn.Parameter[B] {
	return m.beta
}

// Parameters returns the 3D convolution weights and beta.
func (m *CSAM[B]) Parameters() []*nn.Parameter[B] {
	return append(m.conv.Parameters(), m.beta)
}
