package han

import (
	"github.com/born-ml/han/internal/nn"
	"github.com/born-ml/han/internal/tensor"
)

// LAM is the layer attention module. It weighs the outputs of the
// residual groups against each other.
//
// Input:  [batch, groups, channels, height, width]
// Output: [batch, groups*channels, height, width]
//
// Each group's feature map is one token. The attended tokens are scaled by
// alpha and added back to the input, so a zero alpha makes LAM a reshape.
type LAM[B tensor.Backend] struct {
	alpha *nn.Parameter[B]
}

// NewLAM creates a layer attention module with alpha = 0.
func NewLAM[B tensor.Backend](backend B) *LAM[B] {
	return &LAM[B]{alpha: newScale("alpha", backend)}
}

// Attention returns the [batch, groups, groups] attention LAM applies to x.
func (l *LAM[B]) Attention(x *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	attention, _, err := l.attend(x)
	return attention, err
}

// Forward computes alpha·attention(x) + x, collapsed to four dimensions.
func (l *LAM[B]) Forward(x *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	_, attended, err := l.attend(x)
	if err != nil {
		return nil, err
	}
	s := x.Shape()
	out := attended.Mul(l.alpha.Tensor()).Reshape(s...).Add(x)
	return out.Reshape(s[0], s[1]*s[2], s[3], s[4]), nil
}

func (l *LAM[B]) attend(x *tensor.Tensor[float32, B]) (attention, attended *tensor.Tensor[float32, B], err error) {
	s := x.Shape()
	if err := tensor.CheckRank("lam", s, 5); err != nil {
		return nil, nil, err
	}
	attention, attended = selfAttention(x.Reshape(s[0], s[1], -1))
	return attention, attended, nil
}

// Alpha returns the learnable output scale.
func (l *LAM[B]) Alpha() *nn.Parameter[B] {
	return l.alpha
}

// Parameters returns alpha.
func (l *LAM[B]) Parameters() []*nn.Parameter[B] {
	return []*nn.Parameter[B]{l.alpha}
}
