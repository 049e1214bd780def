package han

import (
	"errors"
	"fmt"
	"math/bits"
	"math/rand"

	"github.com/born-ml/han/internal/nn"
	"github.com/born-ml/han/internal/tensor"
)

// ErrUnsupportedScale is returned for upsample ratios other than 3 and
// powers of two.
var ErrUnsupportedScale = errors.New("unsupported upsample scale")

// Upsampler enlarges feature maps with sub-pixel convolution.
//
// A power-of-two scale 2^k stacks k stages of conv(C -> 4C) and
// PixelShuffle(2); scale 3 is one conv(C -> 9C) and PixelShuffle(3).
// Scale 1 is the identity.
type Upsampler[B tensor.Backend] struct {
	scale int
	feats int
	body  *nn.Sequential[B]
}

// NewUpsampler creates an upsampler for feats channels.
func NewUpsampler[B tensor.Backend](scale, feats int, rng *rand.Rand, backend B) (*Upsampler[B], error) {
	u := &Upsampler[B]{scale: scale, feats: feats, body: nn.NewSequential[B]()}

	addStage := func(factor int) error {
		conv, err := defaultConv(feats, factor*factor*feats, 3, rng, backend)
		if err != nil {
			return err
		}
		shuffle, err := nn.NewPixelShuffle[B](factor)
		if err != nil {
			return err
		}
		nn.Prefix(fmt.Sprintf("%d", u.body.Len()), conv.Parameters())
		u.body.Add(conv)
		u.body.Add(shuffle)
		return nil
	}

	switch {
	case scale > 0 && scale&(scale-1) == 0:
		for i := 0; i < bits.TrailingZeros(uint(scale)); i++ {
			if err := addStage(2); err != nil {
				return nil, err
			}
		}
	case scale == 3:
		if err := addStage(3); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("upsampler: %w: %d", ErrUnsupportedScale, scale)
	}
	return u, nil
}

// Forward upsamples [batch, feats, h, w] to [batch, feats, h*scale, w*scale].
func (u *Upsampler[B]) Forward(x *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	if err := checkFeatureMap("upsampler", x.Shape(), u.feats); err != nil {
		return nil, err
	}
	if u.body.Len() == 0 {
		return x, nil
	}
	return u.body.Forward(x)
}

// Scale returns the upscale factor.
func (u *Upsampler[B]) Scale() int {
	return u.scale
}

// Parameters returns the weights of every upsampling convolution.
func (u *Upsampler[B]) Parameters() []*nn.Parameter[B] {
	return u.body.Parameters()
}
