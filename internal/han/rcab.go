package han

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/han/internal/nn"
	"github.com/born-ml/han/internal/tensor"
)

// RCAB is a residual channel attention block:
//
//	out = CALayer(conv(ReLU(conv(x)))) + x
type RCAB[B tensor.Backend] struct {
	feats    int
	resScale float32
	body     *nn.Sequential[B]
}

// NewRCAB creates a residual channel attention block.
//
// resScale is recorded for inspection and does not scale the residual.
func NewRCAB[B tensor.Backend](feats, kernelSize, reduction int, resScale float32, rng *rand.Rand, backend B) (*RCAB[B], error) {
	conv1, err := defaultConv(feats, feats, kernelSize, rng, backend)
	if err != nil {
		return nil, err
	}
	conv2, err := defaultConv(feats, feats, kernelSize, rng, backend)
	if err != nil {
		return nil, err
	}
	ca, err := NewCALayer(feats, reduction, rng, backend)
	if err != nil {
		return nil, err
	}
	nn.Prefix("body.0", conv1.Parameters())
	nn.Prefix("body.2", conv2.Parameters())
	nn.Prefix("body.3", ca.Parameters())

	return &RCAB[B]{
		feats:    feats,
		resScale: resScale,
		body:     nn.NewSequential[B](conv1, nn.NewReLU[B](), conv2, ca),
	}, nil
}

// Forward computes body(x) + x.
func (r *RCAB[B]) Forward(x *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	if err := checkFeatureMap("rcab", x.Shape(), r.feats); err != nil {
		return nil, err
	}
	res, err := r.body.Forward(x)
	if err != nil {
		return nil, fmt.Errorf("rcab: %w", err)
	}
	return res.Add(x), nil
}

// ResScale returns the configured residual scale.
func (r *RCAB[B]) ResScale() float32 {
	return r.resScale
}

// Parameters returns the block's convolution and attention weights.
func (r *RCAB[B]) Parameters() []*nn.Parameter[B] {
	return r.body.Parameters()
}
