package han

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/han/internal/nn"
	"github.com/born-ml/han/internal/tensor"
)

// ResidualGroup chains RCABs and a closing convolution around a skip
// connection:
//
//	out = conv(RCAB_n(...RCAB_1(x))) + x
type ResidualGroup[B tensor.Backend] struct {
	feats  int
	blocks []*RCAB[B]
	conv   *nn.Conv2D[B]
}

// NewResidualGroup creates a group of numBlocks RCABs.
func NewResidualGroup[B tensor.Backend](
	feats, kernelSize, reduction int,
	resScale float32,
	numBlocks int,
	rng *rand.Rand,
	backend B,
) (*ResidualGroup[B], error) {
	g := &ResidualGroup[B]{
		feats:  feats,
		blocks: make([]*RCAB[B], 0, numBlocks),
	}
	for i := 0; i < numBlocks; i++ {
		block, err := NewRCAB(feats, kernelSize, reduction, resScale, rng, backend)
		if err != nil {
			return nil, fmt.Errorf("rcab %d: %w", i, err)
		}
		nn.Prefix(fmt.Sprintf("body.%d", i), block.Parameters())
		g.blocks = append(g.blocks, block)
	}

	conv, err := defaultConv(feats, feats, kernelSize, rng, backend)
	if err != nil {
		return nil, err
	}
	nn.Prefix(fmt.Sprintf("body.%d", numBlocks), conv.Parameters())
	g.conv = conv
	return g, nil
}

// Forward runs the blocks in order, the closing convolution and the skip.
func (g *ResidualGroup[B]) Forward(x *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	if err := checkFeatureMap("residual_group", x.Shape(), g.feats); err != nil {
		return nil, err
	}

	res := x
	for i, block := range g.blocks {
		var err error
		res, err = block.Forward(res)
		if err != nil {
			return nil, fmt.Errorf("rcab %d: %w", i, err)
		}
	}
	res, err := g.conv.Forward(res)
	if err != nil {
		return nil, err
	}
	return res.Add(x), nil
}

// Blocks returns the group's RCABs in application order.
func (g *ResidualGroup[B]) Blocks() []*RCAB[B] {
	return g.blocks
}

// Parameters returns the parameters of every block and the closing convolution.
func (g *ResidualGroup[B]) Parameters() []*nn.Parameter[B] {
	var params []*nn.Parameter[B]
	for _, block := range g.blocks {
		params = append(params, block.Parameters()...)
	}
	return append(params, g.conv.Parameters()...)
}
