package han

import (
	"math/rand"

	"github.com/born-ml/han/internal/nn"
	"github.com/born-ml/han/internal/tensor"
)

// defaultConv is a square convolution with stride 1, "same" padding and bias.
func defaultConv[B tensor.Backend](in, out, kernelSize int, rng *rand.Rand, backend B) (*nn.Conv2D[B], error) {
	return nn.NewConv2D(in, out, kernelSize, kernelSize, 1, kernelSize/2, true, rng, backend)
}

// checkFeatureMap validates a [batch, channels, height, width] input.
func checkFeatureMap(op string, s tensor.Shape, channels int) error {
	if err := tensor.CheckRank(op, s, 4); err != nil {
		return err
	}
	return tensor.CheckDim(op, s, 1, channels)
}
