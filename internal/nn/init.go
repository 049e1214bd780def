package nn

import (
	"math"
	"math/rand"

	"github.com/born-ml/han/internal/tensor"
)

// KaimingUniform initializes a convolution weight the way PyTorch's
// nn.Conv layers do by default: kaiming_uniform with a = sqrt(5), which
// reduces to U(-1/sqrt(fan_in), 1/sqrt(fan_in)).
//
// Parameters:
//   - fanIn: in_channels * prod(kernel_size)
//   - shape: Shape of the weight tensor
//   - rng: Random source, nil for the math/rand global source
//   - backend: Backend to use for tensor creation
func KaimingUniform[B tensor.Backend](fanIn int, shape tensor.Shape, rng *rand.Rand, backend B) *tensor.Tensor[float32, B] {
	bound := 1.0 / math.Sqrt(float64(fanIn))
	return tensor.Uniform[float32](shape, -bound, bound, rng, backend)
}

// BiasUniform initializes a convolution bias as PyTorch does:
// U(-1/sqrt(fan_in), 1/sqrt(fan_in)).
func BiasUniform[B tensor.Backend](fanIn, size int, rng *rand.Rand, backend B) *tensor.Tensor[float32, B] {
	bound := 1.0 / math.Sqrt(float64(fanIn))
	return tensor.Uniform[float32](tensor.Shape{size}, -bound, bound, rng, backend)
}

// Zeros creates a tensor filled with zeros.
//
// Used for the attention scale parameters, which start at zero.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32](shape, backend)
}
