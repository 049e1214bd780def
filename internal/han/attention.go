package han

import (
	"github.com/born-ml/han/internal/nn"
	"github.com/born-ml/han/internal/tensor"
)

// selfAttention attends tokens [batch, n, d] over each other.
//
// The energy query·keyᵀ is zero-centered as rowmax(energy) - energy before
// the softmax, so the returned attention [batch, n, n] is row-stochastic.
// query, key and value are all x.
func selfAttention[B tensor.Backend](x *tensor.Tensor[float32, B]) (attention, out *tensor.Tensor[float32, B]) {
	energy := x.BatchMatMul(x.Transpose(0, 2, 1))
	centered := energy.MaxDim(2, true).Sub(energy)
	attention = centered.Softmax(2)
	return attention, attention.BatchMatMul(x)
}

// newScale creates a learnable [1] scale that starts at zero.
func newScale[B tensor.Backend](name string, backend B) *nn.Parameter[B] {
	return nn.NewParameter(name, nn.Zeros(tensor.Shape{1}, backend))
}
