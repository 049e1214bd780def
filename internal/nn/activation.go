package nn

import (
	"github.com/born-ml/han/internal/tensor"
)

// ReLU is a Rectified Linear Unit activation module.
//
// Applies the element-wise function: f(x) = max(0, x)
//
// Example:
//
//	relu := nn.NewReLU[Backend]()
//	output, _ := relu.Forward(input) // All negative values become 0
type ReLU[B tensor.Backend] struct{}

// NewReLU creates a new ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return &ReLU[B]{}
}

// Forward applies ReLU activation: f(x) = max(0, x).
// It accepts any shape and never fails.
func (r *ReLU[B]) Forward(input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	return input.ReLU(), nil
}

// Parameters returns nil (ReLU has no trainable parameters).
func (r *ReLU[B]) Parameters() []*Parameter[B] {
	return nil
}

// Sigmoid is a sigmoid activation module.
//
// Applies the element-wise function: σ(x) = 1 / (1 + exp(-x))
//
// Sigmoid squashes values to the range (0, 1), which makes it the gate
// of both attention branches.
type Sigmoid[B tensor.Backend] struct{}

// NewSigmoid creates a new Sigmoid activation module.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return &Sigmoid[B]{}
}

// Forward applies Sigmoid activation: σ(x) = 1 / (1 + exp(-x)).
func (s *Sigmoid[B]) Forward(input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	return input.Sigmoid(), nil
}

// Parameters returns nil (Sigmoid has no trainable parameters).
func (s *Sigmoid[B]) Parameters() []*Parameter[B] {
	return nil
}
