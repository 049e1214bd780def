// Package nn implements the neural network modules HAN is assembled from.
//
// This package provides building blocks for constructing networks:
//   - Module interface: Base interface for all NN components
//   - Parameter: Learnable tensors owned by a module
//   - Conv2D, Conv3D: Convolution layers with PyTorch-default initialization
//   - Activations: ReLU, Sigmoid
//   - GlobalAvgPool2D, PixelShuffle
//   - Sequential: Container for stacking layers
//
// Design inspired by PyTorch's nn.Module but adapted for Go generics.
// Forward passes validate their input and return a *tensor.ShapeError
// (matching tensor.ErrShapeMismatch) instead of panicking in a kernel.
package nn

import (
	"github.com/born-ml/han/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Every NN module must implement:
//   - Forward: Compute output from input
//   - Parameters: Return all learnable parameters
//
// Modules can be composed to build complex architectures:
//
//	body := nn.NewSequential[B](conv1, nn.NewReLU[B](), conv2)
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	//
	// Returns an error matching tensor.ErrShapeMismatch when the input
	// does not have the shape this module expects.
	Forward(input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error)

	// Parameters returns all parameters of this module, including those
	// of nested modules. Returns nil for parameter-free modules.
	Parameters() []*Parameter[B]
}

// CountParameters returns the total number of scalar values in params.
func CountParameters[B tensor.Backend](params []*Parameter[B]) int {
	total := 0
	for _, p := range params {
		total += p.NumElements()
	}
	return total
}
