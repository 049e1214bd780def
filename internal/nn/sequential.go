package nn

import (
	"fmt"

	"github.com/born-ml/han/internal/tensor"
)

// Sequential is a container module that chains multiple modules together.
//
// Each module's output becomes the next module's input, creating a
// sequential pipeline of transformations.
//
// Example:
//
//	body := nn.NewSequential[B](
//	    conv1,
//	    nn.NewReLU[B](),
//	    conv2,
//	)
//
//	output, err := body.Forward(input)
//
// This is equivalent to:
//
//	h1, err := conv1.Forward(input)
//	h2, err := relu.Forward(h1)
//	output, err := conv2.Forward(h2)
type Sequential[B tensor.Backend] struct {
	modules []Module[B]
}

// NewSequential creates a new Sequential container.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return &Sequential[B]{
		modules: modules,
	}
}

// Forward applies all modules in sequence.
//
// The first failing module stops the chain; its error is wrapped with the
// module index.
func (s *Sequential[B]) Forward(input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	output := input

	for i, module := range s.modules {
		var err error
		output, err = module.Forward(output)
		if err != nil {
			return nil, fmt.Errorf("module %d: %w", i, err)
		}
	}

	return output, nil
}

// Parameters returns all parameters from all modules, in module order.
func (s *Sequential[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]

	for _, module := range s.modules {
		params = append(params, module.Parameters()...)
	}

	return params
}

// Add appends a module to the sequence.
func (s *Sequential[B]) Add(module Module[B]) {
	s.modules = append(s.modules, module)
}

// Len returns the number of modules in the sequence.
func (s *Sequential[B]) Len() int {
	return len(s.modules)
}

// Module returns the module at the given index.
//
// Panics if index is out of bounds.
func (s *Sequential[B]) Module(index int) Module[B] {
	if index < 0 || index >= len(s.modules) {
		panic("Sequential.Module: index out of bounds")
	}
	return s.modules[index]
}
