package nn

import (
	"github.com/born-ml/han/internal/tensor"
)

// Parameter represents a learnable tensor of a neural network.
//
// Parameters are created once by a module constructor and persist for the
// lifetime of the module. Forward passes only read them; an external
// optimizer may write into Tensor().Data() between passes.
//
// Example:
//
//	weight := nn.NewParameter("weight", weightTensor)
//	w := weight.Tensor()
type Parameter[B tensor.Backend] struct {
	name      string                     // Parameter name (e.g., "head.weight")
	tensor    *tensor.Tensor[float32, B] // The parameter tensor
	trainable bool                       // False for fixed buffers such as mean-shift weights
}

// NewParameter creates a new trainable parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{
		name:      name,
		tensor:    t,
		trainable: true,
	}
}

// NewBuffer creates a fixed, non-trainable parameter.
func NewBuffer[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// Trainable reports whether an optimizer should update this parameter.
func (p *Parameter[B]) Trainable() bool {
	return p.trainable
}

// NumElements returns the number of scalar values held by the parameter.
func (p *Parameter[B]) NumElements() int {
	return p.tensor.NumElements()
}

// Prefix prepends prefix and a dot to the name of every parameter in params.
// Constructors call it once, when a child module is attached.
// It returns params for chaining.
func Prefix[B tensor.Backend](prefix string, params []*Parameter[B]) []*Parameter[B] {
	for _, p := range params {
		p.name = prefix + "." + p.name
	}
	return params
}
