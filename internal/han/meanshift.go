package han

import (
	"github.com/born-ml/han/internal/nn"
	"github.com/born-ml/han/internal/tensor"
)

// MeanShift is a fixed 1x1 convolution over RGB that subtracts (sign -1)
// or adds back (sign +1) the dataset mean:
//
//	out_c = (x_c + sign * rgbRange * mean_c) / std_c
//
// Its weight and bias are buffers, never trained.
type MeanShift[B tensor.Backend] struct {
	weight *nn.Parameter[B] // [3, 3, 1, 1], diagonal 1/std
	bias   *nn.Parameter[B] // [3]
}

// NewMeanShift creates a mean shift for images in [0, rgbRange].
func NewMeanShift[B tensor.Backend](rgbRange float32, mean, std [3]float32, sign float32, backend B) *MeanShift[B] {
	weight := tensor.Zeros[float32](tensor.Shape{3, 3, 1, 1}, backend)
	bias := tensor.Zeros[float32](tensor.Shape{3}, backend)
	w, b := weight.Data(), bias.Data()
	for c := 0; c < 3; c++ {
		w[c*3+c] = 1 / std[c]
		b[c] = sign * rgbRange * mean[c] / std[c]
	}
	return &MeanShift[B]{
		weight: nn.NewBuffer("weight", weight),
		bias:   nn.NewBuffer("bias", bias),
	}
}

// Forward applies the shift to a [batch, 3, height, width] image.
func (m *MeanShift[B]) Forward(x *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	if err := checkFeatureMap("mean_shift", x.Shape(), 3); err != nil {
		return nil, err
	}
	backend := x.Backend()
	out := tensor.New[float32, B](backend.Conv2D(x.Raw(), m.weight.Tensor().Raw(), 1, 0), backend)
	return out.Add(m.bias.Tensor().Reshape(1, 3, 1, 1)), nil
}

// Parameters returns the fixed weight and bias.
func (m *MeanShift[B]) Parameters() []*nn.Parameter[B] {
	return []*nn.Parameter[B]{m.weight, m.bias}
}
