package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/han/internal/tensor"
)

// ReLU applies max(0, x) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	result := cpu.newRaw("relu", x.Shape(), x.DType())
	switch x.DType() {
	case tensor.Float32:
		unary(result.AsFloat32(), x.AsFloat32(), relu[float32])
	case tensor.Float64:
		unary(result.AsFloat64(), x.AsFloat64(), relu[float64])
	default:
		panic(fmt.Sprintf("relu: unsupported dtype %s", x.DType()))
	}
	return result
}

// Sigmoid applies 1 / (1 + exp(-x)) element-wise.
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	result := cpu.newRaw("sigmoid", x.Shape(), x.DType())
	switch x.DType() {
	case tensor.Float32:
		unary(result.AsFloat32(), x.AsFloat32(), sigmoid[float32])
	case tensor.Float64:
		unary(result.AsFloat64(), x.AsFloat64(), sigmoid[float64])
	default:
		panic(fmt.Sprintf("sigmoid: unsupported dtype %s", x.DType()))
	}
	return result
}

func relu[T float](v T) T {
	if v > 0 {
		return v
	}
	return 0
}

// sigmoid is evaluated in the numerically stable split form.
func sigmoid[T float](v T) T {
	x := float64(v)
	if x >= 0 {
		return T(1 / (1 + math.Exp(-x)))
	}
	e := math.Exp(x)
	return T(e / (1 + e))
}

// Softmax computes softmax along the specified dimension.
// Softmax(x_i) = exp(x_i - max) / sum(exp(x_j - max)) for all j in dimension.
func (cpu *CPUBackend) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	dim, err := tensor.NormalizeDim(dim, len(shape))
	if err != nil {
		panic(fmt.Sprintf("softmax: %v", err))
	}

	result := cpu.newRaw("softmax", shape, x.DType())

	switch x.DType() {
	case tensor.Float32:
		softmax(result.AsFloat32(), x.AsFloat32(), shape, dim)
	case tensor.Float64:
		softmax(result.AsFloat64(), x.AsFloat64(), shape, dim)
	default:
		panic(fmt.Sprintf("softmax: unsupported dtype %s (only float32/float64 supported)", x.DType()))
	}

	return result
}

func softmax[T float](dst, src []T, shape tensor.Shape, dim int) {
	outer, size, inner := splitDim(shape, dim)

	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			base := o*size*inner + in

			// Find max for numerical stability
			maxVal := math.Inf(-1)
			for i := 0; i < size; i++ {
				maxVal = math.Max(maxVal, float64(src[base+i*inner]))
			}

			var sum float64
			for i := 0; i < size; i++ {
				idx := base + i*inner
				e := math.Exp(float64(src[idx]) - maxVal)
				dst[idx] = T(e)
				sum += e
			}

			for i := 0; i < size; i++ {
				idx := base + i*inner
				dst[idx] = T(float64(dst[idx]) / sum)
			}
		}
	}
}
