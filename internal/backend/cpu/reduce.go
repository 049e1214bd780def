package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/han/internal/tensor"
)

// MeanDim averages x along dim. With keepDim the reduced dimension stays as size 1.
func (cpu *CPUBackend) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduce("mean_dim", x, dim, keepDim, func(vals func(i int) float64, n int) float64 {
		var sum float64
		for i := 0; i < n; i++ {
			sum += vals(i)
		}
		return sum / float64(n)
	})
}

// MaxDim takes the maximum of x along dim.
func (cpu *CPUBackend) MaxDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduce("max_dim", x, dim, keepDim, func(vals func(i int) float64, n int) float64 {
		m := math.Inf(-1)
		for i := 0; i < n; i++ {
			m = math.Max(m, vals(i))
		}
		return m
	})
}

func (cpu *CPUBackend) reduce(
	op string,
	x *tensor.RawTensor,
	dim int,
	keepDim bool,
	f func(vals func(i int) float64, n int) float64,
) *tensor.RawTensor {
	shape := x.Shape()
	dim, err := tensor.NormalizeDim(dim, len(shape))
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}

	outShape := reducedShape(shape, dim, keepDim)
	result := cpu.newRaw(op, outShape, x.DType())

	switch x.DType() {
	case tensor.Float32:
		reduceAlong(result.AsFloat32(), x.AsFloat32(), shape, dim, f)
	case tensor.Float64:
		reduceAlong(result.AsFloat64(), x.AsFloat64(), shape, dim, f)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, x.DType()))
	}
	return result
}

func reduceAlong[T float](dst, src []T, shape tensor.Shape, dim int, f func(vals func(i int) float64, n int) float64) {
	outer, size, inner := splitDim(shape, dim)
	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			base := o*size*inner + in
			dst[o*inner+in] = T(f(func(i int) float64 { return float64(src[base+i*inner]) }, size))
		}
	}
}

func reducedShape(shape tensor.Shape, dim int, keepDim bool) tensor.Shape {
	out := make(tensor.Shape, 0, len(shape))
	for i, d := range shape {
		switch {
		case i != dim:
			out = append(out, d)
		case keepDim:
			out = append(out, 1)
		}
	}
	if len(out) == 0 {
		// Reducing a 1D tensor without keepDim yields a single-element tensor.
		out = append(out, 1)
	}
	return out
}
