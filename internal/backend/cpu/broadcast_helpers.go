package cpu

import "github.com/born-ml/han/internal/tensor"

func unary[T float](dst, src []T, f func(T) T) {
	for i, v := range src {
		dst[i] = f(v)
	}
}

func elementwise[T float](dst, a, b []T, f func(x, y T) T) {
	for i := range dst {
		dst[i] = f(a[i], b[i])
	}
}

// broadcastStrides returns strides of s aligned to out, with 0 on broadcast dims.
func broadcastStrides(s, out tensor.Shape) []int {
	strides := make([]int, len(out))
	src := s.ComputeStrides()
	offset := len(out) - len(s)
	for i := range s {
		if s[i] != 1 {
			strides[offset+i] = src[i]
		}
	}
	return strides
}

// broadcastBinary walks the output in row-major order, advancing each
// operand's offset by its broadcast stride.
func broadcastBinary[T float](dst, a, b []T, aShape, bShape, out tensor.Shape, f func(x, y T) T) {
	nd := len(out)
	as := broadcastStrides(aShape, out)
	bs := broadcastStrides(bShape, out)
	idx := make([]int, nd)
	aOff, bOff := 0, 0

	for i := range dst {
		dst[i] = f(a[aOff], b[bOff])
		for d := nd - 1; d >= 0; d-- {
			idx[d]++
			aOff += as[d]
			bOff += bs[d]
			if idx[d] < out[d] {
				break
			}
			aOff -= as[d] * out[d]
			bOff -= bs[d] * out[d]
			idx[d] = 0
		}
	}
}

// splitDim returns the outer, size and inner extents around dim.
func splitDim(shape tensor.Shape, dim int) (outer, size, inner int) {
	outer, inner = 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	return outer, shape[dim], inner
}
