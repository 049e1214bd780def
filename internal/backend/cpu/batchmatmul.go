package cpu

import (
	"fmt"

	"github.com/born-ml/han/internal/parallel"
	"github.com/born-ml/han/internal/tensor"
)

// BatchMatMul performs batched matrix multiplication.
//
// For 3D: [B, M, K] @ [B, K, N] -> [B, M, N]
//
// The last two dimensions are treated as matrix dimensions.
// All leading dimensions must match (batch dimensions).
func (cpu *CPUBackend) BatchMatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()
	ndim := len(aShape)

	if ndim < 3 {
		panic(fmt.Sprintf("BatchMatMul: inputs must be at least 3D, got %dD", ndim))
	}
	if len(bShape) != ndim {
		panic(fmt.Sprintf("BatchMatMul: dimension mismatch, got %dD and %dD", ndim, len(bShape)))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("BatchMatMul: dtype mismatch %s vs %s", a.DType(), b.DType()))
	}

	for i := 0; i < ndim-2; i++ {
		if aShape[i] != bShape[i] {
			panic(fmt.Sprintf("BatchMatMul: batch dimension mismatch at dim %d: %d vs %d", i, aShape[i], bShape[i]))
		}
	}

	m := aShape[ndim-2]
	k1 := aShape[ndim-1]
	k2 := bShape[ndim-2]
	n := bShape[ndim-1]

	if k1 != k2 {
		panic(fmt.Sprintf("BatchMatMul: inner dimension mismatch: %d vs %d", k1, k2))
	}

	batchSize := 1
	for i := 0; i < ndim-2; i++ {
		batchSize *= aShape[i]
	}

	outShape := make(tensor.Shape, ndim)
	copy(outShape, aShape[:ndim-2])
	outShape[ndim-2] = m
	outShape[ndim-1] = n

	result := cpu.newRaw("BatchMatMul", outShape, a.DType())

	switch a.DType() {
	case tensor.Float32:
		batchMatmul(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), batchSize, m, k1, n, cpu.parallel)
	case tensor.Float64:
		batchMatmul(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), batchSize, m, k1, n, cpu.parallel)
	default:
		panic(fmt.Sprintf("BatchMatMul: unsupported dtype %s", a.DType()))
	}

	return result
}

func batchMatmul[T float](c, a, b []T, batchSize, m, k, n int, cfg parallel.Config) {
	sizeA, sizeB, sizeC := m*k, k*n, m*n
	parallel.For(batchSize, func(i int) {
		gemm(false, m, n, k,
			a[i*sizeA:(i+1)*sizeA],
			b[i*sizeB:(i+1)*sizeB],
			c[i*sizeC:(i+1)*sizeC])
	}, cfg)
}
