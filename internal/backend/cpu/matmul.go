package cpu

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"
)

// gemm computes c[m,n] = a[m,k] · op(b), where op(b) is b[k,n] or, with
// transB, b[n,k]ᵀ. All operands are dense row-major slices.
func gemm[T float](transB bool, m, n, k int, a, b, c []T) {
	tB := blas.NoTrans
	bRows, bCols := k, n
	if transB {
		tB = blas.Trans
		bRows, bCols = n, k
	}

	switch a := any(a).(type) {
	case []float32:
		blas32.Gemm(blas.NoTrans, tB, 1,
			blas32.General{Rows: m, Cols: k, Stride: k, Data: a},
			blas32.General{Rows: bRows, Cols: bCols, Stride: bCols, Data: any(b).([]float32)},
			0,
			blas32.General{Rows: m, Cols: n, Stride: n, Data: any(c).([]float32)})
	case []float64:
		blas64.Gemm(blas.NoTrans, tB, 1,
			blas64.General{Rows: m, Cols: k, Stride: k, Data: a},
			blas64.General{Rows: bRows, Cols: bCols, Stride: bCols, Data: any(b).([]float64)},
			0,
			blas64.General{Rows: m, Cols: n, Stride: n, Data: any(c).([]float64)})
	default:
		panic("gemm: unsupported element type")
	}
}
