// Package cpu implements the CPU backend with gonum BLAS for the matrix products.
package cpu

import (
	"fmt"

	"github.com/born-ml/han/internal/parallel"
	"github.com/born-ml/han/internal/tensor"
)

// float is the element constraint for the CPU kernels.
type float interface {
	~float32 | ~float64
}

// CPUBackend implements tensor operations on CPU.
//
// Batch items of the convolution kernels are spread across goroutines
// according to the parallel configuration. The backend holds no mutable
// state, so one instance may serve concurrent forward passes.
type CPUBackend struct {
	device   tensor.Device
	parallel parallel.Config
}

// New creates a new CPU backend using one worker per CPU.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with an explicit parallel configuration.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		device:   tensor.CPU,
		parallel: cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Parallel returns the worker configuration.
func (cpu *CPUBackend) Parallel() parallel.Config {
	return cpu.parallel
}

// newRaw allocates a result tensor and panics on invalid shapes.
func (cpu *CPUBackend) newRaw(op string, shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape, dtype, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}
	return result
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("add", a, b,
		func(x, y float32) float32 { return x + y },
		func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("sub", a, b,
		func(x, y float32) float32 { return x - y },
		func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("mul", a, b,
		func(x, y float32) float32 { return x * y },
		func(x, y float64) float64 { return x * y })
}

// MulScalar multiplies every element of x by scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	result := cpu.newRaw("mul_scalar", x.Shape(), x.DType())
	switch x.DType() {
	case tensor.Float32:
		s := float32(scalar)
		unary(result.AsFloat32(), x.AsFloat32(), func(v float32) float32 { return v * s })
	case tensor.Float64:
		unary(result.AsFloat64(), x.AsFloat64(), func(v float64) float64 { return v * scalar })
	default:
		panic(fmt.Sprintf("mul_scalar: unsupported dtype %s", x.DType()))
	}
	return result
}

func (cpu *CPUBackend) binary(
	op string,
	a, b *tensor.RawTensor,
	f32 func(x, y float32) float32,
	f64 func(x, y float64) float64,
) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", op, a.DType(), b.DType()))
	}

	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}

	result := cpu.newRaw(op, outShape, a.DType())

	switch a.DType() {
	case tensor.Float32:
		if needsBroadcast {
			broadcastBinary(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), a.Shape(), b.Shape(), outShape, f32)
		} else {
			elementwise(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), f32)
		}
	case tensor.Float64:
		if needsBroadcast {
			broadcastBinary(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), a.Shape(), b.Shape(), outShape, f64)
		} else {
			elementwise(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), f64)
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, a.DType()))
	}

	return result
}
