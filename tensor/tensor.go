// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for tensors used by HAN models.
//
// The package defines core types for type-safe tensor operations:
//   - Tensor[T, B]: High-level generic tensor with type safety
//   - RawTensor: Low-level untyped storage for backend implementations
//   - Backend: Interface for device-specific compute implementations
//   - Shape, DataType, Device: Core type definitions
//   - ShapeError: The error kind for every shape conflict
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{1, 3, 32, 32}, backend)
//	y := x.Sigmoid()
package tensor

import (
	"math/rand"

	"github.com/born-ml/han/internal/tensor"
)

// DType is a constraint for tensor data types (float32, float64).
type DType = tensor.DType

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// CPU is the only device tensors currently live on.
const CPU Device = tensor.CPU

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// RawTensor is the untyped storage behind a Tensor.
type RawTensor = tensor.RawTensor

// Backend is the interface compute backends implement.
type Backend = tensor.Backend

// Tensor is a generic type-safe tensor.
//
// T is the data type (float32, float64).
// B is the backend implementation.
type Tensor[T DType, B Backend] = tensor.Tensor[T, B]

// ShapeError describes which operation rejected which dimensions.
type ShapeError = tensor.ShapeError

// ErrShapeMismatch matches every shape error via errors.Is.
var ErrShapeMismatch = tensor.ErrShapeMismatch

// Creation functions

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Zeros[T, B](shape, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Ones[T, B](shape, b)
}

// Full creates a tensor filled with value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	return tensor.Full[T, B](shape, value, b)
}

// Randn creates a tensor with standard normal values. A nil rng uses the
// math/rand global source.
func Randn[T DType, B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[T, B] {
	return tensor.Randn[T, B](shape, rng, b)
}

// Rand creates a tensor with values uniform in [0, 1).
func Rand[T DType, B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[T, B] {
	return tensor.Rand[T, B](shape, rng, b)
}

// FromSlice creates a tensor from data, which must hold shape.NumElements() values.
//
// Example:
//
//	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	return tensor.FromSlice(data, shape, b)
}

// Cat concatenates tensors along dim.
func Cat[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	return tensor.Cat(tensors, dim)
}

// Stack joins same-shaped tensors along a new dimension at dim.
func Stack[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	return tensor.Stack(tensors, dim)
}
