// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go CPU backend.
//
// Matrix products inside convolutions and attention run on gonum BLAS.
// Batch items are spread over goroutines.
package cpu

import (
	internalcpu "github.com/born-ml/han/internal/backend/cpu"
	"github.com/born-ml/han/internal/parallel"
	"github.com/born-ml/han/tensor"
)

// Backend represents the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a CPU backend with one worker per CPU.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{1, 3, 8, 8}, backend)
func New() *Backend {
	return internalcpu.New()
}

// NewWithWorkers creates a CPU backend limited to workers goroutines.
// workers <= 1 runs every kernel on the calling goroutine.
func NewWithWorkers(workers int) *Backend {
	return internalcpu.NewWithConfig(parallel.WithWorkers(workers))
}
