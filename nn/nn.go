// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the neural network building blocks of HAN models.
package nn

import (
	"math/rand"

	"github.com/born-ml/han/internal/nn"
	"github.com/born-ml/han/internal/tensor"
)

// Module interface defines the common interface for all neural network modules.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter represents a named tensor owned by a module.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new trainable parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// CountParameters returns the total number of scalar values in params.
func CountParameters[B tensor.Backend](params []*Parameter[B]) int {
	return nn.CountParameters(params)
}

// Layers

// Conv2D represents a 2D convolutional layer.
type Conv2D[B tensor.Backend] = nn.Conv2D[B]

// NewConv2D creates a new 2D convolutional layer.
//
// Example:
//
//	backend := cpu.New()
//	conv, err := nn.NewConv2D(3, 64, 3, 3, 1, 1, true, nil, backend) // 3x3, stride=1, padding=1, bias
func NewConv2D[B tensor.Backend](
	inChannels, outChannels int,
	kernelH, kernelW int,
	stride, padding int,
	useBias bool,
	rng *rand.Rand,
	backend B,
) (*Conv2D[B], error) {
	return nn.NewConv2D(inChannels, outChannels, kernelH, kernelW, stride, padding, useBias, rng, backend)
}

// Conv3D represents a volumetric convolution with a cubic kernel.
type Conv3D[B tensor.Backend] = nn.Conv3D[B]

// NewConv3D creates a new 3D convolutional layer.
func NewConv3D[B tensor.Backend](inChannels, outChannels, kernelSize, stride, padding int, useBias bool, rng *rand.Rand, backend B) (*Conv3D[B], error) {
	return nn.NewConv3D(inChannels, outChannels, kernelSize, stride, padding, useBias, rng, backend)
}

// PixelShuffle rearranges channel blocks into spatial resolution.
type PixelShuffle[B tensor.Backend] = nn.PixelShuffle[B]

// NewPixelShuffle creates a pixel shuffle with the given upscale factor.
func NewPixelShuffle[B tensor.Backend](factor int) (*PixelShuffle[B], error) {
	return nn.NewPixelShuffle[B](factor)
}

// GlobalAvgPool2D averages each channel over its spatial extent.
type GlobalAvgPool2D[B tensor.Backend] = nn.GlobalAvgPool2D[B]

// NewGlobalAvgPool2D creates a global average pooling module.
func NewGlobalAvgPool2D[B tensor.Backend]() *GlobalAvgPool2D[B] {
	return nn.NewGlobalAvgPool2D[B]()
}

// Activation functions

// ReLU represents the Rectified Linear Unit activation.
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a new ReLU activation.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// Sigmoid represents the sigmoid activation.
type Sigmoid[B tensor.Backend] = nn.Sigmoid[B]

// NewSigmoid creates a new Sigmoid activation.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return nn.NewSigmoid[B]()
}

// Containers

// Sequential chains modules, feeding each output into the next.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a Sequential container.
//
// Example:
//
//	body := nn.NewSequential[B](conv1, nn.NewReLU[B](), conv2)
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}
