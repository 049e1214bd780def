// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package han provides the Holistic Attention Network for single image
// super-resolution.
//
// Example:
//
//	backend := cpu.New()
//	model, err := han.New(han.DefaultConfig(), backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := model.Forward(img) // img: [N, 3, H, W] -> [N, 3, H, W]
package han

import (
	"math/rand"

	"github.com/born-ml/han/internal/han"
	"github.com/born-ml/han/internal/tensor"
)

// Config holds the hyperparameters of a HAN model.
type Config = han.Config

// DefaultConfig returns the configuration of the published HAN model
// (10 residual groups of 20 RCABs, 64 features).
func DefaultConfig() Config {
	return han.DefaultConfig()
}

// Errors returned by New.
var (
	ErrInvalidConfig    = han.ErrInvalidConfig
	ErrUnsupportedScale = han.ErrUnsupportedScale
)

// HAN is the full super-resolution network.
type HAN[B tensor.Backend] = han.HAN[B]

// ComponentSummary reports the parameter count of one top-level component.
type ComponentSummary = han.ComponentSummary

// New builds a HAN model and initializes its parameters from cfg.Seed.
func New[B tensor.Backend](cfg Config, backend B) (*HAN[B], error) {
	return han.New(cfg, backend)
}

// Components

// CALayer is squeeze-and-excitation channel attention.
type CALayer[B tensor.Backend] = han.CALayer[B]

// NewCALayer creates channel attention; channels must be a multiple of 16.
func NewCALayer[B tensor.Backend](channels, reduction int, rng *rand.Rand, backend B) (*CALayer[B], error) {
	return han.NewCALayer(channels, reduction, rng, backend)
}

// RCAB is a residual channel attention block.
type RCAB[B tensor.Backend] = han.RCAB[B]

// NewRCAB creates a residual channel attention block.
func NewRCAB[B tensor.Backend](feats, kernelSize, reduction int, resScale float32, rng *rand.Rand, backend B) (*RCAB[B], error) {
	return han.NewRCAB(feats, kernelSize, reduction, resScale, rng, backend)
}

// ResidualGroup chains RCABs and a convolution around a skip connection.
type ResidualGroup[B tensor.Backend] = han.ResidualGroup[B]

// NewResidualGroup creates a group of numBlocks RCABs.
func NewResidualGroup[B tensor.Backend](feats, kernelSize, reduction int, resScale float32, numBlocks int, rng *rand.Rand, backend B) (*ResidualGroup[B], error) {
	return han.NewResidualGroup(feats, kernelSize, reduction, resScale, numBlocks, rng, backend)
}

// LAM is the layer attention module.
type LAM[B tensor.Backend] = han.LAM[B]

// NewLAM creates a layer attention module whose scale starts at zero.
func NewLAM[B tensor.Backend](backend B) *LAM[B] {
	return han.NewLAM(backend)
}

// CSAM is the channel-spatial attention module.
type CSAM[B tensor.Backend] = han.CSAM[B]

// NewCSAM creates a channel-spatial attention module whose scale starts at zero.
func NewCSAM[B tensor.Backend](channels int, rng *rand.Rand, backend B) (*CSAM[B], error) {
	return han.NewCSAM(channels, rng, backend)
}

// MeanShift adds or subtracts the RGB dataset mean.
type MeanShift[B tensor.Backend] = han.MeanShift[B]

// NewMeanShift creates a mean shift; sign is -1 to subtract and +1 to add.
func NewMeanShift[B tensor.Backend](rgbRange float32, mean, std [3]float32, sign float32, backend B) *MeanShift[B] {
	return han.NewMeanShift(rgbRange, mean, std, sign, backend)
}

// Upsampler enlarges feature maps with sub-pixel convolution.
type Upsampler[B tensor.Backend] = han.Upsampler[B]

// NewUpsampler creates an upsampler for scale 3 or a power of two.
func NewUpsampler[B tensor.Backend](scale, feats int, rng *rand.Rand, backend B) (*Upsampler[B], error) {
	return han.NewUpsampler(scale, feats, rng, backend)
}
