package han

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by Config.Validate and New for settings
// that cannot describe a network.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the hyperparameters of a HAN model.
type Config struct {
	NumResGroups int // Residual groups in the body (n_resgroups)
	NumResBlocks int // RCABs per residual group (n_resblocks)
	NumFeats     int // Feature channels, a multiple of 16 (n_feats)
	KernelSize   int // Odd convolution kernel size of the body

	// Reduction is accepted for compatibility with published
	// configurations. Channel attention always divides by 16.
	Reduction int

	// ResScale is stored and reported but not applied to residual sums.
	ResScale float32

	// Upsample enables the sub-pixel upsampler in front of the tail.
	// UpsampleRatio is read only when Upsample is true.
	Upsample      bool
	UpsampleRatio int

	// MeanShift enables sub_mean on the input and add_mean on the output.
	MeanShift bool
	RGBRange  float32
	RGBMean   [3]float32
	RGBStd    [3]float32

	// Seed drives parameter initialization.
	Seed int64
}

// DefaultConfig returns the configuration of the published HAN model.
func DefaultConfig() Config {
	return Config{
		NumResGroups:  10,
		NumResBlocks:  20,
		NumFeats:      64,
		KernelSize:    3,
		Reduction:     16,
		ResScale:      1,
		UpsampleRatio: 2,
		RGBRange:      255,
		RGBMean:       [3]float32{0.5, 0.5, 0.5},
		RGBStd:        [3]float32{1, 1, 1},
	}
}

// Validate checks the configuration for values no network can be built from.
//
// Divisibility of NumFeats by the channel attention divisor is checked by
// NewCALayer and reported as tensor.ErrShapeMismatch.
func (c Config) Validate() error {
	switch {
	case c.NumResGroups <= 0:
		return fmt.Errorf("%w: num_resgroups must be positive, got %d", ErrInvalidConfig, c.NumResGroups)
	case c.NumResBlocks < 0:
		return fmt.Errorf("%w: num_resblocks must not be negative, got %d", ErrInvalidConfig, c.NumResBlocks)
	case c.NumFeats <= 0:
		return fmt.Errorf("%w: num_feats must be positive, got %d", ErrInvalidConfig, c.NumFeats)
	case c.KernelSize <= 0 || c.KernelSize%2 == 0:
		return fmt.Errorf("%w: kernel_size must be odd and positive, got %d", ErrInvalidConfig, c.KernelSize)
	case c.Upsample && c.UpsampleRatio <= 0:
		return fmt.Errorf("%w: upsample_ratio must be positive, got %d", ErrInvalidConfig, c.UpsampleRatio)
	}
	if c.MeanShift {
		if c.RGBRange <= 0 {
			return fmt.Errorf("%w: rgb_range must be positive, got %g", ErrInvalidConfig, c.RGBRange)
		}
		for i, s := range c.RGBStd {
			if s == 0 {
				return fmt.Errorf("%w: rgb_std[%d] is zero", ErrInvalidConfig, i)
			}
		}
	}
	return nil
}

// Scale returns the spatial upscale factor of the model output.
func (c Config) Scale() int {
	if c.Upsample {
		return c.UpsampleRatio
	}
	return 1
}
