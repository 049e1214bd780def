package tensor

import (
	"math"
	"math/rand"
)

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	backend := cpu.New()
//	t := tensor.Zeros[float32](Shape{3, 4}, backend)
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	var dummy T
	raw, err := NewRaw(shape, inferDataType(dummy), b.Device())
	if err != nil {
		panic(err) // Shape validation should prevent this
	}

	// Data is already zero-initialized by make()
	return New[T, B](raw, b)
}

// Ones creates a tensor filled with ones.
//
// Example:
//
//	t := tensor.Ones[float64](Shape{2, 3}, backend)
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T, B](shape, 1, b)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	t := tensor.Full[float32](Shape{3, 3}, 3.14, backend)
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Randn creates a tensor with random values from a normal distribution (mean=0, std=1).
// Uses Box-Muller transform for generating normal distribution.
// A nil rng draws from the math/rand global source.
//
// Example:
//
//	t := tensor.Randn[float32](Shape{100, 100}, nil, backend)
func Randn[T DType, B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	float := floatSource(rng)

	for i := 0; i < len(data); i += 2 {
		u1 := 1 - float() // (0, 1], keeps Log finite
		u2 := float()
		r := math.Sqrt(-2.0 * math.Log(u1))
		data[i] = T(r * math.Cos(2.0*math.Pi*u2))
		if i+1 < len(data) {
			data[i+1] = T(r * math.Sin(2.0*math.Pi*u2))
		}
	}
	return t
}

// Rand creates a tensor with random values uniformly distributed in [0, 1).
// A nil rng draws from the math/rand global source.
func Rand[T DType, B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[T, B] {
	return Uniform[T, B](shape, 0, 1, rng, b)
}

// Uniform creates a tensor with values drawn from U(low, high).
// A nil rng draws from the math/rand global source.
func Uniform[T DType, B Backend](shape Shape, low, high float64, rng *rand.Rand, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	float := floatSource(rng)
	for i := range data {
		data[i] = T(low + float()*(high-low))
	}
	return t
}

func floatSource(rng *rand.Rand) func() float64 {
	if rng == nil {
		return rand.Float64 //nolint:gosec // G404: ML uses math/rand intentionally
	}
	return rng.Float64
}
