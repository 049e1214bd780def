package tensor

// Add performs element-wise addition with broadcasting.
//
// Example:
//
//	a := tensor.Ones[float32](Shape{3, 1}, backend)
//	b := tensor.Ones[float32](Shape{3, 5}, backend)
//	c := a.Add(b) // Shape: [3, 5] (broadcasted)
func (t *Tensor[T, B]) Add(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Add(t.raw, other.raw), t.backend)
}

// Sub performs element-wise subtraction with broadcasting.
func (t *Tensor[T, B]) Sub(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Sub(t.raw, other.raw), t.backend)
}

// Mul performs element-wise multiplication with broadcasting.
func (t *Tensor[T, B]) Mul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Mul(t.raw, other.raw), t.backend)
}

// MulScalar multiplies every element by scalar.
func (t *Tensor[T, B]) MulScalar(scalar T) *Tensor[T, B] {
	return New[T, B](t.backend.MulScalar(t.raw, float64(scalar)), t.backend)
}

// BatchMatMul performs batched matrix multiplication.
//
// [B, M, K] @ [B, K, N] → [B, M, N]
//
// Example:
//
//	q := tensor.Randn[float32](Shape{2, 4, 8}, nil, backend)
//	k := q.Transpose(0, 2, 1)  // [2, 8, 4]
//	energy := q.BatchMatMul(k) // [2, 4, 4]
func (t *Tensor[T, B]) BatchMatMul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.BatchMatMul(t.raw, other.raw), t.backend)
}

// Reshape returns a tensor with the same data but different shape.
// The new shape must have the same number of elements.
//
// Example:
//
//	t := tensor.Zeros[float32](Shape{12}, backend)
//	reshaped := t.Reshape(3, 4) // Shape: [3, 4]
func (t *Tensor[T, B]) Reshape(newShape ...int) *Tensor[T, B] {
	return New[T, B](t.backend.Reshape(t.raw, Shape(newShape)), t.backend)
}

// Transpose permutes the tensor's dimensions.
//
// If axes is empty, reverses all dimensions (for 2D, this is standard transpose).
//
// Example:
//
//	t := tensor.Randn[float32](Shape{2, 3, 4}, nil, backend)
//	transposed := t.Transpose(2, 0, 1) // Shape: [4, 2, 3]
func (t *Tensor[T, B]) Transpose(axes ...int) *Tensor[T, B] {
	return New[T, B](t.backend.Transpose(t.raw, axes...), t.backend)
}

// ReLU applies max(0, x) element-wise.
func (t *Tensor[T, B]) ReLU() *Tensor[T, B] {
	return New[T, B](t.backend.ReLU(t.raw), t.backend)
}

// Sigmoid applies 1 / (1 + exp(-x)) element-wise.
func (t *Tensor[T, B]) Sigmoid() *Tensor[T, B] {
	return New[T, B](t.backend.Sigmoid(t.raw), t.backend)
}

// Softmax normalizes along dim so that each slice sums to 1.
// Supports negative dim indexing (-1 = last dimension).
func (t *Tensor[T, B]) Softmax(dim int) *Tensor[T, B] {
	return New[T, B](t.backend.Softmax(t.raw, dim), t.backend)
}

// MeanDim averages along dim.
func (t *Tensor[T, B]) MeanDim(dim int, keepDim bool) *Tensor[T, B] {
	return New[T, B](t.backend.MeanDim(t.raw, dim, keepDim), t.backend)
}

// MaxDim takes the maximum along dim.
func (t *Tensor[T, B]) MaxDim(dim int, keepDim bool) *Tensor[T, B] {
	return New[T, B](t.backend.MaxDim(t.raw, dim, keepDim), t.backend)
}
