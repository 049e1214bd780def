package tensor

// Cat concatenates tensors along the specified dimension.
//
// All tensors must have the same shape except along the concatenation dimension.
// Supports negative dim indexing (-1 = last dimension).
//
// Example:
//
//	a := tensor.Randn[float32](Shape{2, 3}, nil, backend)
//	b := tensor.Randn[float32](Shape{2, 5}, nil, backend)
//	c := tensor.Cat([]*Tensor[float32, B]{a, b}, 1) // Shape: [2, 8]
func Cat[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	if len(tensors) == 0 {
		panic("cat: at least one tensor required")
	}

	if len(tensors) == 1 {
		return tensors[0].Clone()
	}

	rawTensors := make([]*RawTensor, len(tensors))
	backend := tensors[0].backend
	for i, t := range tensors {
		rawTensors[i] = t.raw
	}

	return New[T, B](backend.Cat(rawTensors, dim), backend)
}

// Stack joins same-shaped tensors along a new dimension inserted at dim.
//
// Example:
//
//	a := tensor.Zeros[float32](Shape{2, 3}, backend)
//	b := tensor.Ones[float32](Shape{2, 3}, backend)
//	s := tensor.Stack([]*Tensor[float32, B]{a, b}, 1) // Shape: [2, 2, 3]
func Stack[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	expanded := make([]*Tensor[T, B], len(tensors))
	for i, t := range tensors {
		expanded[i] = t.Unsqueeze(dim)
	}
	return Cat(expanded, dim)
}

// Unsqueeze adds a dimension of size 1 at the specified position.
//
// Supports negative dim indexing.
// This is a view operation (no data copy).
//
// Example:
//
//	x := tensor.Randn[float32](Shape{2, 3}, nil, backend)
//	y := x.Unsqueeze(1)  // Shape: [2, 1, 3]
//	z := x.Unsqueeze(-1) // Shape: [2, 3, 1]
func (t *Tensor[T, B]) Unsqueeze(dim int) *Tensor[T, B] {
	return New[T, B](t.backend.Unsqueeze(t.raw, dim), t.backend)
}
