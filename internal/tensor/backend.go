package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations.
//
// Kernels panic on malformed input. Callers that need an error instead
// validate shapes first (see CheckRank, CheckDim and ShapeError).
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor

	// MulScalar multiplies every element by scalar.
	MulScalar(x *RawTensor, scalar float64) *RawTensor

	// BatchMatMul performs batched matrix multiplication for 3D tensors.
	// [B, M, K] @ [B, K, N] -> [B, M, N]
	BatchMatMul(a, b *RawTensor) *RawTensor

	// Convolutional operations
	Conv2D(input, kernel *RawTensor, stride, padding int) *RawTensor
	Conv3D(input, kernel *RawTensor, stride, padding int) *RawTensor
	PixelShuffle(x *RawTensor, factor int) *RawTensor

	// Shape operations
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor
	Unsqueeze(x *RawTensor, dim int) *RawTensor
	Cat(tensors []*RawTensor, dim int) *RawTensor

	// Activation functions
	ReLU(x *RawTensor) *RawTensor
	Sigmoid(x *RawTensor) *RawTensor
	Softmax(x *RawTensor, dim int) *RawTensor

	// Reduction operations
	MeanDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	MaxDim(x *RawTensor, dim int, keepDim bool) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
