package cpu

import (
	"fmt"

	"github.com/born-ml/han/internal/tensor"
)

// Reshape returns a view of t with a new shape.
// A single -1 entry is inferred from the remaining dimensions.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	shape, err := inferShape(t.NumElements(), newShape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}

	view, err := t.View(shape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return view
}

func inferShape(numElements int, shape tensor.Shape) (tensor.Shape, error) {
	out := shape.Clone()
	infer := -1
	known := 1
	for i, d := range out {
		switch {
		case d == -1 && infer >= 0:
			return nil, fmt.Errorf("only one dimension can be inferred in %v", shape)
		case d == -1:
			infer = i
		default:
			known *= d
		}
	}
	if infer >= 0 {
		if known <= 0 || numElements%known != 0 {
			return nil, fmt.Errorf("cannot infer dimension of %v for %d elements", shape, numElements)
		}
		out[infer] = numElements / known
	}
	return out, nil
}

// Unsqueeze inserts a dimension of size 1 at dim (view, no copy).
func (cpu *CPUBackend) Unsqueeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	dim, err := tensor.NormalizeDim(dim, len(shape)+1)
	if err != nil {
		panic(fmt.Sprintf("unsqueeze: %v", err))
	}

	out := make(tensor.Shape, 0, len(shape)+1)
	out = append(out, shape[:dim]...)
	out = append(out, 1)
	out = append(out, shape[dim:]...)

	view, err := x.View(out)
	if err != nil {
		panic(fmt.Sprintf("unsqueeze: %v", err))
	}
	return view
}

// Transpose permutes dimensions. With no axes, all dimensions are reversed.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	nd := len(shape)

	if len(axes) == 0 {
		axes = make([]int, nd)
		for i := range axes {
			axes[i] = nd - 1 - i
		}
	}
	if len(axes) != nd {
		panic(fmt.Sprintf("transpose: expected %d axes, got %d", nd, len(axes)))
	}

	seen := make([]bool, nd)
	outShape := make(tensor.Shape, nd)
	for i, a := range axes {
		if a < 0 || a >= nd || seen[a] {
			panic(fmt.Sprintf("transpose: invalid permutation %v", axes))
		}
		seen[a] = true
		outShape[i] = shape[a]
	}

	result := cpu.newRaw("transpose", outShape, t.DType())

	// Source strides reordered to follow the output dimensions.
	srcStrides := t.Strides()
	strides := make([]int, nd)
	for i, a := range axes {
		strides[i] = srcStrides[a]
	}

	switch t.DType() {
	case tensor.Float32:
		permute(result.AsFloat32(), t.AsFloat32(), outShape, strides)
	case tensor.Float64:
		permute(result.AsFloat64(), t.AsFloat64(), outShape, strides)
	default:
		panic(fmt.Sprintf("transpose: unsupported dtype %s", t.DType()))
	}
	return result
}

func permute[T float](dst, src []T, outShape tensor.Shape, strides []int) {
	nd := len(outShape)
	idx := make([]int, nd)
	off := 0
	for i := range dst {
		dst[i] = src[off]
		for d := nd - 1; d >= 0; d-- {
			idx[d]++
			off += strides[d]
			if idx[d] < outShape[d] {
				break
			}
			off -= strides[d] * outShape[d]
			idx[d] = 0
		}
	}
}

// Cat concatenates tensors along dim.
// All tensors must match in every other dimension.
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: at least one tensor required")
	}

	first := tensors[0].Shape()
	dim, err := tensor.NormalizeDim(dim, len(first))
	if err != nil {
		panic(fmt.Sprintf("cat: %v", err))
	}

	outShape := first.Clone()
	outShape[dim] = 0
	for i, t := range tensors {
		s := t.Shape()
		if len(s) != len(first) || t.DType() != tensors[0].DType() {
			panic(fmt.Sprintf("cat: tensor %d has shape %v %s, expected rank %d %s",
				i, s, t.DType(), len(first), tensors[0].DType()))
		}
		for d := range s {
			if d != dim && s[d] != first[d] {
				panic(fmt.Sprintf("cat: tensor %d shape %v does not match %v outside dim %d", i, s, first, dim))
			}
		}
		outShape[dim] += s[dim]
	}

	result := cpu.newRaw("cat", outShape, tensors[0].DType())

	switch result.DType() {
	case tensor.Float32:
		parts := make([][]float32, len(tensors))
		for i, t := range tensors {
			parts[i] = t.AsFloat32()
		}
		concat(result.AsFloat32(), parts, tensors, dim)
	case tensor.Float64:
		parts := make([][]float64, len(tensors))
		for i, t := range tensors {
			parts[i] = t.AsFloat64()
		}
		concat(result.AsFloat64(), parts, tensors, dim)
	default:
		panic(fmt.Sprintf("cat: unsupported dtype %s", result.DType()))
	}
	return result
}

func concat[T float](dst []T, parts [][]T, tensors []*tensor.RawTensor, dim int) {
	outer, _, _ := splitDim(tensors[0].Shape(), dim)
	pos := 0
	for o := 0; o < outer; o++ {
		for i, t := range tensors {
			_, size, inner := splitDim(t.Shape(), dim)
			block := size * inner
			pos += copy(dst[pos:], parts[i][o*block:(o+1)*block])
		}
	}
}

// PixelShuffle rearranges [N, C*r*r, H, W] into [N, C, H*r, W*r].
func (cpu *CPUBackend) PixelShuffle(x *tensor.RawTensor, factor int) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("pixel_shuffle: input must be 4D [N,C,H,W], got %dD", len(shape)))
	}
	if factor <= 0 || shape[1]%(factor*factor) != 0 {
		panic(fmt.Sprintf("pixel_shuffle: channels %d not divisible by factor^2 (factor=%d)", shape[1], factor))
	}

	N, C, H, W := shape[0], shape[1]/(factor*factor), shape[2], shape[3]
	result := cpu.newRaw("pixel_shuffle", tensor.Shape{N, C, H * factor, W * factor}, x.DType())

	switch x.DType() {
	case tensor.Float32:
		pixelShuffle(result.AsFloat32(), x.AsFloat32(), N, C, H, W, factor)
	case tensor.Float64:
		pixelShuffle(result.AsFloat64(), x.AsFloat64(), N, C, H, W, factor)
	default:
		panic(fmt.Sprintf("pixel_shuffle: unsupported dtype %s", x.DType()))
	}
	return result
}

// pixelShuffle maps out[n, c, h*r+i, w*r+j] = in[n, c*r*r + i*r + j, h, w].
func pixelShuffle[T float](dst, src []T, N, C, H, W, r int) {
	HOut, WOut := H*r, W*r
	for n := 0; n < N; n++ {
		for c := 0; c < C; c++ {
			for i := 0; i < r; i++ {
				for j := 0; j < r; j++ {
					srcPlane := ((n*C+c)*r*r + i*r + j) * H * W
					for h := 0; h < H; h++ {
						dstRow := ((n*C+c)*HOut + h*r + i) * WOut
						for w := 0; w < W; w++ {
							dst[dstRow+w*r+j] = src[srcPlane+h*W+w]
						}
					}
				}
			}
		}
	}
}
