package cpu

import (
	"fmt"

	"github.com/born-ml/han/internal/parallel"
	"github.com/born-ml/han/internal/tensor"
)

// Conv2D performs 2D convolution using im2col algorithm.
//
// Input shape: [batch, in_channels, height, width]
// Kernel shape: [out_channels, in_channels, kernel_h, kernel_w]
// Output shape: [batch, out_channels, out_h, out_w]
//
// Algorithm: Im2col
//  1. Transform one sample's input patches into rows (im2col)
//  2. View kernel as matrix [C_out, C_in*K_h*K_w]
//  3. Multiply kernel by the patch matrix transposed with BLAS GEMM,
//     which lands directly in [C_out, H_out*W_out] order for that sample
//
// Samples of the batch run in parallel.
func (cpu *CPUBackend) Conv2D(input, kernel *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	inputShape := input.Shape()
	kernelShape := kernel.Shape()

	if len(inputShape) != 4 {
		panic(fmt.Sprintf("conv2d: input must be 4D [N,C,H,W], got %dD", len(inputShape)))
	}
	if len(kernelShape) != 4 {
		panic(fmt.Sprintf("conv2d: kernel must be 4D [C_out,C_in,K_h,K_w], got %dD", len(kernelShape)))
	}
	if stride <= 0 || padding < 0 {
		panic(fmt.Sprintf("conv2d: invalid stride %d / padding %d", stride, padding))
	}

	p := conv2dParams{
		N:       inputShape[0],
		CIn:     inputShape[1],
		H:       inputShape[2],
		W:       inputShape[3],
		COut:    kernelShape[0],
		KH:      kernelShape[2],
		KW:      kernelShape[3],
		stride:  stride,
		padding: padding,
	}

	if p.CIn != kernelShape[1] {
		panic(fmt.Sprintf("conv2d: input channels %d != kernel channels %d", p.CIn, kernelShape[1]))
	}

	// out = (in + 2*padding - k) / stride + 1
	p.HOut = (p.H+2*padding-p.KH)/stride + 1
	p.WOut = (p.W+2*padding-p.KW)/stride + 1

	if p.HOut <= 0 || p.WOut <= 0 {
		panic(fmt.Sprintf("conv2d: invalid output dimensions: out_h=%d, out_w=%d (check stride/padding)", p.HOut, p.WOut))
	}

	output := cpu.newRaw("conv2d", tensor.Shape{p.N, p.COut, p.HOut, p.WOut}, input.DType())

	switch input.DType() {
	case tensor.Float32:
		conv2d(output.AsFloat32(), input.AsFloat32(), kernel.AsFloat32(), p, cpu.parallel)
	case tensor.Float64:
		conv2d(output.AsFloat64(), input.AsFloat64(), kernel.AsFloat64(), p, cpu.parallel)
	default:
		panic(fmt.Sprintf("conv2d: unsupported dtype %s", input.DType()))
	}

	return output
}

type conv2dParams struct {
	N, CIn, H, W    int
	COut, KH, KW    int
	HOut, WOut      int
	stride, padding int
}

func conv2d[T float](out, in, kernel []T, p conv2dParams, cfg parallel.Config) {
	colWidth := p.CIn * p.KH * p.KW
	spatial := p.HOut * p.WOut
	inSize := p.CIn * p.H * p.W
	outSize := p.COut * spatial

	parallel.For(p.N, func(n int) {
		col := make([]T, spatial*colWidth)
		im2col(col, in[n*inSize:(n+1)*inSize], p)
		gemm(true, p.COut, spatial, colWidth, kernel, col, out[n*outSize:(n+1)*outSize])
	}, cfg)
}

// im2col transforms one sample [C, H, W] into col [H_out*W_out, C*K_h*K_w].
//
// Each row of col corresponds to one output position and holds the
// flattened input patch under the kernel, zero where the patch
// overlaps the padding.
func im2col[T float](col, in []T, p conv2dParams) {
	row := 0
	for outH := 0; outH < p.HOut; outH++ {
		for outW := 0; outW < p.WOut; outW++ {
			hStart := outH*p.stride - p.padding
			wStart := outW*p.stride - p.padding

			for c := 0; c < p.CIn; c++ {
				for kh := 0; kh < p.KH; kh++ {
					h := hStart + kh
					for kw := 0; kw < p.KW; kw++ {
						w := wStart + kw
						if h >= 0 && h < p.H && w >= 0 && w < p.W {
							col[row] = in[(c*p.H+h)*p.W+w]
						} else {
							col[row] = 0
						}
						row++
					}
				}
			}
		}
	}
}
