package cpu

import (
	"fmt"

	"github.com/born-ml/han/internal/parallel"
	"github.com/born-ml/han/internal/tensor"
)

// Conv3D performs volumetric convolution using vol2col + GEMM.
//
// Input shape: [batch, in_channels, depth, height, width]
// Kernel shape: [out_channels, in_channels, kernel_d, kernel_h, kernel_w]
// Output shape: [batch, out_channels, out_d, out_h, out_w]
//
// Stride and padding apply equally to all three spatial axes.
func (cpu *CPUBackend) Conv3D(input, kernel *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	inputShape := input.Shape()
	kernelShape := kernel.Shape()

	if len(inputShape) != 5 {
		panic(fmt.Sprintf("conv3d: input must be 5D [N,C,D,H,W], got %dD", len(inputShape)))
	}
	if len(kernelShape) != 5 {
		panic(fmt.Sprintf("conv3d: kernel must be 5D [C_out,C_in,K_d,K_h,K_w], got %dD", len(kernelShape)))
	}
	if stride <= 0 || padding < 0 {
		panic(fmt.Sprintf("conv3d: invalid stride %d / padding %d", stride, padding))
	}

	p := conv3dParams{
		N:       inputShape[0],
		CIn:     inputShape[1],
		D:       inputShape[2],
		H:       inputShape[3],
		W:       inputShape[4],
		COut:    kernelShape[0],
		KD:      kernelShape[2],
		KH:      kernelShape[3],
		KW:      kernelShape[4],
		stride:  stride,
		padding: padding,
	}

	if p.CIn != kernelShape[1] {
		panic(fmt.Sprintf("conv3d: input channels %d != kernel channels %d", p.CIn, kernelShape[1]))
	}

	p.DOut = (p.D+2*padding-p.KD)/stride + 1
	p.HOut = (p.H+2*padding-p.KH)/stride + 1
	p.WOut = (p.W+2*padding-p.KW)/stride + 1

	if p.DOut <= 0 || p.HOut <= 0 || p.WOut <= 0 {
		panic(fmt.Sprintf("conv3d: invalid output dimensions: out_d=%d, out_h=%d, out_w=%d", p.DOut, p.HOut, p.WOut))
	}

	output := cpu.newRaw("conv3d", tensor.Shape{p.N, p.COut, p.DOut, p.HOut, p.WOut}, input.DType())

	switch input.DType() {
	case tensor.Float32:
		conv3d(output.AsFloat32(), input.AsFloat32(), kernel.AsFloat32(), p, cpu.parallel)
	case tensor.Float64:
		conv3d(output.AsFloat64(), input.AsFloat64(), kernel.AsFloat64(), p, cpu.parallel)
	default:
		panic(fmt.Sprintf("conv3d: unsupported dtype %s", input.DType()))
	}

	return output
}

type conv3dParams struct {
	N, CIn, D, H, W  int
	COut, KD, KH, KW int
	DOut, HOut, WOut int
	stride, padding  int
}

func conv3d[T float](out, in, kernel []T, p conv3dParams, cfg parallel.Config) {
	colWidth := p.CIn * p.KD * p.KH * p.KW
	volume := p.DOut * p.HOut * p.WOut
	inSize := p.CIn * p.D * p.H * p.W
	outSize := p.COut * volume

	parallel.For(p.N, func(n int) {
		col := make([]T, volume*colWidth)
		vol2col(col, in[n*inSize:(n+1)*inSize], p)
		gemm(true, p.COut, volume, colWidth, kernel, col, out[n*outSize:(n+1)*outSize])
	}, cfg)
}

// vol2col is the 3D counterpart of im2col: one row per output voxel.
func vol2col[T float](col, in []T, p conv3dParams) {
	row := 0
	for outD := 0; outD < p.DOut; outD++ {
		for outH := 0; outH < p.HOut; outH++ {
			for outW := 0; outW < p.WOut; outW++ {
				dStart := outD*p.stride - p.padding
				hStart := outH*p.stride - p.padding
				wStart := outW*p.stride - p.padding

				for c := 0; c < p.CIn; c++ {
					for kd := 0; kd < p.KD; kd++ {
						d := dStart + kd
						for kh := 0; kh < p.KH; kh++ {
							h := hStart + kh
							for kw := 0; kw < p.KW; kw++ {
								w := wStart + kw
								if d >= 0 && d < p.D && h >= 0 && h < p.H && w >= 0 && w < p.W {
									col[row] = in[((c*p.D+d)*p.H+h)*p.W+w]
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
	}
}
