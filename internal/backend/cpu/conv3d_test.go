package cpu

import (
	"testing"

	"github.com/born-ml/han/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// naiveConv3D is the direct six-loop definition the fast path is checked against.
func naiveConv3D(in []float32, N, C, D, H, W int, k []float32, COut, K, pad int) []float32 {
	out := make([]float32, N*COut*D*H*W)
	for n := 0; n < N; n++ {
		for co := 0; co < COut; co++ {
			for d := 0; d < D; d++ {
				for h := 0; h < H; h++ {
					for w := 0; w < W; w++ {
						var sum float32
						for c := 0; c < C; c++ {
							for kd := 0; kd < K; kd++ {
								for kh := 0; kh < K; kh++ {
									for kw := 0; kw < K; kw++ {
										id, ih, iw := d+kd-pad, h+kh-pad, w+kw-pad
										if id < 0 || id >= D || ih < 0 || ih >= H || iw < 0 || iw >= W {
											continue
										}
										sum += in[(((n*C+c)*D+id)*H+ih)*W+iw] *
											k[(((co*C+c)*K+kd)*K+kh)*K+kw]
									}
								}
							}
						}
						out[(((n*COut+co)*D+d)*H+h)*W+w] = sum
					}
				}
			}
		}
	}
	return out
}

func TestConv3D_MatchesNaive(t *testing.T) {
	backend := New()

	N, C, D, H, W := 2, 1, 4, 3, 5
	input := tensor.Randn[float32](tensor.Shape{N, C, D, H, W}, nil, backend).Raw()
	kernel := tensor.Randn[float32](tensor.Shape{1, C, 3, 3, 3}, nil, backend).Raw()

	output := backend.Conv3D(input, kernel, 1, 1)
	require.Equal(t, tensor.Shape{N, 1, D, H, W}, output.Shape())

	expected := naiveConv3D(input.AsFloat32(), N, C, D, H, W, kernel.AsFloat32(), 1, 3, 1)
	assert.InDeltaSlice(t, expected, output.AsFloat32(), 1e-4)
}

func TestConv3D_CenterTapIsIdentity(t *testing.T) {
	backend := New()

	input := rawFrom(t, tensor.Shape{1, 1, 2, 2, 2}, seq(8))
	k := make([]float32, 27)
	k[13] = 1 // centre of the 3x3x3 cube
	kernel := rawFrom(t, tensor.Shape{1, 1, 3, 3, 3}, k)

	output := backend.Conv3D(input, kernel, 1, 1)
	assert.Equal(t, seq(8), output.AsFloat32())
}

func TestConv3D_RejectsRank(t *testing.T) {
	backend := New()
	input := rawFrom(t, tensor.Shape{1, 1, 2, 2}, seq(4))
	kernel := rawFrom(t, tensor.Shape{1, 1, 3, 3, 3}, make([]float32, 27))

	assert.Panics(t, func() { backend.Conv3D(input, kernel, 1, 1) })
}
