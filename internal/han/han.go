// Package han implements the Holistic Attention Network for single image
// super-resolution.
//
// The network is a head convolution, a body of residual groups built from
// residual channel attention blocks (RCAB), a layer attention module (LAM)
// across the group outputs, a channel-spatial attention module (CSAM) on
// the final body features, a fusion convolution with a global skip and a
// tail convolution back to RGB.
//
// Example:
//
//	backend := cpu.New()
//	model, err := han.New(han.DefaultConfig(), backend)
//	if err != nil {
//	    return err
//	}
//	out, err := model.Forward(img) // img: [N, 3, H, W]
package han

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/born-ml/han/internal/nn"
	"github.com/born-ml/han/internal/tensor"
)

// HAN is the full super-resolution network.
//
// Forward only reads parameters, so concurrent Forward calls on one model
// are safe while nothing writes to the parameter tensors.
type HAN[B tensor.Backend] struct {
	cfg Config

	subMean *MeanShift[B] // nil unless cfg.MeanShift
	head    *nn.Conv2D[B]

	groups   []*ResidualGroup[B]
	bodyTail *nn.Conv2D[B]

	csam     *CSAM[B]
	lam      *LAM[B]
	lastConv *nn.Conv2D[B] // groups*feats -> feats
	last     *nn.Conv2D[B] // 2*feats -> feats

	upsampler *Upsampler[B] // nil unless cfg.Upsample
	tail      *nn.Conv2D[B]
	addMean   *MeanShift[B] // nil unless cfg.MeanShift

	summary []ComponentSummary
	params  []*nn.Parameter[B]
}

// ComponentSummary reports the parameter count of one top-level component.
type ComponentSummary struct {
	Name   string
	Params int
}

// New builds a HAN model and initializes its parameters from cfg.Seed.
func New[B tensor.Backend](cfg Config, backend B) (*HAN[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("han: %w", err)
	}
	if cfg.Reduction != channelReduction {
		slog.Debug("han: channel attention reduction is fixed", "configured", cfg.Reduction, "used", channelReduction)
	}

	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // weight initialization
	feats, k := cfg.NumFeats, cfg.KernelSize
	m := &HAN[B]{cfg: cfg}

	// register names a component's parameters once and records its size.
	register := func(name string, params []*nn.Parameter[B]) {
		nn.Prefix(name, params)
		m.params = append(m.params, params...)
		m.summary = append(m.summary, ComponentSummary{Name: name, Params: nn.CountParameters(params)})
	}

	if cfg.MeanShift {
		m.subMean = NewMeanShift(cfg.RGBRange, cfg.RGBMean, cfg.RGBStd, -1, backend)
		register("sub_mean", m.subMean.Parameters())
	}

	var err error
	if m.head, err = defaultConv(3, feats, k, rng, backend); err != nil {
		return nil, fmt.Errorf("han: head: %w", err)
	}
	register("head.0", m.head.Parameters())

	m.groups = make([]*ResidualGroup[B], cfg.NumResGroups)
	for i := range m.groups {
		g, err := NewResidualGroup(feats, k, cfg.Reduction, cfg.ResScale, cfg.NumResBlocks, rng, backend)
		if err != nil {
			return nil, fmt.Errorf("han: group %d: %w", i, err)
		}
		m.groups[i] = g
		register(fmt.Sprintf("body.%d", i), g.Parameters())
	}
	if m.bodyTail, err = defaultConv(feats, feats, k, rng, backend); err != nil {
		return nil, fmt.Errorf("han: body: %w", err)
	}
	register(fmt.Sprintf("body.%d", cfg.NumResGroups), m.bodyTail.Parameters())

	if m.csam, err = NewCSAM(feats, rng, backend); err != nil {
		return nil, fmt.Errorf("han: csam: %w", err)
	}
	register("CSAM", m.csam.Parameters())

	m.lam = NewLAM(backend)
	register("LAM", m.lam.Parameters())

	if m.lastConv, err = nn.NewConv2D(feats*cfg.NumResGroups, feats, 3, 3, 1, 1, true, rng, backend); err != nil {
		return nil, fmt.Errorf("han: last_conv: %w", err)
	}
	register("last_conv", m.lastConv.Parameters())

	if m.last, err = nn.NewConv2D(feats*2, feats, 3, 3, 1, 1, true, rng, backend); err != nil {
		return nil, fmt.Errorf("han: last: %w", err)
	}
	register("last", m.last.Parameters())

	tailIndex := 0
	if cfg.Upsample {
		if m.upsampler, err = NewUpsampler(cfg.UpsampleRatio, feats, rng, backend); err != nil {
			return nil, fmt.Errorf("han: %w", err)
		}
		register("tail.0", m.upsampler.Parameters())
		tailIndex = 1
	}
	if m.tail, err = defaultConv(feats, 3, k, rng, backend); err != nil {
		return nil, fmt.Errorf("han: tail: %w", err)
	}
	register(fmt.Sprintf("tail.%d", tailIndex), m.tail.Parameters())

	if cfg.MeanShift {
		m.addMean = NewMeanShift(cfg.RGBRange, cfg.RGBMean, cfg.RGBStd, 1, backend)
		register("add_mean", m.addMean.Parameters())
	}

	slog.Debug("han: model built",
		"groups", cfg.NumResGroups,
		"blocks", cfg.NumResBlocks,
		"feats", feats,
		"scale", cfg.Scale(),
		"params", nn.CountParameters(m.params),
		"backend", backend.Name())
	return m, nil
}

// Forward maps a [batch, 3, height, width] image to a
// [batch, 3, height*scale, width*scale] image.
func (m *HAN[B]) Forward(x *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	if err := checkFeatureMap("han", x.Shape(), 3); err != nil {
		return nil, fmt.Errorf("han: %w", err)
	}

	var err error
	if m.subMean != nil {
		if x, err = m.subMean.Forward(x); err != nil {
			return nil, fmt.Errorf("han: sub_mean: %w", err)
		}
	}

	head, err := m.head.Forward(x)
	if err != nil {
		return nil, fmt.Errorf("han: head: %w", err)
	}

	residual := head
	outputs := make([]*tensor.Tensor[float32, B], 0, len(m.groups))
	for i, g := range m.groups {
		if residual, err = g.Forward(residual); err != nil {
			return nil, fmt.Errorf("han: group %d: %w", i, err)
		}
		outputs = append(outputs, residual)
	}
	if residual, err = m.bodyTail.Forward(residual); err != nil {
		return nil, fmt.Errorf("han: body: %w", err)
	}

	spatial, err := m.csam.Forward(residual)
	if err != nil {
		return nil, fmt.Errorf("han: csam: %w", err)
	}
	layered, err := m.lam.Forward(stackNewestFirst(outputs))
	if err != nil {
		return nil, fmt.Errorf("han: lam: %w", err)
	}
	if layered, err = m.lastConv.Forward(layered); err != nil {
		return nil, fmt.Errorf("han: last_conv: %w", err)
	}

	fused, err := m.last.Forward(tensor.Cat([]*tensor.Tensor[float32, B]{spatial, layered}, 1))
	if err != nil {
		return nil, fmt.Errorf("han: last: %w", err)
	}
	out := fused.Add(head)

	if m.upsampler != nil {
		if out, err = m.upsampler.Forward(out); err != nil {
			return nil, fmt.Errorf("han: %w", err)
		}
	}
	if out, err = m.tail.Forward(out); err != nil {
		return nil, fmt.Errorf("han: tail: %w", err)
	}
	if m.addMean != nil {
		if out, err = m.addMean.Forward(out); err != nil {
			return nil, fmt.Errorf("han: add_mean: %w", err)
		}
	}
	return out, nil
}

// stackNewestFirst stacks group outputs along a new axis 1 with the last
// group first: [RG_n, ..., RG_1].
func stackNewestFirst[B tensor.Backend](outputs []*tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	reversed := make([]*tensor.Tensor[float32, B], len(outputs))
	for i, t := range outputs {
		reversed[len(outputs)-1-i] = t
	}
	return tensor.Stack(reversed, 1)
}

// Config returns the configuration the model was built from.
func (m *HAN[B]) Config() Config {
	return m.cfg
}

// Groups returns the residual groups in application order.
func (m *HAN[B]) Groups() []*ResidualGroup[B] {
	return m.groups
}

// LAM returns the layer attention module.
func (m *HAN[B]) LAM() *LAM[B] {
	return m.lam
}

// CSAM returns the channel-spatial attention module.
func (m *HAN[B]) CSAM() *CSAM[B] {
	return m.csam
}

// Parameters returns every parameter in construction order. Names follow
// PyTorch state dict keys, e.g. "body.0.body.1.body.3.body.0.weight".
func (m *HAN[B]) Parameters() []*nn.Parameter[B] {
	return m.params
}

// NumParameters returns the total number of scalar parameters.
func (m *HAN[B]) NumParameters() int {
	return nn.CountParameters(m.params)
}

// Summary returns per-component parameter counts in forward order.
func (m *HAN[B]) Summary() []ComponentSummary {
	return append([]ComponentSummary(nil), m.summary...)
}
