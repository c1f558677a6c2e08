package render

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Binding slots of the effect's single bind group. The order is fixed
// and mirrored by the @binding attributes in the shader source.
const (
	bindingSourceColor   = 0
	bindingDepth         = 1
	bindingNormal        = 2
	bindingLinearSampler = 3
	bindingNoiseTexture  = 4
	bindingNoiseSampler  = 5
	bindingViewUniform   = 6
	bindingEffectUniform = 7
)

// Layouts holds the two immutable bind group layouts of the effect
// (single-sampled and multisampled prepass inputs), the two shared
// samplers, and the matching pipeline layouts. Built once at node
// construction and shared read-only by every pipeline variant.
type Layouts struct {
	device hal.Device

	single hal.BindGroupLayout
	multi  hal.BindGroupLayout

	pipelineSingle hal.PipelineLayout
	pipelineMulti  hal.PipelineLayout

	// linearSampler filters the source color texture. Clamped so the
	// distorted detection UV never wraps to the opposite screen edge.
	linearSampler hal.Sampler

	// noiseSampler tiles the noise texture with repeat addressing.
	noiseSampler hal.Sampler
}

// NewLayouts creates both bind group layouts, the shared samplers, and
// the pipeline layouts. On error, partially created resources are
// released before returning.
func NewLayouts(device hal.Device) (*Layouts, error) {
	l := &Layouts{device: device}

	var err error
	l.linearSampler, err = device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "edge_detection_linear_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return nil, fmt.Errorf("create linear sampler: %w", err)
	}

	l.noiseSampler, err = device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "edge_detection_noise_sampler",
		AddressModeU: gputypes.AddressModeRepeat,
		AddressModeV: gputypes.AddressModeRepeat,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		l.Destroy()
		return nil, fmt.Errorf("create noise sampler: %w", err)
	}

	l.single, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "edge_detection_layout",
		Entries: bindGroupLayoutEntries(false),
	})
	if err != nil {
		l.Destroy()
		return nil, fmt.Errorf("create bind group layout: %w", err)
	}

	l.multi, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "edge_detection_layout_msaa",
		Entries: bindGroupLayoutEntries(true),
	})
	if err != nil {
		l.Destroy()
		return nil, fmt.Errorf("create MSAA bind group layout: %w", err)
	}

	l.pipelineSingle, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "edge_detection_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{l.single},
	})
	if err != nil {
		l.Destroy()
		return nil, fmt.Errorf("create pipeline layout: %w", err)
	}

	l.pipelineMulti, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "edge_detection_pipeline_layout_msaa",
		BindGroupLayouts: []hal.BindGroupLayout{l.multi},
	})
	if err != nil {
		l.Destroy()
		return nil, fmt.Errorf("create MSAA pipeline layout: %w", err)
	}

	return l, nil
}

// bindGroupLayoutEntries returns the eight entries of one layout
// variant, in fixed binding order, all fragment-stage only. The
// multisampled variant declares the depth and normal textures as MSAA;
// MSAA color textures cannot be filtered, so the normal texture drops
// to an unfilterable sample type there.
func bindGroupLayoutEntries(multisampled bool) []gputypes.BindGroupLayoutEntry {
	normalSampleType := gputypes.TextureSampleTypeFloat
	if multisampled {
		normalSampleType = gputypes.TextureSampleTypeUnfilterableFloat
	}
	return []gputypes.BindGroupLayoutEntry{
		{
			Binding:    bindingSourceColor,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		},
		{
			Binding:    bindingDepth,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeDepth,
				ViewDimension: gputypes.TextureViewDimension2D,
				Multisampled:  multisampled,
			},
		},
		{
			Binding:    bindingNormal,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    normalSampleType,
				ViewDimension: gputypes.TextureViewDimension2D,
				Multisampled:  multisampled,
			},
		},
		{
			Binding:    bindingLinearSampler,
			Visibility: gputypes.ShaderStageFragment,
			Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
		},
		{
			Binding:    bindingNoiseTexture,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		},
		{
			Binding:    bindingNoiseSampler,
			Visibility: gputypes.ShaderStageFragment,
			Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
		},
		{
			Binding:    bindingViewUniform,
			Visibility: gputypes.ShaderStageFragment,
			Buffer: &gputypes.BufferBindingLayout{
				Type:             gputypes.BufferBindingTypeUniform,
				HasDynamicOffset: true,
			},
		},
		{
			Binding:    bindingEffectUniform,
			Visibility: gputypes.ShaderStageFragment,
			Buffer: &gputypes.BufferBindingLayout{
				Type:             gputypes.BufferBindingTypeUniform,
				HasDynamicOffset: true,
			},
		},
	}
}

// BindGroupLayout returns the layout variant for the given multisample
// state. The choice must match the pipeline the bind group is used
// with; Node keeps the two in sync through the specialization key.
func (l *Layouts) BindGroupLayout(multisampled bool) hal.BindGroupLayout {
	if multisampled {
		return l.multi
	}
	return l.single
}

// pipelineLayout returns the pipeline layout variant for the given
// multisample state.
func (l *Layouts) pipelineLayout(multisampled bool) hal.PipelineLayout {
	if multisampled {
		return l.pipelineMulti
	}
	return l.pipelineSingle
}

// Destroy releases all layout resources. Safe to call multiple times
// and on a partially constructed value.
func (l *Layouts) Destroy() {
	if l.pipelineMulti != nil {
		l.device.DestroyPipelineLayout(l.pipelineMulti)
		l.pipelineMulti = nil
	}
	if l.pipelineSingle != nil {
		l.device.DestroyPipelineLayout(l.pipelineSingle)
		l.pipelineSingle = nil
	}
	if l.multi != nil {
		l.device.DestroyBindGroupLayout(l.multi)
		l.multi = nil
	}
	if l.single != nil {
		l.device.DestroyBindGroupLayout(l.single)
		l.single = nil
	}
	if l.noiseSampler != nil {
		l.device.DestroySampler(l.noiseSampler)
		l.noiseSampler = nil
	}
	if l.linearSampler != nil {
		l.device.DestroySampler(l.linearSampler)
		l.linearSampler = nil
	}
}
