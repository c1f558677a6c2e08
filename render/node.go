package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/edgefx"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Node construction errors.
var (
	// ErrNilDevice is returned when NewNode receives a nil device or
	// queue.
	ErrNilDevice = errors.New("edgefx: nil device or queue")
)

// Config carries the host-supplied settings of the effect node.
type Config struct {
	// Before names the downstream render-graph node the effect pass
	// is inserted in front of. The host scheduler interprets the
	// label; edgefx only stores it. Empty means the default, the
	// anti-aliasing stage.
	Before string

	// DepthSamplingSupported reports whether the platform can sample
	// depth textures the way the effect requires. When false the
	// node stays registered but every view prepares as not
	// applicable and the pass never draws. Detected once by the host
	// at initialization.
	DepthSamplingSupported bool

	// NoiseSize is the edge length of the generated noise texture.
	// Zero selects edgefx.DefaultNoiseSize.
	NoiseSize int

	// NoiseSeed seeds the noise generator. Any value works; views
	// only need the texture to be stable across frames.
	NoiseSeed uint64
}

// DefaultConfig returns the standard configuration: insertion before
// the "fxaa" stage, depth sampling assumed available, and the default
// noise texture.
func DefaultConfig() Config {
	return Config{
		Before:                 "fxaa",
		DepthSamplingSupported: true,
		NoiseSize:              edgefx.DefaultNoiseSize,
		NoiseSeed:              1,
	}
}

// ViewState is the per-view render state sampled during preparation:
// the target format class, the prepass multisample state, the camera
// projection classification, and the view uniform contents.
type ViewState struct {
	HDR          bool
	Multisampled bool
	Projection   edgefx.Projection
	Uniform      ViewUniform
}

// Prepared is the result of preparing one view: the resolved pipeline
// and the dynamic offsets of the view's uniform slots. Valid for the
// frame it was prepared in only.
type Prepared struct {
	key          edgefx.PipelineKey
	pipeline     hal.RenderPipeline
	viewOffset   uint32
	effectOffset uint32
	applicable   bool
}

// Key returns the specialization key the view was prepared with.
func (p Prepared) Key() edgefx.PipelineKey {
	return p.key
}

// FrameInputs are the live per-frame resources of one view's pass:
// the color target chain and the depth and normal prepass views. Any
// nil field skips the pass for this frame.
type FrameInputs struct {
	Target *ViewTarget
	Depth  hal.TextureView
	Normal hal.TextureView
}

// SkipReason explains why a view's pass drew nothing this frame.
// Every reason is transient and self-heals on a later frame; none is
// an error.
type SkipReason uint8

const (
	// SkipNone means the pass executed and drew.
	SkipNone SkipReason = iota

	// SkipNotApplicable means the device cannot sample depth
	// textures and the effect's data path is disabled.
	SkipNotApplicable

	// SkipPipelineMissing means the view's pipeline has not been
	// prepared this frame.
	SkipPipelineMissing

	// SkipMissingTarget, SkipMissingDepth, and SkipMissingNormal
	// mean a required texture was not provided, typically because
	// the prepasses are not enabled yet on the view.
	SkipMissingTarget
	SkipMissingDepth
	SkipMissingNormal

	// SkipMissingNoise means the noise texture is not resident.
	SkipMissingNoise

	// SkipMissingUniforms means the uniform buffers have not been
	// uploaded this frame.
	SkipMissingUniforms
)

// String returns a human-readable name for the skip reason.
func (r SkipReason) String() string {
	switch r {
	case SkipNone:
		return "none"
	case SkipNotApplicable:
		return "not applicable"
	case SkipPipelineMissing:
		return "pipeline missing"
	case SkipMissingTarget:
		return "missing target"
	case SkipMissingDepth:
		return "missing depth prepass"
	case SkipMissingNormal:
		return "missing normal prepass"
	case SkipMissingNoise:
		return "missing noise texture"
	case SkipMissingUniforms:
		return "missing uniforms"
	default:
		return fmt.Sprintf("SkipReason(%d)", uint8(r))
	}
}

// Node is the edge-detection render-graph stage. The host calls it in
// two phases each frame, preparation before execution:
//
//	node.BeginFrame()
//	for each view:   prep[v], err = node.PrepareView(params, viewState)
//	node.UploadUniforms()
//	for each view:   node.Execute(encoder, prep[v], inputs)
//	submit command buffers
//	node.EndFrame()
//
// Preparation owns all cache mutation; execution treats the node as
// read-only apart from per-frame bind groups. Both phases run on the
// host's single render thread, so Node is unsynchronized.
type Node struct {
	device hal.Device
	queue  hal.Queue
	cfg    Config

	layouts   *Layouts
	pipelines *PipelineCache
	noise     *NoiseTexture

	viewUniforms   *UniformArena
	effectUniforms *UniformArena

	// frameBindGroups holds this frame's bind groups until EndFrame;
	// they must outlive command buffer submission.
	frameBindGroups []hal.BindGroup
}

// NewNode creates the effect node and all its long-lived GPU
// resources: layouts, samplers, the noise texture, and the uniform
// arenas. Pipelines are compiled lazily per specialization key.
func NewNode(device hal.Device, queue hal.Queue, cfg Config) (*Node, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	if cfg.Before == "" {
		cfg.Before = "fxaa"
	}
	if cfg.NoiseSize <= 0 {
		cfg.NoiseSize = edgefx.DefaultNoiseSize
	}
	if !cfg.DepthSamplingSupported {
		edgefx.Logger().Warn("edgefx: depth texture sampling unsupported, effect disabled")
	}

	layouts, err := NewLayouts(device)
	if err != nil {
		return nil, fmt.Errorf("edgefx: create layouts: %w", err)
	}

	noise, err := NewNoiseTexture(device, queue, edgefx.NoiseImage(cfg.NoiseSize, cfg.NoiseSeed))
	if err != nil {
		layouts.Destroy()
		return nil, fmt.Errorf("edgefx: create noise texture: %w", err)
	}

	n := &Node{
		device:         device,
		queue:          queue,
		cfg:            cfg,
		layouts:        layouts,
		pipelines:      NewPipelineCache(device, layouts),
		noise:          noise,
		viewUniforms:   NewUniformArena(device, queue, "edge_detection_view_uniforms"),
		effectUniforms: NewUniformArena(device, queue, "edge_detection_effect_uniforms"),
	}
	edgefx.Logger().Info("edgefx: node created", "before", cfg.Before, "noiseSize", cfg.NoiseSize)
	return n, nil
}

// Before returns the downstream node label the pass is scheduled in
// front of.
func (n *Node) Before() string {
	return n.cfg.Before
}

// Layouts returns the node's immutable bind group layouts.
func (n *Node) Layouts() *Layouts {
	return n.layouts
}

// Pipelines returns the node's pipeline cache.
func (n *Node) Pipelines() *PipelineCache {
	return n.pipelines
}

// BeginFrame starts a new frame: uniform arenas reset and any bind
// groups left from the previous frame are released.
func (n *Node) BeginFrame() {
	n.EndFrame()
	n.viewUniforms.Reset()
	n.effectUniforms.Reset()
}

// PrepareView resolves the specialized pipeline for one view and
// stages its uniforms, creating the pipeline on first use of a new
// key. Must run in the preparation phase, before any Execute of the
// same frame.
//
// When the effect is not applicable on this device the returned
// Prepared makes Execute skip; this is not an error.
func (n *Node) PrepareView(params edgefx.EffectParams, view ViewState) (Prepared, error) {
	if !n.cfg.DepthSamplingSupported {
		return Prepared{}, nil
	}

	key := edgefx.DeriveKey(params, view.HDR, view.Multisampled, view.Projection)
	pipeline, err := n.pipelines.GetOrCreate(key)
	if err != nil {
		return Prepared{}, fmt.Errorf("edgefx: prepare view: %w", err)
	}

	viewOffset, err := n.viewUniforms.Push(view.Uniform.Bytes())
	if err != nil {
		return Prepared{}, fmt.Errorf("edgefx: stage view uniform: %w", err)
	}
	effectOffset, err := n.effectUniforms.Push(params.Pack().Bytes())
	if err != nil {
		return Prepared{}, fmt.Errorf("edgefx: stage effect uniform: %w", err)
	}

	return Prepared{
		key:          key,
		pipeline:     pipeline,
		viewOffset:   viewOffset,
		effectOffset: effectOffset,
		applicable:   true,
	}, nil
}

// UploadUniforms writes all staged per-view uniforms to the GPU.
// Called once per frame, after the last PrepareView and before the
// first Execute.
func (n *Node) UploadUniforms() error {
	if err := n.viewUniforms.Upload(); err != nil {
		return fmt.Errorf("edgefx: upload view uniforms: %w", err)
	}
	if err := n.effectUniforms.Upload(); err != nil {
		return fmt.Errorf("edgefx: upload effect uniforms: %w", err)
	}
	return nil
}

// Execute records one view's pass into the encoder: gather the live
// resources, build the frame's bind group, and draw the full-screen
// triangle into the target's destination texture.
//
// A missing resource skips the pass for this view this frame and
// reports why; the frame continues and the next frame retries. Only
// bind group creation failures surface as errors, since they indicate
// a layout mismatch rather than a transient state.
func (n *Node) Execute(encoder hal.CommandEncoder, prep Prepared, in FrameInputs) (SkipReason, error) {
	if reason := n.gather(prep, in); reason != SkipNone {
		edgefx.Logger().Debug("edgefx: pass skipped", "reason", reason.String())
		return reason, nil
	}

	// Swap only happens once every input is present: a skipped pass
	// must leave the target chain untouched.
	pp := in.Target.PostProcessWrite()

	handle := func(v hal.TextureView) gputypes.TextureViewBinding {
		return gputypes.TextureViewBinding{TextureView: v.NativeHandle()}
	}
	sampler := func(s hal.Sampler) gputypes.SamplerBinding {
		return gputypes.SamplerBinding{Sampler: s.NativeHandle()}
	}

	bindGroup, err := n.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "edge_detection_bind_group",
		Layout: n.layouts.BindGroupLayout(prep.key.Multisampled),
		Entries: []gputypes.BindGroupEntry{
			{Binding: bindingSourceColor, Resource: handle(pp.Source)},
			{Binding: bindingDepth, Resource: handle(in.Depth)},
			{Binding: bindingNormal, Resource: handle(in.Normal)},
			{Binding: bindingLinearSampler, Resource: sampler(n.layouts.linearSampler)},
			{Binding: bindingNoiseTexture, Resource: handle(n.noise.View())},
			{Binding: bindingNoiseSampler, Resource: sampler(n.layouts.noiseSampler)},
			{Binding: bindingViewUniform, Resource: gputypes.BufferBinding{
				Buffer: n.viewUniforms.Buffer().NativeHandle(), Offset: 0, Size: ViewUniformSize,
			}},
			{Binding: bindingEffectUniform, Resource: gputypes.BufferBinding{
				Buffer: n.effectUniforms.Buffer().NativeHandle(), Offset: 0, Size: edgefx.PackedUniformSize,
			}},
		},
	})
	if err != nil {
		return SkipNone, fmt.Errorf("edgefx: create bind group: %w", err)
	}
	n.frameBindGroups = append(n.frameBindGroups, bindGroup)

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "edge_detection_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       pp.Destination,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{},
		}},
	})
	rp.SetPipeline(prep.pipeline)
	rp.SetBindGroup(0, bindGroup, []uint32{prep.viewOffset, prep.effectOffset})
	rp.Draw(3, 1, 0, 0)
	rp.End()

	return SkipNone, nil
}

// gather checks every resource the pass needs, in the order the state
// machine visits them.
func (n *Node) gather(prep Prepared, in FrameInputs) SkipReason {
	if !prep.applicable {
		return SkipNotApplicable
	}
	if prep.pipeline == nil {
		return SkipPipelineMissing
	}
	if in.Target == nil {
		return SkipMissingTarget
	}
	if in.Depth == nil {
		return SkipMissingDepth
	}
	if in.Normal == nil {
		return SkipMissingNormal
	}
	if n.noise == nil || n.noise.View() == nil {
		return SkipMissingNoise
	}
	if n.viewUniforms.Buffer() == nil || n.effectUniforms.Buffer() == nil {
		return SkipMissingUniforms
	}
	return SkipNone
}

// EndFrame releases the frame's bind groups. Call after the frame's
// command buffers have been submitted.
func (n *Node) EndFrame() {
	for _, bg := range n.frameBindGroups {
		n.device.DestroyBindGroup(bg)
	}
	n.frameBindGroups = n.frameBindGroups[:0]
}

// Destroy releases all GPU resources owned by the node, in reverse
// creation order. The node must not be used afterwards.
func (n *Node) Destroy() {
	n.EndFrame()
	if n.effectUniforms != nil {
		n.effectUniforms.Destroy()
	}
	if n.viewUniforms != nil {
		n.viewUniforms.Destroy()
	}
	if n.pipelines != nil {
		n.pipelines.Destroy()
	}
	if n.noise != nil {
		n.noise.Destroy()
	}
	if n.layouts != nil {
		n.layouts.Destroy()
	}
}
