package render

import (
	"fmt"

	"github.com/gogpu/edgefx"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Color target formats selected by the HDR key field.
const (
	hdrTargetFormat      = gputypes.TextureFormatRGBA16Float
	standardTargetFormat = gputypes.TextureFormatRGBA8UnormSrgb
)

// pipelineEntry pairs a compiled pipeline with the shader module it
// was built from, so both can be released together.
type pipelineEntry struct {
	pipeline hal.RenderPipeline
	module   hal.ShaderModule
}

// PipelineCache maps specialization keys to compiled pipelines.
// Entries are created lazily on first request and never evicted; the
// key space is bounded by the diversity of view configurations, a few
// dozen at most.
//
// The cache is owned by Node and mutated only during the preparation
// phase, which the host runs on a single thread. It is therefore
// unsynchronized; see Node for the phase discipline.
type PipelineCache struct {
	device  hal.Device
	layouts *Layouts
	entries map[edgefx.PipelineKey]pipelineEntry
}

// NewPipelineCache creates an empty cache bound to a device and the
// shared layouts.
func NewPipelineCache(device hal.Device, layouts *Layouts) *PipelineCache {
	return &PipelineCache{
		device:  device,
		layouts: layouts,
		entries: make(map[edgefx.PipelineKey]pipelineEntry),
	}
}

// GetOrCreate returns the compiled pipeline for a key, building it on
// first use. Repeated calls with an equal key return the same handle
// without recompilation.
//
// Building validates the specialized WGSL through naga before handing
// it to the device, so a shader/flag mismatch fails here with a
// descriptive error instead of corrupting a frame later.
func (c *PipelineCache) GetOrCreate(key edgefx.PipelineKey) (hal.RenderPipeline, error) {
	if e, ok := c.entries[key]; ok {
		return e.pipeline, nil
	}

	source, err := specializeShader(key)
	if err != nil {
		return nil, err
	}
	if _, err := naga.Compile(source); err != nil {
		return nil, fmt.Errorf("validate shader for %+v: %w", key, err)
	}

	module, err := c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "edge_detection_shader",
		Source: hal.ShaderSource{WGSL: source},
	})
	if err != nil {
		return nil, fmt.Errorf("create shader module: %w", err)
	}

	format := standardTargetFormat
	if key.HDR {
		format = hdrTargetFormat
	}

	// The pass output is always single-sampled; the MULTISAMPLED flag
	// only changes how the prepass inputs are declared and bound.
	pipeline, err := c.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "edge_detection_pipeline",
		Layout: c.layouts.pipelineLayout(key.Multisampled),
		Vertex: hal.VertexState{
			Module:     module,
			EntryPoint: "fullscreen_vertex",
		},
		Fragment: &hal.FragmentState{
			Module:     module,
			EntryPoint: "fragment",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
	})
	if err != nil {
		c.device.DestroyShaderModule(module)
		return nil, fmt.Errorf("create render pipeline: %w", err)
	}

	c.entries[key] = pipelineEntry{pipeline: pipeline, module: module}
	edgefx.Logger().Debug("edgefx: compiled pipeline variant",
		"depth", key.EnableDepth, "normal", key.EnableNormal, "color", key.EnableColor,
		"hdr", key.HDR, "multisampled", key.Multisampled, "projection", key.Projection.String())
	return pipeline, nil
}

// Len reports the number of compiled variants.
func (c *PipelineCache) Len() int {
	return len(c.entries)
}

// Destroy releases every compiled pipeline and shader module. The
// cache is empty but usable afterwards.
func (c *PipelineCache) Destroy() {
	for key, e := range c.entries {
		if e.pipeline != nil {
			c.device.DestroyRenderPipeline(e.pipeline)
		}
		if e.module != nil {
			c.device.DestroyShaderModule(e.module)
		}
		delete(c.entries, key)
	}
}
