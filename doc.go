// Package edgefx implements a screen-space edge-detection post-process
// effect for real-time 3D renderers built on the GoGPU ecosystem.
//
// # Overview
//
// The effect inspects the depth, surface-normal, and color buffers
// produced earlier in a frame and composites highlighted edges into the
// frame's color output with a single full-screen fragment pass. Each
// detection channel (depth, normal, color) can be toggled and tuned
// independently per view.
//
// This root package is device-independent: it holds the tunable
// parameters ([EffectParams]), their packed GPU representation
// ([PackedUniform]), pipeline specialization keys ([PipelineKey]), the
// procedural noise asset, and a CPU reference implementation of the
// detection algorithm ([RenderSoftware]).
//
// The render sub-package contains everything that touches a GPU device:
// bind group layouts, the specialized pipeline cache, and the per-frame
// pass executor. See github.com/gogpu/edgefx/render.
//
// # Quick Start
//
//	params := edgefx.DefaultEffectParams()
//	params.EnableColor = true
//	params.EdgeColor = edgefx.RGBA{A: 1}
//
//	node, err := render.NewNode(device, queue, render.DefaultConfig())
//	// per frame:
//	node.BeginFrame()
//	prep, err := node.PrepareView(params, viewState) // once per view
//	err = node.UploadUniforms()
//	reason, err := node.Execute(encoder, prep, frameInputs) // once per view
//	// submit, then:
//	node.EndFrame()
//
// # Integration
//
// edgefx never creates a GPU device. The host renderer owns the device,
// the render graph, and the prepass textures; edgefx receives them and
// contributes exactly one pass per view per frame.
package edgefx
