// Package render contains the GPU side of the edgefx effect: the bind
// group layouts, the specialized pipeline cache, the per-frame uniform
// arenas, and the pass executor.
//
// The entry point is [Node]. A host render graph drives it in two
// phases per frame: [Node.PrepareView] during pipeline preparation and
// [Node.Execute] during pass execution. Preparation compiles pipeline
// variants and stages uniforms; execution gathers the frame's live
// textures and records a single full-screen triangle draw per view.
//
// Everything in this package expects the host's hal.Device and
// hal.Queue; edgefx never creates a device of its own. Hosts built on
// the gpucontext ecosystem can hand their provider in via
// [DeviceHandle].
package render
