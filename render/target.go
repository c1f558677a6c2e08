package render

import "github.com/gogpu/wgpu/hal"

// ViewTarget owns the double-buffered color chain of one view. Post
// processes ping-pong between the two textures: each pass reads the
// current main texture and writes the other, then the roles flip.
//
// Reading and writing the same texture in one pass is undefined on
// every backend, so the swap is built into PostProcessWrite rather
// than left to callers.
type ViewTarget struct {
	views [2]hal.TextureView

	// main indexes the texture currently holding the frame's color.
	main int
}

// NewViewTarget creates a target over the two color texture views of
// one view. Both must have the same size and format.
func NewViewTarget(a, b hal.TextureView) *ViewTarget {
	return &ViewTarget{views: [2]hal.TextureView{a, b}}
}

// PostProcessWrite is one pass's source/destination pair. The pass
// must read only Source and write only Destination.
type PostProcessWrite struct {
	Source      hal.TextureView
	Destination hal.TextureView
}

// PostProcessWrite returns the pair for the next post process and
// flips the main texture, so the write becomes the following pass's
// read. Call exactly once per pass that actually executes; skipped
// passes must not swap, or the chain would read a stale texture.
func (t *ViewTarget) PostProcessWrite() PostProcessWrite {
	source := t.views[t.main]
	destination := t.views[1-t.main]
	t.main = 1 - t.main
	return PostProcessWrite{Source: source, Destination: destination}
}

// Main returns the texture view currently holding the frame's color.
func (t *ViewTarget) Main() hal.TextureView {
	return t.views[t.main]
}
