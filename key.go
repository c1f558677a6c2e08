package edgefx

import "fmt"

// Projection classifies a view's camera projection for pipeline
// specialization. Views without a camera, or with a custom projection
// the effect cannot reconstruct positions for, map to ProjectionNone.
type Projection uint8

const (
	// ProjectionNone disables angle-dependent depth compensation.
	ProjectionNone Projection = iota

	// ProjectionPerspective selects perspective position
	// reconstruction in the shader.
	ProjectionPerspective

	// ProjectionOrthographic selects orthographic position
	// reconstruction in the shader.
	ProjectionOrthographic
)

// String returns a human-readable name for the projection kind.
func (p Projection) String() string {
	switch p {
	case ProjectionNone:
		return "none"
	case ProjectionPerspective:
		return "perspective"
	case ProjectionOrthographic:
		return "orthographic"
	default:
		return fmt.Sprintf("Projection(%d)", uint8(p))
	}
}

// PipelineKey identifies one specialized pipeline variant. Two views
// with equal keys share one compiled pipeline. The key is a plain
// comparable struct so it can index a map directly.
type PipelineKey struct {
	EnableDepth  bool
	EnableNormal bool
	EnableColor  bool

	// HDR selects the floating-point color target format instead of
	// the standard display format.
	HDR bool

	// Multisampled selects the bind group layout variant whose depth
	// and normal textures are declared multisampled.
	Multisampled bool

	Projection Projection
}

// String returns a compact variant name, e.g. "depth+normal/hdr/msaa/perspective".
func (k PipelineKey) String() string {
	channels := ""
	appendChannel := func(on bool, name string) {
		if !on {
			return
		}
		if channels != "" {
			channels += "+"
		}
		channels += name
	}
	appendChannel(k.EnableDepth, "depth")
	appendChannel(k.EnableNormal, "normal")
	appendChannel(k.EnableColor, "color")
	if channels == "" {
		channels = "off"
	}
	format := "ldr"
	if k.HDR {
		format = "hdr"
	}
	samples := "1x"
	if k.Multisampled {
		samples = "msaa"
	}
	return channels + "/" + format + "/" + samples + "/" + k.Projection.String()
}

// DeriveKey produces the specialization key for one view. Pure and
// deterministic: equal inputs always produce field-for-field equal
// keys. Only the enable flags of params participate; numeric fields
// flow through the uniform and never force recompilation.
func DeriveKey(params EffectParams, hdr, multisampled bool, projection Projection) PipelineKey {
	if projection > ProjectionOrthographic {
		projection = ProjectionNone
	}
	return PipelineKey{
		EnableDepth:  params.EnableDepth,
		EnableNormal: params.EnableNormal,
		EnableColor:  params.EnableColor,
		HDR:          hdr,
		Multisampled: multisampled,
		Projection:   projection,
	}
}
