package edgefx

import (
	"encoding/binary"
	"math"

	"golang.org/x/image/math/f32"
)

// EffectParams is the per-view configuration of the edge-detection
// effect. One instance is attached to each view (camera) that should
// receive the effect. All fields may be mutated between frames; numeric
// changes take effect on the next frame via the uniform upload, channel
// toggles within one extra frame since they change the pipeline
// specialization key.
//
// Thresholds control the sensitivity of each channel: a pixel is
// classified as an edge when the local variation of the channel's
// buffer exceeds the threshold. Thicknesses scale the sampling
// neighborhood and therefore the output line width. Thresholds and
// thicknesses must be non-negative.
type EffectParams struct {
	// DepthThreshold is the minimum view-space depth variation that
	// counts as an edge.
	DepthThreshold float32

	// NormalThreshold is the minimum angular normal variation that
	// counts as an edge.
	NormalThreshold float32

	// ColorThreshold is the minimum color variation that counts as
	// an edge.
	ColorThreshold float32

	// DepthThickness, NormalThickness, and ColorThickness scale the
	// sampling radius of the respective channel in pixels.
	DepthThickness  float32
	NormalThickness float32
	ColorThickness  float32

	// SteepAngleThreshold is the grazing-angle value above which the
	// depth threshold is raised to suppress false edges on surfaces
	// viewed nearly edge-on. 0 means the compensation starts as soon
	// as the surface tilts away from the viewer.
	SteepAngleThreshold float32

	// SteepAngleMultiplier controls how strongly the depth threshold
	// grows at grazing angles.
	SteepAngleMultiplier float32

	// UVDistortionFrequency tiles the noise lookup used to perturb
	// sampling coordinates.
	UVDistortionFrequency f32.Vec2

	// UVDistortionStrength scales the perturbation in UV units.
	// (0, 0) disables the distortion.
	UVDistortionStrength f32.Vec2

	// EdgeColor is the color composited where an edge is detected,
	// in sRGB space. It is converted to linear space on packing.
	EdgeColor RGBA

	// EnableDepth, EnableNormal, and EnableColor toggle the three
	// detection channels. With all three false the pass copies the
	// source image through unchanged.
	EnableDepth  bool
	EnableNormal bool
	EnableColor  bool
}

// DefaultEffectParams returns the documented default configuration:
// depth and normal detection enabled, color detection disabled, black
// edges, and a subtle UV distortion.
func DefaultEffectParams() EffectParams {
	return EffectParams{
		DepthThreshold:        1.0,
		NormalThreshold:       0.8,
		ColorThreshold:        0.1,
		DepthThickness:        1.0,
		NormalThickness:       1.0,
		ColorThickness:        1.0,
		SteepAngleThreshold:   0.0,
		SteepAngleMultiplier:  0.30,
		UVDistortionFrequency: f32.Vec2{1, 1},
		UVDistortionStrength:  f32.Vec2{0.004, 0.004},
		EdgeColor:             RGBA{0, 0, 0, 1},
		EnableDepth:           true,
		EnableNormal:          true,
		EnableColor:           false,
	}
}

// PackedUniform is the GPU-buffer representation of EffectParams.
// The two distortion vectors are concatenated into a single
// 4-component vector and the edge color is converted to linear space.
// Field order matches the uniform struct declared in the shader; both
// sides must agree or bindings are silently corrupted, which is why
// packing is written out by hand rather than derived.
type PackedUniform struct {
	DepthThreshold       float32
	NormalThreshold      float32
	ColorThreshold       float32
	DepthThickness       float32
	NormalThickness      float32
	ColorThickness       float32
	SteepAngleThreshold  float32
	SteepAngleMultiplier float32

	// UVDistortion packs frequency.x, frequency.y, strength.x,
	// strength.y.
	UVDistortion f32.Vec4

	// EdgeColor holds the linear-space edge color.
	EdgeColor f32.Vec4
}

// PackedUniformSize is the byte size of one PackedUniform on the GPU:
// 16 float32 fields, naturally 16-byte aligned with no padding.
const PackedUniformSize = 64

// Pack converts the parameters to their GPU representation. Pure;
// called once per view per frame before upload.
func (p EffectParams) Pack() PackedUniform {
	return PackedUniform{
		DepthThreshold:       p.DepthThreshold,
		NormalThreshold:      p.NormalThreshold,
		ColorThreshold:       p.ColorThreshold,
		DepthThickness:       p.DepthThickness,
		NormalThickness:      p.NormalThickness,
		ColorThickness:       p.ColorThickness,
		SteepAngleThreshold:  p.SteepAngleThreshold,
		SteepAngleMultiplier: p.SteepAngleMultiplier,
		UVDistortion: f32.Vec4{
			p.UVDistortionFrequency[0],
			p.UVDistortionFrequency[1],
			p.UVDistortionStrength[0],
			p.UVDistortionStrength[1],
		},
		EdgeColor: p.EdgeColor.Linear(),
	}
}

// Bytes serializes the uniform for upload: 16 little-endian float32
// values in declaration order.
func (u PackedUniform) Bytes() []byte {
	buf := make([]byte, PackedUniformSize)
	fields := [16]float32{
		u.DepthThreshold,
		u.NormalThreshold,
		u.ColorThreshold,
		u.DepthThickness,
		u.NormalThickness,
		u.ColorThickness,
		u.SteepAngleThreshold,
		u.SteepAngleMultiplier,
		u.UVDistortion[0],
		u.UVDistortion[1],
		u.UVDistortion[2],
		u.UVDistortion[3],
		u.EdgeColor[0],
		u.EdgeColor[1],
		u.EdgeColor[2],
		u.EdgeColor[3],
	}
	for i, f := range fields {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
