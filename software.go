package edgefx

import (
	"errors"
	"fmt"
	"image"
	"math"

	"golang.org/x/image/math/f32"
)

// Software-path errors.
var (
	// ErrNilBuffers is returned when RenderSoftware receives nil input.
	ErrNilBuffers = errors.New("edgefx: nil source buffers")

	// ErrBufferSize is returned when a buffer's length does not match
	// the stated dimensions.
	ErrBufferSize = errors.New("edgefx: buffer length does not match dimensions")

	// ErrMissingChannel is returned when a detection channel is
	// enabled but its input buffer is absent.
	ErrMissingChannel = errors.New("edgefx: enabled channel has no input buffer")
)

// SourceBuffers holds one view's CPU-side inputs for the software
// path. Color is in linear space, Depth in view-space units, and
// Normal holds unit-length world-space normals. Depth and Normal may
// be nil when the corresponding channel is disabled. Noise is the
// optional tileable distortion texture; nil disables UV distortion.
type SourceBuffers struct {
	Width, Height int

	Color  []RGBA
	Depth  []float32
	Normal []f32.Vec3

	Noise *image.RGBA

	// ViewDir points from the surface toward the viewer, used for the
	// steep-angle depth compensation. The zero value is treated as
	// (0, 0, 1), a viewer looking down the negative Z axis.
	ViewDir f32.Vec3
}

// RenderSoftware runs the edge-detection algorithm on the CPU and
// returns the output colors, one per pixel in row-major order.
//
// It mirrors the fragment program exactly: parameters are consumed
// through their packed representation, each enabled channel measures
// the maximum difference against a cross-shaped neighborhood whose
// radius is that channel's thickness, and any flagged channel replaces
// the pixel with the packed edge color. With all channels disabled the
// source colors are returned unchanged.
//
// The software path backs the reference tests and serves as the
// fallback documented for devices that cannot sample depth textures.
func RenderSoftware(src *SourceBuffers, params EffectParams) ([]RGBA, error) {
	if src == nil {
		return nil, ErrNilBuffers
	}
	n := src.Width * src.Height
	if src.Width <= 0 || src.Height <= 0 || len(src.Color) != n {
		return nil, fmt.Errorf("%w: %dx%d with %d color pixels", ErrBufferSize, src.Width, src.Height, len(src.Color))
	}

	out := make([]RGBA, n)
	copy(out, src.Color)
	if !params.EnableDepth && !params.EnableNormal && !params.EnableColor {
		return out, nil
	}

	if params.EnableDepth && len(src.Depth) != n {
		return nil, fmt.Errorf("%w: depth", ErrMissingChannel)
	}
	if params.EnableColor && len(src.Color) != n {
		return nil, fmt.Errorf("%w: color", ErrMissingChannel)
	}
	// Depth compensation needs normals too, so the normal buffer is
	// required whenever either channel is on.
	if (params.EnableNormal || params.EnableDepth) && len(src.Normal) != n {
		return nil, fmt.Errorf("%w: normal", ErrMissingChannel)
	}

	u := params.Pack()
	edge := RGBA{u.EdgeColor[0], u.EdgeColor[1], u.EdgeColor[2], u.EdgeColor[3]}
	viewDir := src.ViewDir
	if viewDir == (f32.Vec3{}) {
		viewDir = f32.Vec3{0, 0, 1}
	}

	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			sx, sy := src.distort(x, y, u)
			if src.isEdge(sx, sy, u, params, viewDir) {
				out[y*src.Width+x] = edge
			}
		}
	}
	return out, nil
}

// distort perturbs the sampling position of one pixel by the noise
// field, matching the shader's UV distortion. Returns the pixel
// coordinates to sample the input buffers at.
func (s *SourceBuffers) distort(x, y int, u PackedUniform) (int, int) {
	if s.Noise == nil || (u.UVDistortion[2] == 0 && u.UVDistortion[3] == 0) {
		return x, y
	}
	b := s.Noise.Bounds()
	nw, nh := b.Dx(), b.Dy()
	uu := (float64(x) + 0.5) / float64(s.Width)
	vv := (float64(y) + 0.5) / float64(s.Height)
	nx := wrap(int(uu*float64(u.UVDistortion[0])*float64(nw)), nw)
	ny := wrap(int(vv*float64(u.UVDistortion[1])*float64(nh)), nh)
	i := s.Noise.PixOffset(b.Min.X+nx, b.Min.Y+ny)
	du := (float64(s.Noise.Pix[i])/255*2 - 1) * float64(u.UVDistortion[2])
	dv := (float64(s.Noise.Pix[i+1])/255*2 - 1) * float64(u.UVDistortion[3])
	return clamp(x+int(math.Round(du*float64(s.Width))), s.Width),
		clamp(y+int(math.Round(dv*float64(s.Height))), s.Height)
}

// isEdge classifies one pixel. Each enabled channel compares its
// variation measure against the channel threshold; classification is
// strict, so zero variation never flags an edge.
func (s *SourceBuffers) isEdge(x, y int, u PackedUniform, params EffectParams, viewDir f32.Vec3) bool {
	if params.EnableDepth {
		r := radius(u.DepthThickness)
		v := s.depthVariation(x, y, r)
		threshold := u.DepthThreshold
		steep := 1 - abs32(dot3(s.normalAt(x, y), viewDir))
		if steep > u.SteepAngleThreshold {
			adj := smoothstep(u.SteepAngleThreshold, 1, steep)
			threshold *= 1 + adj*u.SteepAngleMultiplier
		}
		if v > threshold {
			return true
		}
	}
	if params.EnableNormal {
		r := radius(u.NormalThickness)
		if s.normalVariation(x, y, r) > u.NormalThreshold {
			return true
		}
	}
	if params.EnableColor {
		r := radius(u.ColorThickness)
		if s.colorVariation(x, y, r) > u.ColorThreshold {
			return true
		}
	}
	return false
}

// depthVariation is the maximum absolute depth difference between the
// center pixel and its four cross neighbors at distance r.
func (s *SourceBuffers) depthVariation(x, y, r int) float32 {
	c := s.depthAt(x, y)
	var v float32
	for _, o := range crossOffsets(r) {
		d := abs32(s.depthAt(x+o[0], y+o[1]) - c)
		if d > v {
			v = d
		}
	}
	return v
}

// normalVariation is the maximum angular deviation (1 - cosine)
// between the center normal and its cross neighbors at distance r.
func (s *SourceBuffers) normalVariation(x, y, r int) float32 {
	c := s.normalAt(x, y)
	var v float32
	for _, o := range crossOffsets(r) {
		d := 1 - dot3(c, s.normalAt(x+o[0], y+o[1]))
		if d > v {
			v = d
		}
	}
	return v
}

// colorVariation is the maximum per-component color difference between
// the center pixel and its cross neighbors at distance r.
func (s *SourceBuffers) colorVariation(x, y, r int) float32 {
	c := s.colorAt(x, y)
	var v float32
	for _, o := range crossOffsets(r) {
		n := s.colorAt(x+o[0], y+o[1])
		for _, d := range [3]float32{n.R - c.R, n.G - c.G, n.B - c.B} {
			d = abs32(d)
			if d > v {
				v = d
			}
		}
	}
	return v
}

func (s *SourceBuffers) depthAt(x, y int) float32 {
	return s.Depth[clamp(y, s.Height)*s.Width+clamp(x, s.Width)]
}

func (s *SourceBuffers) normalAt(x, y int) f32.Vec3 {
	return s.Normal[clamp(y, s.Height)*s.Width+clamp(x, s.Width)]
}

func (s *SourceBuffers) colorAt(x, y int) RGBA {
	return s.Color[clamp(y, s.Height)*s.Width+clamp(x, s.Width)]
}

// crossOffsets returns the four sampling offsets of the detection
// neighborhood, or none when the radius rounds to zero.
func crossOffsets(r int) [][2]int {
	if r <= 0 {
		return nil
	}
	return [][2]int{{-r, 0}, {r, 0}, {0, -r}, {0, r}}
}

// radius converts a thickness parameter to a pixel radius. Rounding is
// monotone, so a larger thickness never shrinks the neighborhood.
func radius(thickness float32) int {
	if thickness <= 0 {
		return 0
	}
	return int(math.Round(float64(thickness)))
}

func dot3(a, b f32.Vec3) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func smoothstep(lo, hi, v float32) float32 {
	if hi <= lo {
		if v >= hi {
			return 1
		}
		return 0
	}
	t := (v - lo) / (hi - lo)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}

func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
