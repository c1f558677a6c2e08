package edgefx

import (
	"math"

	"golang.org/x/image/math/f32"
)

// RGBA is a color with float32 components in the range [0, 1].
// Components are stored non-premultiplied in the sRGB transfer space;
// use Linear to obtain the linear-space values the GPU consumes.
type RGBA struct {
	R, G, B, A float32
}

// Linear converts the color to linear space as a 4-component vector.
// The alpha channel carries no transfer function and passes through.
func (c RGBA) Linear() f32.Vec4 {
	return f32.Vec4{
		srgbToLinear(c.R),
		srgbToLinear(c.G),
		srgbToLinear(c.B),
		c.A,
	}
}

// srgbToLinear applies the IEC 61966-2-1 decoding function to one
// component. Inputs outside [0, 1] are not clamped; negative values
// map through the linear segment.
func srgbToLinear(c float32) float32 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return float32(math.Pow((float64(c)+0.055)/1.055, 2.4))
}
