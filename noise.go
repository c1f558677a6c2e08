package edgefx

import (
	"image"
	"math"
)

// DefaultNoiseSize is the edge length in pixels of the generated noise
// texture. 128 tiles finely enough that the distortion frequency can
// stay near 1 without visible repetition.
const DefaultNoiseSize = 128

// NoiseImage generates the tileable value-noise texture consumed by
// the UV-distortion stage of the effect. The red and green channels
// hold two independent noise fields so the shader can perturb U and V
// separately; blue mirrors red and alpha is opaque.
//
// The image is deterministic for a given seed and wraps seamlessly in
// both directions, so the repeat-addressed sampler never shows a seam.
func NoiseImage(size int, seed uint64) *image.RGBA {
	if size <= 0 {
		size = DefaultNoiseSize
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r := fbm(float64(x), float64(y), size, seed)
			g := fbm(float64(x), float64(y), size, seed^0x9e3779b97f4a7c15)
			i := img.PixOffset(x, y)
			img.Pix[i+0] = quantize(r)
			img.Pix[i+1] = quantize(g)
			img.Pix[i+2] = quantize(r)
			img.Pix[i+3] = 0xFF
		}
	}
	return img
}

// fbm sums three octaves of tileable value noise, normalized to [0, 1].
func fbm(x, y float64, size int, seed uint64) float64 {
	const octaves = 3
	sum, amp, norm := 0.0, 1.0, 0.0
	cell := size / 16 // base lattice spacing: 16 cells per tile
	if cell < 1 {
		cell = 1
	}
	for o := 0; o < octaves; o++ {
		period := size / cell
		if period < 1 {
			period = 1
		}
		sum += amp * valueNoise(x/float64(cell), y/float64(cell), period, seed+uint64(o))
		norm += amp
		amp *= 0.5
		cell /= 2
		if cell < 1 {
			cell = 1
		}
	}
	return sum / norm
}

// valueNoise evaluates bilinear smoothstep-interpolated lattice noise
// at (x, y). Lattice coordinates wrap at period so the field tiles.
func valueNoise(x, y float64, period int, seed uint64) float64 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := smooth(x - float64(x0))
	fy := smooth(y - float64(y0))

	v00 := lattice(x0, y0, period, seed)
	v10 := lattice(x0+1, y0, period, seed)
	v01 := lattice(x0, y0+1, period, seed)
	v11 := lattice(x0+1, y0+1, period, seed)

	top := v00 + (v10-v00)*fx
	bottom := v01 + (v11-v01)*fx
	return top + (bottom-top)*fy
}

// lattice returns a pseudo-random value in [0, 1] for a lattice point,
// with coordinates wrapped to the tile period.
func lattice(x, y, period int, seed uint64) float64 {
	x = ((x % period) + period) % period
	y = ((y % period) + period) % period
	h := seed
	h ^= uint64(x) * 0x9e3779b97f4a7c15
	h = (h ^ (h >> 30)) * 0xbf58476d1ce4e5b9
	h ^= uint64(y) * 0x94d049bb133111eb
	h = (h ^ (h >> 27)) * 0x2545f4914f6cdd1d
	h ^= h >> 31
	return float64(h>>11) / float64(1<<53)
}

// smooth is the C1-continuous smoothstep fade curve.
func smooth(t float64) float64 {
	return t * t * (3 - 2*t)
}

// quantize maps a [0, 1] value to an 8-bit channel.
func quantize(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 0xFF
	}
	return uint8(v*255 + 0.5)
}
