package edgefx

import (
	"bytes"
	"testing"
)

func TestNoiseImageDeterministic(t *testing.T) {
	a := NoiseImage(64, 7)
	b := NoiseImage(64, 7)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("same size and seed must produce identical images")
	}

	c := NoiseImage(64, 8)
	if bytes.Equal(a.Pix, c.Pix) {
		t.Error("different seeds should produce different images")
	}
}

func TestNoiseImageDefaultSize(t *testing.T) {
	img := NoiseImage(0, 1)
	if got := img.Bounds().Dx(); got != DefaultNoiseSize {
		t.Errorf("width = %d, want %d", got, DefaultNoiseSize)
	}
	if got := img.Bounds().Dy(); got != DefaultNoiseSize {
		t.Errorf("height = %d, want %d", got, DefaultNoiseSize)
	}
}

func TestNoiseImageOpaqueAndVaried(t *testing.T) {
	img := NoiseImage(64, 1)

	seen := map[uint8]bool{}
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			i := img.PixOffset(x, y)
			if img.Pix[i+3] != 0xFF {
				t.Fatalf("pixel (%d,%d) alpha = %d, want 255", x, y, img.Pix[i+3])
			}
			seen[img.Pix[i]] = true
		}
	}
	// A noise field should cover a reasonable share of the value range.
	if len(seen) < 32 {
		t.Errorf("red channel uses only %d distinct values", len(seen))
	}
}

// The repeat-addressed sampler relies on the lattice wrapping: values
// just inside opposite edges come from the same lattice cells, so the
// jump across the seam must stay within one interpolation step of the
// typical neighboring-pixel jump.
func TestNoiseImageTiles(t *testing.T) {
	const size = 64
	img := NoiseImage(size, 3)

	maxSeam := 0
	maxInterior := 0
	for y := 0; y < size; y++ {
		seam := delta(img.Pix[img.PixOffset(size-1, y)], img.Pix[img.PixOffset(0, y)])
		if seam > maxSeam {
			maxSeam = seam
		}
		interior := delta(img.Pix[img.PixOffset(size/2-1, y)], img.Pix[img.PixOffset(size/2, y)])
		if interior > maxInterior {
			maxInterior = interior
		}
	}
	if maxSeam > maxInterior*2+16 {
		t.Errorf("horizontal seam jump %d far exceeds interior jump %d; image does not tile", maxSeam, maxInterior)
	}
}

func delta(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
