package render

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrNilNoiseImage is returned when a noise texture is created from a
// nil or empty image.
var ErrNilNoiseImage = errors.New("edgefx: nil or empty noise image")

// NoiseTexture is the GPU-resident tileable noise texture sampled by
// the UV-distortion stage. Created once at node construction from the
// procedurally generated image and shared by all views.
type NoiseTexture struct {
	device hal.Device

	tex  hal.Texture
	view hal.TextureView

	width, height uint32
}

// NewNoiseTexture uploads the noise image to the GPU. The image must
// use the RGBA8 layout produced by edgefx.NoiseImage.
func NewNoiseTexture(device hal.Device, queue hal.Queue, img *image.RGBA) (*NoiseTexture, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrNilNoiseImage
	}
	w := uint32(img.Bounds().Dx())
	h := uint32(img.Bounds().Dy())

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "edge_detection_noise",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create noise texture: %w", err)
	}

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "edge_detection_noise_view",
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("create noise texture view: %w", err)
	}

	queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
		},
		img.Pix,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  w * 4,
			RowsPerImage: h,
		},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)

	return &NoiseTexture{device: device, tex: tex, view: view, width: w, height: h}, nil
}

// View returns the texture view bound at the noise slot.
func (n *NoiseTexture) View() hal.TextureView {
	return n.view
}

// Size returns the texture dimensions in pixels.
func (n *NoiseTexture) Size() (uint32, uint32) {
	return n.width, n.height
}

// Destroy releases the texture and its view. Safe to call twice.
func (n *NoiseTexture) Destroy() {
	if n.view != nil {
		n.device.DestroyTextureView(n.view)
		n.view = nil
	}
	if n.tex != nil {
		n.device.DestroyTexture(n.tex)
		n.tex = nil
	}
}
