package render

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/math/f32"
)

// uniformAlign is the dynamic-offset alignment required for uniform
// buffers: every per-view slot starts on a 256-byte boundary.
const uniformAlign = 256

// Uniform arena errors.
var (
	// ErrSlotTooLarge is returned when one uniform block exceeds the
	// arena's slot size.
	ErrSlotTooLarge = errors.New("edgefx: uniform block larger than arena slot")
)

// ViewUniform is the per-view data the fragment program needs for
// position reconstruction: the inverse view matrix, the inverse
// projection matrix, and the viewport rectangle (x, y, width, height).
// Matrices are column-major, matching WGSL mat4x4 layout.
type ViewUniform struct {
	WorldFromView f32.Mat4
	ViewFromClip  f32.Mat4
	Viewport      f32.Vec4
}

// ViewUniformSize is the byte size of one serialized ViewUniform:
// two mat4x4<f32> plus one vec4<f32>.
const ViewUniformSize = 144

// Bytes serializes the uniform as little-endian float32 values in
// declaration order.
func (v ViewUniform) Bytes() []byte {
	buf := make([]byte, ViewUniformSize)
	i := 0
	put := func(f float32) {
		binary.LittleEndian.PutUint32(buf[i:], math.Float32bits(f))
		i += 4
	}
	for _, f := range v.WorldFromView {
		put(f)
	}
	for _, f := range v.ViewFromClip {
		put(f)
	}
	for _, f := range v.Viewport {
		put(f)
	}
	return buf
}

// IdentityViewUniform returns a view uniform with identity matrices
// and the given viewport, suitable for views without projection
// classification.
func IdentityViewUniform(width, height float32) ViewUniform {
	identity := f32.Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	return ViewUniform{
		WorldFromView: identity,
		ViewFromClip:  identity,
		Viewport:      f32.Vec4{0, 0, width, height},
	}
}

// UniformArena is a dynamically indexed uniform buffer shared by all
// views of one frame. Each Push appends one block into its own
// 256-byte-aligned slot and returns the dynamic offset to bind it
// with. Reset at frame start, uploaded once after all views have been
// prepared.
//
// The GPU buffer grows geometrically and is never shrunk; a steady
// view count reaches a fixed size after the first frames.
type UniformArena struct {
	device hal.Device
	queue  hal.Queue
	label  string

	staging  []byte
	used     int
	buf      hal.Buffer
	capacity uint64
}

// NewUniformArena creates an empty arena. No GPU buffer is allocated
// until the first Upload.
func NewUniformArena(device hal.Device, queue hal.Queue, label string) *UniformArena {
	return &UniformArena{device: device, queue: queue, label: label}
}

// Reset discards all slots. Called once per frame before preparation;
// the GPU buffer is retained for reuse.
func (a *UniformArena) Reset() {
	a.used = 0
}

// Push appends one uniform block and returns its dynamic offset.
// The block must fit one slot.
func (a *UniformArena) Push(data []byte) (uint32, error) {
	if len(data) > uniformAlign {
		return 0, fmt.Errorf("%w: %d bytes", ErrSlotTooLarge, len(data))
	}
	offset := a.used
	need := offset + uniformAlign
	if len(a.staging) < need {
		grown := make([]byte, need*2)
		copy(grown, a.staging[:a.used])
		a.staging = grown
	}
	// Zero the slot tail so stale bytes from a previous frame never
	// reach the shader.
	slot := a.staging[offset : offset+uniformAlign]
	copy(slot, data)
	for i := len(data); i < uniformAlign; i++ {
		slot[i] = 0
	}
	a.used = need
	return uint32(offset), nil
}

// Upload writes all pushed slots to the GPU buffer, growing it first
// if the frame needs more space than any previous one.
func (a *UniformArena) Upload() error {
	if a.used == 0 {
		return nil
	}
	need := uint64(a.used)
	if a.buf == nil || a.capacity < need {
		if a.buf != nil {
			a.device.DestroyBuffer(a.buf)
			a.buf = nil
		}
		capacity := a.capacity
		if capacity == 0 {
			capacity = uniformAlign * 4
		}
		for capacity < need {
			capacity *= 2
		}
		buf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
			Label: a.label,
			Size:  capacity,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("create uniform buffer %q: %w", a.label, err)
		}
		a.buf = buf
		a.capacity = capacity
	}
	a.queue.WriteBuffer(a.buf, 0, a.staging[:a.used])
	return nil
}

// Buffer returns the GPU buffer, or nil before the first Upload.
func (a *UniformArena) Buffer() hal.Buffer {
	return a.buf
}

// Len reports the number of slots pushed since the last Reset.
func (a *UniformArena) Len() int {
	return a.used / uniformAlign
}

// Destroy releases the GPU buffer. The arena may be reused; the next
// Upload allocates a fresh buffer.
func (a *UniformArena) Destroy() {
	if a.buf != nil {
		a.device.DestroyBuffer(a.buf)
		a.buf = nil
		a.capacity = 0
	}
}
