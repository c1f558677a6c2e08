package render

import (
	"errors"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// ErrNilProvider is returned when a nil DeviceHandle is passed.
var ErrNilProvider = errors.New("edgefx: nil device provider")

// DeviceHandle provides GPU device access from the host application.
//
// This is the integration point between edgefx and GPU frameworks like
// gogpu: the host implements DeviceHandle (gogpu.App already does) and
// passes it in, and edgefx shares the host's device instead of
// creating its own.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, providing an
// edgefx-local name for the interface while staying compatible with
// the gpucontext ecosystem.
type DeviceHandle = gpucontext.DeviceProvider

// HDRFromHandle reports whether a host surface format counts as HDR
// for pipeline specialization. Hosts that render to an intermediate
// floating-point target pass their own flag instead.
func HDRFromHandle(handle DeviceHandle) (bool, error) {
	if handle == nil {
		return false, ErrNilProvider
	}
	switch handle.SurfaceFormat() {
	case gputypes.TextureFormatRGBA16Float:
		return true, nil
	default:
		return false, nil
	}
}
