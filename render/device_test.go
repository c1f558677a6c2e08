package render

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// mockProvider implements gpucontext.DeviceProvider for testing.
type mockProvider struct {
	format gputypes.TextureFormat
}

func (m *mockProvider) Device() gpucontext.Device             { return nil }
func (m *mockProvider) Queue() gpucontext.Queue               { return nil }
func (m *mockProvider) Adapter() gpucontext.Adapter           { return nil }
func (m *mockProvider) SurfaceFormat() gputypes.TextureFormat { return m.format }
func (m *mockProvider) AdapterInfo() gpucontext.AdapterInfo   { return gpucontext.AdapterInfo{} }

func TestHDRFromHandle(t *testing.T) {
	tests := []struct {
		name   string
		format gputypes.TextureFormat
		want   bool
	}{
		{"float surface", gputypes.TextureFormatRGBA16Float, true},
		{"standard surface", gputypes.TextureFormatBGRA8Unorm, false},
		{"srgb surface", gputypes.TextureFormatRGBA8UnormSrgb, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HDRFromHandle(&mockProvider{format: tt.format})
			if err != nil {
				t.Fatalf("HDRFromHandle: %v", err)
			}
			if got != tt.want {
				t.Errorf("HDRFromHandle = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHDRFromHandleNil(t *testing.T) {
	if _, err := HDRFromHandle(nil); !errors.Is(err, ErrNilProvider) {
		t.Errorf("err = %v, want ErrNilProvider", err)
	}
}
