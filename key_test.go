package edgefx

import "testing"

func TestDeriveKeyDeterministic(t *testing.T) {
	params := DefaultEffectParams()
	for _, hdr := range []bool{false, true} {
		for _, msaa := range []bool{false, true} {
			for _, proj := range []Projection{ProjectionNone, ProjectionPerspective, ProjectionOrthographic} {
				a := DeriveKey(params, hdr, msaa, proj)
				b := DeriveKey(params, hdr, msaa, proj)
				if a != b {
					t.Errorf("DeriveKey(hdr=%v, msaa=%v, proj=%v) not deterministic: %+v vs %+v",
						hdr, msaa, proj, a, b)
				}
			}
		}
	}
}

func TestDeriveKeyFields(t *testing.T) {
	params := DefaultEffectParams()
	params.EnableColor = true

	key := DeriveKey(params, true, true, ProjectionOrthographic)
	want := PipelineKey{
		EnableDepth:  true,
		EnableNormal: true,
		EnableColor:  true,
		HDR:          true,
		Multisampled: true,
		Projection:   ProjectionOrthographic,
	}
	if key != want {
		t.Errorf("DeriveKey = %+v, want %+v", key, want)
	}
}

// Numeric tuning must never force a pipeline rebuild; only the enable
// flags of the parameters participate in the key.
func TestDeriveKeyIgnoresNumericFields(t *testing.T) {
	a := DefaultEffectParams()
	b := a
	b.DepthThreshold = 99
	b.NormalThickness = 0.001
	b.EdgeColor = RGBA{1, 1, 0, 1}

	if DeriveKey(a, false, false, ProjectionPerspective) != DeriveKey(b, false, false, ProjectionPerspective) {
		t.Error("numeric parameter changes must not change the key")
	}
}

func TestDeriveKeyClampsUnknownProjection(t *testing.T) {
	key := DeriveKey(DefaultEffectParams(), false, false, Projection(42))
	if key.Projection != ProjectionNone {
		t.Errorf("unknown projection mapped to %v, want ProjectionNone", key.Projection)
	}
}

func TestProjectionString(t *testing.T) {
	tests := []struct {
		proj Projection
		want string
	}{
		{ProjectionNone, "none"},
		{ProjectionPerspective, "perspective"},
		{ProjectionOrthographic, "orthographic"},
		{Projection(7), "Projection(7)"},
	}
	for _, tt := range tests {
		if got := tt.proj.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.proj, got, tt.want)
		}
	}
}

func TestPipelineKeyString(t *testing.T) {
	tests := []struct {
		key  PipelineKey
		want string
	}{
		{PipelineKey{}, "off/ldr/1x/none"},
		{
			PipelineKey{EnableDepth: true, EnableNormal: true, HDR: true, Projection: ProjectionPerspective},
			"depth+normal/hdr/1x/perspective",
		},
		{
			PipelineKey{EnableColor: true, Multisampled: true, Projection: ProjectionOrthographic},
			"color/ldr/msaa/orthographic",
		},
	}
	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestPipelineKeyComparable(t *testing.T) {
	m := map[PipelineKey]int{}
	k := DeriveKey(DefaultEffectParams(), false, true, ProjectionPerspective)
	m[k] = 1
	m[k] = 2
	if len(m) != 1 || m[k] != 2 {
		t.Error("equal keys must collide in a map")
	}
}
