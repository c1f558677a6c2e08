package render

import (
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/naga"

	"github.com/gogpu/edgefx"
)

func TestShaderSourceEmbedded(t *testing.T) {
	if edgeDetectionWGSL == "" {
		t.Fatal("edge detection shader source is empty")
	}
	if !strings.Contains(edgeDetectionWGSL, "fullscreen_vertex") {
		t.Error("shader source missing fullscreen_vertex entry point")
	}
	if !strings.Contains(edgeDetectionWGSL, "fn fragment") {
		t.Error("shader source missing fragment entry point")
	}
}

func TestPreprocess(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		defines []string
		want    string
	}{
		{
			name:   "no directives",
			source: "a\nb",
			want:   "a\nb\n",
		},
		{
			name:    "taken ifdef",
			source:  "a\n#ifdef X\nb\n#endif\nc",
			defines: []string{"X"},
			want:    "a\nb\nc\n",
		},
		{
			name:   "skipped ifdef",
			source: "a\n#ifdef X\nb\n#endif\nc",
			want:   "a\nc\n",
		},
		{
			name:    "else taken branch",
			source:  "#ifdef X\na\n#else\nb\n#endif",
			defines: []string{"X"},
			want:    "a\n",
		},
		{
			name:   "else fallback branch",
			source: "#ifdef X\na\n#else\nb\n#endif",
			want:   "b\n",
		},
		{
			name:    "nested inside taken",
			source:  "#ifdef X\na\n#ifdef Y\nb\n#endif\nc\n#endif",
			defines: []string{"X"},
			want:    "a\nc\n",
		},
		{
			name:    "nested inside skipped outer",
			source:  "#ifdef X\n#ifdef Y\na\n#endif\n#endif\nz",
			defines: []string{"Y"},
			want:    "z\n",
		},
		{
			name:    "else of nested block under skipped outer stays dark",
			source:  "#ifdef X\n#ifdef Y\na\n#else\nb\n#endif\n#endif\nz",
			defines: nil,
			want:    "z\n",
		},
		{
			name:    "indented directives",
			source:  "  #ifdef X\na\n  #endif",
			defines: []string{"X"},
			want:    "a\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := preprocess(tt.source, tt.defines)
			if err != nil {
				t.Fatalf("preprocess: %v", err)
			}
			if got != tt.want {
				t.Errorf("preprocess = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPreprocessErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   error
	}{
		{"stray endif", "a\n#endif", ErrUnbalancedDirective},
		{"stray else", "#else\na", ErrUnbalancedDirective},
		{"double else", "#ifdef X\n#else\n#else\n#endif", ErrUnbalancedDirective},
		{"unterminated ifdef", "#ifdef X\na", ErrUnbalancedDirective},
		{"ifdef without name", "#ifdef\na\n#endif", ErrBadDirective},
		{"ifdef with two names", "#ifdef X Y\na\n#endif", ErrBadDirective},
		{"unknown directive", "#define X", ErrBadDirective},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := preprocess(tt.source, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("preprocess err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestShaderDefines(t *testing.T) {
	key := edgefx.PipelineKey{
		EnableDepth:  true,
		EnableColor:  true,
		Multisampled: true,
		Projection:   edgefx.ProjectionPerspective,
	}
	got := shaderDefines(key)
	want := []string{"ENABLE_DEPTH", "ENABLE_COLOR", "MULTISAMPLED", "VIEW_PROJECTION_PERSPECTIVE"}
	if len(got) != len(want) {
		t.Fatalf("shaderDefines = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("shaderDefines[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if defines := shaderDefines(edgefx.PipelineKey{}); len(defines) != 0 {
		t.Errorf("empty key produced defines %v", defines)
	}
}

// HDR changes the color target format, never the shader text.
func TestSpecializeShaderIgnoresHDR(t *testing.T) {
	base := edgefx.PipelineKey{EnableDepth: true, Projection: edgefx.ProjectionPerspective}
	hdr := base
	hdr.HDR = true

	a, err := specializeShader(base)
	if err != nil {
		t.Fatalf("specializeShader: %v", err)
	}
	b, err := specializeShader(hdr)
	if err != nil {
		t.Fatalf("specializeShader: %v", err)
	}
	if a != b {
		t.Error("HDR flag changed the specialized shader source")
	}
}

func TestSpecializeShaderNoDirectivesRemain(t *testing.T) {
	for _, key := range allPipelineKeys() {
		src, err := specializeShader(key)
		if err != nil {
			t.Fatalf("specializeShader(%+v): %v", key, err)
		}
		if strings.Contains(src, "#") {
			t.Errorf("variant %+v still contains a preprocessor directive", key)
		}
		if !strings.Contains(src, "fn fragment") {
			t.Errorf("variant %+v lost the fragment entry point", key)
		}
	}
}

// Every shader variant must compile to valid SPIR-V.
func TestShaderVariantsCompile(t *testing.T) {
	for _, key := range allPipelineKeys() {
		key := key
		t.Run(key.String(), func(t *testing.T) {
			src, err := specializeShader(key)
			if err != nil {
				t.Fatalf("specializeShader: %v", err)
			}
			spirvBytes, err := naga.Compile(src)
			if err != nil {
				skipIfShaderUnsupported(t, err)
				t.Fatalf("naga.Compile: %v", err)
			}
			if len(spirvBytes) < 20 || len(spirvBytes)%4 != 0 {
				t.Fatalf("SPIR-V output has invalid length %d", len(spirvBytes))
			}
			if magic := binary.LittleEndian.Uint32(spirvBytes[:4]); magic != 0x07230203 {
				t.Errorf("SPIR-V magic = %#x, want 0x07230203", magic)
			}
		})
	}
}

// allPipelineKeys enumerates every specializable variant.
func allPipelineKeys() []edgefx.PipelineKey {
	var keys []edgefx.PipelineKey
	bools := []bool{false, true}
	for _, depth := range bools {
		for _, normal := range bools {
			for _, color := range bools {
				for _, msaa := range bools {
					for _, proj := range []edgefx.Projection{
						edgefx.ProjectionNone,
						edgefx.ProjectionPerspective,
						edgefx.ProjectionOrthographic,
					} {
						keys = append(keys, edgefx.PipelineKey{
							EnableDepth:  depth,
							EnableNormal: normal,
							EnableColor:  color,
							Multisampled: msaa,
							Projection:   proj,
						})
					}
				}
			}
		}
	}
	return keys
}
