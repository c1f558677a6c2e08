package render

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/edgefx"
)

//go:embed shaders/edge_detection.wgsl
var edgeDetectionWGSL string

// Shader preprocessor errors. These indicate a defect in the embedded
// source, so they surface at pipeline creation, never per frame.
var (
	// ErrUnbalancedDirective is returned for an #else or #endif with
	// no matching #ifdef, or an #ifdef left open at end of source.
	ErrUnbalancedDirective = errors.New("edgefx: unbalanced shader preprocessor directive")

	// ErrBadDirective is returned for a malformed directive line.
	ErrBadDirective = errors.New("edgefx: malformed shader preprocessor directive")
)

// Preprocessor flag names. The shader source and the pipeline
// specialization code must agree on these exactly; they are the only
// contract between the two.
const (
	defineEnableDepth  = "ENABLE_DEPTH"
	defineEnableNormal = "ENABLE_NORMAL"
	defineEnableColor  = "ENABLE_COLOR"
	defineMultisampled = "MULTISAMPLED"
	definePerspective  = "VIEW_PROJECTION_PERSPECTIVE"
	defineOrthographic = "VIEW_PROJECTION_ORTHOGRAPHIC"
)

// shaderDefines maps a pipeline key to the preprocessor flags the
// shader variant is compiled with.
func shaderDefines(key edgefx.PipelineKey) []string {
	defines := make([]string, 0, 5)
	if key.EnableDepth {
		defines = append(defines, defineEnableDepth)
	}
	if key.EnableNormal {
		defines = append(defines, defineEnableNormal)
	}
	if key.EnableColor {
		defines = append(defines, defineEnableColor)
	}
	if key.Multisampled {
		defines = append(defines, defineMultisampled)
	}
	switch key.Projection {
	case edgefx.ProjectionPerspective:
		defines = append(defines, definePerspective)
	case edgefx.ProjectionOrthographic:
		defines = append(defines, defineOrthographic)
	case edgefx.ProjectionNone:
	}
	return defines
}

// preprocess resolves #ifdef/#else/#endif blocks in WGSL source
// against the given defines and strips the directive lines. Directives
// nest; anything else on a line starting with '#' is an error.
func preprocess(source string, defines []string) (string, error) {
	defined := make(map[string]bool, len(defines))
	for _, d := range defines {
		defined[d] = true
	}

	// Each frame on the stack records whether the enclosing block is
	// emitting and whether the current branch already matched.
	type frame struct {
		emitting bool
		taken    bool
		hasElse  bool
	}
	var stack []frame
	emitting := true

	var out strings.Builder
	out.Grow(len(source))

	for lineNo, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "#ifdef"):
			name := strings.TrimSpace(strings.TrimPrefix(trimmed, "#ifdef"))
			if name == "" || strings.ContainsAny(name, " \t") {
				return "", fmt.Errorf("%w: line %d: %q", ErrBadDirective, lineNo+1, trimmed)
			}
			take := emitting && defined[name]
			stack = append(stack, frame{emitting: emitting, taken: take})
			emitting = take

		case trimmed == "#else":
			if len(stack) == 0 || stack[len(stack)-1].hasElse {
				return "", fmt.Errorf("%w: line %d: #else", ErrUnbalancedDirective, lineNo+1)
			}
			top := &stack[len(stack)-1]
			top.hasElse = true
			emitting = top.emitting && !top.taken

		case trimmed == "#endif":
			if len(stack) == 0 {
				return "", fmt.Errorf("%w: line %d: #endif", ErrUnbalancedDirective, lineNo+1)
			}
			emitting = stack[len(stack)-1].emitting
			stack = stack[:len(stack)-1]

		case strings.HasPrefix(trimmed, "#"):
			return "", fmt.Errorf("%w: line %d: %q", ErrBadDirective, lineNo+1, trimmed)

		default:
			if emitting {
				out.WriteString(line)
				out.WriteByte('\n')
			}
		}
	}
	if len(stack) != 0 {
		return "", fmt.Errorf("%w: %d unterminated #ifdef block(s)", ErrUnbalancedDirective, len(stack))
	}
	return out.String(), nil
}

// specializeShader produces the WGSL variant for one pipeline key.
func specializeShader(key edgefx.PipelineKey) (string, error) {
	src, err := preprocess(edgeDetectionWGSL, shaderDefines(key))
	if err != nil {
		return "", fmt.Errorf("specialize shader for %+v: %w", key, err)
	}
	return src, nil
}
