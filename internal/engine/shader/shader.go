// Package shader provides the embedded wireframe shader sources.
//
// Both languages implement the same contract: the vertex stage reads one
// vec3 position at location 0 and multiplies it by the 4x4 matrix held in
// the uniform block "Transform" at binding 0; the fragment stage writes
// opaque white.
package shader

import (
	_ "embed"
	"fmt"

	"github.com/Faultbox/wiresphere/internal/engine/gpu"
)

// TransformBlock is the uniform block name shared by both languages.
const TransformBlock = "Transform"

// WireframeVertexGLSL is the GLSL vertex shader.
//
//go:embed wireframe.vert
var WireframeVertexGLSL string

// WireframeFragmentGLSL is the GLSL fragment shader.
//
//go:embed wireframe.frag
var WireframeFragmentGLSL string

// WireframeVertexWGSL is the WGSL vertex shader.
//
//go:embed wireframe_vert.wgsl
var WireframeVertexWGSL string

// WireframeFragmentWGSL is the WGSL fragment shader.
//
//go:embed wireframe_frag.wgsl
var WireframeFragmentWGSL string

// Provider supplies shader sources for a backend language.
type Provider interface {
	Source(lang gpu.ShaderLanguage) (gpu.ShaderSource, error)
}

type wireframe struct{}

// Wireframe returns the provider for the sphere wireframe shaders.
func Wireframe() Provider {
	return wireframe{}
}

func (wireframe) Source(lang gpu.ShaderLanguage) (gpu.ShaderSource, error) {
	switch lang {
	case gpu.ShaderLanguageGLSL:
		return gpu.ShaderSource{
			Language:      lang,
			Vertex:        WireframeVertexGLSL,
			Fragment:      WireframeFragmentGLSL,
			VertexEntry:   "main",
			FragmentEntry: "main",
		}, nil
	case gpu.ShaderLanguageWGSL:
		return gpu.ShaderSource{
			Language:      lang,
			Vertex:        WireframeVertexWGSL,
			Fragment:      WireframeFragmentWGSL,
			VertexEntry:   "vs_main",
			FragmentEntry: "fs_main",
		}, nil
	default:
		return gpu.ShaderSource{}, fmt.Errorf("no wireframe shader for %s", lang)
	}
}
