// Package scene assembles the wireframe sphere: the generated mesh, its GPU
// buffers, the render pipeline and the transform bind group. Everything here
// is built once at startup and reused unchanged by every frame.
package scene

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/wiresphere/internal/engine/gpu"
	"github.com/Faultbox/wiresphere/internal/engine/shader"
	"github.com/Faultbox/wiresphere/internal/logger"
	"github.com/Faultbox/wiresphere/pkg/sphere"
)

// Config contains scene construction options.
type Config struct {
	LatitudeBands  int
	LongitudeBands int
	Language       gpu.ShaderLanguage
	Shaders        shader.Provider
}

// DefaultConfig returns the default 30x30 sphere with the wireframe shaders.
func DefaultConfig(lang gpu.ShaderLanguage) Config {
	return Config{
		LatitudeBands:  sphere.DefaultLatitudeBands,
		LongitudeBands: sphere.DefaultLongitudeBands,
		Language:       lang,
		Shaders:        shader.Wireframe(),
	}
}

// Sphere is the complete set of immutable render state for one sphere.
type Sphere struct {
	mesh      *sphere.Mesh
	resources *Resources
	pipeline  gpu.Pipeline
	bindings  gpu.BindGroup
}

// NewSphere builds the sphere scene on dev, targeting the given surface
// format. Configuration problems are reported before anything is allocated.
func NewSphere(dev gpu.Device, format gpu.TextureFormat, cfg Config) (*Sphere, error) {
	mesh, err := sphere.Generate(cfg.LatitudeBands, cfg.LongitudeBands)
	if err != nil {
		return nil, gpu.Config("generate mesh", err)
	}

	if cfg.Shaders == nil {
		return nil, gpu.Config("load shaders", fmt.Errorf("no shader provider"))
	}
	src, err := cfg.Shaders.Source(cfg.Language)
	if err != nil {
		return nil, gpu.Config("load shaders", err)
	}

	desc := WireframePipelineDesc(src, format)
	if err := validateWireframe(desc); err != nil {
		return nil, err
	}

	s := &Sphere{mesh: mesh}

	s.resources, err = NewResources(dev, mesh)
	if err != nil {
		return nil, err
	}

	s.pipeline, err = dev.CreatePipeline(desc)
	if err != nil {
		s.Release()
		return nil, gpu.Resource("create pipeline", err)
	}

	s.bindings, err = dev.CreateBindGroup(s.pipeline, gpu.BindGroupEntry{
		Binding: TransformBinding,
		Buffer:  s.resources.TransformBuffer(),
	})
	if err != nil {
		s.Release()
		return nil, gpu.Resource("create bind group", err)
	}

	logger.Info("sphere scene ready",
		zap.Int("latitudeBands", mesh.LatitudeBands()),
		zap.Int("longitudeBands", mesh.LongitudeBands()),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int("segments", mesh.SegmentCount()),
		zap.Stringer("shaders", cfg.Language),
	)
	return s, nil
}

// Mesh returns the generated mesh.
func (s *Sphere) Mesh() *sphere.Mesh { return s.mesh }

// Resources returns the GPU buffers.
func (s *Sphere) Resources() *Resources { return s.resources }

// Pipeline returns the render pipeline.
func (s *Sphere) Pipeline() gpu.Pipeline { return s.pipeline }

// Bindings returns the bind group holding the transform buffer.
func (s *Sphere) Bindings() gpu.BindGroup { return s.bindings }

// Release frees everything the scene created.
func (s *Sphere) Release() {
	if s.bindings != nil {
		s.bindings.Release()
		s.bindings = nil
	}
	if s.pipeline != nil {
		s.pipeline.Release()
		s.pipeline = nil
	}
	if s.resources != nil {
		s.resources.Release()
		s.resources = nil
	}
}
