// Package sphere generates latitude/longitude unit sphere meshes as line
// lists suitable for wireframe rendering.
//
// Vertices are laid out row-major by latitude band then longitude step.
// The seam column (lon = 0 and lon = longitudeBands) is duplicated and every
// vertex of the first and last latitude rows collapses onto a pole. Both are
// kept so that grid indexing stays uniform.
package sphere

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	vmath "github.com/Faultbox/wiresphere/pkg/math"
)

const (
	// DefaultLatitudeBands is the default number of latitude bands.
	DefaultLatitudeBands = 30
	// DefaultLongitudeBands is the default number of longitude bands.
	DefaultLongitudeBands = 30

	// VertexStride is the byte size of one packed position (3 x float32).
	VertexStride = 12
	// IndexSize is the byte size of one index (uint16).
	IndexSize = 2

	// MaxVertices is the largest vertex count addressable by uint16 indices.
	MaxVertices = math.MaxUint16 + 1
)

var (
	// ErrInvalidTessellation is returned when a band count is not positive.
	ErrInvalidTessellation = errors.New("sphere: band counts must be positive")

	// ErrTooManyVertices is returned when the mesh cannot be indexed with uint16.
	ErrTooManyVertices = errors.New("sphere: vertex count exceeds uint16 index range")
)

// Mesh is an immutable unit sphere wireframe.
type Mesh struct {
	latBands  int
	lonBands  int
	positions []vmath.Vec3
	indices   []uint16
}

// Generate builds a sphere mesh with the given tessellation.
func Generate(latitudeBands, longitudeBands int) (*Mesh, error) {
	if latitudeBands <= 0 || longitudeBands <= 0 {
		return nil, fmt.Errorf("%w: latitude=%d longitude=%d", ErrInvalidTessellation, latitudeBands, longitudeBands)
	}
	if latitudeBands >= MaxVertices || longitudeBands >= MaxVertices {
		return nil, fmt.Errorf("%w: latitude=%d longitude=%d", ErrTooManyVertices, latitudeBands, longitudeBands)
	}
	vertexCount := (latitudeBands + 1) * (longitudeBands + 1)
	if vertexCount > MaxVertices {
		return nil, fmt.Errorf("%w: %d vertices (max %d)", ErrTooManyVertices, vertexCount, MaxVertices)
	}

	m := &Mesh{
		latBands:  latitudeBands,
		lonBands:  longitudeBands,
		positions: make([]vmath.Vec3, 0, vertexCount),
		indices:   make([]uint16, 0, 4*latitudeBands*longitudeBands),
	}

	for lat := 0; lat <= latitudeBands; lat++ {
		theta := float64(lat) * math.Pi / float64(latitudeBands)
		sinTheta, cosTheta := math.Sincos(theta)

		for lon := 0; lon <= longitudeBands; lon++ {
			phi := float64(lon) * 2 * math.Pi / float64(longitudeBands)
			sinPhi, cosPhi := math.Sincos(phi)

			m.positions = append(m.positions, vmath.Vec3{
				X: float32(cosPhi * sinTheta),
				Y: float32(cosTheta),
				Z: float32(sinPhi * sinTheta),
			})
		}
	}

	for lat := 0; lat < latitudeBands; lat++ {
		for lon := 0; lon < longitudeBands; lon++ {
			first := lat*(longitudeBands+1) + lon
			second := first + longitudeBands + 1

			// Meridian segment, then parallel segment.
			m.indices = append(m.indices,
				uint16(first), uint16(second),
				uint16(first), uint16(first+1),
			)
		}
	}

	return m, nil
}

// LatitudeBands returns the latitude tessellation.
func (m *Mesh) LatitudeBands() int { return m.latBands }

// LongitudeBands returns the longitude tessellation.
func (m *Mesh) LongitudeBands() int { return m.lonBands }

// VertexCount returns the number of positions.
func (m *Mesh) VertexCount() int { return len(m.positions) }

// IndexCount returns the number of indices (two per segment).
func (m *Mesh) IndexCount() int { return len(m.indices) }

// SegmentCount returns the number of line segments.
func (m *Mesh) SegmentCount() int { return len(m.indices) / 2 }

// Position returns the i-th vertex position.
func (m *Mesh) Position(i int) vmath.Vec3 { return m.positions[i] }

// Positions returns a copy of all vertex positions.
func (m *Mesh) Positions() []vmath.Vec3 {
	out := make([]vmath.Vec3, len(m.positions))
	copy(out, m.positions)
	return out
}

// Indices returns a copy of the line-list indices.
func (m *Mesh) Indices() []uint16 {
	out := make([]uint16, len(m.indices))
	copy(out, m.indices)
	return out
}

// VertexBytes returns the positions packed as little-endian float32 triples,
// VertexCount()*VertexStride bytes long.
func (m *Mesh) VertexBytes() []byte {
	b := make([]byte, 0, len(m.positions)*VertexStride)
	for _, p := range m.positions {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(p.X))
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(p.Y))
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(p.Z))
	}
	return b
}

// IndexBytes returns the indices packed as little-endian uint16,
// IndexCount()*IndexSize bytes long.
func (m *Mesh) IndexBytes() []byte {
	b := make([]byte, 0, len(m.indices)*IndexSize)
	for _, idx := range m.indices {
		b = binary.LittleEndian.AppendUint16(b, idx)
	}
	return b
}
