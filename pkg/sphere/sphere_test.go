package sphere

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	vmath "github.com/Faultbox/wiresphere/pkg/math"
)

func TestGenerateCounts(t *testing.T) {
	tests := []struct {
		lat, lon int
	}{
		{1, 1},
		{1, 7},
		{2, 3},
		{30, 30},
		{64, 17},
		{255, 255},
	}

	for _, tt := range tests {
		m, err := Generate(tt.lat, tt.lon)
		if err != nil {
			t.Fatalf("Generate(%d, %d) error: %v", tt.lat, tt.lon, err)
		}

		wantVerts := (tt.lat + 1) * (tt.lon + 1)
		if m.VertexCount() != wantVerts {
			t.Errorf("Generate(%d, %d) vertices = %d, want %d", tt.lat, tt.lon, m.VertexCount(), wantVerts)
		}
		wantIdx := 4 * tt.lat * tt.lon
		if m.IndexCount() != wantIdx {
			t.Errorf("Generate(%d, %d) indices = %d, want %d", tt.lat, tt.lon, m.IndexCount(), wantIdx)
		}
		if m.SegmentCount() != wantIdx/2 {
			t.Errorf("Generate(%d, %d) segments = %d, want %d", tt.lat, tt.lon, m.SegmentCount(), wantIdx/2)
		}
		for i, idx := range m.Indices() {
			if int(idx) >= m.VertexCount() {
				t.Errorf("Generate(%d, %d) index[%d] = %d out of range", tt.lat, tt.lon, i, idx)
			}
		}
	}
}

func TestGenerateUnitLength(t *testing.T) {
	m, err := Generate(DefaultLatitudeBands, DefaultLongitudeBands)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	for i, p := range m.Positions() {
		if d := math.Abs(float64(p.Length()) - 1); d >= 1e-5 {
			t.Errorf("position %d = %v has length error %g", i, p, d)
		}
	}
}

func TestGenerateSingleCell(t *testing.T) {
	m, err := Generate(1, 1)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if m.VertexCount() != 4 {
		t.Fatalf("vertices = %d, want 4", m.VertexCount())
	}

	want := []uint16{0, 2, 0, 1, 1, 3, 1, 2}
	got := m.Indices()
	if len(got) != len(want) {
		t.Fatalf("indices = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("indices = %v, want %v", got, want)
			break
		}
	}
}

func TestGenerateFormula(t *testing.T) {
	const lat, lon = 3, 5
	m, err := Generate(lat, lon)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	idx := m.Indices()
	k := 0
	for la := 0; la < lat; la++ {
		for lo := 0; lo < lon; lo++ {
			first := uint16(la*(lon+1) + lo)
			second := first + lon + 1
			want := [4]uint16{first, second, first, first + 1}
			got := [4]uint16{idx[k], idx[k+1], idx[k+2], idx[k+3]}
			if got != want {
				t.Errorf("cell (%d,%d) = %v, want %v", la, lo, got, want)
			}
			k += 4
		}
	}
}

func TestGenerateSeamAndPoles(t *testing.T) {
	const lat, lon = 6, 8
	m, err := Generate(lat, lon)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	north := vmath.Vec3{X: 0, Y: 1, Z: 0}
	south := vmath.Vec3{X: 0, Y: -1, Z: 0}
	for lo := 0; lo <= lon; lo++ {
		if d := m.Position(lo).Distance(north); d > 1e-6 {
			t.Errorf("north pole vertex %d off by %g", lo, d)
		}
		if d := m.Position(lat*(lon+1) + lo).Distance(south); d > 1e-6 {
			t.Errorf("south pole vertex %d off by %g", lo, d)
		}
	}

	for la := 0; la <= lat; la++ {
		row := la * (lon + 1)
		if d := m.Position(row).Distance(m.Position(row + lon)); d > 1e-6 {
			t.Errorf("seam row %d: first and last vertex differ by %g", la, d)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a, _ := Generate(12, 9)
	b, _ := Generate(12, 9)
	ab, bb := a.VertexBytes(), b.VertexBytes()
	if string(ab) != string(bb) {
		t.Error("vertex bytes differ between identical generations")
	}
	if string(a.IndexBytes()) != string(b.IndexBytes()) {
		t.Error("index bytes differ between identical generations")
	}
}

func TestGenerateInvalid(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon int
		want     error
	}{
		{"zero latitude", 0, 30, ErrInvalidTessellation},
		{"zero longitude", 30, 0, ErrInvalidTessellation},
		{"negative", -1, -1, ErrInvalidTessellation},
		{"vertex overflow", 256, 256, ErrTooManyVertices},
		{"huge band", 1 << 40, 1, ErrTooManyVertices},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Generate(tt.lat, tt.lon)
			if !errors.Is(err, tt.want) {
				t.Errorf("Generate(%d, %d) error = %v, want %v", tt.lat, tt.lon, err, tt.want)
			}
			if m != nil {
				t.Error("expected nil mesh on error")
			}
		})
	}
}

func TestByteEncoding(t *testing.T) {
	m, err := Generate(4, 4)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	vb := m.VertexBytes()
	if len(vb) != m.VertexCount()*VertexStride {
		t.Fatalf("vertex bytes = %d, want %d", len(vb), m.VertexCount()*VertexStride)
	}
	for i := 0; i < m.VertexCount(); i++ {
		p := m.Position(i)
		x := math.Float32frombits(binary.LittleEndian.Uint32(vb[i*VertexStride:]))
		y := math.Float32frombits(binary.LittleEndian.Uint32(vb[i*VertexStride+4:]))
		z := math.Float32frombits(binary.LittleEndian.Uint32(vb[i*VertexStride+8:]))
		if x != p.X || y != p.Y || z != p.Z {
			t.Fatalf("vertex %d decoded (%f,%f,%f), want %v", i, x, y, z, p)
		}
	}

	ib := m.IndexBytes()
	if len(ib) != m.IndexCount()*IndexSize {
		t.Fatalf("index bytes = %d, want %d", len(ib), m.IndexCount()*IndexSize)
	}
	idx := m.Indices()
	for i := range idx {
		if got := binary.LittleEndian.Uint16(ib[i*IndexSize:]); got != idx[i] {
			t.Fatalf("index %d decoded %d, want %d", i, got, idx[i])
		}
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	m, _ := Generate(2, 2)
	idx := m.Indices()
	idx[0] = 999
	if m.Indices()[0] == 999 {
		t.Error("Indices() exposed internal storage")
	}
	pos := m.Positions()
	pos[0].X = 42
	if m.Position(0).X == 42 {
		t.Error("Positions() exposed internal storage")
	}
}
