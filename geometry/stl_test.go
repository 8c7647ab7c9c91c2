package geometry

import (
	"bytes"
	"encoding/binary"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestWriteSTLLayout(t *testing.T) {
	m := &Mesh{
		Verts: []r3.Vec{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 1, Y: 1, Z: 0},
			{X: 0, Y: 1, Z: 0},
		},
		Quads: [][4]int{{0, 1, 2, 3}},
	}

	var buf bytes.Buffer
	if err := WriteSTL(&buf, m); err != nil {
		t.Fatalf("WriteSTL: %v", err)
	}

	// 80-byte header + uint32 count + 50 bytes per triangle; one quad
	// becomes two triangles.
	wantLen := 80 + 4 + 2*50
	if buf.Len() != wantLen {
		t.Errorf("expected %d bytes, got %d", wantLen, buf.Len())
	}

	count := binary.LittleEndian.Uint32(buf.Bytes()[80:84])
	if count != 2 {
		t.Errorf("expected triangle count 2, got %d", count)
	}

	// First triangle normal for a CCW unit quad in the XY plane is +Z.
	rec := buf.Bytes()[84:]
	nx := float32frombytes(rec[0:4])
	ny := float32frombytes(rec[4:8])
	nz := float32frombytes(rec[8:12])
	if nx != 0 || ny != 0 || nz != 1 {
		t.Errorf("expected normal (0,0,1), got (%g,%g,%g)", nx, ny, nz)
	}
}

func TestWriteSTLDegenerateTriangle(t *testing.T) {
	// A zero-area quad must not produce NaN normals.
	m := &Mesh{
		Verts: []r3.Vec{{}, {}, {}, {}},
		Quads: [][4]int{{0, 1, 2, 3}},
	}

	var buf bytes.Buffer
	if err := WriteSTL(&buf, m); err != nil {
		t.Fatalf("WriteSTL: %v", err)
	}

	rec := buf.Bytes()[84:]
	for i := 0; i < 3; i++ {
		v := float32frombytes(rec[i*4 : i*4+4])
		if v != v { // NaN
			t.Fatal("degenerate triangle produced NaN normal component")
		}
	}
}

func TestWriteSTLFromBuild(t *testing.T) {
	g := testGenome(1, 2)
	m := NewBuilder(rand.New(rand.NewSource(7))).Build(&g, 12)

	var buf bytes.Buffer
	if err := WriteSTL(&buf, m); err != nil {
		t.Fatalf("WriteSTL: %v", err)
	}

	wantLen := 80 + 4 + 2*50*m.QuadCount()
	if buf.Len() != wantLen {
		t.Errorf("expected %d bytes for %d quads, got %d", wantLen, m.QuadCount(), buf.Len())
	}
}

func float32frombytes(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
