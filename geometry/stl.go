package geometry

import (
	"encoding/binary"
	"fmt"
	"io"

	"gonum.org/v1/gonum/spatial/r3"
)

// stlHeaderSize is the fixed binary STL header length.
const stlHeaderSize = 80

// WriteSTL writes the mesh as binary STL: an 80-byte header, a uint32
// triangle count, then one 50-byte record per triangle (normal, three
// vertices, attribute word). Quads are split into two triangles each.
func WriteSTL(w io.Writer, m *Mesh) error {
	if _, err := w.Write(make([]byte, stlHeaderSize)); err != nil {
		return fmt.Errorf("writing stl header: %w", err)
	}

	count := uint32(2 * len(m.Quads))
	if err := binary.Write(w, binary.LittleEndian, count); err != nil {
		return fmt.Errorf("writing triangle count: %w", err)
	}

	for _, q := range m.Quads {
		a, b, c, d := m.Verts[q[0]], m.Verts[q[1]], m.Verts[q[2]], m.Verts[q[3]]
		if err := writeTriangle(w, a, b, c); err != nil {
			return err
		}
		if err := writeTriangle(w, a, c, d); err != nil {
			return err
		}
	}

	return nil
}

func writeTriangle(w io.Writer, a, b, c r3.Vec) error {
	n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
	if r3.Norm(n) > 0 {
		n = r3.Unit(n)
	}

	var rec [12]float32
	rec[0], rec[1], rec[2] = float32(n.X), float32(n.Y), float32(n.Z)
	rec[3], rec[4], rec[5] = float32(a.X), float32(a.Y), float32(a.Z)
	rec[6], rec[7], rec[8] = float32(b.X), float32(b.Y), float32(b.Z)
	rec[9], rec[10], rec[11] = float32(c.X), float32(c.Y), float32(c.Z)

	if err := binary.Write(w, binary.LittleEndian, rec[:]); err != nil {
		return fmt.Errorf("writing triangle: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(0)); err != nil {
		return fmt.Errorf("writing attribute: %w", err)
	}
	return nil
}
