package geometry

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/vivarium/genome"
)

// minOutgrowthResolution floors the sampling resolution of deep fractal
// levels so outgrowths never degenerate below a usable grid.
const minOutgrowthResolution = 10

// Mesh is an abstract vertex/quad-face body. Faces index into Verts. The
// surface list records which vertex ranges belong to which supershape so the
// outgrowth recursion can pick attachment points per surface.
type Mesh struct {
	Verts []r3.Vec
	Quads [][4]int

	surfaces []surface
}

// surface is one supershape's vertex range plus its center, used to derive
// outward normals for attachment.
type surface struct {
	lo, hi int // vertex index range [lo, hi)
	center r3.Vec
}

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() int { return len(m.Verts) }

// QuadCount returns the number of quad faces in the mesh.
func (m *Mesh) QuadCount() int { return len(m.Quads) }

// Builder constructs bodies from genomes. Randomness (segment scales,
// attachment directions, outgrowth jitter) comes from the owned source, so a
// fixed seed reproduces a body exactly.
type Builder struct {
	rng *rand.Rand
}

// NewBuilder creates a mesh builder with the given random source.
func NewBuilder(rng *rand.Rand) *Builder {
	return &Builder{rng: rng}
}

// Build produces the complete body for a genome: the base segments plus the
// recursive fractal outgrowths.
func (b *Builder) Build(g *genome.Genome, resolution int) *Mesh {
	m := b.BuildSegments(g, resolution)
	b.BuildOutgrowths(m, g, resolution)
	return m
}

// BuildSegments builds one supershape per shape gene and attaches them into
// a single connected base. The first segment sits at the origin; every later
// one is offset from a uniformly chosen earlier segment at 0.6x the parent's
// scale, which guarantees visible overlap. The combined base is recorded as
// one level-0 surface centered at the origin.
func (b *Builder) BuildSegments(g *genome.Genome, resolution int) *Mesh {
	m := &Mesh{}

	positions := make([]r3.Vec, 0, genome.GeneCount)
	scales := make([]float64, 0, genome.GeneCount)

	for i, gene := range g.Genes {
		scale := 0.5 + b.rng.Float64()*0.35

		var loc r3.Vec
		if i > 0 {
			attachTo := b.rng.Intn(i)
			parentPos := positions[attachTo]
			parentScale := scales[attachTo]

			angleH := b.rng.Float64() * 2 * math.Pi
			angleV := (b.rng.Float64()*2 - 1) * 0.7 // about +/- 40 degrees

			dist := parentScale * 0.6
			loc = r3.Add(parentPos, r3.Vec{
				X: dist * math.Cos(angleH) * math.Cos(angleV),
				Y: dist * math.Sin(angleH) * math.Cos(angleV),
				Z: dist * math.Sin(angleV),
			})
		}

		positions = append(positions, loc)
		scales = append(scales, scale)

		m.appendSupershape(gene, resolution, scale, loc)
	}

	// The joined base acts as a single surface for the first fractal level.
	m.surfaces = []surface{{lo: 0, hi: len(m.Verts), center: r3.Vec{}}}

	return m
}

// BuildOutgrowths recursively attaches smaller self-similar supershapes to
// the mesh. Each level shrinks by the genome's scale factor and samples at a
// reduced resolution; attachment points are spread evenly across the parent
// surface's vertices and oriented along the jittered outward normal. The
// recursion stops exactly at FractalLevels; the cap bounds the triangle
// count, it is not a convergence criterion. Genomes with no children degrade
// to zero outgrowths.
func (b *Builder) BuildOutgrowths(m *Mesh, g *genome.Genome, resolution int) {
	if g.FractalChildren <= 0 || len(m.surfaces) == 0 {
		return
	}

	currentLevel := m.surfaces
	currentScale := 1.0

	for level := 1; level <= g.FractalLevels; level++ {
		currentScale *= g.ScaleFactor
		levelRes := resolution / (level + 1)
		if levelRes < minOutgrowthResolution {
			levelRes = minOutgrowthResolution
		}

		var newLevel []surface
		for _, parent := range currentLevel {
			nverts := parent.hi - parent.lo
			if nverts == 0 {
				continue
			}

			step := nverts / g.FractalChildren
			if step < 1 {
				step = 1
			}

			count := 0
			for idx := 0; idx < nverts && count < g.FractalChildren; idx += step {
				vert := m.Verts[parent.lo+idx]
				normal := r3.Sub(vert, parent.center)
				if r3.Norm(normal) == 0 {
					normal = r3.Vec{Z: 1}
				}
				normal = r3.Unit(normal)

				// Random direction, not just along the normal.
				dir := r3.Unit(r3.Vec{
					X: normal.X + (b.rng.Float64()*2-1)*0.3,
					Y: normal.Y + (b.rng.Float64()*2-1)*0.3,
					Z: normal.Z + (b.rng.Float64()*2-1)*0.2,
				})

				overlap := currentScale * 0.3
				childPos := r3.Add(vert, r3.Scale(overlap, dir))

				gene := g.Genes[b.rng.Intn(len(g.Genes))]
				childScale := currentScale * (0.85 + b.rng.Float64()*0.3)

				child := m.appendSupershape(gene, levelRes, childScale, childPos)
				newLevel = append(newLevel, child)
				count++
			}
		}

		currentLevel = newLevel
	}

	m.surfaces = append(m.surfaces, currentLevel...)
}

// appendSupershape samples one shape gene over the spherical parameter
// domain and appends the resulting vertex grid and quads to the mesh. Two
// superformula evaluations per point: the horizontal profile over theta
// (0..2pi) and the vertical profile over phi (0..pi), multiplied and mapped
// to Cartesian coordinates.
func (m *Mesh) appendSupershape(gene genome.ShapeGene, resolution int, scale float64, at r3.Vec) surface {
	thetaSteps := resolution
	phiSteps := resolution / 2
	base := len(m.Verts)

	for j := 0; j <= phiSteps; j++ {
		phi := float64(j) / float64(phiSteps) * math.Pi

		for i := 0; i < thetaSteps; i++ {
			theta := float64(i) / float64(thetaSteps) * 2 * math.Pi

			r1 := Radius(theta, float64(gene.M1), gene.N1, gene.N2, gene.N3)
			r2 := Radius(phi, float64(gene.M2), gene.N1b, gene.N2b, gene.N3b)
			r := r1 * r2 * scale

			m.Verts = append(m.Verts, r3.Add(at, r3.Vec{
				X: r * math.Sin(phi) * math.Cos(theta),
				Y: r * math.Sin(phi) * math.Sin(theta),
				Z: r * math.Cos(phi),
			}))
		}
	}

	// Connect into quads, wrapping around the longitude seam.
	for j := 0; j < phiSteps; j++ {
		for i := 0; i < thetaSteps; i++ {
			next := (i + 1) % thetaSteps

			v1 := base + j*thetaSteps + i
			v2 := base + j*thetaSteps + next
			v3 := base + (j+1)*thetaSteps + next
			v4 := base + (j+1)*thetaSteps + i

			m.Quads = append(m.Quads, [4]int{v1, v2, v3, v4})
		}
	}

	return surface{lo: base, hi: len(m.Verts), center: at}
}
