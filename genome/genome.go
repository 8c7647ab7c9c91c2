// Package genome implements the heritable parameter set that determines a
// creature's shape and traits: a fixed set of superformula shape genes plus
// fractal and movement scalars. Genomes are value data; crossover and
// mutation always return a new genome and never modify their inputs.
package genome

import "math/rand"

// GeneCount is the number of shape genes per genome. Each gene produces one
// supershape segment of the body.
const GeneCount = 3

// Symmetry bounds applied when mutating. Initial generation samples from a
// slightly different band (see Random).
const (
	minSymmetry = 3
	maxSymmetry = 12
)

// Curvature clamp applied when mutating. Wider than the initial sampling
// ranges; mutation can drift n1 well past anything Random produces.
const (
	minCurvature = 0.1
	maxCurvature = 3.0
)

// ShapeGene holds the 8 parameters of one supershape segment: two symmetry
// integers and six curvature/roundness floats. M1/N1..N3 shape the horizontal
// profile, M2/N1b..N3b the vertical one.
type ShapeGene struct {
	M1, M2        int
	N1, N2, N3    float64
	N1b, N2b, N3b float64
}

// Genome is the complete heritable state of a creature.
type Genome struct {
	Genes           [GeneCount]ShapeGene
	FractalLevels   int     // Outgrowth recursion depth
	FractalChildren int     // Outgrowths per surface per level
	ScaleFactor     float64 // Shrink factor between fractal levels
	Speed           float64 // Movement per tick
}

// Bounds holds the configured limits for genome generation and mutation.
type Bounds struct {
	MutationRate     float64
	MutationStrength float64
	MinFractalLevels int
	MaxFractalLevels int
	MinChildren      int
	MaxChildren      int
}

// randomGene samples a single shape gene. Roundness (N1, N1b) comes from a
// narrower, lower band than the curvature terms; extreme roundness values
// produce degenerate shapes.
func randomGene(rng *rand.Rand) ShapeGene {
	return ShapeGene{
		M1:  3 + rng.Intn(12), // 3=clover .. 14=star
		M2:  2 + rng.Intn(11),
		N1:  uniform(rng, 0.08, 0.9),
		N2:  uniform(rng, 0.5, 3.5),
		N3:  uniform(rng, 0.5, 3.5),
		N1b: uniform(rng, 0.1, 0.95),
		N2b: uniform(rng, 0.4, 3.2),
		N3b: uniform(rng, 0.4, 3.2),
	}
}

// Random creates a completely new genome. Used for fresh creatures.
func Random(rng *rand.Rand, b Bounds) Genome {
	g := Genome{
		FractalLevels:   b.MinFractalLevels + rng.Intn(b.MaxFractalLevels-b.MinFractalLevels+1),
		FractalChildren: b.MinChildren + rng.Intn(b.MaxChildren-b.MinChildren+1),
		ScaleFactor:     uniform(rng, 0.45, 0.70),
		Speed:           uniform(rng, 0.2, 0.5),
	}
	for i := range g.Genes {
		g.Genes[i] = randomGene(rng)
	}
	return g
}

// Crossover combines two parents into a child genome. Shape genes are
// inherited whole from one parent at 50/50 odds per gene; blending curvature
// parameters from different parents independently produces chaotic,
// frequently degenerate shapes. Integer traits pick one parent; float traits
// interpolate with a mix ratio in [0.3, 0.7] to preserve variance.
func Crossover(rng *rand.Rand, a, b Genome) Genome {
	var child Genome

	for i := range child.Genes {
		if rng.Float64() < 0.5 {
			child.Genes[i] = a.Genes[i]
		} else {
			child.Genes[i] = b.Genes[i]
		}
	}

	child.FractalLevels = pickInt(rng, a.FractalLevels, b.FractalLevels)
	child.FractalChildren = pickInt(rng, a.FractalChildren, b.FractalChildren)
	child.ScaleFactor = blend(rng, a.ScaleFactor, b.ScaleFactor)
	child.Speed = blend(rng, a.Speed, b.Speed)

	return child
}

// Mutate applies random mutations and returns the mutated copy. Each field
// mutates independently with probability b.MutationRate: symmetry shifts by a
// few discrete steps, curvature and the float scalars get a relative
// perturbation, fractal counts step by at most one.
func Mutate(rng *rand.Rand, g Genome, b Bounds) Genome {
	out := g

	for i := range out.Genes {
		gene := &out.Genes[i]
		if rng.Float64() < b.MutationRate {
			gene.M1 = clampInt(gene.M1+stepInt(rng), minSymmetry, maxSymmetry)
		}
		if rng.Float64() < b.MutationRate {
			gene.M2 = clampInt(gene.M2+stepInt(rng), minSymmetry, maxSymmetry)
		}
		for _, f := range []*float64{&gene.N1, &gene.N2, &gene.N3, &gene.N1b, &gene.N2b, &gene.N3b} {
			if rng.Float64() < b.MutationRate {
				*f = clamp(perturb(rng, *f, b.MutationStrength), minCurvature, maxCurvature)
			}
		}
	}

	if rng.Float64() < b.MutationRate {
		out.FractalLevels = clampInt(out.FractalLevels+rng.Intn(3)-1, b.MinFractalLevels, b.MaxFractalLevels)
	}
	if rng.Float64() < b.MutationRate {
		out.FractalChildren = clampInt(out.FractalChildren+rng.Intn(3)-1, b.MinChildren, b.MaxChildren)
	}
	if rng.Float64() < b.MutationRate {
		out.ScaleFactor = max(0.1, perturb(rng, out.ScaleFactor, b.MutationStrength))
	}
	if rng.Float64() < b.MutationRate {
		out.Speed = max(0.1, perturb(rng, out.Speed, b.MutationStrength))
	}

	return out
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// perturb applies a relative change of up to +/- strength.
func perturb(rng *rand.Rand, v, strength float64) float64 {
	return v + v*strength*(rng.Float64()*2-1)
}

// stepInt returns an integer in [-2, 2].
func stepInt(rng *rand.Rand) int {
	return rng.Intn(5) - 2
}

func pickInt(rng *rand.Rand, a, b int) int {
	if rng.Float64() < 0.5 {
		return a
	}
	return b
}

func blend(rng *rand.Rand, a, b float64) float64 {
	mix := uniform(rng, 0.3, 0.7)
	return a*mix + b*(1-mix)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
