package genome

import (
	"math/rand"
	"testing"
)

func testBounds() Bounds {
	return Bounds{
		MutationRate:     0.20,
		MutationStrength: 0.25,
		MinFractalLevels: 2,
		MaxFractalLevels: 3,
		MinChildren:      2,
		MaxChildren:      5,
	}
}

func checkGeneInSamplingRanges(t *testing.T, g ShapeGene) {
	t.Helper()
	if g.M1 < 3 || g.M1 > 14 {
		t.Errorf("M1 out of range: %d", g.M1)
	}
	if g.M2 < 2 || g.M2 > 12 {
		t.Errorf("M2 out of range: %d", g.M2)
	}
	if g.N1 < 0.08 || g.N1 > 0.9 {
		t.Errorf("N1 out of range: %g", g.N1)
	}
	if g.N2 < 0.5 || g.N2 > 3.5 || g.N3 < 0.5 || g.N3 > 3.5 {
		t.Errorf("N2/N3 out of range: %g %g", g.N2, g.N3)
	}
	if g.N1b < 0.1 || g.N1b > 0.95 {
		t.Errorf("N1b out of range: %g", g.N1b)
	}
	if g.N2b < 0.4 || g.N2b > 3.2 || g.N3b < 0.4 || g.N3b > 3.2 {
		t.Errorf("N2b/N3b out of range: %g %g", g.N2b, g.N3b)
	}
}

func TestRandomBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	b := testBounds()

	for i := 0; i < 200; i++ {
		g := Random(rng, b)
		for _, gene := range g.Genes {
			checkGeneInSamplingRanges(t, gene)
		}
		if g.FractalLevels < b.MinFractalLevels || g.FractalLevels > b.MaxFractalLevels {
			t.Errorf("fractal levels out of range: %d", g.FractalLevels)
		}
		if g.FractalChildren < b.MinChildren || g.FractalChildren > b.MaxChildren {
			t.Errorf("fractal children out of range: %d", g.FractalChildren)
		}
		if g.ScaleFactor < 0.45 || g.ScaleFactor > 0.70 {
			t.Errorf("scale factor out of range: %g", g.ScaleFactor)
		}
		if g.Speed < 0.2 || g.Speed > 0.5 {
			t.Errorf("speed out of range: %g", g.Speed)
		}
	}
}

func TestCrossoverWholeGeneInheritance(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	b := testBounds()
	a := Random(rng, b)
	c := Random(rng, b)

	for i := 0; i < 100; i++ {
		child := Crossover(rng, a, c)
		for gi, gene := range child.Genes {
			if gene != a.Genes[gi] && gene != c.Genes[gi] {
				t.Fatalf("gene %d is a blend, not inherited whole: %+v", gi, gene)
			}
		}
		if child.FractalLevels != a.FractalLevels && child.FractalLevels != c.FractalLevels {
			t.Fatalf("fractal levels not from a parent: %d", child.FractalLevels)
		}
		if child.FractalChildren != a.FractalChildren && child.FractalChildren != c.FractalChildren {
			t.Fatalf("fractal children not from a parent: %d", child.FractalChildren)
		}
	}
}

func TestCrossoverFloatBlendNeverExact(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	b := testBounds()
	a := Random(rng, b)
	c := Random(rng, b)
	a.Speed = 0.2
	c.Speed = 0.5

	for i := 0; i < 100; i++ {
		child := Crossover(rng, a, c)
		// Mix ratio in [0.3, 0.7] keeps the blend strictly inside the band.
		lo, hi := 0.2+0.3*0.3, 0.5-0.3*0.3
		if child.Speed < lo || child.Speed > hi {
			t.Fatalf("blended speed %g outside [%g, %g]", child.Speed, lo, hi)
		}
	}
}

func TestMutateBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	b := testBounds()
	b.MutationRate = 1.0 // force every field to mutate

	g := Random(rng, b)
	for i := 0; i < 300; i++ {
		g = Mutate(rng, g, b)
		for _, gene := range g.Genes {
			if gene.M1 < 3 || gene.M1 > 12 {
				t.Fatalf("mutated M1 out of [3,12]: %d", gene.M1)
			}
			if gene.M2 < 3 || gene.M2 > 12 {
				t.Fatalf("mutated M2 out of [3,12]: %d", gene.M2)
			}
			for _, v := range []float64{gene.N1, gene.N2, gene.N3, gene.N1b, gene.N2b, gene.N3b} {
				if v < 0.1 || v > 3.0 {
					t.Fatalf("mutated curvature out of [0.1,3.0]: %g", v)
				}
			}
		}
		if g.FractalLevels < b.MinFractalLevels || g.FractalLevels > b.MaxFractalLevels {
			t.Fatalf("mutated fractal levels out of range: %d", g.FractalLevels)
		}
		if g.FractalChildren < b.MinChildren || g.FractalChildren > b.MaxChildren {
			t.Fatalf("mutated fractal children out of range: %d", g.FractalChildren)
		}
		if g.ScaleFactor < 0.1 {
			t.Fatalf("mutated scale factor below floor: %g", g.ScaleFactor)
		}
		if g.Speed < 0.1 {
			t.Fatalf("mutated speed below floor: %g", g.Speed)
		}
	}
}

func TestMutateDoesNotModifyInput(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	b := testBounds()
	b.MutationRate = 1.0

	orig := Random(rng, b)
	snapshot := orig
	_ = Mutate(rng, orig, b)

	if orig != snapshot {
		t.Error("Mutate modified its input genome")
	}
}

func TestMutateZeroRateIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	b := testBounds()
	b.MutationRate = 0

	g := Random(rng, b)
	if out := Mutate(rng, g, b); out != g {
		t.Error("zero mutation rate should pass the genome through unchanged")
	}
}
