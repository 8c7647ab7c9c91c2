package components

import (
	"testing"

	"github.com/pthm-cable/vivarium/genome"
)

func TestStrength(t *testing.T) {
	o := &Organism{Genome: genome.Genome{FractalLevels: 3, FractalChildren: 5}}

	// 0.5*60 + 5*3 + 2*5 = 55
	if got := o.Strength(60); got != 55 {
		t.Errorf("expected strength 55, got %g", got)
	}
}

func TestCanMate(t *testing.T) {
	o := &Organism{}
	en := &Energy{Value: 80, Age: 30}

	if !o.CanMate(en, 60, 20) {
		t.Error("eligible organism should be able to mate")
	}
	if o.CanMate(&Energy{Value: 50, Age: 30}, 60, 20) {
		t.Error("low energy should block mating")
	}
	if o.CanMate(&Energy{Value: 80, Age: 10}, 60, 20) {
		t.Error("newborns should not mate")
	}
	o.MatingCooldown = 5
	if o.CanMate(en, 60, 20) {
		t.Error("cooldown should block mating")
	}
}

func TestDead(t *testing.T) {
	if (&Energy{Value: 0.1}).Dead(0) {
		t.Error("positive energy should not be dead")
	}
	if !(&Energy{Value: 0}).Dead(0) {
		t.Error("energy at the threshold counts as dead")
	}
	if !(&Energy{Value: -3}).Dead(0) {
		t.Error("negative energy counts as dead")
	}
}

func TestPlantGrowsOnInterval(t *testing.T) {
	p := &Plant{Energy: 25}

	for i := 0; i < plantGrowInterval-1; i++ {
		p.Update(25)
	}
	if p.Energy != 25 {
		t.Fatalf("plant grew early: %g", p.Energy)
	}

	p.Update(25)
	if p.Energy != 28 {
		t.Errorf("expected energy 28 after first growth, got %g", p.Energy)
	}
}

func TestPlantGrowthCapped(t *testing.T) {
	p := &Plant{Energy: 25}

	// 1.5x base yield is the ceiling; growth stops once reached.
	for i := 0; i < plantGrowInterval*20; i++ {
		p.Update(25)
	}
	if p.Energy > 25*1.5+3 {
		t.Errorf("plant energy %g exceeded growth cap", p.Energy)
	}
	if p.Energy < 25*1.5 {
		t.Errorf("plant energy %g never reached cap region", p.Energy)
	}
}
