// Package components defines the ECS components for simulation entities.
// Components are plain data; behavior lives in the sim package.
package components

import "github.com/pthm-cable/vivarium/genome"

// Position is a location in world space. x/y span the world footprint,
// z is a thin band above the ground plane.
type Position struct {
	X, Y, Z float64
}

// Energy holds an entity's energy level and age in ticks. Energy can go
// negative transiently within a tick; death is processed at tick end.
type Energy struct {
	Value float64
	Age   int32
}

// Dead reports whether the energy level is at or below the death threshold.
func (e *Energy) Dead(threshold float64) bool {
	return e.Value <= threshold
}

// Organism is a creature's identity, genome and lineage.
type Organism struct {
	ID         uint32
	Name       string
	Genome     genome.Genome
	Generation int
	Parents    [2]string
	Children   int
	Meals      int

	// MatingCooldown counts down to zero after reproduction.
	MatingCooldown int
}

// Strength is the combat score: energy plus a bonus for body complexity.
func (o *Organism) Strength(energy float64) float64 {
	return 0.5*energy + 5*float64(o.Genome.FractalLevels) + 2*float64(o.Genome.FractalChildren)
}

// CanMate reports mating eligibility: enough energy, off cooldown, not a
// newborn.
func (o *Organism) CanMate(en *Energy, minEnergy float64, minAge int) bool {
	return en.Value >= minEnergy && o.MatingCooldown == 0 && int(en.Age) > minAge
}

// Plant is a regenerating food source.
type Plant struct {
	Energy float64
	Age    int32
}

// plantGrowInterval is how often an uneaten plant gains energy.
const plantGrowInterval = 30

// Update ages the plant. Older plants are worth more, up to 1.5x the base
// yield, so long-lived plants are worth keeping around.
func (p *Plant) Update(baseYield float64) {
	p.Age++
	if p.Age%plantGrowInterval == 0 && p.Energy < baseYield*1.5 {
		p.Energy += 3
	}
}
