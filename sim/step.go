package sim

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/vivarium/components"
	"github.com/pthm-cable/vivarium/genome"
	"github.com/pthm-cable/vivarium/telemetry"
)

// creatureView is one creature's entry in the per-tick snapshot. Component
// pointers stay valid for the whole pass because all structural changes are
// deferred to the apply phase.
type creatureView struct {
	entity ecs.Entity
	pos    *components.Position
	en     *components.Energy
	org    *components.Organism
}

type plantView struct {
	entity ecs.Entity
	pos    *components.Position
	plant  *components.Plant
}

// deathRecord carries a dead creature's final stats out of the snapshot, so
// the removal loop never touches component pointers after the world changed.
type deathRecord struct {
	entity     ecs.Entity
	name       string
	generation int
	age        int32
	children   int
}

// newbornSpec is a pending birth, applied after the decision pass.
type newbornSpec struct {
	genome     genome.Genome
	pos        components.Position
	generation int
	parents    [2]string
}

// Step advances the world by one tick. The tick is atomic from the caller's
// perspective: every creature decides against the same pre-tick snapshot,
// side effects collect into pending lists, and the live sets only change in
// the apply phase at the end.
func (s *Simulator) Step() {
	s.tick++

	// 1. Plants age and regrow; the field is topped up to target.
	pq := s.plantFilter.Query()
	for pq.Next() {
		_, plant := pq.Get()
		plant.Update(s.cfg.Energy.PlantEnergy)
	}
	s.topUpPlants()

	// 2. Snapshot the world.
	var creatures []creatureView
	cq := s.orgFilter.Query()
	for cq.Next() {
		pos, en, org := cq.Get()
		creatures = append(creatures, creatureView{entity: cq.Entity(), pos: pos, en: en, org: org})
	}

	var plants []plantView
	pq = s.plantFilter.Query()
	for pq.Next() {
		pos, plant := pq.Get()
		plants = append(plants, plantView{entity: pq.Entity(), pos: pos, plant: plant})
	}

	// Pending effects, applied after the full pass.
	eaten := make(map[ecs.Entity]bool)
	killed := make(map[ecs.Entity]bool)
	var newborns []newbornSpec

	// 3. Decision pass.
	for i := range creatures {
		c := &creatures[i]
		if killed[c.entity] {
			continue
		}

		c.en.Age++
		c.en.Value -= s.cfg.Energy.IdleCost
		if c.org.MatingCooldown > 0 {
			c.org.MatingCooldown--
		}

		others := make([]*creatureView, 0, len(creatures)-1)
		for j := range creatures {
			if j != i && !killed[creatures[j].entity] {
				others = append(others, &creatures[j])
			}
		}

		if c.en.Value >= s.cfg.Energy.SatiatedThreshold {
			s.actSatiated(c, others, creatures, killed, &newborns)
		} else {
			s.actHungry(c, others, plants, eaten, killed)
		}
	}

	// 4. Apply phase. Structural changes (entity creation and removal)
	// invalidate the snapshot's component pointers, so everything the
	// removals need is copied out by value first.
	var deaths []deathRecord
	for i := range creatures {
		c := &creatures[i]
		if !killed[c.entity] && !c.en.Dead(s.cfg.Energy.DeathThreshold) {
			continue
		}
		deaths = append(deaths, deathRecord{
			entity:     c.entity,
			name:       c.org.Name,
			generation: c.org.Generation,
			age:        c.en.Age,
			children:   c.org.Children,
		})
	}

	for entity := range eaten {
		s.plantMapper.Remove(entity)
	}

	for _, nb := range newborns {
		_, name := s.spawnCreature(nb.genome, nb.pos, nb.generation, nb.parents)
		if nb.generation > s.generationRecord {
			s.generationRecord = nb.generation
		}
		s.record(telemetry.NewBirthEvent(s.tick, name, nb.parents[0], nb.parents[1], nb.generation))
		s.log.Info("birth", "name", name, "parents", nb.parents[0]+"+"+nb.parents[1], "generation", nb.generation)
	}

	for _, d := range deaths {
		s.record(telemetry.NewDeathEvent(s.tick, d.name, d.generation, d.age, d.children))
		s.log.Info("death", "name", d.name, "age", d.age, "generation", d.generation, "children", d.children)
		s.orgMapper.Remove(d.entity)
	}

	// 5. Replacement keeps both populations at target.
	s.topUpPlants()
	s.topUpCreatures()

	// 6. Telemetry window.
	if s.collector != nil && s.collector.ShouldFlush(s.tick) {
		s.flushTelemetry()
	}
}

// actSatiated seeks a mate. Breeding is blocked by the population cap using
// the prospective count of this tick's pending births and kills.
func (s *Simulator) actSatiated(c *creatureView, others []*creatureView, all []creatureView, killed map[ecs.Entity]bool, newborns *[]newbornSpec) {
	canBreed := s.canMate(c) && len(all)+len(*newborns)-len(killed) <= s.cfg.Population.MaxCreatures

	if !canBreed {
		s.wander(c)
		return
	}

	mates := make([]*creatureView, 0, len(others))
	for _, o := range others {
		if s.canMate(o) && o.en.Value >= s.cfg.Energy.SatiatedThreshold {
			mates = append(mates, o)
		}
	}
	if len(mates) == 0 {
		s.wander(c)
		return
	}

	mate, distSq := nearestCreature(*c.pos, mates)
	if math.Sqrt(distSq) < s.cfg.Mating.Range {
		s.reproduce(c, mate, newborns)
	} else {
		s.moveTowards(c, *mate.pos)
	}
}

// actHungry pursues the nearest food: plant or other creature, whichever is
// closer, with ties preferring the plant. Targeting reads the pre-tick
// snapshot, so two creatures can consume the same plant in one tick; the
// eaten set deduplicates the removal.
func (s *Simulator) actHungry(c *creatureView, others []*creatureView, plants []plantView, eaten, killed map[ecs.Entity]bool) {
	plant, plantDistSq := nearestPlant(*c.pos, plants)
	other, otherDistSq := nearestCreature(*c.pos, others)

	targetPlant := plant != nil && plantDistSq <= otherDistSq
	targetCreature := other != nil && !targetPlant

	switch {
	case targetPlant && math.Sqrt(plantDistSq) < s.cfg.Energy.EatRange:
		c.en.Value += plant.plant.Energy
		c.org.Meals++
		eaten[plant.entity] = true
		s.record(telemetry.NewForageEvent(s.tick, c.org.Name, plant.plant.Energy))
		s.log.Info("forage", "name", c.org.Name, "energy", c.en.Value)

	case targetCreature && math.Sqrt(otherDistSq) < s.cfg.Combat.Range:
		s.attack(c, other, killed)

	case targetPlant:
		s.moveTowards(c, *plant.pos)

	case targetCreature:
		s.moveTowards(c, *other.pos)

	default:
		s.wander(c)
	}
}

// attack resolves combat. The attacker pays the cost win or lose. The
// defender rolls with a wider multiplier band than the attacker, so weaker
// defenders can occasionally upset stronger attackers.
func (s *Simulator) attack(c, other *creatureView, killed map[ecs.Entity]bool) {
	c.en.Value -= s.cfg.Combat.AttackCost

	myRoll := c.org.Strength(c.en.Value) * s.uniform(0.8, 1.2)
	theirRoll := other.org.Strength(other.en.Value) * s.uniform(0.6, 1.4)

	if myRoll > theirRoll {
		gained := other.en.Value * s.cfg.Combat.Gain
		c.en.Value += gained
		c.org.Meals++
		killed[other.entity] = true
		s.record(telemetry.NewCombatWinEvent(s.tick, c.org.Name, other.org.Name, gained))
		s.log.Info("combat", "winner", c.org.Name, "victim", other.org.Name, "gained", gained)
	} else {
		s.record(telemetry.NewCombatLossEvent(s.tick, c.org.Name, other.org.Name))
		s.log.Info("combat", "winner", other.org.Name, "attacker", c.org.Name)
	}
}

// reproduce creates a pending newborn. Both parents pay the mating cost and
// enter cooldown; the child genome is crossover plus mutation, its position
// the jittered midpoint of the parents.
func (s *Simulator) reproduce(a, b *creatureView, newborns *[]newbornSpec) {
	a.en.Value -= s.cfg.Mating.Cost
	b.en.Value -= s.cfg.Mating.Cost
	a.org.MatingCooldown = s.cfg.Mating.Cooldown
	b.org.MatingCooldown = s.cfg.Mating.Cooldown
	a.org.Children++
	b.org.Children++

	child := genome.Mutate(s.rng, genome.Crossover(s.rng, a.org.Genome, b.org.Genome), s.bounds)
	gen := a.org.Generation
	if b.org.Generation > gen {
		gen = b.org.Generation
	}

	*newborns = append(*newborns, newbornSpec{
		genome: child,
		pos: components.Position{
			X: (a.pos.X+b.pos.X)/2 + s.uniform(-1, 1),
			Y: (a.pos.Y+b.pos.Y)/2 + s.uniform(-1, 1),
			Z: 1.0,
		},
		generation: gen + 1,
		parents:    [2]string{a.org.Name, b.org.Name},
	})
}

func (s *Simulator) canMate(c *creatureView) bool {
	return c.org.CanMate(c.en, s.cfg.Mating.MinEnergy, s.cfg.Mating.MinAge)
}

// moveTowards displaces a creature toward a target at its genome speed.
// Vertical motion is attenuated to keep movement mostly planar.
func (s *Simulator) moveTowards(c *creatureView, target components.Position) {
	dir := r3.Vec{X: target.X - c.pos.X, Y: target.Y - c.pos.Y, Z: (target.Z - c.pos.Z) * 0.2}

	if r3.Norm(dir) > 0.1 {
		dir = r3.Unit(dir)
		speed := c.org.Genome.Speed
		c.pos.X += dir.X * speed
		c.pos.Y += dir.Y * speed
		c.pos.Z += dir.Z * speed
		c.en.Value -= s.cfg.Energy.MovementCost
	}

	s.clampToWorld(c.pos)
}

// wander moves in a random, almost horizontal direction at half speed and
// half cost.
func (s *Simulator) wander(c *creatureView) {
	dir := r3.Vec{
		X: s.uniform(-1, 1),
		Y: s.uniform(-1, 1),
		Z: s.uniform(-1, 1) * 0.1,
	}

	if r3.Norm(dir) > 0 {
		dir = r3.Unit(dir)
		speed := c.org.Genome.Speed * 0.5
		c.pos.X += dir.X * speed
		c.pos.Y += dir.Y * speed
		c.pos.Z += dir.Z * speed
		c.en.Value -= s.cfg.Energy.MovementCost * 0.5
	}

	s.clampToWorld(c.pos)
}

// clampToWorld keeps a position inside the world footprint and the vertical
// band above the floor.
func (s *Simulator) clampToWorld(pos *components.Position) {
	boundary := s.cfg.World.Size/2 - 2

	if pos.X > boundary {
		pos.X = boundary
	} else if pos.X < -boundary {
		pos.X = -boundary
	}
	if pos.Y > boundary {
		pos.Y = boundary
	} else if pos.Y < -boundary {
		pos.Y = -boundary
	}

	if pos.Z < 0.5 {
		pos.Z = 0.5
	} else if pos.Z > 3 {
		pos.Z = 3
	}
}

// distSq is the squared distance between two positions; comparisons never
// need the square root.
func distSq(a, b components.Position) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return dx*dx + dy*dy + dz*dz
}

// nearestPlant returns the closest plant and its squared distance, or nil
// and +Inf when there are none, so comparisons always prefer a real target.
func nearestPlant(from components.Position, plants []plantView) (*plantView, float64) {
	var nearest *plantView
	min := math.Inf(1)
	for i := range plants {
		if d := distSq(from, *plants[i].pos); d < min {
			min = d
			nearest = &plants[i]
		}
	}
	return nearest, min
}

// nearestCreature returns the closest creature and its squared distance, or
// nil and +Inf when there are none.
func nearestCreature(from components.Position, candidates []*creatureView) (*creatureView, float64) {
	var nearest *creatureView
	min := math.Inf(1)
	for _, c := range candidates {
		if d := distSq(from, *c.pos); d < min {
			min = d
			nearest = c
		}
	}
	return nearest, min
}

// flushTelemetry closes the current stats window and writes it out.
func (s *Simulator) flushTelemetry() {
	pop := telemetry.Population{GenerationRecord: s.generationRecord}

	q := s.orgFilter.Query()
	for q.Next() {
		_, en, org := q.Get()
		pop.Creatures++
		pop.Energies = append(pop.Energies, en.Value)
		pop.Generations = append(pop.Generations, float64(org.Generation))
	}
	pq := s.plantFilter.Query()
	for pq.Next() {
		pop.Plants++
	}

	stats := s.collector.Flush(s.tick, pop)
	s.log.Info("population",
		"tick", s.tick,
		"creatures", stats.Creatures,
		"plants", stats.Plants,
		"energy_mean", stats.EnergyMean,
		"generation_record", stats.GenerationRecord,
	)

	if err := s.output.WriteStats(stats); err != nil {
		s.log.Error("writing stats", "error", err)
	}
	if err := s.output.WriteEvents(s.collector.DrainEvents()); err != nil {
		s.log.Error("writing events", "error", err)
	}
}
