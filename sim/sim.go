// Package sim implements the discrete-time ecosystem simulator: creature
// behavior, combat, mating, plant foraging and population regulation. The
// simulator is single-threaded and turn-based; one Step is one tick, driven
// by an external scheduler.
package sim

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/vivarium/components"
	"github.com/pthm-cable/vivarium/config"
	"github.com/pthm-cable/vivarium/genome"
	"github.com/pthm-cable/vivarium/telemetry"
)

// Options configures a simulator instance.
type Options struct {
	Seed      int64
	Collector *telemetry.Collector
	Output    *telemetry.OutputManager
	Logger    *slog.Logger
}

// Simulator owns the live sets of creatures and plants and advances them one
// tick at a time. All entity collections are owned exclusively by the
// simulator; creatures and plants never reach into each other directly.
type Simulator struct {
	world *ecs.World
	rng   *rand.Rand
	cfg   *config.Config
	log   *slog.Logger

	orgMapper   *ecs.Map3[components.Position, components.Energy, components.Organism]
	orgFilter   *ecs.Filter3[components.Position, components.Energy, components.Organism]
	plantMapper *ecs.Map2[components.Position, components.Plant]
	plantFilter *ecs.Filter2[components.Position, components.Plant]

	collector *telemetry.Collector
	output    *telemetry.OutputManager

	bounds           genome.Bounds
	tick             int32
	nextID           uint32
	generationRecord int
	lastExport       time.Time
}

// New creates a simulator, validates the configuration and seeds the initial
// population: generation-1 creatures with random genomes plus the plant
// field.
func New(cfg *config.Config, opts Options) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	world := ecs.NewWorld()
	s := &Simulator{
		world: world,
		rng:   rand.New(rand.NewSource(opts.Seed)),
		cfg:   cfg,
		log:   logger,

		orgMapper:   ecs.NewMap3[components.Position, components.Energy, components.Organism](world),
		orgFilter:   ecs.NewFilter3[components.Position, components.Energy, components.Organism](world),
		plantMapper: ecs.NewMap2[components.Position, components.Plant](world),
		plantFilter: ecs.NewFilter2[components.Position, components.Plant](world),

		collector: opts.Collector,
		output:    opts.Output,

		bounds: genome.Bounds{
			MutationRate:     cfg.Mutation.Rate,
			MutationStrength: cfg.Mutation.Strength,
			MinFractalLevels: cfg.Fractal.MinLevels,
			MaxFractalLevels: cfg.Fractal.MaxLevels,
			MinChildren:      cfg.Fractal.MinChildren,
			MaxChildren:      cfg.Fractal.MaxChildren,
		},
		generationRecord: 1,
	}

	s.topUpPlants()
	s.topUpCreatures()

	return s, nil
}

// Tick returns the number of completed ticks.
func (s *Simulator) Tick() int32 { return s.tick }

// GenerationRecord returns the highest generation number ever observed.
func (s *Simulator) GenerationRecord() int { return s.generationRecord }

// Counts returns the number of live creatures and plants.
func (s *Simulator) Counts() (creatures, plants int) {
	q := s.orgFilter.Query()
	for q.Next() {
		creatures++
	}
	p := s.plantFilter.Query()
	for p.Next() {
		plants++
	}
	return creatures, plants
}

// spawnCreature creates a creature entity and returns it with its name.
func (s *Simulator) spawnCreature(g genome.Genome, pos components.Position, generation int, parents [2]string) (ecs.Entity, string) {
	s.nextID++
	org := components.Organism{
		ID:         s.nextID,
		Name:       randomName(s.rng),
		Genome:     g,
		Generation: generation,
		Parents:    parents,
	}
	en := components.Energy{Value: s.cfg.Energy.Start}

	entity := s.orgMapper.NewEntity(&pos, &en, &org)
	return entity, org.Name
}

// randomCreaturePos samples a spawn position with a margin inside the world
// footprint, slightly above the floor.
func (s *Simulator) randomCreaturePos() components.Position {
	half := s.cfg.World.Size / 2
	return components.Position{
		X: s.uniform(-half+3, half-3),
		Y: s.uniform(-half+3, half-3),
		Z: 1.0,
	}
}

// topUpCreatures refills the population with fresh random creatures. This is
// what prevents total extinction and keeps the simulation running
// indefinitely.
func (s *Simulator) topUpCreatures() {
	count, _ := s.Counts()
	for count < s.cfg.Population.MaxCreatures {
		g := genome.Random(s.rng, s.bounds)
		_, name := s.spawnCreature(g, s.randomCreaturePos(), 1, [2]string{})
		count++

		s.record(telemetry.NewSpawnEvent(s.tick, name, 1))
		s.log.Info("spawn", "name", name, "fractal_levels", g.FractalLevels, "fractal_children", g.FractalChildren)
	}
}

// topUpPlants refills the plant field to its target count.
func (s *Simulator) topUpPlants() {
	_, count := s.Counts()
	half := s.cfg.World.Size / 2
	for count < s.cfg.Population.MaxPlants {
		pos := components.Position{
			X: s.uniform(-half+2, half-2),
			Y: s.uniform(-half+2, half-2),
			Z: 0.3,
		}
		plant := components.Plant{Energy: s.cfg.Energy.PlantEnergy}
		s.plantMapper.NewEntity(&pos, &plant)
		count++
	}
}

// record forwards an event to the collector, if any.
func (s *Simulator) record(e telemetry.Event) {
	if s.collector != nil {
		s.collector.Record(e)
	}
}

func (s *Simulator) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

// ChampionInfo describes the current best creature: the one maximizing
// 10*generation + energy.
type ChampionInfo struct {
	Name       string
	Generation int
	Energy     float64
	Genome     genome.Genome
}

// Champion returns the current champion, or false if no creatures are alive.
func (s *Simulator) Champion() (ChampionInfo, bool) {
	var best ChampionInfo
	bestScore := 0.0
	found := false

	q := s.orgFilter.Query()
	for q.Next() {
		_, en, org := q.Get()
		score := 10*float64(org.Generation) + en.Value
		if !found || score > bestScore {
			best = ChampionInfo{
				Name:       org.Name,
				Generation: org.Generation,
				Energy:     en.Value,
				Genome:     org.Genome,
			}
			bestScore = score
			found = true
		}
	}

	return best, found
}

// ExportDue reports whether the export interval has elapsed. The zero mark
// makes the first export due immediately. The simulator only decides
// eligibility; the export itself is performed by the host, which
// acknowledges with MarkExported.
func (s *Simulator) ExportDue(now time.Time) bool {
	return now.Sub(s.lastExport).Seconds() > s.cfg.Export.Interval
}

// MarkExported records the time of the last completed export.
func (s *Simulator) MarkExported(now time.Time) {
	s.lastExport = now
}
