package telemetry

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Population is a point-in-time sample of the live world, taken by the
// simulator when a window closes.
type Population struct {
	Creatures        int
	Plants           int
	Energies         []float64
	Generations      []float64
	GenerationRecord int
}

// WindowStats holds aggregated statistics for one tick window.
type WindowStats struct {
	WindowStartTick int32 `csv:"-"`
	WindowEndTick   int32 `csv:"window_end"`

	// Population counts at window end
	Creatures int `csv:"creatures"`
	Plants    int `csv:"plants"`

	// Events during the window
	Spawns  int `csv:"spawns"`
	Forages int `csv:"forages"`
	Attacks int `csv:"attacks"`
	Kills   int `csv:"kills"`
	Births  int `csv:"births"`
	Deaths  int `csv:"deaths"`

	// Energy distribution (sampled at window end)
	EnergyMean float64 `csv:"energy_mean"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`

	// Evolution progress
	GenerationMean   float64 `csv:"generation_mean"`
	GenerationRecord int     `csv:"generation_record"`
}

// NewWindowStats computes the distribution figures for a closing window.
func NewWindowStats(start, end int32, pop Population) WindowStats {
	s := WindowStats{
		WindowStartTick:  start,
		WindowEndTick:    end,
		Creatures:        pop.Creatures,
		Plants:           pop.Plants,
		GenerationRecord: pop.GenerationRecord,
	}

	if len(pop.Energies) > 0 {
		energies := append([]float64(nil), pop.Energies...)
		sort.Float64s(energies)
		s.EnergyMean = stat.Mean(energies, nil)
		s.EnergyP10 = stat.Quantile(0.1, stat.Empirical, energies, nil)
		s.EnergyP50 = stat.Quantile(0.5, stat.Empirical, energies, nil)
		s.EnergyP90 = stat.Quantile(0.9, stat.Empirical, energies, nil)
	}
	if len(pop.Generations) > 0 {
		s.GenerationMean = stat.Mean(pop.Generations, nil)
	}

	return s
}
