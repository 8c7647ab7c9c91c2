package main

import (
	"bytes"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pthm-cable/vivarium/config"
	"github.com/pthm-cable/vivarium/geometry"
	"github.com/pthm-cable/vivarium/sim"
	"github.com/pthm-cable/vivarium/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	exportDir := flag.String("export-dir", "", "Directory for champion STL exports (empty = no exports)")
	fast := flag.Bool("fast", false, "Run ticks back to back instead of at the configured interval")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	var output *telemetry.OutputManager
	if *outputDir != "" {
		var err error
		output, err = telemetry.NewOutputManager(*outputDir)
		if err != nil {
			slog.Error("failed to create output directory", "error", err)
			os.Exit(1)
		}
		defer output.Close()

		if err := output.WriteConfig(cfg); err != nil {
			slog.Error("failed to snapshot config", "error", err)
			os.Exit(1)
		}
	}

	// CLI flag wins over the config's export dir.
	champDir := *exportDir
	if champDir == "" {
		champDir = cfg.Export.Dir
	}
	if champDir != "" {
		if err := os.MkdirAll(champDir, 0755); err != nil {
			slog.Error("failed to create export directory", "error", err)
			os.Exit(1)
		}
	}

	collector := telemetry.NewCollector(cfg.Telemetry.StatsWindow)

	s, err := sim.New(cfg, sim.Options{
		Seed:      rngSeed,
		Collector: collector,
		Output:    output,
		Logger:    logger,
	})
	if err != nil {
		slog.Error("failed to create simulator", "error", err)
		os.Exit(1)
	}

	slog.Info("starting simulation",
		"seed", rngSeed,
		"max_ticks", *maxTicks,
		"creatures", cfg.Population.MaxCreatures,
		"plants", cfg.Population.MaxPlants,
		"tick_interval", cfg.Tick.Interval,
	)

	builder := geometry.NewBuilder(rand.New(rand.NewSource(rngSeed)))

	interval := time.Duration(cfg.Tick.Interval * float64(time.Second))
	var ticker *time.Ticker
	if !*fast {
		ticker = time.NewTicker(interval)
		defer ticker.Stop()
	}

	for {
		if ticker != nil {
			<-ticker.C
		}

		s.Step()

		if champDir != "" && s.ExportDue(time.Now()) {
			if err := exportChampion(s, builder, cfg, champDir); err != nil {
				slog.Error("champion export failed", "error", err)
			}
			s.MarkExported(time.Now())
		}

		if *maxTicks > 0 && int(s.Tick()) >= *maxTicks {
			slog.Info("max ticks reached", "tick", s.Tick())
			return
		}
	}
}

// exportChampion writes the current fittest creature's body as binary STL.
func exportChampion(s *sim.Simulator, builder *geometry.Builder, cfg *config.Config, dir string) error {
	champ, ok := s.Champion()
	if !ok {
		return nil
	}

	mesh := builder.Build(&champ.Genome, cfg.Mesh.Resolution)

	var buf bytes.Buffer
	if err := geometry.WriteSTL(&buf, mesh); err != nil {
		return fmt.Errorf("encoding STL: %w", err)
	}

	name := fmt.Sprintf("%s_gen%d_%s.stl",
		strings.ToLower(champ.Name),
		champ.Generation,
		time.Now().Format("20060102-150405"),
	)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	slog.Info("champion exported",
		"name", champ.Name,
		"generation", champ.Generation,
		"energy", champ.Energy,
		"vertices", mesh.VertexCount(),
		"quads", mesh.QuadCount(),
		"size", humanize.Bytes(uint64(buf.Len())),
		"file", path,
	)
	return nil
}
