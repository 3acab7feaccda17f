package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol-engine/engine"
	"github.com/sheikhrachel/go-gol-engine/model"
	"github.com/sheikhrachel/go-gol-engine/patterns"
	"github.com/sheikhrachel/go-gol-engine/scheduler"
	"github.com/sheikhrachel/go-gol-engine/utils"
)

// game bundles the wired components of one simulation session
type game struct {
	engine    *engine.GridEngine
	scheduler *scheduler.TickScheduler
	catalog   patterns.Catalog
	stats     *utils.Stats
}

// initializeGame sets up the initial game state
func initializeGame(config utils.Config, logger *log.Logger) (*game, error) {
	eng, err := engine.New(engine.Params{
		Rows:    config.Rows,
		Cols:    config.Cols,
		Density: config.Density,
		Workers: config.Workers,
		Source:  engine.NewSource(config.Seed),
	}, logger.WithPrefix("engine"))
	if err != nil {
		return nil, errors.Wrap(err, "[initializeGame] failed to create engine")
	}

	sched, err := scheduler.New(eng, scheduler.Config{
		TickInterval: time.Duration(config.TickInterval),
	}, logger.WithPrefix("scheduler"))
	if err != nil {
		return nil, errors.Wrap(err, "[initializeGame] failed to create scheduler")
	}

	catalog, err := newCatalog(config)
	if err != nil {
		return nil, errors.Wrap(err, "[initializeGame] failed to create pattern catalog")
	}

	return &game{
		engine:    eng,
		scheduler: sched,
		catalog:   catalog,
		stats:     utils.NewStats(),
	}, nil
}

// newCatalog uses the remote pattern service when configured and an
// in-memory catalog of classic patterns otherwise
func newCatalog(config utils.Config) (patterns.Catalog, error) {
	if config.PatternServiceURL == "" {
		return patterns.NewMemoryCatalog(patterns.Builtin()...), nil
	}
	return patterns.NewClient(config.PatternServiceURL, nil)
}

// displayGameInfo shows the initial game information
func displayGameInfo(w io.Writer, config utils.Config, grid *model.Grid) {
	fmt.Fprintf(w, "Grid: %dx%d | Density: %.2f | Tick: %v\n",
		grid.Rows(), grid.Cols(), config.Density, time.Duration(config.TickInterval))
	fmt.Fprintf(w, "Initial living cells: %d\n", grid.CountLivingCells())
	if config.ListenAddr != "" {
		fmt.Fprintf(w, "Websocket: ws://%s/ws\n", config.ListenAddr)
	}
	fmt.Fprintln(w, "Press Ctrl+C to exit gracefully")
	fmt.Fprintln(w)
}

// displayGameStatus shows the current game status
func displayGameStatus(w io.Writer, u scheduler.Update, stats utils.StatsSnapshot) {
	living := u.Grid.CountLivingCells()
	density := float64(living) / float64(u.Grid.Rows()*u.Grid.Cols()) * 100

	status := "Active"
	if living == 0 {
		status = "Extinct"
	}

	fmt.Fprintf(w, "Gen: %d | Living: %d | Density: %.1f%% | State: %s | Status: %s\n",
		u.Generation, living, density, u.State, status)
	fmt.Fprintf(w, "Performance: %.1f gen/sec | Avg Pop: %.1f | Runtime: %.1fs\n",
		stats.GenerationsPerSecond, stats.AveragePopulation, stats.Runtime.Seconds())
	fmt.Fprintln(w)
}

// renderObserver redraws the terminal after every update
func renderObserver(w io.Writer, stats *utils.Stats, logger *log.Logger) scheduler.Observer {
	renderer := &model.TerminalRenderer{Out: w}
	return func(u scheduler.Update) {
		if err := renderer.Clear(); err != nil {
			logger.Warn("render failed", "err", err)
			return
		}
		displayGameStatus(w, u, stats.Snapshot())
		if err := renderer.Display(u.Grid); err != nil {
			logger.Warn("render failed", "err", err)
		}
	}
}

// limitObserver signals reached once the configured generation is hit
func limitObserver(maxGenerations uint64, reached chan<- struct{}) scheduler.Observer {
	return func(u scheduler.Update) {
		if maxGenerations == 0 || u.Generation < maxGenerations {
			return
		}
		select {
		case reached <- struct{}{}:
		default:
		}
	}
}
