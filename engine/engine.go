// Package engine owns the live Game of Life board: it builds random boards,
// advances generations and stamps patterns, publishing each result as an
// immutable Snapshot. It knows nothing about scheduling.
package engine

import (
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol-engine/model"
)

// Params are the construction parameters; Reset reuses them.
type Params struct {
	Rows    int
	Cols    int
	Density float64
	// Workers bounds row-band parallelism in NextGeneration; 0 means NumCPU.
	Workers int
	// Source drives cell randomization. Nil uses NewSource(0).
	Source model.RandomSource
}

// Snapshot is one published generation of the board
type Snapshot struct {
	Generation uint64
	Grid       *model.Grid
}

// GridEngine holds the current generation of a fixed-size board
type GridEngine struct {
	params Params
	logger *log.Logger

	// mu serializes writers and guards the random source, which is not
	// safe for concurrent use. Readers go through current without locking.
	mu      sync.Mutex
	source  model.RandomSource
	current atomic.Pointer[Snapshot]
}

// New validates params and builds an engine holding a freshly randomized board
func New(params Params, logger *log.Logger) (*GridEngine, error) {
	if logger == nil {
		logger = log.Default()
	}
	source := params.Source
	if source == nil {
		source = NewSource(0)
	}

	e := &GridEngine{
		params: params,
		logger: logger,
		source: source,
	}
	if _, err := e.Reset(); err != nil {
		return nil, errors.Wrap(err, "[New] failed to build initial grid")
	}
	return e, nil
}

// Initialize produces a new random grid using the engine's source. It does
// not touch the current board; Reset does.
func (e *GridEngine) Initialize(rows, cols int, density float64) (*model.Grid, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return model.RandomGrid(rows, cols, density, e.source)
}

// CountNeighbors counts the living Moore neighbors of (row, col) in grid
func (e *GridEngine) CountNeighbors(grid *model.Grid, row, col int) (int, error) {
	return grid.CountNeighbors(row, col)
}

// NextGeneration computes the generation after grid without mutating it
func (e *GridEngine) NextGeneration(grid *model.Grid) (*model.Grid, error) {
	return grid.NextGeneration(e.params.Workers)
}

// ApplyPattern stamps pattern onto a cleared copy of base's dimensions
func (e *GridEngine) ApplyPattern(base *model.Grid, pattern model.Matrix) (*model.Grid, error) {
	return model.ApplyPattern(base, pattern)
}

// Advance replaces the current board with its next generation
func (e *GridEngine) Advance() (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur := e.current.Load()
	next, err := cur.Grid.NextGeneration(e.params.Workers)
	if err != nil {
		return Snapshot{}, errors.Wrapf(err, "[Advance] failed at generation: %+v", cur.Generation)
	}

	snap := &Snapshot{Generation: cur.Generation + 1, Grid: next}
	e.current.Store(snap)
	return *snap, nil
}

// CurrentGrid returns the latest board. The result must be treated as read-only.
func (e *GridEngine) CurrentGrid() *model.Grid {
	return e.current.Load().Grid
}

// Snapshot returns the latest board together with its generation number
func (e *GridEngine) Snapshot() Snapshot {
	return *e.current.Load()
}

// Reset discards the current board and randomizes a new one from the
// construction parameters. The generation counter restarts at zero.
func (e *GridEngine) Reset() (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	grid, err := model.RandomGrid(e.params.Rows, e.params.Cols, e.params.Density, e.source)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "[Reset] failed to randomize grid")
	}

	snap := &Snapshot{Grid: grid}
	e.current.Store(snap)
	e.logger.Debug("grid reset", "rows", grid.Rows(), "cols", grid.Cols(), "population", grid.CountLivingCells())
	return *snap, nil
}

// LoadPattern replaces the current board with pattern stamped onto a cleared
// board of the same size. The generation counter restarts at zero.
func (e *GridEngine) LoadPattern(pattern model.Pattern) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	grid, err := model.ApplyPattern(e.current.Load().Grid, pattern.Grid)
	if err != nil {
		return Snapshot{}, errors.Wrapf(err, "[LoadPattern] failed to apply pattern: %+v", pattern.Name)
	}

	snap := &Snapshot{Grid: grid}
	e.current.Store(snap)
	e.logger.Debug("pattern loaded", "name", pattern.Name, "population", grid.CountLivingCells())
	return *snap, nil
}
