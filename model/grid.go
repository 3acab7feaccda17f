package model

import (
	"encoding/json"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/sheikhrachel/go-gol-engine/rules"
)

// Grid is a fixed-size rows x cols board of cells. A Grid handed out by this
// package is never mutated afterwards, so it can be shared between the
// simulation and any number of readers as a snapshot.
type Grid struct {
	rows  int
	cols  int
	cells [][]bool
}

// RandomSource yields floats in [0, 1). *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	Float64() float64
}

// NewGrid creates an all-dead grid with the specified dimensions
func NewGrid(rows, cols int) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errors.Wrapf(ErrInvalidDimension, "[NewGrid] rows=%d cols=%d", rows, cols)
	}
	return newGrid(rows, cols), nil
}

func newGrid(rows, cols int) *Grid {
	cells := make([][]bool, rows)
	for i := range cells {
		cells[i] = make([]bool, cols)
	}
	return &Grid{
		rows:  rows,
		cols:  cols,
		cells: cells,
	}
}

// FromRows copies a rectangular boolean matrix into a new Grid
func FromRows(src [][]bool) (*Grid, error) {
	if len(src) == 0 || len(src[0]) == 0 {
		return nil, errors.Wrap(ErrInvalidDimension, "[FromRows] empty matrix")
	}

	g := newGrid(len(src), len(src[0]))
	for r, row := range src {
		if len(row) != g.cols {
			return nil, errors.Wrapf(ErrDimensionMismatch, "[FromRows] row %d has %d cells, want %d", r, len(row), g.cols)
		}
		copy(g.cells[r], row)
	}
	return g, nil
}

// RandomGrid builds a grid where each cell is independently alive with
// probability density.
func RandomGrid(rows, cols int, density float64, src RandomSource) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errors.Wrapf(ErrInvalidDimension, "[RandomGrid] rows=%d cols=%d", rows, cols)
	}
	// NaN fails both comparisons, so test for the valid range instead.
	if !(density >= 0 && density <= 1) {
		return nil, errors.Wrapf(ErrInvalidDensity, "[RandomGrid] density=%v", density)
	}

	g := newGrid(rows, cols)
	for r := range rows {
		for c := range cols {
			g.cells[r][c] = src.Float64() < density
		}
	}
	return g, nil
}

// Rows returns the number of rows in the grid
func (g *Grid) Rows() int {
	return g.rows
}

// Cols returns the number of columns in the grid
func (g *Grid) Cols() int {
	return g.cols
}

// Get returns the state of a cell; positions off the board are dead
func (g *Grid) Get(row, col int) bool {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		return false
	}
	return g.cells[row][col]
}

// ToRows returns a copy of the cells as a row-major matrix
func (g *Grid) ToRows() [][]bool {
	out := make([][]bool, len(g.cells))
	for r, row := range g.cells {
		out[r] = append([]bool(nil), row...)
	}
	return out
}

// Validate checks that the grid is rows x cols with no ragged rows
func (g *Grid) Validate() error {
	if g == nil {
		return errors.Wrap(ErrDimensionMismatch, "[Validate] nil grid")
	}
	if g.rows <= 0 || g.cols <= 0 {
		return errors.Wrapf(ErrInvalidDimension, "[Validate] rows=%d cols=%d", g.rows, g.cols)
	}
	if len(g.cells) != g.rows {
		return errors.Wrapf(ErrDimensionMismatch, "[Validate] have %d rows, want %d", len(g.cells), g.rows)
	}
	for r, row := range g.cells {
		if len(row) != g.cols {
			return errors.Wrapf(ErrDimensionMismatch, "[Validate] row %d has %d cells, want %d", r, len(row), g.cols)
		}
	}
	return nil
}

// Equal reports whether both grids have the same dimensions and cells
func (g *Grid) Equal(other *Grid) bool {
	if g == nil || other == nil {
		return g == other
	}
	if g.rows != other.rows || g.cols != other.cols {
		return false
	}
	for r := range g.rows {
		for c := range g.cols {
			if g.cells[r][c] != other.cells[r][c] {
				return false
			}
		}
	}
	return true
}

// CountNeighbors counts the living cells in the Moore neighborhood of
// (row, col). The board does not wrap: positions off the edge count as dead.
func (g *Grid) CountNeighbors(row, col int) (int, error) {
	if err := g.Validate(); err != nil {
		return 0, errors.Wrap(err, "[CountNeighbors] invalid grid")
	}
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		return 0, errors.Wrapf(ErrOutOfBounds, "[CountNeighbors] (%d,%d) on %dx%d grid", row, col, g.rows, g.cols)
	}
	return g.countNeighbors(row, col), nil
}

// countNeighbors counts living neighbors with the window clamped to the board
func (g *Grid) countNeighbors(row, col int) int {
	count := 0

	minRow := max(0, row-1)
	maxRow := min(g.rows-1, row+1)
	minCol := max(0, col-1)
	maxCol := min(g.cols-1, col+1)

	for r := minRow; r <= maxRow; r++ {
		for c := minCol; c <= maxCol; c++ {
			if r == row && c == col {
				continue // Skip the cell itself
			}
			if g.cells[r][c] {
				count++
			}
		}
	}

	return count
}

// NextGeneration calculates the next generation into a new grid, splitting
// rows across workers. Every cell is evaluated against g only, so no update
// observes a neighbor already advanced in the same pass. workers <= 0 uses
// one worker per CPU.
func (g *Grid) NextGeneration(workers int) (*Grid, error) {
	if err := g.Validate(); err != nil {
		return nil, errors.Wrap(err, "[NextGeneration] invalid grid")
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var (
		next          = newGrid(g.rows, g.cols)
		eg            errgroup.Group
		rowsPerWorker = (g.rows + workers - 1) / workers // Ceiling division
	)

	for i := range workers {
		var (
			startRow = i * rowsPerWorker
			endRow   = min(startRow+rowsPerWorker, g.rows)
		)
		if startRow >= g.rows {
			break
		}

		eg.Go(func() error {
			for r := startRow; r < endRow; r++ {
				for c := range g.cols {
					next.cells[r][c] = rules.ApplyConwayRules(g.countNeighbors(r, c), g.cells[r][c])
				}
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, errors.Wrap(err, "[NextGeneration] worker failed")
	}

	return next, nil
}

// CountLivingCells returns the total number of living cells
func (g *Grid) CountLivingCells() (count int) {
	for r := range g.rows {
		for c := range g.cols {
			if g.cells[r][c] {
				count++
			}
		}
	}
	return
}

// String renders the grid as rows of '#' (alive) and '.' (dead)
func (g *Grid) String() string {
	var b strings.Builder
	b.Grow(g.rows * (g.cols + 1))
	for _, row := range g.cells {
		for _, alive := range row {
			if alive {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// MarshalJSON encodes the grid as an array of boolean rows
func (g *Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.cells)
}

// UnmarshalJSON decodes a rectangular matrix of booleans or 0/1 values
func (g *Grid) UnmarshalJSON(data []byte) error {
	var m Matrix
	if err := json.Unmarshal(data, &m); err != nil {
		return errors.Wrap(err, "[Grid.UnmarshalJSON] failed to decode matrix")
	}

	decoded, err := FromRows(m)
	if err != nil {
		return errors.Wrap(err, "[Grid.UnmarshalJSON] invalid matrix")
	}

	*g = *decoded
	return nil
}
