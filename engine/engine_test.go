package engine

import (
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol-engine/model"
)

const (
	T = true
	F = false
)

func newTestEngine(t *testing.T, params Params) *GridEngine {
	t.Helper()
	e, err := New(params, log.New(io.Discard))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func mustGrid(t *testing.T, rows [][]bool) *model.Grid {
	t.Helper()
	g, err := model.FromRows(rows)
	if err != nil {
		t.Fatalf("FromRows: %v", err)
	}
	return g
}

func TestNewRejectsInvalidParams(t *testing.T) {
	cases := []struct {
		params Params
		want   error
	}{
		{Params{Rows: 0, Cols: 3, Density: 0.5}, model.ErrInvalidDimension},
		{Params{Rows: 3, Cols: -1, Density: 0.5}, model.ErrInvalidDimension},
		{Params{Rows: 3, Cols: 3, Density: 1.01}, model.ErrInvalidDensity},
		{Params{Rows: 3, Cols: 3, Density: -0.01}, model.ErrInvalidDensity},
	}
	for _, tc := range cases {
		if _, err := New(tc.params, log.New(io.Discard)); !errors.Is(err, tc.want) {
			t.Fatalf("New(%+v) err=%v, want %v", tc.params, err, tc.want)
		}
	}
}

func TestInitializeDensityExtremes(t *testing.T) {
	e := newTestEngine(t, Params{Rows: 4, Cols: 4, Density: 0.5, Source: NewSource(1)})

	for _, size := range []struct{ rows, cols int }{{1, 1}, {4, 7}, {10, 3}} {
		dead, err := e.Initialize(size.rows, size.cols, 0)
		if err != nil {
			t.Fatalf("Initialize density 0: %v", err)
		}
		if dead.CountLivingCells() != 0 {
			t.Fatalf("density 0 produced %d living cells", dead.CountLivingCells())
		}

		alive, err := e.Initialize(size.rows, size.cols, 1)
		if err != nil {
			t.Fatalf("Initialize density 1: %v", err)
		}
		if alive.CountLivingCells() != size.rows*size.cols {
			t.Fatalf("density 1 produced %d of %d living cells", alive.CountLivingCells(), size.rows*size.cols)
		}
	}
}

func TestSeededEnginesAreReproducible(t *testing.T) {
	a := newTestEngine(t, Params{Rows: 12, Cols: 9, Density: 0.3, Source: NewSource(42)})
	b := newTestEngine(t, Params{Rows: 12, Cols: 9, Density: 0.3, Source: NewSource(42)})

	if !a.CurrentGrid().Equal(b.CurrentGrid()) {
		t.Fatalf("same seed produced different boards")
	}

	for range 5 {
		sa, err := a.Advance()
		if err != nil {
			t.Fatalf("Advance: %v", err)
		}
		sb, err := b.Advance()
		if err != nil {
			t.Fatalf("Advance: %v", err)
		}
		if !sa.Grid.Equal(sb.Grid) {
			t.Fatalf("boards diverged at generation %d", sa.Generation)
		}
	}
}

func TestCountNeighborsDelegates(t *testing.T) {
	e := newTestEngine(t, Params{Rows: 3, Cols: 3, Density: 0})
	g := mustGrid(t, [][]bool{
		{T, F, F},
		{F, T, F},
		{F, F, T},
	})

	got, err := e.CountNeighbors(g, 1, 1)
	if err != nil {
		t.Fatalf("CountNeighbors: %v", err)
	}
	if got != 2 {
		t.Fatalf("CountNeighbors(1,1)=%d, want 2", got)
	}
}

func TestNextGenerationDoesNotMutateInput(t *testing.T) {
	e := newTestEngine(t, Params{Rows: 3, Cols: 3, Density: 0, Workers: 2})
	blinker := mustGrid(t, [][]bool{
		{F, T, F},
		{F, T, F},
		{F, T, F},
	})
	before := blinker.ToRows()

	next, err := e.NextGeneration(blinker)
	if err != nil {
		t.Fatalf("NextGeneration: %v", err)
	}
	want := mustGrid(t, [][]bool{
		{F, F, F},
		{T, T, T},
		{F, F, F},
	})
	if !next.Equal(want) {
		t.Fatalf("got:\n%s", next)
	}
	if !blinker.Equal(mustGrid(t, before)) {
		t.Fatalf("input grid changed")
	}
}

func TestAdvancePublishesNewSnapshot(t *testing.T) {
	e := newTestEngine(t, Params{Rows: 3, Cols: 3, Density: 0})
	snap, err := e.LoadPattern(model.Pattern{Name: "blinker", Grid: model.Matrix{
		{F, T, F},
		{F, T, F},
		{F, T, F},
	}})
	if err != nil {
		t.Fatalf("LoadPattern: %v", err)
	}
	if snap.Generation != 0 {
		t.Fatalf("generation %d after load, want 0", snap.Generation)
	}
	previous := e.CurrentGrid()

	first, err := e.Advance()
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if first.Generation != 1 {
		t.Fatalf("generation %d, want 1", first.Generation)
	}
	if e.CurrentGrid() != first.Grid {
		t.Fatalf("CurrentGrid does not reflect the advanced snapshot")
	}
	if e.Snapshot().Generation != 1 {
		t.Fatalf("Snapshot generation %d, want 1", e.Snapshot().Generation)
	}
	if previous.Equal(first.Grid) {
		t.Fatalf("previous snapshot was modified in place")
	}

	second, err := e.Advance()
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if !second.Grid.Equal(previous) {
		t.Fatalf("blinker did not return to its first phase")
	}
}

func TestResetDiscardsPatternAndGeneration(t *testing.T) {
	e := newTestEngine(t, Params{Rows: 5, Cols: 5, Density: 1})
	if _, err := e.LoadPattern(model.Pattern{Grid: model.Matrix{{T}}}); err != nil {
		t.Fatalf("LoadPattern: %v", err)
	}
	if _, err := e.Advance(); err != nil {
		t.Fatalf("Advance: %v", err)
	}

	snap, err := e.Reset()
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if snap.Generation != 0 {
		t.Fatalf("generation %d after reset", snap.Generation)
	}
	if snap.Grid.CountLivingCells() != 25 {
		t.Fatalf("reset did not re-randomize with density 1: %d alive", snap.Grid.CountLivingCells())
	}
}

func TestLoadPatternClipsToBoard(t *testing.T) {
	e := newTestEngine(t, Params{Rows: 3, Cols: 3, Density: 1})
	snap, err := e.LoadPattern(model.Pattern{Name: "large", Grid: model.Matrix{
		{T, F, T, F},
		{F, T, F, T},
		{T, F, T, F},
		{F, T, F, T},
	}})
	if err != nil {
		t.Fatalf("LoadPattern: %v", err)
	}
	want := mustGrid(t, [][]bool{
		{T, F, T},
		{F, T, F},
		{T, F, T},
	})
	if !snap.Grid.Equal(want) {
		t.Fatalf("got:\n%s", snap.Grid)
	}
}

func TestConcurrentReadersSeeWholeSnapshots(t *testing.T) {
	e := newTestEngine(t, Params{Rows: 20, Cols: 20, Density: 0.4, Source: NewSource(3)})

	var wg sync.WaitGroup
	done := make(chan struct{})
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				if err := e.CurrentGrid().Validate(); err != nil {
					t.Errorf("reader saw invalid grid: %v", err)
					return
				}
			}
		}()
	}

	for range 50 {
		if _, err := e.Advance(); err != nil {
			t.Fatalf("Advance: %v", err)
		}
	}
	close(done)
	wg.Wait()
}
