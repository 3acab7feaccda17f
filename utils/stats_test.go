package utils

import (
	"testing"
	"time"
)

func TestStatsUpdate(t *testing.T) {
	s := NewStats()
	start := time.Now()

	s.Update(1, 100, start)
	s.Update(2, 200, start.Add(250*time.Millisecond))

	snap := s.Snapshot()
	if snap.TotalGenerations != 2 || snap.ActiveCells != 200 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap.GenerationsPerSecond != 4 {
		t.Fatalf("gen/sec %v, want 4", snap.GenerationsPerSecond)
	}
	if snap.AveragePopulation != 110 {
		t.Fatalf("average population %v, want 110", snap.AveragePopulation)
	}
}
