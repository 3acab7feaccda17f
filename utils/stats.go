package utils

import (
	"sync"
	"time"
)

// Stats for performance monitoring. Safe for concurrent use.
type Stats struct {
	mu sync.RWMutex

	GenerationsPerSecond float64
	AveragePopulation    float64
	TotalGenerations     uint64
	StartTime            time.Time
	ActiveCells          int

	lastTick time.Time
}

func NewStats() *Stats {
	return &Stats{StartTime: time.Now()}
}

// Update records one observed generation at time now
func (s *Stats) Update(generation uint64, population int, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.TotalGenerations = generation
	s.ActiveCells = population

	if !s.lastTick.IsZero() {
		if duration := now.Sub(s.lastTick); duration > 0 {
			s.GenerationsPerSecond = 1.0 / duration.Seconds()
		}
	}
	s.lastTick = now

	// Simple moving average for population
	if s.AveragePopulation == 0 {
		s.AveragePopulation = float64(population)
	} else {
		s.AveragePopulation = (s.AveragePopulation * 0.9) + (float64(population) * 0.1)
	}
}

// StatsSnapshot is a point-in-time copy of Stats
type StatsSnapshot struct {
	GenerationsPerSecond float64
	AveragePopulation    float64
	TotalGenerations     uint64
	ActiveCells          int
	Runtime              time.Duration
}

// Snapshot returns a consistent copy of the counters
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StatsSnapshot{
		GenerationsPerSecond: s.GenerationsPerSecond,
		AveragePopulation:    s.AveragePopulation,
		TotalGenerations:     s.TotalGenerations,
		ActiveCells:          s.ActiveCells,
		Runtime:              time.Since(s.StartTime),
	}
}
