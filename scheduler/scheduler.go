// Package scheduler drives an engine at a fixed tick interval and owns the
// run/stop lifecycle.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol-engine/engine"
	"github.com/sheikhrachel/go-gol-engine/model"
)

// DefaultTickInterval is used when Config.TickInterval is zero
const DefaultTickInterval = 500 * time.Millisecond

// State of a TickScheduler
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

// Engine is what the scheduler needs from the simulation
type Engine interface {
	Advance() (engine.Snapshot, error)
	Snapshot() engine.Snapshot
	Reset() (engine.Snapshot, error)
	LoadPattern(pattern model.Pattern) (engine.Snapshot, error)
}

// Update is delivered to observers after every tick and every command
type Update struct {
	engine.Snapshot
	State State
}

// Observer receives updates. Observers run with the scheduler locked and
// must not call back into it synchronously.
type Observer func(Update)

// Config for a TickScheduler
type Config struct {
	TickInterval time.Duration
	// NewTicker defaults to NewTimeTicker.
	NewTicker TickerFunc
}

// tickHandle is the single cancellation token for the running loop
type tickHandle struct {
	ctx    context.Context
	cancel context.CancelFunc
	ticker Ticker
}

// TickScheduler invokes Engine.Advance once per tick while running
type TickScheduler struct {
	engine    Engine
	interval  time.Duration
	newTicker TickerFunc
	logger    *log.Logger

	// mu guards state and handle, and is held for the whole of every tick,
	// so at most one Advance is in flight and none starts after Stop returns.
	mu     sync.Mutex
	state  State
	handle *tickHandle

	obsMu     sync.RWMutex
	nextObsID int
	observers []observerEntry
}

type observerEntry struct {
	id int
	fn Observer
}

// New creates a stopped scheduler around eng
func New(eng Engine, cfg Config, logger *log.Logger) (*TickScheduler, error) {
	if eng == nil {
		return nil, errors.New("[scheduler.New] engine is required")
	}
	if cfg.TickInterval < 0 {
		return nil, errors.Errorf("[scheduler.New] negative tick interval: %v", cfg.TickInterval)
	}
	if cfg.TickInterval == 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.NewTicker == nil {
		cfg.NewTicker = NewTimeTicker
	}
	if logger == nil {
		logger = log.Default()
	}

	return &TickScheduler{
		engine:    eng,
		interval:  cfg.TickInterval,
		newTicker: cfg.NewTicker,
		logger:    logger,
		state:     Stopped,
	}, nil
}

// Interval returns the tick period
func (s *TickScheduler) Interval() time.Duration {
	return s.interval
}

// State returns the current lifecycle state
func (s *TickScheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsRunning reports whether ticks are being delivered
func (s *TickScheduler) IsRunning() bool {
	return s.State() == Running
}

// Snapshot returns the engine's latest board and the scheduler state
func (s *TickScheduler) Snapshot() Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Update{Snapshot: s.engine.Snapshot(), State: s.state}
}

// Start begins ticking. Calling Start while running does nothing.
func (s *TickScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startLocked() {
		s.publishLocked(s.engine.Snapshot())
	}
}

// Stop cancels the tick loop. No Advance begins after Stop returns.
// Calling Stop while stopped does nothing.
func (s *TickScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopLocked() {
		s.publishLocked(s.engine.Snapshot())
	}
}

// Toggle stops a running scheduler or starts a stopped one, returning the new state
func (s *TickScheduler) Toggle() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Running {
		s.stopLocked()
	} else {
		s.startLocked()
	}
	s.publishLocked(s.engine.Snapshot())
	return s.state
}

// Reset stops the scheduler and re-randomizes the board from the engine's
// construction parameters. The scheduler is left stopped.
func (s *TickScheduler) Reset() (engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()

	snap, err := s.engine.Reset()
	if err != nil {
		return engine.Snapshot{}, errors.Wrap(err, "[Reset] engine reset failed")
	}
	s.publishLocked(snap)
	return snap, nil
}

// LoadPattern stops the scheduler and stamps pattern onto the board. It does
// not restart ticking.
func (s *TickScheduler) LoadPattern(pattern model.Pattern) (engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()

	snap, err := s.engine.LoadPattern(pattern)
	if err != nil {
		return engine.Snapshot{}, errors.Wrapf(err, "[LoadPattern] failed to load pattern: %+v", pattern.Name)
	}
	s.publishLocked(snap)
	return snap, nil
}

// Close stops the scheduler and drops all observers
func (s *TickScheduler) Close() {
	s.Stop()

	s.obsMu.Lock()
	s.observers = nil
	s.obsMu.Unlock()
}

// Subscribe registers fn for future updates and returns a function removing it
func (s *TickScheduler) Subscribe(fn Observer) (unsubscribe func()) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()

	s.nextObsID++
	id := s.nextObsID
	s.observers = append(s.observers, observerEntry{id: id, fn: fn})

	return func() {
		s.obsMu.Lock()
		defer s.obsMu.Unlock()
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

func (s *TickScheduler) startLocked() bool {
	if s.handle != nil {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &tickHandle{ctx: ctx, cancel: cancel, ticker: s.newTicker(s.interval)}
	s.handle = h
	s.state = Running
	s.logger.Debug("scheduler started", "interval", s.interval)

	go s.run(h)
	return true
}

func (s *TickScheduler) stopLocked() bool {
	if s.handle == nil {
		return false
	}

	s.handle.ticker.Stop()
	s.handle.cancel()
	s.handle = nil
	s.state = Stopped
	s.logger.Debug("scheduler stopped")
	return true
}

func (s *TickScheduler) run(h *tickHandle) {
	for {
		select {
		case <-h.ctx.Done():
			return
		case <-h.ticker.C():
			s.tick(h)
		}
	}
}

func (s *TickScheduler) tick(h *tickHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The loop may have been stopped, or stopped and restarted, while this
	// tick was waiting for the lock.
	if s.handle != h {
		return
	}

	snap, err := s.engine.Advance()
	if err != nil {
		s.logger.Error("advance failed, stopping scheduler", "err", err)
		s.stopLocked()
		s.publishLocked(s.engine.Snapshot())
		return
	}
	s.publishLocked(snap)
}

func (s *TickScheduler) publishLocked(snap engine.Snapshot) {
	update := Update{Snapshot: snap, State: s.state}

	s.obsMu.RLock()
	observers := make([]Observer, len(s.observers))
	for i, o := range s.observers {
		observers[i] = o.fn
	}
	s.obsMu.RUnlock()

	for _, fn := range observers {
		fn(update)
	}
}
