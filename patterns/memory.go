package patterns

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol-engine/model"
)

// MemoryCatalog keeps patterns in process memory, for running without a
// remote catalog.
type MemoryCatalog struct {
	mu       sync.RWMutex
	patterns []model.Pattern
	now      func() time.Time
}

// NewMemoryCatalog creates a catalog seeded with the given patterns
func NewMemoryCatalog(seed ...model.Pattern) *MemoryCatalog {
	return &MemoryCatalog{
		patterns: append([]model.Pattern(nil), seed...),
		now:      time.Now,
	}
}

// List returns the stored patterns in insertion order
func (m *MemoryCatalog) List(ctx context.Context) ([]model.Pattern, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(model.ErrFetchFailed, "[MemoryCatalog.List] %v", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Pattern(nil), m.patterns...), nil
}

// Create stores req with a generated id and timestamp
func (m *MemoryCatalog) Create(ctx context.Context, req model.PatternRequest) (model.Pattern, error) {
	if err := ctx.Err(); err != nil {
		return model.Pattern{}, errors.Wrapf(model.ErrPersistFailed, "[MemoryCatalog.Create] %v", err)
	}

	id, err := newID()
	if err != nil {
		return model.Pattern{}, errors.Wrapf(model.ErrPersistFailed, "[MemoryCatalog.Create] failed to generate id: %v", err)
	}

	p := model.Pattern{
		ID:        id,
		Name:      req.Name,
		Grid:      req.Grid,
		CreatedAt: m.now().UTC(),
	}

	m.mu.Lock()
	m.patterns = append(m.patterns, p)
	m.mu.Unlock()
	return p, nil
}

func newID() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Builtin returns a few classic patterns for seeding a MemoryCatalog
func Builtin() []model.Pattern {
	return []model.Pattern{
		{Name: "Blinker", Grid: model.Matrix{
			{false, true, false},
			{false, true, false},
			{false, true, false},
		}},
		{Name: "Glider", Grid: model.Matrix{
			{false, true, false},
			{false, false, true},
			{true, true, true},
		}},
		{Name: "Toad", Grid: model.Matrix{
			{false, false, false, false},
			{false, true, true, true},
			{true, true, true, false},
		}},
		{Name: "Beacon", Grid: model.Matrix{
			{true, true, false, false},
			{true, true, false, false},
			{false, false, true, true},
			{false, false, true, true},
		}},
	}
}
