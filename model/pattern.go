package model

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Pattern is a named configuration stored in an external catalog
type Pattern struct {
	ID        string    `json:"_id,omitempty"`
	Name      string    `json:"name"`
	Grid      Matrix    `json:"grid"`
	CreatedAt time.Time `json:"createdAt"`
}

// PatternRequest is the payload accepted by a pattern sink
type PatternRequest struct {
	Name string `json:"name"`
	Grid Matrix `json:"grid"`
}

// NewPatternRequest builds a persist request for grid under a trimmed name.
// Blank names are rejected before anything reaches a sink.
func NewPatternRequest(name string, grid *Grid) (PatternRequest, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return PatternRequest{}, errors.WithStack(ErrEmptyPatternName)
	}
	if err := grid.Validate(); err != nil {
		return PatternRequest{}, errors.Wrapf(err, "[NewPatternRequest] invalid grid for pattern: %+v", name)
	}
	return PatternRequest{Name: name, Grid: grid.ToRows()}, nil
}

// ApplyPattern returns a grid of base's dimensions, cleared to dead, with
// pattern stamped at the top-left corner. Pattern cells beyond base's bounds
// are discarded and each pattern row is clipped on its own, so larger,
// smaller, empty and ragged patterns are all valid input.
func ApplyPattern(base *Grid, pattern Matrix) (*Grid, error) {
	if err := base.Validate(); err != nil {
		return nil, errors.Wrap(err, "[ApplyPattern] invalid base grid")
	}

	next := newGrid(base.rows, base.cols)
	for r := range min(len(pattern), base.rows) {
		copy(next.cells[r], pattern[r])
	}
	return next, nil
}
