// Package patterns talks to the named-pattern catalog that lives outside the
// simulation. Loading a fetched pattern onto the board is left to the caller.
package patterns

import (
	"context"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol-engine/model"
)

// Source lists stored patterns
type Source interface {
	List(ctx context.Context) ([]model.Pattern, error)
}

// Sink persists a new pattern and returns the stored record
type Sink interface {
	Create(ctx context.Context, req model.PatternRequest) (model.Pattern, error)
}

// Catalog is a pattern store that is both a Source and a Sink
type Catalog interface {
	Source
	Sink
}

// Publish stores grid under name. Blank names fail with
// model.ErrEmptyPatternName without reaching sink.
func Publish(ctx context.Context, sink Sink, name string, grid *model.Grid) (model.Pattern, error) {
	req, err := model.NewPatternRequest(name, grid)
	if err != nil {
		return model.Pattern{}, err
	}

	p, err := sink.Create(ctx, req)
	if err != nil {
		return model.Pattern{}, errors.Wrapf(err, "[Publish] failed to publish pattern: %+v", req.Name)
	}
	return p, nil
}
