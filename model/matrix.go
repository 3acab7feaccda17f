package model

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Matrix is a raw boolean matrix as exchanged with pattern collaborators.
// Unlike Grid it may be empty or ragged.
type Matrix [][]bool

// UnmarshalJSON accepts cells encoded either as booleans or as 0/1 numbers
func (m *Matrix) UnmarshalJSON(data []byte) error {
	var raw [][]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "[Matrix.UnmarshalJSON] expected an array of arrays")
	}

	out := make(Matrix, len(raw))
	for r, row := range raw {
		out[r] = make([]bool, len(row))
		for c, v := range row {
			switch cell := v.(type) {
			case bool:
				out[r][c] = cell
			case float64:
				out[r][c] = cell != 0
			case nil:
				out[r][c] = false
			default:
				return errors.Errorf("[Matrix.UnmarshalJSON] cell (%d,%d) has unsupported value %v", r, c, v)
			}
		}
	}

	*m = out
	return nil
}
