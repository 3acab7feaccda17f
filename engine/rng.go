package engine

import (
	"math/rand/v2"
	"time"
)

// NewSource returns a PCG-backed random source. A zero seed picks one from
// the clock, any other seed makes resets reproducible.
func NewSource(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewPCG(uint64(seed), 0))
}
