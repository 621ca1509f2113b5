package engine

import (
	"math/rand/v2"
	"time"
)

// Random is the source of every random choice the engine makes: target
// selection, the success draw and synthetic technique ids. Inject a scripted
// implementation to force deterministic outcomes.
type Random interface {
	// IntN returns a value in [0, n). n is always > 0.
	IntN(n int) int

	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
}

// NewRandom returns a PCG-backed Random. A zero seed derives one from the clock.
func NewRandom(seed uint64) Random {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
