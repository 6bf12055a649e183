// Package rng owns the single random stream threaded through a run.
package rng

import (
	"math/rand/v2"
	"time"
)

// New returns a seeded stream. The same seed always yields the same
// networks and trajectories.
func New(seed int64) *rand.Rand {
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// Seed resolves a CLI seed: zero means time-based.
func Seed(seed int64) int64 {
	if seed == 0 {
		return time.Now().UnixNano()
	}
	return seed
}
