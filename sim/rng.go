// Package sim is the Monte Carlo validator for the game math models. It
// measures each model's realized RTP against the closed-form house edge over
// a large number of simulated rounds.
//
// The random source here is statistical, not cryptographic. Real rounds draw
// their randomness from hash-derived commitments in the fairness package;
// nothing in this package is reachable from that path.
package sim

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// RNG is a splitmix64 generator: one 64-bit state, one add, three xorshift
// multiplies per draw. Fast enough for tens of millions of rounds and fully
// reproducible from its seed.
type RNG struct {
	state uint64
}

func NewRNG(seed uint64) *RNG {
	return &RNG{state: seed}
}

func (r *RNG) Uint64() uint64 {
	r.state += 0x9E3779B97F4A7C15
	z := r.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// Float64 returns a uniform draw in [0, 1).
func (r *RNG) Float64() float64 {
	return float64(r.Uint64()>>11) / float64(uint64(1)<<53)
}

// Intn returns a uniform draw in [0, n).
func (r *RNG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	idx := int(r.Float64() * float64(n))
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// RandomSeed draws a seed from the OS entropy source, for callers that do
// not need reproducibility.
func RandomSeed() (uint64, error) {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("sim: reading seed entropy: %w", err)
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}
