package engine

import "math/rand"

// RNG wraps math/rand.Rand with position tracking. The engine uses it to
// pick save cipher keys; a fixed seed makes save files reproducible.
type RNG struct {
	seed int64
	src  *rand.Rand
	pos  int64
}

// NewRNG creates a deterministic RNG from a seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		seed: seed,
		src:  rand.New(rand.NewSource(seed)),
	}
}

// SaveKey returns a cipher key in [0, 127].
func (r *RNG) SaveKey() byte {
	r.pos++
	return byte(r.src.Intn(128))
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Position returns the number of draws made since creation.
func (r *RNG) Position() int64 {
	return r.pos
}
