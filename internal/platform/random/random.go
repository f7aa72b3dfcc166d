// Package random provides seed generation and seeded RNG construction.
//
// Seeds come from crypto/rand so independent runs diverge, while the
// returned generators are deterministic math/rand streams suitable for
// reproducible simulations.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"os"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// NewRand creates a deterministic random number generator for the seed.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// EnsureSeed resolves a seed value. A zero seed requests a fresh random
// seed; when verbose, the chosen seed is printed to stderr so the run can
// be reproduced.
func EnsureSeed(seed int64, verbose bool) (int64, error) {
	if seed != 0 {
		return seed, nil
	}
	seed, err := NewSeed()
	if err != nil {
		return 0, err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Using seed: %d\n", seed)
	}
	return seed, nil
}
