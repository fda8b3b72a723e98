// Package generator produces synthetic gallery images: random tag subsets,
// random placeholder sizes and whole batches of records.
package generator

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Source is the randomness consumed by the generators.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// NewSource returns a deterministic PCG-backed source for the given seed.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewRandomSource returns a source seeded from the wall clock.
func NewRandomSource() *rand.Rand {
	return NewSource(uint64(time.Now().UnixNano()))
}

// Placeholder dimension ranges, half-open.
const (
	MinWidth  = 150
	MaxWidth  = 280
	MinHeight = 160
	MaxHeight = 300

	// MaxTagsPerImage bounds the size of a generated tag subset.
	MaxTagsPerImage = 4
)

// Size is a placeholder image size in pixels.
type Size struct {
	Width  int
	Height int
}

// String formats the size the way placeholder services address it ("WxH").
func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// RandomSize picks a width in [150,280) and a height in [160,300).
func RandomSize(src Source) Size {
	return Size{
		Width:  MinWidth + src.IntN(MaxWidth-MinWidth),
		Height: MinHeight + src.IntN(MaxHeight-MinHeight),
	}
}

// RandomTags returns 1..4 distinct tags drawn from pool. The pool itself is
// left untouched; a shuffled copy is sliced instead.
func RandomTags(src Source, pool []string) []string {
	if len(pool) == 0 {
		return nil
	}
	shuffled := make([]string, len(pool))
	copy(shuffled, pool)
	src.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	n := 1 + src.IntN(MaxTagsPerImage)
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
