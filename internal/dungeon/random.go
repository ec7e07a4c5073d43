package dungeon

import "math/rand"

// Source is the randomness a Carver consumes. Implementations must be
// deterministic for a given seed.
type Source interface {
	Intn(n int) int
	Bool() bool
}

// seededSource adapts math/rand to Source
type seededSource struct {
	rng *rand.Rand
}

// NewSource returns a deterministic Source for the given seed
func NewSource(seed int64) Source {
	return &seededSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *seededSource) Intn(n int) int { return s.rng.Intn(n) }

func (s *seededSource) Bool() bool { return s.rng.Intn(2) == 1 }
