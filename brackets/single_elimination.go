package brackets

import (
	"context"
	"fmt"
	"math/bits"
	"math/rand/v2"
	"slices"
)

// Shuffler is the random source used to order the roster. *rand.Rand
// from math/rand/v2 satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type globalShuffler struct{}

func (globalShuffler) Shuffle(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}

type SingleEliminationGenerator struct {
	rng Shuffler
}

type GeneratorOption func(*SingleEliminationGenerator)

// WithRand makes generation reproducible for a seeded source.
func WithRand(rng Shuffler) GeneratorOption {
	return func(g *SingleEliminationGenerator) {
		if rng != nil {
			g.rng = rng
		}
	}
}

func NewSingleEliminationGenerator(opts ...GeneratorOption) BracketGenerator {
	g := &SingleEliminationGenerator{rng: globalShuffler{}}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateBracket shuffles the roster and lays it into round 1. Later
// rounds are created empty. A roster shorter than the bracket size leaves
// the trailing round 1 slots TBD.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (Bracket, error) {
	size := params.BracketSize
	if !IsSupportedBracketSize(size) {
		return nil, fmt.Errorf("%w: bracket size %d is not one of %v", ErrInvalidConfiguration, size, SupportedBracketSizes)
	}
	if err := validateRoster(params.Roster, size); err != nil {
		return nil, err
	}

	shuffled := slices.Clone(params.Roster)
	g.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	numRounds := bits.TrailingZeros(uint(size))
	bracket := make(Bracket, 0, size-1)

	for round, matchCount := 1, size/2; matchCount >= 1; round, matchCount = round+1, matchCount/2 {
		for i := 0; i < matchCount; i++ {
			m := Match{
				ID:         MatchID(round, i),
				Round:      round,
				MatchIndex: i,
			}
			if round == 1 {
				m.Entrant1 = entrantAt(shuffled, 2*i)
				m.Entrant2 = entrantAt(shuffled, 2*i+1)
			}
			if round < numRounds {
				m.NextMatchID = MatchID(round+1, i/2)
			}
			bracket = append(bracket, m)
		}
	}

	if err := bracket.Validate(); err != nil {
		return nil, fmt.Errorf("internal error: generated bracket for size %d: %w", size, err)
	}
	return bracket, nil
}

// GenerateBracket builds a bracket with the default random source.
func GenerateBracket(roster []Entrant, bracketSize int) (Bracket, error) {
	return NewSingleEliminationGenerator().GenerateBracket(context.Background(), GenerateBracketParams{
		Roster:      roster,
		BracketSize: bracketSize,
	})
}

func validateRoster(roster []Entrant, size int) error {
	if len(roster) > size {
		return fmt.Errorf("%w: roster of %d does not fit bracket size %d", ErrInvalidConfiguration, len(roster), size)
	}
	seen := make(map[Entrant]struct{}, len(roster))
	for i, e := range roster {
		if e == TBD {
			return fmt.Errorf("%w: roster entry %d is empty", ErrInvalidConfiguration, i)
		}
		if _, dup := seen[e]; dup {
			return fmt.Errorf("%w: entrant %q appears more than once", ErrInvalidConfiguration, e)
		}
		seen[e] = struct{}{}
	}
	return nil
}

func entrantAt(roster []Entrant, i int) Entrant {
	if i < len(roster) {
		return roster[i]
	}
	return TBD
}
