package brackets

import (
	"context"
	"slices"
)

// SupportedBracketSizes lists the roster sizes a single-elimination bracket can be built for.
var SupportedBracketSizes = []int{4, 8, 16, 32}

func IsSupportedBracketSize(size int) bool {
	return slices.Contains(SupportedBracketSizes, size)
}

type GenerateBracketParams struct {
	Roster      []Entrant
	BracketSize int
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) (Bracket, error)

	GetName() string
}
