package brackets

import (
	"fmt"
	"math/bits"
)

// Entrant is an opaque participant identifier. The zero value is an empty (TBD) slot.
type Entrant string

const TBD Entrant = ""

type Match struct {
	ID          string  `json:"id"`
	Round       int     `json:"round"`
	MatchIndex  int     `json:"match_index"`
	Entrant1    Entrant `json:"entrant1,omitempty"`
	Entrant2    Entrant `json:"entrant2,omitempty"`
	Score1      *int    `json:"score1,omitempty"`
	Score2      *int    `json:"score2,omitempty"`
	Winner      Entrant `json:"winner,omitempty"`
	NextMatchID string  `json:"next_match_id,omitempty"`
}

// IsReady reports whether both entrants are known.
func (m Match) IsReady() bool {
	return m.Entrant1 != TBD && m.Entrant2 != TBD
}

func (m Match) IsDecided() bool {
	return m.Winner != TBD
}

// Loser returns the entrant that did not win, or TBD for an undecided match.
func (m Match) Loser() Entrant {
	switch m.Winner {
	case TBD:
		return TBD
	case m.Entrant1:
		return m.Entrant2
	default:
		return m.Entrant1
	}
}

func (m *Match) setSlot(sourceIndex int, e Entrant) {
	if sourceIndex%2 == 0 {
		m.Entrant1 = e
	} else {
		m.Entrant2 = e
	}
}

// MatchID builds the identifier of the match at the given position.
func MatchID(round, matchIndex int) string {
	return fmt.Sprintf("r%d-m%d", round, matchIndex)
}

// Bracket is the full match list of a single-elimination tournament,
// ordered by round and then by position within the round.
type Bracket []Match

// Clone returns a deep copy; engine operations never modify their input.
func (b Bracket) Clone() Bracket {
	if b == nil {
		return nil
	}
	out := make(Bracket, len(b))
	for i, m := range b {
		if m.Score1 != nil {
			s := *m.Score1
			m.Score1 = &s
		}
		if m.Score2 != nil {
			s := *m.Score2
			m.Score2 = &s
		}
		out[i] = m
	}
	return out
}

// Size is the number of entrant slots in round 1.
func (b Bracket) Size() int {
	if len(b) == 0 {
		return 0
	}
	return len(b) + 1
}

func (b Bracket) Rounds() int {
	rounds := 0
	for _, m := range b {
		if m.Round > rounds {
			rounds = m.Round
		}
	}
	return rounds
}

func (b Bracket) Match(id string) (Match, bool) {
	if i := b.indexOf(id); i >= 0 {
		return b[i], true
	}
	return Match{}, false
}

func (b Bracket) MatchAt(round, matchIndex int) (Match, bool) {
	if i := b.indexAt(round, matchIndex); i >= 0 {
		return b[i], true
	}
	return Match{}, false
}

func (b Bracket) RoundMatches(round int) []Match {
	var out []Match
	for _, m := range b {
		if m.Round == round {
			out = append(out, m)
		}
	}
	return out
}

func (b Bracket) Final() (Match, bool) {
	if len(b) == 0 {
		return Match{}, false
	}
	return b.MatchAt(b.Rounds(), 0)
}

// Champion is the winner of the final, or TBD while the tournament is open.
func (b Bracket) Champion() Entrant {
	final, ok := b.Final()
	if !ok {
		return TBD
	}
	return final.Winner
}

func (b Bracket) IsComplete() bool {
	return b.Champion() != TBD
}

func (b Bracket) indexOf(id string) int {
	for i := range b {
		if b[i].ID == id {
			return i
		}
	}
	return -1
}

func (b Bracket) indexAt(round, matchIndex int) int {
	for i := range b {
		if b[i].Round == round && b[i].MatchIndex == matchIndex {
			return i
		}
	}
	return -1
}

// Validate checks the structure of a bracket loaded from storage: round
// sizes, ids and successor links matching each position, winners drawn
// from their match and winners present in the successor slot.
func (b Bracket) Validate() error {
	size := b.Size()
	if !IsSupportedBracketSize(size) {
		return fmt.Errorf("%w: %d matches do not form a supported bracket", ErrMalformedBracket, len(b))
	}
	rounds := bits.TrailingZeros(uint(size))

	ids := make(map[string]struct{}, len(b))
	positions := make(map[[2]int]struct{}, len(b))
	perRound := make(map[int]int, rounds)
	for _, m := range b {
		if m.Round < 1 || m.Round > rounds {
			return fmt.Errorf("%w: match %q has round %d outside 1..%d", ErrMalformedBracket, m.ID, m.Round, rounds)
		}
		if m.MatchIndex < 0 || m.MatchIndex >= size>>m.Round {
			return fmt.Errorf("%w: match %q has index %d outside round %d", ErrMalformedBracket, m.ID, m.MatchIndex, m.Round)
		}
		if m.ID != MatchID(m.Round, m.MatchIndex) {
			return fmt.Errorf("%w: match %q sits at round %d index %d", ErrMalformedBracket, m.ID, m.Round, m.MatchIndex)
		}
		wantNext := ""
		if m.Round < rounds {
			wantNext = MatchID(m.Round+1, m.MatchIndex/2)
		}
		if m.NextMatchID != wantNext {
			return fmt.Errorf("%w: match %q points to %q, want %q", ErrMalformedBracket, m.ID, m.NextMatchID, wantNext)
		}
		if _, dup := ids[m.ID]; dup {
			return fmt.Errorf("%w: duplicate match id %q", ErrMalformedBracket, m.ID)
		}
		ids[m.ID] = struct{}{}
		pos := [2]int{m.Round, m.MatchIndex}
		if _, dup := positions[pos]; dup {
			return fmt.Errorf("%w: two matches at round %d index %d", ErrMalformedBracket, m.Round, m.MatchIndex)
		}
		positions[pos] = struct{}{}
		perRound[m.Round]++

		if m.IsDecided() {
			if !m.IsReady() {
				return fmt.Errorf("%w: match %q is decided without both entrants", ErrMalformedBracket, m.ID)
			}
			if m.Winner != m.Entrant1 && m.Winner != m.Entrant2 {
				return fmt.Errorf("%w: match %q winner %q is not an entrant", ErrMalformedBracket, m.ID, m.Winner)
			}
			if m.Round < rounds {
				next, ok := b.MatchAt(m.Round+1, m.MatchIndex/2)
				if !ok {
					return fmt.Errorf("%w: match %q has no successor", ErrMalformedBracket, m.ID)
				}
				slot := next.Entrant1
				if m.MatchIndex%2 == 1 {
					slot = next.Entrant2
				}
				if slot != m.Winner {
					return fmt.Errorf("%w: winner of %q was not advanced to %q", ErrMalformedBracket, m.ID, next.ID)
				}
			}
		}
	}
	for r := 1; r <= rounds; r++ {
		if perRound[r] != size>>r {
			return fmt.Errorf("%w: round %d has %d matches, want %d", ErrMalformedBracket, r, perRound[r], size>>r)
		}
	}
	return nil
}
