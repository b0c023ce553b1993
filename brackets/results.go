package brackets

import "fmt"

// RecordResult decides a match and advances the winner into its slot in
// the next round. An empty winner is inferred from the scores. The input
// bracket is never modified, so a failed call leaves the caller's value intact.
func RecordResult(b Bracket, matchID string, score1, score2 int, winner Entrant) (Bracket, error) {
	idx := b.indexOf(matchID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMatchNotFound, matchID)
	}
	m := b[idx]
	if !m.IsReady() {
		return nil, fmt.Errorf("%w: %q", ErrMatchNotReady, matchID)
	}
	if m.IsDecided() {
		return nil, fmt.Errorf("%w: %q won by %q", ErrMatchAlreadyDecided, matchID, m.Winner)
	}
	resolved, err := resolveWinner(m, score1, score2, winner)
	if err != nil {
		return nil, err
	}

	out := b.Clone()
	out.apply(idx, score1, score2, resolved)
	return out, nil
}

// CorrectResult re-scores a decided match. The previous winner is pulled
// back out of the next match, which must still be undecided, and the new
// winner is advanced in its place.
func CorrectResult(b Bracket, matchID string, score1, score2 int, winner Entrant) (Bracket, error) {
	idx := b.indexOf(matchID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMatchNotFound, matchID)
	}
	m := b[idx]
	if !m.IsDecided() {
		return nil, fmt.Errorf("%w: %q", ErrMatchNotDecided, matchID)
	}
	resolved, err := resolveWinner(m, score1, score2, winner)
	if err != nil {
		return nil, err
	}

	next := b.indexAt(m.Round+1, m.MatchIndex/2)
	if next >= 0 && b[next].IsDecided() {
		return nil, fmt.Errorf("%w: %q", ErrDownstreamDecided, b[next].ID)
	}

	out := b.Clone()
	if next >= 0 {
		out[next].setSlot(m.MatchIndex, TBD)
	}
	out.apply(idx, score1, score2, resolved)
	return out, nil
}

func resolveWinner(m Match, score1, score2 int, winner Entrant) (Entrant, error) {
	if !m.IsReady() {
		return TBD, fmt.Errorf("%w: %q", ErrMatchNotReady, m.ID)
	}
	if score1 < 0 || score2 < 0 {
		return TBD, fmt.Errorf("%w: %d-%d", ErrInvalidScore, score1, score2)
	}
	if winner == TBD {
		switch {
		case score1 > score2:
			return m.Entrant1, nil
		case score2 > score1:
			return m.Entrant2, nil
		default:
			return TBD, fmt.Errorf("%w: %q ended %d-%d", ErrAmbiguousResult, m.ID, score1, score2)
		}
	}
	if winner != m.Entrant1 && winner != m.Entrant2 {
		return TBD, fmt.Errorf("%w: %q is not playing in %q", ErrInvalidWinner, winner, m.ID)
	}
	return winner, nil
}

// apply mutates b in place and must only be called on a fresh clone.
func (b Bracket) apply(idx, score1, score2 int, winner Entrant) {
	m := &b[idx]
	m.Score1 = &score1
	m.Score2 = &score2
	m.Winner = winner

	// The final has no successor.
	if next := b.indexAt(m.Round+1, m.MatchIndex/2); next >= 0 {
		b[next].setSlot(m.MatchIndex, winner)
	}
}
