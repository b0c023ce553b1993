package repositories

import (
	"encoding/json"
	"fmt"

	"github.com/hooplink/hooplink-api/brackets"
	"github.com/hooplink/hooplink-api/models"
)

// encodeBracket returns the JSONB value for a bracket, or nil (SQL NULL)
// when the game has none yet. lib/pq sends []byte as bytea, so JSON goes
// out as a string.
func encodeBracket(b brackets.Bracket) (interface{}, error) {
	if len(b) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bracket: %w", err)
	}
	return string(raw), nil
}

// decodeBracket parses a stored bracket and validates its structure.
func decodeBracket(raw []byte) (brackets.Bracket, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var b brackets.Bracket
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("failed to decode bracket: %w", err)
	}
	if len(b) == 0 {
		return nil, nil
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("stored bracket: %w", err)
	}
	return b, nil
}

func encodeTournamentConfig(cfg *models.TournamentConfig) (interface{}, error) {
	if cfg == nil {
		return nil, nil
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tournament config: %w", err)
	}
	return string(raw), nil
}

func decodeTournamentConfig(raw []byte) (*models.TournamentConfig, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var cfg models.TournamentConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode tournament config: %w", err)
	}
	return &cfg, nil
}
