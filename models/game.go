package models

import (
	"fmt"
	"time"

	"github.com/hooplink/hooplink-api/brackets"
)

type GameStatus string

const (
	StatusScheduled GameStatus = "scheduled"
	StatusActive    GameStatus = "active"
	StatusCompleted GameStatus = "completed"
	StatusCancelled GameStatus = "cancelled"
)

// IsClosed reports whether the game no longer accepts changes to its roster or bracket.
func (s GameStatus) IsClosed() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type GameType string

const (
	GameTypeStandard   GameType = "standard"
	GameTypeTournament GameType = "tournament"
)

type SkillLevel string

const (
	LevelCasual      SkillLevel = "Casual"
	LevelCompetitive SkillLevel = "Competitive"
	LevelAllLevels   SkillLevel = "All Levels"
)

func (l SkillLevel) Valid() bool {
	switch l {
	case LevelCasual, LevelCompetitive, LevelAllLevels:
		return true
	}
	return false
}

type Privacy string

const (
	PrivacyPublic     Privacy = "public"
	PrivacyInviteOnly Privacy = "invite-only"
)

// Toggle returns the opposite privacy setting.
func (p Privacy) Toggle() Privacy {
	if p == PrivacyInviteOnly {
		return PrivacyPublic
	}
	return PrivacyInviteOnly
}

// TournamentConfig describes the bracket of a tournament game. The prize
// pool is derived from the entry fee and is never set directly.
type TournamentConfig struct {
	EntryFee    int    `json:"entry_fee"`
	BracketSize int    `json:"bracket_size"`
	PrizePool   string `json:"prize_pool"`
}

// NewTournamentConfig builds a config with the prize pool filled in.
func NewTournamentConfig(entryFee, bracketSize int) TournamentConfig {
	return TournamentConfig{
		EntryFee:    entryFee,
		BracketSize: bracketSize,
		PrizePool:   fmt.Sprintf("$%d", entryFee*bracketSize),
	}
}

type Game struct {
	ID                string            `json:"id" db:"id"`
	HostID            string            `json:"host_id" db:"host_id"`
	VenueName         string            `json:"venue_name" db:"venue_name"`
	Address           *string           `json:"address,omitempty" db:"address"`
	StartsAt          time.Time         `json:"starts_at" db:"starts_at"`
	MaxPlayers        int               `json:"max_players" db:"max_players"`
	Level             SkillLevel        `json:"level" db:"level"`
	Privacy           Privacy           `json:"privacy" db:"privacy"`
	Status            GameStatus        `json:"status" db:"status"`
	Type              GameType          `json:"type" db:"type"`
	TournamentConfig  *TournamentConfig `json:"tournament_config,omitempty" db:"tournament_config"`
	Bracket           brackets.Bracket  `json:"bracket,omitempty" db:"bracket"`
	ChampionID        *string           `json:"champion_id,omitempty" db:"champion_id"`
	BracketArchiveURL *string           `json:"bracket_archive_url,omitempty" db:"bracket_archive_url"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`

	Participants []Participant `json:"participants,omitempty" db:"-"`
}

func (g *Game) IsTournament() bool {
	return g.Type == GameTypeTournament
}

func (g *Game) HasBracket() bool {
	return len(g.Bracket) > 0
}

// Roster returns the confirmed participants in join order. Only confirmed
// players are seeded into a bracket.
func (g *Game) Roster() []brackets.Entrant {
	roster := make([]brackets.Entrant, 0, len(g.Participants))
	for _, p := range g.Participants {
		if p.Status == ParticipantConfirmed {
			roster = append(roster, brackets.Entrant(p.UserID))
		}
	}
	return roster
}

func (g *Game) ConfirmedCount() int {
	n := 0
	for _, p := range g.Participants {
		if p.Status == ParticipantConfirmed {
			n++
		}
	}
	return n
}

func (g *Game) Participant(userID string) (Participant, bool) {
	for _, p := range g.Participants {
		if p.UserID == userID {
			return p, true
		}
	}
	return Participant{}, false
}
