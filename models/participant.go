package models

import "time"

type ParticipantStatus string

const (
	ParticipantConfirmed ParticipantStatus = "confirmed"
	ParticipantMaybe     ParticipantStatus = "maybe"
)

func (s ParticipantStatus) Valid() bool {
	return s == ParticipantConfirmed || s == ParticipantMaybe
}

type Participant struct {
	GameID   string            `json:"game_id" db:"game_id"`
	UserID   string            `json:"user_id" db:"user_id"`
	Status   ParticipantStatus `json:"status" db:"status"`
	TeamName *string           `json:"team_name,omitempty" db:"team_name"`
	JoinedAt time.Time         `json:"joined_at" db:"joined_at"`
}
