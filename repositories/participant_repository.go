package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hooplink/hooplink-api/models"
	"github.com/lib/pq"
)

var (
	ErrParticipantNotFound = errors.New("participant not found")
	ErrParticipantConflict = errors.New("user is already a participant of this game")
)

type ParticipantRepository interface {
	Add(ctx context.Context, exec SQLExecutor, p *models.Participant) error
	Update(ctx context.Context, exec SQLExecutor, p *models.Participant) error
	Remove(ctx context.Context, exec SQLExecutor, gameID, userID string) error
	ListByGame(ctx context.Context, exec SQLExecutor, gameID string) ([]models.Participant, error)
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresParticipantRepository) Add(ctx context.Context, exec SQLExecutor, p *models.Participant) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO game_participants (game_id, user_id, status, team_name)
		VALUES ($1, $2, $3, $4)
		RETURNING joined_at`

	err := executor.QueryRowContext(ctx, query, p.GameID, p.UserID, p.Status, p.TeamName).Scan(&p.JoinedAt)
	return handleParticipantError(err)
}

func (r *postgresParticipantRepository) Update(ctx context.Context, exec SQLExecutor, p *models.Participant) error {
	executor := r.getExecutor(exec)
	query := `UPDATE game_participants SET status = $1, team_name = $2 WHERE game_id = $3 AND user_id = $4`
	result, err := executor.ExecContext(ctx, query, p.Status, p.TeamName, p.GameID, p.UserID)
	if err != nil {
		return handleParticipantError(err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) Remove(ctx context.Context, exec SQLExecutor, gameID, userID string) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM game_participants WHERE game_id = $1 AND user_id = $2`
	result, err := executor.ExecContext(ctx, query, gameID, userID)
	if err != nil {
		return handleParticipantError(err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

// ListByGame returns participants in join order; the bracket roster
// depends on it.
func (r *postgresParticipantRepository) ListByGame(ctx context.Context, exec SQLExecutor, gameID string) ([]models.Participant, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT game_id, user_id, status, team_name, joined_at
		FROM game_participants
		WHERE game_id = $1
		ORDER BY joined_at ASC, user_id ASC`

	rows, err := executor.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for game %s: %w", gameID, err)
	}
	defer rows.Close()

	participants := make([]models.Participant, 0)
	for rows.Next() {
		var p models.Participant
		if scanErr := rows.Scan(&p.GameID, &p.UserID, &p.Status, &p.TeamName, &p.JoinedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", scanErr)
		}
		participants = append(participants, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during participant rows iteration: %w", err)
	}
	return participants, nil
}

func handleParticipantError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "game_participants_pkey" {
				return ErrParticipantConflict
			}
		case "23503":
			if pqErr.Constraint == "game_participants_game_id_fkey" {
				return ErrGameNotFound
			}
		}
	}
	return err
}
