package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/hooplink/hooplink-api/models"
	"github.com/hooplink/hooplink-api/repositories"
)

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func stringPtr(s string) *string {
	return &s
}

// handleRepositoryError translates repository sentinels into service errors.
func handleRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrGameNotFound):
		return ErrGameNotFound
	case errors.Is(err, repositories.ErrParticipantNotFound):
		return ErrParticipantNotFound
	case errors.Is(err, repositories.ErrParticipantConflict):
		return ErrAlreadyJoined
	case errors.Is(err, repositories.ErrGameInvalidData):
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	return err
}

func isValidStatusTransition(current, next models.GameStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.GameStatus][]models.GameStatus{
		models.StatusScheduled: {models.StatusActive, models.StatusCancelled},
		models.StatusActive:    {models.StatusCompleted, models.StatusCancelled},
		models.StatusCompleted: {},
		models.StatusCancelled: {},
	}
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

func requireHost(game *models.Game, callerID string) error {
	if game.HostID != callerID {
		return fmt.Errorf("%w: only the host can manage game %s", ErrForbiddenOperation, game.ID)
	}
	return nil
}

// lockGame loads a game and its participants inside a transaction, holding
// the row lock until the transaction ends.
func lockGame(ctx context.Context, exec repositories.SQLExecutor, games repositories.GameRepository, participants repositories.ParticipantRepository, gameID string) (*models.Game, error) {
	game, err := games.GetByIDForUpdate(ctx, exec, gameID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	game.Participants, err = participants.ListByGame(ctx, exec, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load participants for game %s: %w", gameID, err)
	}
	return game, nil
}
