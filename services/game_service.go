package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hooplink/hooplink-api/brackets"
	"github.com/hooplink/hooplink-api/models"
	"github.com/hooplink/hooplink-api/repositories"
	"golang.org/x/sync/errgroup"
)

type CreateGameInput struct {
	VenueName   string            `json:"venue_name"`
	Address     *string           `json:"address,omitempty"`
	StartsAt    time.Time         `json:"starts_at"`
	MaxPlayers  int               `json:"max_players"`
	Level       models.SkillLevel `json:"level"`
	Type        models.GameType   `json:"type"`
	EntryFee    int               `json:"entry_fee"`
	BracketSize int               `json:"bracket_size"`
}

type UpdateGameInput struct {
	VenueName  *string            `json:"venue_name,omitempty"`
	Address    *string            `json:"address,omitempty"`
	StartsAt   *time.Time         `json:"starts_at,omitempty"`
	MaxPlayers *int               `json:"max_players,omitempty"`
	Level      *models.SkillLevel `json:"level,omitempty"`
}

type TournamentConfigInput struct {
	EntryFee    int `json:"entry_fee"`
	BracketSize int `json:"bracket_size"`
}

type JoinGameInput struct {
	Status   models.ParticipantStatus `json:"status,omitempty"`
	TeamName *string                  `json:"team_name,omitempty"`
}

type GameService interface {
	CreateGame(ctx context.Context, hostID string, input CreateGameInput) (*models.Game, error)
	GetGame(ctx context.Context, gameID string) (*models.Game, error)
	ListGames(ctx context.Context, filter repositories.ListGamesFilter) ([]models.Game, error)
	UpdateGameDetails(ctx context.Context, gameID, callerID string, input UpdateGameInput) (*models.Game, error)
	UpdateTournamentConfig(ctx context.Context, gameID, callerID string, input TournamentConfigInput) (*models.Game, error)
	CancelGame(ctx context.Context, gameID, callerID string) (*models.Game, error)
	TogglePrivacy(ctx context.Context, gameID, callerID string) (*models.Game, error)
	TransferHost(ctx context.Context, gameID, callerID, newHostID string) (*models.Game, error)
	JoinGame(ctx context.Context, gameID, userID string, input JoinGameInput) (*models.Game, error)
	LeaveGame(ctx context.Context, gameID, userID string) (*models.Game, error)
	RemovePlayer(ctx context.Context, gameID, callerID, userID string) (*models.Game, error)
	AutoUpdateGameStatuses(ctx context.Context) error
}

type gameService struct {
	tx              repositories.Transactor
	gameRepo        repositories.GameRepository
	participantRepo repositories.ParticipantRepository
	logger          *slog.Logger
	now             func() time.Time
	newID           func() string
}

func NewGameService(
	tx repositories.Transactor,
	gameRepo repositories.GameRepository,
	participantRepo repositories.ParticipantRepository,
	logger *slog.Logger,
) GameService {
	return &gameService{
		tx:              tx,
		gameRepo:        gameRepo,
		participantRepo: participantRepo,
		logger:          logger,
		now:             time.Now,
		newID:           func() string { return uuid.New().String() },
	}
}

func (s *gameService) CreateGame(ctx context.Context, hostID string, input CreateGameInput) (*models.Game, error) {
	if hostID == "" {
		return nil, ErrForbiddenOperation
	}
	game, err := buildGame(input)
	if err != nil {
		return nil, err
	}
	game.ID = s.newID()
	game.HostID = hostID
	game.Status = models.StatusScheduled
	game.Privacy = models.PrivacyPublic

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.gameRepo.Create(ctx, exec, game); err != nil {
			return handleRepositoryError(err)
		}
		// Hosts of a standard run play in it; tournament hosts register like everyone else.
		if game.Type == models.GameTypeStandard {
			host := models.Participant{GameID: game.ID, UserID: hostID, Status: models.ParticipantConfirmed}
			if err := s.participantRepo.Add(ctx, exec, &host); err != nil {
				return fmt.Errorf("failed to add host to game %s: %w", game.ID, err)
			}
			game.Participants = append(game.Participants, host)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("game created",
		slog.String("game_id", game.ID),
		slog.String("host_id", hostID),
		slog.String("type", string(game.Type)))
	return game, nil
}

func buildGame(input CreateGameInput) (*models.Game, error) {
	venue := strings.TrimSpace(input.VenueName)
	if venue == "" {
		return nil, fmt.Errorf("%w: venue name is required", ErrValidationFailed)
	}
	if input.StartsAt.IsZero() {
		return nil, fmt.Errorf("%w: start time is required", ErrValidationFailed)
	}
	level := input.Level
	if level == "" {
		level = models.LevelAllLevels
	}
	if !level.Valid() {
		return nil, fmt.Errorf("%w: unknown level %q", ErrValidationFailed, level)
	}

	game := &models.Game{
		VenueName: venue,
		Address:   input.Address,
		StartsAt:  input.StartsAt,
		Level:     level,
		Type:      input.Type,
	}

	switch input.Type {
	case models.GameTypeStandard, "":
		game.Type = models.GameTypeStandard
		if input.MaxPlayers <= 0 {
			return nil, fmt.Errorf("%w: max players must be positive", ErrValidationFailed)
		}
		game.MaxPlayers = input.MaxPlayers
	case models.GameTypeTournament:
		cfg, err := tournamentConfig(TournamentConfigInput{EntryFee: input.EntryFee, BracketSize: input.BracketSize})
		if err != nil {
			return nil, err
		}
		game.TournamentConfig = &cfg
		game.MaxPlayers = cfg.BracketSize
	default:
		return nil, fmt.Errorf("%w: unknown game type %q", ErrValidationFailed, input.Type)
	}
	return game, nil
}

func tournamentConfig(input TournamentConfigInput) (models.TournamentConfig, error) {
	if !brackets.IsSupportedBracketSize(input.BracketSize) {
		return models.TournamentConfig{}, fmt.Errorf("%w: bracket size must be one of %v", ErrValidationFailed, brackets.SupportedBracketSizes)
	}
	if input.EntryFee < 0 {
		return models.TournamentConfig{}, fmt.Errorf("%w: entry fee cannot be negative", ErrValidationFailed)
	}
	return models.NewTournamentConfig(input.EntryFee, input.BracketSize), nil
}

// GetGame loads the game and its participants concurrently.
func (s *gameService) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	var (
		game         *models.Game
		participants []models.Participant
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		game, err = s.gameRepo.GetByID(gCtx, nil, gameID)
		return handleRepositoryError(err)
	})
	g.Go(func() error {
		var err error
		participants, err = s.participantRepo.ListByGame(gCtx, nil, gameID)
		if err != nil {
			return fmt.Errorf("failed to load participants for game %s: %w", gameID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	game.Participants = participants
	return game, nil
}

func (s *gameService) ListGames(ctx context.Context, filter repositories.ListGamesFilter) ([]models.Game, error) {
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, fmt.Errorf("%w: limit and offset cannot be negative", ErrValidationFailed)
	}
	if filter.Limit == 0 || filter.Limit > 100 {
		filter.Limit = 100
	}
	games, err := s.gameRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}

// mutate runs fn against the locked game inside a transaction and, when fn
// succeeds, persists the game's editable fields.
func (s *gameService) mutate(ctx context.Context, gameID string, fn func(exec repositories.SQLExecutor, game *models.Game) error) (*models.Game, error) {
	var game *models.Game
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		game, err = lockGame(ctx, exec, s.gameRepo, s.participantRepo, gameID)
		if err != nil {
			return err
		}
		if err := fn(exec, game); err != nil {
			return err
		}
		return handleRepositoryError(s.gameRepo.Update(ctx, exec, game))
	})
	if err != nil {
		return nil, err
	}
	return game, nil
}

func (s *gameService) UpdateGameDetails(ctx context.Context, gameID, callerID string, input UpdateGameInput) (*models.Game, error) {
	return s.mutate(ctx, gameID, func(_ repositories.SQLExecutor, game *models.Game) error {
		if err := requireHost(game, callerID); err != nil {
			return err
		}
		if game.Status.IsClosed() {
			return ErrGameClosed
		}

		if input.VenueName != nil {
			venue := strings.TrimSpace(*input.VenueName)
			if venue == "" {
				return fmt.Errorf("%w: venue name is required", ErrValidationFailed)
			}
			game.VenueName = venue
		}
		if input.Address != nil {
			game.Address = input.Address
		}
		if input.StartsAt != nil {
			if input.StartsAt.IsZero() {
				return fmt.Errorf("%w: start time is required", ErrValidationFailed)
			}
			game.StartsAt = *input.StartsAt
		}
		if input.Level != nil {
			if !input.Level.Valid() {
				return fmt.Errorf("%w: unknown level %q", ErrValidationFailed, *input.Level)
			}
			game.Level = *input.Level
		}
		if input.MaxPlayers != nil {
			if game.IsTournament() {
				return fmt.Errorf("%w: tournament capacity follows the bracket size", ErrValidationFailed)
			}
			if *input.MaxPlayers <= 0 || *input.MaxPlayers < game.ConfirmedCount() {
				return fmt.Errorf("%w: max players must be positive and cover the %d confirmed players", ErrValidationFailed, game.ConfirmedCount())
			}
			game.MaxPlayers = *input.MaxPlayers
		}
		return nil
	})
}

func (s *gameService) UpdateTournamentConfig(ctx context.Context, gameID, callerID string, input TournamentConfigInput) (*models.Game, error) {
	return s.mutate(ctx, gameID, func(_ repositories.SQLExecutor, game *models.Game) error {
		if err := requireHost(game, callerID); err != nil {
			return err
		}
		if !game.IsTournament() {
			return ErrNotTournament
		}
		if game.Status.IsClosed() {
			return ErrGameClosed
		}
		if game.HasBracket() {
			return ErrBracketExists
		}
		cfg, err := tournamentConfig(input)
		if err != nil {
			return err
		}
		if confirmed := game.ConfirmedCount(); confirmed > cfg.BracketSize {
			return fmt.Errorf("%w: %d players are already confirmed for a bracket of %d", ErrValidationFailed, confirmed, cfg.BracketSize)
		}
		game.TournamentConfig = &cfg
		game.MaxPlayers = cfg.BracketSize
		return nil
	})
}

func (s *gameService) CancelGame(ctx context.Context, gameID, callerID string) (*models.Game, error) {
	game, err := s.mutate(ctx, gameID, func(_ repositories.SQLExecutor, game *models.Game) error {
		if err := requireHost(game, callerID); err != nil {
			return err
		}
		if !isValidStatusTransition(game.Status, models.StatusCancelled) {
			return ErrGameClosed
		}
		game.Status = models.StatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("game cancelled", slog.String("game_id", gameID))
	return game, nil
}

func (s *gameService) TogglePrivacy(ctx context.Context, gameID, callerID string) (*models.Game, error) {
	return s.mutate(ctx, gameID, func(_ repositories.SQLExecutor, game *models.Game) error {
		if err := requireHost(game, callerID); err != nil {
			return err
		}
		game.Privacy = game.Privacy.Toggle()
		return nil
	})
}

func (s *gameService) TransferHost(ctx context.Context, gameID, callerID, newHostID string) (*models.Game, error) {
	game, err := s.mutate(ctx, gameID, func(_ repositories.SQLExecutor, game *models.Game) error {
		if err := requireHost(game, callerID); err != nil {
			return err
		}
		if game.Status.IsClosed() {
			return ErrGameClosed
		}
		if newHostID == callerID {
			return nil
		}
		if _, ok := game.Participant(newHostID); !ok {
			return fmt.Errorf("%w: %s", ErrParticipantNotFound, newHostID)
		}
		game.HostID = newHostID
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("host transferred", slog.String("game_id", gameID), slog.String("host_id", newHostID))
	return game, nil
}

// JoinGame adds the user to the game. Joining again updates the RSVP status
// and team name instead of failing.
func (s *gameService) JoinGame(ctx context.Context, gameID, userID string, input JoinGameInput) (*models.Game, error) {
	status := input.Status
	if status == "" {
		status = models.ParticipantConfirmed
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown participant status %q", ErrValidationFailed, status)
	}

	return s.mutate(ctx, gameID, func(exec repositories.SQLExecutor, game *models.Game) error {
		if game.Status.IsClosed() {
			return ErrGameClosed
		}

		existing, joined := game.Participant(userID)
		if joined && existing.Status == status && derefString(existing.TeamName) == derefString(input.TeamName) {
			return nil
		}
		if game.HasBracket() {
			return ErrRosterLocked
		}

		confirmed := game.ConfirmedCount()
		if joined && existing.Status == models.ParticipantConfirmed {
			confirmed--
		}
		if status == models.ParticipantConfirmed && confirmed >= game.MaxPlayers {
			return ErrGameFull
		}

		p := models.Participant{GameID: gameID, UserID: userID, Status: status, TeamName: input.TeamName}
		if joined {
			p.JoinedAt = existing.JoinedAt
			if err := s.participantRepo.Update(ctx, exec, &p); err != nil {
				return handleRepositoryError(err)
			}
		} else if err := s.participantRepo.Add(ctx, exec, &p); err != nil {
			return handleRepositoryError(err)
		}

		refreshed, err := s.participantRepo.ListByGame(ctx, exec, gameID)
		if err != nil {
			return fmt.Errorf("failed to reload participants for game %s: %w", gameID, err)
		}
		game.Participants = refreshed
		return nil
	})
}

// LeaveGame removes the user from the game. A host who is the last player
// cancels the game by leaving; otherwise hosting must be transferred first.
func (s *gameService) LeaveGame(ctx context.Context, gameID, userID string) (*models.Game, error) {
	return s.mutate(ctx, gameID, func(exec repositories.SQLExecutor, game *models.Game) error {
		if _, ok := game.Participant(userID); !ok {
			return ErrParticipantNotFound
		}
		if game.Status.IsClosed() {
			return ErrGameClosed
		}
		if game.HasBracket() {
			return ErrRosterLocked
		}
		if game.HostID == userID {
			if len(game.Participants) > 1 {
				return ErrHostMustTransfer
			}
			game.Status = models.StatusCancelled
			s.logger.Info("last player left, game cancelled", slog.String("game_id", gameID))
		}
		return s.removeParticipant(ctx, exec, game, userID)
	})
}

func (s *gameService) RemovePlayer(ctx context.Context, gameID, callerID, userID string) (*models.Game, error) {
	return s.mutate(ctx, gameID, func(exec repositories.SQLExecutor, game *models.Game) error {
		if err := requireHost(game, callerID); err != nil {
			return err
		}
		if userID == callerID {
			return fmt.Errorf("%w: hosts leave their own game instead of removing themselves", ErrValidationFailed)
		}
		if _, ok := game.Participant(userID); !ok {
			return ErrParticipantNotFound
		}
		if game.Status.IsClosed() {
			return ErrGameClosed
		}
		if game.HasBracket() {
			return ErrRosterLocked
		}
		return s.removeParticipant(ctx, exec, game, userID)
	})
}

func (s *gameService) removeParticipant(ctx context.Context, exec repositories.SQLExecutor, game *models.Game, userID string) error {
	if err := s.participantRepo.Remove(ctx, exec, game.ID, userID); err != nil {
		return handleRepositoryError(err)
	}
	kept := game.Participants[:0:0]
	for _, p := range game.Participants {
		if p.UserID != userID {
			kept = append(kept, p)
		}
	}
	game.Participants = kept
	return nil
}

// AutoUpdateGameStatuses moves scheduled games whose start time has passed to active.
func (s *gameService) AutoUpdateGameStatuses(ctx context.Context) error {
	now := s.now()
	updated := 0

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		due, err := s.gameRepo.ListDueToStart(ctx, exec, now)
		if err != nil {
			return err
		}
		for _, game := range due {
			if !isValidStatusTransition(game.Status, models.StatusActive) {
				continue
			}
			if err := s.gameRepo.UpdateStatus(ctx, exec, game.ID, models.StatusActive); err != nil {
				return fmt.Errorf("failed to activate game %s: %w", game.ID, err)
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("automatic status update failed: %w", err)
	}

	if updated > 0 {
		s.logger.Info("games activated by start time", slog.Int("count", updated), slog.Time("now", now))
	}
	return nil
}
