package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hooplink/hooplink-api/brackets"
	"github.com/hooplink/hooplink-api/models"
	"github.com/hooplink/hooplink-api/repositories"
	"github.com/hooplink/hooplink-api/storage"
)

// BracketNotifier pushes bracket events to live viewers. *brackets.Hub implements it.
type BracketNotifier interface {
	BroadcastToRoom(roomID string, message interface{})
	RoomSize(roomID string) int
}

type MatchResultInput struct {
	Score1   *int   `json:"score1"`
	Score2   *int   `json:"score2"`
	WinnerID string `json:"winner_id,omitempty"`
}

type BracketView struct {
	GameID     string            `json:"game_id"`
	Status     models.GameStatus `json:"status"`
	Bracket    brackets.Bracket  `json:"bracket"`
	ChampionID *string           `json:"champion_id,omitempty"`
	Rounds     int               `json:"rounds"`
	Complete   bool              `json:"complete"`
}

// MatchUpdatedPayload carries the decided match and, except for the final,
// the match its winner advanced into.
type MatchUpdatedPayload struct {
	GameID    string          `json:"game_id"`
	Match     brackets.Match  `json:"match"`
	Next      *brackets.Match `json:"next,omitempty"`
	Corrected bool            `json:"corrected"`
}

type TournamentCompletedPayload struct {
	GameID     string `json:"game_id"`
	ChampionID string `json:"champion_id"`
	ArchiveURL string `json:"archive_url,omitempty"`
}

type BracketService interface {
	GenerateBracket(ctx context.Context, gameID, callerID string) (*BracketView, error)
	GetBracket(ctx context.Context, gameID string) (*BracketView, error)
	RecordMatchResult(ctx context.Context, gameID, callerID, matchID string, input MatchResultInput) (*BracketView, error)
	CorrectMatchResult(ctx context.Context, gameID, callerID, matchID string, input MatchResultInput) (*BracketView, error)
}

type bracketService struct {
	tx              repositories.Transactor
	gameRepo        repositories.GameRepository
	participantRepo repositories.ParticipantRepository
	generator       brackets.BracketGenerator
	notifier        BracketNotifier
	uploader        storage.FileUploader
	logger          *slog.Logger
	now             func() time.Time
}

// NewBracketService wires the bracket workflow. uploader may be nil, in
// which case completed brackets are not archived.
func NewBracketService(
	tx repositories.Transactor,
	gameRepo repositories.GameRepository,
	participantRepo repositories.ParticipantRepository,
	generator brackets.BracketGenerator,
	notifier BracketNotifier,
	uploader storage.FileUploader,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		tx:              tx,
		gameRepo:        gameRepo,
		participantRepo: participantRepo,
		generator:       generator,
		notifier:        notifier,
		uploader:        uploader,
		logger:          logger,
		now:             time.Now,
	}
}

func newBracketView(game *models.Game) *BracketView {
	return &BracketView{
		GameID:     game.ID,
		Status:     game.Status,
		Bracket:    game.Bracket,
		ChampionID: game.ChampionID,
		Rounds:     game.Bracket.Rounds(),
		Complete:   game.Bracket.IsComplete(),
	}
}

func (s *bracketService) GenerateBracket(ctx context.Context, gameID, callerID string) (*BracketView, error) {
	var game *models.Game
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		game, err = lockGame(ctx, exec, s.gameRepo, s.participantRepo, gameID)
		if err != nil {
			return err
		}
		if err := requireHost(game, callerID); err != nil {
			return err
		}
		if !game.IsTournament() || game.TournamentConfig == nil {
			return ErrNotTournament
		}
		if game.Status.IsClosed() {
			return ErrGameClosed
		}
		if game.HasBracket() {
			return ErrBracketExists
		}

		size := game.TournamentConfig.BracketSize
		roster := game.Roster()
		if len(roster) != size {
			return fmt.Errorf("%w: %d of %d players confirmed", ErrRosterNotFull, len(roster), size)
		}

		bracket, err := s.generator.GenerateBracket(ctx, brackets.GenerateBracketParams{Roster: roster, BracketSize: size})
		if err != nil {
			return fmt.Errorf("failed to generate bracket for game %s: %w", gameID, err)
		}
		if err := s.gameRepo.UpdateBracket(ctx, exec, gameID, bracket); err != nil {
			return handleRepositoryError(err)
		}
		game.Bracket = bracket

		if game.Status != models.StatusActive {
			if err := s.gameRepo.UpdateStatus(ctx, exec, gameID, models.StatusActive); err != nil {
				return handleRepositoryError(err)
			}
			game.Status = models.StatusActive
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	view := newBracketView(game)
	s.logger.Info("bracket generated",
		slog.String("game_id", gameID),
		slog.String("generator", s.generator.GetName()),
		slog.Int("bracket_size", game.TournamentConfig.BracketSize),
		slog.Int("rounds", view.Rounds))
	s.broadcast(gameID, brackets.EventBracketGenerated, view)
	return view, nil
}

func (s *bracketService) GetBracket(ctx context.Context, gameID string) (*BracketView, error) {
	game, err := s.gameRepo.GetByID(ctx, nil, gameID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if !game.IsTournament() {
		return nil, ErrNotTournament
	}
	if !game.HasBracket() {
		return nil, ErrBracketNotCreated
	}
	return newBracketView(game), nil
}

func (s *bracketService) RecordMatchResult(ctx context.Context, gameID, callerID, matchID string, input MatchResultInput) (*BracketView, error) {
	return s.applyResult(ctx, gameID, callerID, matchID, input, false)
}

func (s *bracketService) CorrectMatchResult(ctx context.Context, gameID, callerID, matchID string, input MatchResultInput) (*BracketView, error) {
	return s.applyResult(ctx, gameID, callerID, matchID, input, true)
}

// applyResult runs the engine against the locked bracket and writes the new
// value back in the same transaction, so recording a result and advancing
// the winner are never observed separately.
func (s *bracketService) applyResult(ctx context.Context, gameID, callerID, matchID string, input MatchResultInput, correction bool) (*BracketView, error) {
	if input.Score1 == nil || input.Score2 == nil {
		return nil, fmt.Errorf("%w: both scores are required", ErrValidationFailed)
	}

	var (
		game      *models.Game
		completed bool
	)
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		game, err = s.gameRepo.GetByIDForUpdate(ctx, exec, gameID)
		if err != nil {
			return handleRepositoryError(err)
		}
		if err := requireHost(game, callerID); err != nil {
			return err
		}
		if !game.IsTournament() {
			return ErrNotTournament
		}
		if !game.HasBracket() {
			return ErrBracketNotCreated
		}
		if game.Status == models.StatusCancelled {
			return ErrGameClosed
		}

		winner := brackets.Entrant(input.WinnerID)
		var updated brackets.Bracket
		if correction {
			updated, err = brackets.CorrectResult(game.Bracket, matchID, *input.Score1, *input.Score2, winner)
		} else {
			updated, err = brackets.RecordResult(game.Bracket, matchID, *input.Score1, *input.Score2, winner)
		}
		if err != nil {
			return err
		}
		if err := s.gameRepo.UpdateBracket(ctx, exec, gameID, updated); err != nil {
			return handleRepositoryError(err)
		}
		game.Bracket = updated

		// Only the final can change while a champion exists, so any change
		// here alters the completed bracket and it is archived again.
		if champion := updated.Champion(); champion != brackets.TBD {
			championID := string(champion)
			if derefString(game.ChampionID) != championID {
				if err := s.gameRepo.UpdateChampion(ctx, exec, gameID, &championID); err != nil {
					return handleRepositoryError(err)
				}
				game.ChampionID = &championID
			}
			if game.Status != models.StatusCompleted {
				if err := s.gameRepo.UpdateStatus(ctx, exec, gameID, models.StatusCompleted); err != nil {
					return handleRepositoryError(err)
				}
				game.Status = models.StatusCompleted
			}
			completed = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	match, _ := game.Bracket.Match(matchID)
	s.logger.Info("match result recorded",
		slog.String("game_id", gameID),
		slog.String("match_id", matchID),
		slog.Int("round", match.Round),
		slog.String("winner", string(match.Winner)),
		slog.String("loser", string(match.Loser())),
		slog.Bool("correction", correction))

	payload := MatchUpdatedPayload{GameID: gameID, Match: match, Corrected: correction}
	if match.NextMatchID != "" {
		if next, ok := game.Bracket.Match(match.NextMatchID); ok {
			payload.Next = &next
		}
	}
	s.broadcast(gameID, brackets.EventMatchUpdated, payload)

	if completed {
		s.completeTournament(ctx, game)
	}
	return newBracketView(game), nil
}

// completeTournament archives the finished bracket and announces the champion.
// Archive failures are logged; the result itself is already committed.
func (s *bracketService) completeTournament(ctx context.Context, game *models.Game) {
	championID := derefString(game.ChampionID)
	s.logger.Info("tournament completed", slog.String("game_id", game.ID), slog.String("champion_id", championID))

	archiveURL, err := s.archiveBracket(ctx, game)
	if err != nil {
		s.logger.Error("failed to archive bracket", slog.String("game_id", game.ID), slog.Any("error", err))
	} else if archiveURL != "" {
		game.BracketArchiveURL = &archiveURL
	}

	s.broadcast(game.ID, brackets.EventTournamentCompleted, TournamentCompletedPayload{
		GameID:     game.ID,
		ChampionID: championID,
		ArchiveURL: archiveURL,
	})
}

type bracketArchive struct {
	GameID      string           `json:"game_id"`
	VenueName   string           `json:"venue_name"`
	StartsAt    time.Time        `json:"starts_at"`
	BracketSize int              `json:"bracket_size"`
	ChampionID  string           `json:"champion_id"`
	Bracket     brackets.Bracket `json:"bracket"`
	ArchivedAt  time.Time        `json:"archived_at"`
}

func bracketArchiveKey(gameID string) string {
	return fmt.Sprintf("brackets/%s.json", gameID)
}

func (s *bracketService) archiveBracket(ctx context.Context, game *models.Game) (string, error) {
	if s.uploader == nil {
		return "", nil
	}

	snapshot := bracketArchive{
		GameID:     game.ID,
		VenueName:  game.VenueName,
		StartsAt:   game.StartsAt,
		ChampionID: derefString(game.ChampionID),
		Bracket:    game.Bracket,
		ArchivedAt: s.now().UTC(),
	}
	if game.TournamentConfig != nil {
		snapshot.BracketSize = game.TournamentConfig.BracketSize
	}
	body, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to encode bracket archive: %w", err)
	}

	result, err := s.uploader.Upload(ctx, bracketArchiveKey(game.ID), "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	if err := s.gameRepo.UpdateArchiveURL(ctx, game.ID, stringPtr(result.Location)); err != nil {
		return "", fmt.Errorf("failed to store archive url: %w", err)
	}
	return result.Location, nil
}

func (s *bracketService) broadcast(gameID, event string, payload interface{}) {
	if s.notifier == nil {
		return
	}
	room := brackets.GameRoom(gameID)
	s.notifier.BroadcastToRoom(room, brackets.WebSocketMessage{Type: event, Payload: payload, RoomID: room})
	s.logger.Debug("bracket event broadcast",
		slog.String("game_id", gameID),
		slog.String("event", event),
		slog.Int("viewers", s.notifier.RoomSize(room)))
}
