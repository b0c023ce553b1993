package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hooplink/hooplink-api/brackets"
	"github.com/hooplink/hooplink-api/models"
	"github.com/lib/pq"
)

var (
	ErrGameNotFound    = errors.New("game not found")
	ErrGameInvalidData = errors.New("game violates a database constraint")
)

type ListGamesFilter struct {
	Status *models.GameStatus
	Type   *models.GameType
	HostID *string
	Limit  int
	Offset int
}

type GameRepository interface {
	Create(ctx context.Context, exec SQLExecutor, game *models.Game) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Game, error)
	// GetByIDForUpdate locks the game row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Game, error)
	List(ctx context.Context, filter ListGamesFilter) ([]models.Game, error)
	Update(ctx context.Context, exec SQLExecutor, game *models.Game) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.GameStatus) error
	UpdateBracket(ctx context.Context, exec SQLExecutor, id string, bracket brackets.Bracket) error
	UpdateChampion(ctx context.Context, exec SQLExecutor, id string, championID *string) error
	UpdateArchiveURL(ctx context.Context, id string, url *string) error
	ListDueToStart(ctx context.Context, exec SQLExecutor, now time.Time) ([]*models.Game, error)
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

func (r *postgresGameRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const gameColumns = `
	id, host_id, venue_name, address, starts_at, max_players, level, privacy,
	status, type, tournament_config, bracket, champion_id, bracket_archive_url, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGame(row rowScanner) (*models.Game, error) {
	var (
		g           models.Game
		configJSON  []byte
		bracketJSON []byte
	)
	err := row.Scan(
		&g.ID, &g.HostID, &g.VenueName, &g.Address, &g.StartsAt, &g.MaxPlayers, &g.Level, &g.Privacy,
		&g.Status, &g.Type, &configJSON, &bracketJSON, &g.ChampionID, &g.BracketArchiveURL, &g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if g.TournamentConfig, err = decodeTournamentConfig(configJSON); err != nil {
		return nil, fmt.Errorf("game %s: %w", g.ID, err)
	}
	if g.Bracket, err = decodeBracket(bracketJSON); err != nil {
		return nil, fmt.Errorf("game %s: %w", g.ID, err)
	}
	return &g, nil
}

func (r *postgresGameRepository) Create(ctx context.Context, exec SQLExecutor, g *models.Game) error {
	executor := r.getExecutor(exec)

	cfg, err := encodeTournamentConfig(g.TournamentConfig)
	if err != nil {
		return err
	}
	bracket, err := encodeBracket(g.Bracket)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO games (
			id, host_id, venue_name, address, starts_at, max_players, level, privacy,
			status, type, tournament_config, bracket
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at`

	err = executor.QueryRowContext(ctx, query,
		g.ID, g.HostID, g.VenueName, g.Address, g.StartsAt, g.MaxPlayers, g.Level, g.Privacy,
		g.Status, g.Type, cfg, bracket,
	).Scan(&g.CreatedAt)

	return handleGameError(err)
}

func (r *postgresGameRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Game, error) {
	return r.getByID(ctx, exec, id, false)
}

func (r *postgresGameRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Game, error) {
	return r.getByID(ctx, exec, id, true)
}

func (r *postgresGameRepository) getByID(ctx context.Context, exec SQLExecutor, id string, forUpdate bool) (*models.Game, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + gameColumns + ` FROM games WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	g, err := scanGame(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, handleGameError(err)
	}
	return g, nil
}

func (r *postgresGameRepository) List(ctx context.Context, filter ListGamesFilter) ([]models.Game, error) {
	executor := r.getExecutor(nil)
	query, args := buildListGamesQuery(filter)

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	games := make([]models.Game, 0)
	for rows.Next() {
		g, scanErr := scanGame(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan game: %w", scanErr)
		}
		games = append(games, *g)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during game rows iteration: %w", err)
	}
	return games, nil
}

func buildListGamesQuery(filter ListGamesFilter) (string, []interface{}) {
	query := `SELECT` + gameColumns + ` FROM games WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}
	if filter.Type != nil {
		query += fmt.Sprintf(" AND type = $%d", argID)
		args = append(args, *filter.Type)
		argID++
	}
	if filter.HostID != nil {
		query += fmt.Sprintf(" AND host_id = $%d", argID)
		args = append(args, *filter.HostID)
		argID++
	}

	query += " ORDER BY starts_at ASC, created_at ASC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}
	return query, args
}

// Update writes the editable game fields. The bracket, champion and
// archive URL have their own methods.
func (r *postgresGameRepository) Update(ctx context.Context, exec SQLExecutor, g *models.Game) error {
	executor := r.getExecutor(exec)

	cfg, err := encodeTournamentConfig(g.TournamentConfig)
	if err != nil {
		return err
	}

	query := `
		UPDATE games SET
			host_id = $1,
			venue_name = $2,
			address = $3,
			starts_at = $4,
			max_players = $5,
			level = $6,
			privacy = $7,
			status = $8,
			type = $9,
			tournament_config = $10
		WHERE id = $11`

	result, err := executor.ExecContext(ctx, query,
		g.HostID, g.VenueName, g.Address, g.StartsAt, g.MaxPlayers, g.Level, g.Privacy,
		g.Status, g.Type, cfg,
		g.ID,
	)
	if err != nil {
		return handleGameError(err)
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func (r *postgresGameRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.GameStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE games SET status = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return handleGameError(err)
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func (r *postgresGameRepository) UpdateBracket(ctx context.Context, exec SQLExecutor, id string, b brackets.Bracket) error {
	executor := r.getExecutor(exec)
	raw, err := encodeBracket(b)
	if err != nil {
		return err
	}
	query := `UPDATE games SET bracket = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, raw, id)
	if err != nil {
		return fmt.Errorf("failed to update bracket for game %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func (r *postgresGameRepository) UpdateChampion(ctx context.Context, exec SQLExecutor, id string, championID *string) error {
	executor := r.getExecutor(exec)
	query := `UPDATE games SET champion_id = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, championID, id)
	if err != nil {
		return fmt.Errorf("failed to update champion for game %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func (r *postgresGameRepository) UpdateArchiveURL(ctx context.Context, id string, url *string) error {
	executor := r.getExecutor(nil)
	query := `UPDATE games SET bracket_archive_url = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, url, id)
	if err != nil {
		return fmt.Errorf("failed to update bracket archive url for game %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

// ListDueToStart returns scheduled games whose start time has passed.
func (r *postgresGameRepository) ListDueToStart(ctx context.Context, exec SQLExecutor, now time.Time) ([]*models.Game, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + gameColumns + ` FROM games WHERE status = $1 AND starts_at <= $2`

	rows, err := executor.QueryContext(ctx, query, models.StatusScheduled, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query games due to start: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		g, scanErr := scanGame(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan game due to start: %w", scanErr)
		}
		games = append(games, g)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during game rows iteration: %w", err)
	}
	return games, nil
}

func handleGameError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23514", "23502", "22P02":
			return fmt.Errorf("%w: %s", ErrGameInvalidData, pqErr.Message)
		}
	}
	return err
}
