package services

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/hooplink/hooplink-api/brackets"
	"github.com/hooplink/hooplink-api/models"
	"github.com/hooplink/hooplink-api/repositories"
	"github.com/hooplink/hooplink-api/storage"
)

// ------------------------
// Fake Transactor
// ------------------------

type FakeTransactor struct {
	calls int
}

func (f *FakeTransactor) WithinTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	f.calls++
	return fn(nil)
}

// ------------------------
// Fake Store
// ------------------------

// FakeStore keeps games and participants in memory and implements both
// repositories. XxxFunc hooks override individual methods.
type FakeStore struct {
	mu           sync.Mutex
	games        map[string]models.Game
	participants map[string][]models.Participant
	clock        time.Time
	trace        []string

	UpdateBracketFunc func(ctx context.Context, id string, b brackets.Bracket) error
	AddFunc           func(ctx context.Context, p *models.Participant) error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		games:        map[string]models.Game{},
		participants: map[string][]models.Participant{},
		clock:        time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC),
	}
}

func (f *FakeStore) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeStore) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.trace...)
}

func (f *FakeStore) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

// Put seeds a game directly.
func (f *FakeStore) Put(g models.Game) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g.Bracket = g.Bracket.Clone()
	f.games[g.ID] = g
}

// Seat seeds participants in the order given.
func (f *FakeStore) Seat(gameID string, status models.ParticipantStatus, userIDs ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range userIDs {
		f.participants[gameID] = append(f.participants[gameID], models.Participant{
			GameID: gameID, UserID: id, Status: status, JoinedAt: f.tick(),
		})
	}
}

// Game returns the stored copy of a game.
func (f *FakeStore) Game(id string) models.Game {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := f.games[id]
	g.Bracket = g.Bracket.Clone()
	return g
}

func (f *FakeStore) Participants(gameID string) []models.Participant {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Participant(nil), f.participants[gameID]...)
}

// --- GameRepository ---

func (f *FakeStore) Create(_ context.Context, _ repositories.SQLExecutor, g *models.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Create")
	g.CreatedAt = f.tick()
	stored := *g
	stored.Participants = nil
	f.games[g.ID] = stored
	return nil
}

func (f *FakeStore) get(id string) (*models.Game, error) {
	g, ok := f.games[id]
	if !ok {
		return nil, repositories.ErrGameNotFound
	}
	g.Bracket = g.Bracket.Clone()
	return &g, nil
}

func (f *FakeStore) GetByID(_ context.Context, _ repositories.SQLExecutor, id string) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetByID")
	return f.get(id)
}

func (f *FakeStore) GetByIDForUpdate(_ context.Context, _ repositories.SQLExecutor, id string) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetByIDForUpdate")
	return f.get(id)
}

func (f *FakeStore) List(_ context.Context, filter repositories.ListGamesFilter) ([]models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("List")
	out := make([]models.Game, 0, len(f.games))
	for _, g := range f.games {
		if filter.Status != nil && g.Status != *filter.Status {
			continue
		}
		if filter.Type != nil && g.Type != *filter.Type {
			continue
		}
		if filter.HostID != nil && g.HostID != *filter.HostID {
			continue
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	if filter.Offset >= len(out) {
		return []models.Game{}, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *FakeStore) Update(_ context.Context, _ repositories.SQLExecutor, g *models.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Update")
	stored, ok := f.games[g.ID]
	if !ok {
		return repositories.ErrGameNotFound
	}
	stored.HostID = g.HostID
	stored.VenueName = g.VenueName
	stored.Address = g.Address
	stored.StartsAt = g.StartsAt
	stored.MaxPlayers = g.MaxPlayers
	stored.Level = g.Level
	stored.Privacy = g.Privacy
	stored.Status = g.Status
	stored.Type = g.Type
	stored.TournamentConfig = g.TournamentConfig
	f.games[g.ID] = stored
	return nil
}

func (f *FakeStore) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id string, status models.GameStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateStatus")
	g, ok := f.games[id]
	if !ok {
		return repositories.ErrGameNotFound
	}
	g.Status = status
	f.games[id] = g
	return nil
}

func (f *FakeStore) UpdateBracket(ctx context.Context, _ repositories.SQLExecutor, id string, b brackets.Bracket) error {
	if f.UpdateBracketFunc != nil {
		if err := f.UpdateBracketFunc(ctx, id, b); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateBracket")
	g, ok := f.games[id]
	if !ok {
		return repositories.ErrGameNotFound
	}
	g.Bracket = b.Clone()
	f.games[id] = g
	return nil
}

func (f *FakeStore) UpdateChampion(_ context.Context, _ repositories.SQLExecutor, id string, championID *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateChampion")
	g, ok := f.games[id]
	if !ok {
		return repositories.ErrGameNotFound
	}
	g.ChampionID = championID
	f.games[id] = g
	return nil
}

func (f *FakeStore) UpdateArchiveURL(_ context.Context, id string, url *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateArchiveURL")
	g, ok := f.games[id]
	if !ok {
		return repositories.ErrGameNotFound
	}
	g.BracketArchiveURL = url
	f.games[id] = g
	return nil
}

func (f *FakeStore) ListDueToStart(_ context.Context, _ repositories.SQLExecutor, now time.Time) ([]*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListDueToStart")
	var due []*models.Game
	for _, g := range f.games {
		if g.Status == models.StatusScheduled && !g.StartsAt.After(now) {
			g := g
			due = append(due, &g)
		}
	}
	return due, nil
}

// --- ParticipantRepository ---

func (f *FakeStore) Add(ctx context.Context, _ repositories.SQLExecutor, p *models.Participant) error {
	if f.AddFunc != nil {
		return f.AddFunc(ctx, p)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Add")
	if _, ok := f.games[p.GameID]; !ok {
		return repositories.ErrGameNotFound
	}
	for _, existing := range f.participants[p.GameID] {
		if existing.UserID == p.UserID {
			return repositories.ErrParticipantConflict
		}
	}
	p.JoinedAt = f.tick()
	f.participants[p.GameID] = append(f.participants[p.GameID], *p)
	return nil
}

func (f *FakeStore) Remove(_ context.Context, _ repositories.SQLExecutor, gameID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Remove")
	list := f.participants[gameID]
	for i, p := range list {
		if p.UserID == userID {
			f.participants[gameID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return repositories.ErrParticipantNotFound
}

func (f *FakeStore) ListByGame(_ context.Context, _ repositories.SQLExecutor, gameID string) ([]models.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListByGame")
	return append([]models.Participant{}, f.participants[gameID]...), nil
}

// participantUpdater adapts the store's participant update, whose name
// collides with the game Update method.
type participantUpdater struct{ *FakeStore }

func (p participantUpdater) Update(_ context.Context, _ repositories.SQLExecutor, part *models.Participant) error {
	f := p.FakeStore
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateParticipant")
	list := f.participants[part.GameID]
	for i := range list {
		if list[i].UserID == part.UserID {
			list[i].Status = part.Status
			list[i].TeamName = part.TeamName
			return nil
		}
	}
	return repositories.ErrParticipantNotFound
}

// ParticipantRepo returns the ParticipantRepository view of the store.
func (f *FakeStore) ParticipantRepo() repositories.ParticipantRepository {
	return participantUpdater{f}
}

// ------------------------
// Fake Notifier
// ------------------------

type FakeNotifier struct {
	mu       sync.Mutex
	messages []brackets.WebSocketMessage
}

func (f *FakeNotifier) BroadcastToRoom(roomID string, message interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := message.(brackets.WebSocketMessage); ok {
		f.messages = append(f.messages, msg)
	}
}

func (f *FakeNotifier) RoomSize(string) int { return 0 }

func (f *FakeNotifier) Types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.messages))
	for _, m := range f.messages {
		out = append(out, m.Type)
	}
	return out
}

func (f *FakeNotifier) Last() brackets.WebSocketMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.messages[len(f.messages)-1]
}

// ------------------------
// Fake Uploader
// ------------------------

type FakeUploader struct {
	UploadFunc func(ctx context.Context, key, contentType string, body []byte) (*storage.UploadResult, error)

	Keys   []string
	Bodies [][]byte
}

func (f *FakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	f.Keys = append(f.Keys, key)
	f.Bodies = append(f.Bodies, body)
	if f.UploadFunc != nil {
		return f.UploadFunc(ctx, key, contentType, body)
	}
	return &storage.UploadResult{Key: key, Location: f.GetPublicURL(key)}, nil
}

func (f *FakeUploader) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}

// keepOrder seeds the roster into round 1 unshuffled.
type keepOrder struct{}

func (keepOrder) Shuffle(int, func(i, j int)) {}
