package handlers

import (
	"context"
	"errors"

	"github.com/hooplink/hooplink-api/models"
	"github.com/hooplink/hooplink-api/repositories"
	"github.com/hooplink/hooplink-api/services"
)

var errNotStubbed = errors.New("not stubbed")

// FakeGameService records the last call and returns what its XxxFunc hooks return.
type FakeGameService struct {
	CreateGameFunc             func(ctx context.Context, hostID string, input services.CreateGameInput) (*models.Game, error)
	GetGameFunc                func(ctx context.Context, gameID string) (*models.Game, error)
	ListGamesFunc              func(ctx context.Context, filter repositories.ListGamesFilter) ([]models.Game, error)
	UpdateGameDetailsFunc      func(ctx context.Context, gameID, callerID string, input services.UpdateGameInput) (*models.Game, error)
	UpdateTournamentConfigFunc func(ctx context.Context, gameID, callerID string, input services.TournamentConfigInput) (*models.Game, error)
	CancelGameFunc             func(ctx context.Context, gameID, callerID string) (*models.Game, error)
	TogglePrivacyFunc          func(ctx context.Context, gameID, callerID string) (*models.Game, error)
	TransferHostFunc           func(ctx context.Context, gameID, callerID, newHostID string) (*models.Game, error)
	JoinGameFunc               func(ctx context.Context, gameID, userID string, input services.JoinGameInput) (*models.Game, error)
	LeaveGameFunc              func(ctx context.Context, gameID, userID string) (*models.Game, error)
	RemovePlayerFunc           func(ctx context.Context, gameID, callerID, userID string) (*models.Game, error)

	calls []string
}

func (f *FakeGameService) record(name string) { f.calls = append(f.calls, name) }

func (f *FakeGameService) CreateGame(ctx context.Context, hostID string, input services.CreateGameInput) (*models.Game, error) {
	f.record("CreateGame")
	if f.CreateGameFunc == nil {
		return nil, errNotStubbed
	}
	return f.CreateGameFunc(ctx, hostID, input)
}

func (f *FakeGameService) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	f.record("GetGame")
	if f.GetGameFunc == nil {
		return &models.Game{ID: gameID}, nil
	}
	return f.GetGameFunc(ctx, gameID)
}

func (f *FakeGameService) ListGames(ctx context.Context, filter repositories.ListGamesFilter) ([]models.Game, error) {
	f.record("ListGames")
	if f.ListGamesFunc == nil {
		return []models.Game{}, nil
	}
	return f.ListGamesFunc(ctx, filter)
}

func (f *FakeGameService) UpdateGameDetails(ctx context.Context, gameID, callerID string, input services.UpdateGameInput) (*models.Game, error) {
	f.record("UpdateGameDetails")
	if f.UpdateGameDetailsFunc == nil {
		return nil, errNotStubbed
	}
	return f.UpdateGameDetailsFunc(ctx, gameID, callerID, input)
}

func (f *FakeGameService) UpdateTournamentConfig(ctx context.Context, gameID, callerID string, input services.TournamentConfigInput) (*models.Game, error) {
	f.record("UpdateTournamentConfig")
	if f.UpdateTournamentConfigFunc == nil {
		return nil, errNotStubbed
	}
	return f.UpdateTournamentConfigFunc(ctx, gameID, callerID, input)
}

func (f *FakeGameService) CancelGame(ctx context.Context, gameID, callerID string) (*models.Game, error) {
	f.record("CancelGame")
	if f.CancelGameFunc == nil {
		return nil, errNotStubbed
	}
	return f.CancelGameFunc(ctx, gameID, callerID)
}

func (f *FakeGameService) TogglePrivacy(ctx context.Context, gameID, callerID string) (*models.Game, error) {
	f.record("TogglePrivacy")
	if f.TogglePrivacyFunc == nil {
		return nil, errNotStubbed
	}
	return f.TogglePrivacyFunc(ctx, gameID, callerID)
}

func (f *FakeGameService) TransferHost(ctx context.Context, gameID, callerID, newHostID string) (*models.Game, error) {
	f.record("TransferHost")
	if f.TransferHostFunc == nil {
		return nil, errNotStubbed
	}
	return f.TransferHostFunc(ctx, gameID, callerID, newHostID)
}

func (f *FakeGameService) JoinGame(ctx context.Context, gameID, userID string, input services.JoinGameInput) (*models.Game, error) {
	f.record("JoinGame")
	if f.JoinGameFunc == nil {
		return nil, errNotStubbed
	}
	return f.JoinGameFunc(ctx, gameID, userID, input)
}

func (f *FakeGameService) LeaveGame(ctx context.Context, gameID, userID string) (*models.Game, error) {
	f.record("LeaveGame")
	if f.LeaveGameFunc == nil {
		return nil, errNotStubbed
	}
	return f.LeaveGameFunc(ctx, gameID, userID)
}

func (f *FakeGameService) RemovePlayer(ctx context.Context, gameID, callerID, userID string) (*models.Game, error) {
	f.record("RemovePlayer")
	if f.RemovePlayerFunc == nil {
		return nil, errNotStubbed
	}
	return f.RemovePlayerFunc(ctx, gameID, callerID, userID)
}

func (f *FakeGameService) AutoUpdateGameStatuses(context.Context) error {
	f.record("AutoUpdateGameStatuses")
	return nil
}

type FakeBracketService struct {
	GenerateBracketFunc    func(ctx context.Context, gameID, callerID string) (*services.BracketView, error)
	GetBracketFunc         func(ctx context.Context, gameID string) (*services.BracketView, error)
	RecordMatchResultFunc  func(ctx context.Context, gameID, callerID, matchID string, input services.MatchResultInput) (*services.BracketView, error)
	CorrectMatchResultFunc func(ctx context.Context, gameID, callerID, matchID string, input services.MatchResultInput) (*services.BracketView, error)
}

func (f *FakeBracketService) GenerateBracket(ctx context.Context, gameID, callerID string) (*services.BracketView, error) {
	if f.GenerateBracketFunc == nil {
		return nil, errNotStubbed
	}
	return f.GenerateBracketFunc(ctx, gameID, callerID)
}

func (f *FakeBracketService) GetBracket(ctx context.Context, gameID string) (*services.BracketView, error) {
	if f.GetBracketFunc == nil {
		return nil, errNotStubbed
	}
	return f.GetBracketFunc(ctx, gameID)
}

func (f *FakeBracketService) RecordMatchResult(ctx context.Context, gameID, callerID, matchID string, input services.MatchResultInput) (*services.BracketView, error) {
	if f.RecordMatchResultFunc == nil {
		return nil, errNotStubbed
	}
	return f.RecordMatchResultFunc(ctx, gameID, callerID, matchID, input)
}

func (f *FakeBracketService) CorrectMatchResult(ctx context.Context, gameID, callerID, matchID string, input services.MatchResultInput) (*services.BracketView, error) {
	if f.CorrectMatchResultFunc == nil {
		return nil, errNotStubbed
	}
	return f.CorrectMatchResultFunc(ctx, gameID, callerID, matchID, input)
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }
