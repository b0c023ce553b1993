package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/hooplink/hooplink-api/brackets"
	"github.com/hooplink/hooplink-api/models"
	"github.com/hooplink/hooplink-api/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBracket(t *testing.T, ids []string) brackets.Bracket {
	t.Helper()
	roster := make([]brackets.Entrant, len(ids))
	for i, id := range ids {
		roster[i] = brackets.Entrant(id)
	}
	b, err := brackets.NewSingleEliminationGenerator(brackets.WithRand(keepOrder{})).GenerateBracket(
		context.Background(), brackets.GenerateBracketParams{Roster: roster, BracketSize: len(ids)})
	require.NoError(t, err)
	return b
}

type bracketFixture struct {
	store    *FakeStore
	notifier *FakeNotifier
	uploader *FakeUploader
	service  *bracketService
}

func newBracketFixture(t *testing.T) *bracketFixture {
	t.Helper()
	store := NewFakeStore()
	notifier := &FakeNotifier{}
	uploader := &FakeUploader{}
	return &bracketFixture{
		store:    store,
		notifier: notifier,
		uploader: uploader,
		service: &bracketService{
			tx:              &FakeTransactor{},
			gameRepo:        store,
			participantRepo: store.ParticipantRepo(),
			generator:       brackets.NewSingleEliminationGenerator(brackets.WithRand(keepOrder{})),
			notifier:        notifier,
			uploader:        uploader,
			logger:          slog.Default(),
			now:             func() time.Time { return startsAt },
		},
	}
}

// fourPlayerTournament seeds a full four-player tournament owned by "host".
func (f *bracketFixture) fourPlayerTournament() {
	seedGame(f.store, "g1", tournament(4))
	f.store.Seat("g1", models.ParticipantConfirmed, "A", "B", "C", "D")
}

func scores(s1, s2 int) MatchResultInput {
	return MatchResultInput{Score1: &s1, Score2: &s2}
}

func scoresWithWinner(s1, s2 int, winner string) MatchResultInput {
	in := scores(s1, s2)
	in.WinnerID = winner
	return in
}

func TestGenerateBracket(t *testing.T) {
	f := newBracketFixture(t)
	f.fourPlayerTournament()
	f.store.Seat("g1", models.ParticipantMaybe, "E")

	view, err := f.service.GenerateBracket(context.Background(), "g1", "host")
	require.NoError(t, err)

	assert.Equal(t, models.StatusActive, view.Status)
	assert.Equal(t, 2, view.Rounds)
	assert.False(t, view.Complete)
	require.Len(t, view.Bracket, 3)
	assert.Equal(t, brackets.Entrant("A"), view.Bracket[0].Entrant1, "roster is taken in join order")
	assert.Equal(t, brackets.Entrant("D"), view.Bracket[1].Entrant2)

	stored := f.store.Game("g1")
	assert.Equal(t, models.StatusActive, stored.Status)
	assert.Equal(t, view.Bracket, stored.Bracket)

	assert.Equal(t, []string{brackets.EventBracketGenerated}, f.notifier.Types())
	assert.Equal(t, brackets.GameRoom("g1"), f.notifier.Last().RoomID)
}

func TestGenerateBracket_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, store *FakeStore)
		caller  string
		wantErr error
	}{
		{
			name: "roster not full",
			setup: func(t *testing.T, store *FakeStore) {
				seedGame(store, "g1", tournament(4))
				store.Seat("g1", models.ParticipantConfirmed, "A", "B", "C")
				store.Seat("g1", models.ParticipantMaybe, "D")
			},
			caller:  "host",
			wantErr: ErrRosterNotFull,
		},
		{
			name: "bracket exists",
			setup: func(t *testing.T, store *FakeStore) {
				seedGame(store, "g1", func(g *models.Game) {
					tournament(4)(g)
					g.Bracket = mustBracket(t, []string{"A", "B", "C", "D"})
				})
				store.Seat("g1", models.ParticipantConfirmed, "A", "B", "C", "D")
			},
			caller:  "host",
			wantErr: ErrBracketExists,
		},
		{
			name: "not the host",
			setup: func(t *testing.T, store *FakeStore) {
				seedGame(store, "g1", tournament(4))
				store.Seat("g1", models.ParticipantConfirmed, "A", "B", "C", "D")
			},
			caller:  "A",
			wantErr: ErrForbiddenOperation,
		},
		{
			name: "standard game",
			setup: func(t *testing.T, store *FakeStore) {
				seedGame(store, "g1", nil)
			},
			caller:  "host",
			wantErr: ErrNotTournament,
		},
		{
			name: "cancelled game",
			setup: func(t *testing.T, store *FakeStore) {
				seedGame(store, "g1", func(g *models.Game) {
					tournament(4)(g)
					g.Status = models.StatusCancelled
				})
				store.Seat("g1", models.ParticipantConfirmed, "A", "B", "C", "D")
			},
			caller:  "host",
			wantErr: ErrGameClosed,
		},
		{
			name:    "unknown game",
			setup:   func(t *testing.T, store *FakeStore) {},
			caller:  "host",
			wantErr: ErrGameNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBracketFixture(t)
			tt.setup(t, f.store)
			before := f.store.Game("g1")

			_, err := f.service.GenerateBracket(context.Background(), "g1", tt.caller)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, f.store.Game("g1"), "stored game must be unchanged")
			assert.Empty(t, f.notifier.Types())
		})
	}
}

func TestTournamentLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newBracketFixture(t)
	f.fourPlayerTournament()

	_, err := f.service.GenerateBracket(ctx, "g1", "host")
	require.NoError(t, err)

	view, err := f.service.RecordMatchResult(ctx, "g1", "host", "r1-m0", scoresWithWinner(21, 15, "A"))
	require.NoError(t, err)
	final, _ := view.Bracket.Match("r2-m0")
	assert.Equal(t, brackets.Entrant("A"), final.Entrant1)

	msg := f.notifier.Last()
	assert.Equal(t, brackets.EventMatchUpdated, msg.Type)
	payload, ok := msg.Payload.(MatchUpdatedPayload)
	require.True(t, ok)
	assert.Equal(t, "r1-m0", payload.Match.ID)
	require.NotNil(t, payload.Next)
	assert.Equal(t, "r2-m0", payload.Next.ID)

	_, err = f.service.RecordMatchResult(ctx, "g1", "host", "r1-m1", scores(18, 21))
	require.NoError(t, err)

	view, err = f.service.RecordMatchResult(ctx, "g1", "host", "r2-m0", scores(21, 19))
	require.NoError(t, err)
	assert.True(t, view.Complete)
	assert.Equal(t, models.StatusCompleted, view.Status)
	require.NotNil(t, view.ChampionID)
	assert.Equal(t, "A", *view.ChampionID)

	stored := f.store.Game("g1")
	assert.Equal(t, models.StatusCompleted, stored.Status)
	assert.Equal(t, "A", derefString(stored.ChampionID))
	assert.Equal(t, "https://cdn.test/brackets/g1.json", derefString(stored.BracketArchiveURL))

	require.Len(t, f.uploader.Keys, 1)
	assert.Equal(t, "brackets/g1.json", f.uploader.Keys[0])
	var archived bracketArchive
	require.NoError(t, json.Unmarshal(f.uploader.Bodies[0], &archived))
	assert.Equal(t, "A", archived.ChampionID)
	assert.Equal(t, 4, archived.BracketSize)
	assert.Equal(t, stored.Bracket, archived.Bracket)

	assert.Equal(t, []string{
		brackets.EventBracketGenerated,
		brackets.EventMatchUpdated,
		brackets.EventMatchUpdated,
		brackets.EventMatchUpdated,
		brackets.EventTournamentCompleted,
	}, f.notifier.Types())
	done, ok := f.notifier.Last().Payload.(TournamentCompletedPayload)
	require.True(t, ok)
	assert.Equal(t, "A", done.ChampionID)
	assert.Equal(t, "https://cdn.test/brackets/g1.json", done.ArchiveURL)
}

func TestRecordMatchResult_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		caller  string
		matchID string
		input   MatchResultInput
		wantErr error
	}{
		{name: "missing scores", caller: "host", matchID: "r1-m0", input: MatchResultInput{WinnerID: "A"}, wantErr: ErrValidationFailed},
		{name: "not the host", caller: "A", matchID: "r1-m0", input: scores(21, 10), wantErr: ErrForbiddenOperation},
		{name: "unknown match", caller: "host", matchID: "r7-m0", input: scores(21, 10), wantErr: brackets.ErrMatchNotFound},
		{name: "final not ready", caller: "host", matchID: "r2-m0", input: scores(21, 10), wantErr: brackets.ErrMatchNotReady},
		{name: "winner not in match", caller: "host", matchID: "r1-m0", input: scoresWithWinner(21, 10, "C"), wantErr: brackets.ErrInvalidWinner},
		{name: "tie", caller: "host", matchID: "r1-m0", input: scores(10, 10), wantErr: brackets.ErrAmbiguousResult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBracketFixture(t)
			f.fourPlayerTournament()
			_, err := f.service.GenerateBracket(ctx, "g1", "host")
			require.NoError(t, err)
			before := f.store.Game("g1")

			_, err = f.service.RecordMatchResult(ctx, "g1", tt.caller, tt.matchID, tt.input)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, f.store.Game("g1"))
			assert.Equal(t, []string{brackets.EventBracketGenerated}, f.notifier.Types())
		})
	}
}

func TestRecordMatchResult_NoBracket(t *testing.T) {
	f := newBracketFixture(t)
	f.fourPlayerTournament()

	_, err := f.service.RecordMatchResult(context.Background(), "g1", "host", "r1-m0", scores(21, 10))
	assert.ErrorIs(t, err, ErrBracketNotCreated)
}

func TestRecordMatchResult_AlreadyDecided(t *testing.T) {
	ctx := context.Background()
	f := newBracketFixture(t)
	f.fourPlayerTournament()
	_, err := f.service.GenerateBracket(ctx, "g1", "host")
	require.NoError(t, err)
	_, err = f.service.RecordMatchResult(ctx, "g1", "host", "r1-m0", scores(21, 10))
	require.NoError(t, err)

	_, err = f.service.RecordMatchResult(ctx, "g1", "host", "r1-m0", scores(10, 21))
	assert.ErrorIs(t, err, brackets.ErrMatchAlreadyDecided)
}

func TestRecordMatchResult_StoreFailure(t *testing.T) {
	ctx := context.Background()
	f := newBracketFixture(t)
	f.fourPlayerTournament()
	_, err := f.service.GenerateBracket(ctx, "g1", "host")
	require.NoError(t, err)

	boom := errors.New("connection reset")
	f.store.UpdateBracketFunc = func(context.Context, string, brackets.Bracket) error { return boom }

	_, err = f.service.RecordMatchResult(ctx, "g1", "host", "r1-m0", scores(21, 10))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{brackets.EventBracketGenerated}, f.notifier.Types(), "nothing is announced for a failed write")
}

func TestCorrectMatchResult(t *testing.T) {
	ctx := context.Background()
	f := newBracketFixture(t)
	f.fourPlayerTournament()
	_, err := f.service.GenerateBracket(ctx, "g1", "host")
	require.NoError(t, err)

	_, err = f.service.CorrectMatchResult(ctx, "g1", "host", "r1-m0", scores(10, 21))
	assert.ErrorIs(t, err, brackets.ErrMatchNotDecided)

	_, err = f.service.RecordMatchResult(ctx, "g1", "host", "r1-m0", scores(21, 10))
	require.NoError(t, err)

	view, err := f.service.CorrectMatchResult(ctx, "g1", "host", "r1-m0", scores(10, 21))
	require.NoError(t, err)
	final, _ := view.Bracket.Match("r2-m0")
	assert.Equal(t, brackets.Entrant("B"), final.Entrant1)

	payload, ok := f.notifier.Last().Payload.(MatchUpdatedPayload)
	require.True(t, ok)
	assert.True(t, payload.Corrected)

	_, err = f.service.RecordMatchResult(ctx, "g1", "host", "r1-m1", scores(21, 10))
	require.NoError(t, err)
	_, err = f.service.RecordMatchResult(ctx, "g1", "host", "r2-m0", scores(21, 10))
	require.NoError(t, err)
	assert.Equal(t, "B", derefString(f.store.Game("g1").ChampionID))

	_, err = f.service.CorrectMatchResult(ctx, "g1", "host", "r1-m0", scores(21, 10))
	assert.ErrorIs(t, err, brackets.ErrDownstreamDecided)

	view, err = f.service.CorrectMatchResult(ctx, "g1", "host", "r2-m0", scores(10, 21))
	require.NoError(t, err)
	assert.Equal(t, "C", derefString(view.ChampionID))
	assert.Equal(t, "C", derefString(f.store.Game("g1").ChampionID))
	assert.Equal(t, models.StatusCompleted, f.store.Game("g1").Status)
	assert.Len(t, f.uploader.Keys, 2, "a new champion re-archives the bracket")
}

func TestCorrectMatchResult_FinalScoreRearchives(t *testing.T) {
	ctx := context.Background()
	f := newBracketFixture(t)
	f.fourPlayerTournament()
	_, err := f.service.GenerateBracket(ctx, "g1", "host")
	require.NoError(t, err)
	for _, id := range []string{"r1-m0", "r1-m1", "r2-m0"} {
		_, err = f.service.RecordMatchResult(ctx, "g1", "host", id, scores(21, 10))
		require.NoError(t, err)
	}
	require.Len(t, f.uploader.Bodies, 1)
	traced := len(f.store.Trace())

	view, err := f.service.CorrectMatchResult(ctx, "g1", "host", "r2-m0", scores(21, 5))
	require.NoError(t, err)
	assert.NotContains(t, f.store.Trace()[traced:], "UpdateChampion", "champion is unchanged")
	assert.Equal(t, "A", derefString(view.ChampionID))
	assert.Equal(t, models.StatusCompleted, view.Status)

	require.Len(t, f.uploader.Bodies, 2, "a corrected final re-archives the bracket")
	var archived bracketArchive
	require.NoError(t, json.Unmarshal(f.uploader.Bodies[1], &archived))
	final, ok := archived.Bracket.Match("r2-m0")
	require.True(t, ok)
	require.NotNil(t, final.Score2)
	assert.Equal(t, 5, *final.Score2)
	assert.Equal(t, "A", archived.ChampionID)
	assert.Equal(t, f.store.Game("g1").Bracket, archived.Bracket)

	types := f.notifier.Types()
	assert.Equal(t, []string{brackets.EventMatchUpdated, brackets.EventTournamentCompleted}, types[len(types)-2:])
}

func TestCompletion_ArchiveFailureDoesNotFailResult(t *testing.T) {
	ctx := context.Background()
	f := newBracketFixture(t)
	f.fourPlayerTournament()
	f.uploader.UploadFunc = func(context.Context, string, string, []byte) (*storage.UploadResult, error) {
		return nil, errors.New("bucket unavailable")
	}
	_, err := f.service.GenerateBracket(ctx, "g1", "host")
	require.NoError(t, err)

	for _, id := range []string{"r1-m0", "r1-m1", "r2-m0"} {
		_, err = f.service.RecordMatchResult(ctx, "g1", "host", id, scores(21, 10))
		require.NoError(t, err)
	}

	stored := f.store.Game("g1")
	assert.Equal(t, models.StatusCompleted, stored.Status)
	assert.Nil(t, stored.BracketArchiveURL)
	assert.Equal(t, brackets.EventTournamentCompleted, f.notifier.Last().Type)
}

func TestCompletion_WithoutUploader(t *testing.T) {
	ctx := context.Background()
	f := newBracketFixture(t)
	f.service.uploader = nil
	f.fourPlayerTournament()
	_, err := f.service.GenerateBracket(ctx, "g1", "host")
	require.NoError(t, err)

	for _, id := range []string{"r1-m0", "r1-m1", "r2-m0"} {
		_, err = f.service.RecordMatchResult(ctx, "g1", "host", id, scores(10, 21))
		require.NoError(t, err)
	}

	stored := f.store.Game("g1")
	assert.Equal(t, "D", derefString(stored.ChampionID))
	assert.Nil(t, stored.BracketArchiveURL)
}

func TestGetBracket(t *testing.T) {
	ctx := context.Background()
	f := newBracketFixture(t)
	f.fourPlayerTournament()
	seedGame(f.store, "standard", nil)

	_, err := f.service.GetBracket(ctx, "g1")
	assert.ErrorIs(t, err, ErrBracketNotCreated)

	_, err = f.service.GetBracket(ctx, "standard")
	assert.ErrorIs(t, err, ErrNotTournament)

	_, err = f.service.GetBracket(ctx, "missing")
	assert.ErrorIs(t, err, ErrGameNotFound)

	_, err = f.service.GenerateBracket(ctx, "g1", "host")
	require.NoError(t, err)
	view, err := f.service.GetBracket(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "g1", view.GameID)
	assert.Len(t, view.Bracket, 3)
	assert.Nil(t, view.ChampionID)
}
