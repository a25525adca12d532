package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/pegsolitaire-backend/internal/apperror"
	"github.com/rocketscienceinc/pegsolitaire-backend/internal/entity"
	"github.com/rocketscienceinc/pegsolitaire-backend/internal/repository"
	"github.com/rocketscienceinc/pegsolitaire-backend/internal/solitaire"
)

var errRedisDown = errors.New("redis down")

type fixture struct {
	players *mockPlayerRepo
	games   *mockGameRepo
	results *mockResultRepo
	manager *GameManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		players: &mockPlayerRepo{},
		games:   &mockGameRepo{},
		results: &mockResultRepo{},
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	f.manager = NewGameManager(logger, f.players, f.games, f.results)
	f.manager.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

	t.Cleanup(func() {
		f.players.AssertExpectations(t)
		f.games.AssertExpectations(t)
		f.results.AssertExpectations(t)
	})

	return f
}

func pos(x, y int) entity.Position {
	return entity.Position{X: x, Y: y}
}

func TestGameManager_GetOrCreatePlayer(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a new player when playerID is empty", func(t *testing.T) {
		f := newFixture(t)
		f.players.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Player")).Return(nil).Once()

		player, err := f.manager.GetOrCreatePlayer(ctx, "")

		require.NoError(t, err)
		assert.NotEmpty(t, player.ID)
	})

	t.Run("Returns existing player", func(t *testing.T) {
		f := newFixture(t)
		existing := &entity.Player{ID: "p1", GameID: "g1"}
		f.players.On("GetByID", ctx, "p1").Return(existing, nil).Once()

		player, err := f.manager.GetOrCreatePlayer(ctx, "p1")

		require.NoError(t, err)
		assert.Equal(t, existing, player)
	})

	t.Run("Registers an unknown player under the given ID", func(t *testing.T) {
		f := newFixture(t)
		f.players.On("GetByID", ctx, "p1").Return(nil, repository.ErrPlayerNotFound).Once()
		f.players.On("CreateOrUpdate", ctx, &entity.Player{ID: "p1"}).Return(nil).Once()

		player, err := f.manager.GetOrCreatePlayer(ctx, "p1")

		require.NoError(t, err)
		assert.Equal(t, "p1", player.ID)
	})

	t.Run("Returns error if storage fails", func(t *testing.T) {
		f := newFixture(t)
		f.players.On("GetByID", ctx, "p1").Return(nil, errRedisDown).Once()

		player, err := f.manager.GetOrCreatePlayer(ctx, "p1")

		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, player)
	})
}

func TestGameManager_GetOrCreateGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a new game when player has none", func(t *testing.T) {
		// Given: a player without a game
		f := newFixture(t)
		f.players.On("GetByID", ctx, "p1").Return(&entity.Player{ID: "p1"}, nil).Once()
		f.games.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Game")).Return(nil).Once()
		f.players.On("CreateOrUpdate", ctx, mock.MatchedBy(func(p *entity.Player) bool {
			return p.ID == "p1" && p.GameID != ""
		})).Return(nil).Once()

		// When: asking for the game
		game, err := f.manager.GetOrCreateGame(ctx, "p1")

		// Then: a fresh board is dealt
		require.NoError(t, err)
		assert.Equal(t, "p1", game.PlayerID)
		assert.Equal(t, entity.NewBoard(), game.Board)
		assert.Equal(t, entity.StatusOngoing, game.Status)
	})

	t.Run("Returns the existing game", func(t *testing.T) {
		f := newFixture(t)
		existing := entity.NewGame("g1", "p1")
		f.players.On("GetByID", ctx, "p1").Return(&entity.Player{ID: "p1", GameID: "g1"}, nil).Once()
		f.games.On("GetByID", ctx, "g1").Return(existing, nil).Once()

		game, err := f.manager.GetOrCreateGame(ctx, "p1")

		require.NoError(t, err)
		assert.Equal(t, existing, game)
	})

	t.Run("Replaces a game that has disappeared", func(t *testing.T) {
		f := newFixture(t)
		f.players.On("GetByID", ctx, "p1").Return(&entity.Player{ID: "p1", GameID: "g1"}, nil).Once()
		f.games.On("GetByID", ctx, "g1").Return(nil, repository.ErrGameNotFound).Once()
		f.games.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Game")).Return(nil).Once()
		f.players.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Player")).Return(nil).Once()

		game, err := f.manager.GetOrCreateGame(ctx, "p1")

		require.NoError(t, err)
		assert.NotEqual(t, "g1", game.ID)
	})
}

func TestGameManager_RestartGame(t *testing.T) {
	ctx := context.Background()

	// Given: a player in the middle of a game
	f := newFixture(t)
	f.players.On("GetByID", ctx, "p1").Return(&entity.Player{ID: "p1", GameID: "g1"}, nil).Once()
	f.games.On("DeleteByID", ctx, "g1").Return(nil).Once()
	f.games.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Game")).Return(nil).Once()
	f.players.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Player")).Return(nil).Once()

	// When: restarting
	game, err := f.manager.RestartGame(ctx, "p1")

	// Then: the old game is removed and a new board is dealt
	require.NoError(t, err)
	assert.NotEqual(t, "g1", game.ID)
	assert.Equal(t, 32, game.PegCount)
}

func TestGameManager_MakeMove(t *testing.T) {
	ctx := context.Background()

	t.Run("Accepts a legal drop and notifies listeners", func(t *testing.T) {
		// Given: a new game and a subscribed listener
		f := newFixture(t)
		game := entity.NewGame("g1", "p1")
		f.players.On("GetByID", ctx, "p1").Return(&entity.Player{ID: "p1", GameID: "g1"}, nil).Once()
		f.games.On("GetByID", ctx, "g1").Return(game, nil).Once()
		f.games.On("CreateOrUpdate", ctx, game).Return(nil).Once()

		listener := &recordingListener{}
		unsubscribe := f.manager.Subscribe("p1", listener)
		defer unsubscribe()

		// When: the peg at (3,1) is dropped on the center
		updated, err := f.manager.MakeMove(ctx, "p1", pos(3, 1), pos(3, 3))

		// Then: the move is applied, stored and announced
		require.NoError(t, err)
		assert.Equal(t, entity.Peg, updated.Board.At(entity.Center))
		assert.Equal(t, 31, updated.PegCount)
		assert.Equal(t, []entity.Move{{From: pos(3, 1), Direction: entity.Down}}, listener.moves)
		assert.Empty(t, listener.finished)
	})

	t.Run("Refuses a drop that is not a jump", func(t *testing.T) {
		f := newFixture(t)
		game := entity.NewGame("g1", "p1")
		f.players.On("GetByID", ctx, "p1").Return(&entity.Player{ID: "p1", GameID: "g1"}, nil).Once()
		f.games.On("GetByID", ctx, "g1").Return(game, nil).Once()

		_, err := f.manager.MakeMove(ctx, "p1", pos(3, 1), pos(3, 2))

		require.ErrorIs(t, err, apperror.ErrIllegalMove)
		require.ErrorIs(t, err, solitaire.ErrNotAJump)
	})

	t.Run("Refuses an illegal jump without storing anything", func(t *testing.T) {
		f := newFixture(t)
		game := entity.NewGame("g1", "p1")
		f.players.On("GetByID", ctx, "p1").Return(&entity.Player{ID: "p1", GameID: "g1"}, nil).Once()
		f.games.On("GetByID", ctx, "g1").Return(game, nil).Once()

		returned, err := f.manager.MakeMove(ctx, "p1", pos(3, 0), pos(3, 2))

		require.ErrorIs(t, err, apperror.ErrIllegalMove)
		assert.Equal(t, entity.NewBoard(), returned.Board)
	})

	t.Run("Finishing move archives the result and notifies", func(t *testing.T) {
		// Given: a board one jump away from a loss
		f := newFixture(t)
		game := entity.NewGame("g1", "p1")
		for x := range entity.BoardSize {
			for y := range entity.BoardSize {
				game.Board.Set(pos(x, y), entity.Empty)
			}
		}
		game.Board.Set(pos(3, 1), entity.Peg)
		game.Board.Set(pos(3, 2), entity.Peg)
		game.Board.Set(pos(0, 2), entity.Peg)

		f.players.On("GetByID", ctx, "p1").Return(&entity.Player{ID: "p1", GameID: "g1"}, nil).Once()
		f.games.On("GetByID", ctx, "g1").Return(game, nil).Once()
		f.games.On("CreateOrUpdate", ctx, game).Return(nil).Once()
		f.results.On("Save", ctx, &entity.Result{
			GameID:     "g1",
			PlayerID:   "p1",
			Status:     entity.StatusLost,
			PegsLeft:   2,
			Moves:      1,
			FinishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}).Return(nil).Once()

		listener := &recordingListener{}
		unsubscribe := f.manager.Subscribe("p1", listener)
		defer unsubscribe()

		// When: the last possible jump is made
		updated, err := f.manager.MakeMove(ctx, "p1", pos(3, 1), pos(3, 3))

		// Then: the game is lost, archived and announced
		require.NoError(t, err)
		assert.Equal(t, entity.StatusLost, updated.Status)
		assert.Equal(t, []string{entity.StatusLost}, listener.finished)
	})

	t.Run("Finished games are frozen", func(t *testing.T) {
		f := newFixture(t)
		game := entity.NewGame("g1", "p1")
		game.Status = entity.StatusWon
		f.players.On("GetByID", ctx, "p1").Return(&entity.Player{ID: "p1", GameID: "g1"}, nil).Once()
		f.games.On("GetByID", ctx, "g1").Return(game, nil).Once()

		_, err := f.manager.MakeMove(ctx, "p1", pos(3, 1), pos(3, 3))

		require.ErrorIs(t, err, apperror.ErrGameFinished)
	})

	t.Run("Player without a game", func(t *testing.T) {
		f := newFixture(t)
		f.players.On("GetByID", ctx, "p1").Return(&entity.Player{ID: "p1"}, nil).Once()

		_, err := f.manager.MakeMove(ctx, "p1", pos(3, 1), pos(3, 3))

		require.ErrorIs(t, err, apperror.ErrNoActiveGames)
	})
}

func TestGameManager_Hint(t *testing.T) {
	ctx := context.Background()

	t.Run("Suggests a move on the opening board", func(t *testing.T) {
		f := newFixture(t)
		game := entity.NewGame("g1", "p1")
		f.players.On("GetByID", ctx, "p1").Return(&entity.Player{ID: "p1", GameID: "g1"}, nil).Once()
		f.games.On("GetByID", ctx, "g1").Return(game, nil).Once()

		move, err := f.manager.Hint(ctx, "p1")

		require.NoError(t, err)
		assert.True(t, solitaire.IsLegalMove(&game.Board, move.From, move.Direction))
	})

	t.Run("Falls back to the first legal move when no winning line is found", func(t *testing.T) {
		// Given: the opening board missing an edge peg, which can never finish on the center
		f := newFixture(t)
		f.manager.hintBudget = 20 * time.Millisecond
		game := entity.NewGame("g1", "p1")
		game.Board.Set(pos(0, 3), entity.Empty)
		f.players.On("GetByID", ctx, "p1").Return(&entity.Player{ID: "p1", GameID: "g1"}, nil).Once()
		f.games.On("GetByID", ctx, "g1").Return(game, nil).Once()

		// When: a hint is requested
		start := time.Now()
		move, err := f.manager.Hint(ctx, "p1")

		// Then: the first legal move comes back without waiting on a full search
		require.NoError(t, err)
		assert.Equal(t, solitaire.LegalMoves(&game.Board)[0], move)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("No legal moves left", func(t *testing.T) {
		// Given: a game still marked ongoing whose two pegs cannot reach each other
		f := newFixture(t)
		game := entity.NewGame("g1", "p1")
		for x := range entity.BoardSize {
			for y := range entity.BoardSize {
				game.Board.Set(pos(x, y), entity.Empty)
			}
		}
		game.Board.Set(pos(2, 2), entity.Peg)
		game.Board.Set(pos(4, 4), entity.Peg)
		f.players.On("GetByID", ctx, "p1").Return(&entity.Player{ID: "p1", GameID: "g1"}, nil).Once()
		f.games.On("GetByID", ctx, "g1").Return(game, nil).Once()

		_, err := f.manager.Hint(ctx, "p1")

		require.ErrorIs(t, err, apperror.ErrNoMoves)
	})

	t.Run("No hint for a finished game", func(t *testing.T) {
		f := newFixture(t)
		game := entity.NewGame("g1", "p1")
		game.Status = entity.StatusLost
		f.players.On("GetByID", ctx, "p1").Return(&entity.Player{ID: "p1", GameID: "g1"}, nil).Once()
		f.games.On("GetByID", ctx, "g1").Return(game, nil).Once()

		_, err := f.manager.Hint(ctx, "p1")

		require.ErrorIs(t, err, apperror.ErrGameFinished)
	})
}

func TestGameManager_Results(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t)
	expected := []*entity.Result{{GameID: "g1", PlayerID: "p1", Status: entity.StatusWon}}
	f.results.On("ListByPlayer", ctx, "p1", defaultResultsLimit).Return(expected, nil).Once()

	results, err := f.manager.Results(ctx, "p1", 0)

	require.NoError(t, err)
	assert.Equal(t, expected, results)
}

func TestGameManager_Subscribe(t *testing.T) {
	f := newFixture(t)
	listener := &recordingListener{}

	// Given: a subscribed listener
	unsubscribe := f.manager.Subscribe("p1", listener)
	require.Len(t, f.manager.listeners.snapshot("p1"), 1)

	// When: it unsubscribes twice
	unsubscribe()
	unsubscribe()

	// Then: it is gone and no longer notified
	assert.Empty(t, f.manager.listeners.snapshot("p1"))

	f.manager.listeners.notifyMove(&entity.Game{PlayerID: "p1"}, entity.Move{})
	assert.Empty(t, listener.moves)
}
