package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/pegsolitaire-backend/internal/apperror"
	"github.com/rocketscienceinc/pegsolitaire-backend/internal/entity"
	"github.com/rocketscienceinc/pegsolitaire-backend/internal/pkg"
	"github.com/rocketscienceinc/pegsolitaire-backend/internal/repository"
	"github.com/rocketscienceinc/pegsolitaire-backend/internal/solitaire"
)

const (
	defaultResultsLimit = 20
	defaultHintBudget   = 250 * time.Millisecond
)

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type resultRepo interface {
	Save(ctx context.Context, result *entity.Result) error
	ListByPlayer(ctx context.Context, playerID string, limit int) ([]*entity.Result, error)
}

type GameManager struct {
	logger     *slog.Logger
	playerRepo playerRepo
	gameRepo   gameRepo
	resultRepo resultRepo

	listeners  *listeners
	locks      *playerLocks
	now        func() time.Time
	hintBudget time.Duration
}

func NewGameManager(logger *slog.Logger, playerRepo playerRepo, gameRepo gameRepo, resultRepo resultRepo) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		resultRepo: resultRepo,

		listeners:  newListeners(),
		locks:      newPlayerLocks(),
		now:        time.Now,
		hintBudget: defaultHintBudget,
	}
}

// Subscribe registers a listener for the player's games until the returned func is called.
func (that *GameManager) Subscribe(playerID string, listener MoveListener) func() {
	return that.listeners.subscribe(playerID, listener)
}

func (that *GameManager) GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error) {
	if id == "" {
		return that.createPlayer(ctx, pkg.GenerateNewSessionID())
	}

	player, err := that.playerRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrPlayerNotFound) {
		return that.createPlayer(ctx, id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return player, nil
}

// GetOrCreateGame returns the player's current game, starting a new one when there is none.
func (that *GameManager) GetOrCreateGame(ctx context.Context, playerID string) (*entity.Game, error) {
	unlock := that.locks.lock(playerID)
	defer unlock()

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if player.GameID == "" {
		return that.createGame(ctx, player)
	}

	game, err := that.gameRepo.GetByID(ctx, player.GameID)
	if errors.Is(err, repository.ErrGameNotFound) {
		return that.createGame(ctx, player)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// RestartGame throws the current board away and deals a fresh one.
func (that *GameManager) RestartGame(ctx context.Context, playerID string) (*entity.Game, error) {
	unlock := that.locks.lock(playerID)
	defer unlock()

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if player.GameID != "" {
		that.deleteGame(ctx, player.GameID)
	}

	return that.createGame(ctx, player)
}

// MakeMove plays the drop of the peg at from onto to. A refused move leaves the stored game untouched.
func (that *GameManager) MakeMove(ctx context.Context, playerID string, from, to entity.Position) (*entity.Game, error) {
	log := that.logger.With("method", "MakeMove", "player_id", playerID)

	unlock := that.locks.lock(playerID)
	defer unlock()

	game, err := that.currentGame(ctx, playerID)
	if err != nil {
		return nil, err
	}

	direction, err := solitaire.MoveFromDrop(from, to)
	if err != nil {
		return game, fmt.Errorf("%w: %w", apperror.ErrIllegalMove, err)
	}

	move := entity.Move{From: from, Direction: direction}
	if err = solitaire.MakeMove(game, move); err != nil {
		return game, fmt.Errorf("failed make move: %w", err)
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	log.Debug("move accepted", "move", move.String(), "pegs", game.PegCount)
	that.listeners.notifyMove(game, move)

	if game.IsFinished() {
		log.Info("game finished", "game_id", game.ID, "status", game.Status, "pegs", game.PegCount)

		if err = that.resultRepo.Save(ctx, entity.NewResult(game, that.now())); err != nil {
			log.Error("failed to archive result", "error", err)
		}

		that.listeners.notifyFinished(game)
	}

	return game, nil
}

// Hint suggests the next move: the first step of a winning line when one is found
// within the hint budget, otherwise the first legal move.
// The search runs on a copy of the board without holding the player's lock.
func (that *GameManager) Hint(ctx context.Context, playerID string) (entity.Move, error) {
	board, err := that.hintBoard(ctx, playerID)
	if err != nil {
		return entity.Move{}, err
	}

	searchCtx, cancel := context.WithTimeout(ctx, that.hintBudget)
	defer cancel()

	if moves, ok := solitaire.Solve(searchCtx, board); ok && len(moves) > 0 {
		return moves[0], nil
	}

	moves := solitaire.LegalMoves(&board)
	if len(moves) == 0 {
		return entity.Move{}, apperror.ErrNoMoves
	}

	return moves[0], nil
}

func (that *GameManager) hintBoard(ctx context.Context, playerID string) (entity.Board, error) {
	unlock := that.locks.lock(playerID)
	defer unlock()

	game, err := that.currentGame(ctx, playerID)
	if err != nil {
		return entity.Board{}, err
	}

	if err = game.ConfirmOngoingState(); err != nil {
		return entity.Board{}, err
	}

	return game.Board, nil
}

func (that *GameManager) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

func (that *GameManager) Results(ctx context.Context, playerID string, limit int) ([]*entity.Result, error) {
	if limit <= 0 {
		limit = defaultResultsLimit
	}

	results, err := that.resultRepo.ListByPlayer(ctx, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	return results, nil
}

func (that *GameManager) currentGame(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if player.GameID == "" {
		return nil, apperror.ErrNoActiveGames
	}

	game, err := that.gameRepo.GetByID(ctx, player.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

func (that *GameManager) createGame(ctx context.Context, player *entity.Player) (*entity.Game, error) {
	game := entity.NewGame(pkg.GenerateGameID(), player.ID)

	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	player.GameID = game.ID
	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	return game, nil
}

func (that *GameManager) deleteGame(ctx context.Context, gameID string) {
	log := that.logger.With("method", "deleteGame", "game_id", gameID)

	if err := that.gameRepo.DeleteByID(ctx, gameID); err != nil && !errors.Is(err, repository.ErrGameNotFound) {
		log.Error("failed to delete game", "error", err)
		return
	}

	log.Info("game deleted")
}

func (that *GameManager) createPlayer(ctx context.Context, id string) (*entity.Player, error) {
	player := &entity.Player{ID: id}

	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return player, nil
}

func (that *GameManager) getPlayerByID(ctx context.Context, id string) (*entity.Player, error) {
	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}
