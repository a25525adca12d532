package usecase

import (
	"sync"

	"github.com/rocketscienceinc/pegsolitaire-backend/internal/entity"
)

// MoveListener is told about every accepted move and about the end of a game.
// Calls happen synchronously on the goroutine that made the move.
type MoveListener interface {
	OnMove(game *entity.Game, move entity.Move)
	OnGameFinished(game *entity.Game)
}

type listeners struct {
	mu       sync.RWMutex
	nextID   uint64
	byPlayer map[string]map[uint64]MoveListener
}

func newListeners() *listeners {
	return &listeners{
		byPlayer: make(map[string]map[uint64]MoveListener),
	}
}

// subscribe registers listener for playerID. The returned func removes it and is safe to call more than once.
func (that *listeners) subscribe(playerID string, listener MoveListener) func() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.nextID++
	id := that.nextID

	if that.byPlayer[playerID] == nil {
		that.byPlayer[playerID] = make(map[uint64]MoveListener)
	}
	that.byPlayer[playerID][id] = listener

	var once sync.Once

	return func() {
		once.Do(func() {
			that.mu.Lock()
			defer that.mu.Unlock()

			delete(that.byPlayer[playerID], id)
			if len(that.byPlayer[playerID]) == 0 {
				delete(that.byPlayer, playerID)
			}
		})
	}
}

// snapshot copies the current listeners so they can be called without holding the lock.
func (that *listeners) snapshot(playerID string) []MoveListener {
	that.mu.RLock()
	defer that.mu.RUnlock()

	subscribed := make([]MoveListener, 0, len(that.byPlayer[playerID]))
	for _, listener := range that.byPlayer[playerID] {
		subscribed = append(subscribed, listener)
	}

	return subscribed
}

func (that *listeners) notifyMove(game *entity.Game, move entity.Move) {
	for _, listener := range that.snapshot(game.PlayerID) {
		listener.OnMove(game, move)
	}
}

func (that *listeners) notifyFinished(game *entity.Game) {
	for _, listener := range that.snapshot(game.PlayerID) {
		listener.OnGameFinished(game)
	}
}
