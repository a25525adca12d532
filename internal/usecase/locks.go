package usecase

import "sync"

type playerLock struct {
	mu   sync.Mutex
	refs int
}

// playerLocks hands out one mutex per player so moves on a board are processed one at a time.
// An entry lives only while someone holds or waits for it.
type playerLocks struct {
	mu    sync.Mutex
	locks map[string]*playerLock
}

func newPlayerLocks() *playerLocks {
	return &playerLocks{locks: make(map[string]*playerLock)}
}

func (that *playerLocks) lock(playerID string) func() {
	that.mu.Lock()
	l, ok := that.locks[playerID]
	if !ok {
		l = &playerLock{}
		that.locks[playerID] = l
	}
	l.refs++
	that.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		that.mu.Lock()
		defer that.mu.Unlock()

		l.refs--
		if l.refs == 0 {
			delete(that.locks, playerID)
		}
	}
}
