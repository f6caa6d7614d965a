package dialog

import (
	"sync"

	"github.com/chatassist/dialog-manager/pkg/record"
)

type sessionKey struct {
	UserID int64
	Kind   record.Kind
}

// keyedMutex hands out one mutex per (user, kind) pair so the manager can
// serialise wizard operations without a global lock. Entries are never
// reclaimed; the key space is bounded by users times kinds.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[sessionKey]*sync.Mutex
}

func (k *keyedMutex) get(key sessionKey) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.locks == nil {
		k.locks = make(map[sessionKey]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}
