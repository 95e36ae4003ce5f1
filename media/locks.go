package media

import "sync"

// namespaceLocks hands out one RWMutex per purpose. Entries are dropped
// once nobody holds or waits on them.
type namespaceLocks struct {
	mu    sync.Mutex
	locks map[string]*namespaceLock
}

type namespaceLock struct {
	sync.RWMutex
	refs int
}

func newNamespaceLocks() *namespaceLocks {
	return &namespaceLocks{locks: make(map[string]*namespaceLock)}
}

func (n *namespaceLocks) acquire(purpose string) *namespaceLock {
	n.mu.Lock()
	defer n.mu.Unlock()
	l, ok := n.locks[purpose]
	if !ok {
		l = &namespaceLock{}
		n.locks[purpose] = l
	}
	l.refs++
	return l
}

func (n *namespaceLocks) release(purpose string, l *namespaceLock) {
	n.mu.Lock()
	defer n.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(n.locks, purpose)
	}
}

// shared takes the read side for writes into purpose.
func (n *namespaceLocks) shared(purpose string) (unlock func()) {
	l := n.acquire(purpose)
	l.RLock()
	return func() {
		l.RUnlock()
		n.release(purpose, l)
	}
}

// exclusive takes the write side for removing purpose.
func (n *namespaceLocks) exclusive(purpose string) (unlock func()) {
	l := n.acquire(purpose)
	l.Lock()
	return func() {
		l.Unlock()
		n.release(purpose, l)
	}
}

func (n *namespaceLocks) len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.locks)
}
