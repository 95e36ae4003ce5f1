package media

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExclusiveWaitsForShared(t *testing.T) {
	locks := newNamespaceLocks()

	unlockShared := locks.shared("p")
	deleted := make(chan struct{})
	go func() {
		unlock := locks.exclusive("p")
		close(deleted)
		unlock()
	}()

	select {
	case <-deleted:
		t.Fatal("exclusive lock acquired while an upload held the namespace")
	case <-time.After(50 * time.Millisecond):
	}

	unlockShared()
	select {
	case <-deleted:
	case <-time.After(time.Second):
		t.Fatal("exclusive lock never acquired")
	}
}

func TestLocksAreIndependentPerNamespace(t *testing.T) {
	locks := newNamespaceLocks()

	unlock := locks.exclusive("a")
	defer unlock()

	done := make(chan struct{})
	go func() {
		locks.exclusive("b")()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on b blocked by lock on a")
	}
}

func TestLocksAreReleased(t *testing.T) {
	locks := newNamespaceLocks()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locks.shared("p")()
		}()
	}
	wg.Wait()

	assert.Zero(t, locks.len())
}
