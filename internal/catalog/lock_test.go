package catalog

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLockMultipleDeduplicatesNames(t *testing.T) {
	cat := newTestCatalog(t)

	unlock, err := cat.LockMultiple("default.events", "default.events")
	require.NoError(t, err)
	unlock()
}

func TestLockMultipleRejectsEmptyName(t *testing.T) {
	cat := newTestCatalog(t)
	_, err := cat.LockMultiple("default.events", "")
	require.Error(t, err)
}

func TestLockMultipleSerializesConcurrentCallers(t *testing.T) {
	cat := newTestCatalog(t)

	unlock, err := cat.LockMultiple("default.events")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		u, err := cat.LockMultiple("default.events")
		require.NoError(t, err)
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatal("second LockMultiple acquired the guard while the first still held it")
	case <-time.After(20 * time.Millisecond):
	}

	unlock()
	<-acquired
}

func TestLockMultipleTimesOutWhenGuardStaysHeld(t *testing.T) {
	cat := newTestCatalog(t)
	cat.Settings.LockTimeout = 20 * time.Millisecond

	unlock, err := cat.LockMultiple("default.events")
	require.NoError(t, err)
	defer unlock()

	_, err = cat.LockMultiple("default.events")
	require.ErrorIs(t, err, ErrLockTimeout)
}

func TestLockMultipleTimeoutReleasesEarlierAcquiredGuards(t *testing.T) {
	cat := newTestCatalog(t)
	cat.Settings.LockTimeout = 20 * time.Millisecond

	unlock, err := cat.LockMultiple("b.held")
	require.NoError(t, err)
	defer unlock()

	// "a.first" sorts before "b.held": LockMultiple acquires it, then
	// times out on "b.held", and must release "a.first" again rather than
	// leaving it locked forever.
	_, err = cat.LockMultiple("a.first", "b.held")
	require.ErrorIs(t, err, ErrLockTimeout)

	u, err := cat.LockMultiple("a.first")
	require.NoError(t, err, "a.first must have been released after the timeout")
	u()
}

func TestLockMultipleOrdersAcrossGoroutinesConsistently(t *testing.T) {
	cat := newTestCatalog(t)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var order []string

	run := func(names ...string) {
		defer wg.Done()
		unlock, err := cat.LockMultiple(names...)
		require.NoError(t, err)
		mu.Lock()
		order = append(order, names[0])
		mu.Unlock()
		unlock()
	}

	wg.Add(2)
	go run("a.v", "b.inner")
	go run("b.inner", "a.v")
	wg.Wait()

	require.Len(t, order, 2)
}
