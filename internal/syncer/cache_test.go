package syncer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnpool-client/internal/model"
)

func testKey() Key {
	return Key{Resource: "transcript", SessionID: 7, Role: model.RoleStudent}
}

func TestFetchLoadsOnceAndCaches(t *testing.T) {
	cache := NewCache()
	var calls int32
	loader := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return "payload", nil
	}

	res := cache.Fetch(context.Background(), testKey(), loader, Options{Enabled: true})
	require.NoError(t, res.Err)
	assert.Equal(t, "payload", res.Data)

	res = cache.Fetch(context.Background(), testKey(), loader, Options{Enabled: true})
	require.NoError(t, res.Err)
	assert.Equal(t, "payload", res.Data)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchDisabledDoesNothing(t *testing.T) {
	cache := NewCache()
	loader := func(ctx context.Context) (any, error) {
		t.Fatal("loader must not run while disabled")
		return nil, nil
	}

	res := cache.Fetch(context.Background(), testKey(), loader, Options{Enabled: false})
	assert.Nil(t, res.Data)
	assert.NoError(t, res.Err)

	_, ok := cache.Get(testKey())
	assert.False(t, ok)
}

func TestFetchRetriesOnce(t *testing.T) {
	cache := NewCache()
	var calls int32
	loader := func(ctx context.Context) (any, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, errors.New("transient")
		}
		return "recovered", nil
	}

	res := cache.Fetch(context.Background(), testKey(), loader, Options{Enabled: true, Retry: true})
	require.NoError(t, res.Err)
	assert.Equal(t, "recovered", res.Data)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetchNoRetryWhenOff(t *testing.T) {
	cache := NewCache()
	var calls int32
	loadErr := errors.New("enrollment check failed")
	loader := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return nil, loadErr
	}

	res := cache.Fetch(context.Background(), testKey(), loader, Options{Enabled: true})
	assert.ErrorIs(t, res.Err, loadErr)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestStaleWhileError(t *testing.T) {
	cache := NewCache()
	key := testKey()
	healthy := func(ctx context.Context) (any, error) { return "v1", nil }
	res := cache.Fetch(context.Background(), key, healthy, Options{Enabled: true})
	require.NoError(t, res.Err)

	cache.Invalidate(key)

	loadErr := errors.New("server down")
	failing := func(ctx context.Context) (any, error) { return nil, loadErr }
	res = cache.Fetch(context.Background(), key, failing, Options{Enabled: true})
	assert.ErrorIs(t, res.Err, loadErr)
	assert.Equal(t, "v1", res.Data, "prior data survives a failed reload")
	assert.True(t, res.Stale)
}

func TestConcurrentFetchesCoalesce(t *testing.T) {
	cache := NewCache()
	key := testKey()
	var calls int32
	release := make(chan struct{})
	loader := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "shared", nil
	}

	const n = 8
	var wg sync.WaitGroup
	results := make([]Result, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = cache.Fetch(context.Background(), key, loader, Options{Enabled: true})
		}(i)
	}

	require.Eventually(t, func() bool { return cache.IsFetching(key) }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, res := range results {
		require.NoError(t, res.Err)
		assert.Equal(t, "shared", res.Data)
	}
}

func TestPatchedEntryDropsInflightResponse(t *testing.T) {
	cache := NewCache()
	key := testKey()

	started := make(chan struct{})
	release := make(chan struct{})
	loader := func(ctx context.Context) (any, error) {
		close(started)
		<-release
		return "server-old", nil
	}

	done := make(chan error)
	go func() { done <- cache.Revalidate(context.Background(), key, loader) }()
	<-started

	// An optimistic patch lands while the load is in flight.
	cache.applyPatch(key, func(any) any { return "optimistic" })

	close(release)
	require.NoError(t, <-done)

	data, ok := cache.Get(key)
	require.True(t, ok)
	assert.Equal(t, "optimistic", data, "the stale response must not clobber the prediction")

	// The entry is stale, so the next fetch reloads.
	fresh := func(ctx context.Context) (any, error) { return "server-new", nil }
	res := cache.Fetch(context.Background(), key, fresh, Options{Enabled: true})
	require.NoError(t, res.Err)
	assert.Equal(t, "server-new", res.Data)
}

func TestCanceledLoadDoesNotApply(t *testing.T) {
	cache := NewCache()
	key := testKey()

	ctx, cancel := context.WithCancel(context.Background())
	loader := func(ctx context.Context) (any, error) {
		cancel()
		return "late", nil
	}

	err := cache.Revalidate(ctx, key, loader)
	assert.ErrorIs(t, err, context.Canceled)

	_, ok := cache.Get(key)
	assert.False(t, ok, "a response after cancellation must not land")
}

func TestDropRemovesEntry(t *testing.T) {
	cache := NewCache()
	key := testKey()
	loader := func(ctx context.Context) (any, error) { return "x", nil }
	res := cache.Fetch(context.Background(), key, loader, Options{Enabled: true})
	require.NoError(t, res.Err)

	cache.Drop(key)
	_, ok := cache.Get(key)
	assert.False(t, ok)
}

func TestKeySeparatesRoles(t *testing.T) {
	cache := NewCache()
	student := Key{Resource: "report", SessionID: 3, Role: model.RoleStudent}
	professor := Key{Resource: "report", SessionID: 3, Role: model.RoleProfessor}

	res := cache.Fetch(context.Background(), student, func(ctx context.Context) (any, error) {
		return "student-view", nil
	}, Options{Enabled: true})
	require.NoError(t, res.Err)

	_, ok := cache.Get(professor)
	assert.False(t, ok, "role is part of the cache key")
}
