// Package syncer keeps locally cached views of server state consistent
// under three competing forces: periodic polling (the server is the source
// of truth), optimistic local mutations, and navigation away mid-flight.
// The keyed cache is the only shared resource: the cache itself and the
// mutation coordinator are its only writers, everyone else reads.
package syncer

import (
	"context"
	"fmt"
	"sync"

	"learnpool-client/internal/model"
)

// Key identifies one cached resource. Reports carry the viewer role
// because professor and student receive different projections of the same
// session.
type Key struct {
	Resource  string
	SessionID uint
	Role      model.Role
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d/%s", k.Resource, k.SessionID, k.Role)
}

// Loader fetches the authoritative value for a key.
type Loader func(ctx context.Context) (any, error)

type Options struct {
	// Enabled suppresses execution until a precondition holds, e.g. the
	// enrollment check has passed.
	Enabled bool
	// Retry allows one retry on a failed load. Off for gating checks so a
	// failed enrollment check is never masked.
	Retry bool
}

// Result mirrors the fetch contract: Data may be stale when Err is set
// (stale-while-error), and is nil only before the first successful load.
type Result struct {
	Data  any
	Err   error
	Stale bool
}

type entry struct {
	data   any
	err    error
	loaded bool
	stale  bool

	// patchGen is bumped by every optimistic write. A loader response is
	// applied only if no patch landed after the load started; otherwise
	// the response is dropped and the entry left stale for the next cycle.
	patchGen uint64

	inflight *inflight
}

type inflight struct {
	done     chan struct{}
	startGen uint64
	data     any
	err      error
}

type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[Key]*entry)}
}

func (c *Cache) get(key Key) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	return e
}

// Get returns the cached value without triggering a load.
func (c *Cache) Get(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !e.loaded {
		return nil, false
	}
	return e.data, true
}

// IsFetching reports whether a load is currently in flight for the key.
func (c *Cache) IsFetching(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return ok && e.inflight != nil
}

// Fetch returns the cached value, loading it first when missing or stale.
// Concurrent fetches for the same key are coalesced onto one in-flight
// load. A failed load retains prior data and surfaces the error alongside
// it.
func (c *Cache) Fetch(ctx context.Context, key Key, loader Loader, opts Options) Result {
	if !opts.Enabled {
		return Result{}
	}

	c.mu.Lock()
	e := c.get(key)
	if e.loaded && !e.stale {
		res := Result{Data: e.data, Err: e.err}
		c.mu.Unlock()
		return res
	}
	c.mu.Unlock()

	err := c.load(ctx, key, loader)
	if err != nil && opts.Retry && ctx.Err() == nil {
		err = c.load(ctx, key, loader)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	e = c.get(key)
	return Result{Data: e.data, Err: err, Stale: e.stale || err != nil}
}

// Revalidate forces a load regardless of staleness. Used by polling
// subscriptions.
func (c *Cache) Revalidate(ctx context.Context, key Key, loader Loader) error {
	c.mu.Lock()
	e := c.get(key)
	e.stale = true
	c.mu.Unlock()
	return c.load(ctx, key, loader)
}

func (c *Cache) load(ctx context.Context, key Key, loader Loader) error {
	c.mu.Lock()
	e := c.get(key)
	if fl := e.inflight; fl != nil {
		// Coalesce onto the running load.
		c.mu.Unlock()
		select {
		case <-fl.done:
			return fl.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	fl := &inflight{done: make(chan struct{}), startGen: e.patchGen}
	e.inflight = fl
	c.mu.Unlock()

	fl.data, fl.err = loader(ctx)
	close(fl.done)

	c.mu.Lock()
	defer c.mu.Unlock()
	e = c.get(key)
	if e.inflight == fl {
		e.inflight = nil
	}

	// A canceled context means the owning view is gone; the response must
	// not touch state it no longer relates to.
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if fl.err != nil {
		// Stale-while-error: keep what we have.
		e.err = fl.err
		e.stale = true
		return fl.err
	}

	if e.patchGen != fl.startGen {
		// An optimistic patch landed while this load was in flight; the
		// response predates it and would clobber the prediction. Drop it
		// and let the next cycle reconcile.
		e.stale = true
		return nil
	}

	e.data = fl.data
	e.err = nil
	e.loaded = true
	e.stale = false
	return nil
}

// Invalidate marks the key stale so the next fetch reloads it.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.stale = true
	}
}

// Drop removes the entry entirely. Used on logout and when leaving a view
// for good.
func (c *Cache) Drop(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// applyPatch snapshots the current value and applies the patch in one
// critical section, so stacked mutations each snapshot the value as of
// their own apply time.
func (c *Cache) applyPatch(key Key, patch func(any) any) (snapshot any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.get(key)
	snapshot = e.data
	e.data = patch(e.data)
	e.loaded = true
	e.patchGen++
	return snapshot
}

// restore puts the pre-mutation snapshot back and marks the entry stale so
// the next revalidation fetches server truth.
func (c *Cache) restore(key Key, snapshot any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.get(key)
	e.data = snapshot
	e.patchGen++
	e.stale = true
}

// overwrite replaces the cached value with a server-echoed canonical one.
func (c *Cache) overwrite(key Key, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.get(key)
	e.data = val
	e.loaded = true
	e.patchGen++
	e.stale = false
}
