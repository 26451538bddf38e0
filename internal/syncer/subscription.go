package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Subscription revalidates one key on a fixed cadence for as long as its
// owning view is on screen. Start is idempotent; Stop cancels the loop and
// waits for it, after which no late response can be applied. Every Start
// must be paired with a Stop on disposal.
type Subscription struct {
	cache    *Cache
	key      Key
	loader   Loader
	interval time.Duration
	log      logrus.FieldLogger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSubscription(cache *Cache, key Key, loader Loader, interval time.Duration, log logrus.FieldLogger) *Subscription {
	return &Subscription{
		cache:    cache,
		key:      key,
		loader:   loader,
		interval: interval,
		log:      log,
	}
}

func (s *Subscription) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}

	pollCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				if err := s.cache.Revalidate(pollCtx, s.key, s.loader); err != nil && pollCtx.Err() == nil {
					if s.log != nil {
						s.log.WithField("key", s.key.String()).WithError(err).Debug("poll revalidation failed")
					}
				}
			}
		}
	}()
}

func (s *Subscription) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
	s.cancel = nil
}
