package syncer

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Mutation is an explicit command: predict the new state for Key, run the
// remote call, keep the prediction on success or roll back to the
// apply-time snapshot on failure. Canonical marks calls whose response
// body is the authoritative object (e.g. question creation) and should
// replace the prediction outright; vote and label calls return no body and
// leave the prediction standing until the next poll reconciles it.
type Mutation struct {
	Key       Key
	Patch     func(old any) any
	Call      func(ctx context.Context) (any, error)
	Canonical bool
}

type Mutator struct {
	cache *Cache
	log   logrus.FieldLogger
}

func NewMutator(cache *Cache, log logrus.FieldLogger) *Mutator {
	return &Mutator{cache: cache, log: log}
}

// Do applies the mutation. The optimistic patch lands synchronously before
// the remote call is issued; the snapshot is taken in the same critical
// section, so two mutations racing on one key cannot lose each other's
// still-pending predictions.
//
// On failure the snapshot is restored exactly — a full rollback, not a
// merge — and the error is returned to the caller. There is no automatic
// retry for mutations.
func (m *Mutator) Do(ctx context.Context, mu Mutation) error {
	snapshot := m.cache.applyPatch(mu.Key, mu.Patch)

	result, err := mu.Call(ctx)
	if err != nil {
		m.cache.restore(mu.Key, snapshot)
		if m.log != nil {
			m.log.WithField("key", mu.Key.String()).WithError(err).Warn("mutation rolled back")
		}
		return err
	}

	if mu.Canonical && result != nil {
		m.cache.overwrite(mu.Key, result)
	}
	return nil
}
