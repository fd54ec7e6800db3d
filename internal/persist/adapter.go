// Package persist binds reactive stores to durable local storage. Each
// adapter owns one key: it serializes the store's state on every change and
// recovers from storage quota errors by evicting low-value data.
package persist

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/autocheckhq/autocheck/internal/common"
	"github.com/autocheckhq/autocheck/internal/localstore"
	"github.com/autocheckhq/autocheck/internal/logging"
	"github.com/autocheckhq/autocheck/internal/models"
	"github.com/autocheckhq/autocheck/internal/store"
)

// Migrator upgrades a collection decoded from an older schema version.
type Migrator[S any] func(S) S

// Evictor shrinks a state snapshot for persistence when the write exceeds the
// storage quota. It must not be applied to the in-memory store: the full
// state stays visible to the UI, only the durable copy is reduced.
type Evictor[S any] func(S) (shrunk S, changed bool)

// envelope is the on-disk record: the schema version travels with the data so
// migration runs once at load instead of ad hoc presence checks.
type envelope[S any] struct {
	Version int `json:"version"`
	State   S   `json:"state"`
}

// Adapter persists one store's state under one key.
type Adapter[S any] struct {
	kv    localstore.KV
	key   string
	log   logging.Logger
	evict Evictor[S]
}

// New returns an adapter writing to key. evict may be nil for collections
// with nothing worth dropping.
func New[S any](kv localstore.KV, key string, log logging.Logger, evict Evictor[S]) *Adapter[S] {
	return &Adapter[S]{kv: kv, key: key, log: log.With("key", key), evict: evict}
}

// Load reads the persisted state, falling back to def on missing or corrupt
// data. When the stored schema version is older than the current one, migrate
// is applied and the upgraded state written back.
func (a *Adapter[S]) Load(ctx context.Context, def S, migrate Migrator[S]) S {
	raw, ok, err := a.kv.Get(ctx, a.key)
	if err != nil {
		a.log.Error(ctx, "failed to read persisted state, using default", "error", err)
		return def
	}
	if !ok {
		return def
	}

	var env envelope[S]
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		a.log.Error(ctx, "persisted state is corrupt, using default", "error", err)
		return def
	}

	if env.Version < models.SchemaVersion && migrate != nil {
		env.State = migrate(env.State)
		a.write(ctx, env.State)
	}

	return env.State
}

// Attach subscribes the adapter to st so every change is written through.
// Returns the unsubscribe function.
func (a *Adapter[S]) Attach(st *store.Store[S]) func() {
	return st.Subscribe(func(s S) {
		a.write(context.Background(), s)
	})
}

// write serializes and stores s. A quota error triggers one eviction and one
// retry; anything beyond that is fatal for this write and only logged, the
// in-memory state is never touched.
func (a *Adapter[S]) write(ctx context.Context, s S) {
	if err := a.set(ctx, s); err == nil {
		return
	} else if !errors.Is(err, common.ErrStorageQuota) || a.evict == nil {
		a.log.Error(ctx, "failed to persist state", "error", err)
		return
	}

	shrunk, changed := a.evict(s)
	if !changed {
		a.log.Error(ctx, "storage quota exceeded and nothing to evict")
		return
	}

	a.log.Warn(ctx, "storage quota exceeded, persisting evicted snapshot")
	if err := a.set(ctx, shrunk); err != nil {
		a.log.Error(ctx, "failed to persist state after eviction", "error", err)
	}
}

func (a *Adapter[S]) set(ctx context.Context, s S) error {
	data, err := json.Marshal(envelope[S]{Version: models.SchemaVersion, State: s})
	if err != nil {
		return err
	}
	return a.kv.Set(ctx, a.key, string(data))
}
