package replica

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/autocheckhq/autocheck/internal/logging"
	"github.com/autocheckhq/autocheck/internal/models"
	"github.com/autocheckhq/autocheck/internal/remote"
	"github.com/autocheckhq/autocheck/internal/session"
	"github.com/autocheckhq/autocheck/internal/store"
)

// Engine runs the startup merge: fetch the remote snapshot for the active
// tenant, reconcile it with each local collection, then repair vehicle
// status. A remote failure degrades to the local-only replica and never
// blocks startup.
type Engine struct {
	remote    remote.Store
	session   *session.Session
	vehicles  *store.Store[[]models.Vehicle]
	movements *store.Store[[]models.Movement]
	accounts  *store.Store[[]models.Account]
	log       logging.Logger
}

func NewEngine(
	rs remote.Store,
	sess *session.Session,
	vehicles *store.Store[[]models.Vehicle],
	movements *store.Store[[]models.Movement],
	accounts *store.Store[[]models.Account],
	log logging.Logger,
) *Engine {
	return &Engine{
		remote:    rs,
		session:   sess,
		vehicles:  vehicles,
		movements: movements,
		accounts:  accounts,
		log:       log.With("component", "replica"),
	}
}

// SyncAll merges every collection and runs the consistency repair. When no
// tenant is resolved yet the merge is skipped; callers re-run it once
// the session produces one. Returns true when a merge actually ran.
func (e *Engine) SyncAll(ctx context.Context) bool {
	tenantID := e.session.TenantID()

	merged := false
	if tenantID == "" {
		e.log.Debug(ctx, "merge skipped, no tenant resolved yet")
	} else if e.remote == nil {
		e.log.Debug(ctx, "merge skipped, running local-only")
	} else {
		syncCollection(ctx, e, tenantID, remote.CollectionVehicles, e.vehicles,
			func(v models.Vehicle) string { return v.ID })
		syncCollection(ctx, e, tenantID, remote.CollectionMovements, e.movements,
			func(m models.Movement) string { return m.ID })
		syncCollection(ctx, e, tenantID, remote.CollectionAccounts, e.accounts,
			func(a models.Account) string { return a.ID })
		merged = true
	}

	// Repair runs even when the merge was skipped or degraded: local data
	// may carry a stale projection from a previous partial write.
	e.RepairVehicles(ctx)

	return merged
}

// RepairVehicles re-derives vehicle status from movement state, writing the
// vehicle store back only when at least one correction was made so an
// already-consistent replica causes no spurious re-persistence.
func (e *Engine) RepairVehicles(ctx context.Context) {
	fixed, changed := Repair(e.vehicles.Get(), e.movements.Get())
	if !changed {
		return
	}
	e.log.Info(ctx, "consistency repair corrected vehicle statuses")
	e.vehicles.Set(fixed)
}

// syncCollection fetches one remote collection, merges it into the store and
// replaces the store's state in a single update. On fetch failure the local
// collection is left untouched.
func syncCollection[T any](
	ctx context.Context,
	e *Engine,
	tenantID, name string,
	st *store.Store[[]T],
	id func(T) string,
) {
	docs, err := e.remote.GetCollection(ctx, tenantID, name)
	if err != nil {
		e.log.Warn(ctx, "remote fetch failed, keeping local replica",
			"collection", name, "error", err)
		return
	}

	remoteItems, err := decodeDocs[T](docs)
	if err != nil {
		e.log.Warn(ctx, "remote collection is unreadable, keeping local replica",
			"collection", name, "error", err)
		return
	}

	merged := MergeCollection(remoteItems, st.Get(), id)
	st.Set(merged)
	e.log.Info(ctx, "collection merged",
		"collection", name, "remote", len(remoteItems), "merged", len(merged))
}

func decodeDocs[T any](docs []remote.Doc) ([]T, error) {
	items := make([]T, 0, len(docs))
	for _, d := range docs {
		var item T
		if err := json.Unmarshal(d.Data, &item); err != nil {
			return nil, fmt.Errorf("document %s: %w", d.ID, err)
		}
		items = append(items, item)
	}
	return items, nil
}
