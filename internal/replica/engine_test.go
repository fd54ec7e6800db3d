package replica

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/autocheckhq/autocheck/internal/logging"
	"github.com/autocheckhq/autocheck/internal/models"
	"github.com/autocheckhq/autocheck/internal/remote"
	"github.com/autocheckhq/autocheck/internal/session"
	"github.com/autocheckhq/autocheck/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engineFixture struct {
	remote    *remote.MemoryStore
	session   *session.Session
	vehicles  *store.Store[[]models.Vehicle]
	movements *store.Store[[]models.Movement]
	accounts  *store.Store[[]models.Account]
	engine    *Engine
}

func newEngineFixture(t *testing.T, tenantID string) *engineFixture {
	t.Helper()

	f := &engineFixture{
		remote:    remote.NewMemoryStore(),
		vehicles:  store.New([]models.Vehicle{}),
		movements: store.New([]models.Movement{}),
		accounts:  store.New([]models.Account{}),
	}
	st := session.State{}
	if tenantID != "" {
		st = session.State{TenantID: tenantID, Authenticated: true}
	}
	f.session = session.New(st, nil)
	f.engine = NewEngine(f.remote, f.session, f.vehicles, f.movements, f.accounts, logging.NewNopLogger())
	return f
}

func (f *engineFixture) seedRemote(t *testing.T, collection, id string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, f.remote.SaveItem(context.Background(), "t1", collection, id, data))
}

func TestEngine_SyncAll_MergesAndRepairs(t *testing.T) {
	f := newEngineFixture(t, "t1")

	// Remote: one vehicle cached as in, one active movement for it.
	f.seedRemote(t, remote.CollectionVehicles, "v1",
		models.Vehicle{ID: "v1", Plate: "A 1111", Status: models.VehicleIn, TenantID: "t1"})
	f.seedRemote(t, remote.CollectionMovements, "m1",
		models.Movement{ID: "m1", VehicleID: "v1", Status: models.MovementActive, TenantID: "t1"})
	f.seedRemote(t, remote.CollectionAccounts, "u1",
		models.Account{ID: "u1", Username: "guard", TenantID: "t1"})

	// Local-only movement must survive the merge.
	f.movements.Set([]models.Movement{
		{ID: "m-local", VehicleID: "v9", Status: models.MovementCompleted},
	})

	ran := f.engine.SyncAll(context.Background())
	require.True(t, ran)

	require.Len(t, f.vehicles.Get(), 1)
	// Repair flipped the vehicle to out because of the active movement.
	assert.Equal(t, models.VehicleOut, f.vehicles.Get()[0].Status)

	ids := []string{}
	for _, m := range f.movements.Get() {
		ids = append(ids, m.ID)
	}
	assert.ElementsMatch(t, []string{"m1", "m-local"}, ids)

	require.Len(t, f.accounts.Get(), 1)
}

func TestEngine_SyncAll_SkippedWithoutTenant(t *testing.T) {
	f := newEngineFixture(t, "")
	f.seedRemote(t, remote.CollectionVehicles, "v1", models.Vehicle{ID: "v1"})

	local := []models.Vehicle{{ID: "local", Status: models.VehicleIn}}
	f.vehicles.Set(local)

	ran := f.engine.SyncAll(context.Background())

	assert.False(t, ran)
	assert.Equal(t, local, f.vehicles.Get())
}

// Remote unreachable: local collections stay as they were, no panic or error
// escapes, and the validator still runs against the unmerged local data.
func TestEngine_SyncAll_RemoteUnavailableFallsBackToLocal(t *testing.T) {
	f := newEngineFixture(t, "t1")
	f.remote.GetErr = errors.New("connection refused")

	f.vehicles.Set([]models.Vehicle{{ID: "v1", Status: models.VehicleOut}})
	f.movements.Set([]models.Movement{}) // no active movement -> repair to in

	ran := f.engine.SyncAll(context.Background())

	assert.True(t, ran)
	require.Len(t, f.vehicles.Get(), 1)
	assert.Equal(t, models.VehicleIn, f.vehicles.Get()[0].Status)
}

func TestEngine_SyncAll_UnreadableRemoteCollectionKeepsLocal(t *testing.T) {
	f := newEngineFixture(t, "t1")
	require.NoError(t, f.remote.SaveItem(context.Background(), "t1",
		remote.CollectionVehicles, "v1", []byte("{broken")))

	local := []models.Vehicle{{ID: "local", Status: models.VehicleIn}}
	f.vehicles.Set(local)

	f.engine.SyncAll(context.Background())
	assert.Equal(t, local, f.vehicles.Get())
}

func TestEngine_RepairVehicles_NoWriteBackWhenConsistent(t *testing.T) {
	f := newEngineFixture(t, "t1")

	writes := 0
	f.vehicles.Set([]models.Vehicle{{ID: "v1", Status: models.VehicleIn}})
	f.vehicles.Subscribe(func([]models.Vehicle) { writes++ })

	f.engine.RepairVehicles(context.Background())
	assert.Zero(t, writes)
}
