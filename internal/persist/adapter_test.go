package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/autocheckhq/autocheck/internal/localstore"
	"github.com/autocheckhq/autocheck/internal/logging"
	"github.com/autocheckhq/autocheck/internal/models"
	"github.com/autocheckhq/autocheck/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapter_AttachPersistsEveryChange(t *testing.T) {
	kv := localstore.NewMemoryKV(0)
	a := New[[]models.Vehicle](kv, "vehicles", logging.NewNopLogger(), nil)
	st := store.New([]models.Vehicle{})

	a.Attach(st)
	st.Set([]models.Vehicle{{ID: "v1", Plate: "A 1111", Status: models.VehicleIn}})

	raw, ok, err := kv.Get(context.Background(), "vehicles")
	require.NoError(t, err)
	require.True(t, ok)

	var env struct {
		Version int              `json:"version"`
		State   []models.Vehicle `json:"state"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	assert.Equal(t, models.SchemaVersion, env.Version)
	require.Len(t, env.State, 1)
	assert.Equal(t, "v1", env.State[0].ID)
}

func TestAdapter_Load_MissingKeyReturnsDefault(t *testing.T) {
	kv := localstore.NewMemoryKV(0)
	a := New[[]models.Vehicle](kv, "vehicles", logging.NewNopLogger(), nil)

	def := []models.Vehicle{{ID: "seed"}}
	got := a.Load(context.Background(), def, nil)
	assert.Equal(t, def, got)
}

func TestAdapter_Load_CorruptDataFallsBackToDefault(t *testing.T) {
	kv := localstore.NewMemoryKV(0)
	require.NoError(t, kv.Set(context.Background(), "movements", "{not json"))

	a := New[[]models.Movement](kv, "movements", logging.NewNopLogger(), nil)
	got := a.Load(context.Background(), []models.Movement{}, nil)
	assert.Empty(t, got)
}

func TestAdapter_Load_RunsMigrationOnOldVersions(t *testing.T) {
	kv := localstore.NewMemoryKV(0)
	old := `{"version":1,"state":[{"id":"v1","status":"in"}]}`
	require.NoError(t, kv.Set(context.Background(), "vehicles", old))

	a := New[[]models.Vehicle](kv, "vehicles", logging.NewNopLogger(), nil)
	got := a.Load(context.Background(), nil, func(vs []models.Vehicle) []models.Vehicle {
		return models.MigrateVehicles(vs, "t1")
	})

	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].TenantID)

	// Upgraded state was written back under the current version.
	raw, _, err := kv.Get(context.Background(), "vehicles")
	require.NoError(t, err)
	assert.Contains(t, raw, fmt.Sprintf(`"version":%d`, models.SchemaVersion))
	assert.Contains(t, raw, `"tenantId":"t1"`)
}

// Quota handling: 50 completed + 3 active movements, quota too small for the
// full set. After eviction exactly the 3 active movements remain persisted
// while the in-memory store still holds all 53.
func TestAdapter_QuotaEvictionKeepsActiveMovements(t *testing.T) {
	movements := make([]models.Movement, 0, 53)
	for i := 0; i < 50; i++ {
		ret := models.Inspection{Mileage: 100}
		movements = append(movements, models.Movement{
			ID:        fmt.Sprintf("done-%d", i),
			VehicleID: "v1",
			Status:    models.MovementCompleted,
			Return:    &ret,
		})
	}
	for i := 0; i < 3; i++ {
		movements = append(movements, models.Movement{
			ID:        fmt.Sprintf("open-%d", i),
			VehicleID: fmt.Sprintf("v%d", i),
			Status:    models.MovementActive,
		})
	}

	// Large enough for the active subset, too small for everything.
	full, err := json.Marshal(movements)
	require.NoError(t, err)
	kv := localstore.NewMemoryKV(int64(len(full) / 2))

	a := New(kv, "movements", logging.NewNopLogger(), KeepActiveMovements)
	st := store.New([]models.Movement{})
	a.Attach(st)

	st.Set(movements)

	// In-memory state untouched.
	assert.Len(t, st.Get(), 53)

	raw, ok, err := kv.Get(context.Background(), "movements")
	require.NoError(t, err)
	require.True(t, ok)

	var env struct {
		State []models.Movement `json:"state"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	require.Len(t, env.State, 3)
	for _, m := range env.State {
		assert.Equal(t, models.MovementActive, m.Status)
	}
}

func TestAdapter_NonQuotaErrorDoesNotEvict(t *testing.T) {
	kv := localstore.NewMemoryKV(0)
	kv.SetErr = fmt.Errorf("disk detached")

	evicted := false
	a := New(kv, "movements", logging.NewNopLogger(),
		func(ms []models.Movement) ([]models.Movement, bool) {
			evicted = true
			return nil, true
		})
	st := store.New([]models.Movement{})
	a.Attach(st)

	st.Set([]models.Movement{{ID: "m1", Status: models.MovementActive}})
	assert.False(t, evicted)
}
