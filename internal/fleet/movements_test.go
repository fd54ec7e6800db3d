package fleet

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/autocheckhq/autocheck/internal/common"
	"github.com/autocheckhq/autocheck/internal/models"
	"github.com/autocheckhq/autocheck/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Exit registration: new active movement, vehicle flips to out.
func TestRegisterExit(t *testing.T) {
	f := newFixture(t)

	v, err := f.service.AddVehicle("A 1111", "Hilux")
	require.NoError(t, err)

	m, err := f.service.RegisterExit(ExitRequest{
		VehicleID: v.ID,
		DriverRef: "contract-42",
		Mileage:   1000,
		FuelPct:   80,
	})
	require.NoError(t, err)

	assert.Equal(t, models.MovementActive, m.Status)
	assert.Equal(t, 1000, m.Exit.Mileage)
	assert.Equal(t, 80, m.Exit.FuelPct)
	assert.Nil(t, m.Return)

	got, ok := f.service.VehicleByID(v.ID)
	require.True(t, ok)
	assert.Equal(t, models.VehicleOut, got.Status)
}

func TestRegisterExit_RequiresVehicleInside(t *testing.T) {
	f := newFixture(t)

	v, err := f.service.AddVehicle("A 1111", "Hilux")
	require.NoError(t, err)
	_, err = f.service.RegisterExit(ExitRequest{VehicleID: v.ID, Mileage: 10, FuelPct: 50})
	require.NoError(t, err)

	_, err = f.service.RegisterExit(ExitRequest{VehicleID: v.ID, Mileage: 20, FuelPct: 50})
	assert.True(t, errors.Is(err, common.ErrVehicleNotIn))
	assert.Len(t, f.service.Movements().Get(), 1)

	_, err = f.service.RegisterExit(ExitRequest{VehicleID: "missing", Mileage: 10, FuelPct: 50})
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

// Return registration: movement completes, vehicle flips back to in,
// distance is derived from the two mileage readings.
func TestRegisterReturn(t *testing.T) {
	f := newFixture(t)

	v, err := f.service.AddVehicle("A 1111", "Hilux")
	require.NoError(t, err)
	m, err := f.service.RegisterExit(ExitRequest{VehicleID: v.ID, Mileage: 1000, FuelPct: 80})
	require.NoError(t, err)

	done, err := f.service.RegisterReturn(m.ID, ReturnRequest{Mileage: 1120, FuelPct: 40})
	require.NoError(t, err)

	assert.Equal(t, models.MovementCompleted, done.Status)
	require.NotNil(t, done.Return)
	assert.Equal(t, 1120, done.Return.Mileage)
	assert.Equal(t, 120, done.Distance())

	got, _ := f.service.VehicleByID(v.ID)
	assert.Equal(t, models.VehicleIn, got.Status)
}

// Returning an already-completed movement is a validation error and mutates
// nothing.
func TestRegisterReturn_CompletedMovementRejected(t *testing.T) {
	f := newFixture(t)

	v, err := f.service.AddVehicle("A 1111", "Hilux")
	require.NoError(t, err)
	m, err := f.service.RegisterExit(ExitRequest{VehicleID: v.ID, Mileage: 1000, FuelPct: 80})
	require.NoError(t, err)
	_, err = f.service.RegisterReturn(m.ID, ReturnRequest{Mileage: 1100, FuelPct: 40})
	require.NoError(t, err)

	before := f.service.Movements().Get()
	_, err = f.service.RegisterReturn(m.ID, ReturnRequest{Mileage: 1200, FuelPct: 30})
	assert.True(t, errors.Is(err, common.ErrMovementNotOpen))
	assert.Equal(t, before, f.service.Movements().Get())

	_, err = f.service.RegisterReturn("missing", ReturnRequest{Mileage: 1200, FuelPct: 30})
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

// Lower return mileage is a soft warning: rejected until confirmed.
func TestRegisterReturn_LowMileageNeedsConfirmation(t *testing.T) {
	f := newFixture(t)

	v, err := f.service.AddVehicle("A 1111", "Hilux")
	require.NoError(t, err)
	m, err := f.service.RegisterExit(ExitRequest{VehicleID: v.ID, Mileage: 1000, FuelPct: 80})
	require.NoError(t, err)

	_, err = f.service.RegisterReturn(m.ID, ReturnRequest{Mileage: 900, FuelPct: 40})
	assert.True(t, errors.Is(err, common.ErrMileageWarning))

	// Nothing mutated by the warning.
	got, _ := f.service.VehicleByID(v.ID)
	assert.Equal(t, models.VehicleOut, got.Status)

	done, err := f.service.RegisterReturn(m.ID, ReturnRequest{Mileage: 900, FuelPct: 40, ConfirmLow: true})
	require.NoError(t, err)
	assert.Equal(t, models.MovementCompleted, done.Status)
	assert.Equal(t, 0, done.Distance())
}

func TestAttachAIReport_MergesWithoutTouchingStatus(t *testing.T) {
	f := newFixture(t)

	v, err := f.service.AddVehicle("A 1111", "Hilux")
	require.NoError(t, err)
	m, err := f.service.RegisterExit(ExitRequest{VehicleID: v.ID, Mileage: 1000, FuelPct: 80})
	require.NoError(t, err)

	require.NoError(t, f.service.AttachAIReport(m.ID, models.AIReports{ExitCondition: "clean"}))
	_, err = f.service.RegisterReturn(m.ID, ReturnRequest{Mileage: 1100, FuelPct: 40})
	require.NoError(t, err)
	require.NoError(t, f.service.AttachAIReport(m.ID, models.AIReports{Comparison: "scratch on left door"}))

	got := f.service.Movements().Get()[0]
	assert.Equal(t, models.MovementCompleted, got.Status)
	require.NotNil(t, got.AIReports)
	assert.Equal(t, "clean", got.AIReports.ExitCondition)
	assert.Equal(t, "scratch on left door", got.AIReports.Comparison)
}

func TestClearCompleted(t *testing.T) {
	f := newFixture(t)

	v1, err := f.service.AddVehicle("A 1111", "Hilux")
	require.NoError(t, err)
	v2, err := f.service.AddVehicle("B 2222", "Elantra")
	require.NoError(t, err)

	m1, err := f.service.RegisterExit(ExitRequest{VehicleID: v1.ID, Mileage: 10, FuelPct: 50})
	require.NoError(t, err)
	_, err = f.service.RegisterReturn(m1.ID, ReturnRequest{Mileage: 20, FuelPct: 40})
	require.NoError(t, err)
	_, err = f.service.RegisterExit(ExitRequest{VehicleID: v2.ID, Mileage: 10, FuelPct: 50})
	require.NoError(t, err)

	removed := f.service.ClearCompleted()
	assert.Equal(t, 1, removed)
	require.Len(t, f.service.Movements().Get(), 1)
	assert.Equal(t, models.MovementActive, f.service.Movements().Get()[0].Status)
}

// Remote propagation is best-effort: a dead remote never surfaces to the
// caller and never rolls back the local mutation.
func TestMutations_SurviveRemoteFailure(t *testing.T) {
	f := newFixture(t)
	f.remote.SaveErr = errors.New("connection refused")
	f.remote.DeleteErr = errors.New("connection refused")

	v, err := f.service.AddVehicle("A 1111", "Hilux")
	require.NoError(t, err)
	m, err := f.service.RegisterExit(ExitRequest{VehicleID: v.ID, Mileage: 10, FuelPct: 50})
	require.NoError(t, err)
	_, err = f.service.RegisterReturn(m.ID, ReturnRequest{Mileage: 20, FuelPct: 40})
	require.NoError(t, err)

	f.prop.Wait()

	assert.Len(t, f.service.Vehicles().Get(), 1)
	assert.Len(t, f.service.Movements().Get(), 1)
	docs, err := f.remote.GetCollection(context.Background(), "t1", remote.CollectionMovements)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

// Photo payloads are uploaded concurrently and the remote record eventually
// carries URLs instead of inline data.
func TestSaveMovement_SubstitutesUploadedPhotoRefs(t *testing.T) {
	f := newFixture(t)

	v, err := f.service.AddVehicle("A 1111", "Hilux")
	require.NoError(t, err)

	m, err := f.service.RegisterExit(ExitRequest{
		VehicleID: v.ID,
		Mileage:   10,
		FuelPct:   50,
		Photos: []models.Photo{
			{Data: "base64-front", Label: "front"},
			{Data: "base64-rear", Label: "rear"},
			{Ref: "file:///local/extra.jpg", Label: "left"},
		},
	})
	require.NoError(t, err)
	f.prop.Wait()

	docs, err := f.remote.GetCollection(context.Background(), "t1", remote.CollectionMovements)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	var got models.Movement
	require.NoError(t, json.Unmarshal(docs[0].Data, &got))
	require.Len(t, got.Exit.Photos, 3)

	for _, p := range got.Exit.Photos[:2] {
		assert.Empty(t, p.Data)
		assert.Contains(t, p.Ref, "mem://")
		_, stored := f.blobs.Object(p.Ref)
		assert.True(t, stored)
	}
	// Non-inline photo passed through untouched.
	assert.Equal(t, "file:///local/extra.jpg", got.Exit.Photos[2].Ref)

	// The local replica keeps the inline payloads.
	assert.Equal(t, "base64-front", f.service.Movements().Get()[0].Exit.Photos[0].Data)
	assert.Equal(t, models.MovementActive, m.Status)
}

// Upload failure keeps the payload inline; the record is still saved.
func TestSaveMovement_UploadFailureKeepsInlinePayload(t *testing.T) {
	f := newFixture(t)
	f.blobs.UploadErr = errors.New("bucket gone")

	v, err := f.service.AddVehicle("A 1111", "Hilux")
	require.NoError(t, err)
	_, err = f.service.RegisterExit(ExitRequest{
		VehicleID: v.ID,
		Mileage:   10,
		FuelPct:   50,
		Photos:    []models.Photo{{Data: "base64-front", Label: "front"}},
	})
	require.NoError(t, err)
	f.prop.Wait()

	docs, err := f.remote.GetCollection(context.Background(), "t1", remote.CollectionMovements)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	var got models.Movement
	require.NoError(t, json.Unmarshal(docs[0].Data, &got))
	assert.Equal(t, "base64-front", got.Exit.Photos[0].Data)
}

// Without a resolved tenant, propagation is a no-op.
func TestPropagation_NoTenantIsNoop(t *testing.T) {
	f := newFixture(t)
	f.service.session.Logout()

	_, err := f.service.AddVehicle("A 1111", "Hilux")
	require.NoError(t, err)
	f.prop.Wait()

	docs, err := f.remote.GetCollection(context.Background(), "t1", remote.CollectionVehicles)
	require.NoError(t, err)
	assert.Empty(t, docs)
}
