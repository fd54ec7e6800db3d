package fleet

import (
	"fmt"

	"github.com/autocheckhq/autocheck/internal/common"
	"github.com/autocheckhq/autocheck/internal/models"
	"github.com/autocheckhq/autocheck/internal/remote"
)

// ExitRequest carries the gate inspection for an exit registration.
type ExitRequest struct {
	VehicleID string
	DriverRef string
	Mileage   int
	FuelPct   int
	Photos    []models.Photo
}

// ReturnRequest carries the gate inspection for a return registration.
// ConfirmLow acknowledges a return mileage below the exit reading; without
// it such a reading is rejected with common.ErrMileageWarning.
type ReturnRequest struct {
	Mileage    int
	FuelPct    int
	Photos     []models.Photo
	ConfirmLow bool
}

// RegisterExit opens a custody movement: a new active movement plus the
// vehicle status flip to out, performed as two coordinated local mutations
// and propagated independently. If one of the remote writes is lost the
// consistency repair reconciles the projection on the next merge.
func (s *Service) RegisterExit(req ExitRequest) (models.Movement, error) {
	vehicle, ok := s.VehicleByID(req.VehicleID)
	if !ok {
		return models.Movement{}, fmt.Errorf("vehicle %s: %w", req.VehicleID, common.ErrNotFound)
	}
	if vehicle.Status != models.VehicleIn {
		return models.Movement{}, fmt.Errorf("vehicle %s: %w", req.VehicleID, common.ErrVehicleNotIn)
	}
	if req.Mileage < 0 || req.FuelPct < 0 || req.FuelPct > 100 {
		return models.Movement{}, fmt.Errorf("mileage/fuel out of range: %w", common.ErrValidation)
	}

	movement := models.Movement{
		ID:        s.newID(),
		VehicleID: vehicle.ID,
		TenantID:  s.session.TenantID(),
		DriverRef: req.DriverRef,
		Status:    models.MovementActive,
		Exit: models.Inspection{
			Time:    s.now(),
			Mileage: req.Mileage,
			FuelPct: req.FuelPct,
			Photos:  req.Photos,
		},
	}

	s.movements.Update(func(prev []models.Movement) []models.Movement {
		return append(append([]models.Movement(nil), prev...), movement)
	})
	updatedVehicle, _ := s.updateVehicle(vehicle.ID, func(v models.Vehicle) models.Vehicle {
		v.Status = models.VehicleOut
		return v
	})

	s.prop.SaveMovement(movement)
	s.prop.SaveItem(remote.CollectionVehicles, updatedVehicle.ID, updatedVehicle)

	return movement, nil
}

// RegisterReturn completes an active movement. The transition is one-way and
// terminal: attempting it against a completed or unknown movement is a
// validation error and mutates nothing.
func (s *Service) RegisterReturn(movementID string, req ReturnRequest) (models.Movement, error) {
	current, ok := s.movementByID(movementID)
	if !ok {
		return models.Movement{}, fmt.Errorf("movement %s: %w", movementID, common.ErrNotFound)
	}
	if current.Status != models.MovementActive {
		return models.Movement{}, fmt.Errorf("movement %s is not active: %w", movementID, common.ErrMovementNotOpen)
	}
	if req.Mileage < 0 || req.FuelPct < 0 || req.FuelPct > 100 {
		return models.Movement{}, fmt.Errorf("mileage/fuel out of range: %w", common.ErrValidation)
	}
	if req.Mileage < current.Exit.Mileage && !req.ConfirmLow {
		return models.Movement{}, fmt.Errorf("return mileage %d below exit mileage %d: %w",
			req.Mileage, current.Exit.Mileage, common.ErrMileageWarning)
	}

	ret := models.Inspection{
		Time:    s.now(),
		Mileage: req.Mileage,
		FuelPct: req.FuelPct,
		Photos:  req.Photos,
	}

	var completed models.Movement
	s.movements.Update(func(prev []models.Movement) []models.Movement {
		out := make([]models.Movement, len(prev))
		for i, m := range prev {
			if m.ID == movementID {
				m.Status = models.MovementCompleted
				m.Return = &ret
				completed = m
			}
			out[i] = m
		}
		return out
	})
	updatedVehicle, hadVehicle := s.updateVehicle(completed.VehicleID, func(v models.Vehicle) models.Vehicle {
		v.Status = models.VehicleIn
		return v
	})

	s.prop.SaveMovement(completed)
	if hadVehicle {
		s.prop.SaveItem(remote.CollectionVehicles, updatedVehicle.ID, updatedVehicle)
	}

	return completed, nil
}

// AttachAIReport merges analysis text onto a movement of any status.
// Attachment never affects the lifecycle state.
func (s *Service) AttachAIReport(movementID string, report models.AIReports) error {
	current, ok := s.movementByID(movementID)
	if !ok {
		return fmt.Errorf("movement %s: %w", movementID, common.ErrNotFound)
	}

	merged := models.AIReports{}
	if current.AIReports != nil {
		merged = *current.AIReports
	}
	if report.ExitCondition != "" {
		merged.ExitCondition = report.ExitCondition
	}
	if report.ReturnCondition != "" {
		merged.ReturnCondition = report.ReturnCondition
	}
	if report.Comparison != "" {
		merged.Comparison = report.Comparison
	}

	var updated models.Movement
	s.movements.Update(func(prev []models.Movement) []models.Movement {
		out := make([]models.Movement, len(prev))
		for i, m := range prev {
			if m.ID == movementID {
				m.AIReports = &merged
				updated = m
			}
			out[i] = m
		}
		return out
	})

	s.prop.SaveMovement(updated)
	return nil
}

// ActiveMovements lists open custody records.
func (s *Service) ActiveMovements() []models.Movement {
	var out []models.Movement
	for _, m := range s.movements.Get() {
		if m.Status == models.MovementActive {
			out = append(out, m)
		}
	}
	return out
}

// ActiveMovementForVehicle returns the open movement referencing the vehicle.
func (s *Service) ActiveMovementForVehicle(vehicleID string) (models.Movement, bool) {
	for _, m := range s.movements.Get() {
		if m.VehicleID == vehicleID && m.Status == models.MovementActive {
			return m, true
		}
	}
	return models.Movement{}, false
}

// ClearCompleted prunes completed movements from the local replica. The
// remote history is authoritative, so nothing is propagated as a delete.
func (s *Service) ClearCompleted() int {
	removed := 0
	s.movements.Update(func(prev []models.Movement) []models.Movement {
		out := make([]models.Movement, 0, len(prev))
		for _, m := range prev {
			if m.Status == models.MovementActive {
				out = append(out, m)
			} else {
				removed++
			}
		}
		return out
	})
	return removed
}

func (s *Service) movementByID(id string) (models.Movement, bool) {
	for _, m := range s.movements.Get() {
		if m.ID == id {
			return m, true
		}
	}
	return models.Movement{}, false
}
