package replica

import "github.com/autocheckhq/autocheck/internal/models"

// Repair corrects each vehicle's cached status against the source of truth:
// a vehicle is out exactly when an active movement references it. The status
// field is a cached projection of movement state and this function is its
// single writer of truth; a mismatch is a detected-and-repaired condition,
// never an error. Idempotent.
func Repair(vehicles []models.Vehicle, movements []models.Movement) ([]models.Vehicle, bool) {
	open := make(map[string]struct{})
	for _, m := range movements {
		if m.Status == models.MovementActive {
			open[m.VehicleID] = struct{}{}
		}
	}

	changed := false
	out := make([]models.Vehicle, len(vehicles))
	for i, v := range vehicles {
		_, hasOpen := open[v.ID]
		switch {
		case hasOpen && v.Status != models.VehicleOut:
			v.Status = models.VehicleOut
			changed = true
		case !hasOpen && v.Status != models.VehicleIn:
			v.Status = models.VehicleIn
			changed = true
		}
		out[i] = v
	}

	return out, changed
}
