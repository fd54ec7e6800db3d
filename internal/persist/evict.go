package persist

import "github.com/autocheckhq/autocheck/internal/models"

// KeepActiveMovements is the eviction policy for the movements collection:
// drop completed movements first, keep every active one. Open custody events
// are operationally critical; history is recoverable from the remote store.
func KeepActiveMovements(movements []models.Movement) ([]models.Movement, bool) {
	active := make([]models.Movement, 0, len(movements))
	for _, m := range movements {
		if m.Status == models.MovementActive {
			active = append(active, m)
		}
	}
	return active, len(active) != len(movements)
}
