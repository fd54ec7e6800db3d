package fleet

import (
	"fmt"
	"strings"
	"time"

	"github.com/autocheckhq/autocheck/internal/common"
	"github.com/autocheckhq/autocheck/internal/logging"
	"github.com/autocheckhq/autocheck/internal/models"
	"github.com/autocheckhq/autocheck/internal/remote"
	"github.com/autocheckhq/autocheck/internal/session"
	"github.com/autocheckhq/autocheck/internal/store"
	"github.com/google/uuid"
)

// Service is the sole mutation surface UI layers use. Every action applies
// the change to the reactive store synchronously (optimistic, immediately
// visible) and hands it to the propagator for best-effort remote replication.
// A validation error means no store was touched.
type Service struct {
	vehicles  *store.Store[[]models.Vehicle]
	movements *store.Store[[]models.Movement]
	accounts  *store.Store[[]models.Account]
	session   *session.Session
	prop      *Propagator
	log       logging.Logger

	now   func() time.Time
	newID func() string
}

func NewService(
	vehicles *store.Store[[]models.Vehicle],
	movements *store.Store[[]models.Movement],
	accounts *store.Store[[]models.Account],
	sess *session.Session,
	prop *Propagator,
	log logging.Logger,
) *Service {
	return &Service{
		vehicles:  vehicles,
		movements: movements,
		accounts:  accounts,
		session:   sess,
		prop:      prop,
		log:       log.With("component", "fleet"),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// Vehicles returns the vehicle store for subscription.
func (s *Service) Vehicles() *store.Store[[]models.Vehicle] { return s.vehicles }

// Movements returns the movement store for subscription.
func (s *Service) Movements() *store.Store[[]models.Movement] { return s.movements }

// Accounts returns the account store for subscription.
func (s *Service) Accounts() *store.Store[[]models.Account] { return s.accounts }

// AddVehicle registers a new vehicle, inside by default.
func (s *Service) AddVehicle(plate, model string) (models.Vehicle, error) {
	plate = strings.TrimSpace(plate)
	if plate == "" {
		return models.Vehicle{}, fmt.Errorf("plate is required: %w", common.ErrValidation)
	}
	for _, v := range s.vehicles.Get() {
		if strings.EqualFold(v.Plate, plate) {
			return models.Vehicle{}, fmt.Errorf("plate %q is already registered: %w", plate, common.ErrValidation)
		}
	}

	vehicle := models.Vehicle{
		ID:       s.newID(),
		Plate:    plate,
		Model:    strings.TrimSpace(model),
		Status:   models.VehicleIn,
		TenantID: s.session.TenantID(),
	}

	s.vehicles.Update(func(prev []models.Vehicle) []models.Vehicle {
		return append(append([]models.Vehicle(nil), prev...), vehicle)
	})
	s.prop.SaveItem(remote.CollectionVehicles, vehicle.ID, vehicle)

	return vehicle, nil
}

// UpdateVehicle edits plate and model. Status is never edited directly: it is
// a projection owned by the movement lifecycle and the consistency repair.
func (s *Service) UpdateVehicle(id, plate, model string) error {
	plate = strings.TrimSpace(plate)
	if plate == "" {
		return fmt.Errorf("plate is required: %w", common.ErrValidation)
	}

	updated, ok := s.updateVehicle(id, func(v models.Vehicle) models.Vehicle {
		v.Plate = plate
		v.Model = strings.TrimSpace(model)
		return v
	})
	if !ok {
		return fmt.Errorf("vehicle %s: %w", id, common.ErrNotFound)
	}

	s.prop.SaveItem(remote.CollectionVehicles, id, updated)
	return nil
}

// DeleteVehicle removes a vehicle. Rejected while the vehicle is outside:
// an open custody record must be closed first.
func (s *Service) DeleteVehicle(id string) error {
	v, ok := s.VehicleByID(id)
	if !ok {
		return fmt.Errorf("vehicle %s: %w", id, common.ErrNotFound)
	}
	if v.Status == models.VehicleOut {
		return fmt.Errorf("vehicle %s has an open movement: %w", id, common.ErrValidation)
	}

	s.vehicles.Update(func(prev []models.Vehicle) []models.Vehicle {
		out := make([]models.Vehicle, 0, len(prev))
		for _, v := range prev {
			if v.ID != id {
				out = append(out, v)
			}
		}
		return out
	})
	s.prop.DeleteItem(remote.CollectionVehicles, id)
	return nil
}

// VehicleByID looks a vehicle up in the current replica.
func (s *Service) VehicleByID(id string) (models.Vehicle, bool) {
	for _, v := range s.vehicles.Get() {
		if v.ID == id {
			return v, true
		}
	}
	return models.Vehicle{}, false
}

// VehiclesInside lists vehicles currently in custody.
func (s *Service) VehiclesInside() []models.Vehicle {
	return s.filterVehicles(models.VehicleIn)
}

// VehiclesOutside lists vehicles currently out.
func (s *Service) VehiclesOutside() []models.Vehicle {
	return s.filterVehicles(models.VehicleOut)
}

func (s *Service) filterVehicles(status models.VehicleStatus) []models.Vehicle {
	var out []models.Vehicle
	for _, v := range s.vehicles.Get() {
		if v.Status == status {
			out = append(out, v)
		}
	}
	return out
}

// updateVehicle applies fn to the vehicle with the given id, returning the
// updated record. No store change happens when the id is unknown.
func (s *Service) updateVehicle(id string, fn func(models.Vehicle) models.Vehicle) (models.Vehicle, bool) {
	var updated models.Vehicle
	found := false
	for _, v := range s.vehicles.Get() {
		if v.ID == id {
			found = true
			break
		}
	}
	if !found {
		return models.Vehicle{}, false
	}

	s.vehicles.Update(func(prev []models.Vehicle) []models.Vehicle {
		out := make([]models.Vehicle, len(prev))
		for i, v := range prev {
			if v.ID == id {
				v = fn(v)
				updated = v
			}
			out[i] = v
		}
		return out
	})
	return updated, true
}

// AddAccount creates an account with a bcrypt password hash so the record can
// authenticate on any device once replicated.
func (s *Service) AddAccount(name, username, password string, role models.Role) (models.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.Account{}, fmt.Errorf("username is required: %w", common.ErrValidation)
	}
	switch role {
	case models.RoleOwner, models.RoleManager, models.RoleInspector:
	default:
		return models.Account{}, fmt.Errorf("unknown role %q: %w", role, common.ErrValidation)
	}
	for _, a := range s.accounts.Get() {
		if strings.EqualFold(a.Username, username) {
			return models.Account{}, fmt.Errorf("username %q is taken: %w", username, common.ErrValidation)
		}
	}

	hash, err := session.HashPassword(password)
	if err != nil {
		return models.Account{}, err
	}

	account := models.Account{
		ID:           s.newID(),
		Name:         strings.TrimSpace(name),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		TenantID:     s.session.TenantID(),
		CreatedAt:    s.now(),
	}

	s.accounts.Update(func(prev []models.Account) []models.Account {
		return append(append([]models.Account(nil), prev...), account)
	})
	s.prop.SaveItem(remote.CollectionAccounts, account.ID, account)

	return account, nil
}

// UpdateAccount edits name and role only; credentials and tenant are fixed.
func (s *Service) UpdateAccount(id, name string, role models.Role) error {
	switch role {
	case models.RoleOwner, models.RoleManager, models.RoleInspector:
	default:
		return fmt.Errorf("unknown role %q: %w", role, common.ErrValidation)
	}

	var updated models.Account
	found := false
	for _, a := range s.accounts.Get() {
		if a.ID == id {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("account %s: %w", id, common.ErrNotFound)
	}

	s.accounts.Update(func(prev []models.Account) []models.Account {
		out := make([]models.Account, len(prev))
		for i, a := range prev {
			if a.ID == id {
				a.Name = strings.TrimSpace(name)
				a.Role = role
				updated = a
			}
			out[i] = a
		}
		return out
	})

	s.prop.SaveItem(remote.CollectionAccounts, id, updated)
	return nil
}

// DeleteAccount removes an account locally and remotely.
func (s *Service) DeleteAccount(id string) error {
	found := false
	for _, a := range s.accounts.Get() {
		if a.ID == id {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("account %s: %w", id, common.ErrNotFound)
	}

	s.accounts.Update(func(prev []models.Account) []models.Account {
		out := make([]models.Account, 0, len(prev))
		for _, a := range prev {
			if a.ID != id {
				out = append(out, a)
			}
		}
		return out
	})
	s.prop.DeleteItem(remote.CollectionAccounts, id)
	return nil
}
