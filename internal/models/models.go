// Package models defines the entity types shared by the local replica, the
// remote store and the UI layers: tenants, accounts, vehicles, movements and
// inspection photos.
package models

import "time"

// Role classifies an account's permissions within its tenant.
type Role string

const (
	RoleOwner     Role = "owner"
	RoleManager   Role = "manager"
	RoleInspector Role = "inspector"
)

// VehicleStatus is a cached projection of movement state: a vehicle is "out"
// exactly when an active movement references it. The consistency validator is
// the single writer of truth for this projection.
type VehicleStatus string

const (
	VehicleIn  VehicleStatus = "in"
	VehicleOut VehicleStatus = "out"
)

// MovementStatus is the two-phase custody state: active (vehicle is outside)
// until return registration completes it. The transition is one-way.
type MovementStatus string

const (
	MovementActive    MovementStatus = "active"
	MovementCompleted MovementStatus = "completed"
)

// Tenant is the root of data partitioning; every other entity carries the
// tenant id used to scope remote reads and writes.
type Tenant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Account is a user of the system. Accounts replicate across devices so any
// device can authenticate while offline.
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	Role         Role      `json:"role"`
	TenantID     string    `json:"tenantId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Vehicle is a fleet asset whose custody flips between inside and outside.
type Vehicle struct {
	ID       string        `json:"id"`
	Plate    string        `json:"plate"`
	Model    string        `json:"model"`
	Status   VehicleStatus `json:"status"`
	TenantID string        `json:"tenantId,omitempty"`
}

// Photo holds either an inline encoded image payload or a reference to a
// device-local path / remote URL, never both.
type Photo struct {
	Data       string    `json:"data,omitempty"`
	Ref        string    `json:"ref,omitempty"`
	CapturedAt time.Time `json:"capturedAt"`
	Label      string    `json:"label,omitempty"`
	ByteSize   int       `json:"byteSize,omitempty"`
}

// Inline reports whether the photo carries its payload in-record.
func (p Photo) Inline() bool { return p.Data != "" }

// Inspection records one phase of a movement: the odometer and fuel readings
// plus the photos taken at the gate.
type Inspection struct {
	Time    time.Time `json:"time"`
	Mileage int       `json:"mileage"`
	FuelPct int       `json:"fuelPct"`
	Photos  []Photo   `json:"photos,omitempty"`
}

// AIReports holds condition analysis text attached asynchronously after
// either phase. Attachment never affects movement status.
type AIReports struct {
	ExitCondition   string `json:"exitCondition,omitempty"`
	ReturnCondition string `json:"returnCondition,omitempty"`
	Comparison      string `json:"comparison,omitempty"`
}

// Movement is a paired exit/return custody record for one vehicle. It is
// created by exit registration with status active and a nil Return, and
// mutated exactly once by return registration.
type Movement struct {
	ID        string         `json:"id"`
	VehicleID string         `json:"vehicleId"`
	TenantID  string         `json:"tenantId,omitempty"`
	DriverRef string         `json:"driverRef,omitempty"`
	Status    MovementStatus `json:"status"`
	Exit      Inspection     `json:"exit"`
	Return    *Inspection    `json:"return,omitempty"`
	AIReports *AIReports     `json:"aiReports,omitempty"`
}

// Distance returns the kilometers driven on a completed movement, never
// negative. Zero while the movement is still active.
func (m Movement) Distance() int {
	if m.Return == nil {
		return 0
	}
	d := m.Return.Mileage - m.Exit.Mileage
	if d < 0 {
		return 0
	}
	return d
}
