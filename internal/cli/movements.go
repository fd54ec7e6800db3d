package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/autocheckhq/autocheck/internal/common"
	"github.com/autocheckhq/autocheck/internal/fleet"
	"github.com/autocheckhq/autocheck/internal/models"
)

// RegisterExit walks through a gate exit: pick the vehicle by plate, capture
// the inspection readings, open the movement.
func (a *App) RegisterExit(ctx context.Context) error {
	plate, err := getSimpleText(a.reader, "Plate", os.Stdout)
	if err != nil {
		return err
	}

	vehicle, ok := a.findByPlate(plate)
	if !ok {
		printlnFn("No vehicle with plate", plate)
		return common.ErrNotFound
	}

	driver, err := getSimpleText(a.reader, "Driver / contract reference", os.Stdout)
	if err != nil {
		return err
	}
	mileage, err := GetInt(a.reader, "Mileage", os.Stdout)
	if err != nil {
		return err
	}
	fuel, err := GetInt(a.reader, "Fuel %", os.Stdout)
	if err != nil {
		return err
	}

	m, err := a.service.RegisterExit(fleet.ExitRequest{
		VehicleID: vehicle.ID,
		DriverRef: driver,
		Mileage:   mileage,
		FuelPct:   fuel,
	})
	if err != nil {
		printlnFn("Failed:", err.Error())
		return err
	}

	printlnFn("Exit registered, movement", m.ID)
	return nil
}

// RegisterReturn closes the open movement for a vehicle. A return mileage
// below the exit reading asks for confirmation before being accepted.
func (a *App) RegisterReturn(ctx context.Context) error {
	plate, err := getSimpleText(a.reader, "Plate", os.Stdout)
	if err != nil {
		return err
	}

	vehicle, ok := a.findByPlate(plate)
	if !ok {
		printlnFn("No vehicle with plate", plate)
		return common.ErrNotFound
	}
	movement, ok := a.service.ActiveMovementForVehicle(vehicle.ID)
	if !ok {
		printlnFn("Vehicle", plate, "has no open movement")
		return common.ErrMovementNotOpen
	}

	mileage, err := GetInt(a.reader, "Mileage", os.Stdout)
	if err != nil {
		return err
	}
	fuel, err := GetInt(a.reader, "Fuel %", os.Stdout)
	if err != nil {
		return err
	}

	req := fleet.ReturnRequest{Mileage: mileage, FuelPct: fuel}
	done, err := a.service.RegisterReturn(movement.ID, req)
	if errors.Is(err, common.ErrMileageWarning) {
		confirmed, cerr := GetYesNo(a.reader,
			fmt.Sprintf("Mileage %d is below the exit reading %d. Accept anyway?",
				mileage, movement.Exit.Mileage), os.Stdout)
		if cerr != nil {
			return cerr
		}
		if !confirmed {
			printlnFn("Return cancelled.")
			return nil
		}
		req.ConfirmLow = true
		done, err = a.service.RegisterReturn(movement.ID, req)
	}
	if err != nil {
		printlnFn("Failed:", err.Error())
		return err
	}

	printlnFn("Return registered, distance", done.Distance(), "km")
	return nil
}

// ListMovements prints open movements first, then the completed history.
func (a *App) ListMovements(ctx context.Context) error {
	movements := a.service.Movements().Get()
	if len(movements) == 0 {
		printlnFn("No movements yet.")
		return nil
	}

	for _, m := range movements {
		plate := m.VehicleID
		if v, ok := a.service.VehicleByID(m.VehicleID); ok {
			plate = v.Plate
		}
		switch m.Status {
		case models.MovementActive:
			printlnFn(fmt.Sprintf("ACTIVE    %-12s out %s, driver %s",
				plate, m.Exit.Time.Format("2006-01-02 15:04"), m.DriverRef))
		default:
			back := "?"
			if m.Return != nil {
				back = m.Return.Time.Format("2006-01-02 15:04")
			}
			printlnFn(fmt.Sprintf("completed %-12s out %s, back %s, %d km",
				plate, m.Exit.Time.Format("2006-01-02 15:04"), back, m.Distance()))
		}
	}
	return nil
}

// ClearCompleted prunes the completed history from this device.
func (a *App) ClearCompleted(ctx context.Context) error {
	removed := a.service.ClearCompleted()
	printlnFn("Removed", removed, "completed movements.")
	return nil
}

func (a *App) findByPlate(plate string) (models.Vehicle, bool) {
	for _, v := range a.service.Vehicles().Get() {
		if strings.EqualFold(v.Plate, plate) {
			return v, true
		}
	}
	return models.Vehicle{}, false
}
