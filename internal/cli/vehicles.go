package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/autocheckhq/autocheck/internal/models"
)

// ListVehicles prints the fleet with custody status, one vehicle per line.
func (a *App) ListVehicles(ctx context.Context) error {
	vehicles := a.service.Vehicles().Get()
	if len(vehicles) == 0 {
		printlnFn("No vehicles yet.")
		return nil
	}

	for _, v := range vehicles {
		marker := "in "
		if v.Status == models.VehicleOut {
			marker = "OUT"
		}
		line := fmt.Sprintf("[%s] %-12s %-20s %s", marker, v.Plate, v.Model, v.ID)
		if v.Status == models.VehicleOut {
			if m, ok := a.service.ActiveMovementForVehicle(v.ID); ok {
				line += fmt.Sprintf("  (out since %s, driver %s)",
					m.Exit.Time.Format("2006-01-02 15:04"), m.DriverRef)
			}
		}
		printlnFn(line)
	}
	return nil
}

// AddVehicle prompts for plate and model and registers the vehicle.
func (a *App) AddVehicle(ctx context.Context) error {
	plate, err := getSimpleText(a.reader, "Plate", os.Stdout)
	if err != nil {
		return err
	}
	model, err := getSimpleText(a.reader, "Model", os.Stdout)
	if err != nil {
		return err
	}

	v, err := a.service.AddVehicle(plate, model)
	if err != nil {
		printlnFn("Failed:", err.Error())
		return err
	}

	printlnFn("Added", v.Plate, "with id", v.ID)
	return nil
}

// DeleteVehicle prompts for an id and removes the vehicle.
func (a *App) DeleteVehicle(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Vehicle id", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.service.DeleteVehicle(id); err != nil {
		printlnFn("Failed:", err.Error())
		return err
	}

	printlnFn("Deleted.")
	return nil
}
