// Package ledger enforces station and controller availability transitions.
// Every flip is a compare-and-set: a conditional UPDATE whose WHERE clause
// names the expected prior status, so two writers racing for the same device
// cannot both win. RowsAffected == 0 means the prior state did not match.
package ledger

import (
	"fmt"

	"gorm.io/gorm"

	"gamelounge-backend/internal/fault"
	"gamelounge-backend/internal/model"
)

// Reserve flips a station available → occupied and records the owning session.
func Reserve(tx *gorm.DB, stationID, sessionID int64) error {
	res := tx.Model(&model.Station{}).
		Where("id = ? AND status = ?", stationID, model.StatusAvailable).
		Updates(map[string]any{
			"status":             model.StatusOccupied,
			"current_session_id": sessionID,
		})
	if res.Error != nil {
		return fmt.Errorf("reserve station %d: %w", stationID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fault.Conflictf("station", "station %d is not available", stationID)
	}
	return nil
}

// Release flips a station occupied → available, clearing the current session
// pointer and remembering it as the last session.
func Release(tx *gorm.DB, stationID, sessionID int64) error {
	res := tx.Model(&model.Station{}).
		Where("id = ? AND status = ? AND current_session_id = ?", stationID, model.StatusOccupied, sessionID).
		Updates(map[string]any{
			"status":             model.StatusAvailable,
			"current_session_id": nil,
			"last_session_id":    sessionID,
		})
	if res.Error != nil {
		return fmt.Errorf("release station %d: %w", stationID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fault.Conflictf("station", "station %d is not occupied by session %d", stationID, sessionID)
	}
	return nil
}

// ReserveController flips a controller available → in_use.
func ReserveController(tx *gorm.DB, controllerID int64) error {
	res := tx.Model(&model.Controller{}).
		Where("id = ? AND status = ?", controllerID, model.StatusAvailable).
		Update("status", model.StatusInUse)
	if res.Error != nil {
		return fmt.Errorf("reserve controller %d: %w", controllerID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fault.Conflictf("controller", "controller %d is not available", controllerID)
	}
	return nil
}

// ReleaseController flips a controller in_use → available.
func ReleaseController(tx *gorm.DB, controllerID int64) error {
	res := tx.Model(&model.Controller{}).
		Where("id = ? AND status = ?", controllerID, model.StatusInUse).
		Update("status", model.StatusAvailable)
	if res.Error != nil {
		return fmt.Errorf("release controller %d: %w", controllerID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fault.Conflictf("controller", "controller %d is not in use", controllerID)
	}
	return nil
}

// StationToMaintenance flips a station available → maintenance. A station
// under an active session cannot be pulled for maintenance.
func StationToMaintenance(tx *gorm.DB, stationID int64) error {
	res := tx.Model(&model.Station{}).
		Where("id = ? AND status = ?", stationID, model.StatusAvailable).
		Update("status", model.StatusMaintenance)
	if res.Error != nil {
		return fmt.Errorf("station %d to maintenance: %w", stationID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fault.Conflictf("station", "station %d cannot enter maintenance while not available", stationID)
	}
	return nil
}

// ControllerToMaintenance flips a controller available → maintenance.
func ControllerToMaintenance(tx *gorm.DB, controllerID int64) error {
	res := tx.Model(&model.Controller{}).
		Where("id = ? AND status = ?", controllerID, model.StatusAvailable).
		Update("status", model.StatusMaintenance)
	if res.Error != nil {
		return fmt.Errorf("controller %d to maintenance: %w", controllerID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fault.Conflictf("controller", "controller %d cannot enter maintenance while not available", controllerID)
	}
	return nil
}

// BackFromMaintenance returns a station or controller to the available pool.
func BackFromMaintenance(tx *gorm.DB, entity any, id int64) error {
	res := tx.Model(entity).
		Where("id = ? AND status = ?", id, model.StatusMaintenance).
		Update("status", model.StatusAvailable)
	if res.Error != nil {
		return fmt.Errorf("back from maintenance %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fault.Conflictf("device", "device %d is not in maintenance", id)
	}
	return nil
}
