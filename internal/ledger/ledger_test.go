package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"gamelounge-backend/internal/fault"
	"gamelounge-backend/internal/model"
)

func newLedgerDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:ledger_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Station{}, &model.Controller{}))

	// Each test starts from a clean table set.
	require.NoError(t, db.Exec("DELETE FROM stations").Error)
	require.NoError(t, db.Exec("DELETE FROM controllers").Error)
	return db
}

func TestReserveAndRelease(t *testing.T) {
	db := newLedgerDB(t)
	require.NoError(t, db.Create(&model.Station{ID: 1, DeviceType: model.DevicePS5, Status: model.StatusAvailable, Location: "row-1/ps5-1"}).Error)

	require.NoError(t, Reserve(db, 1, 77))

	var st model.Station
	require.NoError(t, db.First(&st, 1).Error)
	assert.Equal(t, model.StatusOccupied, st.Status)
	require.NotNil(t, st.CurrentSessionID)
	assert.EqualValues(t, 77, *st.CurrentSessionID)

	// Double-booking the occupied station is a conflict.
	err := Reserve(db, 1, 78)
	assert.True(t, fault.IsKind(err, fault.Conflict))

	require.NoError(t, Release(db, 1, 77))
	require.NoError(t, db.First(&st, 1).Error)
	assert.Equal(t, model.StatusAvailable, st.Status)
	assert.Nil(t, st.CurrentSessionID)
	require.NotNil(t, st.LastSessionID)
	assert.EqualValues(t, 77, *st.LastSessionID)

	// Releasing twice is a conflict at the ledger level.
	err = Release(db, 1, 77)
	assert.True(t, fault.IsKind(err, fault.Conflict))
}

func TestReleaseGuardsSessionOwnership(t *testing.T) {
	db := newLedgerDB(t)
	require.NoError(t, db.Create(&model.Station{ID: 2, DeviceType: model.DeviceXbox, Status: model.StatusAvailable, Location: "row-1/xbox-1"}).Error)
	require.NoError(t, Reserve(db, 2, 10))

	// A release naming the wrong session must not flip the station.
	err := Release(db, 2, 11)
	assert.True(t, fault.IsKind(err, fault.Conflict))

	var st model.Station
	require.NoError(t, db.First(&st, 2).Error)
	assert.Equal(t, model.StatusOccupied, st.Status)
}

func TestControllerCompareAndSet(t *testing.T) {
	db := newLedgerDB(t)
	require.NoError(t, db.Create(&model.Controller{ID: 5, DeviceType: model.DevicePS5, Status: model.StatusAvailable, Identifier: "CTRL-5"}).Error)

	require.NoError(t, ReserveController(db, 5))

	// The second reservation sees in_use and loses.
	err := ReserveController(db, 5)
	assert.True(t, fault.IsKind(err, fault.Conflict))

	require.NoError(t, ReleaseController(db, 5))
	err = ReleaseController(db, 5)
	assert.True(t, fault.IsKind(err, fault.Conflict))
}

func TestMaintenanceTransitions(t *testing.T) {
	db := newLedgerDB(t)
	require.NoError(t, db.Create(&model.Station{ID: 3, DeviceType: model.DevicePC, Status: model.StatusAvailable, Location: "row-2/pc-1"}).Error)
	require.NoError(t, db.Create(&model.Controller{ID: 6, DeviceType: model.DevicePC, Status: model.StatusAvailable, Identifier: "CTRL-6"}).Error)

	// An occupied station cannot be pulled for maintenance.
	require.NoError(t, Reserve(db, 3, 1))
	err := StationToMaintenance(db, 3)
	assert.True(t, fault.IsKind(err, fault.Conflict))
	require.NoError(t, Release(db, 3, 1))

	require.NoError(t, StationToMaintenance(db, 3))
	err = Reserve(db, 3, 2)
	assert.True(t, fault.IsKind(err, fault.Conflict))
	require.NoError(t, BackFromMaintenance(db, &model.Station{}, 3))

	// Same rules for controllers.
	require.NoError(t, ReserveController(db, 6))
	err = ControllerToMaintenance(db, 6)
	assert.True(t, fault.IsKind(err, fault.Conflict))
	require.NoError(t, ReleaseController(db, 6))
	require.NoError(t, ControllerToMaintenance(db, 6))
	require.NoError(t, BackFromMaintenance(db, &model.Controller{}, 6))
}
