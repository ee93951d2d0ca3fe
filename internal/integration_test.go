package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"gamelounge-backend/config"
	"gamelounge-backend/internal/api"
	"gamelounge-backend/internal/db"
	"gamelounge-backend/internal/model"
	"gamelounge-backend/internal/session"
	"gamelounge-backend/internal/store"
)

// TestSessionLifecycle drives a full rental through the HTTP surface: set up
// the catalog, open a session, swap controllers, and close it twice.
func TestSessionLifecycle(t *testing.T) {
	testDB, err := gorm.Open(sqlite.Open("file:integration_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()

	require.NoError(t, db.Migrate(testDB))

	cfg := &config.Config{}
	cfg.Billing.MaxControllers = 2
	cfg.Billing.DiscountType = "session_time"
	cfg.Database.OpTimeout = 5 * time.Second
	cfg.Power.Timeout = time.Second
	cfg.Server.RateLimitPerSec = 1000
	cfg.Server.RateLimitBurst = 1000
	cfg.Server.CacheTTLSeconds = 1

	appStore := store.NewGormStore(testDB)
	manager := session.NewManager(cfg, appStore, nil, nil)
	router := api.NewRouter(cfg, appStore, manager, nil)

	// The membership directory is external; seed a member directly.
	require.NoError(t, testDB.Create(&model.User{ID: 1, Name: "Riley", MembershipType: model.MembershipPremium}).Error)

	doJSON := func(method, path string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req, _ := http.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	// --- Catalog setup over the API ---

	w := doJSON("POST", "/api/stations", map[string]any{
		"device_type": "ps5", "location": "row-1/ps5-1", "price_per_minute": 0.30,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var station model.Station
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &station))

	var controllers [2]model.Controller
	for i := range controllers {
		w = doJSON("POST", "/api/controllers", map[string]any{
			"device_type": "ps5", "identifier": fmt.Sprintf("CTRL-%d", i+1), "price_per_minute": 0.10,
		})
		require.Equal(t, http.StatusCreated, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &controllers[i]))
	}

	w = doJSON("POST", "/api/games", map[string]any{
		"name": "Gran Turismo 7", "price_per_minute": 0.50, "device_types": []string{"ps5"}, "is_multiplayer": true,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var game model.Game
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &game))

	w = doJSON("PUT", "/api/discounts", map[string]any{
		"membership_type": "premium", "discount_type": "session_time", "rate": 0.20,
	})
	require.Equal(t, http.StatusOK, w.Code)

	// --- Open a session ---

	w = doJSON("POST", "/api/sessions", map[string]any{
		"station_id": station.ID, "user_id": 1, "game_id": game.ID,
		"created_by": 1, "controller_ids": []int64{controllers[0].ID},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var started session.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))
	assert.InDelta(t, 0.60, started.Session.BasePrice, 1e-9)
	assert.InDelta(t, 0.48, started.Session.FinalPrice, 1e-9)
	assert.Equal(t, "Riley", started.UserName)

	// Starting on the occupied station is a conflict.
	w = doJSON("POST", "/api/sessions", map[string]any{
		"station_id": station.ID, "user_id": 1, "created_by": 1,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// --- Controller swap mid-session ---

	w = doJSON("POST", fmt.Sprintf("/api/sessions/%d/controllers", started.Session.ID), map[string]any{
		"controller_id": controllers[1].ID,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var attached session.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &attached))
	assert.InDelta(t, 0.70, attached.Session.BasePrice, 1e-9)

	w = doJSON("DELETE", fmt.Sprintf("/api/sessions/%d/controllers/%d", started.Session.ID, controllers[1].ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detached session.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detached))
	assert.InDelta(t, 0.60, detached.Session.BasePrice, 1e-9)
	assert.InDelta(t, 0.48, detached.Session.FinalPrice, 1e-9)

	// --- Live status ---

	w = doJSON("GET", fmt.Sprintf("/api/stations/%d/session", station.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var live session.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &live))
	assert.Equal(t, started.Session.ID, live.Session.ID)

	// --- Close, twice ---

	w = doJSON("POST", fmt.Sprintf("/api/stations/%d/end", station.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var closed session.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &closed))
	require.NotNil(t, closed.Session.EndTime)
	require.NotNil(t, closed.Session.TotalAmount)

	w = doJSON("POST", fmt.Sprintf("/api/stations/%d/end", station.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "no active session")

	// Everything is back in the pool.
	var st model.Station
	require.NoError(t, testDB.First(&st, station.ID).Error)
	assert.Equal(t, model.StatusAvailable, st.Status)
	assert.Nil(t, st.CurrentSessionID)

	var ctrl model.Controller
	require.NoError(t, testDB.First(&ctrl, controllers[0].ID).Error)
	assert.Equal(t, model.StatusAvailable, ctrl.Status)

	// The closed session remains readable for the audit trail.
	w = doJSON("GET", fmt.Sprintf("/api/sessions/%d", started.Session.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
