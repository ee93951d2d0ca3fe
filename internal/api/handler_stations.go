package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"gamelounge-backend/internal/model"
	"gamelounge-backend/internal/pricing"
)

// stationResponse flattens a station with its live occupancy view.
type stationResponse struct {
	model.Station
	IsAvailable bool     `json:"is_available"`
	LiveCost    *float64 `json:"live_cost,omitempty"`
}

// GetStations handles GET /api/stations.
func (h *Handler) GetStations(c *gin.Context) {
	var stations []model.Station
	if err := h.store.DB().Order("id").Find(&stations).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stations"})
		return
	}

	var openSessions []model.Session
	if err := h.store.DB().Where("end_time IS NULL").Find(&openSessions).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sessions"})
		return
	}
	byStation := make(map[int64]model.Session, len(openSessions))
	for _, s := range openSessions {
		byStation[s.StationID] = s
	}

	now := time.Now().UTC()
	response := make([]stationResponse, 0, len(stations))
	for _, st := range stations {
		resp := stationResponse{
			Station:     st,
			IsAvailable: st.Status == model.StatusAvailable,
		}
		if sess, ok := byStation[st.ID]; ok {
			cost := pricing.Cents(pricing.ElapsedCost(sess.StartTime, now, sess.FinalPrice))
			resp.LiveCost = &cost
		}
		response = append(response, resp)
	}
	c.JSON(http.StatusOK, response)
}

type createStationRequest struct {
	DeviceType     model.DeviceType `json:"device_type" binding:"required"`
	Location       string           `json:"location" binding:"required"`
	PricePerMinute float64          `json:"price_per_minute"`
}

// CreateStation handles POST /api/stations.
func (h *Handler) CreateStation(c *gin.Context) {
	var req createStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.PricePerMinute < 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "price_per_minute must not be negative"})
		return
	}

	station := model.Station{
		DeviceType:     req.DeviceType,
		Status:         model.StatusAvailable,
		Location:       req.Location,
		PricePerMinute: pricing.Cents(req.PricePerMinute),
	}
	if err := h.store.DB().Create(&station).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, station)
}

// DeleteStation handles DELETE /api/stations/:station_id. A station with an
// active session cannot be deleted; closed sessions keep their station id as
// a weak reference.
func (h *Handler) DeleteStation(c *gin.Context) {
	stationID, ok := pathID(c, "station_id")
	if !ok {
		return
	}

	sess, err := h.store.ActiveSessionForStation(c.Request.Context(), stationID)
	if err != nil {
		abortWithFault(c, err)
		return
	}
	if sess != nil {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "station has an active session"})
		return
	}

	res := h.store.DB().Delete(&model.Station{}, stationID)
	if res.Error != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "station not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

type maintenanceRequest struct {
	Maintenance bool `json:"maintenance"`
}

// PatchStationStatus handles PATCH /api/stations/:station_id/status, moving a
// station in or out of maintenance.
func (h *Handler) PatchStationStatus(c *gin.Context) {
	stationID, ok := pathID(c, "station_id")
	if !ok {
		return
	}

	var req maintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.SetStationMaintenance(c.Request.Context(), stationID, req.Maintenance); err != nil {
		abortWithFault(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetActiveSession handles GET /api/stations/:station_id/session. A station
// without an active session answers 200 with a null session, not 404.
func (h *Handler) GetActiveSession(c *gin.Context) {
	stationID, ok := pathID(c, "station_id")
	if !ok {
		return
	}

	view, err := h.manager.GetActiveSession(c.Request.Context(), stationID)
	if err != nil {
		abortWithFault(c, err)
		return
	}
	if view == nil {
		c.JSON(http.StatusOK, gin.H{"session": nil})
		return
	}
	c.JSON(http.StatusOK, view)
}

// EndSession handles POST /api/stations/:station_id/end. Ending a station
// with no active session is a success so duplicate close requests are safe.
func (h *Handler) EndSession(c *gin.Context) {
	stationID, ok := pathID(c, "station_id")
	if !ok {
		return
	}

	view, err := h.manager.EndSession(c.Request.Context(), stationID)
	if err != nil {
		abortWithFault(c, err)
		return
	}
	if view == nil {
		c.JSON(http.StatusOK, gin.H{"session": nil, "message": "no active session"})
		return
	}
	c.JSON(http.StatusOK, view)
}

// pathID parses a positive integer path parameter, answering 400 on garbage.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}
