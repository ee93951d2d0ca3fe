package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"

	"gamelounge-backend/internal/model"
	"gamelounge-backend/internal/pricing"
)

// GetGames handles GET /api/games. Inactive titles are included so the
// front desk can see the whole catalog; sessions may only reference active ones.
func (h *Handler) GetGames(c *gin.Context) {
	var games []model.Game
	if err := h.store.DB().Order("name").Find(&games).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve games"})
		return
	}
	c.JSON(http.StatusOK, games)
}

type createGameRequest struct {
	Name           string             `json:"name" binding:"required"`
	PricePerMinute float64            `json:"price_per_minute"`
	DeviceTypes    []model.DeviceType `json:"device_types" binding:"required"`
	IsMultiplayer  bool               `json:"is_multiplayer"`
}

// CreateGame handles POST /api/games.
func (h *Handler) CreateGame(c *gin.Context) {
	var req createGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.PricePerMinute < 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "price_per_minute must not be negative"})
		return
	}

	game := model.Game{
		Name:           req.Name,
		PricePerMinute: pricing.Cents(req.PricePerMinute),
		DeviceTypes:    req.DeviceTypes,
		IsMultiplayer:  req.IsMultiplayer,
		IsActive:       true,
	}
	if err := h.store.DB().Create(&game).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, game)
}

// GetControllers handles GET /api/controllers.
func (h *Handler) GetControllers(c *gin.Context) {
	var controllers []model.Controller
	if err := h.store.DB().Order("id").Find(&controllers).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve controllers"})
		return
	}
	c.JSON(http.StatusOK, controllers)
}

type createControllerRequest struct {
	DeviceType     model.DeviceType `json:"device_type" binding:"required"`
	Identifier     string           `json:"identifier" binding:"required"`
	PricePerMinute float64          `json:"price_per_minute"`
}

// CreateController handles POST /api/controllers.
func (h *Handler) CreateController(c *gin.Context) {
	var req createControllerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.PricePerMinute < 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "price_per_minute must not be negative"})
		return
	}

	controller := model.Controller{
		DeviceType:     req.DeviceType,
		Status:         model.StatusAvailable,
		Identifier:     req.Identifier,
		PricePerMinute: pricing.Cents(req.PricePerMinute),
	}
	if err := h.store.DB().Create(&controller).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, controller)
}

// PatchControllerStatus handles PATCH /api/controllers/:controller_id/status.
func (h *Handler) PatchControllerStatus(c *gin.Context) {
	controllerID, ok := pathID(c, "controller_id")
	if !ok {
		return
	}

	var req maintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.SetControllerMaintenance(c.Request.Context(), controllerID, req.Maintenance); err != nil {
		abortWithFault(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteGame handles DELETE /api/games/:game_id. A game referenced by an
// active session cannot be deleted; closed sessions keep the id as a weak
// reference.
func (h *Handler) DeleteGame(c *gin.Context) {
	gameID, ok := pathID(c, "game_id")
	if !ok {
		return
	}

	var active int64
	if err := h.store.DB().Model(&model.Session{}).
		Where("game_id = ? AND end_time IS NULL", gameID).
		Count(&active).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if active > 0 {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "game is referenced by an active session"})
		return
	}

	res := h.store.DB().Delete(&model.Game{}, gameID)
	if res.Error != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteController handles DELETE /api/controllers/:controller_id.
func (h *Handler) DeleteController(c *gin.Context) {
	controllerID, ok := pathID(c, "controller_id")
	if !ok {
		return
	}

	res := h.store.DB().
		Where("id = ? AND status <> ?", controllerID, model.StatusInUse).
		Delete(&model.Controller{})
	if res.Error != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		// Either missing or attached to a session; look once more to tell
		// the caller which.
		var ctrl model.Controller
		if err := h.store.DB().First(&ctrl, controllerID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "controller not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "controller is attached to an active session"})
		return
	}
	c.Status(http.StatusNoContent)
}

type putDiscountRequest struct {
	MembershipType string  `json:"membership_type" binding:"required"`
	DiscountType   string  `json:"discount_type" binding:"required"`
	Rate           float64 `json:"rate"`
}

// PutDiscount handles PUT /api/discounts: upsert of the single active rate
// for a (membership type, discount type) pair.
func (h *Handler) PutDiscount(c *gin.Context) {
	var req putDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Rate < 0 || req.Rate > 1 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "rate must be within [0,1]"})
		return
	}

	cfg := model.DiscountConfig{
		MembershipType: req.MembershipType,
		DiscountType:   req.DiscountType,
		Rate:           req.Rate,
		IsActive:       true,
	}
	err := h.store.DB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "membership_type"}, {Name: "discount_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate", "is_active", "updated_at"}),
	}).Create(&cfg).Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}
