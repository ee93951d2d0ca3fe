package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gamelounge-backend/internal/session"
)

// StartSession handles POST /api/sessions.
func (h *Handler) StartSession(c *gin.Context) {
	var req session.StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.manager.StartSession(c.Request.Context(), req)
	if err != nil {
		abortWithFault(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

type attachRequest struct {
	ControllerID int64 `json:"controller_id" binding:"required"`
}

// AttachController handles POST /api/sessions/:session_id/controllers.
func (h *Handler) AttachController(c *gin.Context) {
	sessionID, ok := pathID(c, "session_id")
	if !ok {
		return
	}

	var req attachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.manager.AttachController(c.Request.Context(), sessionID, req.ControllerID)
	if err != nil {
		abortWithFault(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DetachController handles DELETE /api/sessions/:session_id/controllers/:controller_id.
func (h *Handler) DetachController(c *gin.Context) {
	sessionID, ok := pathID(c, "session_id")
	if !ok {
		return
	}
	controllerID, ok := pathID(c, "controller_id")
	if !ok {
		return
	}

	view, err := h.manager.DetachController(c.Request.Context(), sessionID, controllerID)
	if err != nil {
		abortWithFault(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetSession handles GET /api/sessions/:session_id, serving both open and
// closed sessions for the audit trail.
func (h *Handler) GetSession(c *gin.Context) {
	sessionID, ok := pathID(c, "session_id")
	if !ok {
		return
	}

	sess, err := h.store.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		abortWithFault(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}
