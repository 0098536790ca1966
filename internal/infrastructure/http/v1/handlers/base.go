// Package handlers contains the HTTP request handlers of the v1 API.
package handlers

import (
	"github.com/gin-gonic/gin"

	"icehouse/internal/core/apperror"
	"icehouse/internal/core/id"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewBadRequest("invalid request body: "+err.Error()))
		return false
	}
	return true
}

// Error registers the error on the gin context and aborts the request.
// The JSON response is produced by middleware.ErrorHandler (single source
// of truth).
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// WarehouseID parses the :id path parameter.
func (h *BaseHandler) WarehouseID(c *gin.Context) (id.WarehouseID, bool) {
	warehouseID, err := id.ParseWarehouseID(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewBadRequest("invalid warehouse id"))
		return id.WarehouseID{}, false
	}
	return warehouseID, true
}

// ProjectID parses the :projectID path parameter.
func (h *BaseHandler) ProjectID(c *gin.Context) (id.ProjectID, bool) {
	projectID, err := id.ParseProjectID(c.Param("projectID"))
	if err != nil {
		h.Error(c, apperror.NewBadRequest("invalid project id"))
		return id.ProjectID{}, false
	}
	return projectID, true
}
