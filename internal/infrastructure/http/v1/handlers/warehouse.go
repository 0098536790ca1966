package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"icehouse/internal/core/apperror"
	"icehouse/internal/core/id"
	"icehouse/internal/domain/warehouse"
	"icehouse/internal/infrastructure/http/v1/dto"
	"icehouse/internal/infrastructure/storage/postgres"
)

// WarehouseHandler exposes the warehouse lifecycle operations. Mutations
// run inside a transaction owned by this layer: the handler begins it,
// the service and repository only work within it, and a returned error
// leaves it uncommitted.
type WarehouseHandler struct {
	*BaseHandler
	service *warehouse.Service
	txm     *postgres.TxManager
}

// NewWarehouseHandler creates a warehouse handler.
func NewWarehouseHandler(base *BaseHandler, service *warehouse.Service, txm *postgres.TxManager) *WarehouseHandler {
	return &WarehouseHandler{BaseHandler: base, service: service, txm: txm}
}

// Create handles POST /projects/:projectID/warehouses.
func (h *WarehouseHandler) Create(c *gin.Context) {
	projectID, ok := h.ProjectID(c)
	if !ok {
		return
	}

	var req dto.CreateWarehouseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	create := warehouse.CreateWarehouse{
		Name:                req.Name,
		ProjectID:           projectID,
		StorageProfile:      req.StorageProfile,
		TabularDeletePolicy: req.TabularDeletePolicy,
	}
	if create.TabularDeletePolicy.Kind == "" {
		create.TabularDeletePolicy.Kind = warehouse.DeleteKindHard
	}
	if !create.TabularDeletePolicy.Kind.Valid() {
		h.Error(c, apperror.NewBadRequest("invalid tabular delete kind: "+string(create.TabularDeletePolicy.Kind)))
		return
	}
	if create.TabularDeletePolicy.ExpirationSeconds < 0 {
		h.Error(c, apperror.NewBadRequest("tabular delete expiration must not be negative"))
		return
	}
	if req.StorageSecretID != nil {
		secretID, err := id.ParseSecretID(*req.StorageSecretID)
		if err != nil {
			h.Error(c, apperror.NewBadRequest("invalid storage secret id"))
			return
		}
		create.StorageSecretID = &secretID
	}

	var warehouseID id.WarehouseID
	err := h.txm.RunInTransaction(c.Request.Context(), func(ctx context.Context) error {
		var err error
		warehouseID, err = h.service.Create(ctx, create)
		return err
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateWarehouseResponse{ID: warehouseID.String()})
}

// Delete handles DELETE /warehouses/:id.
func (h *WarehouseHandler) Delete(c *gin.Context) {
	warehouseID, ok := h.WarehouseID(c)
	if !ok {
		return
	}

	query := warehouse.DeleteQuery{Force: c.Query("force") == "true"}

	err := h.txm.RunInTransaction(c.Request.Context(), func(ctx context.Context) error {
		return h.service.Delete(ctx, warehouseID, query)
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Rename handles POST /warehouses/:id/rename.
func (h *WarehouseHandler) Rename(c *gin.Context) {
	warehouseID, ok := h.WarehouseID(c)
	if !ok {
		return
	}

	var req dto.RenameWarehouseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	err := h.txm.RunInTransaction(c.Request.Context(), func(ctx context.Context) error {
		return h.service.Rename(ctx, warehouseID, req.NewName)
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// Activate handles POST /warehouses/:id/activate.
func (h *WarehouseHandler) Activate(c *gin.Context) {
	h.setStatus(c, warehouse.StatusActive)
}

// Deactivate handles POST /warehouses/:id/deactivate.
func (h *WarehouseHandler) Deactivate(c *gin.Context) {
	h.setStatus(c, warehouse.StatusInactive)
}

func (h *WarehouseHandler) setStatus(c *gin.Context, status warehouse.Status) {
	warehouseID, ok := h.WarehouseID(c)
	if !ok {
		return
	}

	err := h.txm.RunInTransaction(c.Request.Context(), func(ctx context.Context) error {
		return h.service.SetStatus(ctx, warehouseID, status)
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// SetProtection handles POST /warehouses/:id/protection.
func (h *WarehouseHandler) SetProtection(c *gin.Context) {
	warehouseID, ok := h.WarehouseID(c)
	if !ok {
		return
	}

	var req dto.SetProtectionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	err := h.txm.RunInTransaction(c.Request.Context(), func(ctx context.Context) error {
		return h.service.SetProtection(ctx, warehouseID, *req.Protected)
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// List handles GET /projects/:projectID/warehouses. Repeating the status
// query parameter widens visibility; without it only Active warehouses are
// returned.
func (h *WarehouseHandler) List(c *gin.Context) {
	projectID, ok := h.ProjectID(c)
	if !ok {
		return
	}

	var statuses []warehouse.Status
	for _, s := range c.QueryArray("status") {
		status := warehouse.Status(s)
		if !status.Valid() {
			h.Error(c, apperror.NewBadRequest("invalid warehouse status: "+s))
			return
		}
		statuses = append(statuses, status)
	}

	warehouses, err := h.service.List(c.Request.Context(), projectID, statuses)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromWarehouses(warehouses))
}

// Get handles GET /warehouses/:id.
func (h *WarehouseHandler) Get(c *gin.Context) {
	warehouseID, ok := h.WarehouseID(c)
	if !ok {
		return
	}

	wh, err := h.service.RequireByID(c.Request.Context(), warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromWarehouse(wh))
}
