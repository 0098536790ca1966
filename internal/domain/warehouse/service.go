package warehouse

import (
	"context"
	"errors"

	"icehouse/internal/core/errstack"
	"icehouse/internal/core/id"
)

// Operation context strings. Stamping happens in exactly one place per
// operation, so every propagated error names the operation that failed even
// if intermediate layers forget to annotate.
const (
	createErrorDetail        = "Error creating warehouse in catalog"
	deleteErrorDetail        = "Error deleting warehouse in catalog"
	renameErrorDetail        = "Error renaming warehouse in catalog"
	listErrorDetail          = "Error listing warehouses in catalog"
	getErrorDetail           = "Error getting warehouse by id in catalog"
	setStatusErrorDetail     = "Error setting warehouse status in catalog"
	setProtectionErrorDetail = "Error setting warehouse protection in catalog"
)

// Service is the warehouse lifecycle contract. It classifies and annotates
// failures but never recovers from them, never retries, and never commits
// or rolls back the caller's transaction.
type Service struct {
	repo Repository
}

// NewService creates a warehouse lifecycle service on top of a storage
// backend.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a warehouse with status Active and returns its id. Name
// uniqueness and project existence are checked by the backend under the
// caller's transaction.
func (s *Service) Create(ctx context.Context, create CreateWarehouse) (id.WarehouseID, error) {
	warehouseID, err := s.repo.Create(ctx, create)
	if err != nil {
		return id.WarehouseID{}, stamp(err, createErrorDetail)
	}
	return warehouseID, nil
}

// Delete removes a warehouse once every guard passes: the warehouse must
// exist, must not be protected (unless query.Force), must have no pending
// background tasks, and must be empty (unless query.Force). Physical
// removal of the underlying data is handed to the maintenance workers
// downstream.
func (s *Service) Delete(ctx context.Context, warehouseID id.WarehouseID, query DeleteQuery) error {
	if err := s.repo.Delete(ctx, warehouseID, query); err != nil {
		return stamp(err, deleteErrorDetail)
	}
	return nil
}

// Rename changes the warehouse name.
func (s *Service) Rename(ctx context.Context, warehouseID id.WarehouseID, newName string) error {
	if err := s.repo.Rename(ctx, warehouseID, newName); err != nil {
		return stamp(err, renameErrorDetail)
	}
	return nil
}

// SetStatus activates or deactivates a warehouse.
func (s *Service) SetStatus(ctx context.Context, warehouseID id.WarehouseID, status Status) error {
	if err := s.repo.SetStatus(ctx, warehouseID, status); err != nil {
		return stamp(err, setStatusErrorDetail)
	}
	return nil
}

// SetProtection toggles the deletion-protection flag of a warehouse.
func (s *Service) SetProtection(ctx context.Context, warehouseID id.WarehouseID, protected bool) error {
	if err := s.repo.SetProtection(ctx, warehouseID, protected); err != nil {
		return stamp(err, setProtectionErrorDetail)
	}
	return nil
}

// List returns the warehouses of a project ordered by name. Passing no
// statuses surfaces Active warehouses only; a non-empty set returns the
// union of matching statuses.
func (s *Service) List(ctx context.Context, projectID id.ProjectID, statuses []Status) ([]Warehouse, error) {
	warehouses, err := s.repo.List(ctx, projectID, statuses)
	if err != nil {
		return nil, stamp(err, listErrorDetail)
	}
	return warehouses, nil
}

// GetByID returns the warehouse, or nil if no Active warehouse with that id
// exists. Absence is not an error.
func (s *Service) GetByID(ctx context.Context, warehouseID id.WarehouseID) (*Warehouse, error) {
	wh, err := s.repo.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, stamp(err, getErrorDetail)
	}
	return wh, nil
}

// RequireByID is GetByID with an empty result converted into an
// IDNotFoundError.
func (s *Service) RequireByID(ctx context.Context, warehouseID id.WarehouseID) (*Warehouse, error) {
	wh, err := s.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, stamp(NewIDNotFound(warehouseID), getErrorDetail)
	}
	return wh, nil
}

// stamp appends the operation context string to any error carrying a
// context stack and returns the error unchanged otherwise.
func stamp(err error, detail string) error {
	var stacked errstack.Error
	if errors.As(err, &stacked) {
		stacked.AppendDetail(detail)
	}
	return err
}
