// Package dto defines the request and response shapes of the v1 API.
package dto

import (
	"icehouse/internal/domain/warehouse"
)

// CreateWarehouseRequest is the body of POST /projects/:projectID/warehouses.
type CreateWarehouseRequest struct {
	Name                string                        `json:"name" binding:"required"`
	StorageProfile      map[string]any                `json:"storageProfile" binding:"required"`
	TabularDeletePolicy warehouse.TabularDeletePolicy `json:"tabularDeletePolicy"`
	StorageSecretID     *string                       `json:"storageSecretId,omitempty"`
}

// CreateWarehouseResponse returns the id of the new warehouse.
type CreateWarehouseResponse struct {
	ID string `json:"id"`
}

// RenameWarehouseRequest is the body of POST /warehouses/:id/rename.
type RenameWarehouseRequest struct {
	NewName string `json:"newName" binding:"required"`
}

// SetProtectionRequest is the body of POST /warehouses/:id/protection.
type SetProtectionRequest struct {
	Protected *bool `json:"protected" binding:"required"`
}

// WarehouseResponse is the wire form of a warehouse record.
type WarehouseResponse struct {
	ID                  string                        `json:"id"`
	Name                string                        `json:"name"`
	ProjectID           string                        `json:"projectId"`
	StorageProfile      map[string]any                `json:"storageProfile"`
	StorageSecretID     *string                       `json:"storageSecretId,omitempty"`
	Status              warehouse.Status              `json:"status"`
	TabularDeletePolicy warehouse.TabularDeletePolicy `json:"tabularDeletePolicy"`
	Protected           bool                          `json:"protected"`
}

// ListWarehousesResponse wraps a list result.
type ListWarehousesResponse struct {
	Warehouses []WarehouseResponse `json:"warehouses"`
}

// FromWarehouse converts a domain record to its wire form.
func FromWarehouse(wh *warehouse.Warehouse) WarehouseResponse {
	resp := WarehouseResponse{
		ID:                  wh.ID.String(),
		Name:                wh.Name,
		ProjectID:           wh.ProjectID.String(),
		StorageProfile:      wh.StorageProfile,
		Status:              wh.Status,
		TabularDeletePolicy: wh.TabularDeletePolicy,
		Protected:           wh.Protected,
	}
	if wh.StorageSecretID != nil {
		s := wh.StorageSecretID.String()
		resp.StorageSecretID = &s
	}
	return resp
}

// FromWarehouses converts a list of domain records.
func FromWarehouses(whs []warehouse.Warehouse) ListWarehousesResponse {
	out := ListWarehousesResponse{Warehouses: make([]WarehouseResponse, 0, len(whs))}
	for i := range whs {
		out.Warehouses = append(out.Warehouses, FromWarehouse(&whs[i]))
	}
	return out
}
