package warehouse

import (
	"fmt"
	"net/http"

	"icehouse/internal/core/apperror"
	"icehouse/internal/core/errstack"
	"icehouse/internal/core/id"
)

// Each error type below represents exactly one violated invariant and
// carries only the data needed to render a precise message plus a context
// stack. Invariant violations map to 4xx; see the ErrorModel methods for
// the exact status codes.

// IDNotFoundError means no warehouse with that id is visible to the caller.
type IDNotFoundError struct {
	WarehouseID id.WarehouseID
	errstack.Stack
}

// NewIDNotFound creates an IDNotFoundError for the given id.
func NewIDNotFound(warehouseID id.WarehouseID) *IDNotFoundError {
	return &IDNotFoundError{WarehouseID: warehouseID}
}

func (e *IDNotFoundError) Error() string {
	return fmt.Sprintf("A warehouse with id '%s' does not exist", e.WarehouseID)
}

// ErrorModel implements apperror.ModelProvider.
func (e *IDNotFoundError) ErrorModel() apperror.ErrorModel {
	return apperror.ErrorModel{
		Type:    "WarehouseNotFound",
		Code:    http.StatusNotFound,
		Message: e.Error(),
		Stack:   e.Details(),
	}
}

// AlreadyExistsError means a warehouse name collided within a project.
type AlreadyExistsError struct {
	WarehouseName string
	ProjectID     id.ProjectID
	errstack.Stack
}

// NewAlreadyExists creates an AlreadyExistsError for the colliding name.
func NewAlreadyExists(warehouseName string, projectID id.ProjectID) *AlreadyExistsError {
	return &AlreadyExistsError{WarehouseName: warehouseName, ProjectID: projectID}
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("A warehouse with the name '%s' already exists in project with id '%s'",
		e.WarehouseName, e.ProjectID)
}

// ErrorModel implements apperror.ModelProvider.
func (e *AlreadyExistsError) ErrorModel() apperror.ErrorModel {
	return apperror.ErrorModel{
		Type:    "WarehouseAlreadyExists",
		Code:    http.StatusConflict,
		Message: e.Error(),
		Stack:   e.Details(),
	}
}

// ProjectNotFoundError means the referenced project does not exist. Only
// relevant at creation time.
type ProjectNotFoundError struct {
	ProjectID id.ProjectID
	errstack.Stack
}

// NewProjectNotFound creates a ProjectNotFoundError for the given project.
func NewProjectNotFound(projectID id.ProjectID) *ProjectNotFoundError {
	return &ProjectNotFoundError{ProjectID: projectID}
}

func (e *ProjectNotFoundError) Error() string {
	return fmt.Sprintf("Project with id '%s' not found", e.ProjectID)
}

// ErrorModel implements apperror.ModelProvider.
func (e *ProjectNotFoundError) ErrorModel() apperror.ErrorModel {
	return apperror.ErrorModel{
		Type:    "ProjectNotFound",
		Code:    http.StatusNotFound,
		Message: e.Error(),
		Stack:   e.Details(),
	}
}

// StorageProfileSerializationError means the storage configuration could
// not be encoded for persistence. Wraps the encoding failure as cause.
type StorageProfileSerializationError struct {
	Source error
	errstack.Stack
}

// NewStorageProfileSerialization wraps a serialization failure.
func NewStorageProfileSerialization(source error) *StorageProfileSerializationError {
	return &StorageProfileSerializationError{Source: source}
}

func (e *StorageProfileSerializationError) Error() string {
	return fmt.Sprintf("Error serializing storage profile: %v", e.Source)
}

func (e *StorageProfileSerializationError) Unwrap() error {
	return e.Source
}

// ErrorModel implements apperror.ModelProvider. The cause is attached for
// diagnostics; this is the only error whose native chain crosses the wire
// boundary.
func (e *StorageProfileSerializationError) ErrorModel() apperror.ErrorModel {
	return apperror.ErrorModel{
		Type:    "StorageProfileSerializationError",
		Code:    http.StatusInternalServerError,
		Message: e.Error(),
		Stack:   e.Details(),
		Source:  e.Source,
	}
}

// UnfinishedTasksError guards deletion while background tasks are pending.
type UnfinishedTasksError struct {
	errstack.Stack
}

// NewUnfinishedTasks creates an UnfinishedTasksError.
func NewUnfinishedTasks() *UnfinishedTasksError {
	return &UnfinishedTasksError{}
}

func (e *UnfinishedTasksError) Error() string {
	return "Warehouse has unfinished tasks. Cannot delete warehouse until all tasks are finished."
}

// ErrorModel implements apperror.ModelProvider.
func (e *UnfinishedTasksError) ErrorModel() apperror.ErrorModel {
	return apperror.ErrorModel{
		Type:    "WarehouseHasUnfinishedTasks",
		Code:    http.StatusConflict,
		Message: e.Error(),
		Stack:   e.Details(),
	}
}

// NotEmptyError guards deletion of warehouses that still contain live
// tabulars or namespaces.
type NotEmptyError struct {
	errstack.Stack
}

// NewNotEmpty creates a NotEmptyError.
func NewNotEmpty() *NotEmptyError {
	return &NotEmptyError{}
}

func (e *NotEmptyError) Error() string {
	return "Warehouse is not empty. Cannot delete a non-empty warehouse."
}

// ErrorModel implements apperror.ModelProvider.
func (e *NotEmptyError) ErrorModel() apperror.ErrorModel {
	return apperror.ErrorModel{
		Type:    "WarehouseNotEmpty",
		Code:    http.StatusConflict,
		Message: e.Error(),
		Stack:   e.Details(),
	}
}

// ProtectedError guards deletion of protected warehouses when the caller
// did not set the force flag.
type ProtectedError struct {
	errstack.Stack
}

// NewProtected creates a ProtectedError.
func NewProtected() *ProtectedError {
	return &ProtectedError{}
}

func (e *ProtectedError) Error() string {
	return "Warehouse is protected and force flag not set. Cannot delete protected warehouse."
}

// ErrorModel implements apperror.ModelProvider.
func (e *ProtectedError) ErrorModel() apperror.ErrorModel {
	return apperror.ErrorModel{
		Type:    "WarehouseProtected",
		Code:    http.StatusConflict,
		Message: e.Error(),
		Stack:   e.Details(),
	}
}
