package warehouse

import (
	"context"

	"icehouse/internal/core/id"
)

// Repository defines the storage backend capability the lifecycle service
// is built on. The PostgreSQL implementation lives in
// infrastructure/storage/postgres.
//
// Mutating operations (Create, Delete, Rename, SetStatus, SetProtection)
// must run inside a transaction already opened by the caller and carried in
// ctx; the repository never commits or rolls back. Read operations use a
// pooled connection and guarantee read-committed as of call time only.
//
// Every method returns either nil or one of the errors documented on it;
// any other backend failure arrives wrapped as *catalogerr.BackendError,
// classified ConcurrentModification when a write lost a race and Unexpected
// otherwise.
type Repository interface {
	// Create inserts a new warehouse with status Active and returns its id.
	// Errors: *AlreadyExistsError, *ProjectNotFoundError,
	// *StorageProfileSerializationError, *catalogerr.BackendError.
	Create(ctx context.Context, create CreateWarehouse) (id.WarehouseID, error)

	// Delete removes the warehouse record once all guards pass. Guards are
	// evaluated under the ambient transaction, in order: existence (row
	// lock), protection, unfinished tasks, emptiness.
	// Errors: *IDNotFoundError, *ProtectedError, *UnfinishedTasksError,
	// *NotEmptyError, *catalogerr.BackendError.
	Delete(ctx context.Context, warehouseID id.WarehouseID, query DeleteQuery) error

	// Rename changes the warehouse name. A name collision surfaces as a
	// backend error; the backend does not model it as AlreadyExists here.
	// Errors: *IDNotFoundError, *catalogerr.BackendError.
	Rename(ctx context.Context, warehouseID id.WarehouseID, newName string) error

	// SetStatus activates or deactivates the warehouse.
	// Errors: *IDNotFoundError, *catalogerr.BackendError.
	SetStatus(ctx context.Context, warehouseID id.WarehouseID, status Status) error

	// SetProtection toggles the deletion-protection flag.
	// Errors: *IDNotFoundError, *catalogerr.BackendError.
	SetProtection(ctx context.Context, warehouseID id.WarehouseID, protected bool) error

	// List returns the warehouses of a project ordered by name. A nil or
	// empty statuses set means Active only; a non-empty set returns the
	// union of matching statuses.
	// Errors: *catalogerr.BackendError, *catalogerr.DatabaseIntegrityError.
	List(ctx context.Context, projectID id.ProjectID, statuses []Status) ([]Warehouse, error)

	// GetByID returns the warehouse or nil if it does not exist or is not
	// Active. Absence is not an error.
	// Errors: *catalogerr.BackendError, *catalogerr.DatabaseIntegrityError.
	GetByID(ctx context.Context, warehouseID id.WarehouseID) (*Warehouse, error)
}
