// Package warehouse provides the warehouse lifecycle contract of the
// catalog: project-scoped storage locations with attached configuration,
// their lifecycle operations and the closed error sets those operations
// may produce.
package warehouse

import (
	"icehouse/internal/core/id"
)

// Status of a warehouse. Ordered and totally comparable; default reads
// surface Active warehouses only.
type Status string

const (
	// StatusActive means the warehouse can be used.
	StatusActive Status = "active"
	// StatusInactive means the warehouse cannot be used until reactivated.
	StatusInactive Status = "inactive"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// TabularDeleteKind selects how member tables are purged.
type TabularDeleteKind string

const (
	// DeleteKindSoft keeps dropped tabulars around until they expire.
	DeleteKindSoft TabularDeleteKind = "soft"
	// DeleteKindHard removes dropped tabulars immediately.
	DeleteKindHard TabularDeleteKind = "hard"
)

// Valid reports whether k is a known delete kind.
func (k TabularDeleteKind) Valid() bool {
	return k == DeleteKindSoft || k == DeleteKindHard
}

// TabularDeletePolicy is the per-warehouse purge policy for member tables.
// The lifecycle layer treats it as an opaque value; enforcement belongs to
// the tabular maintenance workers.
type TabularDeletePolicy struct {
	Kind TabularDeleteKind `json:"kind"`

	// ExpirationSeconds applies to soft deletes only.
	ExpirationSeconds int64 `json:"expirationSeconds,omitempty"`
}

// StorageProfile is the opaque storage configuration attached to a
// warehouse. It is serialized as JSON for persistence; the lifecycle layer
// never interprets its contents.
type StorageProfile map[string]any

// Warehouse is an immutable snapshot of a warehouse record.
type Warehouse struct {
	// ID of the warehouse.
	ID id.WarehouseID `db:"id" json:"id"`

	// Name of the warehouse, unique within a project among non-deleted
	// warehouses.
	Name string `db:"name" json:"name"`

	// ProjectID of the project the warehouse belongs to.
	ProjectID id.ProjectID `db:"project_id" json:"projectId"`

	// StorageProfile used for the warehouse.
	StorageProfile StorageProfile `db:"-" json:"storageProfile"`

	// StorageSecretID referenced by the storage profile, if any.
	StorageSecretID *id.SecretID `db:"storage_secret_id" json:"storageSecretId,omitempty"`

	// Status governs visibility of the warehouse.
	Status Status `db:"status" json:"status"`

	// TabularDeletePolicy used for the warehouse.
	TabularDeletePolicy TabularDeletePolicy `db:"-" json:"tabularDeletePolicy"`

	// Protected guards the warehouse against accidental deletion.
	Protected bool `db:"protected" json:"protected"`
}

// CreateWarehouse holds the inputs of the create operation.
type CreateWarehouse struct {
	Name                string
	ProjectID           id.ProjectID
	StorageProfile      StorageProfile
	TabularDeletePolicy TabularDeletePolicy
	StorageSecretID     *id.SecretID
}

// DeleteQuery carries the caller's intent for a delete operation.
type DeleteQuery struct {
	// Force overrides the protection flag and allows deleting non-empty
	// warehouses.
	Force bool
}
