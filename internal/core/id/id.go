// Package id provides the typed identifiers of the catalog. All ids are
// UUIDv7 (time-ordered), giving natural chronological ordering and better
// B-tree locality in PostgreSQL.
package id

import (
	"github.com/google/uuid"
)

// WarehouseID identifies a warehouse. Globally unique.
type WarehouseID uuid.UUID

// ProjectID identifies a project (the tenant/namespace grouping warehouses).
type ProjectID uuid.UUID

// SecretID identifies a storage secret. A warehouse references zero or one.
type SecretID uuid.UUID

// NewWarehouseID generates a new time-ordered warehouse id.
func NewWarehouseID() WarehouseID {
	return WarehouseID(newV7())
}

// NewProjectID generates a new time-ordered project id.
func NewProjectID() ProjectID {
	return ProjectID(newV7())
}

// NewSecretID generates a new time-ordered secret id.
func NewSecretID() SecretID {
	return SecretID(newV7())
}

func newV7() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to V4 if V7 fails (should never happen)
		return uuid.New()
	}
	return id
}

func (id WarehouseID) String() string { return uuid.UUID(id).String() }
func (id ProjectID) String() string   { return uuid.UUID(id).String() }
func (id SecretID) String() string    { return uuid.UUID(id).String() }

// IsNil reports whether the id is the zero value.
func (id WarehouseID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// IsNil reports whether the id is the zero value.
func (id ProjectID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// IsNil reports whether the id is the zero value.
func (id SecretID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// ParseWarehouseID converts a string to a WarehouseID with validation.
func ParseWarehouseID(s string) (WarehouseID, error) {
	u, err := uuid.Parse(s)
	return WarehouseID(u), err
}

// ParseProjectID converts a string to a ProjectID with validation.
func ParseProjectID(s string) (ProjectID, error) {
	u, err := uuid.Parse(s)
	return ProjectID(u), err
}

// ParseSecretID converts a string to a SecretID with validation.
func ParseSecretID(s string) (SecretID, error) {
	u, err := uuid.Parse(s)
	return SecretID(u), err
}

// MustWarehouseID converts a string to a WarehouseID, panicking on error.
// Use only for constants and tests.
func MustWarehouseID(s string) WarehouseID {
	return WarehouseID(uuid.MustParse(s))
}

// MustProjectID converts a string to a ProjectID, panicking on error.
// Use only for constants and tests.
func MustProjectID(s string) ProjectID {
	return ProjectID(uuid.MustParse(s))
}
