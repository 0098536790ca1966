package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icehouse/internal/core/catalogerr"
	"icehouse/internal/domain/warehouse"
)

func TestClassifyBackend(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want catalogerr.Classification
	}{
		{"serialization failure", &pgconn.PgError{Code: "40001"}, catalogerr.ConcurrentModification},
		{"deadlock detected", &pgconn.PgError{Code: "40P01"}, catalogerr.ConcurrentModification},
		{"unique violation", &pgconn.PgError{Code: "23505"}, catalogerr.Unexpected},
		{"plain error", errors.New("connection reset"), catalogerr.Unexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backendErr := classifyBackend(tt.err)
			assert.Equal(t, tt.want, backendErr.Classification)
			assert.True(t, errors.Is(backendErr, tt.err))
		})
	}
}

func TestClassifyBackendWrappedPgError(t *testing.T) {
	wrapped := fmt.Errorf("delete warehouse: %w", &pgconn.PgError{Code: "40001"})
	assert.Equal(t, catalogerr.ConcurrentModification, classifyBackend(wrapped).Classification)
}

func validRow() warehouseRow {
	return warehouseRow{
		ID:                uuid.New(),
		Name:              "sales",
		ProjectID:         uuid.New(),
		StorageProfile:    []byte(`{"type":"s3","bucket":"b"}`),
		Status:            "active",
		TabularDeleteMode: "hard",
	}
}

func TestRowToWarehouse(t *testing.T) {
	row := validRow()
	secret := uuid.New()
	row.StorageSecretID = &secret
	expiration := int64(3600)
	row.TabularDeleteMode = "soft"
	row.TabularExpirationSeconds = &expiration

	wh, err := row.toWarehouse()
	require.NoError(t, err)
	assert.Equal(t, "sales", wh.Name)
	assert.Equal(t, warehouse.StatusActive, wh.Status)
	assert.Equal(t, warehouse.StorageProfile{"type": "s3", "bucket": "b"}, wh.StorageProfile)
	assert.Equal(t, warehouse.DeleteKindSoft, wh.TabularDeletePolicy.Kind)
	assert.Equal(t, expiration, wh.TabularDeletePolicy.ExpirationSeconds)
	require.NotNil(t, wh.StorageSecretID)
}

func TestRowToWarehouseIntegrity(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*warehouseRow)
	}{
		{"unknown status", func(r *warehouseRow) { r.Status = "archived" }},
		{"unknown delete mode", func(r *warehouseRow) { r.TabularDeleteMode = "eventually" }},
		{"corrupt profile", func(r *warehouseRow) { r.StorageProfile = []byte("{not json") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validRow()
			tt.mutate(&row)

			_, err := row.toWarehouse()
			var integrity *catalogerr.DatabaseIntegrityError
			require.ErrorAs(t, err, &integrity)
			assert.Contains(t, integrity.Error(), row.ID.String())
		})
	}
}
