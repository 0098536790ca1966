package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"icehouse/internal/core/catalogerr"
	"icehouse/internal/core/id"
	"icehouse/internal/domain/warehouse"
)

const (
	warehouseTable = "warehouses"

	warehouseNameConstraint = "uq_warehouses_project_name"
	warehouseProjectFK      = "warehouses_project_id_fkey"
)

// Compile-time check that WarehouseRepo implements warehouse.Repository.
var _ warehouse.Repository = (*WarehouseRepo)(nil)

// WarehouseRepo implements warehouse.Repository on PostgreSQL. Mutating
// methods require a transaction opened by TxManager.RunInTransaction in
// ctx; reads go through the pool.
type WarehouseRepo struct {
	txm *TxManager
}

// NewWarehouseRepo creates a new warehouse repository.
func NewWarehouseRepo(txm *TxManager) *WarehouseRepo {
	return &WarehouseRepo{txm: txm}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *WarehouseRepo) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

var warehouseColumns = []string{
	"id", "name", "project_id", "storage_profile", "storage_secret_id",
	"status", "tabular_delete_mode", "tabular_expiration_seconds", "protected",
}

// warehouseRow is the raw row shape; conversion to the domain record
// validates stored values and surfaces corruption as integrity errors.
type warehouseRow struct {
	ID                       uuid.UUID  `db:"id"`
	Name                     string     `db:"name"`
	ProjectID                uuid.UUID  `db:"project_id"`
	StorageProfile           []byte     `db:"storage_profile"`
	StorageSecretID          *uuid.UUID `db:"storage_secret_id"`
	Status                   string     `db:"status"`
	TabularDeleteMode        string     `db:"tabular_delete_mode"`
	TabularExpirationSeconds *int64     `db:"tabular_expiration_seconds"`
	Protected                bool       `db:"protected"`
}

// Create inserts a new warehouse with status Active.
func (r *WarehouseRepo) Create(ctx context.Context, create warehouse.CreateWarehouse) (id.WarehouseID, error) {
	tx := r.txm.MustTx(ctx)

	profile, err := json.Marshal(create.StorageProfile)
	if err != nil {
		return id.WarehouseID{}, warehouse.NewStorageProfileSerialization(err)
	}

	warehouseID := id.NewWarehouseID()

	var expiration *int64
	if create.TabularDeletePolicy.Kind == warehouse.DeleteKindSoft {
		seconds := create.TabularDeletePolicy.ExpirationSeconds
		expiration = &seconds
	}

	q := r.Builder().
		Insert(warehouseTable).
		Columns(warehouseColumns...).
		Values(
			uuid.UUID(warehouseID),
			create.Name,
			uuid.UUID(create.ProjectID),
			profile,
			secretValue(create.StorageSecretID),
			string(warehouse.StatusActive),
			string(create.TabularDeletePolicy.Kind),
			expiration,
			false,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return id.WarehouseID{}, catalogerr.NewUnexpected(fmt.Errorf("build insert: %w", err))
	}

	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch {
			case pgErr.Code == "23505" && pgErr.ConstraintName == warehouseNameConstraint:
				return id.WarehouseID{}, warehouse.NewAlreadyExists(create.Name, create.ProjectID)
			case pgErr.Code == "23503" && pgErr.ConstraintName == warehouseProjectFK:
				return id.WarehouseID{}, warehouse.NewProjectNotFound(create.ProjectID)
			}
		}
		return id.WarehouseID{}, classifyBackend(fmt.Errorf("insert warehouse: %w", err))
	}

	return warehouseID, nil
}

// Delete evaluates the deletion guards under the ambient transaction and
// removes the record. Guard order: existence (row lock), protection,
// unfinished tasks, emptiness.
func (r *WarehouseRepo) Delete(ctx context.Context, warehouseID id.WarehouseID, query warehouse.DeleteQuery) error {
	tx := r.txm.MustTx(ctx)

	var protected bool
	err := tx.QueryRow(ctx,
		"SELECT protected FROM warehouses WHERE id = $1 FOR UPDATE",
		uuid.UUID(warehouseID),
	).Scan(&protected)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return warehouse.NewIDNotFound(warehouseID)
		}
		return classifyBackend(fmt.Errorf("lock warehouse: %w", err))
	}

	if protected && !query.Force {
		return warehouse.NewProtected()
	}

	var pendingTasks int64
	err = tx.QueryRow(ctx,
		"SELECT count(*) FROM warehouse_tasks WHERE warehouse_id = $1 AND status IN ('pending', 'running')",
		uuid.UUID(warehouseID),
	).Scan(&pendingTasks)
	if err != nil {
		return classifyBackend(fmt.Errorf("count warehouse tasks: %w", err))
	}
	if pendingTasks > 0 {
		return warehouse.NewUnfinishedTasks()
	}

	if !query.Force {
		var liveTabulars int64
		err = tx.QueryRow(ctx,
			"SELECT count(*) FROM tabulars WHERE warehouse_id = $1 AND deleted_at IS NULL",
			uuid.UUID(warehouseID),
		).Scan(&liveTabulars)
		if err != nil {
			return classifyBackend(fmt.Errorf("count tabulars: %w", err))
		}
		if liveTabulars > 0 {
			return warehouse.NewNotEmpty()
		}
	}

	if _, err := tx.Exec(ctx, "DELETE FROM warehouses WHERE id = $1", uuid.UUID(warehouseID)); err != nil {
		return classifyBackend(fmt.Errorf("delete warehouse: %w", err))
	}

	return nil
}

// Rename changes the warehouse name. A unique violation on the new name is
// reported as a backend error, not as AlreadyExists.
func (r *WarehouseRepo) Rename(ctx context.Context, warehouseID id.WarehouseID, newName string) error {
	tx := r.txm.MustTx(ctx)

	tag, err := tx.Exec(ctx,
		"UPDATE warehouses SET name = $2, updated_at = now() WHERE id = $1",
		uuid.UUID(warehouseID), newName,
	)
	if err != nil {
		return classifyBackend(fmt.Errorf("rename warehouse: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return warehouse.NewIDNotFound(warehouseID)
	}
	return nil
}

// SetStatus activates or deactivates the warehouse.
func (r *WarehouseRepo) SetStatus(ctx context.Context, warehouseID id.WarehouseID, status warehouse.Status) error {
	tx := r.txm.MustTx(ctx)

	tag, err := tx.Exec(ctx,
		"UPDATE warehouses SET status = $2, updated_at = now() WHERE id = $1",
		uuid.UUID(warehouseID), string(status),
	)
	if err != nil {
		return classifyBackend(fmt.Errorf("set warehouse status: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return warehouse.NewIDNotFound(warehouseID)
	}
	return nil
}

// SetProtection toggles the deletion-protection flag.
func (r *WarehouseRepo) SetProtection(ctx context.Context, warehouseID id.WarehouseID, protected bool) error {
	tx := r.txm.MustTx(ctx)

	tag, err := tx.Exec(ctx,
		"UPDATE warehouses SET protected = $2, updated_at = now() WHERE id = $1",
		uuid.UUID(warehouseID), protected,
	)
	if err != nil {
		return classifyBackend(fmt.Errorf("set warehouse protection: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return warehouse.NewIDNotFound(warehouseID)
	}
	return nil
}

// List returns the warehouses of a project ordered by name.
func (r *WarehouseRepo) List(ctx context.Context, projectID id.ProjectID, statuses []warehouse.Status) ([]warehouse.Warehouse, error) {
	want := []string{string(warehouse.StatusActive)}
	if len(statuses) > 0 {
		want = want[:0]
		for _, s := range statuses {
			want = append(want, string(s))
		}
	}

	q := r.Builder().
		Select(warehouseColumns...).
		From(warehouseTable).
		Where(squirrel.Eq{"project_id": uuid.UUID(projectID)}).
		Where(squirrel.Eq{"status": want}).
		OrderBy("name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, catalogerr.NewUnexpected(fmt.Errorf("build query: %w", err))
	}

	var rows []warehouseRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, classifyBackend(fmt.Errorf("list warehouses: %w", err))
	}

	warehouses := make([]warehouse.Warehouse, 0, len(rows))
	for _, row := range rows {
		wh, err := row.toWarehouse()
		if err != nil {
			return nil, err
		}
		warehouses = append(warehouses, *wh)
	}
	return warehouses, nil
}

// GetByID returns the warehouse or nil if no Active warehouse with that id
// exists.
func (r *WarehouseRepo) GetByID(ctx context.Context, warehouseID id.WarehouseID) (*warehouse.Warehouse, error) {
	q := r.Builder().
		Select(warehouseColumns...).
		From(warehouseTable).
		Where(squirrel.Eq{"id": uuid.UUID(warehouseID)}).
		Where(squirrel.Eq{"status": string(warehouse.StatusActive)}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, catalogerr.NewUnexpected(fmt.Errorf("build query: %w", err))
	}

	var row warehouseRow
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, classifyBackend(fmt.Errorf("get warehouse by id: %w", err))
	}

	return row.toWarehouse()
}

// toWarehouse converts a raw row into the domain record, surfacing corrupt
// stored values as integrity errors rather than skipping them.
func (row warehouseRow) toWarehouse() (*warehouse.Warehouse, error) {
	status := warehouse.Status(row.Status)
	if !status.Valid() {
		return nil, catalogerr.NewIntegrity(
			fmt.Sprintf("warehouse '%s' has unknown status '%s'", row.ID, row.Status))
	}

	kind := warehouse.TabularDeleteKind(row.TabularDeleteMode)
	if kind != warehouse.DeleteKindSoft && kind != warehouse.DeleteKindHard {
		return nil, catalogerr.NewIntegrity(
			fmt.Sprintf("warehouse '%s' has unknown tabular delete mode '%s'", row.ID, row.TabularDeleteMode))
	}

	var profile warehouse.StorageProfile
	if err := json.Unmarshal(row.StorageProfile, &profile); err != nil {
		return nil, catalogerr.NewIntegrity(
			fmt.Sprintf("warehouse '%s' has an unparseable storage profile: %v", row.ID, err))
	}

	policy := warehouse.TabularDeletePolicy{Kind: kind}
	if row.TabularExpirationSeconds != nil {
		policy.ExpirationSeconds = *row.TabularExpirationSeconds
	}

	wh := &warehouse.Warehouse{
		ID:                  id.WarehouseID(row.ID),
		Name:                row.Name,
		ProjectID:           id.ProjectID(row.ProjectID),
		StorageProfile:      profile,
		Status:              status,
		TabularDeletePolicy: policy,
		Protected:           row.Protected,
	}
	if row.StorageSecretID != nil {
		secretID := id.SecretID(*row.StorageSecretID)
		wh.StorageSecretID = &secretID
	}
	return wh, nil
}

// classifyBackend wraps a storage failure into a backend error. Failures
// where a write lost a race (serialization failure, deadlock) are
// classified as ConcurrentModification; everything else is Unexpected.
func classifyBackend(err error) *catalogerr.BackendError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return catalogerr.Classify(err, catalogerr.ConcurrentModification)
		}
	}
	return catalogerr.NewUnexpected(err)
}

func secretValue(secretID *id.SecretID) *uuid.UUID {
	if secretID == nil {
		return nil
	}
	u := uuid.UUID(*secretID)
	return &u
}
