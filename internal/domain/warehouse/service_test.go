package warehouse

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icehouse/internal/core/apperror"
	"icehouse/internal/core/catalogerr"
	"icehouse/internal/core/id"
)

// fakeRepo is an in-memory Repository with the same observable semantics
// as the PostgreSQL implementation.
type fakeRepo struct {
	projects     map[id.ProjectID]bool
	warehouses   map[id.WarehouseID]*Warehouse
	pendingTasks map[id.WarehouseID]int
	liveTabulars map[id.WarehouseID]int

	// failWith, when set, is returned by every method before any other
	// check, simulating a backend failure.
	failWith error
}

func newFakeRepo(projects ...id.ProjectID) *fakeRepo {
	r := &fakeRepo{
		projects:     make(map[id.ProjectID]bool),
		warehouses:   make(map[id.WarehouseID]*Warehouse),
		pendingTasks: make(map[id.WarehouseID]int),
		liveTabulars: make(map[id.WarehouseID]int),
	}
	for _, p := range projects {
		r.projects[p] = true
	}
	return r
}

func (r *fakeRepo) Create(_ context.Context, create CreateWarehouse) (id.WarehouseID, error) {
	if r.failWith != nil {
		return id.WarehouseID{}, r.failWith
	}
	if !r.projects[create.ProjectID] {
		return id.WarehouseID{}, NewProjectNotFound(create.ProjectID)
	}
	for _, wh := range r.warehouses {
		if wh.ProjectID == create.ProjectID && wh.Name == create.Name {
			return id.WarehouseID{}, NewAlreadyExists(create.Name, create.ProjectID)
		}
	}
	warehouseID := id.NewWarehouseID()
	r.warehouses[warehouseID] = &Warehouse{
		ID:                  warehouseID,
		Name:                create.Name,
		ProjectID:           create.ProjectID,
		StorageProfile:      create.StorageProfile,
		StorageSecretID:     create.StorageSecretID,
		Status:              StatusActive,
		TabularDeletePolicy: create.TabularDeletePolicy,
	}
	return warehouseID, nil
}

func (r *fakeRepo) Delete(_ context.Context, warehouseID id.WarehouseID, query DeleteQuery) error {
	if r.failWith != nil {
		return r.failWith
	}
	wh, ok := r.warehouses[warehouseID]
	if !ok {
		return NewIDNotFound(warehouseID)
	}
	if wh.Protected && !query.Force {
		return NewProtected()
	}
	if r.pendingTasks[warehouseID] > 0 {
		return NewUnfinishedTasks()
	}
	if !query.Force && r.liveTabulars[warehouseID] > 0 {
		return NewNotEmpty()
	}
	delete(r.warehouses, warehouseID)
	return nil
}

func (r *fakeRepo) Rename(_ context.Context, warehouseID id.WarehouseID, newName string) error {
	if r.failWith != nil {
		return r.failWith
	}
	wh, ok := r.warehouses[warehouseID]
	if !ok {
		return NewIDNotFound(warehouseID)
	}
	wh.Name = newName
	return nil
}

func (r *fakeRepo) SetStatus(_ context.Context, warehouseID id.WarehouseID, status Status) error {
	if r.failWith != nil {
		return r.failWith
	}
	wh, ok := r.warehouses[warehouseID]
	if !ok {
		return NewIDNotFound(warehouseID)
	}
	wh.Status = status
	return nil
}

func (r *fakeRepo) SetProtection(_ context.Context, warehouseID id.WarehouseID, protected bool) error {
	if r.failWith != nil {
		return r.failWith
	}
	wh, ok := r.warehouses[warehouseID]
	if !ok {
		return NewIDNotFound(warehouseID)
	}
	wh.Protected = protected
	return nil
}

func (r *fakeRepo) List(_ context.Context, projectID id.ProjectID, statuses []Status) ([]Warehouse, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	want := map[Status]bool{StatusActive: true}
	if len(statuses) > 0 {
		want = make(map[Status]bool)
		for _, s := range statuses {
			want[s] = true
		}
	}
	var out []Warehouse
	for _, wh := range r.warehouses {
		if wh.ProjectID == projectID && want[wh.Status] {
			out = append(out, *wh)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeRepo) GetByID(_ context.Context, warehouseID id.WarehouseID) (*Warehouse, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	wh, ok := r.warehouses[warehouseID]
	if !ok || wh.Status != StatusActive {
		return nil, nil
	}
	snapshot := *wh
	return &snapshot, nil
}

func newTestService(projects ...id.ProjectID) (*Service, *fakeRepo) {
	repo := newFakeRepo(projects...)
	return NewService(repo), repo
}

func TestCreateAndRequire(t *testing.T) {
	ctx := context.Background()
	projectID := id.NewProjectID()
	svc, _ := newTestService(projectID)

	warehouseID, err := svc.Create(ctx, CreateWarehouse{
		Name:                "sales",
		ProjectID:           projectID,
		StorageProfile:      StorageProfile{"type": "s3", "bucket": "b"},
		TabularDeletePolicy: TabularDeletePolicy{Kind: DeleteKindSoft, ExpirationSeconds: 3600},
	})
	require.NoError(t, err)
	assert.False(t, warehouseID.IsNil())

	wh, err := svc.RequireByID(ctx, warehouseID)
	require.NoError(t, err)
	assert.Equal(t, "sales", wh.Name)
	assert.Equal(t, projectID, wh.ProjectID)
	assert.Equal(t, StatusActive, wh.Status)
	assert.Equal(t, DeleteKindSoft, wh.TabularDeletePolicy.Kind)

	// RequireByID and GetByID agree on existing warehouses.
	got, err := svc.GetByID(ctx, warehouseID)
	require.NoError(t, err)
	assert.Equal(t, wh, got)
}

func TestCreateDuplicateNameSameProject(t *testing.T) {
	ctx := context.Background()
	projectP := id.NewProjectID()
	projectQ := id.NewProjectID()
	svc, _ := newTestService(projectP, projectQ)

	_, err := svc.Create(ctx, CreateWarehouse{Name: "sales", ProjectID: projectP})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateWarehouse{Name: "sales", ProjectID: projectP})
	var exists *AlreadyExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, "sales", exists.WarehouseName)
	assert.Equal(t, projectP, exists.ProjectID)
	assert.Equal(t, []string{"Error creating warehouse in catalog"}, exists.Details())

	// Same name in another project is fine.
	_, err = svc.Create(ctx, CreateWarehouse{Name: "sales", ProjectID: projectQ})
	assert.NoError(t, err)
}

func TestCreateUnknownProject(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	missing := id.NewProjectID()

	_, err := svc.Create(ctx, CreateWarehouse{Name: "sales", ProjectID: missing})
	var notFound *ProjectNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, missing, notFound.ProjectID)
	assert.Equal(t, http.StatusNotFound, apperror.FromError(err).Code)
}

func TestRequireByIDMissing(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	missing := id.NewWarehouseID()

	_, err := svc.RequireByID(ctx, missing)
	var notFound *IDNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, missing, notFound.WarehouseID)
	assert.Equal(t, []string{"Error getting warehouse by id in catalog"}, notFound.Details())
}

func TestGetByIDMissingIsNotAnError(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	wh, err := svc.GetByID(ctx, id.NewWarehouseID())
	require.NoError(t, err)
	assert.Nil(t, wh)
}

func TestGetExcludesInactive(t *testing.T) {
	ctx := context.Background()
	projectID := id.NewProjectID()
	svc, _ := newTestService(projectID)

	warehouseID, err := svc.Create(ctx, CreateWarehouse{Name: "sales", ProjectID: projectID})
	require.NoError(t, err)
	require.NoError(t, svc.SetStatus(ctx, warehouseID, StatusInactive))

	wh, err := svc.GetByID(ctx, warehouseID)
	require.NoError(t, err)
	assert.Nil(t, wh)

	_, err = svc.RequireByID(ctx, warehouseID)
	var notFound *IDNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestListDefaultsToActiveOnly(t *testing.T) {
	ctx := context.Background()
	projectID := id.NewProjectID()
	svc, _ := newTestService(projectID)

	activeID, err := svc.Create(ctx, CreateWarehouse{Name: "alpha", ProjectID: projectID})
	require.NoError(t, err)
	inactiveID, err := svc.Create(ctx, CreateWarehouse{Name: "beta", ProjectID: projectID})
	require.NoError(t, err)
	require.NoError(t, svc.SetStatus(ctx, inactiveID, StatusInactive))

	warehouses, err := svc.List(ctx, projectID, nil)
	require.NoError(t, err)
	require.Len(t, warehouses, 1)
	assert.Equal(t, activeID, warehouses[0].ID)
	for _, wh := range warehouses {
		assert.NotEqual(t, StatusInactive, wh.Status)
	}

	// Explicit status set returns the union.
	warehouses, err = svc.List(ctx, projectID, []Status{StatusActive, StatusInactive})
	require.NoError(t, err)
	assert.Len(t, warehouses, 2)
	assert.Equal(t, "alpha", warehouses[0].Name)
	assert.Equal(t, "beta", warehouses[1].Name)
}

func TestDeleteProtected(t *testing.T) {
	ctx := context.Background()
	projectID := id.NewProjectID()
	svc, _ := newTestService(projectID)

	warehouseID, err := svc.Create(ctx, CreateWarehouse{Name: "sales", ProjectID: projectID})
	require.NoError(t, err)
	require.NoError(t, svc.SetProtection(ctx, warehouseID, true))

	err = svc.Delete(ctx, warehouseID, DeleteQuery{})
	var protected *ProtectedError
	require.ErrorAs(t, err, &protected)
	assert.Equal(t, []string{"Error deleting warehouse in catalog"}, protected.Details())

	// Nothing was removed.
	wh, err := svc.RequireByID(ctx, warehouseID)
	require.NoError(t, err)
	assert.Equal(t, warehouseID, wh.ID)

	// Force overrides protection.
	require.NoError(t, svc.Delete(ctx, warehouseID, DeleteQuery{Force: true}))
	got, err := svc.GetByID(ctx, warehouseID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteWithUnfinishedTasks(t *testing.T) {
	ctx := context.Background()
	projectID := id.NewProjectID()
	svc, repo := newTestService(projectID)

	warehouseID, err := svc.Create(ctx, CreateWarehouse{Name: "sales", ProjectID: projectID})
	require.NoError(t, err)
	repo.pendingTasks[warehouseID] = 2

	err = svc.Delete(ctx, warehouseID, DeleteQuery{})
	var unfinished *UnfinishedTasksError
	require.ErrorAs(t, err, &unfinished)

	// Force does not override pending work.
	err = svc.Delete(ctx, warehouseID, DeleteQuery{Force: true})
	require.ErrorAs(t, err, &unfinished)

	// The record is untouched.
	wh, err := svc.RequireByID(ctx, warehouseID)
	require.NoError(t, err)
	assert.Equal(t, warehouseID, wh.ID)
}

func TestDeleteNotEmpty(t *testing.T) {
	ctx := context.Background()
	projectID := id.NewProjectID()
	svc, repo := newTestService(projectID)

	warehouseID, err := svc.Create(ctx, CreateWarehouse{Name: "sales", ProjectID: projectID})
	require.NoError(t, err)
	repo.liveTabulars[warehouseID] = 5

	err = svc.Delete(ctx, warehouseID, DeleteQuery{})
	var notEmpty *NotEmptyError
	require.ErrorAs(t, err, &notEmpty)

	// Force allows deleting a non-empty warehouse.
	require.NoError(t, svc.Delete(ctx, warehouseID, DeleteQuery{Force: true}))
}

func TestDeleteMissing(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	missing := id.NewWarehouseID()

	err := svc.Delete(ctx, missing, DeleteQuery{})
	var notFound *IDNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, []string{"Error deleting warehouse in catalog"}, notFound.Details())
}

func TestRenameMissing(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	err := svc.Rename(ctx, id.NewWarehouseID(), "new-name")
	var notFound *IDNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, []string{"Error renaming warehouse in catalog"}, notFound.Details())
}

func TestRename(t *testing.T) {
	ctx := context.Background()
	projectID := id.NewProjectID()
	svc, _ := newTestService(projectID)

	warehouseID, err := svc.Create(ctx, CreateWarehouse{Name: "sales", ProjectID: projectID})
	require.NoError(t, err)
	require.NoError(t, svc.Rename(ctx, warehouseID, "sales-emea"))

	wh, err := svc.RequireByID(ctx, warehouseID)
	require.NoError(t, err)
	assert.Equal(t, "sales-emea", wh.Name)
}

func TestBackendErrorIsStamped(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	repo.failWith = catalogerr.NewUnexpected(errors.New("connection refused"))

	_, err := svc.List(ctx, id.NewProjectID(), nil)
	var backendErr *catalogerr.BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, []string{"Error listing warehouses in catalog"}, backendErr.Details())
	assert.Equal(t, http.StatusInternalServerError, apperror.FromError(err).Code)
}

func TestConcurrentModificationIsRetryable(t *testing.T) {
	ctx := context.Background()
	projectID := id.NewProjectID()
	svc, repo := newTestService(projectID)
	repo.failWith = catalogerr.Classify(errors.New("version check failed"), catalogerr.ConcurrentModification)

	_, err := svc.Create(ctx, CreateWarehouse{Name: "sales", ProjectID: projectID})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apperror.FromError(err).Code)
	assert.True(t, apperror.IsRetryable(err))
}
