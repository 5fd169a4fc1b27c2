package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festy23/stagegate/internal/apperr"
	"github.com/festy23/stagegate/internal/database/dberr"
	"github.com/festy23/stagegate/internal/database/dbtest"
	"github.com/festy23/stagegate/internal/project/model"
)

func setupRepo(t *testing.T) Repository {
	t.Helper()
	return New(dbtest.New(t), dbtest.Logger())
}

func newProject(name, lead string) *model.Project {
	return &model.Project{
		ID:     uuid.NewString(),
		Name:   name,
		Stage:  model.Stage0,
		Status: model.StatusActive,
		LeadID: lead,
	}
}

func TestRepository_Create_AllocatesSequentialCodes(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	first, err := repo.Create(ctx, newProject("Alpha", "lead"))
	require.NoError(t, err)
	second, err := repo.Create(ctx, newProject("Beta", "lead"))
	require.NoError(t, err)

	assert.Equal(t, "PRJ-0001", first.Code)
	assert.Equal(t, "PRJ-0002", second.Code)
}

func TestRepository_Create_DuplicateIDIsUniqueViolation(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	p := newProject("Alpha", "lead")
	_, err := repo.Create(ctx, p)
	require.NoError(t, err)

	dup := newProject("Alpha again", "lead")
	dup.ID = p.ID
	_, err = repo.Create(ctx, dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, dberr.ErrUniqueViolation)
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo := setupRepo(t)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrProjectNotFound)

	_, err = repo.GetForUpdate(context.Background(), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRepository_List_Filters(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	a := newProject("A", "lead")
	a.Cluster = "energy"
	b := newProject("B", "lead")
	b.Status = model.StatusOnHold
	for _, p := range []*model.Project{a, b} {
		_, err := repo.Create(ctx, p)
		require.NoError(t, err)
	}

	all, err := repo.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "A", all[0].Name)

	held, err := repo.List(ctx, Filter{Status: model.StatusOnHold})
	require.NoError(t, err)
	require.Len(t, held, 1)
	assert.Equal(t, "B", held[0].Name)

	energy, err := repo.List(ctx, Filter{Cluster: "energy", Stage: model.Stage0})
	require.NoError(t, err)
	require.Len(t, energy, 1)
	assert.Equal(t, "A", energy[0].Name)

	none, err := repo.List(ctx, Filter{Stage: model.Stage2})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRepository_Update_NeverWritesStage(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	p, err := repo.Create(ctx, newProject("A", "lead"))
	require.NoError(t, err)

	updated, err := repo.Update(ctx, p.ID, map[string]any{"name": "Renamed", "stage": model.Stage3})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, model.Stage0, updated.Stage)

	_, err = repo.Update(ctx, "missing", map[string]any{"name": "x"})
	assert.ErrorIs(t, err, model.ErrProjectNotFound)
}

func TestRepository_Members(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	p, err := repo.Create(ctx, newProject("A", "lead"))
	require.NoError(t, err)

	_, err = repo.AddMember(ctx, p.ID, "m1")
	require.NoError(t, err)
	_, err = repo.AddMember(ctx, p.ID, "m1")
	assert.ErrorIs(t, err, model.ErrMemberExists)

	ids, err := repo.ListMemberIDs(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, ids)

	for user, want := range map[string]bool{"lead": true, "m1": true, "stranger": false} {
		got, err := repo.IsParticipant(ctx, p.ID, user)
		require.NoError(t, err)
		assert.Equal(t, want, got, user)
	}
}

func TestRepository_ApplyTransition(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	p, err := repo.Create(ctx, newProject("A", "lead"))
	require.NoError(t, err)

	moved, err := repo.ApplyTransition(ctx, p.ID, model.Stage0, model.Stage1, model.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, model.Stage1, moved.Stage)

	_, err = repo.ApplyTransition(ctx, p.ID, model.Stage0, model.Stage1, model.StatusActive)
	assert.ErrorIs(t, err, model.ErrStageChanged)

	_, err = repo.ApplyTransition(ctx, p.ID, model.Stage1, model.Stage0, model.StatusActive)
	assert.ErrorIs(t, err, model.ErrStageRegression)

	held, err := repo.ApplyTransition(ctx, p.ID, model.Stage1, model.Stage1, model.StatusOnHold)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOnHold, held.Status)

	_, err = repo.ApplyTransition(ctx, "missing", model.Stage0, model.Stage1, model.StatusActive)
	assert.ErrorIs(t, err, model.ErrProjectNotFound)
}

func TestRepository_SetStatus_IsConditional(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	p, err := repo.Create(ctx, newProject("A", "lead"))
	require.NoError(t, err)

	changed, err := repo.SetStatus(ctx, p.ID, []model.Status{model.StatusPendingReview}, model.StatusActive)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = repo.SetStatus(ctx, p.ID, []model.Status{model.StatusActive}, model.StatusPendingReview)
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPendingReview, got.Status)
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	p, err := repo.Create(ctx, newProject("A", "lead"))
	require.NoError(t, err)
	_, err = repo.AddMember(ctx, p.ID, "m1")
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, p.ID))

	_, err = repo.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, model.ErrProjectNotFound)
	ids, err := repo.ListMemberIDs(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	assert.ErrorIs(t, repo.Delete(ctx, p.ID), model.ErrProjectNotFound)
}

func TestRepository_FlagAndUnflag_RestoreStatus(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	p, err := repo.Create(ctx, newProject("A", "lead"))
	require.NoError(t, err)
	_, err = repo.ApplyTransition(ctx, p.ID, model.Stage0, model.Stage0, model.StatusOnHold)
	require.NoError(t, err)

	flagged, err := repo.Flag(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, flagged)

	again, err := repo.Flag(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, again)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRedFlag, got.Status)
	require.NotNil(t, got.ResumeStatus)
	assert.Equal(t, model.StatusOnHold, *got.ResumeStatus)

	restored, cleared, err := repo.Unflag(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, cleared)
	assert.Equal(t, model.StatusOnHold, restored)

	got, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOnHold, got.Status)
	assert.Nil(t, got.ResumeStatus)

	_, cleared, err = repo.Unflag(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, cleared)
}

func TestRepository_Flag_SkipsClosedProject(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	p, err := repo.Create(ctx, newProject("A", "lead"))
	require.NoError(t, err)
	_, err = repo.ApplyTransition(ctx, p.ID, model.Stage0, model.Stage0, model.StatusTerminated)
	require.NoError(t, err)

	flagged, err := repo.Flag(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, flagged)
}

func TestRepository_SetStatus_WhileFlaggedUpdatesResumeStatus(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	p, err := repo.Create(ctx, newProject("A", "lead"))
	require.NoError(t, err)
	_, err = repo.Flag(ctx, p.ID)
	require.NoError(t, err)

	changed, err := repo.SetStatus(ctx, p.ID, []model.Status{model.StatusActive}, model.StatusPendingReview)
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRedFlag, got.Status)
	require.NotNil(t, got.ResumeStatus)
	assert.Equal(t, model.StatusPendingReview, *got.ResumeStatus)
}

func TestRepository_ApplyTransition_WhileFlagged(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	p, err := repo.Create(ctx, newProject("A", "lead"))
	require.NoError(t, err)
	_, err = repo.Flag(ctx, p.ID)
	require.NoError(t, err)

	moved, err := repo.ApplyTransition(ctx, p.ID, model.Stage0, model.Stage1, model.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, model.Stage1, moved.Stage)
	assert.Equal(t, model.StatusRedFlag, moved.Status)
	require.NotNil(t, moved.ResumeStatus)
	assert.Equal(t, model.StatusActive, *moved.ResumeStatus)

	stopped, err := repo.ApplyTransition(ctx, p.ID, model.Stage1, model.Stage1, model.StatusTerminated)
	require.NoError(t, err)
	assert.Equal(t, model.StatusTerminated, stopped.Status)
	assert.Nil(t, stopped.ResumeStatus)
}
