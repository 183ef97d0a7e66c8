package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/physoxy/internal/models"
)

func TestStorage_Pending(t *testing.T) {
	storage := setupTestDatabase(t)
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	_, err := storage.GetPending(ctx, "a@x.com")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, storage.SavePending(ctx, models.PendingRegistration{Email: "A@x.com", Attempts: 1, AttemptAt: now}))
	require.NoError(t, storage.SavePending(ctx, models.PendingRegistration{Email: "a@x.com", Attempts: 2, AttemptAt: now.Add(time.Minute)}))

	got, err := storage.GetPending(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Attempts)
	assert.True(t, now.Add(time.Minute).Equal(got.AttemptAt))
}

func TestStorage_Packages(t *testing.T) {
	storage := setupTestDatabase(t)
	ctx := context.Background()
	factory := newTestDataFactory(storage)

	gold := factory.createPackage(t, "Gold", 50, 500)
	factory.createPackage(t, "Basic", 10, 100)

	_, err := storage.CreatePackage(ctx, models.Package{Name: "Gold", Description: "duplicate package", Pricing: models.Pricing{}})
	require.ErrorIs(t, err, ErrAlreadyExists)

	list, err := storage.ListPackages(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Basic", list[0].Name)

	gold.Description = "the best package there is"
	gold.Pricing.Monthly = 60
	updated, err := storage.UpdatePackage(ctx, *gold)
	require.NoError(t, err)
	assert.Equal(t, 60.0, updated.Pricing.Monthly)

	got, err := storage.GetPackage(ctx, gold.ID)
	require.NoError(t, err)
	assert.Equal(t, "the best package there is", got.Description)

	require.NoError(t, storage.DeletePackage(ctx, gold.ID))
	assert.ErrorIs(t, storage.DeletePackage(ctx, gold.ID), ErrNotFound)
	_, err = storage.GetPackage(ctx, "bad-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_Resources(t *testing.T) {
	storage := setupTestDatabase(t)
	ctx := context.Background()
	pkg := newTestDataFactory(storage).createPackage(t, "Pro", 20, 200)

	gated, err := storage.CreateResource(ctx, models.Resource{
		Type: models.ResourceBlog, Title: "Gated post", Content: "members only content", PlanID: &pkg.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Pro", gated.PlanName)

	open, err := storage.CreateResource(ctx, models.Resource{
		Type: models.ResourceBlog, Title: "Open post", Content: "everyone can read",
	})
	require.NoError(t, err)
	assert.False(t, open.Gated())

	missing := uuid.NewString()
	_, err = storage.CreateResource(ctx, models.Resource{
		Type: models.ResourceCourse, Title: "Broken", Content: "plan does not exist", PlanID: &missing,
	})
	require.ErrorIs(t, err, ErrNotFound)

	list, err := storage.ListResources(ctx, models.ResourceBlog)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, r := range list {
		assert.Empty(t, r.Content)
	}

	got, err := storage.GetResource(ctx, models.ResourceBlog, gated.ID)
	require.NoError(t, err)
	assert.Equal(t, "members only content", got.Content)
	require.NotNil(t, got.PlanID)
	assert.Equal(t, pkg.ID, *got.PlanID)

	_, err = storage.GetResource(ctx, models.ResourceEvent, gated.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, storage.DeletePackage(ctx, pkg.ID))
	got, err = storage.GetResource(ctx, models.ResourceBlog, gated.ID)
	require.NoError(t, err)
	assert.False(t, got.Gated())

	require.NoError(t, storage.DeleteResource(ctx, models.ResourceBlog, open.ID))
	assert.ErrorIs(t, storage.DeleteResource(ctx, models.ResourceBlog, open.ID), ErrNotFound)
}
