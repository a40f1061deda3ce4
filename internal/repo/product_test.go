package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunu-rekolt/marketplace/internal/models"
	"github.com/sunu-rekolt/marketplace/internal/repo"
	"github.com/sunu-rekolt/marketplace/internal/repo/repotest"
)

func TestListPublicProducts_Visibility(t *testing.T) {
	t.Parallel()

	db := repotest.NewDB(t)
	r := repo.New(db)
	ctx := context.Background()

	farmer := uuid.New()
	public := repotest.NewProduct(t, db, farmer, "Tomates", 1000, true)
	repotest.NewProduct(t, db, farmer, "Pending", 1000, false)
	archived := repotest.NewProduct(t, db, farmer, "Archived", 1000, true)
	require.NoError(t, db.Model(archived).Update("is_archived", true).Error)

	total, items, err := r.ListPublicProducts(ctx, repo.ProductFilter{}, 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, public.ID, items[0].ID)

	total, _, err = r.ListPublicProducts(ctx, repo.ProductFilter{Category: models.CategoryFruits}, 0, 20)
	require.NoError(t, err)
	assert.Zero(t, total)

	own, err := r.ListFarmerProducts(ctx, farmer)
	require.NoError(t, err)
	assert.Len(t, own, 3)

	counts, err := r.CountFarmerProducts(ctx, farmer)
	require.NoError(t, err)
	assert.EqualValues(t, 3, counts.Total)
	assert.EqualValues(t, 1, counts.Public)
}

func TestSearchPublicProducts(t *testing.T) {
	t.Parallel()

	db := repotest.NewDB(t)
	r := repo.New(db)

	farmer := uuid.New()
	repotest.NewProduct(t, db, farmer, "Tomates cerises", 1500, true)
	repotest.NewProduct(t, db, farmer, "Tomates vertes", 1200, false)
	repotest.NewProduct(t, db, farmer, "Oignons", 800, true)

	total, items, err := r.SearchPublicProducts(context.Background(), "TOMATES", 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Tomates cerises", items[0].Name)
}

func TestDeletePendingProduct(t *testing.T) {
	t.Parallel()

	db := repotest.NewDB(t)
	r := repo.New(db)
	ctx := context.Background()

	farmer := uuid.New()
	pending := repotest.NewProduct(t, db, farmer, "Pending", 100, false)
	approved := repotest.NewProduct(t, db, farmer, "Approved", 100, true)
	archived := repotest.NewProduct(t, db, farmer, "Archived", 100, false)
	require.NoError(t, db.Model(archived).Update("is_archived", true).Error)

	assert.ErrorIs(t, r.DeletePendingProduct(ctx, pending.ID, uuid.New()), repo.ErrNotFound)
	require.NoError(t, r.DeletePendingProduct(ctx, pending.ID, farmer))
	assert.ErrorIs(t, r.DeletePendingProduct(ctx, approved.ID, farmer), repo.ErrConflict)
	assert.ErrorIs(t, r.DeletePendingProduct(ctx, archived.ID, farmer), repo.ErrConflict)

	_, err := r.GetProduct(ctx, pending.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestUpdateProduct_OwnerOnly(t *testing.T) {
	t.Parallel()

	db := repotest.NewDB(t)
	r := repo.New(db)
	ctx := context.Background()

	farmer := uuid.New()
	p := repotest.NewProduct(t, db, farmer, "Mil", 500, true)

	_, err := r.UpdateProduct(ctx, p.ID, uuid.New(), map[string]any{"price": 600})
	assert.ErrorIs(t, err, repo.ErrNotFound)

	got, err := r.UpdateProduct(ctx, p.ID, farmer, map[string]any{"price": 600, "is_archived": true})
	require.NoError(t, err)
	assert.EqualValues(t, 600, got.Price)
	assert.True(t, got.IsArchived)
}

func TestSetProductApproval(t *testing.T) {
	t.Parallel()

	db := repotest.NewDB(t)
	r := repo.New(db)

	p := repotest.NewProduct(t, db, uuid.New(), "Mil", 500, false)
	got, err := r.SetProductApproval(context.Background(), p.ID, true)
	require.NoError(t, err)
	assert.True(t, got.IsApproved)

	_, err = r.SetProductApproval(context.Background(), uuid.New(), true)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
