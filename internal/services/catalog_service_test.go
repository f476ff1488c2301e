package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ewarranty/internal/domain"
	"ewarranty/internal/repos"
	"ewarranty/internal/services"
)

func TestDeleteCategoryPolicy(t *testing.T) {
	db := memdb(t)
	cat := services.NewCatalogService(db)
	prods := services.NewProductService(db, newMemStore())
	ctx := context.Background()

	audio, err := cat.CreateCategory(ctx, "Audio")
	require.NoError(t, err)
	sub, err := cat.CreateSubcategory(ctx, "Headphones", audio.ID)
	require.NoError(t, err)
	p, err := prods.Create(ctx, services.CreateProductRequest{Name: "H1", SubcategoryID: idp(sub.ID)})
	require.NoError(t, err)

	err = cat.DeleteCategory(ctx, audio.ID, false)
	assert.ErrorIs(t, err, domain.ErrReferenced)
	assert.Equal(t, 1, count(t, db, "subcategories"))

	require.NoError(t, cat.DeleteCategory(ctx, audio.ID, true))
	assert.Equal(t, 0, count(t, db, "categories"))
	assert.Equal(t, 0, count(t, db, "subcategories"))

	got, err := prods.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)
	assert.Nil(t, got.SubcategoryID)

	assert.ErrorIs(t, cat.DeleteCategory(ctx, audio.ID, true), domain.ErrNotFound)
}

func TestDeleteEmptyCategory(t *testing.T) {
	db := memdb(t)
	cat := services.NewCatalogService(db)
	ctx := context.Background()

	c, err := cat.CreateCategory(ctx, "Empty")
	require.NoError(t, err)
	require.NoError(t, cat.DeleteCategory(ctx, c.ID, false))
}

func TestCategoryNamesAreUnique(t *testing.T) {
	db := memdb(t)
	cat := services.NewCatalogService(db)
	ctx := context.Background()

	_, err := cat.CreateCategory(ctx, "Audio")
	require.NoError(t, err)
	_, err = cat.CreateCategory(ctx, "audio")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestSubcategoryNeedsCategory(t *testing.T) {
	db := memdb(t)
	cat := services.NewCatalogService(db)
	prods := services.NewProductService(db, newMemStore())
	ctx := context.Background()

	_, err := cat.CreateSubcategory(ctx, "Orphan", 42)
	assert.True(t, domain.IsValidation(err))

	audio, err := cat.CreateCategory(ctx, "Audio")
	require.NoError(t, err)
	video, err := cat.CreateCategory(ctx, "Video")
	require.NoError(t, err)
	sub, err := cat.CreateSubcategory(ctx, "Speakers", audio.ID)
	require.NoError(t, err)
	assert.Equal(t, "Audio", sub.CategoryName)

	moved, err := cat.UpdateSubcategory(ctx, sub.ID, "Screens", video.ID)
	require.NoError(t, err)
	assert.Equal(t, "Video", moved.CategoryName)

	list, err := cat.ListSubcategories(ctx, audio.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	p, err := prods.Create(ctx, services.CreateProductRequest{Name: "TV", SubcategoryID: idp(sub.ID)})
	require.NoError(t, err)
	require.NoError(t, cat.DeleteSubcategory(ctx, sub.ID))
	got, err := prods.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.SubcategoryID)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, video.ID, *got.CategoryID)
}

func TestMovingSubcategoryRefilesProducts(t *testing.T) {
	db := memdb(t)
	cat := services.NewCatalogService(db)
	prods := services.NewProductService(db, newMemStore())
	ctx := context.Background()

	audio, err := cat.CreateCategory(ctx, "Audio")
	require.NoError(t, err)
	video, err := cat.CreateCategory(ctx, "Video")
	require.NoError(t, err)
	sub, err := cat.CreateSubcategory(ctx, "Headphones", audio.ID)
	require.NoError(t, err)
	p, err := prods.Create(ctx, services.CreateProductRequest{Name: "H1", SubcategoryID: idp(sub.ID)})
	require.NoError(t, err)

	moved, err := cat.UpdateSubcategory(ctx, sub.ID, "Headphones", video.ID)
	require.NoError(t, err)
	assert.Equal(t, video.ID, moved.CategoryID)

	got, err := prods.Get(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, video.ID, *got.CategoryID)

	listed, err := prods.List(ctx, repos.ProductFilter{CategoryID: video.ID})
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	// a plain rename must still pass the placement check
	renamed, err := prods.Update(ctx, p.ID, services.UpdateProductRequest{Name: strp("H2")})
	require.NoError(t, err)
	assert.Equal(t, "H2", renamed.Name)
}
