package services_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"estate_backend/internal/services"
	"estate_backend/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_CRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	catalog := env.svc.CatalogService

	lighting, err := catalog.Create(ctx, env.db, &dto.ServiceRequest{
		Title:     "Smart Lighting",
		SortOrder: 2,
		Image:     pngUpload(t, "image"),
	})
	require.NoError(t, err)
	assert.Equal(t, "smart-lighting", lighting.Slug)
	assert.True(t, lighting.IsActive)
	assert.True(t, strings.HasPrefix(lighting.Image, "services/"))
	assert.NotEmpty(t, lighting.ImageURL)

	duplicate, err := catalog.Create(ctx, env.db, &dto.ServiceRequest{Title: "Smart Lighting", SortOrder: 1})
	require.NoError(t, err)
	assert.Equal(t, "smart-lighting-1", duplicate.Slug)

	inactive := false
	hidden, err := catalog.Create(ctx, env.db, &dto.ServiceRequest{Title: "Legacy Alarm", IsActive: &inactive})
	require.NoError(t, err)

	active, err := catalog.List(ctx, env.db, false)
	require.NoError(t, err)
	require.Len(t, active, 2)
	// sort_order по возрастанию
	assert.Equal(t, duplicate.ID, active[0].ID)

	all, err := catalog.List(ctx, env.db, true)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = catalog.Get(ctx, env.db, services.Actor{}, hidden.Slug)
	assert.Equal(t, http.StatusNotFound, httpStatus(err))
	found, err := catalog.Get(ctx, env.db, env.admin, hidden.ID)
	require.NoError(t, err)
	assert.Equal(t, "Legacy Alarm", found.Title)

	oldImage := lighting.Image
	updated, err := catalog.Update(ctx, env.db, lighting.ID, &dto.ServiceRequest{
		Title: "Lighting Automation",
		Image: pngUpload(t, "image"),
	})
	require.NoError(t, err)
	assert.Equal(t, "lighting-automation", updated.Slug)
	assert.NotEqual(t, oldImage, updated.Image)

	exists, err := env.store.Exists(ctx, oldImage)
	require.NoError(t, err)
	assert.False(t, exists, "старое изображение должно быть удалено")

	require.NoError(t, catalog.Delete(ctx, env.db, lighting.ID))
	exists, err = env.store.Exists(ctx, updated.Image)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.Equal(t, http.StatusNotFound, httpStatus(catalog.Delete(ctx, env.db, lighting.ID)))
}

func TestCatalogService_RejectsNonImage(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.CatalogService.Create(context.Background(), env.db, &dto.ServiceRequest{
		Title: "Broken",
		Image: &dto.UploadedFile{Field: "image", Filename: "notes.txt", ContentType: "text/plain", Data: []byte("plain text")},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, httpStatus(err))

	all, err := env.svc.CatalogService.List(context.Background(), env.db, true)
	require.NoError(t, err)
	assert.Empty(t, all)
}
