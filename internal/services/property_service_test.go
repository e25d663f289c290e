package services_test

import (
	"context"
	"net/http"
	"testing"

	"estate_backend/internal/models"
	"estate_backend/internal/services"
	"estate_backend/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func villaRequest() *dto.PropertyRequest {
	return &dto.PropertyRequest{
		Title:    "Sea View Villa",
		Location: "Coast road 1",
		City:     "Almaty",
		Price:    price(450000),
		Bedrooms: 4,
	}
}

func TestPropertyService_SubmissionNeedsApproval(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	props := env.svc.PropertyService

	created, err := props.Create(ctx, env.db, env.agent, villaRequest())
	require.NoError(t, err)
	assert.Equal(t, models.PropertyStatusPending, created.Status)
	assert.Equal(t, "sea-view-villa", created.Slug)
	assert.Equal(t, "Agent", created.AgentName, "контакты берутся из профиля")
	assert.Len(t, outboxEvents(t, env.db, services.EventPropertySubmitted), 1)

	// pending не виден анонимно и не попадает в публичный список
	_, err = props.Get(ctx, env.db, services.Actor{}, created.Slug)
	assert.Equal(t, http.StatusForbidden, httpStatus(err))
	list, err := props.ListPublic(ctx, env.db, &dto.PropertyQuery{})
	require.NoError(t, err)
	assert.Empty(t, list.Data)

	approved, err := props.Approve(ctx, env.db, env.admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PropertyStatusApproved, approved.Status)
	assert.NotNil(t, approved.ApprovedAt)
	assert.Len(t, outboxEvents(t, env.db, services.EventPropertyApproved), 1)

	list, err = props.ListPublic(ctx, env.db, &dto.PropertyQuery{})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, created.ID, list.Data[0].ID)

	got, err := props.Get(ctx, env.db, services.Actor{}, created.Slug)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestPropertyService_AdminSubmissionIsApproved(t *testing.T) {
	env := newTestEnv(t)
	created, err := env.svc.PropertyService.Create(context.Background(), env.db, env.admin, villaRequest())
	require.NoError(t, err)
	assert.Equal(t, models.PropertyStatusApproved, created.Status)
	assert.Empty(t, outboxEvents(t, env.db, services.EventPropertySubmitted))
}

func TestPropertyService_ApprovalTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	props := env.svc.PropertyService

	created, err := props.Create(ctx, env.db, env.agent, villaRequest())
	require.NoError(t, err)

	// не-админ не может менять статус
	_, err = props.Reject(ctx, env.db, env.agent, created.ID)
	assert.Equal(t, http.StatusForbidden, httpStatus(err))
	got, err := props.Get(ctx, env.db, env.agent, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PropertyStatusPending, got.Status)

	_, err = props.Approve(ctx, env.db, env.admin, created.ID)
	require.NoError(t, err)

	// повторное одобрение - no-op, событие не дублируется
	again, err := props.Approve(ctx, env.db, env.admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PropertyStatusApproved, again.Status)
	assert.Len(t, outboxEvents(t, env.db, services.EventPropertyApproved), 1)

	_, err = props.Reject(ctx, env.db, env.admin, created.ID)
	assert.Equal(t, http.StatusConflict, httpStatus(err))

	other, err := props.Create(ctx, env.db, env.agent, villaRequest())
	require.NoError(t, err)
	assert.Equal(t, "sea-view-villa-1", other.Slug)

	_, err = props.Reject(ctx, env.db, env.admin, other.ID)
	require.NoError(t, err)
	_, err = props.Approve(ctx, env.db, env.admin, other.ID)
	assert.Equal(t, http.StatusConflict, httpStatus(err))

	_, err = props.Approve(ctx, env.db, env.admin, "missing")
	assert.Equal(t, http.StatusNotFound, httpStatus(err))
}

func TestPropertyService_OwnerEditingRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	props := env.svc.PropertyService
	stranger := newActor(t, env, "Stranger", "stranger@estate.test", models.UserRoleAgent)

	created, err := props.Create(ctx, env.db, env.agent, villaRequest())
	require.NoError(t, err)

	_, err = props.Update(ctx, env.db, stranger, created.ID, villaRequest())
	assert.Equal(t, http.StatusForbidden, httpStatus(err))

	req := villaRequest()
	req.Title = "Mountain Chalet"
	updated, err := props.Update(ctx, env.db, env.agent, created.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "mountain-chalet", updated.Slug)

	_, err = props.Approve(ctx, env.db, env.admin, created.ID)
	require.NoError(t, err)

	_, err = props.Update(ctx, env.db, env.agent, created.ID, villaRequest())
	assert.Equal(t, http.StatusForbidden, httpStatus(err), "после одобрения владелец не редактирует")
	assert.Equal(t, http.StatusForbidden, httpStatus(props.Delete(ctx, env.db, env.agent, created.ID)))

	_, err = props.Update(ctx, env.db, env.admin, created.ID, villaRequest())
	assert.NoError(t, err)
}

func TestPropertyService_DeleteRemovesImages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	props := env.svc.PropertyService

	req := villaRequest()
	req.Images = []*dto.UploadedFile{pngUpload(t, "images"), pngUpload(t, "images")}
	created, err := props.Create(ctx, env.db, env.agent, req)
	require.NoError(t, err)
	require.Len(t, created.Images, 2)
	assert.Len(t, created.ImageURLs, 2)

	for _, path := range created.Images {
		ok, err := env.store.Exists(ctx, path)
		require.NoError(t, err)
		assert.True(t, ok, path)
	}

	require.NoError(t, props.Delete(ctx, env.db, env.agent, created.ID))

	for _, path := range created.Images {
		ok, err := env.store.Exists(ctx, path)
		require.NoError(t, err)
		assert.False(t, ok, path)
	}
	_, err = props.Get(ctx, env.db, env.admin, created.ID)
	assert.Equal(t, http.StatusNotFound, httpStatus(err))
}

func TestPropertyService_RejectsNonImageUpload(t *testing.T) {
	env := newTestEnv(t)
	req := villaRequest()
	req.Images = []*dto.UploadedFile{{Field: "images.0", Filename: "a.txt", Data: []byte("plain text")}}

	_, err := env.svc.PropertyService.Create(context.Background(), env.db, env.agent, req)
	assert.Equal(t, http.StatusUnprocessableEntity, httpStatus(err))

	var count int64
	require.NoError(t, env.db.Model(&models.Property{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPropertyService_OnlyAdminCanFeature(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	props := env.svc.PropertyService

	req := villaRequest()
	req.IsFeatured = true
	created, err := props.Create(ctx, env.db, env.agent, req)
	require.NoError(t, err)
	assert.False(t, created.IsFeatured)

	updated, err := props.Update(ctx, env.db, env.agent, created.ID, req)
	require.NoError(t, err)
	assert.False(t, updated.IsFeatured)

	updated, err = props.Update(ctx, env.db, env.admin, created.ID, req)
	require.NoError(t, err)
	assert.True(t, updated.IsFeatured)

	// правка агента не снимает отметку администратора
	req.IsFeatured = false
	updated, err = props.Update(ctx, env.db, env.agent, created.ID, req)
	require.NoError(t, err)
	assert.True(t, updated.IsFeatured)
}
