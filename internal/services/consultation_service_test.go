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

func TestConsultationService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	consultations := env.svc.ConsultationService

	created, err := consultations.Create(ctx, env.db, services.Actor{}, &dto.CreateConsultationRequest{
		Name:        "  Guest ",
		Email:       "guest@estate.test",
		ServiceType: "smart-lighting",
		Message:     "Need a quote",
	})
	require.NoError(t, err)
	assert.Equal(t, "Guest", created.Name)
	assert.Nil(t, created.UserID)
	assert.Equal(t, models.RequestStatusPending, created.Status)
	assert.Len(t, outboxEvents(t, env.db, services.EventConsultationCreated), 1)

	list, err := consultations.List(ctx, env.db, &dto.RequestListQuery{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, int64(1), list.Meta.Total)

	// смена статуса без ответа письма не порождает
	closed, err := consultations.Respond(ctx, env.db, env.admin, created.ID, &dto.RespondRequest{Status: "closed"})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusClosed, closed.Status)
	assert.Nil(t, closed.RespondedAt)
	assert.Empty(t, outboxEvents(t, env.db, services.EventConsultationResponded))

	answer := "We will call you tomorrow"
	responded, err := consultations.Respond(ctx, env.db, env.admin, created.ID, &dto.RespondRequest{ResponseMessage: &answer})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusResponded, responded.Status)
	assert.Equal(t, answer, responded.ResponseMessage)
	assert.NotNil(t, responded.RespondedAt)
	assert.Len(t, outboxEvents(t, env.db, services.EventConsultationResponded), 1)

	require.NoError(t, consultations.Delete(ctx, env.db, created.ID))
	_, err = consultations.Get(ctx, env.db, created.ID)
	assert.Equal(t, http.StatusNotFound, httpStatus(err))
	assert.Equal(t, http.StatusNotFound, httpStatus(consultations.Delete(ctx, env.db, created.ID)))
}

func TestConsultationService_LinksSignedInUser(t *testing.T) {
	env := newTestEnv(t)
	user := newActor(t, env, "Client", "client@estate.test", models.UserRoleUser)

	created, err := env.svc.ConsultationService.Create(context.Background(), env.db, user, &dto.CreateConsultationRequest{
		Name:        "Client",
		Email:       "client@estate.test",
		ServiceType: "security",
	})
	require.NoError(t, err)
	require.NotNil(t, created.UserID)
	assert.Equal(t, user.UserID, *created.UserID)
}
