package services_test

import (
	"context"
	"net/http"
	"testing"

	"estate_backend/internal/models"
	"estate_backend/internal/services"
	"estate_backend/internal/services/dto"
	"estate_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInquiryService_VisibilityAndResponse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	inquiries := env.svc.InquiryService

	property := testutil.CreateProperty(t, env.db, env.agentID, "Loft", models.PropertyStatusApproved)
	buyer := newActor(t, env, "Buyer", "buyer@estate.test", models.UserRoleUser)
	otherAgent := newActor(t, env, "Other", "other@estate.test", models.UserRoleAgent)

	created, err := inquiries.Create(ctx, env.db, buyer, &dto.CreateInquiryRequest{
		PropertyID: property.ID,
		Name:       "Buyer",
		Email:      "buyer@estate.test",
		Subject:    "Viewing",
		Message:    "Can I see it on Friday?",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, created.Status)
	require.NotNil(t, created.Property)
	assert.Equal(t, property.ID, created.Property.ID)

	events := outboxEvents(t, env.db, services.EventInquiryCreated)
	require.Len(t, events, 1)
	assert.Equal(t, created.ID, events[0].AggregateID)

	for actor, expected := range map[*services.Actor]int{&env.admin: 1, &env.agent: 1, &buyer: 1, &otherAgent: 0} {
		list, err := inquiries.List(ctx, env.db, *actor, &dto.RequestListQuery{})
		require.NoError(t, err)
		assert.Len(t, list.Data, expected, actor.UserID)
	}

	_, err = inquiries.Respond(ctx, env.db, otherAgent, created.ID, &dto.RespondRequest{Status: "closed"})
	assert.Equal(t, http.StatusForbidden, httpStatus(err))

	answer := "Friday at 10 works"
	responded, err := inquiries.Respond(ctx, env.db, env.agent, created.ID, &dto.RespondRequest{ResponseMessage: &answer})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusResponded, responded.Status)
	assert.Equal(t, answer, responded.ResponseMessage)
	assert.NotNil(t, responded.RespondedAt)
	assert.Len(t, outboxEvents(t, env.db, services.EventInquiryResponded), 1)

	assert.Equal(t, http.StatusForbidden, httpStatus(inquiries.Delete(ctx, env.db, env.agent, created.ID)))
	require.NoError(t, inquiries.Delete(ctx, env.db, env.admin, created.ID))
}

func TestInquiryService_UnknownProperty(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.InquiryService.Create(context.Background(), env.db, services.Actor{}, &dto.CreateInquiryRequest{
		PropertyID: "missing",
		Name:       "Guest",
		Email:      "guest@estate.test",
		Message:    "Hello",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, httpStatus(err))
}
