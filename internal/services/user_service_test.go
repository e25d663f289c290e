package services_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"estate_backend/internal/auth"
	"estate_backend/internal/models"
	"estate_backend/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_UpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := env.svc.UserService

	name := "  Agent Smith "
	bio := "Sells lofts"
	updated, err := users.UpdateProfile(ctx, env.db, env.agentID, &dto.UpdateProfileRequest{Name: &name, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Agent Smith", updated.Name)
	assert.Equal(t, "Sells lofts", updated.Bio)

	_, err = users.UpdateProfile(ctx, env.db, env.agentID, &dto.UpdateProfileRequest{
		CurrentPassword: "wrong-password",
		Password:        "new-password-1",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, httpStatus(err))

	_, err = users.UpdateProfile(ctx, env.db, env.agentID, &dto.UpdateProfileRequest{
		CurrentPassword: "password123",
		Password:        "new-password-1",
	})
	require.NoError(t, err)

	var stored models.User
	require.NoError(t, env.db.First(&stored, "id = ?", env.agentID).Error)
	assert.True(t, auth.CheckPasswordHash("new-password-1", stored.PasswordHash))
}

func TestUserService_ProfilePictureReplacesOldFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := env.svc.UserService

	first, err := users.UpdateProfilePicture(ctx, env.db, env.agentID, pngUpload(t, "image"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.ProfilePicture, "profile_pictures/"))

	second, err := users.UpdateProfilePicture(ctx, env.db, env.agentID, pngUpload(t, "image"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ProfilePicture, second.ProfilePicture)

	exists, err := env.store.Exists(ctx, first.ProfilePicture)
	require.NoError(t, err)
	assert.False(t, exists)
	exists, err = env.store.Exists(ctx, second.ProfilePicture)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUserService_AdminUpdateAndList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := env.svc.UserService

	suspended := string(models.UserStatusSuspended)
	approved := true
	updated, err := users.AdminUpdate(ctx, env.db, env.agentID, &dto.AdminUpdateUserRequest{Status: &suspended, IsApproved: &approved})
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusSuspended, updated.Status)
	assert.True(t, updated.IsApproved)

	list, err := users.List(ctx, env.db, &dto.UserListQuery{Role: string(models.UserRoleAgent)})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, env.agentID, list.Data[0].ID)

	_, err = users.AdminUpdate(ctx, env.db, "missing", &dto.AdminUpdateUserRequest{Status: &suspended})
	assert.Equal(t, http.StatusNotFound, httpStatus(err))
}
