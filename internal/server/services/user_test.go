package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"docvault/internal/common"
	"docvault/internal/server/auth"
	"docvault/internal/server/config"
	"docvault/internal/server/models"
)

func newUserService(t *testing.T) (*UserService, *fakeRepoManager) {
	t.Helper()

	rm := &fakeRepoManager{
		u: &fakeUsersRepo{byEmail: map[string]*models.User{}},
		a: &fakeAuditRepo{},
	}
	cfg := &config.Config{
		SecretKey:                   "test-secret",
		AccessTokenValidityDuration: time.Hour,
	}
	return NewUserService((*sql.DB)(nil), rm, cfg, nopLogger{}), rm
}

func TestUserService_RegisterHashesPassword(t *testing.T) {
	svc, rm := newUserService(t)

	user, err := svc.Register(context.Background(), "Alice Smith", "alice@example.com", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)

	stored := rm.u.byEmail["alice@example.com"]
	require.NotNil(t, stored)
	assert.NotContains(t, string(stored.PasswordHash), "hunter2")
	assert.NoError(t, bcrypt.CompareHashAndPassword(stored.PasswordHash, []byte("hunter2")))
}

func TestUserService_Login(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice Smith", "alice@example.com", "hunter2")
	require.NoError(t, err)

	token, user, err := svc.Login(ctx, "alice@example.com", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := auth.GetUserIDFromToken(token, []byte("test-secret"))
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestUserService_Login_BadCredentials(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice Smith", "alice@example.com", "hunter2")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, _, err = svc.Login(ctx, "nobody@example.com", "hunter2")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}
