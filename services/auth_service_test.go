package services

import (
	"context"
	"testing"

	"Gin_postgres_redis_asset_tool/apperr"
	"Gin_postgres_redis_asset_tool/db/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	pair, err := e.svc.Auth.Login(ctx, "  STAFF ", dbtest.Password)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64(60), pair.ExpiresIn)
	assert.Equal(t, e.f.Staff.ID, pair.User.ID)

	claims, err := e.svc.Auth.tokens.Verify(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, e.f.Staff.ID, claims.UserID)
	assert.Equal(t, e.f.HQ.ID, claims.LocationID)

	u, err := e.repo.FindUserByID(ctx, e.f.Staff.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.LoginCount)
	assert.NotNil(t, u.LastLoginAt)

	_, err = e.svc.Auth.Login(ctx, "staff", "nope")
	isKind(t, err, apperr.KindUnauthorized)
	_, err = e.svc.Auth.Login(ctx, "ghost", dbtest.Password)
	isKind(t, err, apperr.KindUnauthorized)
	_, err = e.svc.Auth.Login(ctx, "", "")
	isKind(t, err, apperr.KindInvalid)
}

func TestRefreshRotates(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	pair, err := e.svc.Auth.Login(ctx, "staff", dbtest.Password)
	require.NoError(t, err)

	next, err := e.svc.Auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, next.AccessToken)

	_, err = e.svc.Auth.Refresh(ctx, pair.RefreshToken)
	isKind(t, err, apperr.KindUnauthorized)
}

func TestLogoutRevokesAccessToken(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	pair, err := e.svc.Auth.Login(ctx, "staff", dbtest.Password)
	require.NoError(t, err)
	other, err := e.svc.Auth.Login(ctx, "staff", dbtest.Password)
	require.NoError(t, err)

	claims, err := e.svc.Auth.tokens.Verify(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.NoError(t, e.svc.Auth.Logout(ctx, claims, pair.RefreshToken))

	_, err = e.svc.Auth.tokens.Verify(ctx, pair.AccessToken)
	assert.Error(t, err)
	_, err = e.svc.Auth.Refresh(ctx, pair.RefreshToken)
	isKind(t, err, apperr.KindUnauthorized)

	// the other login is untouched
	_, err = e.svc.Auth.tokens.Verify(ctx, other.AccessToken)
	assert.NoError(t, err)
}
