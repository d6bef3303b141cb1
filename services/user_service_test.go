package services

import (
	"context"
	"testing"
	"time"

	"Gin_postgres_redis_asset_tool/apperr"
	"Gin_postgres_redis_asset_tool/db"
	"Gin_postgres_redis_asset_tool/db/dbtest"
	"Gin_postgres_redis_asset_tool/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseUsername(t *testing.T) {
	tests := []struct{ first, last, want string }{
		{"Binh", "Nguyen Van", "binhnv"},
		{"An", "Tran", "ant"},
		{" Mary Jane ", "Watson", "maryjanew"},
		{"O'Neil", "Smith-Jones", "oneils"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BaseUsername(tt.first, tt.last), "%s %s", tt.first, tt.last)
	}
}

func TestNextUsername(t *testing.T) {
	assert.Equal(t, "binhnv", nextUsername("binhnv", nil))
	assert.Equal(t, "binhnv1", nextUsername("binhnv", []string{"binhnv"}))
	assert.Equal(t, "binhnv3", nextUsername("binhnv", []string{"binhnv", "binhnv2", "binhnva"}))
	assert.Equal(t, "binhnv", nextUsername("binhnv", []string{"binhnvan"}))
}

func TestDefaultPassword(t *testing.T) {
	assert.Equal(t, "binhnv@05032024", DefaultPassword("binhnv", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))
}

func TestCreateUser(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	joined := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	first, err := e.svc.Users.Create(ctx, e.admin, CreateUserInput{FirstName: "Binh", LastName: "Nguyen Van", JoinedDate: joined})
	require.NoError(t, err)
	assert.Equal(t, "binhnv", first.User.Username)
	assert.Equal(t, "binhnv@05032024", first.Password)
	assert.Equal(t, models.UserStaff, first.User.Type)
	assert.Equal(t, e.f.HQ.ID, first.User.LocationID)
	assert.True(t, first.User.MustChangePassword)

	second, err := e.svc.Users.Create(ctx, e.admin, CreateUserInput{FirstName: "Binh", LastName: "Ngo Viet", JoinedDate: joined})
	require.NoError(t, err)
	assert.Equal(t, "binhnv1", second.User.Username)

	// the generated password logs in
	pair, err := e.svc.Auth.Login(ctx, "binhnv1", second.Password)
	require.NoError(t, err)
	assert.True(t, pair.MustChangePassword)

	_, err = e.svc.Users.Create(ctx, e.staff, CreateUserInput{FirstName: "X", LastName: "Y"})
	isKind(t, err, apperr.KindForbidden)
	_, err = e.svc.Users.Create(ctx, e.admin, CreateUserInput{FirstName: "X", LastName: "Y", Type: "Root"})
	isKind(t, err, apperr.KindInvalid)
}

func TestDisableUser(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	asset := e.newLaptop(t)
	a := e.assignTo(t, asset, e.f.Staff.ID)

	isKind(t, e.svc.Users.Disable(ctx, e.admin, e.f.Staff.ID), apperr.KindConflict)
	isKind(t, e.svc.Users.Disable(ctx, e.admin, e.f.Admin.ID), apperr.KindConflict)
	isKind(t, e.svc.Users.Disable(ctx, e.admin, e.f.Other.ID), apperr.KindNotFound)

	pair, err := e.svc.Auth.Login(ctx, "staff", dbtest.Password)
	require.NoError(t, err)

	_, err = e.svc.Assignments.Decline(ctx, e.staff, a.ID)
	require.NoError(t, err)
	require.NoError(t, e.svc.Users.Disable(ctx, e.admin, e.f.Staff.ID))

	u, err := e.repo.FindUserByID(ctx, e.f.Staff.ID)
	require.NoError(t, err)
	assert.True(t, u.Disabled)

	// refresh sessions are gone and the password no longer works
	_, err = e.svc.Auth.Refresh(ctx, pair.RefreshToken)
	isKind(t, err, apperr.KindUnauthorized)
	_, err = e.svc.Auth.Login(ctx, "staff", dbtest.Password)
	isKind(t, err, apperr.KindUnauthorized)

	list, err := e.svc.Users.List(ctx, e.admin, db.UsersQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
}

func TestChangePassword(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	isKind(t, e.svc.Users.ChangePassword(ctx, e.staff, "wrong-pass", "new-password-1"), apperr.KindInvalid)
	isKind(t, e.svc.Users.ChangePassword(ctx, e.staff, dbtest.Password, "short"), apperr.KindInvalid)
	require.NoError(t, e.svc.Users.ChangePassword(ctx, e.staff, dbtest.Password, "new-password-1"))

	_, err := e.svc.Auth.Login(ctx, "staff", dbtest.Password)
	isKind(t, err, apperr.KindUnauthorized)
	pair, err := e.svc.Auth.Login(ctx, "staff", "new-password-1")
	require.NoError(t, err)
	assert.False(t, pair.MustChangePassword)
}

func TestCategories(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	cat, err := e.svc.Categories.Create(ctx, e.admin, "Headset", "hs")
	require.NoError(t, err)
	assert.Equal(t, "HS", cat.Prefix)

	_, err = e.svc.Categories.Create(ctx, e.admin, "laptop", "LP")
	isKind(t, err, apperr.KindConflict)
	_, err = e.svc.Categories.Create(ctx, e.admin, "Laptops", "LA")
	isKind(t, err, apperr.KindConflict)
	_, err = e.svc.Categories.Create(ctx, e.admin, "Phone", "P1")
	isKind(t, err, apperr.KindInvalid)
	_, err = e.svc.Categories.Create(ctx, e.staff, "Phone", "PH")
	isKind(t, err, apperr.KindForbidden)

	cs, err := e.svc.Categories.List(ctx, e.staff)
	require.NoError(t, err)
	assert.Len(t, cs, 3)
}
