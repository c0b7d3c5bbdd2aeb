package service

import (
	"context"
	"errors"
	"testing"

	"campus-complaints/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_CreatesStudent(t *testing.T) {
	users := NewUserService(setupTestDB(t))

	u, err := users.Register(context.Background(), RegisterInput{
		Name:     " Asha Rao ",
		Username: "asha",
		Password: "secret123",
		Email:    "asha@campus.edu",
	})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "Asha Rao", u.Name)
	assert.Equal(t, models.RoleStudent, u.Role)
	require.NotNil(t, u.Email)
	assert.Equal(t, "asha@campus.edu", *u.Email)
	assert.NotEqual(t, "secret123", u.PasswordHash)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserService(db)
	mustRegister(t, users, "First", "dup")

	_, err := users.Register(context.Background(), RegisterInput{Name: "Second", Username: "dup", Password: "another1"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// the original password still works
	_, err = users.Authenticate(context.Background(), "dup", "secret123")
	assert.NoError(t, err)
}

func TestRegister_Validation(t *testing.T) {
	users := NewUserService(setupTestDB(t))

	cases := map[string]RegisterInput{
		"missing name":     {Username: "abc", Password: "secret123"},
		"missing username": {Name: "A", Password: "secret123"},
		"missing password": {Name: "A", Username: "abc"},
		"short username":   {Name: "A", Username: "ab", Password: "secret123"},
		"bad username":     {Name: "A", Username: "has space", Password: "secret123"},
		"short password":   {Name: "A", Username: "abc", Password: "123"},
		"bad email":        {Name: "A", Username: "abc", Password: "secret123", Email: "not-an-email"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := users.Register(context.Background(), in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.NotEmpty(t, ve.Msg)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	users := NewUserService(setupTestDB(t))
	mustRegister(t, users, "Asha", "asha")

	u, err := users.Authenticate(context.Background(), "asha", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "asha", u.Username)

	_, err = users.Authenticate(context.Background(), "asha", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = users.Authenticate(context.Background(), "nobody", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// exact match only
	_, err = users.Authenticate(context.Background(), "ASHA", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = users.Authenticate(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	users := NewUserService(setupTestDB(t))

	created, err := users.EnsureAdmin(context.Background(), "warden", "adminpass", "")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = users.EnsureAdmin(context.Background(), "warden", "different", "")
	require.NoError(t, err)
	assert.False(t, created)

	u, err := users.Authenticate(context.Background(), "warden", "adminpass")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())
	assert.Equal(t, "Administrator", u.Name)
}

func TestEnsureAdmin_RejectsWeakPassword(t *testing.T) {
	users := NewUserService(setupTestDB(t))
	_, err := users.EnsureAdmin(context.Background(), "warden", "123", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPromote(t *testing.T) {
	users := NewUserService(setupTestDB(t))
	s := mustRegister(t, users, "Asha", "asha")
	assert.False(t, s.IsAdmin())

	require.NoError(t, users.Promote(context.Background(), "asha"))
	u, err := users.GetByID(context.Background(), s.ID)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())

	assert.Error(t, users.Promote(context.Background(), "ghost"))
}

func TestSetRole(t *testing.T) {
	users := NewUserService(setupTestDB(t))
	ctx := context.Background()
	s := mustRegister(t, users, "Asha", "asha")

	require.NoError(t, users.SetRole(ctx, "asha", "admin"))
	u, err := users.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())

	require.NoError(t, users.SetRole(ctx, "asha", "student"))
	u, err = users.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, u.IsAdmin())

	assert.ErrorIs(t, users.SetRole(ctx, "asha", "dean"), ErrValidation)
	assert.Error(t, users.SetRole(ctx, "ghost", "admin"))
}
