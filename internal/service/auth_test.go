package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/brandpilot/internal/model"
	"github.com/d60-Lab/brandpilot/internal/repository"
)

func setupAuth(t *testing.T) (*AuthService, repository.UserRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}))
	users := repository.NewUserRepository(db)
	return NewAuthService(users, "test-secret", time.Hour), users
}

func TestAuthRegisterLogin(t *testing.T) {
	auth, _ := setupAuth(t)
	ctx := context.Background()

	u, err := auth.Register(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "password123", u.Password, "password stored hashed")

	token, err := auth.Login(ctx, "alice", "password123")
	require.NoError(t, err)

	userID, isAdmin, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)
	assert.False(t, isAdmin)
}

func TestAuthLoginRejectsBadPassword(t *testing.T) {
	auth, _ := setupAuth(t)
	ctx := context.Background()
	_, err := auth.Register(ctx, "bob", "bob@example.com", "password123")
	require.NoError(t, err)

	_, err = auth.Login(ctx, "bob", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthLoginRejectsDisabledUser(t *testing.T) {
	auth, users := setupAuth(t)
	ctx := context.Background()
	u, err := auth.Register(ctx, "carol", "carol@example.com", "password123")
	require.NoError(t, err)
	require.NoError(t, users.SetActive(ctx, u.ID, false))

	_, err = auth.Login(ctx, "carol", "password123")
	assert.ErrorIs(t, err, ErrUserDisabled)
}

func TestAuthParseTokenRejectsGarbage(t *testing.T) {
	auth, users := setupAuth(t)
	_, _, err := auth.ParseToken("not-a-token")
	assert.Error(t, err)

	// 另一把密钥签的 token 不被接受
	other := NewAuthService(users, "other-secret", time.Hour)
	ctx := context.Background()
	_, err = other.Register(ctx, "eve", "eve@example.com", "password123")
	require.NoError(t, err)
	token, err := other.Login(ctx, "eve", "password123")
	require.NoError(t, err)
	_, _, err = auth.ParseToken(token)
	assert.Error(t, err)
}
