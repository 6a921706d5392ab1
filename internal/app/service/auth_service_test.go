package service

import (
	"testing"
	"time"

	"github.com/smartcart/smartcart-backend/config"
	"github.com/smartcart/smartcart-backend/internal/app/model"
	"github.com/smartcart/smartcart-backend/internal/app/repository"
	"github.com/smartcart/smartcart-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAuthServiceTest(t *testing.T) (*gorm.DB, AuthService, repository.NotificationRepository, repository.AuditLogRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(testDB)
	notificationRepo := repository.NewNotificationRepository(testDB)
	auditRepo := repository.NewAuditLogRepository(testDB)

	jwtConfig := config.JWTConfig{
		Secret:             "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
	}

	svc := NewAuthService(userRepo, notificationRepo, NewAuditService(auditRepo), jwtConfig)
	return testDB, svc, notificationRepo, auditRepo
}

func TestAuthService_Register(t *testing.T) {
	testDB, svc, notificationRepo, _ := setupAuthServiceTest(t)
	defer db.CleanupTestDB(testDB)

	user, tokens, err := svc.Register(RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret-pass",
		Phone:    "+15550001111",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
	assert.NotEmpty(t, tokens.AccessToken)

	// Welcome notification was created
	notifications, err := notificationRepo.FindByUser(user.ID, 0)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Contains(t, notifications[0].Message, "Welcome")
}

func TestAuthService_Register_Duplicates(t *testing.T) {
	testDB, svc, _, _ := setupAuthServiceTest(t)
	defer db.CleanupTestDB(testDB)

	_, _, err := svc.Register(RegisterInput{Username: "bob", Email: "bob@example.com", Password: "password1"})
	require.NoError(t, err)

	_, _, err = svc.Register(RegisterInput{Username: "bob2", Email: "bob@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrEmailExists)

	_, _, err = svc.Register(RegisterInput{Username: "bob", Email: "bob2@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestAuthService_Login(t *testing.T) {
	testDB, svc, _, auditRepo := setupAuthServiceTest(t)
	defer db.CleanupTestDB(testDB)

	registered, _, err := svc.Register(RegisterInput{Username: "carol", Email: "carol@example.com", Password: "password1"})
	require.NoError(t, err)

	user, tokens, err := svc.Login("carol@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, tokens.AccessToken)

	_, _, err = svc.Login("carol@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login("nobody@example.com", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Failed attempts leave an audit trail
	entries, _, err := auditRepo.FindRecent(0, 0)
	require.NoError(t, err)
	var failures int
	for _, entry := range entries {
		if entry.Action == AuditActionLoginFailed {
			failures++
		}
	}
	assert.Equal(t, 2, failures)
}

func TestAuthService_RefreshToken(t *testing.T) {
	testDB, svc, _, _ := setupAuthServiceTest(t)
	defer db.CleanupTestDB(testDB)

	_, tokens, err := svc.Register(RegisterInput{Username: "dave", Email: "dave@example.com", Password: "password1"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.RefreshToken("not-a-token")
	assert.Error(t, err)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	testDB, svc, _, _ := setupAuthServiceTest(t)
	defer db.CleanupTestDB(testDB)

	user, _, err := svc.Register(RegisterInput{Username: "erin", Email: "erin@example.com", Password: "password1"})
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(user.ID, "+15559998888")
	require.NoError(t, err)
	assert.Equal(t, "+15559998888", updated.Phone)

	_, err = svc.UpdateProfile(9999, "+15550000000")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
