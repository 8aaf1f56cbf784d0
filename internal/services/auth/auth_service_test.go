package auth

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/doeagora/doe-agora-backend/internal/apperrors"
	"github.com/doeagora/doe-agora-backend/internal/database"
	"github.com/doeagora/doe-agora-backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func registerDonor(t *testing.T, svc *AuthService) *models.AuthResponse {
	t.Helper()
	response, err := svc.Register(&models.RegisterRequest{
		Name:     "Maria",
		Email:    "maria@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	return response
}

func TestRegisterDefaultsToDonor(t *testing.T) {
	svc := NewAuthService(newTestDB(t))

	response := registerDonor(t, svc)
	assert.NotEmpty(t, response.AccessToken)
	assert.NotEmpty(t, response.RefreshToken)
	assert.Equal(t, "Bearer", response.TokenType)
	assert.Equal(t, models.RoleDonor, response.User.Role)
}

func TestRegisterDoneeStartsInactive(t *testing.T) {
	svc := NewAuthService(newTestDB(t))

	response, err := svc.Register(&models.RegisterRequest{
		Name:     "Casa Abrigo",
		Email:    "abrigo@example.com",
		Password: "secret123",
		Role:     models.RoleDonee,
		Message:  "Abrigamos 40 famílias",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleDonee, response.User.Role)
	assert.Equal(t, models.DoneeStatusInactive, response.User.DoneeStatus)
	assert.Equal(t, "Abrigamos 40 famílias", response.User.RequestMessage)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc := NewAuthService(newTestDB(t))

	_, err := svc.Register(&models.RegisterRequest{
		Name:     "Mallory",
		Email:    "mallory@example.com",
		Password: "secret123",
		Role:     models.RoleAdmin,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewAuthService(newTestDB(t))
	registerDonor(t, svc)

	_, err := svc.Register(&models.RegisterRequest{
		Name:     "Maria Clone",
		Email:    "maria@example.com",
		Password: "secret123",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestLogin(t *testing.T) {
	svc := NewAuthService(newTestDB(t))
	registerDonor(t, svc)

	response, err := svc.Login(&models.LoginRequest{Email: "maria@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, response.AccessToken)

	_, err = svc.Login(&models.LoginRequest{Email: "maria@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = svc.Login(&models.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	require.Error(t, err)
}

func TestValidateToken(t *testing.T) {
	svc := NewAuthService(newTestDB(t))
	registered := registerDonor(t, svc)

	info, err := svc.ValidateToken(registered.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, info.UserID)
	assert.Equal(t, "maria@example.com", info.Email)

	_, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestLogoutAllInvalidatesAccessTokens(t *testing.T) {
	svc := NewAuthService(newTestDB(t))
	registered := registerDonor(t, svc)

	require.NoError(t, svc.Logout("", registered.User.ID))

	// The token version bump makes previously issued access tokens invalid.
	_, err := svc.ValidateToken(registered.AccessToken)
	assert.Error(t, err)
}

func TestRefreshTokenRotation(t *testing.T) {
	svc := NewAuthService(newTestDB(t))
	registered := registerDonor(t, svc)

	refreshed, err := svc.RefreshToken(registered.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)

	// A refresh token is single use.
	_, err = svc.RefreshToken(registered.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}
