package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccessSecret  = "test-access-secret-key-for-testing-purposes"
	testRefreshSecret = "test-refresh-secret-key-for-testing-purposes"
	testIssuer        = "cleanbook-scheduler"
	testAudience      = "cleanbook-clients"
)

func newTestService(accessExpiry, refreshExpiry time.Duration) *Service {
	return NewService(testAccessSecret, testRefreshSecret, testIssuer, testAudience, accessExpiry, refreshExpiry)
}

func testIdentity() Identity {
	return Identity{
		AccountID:  uuid.NewString(),
		EmployeeID: 3,
		Email:      "cleaner@example.com",
		Roles:      []string{"Cleaner"},
	}
}

func TestNewService(t *testing.T) {
	service := newTestService(4*time.Hour, 24*time.Hour)

	assert.NotNil(t, service)
	assert.Equal(t, testAccessSecret, service.accessSecret)
	assert.Equal(t, testRefreshSecret, service.refreshSecret)
	assert.Equal(t, testIssuer, service.issuer)
	assert.Equal(t, 4*time.Hour, service.accessTokenExpiry)
	assert.Equal(t, 24*time.Hour, service.refreshTokenExpiry)
}

func TestGenerateAccessToken(t *testing.T) {
	service := newTestService(4*time.Hour, 24*time.Hour)
	identity := testIdentity()

	token, expiresAt, err := service.GenerateAccessToken(identity)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(4*time.Hour), expiresAt, 5*time.Second)

	claims, err := service.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, identity.AccountID, claims.AccountID())
	assert.Equal(t, identity.EmployeeID, claims.EmployeeID)
	assert.Equal(t, identity.Email, claims.Email)
	assert.Equal(t, identity.Roles, claims.Roles)
	assert.Equal(t, AccessToken, claims.TokenType)
	assert.Equal(t, testIssuer, claims.Issuer)
	assert.Equal(t, jwt.ClaimStrings{testAudience}, claims.Audience)
	assert.NotEmpty(t, claims.ID)
}

func TestGenerateRefreshToken(t *testing.T) {
	service := newTestService(time.Hour, 24*time.Hour)
	accountID := uuid.NewString()

	token, expiresAt, err := service.GenerateRefreshToken(accountID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, 5*time.Second)

	claims, err := service.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, accountID, claims.AccountID())
	assert.Equal(t, RefreshToken, claims.TokenType)
	assert.Empty(t, claims.Roles)
}

func TestValidateAccessToken(t *testing.T) {
	service := newTestService(time.Hour, 24*time.Hour)

	token, _, err := service.GenerateAccessToken(testIdentity())
	require.NoError(t, err)

	t.Run("Invalid Token", func(t *testing.T) {
		_, err := service.ValidateAccessToken("invalid.token.here")
		assert.Error(t, err)
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		wrongService := NewService("wrong-secret", testRefreshSecret, testIssuer, testAudience, time.Hour, 24*time.Hour)
		_, err := wrongService.ValidateAccessToken(token)
		assert.Error(t, err)
	})

	t.Run("Wrong Audience", func(t *testing.T) {
		otherService := NewService(testAccessSecret, testRefreshSecret, testIssuer, "someone-else", time.Hour, 24*time.Hour)
		_, err := otherService.ValidateAccessToken(token)
		assert.Error(t, err)
	})

	t.Run("Wrong Issuer", func(t *testing.T) {
		otherService := NewService(testAccessSecret, testRefreshSecret, "other-issuer", testAudience, time.Hour, 24*time.Hour)
		_, err := otherService.ValidateAccessToken(token)
		assert.Error(t, err)
	})
}

func TestTokenTypeMismatch(t *testing.T) {
	// Same secret for both kinds so only the type claim can reject
	service := NewService(testAccessSecret, testAccessSecret, testIssuer, testAudience, time.Hour, 24*time.Hour)
	identity := testIdentity()

	accessToken, _, err := service.GenerateAccessToken(identity)
	require.NoError(t, err)
	_, err = service.ValidateRefreshToken(accessToken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token type")

	refreshToken, _, err := service.GenerateRefreshToken(identity.AccountID)
	require.NoError(t, err)
	_, err = service.ValidateAccessToken(refreshToken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token type")
}

func TestExpiredToken(t *testing.T) {
	service := newTestService(-time.Minute, -time.Minute)

	token, _, err := service.GenerateAccessToken(testIdentity())
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.True(t, service.IsTokenExpired(token))
}

func TestRejectsOtherSigningMethods(t *testing.T) {
	service := newTestService(time.Hour, 24*time.Hour)

	claims := Claims{
		TokenType: AccessToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			Issuer:    testIssuer,
			Audience:  jwt.ClaimStrings{testAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testAccessSecret))
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestExtractClaims(t *testing.T) {
	service := newTestService(time.Hour, 24*time.Hour)
	identity := testIdentity()

	token, _, err := service.GenerateAccessToken(identity)
	require.NoError(t, err)

	claims, err := service.ExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, identity.Email, claims.Email)
	assert.False(t, service.IsTokenExpired(token))
	assert.True(t, service.IsTokenExpired("invalid.token.here"))
}

func TestConcurrentTokenGeneration(t *testing.T) {
	service := newTestService(time.Hour, 24*time.Hour)

	done := make(chan bool)
	errors := make(chan error, 100)

	for i := 0; i < 100; i++ {
		go func() {
			token, _, err := service.GenerateAccessToken(testIdentity())
			if err != nil {
				errors <- err
				done <- true
				return
			}

			if _, err := service.ValidateAccessToken(token); err != nil {
				errors <- err
			}
			done <- true
		}()
	}

	for i := 0; i < 100; i++ {
		<-done
	}

	close(errors)
	assert.Empty(t, errors)
}
