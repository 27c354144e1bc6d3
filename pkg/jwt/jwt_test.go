package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-access-secret-key-for-testing-purposes"

func TestNewService(t *testing.T) {
	service := NewService(testSecret, time.Hour)

	assert.NotNil(t, service)
	assert.Equal(t, testSecret, service.secret)
	assert.Equal(t, time.Hour, service.accessTokenExpiry)
}

func TestGenerateAccessToken(t *testing.T) {
	service := NewService(testSecret, time.Hour)
	userID := uuid.NewString()

	token, err := service.GenerateAccessToken(userID, RoleCustomer)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, RoleCustomer, claims.Role)
	assert.Equal(t, AccessToken, claims.TokenType)
	assert.Equal(t, Issuer, claims.Issuer)
	assert.Equal(t, userID, claims.Subject)
}

func TestGenerateAccessToken_Rejects(t *testing.T) {
	service := NewService(testSecret, time.Hour)

	_, err := service.GenerateAccessToken("", RoleAdmin)
	assert.Error(t, err)

	_, err = service.GenerateAccessToken("user-1", "super_admin")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestValidateAccessToken(t *testing.T) {
	service := NewService(testSecret, time.Hour)

	token, err := service.GenerateAccessToken("admin-1", RoleAdmin)
	require.NoError(t, err)

	t.Run("Valid", func(t *testing.T) {
		claims, err := service.ValidateAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, "admin-1", claims.UserID)
		assert.Equal(t, RoleAdmin, claims.Role)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := service.ValidateAccessToken("invalid.token.here")
		assert.Error(t, err)
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		_, err := NewService("wrong-secret", time.Hour).ValidateAccessToken(token)
		assert.Error(t, err)
	})

	t.Run("Foreign Issuer", func(t *testing.T) {
		foreign := signed(t, Claims{
			UserID:           "admin-1",
			Role:             RoleAdmin,
			TokenType:        AccessToken,
			RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		})
		_, err := service.ValidateAccessToken(foreign)
		assert.Error(t, err)
	})

	t.Run("Unknown Role", func(t *testing.T) {
		forged := signed(t, Claims{
			UserID:           "user-1",
			Role:             "driver",
			TokenType:        AccessToken,
			RegisteredClaims: jwt.RegisteredClaims{Issuer: Issuer, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		})
		_, err := service.ValidateAccessToken(forged)
		assert.ErrorIs(t, err, ErrUnknownRole)
	})

	t.Run("Wrong Token Type", func(t *testing.T) {
		refresh := signed(t, Claims{
			UserID:           "user-1",
			Role:             RoleCustomer,
			TokenType:        "refresh",
			RegisteredClaims: jwt.RegisteredClaims{Issuer: Issuer, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		})
		_, err := service.ValidateAccessToken(refresh)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid token type")
	})
}

func TestExpiredToken(t *testing.T) {
	service := NewService(testSecret, time.Hour)
	issuedAt := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return issuedAt }

	token, err := service.GenerateAccessToken("user-1", RoleCustomer)
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.False(t, service.IsTokenExpired(token))

	service.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	_, err = service.ValidateAccessToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	assert.True(t, service.IsTokenExpired(token))
}

func TestIsTokenExpired_Invalid(t *testing.T) {
	service := NewService(testSecret, time.Hour)
	assert.True(t, service.IsTokenExpired("invalid.token.here"))
}

func TestGetTokenExpiry(t *testing.T) {
	service := NewService(testSecret, time.Hour)

	token, err := service.GenerateAccessToken("user-1", RoleCustomer)
	require.NoError(t, err)

	expiry, err := service.GetTokenExpiry(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, 5*time.Second)

	_, err = service.GetTokenExpiry("invalid.token.here")
	assert.Error(t, err)
}

func TestTokenSigningMethod(t *testing.T) {
	service := NewService(testSecret, time.Hour)

	token, err := service.GenerateAccessToken("user-1", RoleCustomer)
	require.NoError(t, err)

	parsedToken, err := jwt.ParseWithClaims(token, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)

	_, ok := parsedToken.Method.(*jwt.SigningMethodHMAC)
	assert.True(t, ok, "Token should use HMAC signing method")
}

func TestConcurrentTokenGeneration(t *testing.T) {
	service := NewService(testSecret, time.Hour)

	done := make(chan bool)
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		go func() {
			defer func() { done <- true }()

			token, err := service.GenerateAccessToken(uuid.NewString(), RoleCustomer)
			if err != nil {
				errs <- err
				return
			}
			if _, err := service.ValidateAccessToken(token); err != nil {
				errs <- err
			}
		}()
	}

	for i := 0; i < 100; i++ {
		<-done
	}

	close(errs)
	assert.Empty(t, errs)
}

func signed(t *testing.T, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}
