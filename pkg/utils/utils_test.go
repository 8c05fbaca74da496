package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	InitJWT("access", "refresh", time.Minute, time.Hour)

	token, err := GenerateAccessToken(42, "admin")
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "42", claims.Subject)

	InitJWT("other", "refresh", time.Minute, time.Hour)
	_, err = ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestExpiredAccessToken(t *testing.T) {
	InitJWT("access", "refresh", -time.Minute, time.Hour)

	token, err := GenerateAccessToken(1, "user")
	require.NoError(t, err)
	_, err = ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestRefreshTokenHash(t *testing.T) {
	InitJWT("access", "refresh", time.Minute, time.Hour)

	a, err := GenerateRefreshToken()
	require.NoError(t, err)
	b, err := GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	assert.Equal(t, HashRefreshToken(a), HashRefreshToken(a))
	assert.NotEqual(t, HashRefreshToken(a), HashRefreshToken(b))
	assert.Len(t, HashRefreshToken(a), 64)
	assert.Equal(t, time.Hour, GetRefreshTokenExpiry())
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.True(t, ComparePassword(hash, "secret1"))
	assert.False(t, ComparePassword(hash, "secret2"))
}

func TestResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	FieldErrorResponse(c, "invalid input", map[string]string{"serial": "is required"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Success bool              `json:"success"`
		Error   string            `json:"error"`
		Fields  map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "is required", body.Fields["serial"])

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	CreatedResponse(c, gin.H{"id": 1})
	assert.Equal(t, http.StatusCreated, w.Code)
}
