package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginRejectsWrongPassword(t *testing.T) {
	gate, err := NewGate(nil, "correct-horse", "")
	require.NoError(t, err)

	_, _, err = gate.Login(context.Background(), "battery-staple")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestTokenFromRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/admin/orders", nil)
	c.Request.Header.Set("Authorization", "Bearer tok-123")
	assert.Equal(t, "tok-123", TokenFromRequest(c))

	c.Request.Header.Del("Authorization")
	c.Request.Header.Set("X-Session-Token", "tok-456")
	assert.Equal(t, "tok-456", TokenFromRequest(c))

	c.Request.Header.Del("X-Session-Token")
	assert.Equal(t, "", TokenFromRequest(c))
}

func TestValidateEmptyTokenIsUnauthorized(t *testing.T) {
	s := &SessionStore{}
	assert.ErrorIs(t, s.Validate(context.Background(), ""), ErrUnauthorized)
}
