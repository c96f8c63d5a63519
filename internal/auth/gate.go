package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Gate checks the admin password and gates admin routes behind sessions.
type Gate struct {
	sessions *SessionStore
	hash     []byte
	logger   *zap.Logger
}

// NewGate builds the admin auth gate. When passwordHash is empty the plain
// password from config is hashed at startup.
func NewGate(sessions *SessionStore, password, passwordHash string) (*Gate, error) {
	hash := []byte(passwordHash)
	if passwordHash == "" {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
	}

	return &Gate{
		sessions: sessions,
		hash:     hash,
		logger:   util.GetLogger(),
	}, nil
}

// Login verifies the password and issues a session token.
func (g *Gate) Login(ctx context.Context, password string) (string, time.Time, error) {
	if err := bcrypt.CompareHashAndPassword(g.hash, []byte(password)); err != nil {
		util.AdminLoginsTotal.WithLabelValues("rejected").Inc()
		g.logger.Warn("Admin login rejected")
		return "", time.Time{}, ErrUnauthorized
	}

	token, expiresAt, err := g.sessions.Create(ctx)
	if err != nil {
		util.AdminLoginsTotal.WithLabelValues("error").Inc()
		return "", time.Time{}, err
	}

	util.AdminLoginsTotal.WithLabelValues("accepted").Inc()
	return token, expiresAt, nil
}

// Logout revokes the session token, if any.
func (g *Gate) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return g.sessions.Revoke(ctx, token)
}

// Middleware rejects requests that do not carry a live session token in
// "Authorization: Bearer <token>" or "X-Session-Token".
func (g *Gate) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if err := g.sessions.Validate(c.Request.Context(), token); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized",
			})
			return
		}
		c.Next()
	}
}

// TokenFromRequest extracts the session token from the request headers.
func TokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return c.GetHeader("X-Session-Token")
}
