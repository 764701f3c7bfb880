package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"slotbook/internal/domain/identity"
	"slotbook/internal/pkg/cookie"
	"slotbook/internal/usecase"
	"slotbook/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthMiddleware struct {
	tokenValidator usecase.TokenValidator
}

const (
	ctxClientIDKey    = "client_id"
	ctxClientEmailKey = "client_email"
	ctxClientRoleKey  = "client_role"
)

var roleHierarchy = map[identity.Role]int{
	identity.RoleClient:   1,
	identity.RoleOperator: 2,
	identity.RoleAdmin:    3,
}

func NewAuthMiddleware(tokenValidator usecase.TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: tokenValidator,
	}
}

// RequireAuth accepts the session cookie first and a Bearer header as a
// fallback. Requests without a valid identity never reach a handler.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerOrCookie(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Access token required",
			})
			c.Abort()
			return
		}

		clientID, email, role, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			slog.Warn("token validation failed", "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(ctxClientIDKey, clientID)
		c.Set(ctxClientEmailKey, email)
		c.Set(ctxClientRoleKey, role)
		c.Next()
	}
}

// OptionalAuth attaches the identity when a valid token is present and lets
// anonymous requests through untouched. Handlers behind it must not assume a
// requestor exists.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerOrCookie(c)
		if token == "" {
			c.Next()
			return
		}
		clientID, email, role, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			slog.Warn("token validation failed", "error", err.Error())
			c.Next()
			return
		}
		c.Set(ctxClientIDKey, clientID)
		c.Set(ctxClientEmailKey, email)
		c.Set(ctxClientRoleKey, role)
		c.Next()
	}
}

func (m *AuthMiddleware) RequireRoleAtLeast(minRole identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetClientRole(c)
		if !ok {
			// Must run after RequireAuth()
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
			c.Abort()
			return
		}

		if !hasMinimumRole(role, minRole) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Insufficient permissions",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func bearerOrCookie(c *gin.Context) string {
	token := cookie.GetAccessToken(c)
	if token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	return ""
}

func hasMinimumRole(role, minRole identity.Role) bool {
	level, ok := roleHierarchy[role]
	minLevel, minOK := roleHierarchy[minRole]
	return ok && minOK && level >= minLevel
}

func GetClientID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ctxClientIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func GetClientRole(c *gin.Context) (identity.Role, bool) {
	v, exists := c.Get(ctxClientRoleKey)
	if !exists {
		return "", false
	}
	role, ok := v.(identity.Role)
	return role, ok
}

// GetRequestor assembles the command-layer identity from the context set by
// RequireAuth.
func GetRequestor(c *gin.Context) (commands.Requestor, bool) {
	id, ok := GetClientID(c)
	if !ok {
		return commands.Requestor{}, false
	}
	role, ok := GetClientRole(c)
	if !ok {
		return commands.Requestor{}, false
	}
	email, _ := c.Get(ctxClientEmailKey)
	emailStr, _ := email.(string)
	return commands.Requestor{
		ClientID: id,
		Email:    emailStr,
		Role:     role,
	}, true
}
