package auth

import (
	"errors"
	"net/http"
	"strings"

	"gymhub/internal/api"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID    = "user_id"
	ctxUserEmail = "user_email"
	ctxUserRole  = "user_role"
)

func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			api.Abort(c, http.StatusUnauthorized, "You are not logged in! Please log in to get access.")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) != "Bearer" {
			api.Abort(c, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			api.Abort(c, http.StatusUnauthorized, "Token is empty")
			return
		}

		claims, err := ValidateToken(tokenString, secret)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				api.Abort(c, http.StatusUnauthorized, "Your token has expired! Please log in again.")
			} else {
				api.Abort(c, http.StatusUnauthorized, "Invalid token. Please log in again.")
			}
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUserEmail, claims.Email)
		c.Set(ctxUserRole, claims.Role)

		c.Next()
	}
}

// RequireRole lets the request through only when the caller's role is in roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRole(c)
		if !ok {
			api.Abort(c, http.StatusUnauthorized, "User role not found")
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		api.Abort(c, http.StatusForbidden, "You do not have permission to perform this action")
	}
}

func GetUserID(c *gin.Context) (int, bool) {
	userID, exists := c.Get(ctxUserID)
	if !exists {
		return 0, false
	}

	id, ok := userID.(int)
	if !ok {
		return 0, false
	}

	return id, true
}

func GetUserRole(c *gin.Context) (string, bool) {
	role, exists := c.Get(ctxUserRole)
	if !exists {
		return "", false
	}

	roleStr, ok := role.(string)
	return roleStr, ok
}

// Identity is the authenticated caller as seen by services.
type Identity struct {
	UserID int
	Role   string
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

func GetIdentity(c *gin.Context) (Identity, bool) {
	id, ok := GetUserID(c)
	if !ok {
		return Identity{}, false
	}
	role, _ := GetUserRole(c)
	return Identity{UserID: id, Role: role}, true
}
