package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princinho/storefront/models"
)

var (
	ErrUserMissing   = errors.New("user info missing")
	ErrRoleForbidden = errors.New("role not allowed")
)

// Authorize checks user against the allowed roles. It never looks at the
// store; the user is whatever the session middleware resolved.
func Authorize(user *models.User, allowed models.RoleSet) error {
	if user == nil {
		return ErrUserMissing
	}
	if !allowed.Contains(user.Role) {
		return fmt.Errorf("%w: %s not in %s", ErrRoleForbidden, user.Role, allowed)
	}
	return nil
}

// AuthorizeRoles must run after RequireAuth.
func AuthorizeRoles(allowed models.RoleSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := CurrentUser(c)
		if err := Authorize(user, allowed); err != nil {
			if errors.Is(err, ErrUserMissing) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User info missing"})
				return
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": fmt.Sprintf("Role: %s is not allowed to access this resource", user.Role),
			})
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return AuthorizeRoles(models.NewRoleSet(models.RoleAdmin))
}
