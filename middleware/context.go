package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/princinho/storefront/models"
)

const currentUserKey = "currentUser"

type userCtxKey struct{}

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, user)
}

func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userCtxKey{}).(*models.User)
	return user, ok && user != nil
}

// SetCurrentUser attaches user to both the gin context and the request context.
func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(currentUserKey, user)
	c.Request = c.Request.WithContext(WithUser(c.Request.Context(), user))
}

func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return UserFromContext(c.Request.Context())
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}
