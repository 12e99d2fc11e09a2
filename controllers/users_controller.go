package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/princinho/storefront/dto"
	"github.com/princinho/storefront/middleware"
	"github.com/princinho/storefront/models"
	"github.com/princinho/storefront/utils"
)

// GET /api/v1/me
func (a *App) Me() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "User info missing")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "user": user.Public()})
	}
}

// PUT /api/v1/me/update
func (a *App) UpdateProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		user, ok := middleware.CurrentUser(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "User info missing")
			return
		}

		var body dto.UpdateProfileDTO
		if err := c.ShouldBind(&body); err != nil {
			respondError(c, http.StatusBadRequest, "Please enter a valid name and email")
			return
		}
		if name := utils.NormalizeName(body.Name); name != "" {
			user.Name = name
		}
		if email := strings.TrimSpace(body.Email); email != "" {
			user.Email = utils.NormalizeEmail(email)
		}

		previous := user.Avatar
		if fh, err := c.FormFile(avatarField); err == nil {
			avatar, ok := a.uploadAvatar(c, user.Name, fh)
			if !ok {
				return
			}
			user.Avatar = avatar
		}

		if err := a.Users.Save(ctx, user); err != nil {
			if user.Avatar != previous {
				a.Avatars.Remove(ctx, user.Avatar)
			}
			if errors.Is(err, models.ErrDuplicateKey) {
				respondError(c, http.StatusBadRequest, "Email already exists")
				return
			}
			a.internalError(c, "save profile", err)
			return
		}
		if user.Avatar != previous {
			a.Avatars.Remove(ctx, previous)
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "user": user.Public()})
	}
}

// GET /api/v1/admin/users
func (a *App) ListUsers() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := a.Users.List(c.Request.Context())
		if err != nil {
			a.internalError(c, "list users", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "users": publicUsers(users)})
	}
}

// GET /api/v1/admin/user/:id
func (a *App) GetUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		user, err := a.Users.FindByID(c.Request.Context(), id)
		if err != nil {
			a.userLookupError(c, id, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "user": user.Public()})
	}
}

// PUT /api/v1/admin/user/:id
func (a *App) UpdateUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")

		var body dto.AdminUpdateUserDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		user, err := a.Users.FindByID(ctx, id)
		if err != nil {
			a.userLookupError(c, id, err)
			return
		}

		if body.Name != nil {
			user.Name = utils.NormalizeName(*body.Name)
		}
		if body.Email != nil {
			user.Email = utils.NormalizeEmail(*body.Email)
		}
		if body.Role != nil {
			role, err := models.ParseRole(*body.Role)
			if err != nil {
				respondError(c, http.StatusBadRequest, "Invalid role: "+*body.Role)
				return
			}
			user.Role = role
		}

		if err := a.Users.Save(ctx, user); err != nil {
			if errors.Is(err, models.ErrDuplicateKey) {
				respondError(c, http.StatusBadRequest, "Email already exists")
				return
			}
			a.userLookupError(c, id, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "user": user.Public()})
	}
}

// DELETE /api/v1/admin/user/:id
func (a *App) DeleteUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")

		user, err := a.Users.FindByID(ctx, id)
		if err != nil {
			a.userLookupError(c, id, err)
			return
		}
		if err := a.Users.Delete(ctx, id); err != nil {
			a.userLookupError(c, id, err)
			return
		}
		a.Avatars.Remove(ctx, user.Avatar)

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "User deleted successfully"})
	}
}
