package controllers

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/princinho/storefront/dto"
	"github.com/princinho/storefront/middleware"
	"github.com/princinho/storefront/models"
	"github.com/princinho/storefront/utils"
)

const avatarField = "file"

const forgotPasswordMessage = "If an account exists for that email, a password reset link has been sent"

// POST /api/v1/register
func (a *App) Register() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var body dto.RegisterDTO
		if err := c.ShouldBind(&body); err != nil {
			respondError(c, http.StatusBadRequest, "Name, email, and password are required")
			return
		}

		user := &models.User{
			Name:  utils.NormalizeName(body.Name),
			Email: utils.NormalizeEmail(body.Email),
			Role:  models.RoleUser,
		}
		if err := user.SetPassword(body.Password, a.BcryptCost); err != nil {
			a.passwordError(c, "hash password", err)
			return
		}

		if fh, err := c.FormFile(avatarField); err == nil {
			avatar, ok := a.uploadAvatar(c, user.Name, fh)
			if !ok {
				return
			}
			user.Avatar = avatar
		}

		if err := a.Users.Save(ctx, user); err != nil {
			a.Avatars.Remove(ctx, user.Avatar)
			if errors.Is(err, models.ErrDuplicateKey) {
				respondError(c, http.StatusBadRequest, "Email already exists")
				return
			}
			a.internalError(c, "save user", err)
			return
		}

		pair, ok := a.startSession(c, user)
		if !ok {
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"success":     true,
			"user":        user.Public(),
			"accessToken": pair.AccessToken,
		})
	}
}

// POST /api/v1/login
func (a *App) Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.LoginDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, "Please Enter Email & Password")
			return
		}

		user, err := a.Users.FindByEmail(c.Request.Context(), body.Email)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				respondError(c, http.StatusUnauthorized, "Invalid email or password")
				return
			}
			a.internalError(c, "find user", err)
			return
		}
		if !user.CheckPassword(body.Password) {
			respondError(c, http.StatusUnauthorized, "Invalid email or password")
			return
		}

		pair, ok := a.startSession(c, user)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"user":        user.Public(),
			"accessToken": pair.AccessToken,
		})
	}
}

// GET /api/v1/logout
func (a *App) Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		a.Cookies.ClearSessionCookies(c.Writer)
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged Out"})
	}
}

// GET /api/v1/refresh-token
func (a *App) RefreshToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		refresh, _ := c.Cookie(utils.RefreshCookieName)

		res := a.Auth.Refresh(c.Request.Context(), refresh)
		if res.Outcome == middleware.Rejected {
			status, message := middleware.RejectionResponse(res.Reason)
			if status == http.StatusInternalServerError {
				a.Logger.Error("refresh failed", slog.Any("error", res.Reason))
			}
			respondError(c, status, message)
			return
		}

		a.Cookies.SetSessionCookies(c.Writer, res.Tokens)
		c.JSON(http.StatusOK, gin.H{"success": true, "accessToken": res.Tokens.AccessToken})
	}
}

// POST /api/v1/password/forgot
func (a *App) ForgotPassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var body dto.ForgotPasswordDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, "Please enter a valid email")
			return
		}

		user, err := a.Users.FindByEmail(ctx, body.Email)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				c.JSON(http.StatusOK, gin.H{"success": true, "message": forgotPasswordMessage})
				return
			}
			a.internalError(c, "find user", err)
			return
		}

		token, err := a.Resets.Issue(ctx, user)
		if err != nil {
			a.internalError(c, "issue reset token", err)
			return
		}

		resetURL := strings.TrimRight(a.ResetURLBase, "/") + "/password/reset/" + token
		if err := a.Mailer.Send(ctx, utils.PasswordResetEmail(user.Email, resetURL)); err != nil {
			if clearErr := a.Resets.Clear(ctx, user); clearErr != nil {
				a.Logger.Error("clear reset token", slog.Any("error", clearErr))
			}
			a.internalError(c, "send reset email", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": forgotPasswordMessage})
	}
}

// PUT /api/v1/password/reset/:token
func (a *App) ResetPassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.ResetPasswordDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, "Please provide both passwords")
			return
		}
		if body.Password != body.ConfirmPassword {
			respondError(c, http.StatusBadRequest, "Passwords do not match")
			return
		}

		if _, err := a.Resets.Consume(c.Request.Context(), c.Param("token"), body.Password); err != nil {
			if errors.Is(err, utils.ErrResetTokenInvalid) {
				respondError(c, http.StatusBadRequest, "Reset Password Token is invalid or has expired")
				return
			}
			a.passwordError(c, "consume reset token", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password has been reset successfully"})
	}
}

// PUT /api/v1/password/update
func (a *App) UpdatePassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "User info missing")
			return
		}

		var body dto.UpdatePasswordDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, "Please provide old, new and confirm password")
			return
		}
		if !user.CheckPassword(body.OldPassword) {
			respondError(c, http.StatusBadRequest, "Old password is incorrect")
			return
		}
		if body.NewPassword != body.ConfirmPassword {
			respondError(c, http.StatusBadRequest, "Passwords do not match")
			return
		}

		if err := user.SetPassword(body.NewPassword, a.BcryptCost); err != nil {
			a.passwordError(c, "hash password", err)
			return
		}
		user.ClearResetToken()
		if err := a.Users.Save(c.Request.Context(), user); err != nil {
			a.internalError(c, "save password", err)
			return
		}

		pair, ok := a.startSession(c, user)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"user":        user.Public(),
			"accessToken": pair.AccessToken,
		})
	}
}

// uploadAvatar writes the error response itself when it returns false.
func (a *App) uploadAvatar(c *gin.Context, ownerName string, fh *multipart.FileHeader) (*models.Avatar, bool) {
	avatar, err := a.Avatars.Upload(c.Request.Context(), ownerName, fh)
	if err == nil {
		return avatar, true
	}
	if errors.Is(err, utils.ErrUploadsDisabled) {
		respondError(c, http.StatusBadRequest, "File uploads are not enabled")
		return nil, false
	}
	var validation *utils.FileValidationError
	if errors.As(err, &validation) {
		respondError(c, http.StatusBadRequest, validation.Error())
		return nil, false
	}
	a.internalError(c, "upload avatar", err)
	return nil, false
}
