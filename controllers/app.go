package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princinho/storefront/database"
	"github.com/princinho/storefront/middleware"
	"github.com/princinho/storefront/models"
	"github.com/princinho/storefront/utils"
)

// App carries the dependencies shared by the handlers.
type App struct {
	Users        database.UserStore
	Tokens       *utils.TokenIssuer
	Auth         *middleware.Authenticator
	Cookies      utils.CookiePolicy
	Resets       *utils.ResetTokenManager
	Mailer       utils.Mailer
	Avatars      *utils.AvatarUploader
	ResetURLBase string
	BcryptCost   int
	Logger       *slog.Logger
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// internalError logs err and answers with a generic 500.
func (a *App) internalError(c *gin.Context, msg string, err error) {
	a.Logger.Error(msg, slog.String("path", c.FullPath()), slog.Any("error", err))
	respondError(c, http.StatusInternalServerError, "Internal Server Error")
}

// passwordError answers for a failed SetPassword. Over-long passwords are the
// client's fault.
func (a *App) passwordError(c *gin.Context, msg string, err error) {
	if errors.Is(err, models.ErrPasswordTooLong) {
		respondError(c, http.StatusBadRequest, "Password must not exceed 72 bytes")
		return
	}
	a.internalError(c, msg, err)
}

// userLookupError answers for a failed FindByID on a path parameter.
func (a *App) userLookupError(c *gin.Context, id string, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidUserID):
		respondError(c, http.StatusBadRequest, "Invalid User ID")
	case errors.Is(err, models.ErrNotFound):
		respondError(c, http.StatusNotFound, "User does not exist with Id: "+id)
	default:
		a.internalError(c, "find user", err)
	}
}

// startSession issues a new token pair and sets it as cookies.
func (a *App) startSession(c *gin.Context, user *models.User) (*utils.TokenPair, bool) {
	pair, err := a.Tokens.Issue(user)
	if err != nil {
		a.internalError(c, "issue tokens", err)
		return nil, false
	}
	a.Cookies.SetSessionCookies(c.Writer, pair)
	return pair, true
}

func publicUsers(users []models.User) []models.PublicUser {
	out := make([]models.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out
}
