package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/princinho/storefront/models"
	"github.com/princinho/storefront/utils"
)

// Rejection reasons reported by Authenticate.
var (
	ErrNoCredentials       = errors.New("no credentials")
	ErrInvalidToken        = errors.New("invalid access token")
	ErrSessionExpired      = errors.New("session expired")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrIdentityNotFound    = errors.New("identity not found")
)

var rejectionMessages = []struct {
	reason  error
	message string
}{
	{ErrNoCredentials, "Please login to access this resource"},
	{ErrInvalidToken, "Invalid token, please login again"},
	{ErrSessionExpired, "Token expired, please login again"},
	{ErrInvalidRefreshToken, "Invalid refresh token, please login again"},
	{ErrIdentityNotFound, "User not found"},
}

// UserFinder resolves the subject of a verified token.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type Outcome int

const (
	Rejected Outcome = iota
	Authenticated
	AuthenticatedWithRenewal
)

func (o Outcome) String() string {
	switch o {
	case Authenticated:
		return "authenticated"
	case AuthenticatedWithRenewal:
		return "renewed"
	default:
		return "rejected"
	}
}

type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// AuthResult is the outcome of one authentication attempt. User is set unless
// Rejected, Tokens only on AuthenticatedWithRenewal, Reason only on Rejected.
type AuthResult struct {
	Outcome Outcome
	User    *models.User
	Tokens  *utils.TokenPair
	Reason  error
}

func rejected(reason error) AuthResult {
	return AuthResult{Outcome: Rejected, Reason: reason}
}

type Authenticator struct {
	users  UserFinder
	tokens *utils.TokenIssuer
	logger *slog.Logger
}

func NewAuthenticator(users UserFinder, tokens *utils.TokenIssuer, logger *slog.Logger) *Authenticator {
	return &Authenticator{users: users, tokens: tokens, logger: logger}
}

// Authenticate verifies the access token and falls back to the refresh token
// when the access token is expired or carries a bad signature.
func (a *Authenticator) Authenticate(ctx context.Context, creds Credentials) AuthResult {
	if creds.AccessToken == "" {
		return rejected(ErrNoCredentials)
	}

	claims, err := a.tokens.VerifyAccess(creds.AccessToken)
	if err == nil {
		user, err := a.lookup(ctx, claims.UserID)
		if err != nil {
			return rejected(err)
		}
		return AuthResult{Outcome: Authenticated, User: user}
	}

	if !errors.Is(err, utils.ErrTokenExpired) && !errors.Is(err, utils.ErrTokenSignature) {
		return rejected(fmt.Errorf("%w: %v", ErrInvalidToken, err))
	}
	return a.renew(ctx, creds.RefreshToken)
}

// Refresh exchanges a refresh token for a new pair without an access token.
func (a *Authenticator) Refresh(ctx context.Context, refreshToken string) AuthResult {
	return a.renew(ctx, refreshToken)
}

func (a *Authenticator) renew(ctx context.Context, refreshToken string) AuthResult {
	if refreshToken == "" {
		return rejected(ErrSessionExpired)
	}

	claims, err := a.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return rejected(fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err))
	}

	user, err := a.lookup(ctx, claims.UserID)
	if err != nil {
		return rejected(err)
	}

	pair, err := a.tokens.Renew(user, claims.SessionStart())
	if err != nil {
		if errors.Is(err, utils.ErrSessionLifetimeExceeded) {
			return rejected(fmt.Errorf("%w: %v", ErrSessionExpired, err))
		}
		return rejected(err)
	}

	a.logger.Debug("session renewed", slog.String("user_id", claims.UserID))
	return AuthResult{Outcome: AuthenticatedWithRenewal, User: user, Tokens: pair}
}

func (a *Authenticator) lookup(ctx context.Context, id string) (*models.User, error) {
	user, err := a.users.FindByID(ctx, id)
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrInvalidUserID):
		return nil, ErrIdentityNotFound
	default:
		return nil, fmt.Errorf("%w: %v", models.ErrStoreFailure, err)
	}
}

// CredentialsFromRequest takes the access token from a Bearer header, else
// from the access cookie. The refresh token only travels as a cookie.
func CredentialsFromRequest(r *http.Request) Credentials {
	var creds Credentials

	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		creds.AccessToken = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if creds.AccessToken == "" {
		if c, err := r.Cookie(utils.AccessCookieName); err == nil {
			creds.AccessToken = c.Value
		}
	}
	if c, err := r.Cookie(utils.RefreshCookieName); err == nil {
		creds.RefreshToken = c.Value
	}
	return creds
}

// RequireAuth rejects requests without a valid session. On renewal the new
// tokens are written as cookies before the handler runs.
func RequireAuth(a *Authenticator, cookies utils.CookiePolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := a.Authenticate(c.Request.Context(), CredentialsFromRequest(c.Request))

		switch res.Outcome {
		case Authenticated:
		case AuthenticatedWithRenewal:
			cookies.SetSessionCookies(c.Writer, res.Tokens)
		default:
			status, message := RejectionResponse(res.Reason)
			if status == http.StatusInternalServerError {
				a.logger.Error("authentication failed", slog.Any("error", res.Reason))
			} else {
				a.logger.Debug("request rejected", slog.String("path", c.FullPath()), slog.Any("reason", res.Reason))
			}
			c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
			return
		}

		SetCurrentUser(c, res.User)
		c.Next()
	}
}

// RejectionResponse maps a rejection reason to the status and client message.
func RejectionResponse(reason error) (int, string) {
	for _, m := range rejectionMessages {
		if errors.Is(reason, m.reason) {
			return http.StatusUnauthorized, m.message
		}
	}
	return http.StatusInternalServerError, "Internal Server Error"
}
