package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/princinho/storefront/config"
	"github.com/princinho/storefront/models"
)

type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenSignature = errors.New("token signature invalid")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenWrongKind = errors.New("token type mismatch")

	ErrSessionLifetimeExceeded = errors.New("session lifetime exceeded")
)

type SessionClaims struct {
	UserID   string      `json:"id"`
	Role     models.Role `json:"role"`
	Kind     TokenKind   `json:"typ"`
	AuthTime int64       `json:"auth_time,omitempty"`
	jwt.RegisteredClaims
}

// SessionStart is when the user originally logged in. Tokens minted without
// auth_time fall back to their issue time.
func (c *SessionClaims) SessionStart() time.Time {
	if c.AuthTime > 0 {
		return time.Unix(c.AuthTime, 0)
	}
	if c.IssuedAt != nil {
		return c.IssuedAt.Time
	}
	return time.Time{}
}

type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// TokenIssuer mints and verifies session tokens. Access and refresh tokens are
// signed with separate HS256 secrets.
type TokenIssuer struct {
	cfg config.TokenConfig
	now func() time.Time
}

func NewTokenIssuer(cfg config.TokenConfig) *TokenIssuer {
	return &TokenIssuer{cfg: cfg, now: time.Now}
}

// WithClock returns a copy of the issuer reading time from now.
func (i *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	cp := *i
	cp.now = now
	return &cp
}

// Issue starts a new session for user.
func (i *TokenIssuer) Issue(user *models.User) (*TokenPair, error) {
	now := i.now()
	return i.issueAt(user, now, now)
}

// Renew mints a fresh pair for a session that began at sessionStart.
func (i *TokenIssuer) Renew(user *models.User, sessionStart time.Time) (*TokenPair, error) {
	now := i.now()
	if sessionStart.IsZero() {
		sessionStart = now
	}
	if i.cfg.MaxSessionLifetime > 0 && !now.Before(sessionStart.Add(i.cfg.MaxSessionLifetime)) {
		return nil, ErrSessionLifetimeExceeded
	}
	return i.issueAt(user, now, sessionStart)
}

func (i *TokenIssuer) issueAt(user *models.User, now, sessionStart time.Time) (*TokenPair, error) {
	accessExp := now.Add(i.cfg.AccessTTL)
	refreshExp := now.Add(i.cfg.RefreshTTL)
	if i.cfg.MaxSessionLifetime > 0 {
		limit := sessionStart.Add(i.cfg.MaxSessionLifetime)
		if refreshExp.After(limit) {
			refreshExp = limit
		}
		if accessExp.After(limit) {
			accessExp = limit
		}
	}

	access, err := i.sign(AccessToken, i.cfg.AccessSecret, user, now, accessExp, sessionStart)
	if err != nil {
		return nil, err
	}
	refresh, err := i.sign(RefreshToken, i.cfg.RefreshSecret, user, now, refreshExp, sessionStart)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (i *TokenIssuer) sign(kind TokenKind, secret []byte, user *models.User, now, exp, sessionStart time.Time) (string, error) {
	claims := SessionClaims{
		UserID:   user.ID.Hex(),
		Role:     user.Role,
		Kind:     kind,
		AuthTime: sessionStart.Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

func (i *TokenIssuer) VerifyAccess(raw string) (*SessionClaims, error) {
	return i.verify(raw, i.cfg.AccessSecret, AccessToken)
}

func (i *TokenIssuer) VerifyRefresh(raw string) (*SessionClaims, error) {
	return i.verify(raw, i.cfg.RefreshSecret, RefreshToken)
}

func (i *TokenIssuer) verify(raw string, secret []byte, kind TokenKind) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, classifyJWTError(err)
	}
	if claims.Kind != kind {
		return nil, fmt.Errorf("%w: want %s, got %q", ErrTokenWrongKind, kind, claims.Kind)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenMalformed)
	}
	return claims, nil
}

func classifyJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrTokenSignature, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}
