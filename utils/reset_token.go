package utils

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/princinho/storefront/config"
	"github.com/princinho/storefront/models"
)

const resetTokenBytes = 20

var ErrResetTokenInvalid = errors.New("reset password token is invalid or has been expired")

// ResetStore is the slice of the user store the reset flow needs.
type ResetStore interface {
	FindByResetHash(ctx context.Context, hash string) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
}

// ResetTokenManager issues single-use password reset tokens. The plaintext
// token only ever leaves through the return value of Issue; the store keeps
// its sha256.
type ResetTokenManager struct {
	store ResetStore
	ttl   time.Duration
	cost  int
	now   func() time.Time
}

func NewResetTokenManager(store ResetStore, cfg config.ResetConfig, bcryptCost int) *ResetTokenManager {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = config.DefaultResetTTL
	}
	return &ResetTokenManager{
		store: store,
		ttl:   ttl,
		cost:  bcryptCost,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Issue stores a fresh token hash on user, replacing any earlier one, and
// returns the plaintext token.
func (m *ResetTokenManager) Issue(ctx context.Context, user *models.User) (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	token := hex.EncodeToString(buf)

	user.SetResetToken(HashResetToken(token), m.now().Add(m.ttl))
	if err := m.store.Save(ctx, user); err != nil {
		user.ClearResetToken()
		return "", fmt.Errorf("%w: save reset token: %v", models.ErrStoreFailure, err)
	}
	return token, nil
}

// Clear drops any pending reset token, e.g. when the reset mail could not be sent.
func (m *ResetTokenManager) Clear(ctx context.Context, user *models.User) error {
	user.ClearResetToken()
	if err := m.store.Save(ctx, user); err != nil {
		return fmt.Errorf("%w: clear reset token: %v", models.ErrStoreFailure, err)
	}
	return nil
}

// Consume sets newPassword on the user owning token and clears the token.
// Unknown and expired tokens are indistinguishable to the caller.
func (m *ResetTokenManager) Consume(ctx context.Context, token, newPassword string) (*models.User, error) {
	if token == "" {
		return nil, ErrResetTokenInvalid
	}
	user, err := m.store.FindByResetHash(ctx, HashResetToken(token))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrResetTokenInvalid
		}
		return nil, fmt.Errorf("%w: find reset token: %v", models.ErrStoreFailure, err)
	}
	if user.ResetPasswordExpire == nil || !m.now().Before(*user.ResetPasswordExpire) {
		return nil, ErrResetTokenInvalid
	}

	if err := user.SetPassword(newPassword, m.cost); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.ClearResetToken()
	if err := m.store.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("%w: save password: %v", models.ErrStoreFailure, err)
	}
	return user, nil
}
