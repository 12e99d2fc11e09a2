// Package database holds the credential store: the persistence boundary for user
// accounts. MongoDB is the primary backend; PostgreSQL and an in-memory store
// implement the same interface.
package database

import (
	"context"

	"github.com/princinho/storefront/models"
)

// UserStore is the credential store consumed by the session and reset components.
// Lookups return models.ErrNotFound when no document matches.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByResetHash matches on the stored reset hash only; expiry is checked by the caller.
	FindByResetHash(ctx context.Context, hash string) (*models.User, error)
	// Save inserts a user with a zero ID and replaces an existing one otherwise.
	Save(ctx context.Context, user *models.User) error
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id string) error
	// InsertIfAbsent creates the user unless the email is taken and reports whether it did.
	InsertIfAbsent(ctx context.Context, user *models.User) (bool, error)
}
