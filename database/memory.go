package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/princinho/storefront/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// MemoryUserStore keeps users in process memory. It backs STORE_DRIVER=memory
// for local runs and the handler tests.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[bson.ObjectID]models.User
	now   func() time.Time
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users: make(map[bson.ObjectID]models.User),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidUserID, id)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[oid]
	if !ok {
		return nil, models.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	email = normalizeEmail(email)
	return s.find(func(u models.User) bool { return u.Email == email })
}

func (s *MemoryUserStore) FindByResetHash(_ context.Context, hash string) (*models.User, error) {
	if hash == "" {
		return nil, models.ErrNotFound
	}
	return s.find(func(u models.User) bool { return u.ResetPasswordToken == hash })
}

func (s *MemoryUserStore) Save(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	user.Email = normalizeEmail(user.Email)
	for id, existing := range s.users {
		if existing.Email == user.Email && id != user.ID {
			return models.ErrDuplicateKey
		}
	}

	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
		user.CreatedAt = now
	} else if _, ok := s.users[user.ID]; !ok {
		return models.ErrNotFound
	}
	user.UpdatedAt = now
	s.users[user.ID] = *cloneUser(*user)
	return nil
}

func (s *MemoryUserStore) List(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryUserStore) Delete(_ context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %q", models.ErrInvalidUserID, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[oid]; !ok {
		return models.ErrNotFound
	}
	delete(s.users, oid)
	return nil
}

func (s *MemoryUserStore) InsertIfAbsent(ctx context.Context, user *models.User) (bool, error) {
	if _, err := s.FindByEmail(ctx, user.Email); err == nil {
		return false, nil
	}
	user.ID = bson.NilObjectID
	if err := s.Save(ctx, user); err != nil {
		if err == models.ErrDuplicateKey {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *MemoryUserStore) find(match func(models.User) bool) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, models.ErrNotFound
}

func cloneUser(u models.User) *models.User {
	c := u
	if u.Avatar != nil {
		a := *u.Avatar
		c.Avatar = &a
	}
	if u.ResetPasswordExpire != nil {
		t := *u.ResetPasswordExpire
		c.ResetPasswordExpire = &t
	}
	return &c
}
