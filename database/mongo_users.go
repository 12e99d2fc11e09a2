package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/princinho/storefront/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const UsersCollection = "users"

type MongoUserStore struct {
	col *mongo.Collection
	now func() time.Time
}

func NewMongoUserStore(col *mongo.Collection) *MongoUserStore {
	return &MongoUserStore{col: col, now: func() time.Time { return time.Now().UTC() }}
}

// EnsureIndexes creates the unique email index and the reset hash lookup index.
func (s *MongoUserStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "resetPasswordToken", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

func (s *MongoUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidUserID, id)
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": normalizeEmail(email)})
}

func (s *MongoUserStore) FindByResetHash(ctx context.Context, hash string) (*models.User, error) {
	if hash == "" {
		return nil, models.ErrNotFound
	}
	return s.findOne(ctx, bson.M{"resetPasswordToken": hash})
}

func (s *MongoUserStore) Save(ctx context.Context, user *models.User) error {
	now := s.now()
	user.Email = normalizeEmail(user.Email)
	user.UpdatedAt = now

	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
		user.CreatedAt = now
		if _, err := s.col.InsertOne(ctx, user); err != nil {
			user.ID = bson.NilObjectID
			if IsDuplicateKey(err) {
				return models.ErrDuplicateKey
			}
			return fmt.Errorf("insert user: %w", err)
		}
		return nil
	}

	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		if IsDuplicateKey(err) {
			return models.ErrDuplicateKey
		}
		return fmt.Errorf("replace user: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *MongoUserStore) List(ctx context.Context) ([]models.User, error) {
	cursor, err := s.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	users := make([]models.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (s *MongoUserStore) Delete(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %q", models.ErrInvalidUserID, id)
	}
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// InsertIfAbsent upserts on email with $setOnInsert so an existing account is left untouched.
func (s *MongoUserStore) InsertIfAbsent(ctx context.Context, user *models.User) (bool, error) {
	now := s.now()
	user.Email = normalizeEmail(user.Email)

	filter := bson.M{"email": user.Email}
	update := bson.M{
		"$setOnInsert": bson.M{
			"name":      user.Name,
			"email":     user.Email,
			"password":  user.PasswordHash,
			"role":      user.Role,
			"createdAt": now,
			"updatedAt": now,
		},
	}

	res, err := s.col.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("upsert user: %w", err)
	}
	if res.UpsertedCount == 1 {
		if oid, ok := res.UpsertedID.(bson.ObjectID); ok {
			user.ID = oid
		}
		user.CreatedAt, user.UpdatedAt = now, now
		return true, nil
	}
	return false, nil
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := s.col.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// IsDuplicateKey reports whether err is a unique index violation.
func IsDuplicateKey(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 || e.Code == 11001 {
				return true
			}
		}
	}

	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		for _, e := range bwe.WriteErrors {
			if e.Code == 11000 || e.Code == 11001 {
				return true
			}
		}
	}

	return strings.Contains(err.Error(), "E11000 duplicate key error")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
