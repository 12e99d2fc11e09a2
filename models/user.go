package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"
)

type Avatar struct {
	ObjectName string `bson:"objectName" json:"public_id"`
	URL        string `bson:"url" json:"url"`
}

type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string        `bson:"name" json:"name"`
	Email        string        `bson:"email" json:"email"`
	PasswordHash string        `bson:"password" json:"-"` // never expose
	Role         Role          `bson:"role" json:"role"`
	Avatar       *Avatar       `bson:"file,omitempty" json:"file"`

	// Only the sha256 of the reset token is stored, never the token itself.
	ResetPasswordToken  string     `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpire *time.Time `bson:"resetPasswordExpire,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// MaxPasswordBytes is the most bcrypt will hash.
const MaxPasswordBytes = 72

// SetPassword replaces the stored hash. Every password mutation goes through here
// so a plaintext password is never persisted.
func (u *User) SetPassword(password string, cost int) error {
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

func (u *User) SetResetToken(hash string, expiresAt time.Time) {
	u.ResetPasswordToken = hash
	u.ResetPasswordExpire = &expiresAt
}

func (u *User) ClearResetToken() {
	u.ResetPasswordToken = ""
	u.ResetPasswordExpire = nil
}

// PublicUser is what the client sees of an account.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	File      *Avatar   `json:"file"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID.Hex(),
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		File:      u.Avatar,
	}
}
