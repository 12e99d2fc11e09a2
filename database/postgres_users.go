package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/princinho/storefront/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

//go:embed migrations/*.sql
var migrations embed.FS

const pqUniqueViolation = "23505"

const userColumns = `id, name, email, password, role, avatar_object, avatar_url,
	reset_password_token, reset_password_expire, created_at, updated_at`

// ConnectPostgres opens and pings a sqlx handle over lib/pq.
func ConnectPostgres(ctx context.Context, dsn string) (*sqlx.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("missing POSTGRES_DSN")
	}
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	return db, nil
}

// MigratePostgres applies the embedded goose migrations.
func MigratePostgres(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

type userRow struct {
	ID                  string         `db:"id"`
	Name                string         `db:"name"`
	Email               string         `db:"email"`
	Password            string         `db:"password"`
	Role                string         `db:"role"`
	AvatarObject        sql.NullString `db:"avatar_object"`
	AvatarURL           sql.NullString `db:"avatar_url"`
	ResetPasswordToken  sql.NullString `db:"reset_password_token"`
	ResetPasswordExpire sql.NullTime   `db:"reset_password_expire"`
	CreatedAt           time.Time      `db:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at"`
}

func rowFromUser(u *models.User) userRow {
	row := userRow{
		ID:                 u.ID.Hex(),
		Name:               u.Name,
		Email:              u.Email,
		Password:           u.PasswordHash,
		Role:               string(u.Role),
		ResetPasswordToken: sql.NullString{String: u.ResetPasswordToken, Valid: u.ResetPasswordToken != ""},
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
	if u.Avatar != nil {
		row.AvatarObject = sql.NullString{String: u.Avatar.ObjectName, Valid: true}
		row.AvatarURL = sql.NullString{String: u.Avatar.URL, Valid: true}
	}
	if u.ResetPasswordExpire != nil {
		row.ResetPasswordExpire = sql.NullTime{Time: *u.ResetPasswordExpire, Valid: true}
	}
	return row
}

func (r userRow) toUser() (*models.User, error) {
	oid, err := bson.ObjectIDFromHex(r.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidUserID, r.ID)
	}
	u := &models.User{
		ID:                 oid,
		Name:               r.Name,
		Email:              r.Email,
		PasswordHash:       r.Password,
		Role:               models.Role(r.Role),
		ResetPasswordToken: r.ResetPasswordToken.String,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
	if r.AvatarObject.Valid || r.AvatarURL.Valid {
		u.Avatar = &models.Avatar{ObjectName: r.AvatarObject.String, URL: r.AvatarURL.String}
	}
	if r.ResetPasswordExpire.Valid {
		t := r.ResetPasswordExpire.Time
		u.ResetPasswordExpire = &t
	}
	return u, nil
}

type PostgresUserStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewPostgresUserStore(db *sqlx.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (s *PostgresUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := bson.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidUserID, id)
	}
	return s.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *PostgresUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.get(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, normalizeEmail(email))
}

func (s *PostgresUserStore) FindByResetHash(ctx context.Context, hash string) (*models.User, error) {
	if hash == "" {
		return nil, models.ErrNotFound
	}
	return s.get(ctx, `SELECT `+userColumns+` FROM users WHERE reset_password_token = $1`, hash)
}

func (s *PostgresUserStore) Save(ctx context.Context, user *models.User) error {
	now := s.now()
	user.Email = normalizeEmail(user.Email)
	user.UpdatedAt = now

	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
		user.CreatedAt = now
		_, err := s.db.NamedExecContext(ctx, `INSERT INTO users (`+userColumns+`)
			VALUES (:id, :name, :email, :password, :role, :avatar_object, :avatar_url,
				:reset_password_token, :reset_password_expire, :created_at, :updated_at)`,
			rowFromUser(user))
		if err != nil {
			user.ID = bson.NilObjectID
			if isUniqueViolation(err) {
				return models.ErrDuplicateKey
			}
			return fmt.Errorf("insert user: %w", err)
		}
		return nil
	}

	res, err := s.db.NamedExecContext(ctx, `UPDATE users SET
			name = :name, email = :email, password = :password, role = :role,
			avatar_object = :avatar_object, avatar_url = :avatar_url,
			reset_password_token = :reset_password_token,
			reset_password_expire = :reset_password_expire,
			updated_at = :updated_at
		WHERE id = :id`, rowFromUser(user))
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateKey
		}
		return fmt.Errorf("update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *PostgresUserStore) List(ctx context.Context) ([]models.User, error) {
	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`); err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	users := make([]models.User, 0, len(rows))
	for _, row := range rows {
		u, err := row.toUser()
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, nil
}

func (s *PostgresUserStore) Delete(ctx context.Context, id string) error {
	if _, err := bson.ObjectIDFromHex(id); err != nil {
		return fmt.Errorf("%w: %q", models.ErrInvalidUserID, id)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *PostgresUserStore) InsertIfAbsent(ctx context.Context, user *models.User) (bool, error) {
	now := s.now()
	user.Email = normalizeEmail(user.Email)
	id := bson.NewObjectID()

	res, err := s.db.ExecContext(ctx, `INSERT INTO users (id, name, email, password, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (email) DO NOTHING`,
		id.Hex(), user.Name, user.Email, user.PasswordHash, string(user.Role), now)
	if err != nil {
		return false, fmt.Errorf("insert user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert user: %w", err)
	}
	if n == 0 {
		return false, nil
	}
	user.ID = id
	user.CreatedAt, user.UpdatedAt = now, now
	return true, nil
}

func (s *PostgresUserStore) get(ctx context.Context, query string, args ...any) (*models.User, error) {
	var row userRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return row.toUser()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
