package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, u *User) error {
	err := r.db.GetContext(ctx, u, createUserQuery, u.ID, u.Name, u.Email, u.PasswordHash, u.Role)
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

const createUserQuery = `
INSERT INTO users (id, name, email, password_hash, role, active, created_at)
VALUES ($1, $2, $3, $4, $5, true, now())
RETURNING *
`

// GetByEmail fetches a user including the password hash, for credential checks.
func (r *Repository) GetByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, getUserByEmailQuery, email)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

const getUserByEmailQuery = `SELECT * FROM users WHERE email = $1`

func (r *Repository) GetByID(ctx context.Context, id string) (User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, getUserByIDQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

const getUserByIDQuery = `SELECT * FROM users WHERE id = $1`

// CountNonAdmin counts customer and owner accounts. Used by the admin
// dashboard, which excludes admins from the user total.
func (r *Repository) CountNonAdmin(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, countNonAdminQuery)
	return n, err
}

const countNonAdminQuery = `SELECT count(*) FROM users WHERE role <> 'admin'`

func isUniqueViolation(err error) bool {
	// pgx surfaces postgres error 23505 for unique constraint violations.
	type sqlState interface{ SQLState() string }
	var st sqlState
	return errors.As(err, &st) && st.SQLState() == "23505"
}
