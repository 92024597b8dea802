package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/cineteca/cineteca-api/internal/utils"
)

// User mirrors the 'users' table: the bare authentication identity.  The
// application-level record lives in 'profiles' and is created by a
// database trigger when a users row is inserted, never by this repo.
type User struct {
	ID               uint64
	Email            string
	PasswordHash     string
	EmailConfirmedAt *time.Time
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns its ID.  The signup metadata
// (full name, tax id) is passed through to the trigger via the
// pending_metadata columns so the profiles row is seeded correctly.
func (r *UserRepo) Create(ctx context.Context, email, password, fullName, cpf string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, pending_name, pending_cpf) VALUES (?,?,?,?)",
		email, hash, fullName, cpf)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,email_confirmed_at,is_active,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.EmailConfirmedAt, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (User, error) {
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,email_confirmed_at,is_active,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.EmailConfirmedAt, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
