package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cineteca/cineteca-api/internal/model"
)

// ProfileRepo reads and updates the application-level user records.  Rows
// are inserted by a database trigger on users; the API only ever selects
// and updates them.
type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

const profileCols = "id,name,email,cpf,birth_date,phone,role,created_at,updated_at"

func scanProfile(row interface{ Scan(...any) error }) (model.Profile, error) {
	var p model.Profile
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.CPF, &p.BirthDate, &p.Phone, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// GetByID fetches a profile by id.
func (r *ProfileRepo) GetByID(ctx context.Context, id uint64) (model.Profile, error) {
	p, err := scanProfile(r.DB.QueryRowContext(ctx,
		"SELECT "+profileCols+" FROM profiles WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return p, ErrProfileNotFound
	}
	return p, err
}

// GetByEmail fetches a profile by normalized email.  The trigger that
// creates profiles can lag the users insert, so id lookups may race right
// after registration; email is the reliable key and is the primary lookup
// strategy on login.
func (r *ProfileRepo) GetByEmail(ctx context.Context, email string) (model.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	p, err := scanProfile(r.DB.QueryRowContext(ctx,
		"SELECT "+profileCols+" FROM profiles WHERE email=? LIMIT 1", email))
	if err == sql.ErrNoRows {
		return p, ErrProfileNotFound
	}
	return p, err
}

// ProfileUpdate carries the writable profile fields.  Nil pointers leave
// the column untouched.
type ProfileUpdate struct {
	Name      *string
	CPF       *string
	BirthDate *string
	Phone     *string
}

// Update applies the non-nil fields and returns the full row after the
// write so callers can replace their cached copy wholesale.
func (r *ProfileRepo) Update(ctx context.Context, id uint64, upd ProfileUpdate) (model.Profile, error) {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	if upd.Name != nil {
		sets = append(sets, "name=?")
		args = append(args, *upd.Name)
	}
	if upd.CPF != nil {
		sets = append(sets, "cpf=?")
		args = append(args, *upd.CPF)
	}
	if upd.BirthDate != nil {
		sets = append(sets, "birth_date=?")
		args = append(args, *upd.BirthDate)
	}
	if upd.Phone != nil {
		sets = append(sets, "phone=?")
		args = append(args, *upd.Phone)
	}
	if len(sets) > 0 {
		args = append(args, id)
		q := "UPDATE profiles SET " + strings.Join(sets, ",") + ", updated_at=UTC_TIMESTAMP() WHERE id=?"
		if _, err := r.DB.ExecContext(ctx, q, args...); err != nil {
			return model.Profile{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// ListAll returns every profile ordered by creation time, newest first.
func (r *ProfileRepo) ListAll(ctx context.Context) ([]model.Profile, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+profileCols+" FROM profiles ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
