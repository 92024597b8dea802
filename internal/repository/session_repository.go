package repository

import (
	"context"
	"database/sql"

	"github.com/cineteca/cineteca-api/internal/model"
)

// SessionRepo provides CRUD over movie sessions.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

const sessionCols = "id,movie_id,date,time,room,price_cents,seats_available,created_at,updated_at"

func scanSession(row interface{ Scan(...any) error }) (model.MovieSession, error) {
	var s model.MovieSession
	err := row.Scan(&s.ID, &s.MovieID, &s.Date, &s.Time, &s.Room, &s.PriceCents, &s.SeatsAvailable, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// GetByID fetches a single session.
func (r *SessionRepo) GetByID(ctx context.Context, id uint64) (model.MovieSession, error) {
	s, err := scanSession(r.DB.QueryRowContext(ctx,
		"SELECT "+sessionCols+" FROM sessions WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return s, ErrSessionNotFound
	}
	return s, err
}

// ListByMovie returns a movie's sessions ordered by screening time.
func (r *SessionRepo) ListByMovie(ctx context.Context, movieID uint64) ([]model.MovieSession, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+sessionCols+" FROM sessions WHERE movie_id=? ORDER BY time ASC", movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.MovieSession, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SessionWithMovie pairs a session with its movie title for admin listings.
type SessionWithMovie struct {
	model.MovieSession
	MovieTitle string `json:"movie_title"`
}

// ListAll returns every session with its movie title, ordered by date.
func (r *SessionRepo) ListAll(ctx context.Context) ([]SessionWithMovie, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT s.id,s.movie_id,s.date,s.time,s.room,s.price_cents,s.seats_available,s.created_at,s.updated_at,m.title
		 FROM sessions s JOIN movies m ON m.id = s.movie_id
		 ORDER BY s.date ASC, s.time ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]SessionWithMovie, 0)
	for rows.Next() {
		var s SessionWithMovie
		if err := rows.Scan(&s.ID, &s.MovieID, &s.Date, &s.Time, &s.Room, &s.PriceCents,
			&s.SeatsAvailable, &s.CreatedAt, &s.UpdatedAt, &s.MovieTitle); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Create inserts a session and returns the stored row.
func (r *SessionRepo) Create(ctx context.Context, s model.MovieSession) (model.MovieSession, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (movie_id,date,time,room,price_cents,seats_available) VALUES (?,?,?,?,?,?)",
		s.MovieID, s.Date, s.Time, s.Room, s.PriceCents, s.SeatsAvailable)
	if err != nil {
		return model.MovieSession{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.MovieSession{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// Update overwrites the writable columns and returns the row after the write.
func (r *SessionRepo) Update(ctx context.Context, id uint64, s model.MovieSession) (model.MovieSession, error) {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET movie_id=?,date=?,time=?,room=?,price_cents=?,seats_available=?,updated_at=UTC_TIMESTAMP() WHERE id=?",
		s.MovieID, s.Date, s.Time, s.Room, s.PriceCents, s.SeatsAvailable, id)
	if err != nil {
		return model.MovieSession{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a session.
func (r *SessionRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}
