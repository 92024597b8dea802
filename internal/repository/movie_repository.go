package repository

import (
	"context"
	"database/sql"

	"github.com/cineteca/cineteca-api/internal/model"
)

// MovieRepo provides CRUD over the locally published movies.  Discovery
// data (now playing, details) comes from the external catalog; these rows
// exist so the admin console can curate what the storefront sells.
type MovieRepo struct{ DB *sql.DB }

func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{DB: db} }

const movieCols = "id,catalog_id,title,overview,poster_path,backdrop_path,release_date,vote_average,runtime_min,is_active,created_at,updated_at"

func scanMovie(row interface{ Scan(...any) error }) (model.Movie, error) {
	var m model.Movie
	err := row.Scan(&m.ID, &m.CatalogID, &m.Title, &m.Overview, &m.PosterPath, &m.BackdropPath,
		&m.ReleaseDate, &m.VoteAverage, &m.RuntimeMin, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// ListAll returns all movies ordered by creation time descending.
func (r *MovieRepo) ListAll(ctx context.Context) ([]model.Movie, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+movieCols+" FROM movies ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Movie, 0)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetByID fetches a single movie.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (model.Movie, error) {
	m, err := scanMovie(r.DB.QueryRowContext(ctx,
		"SELECT "+movieCols+" FROM movies WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return m, ErrMovieNotFound
	}
	return m, err
}

// Create inserts a movie and returns the stored row.
func (r *MovieRepo) Create(ctx context.Context, m model.Movie) (model.Movie, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO movies (catalog_id,title,overview,poster_path,backdrop_path,release_date,vote_average,runtime_min,is_active)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		m.CatalogID, m.Title, m.Overview, m.PosterPath, m.BackdropPath, m.ReleaseDate, m.VoteAverage, m.RuntimeMin, m.IsActive)
	if err != nil {
		return model.Movie{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Movie{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// Update overwrites the writable columns and returns the row after the write.
func (r *MovieRepo) Update(ctx context.Context, id uint64, m model.Movie) (model.Movie, error) {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE movies SET catalog_id=?,title=?,overview=?,poster_path=?,backdrop_path=?,release_date=?,vote_average=?,runtime_min=?,is_active=?,updated_at=UTC_TIMESTAMP()
		 WHERE id=?`,
		m.CatalogID, m.Title, m.Overview, m.PosterPath, m.BackdropPath, m.ReleaseDate, m.VoteAverage, m.RuntimeMin, m.IsActive, id)
	if err != nil {
		return model.Movie{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a movie.  Sessions cascade at the schema level.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM movies WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMovieNotFound
	}
	return nil
}
