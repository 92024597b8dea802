package repository

import (
	"context"
	"database/sql"

	"github.com/cineteca/cineteca-api/internal/model"
)

// TicketRepo writes tickets on purchase and serves the read-only history
// views.  The display code carries no uniqueness guarantee; the primary
// key does.
type TicketRepo struct{ DB *sql.DB }

func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{DB: db} }

const ticketCols = "id,code,user_id,session_id,price_cents,status,payment_ref,created_at"

func scanTicket(row interface{ Scan(...any) error }) (model.Ticket, error) {
	var t model.Ticket
	err := row.Scan(&t.ID, &t.Code, &t.UserID, &t.SessionID, &t.PriceCents, &t.Status, &t.PaymentRef, &t.CreatedAt)
	return t, err
}

// Create inserts a ticket and returns the stored row.
func (r *TicketRepo) Create(ctx context.Context, t model.Ticket) (model.Ticket, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO tickets (code,user_id,session_id,price_cents,status,payment_ref) VALUES (?,?,?,?,?,?)",
		t.Code, t.UserID, t.SessionID, t.PriceCents, t.Status, t.PaymentRef)
	if err != nil {
		return model.Ticket{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Ticket{}, err
	}
	t2, err := scanTicket(r.DB.QueryRowContext(ctx,
		"SELECT "+ticketCols+" FROM tickets WHERE id=? LIMIT 1", id))
	return t2, err
}

// TicketDetail joins a ticket with its session, movie and seat labels for
// the history view.
type TicketDetail struct {
	model.Ticket
	SessionDate string   `json:"session_date"`
	SessionTime string   `json:"session_time"`
	Room        string   `json:"room"`
	MovieTitle  string   `json:"movie_title"`
	PosterPath  string   `json:"poster_path"`
	Seats       []string `json:"seats"`
}

func (r *TicketRepo) queryDetails(ctx context.Context, where string, args ...any) ([]TicketDetail, error) {
	q := `SELECT t.id,t.code,t.user_id,t.session_id,t.price_cents,t.status,t.payment_ref,t.created_at,
	             s.date,s.time,s.room,m.title,m.poster_path
	      FROM tickets t
	      JOIN sessions s ON s.id = t.session_id
	      JOIN movies m ON m.id = s.movie_id ` + where + " ORDER BY t.created_at DESC"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]TicketDetail, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var d TicketDetail
		if err := rows.Scan(&d.ID, &d.Code, &d.UserID, &d.SessionID, &d.PriceCents, &d.Status, &d.PaymentRef,
			&d.CreatedAt, &d.SessionDate, &d.SessionTime, &d.Room, &d.MovieTitle, &d.PosterPath); err != nil {
			return nil, err
		}
		d.Seats = []string{}
		index[d.ID] = len(out)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}
	// Seat labels for all tickets in one query.
	ids := make([]any, 0, len(out))
	for _, d := range out {
		ids = append(ids, d.ID)
	}
	srows, err := r.DB.QueryContext(ctx,
		"SELECT ticket_id,row_label,seat_number FROM seats WHERE ticket_id IN ("+placeholders(len(ids))+") ORDER BY ticket_id,row_label,seat_number",
		ids...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var tid uint64
		var seat model.Seat
		if err := srows.Scan(&tid, &seat.RowLabel, &seat.Number); err != nil {
			return nil, err
		}
		if i, ok := index[tid]; ok {
			out[i].Seats = append(out[i].Seats, seat.Label())
		}
	}
	return out, srows.Err()
}

// ListByUser returns the user's purchase history, newest first.
func (r *TicketRepo) ListByUser(ctx context.Context, userID uint64) ([]TicketDetail, error) {
	return r.queryDetails(ctx, "WHERE t.user_id=?", userID)
}

// ListAll returns every ticket for the admin console.
func (r *TicketRepo) ListAll(ctx context.Context) ([]TicketDetail, error) {
	return r.queryDetails(ctx, "")
}

// GetByCode fetches one ticket by its display code.  When duplicate codes
// exist the newest wins; the code is a convenience lookup, not a key.
func (r *TicketRepo) GetByCode(ctx context.Context, code string) (TicketDetail, error) {
	ds, err := r.queryDetails(ctx, "WHERE t.code=?", code)
	if err != nil {
		return TicketDetail{}, err
	}
	if len(ds) == 0 {
		return TicketDetail{}, ErrTicketNotFound
	}
	return ds[0], nil
}
