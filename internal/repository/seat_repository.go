package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cineteca/cineteca-api/internal/model"
)

// SeatRepo reads and mutates a session's seat grid.  Reserve and Confirm
// are single unconditional IN-list updates: there is no version column and
// no guard against two users writing the same seat at once.  That gap is
// inherited from the hosted-service boundary this layer replaces and is
// deliberately not papered over here.
type SeatRepo struct{ DB *sql.DB }

func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{DB: db} }

// ListBySession returns a session's seats ordered by row then number.
func (r *SeatRepo) ListBySession(ctx context.Context, sessionID uint64) ([]model.Seat, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id,session_id,row_label,seat_number,status,reserved_by,reserved_at,ticket_id
		 FROM seats WHERE session_id=? ORDER BY row_label ASC, seat_number ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Seat, 0)
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.SessionID, &s.RowLabel, &s.Number, &s.Status,
			&s.ReservedBy, &s.ReservedAt, &s.TicketID); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// Reserve marks the given seats reserved for a user and stamps the time.
func (r *SeatRepo) Reserve(ctx context.Context, seatIDs []uint64, userID uint64) error {
	if len(seatIDs) == 0 {
		return nil
	}
	args := make([]any, 0, len(seatIDs)+1)
	args = append(args, userID)
	for _, id := range seatIDs {
		args = append(args, id)
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE seats SET status='reserved', reserved_by=?, reserved_at=UTC_TIMESTAMP() WHERE id IN ("+placeholders(len(seatIDs))+")",
		args...)
	return err
}

// Confirm marks the given seats sold and links them to a ticket.
func (r *SeatRepo) Confirm(ctx context.Context, seatIDs []uint64, ticketID uint64) error {
	if len(seatIDs) == 0 {
		return nil
	}
	args := make([]any, 0, len(seatIDs)+1)
	args = append(args, ticketID)
	for _, id := range seatIDs {
		args = append(args, id)
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE seats SET status='sold', ticket_id=? WHERE id IN ("+placeholders(len(seatIDs))+")",
		args...)
	return err
}

// LabelsByIDs resolves seat ids to human labels, ordered by row and number.
func (r *SeatRepo) LabelsByIDs(ctx context.Context, seatIDs []uint64) ([]string, error) {
	if len(seatIDs) == 0 {
		return []string{}, nil
	}
	args := make([]any, 0, len(seatIDs))
	for _, id := range seatIDs {
		args = append(args, id)
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT row_label, seat_number FROM seats WHERE id IN ("+placeholders(len(seatIDs))+") ORDER BY row_label, seat_number",
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	labels := make([]string, 0, len(seatIDs))
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.RowLabel, &s.Number); err != nil {
			return nil, err
		}
		labels = append(labels, s.Label())
	}
	return labels, rows.Err()
}
