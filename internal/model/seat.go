package model

import (
	"strconv"
	"time"
)

// Seat is one chair in a session's room grid.  Status transitions are
// single unconditional writes: free -> reserved on reserve, reserved ->
// sold on confirm.  No optimistic-concurrency check guards two buyers
// racing for the same seat; the write that lands last wins.
//
// Fields:
//  ID         – primary key identifier.
//  SessionID  – session this seat belongs to.
//  RowLabel   – letter designating the row.
//  Number     – seat number within the row.
//  Status     – "free", "reserved" or "sold".
//  ReservedBy – user holding the reservation (nullable).
//  ReservedAt – when the reservation was taken (nullable).
//  TicketID   – ticket that bought the seat (nullable).
type Seat struct {
	ID         uint64     `json:"id"`          // seats.id
	SessionID  uint64     `json:"session_id"`  // seats.session_id
	RowLabel   string     `json:"row"`         // seats.row_label
	Number     uint32     `json:"number"`      // seats.seat_number
	Status     string     `json:"status"`      // seats.status
	ReservedBy *uint64    `json:"reserved_by"` // seats.reserved_by (nullable)
	ReservedAt *time.Time `json:"reserved_at"` // seats.reserved_at (nullable)
	TicketID   *uint64    `json:"ticket_id"`   // seats.ticket_id (nullable)
}

// Seat status values.
const (
	SeatFree     = "free"
	SeatReserved = "reserved"
	SeatSold     = "sold"
)

// Label renders the human seat label, e.g. "C7".
func (s Seat) Label() string { return s.RowLabel + strconv.FormatUint(uint64(s.Number), 10) }
