package model

import "time"

// Ticket records a completed purchase of one or more seats in a session.
// Rows are written by the purchase path and read-only afterwards; the
// code printed on the ticket is a display token, uniqueness of the row is
// carried by the primary key.
//
// Fields:
//  ID         – primary key identifier.
//  Code       – human-presentable token (CNT + base-36 timestamp).
//  UserID     – purchaser.
//  SessionID  – session the ticket admits to.
//  PriceCents – total paid in cents.
//  Status     – "confirmed", "used" or "cancelled".
//  PaymentRef – external payment reference (nullable).
//  CreatedAt  – purchase timestamp.
type Ticket struct {
	ID         uint64    `json:"id"`          // tickets.id
	Code       string    `json:"code"`        // tickets.code
	UserID     uint64    `json:"user_id"`     // tickets.user_id
	SessionID  uint64    `json:"session_id"`  // tickets.session_id
	PriceCents uint32    `json:"price_cents"` // tickets.price_cents
	Status     string    `json:"status"`      // tickets.status
	PaymentRef *string   `json:"payment_ref"` // tickets.payment_ref (nullable)
	CreatedAt  time.Time `json:"created_at"`  // tickets.created_at
}

// Ticket status values.
const (
	TicketConfirmed = "confirmed"
	TicketUsed      = "used"
	TicketCancelled = "cancelled"
)
