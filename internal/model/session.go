package model

import "time"

// MovieSession is a scheduled screening of a movie in a room.  Prices are
// stored in integer cents; the half-price fare is derived, not stored.
//
// Fields:
//  ID              – primary key identifier.
//  MovieID         – movie being screened.
//  Date            – screening date (YYYY-MM-DD).
//  Time            – screening time (HH:MM).
//  Room            – room label (e.g. "Sala 3").
//  PriceCents      – full fare in cents.
//  SeatsAvailable  – remaining free seats, maintained by the seat writes.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type MovieSession struct {
	ID             uint64    `json:"id"`              // sessions.id
	MovieID        uint64    `json:"movie_id"`        // sessions.movie_id
	Date           string    `json:"date"`            // sessions.date
	Time           string    `json:"time"`            // sessions.time
	Room           string    `json:"room"`            // sessions.room
	PriceCents     uint32    `json:"price_cents"`     // sessions.price_cents
	SeatsAvailable uint32    `json:"seats_available"` // sessions.seats_available
	CreatedAt      time.Time `json:"created_at"`      // sessions.created_at
	UpdatedAt      time.Time `json:"updated_at"`      // sessions.updated_at
}

// HalfPriceCents returns the meia-entrada fare for the session.  Odd cent
// amounts round down, matching integer division.
func (s MovieSession) HalfPriceCents() uint32 { return s.PriceCents / 2 }
