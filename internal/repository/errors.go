package repository

import "errors"

// Sentinel errors shared by the repositories.  Handlers compare against
// these to choose HTTP status codes; everything else is a server fault.
var (
	ErrEmailExists     = errors.New("email already exists")
	ErrMovieNotFound   = errors.New("movie not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrProfileNotFound = errors.New("profile not found")
)
