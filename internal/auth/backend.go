// Package auth owns authentication and session state for the storefront.
// The Manager caches sessions and profiles and mediates every auth
// operation; the Backend interface is the surface of the hosted auth
// service it delegates to, so tests can swap in fakes.
package auth

import (
	"context"
	"errors"

	"github.com/cineteca/cineteca-api/internal/model"
	"github.com/cineteca/cineteca-api/internal/repository"
)

// Session is the authenticated identity/token pair held for the duration
// of a login.  The token is opaque to everything except the backend that
// issued it.
type Session struct {
	UserID uint64 `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"-"`
}

// EventKind tags auth-state-change notifications.
type EventKind string

const (
	EventSignedIn       EventKind = "signed_in"
	EventSignedOut      EventKind = "signed_out"
	EventTokenRefreshed EventKind = "token_refreshed"
)

// Event is an asynchronous auth-state change: a login elsewhere, a token
// refresh, or a logout elsewhere.  Session is nil for sign-outs.
type Event struct {
	Kind    EventKind
	UserID  uint64
	Session *Session
}

// SignUpMeta is the registration metadata forwarded to the backend.  The
// profile row itself is created by a backend-side trigger, not by callers.
type SignUpMeta struct {
	FullName string
	CPF      string
}

// SignUpOutcome reports what the backend did with a registration.
type SignUpOutcome struct {
	UserID         uint64
	Email          string
	EmailConfirmed bool
}

// Backend is the auth surface of the hosted backend service.
type Backend interface {
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignUp(ctx context.Context, email, password string, meta SignUpMeta) (SignUpOutcome, error)
	SignOut(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (Session, error)
	// Subscribe registers a callback for auth-state changes and returns an
	// unsubscribe func.  Callbacks must not block.
	Subscribe(fn func(Event)) (unsubscribe func())
}

// ProfileStore is the profile surface the Manager resolves and writes
// through.  Implementations may return ErrProfileWriteOnly from Update to
// signal that the write landed but the row could not be read back; the
// Manager then falls back to a single-level local merge.
type ProfileStore interface {
	GetByEmail(ctx context.Context, email string) (model.Profile, error)
	GetByID(ctx context.Context, id uint64) (model.Profile, error)
	Update(ctx context.Context, id uint64, upd repository.ProfileUpdate) (model.Profile, error)
}

// ErrProfileWriteOnly marks a profile update whose row could not be
// fetched back after a successful write.
var ErrProfileWriteOnly = errors.New("profile updated but row unavailable")
