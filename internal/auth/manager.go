package auth

import (
	"context"
	"sync"

	"github.com/cineteca/cineteca-api/internal/model"
	"github.com/cineteca/cineteca-api/internal/repository"
)

// Manager owns the current-user and profile cache.  All mutation goes
// through Login/Register/Logout/UpdateProfile; IsAuthenticated and
// IsAdmin are pure queries over cached state and never touch the network.
//
// Invariants the rest of the application leans on:
//   - profile-fetch failure after a successful sign-in keeps the session:
//     the user is logged in with an absent profile and counts as non-admin;
//   - Logout always clears local state, even when the remote call fails;
//   - a cached profile is only ever replaced wholesale, never patched.
type Manager struct {
	backend  Backend
	profiles ProfileStore

	mu      sync.RWMutex
	byToken map[string]*entry
	unsub   func()
}

type entry struct {
	session Session
	profile *model.Profile
}

// NewManager wires a Manager to its backend and profile store.  Call
// Start to begin receiving auth-state changes and Close on teardown.
func NewManager(b Backend, p ProfileStore) *Manager {
	return &Manager{backend: b, profiles: p, byToken: make(map[string]*entry)}
}

// Start subscribes to backend auth-state-change events for the lifetime
// of the application.
func (m *Manager) Start() {
	m.unsub = m.backend.Subscribe(m.handleEvent)
}

// Close unsubscribes and drops all cached state.
func (m *Manager) Close() {
	if m.unsub != nil {
		m.unsub()
		m.unsub = nil
	}
	m.mu.Lock()
	m.byToken = make(map[string]*entry)
	m.mu.Unlock()
}

// handleEvent applies asynchronous changes: a login elsewhere seeds the
// cache, a refresh swaps the token entry, a logout elsewhere evicts every
// session of that user.
func (m *Manager) handleEvent(ev Event) {
	switch ev.Kind {
	case EventSignedIn, EventTokenRefreshed:
		if ev.Session == nil {
			return
		}
		s := *ev.Session
		var prof *model.Profile
		if p, err := m.profiles.GetByEmail(context.Background(), s.Email); err == nil {
			prof = &p
		}
		m.mu.Lock()
		m.byToken[s.Token] = &entry{session: s, profile: prof}
		m.mu.Unlock()
	case EventSignedOut:
		m.mu.Lock()
		for tok, e := range m.byToken {
			if e.session.UserID == ev.UserID {
				delete(m.byToken, tok)
			}
		}
		m.mu.Unlock()
	}
}

// LoginResult is the discriminated outcome of Login.
type LoginResult struct {
	Success bool           `json:"success"`
	User    *Session       `json:"user,omitempty"`
	Profile *model.Profile `json:"profile,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Login signs in against the backend, caches the session, then resolves
// the profile by email.  Email is the primary lookup key: the trigger
// that creates profile rows can lag registration, so id lookups race.
// A failed profile fetch does not roll the session back.
func (m *Manager) Login(ctx context.Context, email, password string) LoginResult {
	s, err := m.backend.SignIn(ctx, email, password)
	if err != nil {
		return LoginResult{Success: false, Error: err.Error()}
	}
	e := &entry{session: s}
	if p, perr := m.profiles.GetByEmail(ctx, s.Email); perr == nil {
		e.profile = &p
	}
	m.mu.Lock()
	m.byToken[s.Token] = e
	m.mu.Unlock()
	return LoginResult{Success: true, User: &s, Profile: e.profile}
}

// RegisterResult is the discriminated outcome of Register.
type RegisterResult struct {
	Success           bool   `json:"success"`
	UserID            uint64 `json:"user_id,omitempty"`
	NeedsVerification bool   `json:"needs_verification,omitempty"`
	Error             string `json:"error,omitempty"`
}

// Register delegates account creation.  The profile row is created by the
// backend trigger; nothing is cached because the account is not signed in
// yet.
func (m *Manager) Register(ctx context.Context, email, password string, meta SignUpMeta) RegisterResult {
	out, err := m.backend.SignUp(ctx, email, password, meta)
	if err != nil {
		return RegisterResult{Success: false, Error: err.Error()}
	}
	return RegisterResult{Success: true, UserID: out.UserID, NeedsVerification: !out.EmailConfirmed}
}

// Logout signs out remotely best-effort and always clears the local
// session and profile state.  Local state must never stay authenticated
// after a user-initiated logout, network failure or not.
func (m *Manager) Logout(ctx context.Context, token string) error {
	err := m.backend.SignOut(ctx, token)
	m.mu.Lock()
	if e, ok := m.byToken[token]; ok {
		uid := e.session.UserID
		for tok, other := range m.byToken {
			if other.session.UserID == uid {
				delete(m.byToken, tok)
			}
		}
	}
	delete(m.byToken, token)
	m.mu.Unlock()
	return err
}

// UpdateResult is the discriminated outcome of UpdateProfile.
type UpdateResult struct {
	Success bool           `json:"success"`
	Profile *model.Profile `json:"profile,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// UpdateProfile writes through to the backend.  On success the cached
// profile is replaced with the row returned by the write; when the store
// reports the row unavailable, a single-level merge of the submitted
// fields over the old cache stands in until the next fetch.
func (m *Manager) UpdateProfile(ctx context.Context, token string, upd repository.ProfileUpdate) UpdateResult {
	m.mu.RLock()
	e, ok := m.byToken[token]
	m.mu.RUnlock()
	if !ok {
		return UpdateResult{Success: false, Error: "not authenticated"}
	}
	p, err := m.profiles.Update(ctx, e.session.UserID, upd)
	switch {
	case err == nil:
		m.mu.Lock()
		e.profile = &p
		m.mu.Unlock()
		return UpdateResult{Success: true, Profile: &p}
	case err == ErrProfileWriteOnly:
		merged := mergeProfile(e.profile, upd)
		m.mu.Lock()
		e.profile = merged
		m.mu.Unlock()
		return UpdateResult{Success: true, Profile: merged}
	default:
		return UpdateResult{Success: false, Error: err.Error()}
	}
}

func mergeProfile(old *model.Profile, upd repository.ProfileUpdate) *model.Profile {
	var p model.Profile
	if old != nil {
		p = *old
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.CPF != nil {
		p.CPF = *upd.CPF
	}
	if upd.BirthDate != nil {
		p.BirthDate = upd.BirthDate
	}
	if upd.Phone != nil {
		p.Phone = upd.Phone
	}
	return &p
}

// Resume restores a session the backend still considers valid (e.g. a
// bearer token presented after a restart) and fetches its profile.  It is
// a no-op when the token is already cached.
func (m *Manager) Resume(ctx context.Context, token string) bool {
	m.mu.RLock()
	_, ok := m.byToken[token]
	m.mu.RUnlock()
	if ok {
		return true
	}
	s, err := m.backend.CurrentUser(ctx, token)
	if err != nil {
		return false
	}
	e := &entry{session: s}
	if p, perr := m.profiles.GetByEmail(ctx, s.Email); perr == nil {
		e.profile = &p
	}
	m.mu.Lock()
	m.byToken[token] = e
	m.mu.Unlock()
	return true
}

// IsAuthenticated reports whether a session is cached for the token.
func (m *Manager) IsAuthenticated(token string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byToken[token]
	return ok
}

// IsAdmin reports admin capability: a cached profile whose role is
// "admin".  An absent profile is never admin, whatever other signals
// exist.
func (m *Manager) IsAdmin(token string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.byToken[token]
	return ok && e.profile.IsAdmin()
}

// SessionFor returns the cached session for a token.
func (m *Manager) SessionFor(token string) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.byToken[token]; ok {
		return e.session, true
	}
	return Session{}, false
}

// ProfileFor returns the cached profile for a token, nil when absent.
func (m *Manager) ProfileFor(token string) *model.Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.byToken[token]; ok {
		return e.profile
	}
	return nil
}
