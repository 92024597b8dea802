package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineteca/cineteca-api/internal/model"
	"github.com/cineteca/cineteca-api/internal/repository"
)

// fakeBackend is an in-memory Backend with scriptable failures.
type fakeBackend struct {
	accounts   map[string]string // email -> password
	confirmed  map[string]bool
	signOutErr error
	nextUserID uint64
	sessions   map[string]Session // token -> session

	subs    []func(Event)
	signIns int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		accounts:   map[string]string{},
		confirmed:  map[string]bool{},
		sessions:   map[string]Session{},
		nextUserID: 1,
	}
}

func (f *fakeBackend) addAccount(email, password string, confirmed bool) uint64 {
	f.accounts[email] = password
	f.confirmed[email] = confirmed
	id := f.nextUserID
	f.nextUserID++
	return id
}

func (f *fakeBackend) SignIn(_ context.Context, email, password string) (Session, error) {
	pw, ok := f.accounts[email]
	if !ok || pw != password {
		return Session{}, ErrInvalidCredentials
	}
	f.signIns++
	s := Session{UserID: uint64(len(f.sessions) + 1), Email: email, Token: "tok-" + email}
	f.sessions[s.Token] = s
	return s, nil
}

func (f *fakeBackend) SignUp(_ context.Context, email, password string, _ SignUpMeta) (SignUpOutcome, error) {
	if _, exists := f.accounts[email]; exists {
		return SignUpOutcome{}, repository.ErrEmailExists
	}
	id := f.addAccount(email, password, false)
	return SignUpOutcome{UserID: id, Email: email, EmailConfirmed: false}, nil
}

func (f *fakeBackend) SignOut(_ context.Context, token string) error {
	if f.signOutErr != nil {
		return f.signOutErr
	}
	delete(f.sessions, token)
	return nil
}

func (f *fakeBackend) CurrentUser(_ context.Context, token string) (Session, error) {
	if s, ok := f.sessions[token]; ok {
		return s, nil
	}
	return Session{}, ErrInvalidToken
}

func (f *fakeBackend) Subscribe(fn func(Event)) func() {
	f.subs = append(f.subs, fn)
	return func() { f.subs = nil }
}

func (f *fakeBackend) emit(ev Event) {
	for _, fn := range f.subs {
		fn(ev)
	}
}

// fakeProfiles serves profiles keyed by email and can be told to fail.
type fakeProfiles struct {
	byEmail   map[string]model.Profile
	fetchErr  error
	updateErr error
	updated   model.Profile
}

func (f *fakeProfiles) GetByEmail(_ context.Context, email string) (model.Profile, error) {
	if f.fetchErr != nil {
		return model.Profile{}, f.fetchErr
	}
	p, ok := f.byEmail[email]
	if !ok {
		return model.Profile{}, repository.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeProfiles) GetByID(_ context.Context, id uint64) (model.Profile, error) {
	for _, p := range f.byEmail {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Profile{}, repository.ErrProfileNotFound
}

func (f *fakeProfiles) Update(_ context.Context, id uint64, upd repository.ProfileUpdate) (model.Profile, error) {
	if f.updateErr != nil {
		return model.Profile{}, f.updateErr
	}
	return f.updated, nil
}

func adminProfile(email string) model.Profile {
	return model.Profile{ID: 1, Name: "Administrador", Email: email, CPF: "000.000.000-00", Role: model.RoleAdmin}
}

func TestLoginResolvesProfileByEmail(t *testing.T) {
	b := newFakeBackend()
	b.addAccount("admin@cineteca.com", "admin123", true)
	profiles := &fakeProfiles{byEmail: map[string]model.Profile{
		"admin@cineteca.com": adminProfile("admin@cineteca.com"),
	}}
	m := NewManager(b, profiles)

	res := m.Login(context.Background(), "admin@cineteca.com", "admin123")
	require.True(t, res.Success)
	require.NotNil(t, res.User)
	assert.True(t, m.IsAuthenticated(res.User.Token))
	assert.True(t, m.IsAdmin(res.User.Token))
}

func TestLoginWrongPassword(t *testing.T) {
	b := newFakeBackend()
	b.addAccount("usuario@email.com", "user123", true)
	m := NewManager(b, &fakeProfiles{byEmail: map[string]model.Profile{}})

	res := m.Login(context.Background(), "usuario@email.com", "nope")
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
	assert.Nil(t, res.User)
}

func TestProfileFetchFailureKeepsSession(t *testing.T) {
	b := newFakeBackend()
	b.addAccount("usuario@email.com", "user123", true)
	profiles := &fakeProfiles{fetchErr: errors.New("profiles table unreachable")}
	m := NewManager(b, profiles)

	res := m.Login(context.Background(), "usuario@email.com", "user123")
	require.True(t, res.Success)
	// Logged in with absent profile: authenticated, never admin.
	assert.True(t, m.IsAuthenticated(res.User.Token))
	assert.False(t, m.IsAdmin(res.User.Token))
	assert.Nil(t, m.ProfileFor(res.User.Token))
}

func TestRegisterReportsVerification(t *testing.T) {
	b := newFakeBackend()
	m := NewManager(b, &fakeProfiles{byEmail: map[string]model.Profile{}})

	res := m.Register(context.Background(), "novo@email.com", "senha123", SignUpMeta{FullName: "Novo Usuário", CPF: "123.456.789-01"})
	require.True(t, res.Success)
	assert.True(t, res.NeedsVerification)

	dup := m.Register(context.Background(), "novo@email.com", "senha123", SignUpMeta{})
	assert.False(t, dup.Success)
	assert.NotEmpty(t, dup.Error)
}

func TestLogoutClearsLocalStateOnRemoteFailure(t *testing.T) {
	b := newFakeBackend()
	b.addAccount("usuario@email.com", "user123", true)
	m := NewManager(b, &fakeProfiles{byEmail: map[string]model.Profile{}})

	res := m.Login(context.Background(), "usuario@email.com", "user123")
	require.True(t, res.Success)
	tok := res.User.Token

	b.signOutErr = errors.New("network down")
	err := m.Logout(context.Background(), tok)
	assert.Error(t, err)
	// Local state must never stay authenticated after a user logout.
	assert.False(t, m.IsAuthenticated(tok))
	assert.False(t, m.IsAdmin(tok))
}

func TestUpdateProfileReplacesCacheWholesale(t *testing.T) {
	b := newFakeBackend()
	b.addAccount("usuario@email.com", "user123", true)
	old := model.Profile{ID: 2, Name: "João Silva", Email: "usuario@email.com", Role: model.RoleUser}
	profiles := &fakeProfiles{byEmail: map[string]model.Profile{"usuario@email.com": old}}
	m := NewManager(b, profiles)

	res := m.Login(context.Background(), "usuario@email.com", "user123")
	require.True(t, res.Success)
	tok := res.User.Token

	fresh := old
	fresh.Name = "João S. Atualizado"
	fresh.Phone = strPtr("(11) 98888-8888")
	profiles.updated = fresh

	name := "João S. Atualizado"
	up := m.UpdateProfile(context.Background(), tok, repository.ProfileUpdate{Name: &name})
	require.True(t, up.Success)
	// Cache holds the row returned by the write, including fields the
	// caller never submitted.
	got := m.ProfileFor(tok)
	require.NotNil(t, got)
	assert.Equal(t, "João S. Atualizado", got.Name)
	require.NotNil(t, got.Phone)
	assert.Equal(t, "(11) 98888-8888", *got.Phone)
}

func TestUpdateProfileMergeFallback(t *testing.T) {
	b := newFakeBackend()
	b.addAccount("usuario@email.com", "user123", true)
	old := model.Profile{ID: 2, Name: "João Silva", Email: "usuario@email.com", Role: model.RoleUser}
	profiles := &fakeProfiles{byEmail: map[string]model.Profile{"usuario@email.com": old}, updateErr: ErrProfileWriteOnly}
	m := NewManager(b, profiles)

	res := m.Login(context.Background(), "usuario@email.com", "user123")
	tok := res.User.Token

	name := "João Mesclado"
	up := m.UpdateProfile(context.Background(), tok, repository.ProfileUpdate{Name: &name})
	require.True(t, up.Success)
	got := m.ProfileFor(tok)
	require.NotNil(t, got)
	assert.Equal(t, "João Mesclado", got.Name)
	assert.Equal(t, model.RoleUser, got.Role) // untouched fields survive the merge
}

func TestAuthStateChangeEvents(t *testing.T) {
	b := newFakeBackend()
	profiles := &fakeProfiles{byEmail: map[string]model.Profile{
		"admin@cineteca.com": adminProfile("admin@cineteca.com"),
	}}
	m := NewManager(b, profiles)
	m.Start()
	defer m.Close()

	// A sign-in elsewhere seeds the cache without a local Login call.
	s := Session{UserID: 1, Email: "admin@cineteca.com", Token: "elsewhere-token"}
	b.emit(Event{Kind: EventSignedIn, UserID: 1, Session: &s})
	assert.True(t, m.IsAuthenticated("elsewhere-token"))
	assert.True(t, m.IsAdmin("elsewhere-token"))

	// A sign-out elsewhere evicts every session of the user.
	b.emit(Event{Kind: EventSignedOut, UserID: 1})
	assert.False(t, m.IsAuthenticated("elsewhere-token"))
}

func TestResumeRestoresBackendSession(t *testing.T) {
	b := newFakeBackend()
	b.addAccount("usuario@email.com", "user123", true)
	profiles := &fakeProfiles{byEmail: map[string]model.Profile{
		"usuario@email.com": {ID: 2, Name: "João Silva", Email: "usuario@email.com", Role: model.RoleUser},
	}}
	m := NewManager(b, profiles)

	res := m.Login(context.Background(), "usuario@email.com", "user123")
	tok := res.User.Token

	// A fresh manager (post-restart) resumes from the backend session.
	m2 := NewManager(b, profiles)
	assert.False(t, m2.IsAuthenticated(tok))
	require.True(t, m2.Resume(context.Background(), tok))
	assert.True(t, m2.IsAuthenticated(tok))
	assert.False(t, m2.IsAdmin(tok))

	assert.False(t, m2.Resume(context.Background(), "garbage-token"))
}

func strPtr(s string) *string { return &s }
