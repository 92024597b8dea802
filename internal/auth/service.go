package auth

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cineteca/cineteca-api/internal/repository"
	"github.com/cineteca/cineteca-api/internal/utils"
)

// Errors the hosted service maps user-facing failures to.  They surface
// as result-object strings, never as panics or raw SQL errors.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Service is the hosted implementation of Backend: users and refresh
// tokens in MySQL, HS256 access tokens, and an in-process hub that
// notifies subscribers of auth-state changes.
type Service struct {
	secret         string
	accessTTLMin   int
	refreshTTLDays int
	bcryptCost     int

	users    *repository.UserRepo
	tokens   *repository.TokenRepo
	profiles *repository.ProfileRepo

	mu      sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

// NewService builds the hosted auth service.
func NewService(secret string, accessTTLMin, refreshTTLDays, bcryptCost int,
	users *repository.UserRepo, tokens *repository.TokenRepo, profiles *repository.ProfileRepo) *Service {
	return &Service{
		secret:         secret,
		accessTTLMin:   accessTTLMin,
		refreshTTLDays: refreshTTLDays,
		bcryptCost:     bcryptCost,
		users:          users,
		tokens:         tokens,
		profiles:       profiles,
		subs:           make(map[int]func(Event)),
	}
}

// SignIn verifies credentials and issues an access token.  The role claim
// comes from the profile row when one exists; a missing profile signs in
// with the default user role.
func (s *Service) SignIn(ctx context.Context, email, password string) (Session, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return Session{}, ErrInvalidCredentials
	}
	role := "user"
	if p, perr := s.profiles.GetByEmail(ctx, u.Email); perr == nil {
		role = p.Role
	}
	access, err := utils.NewAccessToken(s.secret, u.ID, u.Email, role, s.accessTTLMin)
	if err != nil {
		return Session{}, err
	}
	sess := Session{UserID: u.ID, Email: u.Email, Token: access.Token}
	s.notify(Event{Kind: EventSignedIn, UserID: u.ID, Session: &sess})
	return sess, nil
}

// SignUp creates the account.  The profiles row is written by a database
// trigger on the users insert; this method never touches that table.
func (s *Service) SignUp(ctx context.Context, email, password string, meta SignUpMeta) (SignUpOutcome, error) {
	uid, err := s.users.Create(ctx, email, password, meta.FullName, meta.CPF, s.bcryptCost)
	if err != nil {
		return SignUpOutcome{}, err
	}
	u, err := s.users.GetByID(ctx, uid)
	if err != nil {
		return SignUpOutcome{UserID: uid, Email: email}, nil
	}
	return SignUpOutcome{UserID: uid, Email: u.Email, EmailConfirmed: u.EmailConfirmedAt != nil}, nil
}

// SignOut revokes every refresh token of the token's owner and announces
// the sign-out.  An unparsable token is already signed out.
func (s *Service) SignOut(ctx context.Context, token string) error {
	sess, err := s.CurrentUser(ctx, token)
	if err != nil {
		return err
	}
	if err := s.tokens.RevokeAllForUser(ctx, sess.UserID); err != nil {
		return err
	}
	s.notify(Event{Kind: EventSignedOut, UserID: sess.UserID})
	return nil
}

// CurrentUser resolves a bearer token back to its session.
func (s *Service) CurrentUser(_ context.Context, token string) (Session, error) {
	tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.secret), nil
	})
	if err != nil || !tok.Valid {
		return Session{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, ErrInvalidToken
	}
	var uid uint64
	switch v := claims["sub"].(type) {
	case float64:
		uid = uint64(v)
	case string:
		if n, perr := strconv.ParseUint(v, 10, 64); perr == nil {
			uid = n
		}
	}
	email, _ := claims["email"].(string)
	if uid == 0 || email == "" {
		return Session{}, ErrInvalidToken
	}
	return Session{UserID: uid, Email: email, Token: token}, nil
}

// Subscribe registers an auth-state-change callback and returns its
// unsubscribe func.  Callbacks run synchronously and must not block.
func (s *Service) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Service) notify(ev Event) {
	s.mu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// IssueRefresh mints and stores a refresh token for a user.
func (s *Service) IssueRefresh(ctx context.Context, userID uint64) (utils.RefreshToken, error) {
	ref, err := utils.NewRefreshToken(s.refreshTTLDays)
	if err != nil {
		return utils.RefreshToken{}, err
	}
	if err := s.tokens.StoreRefresh(ctx, userID, utils.HashRefreshRaw(ref.Raw), ref.Exp); err != nil {
		return utils.RefreshToken{}, err
	}
	return ref, nil
}

// Refresh validates a raw refresh token, revokes it, and issues a new
// access/refresh pair.  The new access token is announced as a refresh
// event so session caches can swap entries.
func (s *Service) Refresh(ctx context.Context, raw string) (Session, utils.RefreshToken, error) {
	hash := utils.HashRefreshRaw(raw)
	userID, err := s.tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return Session{}, utils.RefreshToken{}, ErrInvalidToken
	}
	_ = s.tokens.RevokeByHash(ctx, hash)

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return Session{}, utils.RefreshToken{}, err
	}
	role := "user"
	if p, perr := s.profiles.GetByEmail(ctx, u.Email); perr == nil {
		role = p.Role
	}
	access, err := utils.NewAccessToken(s.secret, u.ID, u.Email, role, s.accessTTLMin)
	if err != nil {
		return Session{}, utils.RefreshToken{}, err
	}
	newRef, err := s.IssueRefresh(ctx, u.ID)
	if err != nil {
		return Session{}, utils.RefreshToken{}, err
	}
	sess := Session{UserID: u.ID, Email: u.Email, Token: access.Token}
	s.notify(Event{Kind: EventTokenRefreshed, UserID: u.ID, Session: &sess})
	return sess, newRef, nil
}
