// Package auth resolves who is signed in. Tokens are JWTs issued by the
// hosting backend (or by Issue for local backends) and kept in a
// credential file or the TASKTRACKER_TOKEN environment variable.
package auth

import (
	"log/slog"
	"sync"
	"time"
)

// User is the authenticated identity.
type User struct {
	ID    string
	Email string
}

// Provider supplies the current user, or nil when signed out.
type Provider interface {
	CurrentUser() *User
	SignOut() error
}

// FileProvider reads the stored token on every call, so a login from
// another process is picked up on the next refresh.
type FileProvider struct {
	Creds  Credentials
	Secret []byte
	Logger *slog.Logger
}

func NewFileProvider(dir string, secret []byte, logger *slog.Logger) *FileProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileProvider{Creds: Credentials{Dir: dir}, Secret: secret, Logger: logger}
}

func (p *FileProvider) CurrentUser() *User {
	u, err := p.Resolve()
	if err != nil {
		p.Logger.Warn("ignoring stored token", "error", err)
		return nil
	}
	return u
}

// Resolve is CurrentUser with the reason a token was rejected.
func (p *FileProvider) Resolve() (*User, error) {
	ti, err := p.Creds.GetToken()
	if err != nil || ti == nil {
		return nil, err
	}
	if ti.Expired(time.Now()) {
		return nil, ErrExpiredToken
	}
	claims, err := ParseToken(p.Secret, ti.Token)
	if err != nil {
		return nil, err
	}
	return &User{ID: claims.Subject, Email: claims.Email}, nil
}

// Login validates token and stores it.
func (p *FileProvider) Login(token string) (*User, error) {
	token = normalizeToken(token)
	claims, err := ParseToken(p.Secret, token)
	if err != nil {
		return nil, err
	}
	var exp *time.Time
	if claims.ExpiresAt != nil {
		t := claims.ExpiresAt.Time
		exp = &t
	}
	if err := p.Creds.SetToken(token, exp); err != nil {
		return nil, err
	}
	return &User{ID: claims.Subject, Email: claims.Email}, nil
}

func (p *FileProvider) SignOut() error {
	return p.Creds.DeleteToken()
}

// Static is a fixed identity, for embedding and tests.
type Static struct {
	mu   sync.Mutex
	user *User
}

func NewStatic(u *User) *Static { return &Static{user: u} }

func (s *Static) CurrentUser() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Static) SignIn(u User) {
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
}

func (s *Static) SignOut() error {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	return nil
}
