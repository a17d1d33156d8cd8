package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	credFileName = "credentials.json"

	// TokenEnv overrides the credential file when set.
	TokenEnv = "TASKTRACKER_TOKEN"
)

// ErrEnvToken is returned when asked to remove a token that comes from the environment.
var ErrEnvToken = errors.New("token is provided by " + TokenEnv + " (nothing to delete)")

// Source says where a token was found.
type Source string

const (
	SourceEnv  Source = "env"
	SourceFile Source = "file"
)

// TokenInfo is the stored login. Source is derived on read, not saved.
type TokenInfo struct {
	Token     string     `json:"token"`
	Source    Source     `json:"-"`
	SavedAt   time.Time  `json:"saved_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the recorded expiry has passed. A token without
// one is left for ParseToken to judge.
func (ti *TokenInfo) Expired(now time.Time) bool {
	return ti.ExpiresAt != nil && !now.Before(*ti.ExpiresAt)
}

// Credentials reads and writes the token kept under Dir.
type Credentials struct {
	Dir string
}

func (c Credentials) path() string {
	return filepath.Join(c.Dir, credFileName)
}

func envToken() string {
	return normalizeToken(os.Getenv(TokenEnv))
}

// GetToken prefers TokenEnv over the file. It returns nil, nil when
// nobody is logged in.
func (c Credentials) GetToken() (*TokenInfo, error) {
	if tok := envToken(); tok != "" {
		return &TokenInfo{Token: tok, Source: SourceEnv}, nil
	}
	return c.read()
}

func (c Credentials) read() (*TokenInfo, error) {
	b, err := os.ReadFile(c.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	ti := &TokenInfo{Source: SourceFile}
	if err := json.Unmarshal(b, ti); err != nil {
		return nil, fmt.Errorf("parse credentials %s: %w", c.path(), err)
	}
	ti.Token = normalizeToken(ti.Token)
	if ti.Token == "" {
		return nil, nil
	}
	return ti, nil
}

// SetToken saves token for later runs. expires may be nil.
func (c Credentials) SetToken(token string, expires *time.Time) error {
	token = normalizeToken(token)
	if token == "" {
		return errors.New("empty token")
	}
	return c.write(TokenInfo{Token: token, SavedAt: time.Now().UTC(), ExpiresAt: expires})
}

// write replaces the file in one rename, so a reader never sees half a token.
func (c Credentials) write(ti TokenInfo) error {
	if err := os.MkdirAll(c.Dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(ti, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	// CreateTemp opens the file 0600
	f, err := os.CreateTemp(c.Dir, credFileName+".*")
	if err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	tmp := f.Name()
	_, werr := f.Write(b)
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := os.Rename(tmp, c.path()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// DeleteToken removes the file. Logging out twice is not an error.
func (c Credentials) DeleteToken() error {
	if envToken() != "" {
		return ErrEnvToken
	}
	err := os.Remove(c.path())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

// normalizeToken trims whitespace and an optional "Bearer " prefix, in any case.
func normalizeToken(s string) string {
	s = strings.TrimSpace(s)
	if scheme, rest, ok := strings.Cut(s, " "); ok && strings.EqualFold(scheme, "bearer") {
		s = strings.TrimSpace(rest)
	}
	return s
}
