package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestIssueAndParse(t *testing.T) {
	token, u, err := Issue(testSecret, User{Email: "ada@example.com"}, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Subject)
	assert.Equal(t, "ada@example.com", claims.Email)

	_, err = ParseToken([]byte("other"), token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// unverified decode still yields the subject
	claims, err = ParseToken(nil, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Subject)
}

func TestParseExpired(t *testing.T) {
	token, _, err := Issue(testSecret, User{ID: "u1"}, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, token)
	assert.ErrorIs(t, err, ErrExpiredToken)
	_, err = ParseToken(nil, token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestFileProviderLoginSignOut(t *testing.T) {
	t.Setenv(TokenEnv, "")
	dir := t.TempDir()
	p := NewFileProvider(dir, testSecret, nil)

	assert.Nil(t, p.CurrentUser())

	token, issued, err := Issue(testSecret, User{Email: "bob@example.com"}, time.Hour)
	require.NoError(t, err)
	u, err := p.Login("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, issued.ID, u.ID)

	info, err := os.Stat(filepath.Join(dir, credFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	cur := p.CurrentUser()
	require.NotNil(t, cur)
	assert.Equal(t, "bob@example.com", cur.Email)

	require.NoError(t, p.SignOut())
	assert.Nil(t, p.CurrentUser())
	// signing out twice is fine
	require.NoError(t, p.SignOut())
}

func TestFileProviderEnvOverride(t *testing.T) {
	token, issued, err := Issue(testSecret, User{Email: "env@example.com"}, time.Hour)
	require.NoError(t, err)
	t.Setenv(TokenEnv, "bearer "+token)

	p := NewFileProvider(t.TempDir(), testSecret, nil)
	cur := p.CurrentUser()
	require.NotNil(t, cur)
	assert.Equal(t, issued.ID, cur.ID)
	assert.ErrorIs(t, p.SignOut(), ErrEnvToken)
}

func TestFileProviderRejectsGarbage(t *testing.T) {
	t.Setenv(TokenEnv, "not-a-jwt")
	p := NewFileProvider(t.TempDir(), nil, nil)
	assert.Nil(t, p.CurrentUser())
	_, err := p.Resolve()
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestStatic(t *testing.T) {
	s := NewStatic(&User{ID: "u1"})
	require.NotNil(t, s.CurrentUser())
	require.NoError(t, s.SignOut())
	assert.Nil(t, s.CurrentUser())
	s.SignIn(User{ID: "u2"})
	assert.Equal(t, "u2", s.CurrentUser().ID)
}

func TestNormalizeToken(t *testing.T) {
	assert.Equal(t, "abc", normalizeToken("  Bearer abc "))
	assert.Equal(t, "abc", normalizeToken("BEARER   abc"))
	assert.Equal(t, "abc", normalizeToken("abc"))
	assert.Equal(t, "", normalizeToken("   "))
}

func TestCredentialsRoundTrip(t *testing.T) {
	t.Setenv(TokenEnv, "   ")
	dir := t.TempDir()
	c := Credentials{Dir: dir}

	ti, err := c.GetToken()
	require.NoError(t, err)
	assert.Nil(t, ti)

	exp := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, c.SetToken("Bearer tok", &exp))

	ti, err = c.GetToken()
	require.NoError(t, err)
	require.NotNil(t, ti)
	assert.Equal(t, "tok", ti.Token)
	assert.Equal(t, SourceFile, ti.Source)
	require.NotNil(t, ti.ExpiresAt)
	assert.True(t, exp.Equal(*ti.ExpiresAt))
	assert.False(t, ti.Expired(time.Now()))
	assert.True(t, ti.Expired(exp))

	// only the credential file is left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, credFileName, entries[0].Name())

	assert.Error(t, c.SetToken(" bearer  ", nil))
}

func TestFileProviderHonoursRecordedExpiry(t *testing.T) {
	t.Setenv(TokenEnv, "")
	dir := t.TempDir()
	p := NewFileProvider(dir, testSecret, nil)

	token, _, err := Issue(testSecret, User{ID: "u1"}, time.Hour)
	require.NoError(t, err)
	past := time.Now().Add(-time.Minute)
	require.NoError(t, p.Creds.SetToken(token, &past))

	_, err = p.Resolve()
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Nil(t, p.CurrentUser())
}
