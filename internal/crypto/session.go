package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// sessionKDFIterations is the OWASP-recommended minimum for
	// PBKDF2-HMAC-SHA256.
	sessionKDFIterations = 480_000
	sessionKeyLen        = 32
)

// sessionSalt is a fixed application salt. Session tokens must be
// verifiable statelessly across restarts and replicas, so the salt cannot
// be random per token.
var sessionSalt = []byte("botboard-session-v1")

// SessionSigner mints and verifies the dashboard's stateless auth tokens.
// A token is the hex HMAC-SHA256 of the site password under a key derived
// from the configured secret, so possession of a valid token proves the
// holder logged in with the current password.
type SessionSigner struct {
	key      []byte
	password string
}

// NewSessionSigner derives the signing key from secret. password is the
// single shared site password that login checks against.
func NewSessionSigner(secret, password string) *SessionSigner {
	key := pbkdf2.Key([]byte(secret), sessionSalt, sessionKDFIterations, sessionKeyLen, sha256.New)
	return &SessionSigner{key: key, password: password}
}

// Login checks the submitted password and, on success, returns the session
// token to set as a cookie. The comparison is constant time.
func (s *SessionSigner) Login(password string) (string, bool) {
	if subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) != 1 {
		return "", false
	}
	return s.sign(s.password), true
}

// Verify reports whether token is a currently-valid session token.
func (s *SessionSigner) Verify(token string) bool {
	if s.password == "" {
		return false
	}
	expected := s.sign(s.password)
	return hmac.Equal([]byte(token), []byte(expected))
}

func (s *SessionSigner) sign(msg string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil))
}
