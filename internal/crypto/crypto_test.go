package crypto

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTAuth_AuthorizationHeader(t *testing.T) {
	auth := &JWTAuth{AccessKey: "ak", SecretKey: "sk"}

	header, err := auth.authorizationHeaderAt("", "nonce-1", 1_700_000_000_000)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(header, "Bearer "))

	parts := strings.Split(strings.TrimPrefix(header, "Bearer "), ".")
	require.Len(t, parts, 3)

	var claims map[string]any
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(payload, &claims))

	assert.Equal(t, "ak", claims["access_key"])
	assert.Equal(t, "nonce-1", claims["nonce"])
	assert.Equal(t, float64(1_700_000_000_000), claims["timestamp"])
	assert.NotContains(t, claims, "query_hash")
}

func TestJWTAuth_QueryHash(t *testing.T) {
	auth := &JWTAuth{AccessKey: "ak", SecretKey: "sk"}

	query := "market=KRW-BTC&count=100"
	header, err := auth.authorizationHeaderAt(query, "nonce-1", 1)
	require.NoError(t, err)

	parts := strings.Split(strings.TrimPrefix(header, "Bearer "), ".")
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	var claims map[string]any
	require.NoError(t, json.Unmarshal(payload, &claims))

	sum := sha512.Sum512([]byte(query))
	assert.Equal(t, hex.EncodeToString(sum[:]), claims["query_hash"])
	assert.Equal(t, "SHA512", claims["query_hash_alg"])
}

func TestJWTAuth_Deterministic(t *testing.T) {
	auth := &JWTAuth{AccessKey: "ak", SecretKey: "sk"}

	a, err := auth.authorizationHeaderAt("q=1", "n", 42)
	require.NoError(t, err)
	b, err := auth.authorizationHeaderAt("q=1", "n", 42)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := (&JWTAuth{AccessKey: "ak", SecretKey: "other"}).authorizationHeaderAt("q=1", "n", 42)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestPayloadAuth_Sign(t *testing.T) {
	auth := &PayloadAuth{AccessToken: "token", SecretKey: "secret"}

	req, err := auth.signWithNonce(map[string]any{"currency": "BTC"}, "nonce-1")
	require.NoError(t, err)

	// Payload header is the base64 of the body bytes.
	assert.Equal(t, base64.StdEncoding.EncodeToString(req.Body), req.Headers["X-COINONE-PAYLOAD"])

	// Signature is HMAC-SHA512(secret, payload) in hex.
	mac := hmac.New(sha512.New, []byte("secret"))
	mac.Write([]byte(req.Headers["X-COINONE-PAYLOAD"]))
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), req.Headers["X-COINONE-SIGNATURE"])

	var body map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Equal(t, "token", body["access_token"])
	assert.Equal(t, "nonce-1", body["nonce"])
	assert.Equal(t, "BTC", body["currency"])
}

func TestPayloadAuth_NilParams(t *testing.T) {
	auth := &PayloadAuth{AccessToken: "token", SecretKey: "secret"}

	req, err := auth.signWithNonce(nil, "nonce-1")
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Len(t, body, 2)
}

func TestSessionSigner(t *testing.T) {
	signer := NewSessionSigner("hmac-secret", "hunter2")

	_, ok := signer.Login("wrong")
	assert.False(t, ok)

	token, ok := signer.Login("hunter2")
	require.True(t, ok)
	require.NotEmpty(t, token)

	assert.True(t, signer.Verify(token))
	assert.False(t, signer.Verify(token+"x"))
	assert.False(t, signer.Verify(""))

	// Tokens survive restarts as long as secret and password are stable.
	assert.True(t, NewSessionSigner("hmac-secret", "hunter2").Verify(token))
	assert.False(t, NewSessionSigner("other-secret", "hunter2").Verify(token))
}

func TestSessionSigner_EmptyPasswordNeverVerifies(t *testing.T) {
	signer := NewSessionSigner("hmac-secret", "")
	assert.False(t, signer.Verify(signer.sign("")))
}
