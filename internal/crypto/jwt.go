// Package crypto provides the request-signing primitives used by the
// exchange clients (HS256 JWTs, HMAC payload signatures) and the signed
// session tokens used by the dashboard API.
package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JWTAuth holds the API credentials for exchanges that authenticate
// requests with a per-request HS256 JWT (Bithumb API 2.0).
type JWTAuth struct {
	AccessKey string
	SecretKey string
}

// jwtClaims is the per-request token payload. QueryHash is only present
// when the request carries a query string.
type jwtClaims struct {
	AccessKey    string `json:"access_key"`
	Nonce        string `json:"nonce"`
	Timestamp    int64  `json:"timestamp"`
	QueryHash    string `json:"query_hash,omitempty"`
	QueryHashAlg string `json:"query_hash_alg,omitempty"`
}

// AuthorizationHeader returns the "Bearer <jwt>" header value for a request
// with the given raw query string (empty for requests without parameters).
// Each call produces a fresh nonce and timestamp.
func (a *JWTAuth) AuthorizationHeader(query string) (string, error) {
	return a.authorizationHeaderAt(query, uuid.NewString(), time.Now().UnixMilli())
}

// authorizationHeaderAt is the deterministic core of AuthorizationHeader,
// split out so tests can fix the nonce and timestamp.
func (a *JWTAuth) authorizationHeaderAt(query, nonce string, unixMilli int64) (string, error) {
	claims := jwtClaims{
		AccessKey: a.AccessKey,
		Nonce:     nonce,
		Timestamp: unixMilli,
	}
	if query != "" {
		sum := sha512.Sum512([]byte(query))
		claims.QueryHash = hex.EncodeToString(sum[:])
		claims.QueryHashAlg = "SHA512"
	}

	token, err := signHS256(claims, []byte(a.SecretKey))
	if err != nil {
		return "", fmt.Errorf("crypto: signing request token: %w", err)
	}
	return "Bearer " + token, nil
}

// signHS256 builds a compact JWS (header.payload.signature) with alg HS256.
func signHS256(claims any, secret []byte) (string, error) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshaling claims: %w", err)
	}
	body := base64.RawURLEncoding.EncodeToString(payload)

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(header + "." + body))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	return header + "." + body + "." + sig, nil
}
