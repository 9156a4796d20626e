package crypto

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// PayloadAuth holds the API credentials for exchanges that authenticate by
// sending the request body twice: once as JSON and once as a base64 payload
// header with an HMAC-SHA512 signature over it (Coinone v2.1).
type PayloadAuth struct {
	AccessToken string
	SecretKey   string
}

// SignedRequest is the output of Sign: the JSON body to POST plus the
// authentication headers derived from it.
type SignedRequest struct {
	Body    []byte
	Headers map[string]string
}

// Sign injects the access token and a fresh nonce into params, then builds
// the body and X-COINONE-* headers. params must marshal to a JSON object;
// pass nil for endpoints without parameters.
func (a *PayloadAuth) Sign(params map[string]any) (SignedRequest, error) {
	return a.signWithNonce(params, uuid.NewString())
}

// signWithNonce is the deterministic core of Sign, split out so tests can
// fix the nonce.
func (a *PayloadAuth) signWithNonce(params map[string]any, nonce string) (SignedRequest, error) {
	body := make(map[string]any, len(params)+2)
	for k, v := range params {
		body[k] = v
	}
	body["access_token"] = a.AccessToken
	body["nonce"] = nonce

	// json.Marshal sorts map keys, so the body bytes and the signed
	// payload are always the same serialization.
	raw, err := json.Marshal(body)
	if err != nil {
		return SignedRequest{}, fmt.Errorf("crypto: marshaling payload: %w", err)
	}

	payload := base64.StdEncoding.EncodeToString(raw)
	mac := hmac.New(sha512.New, []byte(a.SecretKey))
	mac.Write([]byte(payload))
	signature := hex.EncodeToString(mac.Sum(nil))

	return SignedRequest{
		Body: raw,
		Headers: map[string]string{
			"Content-Type":        "application/json",
			"X-COINONE-PAYLOAD":   payload,
			"X-COINONE-SIGNATURE": signature,
		},
	}, nil
}
