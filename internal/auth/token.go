// Package auth resolves the calling user's identity from a bearer token.
//
// Tokens are HMAC-SHA256 signed owner identifiers with an expiry:
// base64url(owner|expiry-unix) + "." + base64url(signature). Identity issuance
// itself lives outside this service; the verifier only needs the shared secret.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNoToken      = errors.New("no token provided")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Authenticator yields the opaque owner identifier for a request, or fails
// with an unauthenticated error. Callers trust the identifier completely and
// scope every query by it.
type Authenticator interface {
	Authenticate(r *http.Request) (owner string, err error)
}

// HMACAuthenticator verifies HMAC-signed bearer tokens.
type HMACAuthenticator struct {
	secret []byte
}

func NewHMACAuthenticator(secret string) *HMACAuthenticator {
	return &HMACAuthenticator{secret: []byte(secret)}
}

// Authenticate extracts the bearer token from the Authorization header, or
// from the "token" query parameter for websocket upgrades that cannot set
// headers.
func (a *HMACAuthenticator) Authenticate(r *http.Request) (string, error) {
	token := bearerToken(r)
	if token == "" {
		token = strings.TrimSpace(r.URL.Query().Get("token"))
	}
	if token == "" {
		return "", ErrNoToken
	}
	return a.Verify(token)
}

// IssueToken signs a token for owner valid for ttl.
func (a *HMACAuthenticator) IssueToken(owner string, ttl time.Duration) string {
	payload := fmt.Sprintf("%s|%d", owner, time.Now().Add(ttl).Unix())
	encoded := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return encoded + "." + a.sign(encoded)
}

// Verify checks the token's signature and expiry and returns the owner.
func (a *HMACAuthenticator) Verify(token string) (string, error) {
	encoded, sig, ok := strings.Cut(token, ".")
	if !ok {
		return "", ErrInvalidToken
	}
	if !hmac.Equal([]byte(a.sign(encoded)), []byte(sig)) {
		return "", ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidToken
	}
	owner, expiryStr, ok := strings.Cut(string(payload), "|")
	if !ok || owner == "" {
		return "", ErrInvalidToken
	}
	expiry, err := strconv.ParseInt(expiryStr, 10, 64)
	if err != nil {
		return "", ErrInvalidToken
	}
	if time.Now().Unix() > expiry {
		return "", ErrExpiredToken
	}

	return owner, nil
}

func (a *HMACAuthenticator) sign(encoded string) string {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
