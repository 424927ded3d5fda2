package models

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenHasNoExpiry is reported by [ParseToken] when a token decodes but
// carries no "exp" claim. The client cannot reason about validity of such a
// token, so it is treated as expired.
var ErrTokenHasNoExpiry = errors.New("token has no exp claim")

// Token is a credential issued by the drive API.
//
// The client never verifies the signature: the token is opaque apart from
// the embedded "exp" claim, which is decoded once when the token is parsed.
type Token struct {
	// Raw is the compact serialized form as received from the server and
	// sent back in the Authorization header.
	Raw string

	// ExpiresAt is the decoded "exp" claim. Zero when decoding failed.
	ExpiresAt time.Time

	// DecodeErr holds the reason the token could not be decoded, if any.
	DecodeErr error
}

// ParseToken decodes raw without verifying its signature and records the
// expiry instant. Decoding problems are kept on the returned value rather
// than returned, so a malformed token still flows through the same
// "expired" path as a stale one.
func ParseToken(raw string) Token {
	t := Token{Raw: raw}
	if raw == "" {
		t.DecodeErr = errors.New("empty token")
		return t
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(raw, &jwt.RegisteredClaims{})
	if err != nil {
		t.DecodeErr = err
		return t
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil {
		t.DecodeErr = err
		return t
	}
	if exp == nil {
		t.DecodeErr = ErrTokenHasNoExpiry
		return t
	}

	t.ExpiresAt = exp.Time
	return t
}

// IsZero reports whether the token holds no credential at all.
func (t Token) IsZero() bool {
	return t.Raw == ""
}

// Expired reports whether the token is unusable at now. A token is usable
// only while its expiry lies strictly in the future; empty or undecodable
// tokens are always expired.
func (t Token) Expired(now time.Time) bool {
	if t.Raw == "" || t.DecodeErr != nil {
		return true
	}
	return !t.ExpiresAt.After(now)
}

// String returns the raw token. It implements [fmt.Stringer].
func (t Token) String() string {
	return t.Raw
}

// TokenPair is the current session credential set: a short-lived access
// token and the longer-lived refresh token used to mint new access tokens.
type TokenPair struct {
	Access  Token
	Refresh Token
}

// NewTokenPair parses both raw tokens into a [TokenPair].
func NewTokenPair(access, refresh string) TokenPair {
	return TokenPair{Access: ParseToken(access), Refresh: ParseToken(refresh)}
}

// TokenResponse is the wire shape of the login and refresh endpoints.
// Refresh is absent on refresh responses unless the server rotates it.
type TokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// RefreshRequest is the body of POST /token/refresh/.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}
