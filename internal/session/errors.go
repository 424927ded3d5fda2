// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package session

import "errors"

var (
	// ErrNoSession is returned when an operation needs a token pair and
	// none is stored.
	ErrNoSession = errors.New("no active session")

	// ErrRefreshTokenExpired is returned when the stored refresh token is
	// already past its expiry, so the server is not even asked.
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// ErrRefreshFailed wraps every remote refresh failure. The session is
	// cleared before it is returned.
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrSessionChanged is returned by a refresh whose result was discarded
	// because the pair was replaced or cleared while the call was in flight.
	ErrSessionChanged = errors.New("session changed during refresh")

	// ErrInvalidTokenResponse is returned when the server answers with an
	// access token that cannot be decoded or is already expired.
	ErrInvalidTokenResponse = errors.New("invalid token in server response")

	// ErrIllegalTransition is returned when a guard activation is asked to
	// move along an edge that is not in the transition table.
	ErrIllegalTransition = errors.New("illegal route guard transition")
)
