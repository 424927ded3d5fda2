// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package session owns the authentication lifecycle of the drive client.
//
// A [TokenStore] holds the current access/refresh pair and persists it
// through a [store.TokenRepository]. The [RefreshCoordinator] exchanges an
// expired access token for a new one, sharing a single in-flight call among
// all concurrent callers. The [Authorizer] decorates outgoing requests with
// the access token while it is still valid and never blocks. The
// [RouteGuard] decides whether a protected view may be entered, refreshing
// the session when needed. [Session] ties these together with the explicit
// Login, Register, Logout and Refresh actions.
package session
