// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the interactive drive client runtime.
//
// It wires the local session storage, the HTTP adapter, the session and
// its route guard, the client services and the terminal UI into a single
// process lifecycle.
package client
