// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package fakeapi is an in-memory implementation of the drive API used by
// integration tests and by cmd/devserver.
//
// It issues HS256 access/refresh token pairs, keeps bcrypt password hashes,
// enforces per-package quota and feature flags, and cascades folder deletion
// to the files inside. Nothing is persisted; a restart starts empty.
package fakeapi
