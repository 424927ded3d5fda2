// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package fakeapi

import (
	"errors"
	"net/http"
)

// Error is a failure answered with a fixed status and the message clients
// show to the user.
type Error struct {
	Status  int
	Message string
	// Key is the body field carrying Message: "error" or "detail".
	Key string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(status int, message string) *Error {
	return &Error{Status: status, Message: message, Key: "error"}
}

func newDetail(status int, message string) *Error {
	return &Error{Status: status, Message: message, Key: "detail"}
}

var (
	ErrInvalidCredentials = newDetail(http.StatusUnauthorized, "No active account found with the given credentials")
	ErrTokenNotValid      = newDetail(http.StatusUnauthorized, "Token is invalid or expired")
	ErrNoCredentials      = newDetail(http.StatusUnauthorized, "Authentication credentials were not provided.")

	ErrFolderNameRequired = newError(http.StatusBadRequest, "Folder name required")
	ErrFolderNotFound     = newError(http.StatusNotFound, "Folder not found")
	ErrFileNotFound       = newError(http.StatusNotFound, "File not found")
	ErrNoFile             = newError(http.StatusBadRequest, "No file provided")
	ErrQuotaExceeded      = newError(http.StatusBadRequest, "You exceeded your package storage limit")
	ErrNothingToDelete    = newError(http.StatusBadRequest, "Provide either folder_id or file_id")
	ErrEmptyFolder        = newError(http.StatusNotFound, "No files in folder")

	ErrInvalidPackage      = newError(http.StatusNotFound, "Invalid package ID")
	ErrMissingOrder        = newError(http.StatusBadRequest, "Missing order_id or status")
	ErrTransactionNotFound = newError(http.StatusNotFound, "Transaction not found")

	ErrMessageRequired      = newError(http.StatusBadRequest, "Message required")
	ErrPromptRequired       = newError(http.StatusBadRequest, "Prompt required")
	ErrConversationRequired = newError(http.StatusBadRequest, "conversation is required")
	ErrChatDisabled         = newError(http.StatusForbidden, "Chat AI not enabled for your package")
	ErrImageDisabled        = newError(http.StatusForbidden, "Image generation not enabled for your package")

	ErrInvalidJSON = newError(http.StatusBadRequest, "Invalid JSON was passed")
)

// FieldErrors is a DRF-style validation failure: {"field": ["message"]}.
type FieldErrors map[string][]string

func (f FieldErrors) Error() string {
	return "validation failed"
}

func (f FieldErrors) add(field, message string) {
	f[field] = append(f[field], message)
}

func statusFromError(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	var fields FieldErrors
	if errors.As(err, &fields) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
