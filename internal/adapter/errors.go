// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrBadGateway          = errors.New("bad gateway")
	ErrInternalServerError = errors.New("internal server error")
	ErrUnexpectedStatus    = errors.New("unexpected status")

	ErrInvalidItemKind = errors.New("invalid item kind")
	ErrEmptyLink       = errors.New("empty share link")
)

// APIError is a non-2xx answer of the drive API.
type APIError struct {
	// Status is the HTTP status code.
	Status int
	// Message is the structured message of the body ("error", "message" or
	// "detail" field), or the raw body when it is not JSON.
	Message string
	// FieldErrors holds per-field validation messages, e.g. {"email": ["..."]}.
	FieldErrors map[string][]string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" && len(e.FieldErrors) > 0 {
		msg = e.fieldSummary()
	}
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s (http %d): %s", sentinelFor(e.Status), e.Status, msg)
}

// Unwrap returns the sentinel matching Status.
func (e *APIError) Unwrap() error {
	return sentinelFor(e.Status)
}

func (e *APIError) fieldSummary() string {
	fields := make([]string, 0, len(e.FieldErrors))
	for f := range e.FieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs := strings.Join(e.FieldErrors[f], " ")
		if f == nonFieldErrors {
			parts = append(parts, msgs)
			continue
		}
		parts = append(parts, f+": "+msgs)
	}
	return strings.Join(parts, "; ")
}

// MessageOf derives a user-facing message from err. It prefers the server's
// structured message, then the field errors, and returns fallback for any
// other error. A nil err yields "".
func MessageOf(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return fallback
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	if len(apiErr.FieldErrors) > 0 {
		return apiErr.fieldSummary()
	}
	return fallback
}

// FieldErrorsOf returns the per-field validation messages carried by err.
func FieldErrorsOf(err error) map[string][]string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.FieldErrors
	}
	return nil
}
