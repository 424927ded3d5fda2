// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-drive-client/internal/adapter"
)

// UserMessage translates err into the text shown in a notification. Client
// side validation errors speak for themselves, server answers carry their
// own message, and everything else gets fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrFeatureLocked),
		errors.Is(err, ErrEmptyFolderName),
		errors.Is(err, ErrEmptyMessage),
		errors.Is(err, ErrEmptyPrompt),
		errors.Is(err, ErrNothingToUpdate),
		errors.Is(err, ErrEmptyOrderID):
		return capitalize(rootMessage(err))
	case errors.Is(err, context.DeadlineExceeded):
		return "Request timed out"
	case errors.Is(err, context.Canceled):
		return "Request cancelled"
	}

	return adapter.MessageOf(err, fallback)
}

// rootMessage returns the message of the innermost wrapped error.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
