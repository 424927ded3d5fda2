// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-drive-client/internal/adapter"
	"github.com/MKhiriev/go-drive-client/internal/service"
)

const serverUnavailable = "Network unavailable or server unreachable"

// errorText is the inline message for a failed action.
func errorText(err error, fallback string) string {
	if err == nil {
		return ""
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "connection refused") ||
		strings.Contains(s, "dial tcp") ||
		strings.Contains(s, "no such host") ||
		strings.Contains(s, "network is unreachable") ||
		strings.Contains(s, "i/o timeout") {
		return serverUnavailable
	}

	return service.UserMessage(err, fallback)
}

// reauthOn asks the router to re-check the session when err is a 401.
func reauthOn(err error) tea.Cmd {
	if errors.Is(err, adapter.ErrUnauthorized) {
		return func() tea.Msg { return reauthMsg{} }
	}
	return nil
}
