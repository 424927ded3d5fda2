package adapter

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapStatus_Sentinels(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusBadGateway, ErrBadGateway},
		{http.StatusInternalServerError, ErrInternalServerError},
		{http.StatusTeapot, ErrUnexpectedStatus},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := mapStatus(tt.status, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), fmt.Sprintf("http %d", tt.status))
		})
	}
}

func TestMapStatus_Success(t *testing.T) {
	assert.NoError(t, mapStatus(http.StatusOK, []byte(`{"error":"ignored"}`)))
	assert.NoError(t, mapStatus(http.StatusCreated, nil))
	assert.NoError(t, mapStatus(http.StatusNoContent, nil))
}

func TestMapStatus_MessagePrecedence(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"error wins", `{"error":"e","message":"m","detail":"d"}`, "e"},
		{"message before detail", `{"message":"m","detail":"d"}`, "m"},
		{"detail", `{"detail":"Token is invalid or expired"}`, "Token is invalid or expired"},
		{"list message", `{"detail":["a","b"]}`, "a b"},
		{"plain text", "Folder not found\n", "Folder not found"},
		{"html is dropped", "<html><body>502</body></html>", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapStatus(http.StatusBadRequest, []byte(tt.body))

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.want, apiErr.Message)
		})
	}
}

func TestMapStatus_FieldErrors(t *testing.T) {
	body := `{"email":["Enter a valid email address."],"phone":"Invalid phone","non_field_errors":["Passwords differ."],"created":true}`
	err := mapStatus(http.StatusBadRequest, []byte(body))

	fields := FieldErrorsOf(err)
	assert.Equal(t, map[string][]string{
		"email":            {"Enter a valid email address."},
		"phone":            {"Invalid phone"},
		"non_field_errors": {"Passwords differ."},
	}, fields)
	assert.Equal(t, "email: Enter a valid email address.; Passwords differ.; phone: Invalid phone", MessageOf(err, "x"))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "", MessageOf(nil, "fallback"))
	assert.Equal(t, "fallback", MessageOf(errors.New("dial tcp: refused"), "fallback"))
	assert.Equal(t, "fallback", MessageOf(mapStatus(http.StatusInternalServerError, nil), "fallback"))

	wrapped := fmt.Errorf("create folder: %w", mapStatus(http.StatusBadRequest, []byte(`{"error":"Folder name required"}`)))
	assert.Equal(t, "Folder name required", MessageOf(wrapped, "fallback"))
	assert.ErrorIs(t, wrapped, ErrBadRequest)
}

func TestAPIError_ErrorFallsBackToStatusText(t *testing.T) {
	err := mapStatus(http.StatusNotFound, nil)
	assert.Equal(t, "not found (http 404): Not Found", err.Error())
}
