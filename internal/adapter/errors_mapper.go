package adapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

const nonFieldErrors = "non_field_errors"

// message keys in order of preference
var messageKeys = []string{"error", "message", "detail"}

func mapHTTPError(resp *resty.Response) error {
	return mapStatus(resp.StatusCode(), resp.Body())
}

func mapStatus(status int, body []byte) error {
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return nil
	}

	apiErr := &APIError{Status: status}
	parseErrorBody(apiErr, body)
	return apiErr
}

func sentinelFor(status int) error {
	switch status {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusBadGateway:
		return ErrBadGateway
	case http.StatusInternalServerError:
		return ErrInternalServerError
	default:
		return ErrUnexpectedStatus
	}
}

func parseErrorBody(apiErr *APIError, body []byte) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		if !strings.HasPrefix(trimmed, "<") {
			apiErr.Message = trimmed
		}
		return
	}

	for _, key := range messageKeys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if msg := stringsOf(raw); len(msg) > 0 {
			apiErr.Message = strings.Join(msg, " ")
			break
		}
	}

	for key, raw := range fields {
		if isMessageKey(key) {
			continue
		}
		msgs := stringsOf(raw)
		if len(msgs) == 0 {
			continue
		}
		if apiErr.FieldErrors == nil {
			apiErr.FieldErrors = make(map[string][]string)
		}
		apiErr.FieldErrors[key] = msgs
	}
}

func isMessageKey(key string) bool {
	for _, k := range messageKeys {
		if k == key {
			return true
		}
	}
	return false
}

// stringsOf accepts "msg" and ["msg", ...]; everything else yields nil.
func stringsOf(raw json.RawMessage) []string {
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		if one == "" {
			return nil
		}
		return []string{one}
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return many
	}
	return nil
}
