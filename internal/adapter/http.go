package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MKhiriev/go-drive-client/internal/config"
	"github.com/MKhiriev/go-drive-client/internal/logger"
	"github.com/MKhiriev/go-drive-client/internal/utils"
	"github.com/MKhiriev/go-drive-client/models"
	"github.com/go-resty/resty/v2"
)

const (
	pathLogin         = "/token/"
	pathRefresh       = "/token/refresh/"
	pathRegister      = "/v1/register/"
	pathSelf          = "/v1/self/"
	pathUsername      = "/v1/username/"
	pathUpdateProfile = "/v1/update/"
)

type httpServerAdapter struct {
	client *utils.HTTPClient
	// timeout bounds each JSON call. Uploads and downloads run until the
	// caller's context ends.
	timeout time.Duration
	logger  *logger.Logger
}

// NewHTTPServerAdapter constructs an HTTP/REST implementation of [ServerAdapter].
// It normalises and validates the base URL from adapterCfg.HTTPAddress,
// configures the underlying HTTP client with the resolved base URL, keeps
// the request timeout for JSON calls, and registers auth as a request
// middleware when it is non-nil.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPServerAdapter(adapterCfg config.ClientAdapter, auth RequestAuthorizer, log *logger.Logger) (ServerAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client := utils.NewHTTPClient(baseURL)
	if auth != nil {
		client.OnBeforeRequest(auth.Authorize)
	}

	return &httpServerAdapter{client: client, timeout: adapterCfg.RequestTimeout, logger: log}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// send performs a JSON request bounded by the adapter timeout. body and
// result may be nil.
func (h *httpServerAdapter) send(ctx context.Context, op, method, path string, body, result any) error {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	req := h.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json")
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		h.logger.Err(err).Str("func", "httpServerAdapter."+op).Str("path", path).Msg("request failed")
		return fmt.Errorf("%s request: %w", op, err)
	}
	if err = mapHTTPError(resp); err != nil {
		h.logger.Debug().Str("func", "httpServerAdapter."+op).Str("path", path).
			Int("status", resp.StatusCode()).Err(err).Msg("server rejected request")
		return err
	}
	return nil
}

// Login implements [ServerAdapter]. POST /token/.
func (h *httpServerAdapter) Login(ctx context.Context, creds models.Credentials) (models.TokenResponse, error) {
	var tokens models.TokenResponse
	if err := h.send(ctx, "Login", resty.MethodPost, pathLogin, creds, &tokens); err != nil {
		return models.TokenResponse{}, err
	}
	return tokens, nil
}

// Register implements [ServerAdapter]. POST /v1/register/; a 400 carries
// the field-level error map.
func (h *httpServerAdapter) Register(ctx context.Context, req models.RegisterRequest) (models.RegisterResponse, error) {
	var registered models.RegisterResponse
	if err := h.send(ctx, "Register", resty.MethodPost, pathRegister, req, &registered); err != nil {
		return models.RegisterResponse{}, err
	}
	return registered, nil
}

// RefreshToken implements [ServerAdapter]. POST /token/refresh/.
func (h *httpServerAdapter) RefreshToken(ctx context.Context, refresh string) (models.TokenResponse, error) {
	var tokens models.TokenResponse
	if err := h.send(ctx, "RefreshToken", resty.MethodPost, pathRefresh, models.RefreshRequest{Refresh: refresh}, &tokens); err != nil {
		return models.TokenResponse{}, err
	}
	return tokens, nil
}

// Profile implements [ServerAdapter]. GET /v1/self/.
func (h *httpServerAdapter) Profile(ctx context.Context) (models.Profile, error) {
	var envelope models.ProfileEnvelope
	if err := h.send(ctx, "Profile", resty.MethodGet, pathSelf, nil, &envelope); err != nil {
		return models.Profile{}, err
	}
	return envelope.User, nil
}

// Username implements [ServerAdapter]. GET /v1/username/.
func (h *httpServerAdapter) Username(ctx context.Context) (string, error) {
	var name models.UsernameResponse
	if err := h.send(ctx, "Username", resty.MethodGet, pathUsername, nil, &name); err != nil {
		return "", err
	}
	return name.Username, nil
}

// UpdateProfile implements [ServerAdapter]. PUT /v1/update/ with only the
// non-empty fields of update.
func (h *httpServerAdapter) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (models.Profile, error) {
	var envelope models.ProfileEnvelope
	if err := h.send(ctx, "UpdateProfile", resty.MethodPut, pathUpdateProfile, update, &envelope); err != nil {
		return models.Profile{}, err
	}
	return envelope.User, nil
}
