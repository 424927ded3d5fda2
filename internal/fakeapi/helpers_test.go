package fakeapi

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MKhiriev/go-drive-client/internal/adapter"
	"github.com/MKhiriev/go-drive-client/internal/config"
	"github.com/MKhiriev/go-drive-client/internal/logger"
	"github.com/MKhiriev/go-drive-client/models"
)

type bearer struct {
	token string
}

func (b *bearer) Authorize(_ *resty.Client, r *resty.Request) error {
	if b.token != "" {
		r.SetAuthToken(b.token)
	}
	return nil
}

type testAPI struct {
	handler *Handler
	server  *httptest.Server
}

func newTestAPI(t *testing.T, opts Options) *testAPI {
	t.Helper()
	if opts.SignKey == "" {
		opts.SignKey = "test-sign-key"
	}
	opts.BcryptCost = bcrypt.MinCost

	h, err := NewHandler(opts, logger.Nop())
	require.NoError(t, err)

	srv := httptest.NewServer(h.Init())
	t.Cleanup(srv.Close)
	return &testAPI{handler: h, server: srv}
}

// client returns an adapter talking to the fake and the authorizer whose
// token the test controls.
func (a *testAPI) client(t *testing.T) (adapter.ServerAdapter, *bearer) {
	t.Helper()
	auth := &bearer{}
	api, err := adapter.NewHTTPServerAdapter(config.ClientAdapter{
		HTTPAddress:    a.server.URL,
		RequestTimeout: 5 * time.Second,
	}, auth, logger.Nop())
	require.NoError(t, err)
	return api, auth
}

// signUp registers username and authorizes the returned client with the
// issued access token.
func (a *testAPI) signUp(t *testing.T, username string) (adapter.ServerAdapter, models.TokenResponse) {
	t.Helper()
	api, auth := a.client(t)
	resp, err := api.Register(context.Background(), models.RegisterRequest{
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Email:     username + "@example.com",
		Password:  "s3cret-pass",
		Password2: "s3cret-pass",
	})
	require.NoError(t, err)
	auth.token = resp.Token.Access
	return api, resp.Token
}

func uploadOf(name, content string) models.UploadFile {
	return models.UploadFile{Name: name, Size: int64(len(content)), Content: strings.NewReader(content)}
}
