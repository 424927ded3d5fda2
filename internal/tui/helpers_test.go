package tui

import (
	"context"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-drive-client/internal/logger"
	"github.com/MKhiriev/go-drive-client/internal/mock"
	"github.com/MKhiriev/go-drive-client/internal/service"
	"github.com/MKhiriev/go-drive-client/internal/session"
	"github.com/MKhiriev/go-drive-client/models"
)

var seq atomic.Int64

func mintToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "user",
		ID:        strconv.FormatInt(seq.Add(1), 10),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return raw
}

// fakeCreds backs the route guard.
type fakeCreds struct {
	pair       models.TokenPair
	ok         bool
	refreshErr error
	refreshes  int
}

func (c *fakeCreds) Tokens() (models.TokenPair, bool) { return c.pair, c.ok }

func (c *fakeCreds) Refresh(context.Context) error {
	c.refreshes++
	return c.refreshErr
}

func loggedIn(t *testing.T) *fakeCreds {
	t.Helper()
	return &fakeCreds{
		pair: models.NewTokenPair(mintToken(t, time.Now().Add(time.Hour)), mintToken(t, time.Now().Add(24*time.Hour))),
		ok:   true,
	}
}

type fakeAuth struct {
	loginErr   error
	registered string
	logouts    int
}

func (a *fakeAuth) Login(context.Context, string, string) error { return a.loginErr }

func (a *fakeAuth) Register(context.Context, models.RegisterRequest) (string, error) {
	return a.registered, nil
}

func (a *fakeAuth) Logout(context.Context) error {
	a.logouts++
	return nil
}

type fixture struct {
	api      *mock.MockServerAdapter
	services *service.ClientServices
	auth     *fakeAuth
	root     RootModel
}

func newFixture(t *testing.T, creds session.Credentials) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	api := mock.NewMockServerAdapter(ctrl)
	services := service.NewClientServices(api, logger.Nop())
	auth := &fakeAuth{}

	root := NewRootModel(context.Background(), Deps{
		Auth:        auth,
		Guard:       session.NewRouteGuard(creds, logger.Nop()),
		Services:    services,
		DownloadDir: t.TempDir(),
	})
	return &fixture{api: api, services: services, auth: auth, root: root}
}

// send feeds msg to the root model and keeps the result.
func (f *fixture) send(t *testing.T, msg interface{}) {
	t.Helper()
	next, _ := f.root.Update(msg)
	root, ok := next.(RootModel)
	require.True(t, ok)
	f.root = root
}

// resolve completes the pending guard activation the way its command would.
func (f *fixture) resolve(t *testing.T) {
	t.Helper()
	act := f.root.activation
	require.NotNil(t, act, "no pending activation")
	f.send(t, guardResolvedMsg{activation: act, decision: act.Resolve(context.Background())})
}
