package session

import (
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-drive-client/internal/logger"
)

const (
	headerAuthorization = "Authorization"
	bearerPrefix        = "Bearer "
)

// Authorizer attaches the access token to outgoing requests. It is meant to
// be registered as a resty OnBeforeRequest middleware.
//
// The header is set only while the token is unexpired. An expired or
// missing token sends the request unauthenticated; recovery is left to the
// route guard, so the authorizer never refreshes and never blocks.
type Authorizer struct {
	tokens *TokenStore
	logger *logger.Logger
	now    func() time.Time
}

// NewAuthorizer returns an authorizer reading from tokens.
func NewAuthorizer(tokens *TokenStore, log *logger.Logger) *Authorizer {
	return &Authorizer{tokens: tokens, logger: log, now: time.Now}
}

// Authorize implements the middleware signature of resty.RequestMiddleware.
func (a *Authorizer) Authorize(_ *resty.Client, req *resty.Request) error {
	pair, ok := a.tokens.Get()
	if !ok || pair.Access.Expired(a.now()) {
		req.Header.Del(headerAuthorization)
		if ok {
			a.logger.Debug().Str("func", "Authorizer.Authorize").Str("url", req.URL).Msg("access token expired, sending unauthenticated")
		}
		return nil
	}

	req.SetHeader(headerAuthorization, bearerPrefix+pair.Access.Raw)
	return nil
}
