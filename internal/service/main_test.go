package service

import (
	"testing"

	"go.uber.org/goleak"
)

// Keep-alive connections of resty's transport may still be draining when
// the last httptest server closes.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).writeLoop"),
	)
}
