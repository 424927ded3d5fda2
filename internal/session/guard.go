package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-drive-client/internal/logger"
	"github.com/MKhiriev/go-drive-client/models"
)

// GuardState is the state of one route guard activation.
type GuardState int

const (
	GuardUnknown GuardState = iota
	GuardRefreshing
	GuardAuthorized
	GuardUnauthorized
)

func (s GuardState) String() string {
	switch s {
	case GuardUnknown:
		return "unknown"
	case GuardRefreshing:
		return "refreshing"
	case GuardAuthorized:
		return "authorized"
	case GuardUnauthorized:
		return "unauthorized"
	default:
		return fmt.Sprintf("guard_state(%d)", int(s))
	}
}

// Terminal reports whether no transition leaves s.
func (s GuardState) Terminal() bool {
	return len(guardTransitions[s]) == 0
}

var guardTransitions = map[GuardState][]GuardState{
	GuardUnknown:      {GuardAuthorized, GuardUnauthorized, GuardRefreshing},
	GuardRefreshing:   {GuardAuthorized, GuardUnauthorized},
	GuardAuthorized:   nil,
	GuardUnauthorized: nil,
}

func canTransition(from, to GuardState) bool {
	for _, next := range guardTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// DefaultLoginRoute is where unauthorized activations are redirected.
const DefaultLoginRoute = "login"

// Credentials is what the guard needs from the session.
type Credentials interface {
	// Tokens returns the current pair, if any.
	Tokens() (models.TokenPair, bool)
	// Refresh renews the access token; a non-nil error means the session
	// is gone.
	Refresh(ctx context.Context) error
}

// Decision is the outcome of a resolved activation.
type Decision struct {
	State GuardState
	// Destination is the view the activation was made for. It is kept on
	// redirect so the login view can send the user back there.
	Destination string
	// RedirectTo is set only when State is GuardUnauthorized.
	RedirectTo string
	// Err is the refresh failure behind an unauthorized decision, if any.
	Err error
}

// Allowed reports whether the destination may be rendered.
func (d Decision) Allowed() bool {
	return d.State == GuardAuthorized
}

// RouteGuard gates protected views on the session.
type RouteGuard struct {
	creds      Credentials
	logger     *logger.Logger
	now        func() time.Time
	loginRoute string
}

// NewRouteGuard returns a guard consulting creds.
func NewRouteGuard(creds Credentials, log *logger.Logger) *RouteGuard {
	return &RouteGuard{
		creds:      creds,
		logger:     log,
		now:        time.Now,
		loginRoute: DefaultLoginRoute,
	}
}

// Activate starts a fresh activation for destination in the Unknown state.
func (g *RouteGuard) Activate(destination string) *Activation {
	return &Activation{
		guard:       g,
		destination: destination,
		state:       GuardUnknown,
		history:     []GuardState{GuardUnknown},
	}
}

// Check activates destination and resolves it in one step.
func (g *RouteGuard) Check(ctx context.Context, destination string) Decision {
	return g.Activate(destination).Resolve(ctx)
}

// Activation is a single attempt to enter a protected view. It resolves at
// most once; later Resolve calls return the same decision.
type Activation struct {
	guard       *RouteGuard
	destination string

	once     sync.Once
	decision Decision

	mu      sync.Mutex
	state   GuardState
	history []GuardState
}

// State returns the current state. It is safe to call while Resolve runs.
func (a *Activation) State() GuardState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// History returns every state the activation went through, in order.
func (a *Activation) History() []GuardState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]GuardState(nil), a.history...)
}

// Destination returns the view the activation guards.
func (a *Activation) Destination() string {
	return a.destination
}

// Resolve drives the activation to a terminal state.
func (a *Activation) Resolve(ctx context.Context) Decision {
	a.once.Do(func() {
		a.decision = a.resolve(ctx)
	})
	return a.decision
}

func (a *Activation) resolve(ctx context.Context) Decision {
	pair, ok := a.guard.creds.Tokens()
	switch {
	case !ok:
		return a.finish(GuardUnauthorized, nil)
	case !pair.Access.Expired(a.guard.now()):
		return a.finish(GuardAuthorized, nil)
	}

	// a malformed access token takes this path as well
	if err := a.transition(GuardRefreshing); err != nil {
		return Decision{State: a.State(), Destination: a.destination, Err: err}
	}
	if err := a.guard.creds.Refresh(ctx); err != nil {
		// a login that replaced the pair mid-refresh leaves a usable session
		if errors.Is(err, ErrSessionChanged) {
			if pair, ok := a.guard.creds.Tokens(); ok && !pair.Access.Expired(a.guard.now()) {
				return a.finish(GuardAuthorized, nil)
			}
		}
		return a.finish(GuardUnauthorized, err)
	}
	return a.finish(GuardAuthorized, nil)
}

func (a *Activation) finish(to GuardState, cause error) Decision {
	if err := a.transition(to); err != nil {
		return Decision{State: a.State(), Destination: a.destination, Err: err}
	}

	d := Decision{State: to, Destination: a.destination, Err: cause}
	if to == GuardUnauthorized {
		d.RedirectTo = a.guard.loginRoute
	}
	return d
}

func (a *Activation) transition(to GuardState) error {
	a.mu.Lock()
	from := a.state
	if !canTransition(from, to) {
		a.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	a.state = to
	a.history = append(a.history, to)
	a.mu.Unlock()

	a.guard.logger.Debug().
		Str("func", "Activation.transition").
		Str("destination", a.destination).
		Stringer("from", from).
		Stringer("to", to).
		Msg("route guard transition")
	return nil
}
