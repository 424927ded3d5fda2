package tui

import (
	"github.com/MKhiriev/go-drive-client/internal/session"
	"github.com/MKhiriev/go-drive-client/models"
)

// NavigateTo asks the router to switch pages. Protected pages go through
// the route guard first.
type NavigateTo struct {
	Page string
}

type guardResolvedMsg struct {
	activation *session.Activation
	decision   session.Decision
}

// authDoneMsg is sent by the login and register pages once the session is
// established.
type authDoneMsg struct {
	notice string
}

type loggedOutMsg struct{}

// reauthMsg is sent by a page whose request came back 401. The router runs
// the guard again for the current page.
type reauthMsg struct{}

type notificationsMsg struct{}

type toastTickMsg struct{}

type snapshotRefreshedMsg struct {
	err error
}

type uploadStartedMsg struct {
	updates <-chan models.UploadTask
}

type uploadProgressMsg struct {
	task    models.UploadTask
	updates <-chan models.UploadTask
}

type uploadFinishedMsg struct{}

type opDoneMsg struct {
	op  string
	err error
}

type profileLoadedMsg struct {
	profile models.Profile
	err     error
}

type packagesLoadedMsg struct {
	packages []models.Package
	current  string
	err      error
}

type paymentInitiatedMsg struct {
	order models.PaymentOrder
	err   error
}

type paymentSettledMsg struct {
	result models.PaymentResult
	err    error
}

type chatLoadedMsg struct {
	conversation []models.ChatMessage
	err          error
}

type chatReplyMsg struct {
	reply models.ChatReply
	err   error
}

type imageSavedMsg struct {
	path string
	size int
	err  error
}
