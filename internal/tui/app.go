package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-drive-client/internal/logger"
	"github.com/MKhiriev/go-drive-client/internal/service"
	"github.com/MKhiriev/go-drive-client/internal/session"
	"github.com/MKhiriev/go-drive-client/models"
)

const (
	pageMenu     = "menu"
	pageLogin    = session.DefaultLoginRoute
	pageRegister = "register"
	pageHome     = "home"
	pageFiles    = "files"
	pageProfile  = "profile"
	pageBilling  = "billing"
	pageChat     = "chat"
	pageImage    = "image"
)

// protectedPages are entered only after the route guard authorized them.
var protectedPages = map[string]bool{
	pageHome:    true,
	pageFiles:   true,
	pageProfile: true,
	pageBilling: true,
	pageChat:    true,
	pageImage:   true,
}

const (
	toastTTL      = 6 * time.Second
	toastInterval = time.Second
)

// Guard starts route guard activations.
type Guard interface {
	Activate(destination string) *session.Activation
}

// env is shared by every page.
type env struct {
	ctx         context.Context
	auth        Authenticator
	services    *service.ClientServices
	downloadDir string
	logger      *logger.Logger
}

// RootModel is the TUI router:
// 1) keeps the active page
// 2) handles global keys (quit, build info, dismiss toasts)
// 3) runs the route guard for protected pages
// 4) delegates all other messages to the active page
type RootModel struct {
	env   *env
	guard Guard
	pages map[string]tea.Model

	current string
	// returnTo is the protected page a login redirect came from.
	returnTo string

	activation *session.Activation
	spinner    spinner.Model

	buildInfo     models.AppBuildInfo
	showBuildInfo bool
	quitByUser    bool
}

// NewRootModel registers all pages and opens the menu. Init immediately
// tries the home page, so a restored session skips the login.
func NewRootModel(ctx context.Context, deps Deps) RootModel {
	e := &env{
		ctx:         ctx,
		auth:        deps.Auth,
		services:    deps.Services,
		downloadDir: deps.DownloadDir,
		logger:      deps.Logger,
	}
	if e.logger == nil {
		e.logger = logger.Nop()
	}

	return RootModel{
		env:   e,
		guard: deps.Guard,
		pages: map[string]tea.Model{
			pageMenu:     newMenuModel(),
			pageLogin:    newLoginModel(e),
			pageRegister: newRegisterModel(e),
			pageHome:     newHomeModel(e),
			pageFiles:    newFilesModel(e),
			pageProfile:  newProfileModel(e),
			pageBilling:  newBillingModel(e),
			pageChat:     newChatModel(e),
			pageImage:    newImageModel(e),
		},
		current:   pageMenu,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		buildInfo: deps.BuildInfo,
	}
}

func (r RootModel) Init() tea.Cmd {
	return tea.Batch(
		r.pages[r.current].Init(),
		navigate(pageHome),
		r.listenNotifications(),
		toastTick(),
	)
}

func (r RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.quit):
			r.quitByUser = true
			return r, tea.Quit
		case key.Matches(msg, keys.dismiss):
			r.env.services.Notifications.Clear()
			return r, nil
		case r.showBuildInfo:
			if key.Matches(msg, keys.esc) || key.Matches(msg, keys.buildInfo) {
				r.showBuildInfo = false
			}
			return r, nil
		case r.activation != nil:
			// input waits for the guard
			return r, nil
		case r.current == pageMenu && key.Matches(msg, keys.buildInfo):
			r.showBuildInfo = true
			return r, nil
		}

	case NavigateTo:
		return r.navigate(msg.Page)

	case guardResolvedMsg:
		if msg.activation != r.activation {
			return r, nil
		}
		r.activation = nil
		if msg.decision.Allowed() {
			return r.enter(msg.decision.Destination)
		}
		r.env.logger.Info().Str("func", "RootModel.Update").Str("destination", msg.decision.Destination).
			AnErr("cause", msg.decision.Err).Msg("redirected to login")
		r.returnTo = msg.decision.Destination
		return r.enter(msg.decision.RedirectTo)

	case authDoneMsg:
		if msg.notice != "" {
			r.env.services.Notifications.Success(msg.notice)
		}
		dest := r.returnTo
		if dest == "" {
			dest = pageHome
		}
		r.returnTo = ""
		return r.navigate(dest)

	case loggedOutMsg:
		r.returnTo = ""
		return r.enter(pageMenu)

	case reauthMsg:
		if r.activation != nil || !protectedPages[r.current] {
			return r, nil
		}
		return r.navigate(r.current)

	case notificationsMsg:
		return r, r.listenNotifications()

	case toastTickMsg:
		r.env.services.Notifications.Expire(toastTTL)
		return r, toastTick()

	case uploadStartedMsg, uploadProgressMsg, uploadFinishedMsg:
		// Uploads outlive the files page; keep draining them whatever page is shown.
		updated, cmd := r.pages[pageFiles].Update(msg)
		r.pages[pageFiles] = updated
		return r, cmd

	case spinner.TickMsg:
		if r.activation == nil {
			return r, nil
		}
		var cmd tea.Cmd
		r.spinner, cmd = r.spinner.Update(msg)
		return r, cmd
	}

	updated, cmd := r.pages[r.current].Update(msg)
	r.pages[r.current] = updated
	return r, cmd
}

func (r RootModel) View() string {
	var body string
	switch {
	case r.showBuildInfo:
		body = renderBuildInfoWindow(r.buildInfo)
	case r.activation != nil:
		body = renderPage("GODRIVE", r.spinner.View()+" Checking your session...", "")
	default:
		body = r.pages[r.current].View()
	}

	if toasts := renderToasts(r.env.services.Notifications.List()); toasts != "" {
		body += "\n\n" + toasts
	}
	return body
}

// navigate enters public pages directly and protected ones through a new
// guard activation.
func (r RootModel) navigate(page string) (tea.Model, tea.Cmd) {
	if _, ok := r.pages[page]; !ok {
		return r, nil
	}
	if !protectedPages[page] {
		return r.enter(page)
	}

	act := r.guard.Activate(page)
	r.activation = act
	ctx := r.env.ctx
	return r, tea.Batch(r.spinner.Tick, func() tea.Msg {
		return guardResolvedMsg{activation: act, decision: act.Resolve(ctx)}
	})
}

func (r RootModel) enter(page string) (tea.Model, tea.Cmd) {
	next, ok := r.pages[page]
	if !ok {
		return r, nil
	}
	r.showBuildInfo = false
	r.current = page
	return r, next.Init()
}

func (r RootModel) listenNotifications() tea.Cmd {
	updates := r.env.services.Notifications.Updates()
	ctx := r.env.ctx
	return func() tea.Msg {
		select {
		case <-updates:
			return notificationsMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func navigate(page string) tea.Cmd {
	return func() tea.Msg { return NavigateTo{Page: page} }
}

func toastTick() tea.Cmd {
	return tea.Tick(toastInterval, func(time.Time) tea.Msg { return toastTickMsg{} })
}
