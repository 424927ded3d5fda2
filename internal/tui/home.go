package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-drive-client/models"
)

type homeItem struct {
	label string
	page  string
	// locked reports whether the package lacks the feature behind the item.
	locked func(models.Permissions) bool
}

// homeModel is the dashboard: storage usage, package features and the
// entry points of every other protected page.
type homeModel struct {
	env *env

	items   []homeItem
	idx     int
	loading bool
	usage   progress.Model
}

func newHomeModel(e *env) *homeModel {
	return &homeModel{
		env: e,
		items: []homeItem{
			{label: "Files", page: pageFiles},
			{label: "Profile", page: pageProfile},
			{label: "Packages & billing", page: pageBilling},
			{label: "AI chat", page: pageChat, locked: func(p models.Permissions) bool { return !p.Chat }},
			{label: "Image generation", page: pageImage, locked: func(p models.Permissions) bool { return !p.Image }},
			{label: "Log out"},
		},
		usage: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

// Init refreshes every category; a restored session starts with an empty
// snapshot and no username.
func (m *homeModel) Init() tea.Cmd {
	m.loading = true
	ctx := m.env.ctx
	services := m.env.services
	return func() tea.Msg {
		err := services.Resources.RefreshAll(ctx)
		if services.Account.CurrentUsername() == "" {
			if _, uerr := services.Account.FetchUsername(ctx); err == nil {
				err = uerr
			}
		}
		return snapshotRefreshedMsg{err: err}
	}
}

func (m *homeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotRefreshedMsg:
		m.loading = false
		return m, reauthOn(msg.err)
	case opDoneMsg:
		if msg.op == "logout" {
			return m, func() tea.Msg { return loggedOutMsg{} }
		}
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.up):
			if m.idx > 0 {
				m.idx--
			}
		case key.Matches(msg, keys.down):
			if m.idx < len(m.items)-1 {
				m.idx++
			}
		case key.Matches(msg, keys.refresh):
			return m, m.Init()
		case key.Matches(msg, keys.enter):
			item := m.items[m.idx]
			if item.page == "" {
				return m, m.cmdLogout()
			}
			return m, navigate(item.page)
		}
	}
	return m, nil
}

func (m *homeModel) View() string {
	snap := m.env.services.Resources.Snapshot()

	var b strings.Builder
	fmt.Fprintf(&b, "Signed in as: %s\n\n", valueOrDash(m.env.services.Account.CurrentUsername()))

	switch {
	case snap.StorageLoaded:
		fmt.Fprintf(&b, "Storage: %s of %s used (%s free)\n", snap.Storage.Used, snap.Storage.Total, snap.Storage.Remaining)
		b.WriteString(m.usage.ViewAs(snap.Storage.UsedPercentage / 100))
		b.WriteString("\n")
	case m.loading:
		b.WriteString("Storage: loading...\n")
	default:
		b.WriteString("Storage: unavailable\n")
	}

	if snap.PermissionsLoaded {
		fmt.Fprintf(&b, "Chat: %s │ Image generation: %s\n", enabled(snap.Permissions.Chat), enabled(snap.Permissions.Image))
	}
	b.WriteString("\n")

	for i, item := range m.items {
		label := item.label
		if item.locked != nil && snap.PermissionsLoaded && item.locked(snap.Permissions) {
			label = lockedStyle.Render(label) + helpStyle.Render(" (upgrade to unlock)")
		}
		b.WriteString(cursor(i == m.idx))
		b.WriteString(" ")
		b.WriteString(label)
		b.WriteString("\n")
	}

	return renderPage("HOME", strings.TrimRight(b.String(), "\n"), "↑/↓: select │ enter: open │ r: refresh")
}

func enabled(on bool) string {
	if on {
		return "enabled"
	}
	return "not in your package"
}

func (m *homeModel) cmdLogout() tea.Cmd {
	ctx := m.env.ctx
	auth := m.env.auth
	log := m.env.logger
	return func() tea.Msg {
		if err := auth.Logout(ctx); err != nil {
			log.Err(err).Str("func", "homeModel.cmdLogout").Msg("persisted session not removed")
		}
		return opDoneMsg{op: "logout"}
	}
}
