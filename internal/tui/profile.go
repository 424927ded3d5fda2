package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-drive-client/internal/adapter"
	"github.com/MKhiriev/go-drive-client/models"
)

type profileModel struct {
	env *env

	profile     models.Profile
	loaded      bool
	loading     bool
	editing     bool
	submitting  bool
	form        form
	fieldErrors map[string][]string
}

func newProfileModel(e *env) *profileModel {
	return &profileModel{
		env: e,
		form: newForm(
			formField{label: "Username", name: "username", input: newInput("keep current", 150, false)},
			formField{label: "First name", name: "first_name", input: newInput("keep current", 150, false)},
			formField{label: "Last name", name: "last_name", input: newInput("keep current", 150, false)},
			formField{label: "Phone", name: "phone", input: newInput("keep current", 32, false)},
		),
	}
}

func (m *profileModel) Init() tea.Cmd {
	m.editing = false
	m.loading = true
	ctx := m.env.ctx
	account := m.env.services.Account
	return func() tea.Msg {
		profile, err := account.Profile(ctx)
		return profileLoadedMsg{profile: profile, err: err}
	}
}

func (m *profileModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case profileLoadedMsg:
		m.loading = false
		wasSubmitting := m.submitting
		m.submitting = false
		if msg.err != nil {
			if wasSubmitting {
				m.fieldErrors = adapter.FieldErrorsOf(msg.err)
			}
			return m, reauthOn(msg.err)
		}
		m.profile = msg.profile
		m.loaded = true
		m.editing = false
		m.fieldErrors = nil
		m.form.reset()
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		switch {
		case key.Matches(msg, keys.esc):
			return m, navigate(pageHome)
		case key.Matches(msg, keys.refresh):
			return m, m.Init()
		case key.Matches(msg, keys.edit):
			if m.loaded {
				m.editing = true
				m.fieldErrors = nil
				m.form.reset()
			}
		}
		return m, nil
	}

	if m.editing {
		return m, m.form.update(msg)
	}
	return m, nil
}

func (m *profileModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.esc):
		m.editing = false
		m.fieldErrors = nil
		return m, nil
	case key.Matches(msg, keys.tab):
		m.form.focusNext()
		return m, nil
	case key.Matches(msg, keys.backtab):
		m.form.focusPrev()
		return m, nil
	case key.Matches(msg, keys.enter):
		if m.submitting {
			return m, nil
		}
		m.submitting = true
		return m, m.cmdUpdate(models.ProfileUpdate{
			Username:  m.form.value(0),
			FirstName: m.form.value(1),
			LastName:  m.form.value(2),
			Phone:     m.form.value(3),
		})
	}
	return m, m.form.update(msg)
}

func (m *profileModel) View() string {
	if m.editing {
		body := m.form.view(m.fieldErrors)
		if m.submitting {
			body += "\n\n[Saving...]"
		}
		return renderPage("EDIT PROFILE", body, "tab: next field │ enter: save │ esc: cancel")
	}

	if !m.loaded {
		text := "Could not load your profile"
		if m.loading {
			text = "Loading..."
		}
		return renderPage("PROFILE", text, "r: retry │ esc: back")
	}

	p := m.profile
	var b strings.Builder
	fmt.Fprintf(&b, "Username     │ %s\n", valueOrDash(p.Username))
	fmt.Fprintf(&b, "Name         │ %s\n", valueOrDash(p.Name))
	fmt.Fprintf(&b, "Email        │ %s\n", valueOrDash(p.Email))
	fmt.Fprintf(&b, "Phone        │ %s\n", valueOrDash(p.Phone))
	fmt.Fprintf(&b, "Package      │ %s\n", valueOrDash(p.PackageName))
	fmt.Fprintf(&b, "Max storage  │ %s\n", humanBytes(int64(p.MaxStorage)))
	fmt.Fprintf(&b, "Chat         │ %s\n", enabled(bool(p.Chat)))
	fmt.Fprintf(&b, "Images       │ %s", enabled(bool(p.ImageGen)))

	return renderPage("PROFILE", b.String(), "e: edit │ r: refresh │ esc: back")
}

func (m *profileModel) cmdUpdate(update models.ProfileUpdate) tea.Cmd {
	ctx := m.env.ctx
	account := m.env.services.Account
	return func() tea.Msg {
		profile, err := account.UpdateProfile(ctx, update)
		return profileLoadedMsg{profile: profile, err: err}
	}
}
