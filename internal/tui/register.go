package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-drive-client/internal/adapter"
	"github.com/MKhiriev/go-drive-client/models"
)

const (
	regUsername = iota
	regFirstName
	regLastName
	regEmail
	regPhone
	regPassword
	regPassword2
)

type registerResultMsg struct {
	message string
	err     error
}

// registerModel creates an account. The server's per-field validation
// messages are shown under the matching inputs.
type registerModel struct {
	env *env

	form        form
	submitting  bool
	errMsg      string
	fieldErrors map[string][]string
}

func newRegisterModel(e *env) *registerModel {
	return &registerModel{
		env: e,
		form: newForm(
			formField{label: "Username", name: "username", input: newInput("username", 150, false)},
			formField{label: "First name", name: "first_name", input: newInput("first name", 150, false)},
			formField{label: "Last name", name: "last_name", input: newInput("last name", 150, false)},
			formField{label: "Email", name: "email", input: newInput("email", 254, false)},
			formField{label: "Phone", name: "phone", input: newInput("phone (optional)", 32, false)},
			formField{label: "Password", name: "password", input: newInput("password", 256, true)},
			formField{label: "Repeat password", name: "password2", input: newInput("repeat password", 256, true)},
		),
	}
}

func (m *registerModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *registerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(registerResultMsg); ok {
		m.submitting = false
		if result.err != nil {
			m.fieldErrors = adapter.FieldErrorsOf(result.err)
			m.errMsg = ""
			if len(m.fieldErrors) == 0 {
				m.errMsg = errorText(result.err, "Registration failed")
			}
			return m, nil
		}

		m.errMsg = ""
		m.fieldErrors = nil
		m.form.reset()
		notice := result.message
		if notice == "" {
			notice = "Account created"
		}
		return m, func() tea.Msg { return authDoneMsg{notice: notice} }
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, keys.esc):
			m.submitting = false
			m.errMsg = ""
			m.fieldErrors = nil
			return m, navigate(pageMenu)
		case key.Matches(keyMsg, keys.tab):
			m.form.focusNext()
			return m, nil
		case key.Matches(keyMsg, keys.backtab):
			m.form.focusPrev()
			return m, nil
		case key.Matches(keyMsg, keys.enter):
			if m.submitting {
				return m, nil
			}

			req := m.request()
			if req.Username == "" || req.Email == "" || req.Password == "" {
				m.errMsg = "Username, email and password are required"
				return m, nil
			}
			if req.Password != req.Password2 {
				m.errMsg = "Passwords do not match"
				return m, nil
			}

			m.errMsg = ""
			m.fieldErrors = nil
			m.submitting = true
			return m, m.cmdRegister(req)
		}
	}

	return m, m.form.update(msg)
}

func (m *registerModel) request() models.RegisterRequest {
	return models.RegisterRequest{
		Username:  m.form.value(regUsername),
		FirstName: m.form.value(regFirstName),
		LastName:  m.form.value(regLastName),
		Email:     m.form.value(regEmail),
		Phone:     m.form.value(regPhone),
		Password:  m.form.raw(regPassword),
		Password2: m.form.raw(regPassword2),
	}
}

func (m *registerModel) View() string {
	var b strings.Builder
	b.WriteString(m.form.view(m.fieldErrors))
	b.WriteString("\n")

	if m.submitting {
		b.WriteString("\n[Creating account...]\n")
	} else {
		b.WriteString("\n[Create account]\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + m.errMsg))
		b.WriteString("\n")
	}

	return renderPage("CREATE ACCOUNT", strings.TrimRight(b.String(), "\n"), "esc: back │ tab: next field │ enter: submit")
}

func (m *registerModel) cmdRegister(req models.RegisterRequest) tea.Cmd {
	ctx := m.env.ctx
	auth := m.env.auth
	return func() tea.Msg {
		message, err := auth.Register(ctx, req)
		return registerResultMsg{message: message, err: err}
	}
}
