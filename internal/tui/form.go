package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// formField is one labelled input. name is the API field its validation
// errors arrive under.
type formField struct {
	label string
	name  string
	input textinput.Model
}

type form struct {
	fields []formField
	focus  int
}

func newInput(placeholder string, limit int, secret bool) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Width = 40
	if secret {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '*'
	}
	return in
}

func newForm(fields ...formField) form {
	f := form{fields: fields}
	if len(f.fields) > 0 {
		f.fields[0].input.Focus()
	}
	return f
}

func (f *form) focusNext() {
	f.fields[f.focus].input.Blur()
	f.focus = (f.focus + 1) % len(f.fields)
	f.fields[f.focus].input.Focus()
}

func (f *form) focusPrev() {
	f.fields[f.focus].input.Blur()
	f.focus = (f.focus - 1 + len(f.fields)) % len(f.fields)
	f.fields[f.focus].input.Focus()
}

// update forwards msg to the focused input.
func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f *form) value(i int) string {
	return strings.TrimSpace(f.fields[i].input.Value())
}

// raw returns the untrimmed value, for passwords.
func (f *form) raw(i int) string {
	return f.fields[i].input.Value()
}

func (f *form) reset() {
	for i := range f.fields {
		f.fields[i].input.Reset()
		f.fields[i].input.Blur()
	}
	f.focus = 0
	if len(f.fields) > 0 {
		f.fields[0].input.Focus()
	}
}

// view renders the fields as a two-column table with the validation
// messages of fieldErrors under the matching rows.
func (f *form) view(fieldErrors map[string][]string) string {
	labelWidth := lipgloss.Width("Field")
	for _, field := range f.fields {
		if w := lipgloss.Width(field.label); w > labelWidth {
			labelWidth = w
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s │ Value\n", labelWidth, "Field")
	b.WriteString(strings.Repeat("─", labelWidth+1) + "┼" + strings.Repeat("─", 44) + "\n")
	for _, field := range f.fields {
		fmt.Fprintf(&b, "%-*s │ [%s]\n", labelWidth, field.label, field.input.View())
		for _, msg := range fieldErrors[field.name] {
			fmt.Fprintf(&b, "%-*s │ %s\n", labelWidth, "", errorStyle.Render(msg))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
