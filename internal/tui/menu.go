package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type menuItem struct {
	label string
	page  string
}

type menuModel struct {
	items []menuItem
	idx   int
}

func newMenuModel() *menuModel {
	return &menuModel{
		items: []menuItem{
			{label: "Log in", page: pageLogin},
			{label: "Create account", page: pageRegister},
		},
	}
}

func (m *menuModel) Init() tea.Cmd {
	return nil
}

func (m *menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.up):
		if m.idx > 0 {
			m.idx--
		}
	case key.Matches(keyMsg, keys.down):
		if m.idx < len(m.items)-1 {
			m.idx++
		}
	case key.Matches(keyMsg, keys.enter):
		return m, navigate(m.items[m.idx].page)
	}
	return m, nil
}

func (m *menuModel) View() string {
	var b strings.Builder
	for i, item := range m.items {
		b.WriteString(cursor(i == m.idx))
		b.WriteString(" ")
		b.WriteString(item.label)
		b.WriteString("\n")
	}
	return renderPage("GODRIVE", strings.TrimRight(b.String(), "\n"), "↑/↓: select │ enter: open │ v: about")
}
