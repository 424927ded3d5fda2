package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type imageModel struct {
	env *env

	input   textinput.Model
	waiting bool
	last    imageSavedMsg
	now     func() time.Time
}

func newImageModel(e *env) *imageModel {
	in := newInput("describe the image", 1000, false)
	in.Width = 60
	return &imageModel{env: e, input: in, now: time.Now}
}

func (m *imageModel) locked() bool {
	snap := m.env.services.Resources.Snapshot()
	return !snap.PermissionsLoaded || !snap.Permissions.Image
}

func (m *imageModel) Init() tea.Cmd {
	if m.locked() {
		return nil
	}
	return m.input.Focus()
}

func (m *imageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case imageSavedMsg:
		m.waiting = false
		m.last = msg
		return m, reauthOn(msg.err)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.esc):
			m.input.Blur()
			return m, navigate(pageHome)
		case m.locked() || m.waiting:
			return m, nil
		case key.Matches(msg, keys.enter):
			prompt := strings.TrimSpace(m.input.Value())
			if prompt == "" {
				return m, nil
			}
			m.waiting = true
			return m, m.cmdGenerate(prompt)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *imageModel) View() string {
	if m.locked() {
		return renderPage("IMAGE GENERATION", lockedStyle.Render("Image generation")+" is not included in your package.\nUpgrade on the Packages page to unlock it.", "esc: back")
	}

	var b strings.Builder
	b.WriteString("Prompt: [" + m.input.View() + "]\n")
	switch {
	case m.waiting:
		b.WriteString("\nGenerating...")
	case m.last.err == nil && m.last.path != "":
		fmt.Fprintf(&b, "\nSaved %s (%s)", m.last.path, humanBytes(int64(m.last.size)))
	}
	return renderPage("IMAGE GENERATION", b.String(), "enter: generate │ esc: back")
}

// cmdGenerate writes the generated image into the download directory.
func (m *imageModel) cmdGenerate(prompt string) tea.Cmd {
	ctx := m.env.ctx
	ai := m.env.services.AI
	notes := m.env.services.Notifications
	path := filepath.Join(m.env.downloadDir, fmt.Sprintf("image-%d.png", m.now().Unix()))

	return func() tea.Msg {
		img, err := ai.GenerateImage(ctx, prompt)
		if err != nil {
			return imageSavedMsg{err: err}
		}
		if err = os.WriteFile(path, img, 0o644); err != nil {
			notes.Error("Cannot save " + path)
			return imageSavedMsg{err: err}
		}
		notes.Success("Image saved to " + path)
		return imageSavedMsg{path: path, size: len(img)}
	}
}
