package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-drive-client/models"
)

// chatVisibleMessages is how many of the latest messages are rendered.
const chatVisibleMessages = 12

type chatModel struct {
	env *env

	conversation []models.ChatMessage
	input        textinput.Model
	waiting      bool
}

func newChatModel(e *env) *chatModel {
	in := newInput("message", 2000, false)
	in.Width = 60
	return &chatModel{env: e, input: in}
}

func (m *chatModel) locked() bool {
	snap := m.env.services.Resources.Snapshot()
	return !snap.PermissionsLoaded || !snap.Permissions.Chat
}

func (m *chatModel) Init() tea.Cmd {
	if m.locked() {
		return nil
	}
	m.waiting = true
	ctx := m.env.ctx
	ai := m.env.services.AI
	return tea.Batch(m.input.Focus(), func() tea.Msg {
		conversation, err := ai.ChatHistory(ctx)
		return chatLoadedMsg{conversation: conversation, err: err}
	})
}

func (m *chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case chatLoadedMsg:
		m.waiting = false
		if msg.err == nil {
			m.conversation = msg.conversation
		}
		return m, reauthOn(msg.err)

	case chatReplyMsg:
		m.waiting = false
		if msg.err != nil {
			return m, reauthOn(msg.err)
		}
		m.conversation = msg.reply.Conversation
		return m, nil

	case opDoneMsg:
		m.waiting = false
		if msg.err == nil && msg.op == "reset_chat" {
			m.conversation = nil
		}
		return m, reauthOn(msg.err)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.esc):
			m.input.Blur()
			return m, navigate(pageHome)
		case m.locked() || m.waiting:
			return m, nil
		case key.Matches(msg, keys.enter):
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.Reset()
			m.waiting = true
			m.conversation = append(m.conversation, models.ChatMessage{Role: models.RoleUser, Content: text})
			return m, m.cmdSend(text)
		case key.Matches(msg, keys.save):
			m.waiting = true
			return m, m.cmdSave()
		case key.Matches(msg, keys.reset):
			m.waiting = true
			return m, m.cmdReset()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *chatModel) View() string {
	if m.locked() {
		return renderPage("AI CHAT", lockedStyle.Render("Chat")+" is not included in your package.\nUpgrade on the Packages page to unlock it.", "esc: back")
	}

	var b strings.Builder
	messages := m.conversation
	if len(messages) > chatVisibleMessages {
		messages = messages[len(messages)-chatVisibleMessages:]
	}
	if len(messages) == 0 {
		b.WriteString(helpStyle.Render("Ask anything to start the conversation."))
		b.WriteString("\n")
	}
	for _, msg := range messages {
		switch msg.Role {
		case models.RoleUser:
			b.WriteString(selectedStyle.Render("you") + ": " + msg.Content + "\n")
		case models.RoleAssistant:
			b.WriteString(titleStyle.Render("assistant") + ": " + msg.Content + "\n")
		}
	}

	b.WriteString("\n[" + m.input.View() + "]")
	if m.waiting {
		b.WriteString("\n" + helpStyle.Render("waiting for the assistant..."))
	}

	return renderPage("AI CHAT", b.String(), "enter: send │ ctrl+s: save │ ctrl+r: new conversation │ esc: back")
}

func (m *chatModel) cmdSend(text string) tea.Cmd {
	ctx := m.env.ctx
	ai := m.env.services.AI
	return func() tea.Msg {
		reply, err := ai.Chat(ctx, text)
		return chatReplyMsg{reply: reply, err: err}
	}
}

func (m *chatModel) cmdSave() tea.Cmd {
	ctx := m.env.ctx
	ai := m.env.services.AI
	conversation := append([]models.ChatMessage(nil), m.conversation...)
	return func() tea.Msg {
		return opDoneMsg{op: "save_chat", err: ai.SaveChat(ctx, conversation)}
	}
}

func (m *chatModel) cmdReset() tea.Cmd {
	ctx := m.env.ctx
	ai := m.env.services.AI
	return func() tea.Msg {
		return opDoneMsg{op: "reset_chat", err: ai.ResetChat(ctx)}
	}
}
