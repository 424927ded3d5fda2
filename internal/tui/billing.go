package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-drive-client/models"
)

// billingModel lists the packages and walks a purchase through initiate
// and confirm. The payment outcome is chosen by the user since there is no
// real provider.
type billingModel struct {
	env *env

	packages []models.Package
	current  string
	idx      int
	loading  bool
	busy     bool
	order    *models.PaymentOrder
}

func newBillingModel(e *env) *billingModel {
	return &billingModel{env: e}
}

func (m *billingModel) Init() tea.Cmd {
	m.loading = true
	m.order = nil
	ctx := m.env.ctx
	billing := m.env.services.Billing
	return func() tea.Msg {
		packages, err := billing.Packages(ctx)
		if err != nil {
			return packagesLoadedMsg{err: err}
		}
		current, err := billing.CurrentPackage(ctx)
		return packagesLoadedMsg{packages: packages, current: current, err: err}
	}
}

func (m *billingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case packagesLoadedMsg:
		m.loading = false
		if msg.packages != nil {
			m.packages = msg.packages
			if m.idx >= len(m.packages) {
				m.idx = 0
			}
		}
		if msg.err == nil {
			m.current = msg.current
		}
		return m, reauthOn(msg.err)

	case paymentInitiatedMsg:
		m.busy = false
		if msg.err != nil {
			return m, reauthOn(msg.err)
		}
		order := msg.order
		m.order = &order
		return m, nil

	case paymentSettledMsg:
		m.busy = false
		m.order = nil
		if msg.err != nil {
			return m, reauthOn(msg.err)
		}
		return m, m.Init()

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		if m.order != nil {
			switch {
			case key.Matches(msg, keys.yes):
				m.busy = true
				return m, m.cmdConfirm(m.order.OrderID, true)
			case key.Matches(msg, keys.no):
				m.busy = true
				return m, m.cmdConfirm(m.order.OrderID, false)
			case key.Matches(msg, keys.esc):
				m.order = nil
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, keys.esc):
			return m, navigate(pageHome)
		case key.Matches(msg, keys.up):
			if m.idx > 0 {
				m.idx--
			}
		case key.Matches(msg, keys.down):
			if m.idx < len(m.packages)-1 {
				m.idx++
			}
		case key.Matches(msg, keys.refresh):
			return m, m.Init()
		case key.Matches(msg, keys.enter):
			if m.idx < len(m.packages) {
				m.busy = true
				return m, m.cmdInitiate(m.packages[m.idx].ID)
			}
		}
	}
	return m, nil
}

func (m *billingModel) View() string {
	var b strings.Builder

	if m.order != nil {
		fmt.Fprintf(&b, "Order     │ %s\n", m.order.OrderID)
		fmt.Fprintf(&b, "Package   │ %s\n", m.order.Package)
		fmt.Fprintf(&b, "Amount    │ %s\n", m.order.Amount)
		fmt.Fprintf(&b, "Pay at    │ %s\n", valueOrDash(m.order.PaymentLink))
		if m.busy {
			b.WriteString("\nConfirming payment...")
		}
		return renderPage("CHECKOUT", strings.TrimRight(b.String(), "\n"), "y: payment succeeded │ n: payment failed │ esc: cancel")
	}

	fmt.Fprintf(&b, "Current package: %s\n\n", valueOrDash(m.current))
	if m.loading && len(m.packages) == 0 {
		b.WriteString("Loading...\n")
	}
	for i, p := range m.packages {
		marker := ""
		if p.Name == m.current {
			marker = helpStyle.Render("  (current)")
		}
		fmt.Fprintf(&b, "%s %-12s %8s%s\n", cursor(i == m.idx), p.Name, p.Price, marker)
	}
	if m.busy {
		b.WriteString("\nStarting payment...\n")
	}

	return renderPage("PACKAGES", strings.TrimRight(b.String(), "\n"), "↑/↓: select │ enter: buy │ r: refresh │ esc: back")
}

func (m *billingModel) cmdInitiate(packageID int64) tea.Cmd {
	ctx := m.env.ctx
	billing := m.env.services.Billing
	return func() tea.Msg {
		order, err := billing.InitiatePayment(ctx, packageID)
		return paymentInitiatedMsg{order: order, err: err}
	}
}

func (m *billingModel) cmdConfirm(orderID string, succeeded bool) tea.Cmd {
	ctx := m.env.ctx
	billing := m.env.services.Billing
	return func() tea.Msg {
		result, err := billing.ConfirmPayment(ctx, orderID, succeeded)
		return paymentSettledMsg{result: result, err: err}
	}
}
