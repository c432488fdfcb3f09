package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xerophayze/searxup/internal/searxup"
)

type confirmModel struct {
	state  *wizardState
	cursor int
	errMsg string
}

func newConfirmModel(state *wizardState) *confirmModel {
	return &confirmModel{state: state}
}

func (m *confirmModel) Init() tea.Cmd {
	m.cursor = 0
	m.errMsg = ""
	if _, err := m.state.profile(); err != nil {
		m.errMsg = err.Error()
	}
	return nil
}

func (m *confirmModel) back() screen {
	switch m.state.variant {
	case searxup.VariantLocalHostname, searxup.VariantDualHTTPHTTPS:
		return screenHostname
	case searxup.VariantPublicDomain:
		return screenEmail
	default:
		return screenVariant
	}
}

func (m *confirmModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isEsc(msg) {
			back := m.back()
			return m, func() tea.Msg { return navigateMsg{to: back} }
		}
		if (isLeft(msg) || isUp(msg)) && m.cursor > 0 {
			m.cursor--
		}
		if (isRight(msg) || isDown(msg)) && m.cursor < 2 {
			m.cursor++
		}
		if isEnter(msg) {
			switch m.cursor {
			case 0:
				if m.errMsg != "" {
					return m, nil
				}
				return m, func() tea.Msg { return navigateMsg{to: screenPreflight} }
			case 1:
				back := m.back()
				return m, func() tea.Msg { return navigateMsg{to: back} }
			case 2:
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m *confirmModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Confirm Deployment"))
	b.WriteString("\n\n")

	profile, err := m.state.profile()

	b.WriteString(subtitleStyle.Render("  Summary"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Variant:     %s\n", selectedStyle.Render(m.state.variant.String())))
	if err == nil {
		b.WriteString(fmt.Sprintf("  Host:        %s\n", selectedStyle.Render(profile.EffectiveHost)))
	}
	b.WriteString(fmt.Sprintf("  Interface:   %s\n", normalStyle.Render(m.state.plan.Interface)))
	b.WriteString(fmt.Sprintf("  Address:     %s\n", normalStyle.Render(m.state.plan.CIDR())))
	b.WriteString(fmt.Sprintf("  Gateway:     %s\n", normalStyle.Render(m.state.plan.Gateway.String())))
	if m.state.applyAddress {
		b.WriteString(fmt.Sprintf("  Re-address:  %s\n", warningStyle.Render("yes, interface will be reconfigured")))
	} else {
		b.WriteString(fmt.Sprintf("  Re-address:  %s\n", mutedStyle.Render("no")))
	}
	if m.state.domain != "" {
		b.WriteString(fmt.Sprintf("  Domain:      %s\n", normalStyle.Render(m.state.domain)))
		b.WriteString(fmt.Sprintf("  Email:       %s\n", normalStyle.Render(m.state.email)))
	}

	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("  Equivalent CLI Command"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("  $ " + m.cliCommand()))
	b.WriteString("\n\n")

	if m.errMsg != "" {
		b.WriteString(errorStyle.Render("  " + m.errMsg))
		b.WriteString("\n\n")
	}

	buttons := []string{"Deploy", "Back", "Cancel"}
	for i, btn := range buttons {
		if i == m.cursor {
			b.WriteString("  " + borderStyle.Render(selectedStyle.Render(btn)))
		} else {
			b.WriteString("  " + normalStyle.Render("["+btn+"]"))
		}
		b.WriteString("  ")
	}
	b.WriteString("\n")

	b.WriteString(helpStyle.Render("\n  left/right: navigate  enter: select  esc: back"))
	return b.String()
}

func (m *confirmModel) cliCommand() string {
	parts := []string{"searxup", "install", "--variant", m.state.variant.String()}
	if m.state.applyAddress {
		parts = append(parts, "--apply-address", "--address", m.state.plan.StaticAddress.String())
	}
	switch m.state.variant {
	case searxup.VariantLocalHostname, searxup.VariantDualHTTPHTTPS:
		parts = append(parts, "--hostname", m.state.hostname)
	case searxup.VariantPublicDomain:
		parts = append(parts, "--domain", m.state.domain, "--email", m.state.email)
	}
	return strings.Join(parts, " ")
}
