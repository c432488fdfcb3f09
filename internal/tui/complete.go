package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xerophayze/searxup/internal/searxup"
)

type completeModel struct {
	state *wizardState
}

func newCompleteModel(state *wizardState) *completeModel {
	return &completeModel{state: state}
}

func (m *completeModel) Init() tea.Cmd {
	return nil
}

func (m *completeModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isEnter(msg) || isEsc(msg) || msg.String() == "q" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *completeModel) View() string {
	var b strings.Builder

	b.WriteString(successStyle.Render("  Deployment Complete!"))
	b.WriteString("\n\n")

	profile, err := m.state.profile()
	host := ""
	if err == nil {
		host = profile.EffectiveHost
	}

	b.WriteString(fmt.Sprintf("  Variant:  %s\n", selectedStyle.Render(m.state.variant.String())))
	b.WriteString(fmt.Sprintf("  Project:  %s\n", normalStyle.Render(m.state.cfg.ProjectDir)))
	if host != "" {
		b.WriteString(fmt.Sprintf("  Web:      %s\n", selectedStyle.Render("https://"+host)))
		if m.state.variant.NeedsPlaintextPort() {
			b.WriteString(fmt.Sprintf("  API:      %s\n",
				normalStyle.Render(fmt.Sprintf("http://%s:%d", host, m.state.cfg.HTTPPort))))
		}
	}
	if m.state.logPath != "" {
		b.WriteString(fmt.Sprintf("  Log:      %s\n", mutedStyle.Render(m.state.logPath)))
	}

	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("  Next Steps"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("  $ searxup status   # effective config + container status"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("  $ searxup doctor   # re-run the host checks"))
	b.WriteString("\n")
	if m.state.variant == searxup.VariantLocalHostname || m.state.variant == searxup.VariantDualHTTPHTTPS {
		b.WriteString(mutedStyle.Render("  The first HTTPS visit will warn about the self-signed certificate."))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("\n  enter or q: exit"))
	return b.String()
}
