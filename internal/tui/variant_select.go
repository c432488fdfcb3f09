package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xerophayze/searxup/internal/searxup"
)

type variantOption struct {
	value searxup.Variant
	label string
	desc  string
}

type variantModel struct {
	state   *wizardState
	cursor  int
	options []variantOption
}

func newVariantModel(state *wizardState) *variantModel {
	return &variantModel{
		state: state,
		options: []variantOption{
			{
				value: searxup.VariantIPOnly,
				label: "IP only",
				desc:  "Serve on the static IP with a self-signed certificate",
			},
			{
				value: searxup.VariantLocalHostname,
				label: "Local hostname",
				desc:  "Serve on <name>.local via mDNS, self-signed certificate",
			},
			{
				value: searxup.VariantPublicDomain,
				label: "Public domain",
				desc:  "Serve on a public domain with a Let's Encrypt certificate",
			},
			{
				value: searxup.VariantDualHTTPHTTPS,
				label: "Dual HTTP + HTTPS",
				desc:  "One site on <name>.local: plaintext :8888 and HTTPS :443",
			},
		},
	}
}

func (m *variantModel) Init() tea.Cmd {
	for i, opt := range m.options {
		if opt.value == m.state.variant {
			m.cursor = i
			break
		}
	}
	return nil
}

func (m *variantModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isEsc(msg) {
			return m, func() tea.Msg { return navigateMsg{to: screenNetwork} }
		}
		if isUp(msg) && m.cursor > 0 {
			m.cursor--
		}
		if isDown(msg) && m.cursor < len(m.options)-1 {
			m.cursor++
		}
		if isEnter(msg) {
			m.state.variant = m.options[m.cursor].value
			next := m.state.afterVariant()
			return m, func() tea.Msg { return navigateMsg{to: next} }
		}
	}
	return m, nil
}

func (m *variantModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Deployment Variant"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("How should the search engine be reachable?"))
	b.WriteString("\n\n")

	for i, opt := range m.options {
		radio := radioOff
		label := normalStyle.Render(opt.label)
		if i == m.cursor {
			radio = radioOn
			label = selectedStyle.Render(opt.label)
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", radio, label))
		b.WriteString(fmt.Sprintf("      %s\n", mutedStyle.Render(opt.desc)))
	}

	b.WriteString(helpStyle.Render("\n  up/down: navigate  enter: select  esc: back"))
	return b.String()
}
