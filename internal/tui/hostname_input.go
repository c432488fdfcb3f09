package tui

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xerophayze/searxup/internal/searxup"
)

var labelRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)

type hostnameModel struct {
	state  *wizardState
	input  textinput.Model
	errMsg string
}

func newHostnameModel(state *wizardState) *hostnameModel {
	ti := textinput.New()
	ti.Placeholder = searxup.DefaultHostnameLabel
	ti.CharLimit = 63
	ti.Width = 30

	return &hostnameModel{
		state: state,
		input: ti,
	}
}

func (m *hostnameModel) Init() tea.Cmd {
	if m.state.hostname != "" {
		m.input.SetValue(m.state.hostname)
	}
	m.input.Focus()
	return textinput.Blink
}

func (m *hostnameModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isEsc(msg) {
			return m, func() tea.Msg { return navigateMsg{to: screenVariant} }
		}
		if isEnter(msg) {
			val := strings.TrimSpace(m.input.Value())
			if val == "" {
				val = searxup.DefaultHostnameLabel
			}
			if !labelRegex.MatchString(val) {
				m.errMsg = "Invalid hostname label (letters, digits, hyphens; no dots)"
				return m, nil
			}
			m.errMsg = ""
			m.state.hostname = val
			return m, func() tea.Msg { return navigateMsg{to: screenConfirm} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *hostnameModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Hostname"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("The host will be reachable as <label>.local on the LAN."))
	b.WriteString("\n\n")
	b.WriteString("  " + m.input.View())
	b.WriteString("\n")

	if m.errMsg != "" {
		b.WriteString("\n  " + errorStyle.Render(m.errMsg))
	}

	b.WriteString(helpStyle.Render("\n  enter: confirm  esc: back"))
	return b.String()
}
