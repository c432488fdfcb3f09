package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xerophayze/searxup/internal/searxup"
)

type discoveryDoneMsg struct {
	discovery searxup.Discovery
	err       error
}

// networkModel shows what discovery found and lets the operator keep
// the current address or pick a static one. This screen is also where
// consent for live re-addressing is collected; the driver will not
// re-address without it.
type networkModel struct {
	state    *wizardState
	loading  bool
	loadErr  string
	cursor   int // 0 = keep current, 1 = static
	input    textinput.Model
	editing  bool
	errMsg   string
	suggest  string
}

func newNetworkModel(state *wizardState) *networkModel {
	ti := textinput.New()
	ti.CharLimit = 15
	ti.Width = 20

	return &networkModel{
		state: state,
		input: ti,
	}
}

func (m *networkModel) Init() tea.Cmd {
	m.loading = true
	m.loadErr = ""
	m.errMsg = ""
	return func() tea.Msg {
		names, err := searxup.ListInterfaces()
		if err != nil {
			return discoveryDoneMsg{err: err}
		}
		d, err := searxup.Discover(names[0])
		return discoveryDoneMsg{discovery: d, err: err}
	}
}

func (m *networkModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case discoveryDoneMsg:
		m.loading = false
		if msg.err != nil {
			m.loadErr = msg.err.Error()
			return m, nil
		}
		m.state.discovery = msg.discovery
		if msg.discovery.HasAddress {
			if s := searxup.SuggestAddress(msg.discovery.Address, msg.discovery.PrefixLen); s != nil {
				m.suggest = s.String()
			}
		}
		m.input.SetValue(m.suggest)
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		if m.loadErr != "" {
			if isEsc(msg) || isEnter(msg) {
				return m, tea.Quit
			}
			return m, nil
		}
		if m.editing {
			if isEsc(msg) {
				m.editing = false
				m.input.Blur()
				return m, nil
			}
			if isEnter(msg) {
				m.editing = false
				m.input.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		if isEsc(msg) {
			return m, func() tea.Msg { return navigateMsg{to: screenWelcome} }
		}
		if isUp(msg) && m.cursor > 0 {
			m.cursor--
		}
		if isDown(msg) && m.cursor < 1 {
			m.cursor++
		}
		if isSpace(msg) && m.cursor == 1 {
			m.editing = true
			m.input.Focus()
			return m, textinput.Blink
		}
		if isEnter(msg) {
			return m.commit()
		}
	}

	if m.editing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *networkModel) commit() (screenModel, tea.Cmd) {
	overrides := searxup.PlanOverrides{}
	m.state.applyAddress = m.cursor == 1
	if m.state.applyAddress {
		addr := strings.TrimSpace(m.input.Value())
		if addr != "" && addr != m.suggest {
			overrides.Address = addr
		}
		m.state.addressOverride = addr
	} else if m.state.discovery.HasAddress {
		// Not re-addressing: artifacts must agree on the address the
		// host actually keeps.
		overrides.Address = m.state.discovery.Address.String()
	}

	plan, err := searxup.BuildPlan(m.state.discovery, overrides, m.state.cfg.FallbackDNS())
	if err != nil {
		m.errMsg = err.Error()
		return m, nil
	}
	m.errMsg = ""
	m.state.plan = plan
	m.state.planReady = true
	return m, func() tea.Msg { return navigateMsg{to: screenVariant} }
}

func (m *networkModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Network"))
	b.WriteString("\n")

	if m.loading {
		b.WriteString(mutedStyle.Render("Inspecting interfaces..."))
		return b.String()
	}
	if m.loadErr != "" {
		b.WriteString(errorStyle.Render("  " + m.loadErr))
		b.WriteString(helpStyle.Render("\n\n  press enter to exit"))
		return b.String()
	}

	d := m.state.discovery
	b.WriteString(mutedStyle.Render("Discovered network state:"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("  Interface:  %s\n", normalStyle.Render(d.Interface)))
	if d.HasAddress {
		b.WriteString(fmt.Sprintf("  Address:    %s\n", normalStyle.Render(fmt.Sprintf("%s/%d", d.Address, d.PrefixLen))))
	} else {
		b.WriteString(fmt.Sprintf("  Address:    %s\n", warningStyle.Render("none")))
	}
	if d.HasGateway {
		b.WriteString(fmt.Sprintf("  Gateway:    %s\n", normalStyle.Render(d.Gateway.String())))
	} else {
		b.WriteString(fmt.Sprintf("  Gateway:    %s\n", warningStyle.Render("none")))
	}
	b.WriteString("\n")

	options := []string{
		"Keep the current address (no re-addressing)",
		"Assign a static address",
	}
	for i, opt := range options {
		radio := radioOff
		label := normalStyle.Render(opt)
		if i == m.cursor {
			radio = radioOn
			label = selectedStyle.Render(opt)
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", radio, label))
	}

	b.WriteString("\n  " + mutedStyle.Render("Static address: ") + m.input.View())
	b.WriteString("\n")
	if m.cursor == 1 {
		b.WriteString(warningStyle.Render("  Applying a new address can drop an SSH session on the old one."))
		b.WriteString("\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n  " + errorStyle.Render(m.errMsg))
	}

	b.WriteString(helpStyle.Render("\n  up/down: choose  space: edit address  enter: continue  esc: back"))
	return b.String()
}
