package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xerophayze/searxup/internal/searxup"
)

type screen int

const (
	screenWelcome screen = iota
	screenNetwork
	screenVariant
	screenHostname
	screenDomain
	screenEmail
	screenConfirm
	screenPreflight
	screenProgress
	screenComplete
	screenHelp
)

type navigateMsg struct {
	to screen
}

type wizardState struct {
	cfg searxup.Config

	discovery searxup.Discovery
	plan      searxup.NetworkPlan
	planReady bool

	applyAddress    bool
	addressOverride string

	variant  searxup.Variant
	hostname string
	domain   string
	email    string

	logPath string
}

// afterVariant is the screen that collects the variant's extra input;
// confirm when the variant needs none.
func (s *wizardState) afterVariant() screen {
	switch s.variant {
	case searxup.VariantLocalHostname, searxup.VariantDualHTTPHTTPS:
		return screenHostname
	case searxup.VariantPublicDomain:
		return screenDomain
	default:
		return screenConfirm
	}
}

// profile resolves the variant profile from the collected inputs. Only
// valid once planReady is set.
func (s *wizardState) profile() (searxup.VariantProfile, error) {
	return searxup.ResolveProfile(s.variant, s.plan, searxup.VariantInput{
		HostnameLabel: s.hostname,
		Domain:        s.domain,
		ContactEmail:  s.email,
	})
}

type screenModel interface {
	Init() tea.Cmd
	Update(tea.Msg) (screenModel, tea.Cmd)
	View() string
}

type rootModel struct {
	current  screen
	previous screen
	state    *wizardState
	screens  map[screen]screenModel
	width    int
	height   int
	quitting bool
}

// StartWizard runs the interactive installer.
func StartWizard() error {
	cfg, err := searxup.LoadConfig()
	if err != nil {
		return err
	}

	state := &wizardState{cfg: cfg}
	screens := map[screen]screenModel{
		screenWelcome:   newWelcomeModel(),
		screenNetwork:   newNetworkModel(state),
		screenVariant:   newVariantModel(state),
		screenHostname:  newHostnameModel(state),
		screenDomain:    newDomainModel(state),
		screenEmail:     newEmailModel(state),
		screenConfirm:   newConfirmModel(state),
		screenPreflight: newPreflightModel(state),
		screenProgress:  newProgressModel(state),
		screenComplete:  newCompleteModel(state),
		screenHelp:      newHelpModel(),
	}

	m := rootModel{
		current: screenWelcome,
		state:   state,
		screens: screens,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func (m rootModel) Init() tea.Cmd {
	return m.screens[m.current].Init()
}

func (m rootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if isQuit(msg) {
			m.quitting = true
			return m, tea.Quit
		}
		if msg.String() == "?" && m.current != screenProgress && m.current != screenHelp {
			m.previous = m.current
			m.current = screenHelp
			return m, m.screens[m.current].Init()
		}

	case navigateMsg:
		m.current = msg.to
		return m, m.screens[m.current].Init()

	case helpReturnMsg:
		m.current = m.previous
		return m, nil
	}

	s := m.screens[m.current]
	newScreen, cmd := s.Update(msg)
	m.screens[m.current] = newScreen
	return m, cmd
}

func (m rootModel) View() string {
	if m.quitting {
		return ""
	}

	content := m.screens[m.current].View()

	if m.current >= screenNetwork && m.current <= screenConfirm {
		step := int(m.current)
		total := int(screenConfirm)
		progress := mutedStyle.Render(fmt.Sprintf("Step %d of %d", step, total))
		content = content + "\n" + progress
	}
	return content
}
