package tui

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xerophayze/searxup/internal/searxup"
)

type stepStatus int

const (
	stepPending stepStatus = iota
	stepRunning
	stepDone
	stepWarned
	stepFailed
)

type progressStep struct {
	stage  searxup.Stage
	status stepStatus
	err    error
}

type stepDoneMsg struct {
	index int
	err   error
}

type progressModel struct {
	state   *wizardState
	steps   []progressStep
	spinner spinner.Model
	log     *searxup.RunLog
	done    bool
	errMsg  string
}

func newProgressModel(state *wizardState) *progressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &progressModel{
		state:   state,
		spinner: sp,
	}
}

func (m *progressModel) Init() tea.Cmd {
	m.done = false
	m.errMsg = ""
	m.steps = nil

	profile, err := m.state.profile()
	if err != nil {
		m.errMsg = err.Error()
		m.done = true
		return nil
	}

	log, err := searxup.OpenRunLog(m.state.cfg.ProjectDir)
	if err != nil {
		m.errMsg = err.Error()
		m.done = true
		return nil
	}
	m.log = log
	m.state.logPath = log.Path()

	driver := &searxup.Driver{
		Cfg:    m.state.cfg,
		Runner: &searxup.ExecRunner{LogWriter: log.Writer()},
		Log:    log,
		// Re-addressing consent was collected on the network screen.
	}
	stages := driver.Stages(m.state.plan, profile, searxup.DeployOptions{
		ApplyAddress: m.state.applyAddress,
	})
	for _, stage := range stages {
		m.steps = append(m.steps, progressStep{stage: stage})
	}
	m.steps[0].status = stepRunning

	return tea.Batch(m.spinner.Tick, m.runStep(0))
}

func (m *progressModel) runStep(index int) tea.Cmd {
	return func() tea.Msg {
		_, err := captureOutput(func() error {
			return m.steps[index].stage.Run(context.Background())
		})
		return stepDoneMsg{index: index, err: err}
	}
}

// captureOutput redirects stdout/stderr while fn runs so external tool
// chatter does not tear the alternate screen; the run log still gets
// everything through the runner's LogWriter.
func captureOutput(fn func() error) (string, error) {
	oldOut, oldErr := os.Stdout, os.Stderr
	r, w, _ := os.Pipe()
	os.Stdout, os.Stderr = w, w
	err := fn()
	w.Close()
	os.Stdout, os.Stderr = oldOut, oldErr
	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String(), err
}

func (m *progressModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case stepDoneMsg:
		step := &m.steps[msg.index]
		step.status = stepDone
		if msg.err != nil {
			step.err = msg.err
			if step.stage.Fatal {
				step.status = stepFailed
				m.errMsg = fmt.Sprintf("stage %s: %v", step.stage.Name, msg.err)
				m.done = true
				m.closeLog()
				return m, nil
			}
			step.status = stepWarned
		}

		next := msg.index + 1
		if next >= len(m.steps) {
			m.done = true
			m.closeLog()
			return m, func() tea.Msg { return navigateMsg{to: screenComplete} }
		}
		m.steps[next].status = stepRunning
		return m, m.runStep(next)

	case tea.KeyMsg:
		if m.done && m.errMsg != "" {
			if isEnter(msg) || isEsc(msg) {
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m *progressModel) closeLog() {
	if m.log != nil {
		_ = m.log.Close()
		m.log = nil
	}
}

func (m *progressModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Deploying"))
	b.WriteString("\n\n")

	for _, step := range m.steps {
		var icon string
		switch step.status {
		case stepPending:
			icon = mutedStyle.Render("  ")
		case stepRunning:
			icon = m.spinner.View()
		case stepDone:
			icon = successStyle.Render("OK")
		case stepWarned:
			icon = warningStyle.Render("!!")
		case stepFailed:
			icon = errorStyle.Render("XX")
		}
		b.WriteString(fmt.Sprintf("  %s %s", icon, normalStyle.Render(step.stage.Name)))
		if step.status == stepWarned && step.err != nil {
			b.WriteString("  " + mutedStyle.Render(step.err.Error()))
		}
		b.WriteString("\n")
	}

	if m.state.logPath != "" {
		b.WriteString("\n" + mutedStyle.Render("  log: "+m.state.logPath) + "\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("  Error: " + m.errMsg))
		b.WriteString(helpStyle.Render("\n  press enter or esc to exit"))
	}

	return b.String()
}
