package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kako-rgb/djnoday/pkg/clock"
	"github.com/kako-rgb/djnoday/pkg/engine"
	"github.com/kako-rgb/djnoday/pkg/hold"
	"github.com/kako-rgb/djnoday/pkg/request"
)

type UI struct {
	Author string

	Engine *engine.Engine
	Clock  clock.Clock
}

// Do runs the interactive list. The engine's reconcile loop runs alongside
// the program and keeps pushing, pulling and sweeping while the UI is open.
func (d *UI) Do(ctx context.Context) error {
	if d.Engine == nil {
		return errors.New("can not open ui, no engine")
	}
	if d.Clock == nil {
		d.Clock = clock.System()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = d.Engine.Run(ctx) }()

	p := tea.NewProgram(newModel(d.Engine, d.Clock, d.Author), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

const tickEvery = 100 * time.Millisecond

type focus int

const (
	focusInput focus = iota
	focusList
)

type (
	tickMsg    time.Time
	refreshMsg struct{}
	submitMsg  struct{ err error }
	deleteMsg  struct {
		id  string
		err error
	}
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	staleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Italic(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	pendingStyle  = lipgloss.NewStyle().Faint(true).Italic(true)
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

type model struct {
	eng    *engine.Engine
	clk    clock.Clock
	author string

	input   textinput.Model
	holdBar progress.Model
	tracker *hold.Tracker

	focus  focus
	cursor int
	items  []engine.Projected
	stale  bool
	status string

	width int
}

func newModel(e *engine.Engine, c clock.Clock, author string) model {
	ti := textinput.New()
	ti.Placeholder = "request a song"
	ti.CharLimit = request.MaxTextLength
	ti.Width = 40
	ti.Focus()

	v := e.Projection()
	return model{
		eng:     e,
		clk:     c,
		author:  author,
		input:   ti,
		holdBar: progress.New(progress.WithDefaultGradient()),
		tracker: hold.NewTracker(c),
		items:   v.Items,
		stale:   v.Stale,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick(), waitEvent(m.eng))
}

func tick() tea.Cmd {
	return tea.Tick(tickEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func waitEvent(e *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-e.Events(); !ok {
			return nil
		}
		return refreshMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.holdBar.Width = min(msg.Width-8, 40)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		var cmds []tea.Cmd
		for _, id := range m.tracker.Poll() {
			if m.tracker.StartDelete(id) {
				cmds = append(cmds, m.deleteCmd(id))
			}
		}
		cmds = append(cmds, tick())
		return m, tea.Batch(cmds...)

	case refreshMsg:
		m.refresh()
		return m, waitEvent(m.eng)

	case submitMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		}
		m.refresh()
		return m, nil

	case deleteMsg:
		m.tracker.FinishDelete(msg.id, msg.err)
		m.tracker.Forget(msg.id)
		if msg.err != nil {
			m.status = msg.err.Error()
		}
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Any key while a hold is running releases it; before the threshold
	// that cancels the delete.
	if id := m.holdingID(); id != "" {
		m.tracker.Release(id)
		if m.tracker.Status(id) == hold.Cancelled {
			m.tracker.Forget(id)
			m.status = "delete cancelled"
		}
		return m, nil
	}

	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.toggleFocus()
		return m, nil
	}

	if m.focus == focusInput {
		switch key {
		case "enter":
			text := m.input.Value()
			m.input.SetValue("")
			m.status = ""
			return m, m.submitCmd(text)
		case "esc":
			m.toggleFocus()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "d":
		if m.cursor < len(m.items) {
			m.tracker.Begin(m.items[m.cursor].ID)
			m.status = ""
		}
	case "r":
		m.status = ""
		return m, m.refreshCmd()
	}
	return m, nil
}

func (m *model) toggleFocus() {
	if m.focus == focusInput {
		m.focus = focusList
		m.input.Blur()
	} else {
		m.focus = focusInput
		m.input.Focus()
	}
}

func (m *model) holdingID() string {
	for _, it := range m.items {
		if m.tracker.Status(it.ID) == hold.Holding {
			return it.ID
		}
	}
	return ""
}

func (m *model) refresh() {
	v := m.eng.Projection()
	m.items = v.Items
	m.stale = v.Stale
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *model) submitCmd(text string) tea.Cmd {
	eng, author := m.eng, m.author
	return func() tea.Msg {
		r, err := eng.Submit(author, text)
		if err != nil {
			return submitMsg{err: err}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = eng.Push(ctx, r.ID)
		return submitMsg{}
	}
}

func (m *model) deleteCmd(id string) tea.Cmd {
	eng := m.eng
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return deleteMsg{id: id, err: eng.Delete(ctx, id)}
	}
}

func (m *model) refreshCmd() tea.Cmd {
	eng := m.eng
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = eng.Pull(ctx)
		_ = eng.Drain(ctx)
		return refreshMsg{}
	}
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("DJ Noday - song requests"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.stale {
		b.WriteString(staleStyle.Render("offline - showing last known requests"))
		b.WriteString("\n\n")
	}

	if len(m.items) == 0 {
		b.WriteString(pendingStyle.Render("  no requests yet"))
		b.WriteString("\n")
	}
	for i, it := range m.items {
		cursor := "  "
		if m.focus == focusList && i == m.cursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s - %s", it.Text, it.Author)
		switch {
		case m.focus == focusList && i == m.cursor:
			line = selectedStyle.Render(line)
		case it.Pending:
			line = line + pendingStyle.Render("  sending...")
		default:
			line = line + pendingStyle.Render("  "+it.AgeDisplay)
		}
		if it.Failed != "" {
			line += errStyle.Render("  !" + it.Failed)
		}
		b.WriteString(cursor + line + "\n")

		switch m.tracker.Status(it.ID) {
		case hold.Holding:
			b.WriteString("  " + m.holdBar.ViewAs(m.tracker.Progress(it.ID)) + "\n")
		case hold.Confirmed, hold.Deleting:
			b.WriteString("  " + pendingStyle.Render("deleting...") + "\n")
		}
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(errStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("tab: switch focus - enter: request - d: hold to delete - any key: cancel - r: refresh - q: quit"))
	b.WriteString("\n")
	return b.String()
}
