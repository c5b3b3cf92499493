package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-pathfinder/pkg/pathfinder"
	"github.com/dd0wney/cluso-pathfinder/pkg/spatial"
)

type view int

const (
	gridView view = iota
	pathView
	statsView
	viewCount
)

const requestTimeout = 10 * time.Second

type keyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Enter    key.Binding
	Quit     key.Binding
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Toggle   key.Binding
	Start    key.Binding
	Goal     key.Binding
	Diagonal key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev view"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "solve"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "left"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "right"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "land/water"),
	),
	Start: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "place start"),
	),
	Goal: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "place goal"),
	),
	Diagonal: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "diagonal moves"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Enter, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab, k.Enter},
		{k.Up, k.Down, k.Left, k.Right},
		{k.Toggle, k.Start, k.Goal, k.Diagonal},
		{k.Quit},
	}
}

type model struct {
	backend     backend
	editor      *editor
	diagonal    bool
	currentView view
	pathInput   textinput.Model
	costTable   table.Model
	help        help.Model
	keys        keyMap
	width       int
	height      int
	message     string
	messageErr  bool
	startTime   time.Time
	stats       spatial.Stats
	searches    int
	lastGrid    *pathfinder.GridPathResponse
	lastPath    *pathfinder.PathResponse
	busy        bool
}

type tickMsg time.Time

type statsMsg struct {
	stats spatial.Stats
	err   error
}

type gridSolvedMsg struct {
	res     *pathfinder.GridPathResponse
	err     error
	elapsed time.Duration
}

type pathSolvedMsg struct {
	res     *pathfinder.PathResponse
	err     error
	elapsed time.Duration
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func initialModel(b backend, ed *editor) model {
	ti := textinput.New()
	ti.Placeholder = "A E"
	ti.CharLimit = 200
	ti.Width = 40

	columns := []table.Column{
		{Title: "Node", Width: 12},
		{Title: "X", Width: 8},
		{Title: "Y", Width: 8},
		{Title: "g", Width: 10},
		{Title: "h", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(false),
		table.WithHeight(8),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF00FF")).
		Bold(false)
	t.SetStyles(s)

	return model{
		backend:     b,
		editor:      ed,
		currentView: gridView,
		pathInput:   ti,
		costTable:   t,
		help:        help.New(),
		keys:        keys,
		startTime:   time.Now(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		m.fetchStats(),
	)
}

func (m model) fetchStats() tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		st, err := b.Stats(ctx)
		return statsMsg{stats: st, err: err}
	}
}

func (m model) solveGrid() tea.Cmd {
	b := m.backend
	island := m.editor.island()
	diagonal := m.diagonal
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		start := time.Now()
		res, err := b.FindGridPath(ctx, island, pathfinder.GridOptions{Diagonal: &diagonal})
		return gridSolvedMsg{res: res, err: err, elapsed: time.Since(start)}
	}
}

func (m model) solvePath(start, goal string) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		began := time.Now()
		res, err := b.FindPath(ctx, start, goal)
		return pathSolvedMsg{res: res, err: err, elapsed: time.Since(began)}
	}
}

func (m *model) setView(v view) {
	m.currentView = v
	if v == pathView {
		m.pathInput.Focus()
	} else {
		m.pathInput.Blur()
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tickMsg:
		return m, tea.Batch(tickCmd(), m.fetchStats())

	case statsMsg:
		if msg.err == nil {
			m.stats = msg.stats
		}
		return m, nil

	case gridSolvedMsg:
		m.busy = false
		m.searches++
		m.applyGrid(msg)
		return m, nil

	case pathSolvedMsg:
		m.busy = false
		m.searches++
		m.applyPath(msg)
		return m, nil

	case tea.KeyMsg:
		// Letters go to the input on the path view.
		quit := key.Matches(msg, m.keys.Quit)
		if m.currentView == pathView && msg.String() != "ctrl+c" {
			quit = false
		}
		switch {
		case quit:
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			m.setView((m.currentView + 1) % viewCount)
			return m, nil

		case key.Matches(msg, m.keys.ShiftTab):
			m.setView((m.currentView + viewCount - 1) % viewCount)
			return m, nil

		case m.currentView == gridView:
			return m, m.updateGrid(msg)

		case m.currentView == pathView && key.Matches(msg, m.keys.Enter):
			fields := strings.Fields(m.pathInput.Value())
			if len(fields) != 2 {
				m.message = "Enter a start and a goal node, e.g. \"A E\""
				m.messageErr = true
				return m, nil
			}
			if m.busy {
				return m, nil
			}
			m.busy = true
			return m, m.solvePath(fields[0], fields[1])
		}
	}

	if m.currentView == pathView {
		m.pathInput, cmd = m.pathInput.Update(msg)
		cmds = append(cmds, cmd)
		m.costTable, cmd = m.costTable.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *model) updateGrid(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.editor.move(-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.editor.move(1, 0)
	case key.Matches(msg, m.keys.Left):
		m.editor.move(0, -1)
	case key.Matches(msg, m.keys.Right):
		m.editor.move(0, 1)
	case key.Matches(msg, m.keys.Toggle):
		m.editor.toggle()
		m.lastGrid = nil
	case key.Matches(msg, m.keys.Start):
		m.editor.place(cellStart)
		m.lastGrid = nil
	case key.Matches(msg, m.keys.Goal):
		m.editor.place(cellGoal)
		m.lastGrid = nil
	case key.Matches(msg, m.keys.Diagonal):
		m.diagonal = !m.diagonal
		m.editor.path = nil
		m.lastGrid = nil
	case key.Matches(msg, m.keys.Enter):
		if m.busy {
			return nil
		}
		m.busy = true
		return m.solveGrid()
	}
	return nil
}

func (m *model) applyGrid(msg gridSolvedMsg) {
	if msg.err != nil {
		m.editor.path = nil
		m.lastGrid = nil
		m.message = fmt.Sprintf("%s: %v", pathfinder.KindOf(msg.err), msg.err)
		m.messageErr = true
		return
	}
	m.lastGrid = msg.res
	m.editor.setPath(msg.res.Path)
	if !msg.res.Found {
		m.message = fmt.Sprintf("No path found (%d expanded, %s)", msg.res.Expanded, msg.elapsed.Round(time.Microsecond))
		m.messageErr = true
		return
	}
	m.message = fmt.Sprintf("Path of %d cells, cost %.3f, %d expanded in %s",
		msg.res.Length, msg.res.TotalCost, msg.res.Expanded, msg.elapsed.Round(time.Microsecond))
	m.messageErr = false
}

func (m *model) applyPath(msg pathSolvedMsg) {
	if msg.err != nil {
		m.lastPath = nil
		m.costTable.SetRows(nil)
		m.message = fmt.Sprintf("%s: %v", pathfinder.KindOf(msg.err), msg.err)
		m.messageErr = true
		return
	}
	m.lastPath = msg.res
	rows := make([]table.Row, 0, len(msg.res.Costs))
	for _, c := range msg.res.Costs {
		rows = append(rows, table.Row{
			c.Node,
			fmt.Sprintf("%.2f", c.Coordinates[0]),
			fmt.Sprintf("%.2f", c.Coordinates[1]),
			fmt.Sprintf("%.3f", c.GCost),
			fmt.Sprintf("%.3f", c.HCost),
		})
	}
	m.costTable.SetRows(rows)
	if !msg.res.Found {
		m.message = "No path found"
		m.messageErr = true
		return
	}
	m.message = fmt.Sprintf("%s (cost %.3f) in %s",
		strings.Join(msg.res.Path, " → "), msg.res.TotalCost, msg.elapsed.Round(time.Microsecond))
	m.messageErr = false
}

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("Cluso Pathfinder"))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch m.currentView {
	case gridView:
		s.WriteString(m.renderGrid())
	case pathView:
		s.WriteString(m.renderPath())
	case statsView:
		s.WriteString(m.renderStats())
	}

	if m.message != "" {
		s.WriteString("\n\n")
		if m.messageErr {
			s.WriteString(errorStyle.Render("✗ " + m.message))
		} else {
			s.WriteString(successStyle.Render("✓ " + m.message))
		}
	}

	s.WriteString("\n\n")
	if m.currentView == gridView {
		s.WriteString(helpStyle.Render(m.help.FullHelpView(m.keys.FullHelp())))
	} else {
		s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
	}

	return s.String()
}

func (m model) renderTabs() string {
	tabs := []string{"Grid", "Path", "Stats"}
	var renderedTabs []string

	for i, tab := range tabs {
		if view(i) == m.currentView {
			renderedTabs = append(renderedTabs, activeTabStyle.Render(tab))
		} else {
			renderedTabs = append(renderedTabs, inactiveTabStyle.Render(tab))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...)
}

func (m model) renderGrid() string {
	var s strings.Builder

	moves := "4-way"
	if m.diagonal {
		moves = "8-way"
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("Island %dx%d (%s)", m.editor.rows(), m.editor.cols(), moves)))
	s.WriteString("\n\n")
	s.WriteString(gridBoxStyle.Render(m.editor.render(true)))

	return contentStyle.Render(s.String())
}

func (m model) renderPath() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render("Graph Path"))
	s.WriteString("\n\n")
	s.WriteString("Start and goal node ids:\n\n")
	s.WriteString(m.pathInput.View())
	s.WriteString("\n\n")
	s.WriteString(m.costTable.View())

	return contentStyle.Render(s.String())
}

func (m model) renderStats() string {
	uptime := time.Since(m.startTime).Round(time.Second)

	graph := fmt.Sprintf(`Graph
━━━━━━━━━━━━━━━
Nodes:        %d
Edges:        %d
Total weight: %.3f`,
		m.stats.NodeCount,
		m.stats.EdgeCount,
		m.stats.TotalWeight,
	)

	session := fmt.Sprintf(`Session
━━━━━━━━━━━━━━━
Uptime:    %s
Searches:  %d`,
		uptime,
		m.searches,
	)
	if m.lastGrid != nil {
		session += fmt.Sprintf("\nLast grid: %d cells, %d expanded", m.lastGrid.Length, m.lastGrid.Expanded)
	}
	if m.lastPath != nil {
		session += fmt.Sprintf("\nLast path: %d nodes, %d expanded", len(m.lastPath.Path), m.lastPath.Expanded)
	}

	return contentStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Top, statsBoxStyle.Render(graph), statsBoxStyle.Render(session)),
	)
}
