package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Launcher builds a live view for the named lattice.
type Launcher func(name string, periods, particles int) (Model, error)

const (
	stateMenu = iota
	stateConfig
	stateLive
)

var (
	menuHead   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuArrow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuActive = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuIdle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuValue  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuKey    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

// Menu lists lattices, lets the user set the run length and beam size, and
// then hands over to the live view.
type Menu struct {
	state, cursor int
	names         []string
	info          map[string]string
	launch        Launcher

	selected    string
	params      map[string]int
	paramNames  []string
	paramCursor int
	editing     bool
	editBuf     string
	err         error

	live Model
}

// NewMenu lists names; info holds an optional one-line description per name.
func NewMenu(names []string, info map[string]string, launch Launcher) Menu {
	return Menu{
		names:      names,
		info:       info,
		launch:     launch,
		params:     map[string]int{"periods": 10, "particles": 2000},
		paramNames: []string{"periods", "particles"},
	}
}

func (m Menu) Init() tea.Cmd { return nil }

func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateLive {
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.state == stateConfig {
			return m.configKey(msg)
		}
		return m.menuKey(msg)
	}
	return m, nil
}

func (m Menu) menuKey(msg tea.KeyMsg) (Menu, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.names)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.names) == 0 {
			return m, nil
		}
		m.selected = m.names[m.cursor]
		m.state, m.paramCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m Menu) configKey(msg tea.KeyMsg) (Menu, tea.Cmd) {
	name := m.paramNames[m.paramCursor]
	if m.editing {
		switch msg.String() {
		case "enter":
			var val int
			if _, err := fmt.Sscanf(m.editBuf, "%d", &val); err == nil && val > 0 {
				m.params[name] = val
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
				m.editBuf += s
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(m.paramNames)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, fmt.Sprint(m.params[name])
	case "left", "h":
		if m.params[name] > 1 {
			m.params[name]--
		}
	case "right", "l":
		m.params[name]++
	case "s":
		live, err := m.launch(m.selected, m.params["periods"], m.params["particles"])
		if err != nil {
			m.err = err
			return m, nil
		}
		m.live, m.state = live, stateLive
		return m, m.live.Init()
	}
	return m, nil
}

func (m Menu) View() string {
	switch m.state {
	case stateConfig:
		return m.viewConfig()
	case stateLive:
		return m.live.View()
	}
	return m.viewMenu()
}

func header(title, sub string) string {
	return "\n\n    " + menuHead.Render(title) + "\n    " + menuSub.Render(sub) +
		"\n    " + menuSub.Render("─────────────────────────") + "\n\n"
}

func keys(pairs ...string) string {
	var b strings.Builder
	b.WriteString("\n   ")
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(" " + menuKey.Render(pairs[i]) + menuIdle.Render(" "+pairs[i+1]+" "))
	}
	return b.String() + "\n"
}

func (m Menu) viewMenu() string {
	var b strings.Builder
	b.WriteString(header("BEAMSIM", "beam optics tracking"))
	for i, name := range m.names {
		desc := m.info[name]
		if len(desc) > 32 {
			desc = desc[:29] + "..."
		}
		if i == m.cursor {
			fmt.Fprintf(&b, "    %s %s  %s\n", menuArrow.Render("▸"), menuActive.Render(fmt.Sprintf("%-18s", name)), menuValue.Render(desc))
		} else {
			fmt.Fprintf(&b, "    %s  %s\n", menuIdle.Render(fmt.Sprintf("  %-18s", name)), menuSub.Render(desc))
		}
	}
	b.WriteString(keys("j/k", "navigate", "enter", "select", "q", "quit"))
	return b.String()
}

func (m Menu) viewConfig() string {
	var b strings.Builder
	b.WriteString(header(strings.ToUpper(m.selected), m.info[m.selected]))
	for i, name := range m.paramNames {
		val := fmt.Sprintf("%8d", m.params[name])
		if m.editing && i == m.paramCursor {
			val = fmt.Sprintf("%8s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			fmt.Fprintf(&b, "    %s %s %s\n", menuArrow.Render("▸"), menuActive.Render(fmt.Sprintf("%-10s", name)), menuValue.Bold(true).Render(val))
		} else {
			fmt.Fprintf(&b, "    %s %s\n", menuIdle.Render(fmt.Sprintf("  %-10s", name)), menuSub.Render(val))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(m.err.Error()) + "\n")
	}
	b.WriteString(keys("j/k", "select", "h/l", "adjust", "s", "start", "esc", "back"))
	return b.String()
}

// RunMenu shows m until the user quits.
func RunMenu(m Menu) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
