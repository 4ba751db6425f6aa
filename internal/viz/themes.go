package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the color scheme of the live view.
type Theme struct {
	Name   string
	Title  lipgloss.Color
	Beam   lipgloss.Color
	Graph  lipgloss.Color
	Label  lipgloss.Color
	Value  lipgloss.Color
	Muted  lipgloss.Color
	Accent lipgloss.Color
	Error  lipgloss.Color
}

var (
	ThemePhosphor = Theme{
		Name:   "phosphor",
		Title:  lipgloss.Color("86"),
		Beam:   lipgloss.Color("49"),
		Graph:  lipgloss.Color("49"),
		Label:  lipgloss.Color("245"),
		Value:  lipgloss.Color("252"),
		Muted:  lipgloss.Color("240"),
		Accent: lipgloss.Color("205"),
		Error:  lipgloss.Color("196"),
	}

	ThemeMinimal = Theme{
		Name:   "minimal",
		Title:  lipgloss.Color("#ffffff"),
		Beam:   lipgloss.Color("#cccccc"),
		Graph:  lipgloss.Color("#0088ff"),
		Label:  lipgloss.Color("#888888"),
		Value:  lipgloss.Color("#ffffff"),
		Muted:  lipgloss.Color("#555555"),
		Accent: lipgloss.Color("#0088ff"),
		Error:  lipgloss.Color("#ff0000"),
	}

	ThemeSunset = Theme{
		Name:   "sunset",
		Title:  lipgloss.Color("#ff6b6b"),
		Beam:   lipgloss.Color("#feca57"),
		Graph:  lipgloss.Color("#ff9ff3"),
		Label:  lipgloss.Color("#8b6b8c"),
		Value:  lipgloss.Color("#fff5f5"),
		Muted:  lipgloss.Color("#5b4b5c"),
		Accent: lipgloss.Color("#5fd068"),
		Error:  lipgloss.Color("#ff4757"),
	}

	Themes = []Theme{ThemePhosphor, ThemeMinimal, ThemeSunset}
)

// GetTheme returns the named theme, or the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// NextTheme returns the theme after t, wrapping around.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// styles are derived from a theme each time it changes.
type styles struct {
	title, label, value, muted, accent, err, beam, graph lipgloss.Style
	stats                                                lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		title:  lipgloss.NewStyle().Foreground(t.Title).Bold(true).MarginBottom(1),
		label:  lipgloss.NewStyle().Foreground(t.Label).Width(12),
		value:  lipgloss.NewStyle().Foreground(t.Value),
		muted:  lipgloss.NewStyle().Foreground(t.Muted),
		accent: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		err:    lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		beam:   lipgloss.NewStyle().Foreground(t.Beam).Padding(1, 2),
		graph:  lipgloss.NewStyle().Foreground(t.Graph).Padding(1, 0),
		stats: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(1, 2).
			Width(48),
	}
}
