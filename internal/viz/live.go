package viz

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/beamsim/internal/beam"
	"github.com/san-kum/beamsim/internal/diagnostics"
	"github.com/san-kum/beamsim/internal/elements"
	"github.com/san-kum/beamsim/internal/sim"
)

const (
	canvasWidth     = 40
	canvasHeight    = 18
	historyCapacity = 600
	sampleSize      = 2000
)

// Frame is the beam after one element, as sent to the live view.
type Frame struct {
	Period    int
	Element   int
	Name      string
	Reduced   diagnostics.Reduced
	Particles []beam.Particle
}

// Feed returns an observer that sends a frame after every element. At most
// sample particles are copied into each frame. Sends block until the view
// reads them or ctx is done.
func Feed(ctx context.Context, frames chan<- Frame, sample int) sim.Observer {
	return sim.ObserverFunc(func(period, index int, el elements.Element, c beam.Container) {
		ps := c.Slice()
		stride := 1
		if sample > 0 && len(ps) > sample {
			stride = (len(ps) + sample - 1) / sample
		}
		cp := make([]beam.Particle, 0, len(ps)/stride+1)
		for i := 0; i < len(ps); i += stride {
			cp = append(cp, ps[i])
		}

		f := Frame{Period: period, Element: index, Name: el.Name(), Reduced: diagnostics.Compute(c), Particles: cp}
		select {
		case frames <- f:
		case <-ctx.Done():
		}
	})
}

type frameMsg Frame

type doneMsg struct{ err error }

var planes = []struct {
	name string
	q, p int
}{
	{"x-px", beam.IX, beam.IPx},
	{"y-py", beam.IY, beam.IPy},
	{"t-pt", beam.IT, beam.IPt},
}

// Model is the live tracking view. Tracking runs in the background and
// pauses whenever the view stops reading frames.
type Model struct {
	title   string
	periods int

	frames <-chan Frame
	done   <-chan error
	cancel context.CancelFunc

	canvas  *Canvas
	theme   Theme
	st      styles
	plane   int
	paused  bool
	waiting bool
	over    bool
	err     error

	last     Frame
	frameCnt int
	sigmaX   []float64
	sigmaY   []float64
	emitX    []float64
	emitY    []float64
}

func NewModel(title string, periods int, frames <-chan Frame, done <-chan error, cancel context.CancelFunc) Model {
	return Model{
		title:   title,
		periods: periods,
		frames:  frames,
		done:    done,
		cancel:  cancel,
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		theme:   Themes[0],
		st:      newStyles(Themes[0]),
		sigmaX:  make([]float64, 0, historyCapacity),
		sigmaY:  make([]float64, 0, historyCapacity),
		emitX:   make([]float64, 0, historyCapacity),
		emitY:   make([]float64, 0, historyCapacity),
	}
}

// Start runs tr over c in the background and returns a view fed by it.
func Start(ctx context.Context, tr *sim.Tracker, c beam.Container, cfg sim.Config, title string) Model {
	ctx, cancel := context.WithCancel(ctx)
	frames := make(chan Frame, 4)
	done := make(chan error, 1)

	tr.AddObserver(Feed(ctx, frames, sampleSize))
	go func() {
		_, err := tr.Run(ctx, c, cfg)
		close(frames)
		done <- err
	}()
	return NewModel(title, cfg.Periods, frames, done, cancel)
}

func (m Model) wait() tea.Cmd {
	frames, done := m.frames, m.done
	return func() tea.Msg {
		f, ok := <-frames
		if !ok {
			return doneMsg{err: <-done}
		}
		return frameMsg(f)
	}
}

func (m Model) Init() tea.Cmd {
	return m.wait()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
			if !m.paused && !m.waiting && !m.over {
				m.waiting = true
				return m, m.wait()
			}
		case "p":
			m.plane = (m.plane + 1) % len(planes)
		case "t":
			m.theme = NextTheme(m.theme)
			m.st = newStyles(m.theme)
		}
	case frameMsg:
		m.waiting = false
		m.push(Frame(msg))
		if !m.paused {
			m.waiting = true
			return m, m.wait()
		}
	case doneMsg:
		m.waiting = false
		m.over = true
		m.err = msg.err
	}
	return m, nil
}

func (m *Model) push(f Frame) {
	m.last = f
	m.frameCnt++
	m.sigmaX = appendCapped(m.sigmaX, f.Reduced.X.Sigma)
	m.sigmaY = appendCapped(m.sigmaY, f.Reduced.Y.Sigma)
	m.emitX = appendCapped(m.emitX, f.Reduced.X.Emittance)
	m.emitY = appendCapped(m.emitY, f.Reduced.Y.Emittance)
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return m.st.err.Render("ERROR: " + m.err.Error())
	case m.over:
		return m.st.accent.Render("DONE")
	case m.paused:
		return m.st.accent.Render("PAUSED")
	}
	return m.st.accent.Render("TRACKING")
}

func (m Model) View() string {
	pl := planes[m.plane]
	m.canvas.Scatter(m.last.Particles, pl.q, pl.p)
	canvasView := m.st.beam.Render(m.canvas.String())

	r := m.last.Reduced
	row := func(label, value string) string {
		return m.st.label.Render(label) + m.st.value.Render(value) + "\n"
	}

	var s strings.Builder
	s.WriteString(m.st.title.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status() + "\n\n")

	progress := 0.0
	if m.periods > 0 {
		progress = float64(m.last.Period+1) / float64(m.periods)
		if m.frameCnt == 0 {
			progress = 0
		}
	}
	s.WriteString(ProgressBar(progress, 30) + fmt.Sprintf(" %d/%d\n\n", min(m.last.Period+1, m.periods), m.periods))

	s.WriteString(row("Element", fmt.Sprintf("%d %s", m.last.Element, m.last.Name)))
	s.WriteString(row("s", fmt.Sprintf("%.4f m", r.S)))
	s.WriteString(row("gamma", fmt.Sprintf("%.6g", r.Gamma)))
	s.WriteString(row("Particles", fmt.Sprintf("%d", r.N)))
	s.WriteString(row("Plane", pl.name))
	s.WriteString(row("eps_x", fmt.Sprintf("%.4e m", r.X.Emittance)))
	s.WriteString(row("eps_y", fmt.Sprintf("%.4e m", r.Y.Emittance)))
	s.WriteString(row("beta_x", fmt.Sprintf("%.4g m", r.X.Beta)))
	s.WriteString(row("beta_y", fmt.Sprintf("%.4g m", r.Y.Beta)))
	s.WriteString(row("eps_x trend", Sparkline(m.emitX, 24)))
	s.WriteString(row("eps_y trend", Sparkline(m.emitY, 24)))

	if len(m.sigmaX) > 1 {
		chart := asciigraph.PlotMany([][]float64{m.sigmaX, m.sigmaY},
			asciigraph.Height(6), asciigraph.Width(36), asciigraph.Caption("sigma x, y [m]"))
		s.WriteString(m.st.graph.Render(chart) + "\n")
	}

	s.WriteString(m.st.muted.Render("\n" + Separator(36) + "\nSP:Pause P:Plane T:Theme Q:Quit"))
	statsView := m.st.stats.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}

// Run shows m until the user quits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
