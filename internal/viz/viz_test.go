package viz

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/beamsim/internal/beam"
	"github.com/san-kum/beamsim/internal/constants"
	"github.com/san-kum/beamsim/internal/diagnostics"
	"github.com/san-kum/beamsim/internal/elements"
	"github.com/san-kum/beamsim/internal/sim"
)

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func testBeam(n int) *beam.Ensemble {
	ref := beam.NewRefPart()
	ref.SetChargeQe(1).SetMassMeV(constants.ProtonMassMeV).SetEnergyMeV(250)
	ens := beam.NewEnsemble(ref, n)
	for i := range ens.Particles {
		ens.Particles[i].X = 1e-3 * float64(i-n/2)
		ens.Particles[i].Px = 1e-4 * float64(n/2-i)
	}
	return ens
}

func TestCanvasSetAndString(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)

	lines := strings.Split(strings.TrimSuffix(c.String(), "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	runes := []rune(lines[0])
	if runes[0] != brailleBlank+0x1 {
		t.Errorf("unexpected cell 0: %U", runes[0])
	}
	if runes[1] != brailleBlank+0x80 {
		t.Errorf("unexpected cell 1: %U", runes[1])
	}

	c.Clear()
	if c.Grid[0][0] != brailleBlank || c.Grid[0][1] != brailleBlank {
		t.Error("clear left dots behind")
	}
}

func TestCanvasScatter(t *testing.T) {
	c := NewCanvas(10, 5)
	ps := []beam.Particle{{X: 1, Px: 1}, {X: -1, Px: -1}}
	c.Scatter(ps, beam.IX, beam.IPx)

	// top right and bottom left cells carry the two particles
	if c.Grid[0][9] == brailleBlank {
		t.Error("expected a dot in the top right cell")
	}
	if c.Grid[4][0] == brailleBlank {
		t.Error("expected a dot in the bottom left cell")
	}

	c.Scatter(nil, beam.IX, beam.IPx)
	if c.Grid[0][9] != brailleBlank {
		t.Error("scatter did not clear the previous frame")
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil, 4); got != "────" {
		t.Errorf("empty sparkline %q", got)
	}
	if got := Sparkline([]float64{0, 1, 2, 3, 4, 5, 6, 7}, 8); got != "▁▂▃▄▅▆▇█" {
		t.Errorf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{9, 9, 0, 7}, 2); got != "▁█" {
		t.Errorf("expected last two values, got %q", got)
	}
	if got := Sparkline([]float64{3, 3}, 4); got != "▁▁" {
		t.Errorf("flat sparkline %q", got)
	}
}

func TestPlot(t *testing.T) {
	if Plot(nil, "empty", 20, 5) != "" {
		t.Error("expected empty plot for no data")
	}
	out := Plot([]float64{1, 2, 3, 2, 1}, "sigma", 20, 5)
	if !strings.Contains(out, "sigma") {
		t.Errorf("caption missing from plot:\n%s", out)
	}
}

func TestThemes(t *testing.T) {
	if GetTheme("sunset").Name != "sunset" {
		t.Error("expected sunset theme")
	}
	if GetTheme("missing").Name != Themes[0].Name {
		t.Error("unknown theme should fall back to the first")
	}
	th := Themes[0]
	for range Themes {
		th = NextTheme(th)
	}
	if th.Name != Themes[0].Name {
		t.Errorf("themes do not cycle, ended at %s", th.Name)
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("theme names incomplete")
	}
}

func TestFeedSamples(t *testing.T) {
	ens := testBeam(10)
	frames := make(chan Frame, 1)
	drift, err := elements.NewDrift(1, 1)
	if err != nil {
		t.Fatal(err)
	}

	Feed(context.Background(), frames, 4).OnElement(2, 1, drift, ens)
	f := <-frames
	if f.Period != 2 || f.Element != 1 || f.Name != "Drift" {
		t.Errorf("unexpected frame header %+v", f)
	}
	if len(f.Particles) != 4 {
		t.Fatalf("expected 4 sampled particles, got %d", len(f.Particles))
	}
	if f.Particles[1].ID != 4 {
		t.Errorf("expected stride 3, got particle %d", f.Particles[1].ID)
	}
	if f.Reduced.N != 10 {
		t.Errorf("moments should cover the whole beam, got n=%d", f.Reduced.N)
	}
}

func TestFeedStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	drift, _ := elements.NewDrift(1, 1)

	// unbuffered and unread: returns only because ctx is done
	Feed(ctx, make(chan Frame), 0).OnElement(0, 0, drift, testBeam(3))
}

func TestModelUpdate(t *testing.T) {
	canceled := false
	m := NewModel("fodo", 2, make(chan Frame), make(chan error), func() { canceled = true })

	next, cmd := m.Update(frameMsg(Frame{Period: 0, Name: "Quad", Reduced: diagnostics.Reduced{N: 5}}))
	m = next.(Model)
	if cmd == nil {
		t.Error("expected a wait command after a frame")
	}
	if m.frameCnt != 1 || len(m.sigmaX) != 1 {
		t.Errorf("frame not recorded: %d frames", m.frameCnt)
	}

	next, cmd = m.Update(key(" "))
	m = next.(Model)
	if !m.paused || cmd != nil {
		t.Error("space should pause without a new wait")
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("view should show the pause state")
	}

	next, cmd = m.Update(frameMsg(Frame{Period: 1}))
	m = next.(Model)
	if cmd != nil {
		t.Error("paused view should stop reading frames")
	}

	next, cmd = m.Update(key(" "))
	m = next.(Model)
	if m.paused || cmd == nil {
		t.Error("resume should read the next frame")
	}

	next, _ = m.Update(key("p"))
	m = next.(Model)
	if m.plane != 1 {
		t.Errorf("expected plane 1, got %d", m.plane)
	}
	next, _ = m.Update(key("t"))
	m = next.(Model)
	if m.theme.Name != Themes[1].Name {
		t.Errorf("expected theme %s, got %s", Themes[1].Name, m.theme.Name)
	}

	next, _ = m.Update(doneMsg{err: errors.New("boom")})
	m = next.(Model)
	view := m.View()
	if !m.over || !strings.Contains(view, "boom") || !strings.Contains(view, "FODO") {
		t.Errorf("unexpected final view:\n%s", view)
	}

	_, cmd = m.Update(key("q"))
	if !isQuit(cmd) || !canceled {
		t.Error("q should cancel tracking and quit")
	}
}

func TestStartTracksToCompletion(t *testing.T) {
	drift, err := elements.NewDrift(0.5, 1)
	if err != nil {
		t.Fatal(err)
	}
	tr := sim.New([]elements.Element{drift, drift})
	m := Start(context.Background(), tr, testBeam(8), sim.Config{Periods: 3}, "drift")

	frames := 0
	for {
		msg := m.wait()()
		next, _ := m.Update(msg)
		m = next.(Model)
		if done, ok := msg.(doneMsg); ok {
			if done.err != nil {
				t.Fatalf("tracking failed: %v", done.err)
			}
			break
		}
		frames++
	}
	if frames != 6 {
		t.Errorf("expected 6 frames, got %d", frames)
	}
	if m.last.Period != 2 || m.last.Reduced.S != 3 {
		t.Errorf("unexpected last frame %+v", m.last)
	}
	if !strings.Contains(m.View(), "DONE") {
		t.Error("expected done state")
	}
}

func TestMenu(t *testing.T) {
	var gotName string
	var gotPeriods, gotParticles int
	launch := func(name string, periods, particles int) (Model, error) {
		gotName, gotPeriods, gotParticles = name, periods, particles
		return NewModel(name, periods, make(chan Frame), make(chan error), nil), nil
	}
	m := NewMenu([]string{"fodo", "rf_linac"}, map[string]string{"rf_linac": "superconducting cavities"}, launch)

	step := func(k string) tea.Cmd {
		next, cmd := m.Update(key(k))
		m = next.(Menu)
		return cmd
	}

	step("j")
	step("j")
	if m.cursor != 1 {
		t.Errorf("cursor should stop at the last entry, got %d", m.cursor)
	}
	if !strings.Contains(m.View(), "superconducting") {
		t.Error("menu should show descriptions")
	}

	step("enter")
	if m.state != stateConfig || m.selected != "rf_linac" {
		t.Fatalf("expected config for rf_linac, got state %d %q", m.state, m.selected)
	}

	step("l")
	step("j")
	step("enter")
	step("backspace")
	for _, r := range "5x0" {
		step(string(r))
	}
	step("enter")
	if m.params["periods"] != 11 || m.params["particles"] != 20050 {
		t.Errorf("unexpected params %v", m.params)
	}

	if cmd := step("s"); cmd == nil {
		t.Error("expected the live view to start")
	}
	if m.state != stateLive || gotName != "rf_linac" || gotPeriods != 11 || gotParticles != 20050 {
		t.Errorf("launcher got %q %d %d", gotName, gotPeriods, gotParticles)
	}
}

func TestMenuLaunchError(t *testing.T) {
	m := NewMenu([]string{"bad"}, nil, func(string, int, int) (Model, error) {
		return Model{}, errors.New("no such lattice")
	})
	for _, k := range []string{"enter", "s"} {
		next, _ := m.Update(key(k))
		m = next.(Menu)
	}
	if m.state != stateConfig || !strings.Contains(m.View(), "no such lattice") {
		t.Error("launch error should keep the config screen")
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Menu)
	if m.state != stateMenu {
		t.Error("esc should return to the menu")
	}
	_, cmd := m.Update(key("q"))
	if !isQuit(cmd) {
		t.Error("q should quit from the menu")
	}
}
