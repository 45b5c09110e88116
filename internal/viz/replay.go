package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/dragsim/internal/sim"
)

const (
	replayInterval = 80 * time.Millisecond
	maxSpeed       = 16
	chartHeight    = 12
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(replayInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Replay plays back a finished run. Cursor is the index of the last sample
// shown.
type Replay struct {
	title  string
	res    sim.Result
	cursor int
	speed  int
	paused bool
	width  int
}

func NewReplay(title string, res sim.Result) Replay {
	return Replay{title: title, res: res, speed: 1, width: 80}
}

func (m Replay) Cursor() int  { return m.cursor }
func (m Replay) Speed() int   { return m.speed }
func (m Replay) Paused() bool { return m.paused }

// Done reports whether the last sample is on screen.
func (m Replay) Done() bool { return m.cursor >= len(m.res.Times)-1 }

func (m Replay) Init() tea.Cmd { return tick() }

func (m Replay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tickMsg:
		if m.paused || m.Done() {
			return m, nil
		}
		m.cursor = min(m.cursor+m.speed, max(len(m.res.Times)-1, 0))
		if m.Done() {
			return m, nil
		}
		return m, tick()
	}
	return m, nil
}

func (m Replay) handleKey(msg tea.KeyMsg) (Replay, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case " ":
		m.paused = !m.paused
		if !m.paused && !m.Done() {
			return m, tick()
		}
	case "r":
		m.cursor = 0
		if !m.paused {
			return m, tick()
		}
	case "+", "=":
		m.speed = min(m.speed*2, maxSpeed)
	case "-", "_":
		m.speed = max(m.speed/2, 1)
	case "right", "l":
		if m.paused && !m.Done() {
			m.cursor++
		}
	case "left", "h":
		if m.paused && m.cursor > 0 {
			m.cursor--
		}
	}
	return m, nil
}

func (m Replay) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.title) + "\n")
	b.WriteString(Separator(m.width-4) + "\n")

	if len(m.res.Times) == 0 {
		b.WriteString(Subtle.Render("no samples") + "\n")
		b.WriteString(KeyHint.Render("q quit") + "\n")
		return b.String()
	}

	chartWidth := max(m.width-12, 20)
	shown := make([]float64, 0, m.cursor+1)
	for _, v := range m.res.Velocities[:m.cursor+1] {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			shown = append(shown, v)
		}
	}
	if len(shown) > 0 {
		b.WriteString(asciigraph.Plot(shown,
			asciigraph.Height(chartHeight),
			asciigraph.Width(chartWidth),
			asciigraph.Caption(fmt.Sprintf("velocity [m/s], target %g", m.res.TargetVelocity)),
		))
		b.WriteString("\n\n")
	}

	i := m.cursor
	errPct := at(m.res.Errors, i)
	band := InBand.Render("in band")
	if !(math.Abs(errPct) <= m.res.ErrorThreshold) {
		band = OutBand.Render("out of band")
	}
	fmt.Fprintf(&b, "%s %s  %s %s  %s %s  %s %s  %s\n",
		MetricLabel.Render("t"), MetricValue.Render(fmt.Sprintf("%.2fs", m.res.Times[i])),
		MetricLabel.Render("v"), MetricValue.Render(fmt.Sprintf("%.3f", at(m.res.Velocities, i))),
		MetricLabel.Render("err"), MetricValue.Render(fmt.Sprintf("%.2f%%", errPct)),
		MetricLabel.Render("u"), MetricValue.Render(fmt.Sprintf("%.3f", at(m.res.Forces, i))),
		band,
	)

	progress := float64(i+1) / float64(len(m.res.Times))
	b.WriteString(ProgressBar(progress, min(chartWidth, 60)) + "\n")

	status := StatusRunning.Render(fmt.Sprintf("playing x%d", m.speed))
	switch {
	case m.Done():
		status = StatusRunning.Render(m.settledText())
	case m.paused:
		status = StatusPaused.Render("paused")
	}
	b.WriteString(status + "\n")
	b.WriteString(KeyHint.Render("space pause  r restart  +/- speed  ←/→ step  q quit") + "\n")
	return b.String()
}

func (m Replay) settledText() string {
	if m.res.SettlingTime == sim.NotSettled {
		return "finished, not settled"
	}
	return fmt.Sprintf("finished, settled at %gs", m.res.SettlingTime)
}

func at(xs []float64, i int) float64 {
	if i < len(xs) {
		return xs[i]
	}
	return math.NaN()
}

// RunReplay plays res back in the alternate screen until the user quits.
func RunReplay(title string, res sim.Result) error {
	p := tea.NewProgram(NewReplay(title, res), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
