package viz

import (
	"math"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/dragsim/internal/sim"
)

func replayResult(n int) sim.Result {
	res := sim.Result{TargetVelocity: 5, ErrorThreshold: 1, SettlingTime: 3}
	for i := 0; i < n; i++ {
		res.Times = append(res.Times, float64(i))
		res.Velocities = append(res.Velocities, 5+5*math.Pow(0.5, float64(i)))
		res.Errors = append(res.Errors, -100*math.Pow(0.5, float64(i)))
		res.Forces = append(res.Forces, -float64(i))
	}
	return res
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Replay, msg tea.Msg) (Replay, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	r, ok := next.(Replay)
	require.True(t, ok)
	return r, cmd
}

func TestReplayAdvancesOnTick(t *testing.T) {
	m := NewReplay("baseline", replayResult(5))
	require.NotNil(t, m.Init())

	m, cmd := update(t, m, tickMsg(time.Now()))
	assert.Equal(t, 1, m.Cursor())
	assert.NotNil(t, cmd)

	for i := 0; i < 10; i++ {
		m, cmd = update(t, m, tickMsg(time.Now()))
	}
	assert.Equal(t, 4, m.Cursor())
	assert.True(t, m.Done())
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "settled at 3s")
}

func TestReplayPauseAndStep(t *testing.T) {
	m := NewReplay("baseline", replayResult(5))

	m, _ = update(t, m, key(" "))
	assert.True(t, m.Paused())

	m, cmd := update(t, m, tickMsg(time.Now()))
	assert.Equal(t, 0, m.Cursor())
	assert.Nil(t, cmd)

	m, _ = update(t, m, key("right"))
	m, _ = update(t, m, key("right"))
	assert.Equal(t, 2, m.Cursor())
	m, _ = update(t, m, key("left"))
	assert.Equal(t, 1, m.Cursor())
	assert.Contains(t, m.View(), "paused")

	m, cmd = update(t, m, key(" "))
	assert.False(t, m.Paused())
	assert.NotNil(t, cmd)

	m, _ = update(t, m, key("r"))
	assert.Equal(t, 0, m.Cursor())
}

func TestReplaySpeed(t *testing.T) {
	m := NewReplay("baseline", replayResult(40))
	for i := 0; i < 10; i++ {
		m, _ = update(t, m, key("+"))
	}
	assert.Equal(t, maxSpeed, m.Speed())

	m, _ = update(t, m, tickMsg(time.Now()))
	assert.Equal(t, maxSpeed, m.Cursor())

	for i := 0; i < 10; i++ {
		m, _ = update(t, m, key("-"))
	}
	assert.Equal(t, 1, m.Speed())
}

func TestReplayQuit(t *testing.T) {
	_, cmd := update(t, NewReplay("x", replayResult(2)), key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestReplayView(t *testing.T) {
	m := NewReplay("baseline", replayResult(3))
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	view := m.View()
	assert.Contains(t, view, "baseline")
	assert.Contains(t, view, "target 5")
	assert.Contains(t, view, "out of band")

	empty := NewReplay("empty", sim.Result{})
	assert.True(t, empty.Done())
	assert.Contains(t, empty.View(), "no samples")
}

func TestProgressBarClamps(t *testing.T) {
	assert.NotEmpty(t, ProgressBar(2, 10))
	assert.NotEmpty(t, ProgressBar(-1, 10))
	assert.NotEmpty(t, Separator(4))
}
