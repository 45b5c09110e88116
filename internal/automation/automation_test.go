package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/dragsim/internal/config"
	"github.com/san-kum/dragsim/internal/experiment"
	"github.com/san-kum/dragsim/internal/logging"
	"github.com/san-kum/dragsim/internal/sim"
)

const scenarioYAML = `
name: compare
description: open loop against tuned PID
runs:
  - name: baseline
  - name: uncontrolled
    preset: open-loop
  - name: soft
    params:
      Kp: 0.1
  - preset: reverse
    initial_velocity: 0
`

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenarioYAML), 0o644))

	sc, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "compare", sc.Name)
	require.Len(t, sc.Runs, 4)
	assert.Equal(t, "open-loop", sc.Runs[1].Preset)
	assert.Equal(t, 0.1, sc.Runs[2].Params["Kp"])
	require.NotNil(t, sc.Runs[3].InitialVelocity)
	assert.Equal(t, 0.0, *sc.Runs[3].InitialVelocity)
}

func TestParseScenarioRequiresRuns(t *testing.T) {
	_, err := ParseScenario([]byte("name: empty\n"))
	assert.Error(t, err)

	_, err = ParseScenario([]byte("runs: [\n"))
	assert.Error(t, err)
}

func TestResolveOverridesPreset(t *testing.T) {
	v0 := 3.0
	cfg, err := ScenarioRun{Preset: "reverse", InitialVelocity: &v0}.Resolve(config.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 3.0, cfg.Vehicle.InitialVelocity)

	bad := -1.0
	_, err = ScenarioRun{Mass: &bad}.Resolve(config.DefaultConfig())
	assert.Error(t, err)

	_, err = ScenarioRun{Preset: "nope"}.Resolve(config.DefaultConfig())
	assert.ErrorContains(t, err, "unknown preset")
}

func TestRunScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	require.NoError(t, err)

	base := config.DefaultConfig()
	results, err := RunScenario(context.Background(), sc, base, experiment.NewRegistry(), logging.Nop())
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, "baseline", results[0].Name)
	assert.Equal(t, 21.0, results[0].Result.SettlingTime)
	assert.Equal(t, sim.NotSettled, results[1].Result.SettlingTime)
	assert.Equal(t, 13.0, results[2].Result.SettlingTime)
	assert.Equal(t, "run-4", results[3].Name)
	assert.Equal(t, 5.0, results[3].Result.SettlingTime)

	assert.Equal(t, config.DefaultKp, base.Controller.Kp, "base config must not be mutated")
}

func TestRunScenarioWrapsRunIndex(t *testing.T) {
	sc := &Scenario{Name: "bad", Runs: []ScenarioRun{{}, {Controller: "lqr"}}}
	results, err := RunScenario(context.Background(), sc, config.DefaultConfig(), experiment.NewRegistry(), logging.Nop())
	assert.ErrorContains(t, err, "run 2")
	assert.Len(t, results, 1)

	sc = &Scenario{Runs: []ScenarioRun{{Controller: config.ControllerNone, Params: map[string]float64{"Kp": 1}}}}
	_, err = RunScenario(context.Background(), sc, config.DefaultConfig(), experiment.NewRegistry(), logging.Nop())
	assert.ErrorContains(t, err, "does not accept params")
}
