package engine_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/preston-fay/kie-v3-sub001/internal/config"
	"github.com/preston-fay/kie-v3-sub001/internal/domain"
	"github.com/preston-fay/kie-v3-sub001/internal/engine"
	"github.com/preston-fay/kie-v3-sub001/internal/gate"
	"github.com/preston-fay/kie-v3-sub001/internal/ledger"
	"github.com/preston-fay/kie-v3-sub001/internal/rails"
	"github.com/preston-fay/kie-v3-sub001/internal/workspace"
)

func newTestEngine(t *testing.T) (*engine.Engine, *workspace.Workspace) {
	t.Helper()
	ws := workspace.New(t.TempDir())
	cfg := &config.Config{
		Triage:    config.TriageConfig{Alpha: 0.5, Beta: 0.3, Gamma: 0.2, MaxInsightsPerRun: 15},
		Toolchain: config.ToolchainConfig{NodeFloor: "18.0.0", PythonFloor: "3.10.0"},
		Brand:     config.BrandConfig{Mode: "strict"},
		Log:       config.LogConfig{Level: "error"},
	}
	eng := engine.New(ws, cfg, zerolog.Nop())
	return eng, ws
}

func TestRunBlocksBeforeBootstrap(t *testing.T) {
	eng, _ := newTestEngine(t)

	outcome, err := eng.Run(context.Background(), "doctor", nil, false, "")
	require.NoError(t, err)
	require.Equal(t, gate.Block, outcome.Decision)
	require.Equal(t, 2, outcome.ExitCode())
	require.NotNil(t, outcome.RecoveryPlan)
}

func TestRunBootstrapSucceedsAndWritesTrustBundle(t *testing.T) {
	eng, ws := newTestEngine(t)

	outcome, err := eng.Run(context.Background(), "bootstrap", nil, false, "")
	require.NoError(t, err)
	require.Equal(t, gate.Allow, outcome.Decision)
	require.Equal(t, 0, outcome.ExitCode())
	require.True(t, ws.IsBootstrapped())

	mdPath, jsonPath := ledger.TrustBundlePaths(ws)
	require.True(t, workspace.Exists(mdPath))
	require.True(t, workspace.Exists(jsonPath))
}

func TestRunSpecInitAdvancesRailsToSpec(t *testing.T) {
	eng, ws := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.Run(ctx, "bootstrap", nil, false, "")
	require.NoError(t, err)

	outcome, err := eng.Run(ctx, "spec", []string{
		"project_name=Acme Q3 Review",
		"objective=understand churn drivers",
		"project_type=analytics",
		"--init",
	}, false, "")
	require.NoError(t, err)
	require.Equal(t, gate.Allow, outcome.Decision)

	m := rails.New(ws)
	st, err := m.ReadState()
	require.NoError(t, err)
	require.Equal(t, domain.StageSpec, st.CurrentStage)
}

func TestRunUnknownCommandErrors(t *testing.T) {
	eng, _ := newTestEngine(t)
	_, err := eng.Run(context.Background(), "not-a-real-verb", nil, false, "")
	require.Error(t, err)
}

func TestRunGoAdvancesRailsThroughNestedRun(t *testing.T) {
	eng, ws := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.Run(ctx, "bootstrap", nil, false, "")
	require.NoError(t, err)
	_, err = eng.Run(ctx, "spec", []string{
		"project_name=Acme Q3 Review",
		"objective=understand churn drivers",
		"project_type=analytics",
		"--init",
	}, false, "")
	require.NoError(t, err)

	csv := "region,revenue\nEast,100\nWest,200\nNorth,150\n"
	require.NoError(t, workspace.WriteFileAtomic(ws.Path("data", "sales.csv"), []byte(csv)))

	outcome, err := eng.Run(ctx, "go", nil, false, "")
	require.NoError(t, err)
	require.NotEqual(t, gate.Block, outcome.Decision)

	m := rails.New(ws)
	st, err := m.ReadState()
	require.NoError(t, err)
	require.Equal(t, domain.StageEDA, st.CurrentStage, "a single `go` should advance exactly one stage, via the nested Run's own AttemptTransition")
}

func TestRunEvidenceRecordedEvenOnBlock(t *testing.T) {
	eng, ws := newTestEngine(t)

	_, err := eng.Run(context.Background(), "eda", nil, false, "")
	require.NoError(t, err)

	l := ledger.New(ws)
	all, err := l.All()
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.False(t, all[0].Success)
	require.Equal(t, domain.StageStartKIE, all[0].StageBefore)
	require.Equal(t, domain.StageStartKIE, all[0].StageAfter)
}
