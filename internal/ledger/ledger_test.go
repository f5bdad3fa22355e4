package ledger_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/preston-fay/kie-v3-sub001/internal/domain"
	"github.com/preston-fay/kie-v3-sub001/internal/ledger"
	"github.com/preston-fay/kie-v3-sub001/internal/workspace"
)

func newWorkspace(t *testing.T) *workspace.Workspace {
	t.Helper()
	ws := workspace.New(t.TempDir())
	require.NoError(t, ws.Bootstrap())
	return ws
}

func TestWriteReadRoundTrip(t *testing.T) {
	ws := newWorkspace(t)
	l := ledger.New(ws)

	rec := &domain.EvidenceRecord{
		RunID:       ledger.NewRunID(),
		Timestamp:   time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		Command:     "eda",
		StageBefore: domain.StageSpec,
		StageAfter:  domain.StageEDA,
		Success:     true,
	}
	require.NoError(t, l.Write(rec))

	got, err := l.Read(rec.RunID)
	require.NoError(t, err)
	require.Equal(t, rec.Command, got.Command)
	require.Equal(t, rec.StageAfter, got.StageAfter)
	require.True(t, got.Success)
}

func TestAllOrdersByTimestamp(t *testing.T) {
	ws := newWorkspace(t)
	l := ledger.New(ws)

	older := &domain.EvidenceRecord{
		RunID:     ledger.NewRunID(),
		Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Command:   "bootstrap",
		Success:   true,
	}
	newer := &domain.EvidenceRecord{
		RunID:     ledger.NewRunID(),
		Timestamp: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		Command:   "spec",
		Success:   true,
	}
	require.NoError(t, l.Write(newer))
	require.NoError(t, l.Write(older))

	all, err := l.All()
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "bootstrap", all[0].Command)
	require.Equal(t, "spec", all[1].Command)

	latest, err := l.Latest()
	require.NoError(t, err)
	require.Equal(t, "spec", latest.Command)
}

func TestAllOnEmptyLedgerReturnsNil(t *testing.T) {
	ws := newWorkspace(t)
	l := ledger.New(ws)

	all, err := l.All()
	require.NoError(t, err)
	require.Nil(t, all)

	latest, err := l.Latest()
	require.NoError(t, err)
	require.Nil(t, latest)
}

func TestBuildTrustBundleAlwaysHasNextActions(t *testing.T) {
	ws := newWorkspace(t)
	l := ledger.New(ws)

	tb, err := l.BuildTrustBundle("Acme Corp", domain.StageSpec, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotEmpty(t, tb.NextActions)
	require.Empty(t, tb.Executed)
}

func TestBuildTrustBundleFlagsMissingArtifacts(t *testing.T) {
	ws := newWorkspace(t)
	l := ledger.New(ws)

	outPath := ws.Path("outputs", "eda_profile.json")
	rec := &domain.EvidenceRecord{
		RunID:      ledger.NewRunID(),
		Timestamp:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Command:    "eda",
		StageAfter: domain.StageEDA,
		Success:    true,
		Outputs:    []domain.ArtifactRef{{Path: outPath, SHA256: "deadbeef"}},
	}
	require.NoError(t, l.Write(rec))

	tb, err := l.BuildTrustBundle("Acme Corp", domain.StageEDA, time.Now())
	require.NoError(t, err)
	require.Contains(t, tb.Missing, outPath)
	require.Contains(t, tb.NextActions[0], outPath)
}

func TestWriteTrustBundleProducesBothForms(t *testing.T) {
	ws := newWorkspace(t)
	l := ledger.New(ws)

	tb := &domain.TrustBundle{
		Identity:    "Acme Corp",
		Stage:       domain.StageSpec,
		NextActions: []string{"Run `kie interview`."},
	}
	require.NoError(t, l.WriteTrustBundle(tb))

	mdPath, jsonPath := ledger.TrustBundlePaths(ws)
	require.FileExists(t, filepath.Clean(mdPath))
	require.FileExists(t, filepath.Clean(jsonPath))
}

func TestRecoveryPlanForBlockIncludesDoctor(t *testing.T) {
	plan := ledger.RecoveryPlanForBlock("missing spec", []string{"kie interview"})
	require.Equal(t, "missing spec", plan.Reason)
	require.Len(t, plan.Tiers, 4)
	require.Contains(t, plan.Tiers[2].Commands, "kie doctor")
}
