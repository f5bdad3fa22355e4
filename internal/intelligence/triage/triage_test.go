package triage_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/preston-fay/kie-v3-sub001/internal/domain"
	"github.com/preston-fay/kie-v3-sub001/internal/intelligence/triage"
)

func weights() triage.Weights { return triage.Weights{Alpha: 0.5, Beta: 0.3, Gamma: 0.2} }
func floors() triage.Floors   { return triage.Floors{Magnitude: 0.2, Confidence: 0.3} }

func mapping() *domain.ColumnMapping {
	return &domain.ColumnMapping{Assignments: []domain.RoleAssignment{
		{Role: domain.RoleRevenue, Column: "revenue"},
		{Role: domain.RoleCategory, Column: "region"},
	}}
}

func TestSuppressesBelowMagnitudeFloor(t *testing.T) {
	insights := []domain.RawInsight{
		{ID: "a", Kind: domain.KindOutlier, Magnitude: 0.05, Confidence: 0.9, SourceColumns: []string{"revenue"}},
	}
	out := triage.Run(insights, "grow revenue", mapping(), weights(), floors())
	require.Equal(t, domain.DispositionSuppress, out[0].Disposition)
	require.Contains(t, out[0].SuppressReason, "magnitude")
}

func TestSuppressesBelowConfidenceFloor(t *testing.T) {
	insights := []domain.RawInsight{
		{ID: "a", Kind: domain.KindOutlier, Magnitude: 0.9, Confidence: 0.05, SourceColumns: []string{"revenue"}},
	}
	out := triage.Run(insights, "grow revenue", mapping(), weights(), floors())
	require.Equal(t, domain.DispositionSuppress, out[0].Disposition)
	require.Contains(t, out[0].SuppressReason, "confidence")
}

func TestDedupeKeepsHighestMagnitudeOfOverlappingKind(t *testing.T) {
	insights := []domain.RawInsight{
		{ID: "a", Kind: domain.KindRanking, Entities: []string{"East", "West"}, Magnitude: 0.4, Confidence: 0.9, SourceColumns: []string{"revenue"}},
		{ID: "b", Kind: domain.KindRanking, Entities: []string{"East", "North"}, Magnitude: 0.8, Confidence: 0.9, SourceColumns: []string{"revenue"}},
	}
	out := triage.Run(insights, "grow revenue", mapping(), weights(), floors())

	var kept, suppressed *domain.RawInsight
	for i := range out {
		if out[i].Disposition == domain.DispositionKeep {
			kept = &out[i]
		} else {
			suppressed = &out[i]
		}
	}
	require.NotNil(t, kept)
	require.NotNil(t, suppressed)
	require.Equal(t, "b", kept.ID)
}

func TestKeptInsightsAreSortedByPriorityDescending(t *testing.T) {
	insights := []domain.RawInsight{
		{ID: "low", Kind: domain.KindOutlier, Magnitude: 0.3, Confidence: 0.9, SourceColumns: []string{"revenue"}},
		{ID: "high", Kind: domain.KindComparison, Magnitude: 0.9, Confidence: 0.9, SourceColumns: []string{"revenue"}},
	}
	out := triage.Run(insights, "grow revenue", mapping(), weights(), floors())
	require.Equal(t, "high", out[0].ID)
	require.Greater(t, out[0].Priority, out[1].Priority)
}

func TestSuppressedInsightsArePersistedNotDeleted(t *testing.T) {
	insights := []domain.RawInsight{
		{ID: "a", Kind: domain.KindOutlier, Magnitude: 0.01, Confidence: 0.9, SourceColumns: []string{"revenue"}},
	}
	out := triage.Run(insights, "grow revenue", mapping(), weights(), floors())
	require.Len(t, out, 1)
}
