package planner_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/preston-fay/kie-v3-sub001/internal/domain"
	"github.com/preston-fay/kie-v3-sub001/internal/intelligence/planner"
)

func mapping() *domain.ColumnMapping {
	return &domain.ColumnMapping{Assignments: []domain.RoleAssignment{
		{Role: domain.RoleRevenue, Column: "revenue"},
		{Role: domain.RoleCategory, Column: "region"},
		{Role: domain.RoleDate, Column: "month"},
	}}
}

func TestPlanMapsTrendToLine(t *testing.T) {
	insights := []domain.RawInsight{
		{ID: "1", Kind: domain.KindTrend, Disposition: domain.DispositionKeep, SourceColumns: []string{"month", "revenue"}},
	}
	plan := planner.Plan(insights, mapping(), time.Now())
	require.Len(t, plan.Items, 1)
	require.Equal(t, domain.ChartLine, plan.Items[0].ChartType)
	require.False(t, plan.Items[0].Suppressed)
}

func TestPlanMapsSmallCompositionToPie(t *testing.T) {
	insights := []domain.RawInsight{
		{ID: "1", Kind: domain.KindComposition, Disposition: domain.DispositionKeep, Entities: []string{"a", "b", "c"}, SourceColumns: []string{"region", "revenue"}},
	}
	plan := planner.Plan(insights, mapping(), time.Now())
	require.Equal(t, domain.ChartPie, plan.Items[0].ChartType)
}

func TestPlanMapsLargeCompositionToBar(t *testing.T) {
	insights := []domain.RawInsight{
		{ID: "1", Kind: domain.KindComposition, Disposition: domain.DispositionKeep, Entities: []string{"a", "b", "c", "d", "e"}, SourceColumns: []string{"region", "revenue"}},
	}
	plan := planner.Plan(insights, mapping(), time.Now())
	require.Equal(t, domain.ChartBar, plan.Items[0].ChartType)
}

func TestPlanMapsCorrelationToScatter(t *testing.T) {
	insights := []domain.RawInsight{
		{ID: "1", Kind: domain.KindCorrelation, Disposition: domain.DispositionKeep, SourceColumns: []string{"revenue", "cost"}},
	}
	plan := planner.Plan(insights, mapping(), time.Now())
	require.Equal(t, domain.ChartScatter, plan.Items[0].ChartType)
	require.Equal(t, "revenue", plan.Items[0].X)
	require.Equal(t, "cost", plan.Items[0].Y)
}

func TestPlanRetainsSuppressedInsightsAsUnrenderedItems(t *testing.T) {
	insights := []domain.RawInsight{
		{ID: "1", Kind: domain.KindOutlier, Disposition: domain.DispositionSuppress, SuppressReason: "magnitude below floor"},
	}
	plan := planner.Plan(insights, mapping(), time.Now())
	require.Len(t, plan.Items, 1)
	require.True(t, plan.Items[0].Suppressed)
	require.Contains(t, plan.Items[0].Rationale, "magnitude below floor")
}
