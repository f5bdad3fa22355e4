package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/preston-fay/kie-v3-sub001/internal/domain"
	"github.com/preston-fay/kie-v3-sub001/internal/intelligence/loader"
)

func sampleTable() *loader.Table {
	return &loader.Table{
		Columns: []string{"region", "revenue"},
		Rows: [][]string{
			{"East", "100"},
			{"West", "250"},
			{"East", "50"},
			{"North", "10"},
			{"South", "5"},
		},
	}
}

func TestChartDataGroupsAndAggregatesFromTable(t *testing.T) {
	item := domain.VisualizationPlanItem{
		ChartType:     domain.ChartBar,
		X:             "region",
		Y:             "revenue",
		DataSliceSpec: domain.DataSliceSpec{GroupBy: []string{"region"}, Aggregate: "sum"},
	}
	rows := chartData(item, sampleTable())

	require.Len(t, rows, 4) // East, West, North, South
	require.Equal(t, "West", rows[0]["region"], "West (250) should rank first by summed value")
	require.Equal(t, float64(250), rows[0]["revenue"])
}

func TestChartDataCapsPieSegmentsToTopFour(t *testing.T) {
	table := &loader.Table{
		Columns: []string{"segment", "revenue"},
		Rows: [][]string{
			{"A", "500"}, {"B", "400"}, {"C", "300"}, {"D", "200"}, {"E", "100"},
		},
	}
	item := domain.VisualizationPlanItem{
		ChartType:     domain.ChartPie,
		X:             "segment",
		Y:             "revenue",
		DataSliceSpec: domain.DataSliceSpec{GroupBy: []string{"segment"}, Aggregate: "sum"},
	}
	rows := chartData(item, table)

	require.Len(t, rows, 4)
	require.Equal(t, "A", rows[0]["segment"])
	require.Equal(t, "D", rows[3]["segment"])
}

func TestChartDataFallsBackToRawPairsWithoutGroupBy(t *testing.T) {
	table := &loader.Table{
		Columns: []string{"x", "y"},
		Rows:    [][]string{{"1", "2"}, {"3", "4"}},
	}
	item := domain.VisualizationPlanItem{
		ChartType:     domain.ChartScatter,
		X:             "x",
		Y:             "y",
		DataSliceSpec: domain.DataSliceSpec{},
	}
	rows := chartData(item, table)

	require.Len(t, rows, 2)
	require.Equal(t, float64(2), rows[0]["y"])
}

func TestBuildChartConfigsSkipsSuppressedItems(t *testing.T) {
	plan := &domain.VisualizationPlan{Items: []domain.VisualizationPlanItem{
		{Suppressed: true, Title: "dropped"},
		{ChartType: domain.ChartBar, X: "region", Y: "revenue", Title: "kept",
			DataSliceSpec: domain.DataSliceSpec{GroupBy: []string{"region"}, Aggregate: "sum"}},
	}}
	charts := buildChartConfigs(plan, domain.ThemeLight, sampleTable())

	require.Len(t, charts, 1)
	for _, cfg := range charts {
		require.Equal(t, "kept", cfg.Title)
		require.NotEmpty(t, cfg.Data)
	}
}
