package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/preston-fay/kie-v3-sub001/internal/domain"
	"github.com/preston-fay/kie-v3-sub001/internal/intelligence/analyzer"
	"github.com/preston-fay/kie-v3-sub001/internal/intelligence/loader"
)

func mappingWith(assignments ...domain.RoleAssignment) *domain.ColumnMapping {
	return &domain.ColumnMapping{Assignments: assignments}
}

func TestAnalyzeEmitsComparisonWithSourceColumns(t *testing.T) {
	table := &loader.Table{
		Columns: []string{"region", "revenue"},
		Rows: [][]string{
			{"East", "100"}, {"East", "110"}, {"East", "105"},
			{"West", "10"}, {"West", "12"}, {"West", "11"},
		},
	}
	mapping := mappingWith(
		domain.RoleAssignment{Role: domain.RoleCategory, Column: "region"},
		domain.RoleAssignment{Role: domain.RoleRevenue, Column: "revenue"},
	)

	insights := analyzer.Analyze(table, mapping)
	var found *domain.RawInsight
	for i := range insights {
		if insights[i].Kind == domain.KindComparison {
			found = &insights[i]
		}
	}
	require.NotNil(t, found)
	require.Contains(t, found.SourceColumns, "region")
	require.Contains(t, found.SourceColumns, "revenue")
	require.GreaterOrEqual(t, found.Magnitude, 0.0)
	require.LessOrEqual(t, found.Magnitude, 1.0)
}

func TestAnalyzeSkipsKindsWithoutMappedRoles(t *testing.T) {
	table := &loader.Table{
		Columns: []string{"notes"},
		Rows:    [][]string{{"a"}, {"b"}},
	}
	mapping := mappingWith()

	insights := analyzer.Analyze(table, mapping)
	require.Empty(t, insights)
}

func TestAnalyzeOutlierFindsExtremeValue(t *testing.T) {
	table := &loader.Table{
		Columns: []string{"revenue"},
		Rows: [][]string{
			{"100"}, {"102"}, {"98"}, {"101"}, {"99"}, {"100"}, {"5000"},
		},
	}
	mapping := mappingWith(domain.RoleAssignment{Role: domain.RoleRevenue, Column: "revenue"})

	insights := analyzer.Analyze(table, mapping)
	var found bool
	for _, i := range insights {
		if i.Kind == domain.KindOutlier {
			found = true
		}
	}
	require.True(t, found)
}

func TestAnalyzeRankingOrdersGroupsDescending(t *testing.T) {
	table := &loader.Table{
		Columns: []string{"region", "revenue"},
		Rows: [][]string{
			{"East", "300"}, {"West", "100"}, {"North", "200"},
		},
	}
	mapping := mappingWith(
		domain.RoleAssignment{Role: domain.RoleCategory, Column: "region"},
		domain.RoleAssignment{Role: domain.RoleRevenue, Column: "revenue"},
	)

	insights := analyzer.Analyze(table, mapping)
	var found *domain.RawInsight
	for i := range insights {
		if insights[i].Kind == domain.KindRanking {
			found = &insights[i]
		}
	}
	require.NotNil(t, found)
	require.Equal(t, "East", found.Entities[0])
}
