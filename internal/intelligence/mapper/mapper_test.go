package mapper_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/preston-fay/kie-v3-sub001/internal/domain"
	"github.com/preston-fay/kie-v3-sub001/internal/intelligence/mapper"
)

func profileWith(cols ...domain.ColumnProfile) *domain.EDAProfile {
	return &domain.EDAProfile{Columns: cols}
}

func TestMapAssignsRevenueByKeyword(t *testing.T) {
	profile := profileWith(
		domain.ColumnProfile{Name: "total_revenue", Type: domain.ColumnNumeric, Mean: 1000, StdDev: 200},
		domain.ColumnProfile{Name: "order_id", Type: domain.ColumnIdentifier, UniqueFraction: 1.0},
	)

	mapping := mapper.Map(profile, nil, time.Now())
	a := mapping.ByRole(domain.RoleRevenue)
	require.NotNil(t, a)
	require.Equal(t, "total_revenue", a.Column)
}

func TestMapRejectsIdentifierForMeasureRole(t *testing.T) {
	profile := profileWith(
		domain.ColumnProfile{Name: "revenue_id", Type: domain.ColumnIdentifier, UniqueFraction: 1.0},
	)
	mapping := mapper.Map(profile, nil, time.Now())
	require.Nil(t, mapping.ByRole(domain.RoleRevenue))
	require.Contains(t, mapping.UnassignedRoles, domain.RoleRevenue)
}

func TestMapOverridePrecedence(t *testing.T) {
	profile := profileWith(
		domain.ColumnProfile{Name: "total_revenue", Type: domain.ColumnNumeric, Mean: 1000, StdDev: 200},
		domain.ColumnProfile{Name: "gross_sales", Type: domain.ColumnNumeric, Mean: 500, StdDev: 50},
	)
	overrides := map[domain.Role]string{domain.RoleRevenue: "gross_sales"}

	mapping := mapper.Map(profile, overrides, time.Now())
	a := mapping.ByRole(domain.RoleRevenue)
	require.NotNil(t, a)
	require.Equal(t, "gross_sales", a.Column)
	require.True(t, a.Overridden)
}

func TestMapOverrideToNonexistentColumnFallsThroughToScoring(t *testing.T) {
	profile := profileWith(
		domain.ColumnProfile{Name: "total_revenue", Type: domain.ColumnNumeric, Mean: 1000, StdDev: 200},
	)
	overrides := map[domain.Role]string{domain.RoleRevenue: "does_not_exist"}

	mapping := mapper.Map(profile, overrides, time.Now())
	a := mapping.ByRole(domain.RoleRevenue)
	require.NotNil(t, a)
	require.Equal(t, "total_revenue", a.Column)
	require.False(t, a.Overridden)
}

func TestMapTieBreaksOnCoefficientOfVariation(t *testing.T) {
	profile := profileWith(
		domain.ColumnProfile{Name: "revenue_low_variance", Type: domain.ColumnNumeric, Mean: 1000, StdDev: 10},
		domain.ColumnProfile{Name: "revenue_high_variance", Type: domain.ColumnNumeric, Mean: 1000, StdDev: 500},
	)
	mapping := mapper.Map(profile, nil, time.Now())
	a := mapping.ByRole(domain.RoleRevenue)
	require.NotNil(t, a)
	require.Equal(t, "revenue_high_variance", a.Column)
	require.Equal(t, 4, a.Tier)
}

func TestMapDoesNotPenalizeSmallMagnitudeMarginColumn(t *testing.T) {
	profile := profileWith(
		domain.ColumnProfile{Name: "margin_rate", Type: domain.ColumnNumeric, Mean: 0.2, StdDev: 0.05, Min: 0, Max: 1},
	)
	mapping := mapper.Map(profile, nil, time.Now())
	a := mapping.ByRole(domain.RoleMargin)
	require.NotNil(t, a)
	require.Equal(t, "margin_rate", a.Column)
}

// TestMapPicksSpecificRevenueColumnOverGenericOne reproduces the
// override-precedence scenario's column set: a single-token column
// name must not automatically outscore a more specific multi-token
// one just for having fewer tokens to dilute its score, and
// GrossMargin, whose "gross" token is a revenue keyword, ties on
// keyword score but must lose the revenue role on the tier-4
// coefficient-of-variation tie-break.
func TestMapPicksSpecificRevenueColumnOverGenericOne(t *testing.T) {
	profile := profileWith(
		domain.ColumnProfile{Name: "CustomerID", Type: domain.ColumnIdentifier, UniqueFraction: 1.0},
		domain.ColumnProfile{Name: "ZipCode", Type: domain.ColumnIdentifier, UniqueFraction: 1.0},
		domain.ColumnProfile{Name: "Revenue", Type: domain.ColumnNumeric, Mean: 1000, StdDev: 50},
		domain.ColumnProfile{Name: "Recurring_Revenue", Type: domain.ColumnNumeric, Mean: 1000, StdDev: 600},
		domain.ColumnProfile{Name: "GrossMargin", Type: domain.ColumnNumeric, Mean: 0.3, StdDev: 0.05, Min: 0, Max: 1},
	)

	mapping := mapper.Map(profile, nil, time.Now())

	revenue := mapping.ByRole(domain.RoleRevenue)
	require.NotNil(t, revenue)
	require.Equal(t, "Recurring_Revenue", revenue.Column)

	margin := mapping.ByRole(domain.RoleMargin)
	require.NotNil(t, margin)
	require.Equal(t, "GrossMargin", margin.Column)
}

func TestMapUnassignedWhenNoKeywordMatch(t *testing.T) {
	profile := profileWith(
		domain.ColumnProfile{Name: "xyz", Type: domain.ColumnTextual},
	)
	mapping := mapper.Map(profile, nil, time.Now())
	require.Contains(t, mapping.UnassignedRoles, domain.RoleRevenue)
}
