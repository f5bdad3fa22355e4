package brand_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/preston-fay/kie-v3-sub001/internal/brand"
	"github.com/preston-fay/kie-v3-sub001/internal/domain"
)

func validChart() *domain.ChartConfig {
	return &domain.ChartConfig{
		Type:  domain.ChartBar,
		Title: "Revenue by Region",
		Data:  []map[string]any{{"region": "East", "revenue": 100}, {"region": "West", "revenue": 200}},
		Config: domain.ChartConfigBody{
			GridLines:  false,
			FontFamily: "Inter, sans-serif",
			Colors:     []string{brand.Palette[0], brand.Palette[1]},
			Legend:     true,
			Tooltip:    true,
		},
	}
}

func TestValidateChartPasses(t *testing.T) {
	v := brand.New(brand.Strict)
	report := v.ValidateChart(validChart(), "outputs/charts/revenue.json")
	require.Equal(t, "PASS", report.Status)
	require.False(t, report.HasCritical())
}

func TestValidateChartCatchesOffPaletteColor(t *testing.T) {
	cfg := validChart()
	cfg.Config.Colors = []string{"#123456"}

	v := brand.New(brand.Strict)
	report := v.ValidateChart(cfg, "outputs/charts/revenue.json")
	require.True(t, report.HasCritical())
	require.Equal(t, "FAIL", report.Status)
}

func TestValidateChartCatchesGridlines(t *testing.T) {
	cfg := validChart()
	cfg.Config.GridLines = true

	v := brand.New(brand.Strict)
	report := v.ValidateChart(cfg, "loc")
	require.True(t, report.HasCritical())

	var found bool
	for _, i := range report.Issues {
		if i.Class == brand.ClassGridlines {
			found = true
		}
	}
	require.True(t, found)
}

func TestValidateChartCatchesBadFontFamily(t *testing.T) {
	cfg := validChart()
	cfg.Config.FontFamily = "Arial"

	v := brand.New(brand.Strict)
	report := v.ValidateChart(cfg, "loc")
	require.True(t, report.HasCritical())
}

func TestPieConstraintRejectsOutOfRangeSegmentCount(t *testing.T) {
	cfg := validChart()
	cfg.Type = domain.ChartPie
	cfg.Data = []map[string]any{{"a": 1}} // 1 segment, below the 2 floor

	v := brand.New(brand.Strict)
	report := v.ValidateChart(cfg, "loc")
	require.True(t, report.HasCritical())
}

func TestPieConstraintAcceptsFourSegments(t *testing.T) {
	cfg := validChart()
	cfg.Type = domain.ChartPie
	cfg.Data = []map[string]any{{"a": 1}, {"a": 2}, {"a": 3}, {"a": 4}}

	v := brand.New(brand.Strict)
	report := v.ValidateChart(cfg, "loc")
	require.False(t, report.HasCritical())
}

func TestContrastRatioBlackOnWhiteIsMaximal(t *testing.T) {
	ratio, err := brand.ContrastRatio("#000000", "#FFFFFF")
	require.NoError(t, err)
	require.InDelta(t, 21.0, ratio, 0.5)
}

func TestCheckContrastBelowFloorIsCritical(t *testing.T) {
	issues := brand.CheckContrast("#777777", "#888888", "loc", 14)
	require.NotEmpty(t, issues)
	require.Equal(t, brand.Critical, issues[0].Severity)
}

func TestCheckContrastIgnoresSmallText(t *testing.T) {
	issues := brand.CheckContrast("#777777", "#888888", "loc", 10)
	require.Empty(t, issues)
}

func TestSyntheticDataFlagsSequentialIDs(t *testing.T) {
	issues := brand.CheckSyntheticData("id", []string{"1", "2", "3", "4"}, "loc")
	require.NotEmpty(t, issues)
}

func TestSyntheticDataFlagsPlaceholderColumnName(t *testing.T) {
	issues := brand.CheckSyntheticData("test_column", []string{"a", "b"}, "loc")
	require.NotEmpty(t, issues)
}

func TestSyntheticDataFlagsPlaceholderValueUnderCleanColumnName(t *testing.T) {
	issues := brand.CheckSyntheticData("Client", []string{"Test Corp", "Acme Holdings"}, "loc")
	require.NotEmpty(t, issues)
}

func TestDataQualityFlagsMostlyEmptyColumn(t *testing.T) {
	issues := brand.CheckDataQuality("notes", []string{"", "", "", "x"}, "loc")
	require.NotEmpty(t, issues)
	for _, i := range issues {
		require.Equal(t, brand.Warn, i.Severity)
	}
}

func TestDataQualityFlagsConstantColumn(t *testing.T) {
	issues := brand.CheckDataQuality("region", []string{"East", "East", "East"}, "loc")
	require.NotEmpty(t, issues)
}

func TestModeStrictBlocksOnWarnings(t *testing.T) {
	report := brand.Report{Warnings: 1}
	require.True(t, report.Blocks(brand.Strict))
	require.False(t, report.Blocks(brand.Lenient))
}

func TestModeLenientOnlyBlocksOnCritical(t *testing.T) {
	warnOnly := brand.Report{Warnings: 2}
	require.False(t, warnOnly.Blocks(brand.Lenient))

	critical := brand.Report{Critical: 1}
	require.True(t, critical.Blocks(brand.Lenient))
}
