package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/preston-fay/kie-v3-sub001/internal/brand"
	"github.com/preston-fay/kie-v3-sub001/internal/domain"
	"github.com/preston-fay/kie-v3-sub001/internal/intelligence/loader"
)

// buildChartConfigs turns a VisualizationPlan's kept items into
// render-ready ChartConfigs, pre-populated with the KDS-compliant
// defaults (no gridlines, Inter font stack, palette colors) so a
// freshly built chart starts in a state the Brand Validator accepts.
// Per-item Data is computed from table against the item's
// DataSliceSpec — build is the one stage that still has the source
// table in hand, so it is also the one that has to fill charts with
// real values.
func buildChartConfigs(plan *domain.VisualizationPlan, theme domain.Theme, table *loader.Table) map[string]*domain.ChartConfig {
	charts := make(map[string]*domain.ChartConfig)
	axis := domain.AxisStyle{AxisLine: false, TickLine: false}

	for i, item := range plan.Items {
		if item.Suppressed {
			continue
		}
		name := fmt.Sprintf("%02d_%s", i+1, item.ChartType)
		data := chartData(item, table)
		cfg := &domain.ChartConfig{
			Type:     item.ChartType,
			Title:    item.Title,
			Subtitle: item.Subtitle,
			Data:     data,
			Config: domain.ChartConfigBody{
				GridLines:  false,
				XAxis:      axis,
				YAxis:      axis,
				FontFamily: "Inter, -apple-system, sans-serif",
				Colors:     paletteFor(data, theme),
				Legend:     true,
				Tooltip:    true,
			},
		}
		charts[name] = cfg
	}
	return charts
}

// chartData resolves a plan item's rows straight from the source
// table. A GroupBy'd item aggregates the Y measure per group via
// item.DataSliceSpec.Aggregate, mirroring the analyzer's own
// group-then-aggregate pattern; an item with no GroupBy (correlation,
// outlier) emits one row per source record instead. Pie charts are
// capped to their top 4 groups by aggregate value, since the Brand
// Validator rejects a pie with more segments and a stacked-bar
// fallback is only ever chosen at plan time, not here.
func chartData(item domain.VisualizationPlanItem, table *loader.Table) []map[string]any {
	if table == nil || item.X == "" || item.Y == "" {
		return nil
	}

	if len(item.DataSliceSpec.GroupBy) == 0 {
		return rawRows(table, item.X, item.Y)
	}

	groupCol := item.DataSliceSpec.GroupBy[0]
	groups := groupMeasure(table, groupCol, item.Y)
	keys := rankedGroups(groups)

	if item.ChartType == domain.ChartPie && len(keys) > 4 {
		keys = keys[:4]
	}

	rows := make([]map[string]any, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, map[string]any{groupCol: k, item.Y: aggregate(groups[k], item.DataSliceSpec.Aggregate)})
	}
	return rows
}

// rawRows pairs X/Y straight off the table, one row per record, for
// plan items whose DataSliceSpec carries no GroupBy (scatter/combo
// views over raw pairs rather than aggregates).
func rawRows(table *loader.Table, xCol, yCol string) []map[string]any {
	xs, ys := table.Column(xCol), table.Column(yCol)
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	rows := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		row := map[string]any{xCol: xs[i]}
		if f, err := strconv.ParseFloat(strings.TrimSpace(ys[i]), 64); err == nil {
			row[yCol] = f
		} else {
			row[yCol] = ys[i]
		}
		rows = append(rows, row)
	}
	return rows
}

// groupMeasure buckets measureCol's numeric values by groupCol,
// skipping blank groups and unparseable measures the same way
// analyzer.groupValues does.
func groupMeasure(table *loader.Table, groupCol, measureCol string) map[string][]float64 {
	groupVals := table.Column(groupCol)
	measureVals := table.Column(measureCol)
	out := map[string][]float64{}
	for i, g := range groupVals {
		g = strings.TrimSpace(g)
		if g == "" || i >= len(measureVals) {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(measureVals[i]), 64)
		if err != nil {
			continue
		}
		out[g] = append(out[g], f)
	}
	return out
}

// rankedGroups orders group keys by aggregate value descending, so a
// capped top-4 pie or a ranking bar chart surfaces its largest
// segments first.
func rankedGroups(groups map[string][]float64) []string {
	sums := make(map[string]float64, len(groups))
	for k, vs := range groups {
		sums[k] = lo.Sum(vs)
	}
	keys := lo.Keys(sums)
	sort.Slice(keys, func(i, j int) bool { return sums[keys[i]] > sums[keys[j]] })
	return keys
}

func aggregate(values []float64, kind string) float64 {
	if kind == "mean" {
		if len(values) == 0 {
			return 0
		}
		return lo.Sum(values) / float64(len(values))
	}
	return lo.Sum(values)
}

// paletteFor picks as many distinct KDS colors as the chart has rows
// (at least two). The list is capped at the palette's length: a chart
// with more rows than palette colors gets the full palette once, not a
// cycled list.
func paletteFor(data []map[string]any, _ domain.Theme) []string {
	n := len(data)
	if n < 2 {
		n = 2
	}
	if n > len(brand.Palette) {
		n = len(brand.Palette)
	}
	return append([]string{}, brand.Palette[:n]...)
}
