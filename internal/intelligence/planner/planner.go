// Package planner implements the Visualization Planner (the plan
// Skill, spec.md §4.4.5): it maps kept insights to chart intents using
// a fixed rubric. Downstream chart generation may read only the plan
// this package emits — never the raw insights directly.
package planner

import (
	"fmt"
	"time"

	"github.com/preston-fay/kie-v3-sub001/internal/domain"
)

// Plan builds a VisualizationPlan from triaged insights. Suppressed and
// merged insights are represented too, as Suppressed plan items, so the
// plan can explain every omission without downstream code ever touching
// raw insights again.
func Plan(insights []domain.RawInsight, mapping *domain.ColumnMapping, now time.Time) *domain.VisualizationPlan {
	plan := &domain.VisualizationPlan{GeneratedAt: now}

	for _, ins := range insights {
		if ins.Disposition != domain.DispositionKeep {
			plan.Items = append(plan.Items, suppressedItem(ins))
			continue
		}
		plan.Items = append(plan.Items, itemFor(ins, mapping))
	}

	return plan
}

func suppressedItem(ins domain.RawInsight) domain.VisualizationPlanItem {
	reason := ins.SuppressReason
	if ins.Disposition == domain.DispositionMerge {
		reason = "merged into " + ins.MergedInto
	}
	return domain.VisualizationPlanItem{
		Rationale:   reason,
		Priority:    ins.Priority,
		InsightRefs: []string{ins.ID},
		Suppressed:  true,
	}
}

func itemFor(ins domain.RawInsight, mapping *domain.ColumnMapping) domain.VisualizationPlanItem {
	item := domain.VisualizationPlanItem{
		Priority:    ins.Priority,
		InsightRefs: []string{ins.ID},
		Rationale:   ins.Narrative,
	}

	x, y := axisFields(ins, mapping)
	item.X, item.Y = x, y

	switch ins.Kind {
	case domain.KindTrend:
		item.ChartType = domain.ChartLine
		item.Title = fmt.Sprintf("%s over time", y)
		item.DataSliceSpec = domain.DataSliceSpec{GroupBy: []string{x}, Aggregate: "sum"}

	case domain.KindComparison:
		item.ChartType = domain.ChartBar
		item.Title = fmt.Sprintf("%s by %s", y, x)
		item.DataSliceSpec = domain.DataSliceSpec{GroupBy: []string{x}, Aggregate: "mean"}

	case domain.KindComposition:
		if len(ins.Entities) <= 4 {
			item.ChartType = domain.ChartPie
		} else {
			item.ChartType = domain.ChartBar // stacked-bar rendering; domain has one bar type, orientation is a render-time concern
			item.Subtitle = "stacked"
		}
		item.Title = fmt.Sprintf("Composition of %s by %s", y, x)
		item.DataSliceSpec = domain.DataSliceSpec{GroupBy: []string{x}, Aggregate: "sum"}

	case domain.KindCorrelation:
		item.ChartType = domain.ChartScatter
		if len(ins.SourceColumns) == 2 {
			item.X, item.Y = ins.SourceColumns[0], ins.SourceColumns[1]
		}
		item.Title = fmt.Sprintf("%s vs %s", item.X, item.Y)
		item.DataSliceSpec = domain.DataSliceSpec{}

	case domain.KindConcentration:
		item.ChartType = domain.ChartBar
		item.Title = fmt.Sprintf("Concentration of %s by %s", y, x)
		item.DataSliceSpec = domain.DataSliceSpec{GroupBy: []string{x}, Aggregate: "sum"}
		item.Subtitle = "sorted"

	case domain.KindRanking:
		item.ChartType = domain.ChartBar
		item.Title = fmt.Sprintf("%s ranked by %s", x, y)
		item.DataSliceSpec = domain.DataSliceSpec{GroupBy: []string{x}, Aggregate: "sum"}
		item.Subtitle = "horizontal"

	case domain.KindOutlier:
		item.ChartType = domain.ChartCombo
		item.Title = fmt.Sprintf("%s outliers", y)
		item.DataSliceSpec = domain.DataSliceSpec{}

	default:
		item.ChartType = domain.ChartCombo
		item.Title = "Combination view"
	}

	return item
}

// axisFields picks X (category/date) and Y (measure) fields for an
// insight, honoring spec.column_mapping overrides via the mapping's
// already-resolved assignments — the planner never re-derives roles
// itself, it only reads the mapper's output.
func axisFields(ins domain.RawInsight, mapping *domain.ColumnMapping) (x, y string) {
	if a := mapping.ByRole(domain.RoleDate); a != nil && ins.Kind == domain.KindTrend {
		x = a.Column
	} else if a := mapping.ByRole(domain.RoleCategory); a != nil {
		x = a.Column
	}

	for _, role := range []domain.Role{domain.RoleRevenue, domain.RoleCost, domain.RoleMargin, domain.RoleQuantity} {
		if a := mapping.ByRole(role); a != nil {
			y = a.Column
			break
		}
	}

	if len(ins.SourceColumns) > 0 && x == "" {
		x = ins.SourceColumns[0]
	}
	if len(ins.SourceColumns) > 1 && y == "" {
		y = ins.SourceColumns[1]
	}

	return x, y
}
