package brand

import (
	"fmt"

	"github.com/preston-fay/kie-v3-sub001/internal/domain"
)

// ColumnSample is a column's raw values, used by the synthetic-data and
// data-quality checks.
type ColumnSample struct {
	Name   string
	Values []string
}

// Validator runs the full Brand Validator rule set.
type Validator struct {
	Mode Mode
}

// New constructs a Validator in the given mode.
func New(mode Mode) *Validator {
	return &Validator{Mode: mode}
}

// ValidateChart runs the palette, gridline, typography, pie-constraint,
// content, and readability rules against one Chart Configuration.
// Contrast is not checked here; CheckContrast takes explicit text and
// background colors. location is typically the chart's output file path.
func (v *Validator) ValidateChart(cfg *domain.ChartConfig, location string) Report {
	var issues []Issue
	issues = append(issues, CheckPalette(cfg, location)...)
	issues = append(issues, CheckGridlines(cfg, location)...)
	issues = append(issues, CheckTypography(cfg, location)...)
	issues = append(issues, CheckPieConstraint(cfg, location)...)
	issues = append(issues, CheckContent(cfg, location)...)
	issues = append(issues, CheckReadability(cfg, location)...)
	return summarize(issues)
}

// ValidateDataset runs every column-level rule class against the raw
// data backing a deliverable.
func (v *Validator) ValidateDataset(columns []ColumnSample, location string) Report {
	var issues []Issue
	for _, col := range columns {
		issues = append(issues, CheckSyntheticData(col.Name, col.Values, fmt.Sprintf("%s:%s", location, col.Name))...)
		issues = append(issues, CheckDataQuality(col.Name, col.Values, fmt.Sprintf("%s:%s", location, col.Name))...)
	}
	return summarize(issues)
}

// ValidateAll runs both chart- and dataset-level rule classes and merges
// the results into a single report, the shape submitted to the post-gate.
func (v *Validator) ValidateAll(charts map[string]*domain.ChartConfig, columns []ColumnSample) Report {
	var issues []Issue
	for location, cfg := range charts {
		chartReport := v.ValidateChart(cfg, location)
		issues = append(issues, chartReport.Issues...)
	}
	datasetReport := v.ValidateDataset(columns, "data")
	issues = append(issues, datasetReport.Issues...)
	return summarize(issues)
}

// CriticalMessages extracts just the human-readable CRITICAL messages,
// the form the post-gate records on a chart configuration's Evidence
// Record when it downgrades success to BLOCK.
func (r Report) CriticalMessages() []string {
	var out []string
	for _, i := range r.Issues {
		if i.Severity == Critical {
			out = append(out, string(i.Class)+": "+i.Message)
		}
	}
	return out
}
