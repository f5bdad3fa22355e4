package loader

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/preston-fay/kie-v3-sub001/internal/domain"
)

var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"01/02/06",
}

// Profile infers a per-column type and quality summary for a Table,
// then rolls it into an EDAProfile. Quality problems (>50% null,
// constant column, >90% unique categorical) are recorded as warnings —
// they never fail the load itself (spec.md §4.4.1).
func Profile(sourcePath string, t *Table, now time.Time) *domain.EDAProfile {
	profile := &domain.EDAProfile{
		SourcePath:  sourcePath,
		Shape:       [2]int{t.NumRows(), t.NumCols()},
		GeneratedAt: now,
	}

	for _, name := range t.Columns {
		col := profileColumn(name, t.Column(name))
		profile.Columns = append(profile.Columns, col)
		profile.QualityWarnings = append(profile.QualityWarnings, col.Warnings...)
	}

	return profile
}

func profileColumn(name string, values []string) domain.ColumnProfile {
	total := len(values)
	nullCount := 0
	distinct := map[string]int{}
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			nullCount++
			continue
		}
		distinct[v]++
	}

	col := domain.ColumnProfile{
		Name:        name,
		NullCount:   nullCount,
		UniqueCount: len(distinct),
	}
	if total > 0 {
		col.NullFraction = float64(nullCount) / float64(total)
		col.UniqueFraction = float64(len(distinct)) / float64(total)
	}
	col.IsConstant = total-nullCount > 1 && len(distinct) == 1
	col.Type = inferType(values, distinct)
	// A string-valued identifier (every label distinct) is still a
	// high-cardinality categorical column; a numeric row ID is not.
	highCardCandidate := col.Type == domain.ColumnCategorical
	if col.Type == domain.ColumnIdentifier {
		for _, v := range values {
			t := strings.TrimSpace(v)
			if _, err := strconv.ParseFloat(t, 64); t != "" && err != nil {
				highCardCandidate = true
				break
			}
		}
	}
	col.HighCardinality = highCardCandidate && col.UniqueFraction > 0.9

	if col.Type == domain.ColumnNumeric {
		mean, std, min, max := numericStats(values)
		col.Mean, col.StdDev, col.Min, col.Max = mean, std, min, max
	}

	if col.NullFraction > 0.5 {
		col.Warnings = append(col.Warnings, fmt.Sprintf("column %q is more than 50%% null", name))
	}
	if col.IsConstant {
		col.Warnings = append(col.Warnings, fmt.Sprintf("column %q is constant", name))
	}
	if col.HighCardinality {
		col.Warnings = append(col.Warnings, fmt.Sprintf("column %q is a high-cardinality categorical (%0.0f%% unique)", name, col.UniqueFraction*100))
	}

	return col
}

func inferType(values []string, distinct map[string]int) domain.ColumnType {
	nonEmpty := 0
	numeric := 0
	boolean := 0
	datetime := 0
	maxLen := 0

	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		nonEmpty++
		if len(v) > maxLen {
			maxLen = len(v)
		}
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			numeric++
		}
		if isBoolLiteral(v) {
			boolean++
		}
		if parseDatetime(v) {
			datetime++
		}
	}

	if nonEmpty == 0 {
		return domain.ColumnTextual
	}

	uniqueFraction := 0.0
	if nonEmpty > 0 {
		uniqueFraction = float64(len(distinct)) / float64(nonEmpty)
	}

	switch {
	case boolean == nonEmpty:
		return domain.ColumnBoolean
	case datetime == nonEmpty:
		return domain.ColumnDatetime
	case numeric == nonEmpty:
		// An all-numeric column that is also ~100% unique and monotone-looking
		// (e.g. a synthetic row ID) is an identifier, not a measure.
		if uniqueFraction > 0.98 && looksSequential(values) {
			return domain.ColumnIdentifier
		}
		return domain.ColumnNumeric
	case uniqueFraction > 0.98 && maxLen <= 24:
		return domain.ColumnIdentifier
	case maxLen > 64:
		return domain.ColumnTextual
	default:
		return domain.ColumnCategorical
	}
}

func isBoolLiteral(v string) bool {
	switch strings.ToLower(v) {
	case "true", "false", "yes", "no", "y", "n":
		return true
	default:
		return false
	}
}

func parseDatetime(v string) bool {
	for _, layout := range datetimeLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}

func looksSequential(values []string) bool {
	prev, havePrev := 0.0, false
	ordered := true
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		if havePrev && f <= prev {
			ordered = false
			break
		}
		prev, havePrev = f, true
	}
	return ordered
}

func numericStats(values []string) (mean, std, min, max float64) {
	var nums []float64
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		nums = append(nums, f)
	}
	if len(nums) == 0 {
		return 0, 0, 0, 0
	}

	min, max = nums[0], nums[0]
	sum := 0.0
	for _, n := range nums {
		sum += n
		if n < min {
			min = n
		}
		if n > max {
			max = n
		}
	}
	mean = sum / float64(len(nums))

	variance := 0.0
	for _, n := range nums {
		d := n - mean
		variance += d * d
	}
	variance /= float64(len(nums))
	std = math.Sqrt(variance)

	return mean, std, min, max
}
