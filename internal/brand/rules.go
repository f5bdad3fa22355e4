package brand

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/preston-fay/kie-v3-sub001/internal/domain"
)

// CheckPalette enforces that every color field in a chart config is
// drawn from the closed KDS palette (CRITICAL).
func CheckPalette(cfg *domain.ChartConfig, location string) []Issue {
	var issues []Issue
	for _, c := range cfg.Config.Colors {
		if !InPalette(c) {
			issues = append(issues, Issue{
				Class:    ClassPalette,
				Severity: Critical,
				Location: location,
				Message:  fmt.Sprintf("color %q is not in the KDS palette", c),
				Fix:      "Replace with a color from the approved KDS palette.",
			})
		}
	}
	return issues
}

// CheckGridlines enforces the no-gridlines invariant and that neither
// axis draws its own line or tick line (CRITICAL).
func CheckGridlines(cfg *domain.ChartConfig, location string) []Issue {
	var issues []Issue
	if cfg.Config.GridLines {
		issues = append(issues, Issue{
			Class:    ClassGridlines,
			Severity: Critical,
			Location: location,
			Message:  "config.gridLines is true; KDS charts never draw gridlines",
			Fix:      "Regenerate via `kie build` — chart configs are engine-produced and must not be hand-edited.",
		})
	}
	if cfg.Config.XAxis.AxisLine || cfg.Config.XAxis.TickLine {
		issues = append(issues, Issue{Class: ClassGridlines, Severity: Critical, Location: location, Message: "xAxis draws axisLine or tickLine", Fix: "Set xAxis.axisLine and xAxis.tickLine to false."})
	}
	if cfg.Config.YAxis.AxisLine || cfg.Config.YAxis.TickLine {
		issues = append(issues, Issue{Class: ClassGridlines, Severity: Critical, Location: location, Message: "yAxis draws axisLine or tickLine", Fix: "Set yAxis.axisLine and yAxis.tickLine to false."})
	}
	return issues
}

// CheckTypography enforces that fontFamily names Inter (CRITICAL).
func CheckTypography(cfg *domain.ChartConfig, location string) []Issue {
	if !strings.Contains(cfg.Config.FontFamily, "Inter") {
		return []Issue{{
			Class:    ClassTypography,
			Severity: Critical,
			Location: location,
			Message:  fmt.Sprintf("fontFamily %q does not include Inter", cfg.Config.FontFamily),
			Fix:      "Set config.fontFamily to the Inter stack.",
		}}
	}
	return nil
}

// CheckPieConstraint enforces 2-4 segments for pie charts (CRITICAL).
func CheckPieConstraint(cfg *domain.ChartConfig, location string) []Issue {
	if cfg.Type != domain.ChartPie {
		return nil
	}
	n := len(cfg.Data)
	if n < 2 || n > 4 {
		return []Issue{{
			Class:    ClassPieConstraint,
			Severity: Critical,
			Location: location,
			Message:  fmt.Sprintf("pie chart has %d segments; must have 2-4", n),
			Fix:      "Replanning should have chosen stacked-bar for >4 segments; re-run `kie analyze`.",
		}}
	}
	return nil
}

// CheckContrast enforces a WCAG contrast ratio of at least 4.5:1 between
// text and background colors for text of at least 12pt (CRITICAL).
func CheckContrast(textHex, bgHex, location string, pointSize float64) []Issue {
	if pointSize < 12 {
		return nil
	}
	ratio, err := ContrastRatio(textHex, bgHex)
	if err != nil {
		return []Issue{{
			Class:    ClassContrast,
			Severity: Critical,
			Location: location,
			Message:  fmt.Sprintf("could not evaluate contrast: %v", err),
		}}
	}
	if ratio < 4.5 {
		return []Issue{{
			Class:    ClassContrast,
			Severity: Critical,
			Location: location,
			Message:  fmt.Sprintf("contrast ratio %.2f:1 between %s and %s is below the 4.5:1 floor", ratio, textHex, bgHex),
			Fix:      "Use a KDS color pairing with sufficient contrast.",
		}}
	}
	return nil
}

// ContrastRatio computes the WCAG relative-luminance contrast ratio
// between two colors.
func ContrastRatio(aHex, bHex string) (float64, error) {
	a, err := colorful.Hex(aHex)
	if err != nil {
		return 0, fmt.Errorf("parsing %q: %w", aHex, err)
	}
	b, err := colorful.Hex(bHex)
	if err != nil {
		return 0, fmt.Errorf("parsing %q: %w", bHex, err)
	}
	la := relativeLuminance(a)
	lb := relativeLuminance(b)
	lighter, darker := la, lb
	if darker > lighter {
		lighter, darker = darker, lighter
	}
	return (lighter + 0.05) / (darker + 0.05), nil
}

func relativeLuminance(c colorful.Color) float64 {
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

var (
	syntheticNameRe     = regexp.MustCompile(`(?i)(^|[^a-z0-9])(test|sample|foo|bar|acme|corp|lorem|ipsum)($|[^a-z0-9])`)
	sequentialIDRe      = regexp.MustCompile(`^\d+$`)
	placeholderStringRe = regexp.MustCompile(`(?i)\b(todo|tbd|placeholder|xxx|n/?a)\b`)
)

// CheckSyntheticData flags column values that look fabricated: dictionary
// placeholder names, perfectly sequential integer IDs, or impossibly
// round numbers (CRITICAL).
func CheckSyntheticData(columnName string, values []string, location string) []Issue {
	var issues []Issue

	if syntheticNameRe.MatchString(columnName) {
		issues = append(issues, Issue{
			Class:    ClassSyntheticData,
			Severity: Critical,
			Location: location,
			Message:  fmt.Sprintf("column name %q looks like placeholder/test data", columnName),
			Fix:      "Confirm this is real consultant-provided data, not a fixture.",
		})
	}

	for _, v := range values {
		t := strings.TrimSpace(v)
		if t != "" && syntheticNameRe.MatchString(t) {
			issues = append(issues, Issue{
				Class:    ClassSyntheticData,
				Severity: Critical,
				Location: location,
				Message:  fmt.Sprintf("column %q contains placeholder-looking value %q", columnName, t),
				Fix:      "Confirm this is real consultant-provided data, not a fixture.",
			})
			break
		}
	}

	if isSequential(values) {
		issues = append(issues, Issue{
			Class:    ClassSyntheticData,
			Severity: Critical,
			Location: location,
			Message:  fmt.Sprintf("column %q is a perfectly sequential integer ID, consistent with synthetic data", columnName),
			Fix:      "Confirm this is real data; synthetic fixtures often use sequential IDs.",
		})
	}

	if roundCount, total := countImpossiblyRound(values); total > 0 && roundCount == total && total >= 3 {
		issues = append(issues, Issue{
			Class:    ClassSyntheticData,
			Severity: Critical,
			Location: location,
			Message:  fmt.Sprintf("every numeric value in column %q is a round number ending in multiple zeros", columnName),
			Fix:      "Confirm this is real data; uniformly round values are a synthetic-data signature.",
		})
	}

	return issues
}

func isSequential(values []string) bool {
	if len(values) < 3 {
		return false
	}
	prev := -1
	for _, v := range values {
		if !sequentialIDRe.MatchString(strings.TrimSpace(v)) {
			return false
		}
		n := 0
		for _, r := range v {
			n = n*10 + int(r-'0')
		}
		if prev != -1 && n != prev+1 {
			return false
		}
		prev = n
	}
	return true
}

func countImpossiblyRound(values []string) (round, total int) {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || !sequentialIDRe.MatchString(v) {
			continue
		}
		total++
		if len(v) >= 3 && strings.HasSuffix(v, "00") {
			round++
		}
	}
	return round, total
}

// CheckDataQuality flags nulls over 50%, constant columns, and
// placeholder/NaN/Inf markers (WARN).
func CheckDataQuality(columnName string, values []string, location string) []Issue {
	var issues []Issue
	total := len(values)
	if total == 0 {
		return nil
	}

	empty := 0
	distinct := map[string]bool{}
	for _, v := range values {
		t := strings.TrimSpace(v)
		if t == "" {
			empty++
			continue
		}
		distinct[t] = true
		if placeholderStringRe.MatchString(t) {
			issues = append(issues, Issue{
				Class:    ClassDataQuality,
				Severity: Warn,
				Location: location,
				Message:  fmt.Sprintf("column %q contains placeholder value %q", columnName, t),
				Fix:      "Replace placeholder values with real data or drop the column.",
			})
		}
		if lower := strings.ToLower(t); lower == "nan" || lower == "inf" || lower == "-inf" || lower == "+inf" {
			issues = append(issues, Issue{
				Class:    ClassDataQuality,
				Severity: Warn,
				Location: location,
				Message:  fmt.Sprintf("column %q contains a non-finite value %q", columnName, t),
				Fix:      "Clean the source data before re-running `kie eda`.",
			})
		}
	}

	if float64(empty)/float64(total) > 0.5 {
		issues = append(issues, Issue{
			Class:    ClassDataQuality,
			Severity: Warn,
			Location: location,
			Message:  fmt.Sprintf("column %q is more than 50%% empty (%d/%d)", columnName, empty, total),
			Fix:      "Exclude this column from analysis or backfill missing values.",
		})
	}
	if total-empty > 1 && len(distinct) == 1 {
		issues = append(issues, Issue{
			Class:    ClassDataQuality,
			Severity: Warn,
			Location: location,
			Message:  fmt.Sprintf("column %q has a single constant value across all rows", columnName),
			Fix:      "A constant column carries no analytic signal; consider dropping it.",
		})
	}

	return issues
}

// CheckContent flags placeholder strings and overlong sentences in
// chart titles/subtitles (WARN).
func CheckContent(cfg *domain.ChartConfig, location string) []Issue {
	var issues []Issue
	for _, text := range []string{cfg.Title, cfg.Subtitle} {
		if text == "" {
			continue
		}
		if placeholderStringRe.MatchString(text) {
			issues = append(issues, Issue{
				Class:    ClassContent,
				Severity: Warn,
				Location: location,
				Message:  fmt.Sprintf("text %q contains a placeholder marker", text),
				Fix:      "Replace with finished copy before delivery.",
			})
		}
		if wordCount(text) > 40 {
			issues = append(issues, Issue{
				Class:    ClassContent,
				Severity: Warn,
				Location: location,
				Message:  "title/subtitle exceeds 40 words",
				Fix:      "Shorten to a single clear sentence.",
			})
		}
	}
	return issues
}

func wordCount(s string) int {
	return len(strings.FieldsFunc(s, func(r rune) bool { return unicode.IsSpace(r) }))
}

// CheckReadability flags a chart with no title (INFO). Axis label length
// and axis titles are not checked.
func CheckReadability(cfg *domain.ChartConfig, location string) []Issue {
	var issues []Issue
	if cfg.Title == "" {
		issues = append(issues, Issue{
			Class:    ClassReadability,
			Severity: Info,
			Location: location,
			Message:  "chart has no title",
			Fix:      "Add a descriptive title.",
		})
	}
	return issues
}
