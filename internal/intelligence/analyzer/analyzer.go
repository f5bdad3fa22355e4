// Package analyzer implements the Statistical Analyzer (the analyze
// Skill, spec.md §4.4.3): it turns a column mapping and a loaded table
// into raw insights across a fixed kind-set. Every insight cites its
// source columns — no kind here is allowed to claim a result without
// naming the columns it came from.
package analyzer

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/preston-fay/kie-v3-sub001/internal/domain"
	"github.com/preston-fay/kie-v3-sub001/internal/intelligence/loader"
)

// Analyze runs every applicable analysis kind against the table, using
// mapping to find the measure/category/date/region columns. A kind is
// skipped (not emitted as an empty/fabricated insight) when its
// required roles are unmapped.
func Analyze(table *loader.Table, mapping *domain.ColumnMapping) []domain.RawInsight {
	var insights []domain.RawInsight

	insights = append(insights, trendInsights(table, mapping)...)
	insights = append(insights, comparisonInsights(table, mapping)...)
	insights = append(insights, outlierInsights(table, mapping)...)
	insights = append(insights, correlationInsights(table, mapping)...)
	insights = append(insights, concentrationInsights(table, mapping)...)
	insights = append(insights, compositionInsights(table, mapping)...)
	insights = append(insights, rankingInsights(table, mapping)...)

	return insights
}

func measureColumn(mapping *domain.ColumnMapping) (string, bool) {
	for _, role := range []domain.Role{domain.RoleRevenue, domain.RoleCost, domain.RoleMargin, domain.RoleQuantity} {
		if a := mapping.ByRole(role); a != nil {
			return a.Column, true
		}
	}
	return "", false
}

func newID() string { return uuid.NewString() }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func toFloats(values []string) []float64 {
	var out []float64
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			out = append(out, f)
		}
	}
	return out
}

// --- trend: time series slope + change-point test ---

func trendInsights(table *loader.Table, mapping *domain.ColumnMapping) []domain.RawInsight {
	dateAssign := mapping.ByRole(domain.RoleDate)
	measureCol, ok := measureColumn(mapping)
	if dateAssign == nil || !ok {
		return nil
	}

	dates := table.Column(dateAssign.Column)
	values := table.Column(measureCol)
	n := len(values)
	if n < 4 {
		return nil
	}

	series := toFloats(values)
	if len(series) < 4 {
		return nil
	}

	slope := linearSlope(series)
	half := len(series) / 2
	firstMean := mean(series[:half])
	secondMean := mean(series[half:])
	changePoint := math.Abs(secondMean-firstMean) / (math.Abs(firstMean) + 1e-9)

	magnitude := clamp01(changePoint)
	confidence := sampleConfidence(len(series))

	direction := "rising"
	if slope < 0 {
		direction = "falling"
	}

	return []domain.RawInsight{{
		ID:            newID(),
		Kind:          domain.KindTrend,
		Entities:      []string{measureCol},
		Magnitude:     magnitude,
		Confidence:    confidence,
		SourceColumns: []string{dateAssign.Column, measureCol},
		Narrative:     fmt.Sprintf("%s is %s over the observed period (%d points), with a %.0f%% shift between the first and second half.", measureCol, direction, len(dates), changePoint*100),
	}}
}

func linearSlope(series []float64) float64 {
	n := float64(len(series))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range series {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleConfidence grows toward 1 with sample size without ever
// reaching it, since no sample is ever fully conclusive.
func sampleConfidence(n int) float64 {
	return clamp01(1 - 1/(1+float64(n)/10))
}

// --- comparison: groupwise aggregates with effect size ---

func comparisonInsights(table *loader.Table, mapping *domain.ColumnMapping) []domain.RawInsight {
	catAssign := mapping.ByRole(domain.RoleCategory)
	measureCol, ok := measureColumn(mapping)
	if catAssign == nil || !ok {
		return nil
	}

	groups := groupValues(table, catAssign.Column, measureCol)
	if len(groups) < 2 {
		return nil
	}

	keys := sortedKeys(groups)
	top, second := keys[0], keys[1]
	a, b := groups[top], groups[second]
	if len(a) < 2 || len(b) < 2 {
		return nil
	}

	meanA, meanB := mean(a), mean(b)
	pooledStd := pooledStdDev(a, b)
	effectSize := 0.0
	if pooledStd > 0 {
		effectSize = math.Abs(meanA-meanB) / pooledStd
	}

	return []domain.RawInsight{{
		ID:            newID(),
		Kind:          domain.KindComparison,
		Entities:      []string{top, second},
		Magnitude:     clamp01(effectSize / 2),
		Confidence:    sampleConfidence(len(a) + len(b)),
		SourceColumns: []string{catAssign.Column, measureCol},
		Narrative:     fmt.Sprintf("%s leads %s by %s on average (%.2f vs %.2f), an effect size of %.2f.", top, second, measureCol, meanA, meanB, effectSize),
	}}
}

func groupValues(table *loader.Table, groupCol, measureCol string) map[string][]float64 {
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

func sortedKeys(groups map[string][]float64) []string {
	sums := make(map[string]float64, len(groups))
	for k, vs := range groups {
		sums[k] = lo.Sum(vs)
	}
	keys := lo.Keys(sums)
	sort.Slice(keys, func(i, j int) bool { return sums[keys[i]] > sums[keys[j]] })
	return keys
}

func pooledStdDev(a, b []float64) float64 {
	va, vb := variance(a), variance(b)
	na, nb := float64(len(a)), float64(len(b))
	if na+nb-2 <= 0 {
		return 0
	}
	return math.Sqrt(((na-1)*va + (nb-1)*vb) / (na + nb - 2))
}

func variance(xs []float64) float64 {
	m := mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	if len(xs) == 0 {
		return 0
	}
	return sum / float64(len(xs))
}

// --- outlier: robust z-score (median + MAD) ---

func outlierInsights(table *loader.Table, mapping *domain.ColumnMapping) []domain.RawInsight {
	measureCol, ok := measureColumn(mapping)
	if !ok {
		return nil
	}
	values := toFloats(table.Column(measureCol))
	if len(values) < 5 {
		return nil
	}

	med := median(values)
	mad := medianAbsoluteDeviation(values, med)
	if mad == 0 {
		return nil
	}

	var worstValue float64
	worstZ := 0.0
	for _, v := range values {
		z := 0.6745 * (v - med) / mad
		if math.Abs(z) > math.Abs(worstZ) {
			worstZ = z
			worstValue = v
		}
	}
	if math.Abs(worstZ) < 3.5 {
		return nil
	}

	return []domain.RawInsight{{
		ID:            newID(),
		Kind:          domain.KindOutlier,
		Entities:      []string{fmt.Sprintf("%v", worstValue)},
		Magnitude:     clamp01(math.Abs(worstZ) / 10),
		Confidence:    sampleConfidence(len(values)),
		SourceColumns: []string{measureCol},
		Narrative:     fmt.Sprintf("%s contains an outlier value %.2f with a robust z-score of %.2f.", measureCol, worstValue, worstZ),
	}}
}

func median(xs []float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func medianAbsoluteDeviation(xs []float64, med float64) float64 {
	devs := make([]float64, len(xs))
	for i, x := range xs {
		devs[i] = math.Abs(x - med)
	}
	return median(devs)
}

// --- correlation: pairwise rank correlation with cardinality guards ---

func correlationInsights(table *loader.Table, mapping *domain.ColumnMapping) []domain.RawInsight {
	var numericCols []string
	for _, role := range []domain.Role{domain.RoleRevenue, domain.RoleCost, domain.RoleMargin, domain.RoleQuantity} {
		if a := mapping.ByRole(role); a != nil {
			numericCols = append(numericCols, a.Column)
		}
	}
	if len(numericCols) < 2 {
		return nil
	}

	var insights []domain.RawInsight
	for i := 0; i < len(numericCols); i++ {
		for j := i + 1; j < len(numericCols); j++ {
			a := toFloats(table.Column(numericCols[i]))
			b := toFloats(table.Column(numericCols[j]))
			n := minInt(len(a), len(b))
			if n < 10 { // cardinality guard: too few paired points to trust a rank correlation
				continue
			}
			rho := spearman(a[:n], b[:n])
			if math.Abs(rho) < 0.3 {
				continue
			}
			insights = append(insights, domain.RawInsight{
				ID:            newID(),
				Kind:          domain.KindCorrelation,
				Entities:      []string{numericCols[i], numericCols[j]},
				Magnitude:     clamp01(math.Abs(rho)),
				Confidence:    sampleConfidence(n),
				SourceColumns: []string{numericCols[i], numericCols[j]},
				Narrative:     fmt.Sprintf("%s and %s move together with a rank correlation of %.2f.", numericCols[i], numericCols[j], rho),
			})
		}
	}
	return insights
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func spearman(a, b []float64) float64 {
	ra, rb := rank(a), rank(b)
	n := float64(len(a))
	var sumD2 float64
	for i := range ra {
		d := ra[i] - rb[i]
		sumD2 += d * d
	}
	if n < 2 {
		return 0
	}
	return 1 - (6*sumD2)/(n*(n*n-1))
}

func rank(xs []float64) []float64 {
	type idxVal struct {
		i int
		v float64
	}
	indexed := make([]idxVal, len(xs))
	for i, v := range xs {
		indexed[i] = idxVal{i, v}
	}
	sort.Slice(indexed, func(i, j int) bool { return indexed[i].v < indexed[j].v })

	ranks := make([]float64, len(xs))
	for pos, iv := range indexed {
		ranks[iv.i] = float64(pos + 1)
	}
	return ranks
}

// --- concentration: top-k share of a measure by group ---

func concentrationInsights(table *loader.Table, mapping *domain.ColumnMapping) []domain.RawInsight {
	catAssign := mapping.ByRole(domain.RoleCategory)
	measureCol, ok := measureColumn(mapping)
	if catAssign == nil || !ok {
		return nil
	}

	groups := groupValues(table, catAssign.Column, measureCol)
	if len(groups) < 3 {
		return nil
	}

	totals := map[string]float64{}
	grandTotal := 0.0
	for k, vs := range groups {
		s := lo.Sum(vs)
		totals[k] = s
		grandTotal += s
	}
	if grandTotal == 0 {
		return nil
	}

	keys := lo.Keys(totals)
	sort.Slice(keys, func(i, j int) bool { return totals[keys[i]] > totals[keys[j]] })

	k := 3
	if k > len(keys) {
		k = len(keys)
	}
	topSum := 0.0
	for _, key := range keys[:k] {
		topSum += totals[key]
	}
	share := topSum / grandTotal

	return []domain.RawInsight{{
		ID:            newID(),
		Kind:          domain.KindConcentration,
		Entities:      keys[:k],
		Magnitude:     clamp01(share),
		Confidence:    sampleConfidence(len(keys)),
		SourceColumns: []string{catAssign.Column, measureCol},
		Narrative:     fmt.Sprintf("The top %d of %d %s groups account for %.0f%% of total %s.", k, len(keys), catAssign.Column, share*100, measureCol),
	}}
}

// --- composition: each group's share of the measure total ---
// Shares are computed over the whole table; there is no breakdown over time.

func compositionInsights(table *loader.Table, mapping *domain.ColumnMapping) []domain.RawInsight {
	catAssign := mapping.ByRole(domain.RoleCategory)
	measureCol, ok := measureColumn(mapping)
	if catAssign == nil || !ok {
		return nil
	}

	groups := groupValues(table, catAssign.Column, measureCol)
	if len(groups) < 2 || len(groups) > 8 {
		return nil // composition only reads as a chart when the part count is reasonable
	}

	totals := map[string]float64{}
	grandTotal := 0.0
	for k, vs := range groups {
		s := lo.Sum(vs)
		totals[k] = s
		grandTotal += s
	}
	if grandTotal == 0 {
		return nil
	}

	keys := lo.Keys(totals)
	sort.Strings(keys)

	largestShare := 0.0
	for _, k := range keys {
		share := totals[k] / grandTotal
		if share > largestShare {
			largestShare = share
		}
	}

	return []domain.RawInsight{{
		ID:            newID(),
		Kind:          domain.KindComposition,
		Entities:      keys,
		Magnitude:     clamp01(largestShare),
		Confidence:    sampleConfidence(len(groups)),
		SourceColumns: []string{catAssign.Column, measureCol},
		Narrative:     fmt.Sprintf("%s is composed of %d %s groups; the largest holds %.0f%% of the total.", measureCol, len(keys), catAssign.Column, largestShare*100),
	}}
}

// --- ranking: ordered groups by measure ---

func rankingInsights(table *loader.Table, mapping *domain.ColumnMapping) []domain.RawInsight {
	catAssign := mapping.ByRole(domain.RoleCategory)
	measureCol, ok := measureColumn(mapping)
	if catAssign == nil || !ok {
		return nil
	}

	groups := groupValues(table, catAssign.Column, measureCol)
	if len(groups) < 2 {
		return nil
	}

	totals := map[string]float64{}
	for k, vs := range groups {
		totals[k] = lo.Sum(vs)
	}
	keys := lo.Keys(totals)
	sort.Slice(keys, func(i, j int) bool { return totals[keys[i]] > totals[keys[j]] })

	spread := 0.0
	if totals[keys[len(keys)-1]] != 0 {
		spread = (totals[keys[0]] - totals[keys[len(keys)-1]]) / math.Abs(totals[keys[len(keys)-1]])
	}

	return []domain.RawInsight{{
		ID:            newID(),
		Kind:          domain.KindRanking,
		Entities:      keys,
		Magnitude:     clamp01(spread / 2),
		Confidence:    sampleConfidence(len(keys)),
		SourceColumns: []string{catAssign.Column, measureCol},
		Narrative:     fmt.Sprintf("Ranked by %s, %s leads and %s trails across %d groups.", measureCol, keys[0], keys[len(keys)-1], len(keys)),
	}}
}
