// Package triage implements the Triage Skill (spec.md §4.4.4): it tags
// every raw insight keep/suppress/merge and assigns a priority score,
// so the planner only ever sees what survived.
package triage

import (
	"math"
	"sort"
	"strings"

	"github.com/preston-fay/kie-v3-sub001/internal/domain"
	"github.com/preston-fay/kie-v3-sub001/internal/intelligence/mapper"
)

// Weights are the configuration-driven priority coefficients (spec.md:
// "Weights are configuration, not hard-coded").
type Weights struct {
	Alpha float64 // magnitude
	Beta  float64 // confidence
	Gamma float64 // objective-relevance
}

// Floors are the suppression thresholds.
type Floors struct {
	Magnitude  float64
	Confidence float64
}

// Run triages a batch of raw insights in place and returns the same
// slice, now annotated with Disposition/Priority/SuppressReason/MergedInto.
// Suppressed and merged insights are retained in the output — the
// planner and the Trust Bundle both need to explain omissions, so
// nothing here is ever deleted.
func Run(insights []domain.RawInsight, objective string, mapping *domain.ColumnMapping, weights Weights, floors Floors) []domain.RawInsight {
	objectiveRelevantCols := objectiveRelevantColumns(mapping, objective)

	dedupe(insights)
	suppressBelowFloors(insights, floors, objectiveRelevantCols)
	mergeEntailed(insights)
	assignPriority(insights, objective, mapping, weights)

	return insights
}

// dedupe marks every non-maximal member of an overlapping-entity,
// identical-kind group as suppressed, keeping only the highest
// magnitude representative as a keep candidate.
func dedupe(insights []domain.RawInsight) {
	groups := map[string][]int{}
	for i, ins := range insights {
		if ins.Disposition != "" {
			continue
		}
		key := string(ins.Kind)
		groups[key] = append(groups[key], i)
	}

	for _, idxs := range groups {
		clusters := clusterByOverlap(insights, idxs)
		for _, cluster := range clusters {
			if len(cluster) < 2 {
				continue
			}
			best := cluster[0]
			for _, idx := range cluster[1:] {
				if insights[idx].Magnitude > insights[best].Magnitude {
					best = idx
				}
			}
			for _, idx := range cluster {
				if idx == best {
					continue
				}
				insights[idx].Disposition = domain.DispositionSuppress
				insights[idx].SuppressReason = "duplicate of a higher-magnitude insight of the same kind with overlapping entities"
			}
		}
	}
}

// clusterByOverlap groups indices whose Entities sets share at least
// one element, transitively.
func clusterByOverlap(insights []domain.RawInsight, idxs []int) [][]int {
	parent := map[int]int{}
	for _, i := range idxs {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	for i := 0; i < len(idxs); i++ {
		for j := i + 1; j < len(idxs); j++ {
			if sharesEntity(insights[idxs[i]].Entities, insights[idxs[j]].Entities) {
				union(idxs[i], idxs[j])
			}
		}
	}

	clusterMap := map[int][]int{}
	for _, i := range idxs {
		root := find(i)
		clusterMap[root] = append(clusterMap[root], i)
	}

	var clusters [][]int
	for _, c := range clusterMap {
		clusters = append(clusters, c)
	}
	return clusters
}

func sharesEntity(a, b []string) bool {
	set := map[string]bool{}
	for _, e := range a {
		set[e] = true
	}
	for _, e := range b {
		if set[e] {
			return true
		}
	}
	return false
}

// suppressBelowFloors suppresses any still-unclassified insight whose
// magnitude or confidence is below the configured floor, or whose
// source columns are all outside the objective-relevant role set.
func suppressBelowFloors(insights []domain.RawInsight, floors Floors, objectiveRelevantCols map[string]bool) {
	for i := range insights {
		if insights[i].Disposition != "" {
			continue
		}
		switch {
		case insights[i].Magnitude < floors.Magnitude:
			insights[i].Disposition = domain.DispositionSuppress
			insights[i].SuppressReason = "magnitude below configured floor"
		case insights[i].Confidence < floors.Confidence:
			insights[i].Disposition = domain.DispositionSuppress
			insights[i].SuppressReason = "confidence below configured floor"
		case len(objectiveRelevantCols) > 0 && !anyColumnRelevant(insights[i].SourceColumns, objectiveRelevantCols):
			insights[i].Disposition = domain.DispositionSuppress
			insights[i].SuppressReason = "source columns are not mapped to any objective-relevant role"
		}
	}
}

func anyColumnRelevant(cols []string, relevant map[string]bool) bool {
	for _, c := range cols {
		if relevant[c] {
			return true
		}
	}
	return false
}

// mergeEntailed folds a trend insight into a correlation insight already
// present when the trend's measure column is one of the correlation's
// two source columns — a trend on a column already explained by a
// stronger correlation is a restatement, not new information.
func mergeEntailed(insights []domain.RawInsight) {
	var correlations []int
	for i, ins := range insights {
		if ins.Kind == domain.KindCorrelation && ins.Disposition == "" {
			correlations = append(correlations, i)
		}
	}
	if len(correlations) == 0 {
		return
	}

	for i := range insights {
		if insights[i].Disposition != "" || insights[i].Kind != domain.KindTrend {
			continue
		}
		for _, ci := range correlations {
			if insights[i].Magnitude > insights[ci].Magnitude {
				continue // the trend carries more information than the correlation; not entailed
			}
			// A trend's Entities hold just its measure column.
			if columnSubset(insights[i].Entities, insights[ci].SourceColumns) {
				insights[i].Disposition = domain.DispositionMerge
				insights[i].MergedInto = insights[ci].ID
				break
			}
		}
	}
}

func columnSubset(a, b []string) bool {
	set := map[string]bool{}
	for _, c := range b {
		set[c] = true
	}
	for _, c := range a {
		if !set[c] {
			return false
		}
	}
	return len(a) > 0
}

// assignPriority keeps every insight not already suppressed/merged and
// scores it. Suppressed/merged insights keep a priority of zero — they
// never compete for planner attention.
func assignPriority(insights []domain.RawInsight, objective string, mapping *domain.ColumnMapping, weights Weights) {
	objectiveTokens := tokenize(objective)

	for i := range insights {
		if insights[i].Disposition == "" {
			insights[i].Disposition = domain.DispositionKeep
		}
		if insights[i].Disposition != domain.DispositionKeep {
			continue
		}
		relevance := objectiveRelevance(insights[i].SourceColumns, mapping, objectiveTokens)
		insights[i].Priority = weights.Alpha*insights[i].Magnitude + weights.Beta*insights[i].Confidence + weights.Gamma*relevance
	}

	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].Priority > insights[j].Priority
	})
}

// objectiveRelevantColumns returns the set of columns mapped to a role
// whose keywords overlap the objective string at all.
func objectiveRelevantColumns(mapping *domain.ColumnMapping, objective string) map[string]bool {
	tokens := tokenize(objective)
	out := map[string]bool{}
	for _, a := range mapping.Assignments {
		if cosineOverlap(mapper.Keywords(a.Role), tokens) > 0 {
			out[a.Column] = true
		}
	}
	return out
}

func objectiveRelevance(sourceColumns []string, mapping *domain.ColumnMapping, objectiveTokens []string) float64 {
	best := 0.0
	for _, col := range sourceColumns {
		for _, a := range mapping.Assignments {
			if a.Column != col {
				continue
			}
			score := cosineOverlap(mapper.Keywords(a.Role), objectiveTokens)
			if score > best {
				best = score
			}
		}
	}
	return best
}

func tokenize(s string) []string {
	s = strings.ToLower(s)
	return strings.FieldsFunc(s, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
}

// cosineOverlap is a simplified cosine similarity between two small
// token sets: the Jaccard-weighted overlap count normalized by set
// sizes, which behaves identically to cosine similarity on 0/1
// term-presence vectors.
func cosineOverlap(keywords, objectiveTokens []string) float64 {
	if len(keywords) == 0 || len(objectiveTokens) == 0 {
		return 0
	}
	kwSet := map[string]bool{}
	for _, k := range keywords {
		kwSet[k] = true
	}
	matches := 0
	for _, t := range objectiveTokens {
		if kwSet[t] {
			matches++
		}
	}
	denom := math.Sqrt(float64(len(keywords))) * math.Sqrt(float64(len(objectiveTokens)))
	if denom == 0 {
		return 0
	}
	return float64(matches) / denom
}
