// Package mapper implements the Semantic Column Mapper (the map Skill,
// spec.md §4.4.2): the 4-tier scoring algorithm that assigns each
// closed-vocabulary role to the best-fit column.
package mapper

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/preston-fay/kie-v3-sub001/internal/domain"
)

// keywordSets is the curated keyword/synonym list per role, used by
// tier 1 (semantic keyword match).
var keywordSets = map[domain.Role][]string{
	domain.RoleRevenue:  {"revenue", "sales", "income", "turnover", "proceeds", "gross"},
	domain.RoleCost:     {"cost", "expense", "spend", "cogs", "expenditure"},
	domain.RoleMargin:   {"margin", "profit", "rate", "ratio", "percentage", "pct"},
	domain.RoleQuantity: {"quantity", "qty", "units", "count", "volume", "amount"},
	domain.RoleDate:     {"date", "time", "period", "month", "year", "quarter", "day"},
	domain.RoleCategory: {"category", "type", "segment", "product", "sku", "class"},
	domain.RoleRegion:   {"region", "territory", "market", "area", "district"},
	domain.RoleID:       {"id", "identifier", "key", "code", "uuid"},
	domain.RoleGeo:      {"geo", "country", "state", "city", "zip", "postal", "fips", "latitude", "longitude"},
}

// identifierAvoidanceKeywords reject a column outright from the
// measure-like roles (tier 2).
var identifierAvoidanceKeywords = []string{"id", "code", "zip", "fips"}

// percentageSafeRoles are roles whose semantics expect a rate, so a
// small-magnitude column (values in [0,1]) must not be penalized for
// its low magnitude (tier 3).
var percentageSafeRoles = map[domain.Role]bool{
	domain.RoleMargin: true,
}

// keywordMatchThreshold is compared against a score normalized by
// keyword-set size (see keywordOverlap), so it must clear the floor
// set by the largest set (geo, 9 keywords: a single hit scores ~0.111).
const keywordMatchThreshold = 0.1

// candidate is one column's tier-scored fit for a role.
type candidate struct {
	column string
	tier   int
	score  float64
	cov    float64 // coefficient of variation, used only for tier-4 tie-break
}

// Map assigns every role in domain.Roles to a column, honoring any
// spec-level overrides absolutely. Overrides naming a nonexistent
// column are ignored for that role and fall through to scoring.
func Map(profile *domain.EDAProfile, overrides map[domain.Role]string, now time.Time) *domain.ColumnMapping {
	mapping := &domain.ColumnMapping{GeneratedAt: now}

	colNames := make([]string, len(profile.Columns))
	byName := make(map[string]domain.ColumnProfile, len(profile.Columns))
	for i, c := range profile.Columns {
		colNames[i] = c.Name
		byName[c.Name] = c
	}

	for _, role := range domain.Roles {
		if overrides != nil {
			if col, ok := overrides[role]; ok {
				if _, exists := byName[col]; exists {
					mapping.Assignments = append(mapping.Assignments, domain.RoleAssignment{
						Role: role, Column: col, Tier: 0, Score: 1.0, Overridden: true,
					})
					continue
				}
			}
		}

		assignment := scoreRole(role, colNames, byName)
		if assignment == nil {
			mapping.UnassignedRoles = append(mapping.UnassignedRoles, role)
			continue
		}
		mapping.Assignments = append(mapping.Assignments, *assignment)
	}

	return mapping
}

// Keywords returns the curated keyword/synonym list for a role, the
// same set tier 1 scores columns against. Exported so downstream
// stages (triage's objective-relevance score) can reuse the same
// vocabulary instead of maintaining a second copy.
func Keywords(role domain.Role) []string {
	return keywordSets[role]
}

func scoreRole(role domain.Role, colNames []string, byName map[string]domain.ColumnProfile) *domain.RoleAssignment {
	var candidates []candidate

	for _, name := range colNames {
		col := byName[name]

		// Tier 2: identifier avoidance for measure-like roles.
		if isMeasureRole(role) && rejectedAsIdentifier(name, col) {
			continue
		}

		kwScore := keywordOverlap(role, name)
		if kwScore < keywordMatchThreshold {
			continue
		}

		candidates = append(candidates, candidate{
			column: name,
			tier:   1,
			score:  kwScore,
			cov:    coefficientOfVariation(col),
		})
	}

	if len(candidates) == 0 {
		return nil
	}
	if len(candidates) == 1 {
		c := candidates[0]
		return &domain.RoleAssignment{Role: role, Column: c.column, Tier: c.tier, Score: c.score}
	}

	// Tier 3: percentage-safe scaling. A [0,1]-ranged column is never
	// penalized relative to larger-magnitude candidates for a rate-like
	// role — the scoring above already uses keyword overlap, not
	// magnitude, so this tier is a no-op filter confirming no candidate
	// is dropped purely for being small when the role expects a rate.
	if percentageSafeRoles[role] {
		for i := range candidates {
			col := byName[candidates[i].column]
			if col.Min >= 0 && col.Max <= 1 {
				candidates[i].tier = 3
			}
		}
	}

	// Tier 4: statistical vitality tie-break among remaining candidates
	// with the strongest keyword score.
	best := topScoring(candidates)
	sort.SliceStable(best, func(i, j int) bool {
		if best[i].cov != best[j].cov {
			return best[i].cov > best[j].cov
		}
		if best[i].score != best[j].score {
			return best[i].score > best[j].score
		}
		return colOrderLess(best[i].column, best[j].column, colNames)
	})

	winner := best[0]
	tier := winner.tier
	if len(best) > 1 {
		tier = 4
	}
	return &domain.RoleAssignment{Role: role, Column: winner.column, Tier: tier, Score: winner.score}
}

func topScoring(candidates []candidate) []candidate {
	max := candidates[0].score
	for _, c := range candidates {
		if c.score > max {
			max = c.score
		}
	}
	var top []candidate
	for _, c := range candidates {
		if c.score == max {
			top = append(top, c)
		}
	}
	return top
}

func colOrderLess(a, b string, order []string) bool {
	ai, bi := indexOf(order, a), indexOf(order, b)
	return ai < bi
}

func indexOf(ss []string, s string) int {
	for i, v := range ss {
		if v == s {
			return i
		}
	}
	return -1
}

func isMeasureRole(role domain.Role) bool {
	switch role {
	case domain.RoleRevenue, domain.RoleCost, domain.RoleMargin, domain.RoleQuantity:
		return true
	default:
		return false
	}
}

func rejectedAsIdentifier(name string, col domain.ColumnProfile) bool {
	lower := strings.ToLower(name)
	for _, kw := range identifierAvoidanceKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	if col.Type == domain.ColumnIdentifier {
		return true
	}
	// Uniform ~100% uniqueness with low variance relative to mean is the
	// signature of a geographic or sequential code, not a measure.
	if col.UniqueFraction > 0.98 && col.Mean != 0 && (col.StdDev/math.Abs(col.Mean)) < 0.05 {
		return true
	}
	return false
}

// keywordOverlap scores a column name against a role's keyword set.
// Matches require a whole token to equal a keyword exactly — substring
// containment let unrelated names (e.g. "Corporate" containing the
// margin keyword "rate") spuriously win a role they have nothing to do
// with. Compound names are split into words first, so "GrossMargin"
// still matches the revenue keyword "gross" as a whole token. The score
// is normalized by the keyword set's size, not the column name's own
// token count: dividing by the name's token count
// made a terse single-token name (e.g. "Revenue") always outscore a
// more specific multi-token name (e.g. "Recurring_Revenue") for the
// same one keyword hit, purely for having fewer other tokens to dilute
// the fraction.
func keywordOverlap(role domain.Role, columnName string) float64 {
	keywords := keywordSets[role]
	if len(keywords) == 0 {
		return 0
	}
	tokens := tokenize(columnName)
	if len(tokens) == 0 {
		return 0
	}
	matches := 0
	for _, t := range tokens {
		for _, kw := range keywords {
			if t == kw {
				matches++
				break
			}
		}
	}
	return float64(matches) / float64(len(keywords))
}

// tokenize lowercases name and splits it into words, breaking both on
// non-alphanumeric separators (underscores, spaces, punctuation) and on
// camelCase boundaries, so "Recurring_Revenue" and "GrossMargin" both
// yield their constituent words instead of one fused token.
func tokenize(name string) []string {
	var spaced strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && unicode.IsLower(runes[i-1]) {
			spaced.WriteRune(' ')
		}
		spaced.WriteRune(r)
	}
	lower := strings.ToLower(spaced.String())
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
}

// coefficientOfVariation is std/|mean|, the tier-4 "analytical vitality"
// measure. Non-numeric or zero-mean columns are treated as having zero
// vitality so they never win a tie purely by being non-comparable.
func coefficientOfVariation(col domain.ColumnProfile) float64 {
	if col.Type != domain.ColumnNumeric || col.Mean == 0 {
		return 0
	}
	return col.StdDev / math.Abs(col.Mean)
}
