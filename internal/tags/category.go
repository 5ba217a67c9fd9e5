package tags

import "strings"

// FallbackCategory is used when no rule matches a code.
const FallbackCategory = "Other"

// CategoryRule maps a code prefix to a category.
type CategoryRule struct {
	Prefix   string `yaml:"prefix" json:"prefix"`
	Category string `yaml:"category" json:"category"`
}

// CategoryRules is an ordered list of prefix rules; the longest matching
// prefix wins, ties go to the earlier rule.
type CategoryRules []CategoryRule

// DefaultCategoryRules returns the built-in best-effort heuristic. These
// are tunable defaults, not business rules.
func DefaultCategoryRules() CategoryRules {
	return CategoryRules{
		{Prefix: "L", Category: "Lighting"},
		{Prefix: "R", Category: "Receptacles"},
		{Prefix: "S", Category: "Switches"},
		{Prefix: "P", Category: "Power"},
		{Prefix: "F", Category: "Fire Alarm"},
		{Prefix: "D", Category: "Data"},
		{Prefix: "M", Category: "Mechanical"},
	}
}

// Infer returns the category for a code by prefix.
func (rules CategoryRules) Infer(code string) string {
	key := Normalize(code)
	best := ""
	bestLen := 0
	for _, r := range rules {
		p := Normalize(r.Prefix)
		if p == "" || !strings.HasPrefix(key, p) {
			continue
		}
		if len(p) > bestLen {
			best = r.Category
			bestLen = len(p)
		}
	}
	if best == "" {
		return FallbackCategory
	}
	return best
}
