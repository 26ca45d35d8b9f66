package services

import (
	"strings"

	"github.com/custodia-labs/procdocs/internal/core/domain"
	"github.com/custodia-labs/procdocs/internal/core/ports/driven"
)

// Ensure RuleCategoriser implements the interface.
var _ driven.Categoriser = (*RuleCategoriser)(nil)

// RuleCategoriser assigns categories by case-insensitive substring match
// on the file name.
type RuleCategoriser struct {
	rules []domain.CategoryRule
}

// NewRuleCategoriser creates a categoriser. Nil rules use the defaults.
func NewRuleCategoriser(rules []domain.CategoryRule) *RuleCategoriser {
	if rules == nil {
		rules = domain.DefaultCategoryRules()
	}
	normalised := make([]domain.CategoryRule, 0, len(rules))
	for _, r := range rules {
		if r.Category == "" {
			continue
		}
		keywords := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			if k = strings.ToLower(k); k != "" {
				keywords = append(keywords, k)
			}
		}
		normalised = append(normalised, domain.CategoryRule{Category: r.Category, Keywords: keywords})
	}
	return &RuleCategoriser{rules: normalised}
}

// Categorise returns the first matching rule's category, or domain.DefaultCategory.
func (c *RuleCategoriser) Categorise(fileName string) string {
	lower := strings.ToLower(fileName)
	for _, r := range c.rules {
		for _, k := range r.Keywords {
			if strings.Contains(lower, k) {
				return r.Category
			}
		}
	}
	return domain.DefaultCategory
}
