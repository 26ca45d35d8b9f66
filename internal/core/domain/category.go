package domain

// CategoryRule maps any of its keywords to a category.
type CategoryRule struct {
	Category string
	Keywords []string
}

// DefaultCategoryRules returns the built-in filename rules.
// Rules are evaluated in order; the first substring match wins.
func DefaultCategoryRules() []CategoryRule {
	return []CategoryRule{
		{Category: "HR", Keywords: []string{"hr", "human resource"}},
		{Category: "Finance", Keywords: []string{"finance", "accounting"}},
		{Category: "Compliance", Keywords: []string{"compliance", "regulatory"}},
		{Category: "Operations", Keywords: []string{"operations", "ops"}},
		{Category: "Sales & Marketing", Keywords: []string{"sales", "marketing"}},
		{Category: "IT", Keywords: []string{"it", "technology", "tech"}},
		{Category: "Security", Keywords: []string{"security", "safety"}},
		{Category: "Customer Service", Keywords: []string{"customer", "service"}},
		{Category: "Policies", Keywords: []string{"policy"}},
		{Category: "SOPs", Keywords: []string{"sop", "procedure"}},
	}
}
