package file

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/procdocs/internal/core/domain"
)

// categoryRulesFile is the YAML layout of a category rules file:
//
//	rules:
//	  - category: HR
//	    keywords: [hr, people]
type categoryRulesFile struct {
	Rules []struct {
		Category string   `yaml:"category"`
		Keywords []string `yaml:"keywords"`
	} `yaml:"rules"`
}

// LoadCategoryRules reads filename category rules from a YAML file.
// An empty path returns nil so callers fall back to the built-in rules.
func LoadCategoryRules(path string) ([]domain.CategoryRule, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read category rules: %w", err)
	}

	var parsed categoryRulesFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse category rules %s: %w", path, err)
	}

	rules := make([]domain.CategoryRule, 0, len(parsed.Rules))
	for i, r := range parsed.Rules {
		if r.Category == "" {
			return nil, fmt.Errorf("%w: category rule %d has no category", domain.ErrInvalidInput, i+1)
		}
		if len(r.Keywords) == 0 {
			return nil, fmt.Errorf("%w: category %q has no keywords", domain.ErrInvalidInput, r.Category)
		}
		rules = append(rules, domain.CategoryRule{Category: r.Category, Keywords: r.Keywords})
	}
	return rules, nil
}
