package classify

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"sitevault/internal/catalog"
)

//go:embed default_rules.toml
var defaultRulesTOML []byte

// Rule pairs a hardware category with its ordered substring patterns.
type Rule struct {
	Category string   `toml:"category"`
	Match    []string `toml:"match"`
}

// Table is an ordered hardware rule table. Evaluation is linear and
// first-match-wins, so rule order in the source file is significant.
type Table struct {
	rules []Rule
}

type ruleFile struct {
	Rules []Rule `toml:"rule"`
}

// DefaultTable returns the built-in rule table.
func DefaultTable() *Table {
	table, err := parseRules(defaultRulesTOML)
	if err != nil {
		// The embedded table is validated by tests; reaching this means the
		// binary itself is broken.
		panic(fmt.Sprintf("embedded rule table invalid: %v", err))
	}
	return table
}

// LoadTable reads a rule table from a TOML file. An empty path yields the
// built-in table.
func LoadTable(path string) (*Table, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule table: %w", err)
	}
	table, err := parseRules(data)
	if err != nil {
		return nil, fmt.Errorf("rule table %s: %w", path, err)
	}
	return table, nil
}

func parseRules(data []byte) (*Table, error) {
	var file ruleFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if len(file.Rules) == 0 {
		return nil, errors.New("rule table defines no rules")
	}

	rules := make([]Rule, 0, len(file.Rules))
	for i, rule := range file.Rules {
		category := strings.ToLower(strings.TrimSpace(rule.Category))
		if category == "" {
			return nil, fmt.Errorf("rule %d: category required", i+1)
		}
		patterns := make([]string, 0, len(rule.Match))
		for _, pattern := range rule.Match {
			pattern = strings.ToLower(strings.TrimSpace(pattern))
			if pattern != "" {
				patterns = append(patterns, pattern)
			}
		}
		if len(patterns) == 0 {
			return nil, fmt.Errorf("rule %d (%s): at least one pattern required", i+1, category)
		}
		rules = append(rules, Rule{Category: category, Match: patterns})
	}
	return &Table{rules: rules}, nil
}

// Categories returns the ordered category names the table can produce,
// excluding the implicit fallback.
func (t *Table) Categories() []string {
	seen := make(map[string]struct{}, len(t.rules))
	out := make([]string, 0, len(t.rules))
	for _, rule := range t.rules {
		if _, ok := seen[rule.Category]; ok {
			continue
		}
		seen[rule.Category] = struct{}{}
		out = append(out, rule.Category)
	}
	return out
}

// Len returns the number of rules in the table.
func (t *Table) Len() int {
	return len(t.rules)
}

// Classify returns the hardware category for the given make/model pair.
// Matching is case-insensitive substring over both fields; the first rule
// with any matching pattern wins. Empty metadata or no match yields
// catalog.CategoryOther, never an error.
func (t *Table) Classify(makeField, modelField string) string {
	haystack := strings.ToLower(strings.TrimSpace(makeField) + " " + strings.TrimSpace(modelField))
	if strings.TrimSpace(haystack) == "" {
		return catalog.CategoryOther
	}
	for _, rule := range t.rules {
		for _, pattern := range rule.Match {
			if strings.Contains(haystack, pattern) {
				return rule.Category
			}
		}
	}
	return catalog.CategoryOther
}
