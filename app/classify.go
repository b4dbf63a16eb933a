package app

import (
	"strings"

	"profitpulse/domain/table"
)

// ClassificationRule assigns a role to any column whose name it matches
type ClassificationRule struct {
	Role  table.Role
	Match func(name string) bool
}

var monetaryKeywords = []string{"Price", "Cost", "Margin", "Revenue", "Variance"}

// DefaultRules are evaluated in order; the first match wins.
// Names carrying "%" are left to the percentage rule even when they hold a monetary keyword.
func DefaultRules() []ClassificationRule {
	return []ClassificationRule{
		{
			Role: table.RoleMonetary,
			Match: func(name string) bool {
				if strings.Contains(name, "%") {
					return false
				}
				return containsAny(name, monetaryKeywords)
			},
		},
		{
			Role:  table.RolePercentage,
			Match: func(name string) bool { return strings.Contains(name, "%") },
		},
		{
			Role:  table.RoleDate,
			Match: func(name string) bool { return strings.Contains(name, "Date") },
		},
	}
}

// ClassifyColumns maps every column name to a role. Unmatched columns are text.
func ClassifyColumns(names []string, rules []ClassificationRule) map[string]table.Role {
	roles := make(map[string]table.Role, len(names))
	for _, name := range names {
		roles[name] = table.RoleText
		for _, rule := range rules {
			if rule.Match(name) {
				roles[name] = rule.Role
				break
			}
		}
	}
	return roles
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
