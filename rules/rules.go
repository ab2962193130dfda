// Package rules implements the domain substitution rules applied to tracker
// announce URLs.
package rules

import "strings"

// Rule replaces OldDomain with NewDomain in any announce URL containing it.
type Rule struct {
	OldDomain string `mapstructure:"old_domain" json:"old_domain"`
	NewDomain string `mapstructure:"new_domain" json:"new_domain"`
	Enabled   bool   `mapstructure:"enabled" json:"enabled"`
}

// Active reports whether the rule can ever match.
func (r Rule) Active() bool {
	return r.Enabled && strings.TrimSpace(r.OldDomain) != ""
}

// Evaluate returns the rewritten URL for the first active rule whose old
// domain is a substring of url. Every occurrence of the old domain is
// replaced. The match is a raw substring test: no case folding and no URL
// parsing.
func Evaluate(url string, rules []Rule) (string, bool) {
	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}
		oldDomain := strings.TrimSpace(rule.OldDomain)
		if oldDomain == "" {
			continue
		}
		if strings.Contains(url, oldDomain) {
			return strings.ReplaceAll(url, oldDomain, strings.TrimSpace(rule.NewDomain)), true
		}
	}
	return "", false
}

// CountActive returns the number of rules that can match.
func CountActive(rules []Rule) int {
	var n int
	for _, rule := range rules {
		if rule.Active() {
			n++
		}
	}
	return n
}
