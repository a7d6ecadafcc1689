package policy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/IvanKuchin/ftd-acl-optimizer/internal/netobject"
)

// ACP is an ordered access-control policy.
type ACP struct {
	rules []*Rule
}

// ParseACP splits pre-filtered export lines into rules on the rule banner
// and parses each one. Lines before the first banner are ignored.
func ParseACP(lines []string, resolve netobject.Resolver) (*ACP, error) {
	var rules []*Rule
	for len(lines) > 0 {
		start := -1
		for i, line := range lines {
			if strings.Contains(line, ruleNameOpen) {
				start = i
				break
			}
		}
		if start < 0 {
			break
		}
		end := len(lines)
		for i := start + 1; i < len(lines); i++ {
			if strings.Contains(lines[i], ruleNameOpen) {
				end = i
				break
			}
		}

		rule, err := ParseRule(lines[start:end], resolve)
		if err != nil {
			return nil, fmt.Errorf("parsing policy: %w", err)
		}
		rules = append(rules, rule)
		lines = lines[end:]
	}

	return &ACP{rules: rules}, nil
}

func (a *ACP) Rules() []*Rule  { return a.rules }
func (a *ACP) RuleCount() int { return len(a.rules) }

// RuleByName returns the first rule carrying the given name. Duplicate
// names can occur in an export; position breaks the tie.
func (a *ACP) RuleByName(name string) *Rule {
	for _, rule := range a.rules {
		if rule.Name() == name {
			return rule
		}
	}
	return nil
}

func (a *ACP) RuleByIndex(idx int) *Rule {
	if idx < 0 || idx >= len(a.rules) {
		return nil
	}
	return a.rules[idx]
}

// Capacity sums the rules' raw capacities.
func (a *ACP) Capacity() uint64 {
	var total uint64
	for _, rule := range a.rules {
		total += rule.Capacity()
	}
	return total
}

// OptimizedCapacity sums the rules' capacities after network folding.
func (a *ACP) OptimizedCapacity() uint64 {
	var total uint64
	for _, rule := range a.rules {
		total += rule.OptimizedCapacity()
	}
	return total
}

// TopKByCapacity returns up to k rules with the largest raw capacity,
// keeping policy order among equals.
func (a *ACP) TopKByCapacity(k int) []*Rule {
	return a.topK(k, func(r *Rule) uint64 { return r.Capacity() })
}

// TopKByOptimization returns up to k rules with the largest absolute saving
// between raw and folded capacity, keeping policy order among equals.
func (a *ACP) TopKByOptimization(k int) []*Rule {
	return a.topK(k, func(r *Rule) uint64 { return r.Capacity() - r.OptimizedCapacity() })
}

func (a *ACP) topK(k int, score func(*Rule) uint64) []*Rule {
	sorted := make([]*Rule, len(a.rules))
	copy(sorted, a.rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return score(sorted[i]) > score(sorted[j])
	})
	if k > len(sorted) {
		k = len(sorted)
	}
	if k < 0 {
		k = 0
	}
	return sorted[:k]
}
