package netobject

import (
	"fmt"
	"strings"
)

const groupSuffix = " (group)"

// Group is a named collection of prefix lists. Groups hold lists only,
// never sub-groups; sibling groups appear side by side in the source text.
type Group struct {
	label string
	lists []*PrefixList
}

// ParseGroup parses a group header line plus its member lines.
func ParseGroup(lines []string, resolve Resolver) (*Group, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("invalid group: no lines")
	}
	header := lines[0]
	if !strings.Contains(header, groupSuffix) {
		return nil, fmt.Errorf("invalid group format %q", header)
	}
	label := strings.TrimSpace(header[:strings.Index(header, "(")])

	var lists []*PrefixList
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		list, err := ParsePrefixList(line, resolve)
		if err != nil {
			return nil, fmt.Errorf("failed to parse group %q: %w", label, err)
		}
		lists = append(lists, list)
	}
	return &Group{label: label, lists: lists}, nil
}

func (g *Group) Label() string              { return g.label }
func (g *Group) Lists() []*PrefixList       { return g.lists }
func (g *Group) prefixLists() []*PrefixList { return g.lists }

// Capacity sums the member list capacities.
func (g *Group) Capacity() uint64 {
	var total uint64
	for _, list := range g.lists {
		total += list.Capacity()
	}
	return total
}
