package protoobject

import (
	"fmt"
	"strings"
)

const groupSuffix = " (group)"

// Group is a named collection of protocol entries.
type Group struct {
	label string
	items []Item
}

// ParseGroup parses a group header line plus its member lines. Protocol-any
// members expand in place, so a group may hold more items than lines.
func ParseGroup(lines []string) (*Group, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("invalid group: no lines")
	}
	header := lines[0]
	if !strings.Contains(header, groupSuffix) {
		return nil, fmt.Errorf("invalid group format %q", header)
	}
	label := strings.TrimSpace(header[:strings.Index(header, "(")])

	var items []Item
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parsed, err := ParseItems(line)
		if err != nil {
			return nil, fmt.Errorf("failed to parse group %q: %w", label, err)
		}
		items = append(items, parsed...)
	}
	return &Group{label: label, items: items}, nil
}

func (g *Group) Label() string { return g.label }
func (g *Group) Items() []Item { return g.items }

func (g *Group) members() []Item { return g.items }
