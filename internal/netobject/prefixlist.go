package netobject

import (
	"fmt"
	"strings"
)

// PrefixList is one object-description line: either a named object whose
// members sit in parentheses, or a bare prefix/range/hostname token.
//
//	RFC1918 (10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16)
//	OBJ-10.18.46.62-69 (10.18.46.62-10.18.46.69)
//	10.0.0.0/8
type PrefixList struct {
	label string
	items []Item
}

// ParsePrefixList parses one object-description line. The label is
// descriptive only and never affects capacity.
func ParsePrefixList(line string, resolve Resolver) (*PrefixList, error) {
	if strings.Contains(line, "()") {
		return nil, fmt.Errorf("empty prefix list %q", line)
	}

	open := strings.Count(line, "(")
	closed := strings.Count(line, ")")
	switch {
	case open == 1 && closed == 1:
		label := strings.TrimSpace(line[:strings.Index(line, "(")])
		inner := line[strings.Index(line, "(")+1 : strings.Index(line, ")")]
		var items []Item
		for _, tok := range strings.Split(inner, ",") {
			item, err := ParseItem(strings.TrimSpace(tok), resolve)
			if err != nil {
				return nil, fmt.Errorf("failed to parse prefix list %q: %w", line, err)
			}
			items = append(items, item)
		}
		return &PrefixList{label: label, items: items}, nil

	case open == 0 && closed == 0:
		item, err := ParseItem(strings.TrimSpace(line), resolve)
		if err != nil {
			return nil, fmt.Errorf("failed to parse prefix list %q: %w", line, err)
		}
		return &PrefixList{label: line, items: []Item{item}}, nil

	default:
		return nil, fmt.Errorf("invalid prefix list format %q: unbalanced parentheses", line)
	}
}

func (p *PrefixList) Label() string { return p.label }
func (p *PrefixList) Items() []Item { return p.items }

// Capacity sums the item capacities without any merging.
func (p *PrefixList) Capacity() uint64 {
	var total uint64
	for _, item := range p.items {
		total += item.Capacity()
	}
	return total
}

func (p *PrefixList) prefixLists() []*PrefixList { return []*PrefixList{p} }
