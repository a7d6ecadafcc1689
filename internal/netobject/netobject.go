package netobject

import (
	"fmt"
	"strings"
)

// ObjectItem is one top-level member of a network object: a group or a
// standalone prefix list.
type ObjectItem interface {
	Label() string
	Capacity() uint64
	prefixLists() []*PrefixList
}

// NetworkObject is a rule's source or destination network field.
type NetworkObject struct {
	label string
	items []ObjectItem
}

// Parse builds a network object from one field's pre-sliced lines. The
// first line carries the field name before the ": " separator, e.g.
//
//	Source Networks       : Internal (group)
//	    OBJ-10.11.12.0_23 (10.11.12.0/23)
//	    10.0.0.0/8
//	  OBJ-192.168.243.0_24 (192.168.243.0/24)
func Parse(lines []string, resolve Resolver) (*NetworkObject, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("network object: input lines are empty")
	}

	label, body, err := splitFieldName(lines)
	if err != nil {
		return nil, fmt.Errorf("network object: %w", err)
	}

	var items []ObjectItem
	idx := 0
	for idx < len(body) {
		item, consumed, err := nextObject(body[idx:], resolve)
		if err != nil {
			return nil, fmt.Errorf("network object %q: %w", label, err)
		}
		items = append(items, item)
		idx += consumed
	}

	return &NetworkObject{label: label, items: items}, nil
}

// splitFieldName peels the field name off the first line and returns the
// remaining object-description lines, the first of which is the text after
// the ": " separator.
func splitFieldName(lines []string) (string, []string, error) {
	name, first, found := strings.Cut(lines[0], ": ")
	if !found {
		return "", nil, fmt.Errorf("incorrect first line format, expected '<field> : <object>' in %q", lines[0])
	}
	body := make([]string, 0, len(lines))
	body = append(body, first)
	body = append(body, lines[1:]...)
	return strings.TrimSpace(name), body, nil
}

// nextObject consumes either one group (header plus indented members) or a
// single prefix-list line, returning the number of lines used.
func nextObject(lines []string, resolve Resolver) (ObjectItem, int, error) {
	if len(lines) == 0 {
		return nil, 0, fmt.Errorf("input lines are empty")
	}

	if strings.Contains(lines[0], groupSuffix) {
		n := groupExtent(lines)
		group, err := ParseGroup(lines[:n], resolve)
		if err != nil {
			return nil, 0, err
		}
		return group, n, nil
	}

	list, err := ParsePrefixList(strings.TrimSpace(lines[0]), resolve)
	if err != nil {
		return nil, 0, err
	}
	return list, 1, nil
}

// groupExtent returns how many lines belong to the group opened at
// lines[0]: the header plus every following line sharing the first child's
// indentation column, stopping at a differently indented line or at the
// next group header.
func groupExtent(lines []string) int {
	if len(lines) == 1 {
		return 1
	}
	first := lines[1]
	reference := len(first) - len(strings.TrimLeft(first, " \t"))
	idx := 1
	for idx < len(lines) {
		if strings.Contains(lines[idx], groupSuffix) {
			return idx
		}
		padding := len(lines[idx]) - len(strings.TrimLeft(lines[idx], " \t"))
		if padding != reference {
			return idx
		}
		idx++
	}
	return idx
}

func (n *NetworkObject) Label() string       { return n.label }
func (n *NetworkObject) Items() []ObjectItem { return n.items }

// Capacity sums the member capacities without any merging.
func (n *NetworkObject) Capacity() uint64 {
	var total uint64
	for _, item := range n.items {
		total += item.Capacity()
	}
	return total
}

// leaves flattens every prefix-list item reachable from the object,
// preserving source order.
func (n *NetworkObject) leaves() []Item {
	var items []Item
	for _, objItem := range n.items {
		for _, list := range objItem.prefixLists() {
			items = append(items, list.Items()...)
		}
	}
	return items
}
