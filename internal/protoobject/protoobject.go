package protoobject

import (
	"fmt"
	"strings"
)

// ObjectItem is one top-level member of a protocol object: a group or a
// standalone entry line.
type ObjectItem interface {
	Label() string
	members() []Item
}

// entry adapts a standalone entry line to ObjectItem. One line can carry
// several items when protocol-any expansion applies.
type entry struct {
	label string
	items []Item
}

func (e *entry) Label() string   { return e.label }
func (e *entry) members() []Item { return e.items }

// ProtocolObject is a rule's source or destination ports field.
type ProtocolObject struct {
	label string
	items []ObjectItem
}

// Parse builds a protocol object from one field's pre-sliced lines. The
// first line carries the field name before the ": " separator, e.g.
//
//	Destination Ports     : HTTP-HTTPS (group)
//	  HTTP (protocol 6, port 80)
//	  HTTPS (protocol 6, port 443)
//	protocol 6, port 33434
func Parse(lines []string) (*ProtocolObject, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("protocol object: input lines are empty")
	}

	label, body, err := splitFieldName(lines)
	if err != nil {
		return nil, fmt.Errorf("protocol object: %w", err)
	}

	var items []ObjectItem
	idx := 0
	for idx < len(body) {
		item, consumed, err := nextObject(body[idx:])
		if err != nil {
			return nil, fmt.Errorf("protocol object %q: %w", label, err)
		}
		items = append(items, item)
		idx += consumed
	}

	return &ProtocolObject{label: label, items: items}, nil
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
// single entry line, returning the number of lines used.
func nextObject(lines []string) (ObjectItem, int, error) {
	if len(lines) == 0 {
		return nil, 0, fmt.Errorf("input lines are empty")
	}

	if strings.Contains(lines[0], groupSuffix) {
		n := groupExtent(lines)
		group, err := ParseGroup(lines[:n])
		if err != nil {
			return nil, 0, err
		}
		return group, n, nil
	}

	line := strings.TrimSpace(lines[0])
	items, err := ParseItems(line)
	if err != nil {
		return nil, 0, err
	}
	return &entry{label: line, items: items}, 1, nil
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

func (p *ProtocolObject) Label() string       { return p.label }
func (p *ProtocolObject) Items() []ObjectItem { return p.items }

// leaves flattens every entry reachable from the object, preserving source
// order.
func (p *ProtocolObject) leaves() []Item {
	var items []Item
	for _, objItem := range p.items {
		items = append(items, objItem.members()...)
	}
	return items
}
