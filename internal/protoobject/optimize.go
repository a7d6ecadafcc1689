package protoobject

import (
	"fmt"
	"sort"

	"github.com/IvanKuchin/ftd-acl-optimizer/internal/overlap"
)

// MergedList is one output entry of the protocol merge engine: a deduplicated
// L3 item or a run of same-protocol L4 items whose port spans touch. The
// label records the merge history.
type MergedList struct {
	label string
	items []Item
}

func newMergedList(item Item) *MergedList {
	return &MergedList{label: item.Label(), items: []Item{item}}
}

func (m *MergedList) append(item Item) { m.items = append(m.items, item) }

func (m *MergedList) Label() string { return m.label }
func (m *MergedList) Items() []Item { return m.items }

// Merged reports whether the entry covers more than one original item.
func (m *MergedList) Merged() bool { return len(m.items) > 1 }

// Protocol is the shared protocol number of the member items.
func (m *MergedList) Protocol() uint8 {
	m.mustNotBeEmpty()
	return m.items[0].Protocol()
}

// Ports is the union span of the member items' port ranges. Non-L4 entries
// report (0, 0).
func (m *MergedList) Ports() (uint16, uint16) {
	m.mustNotBeEmpty()
	start, end := m.items[0].Ports()
	for _, item := range m.items[1:] {
		s, e := item.Ports()
		if s < start {
			start = s
		}
		if e > end {
			end = e
		}
	}
	return start, end
}

func (m *MergedList) mustNotBeEmpty() {
	if len(m.items) == 0 {
		panic(fmt.Sprintf("protocol accumulator %q has no items; parsing must never produce an empty accumulator", m.label))
	}
}

// Optimize reproduces the device's own protocol folding. Non-L4 items are
// deduplicated on their matching fields. L4 items are sorted by protocol and
// start port, then runs of the same protocol whose port spans overlap or
// adjoin collapse into one entry. Unlike network merging the collapse is
// always kept: a port span has no decomposition cost to outweigh.
func (p *ProtocolObject) Optimize() []*MergedList {
	all := p.leaves()

	var result []*MergedList
	seen := make(map[string]struct{})
	var l4 []Item
	for _, item := range all {
		if item.IsL4() {
			l4 = append(l4, item)
			continue
		}
		if _, dup := seen[item.Key()]; dup {
			continue
		}
		seen[item.Key()] = struct{}{}
		result = append(result, newMergedList(item))
	}

	return append(result, optimizeL4(l4)...)
}

func optimizeL4(items []Item) []*MergedList {
	if len(items) == 0 {
		return nil
	}

	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := sorted[i].Protocol(), sorted[j].Protocol()
		if pi != pj {
			return pi < pj
		}
		si, _ := sorted[i].Ports()
		sj, _ := sorted[j].Ports()
		return si < sj
	})

	var result []*MergedList
	acc := newMergedList(sorted[0])
	for _, next := range sorted[1:] {
		_, currEnd := acc.Ports()
		nextStart, nextEnd := next.Ports()
		if next.Protocol() == acc.Protocol() && uint32(nextStart) <= uint32(currEnd)+1 {
			verb := overlap.Classify(uint64(currEnd), uint64(nextStart), uint64(nextEnd))
			acc.label = fmt.Sprintf("%s %s %s", acc.label, verb, next.Label())
			acc.append(next)
			continue
		}
		result = append(result, acc)
		acc = newMergedList(next)
	}
	return append(result, acc)
}
