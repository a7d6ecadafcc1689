package netobject

import (
	"fmt"
	"sort"

	"github.com/IvanKuchin/ftd-acl-optimizer/internal/ipcalc"
	"github.com/IvanKuchin/ftd-acl-optimizer/internal/overlap"
)

// MergedEntry is one output entry of the network merge engine: either a
// committed merge of several items or a single passed-through item. The
// label records the merge history ("<left> ADJOINS <right>" and so on).
type MergedEntry struct {
	label string
	items []Item
}

func newMergedEntry(item Item) *MergedEntry {
	return &MergedEntry{label: item.Label(), items: []Item{item}}
}

func (m *MergedEntry) append(item Item) { m.items = append(m.items, item) }

func (m *MergedEntry) Label() string { return m.label }
func (m *MergedEntry) Items() []Item { return m.items }

// Merged reports whether the entry covers more than one original item.
func (m *MergedEntry) Merged() bool { return len(m.items) > 1 }

// Start is the minimum start among member items.
func (m *MergedEntry) Start() ipcalc.Addr {
	m.mustNotBeEmpty()
	start := m.items[0].Start()
	for _, item := range m.items[1:] {
		if item.Start() < start {
			start = item.Start()
		}
	}
	return start
}

// End is the maximum end among member items.
func (m *MergedEntry) End() ipcalc.Addr {
	m.mustNotBeEmpty()
	end := m.items[0].End()
	for _, item := range m.items[1:] {
		if item.End() > end {
			end = item.End()
		}
	}
	return end
}

// Capacity is the minimal CIDR block count of the merged span.
func (m *MergedEntry) Capacity() uint64 {
	return ipcalc.RangeCapacity(m.Start(), m.End())
}

// reduces reports whether the merged span costs strictly fewer blocks than
// the member items counted separately. A false result means the grouping
// must be reverted: items only transitively adjacent through a discarded
// intermediate can produce spans that save nothing.
func (m *MergedEntry) reduces() bool {
	var original uint64
	for _, item := range m.items {
		original += item.Capacity()
	}
	return m.Capacity() < original
}

func (m *MergedEntry) mustNotBeEmpty() {
	if len(m.items) == 0 {
		panic(fmt.Sprintf("merge accumulator %q has no items; parsing must never produce an empty accumulator", m.label))
	}
}

// Optimized is the merge engine output for one network object.
type Optimized struct {
	label   string
	entries []*MergedEntry
}

func (o *Optimized) Label() string           { return o.label }
func (o *Optimized) Entries() []*MergedEntry { return o.entries }

// Capacity sums the emitted entries' capacities.
func (o *Optimized) Capacity() uint64 {
	var total uint64
	for _, entry := range o.entries {
		total += entry.Capacity()
	}
	return total
}

// Optimize flattens the object's prefix-list items, stable-sorts them by
// start address and greedily accumulates overlapping or adjacent items.
// Each accumulator is committed only if merging genuinely lowers the block
// count; otherwise its members are re-emitted unmerged.
func (n *NetworkObject) Optimize() *Optimized {
	items := n.leaves()
	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start() < sorted[j].Start()
	})

	opt := &Optimized{label: n.label}
	if len(sorted) == 0 {
		return opt
	}

	acc := newMergedEntry(sorted[0])
	for _, next := range sorted[1:] {
		currEnd := acc.End()
		if next.Start() <= currEnd.Next() {
			verb := overlap.Classify(uint64(currEnd), uint64(next.Start()), uint64(next.End()))
			acc.label = fmt.Sprintf("%s %s %s", acc.label, verb, next.Label())
			acc.append(next)
			continue
		}
		opt.entries = closeAccumulator(opt.entries, acc)
		acc = newMergedEntry(next)
	}
	opt.entries = closeAccumulator(opt.entries, acc)

	return opt
}

// closeAccumulator commits the accumulator when it reduces block count and
// reverts it into individual entries otherwise.
func closeAccumulator(entries []*MergedEntry, acc *MergedEntry) []*MergedEntry {
	acc.mustNotBeEmpty()
	if acc.reduces() {
		return append(entries, acc)
	}
	for _, item := range acc.items {
		entries = append(entries, newMergedEntry(item))
	}
	return entries
}
