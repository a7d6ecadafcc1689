// Package engine builds capacity and optimization reports over a parsed
// access-control policy.
package engine

import (
	"fmt"

	"github.com/IvanKuchin/ftd-acl-optimizer/internal/netobject"
	"github.com/IvanKuchin/ftd-acl-optimizer/internal/policy"
	"github.com/IvanKuchin/ftd-acl-optimizer/internal/protoobject"
	"github.com/IvanKuchin/ftd-acl-optimizer/pkg/wellknown"
)

type Analyzer struct {
	acp *policy.ACP
}

func NewAnalyzer(acp *policy.ACP) *Analyzer {
	return &Analyzer{acp: acp}
}

// RuleReport describes one rule's device cost and what folding buys.
type RuleReport struct {
	Name              string
	Capacity          uint64
	OptimizedCapacity uint64
	// OptimizationRatio is the percentage reduction from raw to optimized
	// capacity.
	OptimizationRatio float64
	// NetworkMerges lists the committed network merges, one line per merged
	// entry, prefixed with the field they occurred in.
	NetworkMerges []string
	// ProtocolEntries lists the folded protocol entries per ports field
	// using IANA keywords.
	ProtocolEntries []string
}

// PolicySummary aggregates the whole policy.
type PolicySummary struct {
	RuleCount         int
	Capacity          uint64
	OptimizedCapacity uint64
	OptimizationRatio float64
}

// RuleReport builds the report for the first rule carrying the given name.
func (a *Analyzer) RuleReport(name string) (*RuleReport, error) {
	rule := a.acp.RuleByName(name)
	if rule == nil {
		return nil, fmt.Errorf("no rule found with name %q", name)
	}
	return a.reportFor(rule), nil
}

func (a *Analyzer) reportFor(rule *policy.Rule) *RuleReport {
	report := &RuleReport{
		Name:              rule.Name(),
		Capacity:          rule.Capacity(),
		OptimizedCapacity: rule.OptimizedCapacity(),
	}
	report.OptimizationRatio = ratio(report.Capacity, report.OptimizedCapacity)

	report.NetworkMerges = append(report.NetworkMerges,
		networkMerges("Source Networks", rule.SrcNetworks())...)
	report.NetworkMerges = append(report.NetworkMerges,
		networkMerges("Destination Networks", rule.DstNetworks())...)

	report.ProtocolEntries = append(report.ProtocolEntries,
		protocolEntries("Source Ports", rule.SrcProtocols())...)
	report.ProtocolEntries = append(report.ProtocolEntries,
		protocolEntries("Destination Ports", rule.DstProtocols())...)

	return report
}

// TopKByCapacity reports up to k rules with the largest raw capacity.
func (a *Analyzer) TopKByCapacity(k int) []*RuleReport {
	return a.reports(a.acp.TopKByCapacity(k))
}

// TopKByOptimization reports up to k rules with the largest absolute saving
// from network folding.
func (a *Analyzer) TopKByOptimization(k int) []*RuleReport {
	return a.reports(a.acp.TopKByOptimization(k))
}

func (a *Analyzer) reports(rules []*policy.Rule) []*RuleReport {
	out := make([]*RuleReport, 0, len(rules))
	for _, rule := range rules {
		out = append(out, a.reportFor(rule))
	}
	return out
}

// PolicySummary totals capacity across the policy.
func (a *Analyzer) PolicySummary() *PolicySummary {
	summary := &PolicySummary{
		RuleCount:         a.acp.RuleCount(),
		Capacity:          a.acp.Capacity(),
		OptimizedCapacity: a.acp.OptimizedCapacity(),
	}
	summary.OptimizationRatio = ratio(summary.Capacity, summary.OptimizedCapacity)
	return summary
}

func ratio(capacity, optimized uint64) float64 {
	if capacity == 0 {
		return 0
	}
	return 100 - float64(optimized)/float64(capacity)*100
}

func networkMerges(field string, obj *netobject.NetworkObject) []string {
	if obj == nil {
		return nil
	}
	var out []string
	for _, entry := range obj.Optimize().Entries() {
		if !entry.Merged() {
			continue
		}
		out = append(out, fmt.Sprintf("%s: %s", field, entry.Label()))
	}
	return out
}

func protocolEntries(field string, obj *protoobject.ProtocolObject) []string {
	if obj == nil {
		return nil
	}
	var out []string
	for _, entry := range obj.Optimize() {
		keyword := wellknown.ProtocolLabel(entry.Protocol())
		start, end := entry.Ports()
		line := fmt.Sprintf("%s: %s", field, keyword)
		if start != 0 || end != 0 {
			line = fmt.Sprintf("%s port %d-%d", line, start, end)
		}
		if entry.Merged() {
			line = fmt.Sprintf("%s (%s)", line, entry.Label())
		}
		out = append(out, line)
	}
	return out
}
