package engine

import (
	"strings"
	"testing"

	"github.com/IvanKuchin/ftd-acl-optimizer/internal/ipcalc"
	"github.com/IvanKuchin/ftd-acl-optimizer/internal/netobject"
	"github.com/IvanKuchin/ftd-acl-optimizer/internal/policy"
)

func testResolver(name string) (ipcalc.Addr, error) {
	return ipcalc.ParseAddr("10.20.30.40")
}

func analyzerFixture(t *testing.T) *Analyzer {
	t.Helper()
	lines := []string{
		"----------[ Rule: Wide ]-----------",
		"Source Networks       : SRC (group)",
		"  192.168.1.11-192.168.1.255",
		"  192.168.1.0-192.168.1.10",
		"Destination Networks  : 10.0.0.0/8",
		"Destination Ports  : WEB (group)",
		"  A (protocol 6, port 80-82)",
		"  B (protocol 6, port 81-82)",
		"----------[ Rule: Narrow ]-----------",
		"Source Networks       : 10.0.0.1",
		"Destination Ports  : ICMP-Any (protocol 1)",
	}
	var resolve netobject.Resolver = testResolver
	acp, err := policy.ParseACP(lines, resolve)
	if err != nil {
		t.Fatalf("ParseACP: %v", err)
	}
	return NewAnalyzer(acp)
}

func TestRuleReport(t *testing.T) {
	a := analyzerFixture(t)
	report, err := a.RuleReport("Wide")
	if err != nil {
		t.Fatalf("RuleReport: %v", err)
	}
	if report.Capacity != 9 {
		t.Errorf("capacity = %d, want 9", report.Capacity)
	}
	if report.OptimizedCapacity != 1 {
		t.Errorf("optimized capacity = %d, want 1", report.OptimizedCapacity)
	}
	want := 100 - float64(1)/float64(9)*100
	if report.OptimizationRatio != want {
		t.Errorf("ratio = %f, want %f", report.OptimizationRatio, want)
	}
	if len(report.NetworkMerges) != 1 || !strings.HasPrefix(report.NetworkMerges[0], "Source Networks: ") {
		t.Errorf("network merges = %v", report.NetworkMerges)
	}
	if len(report.ProtocolEntries) != 1 {
		t.Fatalf("protocol entries = %v", report.ProtocolEntries)
	}
	if !strings.Contains(report.ProtocolEntries[0], "TCP port 80-82") {
		t.Errorf("protocol entry = %q", report.ProtocolEntries[0])
	}
	if !strings.Contains(report.ProtocolEntries[0], "SHADOWS") {
		t.Errorf("protocol entry %q missing merge history", report.ProtocolEntries[0])
	}
}

func TestRuleReportUsesKeywords(t *testing.T) {
	a := analyzerFixture(t)
	report, err := a.RuleReport("Narrow")
	if err != nil {
		t.Fatalf("RuleReport: %v", err)
	}
	if len(report.ProtocolEntries) != 1 || !strings.Contains(report.ProtocolEntries[0], "ICMP") {
		t.Errorf("protocol entries = %v", report.ProtocolEntries)
	}
	if len(report.NetworkMerges) != 0 {
		t.Errorf("unexpected merges %v", report.NetworkMerges)
	}
}

func TestRuleReportUnknownRule(t *testing.T) {
	a := analyzerFixture(t)
	if _, err := a.RuleReport("Absent"); err == nil {
		t.Fatalf("expected error for unknown rule")
	}
}

func TestTopKReports(t *testing.T) {
	a := analyzerFixture(t)
	top := a.TopKByCapacity(1)
	if len(top) != 1 || top[0].Name != "Wide" {
		t.Fatalf("top by capacity = %v", top)
	}
	top = a.TopKByOptimization(2)
	if len(top) != 2 || top[0].Name != "Wide" {
		t.Fatalf("top by optimization = %v", top)
	}
}

func TestPolicySummary(t *testing.T) {
	a := analyzerFixture(t)
	summary := a.PolicySummary()
	if summary.RuleCount != 2 {
		t.Errorf("rule count = %d, want 2", summary.RuleCount)
	}
	if summary.Capacity != 10 {
		t.Errorf("capacity = %d, want 10", summary.Capacity)
	}
	if summary.OptimizedCapacity != 2 {
		t.Errorf("optimized capacity = %d, want 2", summary.OptimizedCapacity)
	}
	if summary.OptimizationRatio != 80 {
		t.Errorf("ratio = %f, want 80", summary.OptimizationRatio)
	}
}
