package protoobject

import (
	"strings"
	"testing"
)

func mustParsePorts(t *testing.T, lines []string) *ProtocolObject {
	t.Helper()
	obj, err := Parse(lines)
	if err != nil {
		t.Fatalf("Parse(%v): %v", lines, err)
	}
	return obj
}

func TestParseSingleEntry(t *testing.T) {
	obj := mustParsePorts(t, []string{"Destination Ports     : TCP-8080 (protocol 6, port 8080)"})
	if obj.Label() != "Destination Ports" {
		t.Errorf("label = %q, want Destination Ports", obj.Label())
	}
	if len(obj.Items()) != 1 {
		t.Fatalf("got %d items, want 1", len(obj.Items()))
	}
}

func TestParseGroupWithEntries(t *testing.T) {
	obj := mustParsePorts(t, []string{
		"Destination Ports     : HTTP-HTTPS (group)",
		"  HTTP (protocol 6, port 80)",
		"  HTTPS (protocol 6, port 443)",
	})
	if len(obj.Items()) != 1 {
		t.Fatalf("got %d items, want 1", len(obj.Items()))
	}
	group, ok := obj.Items()[0].(*Group)
	if !ok {
		t.Fatalf("expected Group, got %T", obj.Items()[0])
	}
	if group.Label() != "HTTP-HTTPS" || len(group.Items()) != 2 {
		t.Errorf("got group %q with %d items", group.Label(), len(group.Items()))
	}
}

func TestParseMixedObjects(t *testing.T) {
	obj := mustParsePorts(t, []string{
		"Destination Ports     : HTTP-HTTPS (group)",
		"  HTTP (protocol 6, port 80)",
		"  HTTPS (protocol 6, port 443)",
		"TCP-8080 (protocol 6, port 8080)",
		"protocol 6, port 33434",
	})
	if len(obj.Items()) != 3 {
		t.Fatalf("got %d items, want 3", len(obj.Items()))
	}
	if len(obj.leaves()) != 4 {
		t.Errorf("got %d leaves, want 4", len(obj.leaves()))
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse(nil); err == nil {
		t.Errorf("Parse(nil) succeeded, want error")
	}
	if _, err := Parse([]string{"Destination Ports missing separator"}); err == nil {
		t.Errorf("Parse without separator succeeded, want error")
	}
	if _, err := Parse([]string{"Destination Ports     : HTTP (protocol 6, port 80"}); err == nil {
		t.Errorf("Parse with unbalanced entry succeeded, want error")
	}
}

func TestOptimizeKeepsDisjointPorts(t *testing.T) {
	obj := mustParsePorts(t, []string{
		"Destination Ports     : HTTP-HTTPS (group)",
		"  HTTP (protocol 6, port 80)",
		"  HTTPS (protocol 6, port 443)",
	})
	merged := obj.Optimize()
	if len(merged) != 2 {
		t.Fatalf("got %d entries, want 2", len(merged))
	}
}

func TestOptimizeMergesOverlappingPorts(t *testing.T) {
	obj := mustParsePorts(t, []string{
		"Destination Ports     : WEB (group)",
		"  A (protocol 6, port 80-82)",
		"  B (protocol 6, port 81-82)",
	})
	merged := obj.Optimize()
	if len(merged) != 1 {
		t.Fatalf("got %d entries, want 1", len(merged))
	}
	if start, end := merged[0].Ports(); start != 80 || end != 82 {
		t.Errorf("merged span = %d-%d, want 80-82", start, end)
	}
	if !strings.Contains(merged[0].Label(), "SHADOWS") {
		t.Errorf("label = %q, want SHADOWS classification", merged[0].Label())
	}
}

func TestOptimizeMergesAdjacentPorts(t *testing.T) {
	obj := mustParsePorts(t, []string{
		"Destination Ports     : WEB (group)",
		"  A (protocol 6, port 80)",
		"  B (protocol 6, port 81)",
	})
	merged := obj.Optimize()
	if len(merged) != 1 {
		t.Fatalf("got %d entries, want 1", len(merged))
	}
	if !strings.Contains(merged[0].Label(), "ADJOINS") {
		t.Errorf("label = %q, want ADJOINS classification", merged[0].Label())
	}
}

func TestOptimizeNeverMergesAcrossProtocols(t *testing.T) {
	obj := mustParsePorts(t, []string{
		"Destination Ports     : DNS (group)",
		"  DNS-TCP (protocol 6, port 53)",
		"  DNS-UDP (protocol 17, port 53)",
	})
	if merged := obj.Optimize(); len(merged) != 2 {
		t.Fatalf("got %d entries, want 2", len(merged))
	}
}

func TestOptimizeDeduplicatesL3(t *testing.T) {
	obj := mustParsePorts(t, []string{
		"Source Ports       : ICMP (group)",
		"  Ping (protocol 1, type 8)",
		"  EchoRequest (protocol 1, type 8)",
		"  Unreachable (protocol 1, type 3)",
	})
	if merged := obj.Optimize(); len(merged) != 2 {
		t.Fatalf("got %d entries, want 2", len(merged))
	}
}

func TestOptimizeKeepsDistinctICMPTypes(t *testing.T) {
	obj := mustParsePorts(t, []string{
		"Source Ports       : ICMP (group)",
		"  Bare (protocol 1)",
		"  Typed (protocol 1, type 8)",
	})
	if merged := obj.Optimize(); len(merged) != 2 {
		t.Fatalf("got %d entries, want 2", len(merged))
	}
}

func TestOptimizeExpandedAnyCountsBothProtocols(t *testing.T) {
	obj := mustParsePorts(t, []string{"Destination Ports     : ALL (protocol any, port 53)"})
	merged := obj.Optimize()
	if len(merged) != 2 {
		t.Fatalf("got %d entries, want 2", len(merged))
	}
	if merged[0].Protocol() != 6 || merged[1].Protocol() != 17 {
		t.Errorf("protocols = %d, %d; want 6, 17", merged[0].Protocol(), merged[1].Protocol())
	}
}

func TestOptimizeOrdersL3BeforeL4(t *testing.T) {
	obj := mustParsePorts(t, []string{
		"Destination Ports     : MIXED (group)",
		"  HTTP (protocol 6, port 80)",
		"  IGMP (protocol 2)",
	})
	merged := obj.Optimize()
	if len(merged) != 2 {
		t.Fatalf("got %d entries, want 2", len(merged))
	}
	if merged[0].Protocol() != 2 {
		t.Errorf("first entry protocol = %d, want the non-L4 item first", merged[0].Protocol())
	}
}

func TestOptimizeFullSpanSwallowsEverything(t *testing.T) {
	obj := mustParsePorts(t, []string{
		"Destination Ports     : TCPALL (group)",
		"  ALL-TCP (protocol 6)",
		"  HTTP (protocol 6, port 80)",
		"  HTTPS (protocol 6, port 443)",
	})
	merged := obj.Optimize()
	if len(merged) != 1 {
		t.Fatalf("got %d entries, want 1", len(merged))
	}
	if start, end := merged[0].Ports(); start != 0 || end != 65535 {
		t.Errorf("merged span = %d-%d, want 0-65535", start, end)
	}
}
