package netobject

import (
	"strings"
	"testing"

	"github.com/IvanKuchin/ftd-acl-optimizer/internal/ipcalc"
)

// fixedResolver maps hostnames to addresses without touching the network.
func fixedResolver(hosts map[string]string) Resolver {
	return func(name string) (ipcalc.Addr, error) {
		if s, ok := hosts[name]; ok {
			return ipcalc.ParseAddr(s)
		}
		return 0, &hostNotFoundError{name: name}
	}
}

type hostNotFoundError struct{ name string }

func (e *hostNotFoundError) Error() string { return "no such host: " + e.name }

func TestParseItemPrefix(t *testing.T) {
	item, err := ParseItem("10.0.0.0/8", nil)
	if err != nil {
		t.Fatalf("expected prefix to parse, got %v", err)
	}
	if _, ok := item.(Prefix); !ok {
		t.Fatalf("expected Prefix, got %T", item)
	}
	if item.Label() != "10.0.0.0/8" {
		t.Errorf("label = %q", item.Label())
	}
	if item.Capacity() != 1 {
		t.Errorf("prefix capacity = %d, want 1", item.Capacity())
	}
	if item.Start().String() != "10.0.0.0" || item.End().String() != "10.255.255.255" {
		t.Errorf("prefix bounds = %s-%s", item.Start(), item.End())
	}
}

func TestParseItemBareAddressIsHost32(t *testing.T) {
	item, err := ParseItem("192.168.0.7", nil)
	if err != nil {
		t.Fatalf("expected bare address to parse, got %v", err)
	}
	if item.Start() != item.End() {
		t.Fatalf("bare address should cover a single address, got %s-%s", item.Start(), item.End())
	}
	if item.Capacity() != 1 {
		t.Fatalf("capacity = %d, want 1", item.Capacity())
	}
}

func TestParseItemRange(t *testing.T) {
	item, err := ParseItem("10.11.12.13-10.11.12.18", nil)
	if err != nil {
		t.Fatalf("expected range to parse, got %v", err)
	}
	if _, ok := item.(Range); !ok {
		t.Fatalf("expected Range, got %T", item)
	}
	if item.Capacity() != 4 {
		t.Errorf("range capacity = %d, want 4", item.Capacity())
	}
}

func TestParseItemRangeReversedFails(t *testing.T) {
	_, err := ParseItem("10.0.0.255-10.0.0.0", nil)
	if err == nil || !strings.Contains(err.Error(), "less than or equal") {
		t.Fatalf("expected reversed-range error, got %v", err)
	}
}

func TestParseItemHostname(t *testing.T) {
	resolve := fixedResolver(map[string]string{"fileserver.example.com": "10.20.30.40"})
	item, err := ParseItem("fileserver.example.com", resolve)
	if err != nil {
		t.Fatalf("expected hostname to parse, got %v", err)
	}
	host, ok := item.(Host)
	if !ok {
		t.Fatalf("expected Host, got %T", item)
	}
	if host.Start().String() != "10.20.30.40" || host.Start() != host.End() {
		t.Errorf("host bounds = %s-%s", host.Start(), host.End())
	}
	if host.Capacity() != 1 {
		t.Errorf("host capacity = %d, want 1", host.Capacity())
	}
}

func TestParseItemHostnameResolutionFailureAborts(t *testing.T) {
	_, err := ParseItem("unknown.example.com", fixedResolver(nil))
	if err == nil {
		t.Fatalf("expected resolution failure to surface as parse error")
	}
}

func TestParseItemRejectsGarbage(t *testing.T) {
	for _, s := range []string{"host name", "a@b", "10.0.0.0/234", "10.0.0.0/"} {
		if _, err := ParseItem(s, nil); err == nil {
			t.Fatalf("ParseItem(%q): expected error", s)
		}
	}
}

func TestParseItemMaskBounds(t *testing.T) {
	if _, err := ParseItem("10.0.0.0/32", nil); err != nil {
		t.Fatalf("/32 should parse, got %v", err)
	}
	if _, err := ParseItem("10.0.0.0/0", nil); err != nil {
		t.Fatalf("/0 should parse, got %v", err)
	}
	if _, err := ParseItem("10.0.0.0/33", nil); err == nil {
		t.Fatalf("/33 should be rejected")
	}
}

func TestItemClassification(t *testing.T) {
	cases := []struct {
		in                       string
		isRng, isPfx, isHost bool
	}{
		{"10.11.12.13-10.11.12.14", true, false, true},
		{"10.11.12.13", false, true, true},
		{"10.11.12.13/24", false, true, false},
		{"10.11.12.13 - 10.11.12.14", false, false, false},
		{"example-host.com", false, false, true},
		{"", false, false, false},
	}
	for _, tc := range cases {
		if got := isRange(tc.in); got != tc.isRng {
			t.Errorf("isRange(%q) = %v", tc.in, got)
		}
		if got := isPrefix(tc.in); got != tc.isPfx {
			t.Errorf("isPrefix(%q) = %v", tc.in, got)
		}
		if got := isHostname(tc.in); got != tc.isHost {
			t.Errorf("isHostname(%q) = %v", tc.in, got)
		}
	}
}
