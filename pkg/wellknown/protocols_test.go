package wellknown

import "testing"

func TestProtocolKeyword(t *testing.T) {
	cases := []struct {
		number  uint8
		keyword string
	}{
		{1, "ICMP"},
		{6, "TCP"},
		{17, "UDP"},
		{47, "GRE"},
		{58, "IPv6-ICMP"},
	}
	for _, tc := range cases {
		got, ok := ProtocolKeyword(tc.number)
		if !ok {
			t.Fatalf("ProtocolKeyword(%d) not found", tc.number)
		}
		if got != tc.keyword {
			t.Errorf("ProtocolKeyword(%d) = %q, want %q", tc.number, got, tc.keyword)
		}
	}
}

func TestProtocolKeywordUnknown(t *testing.T) {
	if _, ok := ProtocolKeyword(254); ok {
		t.Errorf("ProtocolKeyword(254) unexpectedly found")
	}
}

func TestProtocolLabelFallsBack(t *testing.T) {
	if got := ProtocolLabel(6); got != "TCP" {
		t.Errorf("ProtocolLabel(6) = %q, want TCP", got)
	}
	if got := ProtocolLabel(254); got != "protocol 254" {
		t.Errorf("ProtocolLabel(254) = %q, want placeholder", got)
	}
}
