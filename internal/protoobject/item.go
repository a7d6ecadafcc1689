package protoobject

import (
	"fmt"
	"strconv"
	"strings"
)

// Item is a single protocol entry of a ports field. Three shapes occur in
// the export:
//
//	HTTP (protocol 6, port 80-81)
//	ICMP-Unreachable (protocol 1, type 3, code 4)
//	IGMP (protocol 2)
//
// A bare body without a name, such as "protocol 6, port 33434", is also
// accepted; the whole body then doubles as the label.
type Item interface {
	Label() string
	Protocol() uint8
	// Ports returns the L4 port span. Non-L4 items report (0, 0).
	Ports() (uint16, uint16)
	// IsL4 reports whether the item takes part in port-range merging.
	IsL4() bool
	// Key identifies the item by its matching fields only, ignoring the
	// label. Items with equal keys select the same traffic.
	Key() string
}

// TCPUDP is a TCP or UDP entry with an optional port restriction. A missing
// port clause means the full 0-65535 span.
type TCPUDP struct {
	label     string
	protocol  uint8
	portStart uint16
	portEnd   uint16
}

func (t *TCPUDP) Label() string { return t.label }
func (t *TCPUDP) Protocol() uint8 { return t.protocol }
func (t *TCPUDP) Ports() (uint16, uint16) { return t.portStart, t.portEnd }
func (t *TCPUDP) IsL4() bool { return true }

func (t *TCPUDP) Key() string {
	return fmt.Sprintf("p%d/%d-%d", t.protocol, t.portStart, t.portEnd)
}

// ICMP is an ICMP or ICMPv6 entry with optional type and code. A code of
// "any" parses the same as an absent code.
type ICMP struct {
	label    string
	protocol uint8
	icmpType *uint8
	code     *uint8
}

func (i *ICMP) Label() string { return i.label }
func (i *ICMP) Protocol() uint8 { return i.protocol }
func (i *ICMP) Ports() (uint16, uint16) { return 0, 0 }
func (i *ICMP) IsL4() bool { return false }

func (i *ICMP) Key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "p%d", i.protocol)
	if i.icmpType != nil {
		fmt.Fprintf(&b, "/t%d", *i.icmpType)
	}
	if i.code != nil {
		fmt.Fprintf(&b, "/c%d", *i.code)
	}
	return b.String()
}

// Other is an entry for any IP protocol without L4 or ICMP structure, for
// example GRE or IGMP.
type Other struct {
	label    string
	protocol uint8
}

func (o *Other) Label() string { return o.label }
func (o *Other) Protocol() uint8 { return o.protocol }
func (o *Other) Ports() (uint16, uint16) { return 0, 0 }
func (o *Other) IsL4() bool { return false }

func (o *Other) Key() string { return fmt.Sprintf("p%d", o.protocol) }

const anyPortMarker = "protocol any, port "

// ParseItems parses one entry line. An entry written against "protocol any"
// selects both TCP and UDP, so it expands into two items, one per protocol.
func ParseItems(s string) ([]Item, error) {
	if strings.Contains(s, anyPortMarker) {
		expanded := []string{
			strings.ReplaceAll(s, anyPortMarker, "protocol 6, port "),
			strings.ReplaceAll(s, anyPortMarker, "protocol 17, port "),
		}
		items := make([]Item, 0, len(expanded))
		for _, line := range expanded {
			item, err := ParseItem(line)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	}

	item, err := ParseItem(s)
	if err != nil {
		return nil, err
	}
	return []Item{item}, nil
}

// ParseItem parses one entry line into the variant matching its protocol
// number: 6 and 17 are TCP/UDP, 1 and 58 are ICMP, everything else is Other.
func ParseItem(s string) (Item, error) {
	label, body, err := splitLabelAndBody(s)
	if err != nil {
		return nil, err
	}
	protocol, err := parseProtocol(body)
	if err != nil {
		return nil, fmt.Errorf("parsing protocol entry %q: %w", s, err)
	}

	switch protocol {
	case 6, 17:
		start, end, err := parsePorts(body)
		if err != nil {
			return nil, fmt.Errorf("parsing protocol entry %q: %w", s, err)
		}
		return &TCPUDP{label: label, protocol: protocol, portStart: start, portEnd: end}, nil
	case 1, 58:
		icmpType, code, err := parseTypeAndCode(body)
		if err != nil {
			return nil, fmt.Errorf("parsing protocol entry %q: %w", s, err)
		}
		return &ICMP{label: label, protocol: protocol, icmpType: icmpType, code: code}, nil
	default:
		return &Other{label: label, protocol: protocol}, nil
	}
}

// splitLabelAndBody separates "NAME (body)" into its parts. A line without
// parentheses is its own body and its own label.
func splitLabelAndBody(s string) (label, body string, err error) {
	switch strings.Count(s, "(") {
	case 0:
		trimmed := strings.TrimSpace(s)
		if strings.Contains(trimmed, ")") {
			return "", "", fmt.Errorf("missing opening parenthesis in protocol entry %q", s)
		}
		return trimmed, trimmed, nil
	case 1:
		name, rest, _ := strings.Cut(s, "(")
		rest = strings.TrimSpace(rest)
		body, ok := strings.CutSuffix(rest, ")")
		if !ok {
			return "", "", fmt.Errorf("missing closing parenthesis in protocol entry %q", s)
		}
		return strings.TrimSpace(name), strings.TrimSpace(body), nil
	default:
		return "", "", fmt.Errorf("invalid protocol entry %q", s)
	}
}

// parseProtocol reads the protocol number from the leading "protocol N"
// clause of the body.
func parseProtocol(body string) (uint8, error) {
	clause, _, _ := strings.Cut(body, ",")
	clause = strings.TrimSpace(clause)
	numeric, ok := strings.CutPrefix(clause, "protocol")
	if !ok {
		return 0, fmt.Errorf("missing protocol clause in %q", body)
	}
	value, err := strconv.ParseUint(strings.TrimSpace(numeric), 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid protocol number %q", strings.TrimSpace(numeric))
	}
	return uint8(value), nil
}

// parsePorts reads the optional "port A" or "port A-B" clause. An absent
// clause selects the whole port space.
func parsePorts(body string) (uint16, uint16, error) {
	_, clause, found := strings.Cut(body, "port")
	if !found {
		return 0, 65535, nil
	}
	clause = strings.TrimSpace(clause)

	startText, endText, isRange := strings.Cut(clause, "-")
	start, err := strconv.ParseUint(strings.TrimSpace(startText), 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start port %q", strings.TrimSpace(startText))
	}
	if !isRange {
		return uint16(start), uint16(start), nil
	}
	end, err := strconv.ParseUint(strings.TrimSpace(endText), 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end port %q", strings.TrimSpace(endText))
	}
	return uint16(start), uint16(end), nil
}

// parseTypeAndCode reads the optional "type T" and "code C" clauses of an
// ICMP body. "code any" means no code restriction.
func parseTypeAndCode(body string) (icmpType, code *uint8, err error) {
	parts := strings.Split(body, ",")
	switch len(parts) {
	case 1:
		return nil, nil, nil
	case 2:
		t, err := parseTrailingNumber(parts[1])
		if err != nil {
			return nil, nil, fmt.Errorf("invalid ICMP type in %q: %w", body, err)
		}
		return &t, nil, nil
	case 3:
		t, err := parseTrailingNumber(parts[1])
		if err != nil {
			return nil, nil, fmt.Errorf("invalid ICMP type in %q: %w", body, err)
		}
		codeText := lastField(parts[2])
		if strings.EqualFold(codeText, "any") {
			return &t, nil, nil
		}
		c, err := parseTrailingNumber(parts[2])
		if err != nil {
			return nil, nil, fmt.Errorf("invalid ICMP code in %q: %w", body, err)
		}
		return &t, &c, nil
	default:
		return nil, nil, fmt.Errorf("invalid ICMP entry %q", body)
	}
}

func parseTrailingNumber(clause string) (uint8, error) {
	text := lastField(clause)
	value, err := strconv.ParseUint(text, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", text)
	}
	return uint8(value), nil
}

func lastField(clause string) string {
	fields := strings.Fields(clause)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
