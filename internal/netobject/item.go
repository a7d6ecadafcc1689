// Package netobject models the network side of an access-control rule:
// prefix-list items (CIDR prefixes, address ranges, resolved hostnames),
// prefix lists, named object groups and the rule-level network object,
// plus the merge engine that computes the optimized capacity.
package netobject

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/IvanKuchin/ftd-acl-optimizer/internal/ipcalc"
)

// Resolver turns a hostname into a single IPv4 address. Parsing calls it
// synchronously once per hostname item; tests inject fixed mappings.
type Resolver func(name string) (ipcalc.Addr, error)

// DefaultResolver resolves through the system resolver and accepts only
// IPv4 answers.
func DefaultResolver(name string) (ipcalc.Addr, error) {
	ips, err := net.DefaultResolver.LookupIP(context.Background(), "ip4", name)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve %q: %w", name, err)
	}
	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			return ipcalc.Addr(uint32(v4[0])<<24 | uint32(v4[1])<<16 | uint32(v4[2])<<8 | uint32(v4[3])), nil
		}
	}
	return 0, fmt.Errorf("no IPv4 address for %q", name)
}

// Item is one prefix-list entry. Start and End bound the addresses the item
// matches; Capacity is the number of CIDR blocks the item counts as.
type Item interface {
	Label() string
	Start() ipcalc.Addr
	End() ipcalc.Addr
	Capacity() uint64
}

// Prefix is a single CIDR block. Its capacity is 1 regardless of size.
type Prefix struct {
	label   string
	start   ipcalc.Addr
	maskLen int
}

// NewPrefix builds a prefix from an already-parsed address and mask length.
func NewPrefix(label string, addr ipcalc.Addr, maskLen int) Prefix {
	return Prefix{label: label, start: addr.Network(maskLen), maskLen: maskLen}
}

func (p Prefix) Label() string      { return p.label }
func (p Prefix) Start() ipcalc.Addr { return p.start }
func (p Prefix) End() ipcalc.Addr   { return p.start.Broadcast(p.maskLen) }
func (p Prefix) Capacity() uint64   { return 1 }

// Range is an inclusive address range. Its capacity is the number of
// minimal CIDR blocks the range decomposes into.
type Range struct {
	label string
	start ipcalc.Addr
	end   ipcalc.Addr
}

// NewRange fails when start is greater than end.
func NewRange(label string, start, end ipcalc.Addr) (Range, error) {
	if start > end {
		return Range{}, fmt.Errorf("start IP must be less than or equal to end IP in %q", label)
	}
	return Range{label: label, start: start, end: end}, nil
}

func (r Range) Label() string      { return r.label }
func (r Range) Start() ipcalc.Addr { return r.start }
func (r Range) End() ipcalc.Addr   { return r.end }
func (r Range) Capacity() uint64   { return ipcalc.RangeCapacity(r.start, r.end) }

// Host is a hostname resolved to one address at parse time.
type Host struct {
	label string
	addr  ipcalc.Addr
}

func (h Host) Label() string      { return h.label }
func (h Host) Start() ipcalc.Addr { return h.addr }
func (h Host) End() ipcalc.Addr   { return h.addr }
func (h Host) Capacity() uint64   { return 1 }

// ParseItem classifies one object-description token and parses it into the
// matching item variant. Recognized forms, in order of precedence:
//
//	10.11.12.13-10.11.12.18   address range
//	10.0.0.0/8 or 10.0.0.1    CIDR prefix / single address
//	fileserver.example.com    hostname, resolved through resolve
func ParseItem(s string, resolve Resolver) (Item, error) {
	switch {
	case isRange(s):
		return parseRange(s)
	case isPrefix(s):
		return parsePrefix(s)
	case isHostname(s):
		return parseHost(s, resolve)
	case strings.TrimSpace(s) == "":
		return nil, fmt.Errorf("empty prefix list item")
	default:
		return nil, fmt.Errorf("unknown type of prefix list item %q", s)
	}
}

func parseRange(s string) (Range, error) {
	parts := strings.SplitN(s, "-", 2)
	start, err := ipcalc.ParseAddr(strings.TrimSpace(parts[0]))
	if err != nil {
		return Range{}, fmt.Errorf("failed to parse ip range %q: %w", s, err)
	}
	end, err := ipcalc.ParseAddr(strings.TrimSpace(parts[1]))
	if err != nil {
		return Range{}, fmt.Errorf("failed to parse ip range %q: %w", s, err)
	}
	return NewRange(s, start, end)
}

func parsePrefix(s string) (Prefix, error) {
	addrPart, maskPart, hasMask := strings.Cut(s, "/")
	addr, err := ipcalc.ParseAddr(addrPart)
	if err != nil {
		return Prefix{}, fmt.Errorf("failed to parse prefix %q: %w", s, err)
	}
	maskLen := 32
	if hasMask {
		maskLen, err = strconv.Atoi(maskPart)
		if err != nil {
			return Prefix{}, fmt.Errorf("failed to parse prefix %q: %w", s, err)
		}
		if maskLen < 0 || maskLen > 32 {
			return Prefix{}, fmt.Errorf("invalid prefix mask length (expected 0 to 32) in %q", s)
		}
	}
	return NewPrefix(s, addr, maskLen), nil
}

func parseHost(s string, resolve Resolver) (Host, error) {
	if resolve == nil {
		resolve = DefaultResolver
	}
	addr, err := resolve(s)
	if err != nil {
		return Host{}, fmt.Errorf("failed to parse hostname %q: %w", s, err)
	}
	return Host{label: s, addr: addr}, nil
}

func isRange(s string) bool {
	for _, c := range s {
		if (c < '0' || c > '9') && c != '.' && c != '-' {
			return false
		}
	}
	return strings.Count(s, "-") == 1 && strings.Count(s, ".") == 6
}

func isPrefix(s string) bool {
	for _, c := range s {
		if (c < '0' || c > '9') && c != '.' && c != '/' {
			return false
		}
	}
	if strings.Count(s, ".") != 3 {
		return false
	}
	if addr, mask, hasMask := strings.Cut(s, "/"); hasMask {
		_ = addr
		if len(mask) == 0 || len(mask) > 2 {
			return false
		}
		if _, err := strconv.Atoi(mask); err != nil {
			return false
		}
	}
	return true
}

func isHostname(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		ok := c == '.' || c == '-' ||
			(c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if !ok {
			return false
		}
	}
	return true
}
