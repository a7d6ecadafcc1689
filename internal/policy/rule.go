// Package policy models access-control rules and whole policies parsed from
// a "show access-control-config" export, and computes their device capacity
// cost before and after the folding the device applies on deploy.
package policy

import (
	"fmt"
	"strings"

	"github.com/IvanKuchin/ftd-acl-optimizer/internal/netobject"
	"github.com/IvanKuchin/ftd-acl-optimizer/internal/protoobject"
)

const (
	ruleNameOpen  = "-[ Rule: "
	ruleNameClose = " ]-"
)

// fieldTerminators close any network or ports field. A field's lines run
// from its keyword up to the first line mentioning any other keyword.
var fieldTerminators = []string{
	"Source Networks",
	"Destination Networks",
	"Source Ports",
	"Destination Ports",
	"Logging",
	"Users",
	"URLs",
	"Safe Search",
	"Logging Configuration",
}

// Rule is one access-control rule. Absent fields mean "any" and stay nil.
type Rule struct {
	name         string
	srcNetworks  *netobject.NetworkObject
	dstNetworks  *netobject.NetworkObject
	srcProtocols *protoobject.ProtocolObject
	dstProtocols *protoobject.ProtocolObject
}

// ParseRule builds a rule from its header line plus body lines.
func ParseRule(lines []string, resolve netobject.Resolver) (*Rule, error) {
	name, err := ruleName(lines)
	if err != nil {
		return nil, err
	}

	rule := &Rule{name: name}

	srcNet := fieldLines(lines, "Source Networks")
	if len(srcNet) > 0 {
		rule.srcNetworks, err = netobject.Parse(srcNet, resolve)
		if err != nil {
			return nil, fmt.Errorf("rule %q: source networks: %w", name, err)
		}
	}
	dstNet := fieldLines(lines, "Destination Networks")
	if len(dstNet) > 0 {
		rule.dstNetworks, err = netobject.Parse(dstNet, resolve)
		if err != nil {
			return nil, fmt.Errorf("rule %q: destination networks: %w", name, err)
		}
	}
	srcPorts := fieldLines(lines, "Source Ports")
	if len(srcPorts) > 0 {
		rule.srcProtocols, err = protoobject.Parse(srcPorts)
		if err != nil {
			return nil, fmt.Errorf("rule %q: source ports: %w", name, err)
		}
	}
	dstPorts := fieldLines(lines, "Destination Ports")
	if len(dstPorts) > 0 {
		rule.dstProtocols, err = protoobject.Parse(dstPorts)
		if err != nil {
			return nil, fmt.Errorf("rule %q: destination ports: %w", name, err)
		}
	}

	return rule, nil
}

// ruleName extracts the name from the rule's banner line, e.g.
// "----------[ Rule: Custom_rule2 | FM-15046 ]-----------".
func ruleName(lines []string) (string, error) {
	for _, line := range lines {
		if !strings.Contains(line, ruleNameOpen) {
			continue
		}
		_, rest, _ := strings.Cut(line, ruleNameOpen)
		name, _, found := strings.Cut(rest, ruleNameClose)
		if !found {
			return "", fmt.Errorf("unterminated rule name in %q", line)
		}
		return name, nil
	}
	return "", fmt.Errorf("no rule name line found")
}

// fieldLines slices out one field: from the line carrying the keyword up to
// the first line carrying any other field keyword.
func fieldLines(lines []string, keyword string) []string {
	var out []string
	started := false
	for _, line := range lines {
		if !started {
			if strings.Contains(line, keyword) {
				started = true
				out = append(out, line)
			}
			continue
		}
		if terminatesField(line, keyword) {
			break
		}
		out = append(out, line)
	}
	return out
}

func terminatesField(line, keyword string) bool {
	for _, terminator := range fieldTerminators {
		if terminator == keyword {
			continue
		}
		if strings.Contains(line, terminator) {
			return true
		}
	}
	return false
}

func (r *Rule) Name() string { return r.name }

func (r *Rule) SrcNetworks() *netobject.NetworkObject    { return r.srcNetworks }
func (r *Rule) DstNetworks() *netobject.NetworkObject    { return r.dstNetworks }
func (r *Rule) SrcProtocols() *protoobject.ProtocolObject { return r.srcProtocols }
func (r *Rule) DstProtocols() *protoobject.ProtocolObject { return r.dstProtocols }

// Capacity is the rule's device cost before network folding: source blocks
// times destination blocks times the protocol pairing factor. The factor
// always reflects the device's protocol folding since the device applies it
// unconditionally on deploy.
func (r *Rule) Capacity() uint64 {
	return r.networkCapacity(false) * r.ProtocolFactor()
}

// OptimizedCapacity is the rule's device cost with network folding applied
// on top of protocol folding.
func (r *Rule) OptimizedCapacity() uint64 {
	return r.networkCapacity(true) * r.ProtocolFactor()
}

func (r *Rule) networkCapacity(optimized bool) uint64 {
	capacityOf := func(obj *netobject.NetworkObject) uint64 {
		if obj == nil {
			return 1
		}
		if optimized {
			return obj.Optimize().Capacity()
		}
		return obj.Capacity()
	}
	return capacityOf(r.srcNetworks) * capacityOf(r.dstNetworks)
}

// ProtocolFactor is the number of expanded entries the protocol fields cost.
// Each side folds to a per-protocol frequency table; the side with more
// distinct protocols drives, and each of its protocols multiplies by the
// matching count on the other side, defaulting to 1 when absent. Two absent
// sides cost a factor of 1.
func (r *Rule) ProtocolFactor() uint64 {
	src := protocolFrequencies(r.srcProtocols)
	dst := protocolFrequencies(r.dstProtocols)

	if len(src) == 0 && len(dst) == 0 {
		return 1
	}

	long, short := dst, src
	if len(src) > len(dst) {
		long, short = src, dst
	}

	var factor uint64
	for protocol, count := range long {
		other, ok := short[protocol]
		if !ok {
			other = 1
		}
		factor += count * other
	}
	return factor
}

func protocolFrequencies(obj *protoobject.ProtocolObject) map[uint8]uint64 {
	if obj == nil {
		return nil
	}
	freq := make(map[uint8]uint64)
	for _, entry := range obj.Optimize() {
		freq[entry.Protocol()]++
	}
	return freq
}
