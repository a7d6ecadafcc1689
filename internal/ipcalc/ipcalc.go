// Package ipcalc implements the 32-bit address arithmetic the capacity
// model is built on: dotted-quad parsing, network/broadcast masking and
// the decomposition of an arbitrary inclusive range into the minimal set
// of CIDR-aligned blocks.
package ipcalc

import (
	"fmt"
	"strconv"
	"strings"
)

// Addr is an IPv4 address as a plain 32-bit value. The zero value is
// 0.0.0.0. Ordering is numeric.
type Addr uint32

// MaxAddr is 255.255.255.255.
const MaxAddr Addr = 1<<32 - 1

// ParseAddr parses a dotted-quad IPv4 address. Exactly four octets are
// required and each must be in 0-255.
func ParseAddr(s string) (Addr, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return 0, fmt.Errorf("invalid IP format (expected IPv4) in %q", s)
	}
	var addr uint32
	for _, part := range parts {
		octet, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse IPv4 address %q: %w", s, err)
		}
		if octet > 255 {
			return 0, fmt.Errorf("IP octet must be in the range 0-255 in %q", s)
		}
		addr = addr<<8 | uint32(octet)
	}
	return Addr(addr), nil
}

func (a Addr) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", byte(a>>24), byte(a>>16), byte(a>>8), byte(a))
}

// Network clears the host bits for the given mask length.
func (a Addr) Network(maskLen int) Addr {
	return a & hostMask(maskLen)
}

// Broadcast sets the host bits for the given mask length.
func (a Addr) Broadcast(maskLen int) Addr {
	return a | ^hostMask(maskLen)
}

func hostMask(maskLen int) Addr {
	if maskLen <= 0 {
		return 0
	}
	if maskLen >= 32 {
		return MaxAddr
	}
	return MaxAddr << (32 - maskLen)
}

// Next returns the successor address. At 255.255.255.255 it saturates:
// every sorted item left after the maximum address necessarily overlaps
// it, so the merge adjacency test stays correct without widening.
func (a Addr) Next() Addr {
	if a == MaxAddr {
		return MaxAddr
	}
	return a + 1
}

// Compare returns -1, 0 or 1 ordering a against b numerically.
func (a Addr) Compare(b Addr) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Block is one CIDR-aligned address block.
type Block struct {
	Start   Addr
	End     Addr
	MaskLen int
}

func (b Block) String() string {
	return fmt.Sprintf("%s/%d", b.Start, b.MaskLen)
}

// DecomposeRange splits the inclusive range [start, end] into the minimal
// sequence of CIDR-aligned blocks. For each position the mask is scanned
// from 0 upward and the first mask whose block is aligned at the current
// address and fits inside the range is taken; scanning largest-block-first
// guarantees the minimal count.
func DecomposeRange(start, end Addr) []Block {
	if start > end {
		return nil
	}

	var blocks []Block
	cur := start
	for cur <= end {
		maskLen := 0
		for maskLen <= 32 {
			if cur.Network(maskLen) == cur && cur.Broadcast(maskLen) <= end {
				break
			}
			maskLen++
		}

		top := cur.Broadcast(maskLen)
		blocks = append(blocks, Block{Start: cur, End: top, MaskLen: maskLen})

		if top >= end {
			break
		}
		cur = top.Next()
	}
	return blocks
}

// RangeCapacity is the number of minimal CIDR blocks covering [start, end].
func RangeCapacity(start, end Addr) uint64 {
	return uint64(len(DecomposeRange(start, end)))
}
