// Package parser turns a "show access-control-config" export into a parsed
// policy, loading the raw text from a file-like reader or from a MariaDB
// rule store.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/IvanKuchin/ftd-acl-optimizer/internal/netobject"
	"github.com/IvanKuchin/ftd-acl-optimizer/internal/policy"
)

const (
	ruleBoundaryMarker     = "-[ Rule: "
	advancedSettingsMarker = "=[ Advanced Settings ]="
	objectMissingMarker    = "Object missing: "
)

type FTDParser struct {
	scanner *bufio.Scanner
	resolve netobject.Resolver
}

// Option configures an FTDParser.
type Option func(*FTDParser)

// WithResolver replaces the live DNS resolver used for hostname objects.
func WithResolver(resolve netobject.Resolver) Option {
	return func(p *FTDParser) { p.resolve = resolve }
}

func NewFTDParser(reader io.Reader, opts ...Option) *FTDParser {
	p := &FTDParser{
		scanner: bufio.NewScanner(reader),
		resolve: netobject.DefaultResolver,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reads the whole export and returns the parsed policy. The policy
// extent runs from the first rule boundary to the advanced-settings
// terminator; exporter damage (missing-object lines, values wrapped across
// physical lines) is repaired before rule parsing.
func (p *FTDParser) Parse() (*policy.ACP, error) {
	var lines []string
	inPolicy := false
	for p.scanner.Scan() {
		line := p.scanner.Text()
		if !inPolicy {
			if !strings.Contains(line, ruleBoundaryMarker) {
				continue
			}
			inPolicy = true
		}
		if strings.Contains(line, advancedSettingsMarker) {
			break
		}
		if strings.Contains(line, objectMissingMarker) {
			continue
		}
		lines = append(lines, line)
	}
	if err := p.scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading export: %w", err)
	}

	joined, err := rejoinWrappedLines(lines)
	if err != nil {
		return nil, err
	}

	acp, err := policy.ParseACP(joined, p.resolve)
	if err != nil {
		return nil, err
	}
	return acp, nil
}

// rejoinWrappedLines undoes the exporter's hard wrapping: a line with an
// opened-but-unclosed parenthesis concatenates the following physical lines
// without a separator until the parenthesis closes.
func rejoinWrappedLines(lines []string) ([]string, error) {
	var out []string
	for idx := 0; idx < len(lines); idx++ {
		line := lines[idx]
		depth := parenDepth(line)
		for depth > 0 {
			idx++
			if idx >= len(lines) {
				return nil, fmt.Errorf("unterminated parenthesis in %q", line)
			}
			line += lines[idx]
			depth = parenDepth(line)
		}
		out = append(out, line)
	}
	return out, nil
}

func parenDepth(line string) int {
	return strings.Count(line, "(") - strings.Count(line, ")")
}
