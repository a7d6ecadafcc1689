// Package wellknown maps IANA-assigned IP protocol numbers to their keywords
// for human-readable reports.
package wellknown

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	_ "embed"
)

//go:embed ip_protocols.csv
var ipProtocolsData string

var protocolRegistry map[uint8]string

func init() {
	protocolRegistry = make(map[uint8]string)
	reader := csv.NewReader(bytes.NewBufferString(ipProtocolsData))
	reader.TrimLeadingSpace = true
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Fatalf("Failed to read header from embedded ip_protocols.csv: %v", err)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to parse embedded ip_protocols.csv: %v", err)
		}
		if len(record) < 2 {
			continue
		}

		number, err := strconv.ParseUint(record[0], 10, 8)
		if err != nil {
			continue // Skip if number is not a valid protocol
		}
		keyword := strings.TrimSpace(record[1])
		if keyword == "" {
			continue
		}
		protocolRegistry[uint8(number)] = keyword
	}
}

// ProtocolKeyword returns the IANA keyword for an IP protocol number.
func ProtocolKeyword(number uint8) (string, bool) {
	keyword, ok := protocolRegistry[number]
	return keyword, ok
}

// ProtocolLabel returns the IANA keyword for known protocol numbers and a
// "protocol N" placeholder otherwise.
func ProtocolLabel(number uint8) string {
	if keyword, ok := protocolRegistry[number]; ok {
		return keyword
	}
	return fmt.Sprintf("protocol %d", number)
}
