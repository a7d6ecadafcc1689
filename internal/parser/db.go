package parser

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/IvanKuchin/ftd-acl-optimizer/internal/netobject"
	"github.com/IvanKuchin/ftd-acl-optimizer/internal/policy"

	_ "github.com/go-sql-driver/mysql"
)

// MariaDBParser loads rule text archived by a collector into a MariaDB
// table and parses it the same way as a file export. Each row stores one
// rule's raw text exactly as the exporter printed it.
type MariaDBParser struct {
	db      *sql.DB
	policy  string
	resolve netobject.Resolver
}

// DBOption configures a MariaDBParser.
type DBOption func(*MariaDBParser)

// WithPolicyFilter restricts loading to rows of one named policy.
func WithPolicyFilter(name string) DBOption {
	return func(p *MariaDBParser) { p.policy = name }
}

// WithDBResolver replaces the live DNS resolver used for hostname objects.
func WithDBResolver(resolve netobject.Resolver) DBOption {
	return func(p *MariaDBParser) { p.resolve = resolve }
}

func NewMariaDBParser(dsn string, opts ...DBOption) (*MariaDBParser, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	p := &MariaDBParser{db: db, resolve: netobject.DefaultResolver}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *MariaDBParser) Close() {
	p.db.Close()
}

// Parse loads the archived rule rows in policy order and parses them as one
// export body.
func (p *MariaDBParser) Parse() (*policy.ACP, error) {
	lines, err := p.loadRuleLines()
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
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

func (p *MariaDBParser) loadRuleLines() ([]string, error) {
	query := "SELECT rule_name, rule_text FROM acp_rules ORDER BY position ASC"
	args := []any{}
	if p.policy != "" {
		query = "SELECT rule_name, rule_text FROM acp_rules WHERE policy_name = ? ORDER BY position ASC"
		args = append(args, p.policy)
	}

	rows, err := p.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var ruleName string
		var ruleText sql.NullString
		if err := rows.Scan(&ruleName, &ruleText); err != nil {
			return nil, err
		}
		if !ruleText.Valid {
			continue
		}
		for _, line := range strings.Split(ruleText.String, "\n") {
			if strings.Contains(line, objectMissingMarker) {
				continue
			}
			lines = append(lines, line)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
