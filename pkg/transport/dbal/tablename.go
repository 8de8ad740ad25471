package dbal

import (
	"regexp"
	"strings"
)

var identPartRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ParseTableName validates "schema.table" or "table". Only validated names
// are ever interpolated into statements.
func ParseTableName(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalidConfig("table name is empty")
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return "", invalidConfig("invalid table name %q (expected table or schema.table)", s)
	}
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return "", invalidConfig("invalid table name %q (empty part)", s)
		}
		if !identPartRe.MatchString(p) {
			return "", invalidConfig("invalid table name %q (bad part %q)", s, p)
		}
		parts[i] = p
	}
	return strings.Join(parts, "."), nil
}

// tableBase strips the schema qualifier.
func tableBase(table string) string {
	if i := strings.LastIndexByte(table, '.'); i >= 0 {
		return table[i+1:]
	}
	return table
}
