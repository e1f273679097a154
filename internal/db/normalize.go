package db

import (
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"github.com/tordrt/migrationgen/internal/schema"
)

// ErrEnumCatalogUnavailable is returned by inspectors whose database has
// no catalog of enum columns.
var ErrEnumCatalogUnavailable = errors.New("enum catalog unavailable")

// Defaults assumed for floating point columns without a declared scale
const (
	defaultPrecision = 8
	defaultScale     = 2
)

var currentTimestampPattern = regexp.MustCompile(`(?i)^(current_timestamp|now|getdate|sysdatetime|localtimestamp)(\(\d*\))?$`)

// normalizeDefault interprets a catalog default. Quoted values are string
// literals and only lose their quotes. Unquoted NULL is an explicit NULL
// default and spellings of "now" map to schema.CurrentTimestamp.
func normalizeDefault(raw string) *string {
	v := strings.TrimSpace(raw)
	if isQuoted(v) {
		return schema.StringPtr(unquoteLiteral(v))
	}
	switch {
	case strings.EqualFold(v, "null"):
		return nil
	case currentTimestampPattern.MatchString(v):
		return schema.StringPtr(schema.CurrentTimestamp)
	}
	return &raw
}

func isQuoted(v string) bool {
	return len(v) >= 2 && v[0] == '\'' && v[len(v)-1] == '\''
}

// unquoteLiteral strips one level of SQL single quotes, undoubling
// embedded quotes. Values that are not quoted are returned unchanged.
func unquoteLiteral(v string) string {
	if isQuoted(v) {
		return strings.ReplaceAll(v[1:len(v)-1], "''", "'")
	}
	return v
}

// numericPrecision resolves precision and scale for precision based types.
// Floating point columns without a reported scale fall back to the
// conventional defaults; decimals keep a missing precision as nil.
func numericPrecision(typ string, precision, scale sql.NullInt64) (*int, int) {
	if typ != "decimal" && !scale.Valid {
		return schema.IntPtr(defaultPrecision), defaultScale
	}
	var p *int
	if precision.Valid {
		p = schema.IntPtr(int(precision.Int64))
	}
	return p, int(scale.Int64)
}

func nullIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	return schema.IntPtr(int(v.Int64))
}

func nullStringPtr(v sql.NullString) *string {
	if !v.Valid || v.String == "" {
		return nil
	}
	return schema.StringPtr(v.String)
}

func isPrecisionType(typ string) bool {
	return typ == "decimal" || typ == "float" || typ == "double"
}

// enumDefinition renders enum labels as an enum('a','b') literal
func enumDefinition(labels []string) string {
	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = "'" + strings.ReplaceAll(l, "'", `\'`) + "'"
	}
	return "enum(" + strings.Join(quoted, ",") + ")"
}
