package db

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tordrt/migrationgen/internal/schema"
)

// SQLiteInspector reads table metadata from SQLite pragmas
type SQLiteInspector struct {
	client *SQLiteClient
}

// NewSQLiteInspector creates a new SQLite inspector
func NewSQLiteInspector(client *SQLiteClient) *SQLiteInspector {
	return &SQLiteInspector{
		client: client,
	}
}

// ListTables returns the tables of the database
func (e *SQLiteInspector) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tableList []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tableList = append(tableList, tableName)
	}

	return tableList, rows.Err()
}

type sqliteColumnInfo struct {
	name     string
	declType string
	notNull  bool
	dflt     sql.NullString
	pk       int
}

func (e *SQLiteInspector) tableInfo(ctx context.Context, tableName string) ([]sqliteColumnInfo, error) {
	query := fmt.Sprintf("PRAGMA table_info(%s)", quoteSQLiteIdent(tableName))

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []sqliteColumnInfo
	for rows.Next() {
		var cid, notNull int
		var info sqliteColumnInfo
		if err := rows.Scan(&cid, &info.name, &info.declType, &notNull, &info.dflt, &info.pk); err != nil {
			return nil, err
		}
		info.notNull = notNull == 1
		infos = append(infos, info)
	}

	return infos, rows.Err()
}

// ListColumns returns the columns of a table in declaration order
func (e *SQLiteInspector) ListColumns(ctx context.Context, tableName string) ([]schema.Column, error) {
	infos, err := e.tableInfo(ctx, tableName)
	if err != nil {
		return nil, err
	}

	pkCount := 0
	for _, info := range infos {
		if info.pk > 0 {
			pkCount++
		}
	}

	columns := make([]schema.Column, 0, len(infos))
	for _, info := range infos {
		col := parseSQLiteType(info.declType)
		col.Name = info.name
		col.Nullable = !info.notNull && info.pk == 0

		// INTEGER PRIMARY KEY aliases the rowid and auto-increments
		if info.pk > 0 && pkCount == 1 && strings.EqualFold(strings.TrimSpace(info.declType), "integer") {
			col.Autoincrement = true
		}
		if info.dflt.Valid {
			col.Default = normalizeDefault(info.dflt.String)
		}

		columns = append(columns, col)
	}

	return columns, nil
}

var sqliteTypePattern = regexp.MustCompile(`^\s*([a-zA-Z][a-zA-Z0-9 ]*?)\s*(?:\(\s*(\d+)\s*(?:,\s*(\d+)\s*)?\))?\s*$`)

// parseSQLiteType maps a declared column type such as VARCHAR(100) or
// UNSIGNED BIG INT to a column with type, length and precision set.
func parseSQLiteType(decl string) schema.Column {
	var col schema.Column

	// no declared type means blob affinity
	if strings.TrimSpace(decl) == "" {
		col.Type = "blob"
		return col
	}

	m := sqliteTypePattern.FindStringSubmatch(decl)
	if m == nil {
		col.Type = "text"
		return col
	}

	name := strings.ToLower(m[1])
	if strings.HasPrefix(name, "unsigned ") {
		col.Unsigned = true
		name = strings.TrimPrefix(name, "unsigned ")
	}
	if strings.HasSuffix(name, " unsigned") {
		col.Unsigned = true
		name = strings.TrimSuffix(name, " unsigned")
	}

	var size, scale *int
	if m[2] != "" {
		n, _ := strconv.Atoi(m[2])
		size = schema.IntPtr(n)
	}
	if m[3] != "" {
		n, _ := strconv.Atoi(m[3])
		scale = schema.IntPtr(n)
	}

	switch name {
	case "integer", "int", "mediumint":
		col.Type = "integer"
	case "tinyint":
		col.Type = "tinyint"
	case "smallint":
		col.Type = "smallint"
	case "bigint", "big int", "int8":
		col.Type = "bigint"
	case "boolean", "bool":
		col.Type = "boolean"
	case "varchar", "character varying", "varying character", "nvarchar", "native character":
		col.Type = "string"
		col.Length = size
	case "char", "character", "nchar":
		col.Type = "string"
		col.Fixed = true
		col.Length = size
	case "text", "clob", "tinytext", "mediumtext", "longtext":
		col.Type = "text"
	case "datetime", "timestamp":
		col.Type = "datetime"
	case "date":
		col.Type = "date"
	case "time":
		col.Type = "time"
	case "decimal", "numeric":
		col.Type = "decimal"
		col.Precision = size
		if scale != nil {
			col.Scale = *scale
		}
	case "float", "real":
		col.Type = "float"
	case "double", "double precision":
		col.Type = "double"
	case "blob":
		col.Type = "blob"
	case "json":
		col.Type = "json"
	default:
		col.Type = name
	}

	if (col.Type == "float" || col.Type == "double") && col.Precision == nil {
		if size != nil && scale != nil {
			col.Precision, col.Scale = size, *scale
		} else {
			col.Precision, col.Scale = schema.IntPtr(defaultPrecision), defaultScale
		}
	}

	return col
}

// ListIndexes returns the indexes of a table, including the primary key
func (e *SQLiteInspector) ListIndexes(ctx context.Context, tableName string) ([]schema.Index, error) {
	query := fmt.Sprintf("PRAGMA index_list(%s)", quoteSQLiteIdent(tableName))

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	type indexEntry struct {
		name   string
		unique bool
		origin string
	}
	var entries []indexEntry
	for rows.Next() {
		var seq, unique, partial int
		var entry indexEntry
		if err := rows.Scan(&seq, &entry.name, &unique, &entry.origin, &partial); err != nil {
			rows.Close()
			return nil, err
		}
		entry.unique = unique == 1
		entries = append(entries, entry)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var indexes []schema.Index
	hasPrimary := false
	for _, entry := range entries {
		columns, err := e.indexColumns(ctx, entry.name)
		if err != nil {
			return nil, err
		}
		if len(columns) == 0 {
			continue
		}

		idx := schema.Index{Name: entry.name, Kind: schema.IndexPlain, Columns: columns}
		switch {
		case entry.origin == "pk":
			idx.Kind = schema.IndexPrimary
			hasPrimary = true
		case entry.unique:
			idx.Kind = schema.IndexUnique
		}
		// auto indexes back inline constraints and carry no user given name
		if strings.HasPrefix(entry.name, "sqlite_autoindex") {
			idx.Name = ""
		}
		indexes = append(indexes, idx)
	}

	// rowid primary keys do not appear in index_list
	if !hasPrimary {
		pk, err := e.primaryKey(ctx, tableName)
		if err != nil {
			return nil, err
		}
		if len(pk) > 0 {
			indexes = append([]schema.Index{{Kind: schema.IndexPrimary, Columns: pk}}, indexes...)
		}
	}

	return indexes, nil
}

func (e *SQLiteInspector) indexColumns(ctx context.Context, indexName string) ([]string, error) {
	query := fmt.Sprintf("PRAGMA index_info(%s)", quoteSQLiteIdent(indexName))
	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var seqno, cid int
		var colName sql.NullString

		if err := rows.Scan(&seqno, &cid, &colName); err != nil {
			return nil, err
		}

		if colName.Valid {
			columns = append(columns, colName.String)
		}
	}

	return columns, rows.Err()
}

// primaryKey returns the primary key columns in key order
func (e *SQLiteInspector) primaryKey(ctx context.Context, tableName string) ([]string, error) {
	infos, err := e.tableInfo(ctx, tableName)
	if err != nil {
		return nil, err
	}

	ordered := make(map[int]string)
	for _, info := range infos {
		if info.pk > 0 {
			ordered[info.pk] = info.name
		}
	}

	pk := make([]string, 0, len(ordered))
	for i := 1; i <= len(ordered); i++ {
		if name, ok := ordered[i]; ok {
			pk = append(pk, name)
		}
	}

	return pk, nil
}

// EnumColumns always fails: SQLite has no enum type
func (e *SQLiteInspector) EnumColumns(ctx context.Context, database, tableName string) ([]schema.EnumColumn, error) {
	return nil, ErrEnumCatalogUnavailable
}

func quoteSQLiteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
