package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/tordrt/migrationgen/internal/schema"
)

// SQLServerInspector reads table metadata from SQL Server's catalog views
type SQLServerInspector struct {
	client     *SQLServerClient
	schemaName string
}

// NewSQLServerInspector creates a new SQL Server inspector
func NewSQLServerInspector(client *SQLServerClient, schemaName string) *SQLServerInspector {
	return &SQLServerInspector{
		client:     client,
		schemaName: schemaName,
	}
}

// ListTables returns the base tables of the schema
func (e *SQLServerInspector) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = @p1 AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}

	return tables, rows.Err()
}

// ListColumns returns the columns of a table in ordinal order
func (e *SQLServerInspector) ListColumns(ctx context.Context, tableName string) ([]schema.Column, error) {
	query := `
		SELECT
			c.COLUMN_NAME,
			c.DATA_TYPE,
			c.IS_NULLABLE,
			c.COLUMN_DEFAULT,
			COLUMNPROPERTY(OBJECT_ID(QUOTENAME(c.TABLE_SCHEMA) + '.' + QUOTENAME(c.TABLE_NAME)), c.COLUMN_NAME, 'IsIdentity'),
			c.CHARACTER_MAXIMUM_LENGTH,
			CAST(c.NUMERIC_PRECISION AS int),
			c.NUMERIC_SCALE,
			CAST(ep.value AS nvarchar(4000))
		FROM INFORMATION_SCHEMA.COLUMNS c
		LEFT JOIN sys.extended_properties ep
			ON ep.class = 1
			AND ep.name = 'MS_Description'
			AND ep.major_id = OBJECT_ID(QUOTENAME(c.TABLE_SCHEMA) + '.' + QUOTENAME(c.TABLE_NAME))
			AND ep.minor_id = COLUMNPROPERTY(OBJECT_ID(QUOTENAME(c.TABLE_SCHEMA) + '.' + QUOTENAME(c.TABLE_NAME)), c.COLUMN_NAME, 'ColumnId')
		WHERE c.TABLE_SCHEMA = @p1 AND c.TABLE_NAME = @p2
		ORDER BY c.ORDINAL_POSITION
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var (
			name, dataType, nullable           string
			defaultVal, comment                sql.NullString
			identity, length, precision, scale sql.NullInt64
		)

		if err := rows.Scan(&name, &dataType, &nullable, &defaultVal, &identity, &length, &precision, &scale, &comment); err != nil {
			return nil, err
		}

		typ, fixed := sqlserverType(dataType)
		col := schema.Column{
			Name:          name,
			Type:          typ,
			Fixed:         fixed,
			Nullable:      nullable == "YES",
			Unsigned:      typ == "tinyint",
			Autoincrement: identity.Valid && identity.Int64 == 1,
			Comment:       nullStringPtr(comment),
		}
		if typ == "string" {
			// (max) columns report a length of -1
			if length.Valid && length.Int64 < 0 {
				col.Type = "text"
			} else {
				col.Length = nullIntPtr(length)
			}
		}
		if isPrecisionType(typ) {
			col.Precision, col.Scale = numericPrecision(typ, precision, scale)
		}
		if defaultVal.Valid {
			col.Default = sqlserverDefault(defaultVal.String)
		}

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

func sqlserverType(dataType string) (typ string, fixed bool) {
	switch strings.ToLower(dataType) {
	case "bit":
		return "boolean", false
	case "tinyint":
		return "tinyint", false
	case "smallint":
		return "smallint", false
	case "int":
		return "integer", false
	case "bigint":
		return "bigint", false
	case "varchar", "nvarchar":
		return "string", false
	case "char", "nchar":
		return "string", true
	case "text", "ntext", "xml":
		return "text", false
	case "datetime", "datetime2", "smalldatetime", "datetimeoffset":
		return "datetime", false
	case "date":
		return "date", false
	case "time":
		return "time", false
	case "decimal", "numeric", "money", "smallmoney":
		return "decimal", false
	case "real":
		return "float", false
	case "float":
		return "double", false
	case "binary", "varbinary", "image":
		return "blob", false
	case "uniqueidentifier":
		return "uuid", false
	default:
		return strings.ToLower(dataType), false
	}
}

// sqlserverDefault unwraps the parentheses SQL Server stores around
// default expressions, e.g. ((0)) or (N'draft'), before normalizing them
func sqlserverDefault(v string) *string {
	v = strings.TrimSpace(v)
	for enclosedInParens(v) {
		v = strings.TrimSpace(v[1 : len(v)-1])
	}
	if strings.HasPrefix(v, "N'") {
		v = v[1:]
	}
	return normalizeDefault(v)
}

// enclosedInParens reports whether the first and last characters of v are
// a matching pair of parentheses
func enclosedInParens(v string) bool {
	if len(v) < 2 || v[0] != '(' || v[len(v)-1] != ')' {
		return false
	}
	depth := 0
	inQuote := false
	for i := 0; i < len(v); i++ {
		switch v[i] {
		case '\'':
			inQuote = !inQuote
		case '(':
			if !inQuote {
				depth++
			}
		case ')':
			if !inQuote {
				depth--
				if depth == 0 && i < len(v)-1 {
					return false
				}
			}
		}
	}
	return depth == 0
}

// ListIndexes returns the indexes of a table, including the primary key
func (e *SQLServerInspector) ListIndexes(ctx context.Context, tableName string) ([]schema.Index, error) {
	query := `
		SELECT
			i.name,
			i.is_primary_key,
			i.is_unique,
			c.name
		FROM sys.indexes i
		JOIN sys.index_columns ic ON ic.object_id = i.object_id AND ic.index_id = i.index_id
		JOIN sys.columns c ON c.object_id = ic.object_id AND c.column_id = ic.column_id
		WHERE i.object_id = OBJECT_ID(QUOTENAME(@p1) + '.' + QUOTENAME(@p2))
			AND i.type > 0
			AND ic.is_included_column = 0
		ORDER BY i.is_primary_key DESC, i.name, ic.key_ordinal
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	indexMap := make(map[string]*schema.Index)
	var indexOrder []string

	for rows.Next() {
		var indexName, columnName string
		var isPrimary, isUnique bool

		if err := rows.Scan(&indexName, &isPrimary, &isUnique, &columnName); err != nil {
			return nil, err
		}

		if _, exists := indexMap[indexName]; !exists {
			kind := schema.IndexPlain
			switch {
			case isPrimary:
				kind = schema.IndexPrimary
			case isUnique:
				kind = schema.IndexUnique
			}
			indexMap[indexName] = &schema.Index{Name: indexName, Kind: kind}
			indexOrder = append(indexOrder, indexName)
		}

		indexMap[indexName].Columns = append(indexMap[indexName].Columns, columnName)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	indexes := make([]schema.Index, 0, len(indexOrder))
	for _, name := range indexOrder {
		indexes = append(indexes, *indexMap[name])
	}

	return indexes, nil
}

// EnumColumns always fails: SQL Server has no enum type
func (e *SQLServerInspector) EnumColumns(ctx context.Context, database, tableName string) ([]schema.EnumColumn, error) {
	return nil, ErrEnumCatalogUnavailable
}
