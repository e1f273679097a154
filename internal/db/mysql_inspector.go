package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tordrt/migrationgen/internal/schema"
)

// MySQLInspector reads table metadata from MySQL's information_schema
type MySQLInspector struct {
	client     *MySQLClient
	schemaName string
}

// NewMySQLInspector creates a new MySQL inspector
func NewMySQLInspector(client *MySQLClient, schemaName string) *MySQLInspector {
	return &MySQLInspector{
		client:     client,
		schemaName: schemaName,
	}
}

// ListTables returns the base tables of the schema
func (e *MySQLInspector) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
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
func (e *MySQLInspector) ListColumns(ctx context.Context, tableName string) ([]schema.Column, error) {
	query := `
		SELECT
			c.column_name,
			c.data_type,
			c.column_type,
			c.is_nullable,
			c.column_default,
			c.extra,
			c.character_maximum_length,
			c.numeric_precision,
			c.numeric_scale,
			c.column_comment
		FROM information_schema.columns c
		WHERE c.table_schema = ? AND c.table_name = ?
		ORDER BY c.ordinal_position
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var (
			name, dataType, columnType string
			nullable, extra            string
			defaultVal, comment        sql.NullString
			length, precision, scale   sql.NullInt64
		)

		if err := rows.Scan(&name, &dataType, &columnType, &nullable, &defaultVal, &extra, &length, &precision, &scale, &comment); err != nil {
			return nil, err
		}

		typ, fixed := mysqlType(dataType, columnType)
		col := schema.Column{
			Name:          name,
			Type:          typ,
			Fixed:         fixed,
			Nullable:      nullable == "YES",
			Unsigned:      strings.Contains(strings.ToLower(columnType), "unsigned"),
			Autoincrement: strings.Contains(strings.ToLower(extra), "auto_increment"),
			Comment:       nullStringPtr(comment),
		}
		if typ == "string" {
			col.Length = nullIntPtr(length)
		}
		if isPrecisionType(typ) {
			col.Precision, col.Scale = numericPrecision(typ, precision, scale)
		}
		if defaultVal.Valid {
			col.Default = mysqlDefault(defaultVal.String, e.client.IsMariaDB())
		}

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// mysqlDefault normalizes a column_default value. MariaDB quotes string
// literals and spells a NULL default as NULL. MySQL reports literals
// unquoted and a NULL default as SQL NULL, so its text is never NULL.
func mysqlDefault(raw string, mariaDB bool) *string {
	if mariaDB {
		return normalizeDefault(raw)
	}
	if currentTimestampPattern.MatchString(strings.TrimSpace(raw)) {
		return schema.StringPtr(schema.CurrentTimestamp)
	}
	return &raw
}

// mysqlType maps a MySQL data type to the generator's vocabulary. Enum and
// set columns are reported as strings; the enum catalog reclassifies them.
func mysqlType(dataType, columnType string) (typ string, fixed bool) {
	switch strings.ToLower(dataType) {
	case "tinyint":
		if strings.HasPrefix(strings.ToLower(columnType), "tinyint(1)") {
			return "boolean", false
		}
		return "tinyint", false
	case "smallint":
		return "smallint", false
	case "mediumint", "int", "integer":
		return "integer", false
	case "bigint":
		return "bigint", false
	case "bit":
		return "boolean", false
	case "char":
		return "string", true
	case "varchar", "enum", "set":
		return "string", false
	case "tinytext", "text", "mediumtext", "longtext":
		return "text", false
	case "datetime", "timestamp":
		return "datetime", false
	case "date", "year":
		return "date", false
	case "time":
		return "time", false
	case "decimal", "numeric":
		return "decimal", false
	case "float":
		return "float", false
	case "double", "real":
		return "double", false
	case "tinyblob", "blob", "mediumblob", "longblob", "binary", "varbinary":
		return "blob", false
	case "json":
		return "json", false
	default:
		return strings.ToLower(dataType), false
	}
}

// ListIndexes returns the indexes of a table, including the primary key
func (e *MySQLInspector) ListIndexes(ctx context.Context, tableName string) ([]schema.Index, error) {
	query := `
		SELECT
			s.index_name,
			s.non_unique,
			s.column_name
		FROM information_schema.statistics s
		WHERE s.table_schema = ?
			AND s.table_name = ?
		ORDER BY s.index_name = 'PRIMARY' DESC, s.index_name, s.seq_in_index
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
		var nonUnique int

		if err := rows.Scan(&indexName, &nonUnique, &columnName); err != nil {
			return nil, err
		}

		if _, exists := indexMap[indexName]; !exists {
			kind := schema.IndexPlain
			switch {
			case indexName == "PRIMARY":
				kind = schema.IndexPrimary
			case nonUnique == 0:
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

// EnumColumns returns the enum columns of a table with their raw
// enum('a','b') definitions
func (e *MySQLInspector) EnumColumns(ctx context.Context, database, tableName string) ([]schema.EnumColumn, error) {
	query := `
		SELECT column_name, column_type
		FROM information_schema.columns
		WHERE table_schema = ?
			AND table_name = ?
			AND data_type = 'enum'
		ORDER BY ordinal_position
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, database, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query enum columns: %w", err)
	}
	defer rows.Close()

	var enums []schema.EnumColumn
	for rows.Next() {
		var col schema.EnumColumn
		if err := rows.Scan(&col.Name, &col.Definition); err != nil {
			return nil, err
		}
		enums = append(enums, col)
	}

	return enums, rows.Err()
}
