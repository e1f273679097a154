package db

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/tordrt/migrationgen/internal/schema"
)

// PostgresInspector reads table metadata from PostgreSQL catalogs
type PostgresInspector struct {
	client *PostgresClient
	schema string
}

// NewPostgresInspector creates a new PostgreSQL inspector
func NewPostgresInspector(client *PostgresClient, schemaName string) *PostgresInspector {
	return &PostgresInspector{
		client: client,
		schema: schemaName,
	}
}

// ListTables returns the base tables of the schema
func (e *PostgresInspector) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := e.client.GetPool().Query(ctx, query, e.schema)
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
func (e *PostgresInspector) ListColumns(ctx context.Context, tableName string) ([]schema.Column, error) {
	query := `
		SELECT
			c.column_name::text,
			c.data_type::text,
			c.is_nullable::text,
			c.column_default::text,
			c.is_identity::text,
			c.character_maximum_length::int8,
			c.numeric_precision::int8,
			c.numeric_scale::int8,
			pg_catalog.col_description(
				format('%I.%I', c.table_schema, c.table_name)::regclass::oid,
				c.ordinal_position::int
			)
		FROM information_schema.columns c
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position
	`

	rows, err := e.client.GetPool().Query(ctx, query, e.schema, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var (
			name, dataType, nullable, identity string
			defaultVal, comment                *string
			length, precision, scale           *int64
		)

		if err := rows.Scan(&name, &dataType, &nullable, &defaultVal, &identity, &length, &precision, &scale, &comment); err != nil {
			return nil, err
		}

		typ, fixed := postgresType(dataType)
		col := schema.Column{
			Name:          name,
			Type:          typ,
			Fixed:         fixed,
			Nullable:      nullable == "YES",
			Autoincrement: identity == "YES",
			Comment:       comment,
		}
		if typ == "string" {
			col.Length = int64Ptr(length)
		}
		if isPrecisionType(typ) {
			col.Precision, col.Scale = numericPrecision(typ, nullInt64(precision), nullInt64(scale))
		}
		if defaultVal != nil {
			if strings.HasPrefix(*defaultVal, "nextval(") {
				col.Autoincrement = true
			} else {
				col.Default = postgresDefault(*defaultVal)
			}
		}

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

func postgresType(dataType string) (typ string, fixed bool) {
	switch {
	case dataType == "smallint":
		return "smallint", false
	case dataType == "integer":
		return "integer", false
	case dataType == "bigint":
		return "bigint", false
	case dataType == "character varying":
		return "string", false
	case dataType == "character":
		return "string", true
	case dataType == "text", dataType == "ARRAY":
		return "text", false
	case dataType == "USER-DEFINED":
		// usually an enum; the enum catalog reclassifies it
		return "string", false
	case strings.HasPrefix(dataType, "timestamp"):
		return "datetime", false
	case dataType == "date":
		return "date", false
	case strings.HasPrefix(dataType, "time"):
		return "time", false
	case dataType == "numeric":
		return "decimal", false
	case dataType == "real":
		return "float", false
	case dataType == "double precision":
		return "double", false
	case dataType == "boolean":
		return "boolean", false
	case dataType == "bytea":
		return "blob", false
	case dataType == "json", dataType == "jsonb":
		return "json", false
	case dataType == "uuid":
		return "uuid", false
	default:
		return dataType, false
	}
}

var postgresCastPattern = regexp.MustCompile(`^(.*)::[a-z_ ]+(\[\])?$`)

// postgresDefault strips the type cast PostgreSQL adds to literal
// defaults, e.g. 'draft'::character varying, before normalizing them
func postgresDefault(v string) *string {
	if m := postgresCastPattern.FindStringSubmatch(v); m != nil {
		v = m[1]
	}
	return normalizeDefault(v)
}

// ListIndexes returns the indexes of a table, including the primary key
func (e *PostgresInspector) ListIndexes(ctx context.Context, tableName string) ([]schema.Index, error) {
	query := `
		SELECT
			i.relname::text AS index_name,
			ix.indisprimary AS is_primary,
			ix.indisunique AS is_unique,
			array_agg(a.attname::text ORDER BY array_position(ix.indkey::int2[], a.attnum)) AS column_names
		FROM pg_class t
		JOIN pg_index ix ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		JOIN pg_namespace n ON n.oid = t.relnamespace
		WHERE t.relkind = 'r'
			AND n.nspname = $1
			AND t.relname = $2
		GROUP BY i.relname, ix.indisprimary, ix.indisunique
		ORDER BY ix.indisprimary DESC, i.relname
	`

	rows, err := e.client.GetPool().Query(ctx, query, e.schema, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []schema.Index
	for rows.Next() {
		var idx schema.Index
		var isPrimary, isUnique bool
		if err := rows.Scan(&idx.Name, &isPrimary, &isUnique, &idx.Columns); err != nil {
			return nil, err
		}

		switch {
		case isPrimary:
			idx.Kind = schema.IndexPrimary
		case isUnique:
			idx.Kind = schema.IndexUnique
		default:
			idx.Kind = schema.IndexPlain
		}
		indexes = append(indexes, idx)
	}

	return indexes, rows.Err()
}

// EnumColumns returns the columns whose type is a PostgreSQL enum, with
// their labels rendered as an enum('a','b') literal. database names the
// schema that holds the table.
func (e *PostgresInspector) EnumColumns(ctx context.Context, database, tableName string) ([]schema.EnumColumn, error) {
	query := `
		SELECT c.column_name::text, e.enumlabel::text
		FROM information_schema.columns c
		JOIN pg_namespace n ON n.nspname = c.udt_schema
		JOIN pg_type t ON t.typname = c.udt_name AND t.typnamespace = n.oid
		JOIN pg_enum e ON e.enumtypid = t.oid
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position, e.enumsortorder
	`

	rows, err := e.client.GetPool().Query(ctx, query, database, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query enum columns: %w", err)
	}
	defer rows.Close()

	var order []string
	labels := make(map[string][]string)
	for rows.Next() {
		var column, label string
		if err := rows.Scan(&column, &label); err != nil {
			return nil, err
		}
		if _, ok := labels[column]; !ok {
			order = append(order, column)
		}
		labels[column] = append(labels[column], label)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	enums := make([]schema.EnumColumn, 0, len(order))
	for _, column := range order {
		enums = append(enums, schema.EnumColumn{Name: column, Definition: enumDefinition(labels[column])})
	}

	return enums, nil
}

func int64Ptr(v *int64) *int {
	if v == nil {
		return nil
	}
	return schema.IntPtr(int(*v))
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
