//go:build integration
// +build integration

package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/migrationgen/internal/schema"
)

func TestMySQLInspector(t *testing.T) {
	ctx := context.Background()

	connString := envOr("MYSQL_TEST_URL", "root:testpassword@tcp(localhost:3306)/testdb")
	database, err := ParseDatabaseName(connString)
	require.NoError(t, err)

	client, err := NewMySQLClient(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect to MySQL: %v", err)
	}
	defer client.Close()

	_, err = client.GetDB().ExecContext(ctx, `
		CREATE TABLE mg_orders (
			id INT UNSIGNED NOT NULL AUTO_INCREMENT,
			reference CHAR(12) NOT NULL,
			status ENUM('pending','paid','refunded') NOT NULL DEFAULT 'pending',
			total DECIMAL(10,2) NOT NULL DEFAULT 0.00,
			active TINYINT(1) NOT NULL DEFAULT 1,
			note VARCHAR(255) NULL COMMENT 'free text',
			created_at TIMESTAMP NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			UNIQUE KEY mg_orders_reference_unique (reference),
			KEY mg_orders_status_created_at_index (status, created_at)
		)`)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = client.GetDB().ExecContext(context.Background(), "DROP TABLE mg_orders")
	})

	inspector := NewMySQLInspector(client, database)

	tables, err := inspector.ListTables(ctx)
	require.NoError(t, err)
	assert.Contains(t, tables, "mg_orders")

	columns, err := inspector.ListColumns(ctx, "mg_orders")
	require.NoError(t, err)
	require.Len(t, columns, 7)

	id := findColumn(t, columns, "id")
	assert.Equal(t, "integer", id.Type)
	assert.True(t, id.Unsigned)
	assert.True(t, id.Autoincrement)

	reference := findColumn(t, columns, "reference")
	assert.True(t, reference.Fixed)
	require.NotNil(t, reference.Length)
	assert.Equal(t, 12, *reference.Length)

	total := findColumn(t, columns, "total")
	require.NotNil(t, total.Precision)
	assert.Equal(t, 10, *total.Precision)
	assert.Equal(t, 2, total.Scale)

	assert.Equal(t, "boolean", findColumn(t, columns, "active").Type)
	assert.Equal(t, schema.StringPtr("free text"), findColumn(t, columns, "note").Comment)
	assert.Equal(t, schema.StringPtr(schema.CurrentTimestamp), findColumn(t, columns, "created_at").Default)
	assert.Equal(t, schema.StringPtr("pending"), findColumn(t, columns, "status").Default)

	indexes, err := inspector.ListIndexes(ctx, "mg_orders")
	require.NoError(t, err)
	require.NotEmpty(t, indexes)
	assert.Equal(t, schema.IndexPrimary, indexes[0].Kind)
	assert.Equal(t, schema.IndexUnique, findIndexOn(t, indexes, "reference").Kind)
	assert.Equal(t, schema.IndexPlain, findIndexOn(t, indexes, "status", "created_at").Kind)

	enums, err := inspector.EnumColumns(ctx, database, "mg_orders")
	require.NoError(t, err)
	require.Len(t, enums, 1)
	assert.Equal(t, "status", enums[0].Name)
	assert.Equal(t, "enum('pending','paid','refunded')", enums[0].Definition)
}
