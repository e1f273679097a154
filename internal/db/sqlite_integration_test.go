//go:build integration
// +build integration

package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/migrationgen/internal/schema"
)

const sqliteFixture = `
CREATE TABLE posts (
	id INTEGER PRIMARY KEY,
	title VARCHAR(100) NOT NULL,
	slug VARCHAR(255) NOT NULL UNIQUE,
	body TEXT,
	price DECIMAL(10, 2) DEFAULT 0,
	status VARCHAR(20) DEFAULT 'draft',
	published_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX posts_status_published_at_index ON posts (status, published_at);
CREATE TABLE tags (
	post_id INTEGER NOT NULL,
	name CHAR(10) NOT NULL,
	PRIMARY KEY (post_id, name)
);
`

func newSQLiteFixture(t *testing.T) *SQLiteInspector {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.db")
	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = raw.Exec(sqliteFixture)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	client, err := NewSQLiteClient(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewSQLiteInspector(client)
}

func TestSQLiteInspector(t *testing.T) {
	ctx := context.Background()
	inspector := newSQLiteFixture(t)

	tables, err := inspector.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"posts", "tags"}, tables)

	columns, err := inspector.ListColumns(ctx, "posts")
	require.NoError(t, err)
	require.Len(t, columns, 7)

	id := findColumn(t, columns, "id")
	assert.Equal(t, "integer", id.Type)
	assert.True(t, id.Autoincrement)
	assert.False(t, id.Nullable)

	title := findColumn(t, columns, "title")
	assert.Equal(t, "string", title.Type)
	require.NotNil(t, title.Length)
	assert.Equal(t, 100, *title.Length)

	price := findColumn(t, columns, "price")
	require.NotNil(t, price.Precision)
	assert.Equal(t, 10, *price.Precision)
	assert.Equal(t, 2, price.Scale)

	status := findColumn(t, columns, "status")
	assert.Equal(t, schema.StringPtr("draft"), status.Default)
	assert.True(t, status.Nullable)

	published := findColumn(t, columns, "published_at")
	assert.Equal(t, schema.StringPtr(schema.CurrentTimestamp), published.Default)

	indexes, err := inspector.ListIndexes(ctx, "posts")
	require.NoError(t, err)

	pk := findIndexOn(t, indexes, "id")
	assert.Equal(t, schema.IndexPrimary, pk.Kind)

	slug := findIndexOn(t, indexes, "slug")
	assert.Equal(t, schema.IndexUnique, slug.Kind)
	assert.Empty(t, slug.Name)

	composite := findIndexOn(t, indexes, "status", "published_at")
	assert.Equal(t, schema.IndexPlain, composite.Kind)
	assert.Equal(t, "posts_status_published_at_index", composite.Name)
}

func TestSQLiteInspectorCompositePrimaryKey(t *testing.T) {
	ctx := context.Background()
	inspector := newSQLiteFixture(t)

	columns, err := inspector.ListColumns(ctx, "tags")
	require.NoError(t, err)
	assert.False(t, findColumn(t, columns, "post_id").Autoincrement)
	assert.True(t, findColumn(t, columns, "name").Fixed)

	indexes, err := inspector.ListIndexes(ctx, "tags")
	require.NoError(t, err)
	pk := findIndexOn(t, indexes, "post_id", "name")
	assert.Equal(t, schema.IndexPrimary, pk.Kind)
}

func TestSQLiteInspectorEnumCatalog(t *testing.T) {
	inspector := newSQLiteFixture(t)

	_, err := inspector.EnumColumns(context.Background(), "main", "posts")
	assert.ErrorIs(t, err, ErrEnumCatalogUnavailable)
}

func TestSQLiteInspectorNullDefaults(t *testing.T) {
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "defaults.db")
	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = raw.Exec(`CREATE TABLE notes (label TEXT DEFAULT 'NULL', memo TEXT DEFAULT NULL)`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	client, err := NewSQLiteClient(ctx, path)
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	columns, err := NewSQLiteInspector(client).ListColumns(ctx, "notes")
	require.NoError(t, err)

	assert.Equal(t, schema.StringPtr("NULL"), findColumn(t, columns, "label").Default)
	assert.Nil(t, findColumn(t, columns, "memo").Default)
}
