package index

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/migrationgen/internal/schema"
)

type stubSource struct {
	indexes []schema.Index
	err     error
}

func (s stubSource) ListIndexes(ctx context.Context, table string) ([]schema.Index, error) {
	return s.indexes, s.err
}

type prefixConvention struct{}

func (prefixConvention) DefaultName(table string, kind schema.IndexKind, columns []string) string {
	return "ix_" + columns[0]
}

func TestLaravelConventionDefaultName(t *testing.T) {
	tests := []struct {
		table   string
		kind    schema.IndexKind
		columns []string
		want    string
	}{
		{"users", schema.IndexUnique, []string{"email"}, "users_email_unique"},
		{"Users", schema.IndexPlain, []string{"First", "Last"}, "users_first_last_index"},
		{"app.order-items", schema.IndexPlain, []string{"sku"}, "app_order_items_sku_index"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, LaravelConvention{}.DefaultName(tt.table, tt.kind, tt.columns))
		})
	}
}

func TestGenerateClassifies(t *testing.T) {
	src := stubSource{indexes: []schema.Index{
		{Name: "PRIMARY", Kind: schema.IndexPrimary, Columns: []string{"id"}},
		{Name: "users_email_unique", Kind: schema.IndexUnique, Columns: []string{"email"}},
		{Name: "by_login", Kind: schema.IndexPlain, Columns: []string{"login"}},
		{Name: "users_first_last_index", Kind: schema.IndexPlain, Columns: []string{"first", "last"}},
		{Name: "team_role", Kind: schema.IndexUnique, Columns: []string{"team_id", "role"}},
	}}

	c, err := NewGenerator(nil).Generate(context.Background(), "users", src, false)
	require.NoError(t, err)

	tests := []struct {
		column string
		want   schema.Index
		found  bool
	}{
		{column: "id", want: schema.Index{Kind: schema.IndexPrimary, Columns: []string{"id"}}, found: true},
		{column: "email", want: schema.Index{Kind: schema.IndexUnique, Columns: []string{"email"}}, found: true},
		{column: "login", want: schema.Index{Name: "by_login", Kind: schema.IndexPlain, Columns: []string{"login"}}, found: true},
		{column: "first", found: false},
		{column: "nope", found: false},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			got, ok := c.Index(tt.column)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}

	assert.Equal(t, []schema.Index{
		{Kind: schema.IndexPlain, Columns: []string{"first", "last"}},
		{Name: "team_role", Kind: schema.IndexUnique, Columns: []string{"team_id", "role"}},
	}, c.MultiFieldIndexes())
}

func TestGenerateIgnoreIndexNames(t *testing.T) {
	src := stubSource{indexes: []schema.Index{
		{Name: "by_login", Kind: schema.IndexPlain, Columns: []string{"login"}},
		{Name: "team_role", Kind: schema.IndexUnique, Columns: []string{"team_id", "role"}},
	}}

	c, err := NewGenerator(nil).Generate(context.Background(), "users", src, true)
	require.NoError(t, err)

	idx, ok := c.Index("login")
	require.True(t, ok)
	assert.Empty(t, idx.Name)
	require.Len(t, c.MultiFieldIndexes(), 1)
	assert.Empty(t, c.MultiFieldIndexes()[0].Name)
}

func TestGenerateCustomConvention(t *testing.T) {
	src := stubSource{indexes: []schema.Index{
		{Name: "ix_email", Kind: schema.IndexUnique, Columns: []string{"email"}},
		{Name: "users_login_index", Kind: schema.IndexPlain, Columns: []string{"login"}},
	}}

	c, err := NewGenerator(prefixConvention{}).Generate(context.Background(), "users", src, false)
	require.NoError(t, err)

	email, _ := c.Index("email")
	assert.Empty(t, email.Name)
	login, _ := c.Index("login")
	assert.Equal(t, "users_login_index", login.Name)
}

func TestGenerateSourceError(t *testing.T) {
	boom := errors.New("statistics unavailable")

	_, err := NewGenerator(nil).Generate(context.Background(), "users", stubSource{err: boom}, false)

	assert.ErrorIs(t, err, boom)
}

func TestClassifyLastSingleColumnIndexWins(t *testing.T) {
	c := NewGenerator(nil).Classify("users", []schema.Index{
		{Name: "users_email_index", Kind: schema.IndexPlain, Columns: []string{"email"}},
		{Name: "users_email_unique", Kind: schema.IndexUnique, Columns: []string{"email"}},
		{Name: "empty", Kind: schema.IndexPlain},
	}, false)

	idx, ok := c.Index("email")
	require.True(t, ok)
	assert.Equal(t, schema.IndexUnique, idx.Kind)
	assert.Empty(t, c.MultiFieldIndexes())
}
