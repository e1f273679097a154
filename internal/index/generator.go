// Package index classifies a table's indexes into single-column indexes,
// which become field decorators, and multi-column indexes, which are
// emitted as separate index statements.
package index

import (
	"context"
	"fmt"
	"strings"

	"github.com/tordrt/migrationgen/internal/schema"
)

// Source lists the indexes of a table
type Source interface {
	ListIndexes(ctx context.Context, table string) ([]schema.Index, error)
}

// Convention decides whether an index name is the one the migration
// builder would generate on its own.
type Convention interface {
	DefaultName(table string, kind schema.IndexKind, columns []string) string
}

// LaravelConvention names indexes table_col1_col2_kind, lowercased
type LaravelConvention struct{}

// DefaultName returns the conventional name for an index
func (LaravelConvention) DefaultName(table string, kind schema.IndexKind, columns []string) string {
	name := strings.ToLower(table + "_" + strings.Join(columns, "_") + "_" + string(kind))
	return strings.NewReplacer("-", "_", ".", "_").Replace(name)
}

// Generator builds index collections for tables
type Generator struct {
	convention Convention
}

// NewGenerator creates a generator. A nil convention means LaravelConvention.
func NewGenerator(convention Convention) *Generator {
	if convention == nil {
		convention = LaravelConvention{}
	}
	return &Generator{convention: convention}
}

// Generate reads the indexes of table and classifies them
func (g *Generator) Generate(ctx context.Context, table string, src Source, ignoreIndexNames bool) (*Collection, error) {
	indexes, err := src.ListIndexes(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexes: %w", err)
	}
	return g.Classify(table, indexes, ignoreIndexNames), nil
}

// Classify splits indexes into single-column and multi-column groups and
// clears names that need not be spelled out.
func (g *Generator) Classify(table string, indexes []schema.Index, ignoreIndexNames bool) *Collection {
	c := &Collection{single: make(map[string]schema.Index)}

	for _, idx := range indexes {
		if len(idx.Columns) == 0 {
			continue
		}

		out := schema.Index{
			Kind:    idx.Kind,
			Columns: append([]string(nil), idx.Columns...),
		}
		if !ignoreIndexNames && !g.isDefaultName(table, idx) {
			out.Name = idx.Name
		}

		if len(out.Columns) == 1 {
			c.single[out.Columns[0]] = out
		} else {
			c.multi = append(c.multi, out)
		}
	}

	return c
}

func (g *Generator) isDefaultName(table string, idx schema.Index) bool {
	// primary keys are always created under the default name
	if idx.Kind == schema.IndexPrimary {
		return true
	}
	return idx.Name == g.convention.DefaultName(table, idx.Kind, idx.Columns)
}

// Collection is the classified index set of one table
type Collection struct {
	single map[string]schema.Index
	multi  []schema.Index
}

// Index returns the single-column index owning column, if any
func (c *Collection) Index(column string) (schema.Index, bool) {
	idx, ok := c.single[column]
	return idx, ok
}

// MultiFieldIndexes returns the indexes spanning two or more columns in
// the order they were reported
func (c *Collection) MultiFieldIndexes() []schema.Index {
	return c.multi
}
