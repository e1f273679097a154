//go:build integration
// +build integration

package db

import (
	"os"
	"testing"

	"github.com/tordrt/migrationgen/internal/schema"
)

// envOr returns the environment variable key, or fallback when unset
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// findColumn returns the named column or fails the test
func findColumn(t *testing.T, columns []schema.Column, name string) schema.Column {
	t.Helper()

	for _, col := range columns {
		if col.Name == name {
			return col
		}
	}
	t.Fatalf("Expected column %s not found", name)
	return schema.Column{}
}

// findIndexOn returns the first index covering exactly the given columns
func findIndexOn(t *testing.T, indexes []schema.Index, columns ...string) schema.Index {
	t.Helper()

	for _, idx := range indexes {
		if len(idx.Columns) != len(columns) {
			continue
		}
		match := true
		for i := range columns {
			if idx.Columns[i] != columns[i] {
				match = false
				break
			}
		}
		if match {
			return idx
		}
	}
	t.Fatalf("Expected index on %v not found in %v", columns, indexes)
	return schema.Index{}
}
