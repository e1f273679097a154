package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/migrationgen/internal/generator"
)

// MarkdownFormatter formats field specs as markdown tables
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes every table under one document heading
func (f *MarkdownFormatter) Format(migrations []Migration) error {
	_, _ = fmt.Fprintln(f.writer, "# Migrations")
	_, _ = fmt.Fprintln(f.writer)

	for _, m := range migrations {
		f.FormatTable(m)
	}
	return nil
}

// FormatTable writes one table section without the document heading
func (f *MarkdownFormatter) FormatTable(m Migration) {
	_, _ = fmt.Fprintf(f.writer, "## %s\n\n", m.Table)

	var fields, indexes []generator.FieldSpec
	for _, e := range m.Entries {
		if e.Field.IsIndex() {
			indexes = append(indexes, e.Field)
		} else {
			fields = append(fields, e.Field)
		}
	}

	if len(fields) > 0 {
		_, _ = fmt.Fprintln(f.writer, "| Field | Type | Arguments | Modifiers |")
		_, _ = fmt.Fprintln(f.writer, "|---|---|---|---|")
		for _, field := range fields {
			_, _ = fmt.Fprintf(f.writer, "| %s | %s | %s | %s |\n",
				cell(field.Name),
				field.Type,
				cell(field.Args),
				cell(strings.Join(field.Decorators, ", ")))
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	if len(indexes) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Indexes")
		_, _ = fmt.Fprintln(f.writer)
		for _, idx := range indexes {
			name := ""
			if idx.Args != "" {
				name = " " + idx.Args
			}
			_, _ = fmt.Fprintf(f.writer, "- %s (%s)%s\n", idx.Type, strings.Join(idx.Columns, ", "), name)
		}
		_, _ = fmt.Fprintln(f.writer)
	}
}

// cell escapes pipes and marks empty values
func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}
