package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/migrationgen/internal/generator"
)

// TextFormatter formats field specs as a compact listing
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the field specs of every table
func (f *TextFormatter) Format(migrations []Migration) error {
	for i, m := range migrations {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between tables
		}
		f.formatTable(m)
	}
	return nil
}

func (f *TextFormatter) formatTable(m Migration) {
	_, _ = fmt.Fprintf(f.writer, "TABLE %s\n", m.Table)

	for _, e := range m.Entries {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", f.formatField(e.Field))
	}
}

func (f *TextFormatter) formatField(field generator.FieldSpec) string {
	var parts []string

	switch {
	case field.IsIndex():
		parts = append(parts, fmt.Sprintf("%s [%s]", field.Type, strings.Join(field.Columns, ", ")))
	case field.Name != "":
		parts = append(parts, field.Name+":", field.Type)
	default:
		parts = append(parts, field.Type)
	}

	if field.Args != "" {
		parts = append(parts, "("+field.Args+")")
	}
	parts = append(parts, field.Decorators...)

	return strings.Join(parts, " ")
}
