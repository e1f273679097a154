// Package formatter renders generated field specs as migration source.
package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/migrationgen/internal/generator"
)

// Output formats
const (
	FormatPHP      = "php"
	FormatText     = "text"
	FormatMarkdown = "markdown"
)

// Migration holds the generated fields of one table
type Migration struct {
	Table   string
	Entries []generator.Entry
}

// Formatter writes a set of migrations
type Formatter interface {
	Format(migrations []Migration) error
}

// New returns the single-stream formatter for format
func New(format string, w io.Writer) (Formatter, error) {
	switch format {
	case FormatPHP, "":
		return NewMigrationFormatter(w), nil
	case FormatText:
		return NewTextFormatter(w), nil
	case FormatMarkdown:
		return NewMarkdownFormatter(w), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// FieldCall renders a field spec as a schema builder statement, e.g.
// $table->string('email', 100)->nullable()->unique();
func FieldCall(f generator.FieldSpec) string {
	var b strings.Builder
	b.WriteString("$table->")
	b.WriteString(f.Type)
	b.WriteString("(")
	b.WriteString(fieldArgs(f))
	b.WriteString(")")
	for _, d := range f.Decorators {
		b.WriteString("->")
		b.WriteString(decoratorCall(d))
	}
	b.WriteString(";")
	return b.String()
}

// fieldArgs joins the leading name or column list with the spec's own args
func fieldArgs(f generator.FieldSpec) string {
	var args []string
	switch {
	case f.IsIndex():
		args = append(args, columnList(f.Columns))
	case f.Name != "":
		args = append(args, quote(f.Name))
	}
	if f.Args != "" {
		args = append(args, f.Args)
	}
	return strings.Join(args, ", ")
}

func columnList(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quote(c)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// decoratorCall appends () to bare decorators such as nullable
func decoratorCall(d string) string {
	if strings.Contains(d, "(") {
		return d
	}
	return d + "()"
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func quote(s string) string {
	return "'" + quoteEscaper.Replace(s) + "'"
}
