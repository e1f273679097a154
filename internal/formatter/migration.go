package formatter

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const migrationHeader = `<?php

use Illuminate\Database\Migrations\Migration;
use Illuminate\Database\Schema\Blueprint;
use Illuminate\Support\Facades\Schema;
`

// MigrationFormatter writes PHP migration classes
type MigrationFormatter struct {
	writer io.Writer
}

// NewMigrationFormatter creates a new PHP migration formatter
func NewMigrationFormatter(w io.Writer) *MigrationFormatter {
	return &MigrationFormatter{writer: w}
}

// Format writes one migration class per table
func (f *MigrationFormatter) Format(migrations []Migration) error {
	for i, m := range migrations {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer)
		}
		if err := f.FormatMigration(m); err != nil {
			return err
		}
	}
	return nil
}

// FormatMigration writes the migration class of a single table
func (f *MigrationFormatter) FormatMigration(m Migration) error {
	var b strings.Builder

	b.WriteString(migrationHeader)
	b.WriteString("\n")
	fmt.Fprintf(&b, "class %s extends Migration\n", ClassName(m.Table))
	b.WriteString("{\n")
	b.WriteString("    /**\n")
	b.WriteString("     * Run the migrations.\n")
	b.WriteString("     *\n")
	b.WriteString("     * @return void\n")
	b.WriteString("     */\n")
	b.WriteString("    public function up()\n")
	b.WriteString("    {\n")
	fmt.Fprintf(&b, "        Schema::create(%s, function (Blueprint $table) {\n", quote(m.Table))
	for _, e := range m.Entries {
		fmt.Fprintf(&b, "            %s\n", FieldCall(e.Field))
	}
	b.WriteString("        });\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")

	if _, err := io.WriteString(f.writer, b.String()); err != nil {
		return fmt.Errorf("failed to write migration for %s: %w", m.Table, err)
	}
	return nil
}

// ClassName returns the migration class name for a table,
// e.g. order_items becomes CreateOrderItemsTable
func ClassName(table string) string {
	caser := cases.Title(language.English)

	words := strings.FieldsFunc(table, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || r == ' '
	})

	var b strings.Builder
	b.WriteString("Create")
	for _, w := range words {
		b.WriteString(caser.String(w))
	}
	b.WriteString("Table")
	return b.String()
}
