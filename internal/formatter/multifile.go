package formatter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const migrationTimestampLayout = "2006_01_02_150405"

// MultiFileFormatter writes one migration file per table into a directory
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "php", "text" or "markdown"

	// Now returns the timestamp of the first file. Later files are one
	// second apart so they sort in table order.
	Now func() time.Time
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
		Now:          time.Now,
	}
}

// Format writes every migration to its own file
func (f *MultiFileFormatter) Format(migrations []Migration) error {
	if _, err := New(f.OutputFormat, io.Discard); err != nil {
		return err
	}
	for _, m := range migrations {
		if strings.ContainsAny(m.Table, `/\`) || m.Table == "" {
			return fmt.Errorf("invalid table name for migration file: %q", m.Table)
		}
	}

	// Create output directory if it doesn't exist
	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	start := f.Now()
	for i, m := range migrations {
		name := f.FileName(m.Table, start.Add(time.Duration(i)*time.Second))
		if err := f.writeFile(filepath.Join(f.OutputDir, name), m); err != nil {
			return fmt.Errorf("failed to write migration file for %s: %w", m.Table, err)
		}
	}

	return nil
}

// FileName returns the file name of a table's migration, e.g.
// 2024_01_02_030405_create_users_table.php
func (f *MultiFileFormatter) FileName(table string, at time.Time) string {
	return fmt.Sprintf("%s_create_%s_table%s", at.Format(migrationTimestampLayout), table, f.getFileExtension())
}

func (f *MultiFileFormatter) writeFile(path string, m Migration) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	// one table per file, so markdown skips the document heading
	if f.OutputFormat == FormatMarkdown {
		NewMarkdownFormatter(file).FormatTable(m)
		return file.Close()
	}

	w, err := New(f.OutputFormat, file)
	if err != nil {
		return err
	}
	if err := w.Format([]Migration{m}); err != nil {
		return err
	}
	return file.Close()
}

func (f *MultiFileFormatter) getFileExtension() string {
	switch f.OutputFormat {
	case FormatText:
		return ".txt"
	case FormatMarkdown:
		return ".md"
	default:
		return ".php"
	}
}
