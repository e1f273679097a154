// Package generator turns introspected columns and indexes into field
// specifications for migration code: a type tag, optional construction
// arguments and an ordered list of decorator calls.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/tordrt/migrationgen/internal/index"
	"github.com/tordrt/migrationgen/internal/schema"
)

// ErrMissingPrecision is returned when a precision based column (decimal,
// float, double) comes without a precision.
var ErrMissingPrecision = errors.New("precision not reported")

// ColumnError reports a column whose metadata cannot be turned into a field
type ColumnError struct {
	Table  string
	Column string
	Err    error
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("column %s.%s: %v", e.Table, e.Column, e.Err)
}

func (e *ColumnError) Unwrap() error {
	return e.Err
}

// Inspector reads the column and index metadata of a table
type Inspector interface {
	ListColumns(ctx context.Context, table string) ([]schema.Column, error)
	index.Source
}

// EnumCatalog lists the enum columns of a table. Implementations return an
// error when the catalog cannot be reached; the generator then keeps the
// inferred types.
type EnumCatalog interface {
	EnumColumns(ctx context.Context, database, table string) ([]schema.EnumColumn, error)
}

// IndexClassifier classifies the indexes of a table
type IndexClassifier interface {
	Generate(ctx context.Context, table string, src index.Source, ignoreIndexNames bool) (*index.Collection, error)
}

// FieldSpec is the language neutral description of one migration field.
// Index specs set Columns instead of Name.
type FieldSpec struct {
	Name       string
	Columns    []string
	Type       string
	Decorators []string
	Args       string
}

// IsIndex reports whether the spec describes a multi-column index
func (f FieldSpec) IsIndex() bool {
	return len(f.Columns) > 0
}

// Entry is a keyed field spec. Index entries have an empty key.
type Entry struct {
	Key   string
	Field FieldSpec
}

// fieldTypeMap converts driver type names to migration builder types
var fieldTypeMap = map[string]string{
	"tinyint":  "tinyInteger",
	"smallint": "smallInteger",
	"bigint":   "bigInteger",
	"datetime": "dateTime",
	"blob":     "binary",
}

var integerTypes = map[string]bool{
	"tinyInteger":  true,
	"smallInteger": true,
	"integer":      true,
	"bigInteger":   true,
}

var precisionTypes = map[string]bool{
	"decimal": true,
	"float":   true,
	"double":  true,
}

const (
	defaultLength    = 255
	defaultPrecision = 8
	defaultScale     = 2
)

var numericPattern = regexp.MustCompile(`^\s*[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?\s*$`)

var commentEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// FieldGenerator builds field specs for tables. It holds no per-call
// state and may be shared between goroutines.
type FieldGenerator struct {
	indexes IndexClassifier
	enums   EnumCatalog
	logger  *slog.Logger
}

// New creates a FieldGenerator. enums may be nil to skip the enum overlay.
func New(indexes IndexClassifier, enums EnumCatalog, logger *slog.Logger) *FieldGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FieldGenerator{
		indexes: indexes,
		enums:   enums,
		logger:  logger,
	}
}

// Generate returns the field specs of table in column order, followed by
// its multi-column index specs. A table without columns yields no entries.
func (g *FieldGenerator) Generate(ctx context.Context, table string, inspector Inspector, database string, ignoreIndexNames bool) ([]Entry, error) {
	columns, err := inspector.ListColumns(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns: %w", err)
	}
	if len(columns) == 0 {
		return nil, nil
	}

	indexes, err := g.indexes.Generate(ctx, table, inspector, ignoreIndexNames)
	if err != nil {
		return nil, fmt.Errorf("failed to classify indexes: %w", err)
	}

	fields, err := g.fields(table, columns, indexes)
	if err != nil {
		return nil, err
	}
	g.applyEnums(ctx, fields, database, table)

	return append(fields.Entries(), multiFieldIndexes(indexes)...), nil
}

func (g *FieldGenerator) fields(table string, columns []schema.Column, indexes *index.Collection) (*fieldMap, error) {
	fields := newFieldMap()

	for _, col := range columns {
		name := col.Name
		typ := col.Type
		if mapped, ok := fieldTypeMap[typ]; ok {
			typ = mapped
		}
		idx, hasIndex := indexes.Index(name)

		var decorators []string
		var args string

		switch {
		case integerTypes[typ]:
			if typ == "integer" && col.Unsigned && col.Autoincrement {
				typ = "increments"
				hasIndex = false
			} else {
				if col.Unsigned {
					decorators = append(decorators, "unsigned")
				}
				if col.Autoincrement {
					args = "true"
					hasIndex = false
				}
			}
		case typ == "dateTime":
			switch {
			case name == "deleted_at" && col.Nullable:
				fields.Set("", FieldSpec{Type: "softDeletes"})
				continue
			// the pair collapses into the slot of the first column and is
			// keyed by the second
			case name == "created_at" && fields.Has("updated_at"):
				fields.Replace("updated_at", name, FieldSpec{Type: "timestamps"})
				continue
			case name == "updated_at" && fields.Has("created_at"):
				fields.Replace("created_at", name, FieldSpec{Type: "timestamps"})
				continue
			}
		case precisionTypes[typ]:
			if col.Precision == nil {
				return nil, &ColumnError{Table: table, Column: name, Err: ErrMissingPrecision}
			}
			args = precisionArgs(*col.Precision, col.Scale)
			if col.Unsigned {
				decorators = append(decorators, "unsigned")
			}
		default:
			if typ == "string" && col.Fixed {
				typ = "char"
			}
			args = lengthArgs(col.Length)
		}

		if col.Nullable {
			decorators = append(decorators, "nullable")
		}
		if col.Default != nil {
			var dec string
			dec, typ = defaultDecorator(defaultValue(col), typ)
			decorators = append(decorators, dec)
		}
		if hasIndex {
			decorators = append(decorators, decorate(string(idx.Kind), idx.Name))
		}
		if col.Comment != nil {
			decorators = append(decorators, "comment('"+commentEscaper.Replace(*col.Comment)+"')")
		}

		fields.Set(name, FieldSpec{
			Name:       name,
			Type:       typ,
			Decorators: decorators,
			Args:       args,
		})
	}

	return fields, nil
}

// applyEnums overwrites the type of every column the enum catalog reports
func (g *FieldGenerator) applyEnums(ctx context.Context, fields *fieldMap, database, table string) {
	if g.enums == nil {
		return
	}

	enums, err := g.enums.EnumColumns(ctx, database, table)
	if err != nil {
		g.logger.Debug("enum catalog unavailable, keeping inferred types",
			slog.String("table", table),
			slog.Any("error", err))
		return
	}

	for _, e := range enums {
		f, ok := fields.Get(e.Name)
		if !ok {
			continue
		}
		f.Type = "enum"
		f.Args = strings.ReplaceAll(e.Definition, "enum(", "array(")
		fields.Set(e.Name, f)
	}
}

func multiFieldIndexes(indexes *index.Collection) []Entry {
	var entries []Entry
	for _, idx := range indexes.MultiFieldIndexes() {
		f := FieldSpec{
			Columns: append([]string(nil), idx.Columns...),
			Type:    string(idx.Kind),
		}
		if idx.Name != "" {
			f.Args = quote(idx.Name)
		}
		entries = append(entries, Entry{Field: f})
	}
	return entries
}

func lengthArgs(length *int) string {
	if length == nil || *length == 0 || *length == defaultLength {
		return ""
	}
	return strconv.Itoa(*length)
}

func precisionArgs(precision, scale int) string {
	if precision == defaultPrecision && scale == defaultScale {
		return ""
	}
	args := strconv.Itoa(precision)
	if scale != defaultScale {
		args += ", " + strconv.Itoa(scale)
	}
	return args
}

// defaultValue returns the raw default with boolean literals turned into 1/0
func defaultValue(col schema.Column) string {
	v := *col.Default
	if col.Type == "boolean" {
		switch strings.ToLower(v) {
		case "true":
			return "1"
		case "false":
			return "0"
		}
	}
	return v
}

// defaultDecorator renders the default(...) decorator and returns the
// possibly revised field type alongside it.
func defaultDecorator(value, typ string) (string, string) {
	switch {
	case value == schema.CurrentTimestamp:
		if typ == "dateTime" {
			typ = "timestamp"
		}
		value = decorate("DB::raw", value)
	case typ == "string" || typ == "text" || !isNumeric(value):
		value = quote(value)
	}
	return "default(" + value + ")", typ
}

func isNumeric(s string) bool {
	return numericPattern.MatchString(s)
}

// decorate renders fn('arg'), or the bare fn when arg is empty
func decorate(fn, arg string) string {
	if arg == "" {
		return fn
	}
	return fn + "(" + quote(arg) + ")"
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}
