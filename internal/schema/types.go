package schema

// CurrentTimestamp is the normalized spelling of a "current timestamp"
// column default. Inspectors translate driver specific spellings to it.
const CurrentTimestamp = "CURRENT_TIMESTAMP"

// Column represents a table column as reported by a database driver.
//
// Type is the normalized native type name (integer, bigint, string, text,
// datetime, decimal, ...). Length and Precision are nil when the driver
// does not report them.
type Column struct {
	Name          string
	Type          string
	Length        *int
	Precision     *int
	Scale         int
	Nullable      bool
	Unsigned      bool
	Autoincrement bool
	Default       *string
	Fixed         bool
	Comment       *string
}

// IndexKind is the kind of an index
type IndexKind string

const (
	IndexPrimary IndexKind = "primary"
	IndexUnique  IndexKind = "unique"
	IndexPlain   IndexKind = "index"
)

// Index represents a database index. Name is empty when the index should
// use the conventional default name.
type Index struct {
	Name    string
	Kind    IndexKind
	Columns []string
}

// EnumColumn is a column whose catalog type is an enumeration. Definition
// holds the raw literal, e.g. enum('a','b').
type EnumColumn struct {
	Name       string
	Definition string
}

// IntPtr returns a pointer to n
func IntPtr(n int) *int {
	return &n
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}
