package dataset

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ValueKind is the value-type family of a column, fixed once per column
type ValueKind int

const (
	KindOther ValueKind = iota
	KindText
	KindNumeric
	KindDate
)

func (k ValueKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumeric:
		return "numeric"
	case KindDate:
		return "date"
	default:
		return "other"
	}
}

// KindOf classifies an Arrow data type. Dictionary-encoded text is
// categorical and counts as text.
func KindOf(dt arrow.DataType) ValueKind {
	switch dt.ID() {
	case arrow.STRING, arrow.LARGE_STRING, arrow.BINARY, arrow.LARGE_BINARY:
		return KindText
	case arrow.DICTIONARY:
		if KindOf(dt.(*arrow.DictionaryType).ValueType) == KindText {
			return KindText
		}
		return KindOther
	case arrow.FLOAT32, arrow.FLOAT64:
		return KindNumeric
	case arrow.TIMESTAMP, arrow.DATE32, arrow.DATE64:
		return KindDate
	default:
		return KindOther
	}
}

// Column is one named column of a Table
type Column struct {
	Field  arrow.Field
	Values arrow.Array
}

// Name returns the column name
func (c Column) Name() string {
	return c.Field.Name
}

// Kind returns the value-type family of the column
func (c Column) Kind() ValueKind {
	return KindOf(c.Field.Type)
}

// DType returns the Arrow type name, e.g. "float64", "utf8", "timestamp[ns]"
func (c Column) DType() string {
	return c.Field.Type.String()
}

// Table is an ordered set of uniquely named, equal length columns.
// Each column holds a single contiguous Arrow array.
type Table struct {
	schema  *arrow.Schema
	columns []arrow.Array
	rows    int
	index   map[string]int
}

// NewTable assembles a table from fields and their arrays. The table takes
// a reference on every array.
func NewTable(fields []arrow.Field, columns []arrow.Array) (*Table, error) {
	if len(fields) != len(columns) {
		return nil, fmt.Errorf("got %d fields for %d columns", len(fields), len(columns))
	}

	rows := 0
	index := make(map[string]int, len(fields))
	for i, field := range fields {
		if _, dup := index[field.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", field.Name)
		}
		index[field.Name] = i

		col := columns[i]
		if col == nil {
			return nil, fmt.Errorf("column %q has no data", field.Name)
		}
		if !arrow.TypeEqual(field.Type, col.DataType()) {
			return nil, fmt.Errorf("column %q declared %s but holds %s", field.Name, field.Type, col.DataType())
		}
		if i == 0 {
			rows = col.Len()
		} else if col.Len() != rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", field.Name, col.Len(), rows)
		}
	}

	for _, col := range columns {
		col.Retain()
	}

	return &Table{
		schema:  arrow.NewSchema(fields, nil),
		columns: append([]arrow.Array(nil), columns...),
		rows:    rows,
		index:   index,
	}, nil
}

// FromArrow flattens an Arrow table into a Table, concatenating chunks
func FromArrow(tbl arrow.Table) (*Table, error) {
	schema := tbl.Schema()
	fields := schema.Fields()
	columns := make([]arrow.Array, len(fields))
	mem := memory.NewGoAllocator()

	for i := range fields {
		chunks := tbl.Column(i).Data().Chunks()
		var (
			arr arrow.Array
			err error
		)
		switch len(chunks) {
		case 0:
			b := array.NewBuilder(mem, fields[i].Type)
			arr = b.NewArray()
			b.Release()
		case 1:
			arr = chunks[0]
			arr.Retain()
		default:
			arr, err = array.Concatenate(chunks, mem)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", fields[i].Name, err)
			}
		}
		columns[i] = arr
	}

	t, err := NewTable(fields, columns)
	for _, arr := range columns {
		arr.Release()
	}
	return t, err
}

// NumRows returns the number of instances
func (t *Table) NumRows() int {
	return t.rows
}

// NumCols returns the number of columns
func (t *Table) NumCols() int {
	return len(t.columns)
}

// Names returns the column names in order
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, f := range t.schema.Fields() {
		names[i] = f.Name
	}
	return names
}

// Schema returns the Arrow schema
func (t *Table) Schema() *arrow.Schema {
	return t.schema
}

// Column returns the i-th column
func (t *Table) Column(i int) Column {
	return Column{Field: t.schema.Field(i), Values: t.columns[i]}
}

// ColumnByName looks a column up by name
func (t *Table) ColumnByName(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.Column(i), true
}

// Arrow returns the table as a single-chunk Arrow table. The caller owns
// the result and must Release it.
func (t *Table) Arrow() arrow.Table {
	cols := make([]arrow.Column, len(t.columns))
	for i, arr := range t.columns {
		field := t.schema.Field(i)
		chunked := arrow.NewChunked(field.Type, []arrow.Array{arr})
		cols[i] = *arrow.NewColumn(field, chunked)
	}
	return array.NewTable(t.schema, cols, int64(t.rows))
}

// Release drops the table's references on its arrays
func (t *Table) Release() {
	for _, arr := range t.columns {
		arr.Release()
	}
}
