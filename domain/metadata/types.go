package metadata

import (
	"strconv"
	"strings"
	"time"
)

// AttributeType is the ARFF attribute kind reconstructed for a column
type AttributeType string

const (
	TypeNominal AttributeType = "nominal"
	TypeNumeric AttributeType = "numeric"
	TypeDate    AttributeType = "date"
)

type scalarKind uint8

const (
	scalarUndefined scalarKind = iota
	scalarFloat
	scalarTime
)

// Scalar is a single statistic. The zero value is undefined.
type Scalar struct {
	kind scalarKind
	num  float64
	at   time.Time
}

// Undefined is the statistic of a property that does not apply or could not be computed
var Undefined = Scalar{}

// Float wraps a numeric statistic
func Float(v float64) Scalar {
	return Scalar{kind: scalarFloat, num: v}
}

// Time wraps a chronological statistic
func Time(t time.Time) Scalar {
	return Scalar{kind: scalarTime, at: t}
}

// Defined reports whether the statistic holds a value
func (s Scalar) Defined() bool {
	return s.kind != scalarUndefined
}

// Float64 returns the numeric value if the statistic is numeric
func (s Scalar) Float64() (float64, bool) {
	return s.num, s.kind == scalarFloat
}

// Time returns the instant if the statistic is chronological
func (s Scalar) Time() (time.Time, bool) {
	return s.at, s.kind == scalarTime
}

// Value returns float64, time.Time or nil
func (s Scalar) Value() any {
	switch s.kind {
	case scalarFloat:
		return s.num
	case scalarTime:
		return s.at
	default:
		return nil
	}
}

// String renders the statistic; undefined renders as ""
func (s Scalar) String() string {
	switch s.kind {
	case scalarFloat:
		return strconv.FormatFloat(s.num, 'g', -1, 64)
	case scalarTime:
		return s.at.Format(time.RFC3339Nano)
	default:
		return ""
	}
}

// Entry is the metadata of one attribute
type Entry struct {
	DType string
	Type  AttributeType

	// Values holds the distinct nominal values in first-occurrence order.
	Values []string
	// Distinct is the number of distinct values of a numeric or date attribute.
	Distinct int

	Min  Scalar
	Max  Scalar
	Mean Scalar
	Std  Scalar
}

// Cardinality returns the number of distinct values for any attribute kind
func (e Entry) Cardinality() int {
	if e.Type == TypeNominal {
		return len(e.Values)
	}
	return e.Distinct
}

// ValuesCell returns the "values" property: the value list for nominal
// attributes, the distinct count otherwise
func (e Entry) ValuesCell() any {
	if e.Type == TypeNominal {
		return e.Values
	}
	return e.Distinct
}

// Collection is the raw metadata of a table
type Collection struct {
	AttributeOrder []string
	InstanceCount  int
	Columns        map[string]Entry
}

// Entry returns the metadata of the named attribute
func (c *Collection) Entry(name string) (Entry, bool) {
	e, ok := c.Columns[name]
	return e, ok
}

// Table column names, in output order
const (
	ColDType  = "dtype"
	ColType   = "type"
	ColValues = "values"
	ColMin    = "min"
	ColMax    = "max"
	ColMean   = "mean"
	ColStd    = "std"
)

// Columns lists the metadata table columns in order
var Columns = []string{ColDType, ColType, ColValues, ColMin, ColMax, ColMean, ColStd}

// Row is one attribute of a metadata table
type Row struct {
	Attribute string
	Entry
}

// Table is the metadata flattened to one row per attribute, in attribute order
type Table struct {
	Rows []Row
}

// Len returns the number of attribute rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the attribute names labelling each row
func (t *Table) Index() []string {
	idx := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		idx[i] = r.Attribute
	}
	return idx
}

// Row returns the row of the named attribute
func (t *Table) Row(attribute string) (Row, bool) {
	for _, r := range t.Rows {
		if r.Attribute == attribute {
			return r, true
		}
	}
	return Row{}, false
}

// Cell returns a single property of an attribute. Undefined statistics are
// returned as nil with ok true; ok is false for unknown rows or columns.
func (t *Table) Cell(attribute, column string) (any, bool) {
	r, ok := t.Row(attribute)
	if !ok {
		return nil, false
	}
	return r.Cell(column)
}

// Cell returns a single property of the row
func (r Row) Cell(column string) (any, bool) {
	switch column {
	case ColDType:
		return r.DType, true
	case ColType:
		return string(r.Type), true
	case ColValues:
		return r.ValuesCell(), true
	case ColMin:
		return r.Min.Value(), true
	case ColMax:
		return r.Max.Value(), true
	case ColMean:
		return r.Mean.Value(), true
	case ColStd:
		return r.Std.Value(), true
	default:
		return nil, false
	}
}

// Strings renders the row's cells in Columns order
func (r Row) Strings() []string {
	values := strconv.Itoa(r.Distinct)
	if r.Type == TypeNominal {
		values = "[" + strings.Join(r.Values, ", ") + "]"
	}
	return []string{
		r.DType,
		string(r.Type),
		values,
		r.Min.String(),
		r.Max.String(),
		r.Mean.String(),
		r.Std.String(),
	}
}

// Records returns a header row followed by one row per attribute,
// with the attribute name as the first cell
func (t *Table) Records() [][]string {
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, append([]string{"attribute"}, Columns...))
	for _, r := range t.Rows {
		records = append(records, append([]string{r.Attribute}, r.Strings()...))
	}
	return records
}
