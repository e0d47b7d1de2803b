package loader

import (
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"arffmeta/adapters/arff"
	"arffmeta/domain/dataset"
	"arffmeta/internal"
	"arffmeta/internal/errors"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Config controls how ARFF cells become table columns
type Config struct {
	// DecodeText turns raw nominal byte sequences into UTF-8 strings.
	DecodeText bool
}

// DefaultConfig decodes text, matching Load's default
func DefaultConfig() Config {
	return Config{DecodeText: true}
}

// Loader reads ARFF sources into tables
type Loader struct {
	config Config
	logger *internal.Logger
	mem    memory.Allocator
}

// NewLoader creates a loader; a nil logger falls back to the default logger
func NewLoader(config Config, logger *internal.Logger) *Loader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Loader{config: config, logger: logger, mem: memory.NewGoAllocator()}
}

// Load reads the ARFF file at path. Nominal cells are decoded to UTF-8 text
// when decodeText is set and kept as raw bytes otherwise.
func Load(path string, decodeText bool) (*dataset.Table, error) {
	return NewLoader(Config{DecodeText: decodeText}, nil).Load(path)
}

// Load reads the ARFF file at path
func (l *Loader) Load(path string) (*dataset.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.LoadError(path, err)
	}
	defer f.Close()
	return l.LoadReader(path, f)
}

// LoadReader reads an ARFF document from r; name identifies the source in errors
func (l *Loader) LoadReader(name string, r io.Reader) (*dataset.Table, error) {
	start := time.Now()
	data, err := arff.Parse(r)
	if err != nil {
		return nil, errors.LoadError(name, err)
	}
	l.logger.Debug("[Loader] parsed %s: relation=%q attributes=%d rows=%d in %.2fms",
		name, data.Relation, len(data.Attributes), len(data.Rows), float64(time.Since(start).Nanoseconds())/1e6)

	fields, columns, err := l.buildColumns(data)
	if err != nil {
		return nil, errors.LoadError(name, err)
	}
	defer releaseAll(columns)

	if l.config.DecodeText {
		if err := l.decodeText(fields, columns); err != nil {
			return nil, err
		}
	}

	table, err := dataset.NewTable(fields, columns)
	if err != nil {
		return nil, errors.LoadError(name, err)
	}
	return table, nil
}

func (l *Loader) buildColumns(data *arff.Data) ([]arrow.Field, []arrow.Array, error) {
	fields := make([]arrow.Field, len(data.Attributes))
	columns := make([]arrow.Array, 0, len(data.Attributes))

	for i, attr := range data.Attributes {
		var (
			arr arrow.Array
			err error
		)
		switch attr.Type {
		case arff.AttributeNumeric:
			arr = l.numericColumn(data.Rows, i)
		case arff.AttributeNominal:
			arr = l.nominalColumn(data.Rows, i)
		case arff.AttributeDate:
			arr, err = l.dateColumn(data.Rows, i, attr.Name)
		default:
			err = fmt.Errorf("attribute %q has unknown type %s", attr.Name, attr.Type)
		}
		if err != nil {
			releaseAll(columns)
			return nil, nil, err
		}
		fields[i] = arrow.Field{Name: attr.Name, Type: arr.DataType(), Nullable: true}
		columns = append(columns, arr)
	}
	return fields, columns, nil
}

func (l *Loader) numericColumn(rows [][]any, col int) arrow.Array {
	b := array.NewFloat64Builder(l.mem)
	defer b.Release()
	b.Reserve(len(rows))
	for _, row := range rows {
		if v, ok := row[col].(float64); ok {
			b.Append(v)
		} else {
			b.AppendNull()
		}
	}
	return b.NewArray()
}

func (l *Loader) nominalColumn(rows [][]any, col int) arrow.Array {
	b := array.NewBinaryBuilder(l.mem, arrow.BinaryTypes.Binary)
	defer b.Release()
	b.Reserve(len(rows))
	for _, row := range rows {
		if v, ok := row[col].([]byte); ok {
			b.Append(v)
		} else {
			b.AppendNull()
		}
	}
	return b.NewArray()
}

// Nanosecond timestamps cover roughly 1677-09-21 to 2262-04-11.
var (
	minTimestamp = time.Unix(0, -1<<63).UTC()
	maxTimestamp = time.Unix(0, 1<<63-1).UTC()
)

func (l *Loader) dateColumn(rows [][]any, col int, name string) (arrow.Array, error) {
	b := array.NewTimestampBuilder(l.mem, &arrow.TimestampType{Unit: arrow.Nanosecond})
	defer b.Release()
	b.Reserve(len(rows))
	for r, row := range rows {
		ts, ok := row[col].(time.Time)
		if !ok {
			b.AppendNull()
			continue
		}
		if ts.Before(minTimestamp) || ts.After(maxTimestamp) {
			return nil, fmt.Errorf("attribute %q row %d: date %s out of nanosecond timestamp range", name, r, ts.Format(time.RFC3339))
		}
		b.Append(arrow.Timestamp(ts.UnixNano()))
	}
	return b.NewArray(), nil
}

// decodeText replaces every binary column with its UTF-8 decoding
func (l *Loader) decodeText(fields []arrow.Field, columns []arrow.Array) error {
	for i, arr := range columns {
		bin, ok := arr.(*array.Binary)
		if !ok {
			continue
		}

		b := array.NewStringBuilder(l.mem)
		b.Reserve(bin.Len())
		for row := 0; row < bin.Len(); row++ {
			if bin.IsNull(row) {
				b.AppendNull()
				continue
			}
			raw := bin.Value(row)
			if !utf8.Valid(raw) {
				b.Release()
				return errors.DecodeError(fields[i].Name, row)
			}
			b.Append(string(raw))
		}
		decoded := b.NewArray()
		b.Release()

		arr.Release()
		columns[i] = decoded
		fields[i].Type = decoded.DataType()
	}
	l.logger.Trace("[Loader] text columns decoded")
	return nil
}

func releaseAll(columns []arrow.Array) {
	for _, arr := range columns {
		arr.Release()
	}
}
