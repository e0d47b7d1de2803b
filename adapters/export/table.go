package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"arffmeta/domain/dataset"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// WriteTableParquet writes the loaded table as a snappy-compressed Parquet
// file with the Arrow schema embedded
func WriteTableParquet(w io.Writer, table *dataset.Table) error {
	tbl := table.Arrow()
	defer tbl.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(tbl.Schema(), w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}

	rows := tbl.NumRows()
	if rows == 0 {
		rows = 1
	}
	if err := writer.WriteTable(tbl, rows); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write table to parquet: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteTableCSV writes the loaded table as CSV with a header row.
// Missing values are empty cells.
func WriteTableCSV(w io.Writer, table *dataset.Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(table.Names()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	row := make([]string, table.NumCols())
	for r := 0; r < table.NumRows(); r++ {
		for c := range row {
			row[c] = formatValue(table.Column(c).Values, r)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", r, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

func formatValue(col arrow.Array, pos int) string {
	if col.IsNull(pos) {
		return ""
	}

	switch a := col.(type) {
	case *array.String:
		return a.Value(pos)
	case *array.LargeString:
		return a.Value(pos)
	case *array.Binary:
		return string(a.Value(pos))
	case *array.LargeBinary:
		return string(a.Value(pos))
	case *array.Float64:
		return strconv.FormatFloat(a.Value(pos), 'g', -1, 64)
	case *array.Float32:
		return strconv.FormatFloat(float64(a.Value(pos)), 'g', -1, 32)
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(pos).ToTime(unit).UTC().Format(time.RFC3339Nano)
	case *array.Date32:
		return a.Value(pos).ToTime().Format("2006-01-02")
	case *array.Date64:
		return a.Value(pos).ToTime().Format("2006-01-02")
	default:
		return col.ValueStr(pos)
	}
}
