package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	domainMetadata "arffmeta/domain/metadata"

	"github.com/xuri/excelize/v2"
)

// Format is a metadata output format
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatXLSX  Format = "xlsx"
)

// Valid reports whether f names a supported metadata format
func (f Format) Valid() bool {
	switch f {
	case FormatTable, FormatCSV, FormatJSON, FormatXLSX:
		return true
	}
	return false
}

// MetadataSheet is the worksheet holding the metadata table in XLSX output
const MetadataSheet = "metadata"

// WriteMetadata renders the metadata table in the given format
func WriteMetadata(w io.Writer, format Format, meta *domainMetadata.Table) error {
	switch format {
	case FormatTable:
		return WriteMetadataText(w, meta)
	case FormatCSV:
		return WriteMetadataCSV(w, meta)
	case FormatJSON:
		return WriteMetadataJSON(w, meta)
	case FormatXLSX:
		return WriteMetadataXLSX(w, meta)
	default:
		return fmt.Errorf("unsupported metadata format: %s", format)
	}
}

// WriteMetadataText writes an aligned plain-text table
func WriteMetadataText(w io.Writer, meta *domainMetadata.Table) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, record := range meta.Records() {
		if _, err := fmt.Fprintln(tw, strings.Join(record, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteMetadataCSV writes a header row and one row per attribute.
// Undefined statistics are empty cells.
func WriteMetadataCSV(w io.Writer, meta *domainMetadata.Table) error {
	writer := csv.NewWriter(w)
	if err := writer.WriteAll(meta.Records()); err != nil {
		return fmt.Errorf("failed to write CSV metadata: %w", err)
	}
	return nil
}

type metadataRecord struct {
	Attribute string `json:"attribute"`
	DType     string `json:"dtype"`
	Type      string `json:"type"`
	Values    any    `json:"values"`
	Min       any    `json:"min"`
	Max       any    `json:"max"`
	Mean      any    `json:"mean"`
	Std       any    `json:"std"`
}

// jsonScalar maps undefined to null and non-finite floats to strings
func jsonScalar(s domainMetadata.Scalar) any {
	if v, ok := s.Float64(); ok && (math.IsInf(v, 0) || math.IsNaN(v)) {
		return s.String()
	}
	return s.Value()
}

// WriteMetadataJSON writes a JSON array of attribute records in attribute order
func WriteMetadataJSON(w io.Writer, meta *domainMetadata.Table) error {
	records := make([]metadataRecord, len(meta.Rows))
	for i, r := range meta.Rows {
		records[i] = metadataRecord{
			Attribute: r.Attribute,
			DType:     r.DType,
			Type:      string(r.Type),
			Values:    r.ValuesCell(),
			Min:       jsonScalar(r.Min),
			Max:       jsonScalar(r.Max),
			Mean:      jsonScalar(r.Mean),
			Std:       jsonScalar(r.Std),
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("failed to encode JSON metadata: %w", err)
	}
	return nil
}

// WriteMetadataXLSX writes the metadata table to a workbook with a single
// metadata sheet. Statistics keep their native cell types.
func WriteMetadataXLSX(w io.Writer, meta *domainMetadata.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", MetadataSheet); err != nil {
		return fmt.Errorf("failed to create metadata sheet: %w", err)
	}

	headers := append([]string{"attribute"}, domainMetadata.Columns...)
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(MetadataSheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for r, row := range meta.Rows {
		rowIdx := r + 2
		values := []any{row.Attribute, row.DType, string(row.Type), xlsxValues(row.Entry)}
		for _, s := range []domainMetadata.Scalar{row.Min, row.Max, row.Mean, row.Std} {
			values = append(values, xlsxScalar(s))
		}
		for c, v := range values {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, rowIdx)
			if err := f.SetCellValue(MetadataSheet, cell, v); err != nil {
				return fmt.Errorf("failed to write %s: %w", cell, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func xlsxValues(e domainMetadata.Entry) any {
	if e.Type == domainMetadata.TypeNominal {
		return strings.Join(e.Values, ", ")
	}
	return e.Distinct
}

func xlsxScalar(s domainMetadata.Scalar) any {
	if v, ok := s.Float64(); ok && (math.IsInf(v, 0) || math.IsNaN(v)) {
		return s.String()
	}
	return s.Value()
}
