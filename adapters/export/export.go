package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"arffmeta/domain/dataset"
	"arffmeta/internal/errors"
)

// TableWriter writes a data table in one output format
type TableWriter func(io.Writer, *dataset.Table) error

// TableWriterFor picks the data table writer from the output file extension
func TableWriterFor(path string) (TableWriter, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return WriteTableParquet, nil
	case ".csv":
		return WriteTableCSV, nil
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("cannot infer table format from %q: want .parquet or .csv", path))
	}
}

// ToFile creates path and hands it to write. The file is removed again if
// write fails.
func ToFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.ExportError(path, err)
	}

	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return errors.ExportError(path, err)
	}
	if err := f.Close(); err != nil {
		return errors.ExportError(path, err)
	}
	return nil
}
