package metadata

import (
	"fmt"

	"arffmeta/domain/dataset"
	domainMetadata "arffmeta/domain/metadata"
	"arffmeta/internal"
	"arffmeta/internal/errors"

	"golang.org/x/sync/errgroup"
)

// UnsupportedPolicy decides what happens to columns with no ARFF kind
type UnsupportedPolicy string

const (
	// PolicyError fails extraction on the first unsupported column.
	PolicyError UnsupportedPolicy = "error"
	// PolicySkip drops unsupported columns from the result.
	PolicySkip UnsupportedPolicy = "skip"
)

// Config holds extraction settings
type Config struct {
	// Workers bounds how many columns are summarized concurrently.
	Workers           int
	UnsupportedPolicy UnsupportedPolicy
}

// DefaultConfig extracts sequentially and rejects unsupported columns
func DefaultConfig() Config {
	return Config{Workers: 1, UnsupportedPolicy: PolicyError}
}

// Extractor derives ARFF attribute metadata from tables
type Extractor struct {
	config Config
	logger *internal.Logger
}

// NewExtractor creates an extractor; a nil logger falls back to the default logger
func NewExtractor(config Config, logger *internal.Logger) *Extractor {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.UnsupportedPolicy == "" {
		config.UnsupportedPolicy = PolicyError
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Extractor{config: config, logger: logger}
}

// ExtractRaw computes the metadata collection of table with default settings
func ExtractRaw(table *dataset.Table) (*domainMetadata.Collection, error) {
	return NewExtractor(DefaultConfig(), nil).ExtractRaw(table)
}

// ToTable computes the metadata table of table with default settings
func ToTable(table *dataset.Table) (*domainMetadata.Table, error) {
	return NewExtractor(DefaultConfig(), nil).ToTable(table)
}

type columnResult struct {
	entry   domainMetadata.Entry
	skipped bool
	err     error
}

// ExtractRaw classifies every column of table and computes its statistics.
// Either every column succeeds or the first failing column's error is returned.
func (e *Extractor) ExtractRaw(table *dataset.Table) (*domainMetadata.Collection, error) {
	results := make([]columnResult, table.NumCols())

	if e.config.Workers > 1 && table.NumCols() > 1 {
		var g errgroup.Group
		g.SetLimit(e.config.Workers)
		// Column errors travel through results so the first failing column
		// by index is reported, as on the sequential path.
		for i := range results {
			g.Go(func() error {
				results[i] = e.extractColumn(table.Column(i))
				return nil
			})
		}
		g.Wait()
	} else {
		for i := range results {
			results[i] = e.extractColumn(table.Column(i))
			if results[i].err != nil {
				break
			}
		}
	}

	collection := &domainMetadata.Collection{
		AttributeOrder: make([]string, 0, len(results)),
		InstanceCount:  table.NumRows(),
		Columns:        make(map[string]domainMetadata.Entry, len(results)),
	}
	for i, res := range results {
		if res.err != nil {
			return nil, res.err
		}
		if res.skipped {
			continue
		}
		name := table.Column(i).Name()
		collection.AttributeOrder = append(collection.AttributeOrder, name)
		collection.Columns[name] = res.entry
	}

	e.logger.Debug("[Extractor] extracted %d of %d attributes over %d instances",
		len(collection.AttributeOrder), table.NumCols(), collection.InstanceCount)
	return collection, nil
}

func (e *Extractor) extractColumn(col dataset.Column) columnResult {
	var (
		entry domainMetadata.Entry
		err   error
	)
	switch kind := col.Kind(); kind {
	case dataset.KindText:
		entry, err = nominalEntry(col)
	case dataset.KindNumeric:
		entry, err = numericEntry(col)
	case dataset.KindDate:
		entry, err = dateEntry(col)
	case dataset.KindOther:
		if e.config.UnsupportedPolicy == PolicySkip {
			e.logger.Warn("[Extractor] skipping column %q with unsupported value type %s", col.Name(), col.DType())
			return columnResult{skipped: true}
		}
		return columnResult{err: errors.UnsupportedType(col.Name(), col.DType())}
	default:
		return columnResult{err: errors.InternalError(fmt.Sprintf("column %q: unhandled value kind %s", col.Name(), kind))}
	}
	if err != nil {
		return columnResult{err: errors.Wrapf(err, "failed to summarize column %q", col.Name())}
	}
	return columnResult{entry: entry}
}

// ToTable extracts the metadata of table and flattens it into rows
func (e *Extractor) ToTable(table *dataset.Table) (*domainMetadata.Table, error) {
	raw, err := e.ExtractRaw(table)
	if err != nil {
		return nil, err
	}
	return Flatten(raw), nil
}

// Flatten lays a collection out as one row per attribute, following the
// collection's attribute order rather than map iteration order
func Flatten(c *domainMetadata.Collection) *domainMetadata.Table {
	rows := make([]domainMetadata.Row, 0, len(c.AttributeOrder))
	for _, name := range c.AttributeOrder {
		entry, ok := c.Columns[name]
		if !ok {
			continue
		}
		rows = append(rows, domainMetadata.Row{Attribute: name, Entry: entry})
	}
	return &domainMetadata.Table{Rows: rows}
}
