package metadata

import (
	"fmt"
	"math"
	"time"

	"arffmeta/domain/dataset"
	domainMetadata "arffmeta/domain/metadata"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// orderedSet keeps distinct values in first-insertion order
type orderedSet struct {
	items []string
	seen  map[string]struct{}
}

func newOrderedSet() *orderedSet {
	return &orderedSet{items: []string{}, seen: make(map[string]struct{})}
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

// nominalEntry collects the distinct non-missing values top to bottom.
// Statistics are left undefined.
func nominalEntry(col dataset.Column) (domainMetadata.Entry, error) {
	set := newOrderedSet()
	arr := col.Values
	for i := 0; i < arr.Len(); i++ {
		v, ok, err := textAt(arr, i)
		if err != nil {
			return domainMetadata.Entry{}, fmt.Errorf("column %q: %w", col.Name(), err)
		}
		if ok {
			set.add(v)
		}
	}

	return domainMetadata.Entry{
		DType:  col.DType(),
		Type:   domainMetadata.TypeNominal,
		Values: set.items,
	}, nil
}

// textAt returns the i-th value of a text or dictionary-encoded text array;
// ok is false for a missing slot
func textAt(arr arrow.Array, i int) (string, bool, error) {
	if arr.IsNull(i) {
		return "", false, nil
	}
	switch a := arr.(type) {
	case *array.String:
		return a.Value(i), true, nil
	case *array.LargeString:
		return a.Value(i), true, nil
	case *array.Binary:
		return string(a.Value(i)), true, nil
	case *array.LargeBinary:
		return string(a.Value(i)), true, nil
	case *array.Dictionary:
		return textAt(a.Dictionary(), a.GetValueIndex(i))
	default:
		return "", false, fmt.Errorf("unexpected text array %T", arr)
	}
}

// numericValues returns the non-missing values of a float column. NaN is
// treated as missing.
func numericValues(col dataset.Column) ([]float64, error) {
	arr := col.Values
	values := make([]float64, 0, arr.Len())
	for i := 0; i < arr.Len(); i++ {
		if arr.IsNull(i) {
			continue
		}
		var v float64
		switch a := arr.(type) {
		case *array.Float64:
			v = a.Value(i)
		case *array.Float32:
			v = float64(a.Value(i))
		default:
			return nil, fmt.Errorf("column %q: unexpected numeric array %T", col.Name(), arr)
		}
		if math.IsNaN(v) {
			continue
		}
		values = append(values, v)
	}
	return values, nil
}

// numericEntry summarizes a float column over its non-missing values
func numericEntry(col dataset.Column) (domainMetadata.Entry, error) {
	values, err := numericValues(col)
	if err != nil {
		return domainMetadata.Entry{}, err
	}

	distinct := make(map[float64]struct{}, len(values))
	for _, v := range values {
		distinct[v] = struct{}{}
	}

	entry := domainMetadata.Entry{
		DType:    col.DType(),
		Type:     domainMetadata.TypeNumeric,
		Distinct: len(distinct),
	}
	if len(values) == 0 {
		return entry, nil
	}

	min, err := stats.Min(values)
	if err != nil {
		return entry, fmt.Errorf("column %q min: %w", col.Name(), err)
	}
	max, err := stats.Max(values)
	if err != nil {
		return entry, fmt.Errorf("column %q max: %w", col.Name(), err)
	}
	mean, err := stats.Mean(values)
	if err != nil {
		return entry, fmt.Errorf("column %q mean: %w", col.Name(), err)
	}
	entry.Min = domainMetadata.Float(min)
	entry.Max = domainMetadata.Float(max)
	entry.Mean = finite(mean)

	// Sample standard deviation needs at least two observations.
	if len(values) >= 2 {
		entry.Std = finite(stat.StdDev(values, nil))
	}
	return entry, nil
}

// finite wraps v, leaving infinite and NaN results undefined
func finite(v float64) domainMetadata.Scalar {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return domainMetadata.Undefined
	}
	return domainMetadata.Float(v)
}

type instant struct {
	sec  int64
	nsec int
}

// dateValues returns the non-missing instants of a temporal column, in UTC
func dateValues(col dataset.Column) ([]time.Time, error) {
	arr := col.Values
	values := make([]time.Time, 0, arr.Len())
	for i := 0; i < arr.Len(); i++ {
		if arr.IsNull(i) {
			continue
		}
		switch a := arr.(type) {
		case *array.Timestamp:
			unit := a.DataType().(*arrow.TimestampType).Unit
			values = append(values, a.Value(i).ToTime(unit).UTC())
		case *array.Date32:
			values = append(values, a.Value(i).ToTime().UTC())
		case *array.Date64:
			values = append(values, a.Value(i).ToTime().UTC())
		default:
			return nil, fmt.Errorf("column %q: unexpected temporal array %T", col.Name(), arr)
		}
	}
	return values, nil
}

// dateEntry summarizes a temporal column with its chronological bounds
func dateEntry(col dataset.Column) (domainMetadata.Entry, error) {
	values, err := dateValues(col)
	if err != nil {
		return domainMetadata.Entry{}, err
	}

	entry := domainMetadata.Entry{
		DType: col.DType(),
		Type:  domainMetadata.TypeDate,
	}
	if len(values) == 0 {
		return entry, nil
	}

	distinct := make(map[instant]struct{}, len(values))
	earliest, latest := values[0], values[0]
	for _, v := range values {
		distinct[instant{sec: v.Unix(), nsec: v.Nanosecond()}] = struct{}{}
		if v.Before(earliest) {
			earliest = v
		}
		if v.After(latest) {
			latest = v
		}
	}

	entry.Distinct = len(distinct)
	entry.Min = domainMetadata.Time(earliest)
	entry.Max = domainMetadata.Time(latest)
	return entry, nil
}
