package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"arffmeta/domain/dataset"
	"arffmeta/internal"
	"arffmeta/internal/errors"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const weather = `@relation weather
@attribute outlook {sunny, overcast, rainy}
@attribute temperature numeric
@attribute observed date "yyyy-MM-dd"
@data
sunny,85,2024-01-01
overcast,?,2024-01-02
rainy,70,?
?,72,2024-01-01
`

func writeARFF(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.arff")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadBuildsOrderedColumns(t *testing.T) {
	table, err := Load(writeARFF(t, weather), true)
	require.NoError(t, err)
	defer table.Release()

	assert.Equal(t, []string{"outlook", "temperature", "observed"}, table.Names())
	assert.Equal(t, 4, table.NumRows())

	outlook := table.Column(0)
	assert.Equal(t, dataset.KindText, outlook.Kind())
	assert.Equal(t, "utf8", outlook.DType())
	str := outlook.Values.(*array.String)
	assert.Equal(t, "sunny", str.Value(0))
	assert.Equal(t, "rainy", str.Value(2))
	assert.True(t, str.IsNull(3))

	temp := table.Column(1)
	assert.Equal(t, "float64", temp.DType())
	f64 := temp.Values.(*array.Float64)
	assert.Equal(t, 85.0, f64.Value(0))
	assert.True(t, f64.IsNull(1))

	observed := table.Column(2)
	assert.Equal(t, dataset.KindDate, observed.Kind())
	assert.Equal(t, "timestamp[ns]", observed.DType())
	ts := observed.Values.(*array.Timestamp)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), ts.Value(1).ToTime(arrow.Nanosecond))
	assert.True(t, ts.IsNull(2))
}

func TestLoadWithoutDecodingKeepsBytes(t *testing.T) {
	table, err := Load(writeARFF(t, weather), false)
	require.NoError(t, err)

	outlook := table.Column(0)
	assert.Equal(t, "binary", outlook.DType())
	assert.Equal(t, dataset.KindText, outlook.Kind())
	assert.Equal(t, []byte("overcast"), outlook.Values.(*array.Binary).Value(1))
	assert.Equal(t, "float64", table.Column(1).DType())
}

func TestLoadInvalidUTF8(t *testing.T) {
	src := "@relation r\n@attribute city {caf\xe9, plain}\n@data\nplain\ncaf\xe9\n"
	path := writeARFF(t, src)

	_, err := Load(path, true)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeDecodeError))
	assert.Contains(t, err.Error(), `column "city" row 1`)

	table, err := Load(path, false)
	require.NoError(t, err)
	raw := table.Column(0).Values.(*array.Binary)
	assert.Equal(t, []byte("caf\xe9"), raw.Value(1))
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.arff"), true)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeLoadError))

	_, err = Load(writeARFF(t, "@relation r\n@attribute x numeric\n@data\nnope\n"), true)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeLoadError))
	assert.Contains(t, err.Error(), "invalid numeric value")

	_, err = Load(writeARFF(t, "@relation r\n@attribute s string\n@data\n"), true)
	assert.True(t, errors.HasCode(err, errors.CodeLoadError))
}

func TestLoadRejectsOutOfRangeDates(t *testing.T) {
	_, err := Load(writeARFF(t, "@relation r\n@attribute d date yyyy\n@data\n1500\n"), true)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeLoadError))
	assert.Contains(t, err.Error(), "out of nanosecond timestamp range")
}

func TestLoadReaderEmptyData(t *testing.T) {
	l := NewLoader(DefaultConfig(), internal.NewNopLogger())
	table, err := l.LoadReader("inline", strings.NewReader("@relation r\n@attribute x numeric\n@attribute c {a}\n@data\n"))
	require.NoError(t, err)

	assert.Equal(t, 0, table.NumRows())
	assert.Equal(t, 2, table.NumCols())
	assert.Equal(t, "utf8", table.Column(1).DType())
}
