package arff

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const irisSample = `% Iris sample
@RELATION iris

@ATTRIBUTE 'sepal length' REAL
@attribute petalwidth numeric
@attribute class {Iris-setosa, 'Iris versicolor', Iris-virginica}

@DATA
5.1,0.2,Iris-setosa
7.0, 1.4 , 'Iris versicolor'
% trailing comment
?,1.8,Iris-virginica
6.3,?,?
`

func TestParseDense(t *testing.T) {
	data, err := Parse(strings.NewReader(irisSample))
	require.NoError(t, err)

	assert.Equal(t, "iris", data.Relation)
	assert.Equal(t, []string{"sepal length", "petalwidth", "class"}, data.Names())
	assert.Equal(t, AttributeNumeric, data.Attributes[0].Type)
	assert.Equal(t, AttributeNominal, data.Attributes[2].Type)
	assert.Equal(t, []string{"Iris-setosa", "Iris versicolor", "Iris-virginica"}, data.Attributes[2].Nominals)

	require.Len(t, data.Rows, 4)
	assert.Equal(t, []any{5.1, 0.2, []byte("Iris-setosa")}, data.Rows[0])
	assert.Equal(t, []any{7.0, 1.4, []byte("Iris versicolor")}, data.Rows[1])
	assert.Nil(t, data.Rows[2][0])
	assert.Nil(t, data.Rows[3][1])
	assert.Nil(t, data.Rows[3][2])
}

func TestParseDates(t *testing.T) {
	src := `@relation events
@attribute default_fmt date
@attribute custom date "dd/MM/yyyy HH:mm:ss.SSS"
@attribute day date yyyy-MM-dd
@data
2024-01-02T03:04:05,"31/12/2023 23:59:58.250",2024-02-29
?,?,?
`
	data, err := Parse(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, DefaultDateFormat, data.Attributes[0].DateFormat)
	assert.Equal(t, "dd/MM/yyyy HH:mm:ss.SSS", data.Attributes[1].DateFormat)
	assert.Equal(t, AttributeDate, data.Attributes[2].Type)

	row := data.Rows[0]
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), row[0])
	assert.Equal(t, time.Date(2023, 12, 31, 23, 59, 58, 250_000_000, time.UTC), row[1])
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), row[2])
	assert.Equal(t, []any{nil, nil, nil}, data.Rows[1])
}

func TestParseQuotedValues(t *testing.T) {
	src := `@relation q
@attribute "odd name" {'a,b', '?', "it\'s"}
@data
'a,b'
'?'
"it's"
?
`
	data, err := Parse(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, "odd name", data.Attributes[0].Name)
	assert.Equal(t, []string{"a,b", "?", "it's"}, data.Attributes[0].Nominals)
	require.Len(t, data.Rows, 4)
	assert.Equal(t, []byte("a,b"), data.Rows[0][0])
	assert.Equal(t, []byte("?"), data.Rows[1][0])
	assert.Equal(t, []byte("it's"), data.Rows[2][0])
	assert.Nil(t, data.Rows[3][0])
}

func TestParseSpecialFloats(t *testing.T) {
	data, err := Parse(strings.NewReader("@relation r\n@attribute x integer\n@data\n3\n-1e3\n"))
	require.NoError(t, err)

	assert.Equal(t, 3.0, data.Rows[0][0])
	assert.Equal(t, -1000.0, data.Rows[1][0])
	assert.False(t, math.IsNaN(data.Rows[1][0].(float64)))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"no data section", "@relation r\n@attribute x numeric\n", "missing @data"},
		{"data before attributes", "@relation r\n@data\n", "before any @attribute"},
		{"unknown keyword", "@relation r\n@foo bar\n", "unexpected header line"},
		{"unknown type", "@relation r\n@attribute x blob\n@data\n", "unknown type"},
		{"duplicate attribute", "@relation r\n@attribute x numeric\n@attribute x numeric\n@data\n", "duplicate attribute"},
		{"bad numeric", "@relation r\n@attribute x numeric\n@data\nabc\n", "invalid numeric value"},
		{"nominal not declared", "@relation r\n@attribute c {a,b}\n@data\nz\n", `value "z" not in`},
		{"field count", "@relation r\n@attribute x numeric\n@attribute y numeric\n@data\n1\n", "expected 2 values, got 1"},
		{"sparse row", "@relation r\n@attribute x numeric\n@data\n{0 1}\n", "sparse data rows"},
		{"bad date", "@relation r\n@attribute d date\n@data\n2024-13-45\n", "does not match date format"},
		{"unsupported date pattern", "@relation r\n@attribute d date 'yyyy-MM-dd z'\n@data\n", "unsupported date pattern"},
		{"unterminated quote", "@relation r\n@attribute c {a,b}\n@data\n'a\n", "unterminated quote"},
		{"unterminated nominal", "@relation r\n@attribute c {a,b\n@data\n", "unterminated nominal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)

			var pe *ParseError
			assert.True(t, errors.As(err, &pe))
		})
	}
}

func TestParseErrorLineNumber(t *testing.T) {
	_, err := Parse(strings.NewReader("@relation r\n@attribute x numeric\n@data\n1\n2\nbad\n"))

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 6, pe.Line)
}

func TestParseRejectsUnsupportedAttributes(t *testing.T) {
	for _, typ := range []string{"string", "STRING", "relational"} {
		_, err := Parse(strings.NewReader("@relation r\n@attribute s " + typ + "\n@data\n"))

		var ue *UnsupportedAttributeError
		require.True(t, errors.As(err, &ue), typ)
		assert.Equal(t, "s", ue.Name)
		assert.Equal(t, strings.ToLower(typ), ue.Type)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "iris.arff")
	require.NoError(t, os.WriteFile(path, []byte(irisSample), 0o644))

	data, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, data.Rows, 4)

	_, err = ParseFile(filepath.Join(t.TempDir(), "absent.arff"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDateFormatParse(t *testing.T) {
	tests := []struct {
		name   string
		format string
		value  string
		want   time.Time
	}{
		{"default", DefaultDateFormat, "2024-01-02T03:04:05", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"unpadded fields", "yyyy-MM-dd", "2024-1-5", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"two digit year", "yy/MM/dd", "24/03/09", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)},
		{"two digit year last century", "yy", "99", time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"adjacent fields", "yyyyMMdd", "20240105", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"milliseconds", "HH:mm:ss,SSS", "23:59:58,250", time.Date(1970, 1, 1, 23, 59, 58, 250_000_000, time.UTC)},
		{"escaped quote", "yyyy''MM", "2024'03", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"literal with digits", "'Q1' yyyy", "Q1 2024", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"literal with layout words", "'Mon Jan PM' yyyy", "Mon Jan PM 2024", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := compileDateFormat(tt.format)
			require.NoError(t, err)
			got, err := f.parse(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateFormatRejectsMismatches(t *testing.T) {
	tests := []struct {
		name   string
		format string
		value  string
	}{
		{"literal mismatch", "'Q1' yyyy", "Q3 2024"},
		{"separator mismatch", "yyyy-MM-dd", "2024/01/05"},
		{"month out of range", "yyyy-MM-dd", "2024-13-01"},
		{"day out of range", "yyyy-MM-dd", "2023-02-29"},
		{"hour out of range", "HH:mm", "24:00"},
		{"trailing text", "yyyy-MM-dd", "2024-01-05x"},
		{"short milliseconds", "ss.SSS", "05.25"},
		{"short adjacent field", "yyyyMMdd", "20241"},
		{"empty", "yyyy", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := compileDateFormat(tt.format)
			require.NoError(t, err)
			_, err = f.parse(tt.value)
			assert.Error(t, err)
		})
	}
}

func TestCompileDateFormatErrors(t *testing.T) {
	_, err := compileDateFormat("yyyy 'T")
	assert.ErrorContains(t, err, "unterminated literal")
	_, err = compileDateFormat("yyyy-MM-dd z")
	assert.ErrorContains(t, err, "unsupported date pattern")
	_, err = compileDateFormat("EEE yyyy")
	assert.ErrorContains(t, err, "unsupported date pattern")
}

func TestParseDateLiteralMismatch(t *testing.T) {
	_, err := Parse(strings.NewReader("@relation r\n@attribute d date \"'Q1' yyyy\"\n@data\n\"Q3 2024\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match date format")

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 4, pe.Line)
}

func TestParseNominalWithoutSpace(t *testing.T) {
	data, err := Parse(strings.NewReader("@relation r\n@attribute color{red,blue}\n@attribute 'hue'{x}\n@data\nblue,x\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"color", "hue"}, data.Names())
	assert.Equal(t, []string{"red", "blue"}, data.Attributes[0].Nominals)
	assert.Equal(t, []any{[]byte("blue"), []byte("x")}, data.Rows[0])
}
