package arff

import (
	"fmt"
	"strings"
	"time"
)

type dateField int

const (
	fieldLiteral dateField = iota
	fieldYear
	fieldYear2
	fieldMonth
	fieldDay
	fieldHour
	fieldMinute
	fieldSecond
	fieldMilli
)

// digit bounds per field: fields may be unpadded, but yy and SSS are fixed width
var fieldWidths = map[dateField][2]int{
	fieldYear:   {1, 4},
	fieldYear2:  {2, 2},
	fieldMonth:  {1, 2},
	fieldDay:    {1, 2},
	fieldHour:   {1, 2},
	fieldMinute: {1, 2},
	fieldSecond: {1, 2},
	fieldMilli:  {3, 3},
}

var datePatterns = map[string]dateField{
	"yyyy": fieldYear,
	"yy":   fieldYear2,
	"MM":   fieldMonth,
	"dd":   fieldDay,
	"HH":   fieldHour,
	"mm":   fieldMinute,
	"ss":   fieldSecond,
	"SSS":  fieldMilli,
}

type dateSegment struct {
	field   dateField
	literal string
	// exact is set when the next segment is also a field, so the digit
	// run cannot be delimited and must be the full width.
	exact bool
}

// dateFormat is a compiled SimpleDateFormat pattern
type dateFormat struct {
	segments []dateSegment
}

// compileDateFormat supports yyyy yy MM dd HH mm ss SSS, quoted literals
// and '' for a single quote. Any other letter run is rejected.
func compileDateFormat(format string) (*dateFormat, error) {
	var (
		segments []dateSegment
		lit      strings.Builder
	)
	flushLiteral := func() {
		if lit.Len() > 0 {
			segments = append(segments, dateSegment{field: fieldLiteral, literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(format); {
		c := format[i]
		if c == '\'' {
			end := strings.IndexByte(format[i+1:], '\'')
			if end < 0 {
				return nil, fmt.Errorf("unterminated literal in date format %q", format)
			}
			if end == 0 {
				lit.WriteByte('\'')
			} else {
				lit.WriteString(format[i+1 : i+1+end])
			}
			i += end + 2
			continue
		}
		if !isLetter(c) {
			lit.WriteByte(c)
			i++
			continue
		}

		j := i
		for j < len(format) && format[j] == c {
			j++
		}
		field, ok := datePatterns[format[i:j]]
		if !ok {
			return nil, fmt.Errorf("unsupported date pattern %q in %q", format[i:j], format)
		}
		flushLiteral()
		segments = append(segments, dateSegment{field: field})
		i = j
	}
	flushLiteral()

	for k := 0; k+1 < len(segments); k++ {
		if segments[k].field != fieldLiteral && segments[k+1].field != fieldLiteral {
			segments[k].exact = true
		}
	}
	return &dateFormat{segments: segments}, nil
}

// parse matches s against the format. Missing fields default to
// 1970-01-01T00:00:00 and the result is in UTC.
func (f *dateFormat) parse(s string) (time.Time, error) {
	values := map[dateField]int{fieldYear: 1970, fieldMonth: 1, fieldDay: 1}

	pos := 0
	for _, seg := range f.segments {
		if seg.field == fieldLiteral {
			if !strings.HasPrefix(s[pos:], seg.literal) {
				return time.Time{}, fmt.Errorf("expected %q at offset %d", seg.literal, pos)
			}
			pos += len(seg.literal)
			continue
		}

		bounds := fieldWidths[seg.field]
		lo, hi := bounds[0], bounds[1]
		if seg.exact {
			lo = hi
		}
		n, v := 0, 0
		for n < hi && pos+n < len(s) && s[pos+n] >= '0' && s[pos+n] <= '9' {
			v = v*10 + int(s[pos+n]-'0')
			n++
		}
		if n < lo {
			return time.Time{}, fmt.Errorf("expected %d to %d digits at offset %d", lo, hi, pos)
		}
		pos += n

		if seg.field == fieldYear2 {
			// same pivot as Go's "06"
			if v >= 69 {
				v += 1900
			} else {
				v += 2000
			}
			seg.field = fieldYear
		}
		values[seg.field] = v
	}
	if pos != len(s) {
		return time.Time{}, fmt.Errorf("unexpected trailing text %q", s[pos:])
	}

	year, month, day := values[fieldYear], values[fieldMonth], values[fieldDay]
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month %d out of range", month)
	}
	if last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day(); day < 1 || day > last {
		return time.Time{}, fmt.Errorf("day %d out of range", day)
	}
	if values[fieldHour] > 23 || values[fieldMinute] > 59 || values[fieldSecond] > 59 {
		return time.Time{}, fmt.Errorf("time of day out of range")
	}

	return time.Date(year, time.Month(month), day,
		values[fieldHour], values[fieldMinute], values[fieldSecond],
		values[fieldMilli]*int(time.Millisecond), time.UTC), nil
}
