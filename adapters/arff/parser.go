package arff

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// AttributeType is the declared type of an ARFF attribute
type AttributeType int

const (
	AttributeNumeric AttributeType = iota
	AttributeNominal
	AttributeDate
)

func (t AttributeType) String() string {
	switch t {
	case AttributeNumeric:
		return "numeric"
	case AttributeNominal:
		return "nominal"
	case AttributeDate:
		return "date"
	default:
		return "unknown"
	}
}

// DefaultDateFormat is the ARFF date format used when a date attribute declares none
const DefaultDateFormat = "yyyy-MM-dd'T'HH:mm:ss"

// Attribute is one declared column
type Attribute struct {
	Name     string
	Type     AttributeType
	Nominals []string
	// DateFormat is the declared SimpleDateFormat pattern of a date attribute.
	DateFormat string

	date    *dateFormat
	members map[string]struct{}
}

// Data is a parsed ARFF file. Row cells are float64 for numeric attributes,
// []byte for nominal attributes, time.Time for dates and nil when missing.
type Data struct {
	Relation   string
	Attributes []Attribute
	Rows       [][]any
}

// Names returns the attribute names in declaration order
func (d *Data) Names() []string {
	names := make([]string, len(d.Attributes))
	for i, a := range d.Attributes {
		names[i] = a.Name
	}
	return names
}

// ParseError reports malformed ARFF input
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return "arff: " + e.Msg
	}
	return fmt.Sprintf("arff: line %d: %s", e.Line, e.Msg)
}

// UnsupportedAttributeError reports a string or relational attribute
type UnsupportedAttributeError struct {
	Line int
	Name string
	Type string
}

func (e *UnsupportedAttributeError) Error() string {
	return fmt.Sprintf("arff: line %d: attribute %q has unsupported type %s", e.Line, e.Name, e.Type)
}

// ParseFile reads and parses the ARFF file at path
func ParseFile(path string) (*Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a dense ARFF document
func Parse(r io.Reader) (*Data, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	p := &parser{data: &Data{}, seen: make(map[string]bool)}
	for scanner.Scan() {
		p.line++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}

		var err error
		if p.inData {
			err = p.parseRow(line)
		} else {
			err = p.parseHeader(line)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if !p.inData {
		return nil, &ParseError{Msg: "missing @data section"}
	}
	return p.data, nil
}

type parser struct {
	data   *Data
	line   int
	inData bool
	seen   map[string]bool
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &ParseError{Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) parseHeader(line string) error {
	keyword, rest := splitKeyword(line)
	switch strings.ToLower(keyword) {
	case "@relation":
		name, _, err := readName(rest)
		if err != nil {
			return p.errorf("relation: %v", err)
		}
		p.data.Relation = name
		return nil
	case "@attribute":
		return p.parseAttribute(rest)
	case "@data":
		if len(p.data.Attributes) == 0 {
			return p.errorf("@data before any @attribute")
		}
		p.inData = true
		return nil
	default:
		return p.errorf("unexpected header line %q", line)
	}
}

func (p *parser) parseAttribute(rest string) error {
	name, decl, err := readName(rest)
	if err != nil {
		return p.errorf("attribute: %v", err)
	}
	if p.seen[name] {
		return p.errorf("duplicate attribute %q", name)
	}
	decl = strings.TrimSpace(decl)
	if decl == "" {
		return p.errorf("attribute %q has no type", name)
	}

	attr := Attribute{Name: name}
	if strings.HasPrefix(decl, "{") {
		if !strings.HasSuffix(decl, "}") {
			return p.errorf("attribute %q: unterminated nominal value list", name)
		}
		tokens, err := splitValues(decl[1 : len(decl)-1])
		if err != nil {
			return p.errorf("attribute %q: %v", name, err)
		}
		attr.Type = AttributeNominal
		attr.members = make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			attr.Nominals = append(attr.Nominals, tok.text)
			attr.members[tok.text] = struct{}{}
		}
	} else {
		typeName, typeRest := splitKeyword(decl)
		switch strings.ToLower(typeName) {
		case "numeric", "real", "integer":
			attr.Type = AttributeNumeric
		case "date":
			format := DefaultDateFormat
			if typeRest = strings.TrimSpace(typeRest); typeRest != "" {
				format, _, err = readName(typeRest)
				if err != nil {
					return p.errorf("attribute %q: date format: %v", name, err)
				}
			}
			compiled, err := compileDateFormat(format)
			if err != nil {
				return p.errorf("attribute %q: %v", name, err)
			}
			attr.Type = AttributeDate
			attr.DateFormat = format
			attr.date = compiled
		case "string", "relational":
			return &UnsupportedAttributeError{Line: p.line, Name: name, Type: strings.ToLower(typeName)}
		default:
			return p.errorf("attribute %q has unknown type %q", name, typeName)
		}
	}

	p.seen[name] = true
	p.data.Attributes = append(p.data.Attributes, attr)
	return nil
}

func (p *parser) parseRow(line string) error {
	if strings.HasPrefix(line, "{") {
		return p.errorf("sparse data rows are not supported")
	}
	tokens, err := splitValues(line)
	if err != nil {
		return p.errorf("%v", err)
	}
	if len(tokens) != len(p.data.Attributes) {
		return p.errorf("expected %d values, got %d", len(p.data.Attributes), len(tokens))
	}

	row := make([]any, len(tokens))
	for i, tok := range tokens {
		if tok.text == "?" && !tok.quoted {
			continue
		}
		attr := &p.data.Attributes[i]
		switch attr.Type {
		case AttributeNumeric:
			v, err := strconv.ParseFloat(tok.text, 64)
			if err != nil {
				return p.errorf("attribute %q: invalid numeric value %q", attr.Name, tok.text)
			}
			row[i] = v
		case AttributeNominal:
			if _, ok := attr.members[tok.text]; !ok {
				return p.errorf("attribute %q: value %q not in %v", attr.Name, tok.text, attr.Nominals)
			}
			row[i] = []byte(tok.text)
		case AttributeDate:
			ts, err := attr.date.parse(tok.text)
			if err != nil {
				return p.errorf("attribute %q: value %q does not match date format %q: %v", attr.Name, tok.text, attr.DateFormat, err)
			}
			row[i] = ts
		}
	}

	p.data.Rows = append(p.data.Rows, row)
	return nil
}

// splitKeyword splits off the first whitespace separated word
func splitKeyword(s string) (string, string) {
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

// readName reads a possibly quoted name and returns it with the remainder
func readName(s string) (string, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", fmt.Errorf("missing name")
	}
	if q := s[0]; q == '\'' || q == '"' {
		var b strings.Builder
		for i := 1; i < len(s); i++ {
			c := s[i]
			switch {
			case c == '\\' && i+1 < len(s):
				i++
				b.WriteByte(s[i])
			case c == q:
				return b.String(), s[i+1:], nil
			default:
				b.WriteByte(c)
			}
		}
		return "", "", fmt.Errorf("unterminated quote in %q", s)
	}
	// an unquoted name ends at whitespace or at a nominal list
	if i := strings.IndexAny(s, " \t{"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i:]), nil
	}
	return s, "", nil
}

type token struct {
	text   string
	quoted bool
}

// splitValues splits a comma separated value list honouring quotes
func splitValues(s string) ([]token, error) {
	var (
		tokens  []token
		cur     strings.Builder
		quote   byte
		quoted  bool
		pending bool
	)
	flush := func() {
		text := cur.String()
		if !quoted {
			text = strings.TrimSpace(text)
		}
		tokens = append(tokens, token{text: text, quoted: quoted})
		cur.Reset()
		quoted = false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch {
			case c == '\\' && i+1 < len(s):
				i++
				cur.WriteByte(s[i])
			case c == quote:
				quote = 0
			default:
				cur.WriteByte(c)
			}
			continue
		}
		switch c {
		case '\'', '"':
			if strings.TrimSpace(cur.String()) != "" {
				return nil, fmt.Errorf("unexpected quote in %q", s)
			}
			cur.Reset()
			quote = c
			quoted = true
		case ',':
			flush()
			pending = true
			continue
		case ' ', '\t':
			if quoted {
				continue
			}
			cur.WriteByte(c)
		default:
			if quoted {
				return nil, fmt.Errorf("unexpected text after closing quote in %q", s)
			}
			cur.WriteByte(c)
		}
		pending = false
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote in %q", s)
	}
	if pending || quoted || strings.TrimSpace(cur.String()) != "" {
		flush()
	}
	return tokens, nil
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
