package vcf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"genelink/internal/log"
)

// Parser reads a whole VCF stream into a header and record slice. The zero
// value is not useful; construct with New or Fast.
type Parser struct {
	// ParseInfo controls whether the INFO column is split into values.
	ParseInfo bool

	// ParseSamples controls whether FORMAT/sample columns are parsed.
	ParseSamples bool

	// SkipInvalid turns recoverable record errors into warnings.
	SkipInvalid bool

	// CollectWarnings keeps per-line warnings for later inspection.
	CollectWarnings bool

	warnings []Warning
	line     int
}

// New returns a parser with full parsing enabled and strict record handling.
func New() *Parser {
	return &Parser{
		ParseInfo:       true,
		ParseSamples:    true,
		SkipInvalid:     false,
		CollectWarnings: true,
	}
}

// Fast returns a parser tuned for bulk scans: INFO and sample columns are
// skipped and malformed records are dropped silently.
func Fast() *Parser {
	return &Parser{SkipInvalid: true}
}

// Warnings returns the warnings collected by the last Parse call.
func (p *Parser) Warnings() []Warning { return p.warnings }

// Parse reads the full stream. On success the header and every parseable
// record are returned; with SkipInvalid disabled the first bad record aborts.
func (p *Parser) Parse(r io.Reader) (Header, []Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	p.line = 0
	p.warnings = nil

	header, err := p.parseHeader(sc)
	if err != nil {
		return Header{}, nil, err
	}

	var records []Record
	for sc.Scan() {
		p.line++
		line := sc.Text()
		if line == "" {
			continue
		}

		rec, err := p.parseRecord(line, &header)
		if err != nil {
			if p.SkipInvalid && Recoverable(err) {
				if p.CollectWarnings {
					p.warnings = append(p.warnings, Warning{
						Line:     p.line,
						Message:  err.Error(),
						Category: WarnInvalidRecord,
					})
				}
				continue
			}
			return Header{}, nil, err
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return Header{}, nil, fmt.Errorf("vcf: read: %w", err)
	}

	log.Debug(log.CatData, "vcf parsed",
		"records", len(records), "samples", len(header.Samples), "warnings", len(p.warnings))
	return header, records, nil
}

// ParseString parses VCF content held in memory.
func (p *Parser) ParseString(content string) (Header, []Record, error) {
	return p.Parse(strings.NewReader(content))
}

func (p *Parser) parseHeader(sc *bufio.Scanner) (Header, error) {
	var header Header
	header.FileFormat = "VCFv4.2"

	for sc.Scan() {
		p.line++
		line := sc.Text()

		switch {
		case strings.HasPrefix(line, "##"):
			header.MetaLines = append(header.MetaLines, line)
			p.parseMetaLine(line, &header)
		case strings.HasPrefix(line, "#CHROM"):
			if err := parseColumnLine(line, &header); err != nil {
				return Header{}, err
			}
			return header, nil
		case line != "":
			// Data before the column line.
			return Header{}, ErrMissingHeader
		}
	}
	if err := sc.Err(); err != nil {
		return Header{}, fmt.Errorf("vcf: read: %w", err)
	}
	return Header{}, ErrMissingHeader
}

func (p *Parser) parseMetaLine(line string, header *Header) {
	content := line[2:]
	eq := strings.IndexByte(content, '=')
	if eq < 0 {
		return
	}
	key, value := content[:eq], content[eq+1:]

	switch key {
	case "fileformat":
		header.FileFormat = value
	case "reference":
		header.Reference = value
	case "contig":
		if fields, ok := parseStructured(value); ok {
			length, _ := strconv.ParseInt(fields["length"], 10, 64)
			header.Contigs = append(header.Contigs, Contig{
				ID:     fields["ID"],
				Length: length,
			})
		}
	case "INFO":
		if fields, ok := parseStructured(value); ok {
			header.InfoFields = append(header.InfoFields, fieldDef(fields))
		}
	case "FORMAT":
		if fields, ok := parseStructured(value); ok {
			header.FormatFields = append(header.FormatFields, fieldDef(fields))
		}
	case "FILTER":
		if fields, ok := parseStructured(value); ok {
			header.Filters = append(header.Filters, FilterDef{
				ID:          fields["ID"],
				Description: fields["Description"],
			})
		}
	}
}

func fieldDef(fields map[string]string) FieldDef {
	return FieldDef{
		ID:          fields["ID"],
		Number:      fields["Number"],
		Type:        fields["Type"],
		Description: fields["Description"],
	}
}

// parseStructured splits a <ID=X,Number=1,Description="a, b"> body into keys
// and values, honoring quotes around values that contain commas.
func parseStructured(value string) (map[string]string, bool) {
	if !strings.HasPrefix(value, "<") || !strings.HasSuffix(value, ">") {
		return nil, false
	}
	inner := value[1 : len(value)-1]

	fields := make(map[string]string)
	var key, val strings.Builder
	inQuotes, inValue := false, false

	flush := func() {
		if key.Len() > 0 {
			fields[key.String()] = val.String()
		}
		key.Reset()
		val.Reset()
		inValue = false
	}

	for _, ch := range inner {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == '=' && !inQuotes && !inValue:
			inValue = true
		case ch == ',' && !inQuotes:
			flush()
		case inValue:
			val.WriteRune(ch)
		default:
			key.WriteRune(ch)
		}
	}
	flush()
	return fields, true
}

func parseColumnLine(line string, header *Header) error {
	fields := strings.Split(line, "\t")
	if len(fields) < 8 {
		return &HeaderError{Msg: "column line must have at least 8 columns"}
	}
	if len(fields) > 9 {
		header.Samples = append([]string(nil), fields[9:]...)
	}
	return nil
}

func (p *Parser) parseRecord(line string, header *Header) (Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 8 {
		return Record{}, &RecordError{
			Line: p.line,
			Msg:  fmt.Sprintf("expected at least 8 fields, found %d", len(fields)),
		}
	}

	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return Record{}, &RecordError{
			Line: p.line,
			Msg:  fmt.Sprintf("invalid position %q", fields[1]),
		}
	}

	rec := Record{
		Chrom: fields[0],
		Pos:   pos,
		Ref:   fields[3],
	}

	if fields[2] != "." {
		rec.ID = fields[2]
	}
	if fields[4] != "." {
		rec.Alt = strings.Split(fields[4], ",")
	}
	if fields[5] != "." {
		// Unparseable quality degrades to absent rather than failing the
		// record.
		if q, err := strconv.ParseFloat(fields[5], 64); err == nil {
			rec.Qual = q
			rec.HasQual = true
		}
	}

	rec.Filter = parseFilter(fields[6])

	if p.ParseInfo {
		rec.Info = parseInfo(fields[7])
	}
	if p.ParseSamples && len(fields) > 9 {
		rec.Samples = parseSamples(fields[8], fields[9:], header.Samples)
	}
	return rec, nil
}

func parseFilter(value string) FilterStatus {
	switch value {
	case ".":
		return FilterStatus{Missing: true}
	case "PASS":
		return FilterStatus{}
	default:
		return FilterStatus{Failed: strings.Split(value, ";")}
	}
}

func parseInfo(value string) map[string]InfoValue {
	info := make(map[string]InfoValue)
	if value == "." {
		return info
	}
	for _, item := range strings.Split(value, ";") {
		if eq := strings.IndexByte(item, '='); eq >= 0 {
			info[item[:eq]] = StringValue(item[eq+1:])
		} else {
			info[item] = FlagValue()
		}
	}
	return info
}

func parseSamples(format string, columns []string, names []string) []SampleData {
	keys := strings.Split(format, ":")
	samples := make([]SampleData, 0, len(columns))

	for i, col := range columns {
		name := fmt.Sprintf("SAMPLE_%d", i)
		if i < len(names) {
			name = names[i]
		}

		values := strings.Split(col, ":")
		data := SampleData{Name: name, Fields: make(map[string]string)}

		for j, key := range keys {
			if j >= len(values) {
				break
			}
			if key == "GT" {
				data.Genotype = ParseGenotype(values[j])
			} else {
				data.Fields[key] = values[j]
			}
		}
		samples = append(samples, data)
	}
	return samples
}

// Reader streams records one at a time for files too large to hold in
// memory. The header is parsed eagerly by NewReader.
type Reader struct {
	sc     *bufio.Scanner
	parser *Parser
	header Header
}

// NewReader parses the header section and returns a streaming reader over
// the records.
func NewReader(r io.Reader) (*Reader, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	p := New()
	header, err := p.parseHeader(sc)
	if err != nil {
		return nil, err
	}
	return &Reader{sc: sc, parser: p, header: header}, nil
}

// Header returns the parsed header.
func (r *Reader) Header() Header { return r.header }

// Next returns the next record, or io.EOF when the stream is exhausted.
// Record errors are returned per line; the caller decides whether to skip.
func (r *Reader) Next() (Record, error) {
	for r.sc.Scan() {
		r.parser.line++
		line := r.sc.Text()
		if line == "" {
			continue
		}
		return r.parser.parseRecord(line, &r.header)
	}
	if err := r.sc.Err(); err != nil {
		return Record{}, fmt.Errorf("vcf: read: %w", err)
	}
	return Record{}, io.EOF
}
