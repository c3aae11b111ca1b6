package vcf

import (
	"errors"
	"fmt"
)

// ErrMissingHeader is returned when the #CHROM column line never appears, or
// a data line shows up before it.
var ErrMissingHeader = errors.New("vcf: missing #CHROM header line")

// HeaderError reports a malformed header section. Header errors always abort
// the parse.
type HeaderError struct {
	Msg string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("vcf: invalid header: %s", e.Msg)
}

// RecordError reports a malformed data line. Record errors are recoverable:
// with skip-invalid enabled the parser turns them into warnings and keeps
// going.
type RecordError struct {
	Line int
	Msg  string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("vcf: invalid record at line %d: %s", e.Line, e.Msg)
}

// Recoverable reports whether parsing can continue past err. Only per-record
// errors qualify; header and IO errors poison the whole file.
func Recoverable(err error) bool {
	var re *RecordError
	return errors.As(err, &re)
}

// WarningCategory buckets non-fatal parse issues.
type WarningCategory int

const (
	WarnInvalidRecord WarningCategory = iota
	WarnMalformedGenotype
	WarnUnknownFilter
	WarnOther
)

// Warning is a non-fatal issue noted while parsing with skip-invalid enabled.
type Warning struct {
	Line     int
	Message  string
	Category WarningCategory
}
