package models

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

var datePattern = regexp.MustCompile(`^(\d{4})-(0[1-9]|1[0-2])$`)

// Present is the literal sentinel for an ongoing date range.
const Present = "Present"

// Date is a flexible resume date: either a concrete year-month or the
// "Present" sentinel. Present orders strictly after every concrete
// date; two Present values are equal regardless of how they were
// produced.
//
// A Date decoded from YAML defers its parse failure: UnmarshalYAML
// never errors on a bad value, it records the failure so that record
// validation can aggregate it alongside other field errors instead of
// the decoder aborting on the first bad scalar.
type Date struct {
	year    int
	month   time.Month
	present bool
	err     error
}

// ParseDate parses "YYYY-MM" or the literal "Present". Any other shape
// (single-digit months, slash separators, two-digit years, month 00 or
// 13+) is rejected.
func ParseDate(s string) (Date, error) {
	if s == Present {
		return Date{present: true}, nil
	}
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return Date{}, fmt.Errorf("%w: %q must be in 'YYYY-MM' form or 'Present'", ErrInvalidDate, s)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	return Date{year: year, month: time.Month(month)}, nil
}

// MustDate parses s and panics on failure. Test fixtures only.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// UnmarshalYAML records the parse outcome instead of failing the
// decode; Validate surfaces it.
func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		*d = Date{err: fmt.Errorf("%w: must be a string in 'YYYY-MM' form or 'Present'", ErrInvalidDate)}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		*d = Date{err: err}
		return nil
	}
	*d = parsed
	return nil
}

// Validate implements validation.Validatable. A zero Date (field
// missing from the source file) fails too.
func (d Date) Validate() error {
	if d.err != nil {
		return d.err
	}
	if !d.present && d.year == 0 {
		return fmt.Errorf("%w: missing or empty", ErrInvalidDate)
	}
	return nil
}

// IsPresent reports whether the date is the Present sentinel.
func (d Date) IsPresent() bool { return d.present }

// ordinal maps the date onto a single total-order axis. Present sits
// above every representable concrete month.
func (d Date) ordinal() int {
	if d.present {
		return 1<<31 - 1
	}
	return d.year*12 + int(d.month)
}

// Compare returns -1, 0, or 1 per the total order: concrete dates by
// calendar order, Present greater than any concrete date, two Present
// values equal.
func (d Date) Compare(o Date) int {
	a, b := d.ordinal(), o.ordinal()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Before reports whether d orders strictly before o.
func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }

// After reports whether d orders strictly after o.
func (d Date) After(o Date) bool { return d.Compare(o) > 0 }

// Equal reports order equality; all Present values are one value.
func (d Date) Equal(o Date) bool { return d.Compare(o) == 0 }

// String renders the canonical form: "YYYY-MM" or "Present". It
// round-trips through ParseDate.
func (d Date) String() string {
	if d.present {
		return Present
	}
	return fmt.Sprintf("%04d-%02d", d.year, int(d.month))
}

// MarshalYAML emits the canonical string form.
func (d Date) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}
