/*
date.go - Civil dates and recurrence date arithmetic

PURPOSE:
  Defines the canonical Date type used everywhere in the engine, plus the
  pure functions that compute when a recurring obligation falls due next.
  All ambiguity about date representations (strings from CSV files, full
  timestamps, already-typed values) is resolved at the load boundary; the
  core only ever sees this type.

KEY RULES:
  - A Date has day granularity, normalized to midnight UTC.
  - NextPeriodDate advances by 1/3/6 months or 1 year depending on
    frequency, clamping the day to the last valid day of the target month.
    It never produces an invalid calendar date.
  - Multi-month rollover is done by repeated subtraction of 12, matching
    iterative month arithmetic rather than a single modulo.

SEE ALSO:
  - recurrence.go: Uses NextPeriodDate to advance templates
  - store/csvfile: Parses table dates into this type
*/
package billing

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// DATE - Day-granularity calendar date
// =============================================================================

// Date is a calendar date with day granularity, normalized to UTC midnight.
// The zero value means "no date" (e.g., an unpaid entry's payment date).
type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time.Time to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date {
	return DateOf(time.Now())
}

// Comparison
func (d Date) Before(other Date) bool        { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool         { return d.Time.After(other.Time) }
func (d Date) Equal(other Date) bool         { return d.Time.Equal(other.Time) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return DateOf(d.Time.AddDate(0, 0, n)) }
func (d Date) AddMonths(n int) Date { return DateOf(d.Time.AddDate(0, n, 0)) }

// Properties
func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }
func (d Date) IsZero() bool      { return d.Time.IsZero() }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time.Format("2006-01-02")
}

// EndOfMonth returns the last day of d's month.
func (d Date) EndOfMonth() Date {
	return NewDate(d.Year(), d.Month(), DaysInMonth(d.Year(), d.Month()))
}

// dateLayouts are the representations persisted tables may contain.
// Legacy files carry full timestamps and day-first dates; everything is
// normalized to a plain Date here.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006",
}

// ParseDate normalizes a textual date from a persisted table.
// Empty input yields the zero Date and no error.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("unparseable date %q", s)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// =============================================================================
// FREQUENCY - How often a recurring obligation falls due
// =============================================================================

type Frequency string

const (
	FrequencyMonthly    Frequency = "Mensal"
	FrequencyQuarterly  Frequency = "Trimestral"
	FrequencySemiannual Frequency = "Semestral"
	FrequencyAnnual     Frequency = "Anual"
)

// Frequencies lists all supported values, in UI order.
var Frequencies = []Frequency{
	FrequencyMonthly,
	FrequencyQuarterly,
	FrequencySemiannual,
	FrequencyAnnual,
}

// ParseFrequency validates a frequency label from a persisted table or an
// API request. Unknown labels are an error, never a silent fallback; lenient
// coercion is a load-boundary decision, not a core one.
func ParseFrequency(s string) (Frequency, error) {
	for _, f := range Frequencies {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", &FieldError{Field: "frequency", Message: fmt.Sprintf("unknown frequency %q", s)}
}

func (f Frequency) String() string { return string(f) }

// Lower returns the label as it appears in materialized entry descriptions,
// e.g. "Aluguel (mensal)".
func (f Frequency) Lower() string { return strings.ToLower(string(f)) }

// =============================================================================
// RECURRENCE DATE ARITHMETIC
// =============================================================================

// NextPeriodDate computes the occurrence after current for the given
// frequency, targeting targetDay within the resulting month. The day is
// clamped to the last valid day of that month (dia 31 in February becomes
// the 28th or 29th).
func NextPeriodDate(current Date, freq Frequency, targetDay int) Date {
	year := current.Year()
	month := int(current.Month())

	switch freq {
	case FrequencyMonthly:
		month++
		if month > 12 {
			month = 1
			year++
		}
	case FrequencyQuarterly:
		month += 3
		for month > 12 {
			month -= 12
			year++
		}
	case FrequencySemiannual:
		month += 6
		for month > 12 {
			month -= 12
			year++
		}
	default: // FrequencyAnnual; the enum is closed so this arm is Annual only
		year++
	}

	day := targetDay
	if last := DaysInMonth(year, time.Month(month)); day > last {
		day = last
	}
	return NewDate(year, time.Month(month), day)
}

// InitialDueDate computes the first due date for a newly created template:
// this month at dueDay, rolling to next month when dueDay has already passed.
func InitialDueDate(today Date, dueDay int) Date {
	year := today.Year()
	month := int(today.Month())

	if today.Day() > dueDay {
		month++
		if month > 12 {
			month = 1
			year++
		}
	}

	day := dueDay
	if last := DaysInMonth(year, time.Month(month)); day > last {
		day = last
	}
	return NewDate(year, time.Month(month), day)
}
