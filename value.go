package todotxt

import (
	"fmt"
	"time"
)

// Value is the typed payload of a token. Its String form is the canonical
// text that round-trips through a task line.
type Value interface {
	fmt.Stringer
}

// Text is a plain word with no structure.
type Text string

// String returns the word unchanged.
func (t Text) String() string { return string(t) }

// nowFunc supplies the current time. Tests swap it to pin "today".
var nowFunc = time.Now

// Date is a calendar date. The zero Date means "no date" and renders as an
// empty string. Dates are comparable and safe as map keys.
type Date struct {
	year  int
	month int
	day   int
}

// NewDate builds a date and rejects impossible calendars such as month 13
// or February 31st.
func NewDate(year, month, day int) (Date, error) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return Date{}, fmt.Errorf("%w: no such date %04d-%02d-%02d", ErrValue, year, month, day)
	}
	return Date{year: year, month: month, day: day}, nil
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: bad date %q", ErrValue, s)
	}
	return Date{year: t.Year(), month: int(t.Month()), day: t.Day()}, nil
}

// Today returns the current date.
func Today() Date {
	now := nowFunc()
	return Date{year: now.Year(), month: int(now.Month()), day: now.Day()}
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool { return d == Date{} }

// String renders the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.year, d.month, d.day)
}

// Compare orders dates chronologically: -1 if d is earlier than o, 0 if
// equal, +1 if later. The zero date is earlier than any set date.
func (d Date) Compare(o Date) int {
	dk := d.year*10000 + d.month*100 + d.day
	ok := o.year*10000 + o.month*100 + o.day
	switch {
	case dk < ok:
		return -1
	case dk > ok:
		return 1
	default:
		return 0
	}
}

// Before reports whether d is earlier than o.
func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }

// After reports whether d is later than o.
func (d Date) After(o Date) bool { return d.Compare(o) > 0 }

// Equal reports whether the dates are the same day.
func (d Date) Equal(o Date) bool { return d == o }

// Priority is a task priority. Zero means no priority; 1 through 26 map to
// the letters A through Z.
type Priority int

// NoPriority is the empty priority.
const NoPriority Priority = 0

// ParsePriority reads a single priority letter. Both cases are accepted;
// the empty string is the empty priority.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return NoPriority, nil
	}
	if len(s) != 1 {
		return 0, fmt.Errorf("%w: bad priority %q", ErrValue, s)
	}
	c := s[0]
	switch {
	case c >= 'A' && c <= 'Z':
		return Priority(c-'A') + 1, nil
	case c >= 'a' && c <= 'z':
		return Priority(c-'a') + 1, nil
	default:
		return 0, fmt.Errorf("%w: bad priority %q", ErrValue, s)
	}
}

// String returns the priority letter, or "" when empty.
func (p Priority) String() string {
	if p == NoPriority {
		return ""
	}
	return string(rune('A' + int(p) - 1))
}

// IsZero reports whether the priority is empty.
func (p Priority) IsZero() bool { return p == NoPriority }

// rank maps the priority onto a total order where A is most urgent and the
// empty priority sorts after Z.
func (p Priority) rank() int {
	if p == NoPriority {
		return 27
	}
	return int(p)
}

// Compare orders priorities by urgency: -1 if p is more urgent than o,
// 0 if equal, +1 if less urgent. The empty priority is least urgent.
func (p Priority) Compare(o Priority) int {
	switch {
	case p.rank() < o.rank():
		return -1
	case p.rank() > o.rank():
		return 1
	default:
		return 0
	}
}

// Raise increases urgency by n steps. Raising the empty priority lands
// n-1 steps above Z, so a single step yields Z. Raising never passes A.
// Non-positive n leaves the priority unchanged.
func (p Priority) Raise(n int) Priority {
	if n <= 0 {
		return p
	}
	var result int
	if p == NoPriority {
		result = 27 - n
	} else {
		result = int(p) - n
	}
	if result < 1 {
		result = 1
	}
	return Priority(result)
}

// Lower decreases urgency by n steps. Lowering past Z clears the priority;
// lowering the empty priority lands n steps from the top, so a single step
// yields A. Non-positive n leaves the priority unchanged.
func (p Priority) Lower(n int) Priority {
	if n <= 0 {
		return p
	}
	result := int(p) + n
	if result > 26 {
		result = 0
	}
	return Priority(result)
}
