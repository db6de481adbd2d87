package todotxt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pinToday fixes the clock for the duration of a test.
func pinToday(t *testing.T, year, month, day int) {
	t.Helper()
	prev := nowFunc
	nowFunc = func() time.Time {
		return time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC)
	}
	t.Cleanup(func() { nowFunc = prev })
}

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2021-06-15")
	require.NoError(t, err)
	assert.Equal(t, "2021-06-15", d.String())
	assert.False(t, d.IsZero())

	for _, bad := range []string{"", "2021-6-15", "2021-02-30", "2021-13-01", "not-a-date", "20210615"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrValue, "input %q", bad)
	}
}

func TestNewDate(t *testing.T) {
	d, err := NewDate(2020, 2, 29)
	require.NoError(t, err)
	assert.Equal(t, "2020-02-29", d.String())

	_, err = NewDate(2021, 2, 29)
	assert.ErrorIs(t, err, ErrValue)
	_, err = NewDate(2021, 13, 1)
	assert.ErrorIs(t, err, ErrValue)
}

func TestDateOrdering(t *testing.T) {
	early := mustDate(t, "1999-12-31")
	late := mustDate(t, "2000-01-01")

	assert.Equal(t, -1, early.Compare(late))
	assert.Equal(t, 1, late.Compare(early))
	assert.Equal(t, 0, early.Compare(early))
	assert.True(t, early.Before(late))
	assert.True(t, late.After(early))
	assert.True(t, early.Equal(early))
	assert.False(t, early.Equal(late))

	// The zero date is earlier than any set date.
	assert.True(t, Date{}.Before(early))
	assert.Equal(t, "", Date{}.String())
	assert.True(t, Date{}.IsZero())
}

func TestToday(t *testing.T) {
	pinToday(t, 2021, 6, 15)
	assert.Equal(t, "2021-06-15", Today().String())
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority("A")
	require.NoError(t, err)
	assert.Equal(t, Priority(1), p)

	p, err = ParsePriority("z")
	require.NoError(t, err)
	assert.Equal(t, Priority(26), p)

	p, err = ParsePriority("")
	require.NoError(t, err)
	assert.True(t, p.IsZero())
	assert.Equal(t, NoPriority, p)

	for _, bad := range []string{"AA", "@", "1", "(", "ß"} {
		_, err := ParsePriority(bad)
		assert.ErrorIs(t, err, ErrValue, "input %q", bad)
	}
}

func TestPriorityString(t *testing.T) {
	assert.Equal(t, "", NoPriority.String())
	assert.Equal(t, "A", Priority(1).String())
	assert.Equal(t, "S", Priority(19).String())
	assert.Equal(t, "Z", Priority(26).String())
}

func TestPriorityCompare(t *testing.T) {
	a := Priority(1)
	b := Priority(2)

	// A is more urgent than B; the empty priority trails everything.
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.Equal(t, -1, Priority(26).Compare(NoPriority))
	assert.Equal(t, 1, NoPriority.Compare(Priority(26)))
	assert.Equal(t, 0, NoPriority.Compare(NoPriority))
}

func TestPriorityRaise(t *testing.T) {
	// One step up from nothing lands on Z, not A.
	assert.Equal(t, Priority(26), NoPriority.Raise(1))
	assert.Equal(t, "Z", NoPriority.Raise(1).String())

	assert.Equal(t, Priority(19), Priority(20).Raise(1))
	assert.Equal(t, "S", Priority(20).Raise(1).String())

	// A is the ceiling.
	assert.Equal(t, Priority(1), Priority(1).Raise(1))
	assert.Equal(t, Priority(1), Priority(5).Raise(100))
	assert.Equal(t, Priority(1), NoPriority.Raise(27))

	// Non-positive steps change nothing.
	assert.Equal(t, Priority(7), Priority(7).Raise(0))
	assert.Equal(t, Priority(7), Priority(7).Raise(-3))
	assert.Equal(t, NoPriority, NoPriority.Raise(0))
}

func TestPriorityLower(t *testing.T) {
	// One step down from nothing lands on A.
	assert.Equal(t, Priority(1), NoPriority.Lower(1))
	assert.Equal(t, "A", NoPriority.Lower(1).String())

	assert.Equal(t, Priority(11), Priority(10).Lower(1))
	assert.Equal(t, "K", Priority(10).Lower(1).String())

	// Past Z the priority clears.
	assert.Equal(t, NoPriority, Priority(26).Lower(1))
	assert.Equal(t, NoPriority, Priority(2).Lower(100))

	// Non-positive steps change nothing.
	assert.Equal(t, Priority(7), Priority(7).Lower(0))
	assert.Equal(t, Priority(7), Priority(7).Lower(-3))
}

func TestTextValue(t *testing.T) {
	assert.Equal(t, "hello", Text("hello").String())
}
