// Package civil implements proleptic-Gregorian civil-time values.
//
// A civil time is a calendar timestamp (year, month, day, hour, minute,
// second) with no attached time zone. Relating civil times to absolute
// instants is the job of the tzfold package; this package provides only
// the value type and its calendar arithmetic.
//
// All operations use the proleptic Gregorian calendar: leap-year rules
// extend indefinitely in both directions and every day is exactly 86400
// seconds. Years follow astronomical numbering, so year 0 exists and is
// preceded by year -1.
package civil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Time is a civil timestamp with second resolution.
//
// Fields may hold out-of-range values; Normalize folds them into their
// canonical ranges, carrying overflow into the next larger unit. Methods
// that document it normalize their receiver first, so a denormalized
// value behaves as its normalized equivalent.
type Time struct {
	Year   int64
	Month  int // 1..12 when normalized
	Day    int // 1..31 when normalized
	Hour   int // 0..23 when normalized
	Minute int // 0..59 when normalized
	Second int // 0..59 when normalized
}

// Of returns the normalized civil time for the given fields.
// Out-of-range fields carry, so Of(2016, 10, 32, 12, 0, 0) is
// 2016-11-01T12:00:00 and Of(2016, 1, 1, 0, 0, -1) is
// 2015-12-31T23:59:59.
func Of(year int64, month, day, hour, minute, second int) Time {
	return Time{year, month, day, hour, minute, second}.Normalize()
}

// Normalize returns t with every field folded into its canonical range.
func (t Time) Normalize() Time {
	minute := int64(t.Minute) + floorDiv(int64(t.Second), 60)
	second := int64(t.Second) - 60*floorDiv(int64(t.Second), 60)
	hour := int64(t.Hour) + floorDiv(minute, 60)
	minute -= 60 * floorDiv(minute, 60)
	day := int64(t.Day) + floorDiv(hour, 24)
	hour -= 24 * floorDiv(hour, 24)

	year := t.Year + floorDiv(int64(t.Month)-1, 12)
	month := int(int64(t.Month) - 12*floorDiv(int64(t.Month)-1, 12))

	y, m, d := civilFromDays(daysFromCivil(year, month, 1) + day - 1)
	return Time{y, m, d, int(hour), int(minute), int(second)}
}

// Unix returns t as seconds since 1970-01-01T00:00:00. The boolean is
// false when the normalized value does not fit in an int64.
func (t Time) Unix() (int64, bool) {
	n := t.Normalize()
	if n.Year > yearLimit || n.Year < -yearLimit {
		return 0, false
	}
	days := daysFromCivil(n.Year, n.Month, n.Day)
	if days > maxDays || days < minDays {
		return 0, false
	}
	return days*secPerDay + int64(n.Hour)*3600 + int64(n.Minute)*60 + int64(n.Second), true
}

// FromUnix returns the civil time for the given seconds since
// 1970-01-01T00:00:00. It is total over int64.
func FromUnix(sec int64) Time {
	days := floorDiv(sec, secPerDay)
	rem := sec - days*secPerDay
	y, m, d := civilFromDays(days)
	return Time{y, m, d, int(rem / 3600), int(rem / 60 % 60), int(rem % 60)}
}

// Weekday returns the day of the week.
func (t Time) Weekday() time.Weekday {
	n := t.Normalize()
	// 1970-01-01 was a Thursday.
	wd := (daysFromCivil(n.Year, n.Month, n.Day) + 4) % 7
	if wd < 0 {
		wd += 7
	}
	return time.Weekday(wd)
}

// YearDay returns the day of the year, 1..366.
func (t Time) YearDay() int {
	n := t.Normalize()
	return int(daysFromCivil(n.Year, n.Month, n.Day)-daysFromCivil(n.Year, 1, 1)) + 1
}

// Compare orders two civil times chronologically: -1 if t is earlier
// than u, 0 if equal, +1 if later. Both are normalized first.
func (t Time) Compare(u Time) int {
	a, b := t.Normalize(), u.Normalize()
	for _, p := range [...][2]int64{
		{a.Year, b.Year},
		{int64(a.Month), int64(b.Month)},
		{int64(a.Day), int64(b.Day)},
		{int64(a.Hour), int64(b.Hour)},
		{int64(a.Minute), int64(b.Minute)},
		{int64(a.Second), int64(b.Second)},
	} {
		if p[0] < p[1] {
			return -1
		}
		if p[0] > p[1] {
			return 1
		}
	}
	return 0
}

// Before reports whether t is chronologically earlier than u.
func (t Time) Before(u Time) bool { return t.Compare(u) < 0 }

// After reports whether t is chronologically later than u.
func (t Time) After(u Time) bool { return t.Compare(u) > 0 }

// String returns the timestamp in the form 2006-01-02T15:04:05.
// Years outside 0..9999 widen as needed and keep their sign.
func (t Time) String() string {
	n := t.Normalize()
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d",
		n.Year, n.Month, n.Day, n.Hour, n.Minute, n.Second)
}

// Parse reads a timestamp in the form produced by String. The date and
// time parts may be separated by 'T' or a single space, and the time
// part may be omitted (midnight). Fields are range-checked, not
// normalized: "2016-13-01" is an error, not 2017-01-01.
func Parse(s string) (Time, error) {
	date, clock, hasClock := cutTimestamp(s)

	neg := strings.HasPrefix(date, "-")
	if neg {
		date = date[1:]
	}
	dp := strings.Split(date, "-")
	if len(dp) != 3 {
		return Time{}, parseErr(s, "want YYYY-MM-DD date")
	}
	year, err := strconv.ParseInt(dp[0], 10, 64)
	if err != nil {
		return Time{}, parseErr(s, "bad year")
	}
	if neg {
		year = -year
	}
	month, err := parseField(dp[1], 1, 12)
	if err != nil {
		return Time{}, parseErr(s, "bad month")
	}
	day, err := parseField(dp[2], 1, DaysInMonth(year, month))
	if err != nil {
		return Time{}, parseErr(s, "bad day")
	}

	t := Time{Year: year, Month: month, Day: day}
	if !hasClock {
		return t, nil
	}
	cp := strings.Split(clock, ":")
	if len(cp) != 3 {
		return Time{}, parseErr(s, "want HH:MM:SS time")
	}
	if t.Hour, err = parseField(cp[0], 0, 23); err != nil {
		return Time{}, parseErr(s, "bad hour")
	}
	if t.Minute, err = parseField(cp[1], 0, 59); err != nil {
		return Time{}, parseErr(s, "bad minute")
	}
	if t.Second, err = parseField(cp[2], 0, 59); err != nil {
		return Time{}, parseErr(s, "bad second")
	}
	return t, nil
}

// IsLeap reports whether year is a Gregorian leap year.
func IsLeap(year int64) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the length in days of the given month, 1..12.
func DaysInMonth(year int64, month int) int {
	if month == 2 && IsLeap(year) {
		return 29
	}
	return monthDays[month-1]
}

const (
	secPerDay = 86400

	// Beyond this many years the day count cannot contribute a
	// representable Unix second; guarding here also keeps the era
	// arithmetic below free of intermediate overflow.
	yearLimit = int64(1) << 45

	maxDays = (1<<63 - 1 - (secPerDay - 1)) / secPerDay
	minDays = (-1 << 63) / secPerDay
)

var monthDays = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// daysFromCivil returns the day count from 1970-01-01 to year-month-day
// using era decomposition (400-year cycles of 146097 days). Exact over
// the full proleptic range.
func daysFromCivil(y int64, m, d int) int64 {
	if m <= 2 {
		y--
	}
	era := floorDiv(y, 400)
	yoe := y - era*400 // [0, 399]
	mp := m - 3
	if m <= 2 {
		mp = m + 9
	}
	doy := int64(153*mp+2)/5 + int64(d) - 1  // [0, 365]
	doe := yoe*365 + yoe/4 - yoe/100 + doy   // [0, 146096]
	return era*146097 + doe - 719468
}

// civilFromDays inverts daysFromCivil.
func civilFromDays(z int64) (y int64, m, d int) {
	z += 719468
	era := floorDiv(z, 146097)
	doe := z - era*146097                                  // [0, 146096]
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365 // [0, 399]
	y = yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100) // [0, 365]
	mp := (5*doy + 2) / 153                  // [0, 11]
	d = int(doy - (153*mp+2)/5 + 1)          // [1, 31]
	m = int(mp)
	if mp < 10 {
		m += 3
	} else {
		m -= 9
	}
	if m <= 2 {
		y++
	}
	return y, m, d
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// cutTimestamp splits a timestamp into date and clock parts. The
// leading character is never a separator, so negative years survive.
func cutTimestamp(s string) (date, clock string, hasClock bool) {
	for i := 1; i < len(s); i++ {
		if s[i] == 'T' || s[i] == ' ' {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

func parseField(s string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("value %d out of range [%d, %d]", n, lo, hi)
	}
	return n, nil
}

func parseErr(s, msg string) error {
	return fmt.Errorf("civil: cannot parse %q: %s", s, msg)
}
