// Package posix parses and evaluates POSIX TZ strings, the footer
// syntax TZif files use to describe time zone behavior past their last
// recorded transition.
//
// A TZ string names a standard time ("PST8"), optionally a daylight
// time with its own offset ("PST8PDT"), and optionally the pair of
// yearly rules governing when daylight time starts and ends
// ("PST8PDT,M3.2.0,M11.1.0"). Offsets in the string count hours west
// of Greenwich, so they are negated here into seconds east. Rule times
// accept the tzcode v3 extension of -167 to +167 hours.
package posix

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/tzfold/tzfold/civil"
)

// ErrInvalid reports a TZ string that does not parse.
var ErrInvalid = errors.New("posix: invalid TZ string")

// DateForm distinguishes the three POSIX transition-date syntaxes.
type DateForm int

const (
	// Julian is Jn: day n of the year, 1..365, never counting
	// February 29, so J60 is always March 1.
	Julian DateForm = iota
	// ZeroBased is n: day n of the year, 0..365, counting February 29.
	ZeroBased
	// MonthWeekDay is Mm.w.d: day-of-week d of week w in month m,
	// where week 5 means the last d of the month.
	MonthWeekDay
)

// RuleDate is one side of a DST rule: the day a transition happens and
// the local time it happens at.
type RuleDate struct {
	Form  DateForm
	N     int // day number for Julian and ZeroBased
	Month int // 1..12, MonthWeekDay only
	Week  int // 1..5, MonthWeekDay only
	Day   int // day of week, 0 = Sunday, MonthWeekDay only
	Time  int // seconds after local midnight; may be negative or beyond 24h
}

// Rule is a compiled TZ string.
type Rule struct {
	StdAbbrev string
	StdOffset int // seconds east of UTC
	DSTAbbrev string // "" when the rule has no daylight time
	DSTOffset int
	Start     RuleDate // daylight begins; valid only when DSTAbbrev != ""
	End       RuleDate // daylight ends

	raw string
}

const (
	minTime = math.MinInt64
	maxTime = math.MaxInt64
)

// Parse compiles a TZ string.
//
// When a daylight abbreviation is given without transition rules, the
// United States rules (second Sunday in March through first Sunday in
// November, both at 02:00) are assumed, matching common tzset practice.
func Parse(s string) (*Rule, error) {
	sc := scanner{s: s}
	r := &Rule{raw: s}

	var ok bool
	if r.StdAbbrev, ok = sc.name(); !ok {
		return nil, invalid(s, "standard abbreviation")
	}
	off, ok := sc.offset(24)
	if !ok {
		return nil, invalid(s, "standard offset")
	}
	r.StdOffset = -off // TZ strings count west as positive

	if sc.done() {
		return r, nil
	}

	if r.DSTAbbrev, ok = sc.name(); !ok {
		return nil, invalid(s, "daylight abbreviation")
	}
	if !sc.done() && sc.peek() != ',' {
		if off, ok = sc.offset(24); !ok {
			return nil, invalid(s, "daylight offset")
		}
		r.DSTOffset = -off
	} else {
		r.DSTOffset = r.StdOffset + 3600
	}

	if sc.done() {
		r.Start = RuleDate{Form: MonthWeekDay, Month: 3, Week: 2, Day: 0, Time: 2 * 3600}
		r.End = RuleDate{Form: MonthWeekDay, Month: 11, Week: 1, Day: 0, Time: 2 * 3600}
		return r, nil
	}

	if !sc.eat(',') {
		return nil, invalid(s, "transition rules")
	}
	if r.Start, ok = sc.ruleDate(); !ok {
		return nil, invalid(s, "start rule")
	}
	if !sc.eat(',') {
		return nil, invalid(s, "end rule")
	}
	if r.End, ok = sc.ruleDate(); !ok {
		return nil, invalid(s, "end rule")
	}
	if !sc.done() {
		return nil, invalid(s, "trailing characters")
	}
	return r, nil
}

// String returns the rule in its original TZ string form.
func (r *Rule) String() string { return r.raw }

// Extended reports whether either rule time lies outside the classic
// 00:00:00..24:59:59 range and therefore needs TZif version 3 syntax.
func (r *Rule) Extended() bool {
	if r.DSTAbbrev == "" {
		return false
	}
	for _, t := range [...]int{r.Start.Time, r.End.Time} {
		if t < 0 || t > 24*3600+59*60+59 {
			return true
		}
	}
	return false
}

// Lookup returns the local time type in effect at sec and the segment
// [start, end) of instants over which it holds. For rules without
// daylight time the segment spans all representable instants.
func (r *Rule) Lookup(sec int64) (abbrev string, offset int, isDST bool, start, end int64) {
	if r.DSTAbbrev == "" {
		return r.StdAbbrev, r.StdOffset, false, minTime, maxTime
	}

	year := civil.FromUnix(satAdd(sec, int64(r.StdOffset))).Year

	// Transition instants for the surrounding years, sorted. The window
	// is wide enough that sec always falls strictly inside it, even for
	// southern-hemisphere rules straddling the new year and rule times
	// pushed days across a year boundary.
	type edge struct {
		when  int64
		toDST bool
	}
	edges := make([]edge, 0, 8)
	for y := year - 2; y <= year+1; y++ {
		edges = append(edges,
			edge{r.transition(r.Start, y, r.StdOffset), true},
			edge{r.transition(r.End, y, r.DSTOffset), false},
		)
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].when < edges[j].when })

	for i := len(edges) - 1; i >= 0; i-- {
		if edges[i].when > sec {
			continue
		}
		end := maxTime
		if i+1 < len(edges) {
			end = edges[i+1].when
		}
		if edges[i].toDST {
			return r.DSTAbbrev, r.DSTOffset, true, edges[i].when, end
		}
		return r.StdAbbrev, r.StdOffset, false, edges[i].when, end
	}

	// sec precedes the whole window: the extreme negative edge of the
	// instant range. The state is the opposite of the first edge.
	if edges[0].toDST {
		return r.StdAbbrev, r.StdOffset, false, minTime, edges[0].when
	}
	return r.DSTAbbrev, r.DSTOffset, true, minTime, edges[0].when
}

// transition returns the Unix second at which the rule date fires in
// the given year. offBefore is the offset in effect before the
// transition; rule times are expressed in that local time.
func (r *Rule) transition(d RuleDate, year int64, offBefore int) int64 {
	month, day := d.resolve(year)
	sec, ok := civil.Time{Year: year, Month: month, Day: day, Second: d.Time}.Unix()
	if !ok {
		if year < 0 {
			return minTime
		}
		return maxTime
	}
	return sec - int64(offBefore)
}

// resolve turns a rule date into a concrete month and day for a year.
func (d RuleDate) resolve(year int64) (month, day int) {
	switch d.Form {
	case Julian:
		n := d.N
		if civil.IsLeap(year) && n >= 60 {
			n++
		}
		return yearDayToDate(year, n)
	case ZeroBased:
		return yearDayToDate(year, d.N+1)
	default:
		first := civil.Time{Year: year, Month: d.Month, Day: 1}.Weekday()
		day = 1 + (d.Day-int(first)+7)%7 + (d.Week-1)*7
		for day > civil.DaysInMonth(year, d.Month) {
			day -= 7
		}
		return d.Month, day
	}
}

func yearDayToDate(year int64, n int) (month, day int) {
	for m := 1; m <= 12; m++ {
		dim := civil.DaysInMonth(year, m)
		if n <= dim {
			return m, n
		}
		n -= dim
	}
	return 12, 31
}

func satAdd(a, b int64) int64 {
	s := a + b
	if b > 0 && s < a {
		return maxTime
	}
	if b < 0 && s > a {
		return minTime
	}
	return s
}

func invalid(s, what string) error {
	return fmt.Errorf("%w %q: bad %s", ErrInvalid, s, what)
}

// scanner is a cursor over a TZ string.
type scanner struct {
	s string
	i int
}

func (sc *scanner) done() bool { return sc.i >= len(sc.s) }

func (sc *scanner) peek() byte {
	if sc.done() {
		return 0
	}
	return sc.s[sc.i]
}

func (sc *scanner) eat(c byte) bool {
	if !sc.done() && sc.s[sc.i] == c {
		sc.i++
		return true
	}
	return false
}

// name parses a zone abbreviation: three or more alphabetic characters,
// or a bracket-quoted run of alphanumerics, '+' and '-'.
func (sc *scanner) name() (string, bool) {
	if sc.eat('<') {
		start := sc.i
		for !sc.done() && sc.peek() != '>' {
			c := sc.s[sc.i]
			if !isAlnum(c) && c != '+' && c != '-' {
				return "", false
			}
			sc.i++
		}
		if sc.done() || sc.i == start {
			return "", false
		}
		s := sc.s[start:sc.i]
		sc.i++ // '>'
		return s, true
	}
	start := sc.i
	for !sc.done() && isAlpha(sc.s[sc.i]) {
		sc.i++
	}
	if sc.i-start < 3 {
		return "", false
	}
	return sc.s[start:sc.i], true
}

// offset parses [+-]hh[:mm[:ss]] into seconds, hours limited to limit.
func (sc *scanner) offset(limit int) (int, bool) {
	sign := 1
	if sc.eat('-') {
		sign = -1
	} else {
		sc.eat('+')
	}
	h, ok := sc.number()
	if !ok || h > limit {
		return 0, false
	}
	sec := h * 3600
	if sc.eat(':') {
		m, ok := sc.number()
		if !ok || m > 59 {
			return 0, false
		}
		sec += m * 60
		if sc.eat(':') {
			s, ok := sc.number()
			if !ok || s > 59 {
				return 0, false
			}
			sec += s
		}
	}
	return sign * sec, true
}

func (sc *scanner) ruleDate() (RuleDate, bool) {
	var d RuleDate
	switch {
	case sc.eat('J'):
		d.Form = Julian
		n, ok := sc.number()
		if !ok || n < 1 || n > 365 {
			return d, false
		}
		d.N = n
	case sc.eat('M'):
		d.Form = MonthWeekDay
		var ok bool
		if d.Month, ok = sc.number(); !ok || d.Month < 1 || d.Month > 12 {
			return d, false
		}
		if !sc.eat('.') {
			return d, false
		}
		if d.Week, ok = sc.number(); !ok || d.Week < 1 || d.Week > 5 {
			return d, false
		}
		if !sc.eat('.') {
			return d, false
		}
		if d.Day, ok = sc.number(); !ok || d.Day > 6 {
			return d, false
		}
	default:
		d.Form = ZeroBased
		n, ok := sc.number()
		if !ok || n > 365 {
			return d, false
		}
		d.N = n
	}
	d.Time = 2 * 3600
	if sc.eat('/') {
		t, ok := sc.offset(167)
		if !ok {
			return d, false
		}
		d.Time = t
	}
	return d, true
}

func (sc *scanner) number() (int, bool) {
	start := sc.i
	n := 0
	for !sc.done() && sc.s[sc.i] >= '0' && sc.s[sc.i] <= '9' {
		n = n*10 + int(sc.s[sc.i]-'0')
		if n > 100000 {
			return 0, false
		}
		sc.i++
	}
	return n, sc.i > start
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isAlnum(c byte) bool {
	return isAlpha(c) || c >= '0' && c <= '9'
}
