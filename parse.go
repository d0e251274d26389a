package tzfold

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tzfold/tzfold/civil"
)

// Parse interprets value according to layout as a time in tz,
// inverting Format. Fields absent from the layout default to
// 1970-01-01 00:00:00.
//
// An explicit offset (%z or %Ez) pins the instant directly. Otherwise
// an abbreviation (%Z) the zone associates with exactly one offset
// does. Otherwise the civil fields are mapped through tz, with skipped
// readings landing on the transition and repeated readings taking
// their earlier occurrence.
func Parse(layout, value string, tz TimeZone) (time.Time, error) {
	return parseLayout(layout, value, tz, false)
}

// Parse is like the package-level Parse under f's policy.
func (f Formatter) Parse(layout, value string, tz TimeZone) (time.Time, error) {
	return parseLayout(layout, value, tz, f.Strict)
}

func parseLayout(layout, value string, tz TimeZone, strict bool) (time.Time, error) {
	expanded := expandComposites(layout)
	p := &parser{layout: layout, value: value}
	for i := 0; i < len(expanded); {
		c := expanded[i]
		if c == '%' {
			dir := cutDirective(expanded[i:])
			if err := p.consume(dir, strict); err != nil {
				return time.Time{}, err
			}
			i += len(dir)
			continue
		}
		if isSpace(c) {
			p.skipSpace()
			i++
			continue
		}
		if p.pos < len(p.value) && p.value[p.pos] == c {
			p.pos++
			i++
			continue
		}
		return time.Time{}, p.errorf("expected %q", string(c))
	}
	if p.pos != len(p.value) {
		return time.Time{}, p.errorf("unparsed trailing data")
	}
	return p.assemble(tz)
}

// parser accumulates fields while walking layout and value in step.
type parser struct {
	layout string
	value  string
	pos    int

	year    int64
	century int64
	yy      int
	month   int
	day     int
	yday    int
	hour    int
	hour12  int
	pm      bool
	min     int
	sec     int
	nanos   int
	offset  int
	abbrev  string
	unix    int64

	haveYear, haveCentury, haveYY    bool
	haveMonth, haveDay, haveYday     bool
	haveHour, haveHour12             bool
	haveOffset, haveAbbrev, haveUnix bool
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{
		Layout:  p.layout,
		Value:   p.value,
		Pos:     p.pos,
		Message: fmt.Sprintf(format, args...),
	}
}

func (p *parser) consume(dir string, strict bool) error {
	if len(dir) > 2 {
		return p.consumeExtended(dir, strict)
	}
	if len(dir) < 2 {
		return p.literal(dir, strict)
	}
	switch dir[1] {
	case 'Y':
		v, err := p.signedNumber(18, "year")
		if err != nil {
			return err
		}
		p.year, p.haveYear = v, true
	case 'C':
		v, err := p.signedNumber(2, "century")
		if err != nil {
			return err
		}
		p.century, p.haveCentury = v, true
	case 'y':
		v, err := p.rangedNumber(2, 0, 99, "year of century")
		if err != nil {
			return err
		}
		p.yy, p.haveYY = v, true
	case 'm':
		v, err := p.rangedNumber(2, 1, 12, "month")
		if err != nil {
			return err
		}
		p.month, p.haveMonth = v, true
	case 'd', 'e':
		if p.pos < len(p.value) && p.value[p.pos] == ' ' {
			p.pos++
		}
		v, err := p.rangedNumber(2, 1, 31, "day")
		if err != nil {
			return err
		}
		p.day, p.haveDay = v, true
	case 'j':
		v, err := p.rangedNumber(3, 1, 366, "day of year")
		if err != nil {
			return err
		}
		p.yday, p.haveYday = v, true
	case 'H':
		v, err := p.rangedNumber(2, 0, 23, "hours")
		if err != nil {
			return err
		}
		p.hour, p.haveHour = v, true
	case 'I':
		v, err := p.rangedNumber(2, 1, 12, "hours")
		if err != nil {
			return err
		}
		p.hour12, p.haveHour12 = v, true
	case 'p':
		switch {
		case hasPrefixFold(p.value[p.pos:], "AM"):
			p.pm = false
			p.pos += 2
		case hasPrefixFold(p.value[p.pos:], "PM"):
			p.pm = true
			p.pos += 2
		default:
			return p.errorf("bad AM/PM")
		}
	case 'M':
		v, err := p.rangedNumber(2, 0, 59, "minutes")
		if err != nil {
			return err
		}
		p.min = v
	case 'S':
		v, err := p.rangedNumber(2, 0, 60, "seconds")
		if err != nil {
			return err
		}
		p.sec = v
	case 'a', 'A':
		return p.matchWeekdayName()
	case 'b', 'h', 'B':
		return p.matchMonthName()
	case 'u':
		if _, err := p.rangedNumber(1, 1, 7, "weekday"); err != nil {
			return err
		}
	case 'w':
		if _, err := p.rangedNumber(1, 0, 6, "weekday"); err != nil {
			return err
		}
	case 'z':
		return p.parseOffset()
	case 'Z':
		return p.parseAbbrev()
	case 's':
		v, err := p.signedNumber(19, "unix seconds")
		if err != nil {
			return err
		}
		p.unix, p.haveUnix = v, true
	case 'n', 't':
		p.skipSpace()
	case '%':
		if p.pos >= len(p.value) || p.value[p.pos] != '%' {
			return p.errorf("expected %q", "%")
		}
		p.pos++
	default:
		return p.literal(dir, strict)
	}
	return nil
}

func (p *parser) consumeExtended(dir string, strict bool) error {
	if dir == "%Ez" {
		return p.parseOffset()
	}
	if dir == "%E*S" {
		return p.parseSecondsWithFraction()
	}
	if len(dir) > 3 && dir[len(dir)-1] == 'S' {
		if _, err := strconv.Atoi(dir[2 : len(dir)-1]); err == nil {
			return p.parseSecondsWithFraction()
		}
	}
	if len(dir) > 3 && dir[len(dir)-1] == 'Y' {
		if _, err := strconv.Atoi(dir[2 : len(dir)-1]); err == nil {
			v, err := p.signedNumber(18, "year")
			if err != nil {
				return err
			}
			p.year, p.haveYear = v, true
			return nil
		}
	}
	return p.literal(dir, strict)
}

// literal matches the directive text itself against the input, the
// lenient fallback for directives with no parse meaning.
func (p *parser) literal(dir string, strict bool) error {
	if strict {
		return &FormatDirectiveError{Directive: dir}
	}
	if !strings.HasPrefix(p.value[p.pos:], dir) {
		return p.errorf("expected %q", dir)
	}
	p.pos += len(dir)
	return nil
}

func (p *parser) assemble(tz TimeZone) (time.Time, error) {
	if p.haveUnix {
		return time.Unix(p.unix, int64(p.nanos)).UTC(), nil
	}

	year := int64(1970)
	switch {
	case p.haveYear:
		year = p.year
	case p.haveCentury && p.haveYY:
		year = p.century*100 + int64(p.yy)
	case p.haveCentury:
		year = p.century * 100
	case p.haveYY:
		if p.yy >= 69 {
			year = int64(1900 + p.yy)
		} else {
			year = int64(2000 + p.yy)
		}
	}

	month, day := 1, 1
	if p.haveMonth {
		month = p.month
	}
	if p.haveDay {
		day = p.day
	}
	if p.haveYday && !p.haveMonth && !p.haveDay {
		n := p.yday
		month = 1
		for month < 12 {
			dim := civil.DaysInMonth(year, month)
			if n <= dim {
				break
			}
			n -= dim
			month++
		}
		day = n
	}

	hour := p.hour
	if !p.haveHour && p.haveHour12 {
		hour = p.hour12 % 12
		if p.pm {
			hour += 12
		}
	}

	cs := civil.Of(year, month, day, hour, p.min, p.sec)

	if p.haveOffset {
		u, ok := cs.Unix()
		if !ok {
			return time.Time{}, &RangeError{Civil: cs}
		}
		return time.Unix(satSub(u, int64(p.offset)), int64(p.nanos)).UTC(), nil
	}
	if p.haveAbbrev {
		if off, ok := tz.get().offsetForAbbrev(p.abbrev); ok {
			u, uok := cs.Unix()
			if !uok {
				return time.Time{}, &RangeError{Civil: cs}
			}
			return time.Unix(satSub(u, int64(off)), int64(p.nanos)).UTC(), nil
		}
		// Unknown or ambiguous abbreviation: fall through to the zone
		// conversion.
	}

	t, err := tz.Time(cs)
	if err != nil {
		return time.Time{}, err
	}
	return t.Add(time.Duration(p.nanos)), nil
}

// number reads 1..max decimal digits.
func (p *parser) number(max int, what string) (int, error) {
	start := p.pos
	n := 0
	for p.pos < len(p.value) && p.pos-start < max && isDigit(p.value[p.pos]) {
		n = n*10 + int(p.value[p.pos]-'0')
		p.pos++
	}
	if p.pos == start {
		return 0, p.errorf("missing %s", what)
	}
	return n, nil
}

func (p *parser) rangedNumber(maxDigits, lo, hi int, what string) (int, error) {
	v, err := p.number(maxDigits, what)
	if err != nil {
		return 0, err
	}
	if v < lo || v > hi {
		return 0, p.errorf("%s out of range", what)
	}
	return v, nil
}

// signedNumber reads an optionally signed run of up to max digits.
func (p *parser) signedNumber(max int, what string) (int64, error) {
	start := p.pos
	if p.pos < len(p.value) && (p.value[p.pos] == '+' || p.value[p.pos] == '-') {
		p.pos++
	}
	ds := p.pos
	for p.pos < len(p.value) && p.pos-ds < max && isDigit(p.value[p.pos]) {
		p.pos++
	}
	if p.pos == ds {
		p.pos = start
		return 0, p.errorf("missing %s", what)
	}
	v, err := strconv.ParseInt(p.value[start:p.pos], 10, 64)
	if err != nil {
		p.pos = start
		return 0, p.errorf("bad %s", what)
	}
	return v, nil
}

// tryFixedDigits reads exactly n digits, or leaves the position alone.
func (p *parser) tryFixedDigits(n int) (int, bool) {
	if p.pos+n > len(p.value) {
		return 0, false
	}
	v := 0
	for i := 0; i < n; i++ {
		c := p.value[p.pos+i]
		if !isDigit(c) {
			return 0, false
		}
		v = v*10 + int(c-'0')
	}
	p.pos += n
	return v, true
}

// parseOffset accepts Z, z, or a signed hh[:mm[:ss]] offset, with the
// colons optional either way.
func (p *parser) parseOffset() error {
	if p.pos < len(p.value) && (p.value[p.pos] == 'Z' || p.value[p.pos] == 'z') {
		p.pos++
		p.offset, p.haveOffset = 0, true
		return nil
	}
	if p.pos >= len(p.value) || (p.value[p.pos] != '+' && p.value[p.pos] != '-') {
		return p.errorf("missing offset sign")
	}
	sign := 1
	if p.value[p.pos] == '-' {
		sign = -1
	}
	p.pos++

	h, ok := p.tryFixedDigits(2)
	if !ok {
		return p.errorf("bad offset hours")
	}
	sec := h * 3600

	save := p.pos
	if p.pos < len(p.value) && p.value[p.pos] == ':' {
		p.pos++
	}
	if m, ok := p.tryFixedDigits(2); ok {
		sec += m * 60
		save = p.pos
		if p.pos < len(p.value) && p.value[p.pos] == ':' {
			p.pos++
		}
		if s, ok := p.tryFixedDigits(2); ok {
			sec += s
		} else {
			p.pos = save
		}
	} else {
		p.pos = save
	}

	p.offset, p.haveOffset = sign*sec, true
	return nil
}

func (p *parser) parseAbbrev() error {
	start := p.pos
	for p.pos < len(p.value) && isAbbrevChar(p.value[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return p.errorf("missing zone abbreviation")
	}
	p.abbrev, p.haveAbbrev = p.value[start:p.pos], true
	return nil
}

func (p *parser) parseSecondsWithFraction() error {
	v, err := p.rangedNumber(2, 0, 60, "seconds")
	if err != nil {
		return err
	}
	p.sec = v
	if p.pos+1 < len(p.value) && p.value[p.pos] == '.' && isDigit(p.value[p.pos+1]) {
		p.pos++
		start := p.pos
		for p.pos < len(p.value) && isDigit(p.value[p.pos]) {
			p.pos++
		}
		frac := p.value[start:p.pos]
		if len(frac) > 9 {
			frac = frac[:9]
		}
		n, _ := strconv.Atoi(frac)
		for i := len(frac); i < 9; i++ {
			n *= 10
		}
		p.nanos = n
	}
	return nil
}

func (p *parser) matchWeekdayName() error {
	rest := p.value[p.pos:]
	for d := time.Sunday; d <= time.Saturday; d++ {
		if name := d.String(); hasPrefixFold(rest, name) {
			p.pos += len(name)
			return nil
		}
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if hasPrefixFold(rest, d.String()[:3]) {
			p.pos += 3
			return nil
		}
	}
	return p.errorf("bad weekday name")
}

func (p *parser) matchMonthName() error {
	rest := p.value[p.pos:]
	for m := time.January; m <= time.December; m++ {
		if name := m.String(); hasPrefixFold(rest, name) {
			p.month, p.haveMonth = int(m), true
			p.pos += len(name)
			return nil
		}
	}
	for m := time.January; m <= time.December; m++ {
		if hasPrefixFold(rest, m.String()[:3]) {
			p.month, p.haveMonth = int(m), true
			p.pos += 3
			return nil
		}
	}
	return p.errorf("bad month name")
}

func (p *parser) skipSpace() {
	for p.pos < len(p.value) && isSpace(p.value[p.pos]) {
		p.pos++
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\v' || c == '\f' || c == '\r'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAbbrevChar(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || isDigit(c) || c == '+' || c == '-'
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
