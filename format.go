package tzfold

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tzfold/tzfold/civil"
)

// Format renders the instant t as seen in tz according to layout, a
// strftime-style directive string.
//
// Supported directives: %Y %C %y %m %d %e %j %H %I %p %M %S %a %A %b
// %h %B %u %w %z %Z %s %n %t %%, the composites %D %F %R %T %r, and
// the extended forms %Ez (offset with colon), %E#S (seconds with #
// fractional digits), %E*S (seconds with full precision) and %E#Y
// (year zero-padded to # characters). Anything else is copied through
// unchanged.
func Format(layout string, t time.Time, tz TimeZone) string {
	out, _ := formatLayout(layout, gatherFields(t, tz), false)
	return out
}

// Formatter carries formatting and parsing policy.
type Formatter struct {
	// Strict rejects unrecognized directives with a
	// FormatDirectiveError instead of passing them through.
	Strict bool
}

// Format is like the package-level Format under f's policy.
func (f Formatter) Format(layout string, t time.Time, tz TimeZone) (string, error) {
	return formatLayout(layout, gatherFields(t, tz), f.Strict)
}

// formatFields is everything a directive can print, computed once per
// call.
type formatFields struct {
	civil  civil.Time
	yday   int
	wday   time.Weekday
	offset int
	abbrev string
	unix   int64
	nanos  int
}

func gatherFields(t time.Time, tz TimeZone) formatFields {
	lk := tz.At(t)
	return formatFields{
		civil:  lk.Civil,
		yday:   lk.Civil.YearDay(),
		wday:   lk.Civil.Weekday(),
		offset: lk.Offset,
		abbrev: lk.Abbrev,
		unix:   t.Unix(),
		nanos:  t.Nanosecond(),
	}
}

func formatLayout(layout string, f formatFields, strict bool) (string, error) {
	layout = expandComposites(layout)
	var b strings.Builder
	b.Grow(len(layout))
	for i := 0; i < len(layout); {
		if layout[i] != '%' {
			b.WriteByte(layout[i])
			i++
			continue
		}
		dir := cutDirective(layout[i:])
		out, ok := applyDirective(dir, f)
		if !ok {
			if strict {
				return "", &FormatDirectiveError{Directive: dir}
			}
			out = dir
		}
		b.WriteString(out)
		i += len(dir)
	}
	return b.String(), nil
}

// cutDirective returns the directive token at the start of s, which is
// known to begin with '%'. Extended %E forms span the whole token; a
// trailing lone '%' comes back as itself.
func cutDirective(s string) string {
	if len(s) < 2 {
		return s
	}
	if s[1] != 'E' {
		return s[:2]
	}
	j := 2
	if j < len(s) && s[j] == '*' {
		j++
	} else {
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
	}
	if j < len(s) {
		j++
	}
	return s[:j]
}

func applyDirective(dir string, f formatFields) (string, bool) {
	if strings.HasPrefix(dir, "%E") {
		return applyExtended(dir, f)
	}
	if len(dir) != 2 {
		return "", false
	}
	cs := f.civil
	switch dir[1] {
	case 'Y':
		return strconv.FormatInt(cs.Year, 10), true
	case 'C':
		c := cs.Year / 100
		if cs.Year < 0 && cs.Year%100 != 0 {
			c--
		}
		return fmt.Sprintf("%02d", c), true
	case 'y':
		y := cs.Year % 100
		if y < 0 {
			y = -y
		}
		return pad2(int(y)), true
	case 'm':
		return pad2(cs.Month), true
	case 'd':
		return pad2(cs.Day), true
	case 'e':
		if cs.Day < 10 {
			return " " + strconv.Itoa(cs.Day), true
		}
		return strconv.Itoa(cs.Day), true
	case 'j':
		return fmt.Sprintf("%03d", f.yday), true
	case 'H':
		return pad2(cs.Hour), true
	case 'I':
		h := cs.Hour % 12
		if h == 0 {
			h = 12
		}
		return pad2(h), true
	case 'p':
		if cs.Hour < 12 {
			return "AM", true
		}
		return "PM", true
	case 'M':
		return pad2(cs.Minute), true
	case 'S':
		return pad2(cs.Second), true
	case 'a':
		return f.wday.String()[:3], true
	case 'A':
		return f.wday.String(), true
	case 'b', 'h':
		return time.Month(cs.Month).String()[:3], true
	case 'B':
		return time.Month(cs.Month).String(), true
	case 'u':
		if f.wday == time.Sunday {
			return "7", true
		}
		return strconv.Itoa(int(f.wday)), true
	case 'w':
		return strconv.Itoa(int(f.wday)), true
	case 'z':
		return formatOffset(f.offset, false), true
	case 'Z':
		return f.abbrev, true
	case 's':
		return strconv.FormatInt(f.unix, 10), true
	case 'n':
		return "\n", true
	case 't':
		return "\t", true
	case '%':
		return "%", true
	}
	return "", false
}

func applyExtended(dir string, f formatFields) (string, bool) {
	switch {
	case dir == "%Ez":
		return formatOffset(f.offset, true), true

	case dir == "%E*S":
		s := pad2(f.civil.Second)
		if f.nanos != 0 {
			frac := strings.TrimRight(fmt.Sprintf("%09d", f.nanos), "0")
			s += "." + frac
		}
		return s, true

	case strings.HasSuffix(dir, "Y"):
		width, err := strconv.Atoi(dir[2 : len(dir)-1])
		if err != nil {
			return "", false
		}
		return fmt.Sprintf("%0*d", width, f.civil.Year), true

	case strings.HasSuffix(dir, "S"):
		n, err := strconv.Atoi(dir[2 : len(dir)-1])
		if err != nil || n > 15 {
			return "", false
		}
		s := pad2(f.civil.Second)
		if n == 0 {
			return s, true
		}
		frac := fmt.Sprintf("%09d", f.nanos)
		if n <= 9 {
			frac = frac[:n]
		} else {
			frac += strings.Repeat("0", n-9)
		}
		return s + "." + frac, true
	}
	return "", false
}

// formatOffset renders seconds east of UTC as +hhmm, or +hh:mm with
// colon set. Residual seconds are dropped, matching strftime %z.
func formatOffset(sec int, colon bool) string {
	sign := byte('+')
	if sec < 0 {
		sign, sec = '-', -sec
	}
	h, m := sec/3600, sec/60%60
	if colon {
		return fmt.Sprintf("%c%02d:%02d", sign, h, m)
	}
	return fmt.Sprintf("%c%02d%02d", sign, h, m)
}

// expandComposites rewrites compound directives into their primitive
// expansions so formatting and parsing share one vocabulary.
func expandComposites(layout string) string {
	if !strings.Contains(layout, "%") {
		return layout
	}
	var b strings.Builder
	b.Grow(len(layout))
	for i := 0; i < len(layout); {
		if layout[i] != '%' || i+1 == len(layout) {
			b.WriteByte(layout[i])
			i++
			continue
		}
		switch layout[i+1] {
		case 'D':
			b.WriteString("%m/%d/%y")
		case 'F':
			b.WriteString("%Y-%m-%d")
		case 'R':
			b.WriteString("%H:%M")
		case 'T':
			b.WriteString("%H:%M:%S")
		case 'r':
			b.WriteString("%I:%M:%S %p")
		default:
			b.WriteByte('%')
			b.WriteByte(layout[i+1])
		}
		i += 2
	}
	return b.String()
}

func pad2(v int) string { return fmt.Sprintf("%02d", v) }
