package tzfold

import (
	"log/slog"
	"math"

	"github.com/tzfold/tzfold/internal/posix"
	"github.com/tzfold/tzfold/internal/tzif"
)

// TimeZone is an immutable handle on one time zone's rules. The zero
// value behaves as UTC. Copies share the underlying rules, so a
// TimeZone is passed by value and is safe for concurrent use.
type TimeZone struct {
	impl *zoneImpl
}

// zoneImpl holds decoded zone data plus everything derived from it at
// load time. It is never mutated after construction.
type zoneImpl struct {
	data      *tzif.Zone
	extend    *posix.Rule // footer rule, nil when absent or unparseable
	firstZone int         // type index in effect before the first transition
}

var utcImpl = &zoneImpl{
	data: &tzif.Zone{
		Name:  "UTC",
		Types: []tzif.Type{{Offset: 0, Abbrev: "UTC"}},
	},
}

func (z TimeZone) get() *zoneImpl {
	if z.impl == nil {
		return utcImpl
	}
	return z.impl
}

func newZoneImpl(data *tzif.Zone) *zoneImpl {
	impl := &zoneImpl{data: data}
	if data.Extend != "" {
		rule, err := posix.Parse(data.Extend)
		if err != nil {
			// A bad footer degrades to last-transition behavior
			// rather than failing the whole zone.
			slog.Warn("ignoring unparseable TZ footer",
				"zone", data.Name,
				"footer", data.Extend,
				"error", err)
		} else {
			impl.extend = rule
		}
	}
	impl.firstZone = firstZoneIndex(data)
	return impl
}

// UTC returns the Coordinated Universal Time zone, equivalent to the
// TimeZone zero value.
func UTC() TimeZone { return TimeZone{} }

// FixedZone returns a zone whose offset from UTC is constant for all
// instants. offset is in seconds east of UTC and name doubles as the
// abbreviation.
func FixedZone(name string, offset int) TimeZone {
	return TimeZone{impl: newZoneImpl(&tzif.Zone{
		Name:  name,
		Types: []tzif.Type{{Offset: offset, Abbrev: name}},
	})}
}

// Name returns the zone's name, such as "America/Los_Angeles".
func (z TimeZone) Name() string { return z.get().data.Name }

func (z TimeZone) String() string { return z.Name() }

// Instants before every representable time and after every
// representable time bound the first and last segments.
const (
	alpha = math.MinInt64
	omega = math.MaxInt64
)

// segment is a maximal half-open run of instants [start, end) governed
// by a single time type. The segments of a zone tile the entire int64
// second range.
type segment struct {
	typ   tzif.Type
	start int64
	end   int64
}

// lookup returns the segment containing sec.
func (z *zoneImpl) lookup(sec int64) segment {
	data := z.data
	if len(data.Trans) == 0 {
		if z.extend != nil {
			return z.extendSegment(sec, alpha)
		}
		return segment{typ: data.Types[z.firstZone], start: alpha, end: omega}
	}

	if sec < data.Trans[0].When {
		return segment{typ: data.Types[z.firstZone], start: alpha, end: data.Trans[0].When}
	}

	// Last transition at or before sec: Trans[lo].When <= sec and
	// either hi == len(Trans) or sec < Trans[hi].When.
	lo, hi := 0, len(data.Trans)
	for hi-lo > 1 {
		m := lo + (hi-lo)/2
		if data.Trans[m].When <= sec {
			lo = m
		} else {
			hi = m
		}
	}

	if hi == len(data.Trans) && z.extend != nil {
		return z.extendSegment(sec, data.Trans[lo].When)
	}

	end := omega
	if hi < len(data.Trans) {
		end = data.Trans[hi].When
	}
	return segment{typ: data.Types[data.Trans[lo].Index], start: data.Trans[lo].When, end: end}
}

// extendSegment consults the footer rule for instants at or past the
// last recorded transition. floor clamps the segment start so the rule
// never claims instants owned by recorded transitions.
func (z *zoneImpl) extendSegment(sec, floor int64) segment {
	abbrev, offset, isDST, start, end := z.extend.Lookup(sec)
	if start < floor {
		start = floor
	}
	return segment{
		typ:   tzif.Type{Offset: offset, IsDST: isDST, Abbrev: abbrev},
		start: start,
		end:   end,
	}
}

// prevSegment returns the segment immediately before s. The second
// result is false when s already starts at the beginning of time.
func (z *zoneImpl) prevSegment(s segment) (segment, bool) {
	if s.start == alpha {
		return segment{}, false
	}
	return z.lookup(s.start - 1), true
}

// nextSegment returns the segment immediately after s. The second
// result is false when s already runs to the end of time.
func (z *zoneImpl) nextSegment(s segment) (segment, bool) {
	if s.end == omega {
		return segment{}, false
	}
	return z.lookup(s.end), true
}

// firstZoneIndex picks the type index in effect before the first
// transition, by the tzfile conventions: type 0 if no transition refers
// to it, otherwise the first non-daylight type preceding a daylight
// first transition, otherwise the first non-daylight type at all,
// otherwise type 0.
func firstZoneIndex(data *tzif.Zone) int {
	zeroUsed := false
	for _, tr := range data.Trans {
		if tr.Index == 0 {
			zeroUsed = true
			break
		}
	}
	if !zeroUsed {
		return 0
	}

	if len(data.Trans) > 0 && data.Types[data.Trans[0].Index].IsDST {
		for i := int(data.Trans[0].Index) - 1; i >= 0; i-- {
			if !data.Types[i].IsDST {
				return i
			}
		}
	}

	for i := range data.Types {
		if !data.Types[i].IsDST {
			return i
		}
	}
	return 0
}

// offsetForAbbrev reports the offset a zone associates with an
// abbreviation, when that association is unambiguous across the zone's
// types and footer rule.
func (z *zoneImpl) offsetForAbbrev(name string) (int, bool) {
	offset, found := 0, false
	consider := func(abbrev string, off int) bool {
		if abbrev != name {
			return true
		}
		if found && off != offset {
			return false
		}
		offset, found = off, true
		return true
	}
	for _, typ := range z.data.Types {
		if !consider(typ.Abbrev, typ.Offset) {
			return 0, false
		}
	}
	if r := z.extend; r != nil {
		if !consider(r.StdAbbrev, r.StdOffset) {
			return 0, false
		}
		if r.DSTAbbrev != "" && !consider(r.DSTAbbrev, r.DSTOffset) {
			return 0, false
		}
	}
	return offset, found
}

func satAdd(a, b int64) int64 {
	s := a + b
	if b > 0 && s < a {
		return omega
	}
	if b < 0 && s > a {
		return alpha
	}
	return s
}

func satSub(a, b int64) int64 {
	d := a - b
	if b < 0 && d < a {
		return omega
	}
	if b > 0 && d > a {
		return alpha
	}
	return d
}
