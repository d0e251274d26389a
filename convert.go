package tzfold

import (
	"time"

	"github.com/tzfold/tzfold/civil"
)

// TimeLookup describes how a zone renders one instant: the wall-clock
// reading plus the offset, daylight flag and abbreviation in effect.
type TimeLookup struct {
	Civil  civil.Time
	Offset int // seconds east of UTC
	IsDST  bool
	Abbrev string
}

// LookupKind classifies how a civil time maps onto instants in a zone.
type LookupKind int

const (
	// Unique means exactly one instant displays the civil time.
	Unique LookupKind = iota
	// Skipped means no instant displays it: the wall clock jumped over
	// it at a transition.
	Skipped
	// Repeated means two instants display it: the wall clock passed it
	// twice around a transition.
	Repeated
)

func (k LookupKind) String() string {
	switch k {
	case Unique:
		return "unique"
	case Skipped:
		return "skipped"
	case Repeated:
		return "repeated"
	default:
		return "unknown"
	}
}

// CivilLookup is the complete answer to "when did the wall clock read
// cs". Pre uses the offset in effect before the transition in play,
// Post the offset after it, and Trans is the transition instant itself.
//
// For Unique all three are the same instant. For Repeated, Pre is the
// earlier occurrence and Post the later, with Pre < Trans <= Post. For
// Skipped, none of the instants displays cs; they bracket the gap with
// Post <= Trans <= Pre and Trans is the natural substitute.
type CivilLookup struct {
	Kind LookupKind

	Pre   time.Time
	Trans time.Time
	Post  time.Time
}

// At describes the instant t as seen in z. Sub-second components of t
// do not affect the result.
func (z TimeZone) At(t time.Time) TimeLookup {
	seg := z.get().lookup(t.Unix())
	return TimeLookup{
		Civil:  civil.FromUnix(satAdd(t.Unix(), int64(seg.typ.Offset))),
		Offset: seg.typ.Offset,
		IsDST:  seg.typ.IsDST,
		Abbrev: seg.typ.Abbrev,
	}
}

// FromCivil maps a civil time onto the instants that display it in z.
// cs is normalized first. A RangeError means the normalized civil time
// has no representable instant in any offset.
func (z TimeZone) FromCivil(cs civil.Time) (CivilLookup, error) {
	cs = cs.Normalize()
	u, ok := cs.Unix()
	if !ok {
		return CivilLookup{}, &RangeError{Civil: cs}
	}
	impl := z.get()

	// Aim at the segment holding the civil reading taken as UTC, then
	// re-aim with the offset found there. Offsets are tiny next to
	// segment lengths, so this settles within a few steps.
	seg := impl.lookup(u)
	for i := 0; i < 3; i++ {
		next := impl.lookup(satSub(u, int64(seg.typ.Offset)))
		if next == seg {
			break
		}
		seg = next
	}

	segs := make([]segment, 0, 3)
	if prev, ok := impl.prevSegment(seg); ok {
		segs = append(segs, prev)
	}
	segs = append(segs, seg)
	if next, ok := impl.nextSegment(seg); ok {
		segs = append(segs, next)
	}

	// A candidate is a segment that really contains "u shifted by its
	// own offset". One candidate is a unique reading, two a repeated
	// one. The final representable second counts as inside the last
	// segment.
	type candidate struct {
		seg segment
		at  int64
	}
	var cands []candidate
	for _, s := range segs {
		at := satSub(u, int64(s.typ.Offset))
		if s.start <= at && (at < s.end || at == omega && s.end == omega) {
			cands = append(cands, candidate{s, at})
		}
	}

	switch len(cands) {
	case 1:
		t := instant(cands[0].at)
		return CivilLookup{Kind: Unique, Pre: t, Trans: t, Post: t}, nil

	case 0:
		// The reading fell in a gap. Find the adjacent pair whose
		// transition skipped it.
		for i := 0; i+1 < len(segs); i++ {
			a, b := segs[i], segs[i+1]
			lo := satAdd(b.start, int64(a.typ.Offset))
			hi := satAdd(b.start, int64(b.typ.Offset))
			if lo <= u && u < hi {
				return CivilLookup{
					Kind:  Skipped,
					Pre:   instant(satSub(u, int64(a.typ.Offset))),
					Trans: instant(b.start),
					Post:  instant(satSub(u, int64(b.typ.Offset))),
				}, nil
			}
		}
		// Only reachable when the reading saturates past the ends of
		// the instant range.
		return CivilLookup{}, &RangeError{Civil: cs}

	default:
		// Candidates come out ordered by instant: a fold's earlier
		// pass uses the larger offset.
		first, last := cands[0], cands[len(cands)-1]
		return CivilLookup{
			Kind:  Repeated,
			Pre:   instant(first.at),
			Trans: instant(last.seg.start),
			Post:  instant(last.at),
		}, nil
	}
}

// Time maps a civil time to a single instant: the sole instant when
// unique, the earlier occurrence when repeated, and the transition
// itself when skipped. The mapping is monotone in cs.
func (z TimeZone) Time(cs civil.Time) (time.Time, error) {
	cl, err := z.FromCivil(cs)
	if err != nil {
		return time.Time{}, err
	}
	if cl.Kind == Skipped {
		return cl.Trans, nil
	}
	return cl.Pre, nil
}

// Convert returns the civil time the wall clock in tz reads at t.
func Convert(t time.Time, tz TimeZone) civil.Time {
	return tz.At(t).Civil
}

// FromCivil maps cs to an instant in tz under the same policy as
// TimeZone.Time.
func FromCivil(cs civil.Time, tz TimeZone) (time.Time, error) {
	return tz.Time(cs)
}

// instant pins Unix seconds to a UTC time.Time so results compare and
// format deterministically.
func instant(sec int64) time.Time { return time.Unix(sec, 0).UTC() }
