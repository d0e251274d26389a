// Package tzif compiles TZif time zone rule data (RFC 8536 / RFC 9636)
// into an immutable in-memory form, and encodes that form back to
// canonical TZif bytes.
//
// Decode accepts versions 1 through 4: version 1 files carry only the
// 32-bit transition block, version 2+ files repeat the data in 64-bit
// form followed by a footer TZ string describing how to extrapolate
// past the last recorded transition. Decoding validates the whole file
// before returning, so a Zone is never partial: any structural defect
// yields an error wrapping ErrBadData.
package tzif

import (
	"errors"
	"fmt"
	"math"
)

// ErrBadData reports structurally invalid TZif input.
var ErrBadData = errors.New("tzif: malformed zone data")

// Type is one local time type: a UTC offset with its DST flag and
// abbreviation.
type Type struct {
	Offset int // seconds east of UTC
	IsDST  bool
	Abbrev string
}

// Transition marks the instant a zone switches to a new local time type.
type Transition struct {
	When  int64 // Unix seconds, strictly increasing within a zone
	Index uint8 // index into Zone.Types
}

// Zone is a compiled time zone rule set.
//
/// Types is interned: identical records are deduplicated at decode time
// and transition indices remapped onto the surviving table. Trans is
// strictly increasing by When. A Zone is never mutated after Decode and
// may be shared freely across goroutines.
type Zone struct {
	Name    string
	Version int          // TZif version the data carried, 1..4
	Types   []Type       // len >= 1
	Trans   []Transition // may be empty
	Extend  string       // footer TZ string, "" if none
}

// header holds the six block counts from a TZif header.
type header struct {
	isutcnt, isstdcnt, leapcnt int
	timecnt, typecnt, charcnt  int
}

// Decode parses TZif data into a Zone. The name is recorded on the
// Zone for diagnostics and is not derived from the data.
func Decode(name string, data []byte) (*Zone, error) {
	c := cursor{p: data}

	version, err := readPreamble(&c)
	if err != nil {
		return nil, err
	}
	h, ok := readHeader(&c)
	if !ok {
		return nil, fmt.Errorf("%w: truncated header", ErrBadData)
	}

	// Version 2+ repeats everything in 64-bit form. Skip the legacy
	// 32-bit block, check the second preamble, and re-read the counts:
	// the two blocks may differ.
	size := 4
	if version > 1 {
		c.skip(h.timecnt*4 + h.timecnt + h.typecnt*6 + h.charcnt + h.leapcnt*8 + h.isstdcnt + h.isutcnt)
		v2, err := readPreamble(&c)
		if err != nil {
			return nil, err
		}
		if v2 != version {
			return nil, fmt.Errorf("%w: version mismatch between blocks", ErrBadData)
		}
		if h, ok = readHeader(&c); !ok {
			return nil, fmt.Errorf("%w: truncated second header", ErrBadData)
		}
		size = 8
	}

	txtimes := cursor{p: c.read(h.timecnt * size)}
	txzones := c.read(h.timecnt)
	zonedata := cursor{p: c.read(h.typecnt * 6)}
	abbrevs := c.read(h.charcnt)
	c.skip(h.leapcnt * (size + 4))
	c.skip(h.isstdcnt)
	c.skip(h.isutcnt)
	if c.err {
		return nil, fmt.Errorf("%w: truncated data block", ErrBadData)
	}

	var extend string
	if version > 1 {
		if r := c.rest(); len(r) > 2 && r[0] == '\n' && r[len(r)-1] == '\n' {
			extend = string(r[1 : len(r)-1])
		}
	}

	if h.typecnt == 0 {
		return nil, fmt.Errorf("%w: no local time types", ErrBadData)
	}
	types := make([]Type, h.typecnt)
	for i := range types {
		off, ok := zonedata.big4()
		if !ok {
			return nil, fmt.Errorf("%w: truncated local time type record", ErrBadData)
		}
		if int32(off) == math.MinInt32 {
			return nil, fmt.Errorf("%w: UT offset out of range", ErrBadData)
		}
		types[i].Offset = int(int32(off))
		dst, _ := zonedata.one()
		types[i].IsDST = dst != 0
		idx, ok := zonedata.one()
		if !ok {
			return nil, fmt.Errorf("%w: truncated local time type record", ErrBadData)
		}
		if int(idx) >= len(abbrevs) {
			return nil, fmt.Errorf("%w: abbreviation index out of range", ErrBadData)
		}
		types[i].Abbrev = byteString(abbrevs[idx:])
	}

	trans := make([]Transition, 0, h.timecnt)
	for i := 0; i < h.timecnt; i++ {
		var when int64
		if size == 8 {
			w, _ := txtimes.big8()
			when = int64(w)
		} else {
			w, _ := txtimes.big4()
			when = int64(int32(w))
		}
		if i > 0 && when <= trans[i-1].When {
			return nil, fmt.Errorf("%w: transition times not increasing", ErrBadData)
		}
		if int(txzones[i]) >= len(types) {
			return nil, fmt.Errorf("%w: transition type index out of range", ErrBadData)
		}
		trans = append(trans, Transition{When: when, Index: txzones[i]})
	}

	types, trans = intern(types, trans)
	return &Zone{
		Name:    name,
		Version: version,
		Types:   types,
		Trans:   trans,
		Extend:  extend,
	}, nil
}

// readPreamble consumes the magic, version octet and 15 reserved bytes.
func readPreamble(c *cursor) (version int, err error) {
	if magic := c.read(4); string(magic) != "TZif" {
		return 0, fmt.Errorf("%w: bad magic", ErrBadData)
	}
	p := c.read(16)
	if c.err {
		return 0, fmt.Errorf("%w: truncated preamble", ErrBadData)
	}
	switch p[0] {
	case 0:
		return 1, nil
	case '2':
		return 2, nil
	case '3':
		return 3, nil
	case '4':
		return 4, nil
	}
	return 0, fmt.Errorf("%w: unknown version %q", ErrBadData, p[0])
}

func readHeader(c *cursor) (header, bool) {
	var h header
	for _, f := range []*int{&h.isutcnt, &h.isstdcnt, &h.leapcnt, &h.timecnt, &h.typecnt, &h.charcnt} {
		n, ok := c.big4()
		if !ok || int32(n) < 0 {
			return header{}, false
		}
		*f = int(n)
	}
	return h, true
}

// intern dedupes identical local time types and remaps transition
// indices onto the surviving table. First occurrences keep their
// relative order, preserving first-zone semantics.
func intern(types []Type, trans []Transition) ([]Type, []Transition) {
	remap := make([]uint8, len(types))
	kept := make([]Type, 0, len(types))
	seen := make(map[Type]uint8, len(types))
	for i, ty := range types {
		if j, ok := seen[ty]; ok {
			remap[i] = j
			continue
		}
		j := uint8(len(kept))
		seen[ty] = j
		kept = append(kept, ty)
		remap[i] = j
	}
	if len(kept) == len(types) {
		return types, trans
	}
	for i := range trans {
		trans[i].Index = remap[trans[i].Index]
	}
	return kept, trans
}

// cursor reads big-endian fields from a byte slice, latching an error
// state on the first short read.
type cursor struct {
	p   []byte
	err bool
}

func (c *cursor) read(n int) []byte {
	if len(c.p) < n {
		c.p = nil
		c.err = true
		return nil
	}
	b := c.p[:n]
	c.p = c.p[n:]
	return b
}

func (c *cursor) skip(n int) {
	c.read(n)
}

func (c *cursor) big4() (uint32, bool) {
	b := c.read(4)
	if b == nil {
		return 0, false
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), true
}

func (c *cursor) big8() (uint64, bool) {
	hi, ok := c.big4()
	if !ok {
		return 0, false
	}
	lo, ok := c.big4()
	if !ok {
		return 0, false
	}
	return uint64(hi)<<32 | uint64(lo), true
}

func (c *cursor) one() (byte, bool) {
	b := c.read(1)
	if b == nil {
		return 0, false
	}
	return b[0], true
}

func (c *cursor) rest() []byte {
	b := c.p
	c.p = nil
	return b
}

// byteString returns the string up to the first NUL.
func byteString(p []byte) string {
	for i, b := range p {
		if b == 0 {
			return string(p[:i])
		}
	}
	return string(p)
}
