package tzif

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Encode serializes a Zone to canonical TZif bytes: a version 1 block
// holding the transitions that fit in 32 bits, the full 64-bit block,
// and the footer TZ string. The output is readable by any TZif
// consumer and by Decode, which inverts it exactly.
//
// Zones carrying Version 3 or 4 keep that version octet (a footer
// using extended rule syntax requires it); everything else is written
// as version 2.
func Encode(z *Zone) ([]byte, error) {
	if err := validateForEncode(z); err != nil {
		return nil, err
	}

	pool, index, err := buildAbbrevPool(z.Types)
	if err != nil {
		return nil, err
	}

	version := byte('2')
	if z.Version >= 3 {
		version = byte('0' + z.Version)
	}

	// Legacy block: only transitions representable in 32 bits.
	var legacy []Transition
	for _, tx := range z.Trans {
		if tx.When >= math.MinInt32 && tx.When <= math.MaxInt32 {
			legacy = append(legacy, tx)
		}
	}

	var buf bytes.Buffer
	writeBlock(&buf, version, z.Types, legacy, pool, index, 4)
	writeBlock(&buf, version, z.Types, z.Trans, pool, index, 8)
	buf.WriteByte('\n')
	buf.WriteString(z.Extend)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func validateForEncode(z *Zone) error {
	if len(z.Types) == 0 {
		return fmt.Errorf("tzif: encode %s: no local time types", z.Name)
	}
	if len(z.Types) > 256 {
		return fmt.Errorf("tzif: encode %s: %d local time types exceed index range", z.Name, len(z.Types))
	}
	for i, ty := range z.Types {
		if ty.Offset <= math.MinInt32 || ty.Offset > math.MaxInt32 {
			return fmt.Errorf("tzif: encode %s: type %d offset %d out of range", z.Name, i, ty.Offset)
		}
		if strings.ContainsRune(ty.Abbrev, 0) {
			return fmt.Errorf("tzif: encode %s: type %d abbreviation contains NUL", z.Name, i)
		}
	}
	for i, tx := range z.Trans {
		if int(tx.Index) >= len(z.Types) {
			return fmt.Errorf("tzif: encode %s: transition %d type index %d out of range", z.Name, i, tx.Index)
		}
		if i > 0 && tx.When <= z.Trans[i-1].When {
			return fmt.Errorf("tzif: encode %s: transition times not increasing at %d", z.Name, i)
		}
	}
	if strings.ContainsAny(z.Extend, "\n\x00") {
		return fmt.Errorf("tzif: encode %s: footer contains forbidden byte", z.Name)
	}
	return nil
}

// buildAbbrevPool lays the abbreviations out as NUL-terminated strings,
// reusing exact duplicates, and maps each type to its pool offset.
func buildAbbrevPool(types []Type) (pool []byte, index []uint8, err error) {
	index = make([]uint8, len(types))
	offsets := make(map[string]int)
	for i, ty := range types {
		off, ok := offsets[ty.Abbrev]
		if !ok {
			off = len(pool)
			if off+len(ty.Abbrev) > math.MaxUint8 {
				return nil, nil, fmt.Errorf("tzif: abbreviation pool exceeds index range")
			}
			offsets[ty.Abbrev] = off
			pool = append(pool, ty.Abbrev...)
			pool = append(pool, 0)
		}
		index[i] = uint8(off)
	}
	return pool, index, nil
}

func writeBlock(buf *bytes.Buffer, version byte, types []Type, trans []Transition, pool []byte, index []uint8, size int) {
	buf.WriteString("TZif")
	buf.WriteByte(version)
	buf.Write(make([]byte, 15))

	var u32 [4]byte
	put := func(v uint32) {
		binary.BigEndian.PutUint32(u32[:], v)
		buf.Write(u32[:])
	}
	put(0) // isutcnt
	put(0) // isstdcnt
	put(0) // leapcnt
	put(uint32(len(trans)))
	put(uint32(len(types)))
	put(uint32(len(pool)))

	for _, tx := range trans {
		if size == 8 {
			var u64 [8]byte
			binary.BigEndian.PutUint64(u64[:], uint64(tx.When))
			buf.Write(u64[:])
		} else {
			put(uint32(int32(tx.When)))
		}
	}
	for _, tx := range trans {
		buf.WriteByte(tx.Index)
	}
	for i, ty := range types {
		put(uint32(int32(ty.Offset)))
		if ty.IsDST {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
		buf.WriteByte(index[i])
	}
	buf.Write(pool)
}
