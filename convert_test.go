package tzfold

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzfold/tzfold/civil"
)

func TestFromCivilUnique(t *testing.T) {
	tz := losAngeles(t)

	cl, err := tz.FromCivil(civil.Time{Year: 2011, Month: 1, Day: 15, Hour: 12})
	require.NoError(t, err)
	assert.Equal(t, Unique, cl.Kind)
	want := instant(1295121600) // 2011-01-15 20:00 UTC
	assert.Equal(t, want, cl.Pre)
	assert.Equal(t, want, cl.Trans)
	assert.Equal(t, want, cl.Post)
}

func TestFromCivilSkipped(t *testing.T) {
	tz := losAngeles(t)

	// 02:30 on 2011-03-13 never happened; clocks jumped 02:00 -> 03:00.
	cl, err := tz.FromCivil(civil.Time{Year: 2011, Month: 3, Day: 13, Hour: 2, Minute: 30})
	require.NoError(t, err)
	assert.Equal(t, Skipped, cl.Kind)
	assert.Equal(t, instant(1300012200), cl.Pre)  // 03:30 PDT
	assert.Equal(t, instant(spring2011), cl.Trans)
	assert.Equal(t, instant(1300008600), cl.Post) // 01:30 PST
	assert.True(t, !cl.Trans.Before(cl.Post) && !cl.Pre.Before(cl.Trans))
}

func TestFromCivilRepeated(t *testing.T) {
	tz := losAngeles(t)

	// 01:30 on 2011-11-06 happened twice, once in PDT and once in PST.
	cl, err := tz.FromCivil(civil.Time{Year: 2011, Month: 11, Day: 6, Hour: 1, Minute: 30})
	require.NoError(t, err)
	assert.Equal(t, Repeated, cl.Kind)
	assert.Equal(t, instant(1320568200), cl.Pre)  // 01:30 PDT
	assert.Equal(t, instant(fall2011), cl.Trans)
	assert.Equal(t, instant(1320571800), cl.Post) // 01:30 PST
	assert.True(t, cl.Pre.Before(cl.Trans) && !cl.Post.Before(cl.Trans))
}

func TestFromCivilBoundaries(t *testing.T) {
	tz := losAngeles(t)
	tests := []struct {
		name string
		cs   civil.Time
		kind LookupKind
	}{
		{"gap start is skipped", civil.Time{Year: 2011, Month: 3, Day: 13, Hour: 2}, Skipped},
		{"last second of gap is skipped", civil.Time{Year: 2011, Month: 3, Day: 13, Hour: 2, Minute: 59, Second: 59}, Skipped},
		{"gap end is unique", civil.Time{Year: 2011, Month: 3, Day: 13, Hour: 3}, Unique},
		{"second before gap is unique", civil.Time{Year: 2011, Month: 3, Day: 13, Hour: 1, Minute: 59, Second: 59}, Unique},
		{"fold start is repeated", civil.Time{Year: 2011, Month: 11, Day: 6, Hour: 1}, Repeated},
		{"last second of fold is repeated", civil.Time{Year: 2011, Month: 11, Day: 6, Hour: 1, Minute: 59, Second: 59}, Repeated},
		{"fold end is unique", civil.Time{Year: 2011, Month: 11, Day: 6, Hour: 2}, Unique},
		{"second before fold is unique", civil.Time{Year: 2011, Month: 11, Day: 6, Hour: 0, Minute: 59, Second: 59}, Unique},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cl, err := tz.FromCivil(tt.cs)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, cl.Kind, "got %v/%v/%v", cl.Pre.Unix(), cl.Trans.Unix(), cl.Post.Unix())
		})
	}
}

func TestFromCivilGapEdgesExact(t *testing.T) {
	tz := losAngeles(t)

	// At the exact start of the gap the pre-transition reading IS the
	// transition instant.
	cl, err := tz.FromCivil(civil.Time{Year: 2011, Month: 3, Day: 13, Hour: 2})
	require.NoError(t, err)
	assert.Equal(t, Skipped, cl.Kind)
	assert.Equal(t, instant(spring2011), cl.Pre)
	assert.Equal(t, instant(spring2011), cl.Trans)
	assert.Equal(t, instant(1300006800), cl.Post)

	// At the exact start of the fold the later occurrence IS the
	// transition instant.
	cl, err = tz.FromCivil(civil.Time{Year: 2011, Month: 11, Day: 6, Hour: 1})
	require.NoError(t, err)
	assert.Equal(t, Repeated, cl.Kind)
	assert.Equal(t, instant(1320566400), cl.Pre)
	assert.Equal(t, instant(fall2011), cl.Trans)
	assert.Equal(t, instant(fall2011), cl.Post)
}

func TestFromCivilNormalizes(t *testing.T) {
	tz := losAngeles(t)

	// 2011-02-29 does not exist; it normalizes to March 1.
	cl, err := tz.FromCivil(civil.Time{Year: 2011, Month: 2, Day: 29, Hour: 12})
	require.NoError(t, err)
	require.Equal(t, Unique, cl.Kind)
	assert.Equal(t, civil.Time{Year: 2011, Month: 3, Day: 1, Hour: 12}, Convert(cl.Pre, tz))
}

func TestFromCivilFooterYears(t *testing.T) {
	tz := losAngeles(t)

	// The 2012 gap exists only through the footer rule.
	cl, err := tz.FromCivil(civil.Time{Year: 2012, Month: 3, Day: 11, Hour: 2, Minute: 30})
	require.NoError(t, err)
	assert.Equal(t, Skipped, cl.Kind)
	assert.Equal(t, instant(spring2012), cl.Trans)
}

func TestFromCivilRangeError(t *testing.T) {
	tz := losAngeles(t)

	_, err := tz.FromCivil(civil.Time{Year: 1 << 50})
	var rangeErr *RangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, int64(1<<50), rangeErr.Civil.Year)
}

func TestTimePolicy(t *testing.T) {
	tz := losAngeles(t)

	// Unique: the one instant.
	got, err := tz.Time(civil.Time{Year: 2011, Month: 3, Day: 13, Hour: 3})
	require.NoError(t, err)
	assert.Equal(t, instant(spring2011), got)

	// Skipped: the transition.
	got, err = tz.Time(civil.Time{Year: 2011, Month: 3, Day: 13, Hour: 2, Minute: 30})
	require.NoError(t, err)
	assert.Equal(t, instant(spring2011), got)

	// Repeated: the earlier occurrence.
	got, err = tz.Time(civil.Time{Year: 2011, Month: 11, Day: 6, Hour: 1, Minute: 30})
	require.NoError(t, err)
	assert.Equal(t, instant(1320568200), got)
}

func TestTimeMonotonic(t *testing.T) {
	tz := losAngeles(t)

	check := func(month, day int) {
		prev, err := tz.Time(civil.Time{Year: 2011, Month: month, Day: day})
		require.NoError(t, err)
		for m := 1; m <= 4*60; m++ {
			cs := civil.Time{Year: 2011, Month: month, Day: day, Minute: m}
			got, err := tz.Time(cs)
			require.NoError(t, err)
			require.False(t, got.Before(prev), "civil %s mapped backwards", cs.Normalize())
			prev = got
		}
	}
	check(3, 13)  // across the gap
	check(11, 6)  // across the fold
}

func TestRoundTripAllKinds(t *testing.T) {
	tz := losAngeles(t)

	secs := []int64{
		1293840000,      // midwinter
		spring2011 - 1,  // last PST second
		spring2011,      // first PDT second
		1309478400,      // midsummer
		fall2011 - 1800, // first pass through the fold
		fall2011,        // second pass begins
		fall2011 + 1800, // second pass through the fold
		spring2012,      // footer territory
	}
	for _, sec := range secs {
		u := time.Unix(sec, 0).UTC()
		cl, err := tz.FromCivil(Convert(u, tz))
		require.NoError(t, err)
		switch cl.Kind {
		case Unique:
			assert.Equal(t, u, cl.Pre, "sec %d", sec)
		case Repeated:
			assert.True(t, u.Equal(cl.Pre) || u.Equal(cl.Post), "sec %d not among %v/%v", sec, cl.Pre.Unix(), cl.Post.Unix())
		default:
			t.Fatalf("sec %d: instant round-tripped to %v", sec, cl.Kind)
		}
	}
}

func TestUTCIdentity(t *testing.T) {
	tz := UTC()
	for _, sec := range []int64{-62135596800, -1, 0, 1, 946684800, 253402300799} {
		cs := Convert(time.Unix(sec, 0), tz)
		u, ok := cs.Unix()
		require.True(t, ok)
		assert.Equal(t, sec, u)

		cl, err := tz.FromCivil(cs)
		require.NoError(t, err)
		assert.Equal(t, Unique, cl.Kind)
		assert.Equal(t, instant(sec), cl.Trans)
	}
}

func TestFreeFunctions(t *testing.T) {
	tz := losAngeles(t)

	cs := Convert(time.Unix(spring2011, 0), tz)
	assert.Equal(t, civil.Time{Year: 2011, Month: 3, Day: 13, Hour: 3}, cs)

	got, err := FromCivil(cs, tz)
	require.NoError(t, err)
	assert.Equal(t, instant(spring2011), got)

	_, err = FromCivil(civil.Time{Year: 1 << 50}, tz)
	var rangeErr *RangeError
	assert.True(t, errors.As(err, &rangeErr))
}

func TestLookupKindString(t *testing.T) {
	assert.Equal(t, "unique", Unique.String())
	assert.Equal(t, "skipped", Skipped.String())
	assert.Equal(t, "repeated", Repeated.String())
	assert.Equal(t, "unknown", LookupKind(42).String())
}
