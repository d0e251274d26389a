package civil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnixKnownEpochs(t *testing.T) {
	tests := []struct {
		name string
		ct   Time
		sec  int64
	}{
		{"unix epoch", Of(1970, 1, 1, 0, 0, 0), 0},
		{"one second in", Of(1970, 1, 1, 0, 0, 1), 1},
		{"windows epoch", Of(1601, 1, 1, 0, 0, 0), -11644473600},
		{"common era epoch", Of(1, 1, 1, 0, 0, 0), -62135596800},
		{"year zero", Of(0, 1, 1, 0, 0, 0), -62167219200},
		{"2011 new year", Of(2011, 1, 1, 0, 0, 0), 1293840000},
		{"2011 march 13", Of(2011, 3, 13, 0, 0, 0), 1299974400},
		{"2011 november 6", Of(2011, 11, 6, 0, 0, 0), 1320537600},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sec, ok := tt.ct.Unix()
			require.True(t, ok)
			assert.Equal(t, tt.sec, sec)
			assert.Equal(t, tt.ct, FromUnix(tt.sec))
		})
	}
}

func TestUnixRoundTrip(t *testing.T) {
	secs := []int64{
		0, 1, -1, 59, 60, 86399, 86400, -86400,
		951868800,      // 2000-03-01T00:00:00
		1299983400,     // 2011-03-13T02:30:00
		-62135596800,   // 0001-01-01
		-62167219200,   // 0000-01-01
		253402300799,   // 9999-12-31T23:59:59
		-377705116800,  // deep past
		32503680000,    // 3000-01-01
	}
	for _, sec := range secs {
		ct := FromUnix(sec)
		got, ok := ct.Unix()
		require.True(t, ok, "sec=%d", sec)
		assert.Equal(t, sec, got, "round trip of %d via %s", sec, ct)
	}
}

func TestUnixOverflow(t *testing.T) {
	_, ok := Time{Year: 300000000000, Month: 1, Day: 1}.Unix()
	assert.False(t, ok, "year beyond the int64 second line")

	_, ok = Time{Year: -300000000000, Month: 1, Day: 1}.Unix()
	assert.False(t, ok)

	_, ok = Time{Year: 1 << 50, Month: 1, Day: 1}.Unix()
	assert.False(t, ok, "year beyond the era guard")

	_, ok = Time{Year: 292277026597, Month: 1, Day: 1}.Unix()
	assert.False(t, ok, "just past the last representable year")
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Time
		want Time
	}{
		{"already normal", Time{2016, 10, 31, 12, 0, 0}, Time{2016, 10, 31, 12, 0, 0}},
		{"day carry", Time{2016, 10, 32, 12, 0, 0}, Time{2016, 11, 1, 12, 0, 0}},
		{"second borrow", Time{2016, 1, 1, 0, 0, -1}, Time{2015, 12, 31, 23, 59, 59}},
		{"month carry", Time{2016, 13, 1, 0, 0, 0}, Time{2017, 1, 1, 0, 0, 0}},
		{"month zero", Time{2016, 0, 1, 0, 0, 0}, Time{2015, 12, 1, 0, 0, 0}},
		{"leap day borrow", Time{2012, 3, 1, 0, 0, -1}, Time{2012, 2, 29, 23, 59, 59}},
		{"non-leap borrow", Time{2013, 3, 1, 0, 0, -1}, Time{2013, 2, 28, 23, 59, 59}},
		{"hour cascade", Time{1970, 1, 1, 25, 61, 61}, Time{1970, 1, 2, 2, 2, 1}},
		{"negative hours", Time{1970, 1, 1, -1, 0, 0}, Time{1969, 12, 31, 23, 0, 0}},
		{"big second jump", Time{1970, 1, 1, 0, 0, 86400 * 365}, Time{1971, 1, 1, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestWeekday(t *testing.T) {
	tests := []struct {
		ct   Time
		want time.Weekday
	}{
		{Of(1970, 1, 1, 0, 0, 0), time.Thursday},
		{Of(2000, 1, 1, 0, 0, 0), time.Saturday},
		{Of(2011, 3, 13, 0, 0, 0), time.Sunday},
		{Of(2011, 11, 6, 0, 0, 0), time.Sunday},
		{Of(1601, 1, 1, 0, 0, 0), time.Monday},
		{Of(1969, 12, 31, 23, 59, 59), time.Wednesday},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.ct.Weekday(), "weekday of %s", tt.ct)
	}
}

func TestYearDay(t *testing.T) {
	assert.Equal(t, 1, Of(1970, 1, 1, 0, 0, 0).YearDay())
	assert.Equal(t, 365, Of(2011, 12, 31, 0, 0, 0).YearDay())
	assert.Equal(t, 366, Of(2012, 12, 31, 0, 0, 0).YearDay())
	assert.Equal(t, 61, Of(2012, 3, 1, 0, 0, 0).YearDay(), "leap year March 1")
	assert.Equal(t, 60, Of(2013, 3, 1, 0, 0, 0).YearDay())
}

func TestIsLeap(t *testing.T) {
	leaps := []int64{2000, 2012, 2016, 0, -400, 1600}
	for _, y := range leaps {
		assert.True(t, IsLeap(y), "year %d", y)
	}
	nonLeaps := []int64{1900, 2100, 2011, 1, -100}
	for _, y := range nonLeaps {
		assert.False(t, IsLeap(y), "year %d", y)
	}
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 29, DaysInMonth(2012, 2))
	assert.Equal(t, 28, DaysInMonth(2011, 2))
	assert.Equal(t, 31, DaysInMonth(2011, 1))
	assert.Equal(t, 30, DaysInMonth(2011, 4))
}

func TestCompare(t *testing.T) {
	a := Of(2011, 3, 13, 2, 30, 0)
	b := Of(2011, 3, 13, 2, 30, 1)
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.After(b))

	// Denormalized operands compare by their normalized value.
	assert.Equal(t, 0, Time{2011, 3, 12, 24, 0, 0}.Compare(Of(2011, 3, 13, 0, 0, 0)))
}

func TestString(t *testing.T) {
	assert.Equal(t, "2011-03-13T02:30:00", Of(2011, 3, 13, 2, 30, 0).String())
	assert.Equal(t, "0001-01-01T00:00:00", Of(1, 1, 1, 0, 0, 0).String())
	assert.Equal(t, "-0001-01-01T00:00:00", Of(-1, 1, 1, 0, 0, 0).String())
	assert.Equal(t, "10000-01-01T00:00:00", Of(10000, 1, 1, 0, 0, 0).String())
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Time
	}{
		{"2011-03-13T02:30:00", Of(2011, 3, 13, 2, 30, 0)},
		{"2011-03-13 02:30:00", Of(2011, 3, 13, 2, 30, 0)},
		{"2011-03-13", Of(2011, 3, 13, 0, 0, 0)},
		{"-0001-01-01T00:00:00", Of(-1, 1, 1, 0, 0, 0)},
		{"2012-02-29T23:59:59", Of(2012, 2, 29, 23, 59, 59)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStringRoundTrip(t *testing.T) {
	for _, sec := range []int64{0, 1299983400, -62135596800, 253402300799} {
		ct := FromUnix(sec)
		got, err := Parse(ct.String())
		require.NoError(t, err)
		assert.Equal(t, ct, got)
	}
}

func TestParseErrors(t *testing.T) {
	bad := []string{
		"",
		"2011",
		"2011-03",
		"2011-13-01",
		"2011-02-29",
		"2011-03-13T25:00:00",
		"2011-03-13T02:61:00",
		"2011-03-13T02:30",
		"not-a-date",
	}
	for _, in := range bad {
		_, err := Parse(in)
		assert.Error(t, err, "input %q", in)
	}
}
