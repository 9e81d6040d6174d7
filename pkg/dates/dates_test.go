package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := Parse(value)
	require.NoError(t, err)
	return d
}

func TestNormalize(t *testing.T) {
	loc := time.FixedZone("ICT", 7*60*60)
	late := time.Date(2025, 7, 1, 23, 30, 0, 0, loc)

	got := Normalize(late)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), got)
	assert.True(t, Normalize(time.Time{}).IsZero())
}

func TestParse(t *testing.T) {
	got, err := Parse(" 2025-06-05 ")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-05", Format(got))

	_, err = Parse("")
	assert.Error(t, err)
	_, err = Parse("05/06/2025")
	assert.Error(t, err)
}

func TestNightsIsHalfOpen(t *testing.T) {
	nights := Nights(day(t, "2025-07-01"), day(t, "2025-07-03"))
	require.Len(t, nights, 2)
	assert.Equal(t, "2025-07-01", Format(nights[0]))
	assert.Equal(t, "2025-07-02", Format(nights[1]))

	assert.Empty(t, Nights(day(t, "2025-07-03"), day(t, "2025-07-03")))
	assert.Empty(t, Nights(day(t, "2025-07-03"), day(t, "2025-07-01")))
}

func TestNightsCrossesMonthBoundary(t *testing.T) {
	nights := Nights(day(t, "2025-01-30"), day(t, "2025-02-02"))
	require.Len(t, nights, 3)
	assert.Equal(t, "2025-02-01", Format(nights[2]))
}

func TestServiceDates(t *testing.T) {
	in := day(t, "2025-07-01")
	out := day(t, "2025-07-03")

	tests := []struct {
		name       string
		checkOut   time.Time
		nightBased bool
		want       []string
	}{
		{name: "night based stay", checkOut: out, nightBased: true, want: []string{"2025-07-01", "2025-07-02"}},
		{name: "night based without checkout", checkOut: time.Time{}, nightBased: true, want: nil},
		{name: "day based single date", checkOut: time.Time{}, want: []string{"2025-07-01"}},
		{name: "day based same day checkout", checkOut: in, want: []string{"2025-07-01"}},
		{name: "day based multi day", checkOut: out, want: []string{"2025-07-01", "2025-07-02"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, d := range ServiceDates(in, tt.checkOut, tt.nightBased) {
				got = append(got, Format(d))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithinIsInclusive(t *testing.T) {
	start := day(t, "2025-06-01")
	end := day(t, "2025-06-10")

	assert.True(t, Within(start, start, end))
	assert.True(t, Within(day(t, "2025-06-05"), start, end))
	assert.True(t, Within(end, start, end))
	assert.False(t, Within(day(t, "2025-06-11"), start, end))
	assert.False(t, Within(day(t, "2025-05-31"), start, end))
}
