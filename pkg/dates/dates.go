// Package dates holds the calendar-date helpers shared by pricing and allotment.
// A calendar date is a time.Time at midnight UTC.
package dates

import (
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

// Layout is the wire format for calendar dates.
const Layout = "2006-01-02"

// Normalize truncates t to the start of its calendar day, re-expressed in UTC
// so the same day compares equal regardless of the caller's location.
func Normalize(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	start := now.With(t).BeginningOfDay()
	y, m, d := start.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Parse reads a YYYY-MM-DD date.
func Parse(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	t, err := time.ParseInLocation(Layout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected %s): %w", value, Layout, err)
	}
	return t, nil
}

// Format renders t as YYYY-MM-DD.
func Format(t time.Time) string {
	return Normalize(t).Format(Layout)
}

// Nights enumerates every date in the half-open range [checkIn, checkOut).
// The result is empty when checkOut is not after checkIn.
func Nights(checkIn, checkOut time.Time) []time.Time {
	start := Normalize(checkIn)
	end := Normalize(checkOut)
	if start.IsZero() || !end.After(start) {
		return nil
	}
	out := make([]time.Time, 0, int(end.Sub(start).Hours()/24))
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// ServiceDates lists the dates a booking touches. Night-based stays use
// Nights. Day-based bookings use the single date checkIn unless a later
// checkOut widens them to a half-open range.
func ServiceDates(checkIn, checkOut time.Time, nightBased bool) []time.Time {
	if nightBased {
		return Nights(checkIn, checkOut)
	}
	start := Normalize(checkIn)
	if start.IsZero() {
		return nil
	}
	if checkOut.IsZero() || !Normalize(checkOut).After(start) {
		return []time.Time{start}
	}
	return Nights(checkIn, checkOut)
}

// Within reports whether day lies in the inclusive range [start, end].
func Within(day, start, end time.Time) bool {
	d := Normalize(day)
	return !d.Before(Normalize(start)) && !d.After(Normalize(end))
}
