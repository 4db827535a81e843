package common

import (
	"fmt"
	"math"
	"time"
	"villas/src/config"
	"villas/src/types"
)

// ParseDate reads a wire date, accepting either the plain date form or a full
// RFC 3339 timestamp (the payment gateway metadata carries both historically).
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(config.DATE_FORMAT, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t.UTC().Truncate(24 * time.Hour), nil
}

// Nights is the integer day count between check-in and check-out.
func Nights(checkIn, checkOut time.Time) int {
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
}

// IsBlocked reports whether d falls inside any blocked range. Both endpoints
// are inclusive.
func IsBlocked(ranges types.BlockedRanges, d time.Time) bool {
	for _, r := range ranges {
		from, err := ParseDate(r.From)
		if err != nil {
			continue
		}
		to, err := ParseDate(r.To)
		if err != nil {
			continue
		}
		if !d.Before(from) && !d.After(to) {
			return true
		}
	}
	return false
}

// DisabledDates expands the blocked ranges into the concrete dates a calendar
// widget must disable, looking ahead the given number of days from today.
// Dates before today are implicitly disabled by the client and not listed.
func DisabledDates(ranges types.BlockedRanges, today time.Time, horizonDays int) []string {
	today = today.Truncate(24 * time.Hour)
	var out []string
	for i := 0; i < horizonDays; i++ {
		d := today.AddDate(0, 0, i)
		if IsBlocked(ranges, d) {
			out = append(out, d.Format(config.DATE_FORMAT))
		}
	}
	return out
}

// RangeAvailable reports whether every night of the stay [checkIn, checkOut)
// is free. The check-out date itself may coincide with the start of another
// blocked range's check-in only if that date is not inside a blocked window.
func RangeAvailable(ranges types.BlockedRanges, checkIn, checkOut time.Time) bool {
	for d := checkIn; d.Before(checkOut); d = d.AddDate(0, 0, 1) {
		if IsBlocked(ranges, d) {
			return false
		}
	}
	return true
}

type Quote struct {
	Nights      int     `json:"nights"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
	CleaningFee float64 `json:"cleaning_fee"`
	Total       float64 `json:"total"`
}

// NewQuote computes the display math for a stay: nights x nightly rate plus a
// fixed cleaning fee. Advisory only; the checkout path re-resolves pricing.
func NewQuote(checkIn, checkOut time.Time, unitPrice, cleaningFee float64) *Quote {
	nights := Nights(checkIn, checkOut)
	subtotal := unitPrice * float64(nights)
	return &Quote{
		Nights:      nights,
		UnitPrice:   unitPrice,
		Subtotal:    subtotal,
		CleaningFee: cleaningFee,
		Total:       subtotal + cleaningFee,
	}
}
