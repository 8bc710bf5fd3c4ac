package tariff

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the length of the schedule axis.
const MinutesPerDay = 1440

// ErrMalformedTime is returned by ParseTimeStrict for text that is not a valid
// HH:MM wall-clock time.
var ErrMalformedTime = errors.New("malformed time")

// TimePoint is a number of minutes since local midnight.
type TimePoint int

// ParseTime converts "HH:MM" to minutes. Missing or non numeric components
// count as zero, so "" and "abc" both yield 0 and "7" yields 07:00. No range
// check is performed; use ParseTimeStrict at input boundaries.
func ParseTime(text string) TimePoint {
	h, m, _ := strings.Cut(strings.TrimSpace(text), ":")
	return TimePoint(atoiOrZero(h)*60 + atoiOrZero(m))
}

func atoiOrZero(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}

// ParseTimeStrict parses "HH:MM" (or "H:MM") and rejects anything outside
// 00:00..23:59.
func ParseTimeStrict(text string) (TimePoint, error) {
	s := strings.TrimSpace(text)
	h, m, ok := strings.Cut(s, ":")
	if !ok || h == "" || len(h) > 2 || len(m) != 2 || !digits(h) || !digits(m) {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, text)
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, text)
	}
	minute, err := strconv.Atoi(m)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, text)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q out of range", ErrMalformedTime, text)
	}
	return TimePoint(hour*60 + minute), nil
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatTime renders p as zero padded "HH:MM".
func FormatTime(p TimePoint) string {
	return fmt.Sprintf("%02d:%02d", int(p)/60, int(p)%60)
}

// String implements fmt.Stringer.
func (p TimePoint) String() string { return FormatTime(p) }

// Valid reports whether p lies on the day axis.
func (p TimePoint) Valid() bool { return p >= 0 && p < MinutesPerDay }
