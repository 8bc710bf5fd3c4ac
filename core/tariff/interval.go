package tariff

import "fmt"

// Interval is a tagged time range. Start > End crosses midnight and
// Start == End is void.
type Interval struct {
	Start TimePoint  `json:"start"`
	End   TimePoint  `json:"end"`
	Kind  PeriodKind `json:"kind"`
	// Slot is the zero based form field index ("range 1" is slot 0).
	Slot int `json:"slot"`
}

// Span is a non wrapping half-open range [Start, End) on the day axis.
type Span struct {
	Start TimePoint
	End   TimePoint
}

// Label names the interval the way the form does, e.g. "HC 1".
func (iv Interval) Label() string {
	return fmt.Sprintf("%s %d", iv.Kind, iv.Slot+1)
}

// Void reports whether the interval covers nothing.
func (iv Interval) Void() bool { return iv.Start == iv.End }

// WrapsMidnight reports whether the interval crosses 24:00.
func (iv Interval) WrapsMidnight() bool { return iv.Start > iv.End }

// Minutes returns the covered duration.
func (iv Interval) Minutes() int {
	n := 0
	for _, s := range Normalize(iv) {
		n += int(s.End - s.Start)
	}
	return n
}

// Normalize splits iv into its non wrapping spans: one for a regular range,
// two for a midnight crossing one (evening part first) and none when void.
// A range ending exactly at 00:00 has an empty morning part, which is dropped.
func Normalize(iv Interval) []Span {
	switch {
	case iv.Start < iv.End:
		return []Span{{Start: iv.Start, End: iv.End}}
	case iv.Start > iv.End:
		spans := []Span{{Start: iv.Start, End: MinutesPerDay}}
		if iv.End > 0 {
			spans = append(spans, Span{Start: 0, End: iv.End})
		}
		return spans
	default:
		return nil
	}
}

// overlaps is the half-open intersection test.
func (s Span) overlaps(o Span) bool {
	return !(s.End <= o.Start || o.End <= s.Start)
}
