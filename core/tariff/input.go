package tariff

import "fmt"

// SlotsPerKind is the number of range fields the form offers per period.
const SlotsPerKind = 2

// RawRange holds the text of one start/end field pair.
type RawRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Present reports whether both endpoints were filled in.
func (r RawRange) Present() bool { return r.Start != "" && r.End != "" }

// ScheduleInput is the caller owned snapshot of the schedule fields.
type ScheduleInput struct {
	Plan      Plan                   `json:"plan"`
	OffPeak   [SlotsPerKind]RawRange `json:"off_peak"`
	SuperPeak [SlotsPerKind]RawRange `json:"super_peak"`
}

func (in ScheduleInput) ranges(k PeriodKind) [SlotsPerKind]RawRange {
	if k == SuperPeak {
		return in.SuperPeak
	}
	return in.OffPeak
}

// Intervals returns the present ranges of every kind active for the plan,
// parsed leniently, off-peak slots first.
func (in ScheduleInput) Intervals() []Interval {
	var out []Interval
	for _, k := range in.Plan.ActiveKinds() {
		for slot, r := range in.ranges(k) {
			if !r.Present() {
				continue
			}
			out = append(out, Interval{Start: ParseTime(r.Start), End: ParseTime(r.End), Kind: k, Slot: slot})
		}
	}
	return out
}

// StrictIntervals is Intervals with ParseTimeStrict; the first malformed
// field aborts with an error naming it.
func (in ScheduleInput) StrictIntervals() ([]Interval, error) {
	var out []Interval
	for _, k := range in.Plan.ActiveKinds() {
		for slot, r := range in.ranges(k) {
			if !r.Present() {
				continue
			}
			iv := Interval{Kind: k, Slot: slot}
			var err error
			if iv.Start, err = ParseTimeStrict(r.Start); err != nil {
				return nil, fmt.Errorf("%s start: %w", iv.Label(), err)
			}
			if iv.End, err = ParseTimeStrict(r.End); err != nil {
				return nil, fmt.Errorf("%s end: %w", iv.Label(), err)
			}
			out = append(out, iv)
		}
	}
	return out, nil
}

// WithRange returns a copy of in with one field pair replaced.
func (in ScheduleInput) WithRange(k PeriodKind, slot int, r RawRange) ScheduleInput {
	if slot < 0 || slot >= SlotsPerKind {
		return in
	}
	switch k {
	case OffPeak:
		in.OffPeak[slot] = r
	case SuperPeak:
		in.SuperPeak[slot] = r
	}
	return in
}

// FromIntervals fills the form fields from parsed intervals. Intervals of
// kinds other than OffPeak and SuperPeak are ignored.
func FromIntervals(plan Plan, intervals []Interval) ScheduleInput {
	in := ScheduleInput{Plan: plan}
	for _, iv := range intervals {
		in = in.WithRange(iv.Kind, iv.Slot, RawRange{Start: FormatTime(iv.Start), End: FormatTime(iv.End)})
	}
	return in
}
