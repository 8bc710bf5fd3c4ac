package tariff

import "sort"

// SliderValuesFromIntervals flattens intervals into sorted handle positions.
// A midnight crossing interval contributes two pairs, (start, 1440) and
// (0, end), so the output no longer says which pairs belonged together.
func SliderValuesFromIntervals(intervals []Interval) []TimePoint {
	var values []TimePoint
	for _, iv := range intervals {
		if iv.Start <= iv.End {
			values = append(values, iv.Start, iv.End)
			continue
		}
		values = append(values, iv.Start, MinutesPerDay, 0, iv.End)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	return values
}

// IntervalsFromSliderValues maps handle positions back onto the form fields
// by position: pair n becomes the start and end of fields[n]. Kind and Slot
// are taken from fields; extra pairs and a trailing odd value are dropped.
//
// The mapping is lossy for midnight crossing intervals, see SliderPair for
// the tagged representation.
func IntervalsFromSliderValues(values []TimePoint, fields []Interval) []Interval {
	out := make([]Interval, 0, len(fields))
	for n := 0; 2*n+1 < len(values) && n < len(fields); n++ {
		iv := fields[n]
		iv.Start, iv.End = values[2*n], values[2*n+1]
		out = append(out, iv)
	}
	return out
}

// SliderPair is one handle pair of the slider. WrapsMidnight marks the two
// pairs produced by a midnight crossing interval so it can be rejoined.
type SliderPair struct {
	Start         TimePoint  `json:"start"`
	End           TimePoint  `json:"end"`
	Kind          PeriodKind `json:"kind"`
	Slot          int        `json:"slot"`
	WrapsMidnight bool       `json:"wraps_midnight"`
}

// SliderPairsFromIntervals expands intervals into handle pairs sorted by
// start, keeping the owner of each pair.
func SliderPairsFromIntervals(intervals []Interval) []SliderPair {
	var pairs []SliderPair
	for _, iv := range intervals {
		wrap := iv.WrapsMidnight()
		for _, s := range Normalize(iv) {
			pairs = append(pairs, SliderPair{Start: s.Start, End: s.End, Kind: iv.Kind, Slot: iv.Slot, WrapsMidnight: wrap})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].Start < pairs[j].Start })
	return pairs
}

// IntervalsFromSliderPairs is the exact inverse of SliderPairsFromIntervals:
// wrapped pairs of the same owner are joined back into one interval taking
// its start from the evening pair and its end from the morning pair.
// Intervals are returned in order of first appearance. A plain pair ending at
// 1440 is stored with End 0, the same form as a range ending at 00:00.
func IntervalsFromSliderPairs(pairs []SliderPair) []Interval {
	type owner struct {
		kind PeriodKind
		slot int
	}
	var out []Interval
	index := map[owner]int{}
	for _, p := range pairs {
		if !p.WrapsMidnight {
			end := p.End
			if end == MinutesPerDay {
				end = 0
			}
			out = append(out, Interval{Start: p.Start, End: end, Kind: p.Kind, Slot: p.Slot})
			continue
		}
		key := owner{kind: p.Kind, slot: p.Slot}
		i, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, Interval{Kind: p.Kind, Slot: p.Slot})
			i = len(out) - 1
		}
		if p.Start == 0 {
			out[i].End = p.End
		} else {
			out[i].Start = p.Start
		}
	}
	return out
}
