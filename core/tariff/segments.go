package tariff

import (
	"errors"
	"fmt"
	"sort"
)

// ErrBrokenPartition is returned by Segments.Validate.
var ErrBrokenPartition = errors.New("segments do not partition the day")

// Segment is one colored run of the day bar.
type Segment struct {
	Start TimePoint  `json:"start"`
	End   TimePoint  `json:"end"`
	Kind  PeriodKind `json:"kind"`
}

// Minutes returns the segment length.
func (s Segment) Minutes() int { return int(s.End - s.Start) }

// Segments is an ordered partition of [0, MinutesPerDay).
type Segments []Segment

// BuildSegments collects the intervals of every kind active for in.Plan and
// partitions the day around them. Minutes not covered are defaultKind.
func BuildSegments(in ScheduleInput, defaultKind PeriodKind) Segments {
	return SegmentsFromIntervals(in.Intervals(), defaultKind)
}

// SegmentsFromIntervals is the partition walk behind BuildSegments.
//
// The input is expected to be overlap free. Overlapping spans are not
// repaired: a span starting before the cursor is emitted as is and moves the
// cursor to its own end, so it shadows part of its predecessor and the result
// fails Validate. Use ValidateAndBuild when the input is not trusted.
func SegmentsFromIntervals(intervals []Interval, defaultKind PeriodKind) Segments {
	type kindSpan struct {
		Span
		kind PeriodKind
	}
	var spans []kindSpan
	for _, iv := range intervals {
		for _, s := range Normalize(iv) {
			spans = append(spans, kindSpan{Span: s, kind: iv.Kind})
		}
	}
	if len(spans) == 0 {
		return Segments{{Start: 0, End: MinutesPerDay, Kind: defaultKind}}
	}
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })

	out := make(Segments, 0, 2*len(spans)+1)
	var cursor TimePoint
	for _, s := range spans {
		if cursor < s.Start {
			out = append(out, Segment{Start: cursor, End: s.Start, Kind: defaultKind})
		}
		out = append(out, Segment{Start: s.Start, End: s.End, Kind: s.kind})
		cursor = s.End
	}
	if cursor < MinutesPerDay {
		out = append(out, Segment{Start: cursor, End: MinutesPerDay, Kind: defaultKind})
	}
	return out
}

// ValidateAndBuild rejects overlapping input with a *ConflictError and
// otherwise returns the partition.
func ValidateAndBuild(in ScheduleInput, defaultKind PeriodKind) (Segments, error) {
	intervals, err := in.StrictIntervals()
	if err != nil {
		return nil, err
	}
	return BuildValidated(intervals, defaultKind)
}

// BuildValidated runs DetectOverlap before SegmentsFromIntervals.
func BuildValidated(intervals []Interval, defaultKind PeriodKind) (Segments, error) {
	if c, ok := DetectOverlap(intervals); ok {
		return nil, &ConflictError{Conflict: c}
	}
	segs := SegmentsFromIntervals(intervals, defaultKind)
	if err := segs.Validate(); err != nil {
		return nil, err
	}
	return segs, nil
}

// Validate checks ordering, contiguity and full day coverage.
func (s Segments) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: empty", ErrBrokenPartition)
	}
	if s[0].Start != 0 {
		return fmt.Errorf("%w: first segment starts at %s", ErrBrokenPartition, s[0].Start)
	}
	for i, seg := range s {
		if seg.End <= seg.Start {
			return fmt.Errorf("%w: segment %d is empty or reversed", ErrBrokenPartition, i)
		}
		if i > 0 && s[i-1].End != seg.Start {
			return fmt.Errorf("%w: gap or overlap at %s", ErrBrokenPartition, seg.Start)
		}
	}
	if last := s[len(s)-1]; last.End != MinutesPerDay {
		return fmt.Errorf("%w: last segment ends at %d", ErrBrokenPartition, int(last.End))
	}
	return nil
}

// KindAt returns the period in force at minute p.
func (s Segments) KindAt(p TimePoint) (PeriodKind, bool) {
	i := sort.Search(len(s), func(i int) bool { return s[i].End > p })
	if i < len(s) && s[i].Start <= p {
		return s[i].Kind, true
	}
	return 0, false
}
