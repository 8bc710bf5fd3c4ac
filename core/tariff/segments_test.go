package tariff

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentsNoInput(t *testing.T) {
	segs := SegmentsFromIntervals(nil, Peak)
	assert.Equal(t, Segments{{Start: 0, End: 1440, Kind: Peak}}, segs)

	segs = BuildSegments(ScheduleInput{Plan: PlanUnique}, Peak)
	assert.Equal(t, Segments{{Start: 0, End: 1440, Kind: Peak}}, segs)
}

func TestSegmentsMidnightScenario(t *testing.T) {
	in := ScheduleInput{Plan: PlanPeakOffPeak}
	in.OffPeak[0] = RawRange{Start: "22:30", End: "06:30"}
	segs := BuildSegments(in, Peak)
	want := Segments{
		{Start: 0, End: 390, Kind: OffPeak},
		{Start: 390, End: 1350, Kind: Peak},
		{Start: 1350, End: 1440, Kind: OffPeak},
	}
	assert.Equal(t, want, segs)
	assert.NoError(t, segs.Validate())
}

func TestSegmentsContiguousCoverage(t *testing.T) {
	inputs := [][]Interval{
		{{Start: 60, End: 120, Kind: OffPeak}},
		{{Start: 0, End: 1440, Kind: OffPeak}},
		{{Start: 1320, End: 360, Kind: OffPeak}, {Start: 720, End: 840, Kind: OffPeak, Slot: 1}, {Start: 1020, End: 1140, Kind: SuperPeak}},
		{{Start: 1000, End: 1100, Kind: SuperPeak}, {Start: 100, End: 200, Kind: OffPeak}},
		{{Start: 1320, End: 0, Kind: OffPeak}},
		{{Start: 500, End: 500, Kind: OffPeak}},
	}
	for i, ivs := range inputs {
		segs := SegmentsFromIntervals(ivs, Peak)
		require.NoError(t, segs.Validate(), "input %d", i)
		assert.Equal(t, TimePoint(0), segs[0].Start)
		assert.Equal(t, TimePoint(MinutesPerDay), segs[len(segs)-1].End)
		for j := 0; j+1 < len(segs); j++ {
			assert.Equal(t, segs[j].End, segs[j+1].Start, "input %d segment %d", i, j)
		}
	}
}

func TestSegmentsFiveClassesUsesSuperPeak(t *testing.T) {
	in := ScheduleInput{Plan: PlanFiveClasses}
	in.OffPeak[0] = RawRange{Start: "23:00", End: "07:00"}
	in.SuperPeak[0] = RawRange{Start: "09:00", End: "11:00"}
	in.SuperPeak[1] = RawRange{Start: "18:00", End: "20:00"}
	segs := BuildSegments(in, Peak)
	assert.Equal(t, Segments{
		{Start: 0, End: 420, Kind: OffPeak},
		{Start: 420, End: 540, Kind: Peak},
		{Start: 540, End: 660, Kind: SuperPeak},
		{Start: 660, End: 1080, Kind: Peak},
		{Start: 1080, End: 1200, Kind: SuperPeak},
		{Start: 1200, End: 1380, Kind: Peak},
		{Start: 1380, End: 1440, Kind: OffPeak},
	}, segs)

	in.Plan = PlanFourClasses
	segs = BuildSegments(in, Peak)
	assert.Len(t, segs, 3)
}

func TestSegmentsUnvalidatedOverlapShadows(t *testing.T) {
	ivs := []Interval{
		{Start: 480, End: 600, Kind: OffPeak},
		{Start: 540, End: 660, Kind: SuperPeak},
	}
	segs := SegmentsFromIntervals(ivs, Peak)
	assert.ErrorIs(t, segs.Validate(), ErrBrokenPartition)

	_, err := BuildValidated(ivs, Peak)
	var ce *ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "HC 1", ce.Conflict.First)
}

func TestValidateAndBuild(t *testing.T) {
	in := ScheduleInput{Plan: PlanPeakOffPeak}
	in.OffPeak[0] = RawRange{Start: "08:00", End: "10:00"}
	in.OffPeak[1] = RawRange{Start: "09:00", End: "11:00"}
	_, err := ValidateAndBuild(in, Peak)
	assert.ErrorIs(t, err, ErrScheduleConflict)

	in.OffPeak[1] = RawRange{Start: "9h", End: "11:00"}
	_, err = ValidateAndBuild(in, Peak)
	assert.ErrorIs(t, err, ErrMalformedTime)

	in.OffPeak[1] = RawRange{Start: "12:00", End: "14:00"}
	segs, err := ValidateAndBuild(in, Peak)
	require.NoError(t, err)
	assert.Len(t, segs, 5)
}

func TestSegmentsKindAt(t *testing.T) {
	segs := SegmentsFromIntervals([]Interval{{Start: 1350, End: 390, Kind: OffPeak}}, Peak)
	k, ok := segs.KindAt(0)
	assert.True(t, ok)
	assert.Equal(t, OffPeak, k)
	k, _ = segs.KindAt(390)
	assert.Equal(t, Peak, k)
	k, _ = segs.KindAt(1439)
	assert.Equal(t, OffPeak, k)
	_, ok = segs.KindAt(1440)
	assert.False(t, ok)
}

func TestIntervalsSkipHalfFilledRanges(t *testing.T) {
	in := ScheduleInput{Plan: PlanPeakOffPeak}
	in.OffPeak[0] = RawRange{Start: "22:00"}
	in.OffPeak[1] = RawRange{Start: "12:00", End: "13:00"}
	ivs := in.Intervals()
	require.Len(t, ivs, 1)
	assert.Equal(t, 1, ivs[0].Slot)
	assert.Equal(t, "HC 2", ivs[0].Label())
}
