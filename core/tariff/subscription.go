package tariff

import (
	"errors"
	"fmt"
)

var (
	ErrMissingPower   = errors.New("subscribed power is required")
	ErrMissingPlan    = errors.New("subscription type is required")
	ErrPlanNotOffered = errors.New("subscription type not offered for this power")
	ErrMissingRate    = errors.New("missing rate")
	ErrMissingRange   = errors.New("missing time range")
)

// Season selects which seasonal rates apply on four and five class plans.
type Season int

const (
	Winter Season = iota
	Summer
)

// Subscription is the tariff section of a consumer registration.
type Subscription struct {
	PowerKVA float64             `json:"power_kva"`
	Plan     Plan                `json:"plan"`
	Rates    map[RateKey]float64 `json:"rates"`
	Schedule ScheduleInput       `json:"schedule"`
}

// Validate runs the registration checks in form order and returns the first
// failure. Overlaps are reported as *ConflictError.
func (s Subscription) Validate() error {
	if s.PowerKVA <= 0 {
		return ErrMissingPower
	}
	if s.Plan == "" {
		return ErrMissingPlan
	}
	if !offered(s.Plan, s.PowerKVA) {
		return fmt.Errorf("%w: %s at %g kVA", ErrPlanNotOffered, s.Plan, s.PowerKVA)
	}
	for _, k := range s.Plan.RequiredRates() {
		if v, ok := s.Rates[k]; !ok || v <= 0 {
			return fmt.Errorf("%w: %s", ErrMissingRate, k)
		}
	}
	if s.Plan.uses(OffPeak) && !s.Schedule.OffPeak[0].Present() {
		return fmt.Errorf("%w: at least one off-peak range", ErrMissingRange)
	}
	if s.Plan.uses(SuperPeak) && !s.Schedule.SuperPeak[0].Present() {
		return fmt.Errorf("%w: at least one super-peak range", ErrMissingRange)
	}
	in := s.Schedule
	in.Plan = s.Plan
	intervals, err := in.StrictIntervals()
	if err != nil {
		return err
	}
	if c, ok := DetectOverlap(intervals); ok {
		return &ConflictError{Conflict: c}
	}
	return nil
}

func offered(p Plan, kva float64) bool {
	for _, o := range PlansForPower(kva) {
		if o == p {
			return true
		}
	}
	return false
}

// Input returns the schedule bound to the subscription plan.
func (s Subscription) Input() ScheduleInput {
	in := s.Schedule
	in.Plan = s.Plan
	return in
}

// KindRates maps the subscription prices onto period kinds for the given
// season. Plans without time ranges price every kind at the base rate.
func (s Subscription) KindRates(season Season) map[PeriodKind]float64 {
	r := s.Rates
	switch s.Plan {
	case PlanUnique:
		return map[PeriodKind]float64{Peak: r[RateBase], OffPeak: r[RateBase], SuperPeak: r[RateBase]}
	case PlanPeakOffPeak:
		return map[PeriodKind]float64{Peak: r[RatePeak], OffPeak: r[RateOffPeak]}
	}
	out := map[PeriodKind]float64{Peak: r[RatePeakWinter], OffPeak: r[RateOffPeakWinter]}
	if season == Summer {
		out[Peak], out[OffPeak] = r[RatePeakSummer], r[RateOffPeakSummer]
	}
	if s.Plan == PlanFiveClasses {
		out[SuperPeak] = r[RateSuperPeak]
	}
	return out
}
