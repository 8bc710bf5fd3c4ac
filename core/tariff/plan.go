package tariff

import (
	"fmt"
	"math"
)

// Plan is the subscription type chosen by the consumer.
type Plan string

const (
	PlanUnique      Plan = "unique"
	PlanPeakOffPeak Plan = "hp_hc"
	PlanFourClasses Plan = "4_classes"
	PlanFiveClasses Plan = "5_classes"
)

// RateKey names one price field of a subscription.
type RateKey string

const (
	RateBase          RateKey = "base"
	RatePeak          RateKey = "hp"
	RateOffPeak       RateKey = "hc"
	RatePeakWinter    RateKey = "hph"
	RateOffPeakWinter RateKey = "hch"
	RatePeakSummer    RateKey = "hpb"
	RateOffPeakSummer RateKey = "hcb"
	RateSuperPeak     RateKey = "pointe"
)

// PlansForPower lists the plans offered for a subscribed power in kVA.
func PlansForPower(kva float64) []Plan {
	if math.IsNaN(kva) || kva <= 0 {
		return nil
	}
	switch {
	case kva <= 36:
		return []Plan{PlanUnique, PlanPeakOffPeak}
	case kva <= 250:
		return []Plan{PlanUnique, PlanFourClasses}
	default:
		return []Plan{PlanFourClasses, PlanFiveClasses}
	}
}

// ParsePlan validates a plan identifier.
func ParsePlan(s string) (Plan, error) {
	switch p := Plan(s); p {
	case PlanUnique, PlanPeakOffPeak, PlanFourClasses, PlanFiveClasses:
		return p, nil
	default:
		return "", fmt.Errorf("unknown plan %q", s)
	}
}

// Label is the human readable plan name.
func (p Plan) Label() string {
	switch p {
	case PlanUnique:
		return "Tarif unique"
	case PlanPeakOffPeak:
		return "Tarif HP/HC"
	case PlanFourClasses:
		return "Tarif 4 classes temporelles"
	case PlanFiveClasses:
		return "Tarif 5 classes temporelles"
	default:
		return string(p)
	}
}

// ActiveKinds returns the period kinds whose ranges take part in the
// schedule. Peak is implicit and never listed.
func (p Plan) ActiveKinds() []PeriodKind {
	switch p {
	case PlanPeakOffPeak, PlanFourClasses:
		return []PeriodKind{OffPeak}
	case PlanFiveClasses:
		return []PeriodKind{OffPeak, SuperPeak}
	default:
		return nil
	}
}

// RequiredRates lists the price fields the plan needs.
func (p Plan) RequiredRates() []RateKey {
	seasonal := []RateKey{RatePeakWinter, RateOffPeakWinter, RatePeakSummer, RateOffPeakSummer}
	switch p {
	case PlanUnique:
		return []RateKey{RateBase}
	case PlanPeakOffPeak:
		return []RateKey{RatePeak, RateOffPeak}
	case PlanFourClasses:
		return seasonal
	case PlanFiveClasses:
		return append(seasonal, RateSuperPeak)
	default:
		return nil
	}
}

// TimeOfUse reports whether the plan carries time ranges at all.
func (p Plan) TimeOfUse() bool { return len(p.ActiveKinds()) > 0 }

func (p Plan) uses(k PeriodKind) bool {
	for _, a := range p.ActiveKinds() {
		if a == k {
			return true
		}
	}
	return false
}
