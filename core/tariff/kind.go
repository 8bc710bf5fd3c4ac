package tariff

import (
	"fmt"
	"strings"
)

// PeriodKind identifies a tariff period of the day.
type PeriodKind int

const (
	// Peak is the standard rate and the default for uncovered minutes.
	Peak PeriodKind = iota
	// OffPeak is the reduced rate (heures creuses).
	OffPeak
	// SuperPeak is the highest rate, only used by five-class plans.
	SuperPeak
)

// String returns the short label used on invoices and in the UI.
func (k PeriodKind) String() string {
	switch k {
	case Peak:
		return "HP"
	case OffPeak:
		return "HC"
	case SuperPeak:
		return "Pointe"
	default:
		return "unknown"
	}
}

// Color returns the hex color used to draw the period on the day bar.
func (k PeriodKind) Color() string {
	switch k {
	case OffPeak:
		return "#92C55E"
	case SuperPeak:
		return "#1D4C3C"
	default:
		return "#FFB902"
	}
}

// ParseKind accepts the short labels as well as a few long forms.
func ParseKind(s string) (PeriodKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hp", "peak":
		return Peak, nil
	case "hc", "offpeak", "off-peak", "off_peak":
		return OffPeak, nil
	case "pointe", "superpeak", "super-peak", "super_peak":
		return SuperPeak, nil
	default:
		return 0, fmt.Errorf("unknown period kind %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k PeriodKind) MarshalText() ([]byte, error) {
	if k < Peak || k > SuperPeak {
		return nil, fmt.Errorf("invalid period kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *PeriodKind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
