package config

import "github.com/kinjo-energy/kinjo/core/tariff"

// ScheduleConfig holds the engine settings.
type ScheduleConfig struct {
	// DefaultKind labels minutes not covered by any range ("HP" by default).
	DefaultKind string `json:"default_kind"`
}

func (c *ScheduleConfig) SetDefaults() {
	if c.DefaultKind == "" {
		c.DefaultKind = tariff.Peak.String()
	}
}

func (c ScheduleConfig) Validate() error {
	_, err := tariff.ParseKind(c.DefaultKind)
	return err
}

// Kind returns the parsed default kind, Peak when unset or invalid.
func (c ScheduleConfig) Kind() tariff.PeriodKind {
	k, err := tariff.ParseKind(c.DefaultKind)
	if err != nil {
		return tariff.Peak
	}
	return k
}
