// Package scenarios replays YAML described schedules through the engine and
// the metrics pipeline.
package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kinjo-energy/kinjo/core/tariff"
)

type RangeDef struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type ConflictDef struct {
	First  string `yaml:"first"`
	Second string `yaml:"second"`
}

type Expected struct {
	// Segments are written "HH:MM-HH:MM KIND".
	Segments    []string     `yaml:"segments,omitempty"`
	Description string       `yaml:"description,omitempty"`
	Conflict    *ConflictDef `yaml:"conflict,omitempty"`
	Malformed   bool         `yaml:"malformed,omitempty"`
}

type Scenario struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Plan        string     `yaml:"plan"`
	DefaultKind string     `yaml:"default_kind,omitempty"`
	OffPeak     []RangeDef `yaml:"off_peak,omitempty"`
	SuperPeak   []RangeDef `yaml:"super_peak,omitempty"`
	Expected    Expected   `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &sc, nil
}

// Input converts the scenario ranges into engine input.
func (sc Scenario) Input() (tariff.ScheduleInput, tariff.PeriodKind, error) {
	plan, err := tariff.ParsePlan(sc.Plan)
	if err != nil {
		return tariff.ScheduleInput{}, 0, err
	}
	def := tariff.Peak
	if sc.DefaultKind != "" {
		if def, err = tariff.ParseKind(sc.DefaultKind); err != nil {
			return tariff.ScheduleInput{}, 0, err
		}
	}
	in := tariff.ScheduleInput{Plan: plan}
	for i, r := range sc.OffPeak {
		in = in.WithRange(tariff.OffPeak, i, tariff.RawRange{Start: r.Start, End: r.End})
	}
	for i, r := range sc.SuperPeak {
		in = in.WithRange(tariff.SuperPeak, i, tariff.RawRange{Start: r.Start, End: r.End})
	}
	return in, def, nil
}

func formatSegment(s tariff.Segment) string {
	return tariff.FormatTime(s.Start) + "-" + tariff.FormatTime(s.End) + " " + s.Kind.String()
}
