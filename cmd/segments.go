package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kinjo-energy/kinjo/api"
	"github.com/kinjo-energy/kinjo/core/tariff"
	"github.com/kinjo-energy/kinjo/pkg/export"
)

var (
	segPlan      string
	segOffPeak   []string
	segSuperPeak []string
	segDefault   string
	segJSON      bool
	segCSV       bool
)

var segmentsCmd = &cobra.Command{
	Use:   "segments",
	Short: "Print the day partition for a set of ranges",
	Example: `  kinjo segments --plan hp_hc --hc 22:00-06:00
  kinjo segments --plan 5_classes --hc 22:00-06:00 --pointe 17:00-19:00 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := scheduleFromFlags(segPlan, segOffPeak, segSuperPeak)
		if err != nil {
			return err
		}
		def, err := tariff.ParseKind(segDefault)
		if err != nil {
			return err
		}
		segs, err := tariff.ValidateAndBuild(in, def)
		if err != nil {
			return err
		}
		if segCSV {
			return export.WriteSegmentsCSV(cmd.OutOrStdout(), segs)
		}
		return printSegments(cmd.OutOrStdout(), segs, tariff.Describe(in.Intervals()), segJSON)
	},
}

func init() {
	segmentsCmd.Flags().StringVar(&segPlan, "plan", string(tariff.PlanPeakOffPeak), "subscription plan")
	segmentsCmd.Flags().StringArrayVar(&segOffPeak, "hc", nil, "off-peak range HH:MM-HH:MM (repeatable, max 2)")
	segmentsCmd.Flags().StringArrayVar(&segSuperPeak, "pointe", nil, "super-peak range HH:MM-HH:MM (repeatable, max 2)")
	segmentsCmd.Flags().StringVar(&segDefault, "default", "HP", "kind of uncovered minutes")
	segmentsCmd.Flags().BoolVar(&segJSON, "json", false, "print JSON")
	segmentsCmd.Flags().BoolVar(&segCSV, "csv", false, "print CSV")
	rootCmd.AddCommand(segmentsCmd)
}

func scheduleFromFlags(plan string, offPeak, superPeak []string) (tariff.ScheduleInput, error) {
	p, err := tariff.ParsePlan(plan)
	if err != nil {
		return tariff.ScheduleInput{}, err
	}
	in := tariff.ScheduleInput{Plan: p}
	for _, f := range []struct {
		kind   tariff.PeriodKind
		ranges []string
	}{{tariff.OffPeak, offPeak}, {tariff.SuperPeak, superPeak}} {
		if len(f.ranges) > tariff.SlotsPerKind {
			return in, fmt.Errorf("at most %d %s ranges", tariff.SlotsPerKind, f.kind)
		}
		for slot, r := range f.ranges {
			start, end, ok := strings.Cut(r, "-")
			if !ok {
				return in, fmt.Errorf("%s %d: expected HH:MM-HH:MM, got %q", f.kind, slot+1, r)
			}
			in = in.WithRange(f.kind, slot, tariff.RawRange{Start: strings.TrimSpace(start), End: strings.TrimSpace(end)})
		}
	}
	return in, nil
}

func printSegments(w io.Writer, segs tariff.Segments, description string, asJSON bool) error {
	if asJSON {
		return export.WriteJSON(w, struct {
			Segments    []api.SegmentView  `json:"segments"`
			Description string             `json:"description"`
			Shares      map[string]float64 `json:"shares"`
		}{api.Segments(segs), description, api.Shares(segs)})
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "START\tEND\tKIND")
	for _, s := range segs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", tariff.FormatTime(s.Start), tariff.FormatTime(s.End), s.Kind)
	}
	if description != "" {
		fmt.Fprintf(tw, "\n%s\n", description)
	}
	return tw.Flush()
}
