package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kinjo-energy/kinjo/core/tariff"
)

var plansPower float64

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List the plans offered for a subscribed power",
	RunE: func(cmd *cobra.Command, args []string) error {
		plans := tariff.PlansForPower(plansPower)
		if len(plans) == 0 {
			return fmt.Errorf("%w: %g kVA", tariff.ErrMissingPower, plansPower)
		}
		out := cmd.OutOrStdout()
		for _, p := range plans {
			rates := make([]string, 0, 5)
			for _, r := range p.RequiredRates() {
				rates = append(rates, string(r))
			}
			fmt.Fprintf(out, "%-10s %-28s rates: %s\n", p, p.Label(), strings.Join(rates, ", "))
		}
		return nil
	},
}

func init() {
	plansCmd.Flags().Float64Var(&plansPower, "power", 0, "subscribed power in kVA")
	rootCmd.AddCommand(plansCmd)
}
