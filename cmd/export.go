package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kinjo-energy/kinjo/core/profile"
	infprofile "github.com/kinjo-energy/kinjo/infra/profile"
	"github.com/kinjo-energy/kinjo/pkg/export"
)

var (
	exportPRM    string
	exportSince  string
	exportLimit  int
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored tariff profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		q := profile.Query{PRM: exportPRM, Limit: exportLimit}
		if exportSince != "" {
			if q.Since, err = time.Parse(time.RFC3339, exportSince); err != nil {
				return fmt.Errorf("since: %w", err)
			}
		}
		store, err := infprofile.NewStore(cfg.Store)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		list, err := store.List(context.Background(), q)
		if err != nil {
			return err
		}
		switch exportFormat {
		case "csv":
			return export.WriteProfilesCSV(cmd.OutOrStdout(), list)
		case "json":
			return export.WriteJSON(cmd.OutOrStdout(), list)
		default:
			return fmt.Errorf("unknown format %s", exportFormat)
		}
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportPRM, "prm", "", "only profiles of this meter")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only profiles created after this RFC3339 time")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 0, "maximum number of profiles")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "csv or json")
	rootCmd.AddCommand(exportCmd)
}
