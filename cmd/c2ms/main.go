package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"c2ms/internal/app/server"
	"c2ms/internal/platform/config"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "c2ms",
	Short: "C2-MS cargo logistics back office",
	Long: `C2-MS runs the back office of a sea and land cargo forwarder: clients,
shipments, voyages, fleet, invoices, payroll and reporting.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		slog.SetDefault(server.NewLogger(cfg))
		return nil
	},
}

func main() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	payrollCmd.AddCommand(payrollCalcCmd)
	rootCmd.AddCommand(payrollCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
