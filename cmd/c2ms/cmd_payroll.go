package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"c2ms/internal/domain/attendance"
	"c2ms/internal/domain/employees"
	"c2ms/internal/domain/payroll"
	"c2ms/internal/platform/csvexport"
	"c2ms/internal/platform/period"
)

var payrollCalcFormat string

var payrollCmd = &cobra.Command{
	Use:   "payroll",
	Short: "Payroll utilities",
}

var payrollCalcCmd = &cobra.Command{
	Use:   "calc <input.json>",
	Short: "Calculate pay offline from an exported employee and attendance file",
	Long: `Reads {"period","employees","attendance","inputs"} and prints each
employee's calculation without touching the database.`,
	Args: cobra.ExactArgs(1),
	RunE: runPayrollCalc,
}

func init() {
	payrollCalcCmd.Flags().StringVarP(&payrollCalcFormat, "format", "f", "json", "output format: json or csv")
}

type payrollCalcFile struct {
	Period     string                    `json:"period"`
	Employees  []employees.Employee      `json:"employees"`
	Attendance []attendance.Attendance   `json:"attendance"`
	Inputs     map[string]payroll.Inputs `json:"inputs"`
}

func runPayrollCalc(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var in payrollCalcFile
	if err := json.Unmarshal(raw, &in); err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}
	r, err := period.ParseMonth(in.Period, cfg.Profile.Location())
	if err != nil {
		return err
	}

	calcs := make([]payroll.Calculation, 0, len(in.Employees))
	for _, emp := range in.Employees {
		calcs = append(calcs, payroll.Calculate(emp, r, in.Attendance, in.Inputs[emp.ID]))
	}

	out := cmd.OutOrStdout()
	switch payrollCalcFormat {
	case "csv":
		return csvexport.Write(out, payroll.RegisterRows(calcs))
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"period":       in.Period,
			"calculations": calcs,
			"totals":       payroll.Summarize(calcs),
		})
	default:
		return fmt.Errorf("unknown format %q", payrollCalcFormat)
	}
}
