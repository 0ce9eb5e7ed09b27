package main

import (
	"fmt"
	"os"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-engine/internal/repository/csvfile"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func (c *cli) payrollCmd() *cobra.Command {
	var req payroll.GeneratePayrollRequest
	var export string

	cmd := &cobra.Command{
		Use:   "payroll",
		Short: "Generate payroll for a pay period",
		Example: `  wfctl payroll -c engine.yaml --period 2024-11
  wfctl payroll -c engine.yaml --period 2024-11 --employee emp-1 --export register.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.loadEngine(cmd.Context(), false)
			if err != nil {
				return err
			}

			resp, err := e.payroll.GeneratePayroll(cmd.Context(), req)
			if err != nil {
				return err
			}

			if export != "" {
				if err := exportRegister(cmd, e, req.PayPeriod, export); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if c.v.GetBool("json") {
				if err := printJSON(out, resp); err != nil {
					return err
				}
			} else {
				tw := table.NewWriter()
				tw.SetOutputMirror(out)
				tw.SetStyle(table.StyleLight)
				tw.SetTitle("Payroll " + resp.PayPeriod)
				tw.AppendHeader(table.Row{"Employee", "Base", "Gross", "Taxes", "Deductions", "Net", "Status", "Notes"})
				for _, r := range resp.Results {
					if r.Record == nil {
						tw.AppendRow(table.Row{r.EmployeeID, "", "", "", "", "", "failed", *r.Error})
						continue
					}
					notes := ""
					if r.Record.Notes != nil {
						notes = *r.Record.Notes
					}
					tw.AppendRow(table.Row{
						r.EmployeeID, r.Record.BaseSalary, r.Record.GrossSalary, r.Record.Taxes,
						r.Record.TotalDeductions, r.Record.NetSalary, r.Record.Status, notes,
					})
				}
				tw.AppendFooter(table.Row{"", "", "", "", "", "", "generated", resp.Generated})
				tw.Render()
			}

			if resp.Failed > 0 {
				return fmt.Errorf("%d of %d: %w", resp.Failed, len(resp.Results), errPartialFailure)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.PayPeriod, "period", "", "pay period (YYYY-MM)")
	cmd.Flags().StringSliceVar(&req.EmployeeIDs, "employee", nil, "employee IDs (default: every employee with compensation)")
	cmd.Flags().StringVar(&export, "export", "", "write the payroll register as CSV to this file")
	_ = cmd.MarkFlagRequired("period")
	return cmd
}

func exportRegister(cmd *cobra.Command, e *engine, payPeriod, path string) error {
	records, _, err := e.payrollRepo.ListRecords(cmd.Context(), payroll.PayrollFilter{PayPeriod: &payPeriod})
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create register: %w", err)
	}
	if err := csvfile.WriteRegister(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
