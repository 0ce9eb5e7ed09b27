package main

import (
	"fmt"
	"strings"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/burnout"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func (c *cli) burnoutCmd() *cobra.Command {
	var req burnout.AnalyzeRequest

	cmd := &cobra.Command{
		Use:     "burnout",
		Short:   "Score burnout risk over a period",
		Example: `  wfctl burnout -a attendance.csv --start 2024-10-01 --end 2024-11-01`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.loadEngine(cmd.Context(), true)
			if err != nil {
				return err
			}

			resp, err := e.burnout.AnalyzeBurnout(cmd.Context(), req)
			if err != nil {
				return err
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
				tw.SetTitle(fmt.Sprintf("Burnout risk %s to %s", resp.PeriodStart, resp.PeriodEnd))
				tw.AppendHeader(table.Row{"Employee", "Score", "Level", "Avg OT (h/wk)", "Work (h)", "Flags"})
				for _, emp := range resp.Employees {
					tw.AppendRow(table.Row{
						emp.EmployeeID,
						fmt.Sprintf("%.2f", emp.RiskScore),
						emp.RiskLevel,
						fmt.Sprintf("%.2f", emp.Metrics.AvgOvertimeHours),
						fmt.Sprintf("%.2f", emp.Metrics.TotalWorkHours),
						strings.Join(emp.Flags, ", "),
					})
				}
				counts := resp.LevelCounts
				tw.AppendFooter(table.Row{
					"average", fmt.Sprintf("%.2f", resp.AverageScore), "",
					"", "", fmt.Sprintf("critical %d, high %d, medium %d, low %d", counts.Critical, counts.High, counts.Medium, counts.Low),
				})
				tw.Render()
			}

			if len(resp.Failures) > 0 {
				return fmt.Errorf("%d employees: %w", len(resp.Failures), errPartialFailure)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.PeriodStart, "start", "", "period start (YYYY-MM-DD or RFC3339)")
	cmd.Flags().StringVar(&req.PeriodEnd, "end", "", "period end, exclusive")
	cmd.Flags().StringSliceVar(&req.EmployeeIDs, "employee", nil, "employee IDs (default: every employee with attendance)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}
