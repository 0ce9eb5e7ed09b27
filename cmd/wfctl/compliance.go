package main

import (
	"fmt"
	"strings"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/compliance"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func (c *cli) complianceCmd() *cobra.Command {
	var req compliance.EvaluateRequest

	cmd := &cobra.Command{
		Use:     "compliance",
		Short:   "Evaluate compliance rules over a period",
		Example: `  wfctl compliance -c engine.yaml -a attendance.csv --start 2024-11-04 --end 2024-11-11`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.loadEngine(cmd.Context(), true)
			if err != nil {
				return err
			}
			if len(e.cfg.ComplianceRules) == 0 {
				return fmt.Errorf("engine config defines no compliance_rules")
			}

			resp, err := e.compliance.EvaluateCompliance(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if c.v.GetBool("json") {
				if err := printJSON(out, resp); err != nil {
					return err
				}
			} else {
				rules, err := e.compliance.ListRules(cmd.Context())
				if err != nil {
					return err
				}
				ruleNames := make(map[string]string, len(rules))
				for _, r := range rules {
					ruleNames[r.ID] = r.Name
				}

				tw := table.NewWriter()
				tw.SetOutputMirror(out)
				tw.SetStyle(table.StyleLight)
				tw.SetTitle(fmt.Sprintf("Compliance %s to %s", resp.PeriodStart, resp.PeriodEnd))
				tw.AppendHeader(table.Row{"Employee", "Rule", "Date", "Details"})
				for _, r := range resp.Results {
					for _, v := range r.Violations {
						tw.AppendRow(table.Row{r.EmployeeID, ruleNames[v.RuleID], v.ViolationDate, v.Details})
					}
					if len(r.Errors) > 0 {
						tw.AppendRow(table.Row{r.EmployeeID, "", "", "error: " + strings.Join(r.Errors, "; ")})
					}
				}
				tw.AppendFooter(table.Row{"", "", "violations", resp.TotalViolations})
				tw.Render()
			}

			if resp.FailedEmployees > 0 {
				return fmt.Errorf("%d of %d: %w", resp.FailedEmployees, len(resp.Results), errPartialFailure)
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
