// Command wfctl runs the workforce engine offline over a CSV of attendance
// entries and a YAML engine config.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errPartialFailure makes the exit status non-zero after results for the
// successful employees were printed.
var errPartialFailure = errors.New("some employees failed")

type cli struct {
	v *viper.Viper
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:   "wfctl",
		Short: "Workforce rule and payroll engine CLI",
		Long: `wfctl aggregates attendance into period metrics and runs payroll,
compliance and burnout analysis over them without a server.

Attendance is read from a CSV with the header id,employee_id,start,end,kind.
Pay terms, tax rules, compliance rules and scoring weights come from the
engine config file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if c.v.GetBool("verbose") {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	c.v.SetEnvPrefix("WFCTL")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "engine config file (YAML)")
	flags.StringP("attendance", "a", "", "attendance CSV file")
	flags.Bool("json", false, "output JSON")
	flags.Int("concurrency", 0, "batch concurrency (overrides the engine config)")
	flags.BoolP("verbose", "v", false, "debug logging")
	for _, name := range []string{"config", "attendance", "json", "concurrency", "verbose"} {
		_ = c.v.BindPFlag(name, flags.Lookup(name))
	}

	root.AddCommand(c.payrollCmd())
	root.AddCommand(c.complianceCmd())
	root.AddCommand(c.burnoutCmd())
	root.AddCommand(c.importCmd())
	return root
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
