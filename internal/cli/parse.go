package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/omriShneor/meeting_assistant/internal/timeutil"
)

var (
	parseTimezone string
	parseNow      string
)

var parseTimeCmd = &cobra.Command{
	Use:   "parse-time <expression>",
	Short: "Show how a time expression is normalized",
	Example: `  assistant parse-time "2:00 PM tomorrow"
  assistant parse-time --now 2025-03-14T09:00:00Z "today 10 am"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParseTime,
}

var parseDurationCmd = &cobra.Command{
	Use:     "parse-duration <expression>",
	Short:   "Show how a duration expression is normalized to minutes",
	Example: `  assistant parse-duration "1 hour"`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "%d minutes\n", timeutil.ParseDuration(strings.Join(args, " ")))
		return nil
	},
}

func init() {
	parseTimeCmd.Flags().StringVar(&parseTimezone, "timezone", "UTC", "IANA timezone for the reference time")
	parseTimeCmd.Flags().StringVar(&parseNow, "now", "", "Reference time in RFC3339 (defaults to the current time)")
}

func runParseTime(cmd *cobra.Command, args []string) error {
	loc, fallback := timeutil.ResolveLocation(parseTimezone)
	if fallback {
		fmt.Fprintf(cmd.ErrOrStderr(), "unknown timezone %q, using UTC\n", parseTimezone)
	}

	now := time.Now().In(loc)
	if parseNow != "" {
		t, err := time.Parse(time.RFC3339, parseNow)
		if err != nil {
			return fmt.Errorf("invalid --now: %w", err)
		}
		now = t.In(loc)
	}

	t, err := timeutil.ParseTime(strings.Join(args, " "), now)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.Format(time.RFC3339))
	return nil
}
