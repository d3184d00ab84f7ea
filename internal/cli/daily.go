package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"daily-report-go/internal/notify"
	"daily-report-go/internal/notify/discord"
	"daily-report-go/internal/types"
)

var dailyCmd = &cobra.Command{
	Use:   "daily [date]",
	Short: "Show who has and has not reported for a day",
	Long: `Summarise one day's reports (today when no date is given) against the
EMPLOYEE_ROSTER, or against everyone who has ever reported when the roster
is empty. With --post the summary is also sent to the Discord admin channel.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDaily,
}

func init() {
	dailyCmd.Flags().Bool("json", false, "Print the digest as JSON")
	dailyCmd.Flags().Bool("post", false, "Post the summary to the Discord admin channel")
	rootCmd.AddCommand(dailyCmd)
}

func runDaily(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.book.Close()

	date := e.today()
	if len(args) == 1 {
		if _, err := time.Parse(types.DateLayout, args[0]); err != nil {
			return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
		}
		date = args[0]
	}
	d, err := e.book.Daily(date, e.cfg.Ledger.Roster)
	if err != nil {
		return fmt.Errorf("building daily summary: %w", err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(d); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), notify.DailyMessage(d))
	}

	if post, _ := cmd.Flags().GetBool("post"); post {
		n, err := discord.New(e.cfg.Discord)
		if err != nil {
			return err
		}
		defer n.Close()
		if err := n.SendDaily(cmd.Context(), d); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "posted to Discord")
	}
	return nil
}
