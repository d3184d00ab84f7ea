package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"daily-report-go/internal/ledger"
)

var statusCmd = &cobra.Command{
	Use:     "status <employee>",
	Aliases: []string{"st"},
	Short:   "Show an employee's report status",
	Args:    cobra.ExactArgs(1),
	RunE:    runStatus,
}

func init() {
	statusCmd.Flags().Bool("json", false, "Print the digest as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.book.Close()

	d, err := e.book.Status(args[0], e.today())
	if err != nil {
		return fmt.Errorf("building status: %w", err)
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}
	printStatus(cmd.OutOrStdout(), d)
	return nil
}

func printStatus(w io.Writer, d ledger.StatusDigest) {
	fmt.Fprintf(w, "%s\n\n", d.Employee)
	if d.Today != nil {
		t := d.Today
		fmt.Fprintf(w, "Сегодня: звонков %d, КП+ %d, КП %d, отказы %d, неадекв %d (%.1f%%)\n",
			t.CallsCount, t.KPPlus, t.KP, t.Rejections, t.Inadequate, t.Conversion)
	} else {
		fmt.Fprintln(w, "Сегодня отчёт ещё не отправлен")
	}
	if d.Totals.Reports == 0 {
		fmt.Fprintln(w, "Отчётов пока нет")
		return
	}
	fmt.Fprintf(w, "\nПоследние %d отчётов: звонков %d, результативных %d, средняя конверсия %.1f%%\n",
		d.Totals.Reports, d.Totals.TotalCalls, d.Totals.ResultativeCalls, d.Totals.AverageConversion)
	for _, r := range d.Recent {
		fmt.Fprintf(w, "  %s  %3d звонков  %3d результативных  %5.1f%%\n",
			r.ReportDate, r.CallsCount, r.Resultative(), r.Conversion)
	}
}
