package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"daily-report-go/internal/feedback"
	"daily-report-go/internal/lifecycle"
	"daily-report-go/internal/types"
	"daily-report-go/internal/validator"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate report values the way the form does",
	Long: `Compute the summary and validation verdict for a set of report values
without submitting anything.`,
	Example: "  reportctl check --calls 10 --kp-plus 1 --kp 1 --rejections 0 --inadequate 0",
	Args:    cobra.NoArgs,
	RunE:    runCheck,
}

var checkFlags = []struct {
	name  string
	field types.Field
}{
	{"calls", types.FieldCalls},
	{"kp-plus", types.FieldKPPlus},
	{"kp", types.FieldKP},
	{"rejections", types.FieldRejections},
	{"inadequate", types.FieldInadequate},
}

func init() {
	for _, f := range checkFlags {
		checkCmd.Flags().String(f.name, "", f.field.Label())
	}
	checkCmd.Flags().Bool("json", false, "Print the result as JSON")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	var fs types.FieldSet
	for _, f := range checkFlags {
		raw, _ := cmd.Flags().GetString(f.name)
		fs = fs.With(f.field, raw)
	}
	view := lifecycle.Evaluate(fs)
	out := cmd.OutOrStdout()

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			lifecycle.View
			Feedback feedback.Card `json:"feedback"`
		}{view, feedback.Generate(view.Summary, view.Verdict)})
	}
	printCheck(out, fs, view)
	return nil
}

func printCheck(w io.Writer, fs types.FieldSet, v lifecycle.View) {
	s := v.Summary
	fmt.Fprintf(w, "Звонков: %d  Результативных: %d  Конверсия: %d%% (%s)\n",
		s.TotalCalls, s.ResultativeCalls, s.ConversionPercent, s.Tier)
	for _, f := range types.Fields {
		fmt.Fprintf(w, "  %-8s %-6q %s\n", f.Label(), fs.Get(f), v.Verdict.Status(f))
	}
	if v.Verdict.FormValid {
		fmt.Fprintln(w, "OK: форму можно отправить")
		return
	}
	fmt.Fprintln(w, "Нельзя отправить:", validator.Message(fs, v.Verdict))
}
