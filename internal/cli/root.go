package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"daily-report-go/internal/config"
	"daily-report-go/internal/ledger"
	"daily-report-go/internal/logger"
	"daily-report-go/internal/types"
)

var rootCmd = &cobra.Command{
	Use:           "reportctl",
	Short:         "Inspect daily sales-activity reports",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("ledger", "", "Path to the report ledger (default: LEDGER_PATH)")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// env bundles what ledger-backed commands need.
type env struct {
	cfg  *config.Config
	book *ledger.Ledger
}

func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if path, _ := cmd.Flags().GetString("ledger"); path != "" {
		cfg.Ledger.Path = path
	}
	book, err := ledger.Open(cfg.Ledger.Path, logger.New().Component("ledger").Entry)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, book: book}, nil
}

func (e *env) today() string {
	return time.Now().In(e.cfg.Form.Location()).Format(types.DateLayout)
}
