package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/cardwise/internal/loadtest"
	"github.com/okian/cardwise/internal/tui"
)

var loadCfg loadtest.Config

var loadtestCmd = &cobra.Command{
	Use:   "loadtest",
	Short: "Drive a running cardwise server through many complete sessions",
	Long: `Generates random valid profiles, walks each through the session API of a
running server concurrently, and checks the recommendations that come back.

Example:
  cardwise loadtest --base-url http://localhost:9080 --sessions 500 --workers 16`,
	RunE: runLoadtest,
}

func init() {
	f := loadtestCmd.Flags()
	f.StringVar(&loadCfg.BaseURL, "base-url", "http://localhost:9080", "Base URL of the cardwise server")
	f.IntVar(&loadCfg.Sessions, "sessions", loadtest.DefaultSessions, "Number of sessions to run")
	f.IntVar(&loadCfg.Workers, "workers", loadtest.DefaultWorkers, "Concurrent workers")
	f.DurationVar(&loadCfg.Timeout, "request-timeout", loadtest.DefaultTimeout, "Per request timeout")
	f.IntVar(&loadCfg.HealthRetries, "health-retries", loadtest.DefaultHealthRetries, "Health check attempts")
	f.DurationVar(&loadCfg.HealthDelay, "health-delay", loadtest.DefaultHealthDelay, "Delay between health checks")
	f.StringVar(&loadCfg.OutputFile, "save", "", "Write generated profiles to this JSON file")
}

func runLoadtest(cmd *cobra.Command, _ []string) error {
	run := loadCfg
	run.TopN = cfg.TopCategories
	run.Verbose = verbose

	stats, err := loadtest.Run(cmd.Context(), &run)
	if stats != nil {
		t := tui.NewTable("Load run", "Metric", "Value")
		t.AddRow("sessions", fmt.Sprint(stats.SessionsGenerated))
		t.AddRow("completed", fmt.Sprint(stats.SessionsCompleted))
		t.AddRow("rejected", fmt.Sprint(stats.SessionsRejected))
		t.AddRow("failed", fmt.Sprint(stats.SessionsFailed))
		t.AddRow("recommendations", fmt.Sprint(stats.Recommendations))
		t.AddRow("mismatches", fmt.Sprint(stats.Mismatches))
		t.AddRow("duration", stats.Duration.Round(time.Millisecond).String())
		t.AddRow("success rate", fmt.Sprintf("%.1f%%", stats.SuccessRate()))
		t.AddRow("sessions/s", fmt.Sprintf("%.1f", stats.SessionsPerSecond()))
		fmt.Fprint(cmd.OutOrStdout(), t.View(tui.DefaultStyles()))
	}
	return err
}
