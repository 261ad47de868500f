package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/cardwise/internal/adapters/recommender"
	"github.com/okian/cardwise/internal/resilience"
	"github.com/okian/cardwise/pkg/logger"
)

var (
	healthURL     string
	healthRetries int
	healthDelay   time.Duration
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the recommendation service is reachable",
	Long: `Probes the recommendation service health endpoint, retrying on failure.
The endpoint defaults to /health next to the recommend URL.`,
	RunE: runHealth,
}

func init() {
	healthCmd.Flags().StringVar(&healthURL, "health-url", "", "Health endpoint (default derived from --url)")
	healthCmd.Flags().IntVar(&healthRetries, "retries", 3, "Attempts before giving up")
	healthCmd.Flags().DurationVar(&healthDelay, "delay", time.Second, "Delay between attempts")
}

func runHealth(cmd *cobra.Command, _ []string) error {
	opts := []recommender.ClientOption{
		recommender.WithTimeout(cfg.RequestTimeout()),
		recommender.WithLogger(log.Named("recommender")),
	}
	if healthURL != "" {
		opts = append(opts, recommender.WithHealthURL(healthURL))
	}
	client := recommender.NewClient(cfg.RecommenderURL, opts...)

	ctx := cmd.Context()
	if err := resilience.Retry(ctx, healthRetries, healthDelay, log, client.Health); err != nil {
		log.Error(ctx, "recommendation service unhealthy", logger.String("url", client.URL()), logger.Error(err))
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "recommendation service at %s is healthy\n", client.URL())
	return err
}
