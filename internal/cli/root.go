// Package cli is the cardwise command line: local recommendations, the
// terminal wizard, and tooling against a running server.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/cardwise/internal/config"
	"github.com/okian/cardwise/pkg/logger"
)

// Version is stamped at build time.
var Version = "dev"

var (
	// Global flags
	configPath string
	verbose    bool
	mode       string
	endpoint   string
	topN       int
	logFormat  string

	cfg *config.Config
	log logger.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cardwise",
	Short: "cardwise - credit card recommendation wizard",
	Long: `cardwise collects a financial profile over five steps, validates each
step, and asks a recommendation service for matching credit cards.

Run without arguments to start the interactive terminal wizard.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setup(cmd.Context(), cmd.ErrOrStderr(), cmd)
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = logger.Sync()
	},
	RunE: runWizard,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the cardwise version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "cardwise %s\n", Version)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (or set "+config.FileEnv+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&mode, "mode", "", "Recommender mode: remote or catalog")
	rootCmd.PersistentFlags().StringVar(&endpoint, "url", "", "Recommendation service endpoint")
	rootCmd.PersistentFlags().IntVar(&topN, "top", 0, "Number of top spending categories")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json")

	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(payloadCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(stepsCmd)
	rootCmd.AddCommand(wizardCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(loadtestCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads configuration, applies flag overrides, and initializes
// logging on w.
func setup(ctx context.Context, w io.Writer, cmd *cobra.Command) error {
	if configPath != "" {
		if err := os.Setenv(config.FileEnv, configPath); err != nil {
			return err
		}
	}
	c, err := config.Load(ctx)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("mode") {
		c.RecommenderMode = mode
	}
	if flags.Changed("url") {
		c.RecommenderURL = endpoint
	}
	if flags.Changed("top") {
		c.TopCategories = topN
	}
	if flags.Changed("log-format") {
		c.LogFormat = logFormat
	}
	if err := c.Validate(); err != nil {
		return err
	}

	if err := logger.InitWithOptions(logger.WithFormat(c.LogFormat), logger.WithWriter(w)); err != nil {
		return err
	}
	level := c.LogLevel
	if verbose {
		level = "debug"
	}
	if err := logger.SetLevelString(level); err != nil {
		return err
	}

	cfg = c
	log = logger.Named("cli")
	return nil
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
