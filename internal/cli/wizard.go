package cli

import (
	"github.com/spf13/cobra"

	service "github.com/okian/cardwise/internal/app"
	"github.com/okian/cardwise/internal/domain/profile"
	"github.com/okian/cardwise/internal/domain/wizard"
	"github.com/okian/cardwise/internal/tui"
	"github.com/okian/cardwise/pkg/logger"
)

var wizardSample bool

var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Fill in a profile step by step in the terminal",
	Long: `Starts the interactive five step wizard. Press enter to validate a step
and move on; the last step submits the profile and shows the matching cards.`,
	RunE: runWizard,
}

func init() {
	wizardCmd.Flags().BoolVar(&wizardSample, "sample", false, "Start from the sample profile")
	rootCmd.Flags().BoolVar(&wizardSample, "sample", false, "Start from the sample profile")
}

func runWizard(cmd *cobra.Command, _ []string) error {
	// The wizard owns the terminal; logs would tear the screen.
	sub, err := service.NewSubmission(cmd.Context(), cfg, logger.Discard())
	if err != nil {
		return err
	}
	defer func() { _ = sub.Close() }()

	d := profile.New()
	if wizardSample {
		d = profile.Sample()
	}
	s := wizard.NewSession(sub.Submitter, wizard.WithDraft(d), wizard.WithTopN(cfg.TopCategories))
	return tui.Run(cmd.Context(), s)
}
