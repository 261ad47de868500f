package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	service "github.com/okian/cardwise/internal/app"
	"github.com/okian/cardwise/internal/domain/payload"
	"github.com/okian/cardwise/internal/domain/profile"
	"github.com/okian/cardwise/internal/domain/recommendation"
	"github.com/okian/cardwise/internal/domain/validation"
	"github.com/okian/cardwise/internal/domain/wizard"
	"github.com/okian/cardwise/internal/tui"
	"github.com/okian/cardwise/pkg/logger"
)

var (
	profilePath string
	useSample   bool
	output      string
)

// errInvalidProfile is returned when a profile fails step validation.
var errInvalidProfile = errors.New("profile failed validation")

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Get card recommendations for a profile",
	Long: `Walks a profile through all five steps and submits it.

The profile is a JSON or YAML document with the draft sections:
financial, spending, behavior, lifestyle, rewards and fees.

Example:
  cardwise recommend --profile me.yaml
  cardwise recommend --sample --mode catalog -o json`,
	RunE: runRecommend,
}

var payloadCmd = &cobra.Command{
	Use:   "payload",
	Short: "Print the request body a profile would be submitted as",
	RunE:  runPayload,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every step of a profile",
	RunE:  runValidate,
}

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List the wizard steps and their field paths",
	RunE:  runSteps,
}

func init() {
	for _, c := range []*cobra.Command{recommendCmd, payloadCmd, validateCmd} {
		c.Flags().StringVarP(&profilePath, "profile", "p", "", "Profile file (.json, .yaml) or - for JSON on stdin")
		c.Flags().BoolVar(&useSample, "sample", false, "Use the sample profile")
	}
	for _, c := range []*cobra.Command{recommendCmd, payloadCmd, validateCmd, stepsCmd} {
		c.Flags().StringVarP(&output, "output", "o", outputTable, "Output format: table, json or yaml")
	}
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	if err := checkOutput(output); err != nil {
		return err
	}
	d, err := loadDraft(profilePath, useSample, cmd.InOrStdin())
	if err != nil {
		return err
	}

	sub, err := service.NewSubmission(cmd.Context(), cfg, log.Named("submission"))
	if err != nil {
		return err
	}
	defer func() { _ = sub.Close() }()

	res, err := recommend(cmd.Context(), cmd.ErrOrStderr(), sub.Submitter, d)
	if err != nil {
		return err
	}
	if output == outputTable {
		_, err = fmt.Fprint(cmd.OutOrStdout(), tui.RenderResults(res, tui.DefaultStyles()))
		return err
	}
	return write(cmd.OutOrStdout(), output, res)
}

// recommend drives a session over d until it submits. Violations of the
// first failing step are written to errOut.
func recommend(ctx context.Context, errOut io.Writer, sub wizard.Submitter, d profile.Draft) (recommendation.Results, error) {
	s := wizard.NewSession(sub, wizard.WithDraft(d), wizard.WithTopN(cfg.TopCategories))
	for {
		tr, err := s.Advance(ctx)
		if err != nil {
			log.Error(ctx, "submission failed", logger.Error(err))
			return recommendation.Results{}, err
		}
		if len(tr.Violations) > 0 {
			fmt.Fprint(errOut, tui.RenderViolations(tr.From, tr.Violations, tui.DefaultStyles()))
			return recommendation.Results{}, fmt.Errorf("%w at step %d", errInvalidProfile, tr.From)
		}
		if tr.Submit {
			break
		}
		log.Debug(ctx, "step passed", logger.Int("step", tr.From))
	}
	v := s.View()
	if v.Results == nil {
		return recommendation.Results{}, errors.New("session completed without results")
	}
	return *v.Results, nil
}

func runPayload(cmd *cobra.Command, _ []string) error {
	d, err := loadDraft(profilePath, useSample, cmd.InOrStdin())
	if err != nil {
		return err
	}
	p := payload.Format(d, payload.WithTopN(cfg.TopCategories))
	if output == outputYAML {
		return write(cmd.OutOrStdout(), output, p)
	}
	data, err := payload.Encode(p)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

type stepReport struct {
	Step       int                   `json:"step"`
	Title      string                `json:"title"`
	Valid      bool                  `json:"valid"`
	Violations validation.Violations `json:"violations"`
}

func runValidate(cmd *cobra.Command, _ []string) error {
	if err := checkOutput(output); err != nil {
		return err
	}
	d, err := loadDraft(profilePath, useSample, cmd.InOrStdin())
	if err != nil {
		return err
	}

	reports := make([]stepReport, 0, profile.TotalSteps)
	failed := 0
	for _, st := range profile.Steps() {
		v := validation.Validate(st.Number, d)
		if v == nil {
			v = validation.Violations{}
		}
		if !v.OK() {
			failed++
		}
		reports = append(reports, stepReport{Step: st.Number, Title: st.Title, Valid: v.OK(), Violations: v})
	}

	if output == outputTable {
		styles := tui.DefaultStyles()
		t := tui.NewTable("Profile validation", "Step", "Title", "Result")
		for _, r := range reports {
			result := "ok"
			if !r.Valid {
				result = r.Violations.Error()
			}
			t.AddRow(fmt.Sprint(r.Step), r.Title, result)
		}
		fmt.Fprint(cmd.OutOrStdout(), t.View(styles))
	} else if err := write(cmd.OutOrStdout(), output, reports); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d steps", errInvalidProfile, failed, profile.TotalSteps)
	}
	return nil
}

func runSteps(cmd *cobra.Command, _ []string) error {
	if err := checkOutput(output); err != nil {
		return err
	}
	if output == outputTable {
		_, err := fmt.Fprint(cmd.OutOrStdout(), tui.RenderSteps(profile.Steps(), tui.DefaultStyles()))
		return err
	}
	return write(cmd.OutOrStdout(), output, profile.Steps())
}
