package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cardpress/cardpress/pkg/pipeline"
)

// checkOpts holds the command-line flags for the check command.
type checkOpts struct {
	frontBG   string
	backBG    string
	keepDupes bool
}

// newCheckCmd creates the check command: a dry run that validates the
// dataset and grid configuration and reports what generate would
// produce, without writing anything.
func newCheckCmd() *cobra.Command {
	var opts checkOpts

	cmd := &cobra.Command{
		Use:   "check [dataset.csv]",
		Short: "Validate a dataset and report what a run would produce",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.frontBG, "front-bg", "", "front-side background image")
	cmd.Flags().StringVar(&opts.backBG, "back-bg", "", "back-side background image")
	cmd.Flags().BoolVar(&opts.keepDupes, "keep-duplicates", false, "keep duplicate records instead of dropping them")

	return cmd
}

func runCheck(ctx context.Context, dataset string, opts *checkOpts) error {
	logger := loggerFromContext(ctx)

	runner := pipeline.NewRunner(logger)
	result, err := runner.Check(ctx, pipeline.Options{
		DataPath:  dataset,
		FrontBG:   opts.frontBG,
		BackBG:    opts.backBG,
		SkipDedup: opts.keepDupes,
	})
	if err != nil {
		printError("%v", err)
		return err
	}

	printSuccess("Dataset is usable")
	printKeyValue("records", fmt.Sprintf("%d", result.Records))
	printKeyValue("duplicates", fmt.Sprintf("%d removed", result.Dedup.Removed))
	printKeyValue("page pairs", fmt.Sprintf("%d", result.Pages))
	printKeyValue("no link", fmt.Sprintf("%d", len(result.Skipped)))

	if len(result.Skipped) > 0 {
		printWarning("%d records have no link; run generate --fix-links to repair them", len(result.Skipped))
		printDetail("rows %s", formatRows(result.Skipped))
	}
	printNextStep("Generate the PDF", "cardpress generate "+dataset)
	return nil
}
