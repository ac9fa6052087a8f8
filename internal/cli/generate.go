package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cardpress/cardpress/pkg/pipeline"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	output      string  // output PDF path
	icon        string  // center icon file or URL for the codes
	frontBG     string  // front background image
	backBG      string  // back background image
	qrPaddingPx int     // quiet zone override in pixels
	shrinkFront float64 // shrink percentage for the code side
	shrinkBack  float64 // shrink percentage for the text side
	noMirror    bool    // disable back-side column mirroring
	keepDupes   bool    // keep duplicate records
	fixLinks    bool    // run the link repair chain
	fixYears    bool    // fill empty years from recording metadata
	fixCSV      bool    // write corrections back into the CSV
	cacheDir    string  // lookup cache directory
	configPath  string  // explicit config profile path
	coreFonts   bool    // skip host font discovery
}

// newGenerateCmd creates the generate command that renders the card PDF.
//
// Default settings:
//   - output: cards.pdf
//   - mirrored back side (duplex long-edge flip)
//   - fixed A4 grid unless both backgrounds are given
//   - quiet zone: four modules
func newGenerateCmd() *cobra.Command {
	opts := generateOpts{qrPaddingPx: -1}

	cmd := &cobra.Command{
		Use:   "generate [dataset.csv]",
		Short: "Generate the double-sided card PDF from a CSV dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := applyConfig(cmd, &opts); err != nil {
				return err
			}
			return runGenerate(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output PDF file (default cards.pdf)")
	cmd.Flags().StringVar(&opts.icon, "icon", "", "center icon file or URL drawn over every code")
	cmd.Flags().StringVar(&opts.frontBG, "front-bg", "", "front-side background image")
	cmd.Flags().StringVar(&opts.backBG, "back-bg", "", "back-side background image")
	cmd.Flags().IntVar(&opts.qrPaddingPx, "qr-padding-px", opts.qrPaddingPx, "code quiet zone in pixels (default: four modules)")
	cmd.Flags().Float64Var(&opts.shrinkFront, "shrink-front", 0, "shrink the code area by a percentage")
	cmd.Flags().Float64Var(&opts.shrinkBack, "shrink-back", 0, "shrink the text area by a percentage")
	cmd.Flags().BoolVar(&opts.noMirror, "no-mirror-backside", false, "disable back-side column mirroring")
	cmd.Flags().BoolVar(&opts.keepDupes, "keep-duplicates", false, "keep duplicate records instead of dropping them")
	cmd.Flags().BoolVar(&opts.fixLinks, "fix-links", false, "validate and repair links before rendering")
	cmd.Flags().BoolVar(&opts.fixYears, "fix-years", false, "fill empty years from recording metadata")
	cmd.Flags().BoolVar(&opts.fixCSV, "fix-csv", false, "write corrections back into the CSV (keeps a .bak)")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", "", "lookup cache directory")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config profile (default ~/.config/cardpress/config.toml)")
	cmd.Flags().BoolVar(&opts.coreFonts, "core-fonts", false, "render with built-in PDF fonts only")

	return cmd
}

// applyConfig fills flag values from the config profile. Flags the user
// set explicitly always win.
func applyConfig(cmd *cobra.Command, opts *generateOpts) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	gen := cfg.Generate

	set := func(name string) bool { return !cmd.Flags().Changed(name) }
	if set("output") && gen.Output != "" {
		opts.output = gen.Output
	}
	if set("icon") && gen.Icon != "" {
		opts.icon = gen.Icon
	}
	if set("front-bg") && gen.FrontBG != "" {
		opts.frontBG = gen.FrontBG
	}
	if set("back-bg") && gen.BackBG != "" {
		opts.backBG = gen.BackBG
	}
	if set("qr-padding-px") && gen.QRPaddingPx != nil {
		opts.qrPaddingPx = *gen.QRPaddingPx
	}
	if set("shrink-front") && gen.ShrinkFront != nil {
		opts.shrinkFront = *gen.ShrinkFront
	}
	if set("shrink-back") && gen.ShrinkBack != nil {
		opts.shrinkBack = *gen.ShrinkBack
	}
	if set("no-mirror-backside") && gen.NoMirror != nil {
		opts.noMirror = *gen.NoMirror
	}
	if set("cache-dir") && gen.CacheDir != "" {
		opts.cacheDir = gen.CacheDir
	}
	return nil
}

// runGenerate executes the pipeline and prints the run summary.
func runGenerate(ctx context.Context, dataset string, opts *generateOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	// Transient code images live in a per-run directory so parallel
	// invocations never collide.
	tempDir := filepath.Join(os.TempDir(), "cardpress-"+uuid.NewString())
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return err
	}
	defer os.RemoveAll(tempDir)

	pipeOpts := pipeline.Options{
		DataPath:      dataset,
		OutputPath:    opts.output,
		IconPath:      opts.icon,
		QuietZonePx:   quietZoneOverride(opts.qrPaddingPx),
		NoMirror:      opts.noMirror,
		FrontBG:       opts.frontBG,
		BackBG:        opts.backBG,
		ShrinkFront:   opts.shrinkFront,
		ShrinkBack:    opts.shrinkBack,
		SkipDedup:     opts.keepDupes,
		FixLinks:      opts.fixLinks,
		FixYears:      opts.fixYears,
		WriteBack:     opts.fixCSV,
		CoreFontsOnly: opts.coreFonts,
		CacheDir:      opts.cacheDir,
		TempDir:       tempDir,
		Logger:        logger,
	}

	runner := pipeline.NewRunner(logger)
	var result *pipeline.Result
	err := withRenderProgress(func() error {
		var err error
		result, err = runner.Execute(ctx, pipeOpts)
		return err
	})
	if err != nil {
		printError("%v", err)
		return err
	}

	prog.done(fmt.Sprintf("Rendered %d cards", result.Records))
	printSummary(result)
	return nil
}

// printSummary renders the post-run report.
func printSummary(result *pipeline.Result) {
	printNewline()
	printSuccess("Generated %s cards on %s page pairs",
		StyleNumber.Render(fmt.Sprintf("%d", result.Records)),
		StyleNumber.Render(fmt.Sprintf("%d", result.Pages)))
	printFile(result.OutputPath)
	printStats(result.Records, result.Pages, result.Dedup.Removed)

	if len(result.Fixes) > 0 {
		printInfo("Link check: %d changed, %d unresolved",
			result.Changed(), result.Unresolved())
	}
	if len(result.Skipped) > 0 {
		printWarning("%d records have no link; their front cells stay empty", len(result.Skipped))
		printDetail("rows %s", formatRows(result.Skipped))
	}
}

// quietZoneOverride maps the flag value to the pipeline option. The
// flag defaults to -1 so that an explicit 0 (no quiet zone at all)
// stays distinguishable from "not set".
func quietZoneOverride(px int) *int {
	if px < 0 {
		return nil
	}
	return &px
}

// formatRows renders zero-based record indices as 1-based CSV data rows.
func formatRows(indices []int) string {
	rows := make([]string, len(indices))
	for i, idx := range indices {
		rows[i] = fmt.Sprintf("%d", idx+2) // +1 for the header, +1 for 1-based
	}
	return strings.Join(rows, ", ")
}
