package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cardpress/cardpress/pkg/deck"
	"github.com/cardpress/cardpress/pkg/errors"
	"github.com/cardpress/cardpress/pkg/fontkit"
	"github.com/cardpress/cardpress/pkg/httputil"
	"github.com/cardpress/cardpress/pkg/imagemeta"
	"github.com/cardpress/cardpress/pkg/layout"
	"github.com/cardpress/cardpress/pkg/linkfix"
	"github.com/cardpress/cardpress/pkg/observability"
	"github.com/cardpress/cardpress/pkg/qrgen"
	"github.com/cardpress/cardpress/pkg/render"
	"github.com/cardpress/cardpress/pkg/render/pdfcanvas"
)

// Runner executes the card generation pipeline.
//
// The Runner is stateless except for its logger - it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner
// with different options.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. A nil logger falls back to the default.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Execute runs the complete ingest → precheck → plan → render pipeline
// and writes the PDF.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	logger := r.logger(opts)

	result, d, err := r.prepare(ctx, opts, logger)
	if err != nil {
		return nil, err
	}

	plan, err := r.Plan(opts)
	if err != nil {
		return nil, err
	}

	renderStart := time.Now()
	skipped, err := r.renderDeck(ctx, d, plan, opts)
	if err != nil {
		observability.Generator().OnGenerateComplete(ctx, d.Len(), 0, 0, time.Since(start), err)
		return nil, err
	}
	result.Stats.RenderTime = time.Since(renderStart)

	result.OutputPath = opts.OutputPath
	result.Skipped = skipped
	result.Pages = pagePairs(d.Len(), plan.CellsPerPage())
	result.Stats.Total = time.Since(start)

	logger.Info("rendered cards",
		"records", result.Records,
		"pages", result.Pages,
		"skipped", len(result.Skipped),
		"output", result.OutputPath,
		"duration", result.Stats.RenderTime)

	observability.Generator().OnGenerateComplete(ctx,
		result.Records, result.Pages, len(result.Skipped), result.Stats.Total, nil)
	return result, nil
}

// Check runs ingest, precheck and planning without writing a PDF. It
// reports what a full run would produce: record and page counts,
// duplicates, and records whose front cell would stay empty.
func (r *Runner) Check(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	logger := r.logger(opts)

	result, d, err := r.prepare(ctx, opts, logger)
	if err != nil {
		return nil, err
	}

	plan, err := r.Plan(opts)
	if err != nil {
		return nil, err
	}

	for i, rec := range d.Records {
		if !rec.HasLink() {
			result.Skipped = append(result.Skipped, i)
		}
	}
	result.Pages = pagePairs(d.Len(), plan.CellsPerPage())
	result.Stats.Total = time.Since(start)
	return result, nil
}

// prepare runs the ingest and precheck stages shared by Execute and
// Check.
func (r *Runner) prepare(ctx context.Context, opts Options, logger *log.Logger) (*Result, *deck.Deck, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, err
	}

	ingestStart := time.Now()
	d, dedup, err := r.Ingest(opts)
	if err != nil {
		return nil, nil, err
	}
	result := &Result{Records: d.Len(), Dedup: dedup}
	result.Stats.IngestTime = time.Since(ingestStart)

	logger.Info("loaded dataset",
		"path", opts.DataPath,
		"records", d.Len(),
		"duplicates", dedup.Removed,
		"duration", result.Stats.IngestTime)

	if opts.FixLinks || opts.FixYears {
		fixStart := time.Now()
		fixes, err := r.Fix(ctx, d, opts)
		if err != nil {
			return nil, nil, err
		}
		result.Fixes = fixes
		result.Stats.FixTime = time.Since(fixStart)

		logger.Info("checked links",
			"records", len(fixes),
			"changed", result.Changed(),
			"unresolved", result.Unresolved(),
			"duration", result.Stats.FixTime)
	}
	return result, d, nil
}

// Ingest loads the dataset and removes duplicates unless disabled.
func (r *Runner) Ingest(opts Options) (*deck.Deck, deck.DedupResult, error) {
	d, err := deck.Load(opts.DataPath)
	if err != nil {
		return nil, deck.DedupResult{}, err
	}
	if d.Len() == 0 {
		return nil, deck.DedupResult{}, errors.New(errors.ErrCodeInvalidDataset,
			"dataset %s has no records", opts.DataPath)
	}
	var dedup deck.DedupResult
	if !opts.SkipDedup {
		dedup = d.Deduplicate()
	}
	return d, dedup, nil
}

// Fix runs the link repair chain, applies corrections to the deck and
// optionally writes them back to the CSV.
func (r *Runner) Fix(ctx context.Context, d *deck.Deck, opts Options) ([]linkfix.Outcome, error) {
	cache, err := httputil.NewCache(opts.CacheDir, opts.CacheTTL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open lookup cache")
	}

	fixer := linkfix.New(linkfix.Options{
		Cache:    cache,
		FixYears: opts.FixYears,
	})
	outcomes, err := fixer.Run(ctx, d.Records)
	if err != nil {
		return nil, err
	}

	linkfix.Apply(d, outcomes)
	if opts.WriteBack {
		if err := d.WriteFile(opts.DataPath); err != nil {
			return nil, err
		}
	}
	return outcomes, nil
}

// Plan computes the page grid from the options.
func (r *Runner) Plan(opts Options) (layout.Plan, error) {
	front, err := imagemeta.ReadOptional(opts.FrontBG)
	if err != nil {
		return layout.Plan{}, err
	}
	back, err := imagemeta.ReadOptional(opts.BackBG)
	if err != nil {
		return layout.Plan{}, err
	}
	return layout.NewPlan(front, back)
}

// renderDeck composes the deck into the output PDF.
func (r *Runner) renderDeck(ctx context.Context, d *deck.Deck, plan layout.Plan, opts Options) ([]int, error) {
	fonts := fontkit.Core()
	if !opts.CoreFontsOnly {
		fonts = fontkit.Discover()
	}

	canvas, err := pdfcanvas.New(opts.OutputPath, fonts)
	if err != nil {
		return nil, err
	}

	codes := qrgen.New(qrgen.Options{
		IconPath:    opts.IconPath,
		QuietZonePx: quietZonePx(opts),
		TempDir:     opts.TempDir,
	})

	comp := render.New(plan, canvas, codes, fonts, render.Options{
		Mirror:      !opts.NoMirror,
		FrontShrink: opts.ShrinkFront,
		BackShrink:  opts.ShrinkBack,
		FrontBG:     opts.FrontBG,
		BackBG:      opts.BackBG,
	})
	if err := comp.Render(ctx, d.Records); err != nil {
		return nil, err
	}
	if err := canvas.Close(); err != nil {
		return nil, err
	}
	return comp.Skipped(), nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

// quietZonePx resolves the quiet-zone override for the code generator.
// An unset option keeps the generator's default; an explicit value is
// passed through unchanged, including zero.
func quietZonePx(opts Options) int {
	if opts.QuietZonePx == nil {
		return DefaultQuietZonePx
	}
	return *opts.QuietZonePx
}

func pagePairs(records, perPage int) int {
	if records == 0 || perPage == 0 {
		return 0
	}
	return (records + perPage - 1) / perPage
}
