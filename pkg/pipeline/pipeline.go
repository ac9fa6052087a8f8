// Package pipeline provides the core card generation pipeline.
//
// This package implements the complete ingest → precheck → plan →
// render flow used by the CLI. By centralizing this logic, every entry
// point behaves identically and option defaults live in one place.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Ingest: Load the CSV dataset and deduplicate records
//  2. Precheck: Optionally validate and repair links and years
//  3. Plan: Compute the page grid (fixed A4 or background-driven)
//  4. Render: Compose the front/back page pairs into a PDF
//
// Each stage can be run independently or as part of the complete
// pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(logger)
//	opts := pipeline.Options{
//	    DataPath:   "songs.csv",
//	    OutputPath: "cards.pdf",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Pages, "page pairs written")
package pipeline

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cardpress/cardpress/pkg/deck"
	"github.com/cardpress/cardpress/pkg/errors"
	"github.com/cardpress/cardpress/pkg/linkfix"
)

// Default values shared by every pipeline entry point.
const (
	// DefaultOutput is the PDF path used when none is given.
	DefaultOutput = "cards.pdf"

	// DefaultQuietZonePx means "use the code's own default quiet zone";
	// any non-negative value overrides it in pixels.
	DefaultQuietZonePx = -1

	// DefaultCacheTTL bounds how long remote lookup responses are
	// reused across runs.
	DefaultCacheTTL = 24 * time.Hour
)

// Options configures a pipeline run. The zero value plus a DataPath is
// a valid configuration.
type Options struct {
	// DataPath is the CSV dataset to load. Required.
	DataPath string

	// OutputPath is the PDF file to write. Defaults to DefaultOutput.
	OutputPath string

	// IconPath is an optional file path or URL of a center icon drawn
	// over every code.
	IconPath string

	// QuietZonePx overrides the code quiet zone in pixels, rounded to
	// whole modules; an explicit zero removes the quiet zone entirely.
	// Nil keeps the default four modules.
	QuietZonePx *int

	// NoMirror disables back-side column mirroring for duplex printers
	// that flip along the short edge.
	NoMirror bool

	// FrontBG and BackBG are background images tiled into every cell.
	// Both or neither must be given and they must share pixel
	// dimensions; supplying them switches the grid from fixed A4 cells
	// to image-driven geometry.
	FrontBG string
	BackBG  string

	// ShrinkFront and ShrinkBack shrink the printable area of each side
	// by a percentage in [0,100].
	ShrinkFront float64
	ShrinkBack  float64

	// SkipDedup keeps duplicate records instead of dropping them.
	SkipDedup bool

	// FixLinks runs the link repair chain before rendering. FixYears
	// additionally fills empty year columns from recording metadata.
	// WriteBack persists corrections into the CSV (the original is kept
	// as a .bak file).
	FixLinks  bool
	FixYears  bool
	WriteBack bool

	// CoreFontsOnly skips host font discovery and renders with the
	// built-in PDF fonts. Mostly useful for reproducible output in
	// tests.
	CoreFontsOnly bool

	// CacheDir and CacheTTL configure the remote lookup cache used by
	// link fixing. An empty dir uses the default user cache location.
	CacheDir string
	CacheTTL time.Duration

	// TempDir receives transient code images. Empty uses the system
	// temporary directory.
	TempDir string

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger
}

// ValidateAndSetDefaults checks required fields and fills defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if strings.TrimSpace(o.DataPath) == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "dataset path is required")
	}
	if o.OutputPath == "" {
		o.OutputPath = DefaultOutput
	}
	if o.CacheTTL == 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	if (o.FrontBG == "") != (o.BackBG == "") {
		return errors.New(errors.ErrCodeInvalidConfig,
			"front and back background images must be supplied together")
	}
	if o.WriteBack && !o.FixLinks && !o.FixYears {
		return errors.New(errors.ErrCodeInvalidConfig,
			"write-back requires link or year fixing to be enabled")
	}
	return nil
}

// Stats records per-stage wall-clock timings.
type Stats struct {
	IngestTime time.Duration
	FixTime    time.Duration
	RenderTime time.Duration
	Total      time.Duration
}

// Result is the outcome of a pipeline run.
type Result struct {
	// OutputPath is the PDF that was written, empty for check runs.
	OutputPath string

	// Records is the number of records rendered, after deduplication.
	Records int

	// Dedup reports what deduplication removed.
	Dedup deck.DedupResult

	// Fixes holds one outcome per record when link fixing ran.
	Fixes []linkfix.Outcome

	// Pages is the number of front/back page pairs.
	Pages int

	// Skipped lists record indices whose front cell was left without a
	// code because the record has no link.
	Skipped []int

	Stats Stats
}

// Changed counts fix outcomes that corrected a link or a year.
func (r *Result) Changed() int {
	n := 0
	for _, f := range r.Fixes {
		if (f.Status == linkfix.StatusCorrected && f.Link != "") || f.Year != "" {
			n++
		}
	}
	return n
}

// Unresolved counts fix outcomes that no strategy could settle.
func (r *Result) Unresolved() int {
	n := 0
	for _, f := range r.Fixes {
		if f.Status == linkfix.StatusNotFound || f.Status == linkfix.StatusError {
			n++
		}
	}
	return n
}
