package render

import (
	"context"
	"math"

	"github.com/cardpress/cardpress/pkg/deck"
	"github.com/cardpress/cardpress/pkg/errors"
	"github.com/cardpress/cardpress/pkg/fontkit"
	"github.com/cardpress/cardpress/pkg/layout"
	"github.com/cardpress/cardpress/pkg/observability"
	"github.com/cardpress/cardpress/pkg/textfit"
)

// Page side names used for hooks and logging.
const (
	SideFront = "front"
	SideBack  = "back"
)

// Options configures a Compositor.
type Options struct {
	// Mirror flips back-side columns so a sheet flipped along its
	// vertical axis aligns each back cell behind its front cell.
	// Defaults to enabled in the CLI.
	Mirror bool

	// FrontShrink and BackShrink reduce the inner content area of each
	// side by a percentage in [0,100]; out-of-range values mean no
	// shrink.
	FrontShrink float64
	BackShrink  float64

	// FrontBG and BackBG are optional background images painted into
	// every cell rectangle before its content. Both or neither must be
	// set; the grid plan enforces that invariant.
	FrontBG string
	BackBG  string
}

// Compositor walks the deck in page-sized batches and emits one front
// page and one back page per batch. It owns the append-only list of
// skipped front cells; everything else it touches is read-only.
type Compositor struct {
	plan    layout.Plan
	canvas  Canvas
	codes   CodeSource
	fonts   fontkit.Registry
	opts    Options
	skipped []int
}

// New creates a Compositor over a grid plan and drawing surface.
func New(plan layout.Plan, canvas Canvas, codes CodeSource, fonts fontkit.Registry, opts Options) *Compositor {
	return &Compositor{
		plan:   plan,
		canvas: canvas,
		codes:  codes,
		fonts:  fonts,
		opts:   opts,
	}
}

// Skipped returns the zero-based record indices whose front cells were
// skipped for lack of a link. The back side of those records still
// renders.
func (c *Compositor) Skipped() []int { return c.skipped }

// Pages returns the number of page pairs needed for n records.
func (c *Compositor) Pages(n int) int {
	per := c.plan.CellsPerPage()
	return (n + per - 1) / per
}

// Render composes the whole document: ceil(N/cellsPerPage) page pairs,
// in deck order. A batch is never split across a page boundary; the
// final partial batch still emits both sides.
func (c *Compositor) Render(ctx context.Context, records []deck.Record) error {
	per := c.plan.CellsPerPage()
	page := 0
	for start := 0; start < len(records); start += per {
		page++
		end := min(start+per, len(records))
		batch := records[start:end]

		observability.Generator().OnPageStart(ctx, page, SideFront)
		if err := c.renderFront(ctx, batch, start); err != nil {
			return err
		}
		observability.Generator().OnPageStart(ctx, page, SideBack)
		if err := c.renderBack(batch); err != nil {
			return err
		}
	}
	return nil
}

// cellOrigin computes the outer rectangle for the batch-relative index.
// On the back side with mirroring enabled, only the column is
// reflected; the row and the record order never change.
func (c *Compositor) cellOrigin(index int, back bool) layout.Rect {
	col := index % c.plan.Cols
	row := index / c.plan.Cols
	if back && c.opts.Mirror {
		col = c.plan.Cols - 1 - col
	}
	return c.plan.CellRect(col, row)
}

func (c *Compositor) renderFront(ctx context.Context, batch []deck.Record, offset int) error {
	if err := c.canvas.BeginPage(c.plan.PageW, c.plan.PageH); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "begin front page")
	}
	for i, rec := range batch {
		cell := c.cellOrigin(i, false)
		if c.opts.FrontBG != "" {
			if err := c.canvas.DrawImage(c.opts.FrontBG, cell.X, cell.Y, cell.W, cell.H); err != nil {
				return errors.Wrap(errors.ErrCodeRenderFailed, err, "draw front background")
			}
		}
		if !rec.HasLink() {
			c.skipped = append(c.skipped, offset+i)
			observability.Generator().OnCellSkipped(ctx, offset+i)
			continue
		}
		if err := c.placeCode(rec.Link, cell); err != nil {
			return err
		}
	}
	return nil
}

// placeCode renders the QR for the payload into the cell's inner
// rectangle: squared to min(w,h) and centered. The transient image file
// is removed on every exit path, including drawing failures.
func (c *Compositor) placeCode(payload string, cell layout.Rect) error {
	path, cleanup, err := c.codes.Generate(payload)
	if err != nil {
		return err
	}
	defer cleanup()

	inner := cell.Inner(layout.PaddingRatio).Shrink(c.opts.FrontShrink)
	size := math.Min(inner.W, inner.H)
	x := inner.X + (inner.W-size)/2
	y := inner.Y + (inner.H-size)/2
	if err := c.canvas.DrawImage(path, x, y, size, size); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "place code image")
	}
	return nil
}

func (c *Compositor) renderBack(batch []deck.Record) error {
	if err := c.canvas.BeginPage(c.plan.PageW, c.plan.PageH); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "begin back page")
	}
	for i, rec := range batch {
		cell := c.cellOrigin(i, true)
		if c.opts.BackBG != "" {
			if err := c.canvas.DrawImage(c.opts.BackBG, cell.X, cell.Y, cell.W, cell.H); err != nil {
				return errors.Wrap(errors.ErrCodeRenderFailed, err, "draw back background")
			}
		}
		if err := c.renderText(rec, cell); err != nil {
			return err
		}
	}
	return nil
}

// renderText paints the card frame and the fitted artist/title/year
// blocks. Records with no text still get their frame; text that cannot
// fit even at the minimum font size clips silently.
func (c *Compositor) renderText(rec deck.Record, cell layout.Rect) error {
	if col := rec.BackColor; col != nil {
		c.canvas.SetFillColor(col.R, col.G, col.B)
		if err := c.canvas.DrawRect(cell.X, cell.Y, cell.W, cell.H, true); err != nil {
			return errors.Wrap(errors.ErrCodeRenderFailed, err, "fill card background")
		}
	} else {
		if err := c.canvas.DrawRect(cell.X, cell.Y, cell.W, cell.H, false); err != nil {
			return errors.Wrap(errors.ErrCodeRenderFailed, err, "stroke card border")
		}
	}
	c.canvas.SetFillColor(0, 0, 0)

	inner := cell.Inner(layout.PaddingRatio).Shrink(c.opts.BackShrink)
	artist := textfit.Block{
		Font: c.fonts.Bold.Name,
		Size: textfit.DefaultArtistSize,
		Cap:  textfit.ArtistMaxHeightRatio,
		Text: rec.Artist,
	}
	title := textfit.Block{
		Font: c.fonts.Regular.Name,
		Size: textfit.DefaultTitleSize,
		Cap:  textfit.TitleMaxHeightRatio,
		Text: rec.Title,
	}
	year := textfit.Block{
		Font: c.fonts.Bold.Name,
		Size: textfit.DefaultYearSize,
		Cap:  textfit.YearMaxHeightRatio,
		Text: rec.Year,
	}

	res := textfit.Fit(c.canvas, inner, artist, title, year)
	for _, line := range res.Place(c.canvas, inner) {
		if err := c.canvas.DrawText(line.Text, line.Font, line.Size, line.X, line.Y); err != nil {
			return errors.Wrap(errors.ErrCodeRenderFailed, err, "draw card text")
		}
	}
	return nil
}
