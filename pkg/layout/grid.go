package layout

import (
	"math"

	"github.com/cardpress/cardpress/pkg/errors"
	"github.com/cardpress/cardpress/pkg/imagemeta"
)

// Page and cell measurements for fixed-grid mode, in PDF points.
// A4 in points, and a 6.5cm square card with a 0.8cm top margin.
const (
	a4Width  = 595.2756
	a4Height = 841.8898

	cm = 72.0 / 2.54

	fixedCellSize   = 6.5 * cm
	fixedTopInset   = 0.8 * cm
	backgroundCols  = 3
	defaultImageDPI = 300.0
	pointsPerInch   = 72.0
)

// Plan describes the card grid for one generation run: page size, cell
// size, grid shape and insets. It is computed once and shared read-only
// by the sequencer and compositor.
type Plan struct {
	PageW, PageH float64
	CellW, CellH float64
	Cols, Rows   int

	// HInset and VInset position the grid on the page. VInset is measured
	// from the top edge.
	HInset, VInset float64
}

// CellsPerPage returns the number of card slots on one page side.
func (p Plan) CellsPerPage() int { return p.Cols * p.Rows }

// CellRect returns the outer rectangle of the cell at the given column
// and row. Row 0 is the topmost visual row; the returned origin is the
// lower-left corner of the cell.
func (p Plan) CellRect(col, row int) Rect {
	return Rect{
		X: p.HInset + float64(col)*p.CellW,
		Y: p.PageH - p.VInset - float64(row+1)*p.CellH,
		W: p.CellW,
		H: p.CellH,
	}
}

// FixedPlan builds the grid for plain A4 pages with fixed-size square
// cells. The grid is horizontally centered and offset from the top edge
// by a fixed inset.
func FixedPlan() Plan {
	cols := int(math.Floor(a4Width / fixedCellSize))
	rows := int(math.Floor(a4Height / fixedCellSize))
	return Plan{
		PageW:  a4Width,
		PageH:  a4Height,
		CellW:  fixedCellSize,
		CellH:  fixedCellSize,
		Cols:   cols,
		Rows:   rows,
		HInset: (a4Width - fixedCellSize*float64(cols)) / 2,
		VInset: fixedTopInset,
	}
}

// BackgroundPlan builds the grid from a background image: the page takes
// the image's pixel dimensions converted to points at the image's DPI
// (default 300), columns are fixed at 3, and the cell height follows the
// image aspect ratio so the background tiles without distortion.
func BackgroundPlan(front imagemeta.Info) Plan {
	dpi := front.DPI
	if dpi <= 0 {
		dpi = defaultImageDPI
	}
	pageW := float64(front.Width) * pointsPerInch / dpi
	pageH := float64(front.Height) * pointsPerInch / dpi

	cellW := pageW / backgroundCols
	aspect := float64(front.Height) / float64(front.Width)
	cellH := cellW * aspect

	rows := 1
	if cellH > 0 {
		rows = int(math.Floor(pageH / cellH))
		if rows < 1 {
			rows = 1
		}
	}
	return Plan{
		PageW: pageW,
		PageH: pageH,
		CellW: cellW,
		CellH: cellH,
		Cols:  backgroundCols,
		Rows:  rows,
	}
}

// NewPlan selects the grid mode from the optional background images.
// Both backgrounds must be supplied together and must have identical
// pixel dimensions; violating either invariant is a configuration error
// raised before any page is emitted.
func NewPlan(front, back *imagemeta.Info) (Plan, error) {
	switch {
	case front == nil && back == nil:
		return FixedPlan(), nil
	case front == nil || back == nil:
		return Plan{}, errors.New(errors.ErrCodeInvalidConfig,
			"front and back background images must be supplied together")
	case front.Width != back.Width || front.Height != back.Height:
		return Plan{}, errors.New(errors.ErrCodeInvalidConfig,
			"front and back background images must be the exact same size (%dx%d vs %dx%d)",
			front.Width, front.Height, back.Width, back.Height)
	}
	return BackgroundPlan(*front), nil
}
