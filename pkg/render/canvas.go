// Package render composes card pages: it sequences records into
// front/back page pairs, positions each cell on the grid, and delegates
// drawing to a Canvas implementation.
package render

// Canvas is the drawing-surface collaborator. Coordinates are PDF
// points with the origin at the lower-left corner of the page, y up.
//
// Implementations append drawing operations to the current page; any
// error from a Canvas method is fatal for the whole run.
type Canvas interface {
	// BeginPage starts a new page of the given size.
	BeginPage(width, height float64) error

	// DrawImage paints the image file into the rectangle, stretched to
	// fill it exactly.
	DrawImage(path string, x, y, w, h float64) error

	// SetFillColor sets the fill color for subsequent rectangles and
	// text, channels in [0,1].
	SetFillColor(r, g, b float64)

	// DrawRect draws a rectangle, filled with the current fill color or
	// stroked with a hairline border.
	DrawRect(x, y, w, h float64, fill bool) error

	// TextWidth measures the rendered width of text. This is the text
	// metrics adapter used by the fitting engine.
	TextWidth(text, font string, size float64) float64

	// DrawText paints a single line with its baseline origin at (x, y).
	DrawText(text, font string, size, x, y float64) error

	// Close finalizes the document.
	Close() error
}

// CodeSource is the code-image collaborator: it renders a square
// scannable raster for a payload and hands back a transient file. The
// cleanup function must be called on every exit path.
type CodeSource interface {
	Generate(payload string) (path string, cleanup func() error, err error)
}
