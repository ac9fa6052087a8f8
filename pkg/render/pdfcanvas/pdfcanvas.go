// Package pdfcanvas implements the render.Canvas interface on top of a
// PDF document.
//
// The render core speaks lower-left-origin page coordinates with y
// growing upward; the PDF library uses an upper-left origin with y
// growing downward. This adapter owns that flip so no other package has
// to think about it.
package pdfcanvas

import (
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/cardpress/cardpress/pkg/errors"
	"github.com/cardpress/cardpress/pkg/fontkit"
)

// Canvas renders drawing operations into a PDF document.
type Canvas struct {
	doc   *fpdf.Fpdf
	fonts fontkit.Registry
	out   string
	pageH float64
}

// New creates a PDF canvas that writes to the file at path when closed.
// The fonts registry maps the face names the layout core uses to either
// built-in core fonts or TTF files embedded into the document.
func New(path string, fonts fontkit.Registry) (*Canvas, error) {
	doc := fpdf.NewCustom(&fpdf.InitType{UnitStr: "pt"})
	doc.SetAutoPageBreak(false, 0)
	doc.SetMargins(0, 0, 0)

	if fonts.Embedded() {
		doc.AddUTF8Font(fonts.Regular.Family, fonts.Regular.Style, fonts.Regular.File)
		if fonts.Bold.File != fonts.Regular.File || fonts.Bold.Style != fonts.Regular.Style {
			doc.AddUTF8Font(fonts.Bold.Family, fonts.Bold.Style, fonts.Bold.File)
		}
		if err := doc.Error(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFont, err, "embed fonts")
		}
	}

	return &Canvas{
		doc:   doc,
		fonts: fonts,
		out:   path,
	}, nil
}

// flip converts a lower-left y coordinate to the document's
// upper-left convention.
func (c *Canvas) flip(y float64) float64 { return c.pageH - y }

// BeginPage appends a page of the given size in points.
func (c *Canvas) BeginPage(width, height float64) error {
	c.pageH = height
	c.doc.AddPageFormat("P", fpdf.SizeType{Wd: width, Ht: height})
	if err := c.doc.Error(); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "add page")
	}
	return nil
}

// DrawImage paints the image file stretched into the rectangle. The
// document registers each file once by path and reuses it across pages.
func (c *Canvas) DrawImage(path string, x, y, w, h float64) error {
	opts := fpdf.ImageOptions{}
	c.doc.ImageOptions(path, x, c.flip(y)-h, w, h, false, opts, 0, "")
	if err := c.doc.Error(); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "draw image %s", path)
	}
	return nil
}

// SetFillColor sets the fill color for rectangles and text, channels
// in [0,1].
func (c *Canvas) SetFillColor(r, g, b float64) {
	ri, gi, bi := to255(r), to255(g), to255(b)
	c.doc.SetFillColor(ri, gi, bi)
	c.doc.SetTextColor(ri, gi, bi)
}

// DrawRect draws a rectangle, filled with the current fill color or
// stroked with a thin black border.
func (c *Canvas) DrawRect(x, y, w, h float64, fill bool) error {
	style := "D"
	if fill {
		style = "F"
	} else {
		c.doc.SetDrawColor(0, 0, 0)
		c.doc.SetLineWidth(0.5)
	}
	c.doc.Rect(x, c.flip(y)-h, w, h, style)
	if err := c.doc.Error(); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "draw rect")
	}
	return nil
}

// TextWidth measures the rendered width of text in the given face at
// size points.
func (c *Canvas) TextWidth(text, font string, size float64) float64 {
	c.setFont(font, size)
	return c.doc.GetStringWidth(text)
}

// DrawText paints a single line with its baseline origin at (x, y).
func (c *Canvas) DrawText(text, font string, size, x, y float64) error {
	c.setFont(font, size)
	c.doc.Text(x, c.flip(y), text)
	if err := c.doc.Error(); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "draw text")
	}
	return nil
}

func (c *Canvas) setFont(name string, size float64) {
	face, ok := c.fonts.Lookup(name)
	if !ok {
		face = c.fonts.Regular
	}
	c.doc.SetFont(face.Family, face.Style, size)
}

// Close finalizes the document and writes it to the output path.
func (c *Canvas) Close() error {
	if err := c.doc.OutputFileAndClose(c.out); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "write %s", c.out)
	}
	return nil
}

// WriteTo finalizes the document into w instead of the output path.
// Used by tests and the dry-run check command.
func (c *Canvas) WriteTo(w io.Writer) error {
	if err := c.doc.Output(w); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "write document")
	}
	return nil
}

func to255(v float64) int {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return int(v*255 + 0.5)
}
