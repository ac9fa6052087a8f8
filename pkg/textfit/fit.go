package textfit

import "github.com/cardpress/cardpress/pkg/layout"

// Typography constants shared by fitting and placement. The 0.98 safety
// factor and the iteration cap of 8 are part of the visual contract;
// changing them changes the output of every existing deck.
const (
	// MinFontSize is the floor below which no block is ever scaled.
	MinFontSize = 6.0

	maxFitIterations = 8
	lineGapRatio     = 0.25
	blockGapRatio    = 0.4
	safetyFactor     = 0.98
	minScaleDown     = 0.1
)

// Relative caps for the initial block sizes, as fractions of the inner
// cell height.
const (
	ArtistMaxHeightRatio = 0.12
	TitleMaxHeightRatio  = 0.12
	YearMaxHeightRatio   = 0.20
)

// Default base font sizes before capping and fitting.
const (
	DefaultArtistSize = 14.0
	DefaultTitleSize  = 14.0
	DefaultYearSize   = 50.0
)

// Block is one semantic text block before fitting. A blank Text marks
// the block as absent.
type Block struct {
	Font string  // font identifier understood by the Measurer
	Size float64 // base size before capping
	Cap  float64 // max initial size as a fraction of inner height
	Text string
}

func (b Block) present() bool { return len(b.Text) > 0 }

// FittedBlock is a block after fitting: the final size and wrapped lines.
// An absent block has no lines.
type FittedBlock struct {
	Font  string
	Size  float64
	Lines []string
}

func (b FittedBlock) present() bool { return len(b.Lines) > 0 }

// lineGap returns the vertical gap between wrapped lines of this block.
func (b FittedBlock) lineGap() float64 { return b.Size * lineGapRatio }

// height returns the stacked height of the block's lines including
// intra-block gaps.
func (b FittedBlock) height() float64 {
	n := len(b.Lines)
	if n == 0 {
		return 0
	}
	return float64(n)*b.Size + float64(n-1)*b.lineGap()
}

// Result holds the three fitted blocks in paint order.
type Result struct {
	Artist FittedBlock
	Title  FittedBlock
	Year   FittedBlock
}

// blocks returns the fitted blocks in paint order.
func (r *Result) blocks() [3]*FittedBlock {
	return [3]*FittedBlock{&r.Artist, &r.Title, &r.Year}
}

// blockGap returns the gap inserted between adjacent present blocks:
// a fraction of the smallest present block size.
func (r *Result) blockGap() float64 {
	min := 0.0
	for _, b := range r.blocks() {
		if !b.present() {
			continue
		}
		if min == 0 || b.Size < min {
			min = b.Size
		}
	}
	return min * blockGapRatio
}

// TotalHeight returns the stacked height of all present blocks plus the
// gaps between them.
func (r *Result) TotalHeight() float64 {
	total := 0.0
	gaps := -1
	for _, b := range r.blocks() {
		if !b.present() {
			continue
		}
		total += b.height()
		gaps++
	}
	if gaps > 0 {
		total += float64(gaps) * r.blockGap()
	}
	return total
}

// Fit wraps and scales the artist, title and year blocks until their
// stacked height fits the inner rectangle, then applies a width-based
// correction to the single-line year.
//
// The loop runs at most 8 refinement iterations. When the iteration
// budget is exhausted the blocks are rendered at their last sizes; text
// that still overflows after scaling to the minimum floor clips silently.
// This bounded best-effort behavior is intentional; it is not a
// fixed-point solver.
func Fit(m Measurer, inner layout.Rect, artist, title, year Block) Result {
	sizeArtist := initialSize(artist, inner.H)
	sizeTitle := initialSize(title, inner.H)
	sizeYear := initialSize(year, inner.H)

	var res Result
	for iter := 0; iter < maxFitIterations; iter++ {
		res = assemble(m, inner.W, artist, title, year, sizeArtist, sizeTitle, sizeYear)

		total := res.TotalHeight()
		if total <= inner.H {
			break
		}

		scaleDown := inner.H / total * safetyFactor
		if scaleDown < minScaleDown {
			scaleDown = minScaleDown
		}
		sizeArtist = floorSize(sizeArtist * scaleDown)
		sizeTitle = floorSize(sizeTitle * scaleDown)
		sizeYear = floorSize(sizeYear * scaleDown)
	}

	// The year renders as a single unwrapped line; if it is still wider
	// than the cell, scale it down by the width ratio.
	if year.present() {
		lw := m.TextWidth(year.Text, year.Font, sizeYear)
		if lw > inner.W && lw > 0 {
			sizeYear = floorSize(sizeYear * (inner.W / lw) * safetyFactor)
		}
	}

	// Re-wrap at the final sizes for placement.
	return assemble(m, inner.W, artist, title, year, sizeArtist, sizeTitle, sizeYear)
}

// initialSize caps a block's base size relative to the inner height.
func initialSize(b Block, innerH float64) float64 {
	size := b.Size
	if capped := innerH * b.Cap; capped < size {
		size = capped
	}
	return size
}

func floorSize(size float64) float64 {
	if size < MinFontSize {
		return MinFontSize
	}
	return size
}

// assemble wraps each present block at the given sizes. The year is
// never wrapped; it always occupies a single line.
func assemble(m Measurer, maxWidth float64, artist, title, year Block, sizeArtist, sizeTitle, sizeYear float64) Result {
	res := Result{
		Artist: FittedBlock{Font: artist.Font, Size: sizeArtist},
		Title:  FittedBlock{Font: title.Font, Size: sizeTitle},
		Year:   FittedBlock{Font: year.Font, Size: sizeYear},
	}
	if artist.present() {
		res.Artist.Lines = Wrap(m, artist.Text, artist.Font, sizeArtist, maxWidth)
	}
	if title.present() {
		res.Title.Lines = Wrap(m, title.Text, title.Font, sizeTitle, maxWidth)
	}
	if year.present() {
		res.Year.Lines = []string{year.Text}
	}
	return res
}

// PlacedLine is one line of text positioned inside a cell, ready to be
// painted. X and Y locate the baseline origin in page coordinates.
type PlacedLine struct {
	Text string
	Font string
	Size float64
	X, Y float64
}

// Place lays the fitted blocks out top-down inside the inner rectangle,
// centering every line horizontally. It returns the lines in paint order.
func (r *Result) Place(m Measurer, inner layout.Rect) []PlacedLine {
	var placed []PlacedLine
	blockGap := r.blockGap()

	cursor := inner.Y + inner.H // top of the inner rectangle
	remaining := 0
	for _, b := range r.blocks() {
		if b.present() {
			remaining++
		}
	}

	for _, b := range r.blocks() {
		if !b.present() {
			continue
		}
		cursor -= b.Size
		for i, line := range b.Lines {
			width := m.TextWidth(line, b.Font, b.Size)
			placed = append(placed, PlacedLine{
				Text: line,
				Font: b.Font,
				Size: b.Size,
				X:    inner.X + (inner.W-width)/2,
				Y:    cursor,
			})
			if i < len(b.Lines)-1 {
				cursor -= b.lineGap() + b.Size
			}
		}
		remaining--
		if remaining > 0 {
			cursor -= blockGap
		}
	}
	return placed
}
