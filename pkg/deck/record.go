// Package deck loads and normalizes the tabular song dataset used for
// card generation.
//
// A deck is an ordered list of records; order is significant because it
// determines page and cell assignment across the front and back passes.
// Column lookup, whitespace trimming and color parsing all happen here,
// so downstream rendering only ever sees explicit optional fields.
package deck

import (
	"strconv"
	"strings"

	"github.com/cardpress/cardpress/pkg/errors"
)

// Record is one song card. Optional fields are blank when the source
// column is missing or empty; a blank Link makes the front side of the
// cell unrenderable (the back side still renders).
type Record struct {
	Link   string
	Artist string
	Title  string
	Year   string

	// BackColor fills the card background on the text side.
	BackColor *Color
}

// HasLink reports whether the record carries a usable playable link.
func (r Record) HasLink() bool { return strings.TrimSpace(r.Link) != "" }

// Color is an RGB triple with channels in [0,1].
type Color struct {
	R, G, B float64
}

// ParseColor parses a comma-separated RGB triple such as "0.9,0.8,0.2".
// Channels are clamped into [0,1].
func ParseColor(s string) (Color, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Color{}, errors.New(errors.ErrCodeInvalidDataset,
			"color %q must have three comma-separated channels", s)
	}
	var ch [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Color{}, errors.Wrap(errors.ErrCodeInvalidDataset, err,
				"color %q has a non-numeric channel", s)
		}
		ch[i] = clamp01(v)
	}
	return Color{R: ch[0], G: ch[1], B: ch[2]}, nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Deck is the ordered dataset.
type Deck struct {
	Records []Record

	// Columns preserves the original header, used when corrections are
	// written back to the CSV.
	Columns []string

	// rows keeps the raw cells of each record so write-back preserves
	// columns the generator does not interpret. Empty for decks built in
	// code rather than loaded from a file.
	rows [][]string
	cols columnMap
}

// Len returns the number of records.
func (d *Deck) Len() int { return len(d.Records) }
