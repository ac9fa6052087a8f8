// Package textfit wraps and scales card text so that up to three blocks
// (artist, title, year) fit inside a cell's inner rectangle.
//
// The package never measures text itself. All width queries go through
// the [Measurer] interface, which the PDF canvas implements with real
// font metrics and tests implement with deterministic fakes. Given the
// same measurer and inputs, wrapping and fitting are fully deterministic.
package textfit

import "strings"

// Measurer reports the rendered width of a string for a font and size,
// in the same units as the page (points).
type Measurer interface {
	TextWidth(text, font string, size float64) float64
}

// Wrap breaks text into lines no wider than maxWidth using greedy word
// wrapping. A single word wider than maxWidth is split at character
// granularity. Blank or empty text yields no lines.
func Wrap(m Measurer, text, font string, size, maxWidth float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if m.TextWidth(candidate, font, size) <= maxWidth {
			current = candidate
			continue
		}
		if current == "" {
			// The word alone is too wide; fall back to splitting it
			// character by character.
			var flushed []string
			flushed, current = splitWord(m, word, font, size, maxWidth)
			lines = append(lines, flushed...)
			continue
		}
		lines = append(lines, current)
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// splitWord accumulates characters of an over-wide word into segments
// that fit maxWidth. It returns the completed segments and the trailing
// segment, which becomes the new current line.
func splitWord(m Measurer, word, font string, size, maxWidth float64) (lines []string, rest string) {
	segment := ""
	for _, r := range word {
		candidate := segment + string(r)
		if m.TextWidth(candidate, font, size) <= maxWidth {
			segment = candidate
			continue
		}
		if segment != "" {
			lines = append(lines, segment)
		}
		segment = string(r)
	}
	return lines, segment
}
