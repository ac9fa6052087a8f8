package textfit

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// runeWidth measures every rune as 0.5 x size, a rough approximation of
// real sans-serif metrics that keeps expectations computable by hand.
type runeWidth struct{}

func (runeWidth) TextWidth(text, font string, size float64) float64 {
	return float64(len([]rune(text))) * size * 0.5
}

func TestWrap(t *testing.T) {
	m := runeWidth{}

	tests := []struct {
		name     string
		text     string
		size     float64
		maxWidth float64
		want     []string
	}{
		{
			name:     "empty text",
			text:     "",
			size:     10,
			maxWidth: 100,
			want:     nil,
		},
		{
			name:     "blank text",
			text:     "   \t ",
			size:     10,
			maxWidth: 100,
			want:     nil,
		},
		{
			name:     "single short line",
			text:     "Hey Jude",
			size:     10,
			maxWidth: 100,
			want:     []string{"Hey Jude"},
		},
		{
			// Each word is 5 chars = 25 units; "aaaaa bbbbb" is 55.
			name:     "wraps at word boundary",
			text:     "aaaaa bbbbb ccccc",
			size:     10,
			maxWidth: 30,
			want:     []string{"aaaaa", "bbbbb", "ccccc"},
		},
		{
			name:     "packs words greedily",
			text:     "ab cd ef gh",
			size:     10,
			maxWidth: 25,
			want:     []string{"ab cd", "ef gh"},
		},
		{
			// 12-char word at width for 5 chars: split 5/5/2.
			name:     "character fallback for long word",
			text:     "Supercalifra",
			size:     10,
			maxWidth: 25,
			want:     []string{"Super", "calif", "ra"},
		},
		{
			name:     "fallback remainder joins following words",
			text:     "aaaaaaa bb",
			size:     10,
			maxWidth: 25,
			want:     []string{"aaaaa", "aa bb"},
		},
		{
			name:     "multibyte runes split on rune boundaries",
			text:     "ōōōōōōō",
			size:     10,
			maxWidth: 15,
			want:     []string{"ōōō", "ōōō", "ō"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(m, tt.text, "regular", tt.size, tt.maxWidth)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Wrap() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestWrapWidthBound checks that every produced line measures within
// maxWidth whenever no single word forces the character fallback.
func TestWrapWidthBound(t *testing.T) {
	m := runeWidth{}
	texts := []string{
		"The Dark Side of the Moon",
		"a bb ccc dddd eeeee ffff ggg hh i",
		"one",
		"x x x x x x x x x x x x x x x x",
	}
	for _, text := range texts {
		for _, maxWidth := range []float64{20, 35, 60, 200} {
			for _, line := range Wrap(m, text, "regular", 10, maxWidth) {
				if w := m.TextWidth(line, "regular", 10); w > maxWidth {
					t.Errorf("Wrap(%q, width %v) produced line %q of width %v",
						text, maxWidth, line, w)
				}
			}
		}
	}
}

func TestWrapDeterministic(t *testing.T) {
	m := runeWidth{}
	text := "Bohemian Rhapsody " + strings.Repeat("na ", 20)

	first := Wrap(m, text, "regular", 12, 80)
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(first, Wrap(m, text, "regular", 12, 80)); diff != "" {
			t.Fatalf("Wrap() not deterministic (-first +rerun):\n%s", diff)
		}
	}
}
