package deck

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRead(t *testing.T) {
	csv := strings.Join([]string{
		"Artist,Title,Year,URL,backcol",
		"Queen,Bohemian Rhapsody,1975,https://youtu.be/fJ9rUzIMcZQ,\"0.9,0.8,0.2\"",
		"  ABBA  ,  Waterloo ,1974,https://youtu.be/Sj_9CiNkkn4,",
		",Nameless Track,,,",
	}, "\n")

	d, err := Read(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if d.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", d.Len())
	}

	want := Record{
		Link:      "https://youtu.be/fJ9rUzIMcZQ",
		Artist:    "Queen",
		Title:     "Bohemian Rhapsody",
		Year:      "1975",
		BackColor: &Color{R: 0.9, G: 0.8, B: 0.2},
	}
	if diff := cmp.Diff(want, d.Records[0]); diff != "" {
		t.Errorf("record 0 mismatch (-want +got):\n%s", diff)
	}

	// Whitespace is trimmed everywhere.
	if d.Records[1].Artist != "ABBA" || d.Records[1].Title != "Waterloo" {
		t.Errorf("record 1 not trimmed: %+v", d.Records[1])
	}

	// Blank link is kept but reported as unusable.
	if d.Records[2].HasLink() {
		t.Error("record 2 HasLink() = true, want false")
	}
	if d.Records[2].Title != "Nameless Track" {
		t.Errorf("record 2 Title = %q", d.Records[2].Title)
	}
}

func TestReadColumnAliases(t *testing.T) {
	tests := []struct {
		name   string
		header string
		row    string
		want   Record
	}{
		{
			name:   "song and band aliases",
			header: "Band,Song,URL",
			row:    "Nirvana,Come as You Are,https://example.com/x",
			want:   Record{Artist: "Nirvana", Title: "Come as You Are", Link: "https://example.com/x"},
		},
		{
			name:   "track and performer aliases",
			header: "performer,track,URL",
			row:    "Prince,Kiss,https://example.com/y",
			want:   Record{Artist: "Prince", Title: "Kiss", Link: "https://example.com/y"},
		},
		{
			name:   "link column name is case-sensitive",
			header: "Artist,Title,url",
			row:    "X,Y,https://example.com/z",
			want:   Record{Artist: "X", Title: "Y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Read(strings.NewReader(tt.header + "\n" + tt.row))
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, d.Records[0]); diff != "" {
				t.Errorf("record mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadEmpty(t *testing.T) {
	if _, err := Read(strings.NewReader("")); err == nil {
		t.Error("Read() of empty input expected error")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{in: "0,0,0", want: Color{}},
		{in: "1, 0.5 ,0.25", want: Color{R: 1, G: 0.5, B: 0.25}},
		{in: "2,-1,0.5", want: Color{R: 1, G: 0, B: 0.5}}, // clamped
		{in: "0.5,0.5", wantErr: true},
		{in: "red,green,blue", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDeduplicate(t *testing.T) {
	d := &Deck{Records: []Record{
		{Artist: "Queen", Title: "Under Pressure", Link: "a"},
		{Artist: "queen", Title: "UNDER PRESSURE", Link: "b"}, // dup, different link
		{Artist: "Queen", Title: "Radio Ga Ga", Link: "c"},
		{Artist: "Queen", Title: "Under Pressure", Link: "d"}, // dup again
	}}

	res := d.Deduplicate()

	if res.Removed != 2 {
		t.Errorf("Removed = %d, want 2", res.Removed)
	}
	if diff := cmp.Diff([]int{1, 3}, res.RemovedIndices); diff != "" {
		t.Errorf("RemovedIndices mismatch (-want +got):\n%s", diff)
	}
	if d.Len() != 2 {
		t.Errorf("Len() = %d, want 2", d.Len())
	}
	// First occurrence wins.
	if d.Records[0].Link != "a" {
		t.Errorf("kept link = %q, want %q", d.Records[0].Link, "a")
	}
}

func TestDeduplicateTitleOnlyFallback(t *testing.T) {
	d := &Deck{Records: []Record{
		{Title: "Yesterday", Link: "a"},
		{Title: "yesterday", Link: "b"},
		{Title: "Help!", Link: "c"},
	}}

	res := d.Deduplicate()
	if res.Removed != 1 || d.Len() != 2 {
		t.Errorf("Removed = %d, Len = %d; want 1 removed, 2 kept", res.Removed, d.Len())
	}
}

func TestDeduplicateWholeRowFallback(t *testing.T) {
	d := &Deck{Records: []Record{
		{Link: "a", Year: "1999"},
		{Link: "a", Year: "1999"},
		{Link: "a", Year: "2001"},
	}}

	res := d.Deduplicate()
	if res.Removed != 1 || d.Len() != 2 {
		t.Errorf("Removed = %d, Len = %d; want 1 removed, 2 kept", res.Removed, d.Len())
	}
}
