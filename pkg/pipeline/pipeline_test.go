package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cardpress/cardpress/pkg/linkfix"
	"github.com/google/go-cmp/cmp"
)

const testCSV = `Artist,Title,URL,Year
Nena,99 Luftballons,https://www.youtube.com/watch?v=Fpu5a0Bl8eY,1983
Toto,Africa,,1982
Queen,Bohemian Rhapsody,https://www.youtube.com/watch?v=fJ9rUzIMcZQ,1975
`

func writeTestCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "songs.csv")
	if err := os.WriteFile(path, []byte(testCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{name: "minimal", opts: Options{DataPath: "songs.csv"}},
		{name: "missing data path", opts: Options{}, wantErr: true},
		{name: "front background alone", opts: Options{DataPath: "x.csv", FrontBG: "f.png"}, wantErr: true},
		{name: "back background alone", opts: Options{DataPath: "x.csv", BackBG: "b.png"}, wantErr: true},
		{name: "both backgrounds", opts: Options{DataPath: "x.csv", FrontBG: "f.png", BackBG: "b.png"}},
		{name: "write-back without fixing", opts: Options{DataPath: "x.csv", WriteBack: true}, wantErr: true},
		{name: "write-back with fixing", opts: Options{DataPath: "x.csv", WriteBack: true, FixLinks: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if tt.opts.OutputPath != DefaultOutput {
				t.Errorf("OutputPath = %q, want default", tt.opts.OutputPath)
			}
			if tt.opts.CacheTTL != DefaultCacheTTL {
				t.Errorf("CacheTTL = %v, want default", tt.opts.CacheTTL)
			}
		})
	}
}

func TestExecuteEndToEnd(t *testing.T) {
	out := filepath.Join(t.TempDir(), "cards.pdf")
	opts := Options{
		DataPath:      writeTestCSV(t),
		OutputPath:    out,
		CoreFontsOnly: true,
		TempDir:       t.TempDir(),
	}

	result, err := NewRunner(nil).Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Records != 3 {
		t.Errorf("Records = %d, want 3", result.Records)
	}
	if result.Pages != 1 {
		t.Errorf("Pages = %d, want 1", result.Pages)
	}
	if diff := cmp.Diff([]int{1}, result.Skipped); diff != "" {
		t.Errorf("Skipped mismatch (-want +got):\n%s", diff)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("output is not a PDF document")
	}
}

func TestCheckDoesNotWriteOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "cards.pdf")
	opts := Options{
		DataPath:   writeTestCSV(t),
		OutputPath: out,
	}

	result, err := NewRunner(nil).Check(context.Background(), opts)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}

	if result.Records != 3 || result.Pages != 1 {
		t.Errorf("Records/Pages = %d/%d, want 3/1", result.Records, result.Pages)
	}
	if diff := cmp.Diff([]int{1}, result.Skipped); diff != "" {
		t.Errorf("Skipped mismatch (-want +got):\n%s", diff)
	}
	if result.OutputPath != "" {
		t.Errorf("OutputPath = %q, want empty for a check run", result.OutputPath)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("check run must not create the output file")
	}
}

func TestIngestDeduplicates(t *testing.T) {
	const dupCSV = "Artist,Title,URL\nA,X,l1\nA,X,l2\nB,Y,l3\n"
	path := filepath.Join(t.TempDir(), "dup.csv")
	if err := os.WriteFile(path, []byte(dupCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRunner(nil)

	d, dedup, err := r.Ingest(Options{DataPath: path})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if d.Len() != 2 || dedup.Removed != 1 {
		t.Errorf("records/removed = %d/%d, want 2/1", d.Len(), dedup.Removed)
	}

	d, dedup, err = r.Ingest(Options{DataPath: path, SkipDedup: true})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if d.Len() != 3 || dedup.Removed != 0 {
		t.Errorf("with SkipDedup records/removed = %d/%d, want 3/0", d.Len(), dedup.Removed)
	}
}

func TestIngestRejectsEmptyDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("Artist,Title,URL\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := NewRunner(nil).Ingest(Options{DataPath: path}); err == nil {
		t.Fatal("expected an error for a dataset with no records")
	}
}

func TestResultCounts(t *testing.T) {
	r := &Result{
		Fixes: []linkfix.Outcome{
			{Status: linkfix.StatusValid},
			{Status: linkfix.StatusCorrected, Link: "https://fixed"},
			{Status: linkfix.StatusValid, Year: "1983"},
			{Status: linkfix.StatusNotFound},
			{Status: linkfix.StatusError},
		},
	}
	if got := r.Changed(); got != 2 {
		t.Errorf("Changed() = %d, want 2", got)
	}
	if got := r.Unresolved(); got != 2 {
		t.Errorf("Unresolved() = %d, want 2", got)
	}
}

func TestQuietZoneResolution(t *testing.T) {
	zero, twentyFive := 0, 25
	tests := []struct {
		name string
		px   *int
		want int
	}{
		{name: "unset keeps generator default", px: nil, want: DefaultQuietZonePx},
		{name: "explicit zero removes the quiet zone", px: &zero, want: 0},
		{name: "pixel override passes through", px: &twentyFive, want: 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := quietZonePx(Options{QuietZonePx: tt.px}); got != tt.want {
				t.Errorf("quietZonePx = %d, want %d", got, tt.want)
			}
		})
	}
}
