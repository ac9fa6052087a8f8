package pdfcanvas

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cardpress/cardpress/pkg/fontkit"
)

func TestWritesDocument(t *testing.T) {
	out := filepath.Join(t.TempDir(), "cards.pdf")
	c, err := New(out, fontkit.Core())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := c.BeginPage(595.2756, 841.8898); err != nil {
		t.Fatalf("BeginPage: %v", err)
	}
	if err := c.DrawRect(10, 10, 100, 100, false); err != nil {
		t.Fatalf("DrawRect: %v", err)
	}
	c.SetFillColor(0.9, 0.2, 0.2)
	if err := c.DrawRect(120, 10, 100, 100, true); err != nil {
		t.Fatalf("DrawRect fill: %v", err)
	}
	c.SetFillColor(0, 0, 0)
	if err := c.DrawText("Nena", "Helvetica-Bold", 14, 20, 50); err != nil {
		t.Fatalf("DrawText: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output does not start with %%PDF header")
	}
}

func TestWriteTo(t *testing.T) {
	c, err := New("", fontkit.Core())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.BeginPage(300, 300); err != nil {
		t.Fatalf("BeginPage: %v", err)
	}

	var buf bytes.Buffer
	if err := c.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "%PDF") {
		t.Error("buffer does not start with PDF header")
	}
}

func TestTextWidthScalesWithSizeAndLength(t *testing.T) {
	c, err := New("", fontkit.Core())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.BeginPage(300, 300); err != nil {
		t.Fatalf("BeginPage: %v", err)
	}

	short := c.TextWidth("ab", "Helvetica", 12)
	long := c.TextWidth("abcdef", "Helvetica", 12)
	if !(long > short) {
		t.Errorf("width(abcdef)=%v not greater than width(ab)=%v", long, short)
	}

	small := c.TextWidth("abcdef", "Helvetica", 12)
	big := c.TextWidth("abcdef", "Helvetica", 24)
	if !(big > small) {
		t.Errorf("width at 24pt (%v) not greater than at 12pt (%v)", big, small)
	}

	// Unknown face names fall back to the regular face.
	if got := c.TextWidth("abcdef", "Wingdings", 12); got <= 0 {
		t.Errorf("fallback width = %v, want > 0", got)
	}
}
