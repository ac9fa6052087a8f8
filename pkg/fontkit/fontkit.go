// Package fontkit resolves the fonts used on card backsides.
//
// Font selection runs once per generation and produces an immutable
// Registry value that is passed explicitly into rendering. Nothing in
// this package mutates process-wide state.
//
// Discovery prefers a Unicode TrueType family found on the host (so
// extended characters like "ō" render), falling back to the built-in
// Helvetica metrics that every PDF reader provides.
package fontkit

import "github.com/flopp/go-findfont"

// Face identifies one font face. Name is the identifier the layout core
// passes to the canvas; Family and Style address the face inside the
// drawing surface; File points at a TTF to embed, empty for the
// built-in core fonts.
type Face struct {
	Name   string
	Family string
	Style  string // "" regular, "B" bold
	File   string
}

// Registry holds the regular and bold faces for one generation run.
type Registry struct {
	Regular Face
	Bold    Face
}

// Lookup resolves a face by its core-facing name.
func (r Registry) Lookup(name string) (Face, bool) {
	switch name {
	case r.Regular.Name:
		return r.Regular, true
	case r.Bold.Name:
		return r.Bold, true
	}
	return Face{}, false
}

// Embedded reports whether the registry carries TTF files to embed.
func (r Registry) Embedded() bool { return r.Regular.File != "" }

// Core returns the built-in Helvetica registry, available without any
// font files.
func Core() Registry {
	return Registry{
		Regular: Face{Name: "Helvetica", Family: "Helvetica", Style: ""},
		Bold:    Face{Name: "Helvetica-Bold", Family: "Helvetica", Style: "B"},
	}
}

// candidate is a regular/bold TTF filename pair for one family.
type candidate struct {
	family string
	reg    []string
	bold   []string
}

// Families tried in order during discovery. Windows staples first to
// match decks authored there, then the common Linux fallbacks.
var candidates = []candidate{
	{"Arial", []string{"arial.ttf", "Arial.ttf"}, []string{"arialbd.ttf", "Arial-Bold.ttf"}},
	{"SegoeUI", []string{"segoeui.ttf"}, []string{"segoeuib.ttf"}},
	{"Calibri", []string{"calibri.ttf"}, []string{"calibrib.ttf"}},
	{"Verdana", []string{"verdana.ttf", "Verdana.ttf"}, []string{"verdanab.ttf", "Verdana-Bold.ttf"}},
	{"Tahoma", []string{"tahoma.ttf"}, []string{"tahomabd.ttf"}},
	{"DejaVuSans", []string{"DejaVuSans.ttf"}, []string{"DejaVuSans-Bold.ttf"}},
	{"NotoSans", []string{"NotoSans-Regular.ttf"}, []string{"NotoSans-Bold.ttf"}},
}

// Discover builds a registry from fonts installed on the host. When no
// candidate family is found the core Helvetica registry is returned;
// when a family has no bold face, the regular face doubles as bold.
func Discover() Registry {
	for _, c := range candidates {
		regPath := findFirst(c.reg)
		if regPath == "" {
			continue
		}
		reg := Registry{
			Regular: Face{Name: c.family, Family: c.family, Style: "", File: regPath},
		}
		if boldPath := findFirst(c.bold); boldPath != "" {
			reg.Bold = Face{Name: c.family + "-Bold", Family: c.family, Style: "B", File: boldPath}
		} else {
			reg.Bold = reg.Regular
		}
		return reg
	}
	return Core()
}

func findFirst(names []string) string {
	for _, name := range names {
		if path, err := findfont.Find(name); err == nil {
			return path
		}
	}
	return ""
}
