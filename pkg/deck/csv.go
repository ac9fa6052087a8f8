package deck

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/cardpress/cardpress/pkg/errors"
)

// linkColumn is the fixed, case-sensitive name of the playable-link
// column. Unlike the text columns it has no aliases.
const linkColumn = "URL"

// Column aliases, matched case-insensitively against the CSV header.
// The first header that matches wins.
var (
	artistAliases = []string{"artist", "performer", "band", "composer"}
	titleAliases  = []string{"title", "song", "track"}
	yearAliases   = []string{"year"}
	colorAliases  = []string{"backcol", "backcolor"}
)

// columnMap resolves semantic fields to header indices once per file.
type columnMap struct {
	link, artist, title, year, color int
}

func resolveColumns(header []string) columnMap {
	m := columnMap{link: -1, artist: -1, title: -1, year: -1, color: -1}
	lower := make(map[string]int, len(header))
	for i, name := range header {
		if name == linkColumn && m.link < 0 {
			m.link = i
		}
		key := strings.ToLower(strings.TrimSpace(name))
		if _, seen := lower[key]; !seen {
			lower[key] = i
		}
	}
	m.artist = firstMatch(lower, artistAliases)
	m.title = firstMatch(lower, titleAliases)
	m.year = firstMatch(lower, yearAliases)
	m.color = firstMatch(lower, colorAliases)
	return m
}

func firstMatch(lower map[string]int, aliases []string) int {
	for _, alias := range aliases {
		if i, ok := lower[alias]; ok {
			return i
		}
	}
	return -1
}

// field returns the trimmed cell at index i, or "" when the column is
// absent or the row is short.
func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Load reads a deck from a CSV file.
func Load(path string) (*Deck, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open dataset %s", path)
	}
	defer f.Close()
	return Read(f)
}

// Read parses a deck from CSV data. The first row is the header. Rows
// with unparsable colors keep the record but drop the color; the record
// order of the file is preserved exactly.
func Read(r io.Reader) (*Deck, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // tolerate ragged rows

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeInvalidDataset, "dataset is empty")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "read header")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	cols := resolveColumns(header)

	d := &Deck{Columns: header, cols: cols}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err,
				"read row %d", len(d.Records)+2)
		}

		rec := Record{
			Link:   field(row, cols.link),
			Artist: field(row, cols.artist),
			Title:  field(row, cols.title),
			Year:   field(row, cols.year),
		}
		if raw := field(row, cols.color); raw != "" {
			if c, err := ParseColor(raw); err == nil {
				rec.BackColor = &c
			}
		}
		d.Records = append(d.Records, rec)
		d.rows = append(d.rows, row)
	}
	return d, nil
}
