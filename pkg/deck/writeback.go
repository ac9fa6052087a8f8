package deck

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/cardpress/cardpress/pkg/errors"
)

// SetLink updates the link of record i, both in the parsed record and
// in the raw row so a later write-back carries the correction. It
// reports false when the deck has no link column to write into.
func (d *Deck) SetLink(i int, link string) bool {
	if i < 0 || i >= len(d.Records) {
		return false
	}
	d.Records[i].Link = link
	return d.setCell(i, d.cols.link, link)
}

// SetYear updates the year of record i. It reports false when the deck
// has no year column to write into.
func (d *Deck) SetYear(i int, year string) bool {
	if i < 0 || i >= len(d.Records) {
		return false
	}
	d.Records[i].Year = year
	return d.setCell(i, d.cols.year, year)
}

func (d *Deck) setCell(row, col int, value string) bool {
	if col < 0 || row >= len(d.rows) {
		return false
	}
	for len(d.rows[row]) <= col {
		d.rows[row] = append(d.rows[row], "")
	}
	d.rows[row][col] = value
	return true
}

// Write emits the deck as CSV: the original header followed by the raw
// rows, including any corrections applied through SetLink and SetYear.
func (d *Deck) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.Columns); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write header")
	}
	for i, row := range d.rows {
		if err := cw.Write(row); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write row %d", i+2)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "flush dataset")
	}
	return nil
}

// WriteFile writes the deck back to path. An existing file at path is
// kept as path+".bak" so a bad fix run never destroys the source data.
func (d *Deck) WriteFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+".bak"); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "back up %s", path)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	if err := d.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
