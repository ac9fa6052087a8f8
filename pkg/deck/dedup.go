package deck

import "strings"

// DedupResult reports what deduplication removed.
type DedupResult struct {
	Removed        int
	RemovedIndices []int // zero-based indices into the original record order
}

// Deduplicate removes duplicate records in place, keeping the first
// occurrence. The identity key prefers artist+title (case-insensitive,
// link columns ignored so re-uploads with fixed links still match),
// falling back to title only, artist only, and finally the whole record.
func (d *Deck) Deduplicate() DedupResult {
	hasArtist, hasTitle := false, false
	for _, r := range d.Records {
		if r.Artist != "" {
			hasArtist = true
		}
		if r.Title != "" {
			hasTitle = true
		}
	}

	key := func(r Record) string {
		a := strings.ToLower(strings.TrimSpace(r.Artist))
		t := strings.ToLower(strings.TrimSpace(r.Title))
		switch {
		case hasArtist && hasTitle:
			return a + "\x00" + t
		case hasTitle:
			return t
		case hasArtist:
			return a
		}
		return strings.Join([]string{r.Link, r.Artist, r.Title, r.Year}, "\x00")
	}

	syncRows := len(d.rows) == len(d.Records)
	seen := make(map[string]bool, len(d.Records))
	kept := d.Records[:0]
	var keptRows [][]string
	if syncRows {
		keptRows = d.rows[:0]
	}
	var result DedupResult
	for i, r := range d.Records {
		k := key(r)
		if seen[k] {
			result.Removed++
			result.RemovedIndices = append(result.RemovedIndices, i)
			continue
		}
		seen[k] = true
		kept = append(kept, r)
		if syncRows {
			keptRows = append(keptRows, d.rows[i])
		}
	}
	d.Records = kept
	if syncRows {
		d.rows = keptRows
	}
	return result
}
