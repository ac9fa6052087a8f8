// Package linkfix validates and repairs the playable links and release
// years of a deck before card generation.
//
// Repair runs as a chain of strategies. Each strategy inspects one
// record and returns a tagged resolution: the link is valid as-is, the
// strategy corrected it, the strategy could not resolve it, or the
// lookup failed. Valid and corrected resolutions stop the chain;
// unresolved records fall through to the next strategy. The chain order
// is cheap-and-offline first, remote lookups last.
package linkfix

import (
	"context"
	"net/http"
	"time"

	"github.com/cardpress/cardpress/pkg/deck"
	"github.com/cardpress/cardpress/pkg/httputil"
)

// Status tags a resolution.
type Status string

const (
	// StatusValid means the existing link is usable unchanged.
	StatusValid Status = "valid"
	// StatusCorrected means the strategy produced a replacement link.
	StatusCorrected Status = "corrected"
	// StatusNotFound means the strategy has no verdict; the chain moves
	// on, and if every strategy passes the record stays unresolved.
	StatusNotFound Status = "not_found"
	// StatusError means a lookup failed; the record keeps its original
	// link and the error is reported, not fatal.
	StatusError Status = "error"
)

// Resolution is one strategy's verdict for a record.
type Resolution struct {
	Status Status
	Link   string // replacement link when Status is StatusCorrected
	Detail string // short human-readable explanation
}

// Strategy inspects a record and renders a resolution. Strategies must
// be safe for sequential reuse across records.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, rec deck.Record) (Resolution, error)
}

// Outcome is the chain's final verdict for one record.
type Outcome struct {
	Index    int
	Status   Status
	Strategy string // strategy that settled the record, "" if none did
	Link     string // corrected link, "" if unchanged
	Year     string // corrected year, "" if unchanged
	Detail   string
}

// Options configures a Fixer.
type Options struct {
	// Client is the HTTP client used by remote strategies. Defaults to
	// a client with a 15 second timeout.
	Client *http.Client

	// Cache stores remote lookup results across runs. Nil disables
	// caching.
	Cache *httputil.Cache

	// FixYears enables the MusicBrainz year pass for records with an
	// empty year column.
	FixYears bool

	// UserAgent identifies this tool to remote services. MusicBrainz
	// requires a meaningful value.
	UserAgent string
}

// DefaultUserAgent is sent when Options.UserAgent is empty.
const DefaultUserAgent = "cardpress/1.0 (+https://github.com/cardpress/cardpress)"

// Fixer drives the strategy chain over a deck.
type Fixer struct {
	strategies []Strategy
	mb         *musicBrainzClient
	fixYears   bool
}

// New builds a Fixer with the standard chain: offline URL
// normalization, a YouTube oEmbed liveness probe, and a MusicBrainz
// recording search for records the first two cannot settle.
func New(opts Options) *Fixer {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	mb := newMusicBrainzClient(client, opts.Cache, ua)
	return &Fixer{
		strategies: []Strategy{
			&normalizer{},
			newOEmbedProber(client, opts.Cache),
			&musicBrainzStrategy{client: mb},
		},
		mb:       mb,
		fixYears: opts.FixYears,
	}
}

// NewWithStrategies builds a Fixer with an explicit chain, used by
// tests and callers that want to skip remote lookups.
func NewWithStrategies(strategies ...Strategy) *Fixer {
	return &Fixer{strategies: strategies}
}

// Run resolves every record and returns one outcome per record, in
// deck order. Run never mutates the deck; use [Apply] for that.
func (f *Fixer) Run(ctx context.Context, records []deck.Record) ([]Outcome, error) {
	outcomes := make([]Outcome, len(records))
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		outcomes[i] = f.resolve(ctx, i, rec)
		if f.fixYears && records[i].Year == "" && f.mb != nil {
			if year, err := f.mb.lookupYear(ctx, rec.Artist, rec.Title); err == nil && year != "" {
				outcomes[i].Year = year
			}
		}
	}
	return outcomes, nil
}

func (f *Fixer) resolve(ctx context.Context, index int, rec deck.Record) Outcome {
	out := Outcome{Index: index, Status: StatusNotFound}
	corrected := false
	for _, s := range f.strategies {
		res, err := s.Resolve(ctx, rec)
		if err != nil {
			if !corrected {
				out.Status = StatusError
				out.Strategy = s.Name()
				out.Detail = err.Error()
			}
			continue
		}
		switch res.Status {
		case StatusValid:
			if corrected {
				// A later strategy confirmed the corrected link; the
				// record stays corrected.
				return out
			}
			return Outcome{Index: index, Status: StatusValid, Strategy: s.Name(), Detail: res.Detail}
		case StatusCorrected:
			// The corrected link feeds into the remaining strategies so
			// a normalization can still fail the liveness probe.
			rec.Link = res.Link
			corrected = true
			out = Outcome{Index: index, Status: StatusCorrected, Strategy: s.Name(), Link: res.Link, Detail: res.Detail}
		case StatusNotFound:
			if !corrected && out.Status != StatusError {
				out.Detail = res.Detail
			}
		}
	}
	return out
}

// Apply writes corrected links and years from outcomes into the deck.
// It returns the number of records changed.
func Apply(d *deck.Deck, outcomes []Outcome) int {
	changed := 0
	for _, out := range outcomes {
		touched := false
		if out.Status == StatusCorrected && out.Link != "" {
			d.SetLink(out.Index, out.Link)
			touched = true
		}
		if out.Year != "" {
			d.SetYear(out.Index, out.Year)
			touched = true
		}
		if touched {
			changed++
		}
	}
	return changed
}
