package linkfix

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/cardpress/cardpress/pkg/deck"
	"github.com/cardpress/cardpress/pkg/errors"
	"github.com/cardpress/cardpress/pkg/httputil"
	"github.com/cardpress/cardpress/pkg/observability"
)

// videoIDPattern matches the two YouTube URL shapes decks contain in
// practice and captures the 11-character video id.
var videoIDPattern = regexp.MustCompile(
	`^https?://(?:www\.)?(?:youtube\.com/watch\?v=|youtu\.be/)([A-Za-z0-9_-]{11})`)

// canonicalWatchURL is the form corrected links are rewritten to.
const canonicalWatchURL = "https://www.youtube.com/watch?v=%s"

// normalizer is the offline first stage: it recognizes YouTube links
// and rewrites shortened or parameter-laden ones to the canonical
// watch URL. Links it does not recognize pass through unresolved.
type normalizer struct{}

func (normalizer) Name() string { return "normalize" }

func (normalizer) Resolve(_ context.Context, rec deck.Record) (Resolution, error) {
	m := videoIDPattern.FindStringSubmatch(rec.Link)
	if m == nil {
		return Resolution{Status: StatusNotFound, Detail: "not a recognized video link"}, nil
	}
	canonical := fmt.Sprintf(canonicalWatchURL, m[1])
	if rec.Link == canonical {
		return Resolution{Status: StatusNotFound, Detail: "already canonical"}, nil
	}
	return Resolution{Status: StatusCorrected, Link: canonical, Detail: "canonicalized video link"}, nil
}

// oembedEndpoint is the YouTube oEmbed URL; overridable in tests.
var oembedEndpoint = "https://www.youtube.com/oembed"

// oembedProbe is the subset of the oEmbed response the prober keeps.
type oembedProbe struct {
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
}

// oembedProber is the liveness stage: a link that resolves through the
// oEmbed endpoint is known playable. Dead or private videos return 4xx
// and fall through to the search stage.
type oembedProber struct {
	client *http.Client
	cache  *httputil.Cache
}

func newOEmbedProber(client *http.Client, cache *httputil.Cache) *oembedProber {
	p := &oembedProber{client: client}
	if cache != nil {
		p.cache = cache.Namespace("oembed:")
	}
	return p
}

func (*oembedProber) Name() string { return "oembed" }

func (p *oembedProber) Resolve(ctx context.Context, rec deck.Record) (Resolution, error) {
	if !rec.HasLink() {
		return Resolution{Status: StatusNotFound, Detail: "no link to probe"}, nil
	}

	var alive bool
	if p.cache != nil {
		if ok, err := p.cache.Get(rec.Link, &alive); ok && err == nil {
			return p.verdict(alive), nil
		}
	}

	err := httputil.RetryWithBackoff(ctx, func() error {
		ok, err := p.probeOnce(ctx, rec.Link)
		alive = ok
		return err
	})
	if err != nil {
		return Resolution{}, err
	}

	if p.cache != nil {
		_ = p.cache.Set(rec.Link, alive)
	}
	return p.verdict(alive), nil
}

func (p *oembedProber) verdict(alive bool) Resolution {
	if alive {
		return Resolution{Status: StatusValid, Detail: "link resolves"}
	}
	return Resolution{Status: StatusNotFound, Detail: "link is dead or private"}
}

// probeOnce performs a single oEmbed request. Server-side failures are
// wrapped as retryable; 4xx means the video is gone, which is a clean
// negative answer rather than an error.
func (p *oembedProber) probeOnce(ctx context.Context, link string) (bool, error) {
	probeURL := oembedEndpoint + "?format=json&url=" + url.QueryEscape(link)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeNetwork, err, "build probe request")
	}

	host := req.URL.Host
	start := time.Now()
	observability.HTTP().OnRequest(ctx, http.MethodGet, host, req.URL.Path)
	resp, err := p.client.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, http.MethodGet, host, req.URL.Path, err)
		return false, &httputil.RetryableError{Err: err}
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, http.MethodGet, host, req.URL.Path, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusOK:
		var probe oembedProbe
		if err := json.NewDecoder(resp.Body).Decode(&probe); err != nil {
			return false, errors.Wrap(errors.ErrCodeNetwork, err, "decode probe response")
		}
		return true, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return false, &httputil.RetryableError{
			Err: &errors.RateLimitedError{RetryAfter: retryAfter(resp), Message: "oembed"},
		}
	case resp.StatusCode >= 500:
		return false, &httputil.RetryableError{
			Err: errors.New(errors.ErrCodeNetwork, "probe returned %d", resp.StatusCode),
		}
	default:
		io.Copy(io.Discard, resp.Body)
		return false, nil
	}
}

// retryAfter parses the Retry-After header as whole seconds.
func retryAfter(resp *http.Response) int {
	if s := resp.Header.Get("Retry-After"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return 1
}
