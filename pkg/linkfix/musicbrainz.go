package linkfix

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/cardpress/cardpress/pkg/deck"
	"github.com/cardpress/cardpress/pkg/errors"
	"github.com/cardpress/cardpress/pkg/httputil"
	"github.com/cardpress/cardpress/pkg/observability"
)

// musicBrainzEndpoint is the recording search URL; overridable in tests.
var musicBrainzEndpoint = "https://musicbrainz.org/ws/2/recording"

// yearPattern extracts the leading year from a MusicBrainz release date
// such as "1983-03-01" or a bare "1983".
var yearPattern = regexp.MustCompile(`^(\d{4})`)

// recordingResult is the subset of a recording search hit the fixer
// uses: the release year and any linked streaming URL.
type recordingResult struct {
	Found            bool   `json:"found"`
	Title            string `json:"title"`
	FirstReleaseDate string `json:"first_release_date"`
	StreamURL        string `json:"stream_url"`
}

// Year returns the four-digit year of the first release, "" if unknown.
func (r recordingResult) Year() string {
	m := yearPattern.FindStringSubmatch(r.FirstReleaseDate)
	if m == nil {
		return ""
	}
	return m[1]
}

// musicBrainzClient performs recording searches with caching and rate
// limit handling. MusicBrainz allows one request per second per client,
// so cold runs over a large deck are slow on purpose.
type musicBrainzClient struct {
	client    *http.Client
	cache     *httputil.Cache
	userAgent string
}

func newMusicBrainzClient(client *http.Client, cache *httputil.Cache, userAgent string) *musicBrainzClient {
	c := &musicBrainzClient{client: client, userAgent: userAgent}
	if cache != nil {
		c.cache = cache.Namespace("mb:recording:")
	}
	return c
}

// searchRecording looks up the best recording match for artist and
// title. A miss is (zero result, nil error); only transport and
// decoding failures return an error.
func (c *musicBrainzClient) searchRecording(ctx context.Context, artist, title string) (recordingResult, error) {
	if artist == "" && title == "" {
		return recordingResult{}, nil
	}
	key := artist + "\x00" + title

	var result recordingResult
	if c.cache != nil {
		if ok, err := c.cache.Get(key, &result); ok && err == nil {
			return result, nil
		}
	}

	err := httputil.RetryWithBackoff(ctx, func() error {
		var err error
		result, err = c.searchOnce(ctx, artist, title)
		return err
	})
	if err != nil {
		return recordingResult{}, err
	}

	if c.cache != nil {
		_ = c.cache.Set(key, result)
	}
	return result, nil
}

func (c *musicBrainzClient) searchOnce(ctx context.Context, artist, title string) (recordingResult, error) {
	query := buildQuery(artist, title)
	searchURL := fmt.Sprintf("%s?query=%s&fmt=json&limit=1&inc=url-rels",
		musicBrainzEndpoint, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return recordingResult{}, errors.Wrap(errors.ErrCodeNetwork, err, "build search request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	host := req.URL.Host
	start := time.Now()
	observability.HTTP().OnRequest(ctx, http.MethodGet, host, req.URL.Path)
	resp, err := c.client.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, http.MethodGet, host, req.URL.Path, err)
		return recordingResult{}, &httputil.RetryableError{Err: err}
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, http.MethodGet, host, req.URL.Path, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusOK:
		return decodeSearch(resp)
	case resp.StatusCode == http.StatusServiceUnavailable, resp.StatusCode == http.StatusTooManyRequests:
		return recordingResult{}, &httputil.RetryableError{
			Err: &errors.RateLimitedError{RetryAfter: retryAfter(resp), Message: "musicbrainz"},
		}
	case resp.StatusCode >= 500:
		return recordingResult{}, &httputil.RetryableError{
			Err: errors.New(errors.ErrCodeNetwork, "search returned %d", resp.StatusCode),
		}
	default:
		return recordingResult{}, errors.New(errors.ErrCodeNetwork, "search returned %d", resp.StatusCode)
	}
}

// buildQuery quotes the Lucene field terms MusicBrainz expects.
func buildQuery(artist, title string) string {
	switch {
	case artist == "":
		return fmt.Sprintf("recording:%q", title)
	case title == "":
		return fmt.Sprintf("artist:%q", artist)
	}
	return fmt.Sprintf("artist:%q AND recording:%q", artist, title)
}

// searchResponse mirrors the fields of the MusicBrainz JSON the fixer
// reads. Relations only appear with inc=url-rels.
type searchResponse struct {
	Recordings []struct {
		Title            string `json:"title"`
		FirstReleaseDate string `json:"first-release-date"`
		Relations        []struct {
			Type string `json:"type"`
			URL  struct {
				Resource string `json:"resource"`
			} `json:"url"`
		} `json:"relations"`
	} `json:"recordings"`
}

func decodeSearch(resp *http.Response) (recordingResult, error) {
	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return recordingResult{}, errors.Wrap(errors.ErrCodeNetwork, err, "decode search response")
	}
	if len(body.Recordings) == 0 {
		return recordingResult{}, nil
	}
	hit := body.Recordings[0]
	result := recordingResult{
		Found:            true,
		Title:            hit.Title,
		FirstReleaseDate: hit.FirstReleaseDate,
	}
	for _, rel := range hit.Relations {
		if rel.Type == "free streaming" || rel.Type == "streaming" {
			result.StreamURL = rel.URL.Resource
			break
		}
	}
	return result, nil
}

// lookupYear returns the four-digit first-release year for a song, ""
// when MusicBrainz has no match or no date.
func (c *musicBrainzClient) lookupYear(ctx context.Context, artist, title string) (string, error) {
	result, err := c.searchRecording(ctx, artist, title)
	if err != nil {
		return "", err
	}
	return result.Year(), nil
}

// musicBrainzStrategy is the last chain stage: for records whose link
// is missing or dead it searches the recording and adopts a linked
// streaming URL when one exists.
type musicBrainzStrategy struct {
	client *musicBrainzClient
}

func (*musicBrainzStrategy) Name() string { return "musicbrainz" }

func (s *musicBrainzStrategy) Resolve(ctx context.Context, rec deck.Record) (Resolution, error) {
	result, err := s.client.searchRecording(ctx, rec.Artist, rec.Title)
	if err != nil {
		return Resolution{}, err
	}
	if !result.Found {
		return Resolution{Status: StatusNotFound, Detail: "no recording match"}, nil
	}
	if result.StreamURL != "" && result.StreamURL != rec.Link {
		return Resolution{Status: StatusCorrected, Link: result.StreamURL, Detail: "adopted streaming link"}, nil
	}
	return Resolution{Status: StatusNotFound, Detail: "recording found, no streaming link"}, nil
}
