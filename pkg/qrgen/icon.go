package qrgen

import (
	"image"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/cardpress/cardpress/pkg/errors"
)

func pt(x, y int) image.Point { return image.Point{X: x, Y: y} }

// IconCache loads icon images from disk or HTTP and caches the decoded
// result keyed by source. The cache is owned by one Generator and is
// never shared across runs.
type IconCache struct {
	client *http.Client
	icons  map[string]image.Image
}

// NewIconCache creates an empty cache with a bounded HTTP timeout.
func NewIconCache() *IconCache {
	return &IconCache{
		client: &http.Client{Timeout: 30 * time.Second},
		icons:  make(map[string]image.Image),
	}
}

// Load returns the decoded icon for a file path or http(s) URL, fetching
// remote icons at most once.
func (c *IconCache) Load(source string) (image.Image, error) {
	if img, ok := c.icons[source]; ok {
		return img, nil
	}

	var img image.Image
	var err error
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		img, err = c.fetch(source)
	} else {
		img, err = imaging.Open(source)
		if err != nil {
			err = errors.Wrap(errors.ErrCodeInvalidImage, err, "open icon %s", source)
		}
	}
	if err != nil {
		return nil, err
	}
	c.icons[source] = img
	return img, nil
}

func (c *IconCache) fetch(url string) (image.Image, error) {
	resp, err := c.client.Get(url)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch icon %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.ErrCodeNetwork, "fetch icon %s: status %d", url, resp.StatusCode)
	}
	img, err := imaging.Decode(resp.Body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidImage, err, "decode icon %s", url)
	}
	return img, nil
}
