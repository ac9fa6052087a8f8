// Package httputil provides HTTP utilities for the link-fixing clients.
//
// # Overview
//
// This package provides infrastructure shared by the remote lookups the
// link fixer performs (YouTube oEmbed probes, MusicBrainz searches):
//
//   - [Cache]: File-based HTTP response caching
//   - [Retry]: Automatic retry with exponential backoff
//
// # Caching
//
// [Cache] stores HTTP responses in the filesystem (~/.cache/cardpress/)
// with configurable TTL. This dramatically speeds up repeated runs over
// the same deck and keeps load on the public APIs low.
//
// Usage:
//
//	cache, err := httputil.NewCache("", 24*time.Hour)
//	ok, err := cache.Get("oembed:"+url, &probe)  // Check cache
//	if !ok {
//	    probe = fetchFromAPI()
//	    cache.Set("oembed:"+url, probe)          // Store for later
//	}
//
// Cache keys should be namespaced by service to avoid collisions.
//
// # Retry
//
// [Retry] wraps HTTP requests with automatic retry for transient
// failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// It uses exponential backoff to avoid hammering a struggling service:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return probeOnce(url)
//	})
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Cache directory: ~/.cache/cardpress/
//   - Default TTL: 24 hours
//   - Max retries: 3
//   - Base backoff: 1 second
//
// The cache can be cleared by deleting the cache directory.
package httputil
