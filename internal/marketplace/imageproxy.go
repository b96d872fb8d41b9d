package marketplace

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// imageCacheMax caps ImageCache just like the referral-fee cache: once
// full, the whole map is dropped rather than evicting one entry at a
// time — a listing's image set rarely changes, so losing the cache
// occasionally just costs one extra re-normalize, not correctness.
const imageCacheMax = 200

// NormalizeImageURL rewrites a Yahoo Auctions CDN image URL into a form
// the marketplace's image host allow-list will accept: forced https,
// tracking query parameters stripped, and routed through the configured
// proxy base so the marketplace never has to hot-link the auction CDN.
func NormalizeImageURL(proxyBaseURL, rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	u.Scheme = "https"
	u.RawQuery = ""

	if proxyBaseURL == "" {
		return u.String()
	}

	ext := "jpg"
	if strings.Contains(strings.ToLower(u.Path), ".png") {
		ext = "png"
	} else if strings.Contains(strings.ToLower(u.Path), ".webp") {
		ext = "webp"
	}
	sum := md5.Sum([]byte(u.String()))
	key := hex.EncodeToString(sum[:])[:8]
	return fmt.Sprintf("%s/offer-images/%s.%s", strings.TrimRight(proxyBaseURL, "/"), key, ext)
}

// ImageCache memoizes NormalizeImageURL results per auction so a
// listing's image set isn't recomputed on every sync pass.
type ImageCache struct {
	proxyBaseURL string

	mu    sync.Mutex
	cache map[string][]string
}

func NewImageCache(proxyBaseURL string) *ImageCache {
	return &ImageCache{proxyBaseURL: proxyBaseURL, cache: make(map[string][]string)}
}

// NormalizeAll returns the proxied URLs for auctionID's image set,
// computing and caching them on first call.
func (c *ImageCache) NormalizeAll(auctionID string, imageURLs []string) []string {
	c.mu.Lock()
	if cached, ok := c.cache[auctionID]; ok {
		c.mu.Unlock()
		return cached
	}
	c.mu.Unlock()

	out := make([]string, len(imageURLs))
	for i, raw := range imageURLs {
		out[i] = NormalizeImageURL(c.proxyBaseURL, raw)
	}

	c.mu.Lock()
	if len(c.cache) >= imageCacheMax {
		c.cache = make(map[string][]string)
	}
	c.cache[auctionID] = out
	c.mu.Unlock()

	return out
}
