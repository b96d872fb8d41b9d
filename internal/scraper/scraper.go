// Package scraper fetches and parses Yahoo! Auctions pages: individual
// auction item pages and search-results listings.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"arbitrage/pkg/ratelimit"
)

const (
	yahooAuctionItemURL = "https://auctions.yahoo.co.jp/jp/auction/%s"
	yahooSearchURL      = "https://auctions.yahoo.co.jp/search/search"
	resultsPerPage      = 50
)

// AuctionGoneError is returned when a fetch gets HTTP 404/410 — the
// listing was removed or expired. The monitor loop treats this
// distinctly from a transient network error.
type AuctionGoneError struct {
	URL        string
	StatusCode int
}

func (e *AuctionGoneError) Error() string {
	return fmt.Sprintf("auction gone (HTTP %d): %s", e.StatusCode, e.URL)
}

// Scraper fetches Yahoo Auctions HTML, throttled to a configured
// requests-per-second rate so scanning a large keyword list doesn't hit
// the site's own rate limiting.
type Scraper struct {
	httpClient *http.Client
	userAgent  string
	limiter    *ratelimit.RateLimiter

	pageParser   *AuctionPageParser
	searchParser *SearchResultsParser
}

// Config configures the scraper's HTTP behavior.
type Config struct {
	UserAgent      string
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst float64
}

// New builds a Scraper with the given configuration, sharing a single
// connection-pooled client across every fetch.
func New(cfg Config) *Scraper {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	return &Scraper{
		httpClient:   &http.Client{Timeout: cfg.RequestTimeout},
		userAgent:    cfg.UserAgent,
		limiter:      ratelimit.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		pageParser:   &AuctionPageParser{},
		searchParser: &SearchResultsParser{},
	}
}

// FetchAuctionPage fetches and parses a single auction's item page.
func (s *Scraper) FetchAuctionPage(ctx context.Context, auctionID string) (*AuctionData, error) {
	u := fmt.Sprintf(yahooAuctionItemURL, auctionID)
	html, err := s.fetch(ctx, u, nil)
	if err != nil {
		return nil, err
	}
	return s.pageParser.Parse(html)
}

// ExtractImages returns every product image URL found on an auction page.
func (s *Scraper) ExtractImages(ctx context.Context, auctionID string) ([]string, error) {
	u := fmt.Sprintf(yahooAuctionItemURL, auctionID)
	html, err := s.fetch(ctx, u, nil)
	if err != nil {
		return nil, err
	}
	return s.pageParser.ExtractAllImages(html), nil
}

// ExtractDescription returns the seller's listing description text.
func (s *Scraper) ExtractDescription(ctx context.Context, auctionID string) (string, error) {
	u := fmt.Sprintf(yahooAuctionItemURL, auctionID)
	html, err := s.fetch(ctx, u, nil)
	if err != nil {
		return "", err
	}
	return s.pageParser.ExtractDescription(html), nil
}

// Search fetches a page of Yahoo Auctions search results for a keyword.
func (s *Scraper) Search(ctx context.Context, query string, page int) ([]SearchResultItem, error) {
	if page < 1 {
		page = 1
	}
	params := url.Values{
		"p": {query},
		"b": {strconv.Itoa((page-1)*resultsPerPage + 1)},
		"n": {strconv.Itoa(resultsPerPage)},
	}
	html, err := s.fetch(ctx, yahooSearchURL, params)
	if err != nil {
		return nil, err
	}
	return s.searchParser.Parse(html)
}

func (s *Scraper) fetch(ctx context.Context, rawURL string, params url.Values) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	if params != nil {
		rawURL = rawURL + "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ja,en-US;q=0.7,en;q=0.3")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return "", &AuctionGoneError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("scraper: unexpected status %d for %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
