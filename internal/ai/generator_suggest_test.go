package ai

import (
	"context"
	"time"

	"testing"

	"arbitrage/internal/marketplace"
	"arbitrage/internal/models"
	"arbitrage/internal/scraper"
)

type fakeCatalogSearcher struct {
	byKeyword map[string][]marketplace.CatalogItem
}

func (f *fakeCatalogSearcher) SearchCatalogItems(ctx context.Context, keywords string, pageSize int) ([]marketplace.CatalogItem, error) {
	return f.byKeyword[keywords], nil
}

type fakeAuctionSuggester struct {
	byQuery map[string][]scraper.SearchResultItem
}

func (f *fakeAuctionSuggester) Search(ctx context.Context, query string, page int) ([]scraper.SearchResultItem, error) {
	return f.byQuery[query], nil
}

func TestGenerateSuggestCandidates_BothSidesBoostsConfidence(t *testing.T) {
	catalog := &fakeCatalogSearcher{byKeyword: map[string][]marketplace.CatalogItem{
		"sony wh1000xm4": {{ASIN: "B1", Title: "ソニー WH-1000XM5 ヘッドホン"}},
	}}
	auctions := &fakeAuctionSuggester{byQuery: map[string][]scraper.SearchResultItem{
		"sony wh1000xm4": {{AuctionID: "a1", Title: "ソニー WH-1000XM5 中古美品"}},
	}}

	insights := &KeywordInsights{TopPerformers: []*models.WatchedKeyword{{ID: 1, Keyword: "sony wh1000xm4"}}}

	var slept time.Duration
	out := GenerateSuggestCandidates(context.Background(), insights, catalog, auctions, func(d time.Duration) { slept += d })

	if len(out) == 0 {
		t.Fatal("expected at least one suggested candidate")
	}
	found := false
	for _, c := range out {
		if c.Confidence == suggestStrategyConfidenceBoth {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a candidate found on both sides to get confidence %v: %+v", suggestStrategyConfidenceBoth, out)
	}
	if slept != 0 {
		t.Errorf("a single seed should never sleep between seeds, got %v", slept)
	}
}

func TestGenerateSuggestCandidates_CapsSeedsAndSleepsBetween(t *testing.T) {
	catalog := &fakeCatalogSearcher{byKeyword: map[string][]marketplace.CatalogItem{}}
	auctions := &fakeAuctionSuggester{byQuery: map[string][]scraper.SearchResultItem{}}

	var seeds []*models.WatchedKeyword
	for i := 0; i < 15; i++ {
		seeds = append(seeds, &models.WatchedKeyword{ID: i, Keyword: "kw"})
	}
	insights := &KeywordInsights{TopPerformers: seeds}

	var sleeps int
	GenerateSuggestCandidates(context.Background(), insights, catalog, auctions, func(d time.Duration) { sleeps++ })

	if sleeps != suggestMaxSeeds-1 {
		t.Errorf("expected %d sleeps for %d capped seeds, got %d", suggestMaxSeeds-1, suggestMaxSeeds, sleeps)
	}
}
