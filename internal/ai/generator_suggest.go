package ai

import (
	"context"
	"time"

	"arbitrage/internal/marketplace"
	"arbitrage/internal/matcher"
	"arbitrage/internal/models"
	"arbitrage/internal/scraper"
)

const (
	suggestStrategyConfidenceBoth       = 0.75
	suggestStrategyConfidenceCatalogOnly = 0.60
	suggestMaxSeeds                      = 10
	suggestMaxPerSeed                    = 10
	suggestSeedDelay                     = 500 * time.Millisecond
	suggestCatalogPageSize                = 10
)

// CatalogSearcher is the subset of marketplace.SDK this strategy needs —
// it stands in for a dedicated autocomplete endpoint by reusing catalog
// keyword search.
type CatalogSearcher interface {
	SearchCatalogItems(ctx context.Context, keywords string, pageSize int) ([]marketplace.CatalogItem, error)
}

var _ CatalogSearcher = (marketplace.SDK)(nil)

// AuctionSuggester is the subset of *scraper.Scraper this strategy needs.
type AuctionSuggester interface {
	Search(ctx context.Context, query string, page int) ([]scraper.SearchResultItem, error)
}

var _ AuctionSuggester = (*scraper.Scraper)(nil)

// GenerateSuggestCandidates cross-matches a top-performer's model number
// against both the marketplace catalog and the auction site: a model
// that turns up on both sides gets the strategy's top confidence, a
// model found only via catalog search gets the lower one. At most 10
// seed keywords are tried, at most 10 suggestions kept per seed, with a
// fixed delay between seeds to stay polite to both upstreams.
func GenerateSuggestCandidates(ctx context.Context, insights *KeywordInsights, catalog CatalogSearcher, auctions AuctionSuggester, sleep func(time.Duration)) []CandidateProposal {
	if sleep == nil {
		sleep = time.Sleep
	}

	var out []CandidateProposal
	seeds := insights.TopPerformers
	if len(seeds) > suggestMaxSeeds {
		seeds = seeds[:suggestMaxSeeds]
	}

	for i, kw := range seeds {
		if i > 0 {
			sleep(suggestSeedDelay)
		}
		out = append(out, suggestFromSeed(ctx, kw, catalog, auctions)...)
	}
	return out
}

func suggestFromSeed(ctx context.Context, kw *models.WatchedKeyword, catalog CatalogSearcher, auctions AuctionSuggester) []CandidateProposal {
	catalogModels := map[string]bool{}
	if items, err := catalog.SearchCatalogItems(ctx, kw.Keyword, suggestCatalogPageSize); err == nil {
		for _, item := range items {
			_, models, _ := matcher.ExtractProductInfo(item.Title)
			for m := range models {
				catalogModels[m] = true
			}
		}
	}

	auctionModels := map[string]bool{}
	if items, err := auctions.Search(ctx, kw.Keyword, 1); err == nil {
		for _, item := range items {
			_, models, _ := matcher.ExtractProductInfo(item.Title)
			for m := range models {
				auctionModels[m] = true
			}
		}
	}

	seen := map[string]bool{}
	var out []CandidateProposal
	for m := range catalogModels {
		if seen[m] || len(out) >= suggestMaxPerSeed {
			continue
		}
		seen[m] = true
		confidence := suggestStrategyConfidenceCatalogOnly
		reason := "found on marketplace catalog only"
		if auctionModels[m] {
			confidence = suggestStrategyConfidenceBoth
			reason = "found on both marketplace catalog and auction site"
		}
		parentID := kw.ID
		out = append(out, CandidateProposal{
			Keyword:         m,
			Strategy:        models.StrategySuggest,
			Confidence:      confidence,
			ParentKeywordID: &parentID,
			Reasoning:       reason,
		})
	}
	return out
}
