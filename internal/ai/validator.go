package ai

import (
	"context"

	"arbitrage/internal/analytics"
	"arbitrage/internal/config"
	"arbitrage/internal/matcher"
	"arbitrage/internal/scoring"
	"arbitrage/internal/scraper"
)

const (
	validatorMinAuctionResults = 3
	validatorTopN              = 5
)

// ValidatorAuctionSearcher is the subset of *scraper.Scraper the
// validator needs.
type ValidatorAuctionSearcher interface {
	Search(ctx context.Context, query string, page int) ([]scraper.SearchResultItem, error)
}

// ValidatorAnalyticsSearcher is the subset of *analytics.Client the
// validator needs.
type ValidatorAnalyticsSearcher interface {
	SearchProducts(ctx context.Context, term string, statsDays int) ([]analytics.Product, error)
}

// ValidationResult records why a candidate keyword passed or failed
// validation, for persistence alongside the resolved KeywordCandidate.
type ValidationResult struct {
	Passed         bool
	Reason         string
	AuctionResults int
	ProductResults int
	TokenConsumed  bool
	// DealCount and BestProfit summarize the profitable top-5×top-5
	// pairs found, for the discovery cycle's auto-add gate (§4.H step 5
	// requires ≥3 profitable pairs and a best profit ≥5000 on top of a
	// Passed result before promoting a candidate unattended).
	DealCount  int
	BestProfit int
}

// ValidateCandidate runs the token-budgeted check (§4.G): an auction
// search with at least 3 results, then — only if the token budget has
// room — an analytics search with at least one result, then a pairwise
// top-5×top-5 match+score pass requiring at least one pair to clear the
// margin/profit bar. Any rejection before the analytics search costs no
// tokens; reaching the analytics search always consumes exactly one.
func ValidateCandidate(
	ctx context.Context,
	keyword string,
	auctions ValidatorAuctionSearcher,
	an ValidatorAnalyticsSearcher,
	tokenBudget int,
	cfg config.ScannerConfig,
) ValidationResult {
	listings, err := auctions.Search(ctx, keyword, 1)
	if err != nil || len(listings) < validatorMinAuctionResults {
		return ValidationResult{Passed: false, Reason: "fewer than 3 auction results", AuctionResults: len(listings)}
	}

	if tokenBudget <= 0 {
		return ValidationResult{Passed: false, Reason: "token budget exhausted, deferred", AuctionResults: len(listings)}
	}

	products, err := an.SearchProducts(ctx, keyword, 90)
	if err != nil || len(products) == 0 {
		return ValidationResult{Passed: false, Reason: "no analytics matches", AuctionResults: len(listings), TokenConsumed: true}
	}

	if dealCount, bestProfit := profitablePairs(listings, products, cfg); dealCount > 0 {
		return ValidationResult{
			Passed:         true,
			Reason:         "found a profitable listing/product pair",
			AuctionResults: len(listings),
			ProductResults: len(products),
			TokenConsumed:  true,
			DealCount:      dealCount,
			BestProfit:     bestProfit,
		}
	}

	return ValidationResult{
		Passed:         false,
		Reason:         "no pair cleared the margin/profit bar",
		AuctionResults: len(listings),
		ProductResults: len(products),
		TokenConsumed:  true,
	}
}

// profitablePairs scans every top-5×top-5 combination (rather than
// stopping at the first hit) so the caller can judge both how many
// pairs cleared the bar and the best profit among them.
func profitablePairs(listings []scraper.SearchResultItem, products []analytics.Product, cfg config.ScannerConfig) (dealCount, bestProfit int) {
	if len(listings) > validatorTopN {
		listings = listings[:validatorTopN]
	}
	if len(products) > validatorTopN {
		products = products[:validatorTopN]
	}

	for _, listing := range listings {
		for _, p := range products {
			_, productModels, _ := matcher.ExtractProductInfo(p.Title)
			_, listingModels, _ := matcher.ExtractProductInfo(listing.Title)
			modelMatch := false
			for m := range productModels {
				if listingModels[m] {
					modelMatch = true
					break
				}
			}

			mr := matcher.MatchProducts(listing.Title, p.Title, modelMatch)
			if !mr.IsLikelyMatch() {
				continue
			}

			shipping := 0
			if listing.ShippingCost != nil {
				shipping = *listing.ShippingCost
			}

			deal := scoring.ScoreDeal(
				listing.BuyNowPrice, shipping, scoring.AnalyticsProduct{
					ASIN:       p.ASIN,
					Title:      p.Title,
					UsedPrice:  p.UsedPrice(),
					NewPrice:   p.NewPrice(),
					Rank:       p.SalesRank(),
					Avg30Rank:  p.Avg30Rank(),
					Avg90Rank:  p.Avg90Rank(),
					Avg30Price: p.Avg30Price(),
					Avg90Price: p.Avg90Price(),
				},
				cfg.DefaultReferralFeePct,
				cfg.DefaultForwardingCostYen,
				cfg.SystemFeeYen,
				cfg.GoodRankThreshold,
			)
			if deal == nil {
				continue
			}
			if deal.GrossProfit >= cfg.MinGrossProfit &&
				deal.GrossMarginPct >= cfg.MinGrossMarginPct &&
				deal.GrossMarginPct <= cfg.MaxGrossMarginPct {
				dealCount++
				if deal.GrossProfit > bestProfit {
					bestProfit = deal.GrossProfit
				}
			}
		}
	}
	return dealCount, bestProfit
}
