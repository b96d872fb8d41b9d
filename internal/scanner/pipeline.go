package scanner

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"arbitrage/internal/analytics"
	"arbitrage/internal/matcher"
	"arbitrage/internal/models"
	"arbitrage/internal/scoring"
	"arbitrage/internal/scraper"
)

// listingGroup is a set of Yahoo listings that plausibly describe the
// same brand+model family, eligible for one targeted analytics search
// instead of the raw-keyword fallback search.
type listingGroup struct {
	brand        string
	models       []string // sorted, for a stable search term and a stable group key
	listingItems []scraper.SearchResultItem
}

// scanKeyword runs the full per-keyword pipeline (spec §4.F.1-9) and
// returns the number of deals found and their combined gross profit, for
// the caller to feed back into the keyword's counters.
func (s *Scanner) scanKeyword(ctx context.Context, kw *models.WatchedKeyword) (dealsFound, grossProfit int, err error) {
	listings, err := s.fetchListings(ctx, kw.Keyword)
	if err != nil {
		return 0, 0, err
	}

	groups, fallback := classifyListings(listings, s.cfg.MinPriceForAnalyticsSearch)

	searchBudget := s.cfg.MaxAnalyticsSearchesPerKeyword

	for _, g := range groups {
		if searchBudget <= 0 {
			fallback = append(fallback, g.listingItems...)
			continue
		}
		term := strings.TrimSpace(g.brand + " " + strings.Join(g.models, " "))
		products, searchErr := s.analytics.SearchProducts(ctx, term, 90)
		searchBudget--
		if searchErr != nil {
			continue
		}
		s.matchGroup(ctx, g.listingItems, products, &dealsFound, &grossProfit, kw)
	}

	if len(fallback) > 0 {
		products, searchErr := s.analytics.SearchProducts(ctx, kw.Keyword, 90)
		if searchErr == nil {
			s.matchGroup(ctx, fallback, products, &dealsFound, &grossProfit, kw)
		}
	}

	return dealsFound, grossProfit, nil
}

// fetchListings pulls up to ScanMaxPages pages of search results for a
// keyword, stopping early once a page comes back empty.
func (s *Scanner) fetchListings(ctx context.Context, keyword string) ([]scraper.SearchResultItem, error) {
	var all []scraper.SearchResultItem
	for page := 1; page <= s.cfg.ScanMaxPages; page++ {
		items, err := s.auctions.Search(ctx, keyword, page)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			break
		}
		if len(items) == 0 {
			break
		}
		all = append(all, items...)
	}
	return all, nil
}

// classifyListings drops apparel listings, then splits the remainder
// into brand+model groups (eligible for a targeted analytics search) and
// a fallback bucket (spec §4.F.2).
func classifyListings(items []scraper.SearchResultItem, minPriceForSearch int) ([]*listingGroup, []scraper.SearchResultItem) {
	groupsByKey := map[string]*listingGroup{}
	var order []string
	var fallback []scraper.SearchResultItem

	for _, item := range items {
		if matcher.IsApparel(item.Title) {
			continue
		}

		brand, models, _ := matcher.ExtractProductInfo(item.Title)
		if item.BuyNowPrice > minPriceForSearch && len(models) > 0 {
			key, sortedModels := groupKey(brand, models)
			g, ok := groupsByKey[key]
			if !ok {
				g = &listingGroup{brand: brand, models: sortedModels}
				groupsByKey[key] = g
				order = append(order, key)
			}
			g.listingItems = append(g.listingItems, item)
			continue
		}

		fallback = append(fallback, item)
	}

	groups := make([]*listingGroup, 0, len(order))
	for _, key := range order {
		groups = append(groups, groupsByKey[key])
	}
	return groups, fallback
}

func groupKey(brand string, models map[string]bool) (string, []string) {
	sorted := make([]string, 0, len(models))
	for m := range models {
		sorted = append(sorted, m)
	}
	sort.Strings(sorted)
	return brand + "|" + strings.Join(sorted, ","), sorted
}

// matchGroup runs the matcher and scorer over every (listing, candidate
// product) pair in a group, keeping only the highest-scoring match per
// listing, and persists the ones that clear the margin/profit bar.
func (s *Scanner) matchGroup(
	ctx context.Context,
	listings []scraper.SearchResultItem,
	products []analytics.Product,
	dealsFound *int,
	grossProfit *int,
	kw *models.WatchedKeyword,
) {
	for _, listing := range listings {
		best, bestProduct, bestMatch := s.bestMatch(listing, products)
		if best == nil {
			continue
		}

		if matcher.IsBlockedPair(listing.AuctionID, bestProduct.ASIN) ||
			matcher.IsBlockedTitlePair(listing.Title, bestProduct.Title) {
			continue
		}

		deal := s.buildDeal(ctx, listing, bestProduct, best, bestMatch, kw)
		if deal == nil {
			continue
		}

		if _, err := s.deals.RegisterDeal(deal); err != nil {
			continue
		}
		if err := s.notifier.NotifyDeal(ctx, deal); err != nil {
			s.log.Warn("deal notification failed", zap.String("auction_id", deal.YahooAuctionID))
		}
		*dealsFound++
		*grossProfit += deal.GrossProfit

		s.expandSeries(deal, kw.ID)
	}
}

// bestMatch picks the highest-scoring (candidate product, scored deal)
// pair for one listing, requiring the match to be a likely match before
// it is even scored.
func (s *Scanner) bestMatch(listing scraper.SearchResultItem, products []analytics.Product) (*scoring.DealCandidate, analytics.Product, matcher.MatchResult) {
	var bestCandidate *scoring.DealCandidate
	var bestProduct analytics.Product
	var bestMatchResult matcher.MatchResult
	bestScore := -1.0

	for _, p := range products {
		_, productModels, _ := matcher.ExtractProductInfo(p.Title)
		_, listingModels, _ := matcher.ExtractProductInfo(listing.Title)
		keepaModelMatch := modelsOverlap(productModels, listingModels)

		mr := matcher.MatchProducts(listing.Title, p.Title, keepaModelMatch)
		if !mr.IsLikelyMatch() {
			continue
		}

		feePct := s.resolveReferralFeePct(context.Background(), p.ASIN, listing.BuyNowPrice)

		candidate := scoring.ScoreDeal(
			listing.BuyNowPrice, shippingCostOf(listing), scoring.AnalyticsProduct{
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
			feePct,
			s.cfg.DefaultForwardingCostYen,
			s.cfg.SystemFeeYen,
			s.cfg.GoodRankThreshold,
		)
		if candidate == nil {
			continue
		}
		if mr.Score > bestScore {
			bestScore = mr.Score
			bestCandidate = candidate
			bestProduct = p
			bestMatchResult = mr
		}
	}

	return bestCandidate, bestProduct, bestMatchResult
}

func modelsOverlap(a, b map[string]bool) bool {
	for m := range a {
		if b[m] {
			return true
		}
	}
	return false
}

func shippingCostOf(item scraper.SearchResultItem) int {
	if item.ShippingCost != nil {
		return *item.ShippingCost
	}
	return 0
}

// resolveReferralFeePct calls the marketplace for the ASIN's real
// referral fee; on failure or when no marketplace client is wired, it
// falls back to the configured default (spec §4.F.7).
func (s *Scanner) resolveReferralFeePct(ctx context.Context, asin string, sellPrice int) float64 {
	if s.marketplace == nil {
		return s.cfg.DefaultReferralFeePct
	}
	pct, err := s.marketplace.GetReferralFeePct(ctx, asin, sellPrice)
	if err != nil || pct == nil {
		return s.cfg.DefaultReferralFeePct
	}
	return *pct
}

// buildDeal applies the final §4.F.8 checks (price ratio, deep
// validation above the high-margin threshold, margin/profit window) and
// assembles the DealAlert, or returns nil if the pair should be dropped.
func (s *Scanner) buildDeal(
	ctx context.Context,
	listing scraper.SearchResultItem,
	product analytics.Product,
	candidate *scoring.DealCandidate,
	mr matcher.MatchResult,
	kw *models.WatchedKeyword,
) *models.DealAlert {
	if float64(listing.BuyNowPrice) < 0.25*float64(candidate.SellPrice) {
		return nil
	}

	if candidate.GrossMarginPct >= s.cfg.DeepValidationMarginThreshold {
		if !mr.PassesStrictCheck() {
			return nil
		}
		if s.cfg.DeepValidationEnabled {
			desc, err := s.auctions.ExtractDescription(ctx, listing.AuctionID)
			if err == nil && hasAccessorySignal(desc) {
				return nil
			}
		}
	}

	if candidate.GrossMarginPct < s.cfg.MinGrossMarginPct || candidate.GrossMarginPct > s.cfg.MaxGrossMarginPct {
		return nil
	}
	if candidate.GrossProfit < s.cfg.MinGrossProfit {
		return nil
	}

	return &models.DealAlert{
		KeywordID:      kw.ID,
		YahooAuctionID: listing.AuctionID,
		AmazonASIN:     candidate.AmazonASIN,
		YahooTitle:     listing.Title,
		AmazonTitle:    candidate.AmazonTitle,
		YahooURL:       listing.URL,
		YahooPrice:     listing.BuyNowPrice,
		YahooShipping:  shippingCostOf(listing),
		SellPrice:      candidate.SellPrice,
		AmazonFeePct:   feePctOf(candidate),
		ForwardingCost: candidate.ForwardingCost,
		GrossProfit:    candidate.GrossProfit,
		GrossMarginPct: candidate.GrossMarginPct,
		Status:         models.DealStatusActive,
	}
}

func feePctOf(c *scoring.DealCandidate) float64 {
	if c.SellPrice == 0 {
		return 0
	}
	return float64(c.AmazonFee) / float64(c.SellPrice) * 100
}

func hasAccessorySignal(description string) bool {
	for _, word := range []string{"単体", "のみ", "単品", "ジャンク"} {
		if strings.Contains(description, word) {
			return true
		}
	}
	return false
}
