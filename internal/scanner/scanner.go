// Package scanner runs the periodic deal-scan cycle: walk the active
// watched keywords, search Yahoo Auctions and the analytics provider,
// match and score candidate pairs, and persist the ones that clear the
// margin/profit bar as DealAlerts.
package scanner

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"arbitrage/internal/analytics"
	"arbitrage/internal/config"
	"arbitrage/internal/marketplace"
	"arbitrage/internal/matcher"
	"arbitrage/internal/models"
	"arbitrage/internal/scraper"
	"arbitrage/internal/service"
)

// AnalyticsSearcher is the subset of *analytics.Client the scanner needs —
// declared as an interface so tests can substitute a fake provider.
type AnalyticsSearcher interface {
	SearchProducts(ctx context.Context, term string, statsDays int) ([]analytics.Product, error)
	TokensLeft() *int
	ClearSearchCache()
}

var _ AnalyticsSearcher = (*analytics.Client)(nil)

// AuctionSearcher is the subset of *scraper.Scraper the scanner needs.
type AuctionSearcher interface {
	Search(ctx context.Context, query string, page int) ([]scraper.SearchResultItem, error)
	ExtractDescription(ctx context.Context, auctionID string) (string, error)
}

var _ AuctionSearcher = (*scraper.Scraper)(nil)

// Notifier delivers a persisted deal alert to the operator-facing
// channels. Implemented by internal/notifier; declared here so the
// scanner doesn't import a downstream package.
type Notifier interface {
	NotifyDeal(ctx context.Context, deal *models.DealAlert) error
}

// Scanner orchestrates one deal-scan cycle across every active keyword.
type Scanner struct {
	cfg         config.ScannerConfig
	analytics   AnalyticsSearcher
	auctions    AuctionSearcher
	marketplace marketplace.SDK
	sellerID    string

	keywords   *service.KeywordService
	deals      *service.DealAlertService
	rejections *service.RejectionService

	notifier Notifier
	log      *zap.Logger
}

// New создает новый экземпляр Scanner.
func New(
	cfg config.ScannerConfig,
	analyticsClient AnalyticsSearcher,
	auctionClient AuctionSearcher,
	marketplaceSDK marketplace.SDK,
	sellerID string,
	keywords *service.KeywordService,
	deals *service.DealAlertService,
	rejections *service.RejectionService,
	notifier Notifier,
	log *zap.Logger,
) *Scanner {
	return &Scanner{
		cfg:         cfg,
		analytics:   analyticsClient,
		auctions:    auctionClient,
		marketplace: marketplaceSDK,
		sellerID:    sellerID,
		keywords:    keywords,
		deals:       deals,
		rejections:  rejections,
		notifier:    notifier,
		log:         log,
	}
}

// cycleResult accumulates per-cycle counters for logging and tests.
type cycleResult struct {
	KeywordsScanned int
	DealsFound      int
	StoppedOnTokens bool
}

// RunCycle walks every active keyword, oldest-scanned-first, and stops
// early once the analytics token budget runs low — the invariant in
// spec §4.F(d).
func (s *Scanner) RunCycle(ctx context.Context) (*cycleResult, error) {
	s.analytics.ClearSearchCache()

	keywords, err := s.keywords.GetActiveKeywords()
	if err != nil {
		return nil, err
	}
	sortByLastScanned(keywords)

	res := &cycleResult{}

	for _, kw := range keywords {
		if t := s.analytics.TokensLeft(); t != nil && *t <= 5 {
			res.StoppedOnTokens = true
			break
		}

		found, profit, err := s.scanKeyword(ctx, kw)
		if err != nil {
			s.log.Warn("keyword scan failed", zap.String("keyword", kw.Keyword), zap.Error(err))
			continue
		}

		if err := s.keywords.RecordScanResult(kw.ID, found, profit); err != nil {
			s.log.Warn("failed to record scan result", zap.Int("keyword_id", kw.ID), zap.Error(err))
		}

		res.KeywordsScanned++
		res.DealsFound += found
	}

	if err := s.cleanupKeywords(); err != nil {
		s.log.Warn("post-cycle keyword cleanup failed", zap.Error(err))
	}

	return res, nil
}

// sortByLastScanned orders keywords oldest-scanned-first with nulls
// (never scanned) first, for round-robin fairness across cycles.
func sortByLastScanned(keywords []*models.WatchedKeyword) {
	sort.SliceStable(keywords, func(i, j int) bool {
		a, b := keywords[i].LastScannedAt, keywords[j].LastScannedAt
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return true
		case b == nil:
			return false
		default:
			return a.Before(*b)
		}
	})
}
