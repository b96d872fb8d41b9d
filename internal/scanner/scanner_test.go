package scanner

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"arbitrage/internal/analytics"
	"arbitrage/internal/config"
	"arbitrage/internal/models"
	"arbitrage/internal/scraper"
	"arbitrage/internal/service"
)

func intPtr(v int) *int { return &v }

type fixture struct {
	scanner    *Scanner
	keywordRepo *fakeWatchedKeywordRepo
	candidateRepo *fakeKeywordCandidateRepo
	dealRepo   *fakeDealAlertRepo
	an         *fakeAnalytics
	auctions   *fakeAuctions
	notifier   *fakeNotifier
}

func newFixture(cfg config.ScannerConfig) *fixture {
	keywordRepo := newFakeWatchedKeywordRepo()
	candidateRepo := newFakeKeywordCandidateRepo()
	dealRepo := newFakeDealAlertRepo()
	rejectionRepo := newFakeRejectionPatternRepo()

	keywords := service.NewKeywordService(keywordRepo, candidateRepo)
	deals := service.NewDealAlertService(dealRepo, keywordRepo)
	rejections := service.NewRejectionService(rejectionRepo)

	an := &fakeAnalytics{byTerm: map[string][]analytics.Product{}, tokensLeft: intPtr(1000)}
	auctions := &fakeAuctions{pages: map[string][][]scraper.SearchResultItem{}}
	notifier := &fakeNotifier{}
	sdk := &fakeSDK{}

	sc := New(cfg, an, auctions, sdk, "SELLER1", keywords, deals, rejections, notifier, zap.NewNop())

	return &fixture{
		scanner:       sc,
		keywordRepo:   keywordRepo,
		candidateRepo: candidateRepo,
		dealRepo:      dealRepo,
		an:            an,
		auctions:      auctions,
		notifier:      notifier,
	}
}

func baseScannerConfig() config.ScannerConfig {
	return config.ScannerConfig{
		ScanMaxPages:                   2,
		MinPriceForAnalyticsSearch:     999_999,
		MaxAnalyticsSearchesPerKeyword: 3,
		MinGrossMarginPct:              0,
		MaxGrossMarginPct:              100,
		MinGrossProfit:                 0,
		DeepValidationMarginThreshold:  999,
		DeepValidationEnabled:          false,
		SeriesExpansionMinProfit:       999_999_999,
		SystemFeeYen:                   100,
		DefaultForwardingCostYen:       960,
		GoodRankThreshold:              100_000,
		DefaultReferralFeePct:          15.0,
	}
}

func sampleProduct(title string) analytics.Product {
	var p analytics.Product
	p.ASIN = "B0TESTASIN"
	p.Title = title
	p.Stats.Current = []int{-1, -1, 25000, 5000}
	return p
}

func TestScanner_RunCycle_RegistersDealForLikelyMatch(t *testing.T) {
	cfg := baseScannerConfig()
	f := newFixture(cfg)

	kw := &models.WatchedKeyword{Keyword: "sony wh1000xm4", IsActive: true, Source: models.KeywordSourceManual}
	if err := f.keywordRepo.Create(kw); err != nil {
		t.Fatalf("seed keyword: %v", err)
	}

	title := "SONY WH1000XM4 ワイヤレスヘッドホン ブラック"
	f.auctions.pages[kw.Keyword] = [][]scraper.SearchResultItem{
		{{AuctionID: "a1", Title: title, URL: "https://auctions.yahoo.co.jp/a1", BuyNowPrice: 8000}},
	}
	f.an.byTerm[kw.Keyword] = []analytics.Product{sampleProduct(title)}

	res, err := f.scanner.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if res.KeywordsScanned != 1 {
		t.Fatalf("expected 1 keyword scanned, got %d", res.KeywordsScanned)
	}
	if res.DealsFound != 1 {
		t.Fatalf("expected 1 deal found, got %d", res.DealsFound)
	}
	if len(f.notifier.notified) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(f.notifier.notified))
	}
	deal := f.notifier.notified[0]
	if deal.AmazonASIN != "B0TESTASIN" || deal.YahooAuctionID != "a1" {
		t.Fatalf("unexpected deal contents: %+v", deal)
	}
	if deal.GrossProfit <= 0 {
		t.Fatalf("expected positive gross profit, got %d", deal.GrossProfit)
	}

	updated, err := f.keywordRepo.GetByID(kw.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.TotalDealsFound != 1 {
		t.Fatalf("expected keyword counters updated, got %+v", updated)
	}
	if updated.LastScannedAt == nil {
		t.Fatalf("expected LastScannedAt to be set")
	}
}

func TestScanner_RunCycle_StopsWhenTokensLow(t *testing.T) {
	cfg := baseScannerConfig()
	f := newFixture(cfg)
	f.an.tokensLeft = intPtr(5)

	kw := &models.WatchedKeyword{Keyword: "anything", IsActive: true, Source: models.KeywordSourceManual}
	if err := f.keywordRepo.Create(kw); err != nil {
		t.Fatalf("seed keyword: %v", err)
	}

	res, err := f.scanner.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if !res.StoppedOnTokens {
		t.Fatalf("expected cycle to stop on low token budget")
	}
	if res.KeywordsScanned != 0 {
		t.Fatalf("expected no keyword scanned, got %d", res.KeywordsScanned)
	}
}

func TestScanner_RunCycle_SkipsLowMarginDeal(t *testing.T) {
	cfg := baseScannerConfig()
	cfg.MinGrossMarginPct = 90 // unreachable bar
	f := newFixture(cfg)

	kw := &models.WatchedKeyword{Keyword: "sony wh1000xm4", IsActive: true, Source: models.KeywordSourceManual}
	if err := f.keywordRepo.Create(kw); err != nil {
		t.Fatalf("seed keyword: %v", err)
	}

	title := "SONY WH1000XM4 ワイヤレスヘッドホン ブラック"
	f.auctions.pages[kw.Keyword] = [][]scraper.SearchResultItem{
		{{AuctionID: "a1", Title: title, URL: "https://auctions.yahoo.co.jp/a1", BuyNowPrice: 8000}},
	}
	f.an.byTerm[kw.Keyword] = []analytics.Product{sampleProduct(title)}

	res, err := f.scanner.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if res.DealsFound != 0 {
		t.Fatalf("expected no deal past the margin bar, got %d", res.DealsFound)
	}
	if len(f.notifier.notified) != 0 {
		t.Fatalf("expected no notification")
	}
}

func TestScanner_FetchListings_StopsOnEmptyPage(t *testing.T) {
	cfg := baseScannerConfig()
	cfg.ScanMaxPages = 5
	f := newFixture(cfg)

	f.auctions.pages["kw"] = [][]scraper.SearchResultItem{
		{{AuctionID: "a1", Title: "t1"}},
		{},
	}

	items, err := f.scanner.fetchListings(context.Background(), "kw")
	if err != nil {
		t.Fatalf("fetchListings: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item across pages, got %d", len(items))
	}
}

func TestClassifyListings_DropsApparel(t *testing.T) {
	items := []scraper.SearchResultItem{
		{AuctionID: "a1", Title: "ナイキ パーカー Lサイズ", BuyNowPrice: 3000},
		{AuctionID: "a2", Title: "任天堂 switch本体 グレー", BuyNowPrice: 15000},
	}
	groups, fallback := classifyListings(items, 999_999)
	total := len(fallback)
	for _, g := range groups {
		total += len(g.listingItems)
	}
	if total != 1 {
		t.Fatalf("expected apparel listing dropped, got %d surviving items", total)
	}
}
