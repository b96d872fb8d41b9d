package discovery

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

func baseScannerConfig() config.ScannerConfig {
	return config.ScannerConfig{
		MinGrossMarginPct:        0,
		MaxGrossMarginPct:        100,
		MinGrossProfit:           0,
		SystemFeeYen:             100,
		DefaultForwardingCostYen: 960,
		GoodRankThreshold:        100_000,
		DefaultReferralFeePct:    15.0,
	}
}

type testFixture struct {
	engine        *Engine
	keywordRepo   *fakeWatchedKeywordRepo
	candidateRepo *fakeKeywordCandidateRepo
	dealRepo      *fakeDealAlertRepo
	an            *fakeAnalytics
	auctions      *fakeAuctions
	logs          *fakeLogRepo
}

func newTestFixture(cfg config.DiscoveryConfig) *testFixture {
	keywordRepo := newFakeWatchedKeywordRepo()
	candidateRepo := newFakeKeywordCandidateRepo()
	dealRepo := newFakeDealAlertRepo()
	rejectionRepo := newFakeRejectionPatternRepo()

	keywords := service.NewKeywordService(keywordRepo, candidateRepo)
	deals := service.NewDealAlertService(dealRepo, keywordRepo)
	rejections := service.NewRejectionService(rejectionRepo)

	an := &fakeAnalytics{byTerm: map[string][]analytics.Product{}, tokensLeft: intPtr(1000)}
	auctions := &fakeAuctions{byTerm: map[string][]scraper.SearchResultItem{}}
	logs := &fakeLogRepo{}

	e := New(cfg, baseScannerConfig(), an, auctions, nil, nil, keywords, deals, rejections, logs, zap.NewNop())

	return &testFixture{
		engine: e, keywordRepo: keywordRepo, candidateRepo: candidateRepo,
		dealRepo: dealRepo, an: an, auctions: auctions, logs: logs,
	}
}

func discoveryCfg() config.DiscoveryConfig {
	return config.DiscoveryConfig{
		MinDealsForGeneration:  1,
		TokenBudget:            20,
		AutoAddThreshold:       0.70,
		MaxAIKeywords:          200,
		DeactivationScans:      30,
		DeactivationThreshold:  0.20,
		DemandFinderMaxResults: 0,
		LLMEnabled:             false,
		SuggestEnabled:         false,
	}
}

func TestRunCycle_NoHistoryNoCandidates(t *testing.T) {
	f := newTestFixture(discoveryCfg())

	res, err := f.engine.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CandidatesGenerated != 0 {
		t.Errorf("expected no candidates generated with no deal history, got %d", res.CandidatesGenerated)
	}
	if !f.logs.finished {
		t.Errorf("expected log to be finished")
	}
}

func TestRunCycle_PendingCandidateRejectedWhenAuctionResultsTooFew(t *testing.T) {
	f := newTestFixture(discoveryCfg())

	c := &models.KeywordCandidate{Keyword: "nintendo switch lite", Strategy: models.StrategyBrand, Confidence: 0.9}
	if err := f.candidateRepo.Create(c); err != nil {
		t.Fatalf("seed candidate: %v", err)
	}

	res, err := f.engine.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.KeywordsAdded != 0 {
		t.Errorf("expected no auto-add without sufficient auction results, got %d", res.KeywordsAdded)
	}

	got, _ := f.candidateRepo.GetByID(c.ID)
	if got.Status != models.CandidateStatusRejected {
		t.Errorf("expected candidate rejected for too few auction results, got %q", got.Status)
	}
}

func TestRunCycle_DedupRemovesSimilarKeyword(t *testing.T) {
	f := newTestFixture(discoveryCfg())

	k1 := &models.WatchedKeyword{Keyword: "Nintendo Switch", IsActive: true, Source: models.KeywordSourceManual}
	k2 := &models.WatchedKeyword{Keyword: "nintendo switch", IsActive: true, Source: models.KeywordSourceAISeed}
	if err := f.keywordRepo.Create(k1); err != nil {
		t.Fatalf("seed k1: %v", err)
	}
	if err := f.keywordRepo.Create(k2); err != nil {
		t.Fatalf("seed k2: %v", err)
	}

	if _, err := f.engine.RunCycle(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all, _ := f.keywordRepo.GetAll()
	if len(all) != 1 {
		t.Fatalf("expected exactly one surviving keyword after dedup, got %d", len(all))
	}
	if all[0].ID != k1.ID {
		t.Errorf("expected manual keyword to survive dedup, got keyword id %d", all[0].ID)
	}
}
