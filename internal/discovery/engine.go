// Package discovery runs the keyword discovery cycle (§4.H): mining
// performance insights out of deal history, generating candidate
// keywords through every strategy, validating pending candidates
// against a token budget, promoting the confident ones, learning from
// rejections, and pruning keywords that stopped earning their keep.
package discovery

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"go.uber.org/zap"

	"arbitrage/internal/ai"
	"arbitrage/internal/analytics"
	"arbitrage/internal/config"
	"arbitrage/internal/matcher"
	"arbitrage/internal/models"
	"arbitrage/internal/rejection"
	"arbitrage/internal/repository"
	"arbitrage/internal/service"
)

// AnalyticsEngine is the subset of *analytics.Client the discovery cycle
// needs — candidate validation plus the optional demand-finder pass.
type AnalyticsEngine interface {
	ai.ValidatorAnalyticsSearcher
	ProductFinder(ctx context.Context, selectionJSON string, statsDays int) ([]analytics.Product, error)
	TokensLeft() *int
}

var _ AnalyticsEngine = (*analytics.Client)(nil)

// LogRepository is the narrow slice of *repository.DiscoveryLogRepository
// the cycle needs to open and close its own run record.
type LogRepository interface {
	Start() (*models.DiscoveryLog, error)
	Finish(id, candidatesGenerated, candidatesValidated, keywordsAdded int, strategyBreakdown []byte) error
	FinishWithError(id int, errMsg string) error
}

var _ LogRepository = (*repository.DiscoveryLogRepository)(nil)

// Engine orchestrates one discovery cycle end to end.
type Engine struct {
	cfg        config.DiscoveryConfig
	scannerCfg config.ScannerConfig

	analytics AnalyticsEngine
	auctions  ai.ValidatorAuctionSearcher
	catalog   ai.CatalogSearcher
	llm       ai.LLMClient

	keywords   *service.KeywordService
	deals      *service.DealAlertService
	rejections *service.RejectionService
	logs       LogRepository

	log *zap.Logger
}

// New создает новый экземпляр Engine.
func New(
	cfg config.DiscoveryConfig,
	scannerCfg config.ScannerConfig,
	analyticsClient AnalyticsEngine,
	auctionClient ai.ValidatorAuctionSearcher,
	catalogClient ai.CatalogSearcher,
	llmClient ai.LLMClient,
	keywords *service.KeywordService,
	deals *service.DealAlertService,
	rejections *service.RejectionService,
	logs LogRepository,
	log *zap.Logger,
) *Engine {
	return &Engine{
		cfg: cfg, scannerCfg: scannerCfg,
		analytics: analyticsClient, auctions: auctionClient, catalog: catalogClient, llm: llmClient,
		keywords: keywords, deals: deals, rejections: rejections, logs: logs,
		log: log,
	}
}

// CycleResult summarizes one discovery run for the caller/log.
type CycleResult struct {
	CandidatesGenerated int
	CandidatesValidated int
	KeywordsAdded       int
	StrategyBreakdown   map[string]int
}

// RunCycle executes the ten-step discovery pass. Every step after the log
// is opened is best-effort against its own sub-errors (logged and
// skipped) except a failure in the log bookkeeping itself, which aborts
// the whole cycle and records an error status.
func (e *Engine) RunCycle(ctx context.Context) (*CycleResult, error) {
	logEntry, err := e.logs.Start()
	if err != nil {
		return nil, err
	}

	res := &CycleResult{StrategyBreakdown: map[string]int{}}

	if err := e.runSteps(ctx, res); err != nil {
		_ = e.logs.FinishWithError(logEntry.ID, err.Error())
		return res, err
	}

	breakdown, _ := json.Marshal(res.StrategyBreakdown)
	if err := e.logs.Finish(logEntry.ID, res.CandidatesGenerated, res.CandidatesValidated, res.KeywordsAdded, breakdown); err != nil {
		return res, err
	}

	return res, nil
}

func (e *Engine) runSteps(ctx context.Context, res *CycleResult) error {
	keywords, err := e.keywords.GetAll()
	if err != nil {
		return err
	}
	deals, err := e.deals.GetHistoryForAnalysis()
	if err != nil {
		return err
	}

	insights, scoreUpdates := ai.AnalyzeDealHistory(keywords, deals, now())

	demandProducts := e.runDemandFinder(ctx)

	if len(deals) >= e.cfg.MinDealsForGeneration {
		e.generateAndPersist(ctx, insights, keywords, demandProducts, res)
	} else if len(demandProducts) > 0 {
		e.persistCandidates(ai.GenerateDemandCandidates(demandProducts), keywords, res)
	}

	e.validatePending(ctx, res)

	learnedWords, err := rejection.AnalyzeAllRejections(e.deals, e.rejections)
	if err != nil {
		e.log.Warn("rejection batch pass failed", zap.Error(err))
	} else if len(learnedWords) > 0 {
		e.log.Info("rejection learner confirmed new accessory words", zap.Strings("words", learnedWords))
	}
	if err := rejection.ReloadMatcherOverrides(e.rejections); err != nil {
		e.log.Warn("failed to reload matcher overrides", zap.Error(err))
	}

	e.applyScoreUpdatesAndDeactivate(scoreUpdates, keywords)

	e.dedupWatchedKeywords(keywords)

	return nil
}

func now() time.Time { return time.Now() }

// runDemandFinder optionally pulls fresh ASIN candidates out of the
// analytics provider's product-finder query (§4.H step 3).
func (e *Engine) runDemandFinder(ctx context.Context) []analytics.Product {
	if e.cfg.DemandFinderMaxResults <= 0 {
		return nil
	}
	selection := demandFinderSelection(e.scannerCfg, e.cfg.DemandFinderMaxResults)
	products, err := e.analytics.ProductFinder(ctx, selection, 90)
	if err != nil {
		e.log.Warn("demand finder query failed", zap.Error(err))
		return nil
	}
	if len(products) > e.cfg.DemandFinderMaxResults {
		products = products[:e.cfg.DemandFinderMaxResults]
	}
	return products
}

// demandFinderSelection builds a Keepa-style Product Finder selection
// restricted to the sales-rank band the scanner already treats as
// "good enough to be worth listing" — there's no dedicated demand
// filter config beyond what the scanner already uses for this.
func demandFinderSelection(cfg config.ScannerConfig, perPage int) string {
	sel := map[string]interface{}{
		"current_SALES_gte": 1,
		"current_SALES_lte": cfg.GoodRankThreshold,
		"perPage":           perPage,
		"page":              0,
	}
	data, _ := json.Marshal(sel)
	return string(data)
}

func (e *Engine) generateAndPersist(ctx context.Context, insights *ai.KeywordInsights, keywords []*models.WatchedKeyword, demandProducts []analytics.Product, res *CycleResult) {
	candidates := ai.GenerateOfflineCandidates(insights, keywords)

	if len(demandProducts) > 0 {
		candidates = append(candidates, ai.GenerateDemandCandidates(demandProducts)...)
	}
	if e.cfg.SuggestEnabled && e.catalog != nil {
		candidates = append(candidates, ai.GenerateSuggestCandidates(ctx, insights, e.catalog, e.auctions, nil)...)
	}
	if e.cfg.LLMEnabled && e.llm != nil {
		candidates = append(candidates, ai.GenerateLLMCandidates(ctx, insights, e.llm, e.log)...)
	}

	candidates = ai.Dedup(candidates, keywords)
	e.persistCandidates(candidates, keywords, res)
}

func (e *Engine) persistCandidates(candidates []ai.CandidateProposal, keywords []*models.WatchedKeyword, res *CycleResult) {
	candidates = ai.Dedup(candidates, keywords)
	for _, c := range candidates {
		_, err := e.keywords.SubmitCandidate(&models.KeywordCandidate{
			Keyword: c.Keyword, Strategy: c.Strategy, Confidence: c.Confidence,
			ParentKeywordID: c.ParentKeywordID, Reasoning: c.Reasoning,
		})
		if err != nil {
			continue
		}
		res.CandidatesGenerated++
		res.StrategyBreakdown[c.Strategy]++
	}
}

// validatePending implements step 5: spend a capped token budget
// validating pending candidates confidence-first, promoting the ones
// confident and proven enough, deferring the rest for next cycle.
func (e *Engine) validatePending(ctx context.Context, res *CycleResult) {
	pending, err := e.keywords.GetPendingCandidates()
	if err != nil {
		e.log.Warn("failed to load pending candidates", zap.Error(err))
		return
	}
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].Confidence > pending[j].Confidence })

	budget := e.tokenBudget()

	aiKeywordCount, err := e.countAIKeywords()
	if err != nil {
		e.log.Warn("failed to count AI keywords", zap.Error(err))
	}

	for _, c := range pending {
		if budget <= 0 {
			break
		}

		result := ai.ValidateCandidate(ctx, c.Keyword, e.auctions, e.analytics, budget, e.scannerCfg)
		if result.TokenConsumed {
			budget--
		}

		data, _ := json.Marshal(result)

		if !result.Passed {
			if result.Reason == "token budget exhausted, deferred" {
				continue
			}
			_ = e.keywords.SetCandidateValidation(c.ID, models.CandidateStatusRejected, data)
			continue
		}

		res.CandidatesValidated++

		qualifiesForAutoAdd := c.Confidence >= e.cfg.AutoAddThreshold &&
			result.DealCount >= 3 && result.BestProfit >= 5000

		if qualifiesForAutoAdd && aiKeywordCount < e.cfg.MaxAIKeywords {
			if _, err := e.keywords.PromoteCandidate(c); err == nil {
				res.KeywordsAdded++
				aiKeywordCount++
				continue
			}
		}

		_ = e.keywords.SetCandidateValidation(c.ID, models.CandidateStatusValidated, data)
	}
}

// tokenBudget caps the validator's spend at 10% of whatever the
// analytics provider last reported as remaining, or the configured
// ceiling, whichever is smaller.
func (e *Engine) tokenBudget() int {
	tokensLeft := e.analytics.TokensLeft()
	if tokensLeft == nil {
		return e.cfg.TokenBudget
	}
	fromTokens := int(float64(*tokensLeft) * 0.10)
	if fromTokens < e.cfg.TokenBudget {
		return fromTokens
	}
	return e.cfg.TokenBudget
}

func (e *Engine) countAIKeywords() (int, error) {
	all, err := e.keywords.GetAll()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, k := range all {
		if !k.IsManual() {
			n++
		}
	}
	return n, nil
}

func (e *Engine) applyScoreUpdatesAndDeactivate(updates []ai.ScoreUpdate, keywords []*models.WatchedKeyword) {
	scansByID := map[int]int{}
	for _, k := range keywords {
		scansByID[k.ID] = k.TotalScans
	}

	for _, u := range updates {
		if err := e.keywords.UpdatePerformance(u.KeywordID, u.Score, u.Confidence); err != nil {
			e.log.Warn("failed to update keyword performance", zap.Int("keyword_id", u.KeywordID), zap.Error(err))
			continue
		}

		if u.Score < e.cfg.DeactivationThreshold && scansByID[u.KeywordID] >= e.cfg.DeactivationScans {
			if err := e.keywords.AutoDeactivate(u.KeywordID); err != nil {
				e.log.Warn("failed to auto-deactivate keyword", zap.Int("keyword_id", u.KeywordID), zap.Error(err))
			}
		}
	}
}

// dedupWatchedKeywords implements step 9: pairwise-compare every active
// keyword and delete the loser of any similar pair by priority
// (manual beats AI, more deals wins, higher profit wins, older wins).
func (e *Engine) dedupWatchedKeywords(keywords []*models.WatchedKeyword) {
	active := make([]*models.WatchedKeyword, 0, len(keywords))
	for _, k := range keywords {
		if k.IsActive {
			active = append(active, k)
		}
	}

	removed := map[int]bool{}
	for i := 0; i < len(active); i++ {
		if removed[active[i].ID] {
			continue
		}
		for j := i + 1; j < len(active); j++ {
			if removed[active[j].ID] {
				continue
			}
			if !matcher.KeywordsAreSimilar(active[i].Keyword, active[j].Keyword, 0) {
				continue
			}
			loser := pickDedupLoser(active[i], active[j])
			removed[loser.ID] = true
			if err := e.keywords.Remove(loser.ID); err != nil {
				e.log.Warn("failed to remove duplicate keyword", zap.Int("keyword_id", loser.ID), zap.Error(err))
			}
		}
	}
}

// pickDedupLoser implements the priority chain: manual always beats AI,
// then more accumulated deals wins, then higher total profit, then the
// older (earlier-created) keyword survives.
func pickDedupLoser(a, b *models.WatchedKeyword) *models.WatchedKeyword {
	if a.IsManual() != b.IsManual() {
		if a.IsManual() {
			return b
		}
		return a
	}
	if a.TotalDealsFound != b.TotalDealsFound {
		if a.TotalDealsFound > b.TotalDealsFound {
			return b
		}
		return a
	}
	if a.TotalGrossProfit != b.TotalGrossProfit {
		if a.TotalGrossProfit > b.TotalGrossProfit {
			return b
		}
		return a
	}
	if a.CreatedAt.Before(b.CreatedAt) {
		return b
	}
	return a
}
