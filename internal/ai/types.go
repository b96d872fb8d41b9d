// Package ai implements the keyword discovery engine's pure decision
// logic (§4.G): mining performance insights out of deal history, the
// seven candidate-generation strategies, the shared de-duplication
// pass, and the token-budgeted validator. Every strategy is a pure
// function from insights + the already-known keyword set to a list of
// CandidateProposals — the dispatch-table replacement for the "multiple
// generator strategies" dynamic-dispatch design note.
package ai

import "arbitrage/internal/models"

// CandidateProposal is a strategy's raw output, before it has been
// persisted as a models.KeywordCandidate.
type CandidateProposal struct {
	Keyword         string
	Strategy        string
	Confidence      float64
	ParentKeywordID *int
	Reasoning       string
}

// PriceRangeBucket labels match the fixed price buckets mined by the
// analyzer.
const (
	PriceBucket0To3k   = "0-3000"
	PriceBucket3kTo5k  = "3000-5000"
	PriceBucket5kTo10k = "5000-10000"
	PriceBucket10kTo30k = "10000-30000"
	PriceBucket30kPlus = "30000+"
)

// KeywordInsights is the analyzer's output, feeding every generator
// strategy.
type KeywordInsights struct {
	// ProfitableBrands maps a brand token to its aggregate stats,
	// restricted to brands with ≥2 deals.
	ProfitableBrands map[string]*BrandStats
	// ProductTypeTokens maps a non-brand, non-stopword token to its
	// mined score (count × min(avg_profit/5000, 2.0)), top 30 only.
	ProductTypeTokens map[string]float64
	// PriceRangeBuckets counts deals per fixed price bucket.
	PriceRangeBuckets map[string]int
	// TokenScores is the full token→score map mined across every deal
	// title, used by the title strategy's "meaningful token" filter.
	TokenScores map[string]float64
	// TopPerformers are watched keywords ordered by performance_score
	// descending, used by the synonym, suggest and LLM strategies.
	TopPerformers []*models.WatchedKeyword
	// ProfitableAlerts are deal alerts ordered by gross profit
	// descending, used by the series strategy.
	ProfitableAlerts []*models.DealAlert
}

// BrandStats aggregates the deals mined for one brand token.
type BrandStats struct {
	Brand      string
	DealCount  int
	TotalProfit int
}

// AvgProfit is the brand's average gross profit per deal.
func (b *BrandStats) AvgProfit() float64 {
	if b.DealCount == 0 {
		return 0
	}
	return float64(b.TotalProfit) / float64(b.DealCount)
}

// IsProfitable reports the brand threshold shared by the brand and
// category strategies: avg profit ≥3000, ≥3 deals, total ≥15000.
func (b *BrandStats) IsProfitable() bool {
	return b.AvgProfit() >= 3000 && b.DealCount >= 3 && b.TotalProfit >= 15000
}
