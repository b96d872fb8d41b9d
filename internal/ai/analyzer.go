package ai

import (
	"sort"
	"time"

	"arbitrage/internal/matcher"
	"arbitrage/internal/models"
)

// lowQualityTokens excludes colors, conditions and packaging words from
// every mined token set — they describe a listing's condition, not a
// product family, and make poor keyword candidates on their own.
var lowQualityTokens = set(
	"黒", "白", "赤", "青", "緑", "黄", "ピンク", "グレー", "シルバー", "ゴールド",
	"新品", "中古", "美品", "未使用", "used", "new",
	"箱", "箱あり", "箱なし", "説明書", "付属品", "セット",
)

var stopwordTokens = set(
	"の", "と", "で", "は", "が", "を", "に", "set", "used", "new",
)

func set(items ...string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, it := range items {
		out[it] = true
	}
	return out
}

// ScanResult is the recomputed performance_score for one watched
// keyword, ready for KeywordService.UpdatePerformance.
type ScanResult struct {
	KeywordID  int
	Score      float64
	Confidence float64
}

// AnalyzeDealHistory implements the §4.G analyzer: it recomputes every
// keyword's performance_score and mines brand/token/price-bucket
// insights out of the deal history for the generator strategies.
func AnalyzeDealHistory(keywords []*models.WatchedKeyword, deals []*models.DealAlert, now time.Time) (*KeywordInsights, []ScoreUpdate) {
	dealsByKeyword := map[int][]*models.DealAlert{}
	for _, d := range deals {
		dealsByKeyword[d.KeywordID] = append(dealsByKeyword[d.KeywordID], d)
	}

	updates := make([]ScoreUpdate, 0, len(keywords))
	for _, kw := range keywords {
		score := scoreKeyword(kw, dealsByKeyword[kw.ID], now)
		updates = append(updates, ScoreUpdate{KeywordID: kw.ID, Score: score, Confidence: confidenceFor(kw, dealsByKeyword[kw.ID])})
	}

	insights := mineInsights(keywords, deals)
	return insights, updates
}

// ScoreUpdate is one keyword's recomputed performance_score, to be
// written back via KeywordService.
type ScoreUpdate struct {
	KeywordID  int
	Score      float64
	Confidence float64
}

// scoreKeyword implements the analyzer's weighted formula:
//
//	profit_score = min(avg_profit_per_deal / 10000, 1)
//	deal_rate    = min(deals / max(scans,1), 1)
//	margin_score = min(avg_margin_of_alerts / 100, 1)
//	recency      = 1.0 if most_recent_alert ≤ 7d else 0.5 if ≤ 14d else 0
//	score        = round(0.4*profit + 0.3*rate + 0.2*margin + 0.1*recency, 4)
func scoreKeyword(kw *models.WatchedKeyword, deals []*models.DealAlert, now time.Time) float64 {
	if len(deals) == 0 {
		return 0
	}

	totalProfit, totalMargin := 0, 0.0
	var mostRecent time.Time
	for _, d := range deals {
		totalProfit += d.GrossProfit
		totalMargin += d.GrossMarginPct
		if d.CreatedAt.After(mostRecent) {
			mostRecent = d.CreatedAt
		}
	}

	avgProfit := float64(totalProfit) / float64(len(deals))
	avgMargin := totalMargin / float64(len(deals))

	profitScore := minF(avgProfit/10000, 1)
	scans := kw.TotalScans
	if scans == 0 {
		scans = 1
	}
	dealRate := minF(float64(len(deals))/float64(scans), 1)
	marginScore := minF(avgMargin/100, 1)

	var recency float64
	switch {
	case now.Sub(mostRecent) <= 7*24*time.Hour:
		recency = 1.0
	case now.Sub(mostRecent) <= 14*24*time.Hour:
		recency = 0.5
	default:
		recency = 0
	}

	score := 0.4*profitScore + 0.3*dealRate + 0.2*marginScore + 0.1*recency
	return roundTo(score, 4)
}

// confidenceFor gives each keyword's mined brand/token confidence a
// modest bump proportional to how much deal evidence backs it, capped
// at 1.0 — a simple evidence-weighted confidence the discovery cycle
// can use alongside the raw performance score.
func confidenceFor(kw *models.WatchedKeyword, deals []*models.DealAlert) float64 {
	return minF(float64(len(deals))/10.0, 1.0)
}

func mineInsights(keywords []*models.WatchedKeyword, deals []*models.DealAlert) *KeywordInsights {
	brands := map[string]*BrandStats{}
	tokenCounts := map[string]int{}
	tokenProfit := map[string]int{}
	buckets := map[string]int{
		PriceBucket0To3k: 0, PriceBucket3kTo5k: 0, PriceBucket5kTo10k: 0,
		PriceBucket10kTo30k: 0, PriceBucket30kPlus: 0,
	}

	for _, d := range deals {
		brand, _, tokens := matcher.ExtractProductInfo(d.YahooTitle)
		if brand != "" {
			b, ok := brands[brand]
			if !ok {
				b = &BrandStats{Brand: brand}
				brands[brand] = b
			}
			b.DealCount++
			b.TotalProfit += d.GrossProfit
		}

		for _, tok := range tokens {
			if len([]rune(tok)) < 2 || tok == brand || lowQualityTokens[tok] || stopwordTokens[tok] {
				continue
			}
			tokenCounts[tok]++
			tokenProfit[tok] += d.GrossProfit
		}

		buckets[priceBucket(d.SellPrice)]++
	}

	for brand, stats := range brands {
		if stats.DealCount < 2 {
			delete(brands, brand)
		}
	}

	tokenScores := map[string]float64{}
	for tok, count := range tokenCounts {
		if count < 3 {
			continue
		}
		avgProfit := float64(tokenProfit[tok]) / float64(count)
		tokenScores[tok] = float64(count) * minF(avgProfit/5000, 2.0)
	}
	productTypeTokens := topN(tokenScores, 30)

	sortedKeywords := append([]*models.WatchedKeyword(nil), keywords...)
	sort.SliceStable(sortedKeywords, func(i, j int) bool {
		return sortedKeywords[i].PerformanceScore > sortedKeywords[j].PerformanceScore
	})

	sortedDeals := append([]*models.DealAlert(nil), deals...)
	sort.SliceStable(sortedDeals, func(i, j int) bool {
		return sortedDeals[i].GrossProfit > sortedDeals[j].GrossProfit
	})

	return &KeywordInsights{
		ProfitableBrands:  brands,
		ProductTypeTokens: productTypeTokens,
		PriceRangeBuckets: buckets,
		TokenScores:       tokenScores,
		TopPerformers:     sortedKeywords,
		ProfitableAlerts:  sortedDeals,
	}
}

func priceBucket(price int) string {
	switch {
	case price < 3000:
		return PriceBucket0To3k
	case price < 5000:
		return PriceBucket3kTo5k
	case price < 10000:
		return PriceBucket5kTo10k
	case price < 30000:
		return PriceBucket10kTo30k
	default:
		return PriceBucket30kPlus
	}
}

func topN(scores map[string]float64, n int) map[string]float64 {
	type kv struct {
		k string
		v float64
	}
	all := make([]kv, 0, len(scores))
	for k, v := range scores {
		all = append(all, kv{k, v})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].v > all[j].v })
	if len(all) > n {
		all = all[:n]
	}
	out := make(map[string]float64, len(all))
	for _, e := range all {
		out[e.k] = e.v
	}
	return out
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func roundTo(v float64, decimals int) float64 {
	mul := 1.0
	for i := 0; i < decimals; i++ {
		mul *= 10
	}
	return float64(int(v*mul+0.5)) / mul
}
