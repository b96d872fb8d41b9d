package ai

import (
	"sort"

	"arbitrage/internal/models"
)

const brandStrategyConfidence = 0.70

// GenerateBrandCandidates forms the Cartesian product of every
// profitable brand and the top 15 product-type tokens, one candidate
// per pair.
func GenerateBrandCandidates(insights *KeywordInsights) []CandidateProposal {
	brands := sortedProfitableBrands(insights)
	tokens := topTokens(insights.ProductTypeTokens, 15)

	var out []CandidateProposal
	for _, brand := range brands {
		for _, tok := range tokens {
			out = append(out, CandidateProposal{
				Keyword:    brand + " " + tok,
				Strategy:   models.StrategyBrand,
				Confidence: brandStrategyConfidence,
				Reasoning:  "profitable brand × top product-type token",
			})
		}
	}
	return out
}

func sortedProfitableBrands(insights *KeywordInsights) []string {
	var out []string
	for brand, stats := range insights.ProfitableBrands {
		if stats.IsProfitable() {
			out = append(out, brand)
		}
	}
	sort.Strings(out)
	return out
}

func topTokens(scores map[string]float64, n int) []string {
	type kv struct {
		k string
		v float64
	}
	all := make([]kv, 0, len(scores))
	for k, v := range scores {
		all = append(all, kv{k, v})
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].v != all[j].v {
			return all[i].v > all[j].v
		}
		return all[i].k < all[j].k
	})
	if len(all) > n {
		all = all[:n]
	}
	out := make([]string, len(all))
	for i, e := range all {
		out[i] = e.k
	}
	return out
}
