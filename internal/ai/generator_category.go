package ai

import "arbitrage/internal/models"

const categoryStrategyConfidence = 0.65

// categorySuffixes are condition/packaging qualifiers paired with a
// profitable brand to surface a narrower, often less-contested search.
var categorySuffixes = []string{"中古", "美品", "ジャンク", "セット", "付属品", "未使用"}

// GenerateCategoryCandidates pairs every profitable brand with a fixed
// condition/packaging suffix word.
func GenerateCategoryCandidates(insights *KeywordInsights) []CandidateProposal {
	brands := sortedProfitableBrands(insights)

	var out []CandidateProposal
	for _, brand := range brands {
		for _, suffix := range categorySuffixes {
			out = append(out, CandidateProposal{
				Keyword:    brand + " " + suffix,
				Strategy:   models.StrategyCategory,
				Confidence: categoryStrategyConfidence,
				Reasoning:  "profitable brand × condition/packaging suffix",
			})
		}
	}
	return out
}
