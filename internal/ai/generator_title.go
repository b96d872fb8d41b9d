package ai

import "arbitrage/internal/models"

const titleStrategyConfidence = 0.60
const titleTokenMinScore = 1.0
const titleTokenMinLen = 3

// GenerateTitleCandidates pairs every unordered combination among the
// top 20 meaningful title tokens — score ≥1.0, not a mined brand, not
// low-quality, at least 3 runes long.
func GenerateTitleCandidates(insights *KeywordInsights) []CandidateProposal {
	brandSet := map[string]bool{}
	for brand := range insights.ProfitableBrands {
		brandSet[brand] = true
	}

	var meaningful []string
	for tok, score := range insights.TokenScores {
		if score < titleTokenMinScore {
			continue
		}
		if brandSet[tok] || len([]rune(tok)) < titleTokenMinLen {
			continue
		}
		meaningful = append(meaningful, tok)
	}
	tokens := topTokensFromList(meaningful, insights.TokenScores, 20)

	var out []CandidateProposal
	for i := 0; i < len(tokens); i++ {
		for j := i + 1; j < len(tokens); j++ {
			out = append(out, CandidateProposal{
				Keyword:    tokens[i] + " " + tokens[j],
				Strategy:   models.StrategyTitle,
				Confidence: titleStrategyConfidence,
				Reasoning:  "co-occurring title tokens",
			})
		}
	}
	return out
}

func topTokensFromList(tokens []string, scores map[string]float64, n int) []string {
	scoped := make(map[string]float64, len(tokens))
	for _, t := range tokens {
		scoped[t] = scores[t]
	}
	return topTokens(scoped, n)
}
