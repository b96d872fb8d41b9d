package ai

import "arbitrage/internal/models"

// GenerateOfflineCandidates runs every strategy that needs nothing but
// the mined insights — brand, title, category, synonym and series — and
// returns the combined, deduplicated list. The demand, suggest-cross-
// match and LLM strategies each need their own I/O dependency and are
// invoked separately by the discovery cycle.
func GenerateOfflineCandidates(insights *KeywordInsights, existing []*models.WatchedKeyword) []CandidateProposal {
	var all []CandidateProposal
	all = append(all, GenerateBrandCandidates(insights)...)
	all = append(all, GenerateTitleCandidates(insights)...)
	all = append(all, GenerateCategoryCandidates(insights)...)
	all = append(all, GenerateSynonymCandidates(insights)...)
	all = append(all, GenerateSeriesCandidates(insights)...)
	return Dedup(all, existing)
}
