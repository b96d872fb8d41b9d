package ai

import (
	"strings"

	"arbitrage/internal/matcher"
	"arbitrage/internal/models"
)

// dedupSimilarityThreshold of 0 defers to matcher's own default scan-
// dedup threshold (0.60 token Jaccard) — the same bar the scheduler
// uses to decide two watched keywords are redundant.
const dedupSimilarityThreshold = 0

// Dedup normalizes case, drops anything matcher.IsApparel flags, and
// rejects any candidate that matcher.KeywordsAreSimilar finds too close
// either to an already-watched keyword or to a candidate kept earlier
// in the same batch. Order matters: earlier, higher-priority strategies
// should be passed first so they win ties against later ones.
func Dedup(candidates []CandidateProposal, existing []*models.WatchedKeyword) []CandidateProposal {
	var kept []CandidateProposal

	for _, c := range candidates {
		norm := strings.ToLower(strings.TrimSpace(c.Keyword))
		if norm == "" || matcher.IsApparel(norm) {
			continue
		}
		c.Keyword = norm

		if similarToAny(norm, existing, kept) {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

func similarToAny(keyword string, existing []*models.WatchedKeyword, kept []CandidateProposal) bool {
	for _, kw := range existing {
		if matcher.KeywordsAreSimilar(keyword, kw.Keyword, dedupSimilarityThreshold) {
			return true
		}
	}
	for _, k := range kept {
		if matcher.KeywordsAreSimilar(keyword, k.Keyword, dedupSimilarityThreshold) {
			return true
		}
	}
	return false
}
