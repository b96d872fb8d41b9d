package ai

import (
	"regexp"
	"sort"

	"arbitrage/internal/analytics"
	"arbitrage/internal/matcher"
	"arbitrage/internal/models"
)

const demandStrategyConfidence = 0.80
const demandModelMinLenForBrandPrefix = 4

var barcodeRe = regexp.MustCompile(`^\d{8,}$`)

// brandLongToShort cleans a handful of long-form brand names the
// analytics provider's catalog titles spell out in full, into the
// short form searches actually use.
var brandLongToShort = map[string]string{
	"ソニー株式会社":      "sony",
	"任天堂株式会社":      "任天堂",
	"パナソニック株式会社": "panasonic",
	"canon inc":       "canon",
	"sony corporation": "sony",
}

// GenerateDemandCandidates builds one candidate per analytics
// Product-Finder result: the product's model number, prefixed with its
// cleaned short-form brand when the model is at least
// demandModelMinLenForBrandPrefix runes long; shorter models are used bare.
func GenerateDemandCandidates(products []analytics.Product) []CandidateProposal {
	var out []CandidateProposal
	for _, p := range products {
		model := bestModel(p.Title)
		if model == "" {
			continue
		}

		keyword := model
		if len([]rune(model)) >= demandModelMinLenForBrandPrefix {
			brand, _, _ := matcher.ExtractProductInfo(p.Title)
			if short, ok := brandLongToShort[brand]; ok {
				brand = short
			}
			if brand != "" {
				keyword = brand + " " + model
			}
		}

		out = append(out, CandidateProposal{
			Keyword:    keyword,
			Strategy:   models.StrategyDemand,
			Confidence: demandStrategyConfidence,
			Reasoning:  "analytics demand finder: " + p.ASIN,
		})
	}
	return out
}

// bestModel extracts a non-barcode model number from a product title,
// picking the shortest candidate as the most likely bare model code.
func bestModel(title string) string {
	_, modelSet, _ := matcher.ExtractProductInfo(title)
	var candidates []string
	for m := range modelSet {
		if barcodeRe.MatchString(m) {
			continue
		}
		candidates = append(candidates, m)
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.Slice(candidates, func(i, j int) bool { return len(candidates[i]) < len(candidates[j]) })
	return candidates[0]
}
