package ai

import (
	"fmt"
	"regexp"
	"strconv"

	"arbitrage/internal/matcher"
	"arbitrage/internal/models"
)

const seriesStrategyConfidence = 0.75

var seriesModelRe = regexp.MustCompile(`^([a-z]+)(\d+)([a-z]*)$`)
var seriesOffsets = []int{-2, -1, 1, 2}

// GenerateSeriesCandidates runs the same model-number decomposition as
// the scanner's per-deal series expansion (§4.F.10), but sourced from
// every profitable historical alert ordered by gross profit descending
// instead of a single just-registered deal.
func GenerateSeriesCandidates(insights *KeywordInsights) []CandidateProposal {
	seen := map[string]bool{}
	var out []CandidateProposal

	for _, alert := range insights.ProfitableAlerts {
		_, models, _ := matcher.ExtractProductInfo(alert.YahooTitle)
		for model := range models {
			for _, c := range expandSeriesModel(model, alert.KeywordID) {
				if seen[c.Keyword] {
					continue
				}
				seen[c.Keyword] = true
				out = append(out, c)
			}
		}
	}
	return out
}

func expandSeriesModel(model string, parentKeywordID int) []CandidateProposal {
	m := seriesModelRe.FindStringSubmatch(model)
	if m == nil {
		return nil
	}
	prefix, numStr, suffix := m[1], m[2], m[3]
	num, err := strconv.Atoi(numStr)
	if err != nil {
		return nil
	}

	step := seriesStep(num)
	parentID := parentKeywordID

	var out []CandidateProposal
	for _, offset := range seriesOffsets {
		sibling := num + offset*step
		if sibling <= 0 {
			continue
		}
		out = append(out, CandidateProposal{
			Keyword:         fmt.Sprintf("%s%d%s", prefix, sibling, suffix),
			Strategy:        models.StrategySeries,
			Confidence:      seriesStrategyConfidence,
			ParentKeywordID: &parentID,
			Reasoning:       "model-number series sibling of " + model,
		})
	}
	return out
}

// seriesStep guesses the natural step size for a model-number series:
// round hundreds step by 100, round tens step by 10, otherwise by 1.
func seriesStep(num int) int {
	switch {
	case num >= 100 && num%100 == 0:
		return 100
	case num >= 10 && num%10 == 0:
		return 10
	default:
		return 1
	}
}
