package scanner

import (
	"fmt"
	"regexp"
	"strconv"

	"arbitrage/internal/matcher"
	"arbitrage/internal/models"
)

var modelDecomposeRe = regexp.MustCompile(`^([a-z]+)(\d+)([a-z]*)$`)

var seriesOffsets = []int{-2, -1, 1, 2}

const seriesConfidence = 0.75

// expandSeries implements the §4.F.10 side effect: for a deal crossing
// the profit bar, guess a sibling model-number series from each detected
// model and submit them as keyword candidates for operator/auto review.
func (s *Scanner) expandSeries(deal *models.DealAlert, parentKeywordID int) {
	if deal.GrossProfit < s.cfg.SeriesExpansionMinProfit {
		return
	}

	_, modelSet, _ := matcher.ExtractProductInfo(deal.YahooTitle)
	for model := range modelSet {
		s.expandModel(model, parentKeywordID)
	}
}

func (s *Scanner) expandModel(model string, parentKeywordID int) {
	m := modelDecomposeRe.FindStringSubmatch(model)
	if m == nil {
		return
	}
	prefix, numStr, suffix := m[1], m[2], m[3]
	num, err := strconv.Atoi(numStr)
	if err != nil {
		return
	}

	step := seriesStep(num)
	parentID := parentKeywordID

	for _, offset := range seriesOffsets {
		sibling := num + offset*step
		if sibling <= 0 {
			continue
		}
		keyword := fmt.Sprintf("%s%d%s", prefix, sibling, suffix)

		_, _ = s.keywords.SubmitCandidate(&models.KeywordCandidate{
			Keyword:         keyword,
			Strategy:        models.StrategySeries,
			Confidence:      seriesConfidence,
			ParentKeywordID: &parentID,
		})
	}
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
