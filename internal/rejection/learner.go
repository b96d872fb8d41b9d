package rejection

import (
	"encoding/json"
	"sort"
	"strings"

	"arbitrage/internal/matcher"
	"arbitrage/internal/models"
	"arbitrage/internal/service"
)

// problemPairThreshold is the rejection count on the same ASIN past which
// the pair is learned as permanently blocked, not just penalized.
const problemPairThreshold = 3

// pairSnapshot is the PatternData payload stored on problem_pair and
// blocked_asin rows — enough to rebuild a matcher override without a second
// round trip to the deal alert table.
type pairSnapshot struct {
	AuctionID   string `json:"auction_id"`
	ASIN        string `json:"asin"`
	YahooTitle  string `json:"yahoo_title"`
	AmazonTitle string `json:"amazon_title"`
}

// AnalyzeSingleRejection turns one operator decision into persisted
// RejectionPattern rows and returns any accessory word newly confirmed by
// this rejection, so the caller can fold it into the next matcher override
// reload without waiting for the next batch pass.
func AnalyzeSingleRejection(alert *models.DealAlert, reason string, rejSvc *service.RejectionService) (learnedAccessoryWords []string, err error) {
	pairData, _ := json.Marshal(pairSnapshot{
		AuctionID:   alert.YahooAuctionID,
		ASIN:        alert.AmazonASIN,
		YahooTitle:  alert.YahooTitle,
		AmazonTitle: alert.AmazonTitle,
	})

	problemPair, err := rejSvc.RecordRejection(models.PatternTypeProblemPair, alert.AmazonASIN, pairData)
	if err != nil {
		return nil, err
	}

	switch reason {
	case models.RejectionReasonAccessory:
		if word := detectedAccessoryWord(alert.YahooTitle); word != "" {
			if _, err := rejSvc.RecordRejection(models.PatternTypeAccessoryWord, word, nil); err != nil {
				return nil, err
			}
			learnedAccessoryWords = append(learnedAccessoryWords, word)
		}

	case models.RejectionReasonModelVariant:
		key := modelConflictKey(alert.YahooTitle, alert.AmazonTitle)
		if key != "" {
			if _, err := rejSvc.RecordRejection(models.PatternTypeModelConflict, key, nil); err != nil {
				return nil, err
			}
		}

	case models.RejectionReasonBadPrice:
		data, _ := json.Marshal(map[string]float64{"price_ratio": priceRatio(alert)})
		if _, err := rejSvc.RecordRejection(models.PatternTypeThresholdHint, "price_ratio", data); err != nil {
			return nil, err
		}
	}

	if problemPair.HitCount >= problemPairThreshold {
		if _, err := rejSvc.RecordRejection(models.PatternTypeBlockedASIN, alert.AmazonASIN, pairData); err != nil {
			return nil, err
		}
	}

	return learnedAccessoryWords, nil
}

func modelConflictKey(yahooTitle, amazonTitle string) string {
	_, yModels, _ := matcher.ExtractProductInfo(yahooTitle)
	_, aModels, _ := matcher.ExtractProductInfo(amazonTitle)
	y := sortedKeys(yModels)
	a := sortedKeys(aModels)
	if len(y) == 0 && len(a) == 0 {
		return ""
	}
	return strings.Join(y, ",") + "|" + strings.Join(a, ",")
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

const (
	falsePositiveRateHigh       = 0.5
	falsePositiveRateHighMinN   = 5
	falsePositiveRateHighAdjust = 0.05
	falsePositiveRateMed        = 0.3
	falsePositiveRateMedMinN    = 10
	falsePositiveRateMedAdjust  = 0.03
)

// AnalyzeAllRejections runs the batch false-positive-rate check against the
// whole deal alert history and, if the rate is high enough, nudges the
// matcher's global threshold via a threshold_hint pattern. It does not
// re-analyze individual rejections, so the returned accessory-word slice is
// always empty; accessory words are learned only by AnalyzeSingleRejection.
func AnalyzeAllRejections(dealSvc *service.DealAlertService, rejSvc *service.RejectionService) (learnedAccessoryWords []string, err error) {
	rejected, total, err := dealSvc.GetRejectionStats()
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, nil
	}

	rate := float64(rejected) / float64(total)

	var adjustment float64
	switch {
	case rate > falsePositiveRateHigh && rejected >= falsePositiveRateHighMinN:
		adjustment = falsePositiveRateHighAdjust
	case rate > falsePositiveRateMed && rejected >= falsePositiveRateMedMinN:
		adjustment = falsePositiveRateMedAdjust
	}

	if adjustment > 0 {
		data, _ := json.Marshal(map[string]float64{"delta": adjustment, "false_positive_rate": rate})
		if _, err := rejSvc.RecordRejection(models.PatternTypeThresholdHint, "match_threshold", data); err != nil {
			return nil, err
		}
	}

	return learnedAccessoryWords, nil
}
