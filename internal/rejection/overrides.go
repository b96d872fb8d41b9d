package rejection

import (
	"encoding/json"

	"arbitrage/internal/matcher"
	"arbitrage/internal/models"
	"arbitrage/internal/service"
)

// repeatedHitFloor is the minimum hit_count before a problem_pair row is
// trusted as a standing matcher override rather than a single operator
// miss-click.
const repeatedHitFloor = 2

// ReloadMatcherOverrides rebuilds the matcher's process-wide override
// snapshot from every active learned pattern — called at the end of each
// discovery cycle and after every batch rejection pass (§4.H step 7).
func ReloadMatcherOverrides(rejSvc *service.RejectionService) error {
	accessoryWords, err := collectAccessoryWords(rejSvc)
	if err != nil {
		return err
	}

	blockedASIN, blockedTitles, err := collectBlockedPairs(rejSvc)
	if err != nil {
		return err
	}

	delta, err := collectThresholdDelta(rejSvc)
	if err != nil {
		return err
	}

	matcher.SetOverrides(accessoryWords, blockedASIN, blockedTitles, delta)
	return nil
}

func collectAccessoryWords(rejSvc *service.RejectionService) ([]string, error) {
	patterns, err := rejSvc.GetActivePatterns(models.PatternTypeAccessoryWord)
	if err != nil {
		return nil, err
	}
	words := make([]string, 0, len(patterns))
	for _, p := range patterns {
		words = append(words, p.PatternKey)
	}
	return words, nil
}

func collectBlockedPairs(rejSvc *service.RejectionService) (asinPairs [][2]string, titlePairs [][2]string, err error) {
	blocked, err := rejSvc.GetActivePatterns(models.PatternTypeBlockedASIN)
	if err != nil {
		return nil, nil, err
	}
	problemPairs, err := rejSvc.GetActivePatterns(models.PatternTypeProblemPair)
	if err != nil {
		return nil, nil, err
	}

	for _, p := range blocked {
		if snap, ok := decodeSnapshot(p.PatternData); ok {
			asinPairs = append(asinPairs, [2]string{snap.AuctionID, snap.ASIN})
			titlePairs = append(titlePairs, [2]string{snap.YahooTitle, snap.AmazonTitle})
		}
	}
	for _, p := range problemPairs {
		if p.HitCount < repeatedHitFloor {
			continue
		}
		if snap, ok := decodeSnapshot(p.PatternData); ok {
			asinPairs = append(asinPairs, [2]string{snap.AuctionID, snap.ASIN})
			titlePairs = append(titlePairs, [2]string{snap.YahooTitle, snap.AmazonTitle})
		}
	}
	return asinPairs, titlePairs, nil
}

func decodeSnapshot(data []byte) (pairSnapshot, bool) {
	var snap pairSnapshot
	if len(data) == 0 {
		return snap, false
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, false
	}
	return snap, true
}

func collectThresholdDelta(rejSvc *service.RejectionService) (float64, error) {
	p, err := rejSvc.GetPattern(models.PatternTypeThresholdHint, "match_threshold")
	if err != nil {
		return 0, err
	}
	if p == nil || !p.IsActive {
		return 0, nil
	}
	var hint struct {
		Delta float64 `json:"delta"`
	}
	if err := json.Unmarshal(p.PatternData, &hint); err != nil {
		return 0, nil
	}
	return hint.Delta, nil
}
