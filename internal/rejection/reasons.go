package rejection

import (
	"sort"
	"strings"

	"arbitrage/internal/matcher"
	"arbitrage/internal/models"
	"arbitrage/internal/service"
)

const (
	confidenceBrandConflict    = 0.90
	confidenceQtyConflict      = 0.80
	confidenceModelFamilies    = 0.80
	confidenceAccessoryWord    = 0.85
	confidenceTypeConflict     = 0.70
	confidencePriceRatioLow    = 0.70
	confidenceAccessoryToken   = 0.60
	confidenceBadPrice         = 0.65
	confidencePriorProblemPair = 0.98
	confidenceModelConflict    = 0.85

	priceRatioAccessoryMax = 0.20
	priceRatioBadPriceMin  = 0.85

	modelFamilyConflictMin = 2
)

// SuggestReasons ranks candidate explanations for why alert was rejected,
// re-deriving the match signals from the stored titles rather than trusting
// anything cached at scan time.
func SuggestReasons(alert *models.DealAlert, rejSvc *service.RejectionService) ([]Suggestion, error) {
	var out []Suggestion

	if rejSvc != nil {
		prior, err := rejSvc.GetPattern(models.PatternTypeProblemPair, alert.AmazonASIN)
		if err == nil && prior != nil && prior.IsActive {
			out = append(out, Suggestion{
				Reason:     models.RejectionReasonNeverShow,
				Label:      reasonLabels[models.RejectionReasonNeverShow],
				Confidence: confidencePriorProblemPair,
			})
		}
	}

	result := matcher.MatchProducts(alert.YahooTitle, alert.AmazonTitle, false)

	if result.BrandConflict {
		out = append(out, suggestion(models.RejectionReasonWrongProduct, confidenceBrandConflict))
	}
	if result.TypeConflict {
		out = append(out, suggestion(models.RejectionReasonWrongProduct, confidenceTypeConflict))
	}
	if result.QtyConflict {
		out = append(out, suggestion(models.RejectionReasonWrongProduct, confidenceQtyConflict))
	}
	if result.ModelConflict {
		out = append(out, suggestion(models.RejectionReasonModelVariant, confidenceModelConflict))
	}

	word := detectedAccessoryWord(alert.YahooTitle)
	if result.AccessoryConflict && word != "" {
		out = append(out, suggestion(models.RejectionReasonAccessory, confidenceAccessoryWord))
	} else if word != "" {
		out = append(out, suggestion(models.RejectionReasonAccessory, confidenceAccessoryToken))
	}

	if modelFamilyCount(alert.YahooTitle) > modelFamilyConflictMin {
		out = append(out, suggestion(models.RejectionReasonAccessory, confidenceModelFamilies))
	}

	ratio := priceRatio(alert)
	switch {
	case ratio < priceRatioAccessoryMax:
		out = append(out, suggestion(models.RejectionReasonAccessory, confidencePriceRatioLow))
	case ratio > priceRatioBadPriceMin:
		out = append(out, suggestion(models.RejectionReasonBadPrice, confidenceBadPrice))
	}

	return rankSuggestions(out), nil
}

func suggestion(reason string, confidence float64) Suggestion {
	return Suggestion{Reason: reason, Label: reasonLabels[reason], Confidence: confidence}
}

// rankSuggestions keeps the single highest-confidence entry per reason,
// sorts descending, and caps the list — the "never_show" prior-pattern
// entry (if present) always sorts to the top on its own merit.
func rankSuggestions(in []Suggestion) []Suggestion {
	best := map[string]Suggestion{}
	for _, s := range in {
		if cur, ok := best[s.Reason]; !ok || s.Confidence > cur.Confidence {
			best[s.Reason] = s
		}
	}
	out := make([]Suggestion, 0, len(best))
	for _, s := range best {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

// detectedAccessoryWord returns the first known accessory-signal word
// found in title, or "" if none.
func detectedAccessoryWord(title string) string {
	for _, w := range accessorySignalWords {
		if strings.Contains(title, w) {
			return w
		}
	}
	return ""
}

func modelFamilyCount(title string) int {
	_, models, _ := matcher.ExtractProductInfo(title)
	return len(models)
}

// priceRatio relates the Yahoo-side landed cost to the intended Amazon sell
// price — a low ratio means the auction lot is implausibly cheap for the
// item actually listed (usually because it's an accessory or spare part),
// a high ratio means there's barely any arbitrage margin to speak of.
func priceRatio(alert *models.DealAlert) float64 {
	if alert.SellPrice == 0 {
		return 0
	}
	return float64(alert.YahooPrice+alert.YahooShipping) / float64(alert.SellPrice)
}
