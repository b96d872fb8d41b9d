// Package rejection implements the rejection-learning pass (§4.I): turning
// an operator's "no" on a deal alert into a ranked explanation, a persisted
// RejectionPattern the matcher can reuse, and — in aggregate — a nudge to
// the matcher's global threshold when the false-positive rate climbs.
package rejection

import "arbitrage/internal/models"

// Suggestion is one candidate explanation for why an alert was rejected,
// ranked by confidence before being shown to the operator.
type Suggestion struct {
	Reason     string
	Label      string
	Confidence float64
}

// maxSuggestions caps the ranked list shown to the operator.
const maxSuggestions = 5

var reasonLabels = map[string]string{
	models.RejectionReasonWrongProduct: "разные товары",
	models.RejectionReasonAccessory:    "аксессуар/комплект, а не сам товар",
	models.RejectionReasonModelVariant: "другая модель в той же линейке",
	models.RejectionReasonBadPrice:     "цена не похожа на реальный арбитраж",
	models.RejectionReasonNeverShow:    "больше не показывать эту пару",
	models.RejectionReasonOther:        "другое",
}

// accessorySignalWords mirrors scanner's description-level accessory check
// but adds "only", which the title-level signal also needs to catch.
var accessorySignalWords = []string{"単体", "のみ", "only", "単品", "ジャンク"}
