// Package scoring turns a matched (Yahoo Auctions listing, analytics
// product) pair into a scored deal candidate. Every function here is
// pure: no network calls, no persistence, no clock reads — the scanner
// job supplies all inputs and owns everything the scorer doesn't.
package scoring

import (
	"arbitrage/pkg/utils"
)

// DefaultGoodRankThreshold is the sales-rank ceiling below which a
// product is considered to sell well, absent an explicit threshold.
const DefaultGoodRankThreshold = 100_000

// DefaultSystemFee is the system's own per-shipment handling charge
// added to total cost regardless of carrier — a flat operator overhead,
// not a marketplace fee.
const DefaultSystemFee = 100

// DefaultForwardingCost is used when no package dimensions are known —
// equivalent to a 100-size forwarding shipment.
const DefaultForwardingCost = 960

// PackageDimensions is a forwarding carrier's package measurement in
// millimeters; the three-sides-total is what determines shipment size
// category.
type PackageDimensions struct {
	LengthMM int
	WidthMM  int
	HeightMM int
}

// ThreeSidesTotalMM sums the three dimensions, the figure the forwarding
// carrier's size table is keyed on.
func (d PackageDimensions) ThreeSidesTotalMM() int {
	return d.LengthMM + d.WidthMM + d.HeightMM
}

// forwardingSizeTable maps a carrier size category (three-sides-total
// ceiling, mm) to its forwarding cost in yen. Sourced from one operator's
// carrier contract — treat as configuration data, not business logic.
var forwardingSizeTable = []struct {
	maxTotalMM int
	costYen    int
}{
	{600, 735},
	{800, 840},
	{1000, 960},
	{1200, 1150},
	{1400, 1340},
	{1600, 1810},
	{1800, 3060},
	{2000, 3810},
}

// maxForwardableTotalMM is the largest three-sides total the carrier
// contract's size table covers; anything larger cannot be forwarded.
const maxForwardableTotalMM = 2000

// ForwardingCostForDimensions looks up the forwarding cost for a
// package's size category. ok is false when the package exceeds every
// category in the table (size > 200, three-sides-total > 2000mm) and
// therefore cannot be forwarded at all.
func ForwardingCostForDimensions(dims PackageDimensions) (cost int, ok bool) {
	total := dims.ThreeSidesTotalMM()
	if total > maxForwardableTotalMM {
		return 0, false
	}
	for _, row := range forwardingSizeTable {
		if total <= row.maxTotalMM {
			return row.costYen, true
		}
	}
	return 0, false
}

// AnalyticsProduct is the subset of an analytics provider's product
// record the scorer needs: current used/new price and sales rank.
type AnalyticsProduct struct {
	ASIN      string
	Title     string
	UsedPrice *int
	NewPrice  *int
	Rank      *int
	// Avg30Rank/Avg90Rank drive the rank trend tag; nil when the
	// provider has no history for this ASIN yet.
	Avg30Rank *int
	Avg90Rank *int
	// Avg30Price/Avg90Price drive the price trend tag.
	Avg30Price *int
	Avg90Price *int
	Dimensions *PackageDimensions
}

// DealCandidate is a scored Yahoo listing / Amazon product match, ready
// to become a DealAlert once the caller attaches the two listing
// identities and applies the minimum-margin/minimum-profit filter.
type DealCandidate struct {
	AmazonASIN      string
	AmazonTitle     string
	AmazonUsedPrice *int
	AmazonNewPrice  *int
	SalesRank       *int
	SellsWell       bool
	RankTrend       string // "improving" | "declining" | "stable" | "unknown"
	PriceTrend      string // "rising" | "falling" | "stable" | "unknown"
	SellPrice       int
	ForwardingCost  int
	TotalCost       int
	AmazonFee       int
	GrossProfit     int
	GrossMarginPct  float64
}

const (
	rankTrendImproving = "improving"
	rankTrendDeclining = "declining"
	rankTrendStable    = "stable"
	rankTrendUnknown   = "unknown"

	priceTrendRising  = "rising"
	priceTrendFalling = "falling"
	priceTrendStable  = "stable"
	priceTrendUnknown = "unknown"

	rankTrendImprovingRatio = 0.85
	rankTrendDecliningRatio = 1.15
	priceTrendRisingRatio   = 1.10
	priceTrendFallingRatio  = 0.90
)

func rankTrend(avg30, avg90 *int) string {
	if avg30 == nil || avg90 == nil || *avg90 <= 0 {
		return rankTrendUnknown
	}
	ratio := float64(*avg30) / float64(*avg90)
	switch {
	case ratio < rankTrendImprovingRatio:
		return rankTrendImproving
	case ratio > rankTrendDecliningRatio:
		return rankTrendDeclining
	default:
		return rankTrendStable
	}
}

func priceTrend(avg30, avg90 *int) string {
	if avg30 == nil || avg90 == nil || *avg90 <= 0 {
		return priceTrendUnknown
	}
	ratio := float64(*avg30) / float64(*avg90)
	switch {
	case ratio > priceTrendRisingRatio:
		return priceTrendRising
	case ratio < priceTrendFallingRatio:
		return priceTrendFalling
	default:
		return priceTrendStable
	}
}

// ScoreDeal computes gross profit and margin for a Yahoo listing matched
// to an analytics product. It returns nil when there is no usable sell
// price, the combined fee percentage is >= 100%, or the package
// dimensions put the shipment outside every forwarding size category.
//
//	total_cost    = yahoo_price + yahoo_shipping + forwarding + system_fee
//	sell_price    = used_price if present else new_price
//	amazon_fee    = floor(sell_price * fee_pct / 100)
//	gross_profit  = sell_price - total_cost - amazon_fee
//	gross_margin% = round(gross_profit / sell_price * 100, 1)
func ScoreDeal(
	yahooPrice, yahooShipping int,
	product AnalyticsProduct,
	feePct float64,
	forwardingFallback int,
	systemFee int,
	goodRankThreshold int,
) *DealCandidate {
	sellPrice := 0
	switch {
	case product.UsedPrice != nil:
		sellPrice = *product.UsedPrice
	case product.NewPrice != nil:
		sellPrice = *product.NewPrice
	default:
		return nil
	}
	if sellPrice <= 0 {
		return nil
	}
	if feePct >= 100 {
		return nil
	}

	forwarding := forwardingFallback
	if product.Dimensions != nil {
		cost, ok := ForwardingCostForDimensions(*product.Dimensions)
		if !ok {
			return nil
		}
		forwarding = cost
	}

	totalCost := yahooPrice + yahooShipping + forwarding + systemFee
	amazonFee := utils.FloorPercentage(sellPrice, feePct)
	grossProfit := sellPrice - totalCost - amazonFee
	grossMarginPct := utils.RoundToOneDecimal(float64(grossProfit) / float64(sellPrice) * 100)

	sellsWell := product.Rank != nil && *product.Rank <= goodRankThreshold

	return &DealCandidate{
		AmazonASIN:      product.ASIN,
		AmazonTitle:     product.Title,
		AmazonUsedPrice: product.UsedPrice,
		AmazonNewPrice:  product.NewPrice,
		SalesRank:       product.Rank,
		SellsWell:       sellsWell,
		RankTrend:       rankTrend(product.Avg30Rank, product.Avg90Rank),
		PriceTrend:      priceTrend(product.Avg30Price, product.Avg90Price),
		SellPrice:       sellPrice,
		ForwardingCost:  forwarding,
		TotalCost:       totalCost,
		AmazonFee:       amazonFee,
		GrossProfit:     grossProfit,
		GrossMarginPct:  grossMarginPct,
	}
}
