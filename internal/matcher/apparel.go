package matcher

import "arbitrage/pkg/jpcollate"

// apparelBrands are clothing/footwear labels that occasionally turn up in
// collectible-adjacent searches (fan merchandise, cosplay goods) but are
// never the electronics/collectible domain this system arbitrages.
var apparelBrands = set(
	"supreme", "nike", "adidas", "uniqlo", "zara", "gap",
	"しゅぷりーむ", "ないき", "あでぃだす",
)

// apparelWords are product-type tokens specific to clothing, distinct
// from productTypeGroups since they should reject the listing entirely
// rather than merely flag a type conflict.
var apparelWords = set(
	"tシャツ", "パーカー", "ぱーかー", "スウェット", "すうぇっと",
	"ジャケット", "じゃけっと", "シャツ", "しゃつ", "ズボン",
	"スニーカー", "すにーかー", "靴", "くつ", "帽子", "ぼうし",
)

// IsApparel reports whether a title reads as a clothing/footwear listing —
// an apparel brand or apparel-specific product word anywhere in its
// normalized tokens.
func IsApparel(title string) bool {
	tokens := jpcollate.Tokenize(jpcollate.Normalize(title))
	for _, t := range tokens {
		if apparelBrands[t] || apparelWords[t] {
			return true
		}
	}
	return false
}
