package matcher

import (
	"regexp"
	"strconv"
)

// quantityCounter matches Japanese counter words attached to a number,
// optionally followed by a set/pack qualifier (2個セット, 3本入り).
var quantityCounter = regexp.MustCompile(`(\d+)(?:個|本|枚|箱|袋|缶|足|台|丁|組|点|巻)(?:せっと|set|いり|入り|入|ぱっく|pack)?`)

// quantityEnglish matches "3 pack" / "2-set" style English quantities.
var quantityEnglish = regexp.MustCompile(`(\d+)[\s-]?(?:pack|set|pcs|pieces)`)

// quantityKoSet matches the common "Nこせっと" listing phrasing directly
// (個 already folded to こ by katakana→hiragana normalisation never
// applies to kanji, so this covers the hiragana-written variant sellers
// also use).
var quantityKoSet = regexp.MustCompile(`(\d+)こせっと`)

const minQuantity = 2
const maxQuantity = 100
const defaultQuantity = 1

// extractQuantity returns the item count implied by normalized listing
// text, or defaultQuantity when no countable quantity phrase is found or
// the parsed count falls outside the plausible [minQuantity, maxQuantity]
// range for a single listing.
func extractQuantity(normalized string) int {
	for _, re := range []*regexp.Regexp{quantityCounter, quantityEnglish, quantityKoSet} {
		if m := re.FindStringSubmatch(normalized); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			if n >= minQuantity && n <= maxQuantity {
				return n
			}
		}
	}
	return defaultQuantity
}

// quantityConflict reports whether the two sides imply different item
// counts. A side with no detected count is taken as defaultQuantity (a
// single unit), so "3個セット" against a title with no count is a conflict.
func quantityConflict(yahooNormalized, amazonNormalized string) bool {
	yq := extractQuantity(yahooNormalized)
	aq := extractQuantity(amazonNormalized)
	return yq != aq
}
