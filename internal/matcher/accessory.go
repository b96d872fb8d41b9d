package matcher

import "strings"

// accessoryWords signal that a listing is a part, consumable or
// replacement rather than the main product.
var accessoryWords = map[string]bool{
	// Pads / cushions
	"ぱっど": true, "pad": true, "いやーぱっど": true, "くっしょん": true, "cushion": true,
	// Adapters / mounts
	"あだぷたー": true, "adapter": true, "まうんと": true, "mount": true, "こんばーたー": true, "converter": true,
	// Cables / connectors
	"けーぶる": true, "cable": true, "cord": true, "こーど": true, "こねくたー": true, "connector": true,
	// Covers / protectors
	"ふぃるむ": true, "film": true, "ぷろてくたー": true, "protector": true, "がーど": true, "guard": true,
	// Batteries / power / chargers
	"ばってりー": true, "battery": true, "でんち": true, "電池": true,
	"充電器": true, "じゅうでんき": true, "充電": true, "じゅうでん": true,
	"acあだぷたー": true, "電源": true, "でんげん": true,
	// Replacement / spare
	"交換": true, "こうかん": true, "替え": true, "かえ": true, "すぺあ": true, "spare": true,
	"部品": true, "ぶひん": true, "ぱーつ": true, "parts": true, "part": true,
	// Straps / holders
	"すとらっぷ": true, "strap": true, "ほるだー": true, "holder": true, "くりっぷ": true, "clip": true,
	// Caps / tips
	"きゃっぷ": true, "cap": true, "ちっぷ": true, "tip": true, "のずる": true, "nozzle": true,
	// Filters
	"ふぃるたー": true, "filter": true,
	// Stands / docks
	"すたんど": true, "stand": true, "どっく": true, "dock": true, "くれーどる": true, "cradle": true,
	// Bags / pouches
	"ぽーち": true, "pouch": true,
	// Ink / toner
	"いんく": true, "ink": true, "となー": true, "toner": true, "りぼん": true, "ribbon": true,
	// Brush / roller
	"ぶらし": true, "brush": true, "ろーらー": true, "roller": true, "へっど": true, "head": true,
	// Remote
	"りもこん": true, "remote": true,
	// Housing / case (action cameras)
	"はうじんぐ": true, "housing": true, "防水ケース": true, "ぼうすいけーす": true,
	// Mods / modules
	"mod": true, "もっど": true, "もじゅーる": true, "module": true,
	// Selfie stick / tripod
	"自撮り棒": true, "じどりぼう": true, "せるふぃーすてぃっく": true,
	"三脚": true, "さんきゃく": true, "tripod": true,
	// Only / sole
	"のみ": true, "only": true, "単品": true, "たんぴん": true, "単体": true, "たんたい": true,
}

// accessoryPrefixSuffixes confirm that a prefix match (e.g. "へっど軽量版")
// is genuinely an accessory compound rather than a coincidental substring.
var accessoryPrefixSuffixes = map[string]bool{
	"版": true, "用": true, "部": true, "型": true, "式": true, "台": true, "器": true,
	"のみ": true, "単体": true, "単品": true, "交換": true, "替え": true,
	"ぱーつ": true, "きっと": true, "kit": true,
}

const minAccessoryCompoundLen = 4
const minAccessoryWordLen = 3
const maxGuardedRemainderLen = 2

// overrideSnapshot, when non-nil, supplies learned accessory words on top
// of the static set. Set via SetOverrides.
func hasAccessoryWords(tokens []string) bool {
	tokenSet := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		tokenSet[t] = true
		if accessoryWords[t] {
			return true
		}
	}
	if snap := currentOverrides(); snap != nil {
		for t := range tokenSet {
			if snap.extraAccessoryWords[t] {
				return true
			}
		}
	}
	for _, t := range tokens {
		if len([]rune(t)) < minAccessoryCompoundLen {
			continue
		}
		for aw := range accessoryWords {
			if len([]rune(aw)) < minAccessoryWordLen || t == aw {
				continue
			}
			if strings.HasSuffix(t, aw) {
				return true
			}
			if strings.HasPrefix(t, aw) {
				remainder := strings.TrimPrefix(t, aw)
				if len([]rune(remainder)) <= maxGuardedRemainderLen {
					return true
				}
				for sfx := range accessoryPrefixSuffixes {
					if strings.HasSuffix(remainder, sfx) {
						return true
					}
				}
			}
		}
	}
	return false
}

const maxLeadingAccessoryPos = 5

// accessoryInLeadingTokens checks for accessory language among the first
// few meaningful tokens — sellers append filler keywords at the tail of a
// title, so leading tokens are the strongest signal of the real product type.
func accessoryInLeadingTokens(tokens []string) bool {
	limit := maxLeadingAccessoryPos * 2
	if limit > len(tokens) {
		limit = len(tokens)
	}
	meaningful := make([]string, 0, maxLeadingAccessoryPos)
	for _, t := range tokens[:limit] {
		if isMeaningful(t) {
			meaningful = append(meaningful, t)
			if len(meaningful) == maxLeadingAccessoryPos {
				break
			}
		}
	}
	return hasAccessoryWords(meaningful)
}

// mainProductWords are strong signals that a listing is the primary unit
// even when it also carries words that would otherwise look accessory-ish
// (e.g. a vacuum's "本体" next to a coincidentally matched accessory word).
var mainProductWords = map[string]bool{
	"本体": true, "ほんたい": true, "一式": true, "いっしき": true,
	"フルセット": true, "ふるせっと": true, "コンプリート": true,
}

func hasMainProductWords(tokens []string) bool {
	for _, t := range tokens {
		if mainProductWords[t] {
			return true
		}
	}
	return false
}

func containsYou(tokens []string) bool {
	for _, t := range tokens {
		if strings.HasPrefix(t, "用") || strings.HasSuffix(t, "用") {
			return true
		}
	}
	return false
}
