package matcher

import "strings"

// submodelWords are variant qualifiers that, attached to a matched base
// model, identify a distinct sub-model product (e.g. "V8 Fluffy" vs
// "V8 Slim Fluffy Extra" are not the same listing despite sharing "v8").
var submodelWords = map[string]bool{
	"slim": true, "すりむ": true,
	"extra": true, "えくすとら": true,
	"plus": true, "ぷらす": true,
	"pro": true, "ぷろ": true,
	"lite": true, "らいと": true,
	"mini": true, "みに": true,
	"max": true, "まっくす": true,
	"ultra": true, "うるとら": true,
	"neo": true, "ねお": true,
	"advance": true, "あどばんす": true,
	"premium": true, "ぷれみあむ": true,
	"deluxe": true, "でらっくす": true,
	"compact": true, "こんぱくと": true,
	"standard": true, "すたんだーど": true,
	"fluffy": true, "ふらっふぃ": true,
	"absolute": true, "あぶそりゅーと": true,
	"animal": true, "あにまる": true,
	"motorhead": true, "もーたーへっど": true,
	"origin": true, "おりじん": true,
	"complete": true, "こんぷりーと": true,
	"totalclean": true,
	"supersonic": true, "すーぱーそにっく": true,
	"airwrap": true, "えあらっぷ": true,
	"corrale": true, "こらーる": true,
	"creator": true, "くりえいたー": true,
	"session": true, "せっしょん": true,
}

var submodelCanonical = map[string]string{
	"すりむ": "slim", "えくすとら": "extra", "ぷらす": "plus",
	"ぷろ": "pro", "らいと": "lite", "みに": "mini",
	"まっくす": "max", "うるとら": "ultra", "ねお": "neo",
	"あどばんす": "advance", "ぷれみあむ": "premium",
	"でらっくす": "deluxe", "こんぱくと": "compact",
	"すたんだーど": "standard",
	"ふらっふぃ": "fluffy", "あぶそりゅーと": "absolute",
	"あにまる": "animal", "もーたーへっど": "motorhead",
	"おりじん": "origin", "こんぷりーと": "complete",
	"すーぱーそにっく": "supersonic", "えあらっぷ": "airwrap",
	"こらーる": "corrale",
	"くりえいたー": "creator", "せっしょん": "session",
}

const minSubstringSubmodelLen = 6
const minSubmodelWordMatchLen = 4

func submodelCanon(word string) string {
	if c, ok := submodelCanonical[word]; ok {
		return c
	}
	return word
}

// extractSubmodelHits collects submodel words present in tokens, including
// substring matches inside long concatenated katakana tokens and adjacent
// compound pairs (e.g. "total"+"clean" → "totalclean").
func extractSubmodelHits(tokens []string) map[string]bool {
	found := make(map[string]bool)
	for _, t := range tokens {
		if submodelWords[t] {
			found[submodelCanon(t)] = true
			continue
		}
		if len([]rune(t)) >= minSubstringSubmodelLen {
			for sw := range submodelWords {
				if len([]rune(sw)) >= minSubmodelWordMatchLen && strings.Contains(t, sw) {
					found[submodelCanon(sw)] = true
				}
			}
		}
	}
	for i := 0; i+1 < len(tokens); i++ {
		combined := tokens[i] + tokens[i+1]
		if submodelWords[combined] {
			found[submodelCanon(combined)] = true
		}
	}
	return found
}

// submodelConflict reports whether both sides carry submodel words and
// they differ. One side omitting the variant name entirely is not a
// conflict — the listing simply doesn't mention it.
func submodelConflict(yTokens, aTokens []string) bool {
	ySub := extractSubmodelHits(yTokens)
	aSub := extractSubmodelHits(aTokens)
	if len(ySub) == 0 || len(aSub) == 0 {
		return false
	}
	if len(ySub) != len(aSub) {
		return true
	}
	for k := range ySub {
		if !aSub[k] {
			return true
		}
	}
	return false
}
