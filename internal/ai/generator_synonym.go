package ai

import (
	"strings"

	"arbitrage/internal/models"
	"arbitrage/pkg/jpcollate"
)

const synonymStrategyConfidence = 0.50
const topPerformersForSynonyms = 10

// synonymMap is a small English↔katakana equivalence table for common
// product vocabulary — substituting one side for the other on a
// top-performing keyword often surfaces the same demand phrased in the
// other script.
var synonymMap = map[string]string{
	"nintendo":  "任天堂",
	"任天堂":     "nintendo",
	"playstation": "プレイステーション",
	"プレイステーション": "playstation",
	"camera":    "カメラ",
	"カメラ":      "camera",
	"headphone": "ヘッドホン",
	"ヘッドホン":   "headphone",
	"watch":     "ウォッチ",
	"ウォッチ":    "watch",
	"speaker":   "スピーカー",
	"スピーカー":   "speaker",
	"controller": "コントローラー",
	"コントローラー": "controller",
	"console":   "本体",
	"本体":       "console",
	"case":      "ケース",
	"ケース":      "case",
}

// abbreviationMap expands well-known product abbreviations to their
// full, more search-friendly form.
var abbreviationMap = map[string]string{
	"ps5":  "PlayStation 5",
	"ps4":  "PlayStation 4",
	"gba":  "ゲームボーイアドバンス",
	"gbc":  "ゲームボーイカラー",
	"ns":   "Nintendo Switch",
}

// GenerateSynonymCandidates substitutes one token of each
// top-performing keyword through synonymMap or abbreviationMap,
// producing an alternate phrasing of an already-proven search.
func GenerateSynonymCandidates(insights *KeywordInsights) []CandidateProposal {
	var out []CandidateProposal
	count := 0
	for _, kw := range insights.TopPerformers {
		if count >= topPerformersForSynonyms {
			break
		}
		count++

		norm := jpcollate.Normalize(kw.Keyword)
		tokens := jpcollate.Tokenize(norm)
		for i, tok := range tokens {
			replacement, ok := abbreviationMap[tok]
			if !ok {
				replacement, ok = synonymMap[tok]
			}
			if !ok {
				continue
			}
			swapped := append([]string(nil), tokens...)
			swapped[i] = replacement
			candidate := strings.Join(swapped, " ")
			if candidate == kw.Keyword {
				continue
			}
			parentID := kw.ID
			out = append(out, CandidateProposal{
				Keyword:         candidate,
				Strategy:        models.StrategySynonym,
				Confidence:      synonymStrategyConfidence,
				ParentKeywordID: &parentID,
				Reasoning:       "synonym/abbreviation substitution of " + kw.Keyword,
			})
		}
	}
	return out
}
