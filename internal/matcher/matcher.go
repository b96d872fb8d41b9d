// Package matcher decides whether a Yahoo Auctions listing and an Amazon
// catalog entry describe the same physical product. Titles are noisy,
// abbreviated and mix Japanese/English/romaji, so matching is a scored
// pipeline rather than a single string comparison: normalise, tokenize,
// extract brand/model/type/quantity/submodel signals from both sides,
// combine them into an additive score, and hard-reject pairs that a
// cheap structural check already rules out regardless of score.
package matcher

import (
	"regexp"
	"strconv"
	"strings"

	"arbitrage/pkg/jpcollate"
)

// modelTrimRe strips hyphens and the Japanese long-vowel mark before a
// token is tested as a possible model number, so "wh-1000xm4" is checked
// as "wh1000xm4".
var modelTrimRe = regexp.MustCompile(`[-ー]`)

// specUnitRe excludes tokens that look like model numbers but are really
// spec units (3000mah, 64gb, 5ghz) — a shared unit is not a shared model.
var specUnitRe = regexp.MustCompile(`^\d+(mah|mhz|ghz|gb|tb|mb|hz|mm|cm|kg|mp|db|lm|ch|k|w|v)$`)

// pairedPrefixes are base tokens that commonly appear alongside a
// numbered variant in the same title (e.g. "v8 slim" one model, vs
// "v8 v10" two models) — used to tell an accessory-signaling multi-model
// title apart from a single paired series+code.
var pairedPrefixes = map[string][]string{
	"v":    {"sv"},
	"cf":   {"cfi"},
	"eh":   {"er"},
	"hero": {"chdhx"},
}

const (
	scoreModelMatch      = 0.50
	scoreBrandMatch      = 0.20
	scoreTokenOverlap    = 0.30
	scoreKeepaModel      = 0.15
	penaltyModelConflict = 0.30
	penaltyBrandConflict = 0.10
	penaltyTypeConflict  = 0.20
	penaltyAccessory     = 0.40
	penaltyAccessoryLead = 0.60
	penaltySubmodel      = 0.50
	penaltyQtyConflict   = 0.40
	defaultThreshold     = 0.40
	strictMinScore       = 0.55
	strictMinOverlap     = 0.40
)

// MatchResult carries every signal the pipeline extracted, so callers can
// explain a match/reject decision rather than trust a bare score.
type MatchResult struct {
	Score              float64
	ModelMatch         bool
	ModelConflict      bool
	BrandMatch         bool
	BrandConflict      bool
	TypeConflict       bool
	QtyConflict        bool
	AccessoryConflict  bool
	TokenOverlap       float64
	KeepaModelMatch    bool
}

// IsLikelyMatch applies the hard-reject flags first, then a model-match
// short-circuit, then falls back to the score against a threshold that
// the rejection learner may have nudged via a dynamic delta.
func (r MatchResult) IsLikelyMatch() bool {
	if r.QtyConflict || r.BrandConflict || r.ModelConflict || r.AccessoryConflict {
		return false
	}
	if r.ModelMatch || r.KeepaModelMatch {
		return true
	}
	return r.Score >= defaultThreshold+thresholdDelta()
}

// PassesStrictCheck is the tighter bar applied to deals above the
// high-margin threshold, where a false positive is costlier: it demands
// either an explicit model match or a token overlap clearly above the
// ordinary pass line. Of the hard-reject flags it checks only TypeConflict
// and ModelConflict itself; the scanner applies it only to pairs that have
// already passed IsLikelyMatch.
func (r MatchResult) PassesStrictCheck() bool {
	if r.TypeConflict || r.ModelConflict {
		return false
	}
	if r.Score < strictMinScore {
		return false
	}
	return r.ModelMatch || r.TokenOverlap >= strictMinOverlap
}

func canonicalizeTokens(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		if alias, ok := brandAliases[t]; ok {
			out[i] = alias
			continue
		}
		if syn, ok := productSynonyms[t]; ok {
			out[i] = syn
			continue
		}
		out[i] = t
	}
	return out
}

// mergeProductNumberTokens merges an adjacent product-line word and bare
// number into one model token, e.g. ["hero", "12"] -> ["hero12"], so that
// "GoPro Hero 12" and "GoPro Hero12" extract the same model.
func mergeProductNumberTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		if i+1 < len(tokens) && isProductLineWord(tokens[i]) && isBareNumber(tokens[i+1]) {
			out = append(out, tokens[i]+tokens[i+1])
			i++
			continue
		}
		out = append(out, tokens[i])
	}
	return out
}

func isProductLineWord(t string) bool {
	switch t {
	case "hero", "switch", "ps", "playstation", "iphone", "ipad", "galaxy", "pixel":
		return true
	}
	return false
}

func isBareNumber(t string) bool {
	_, err := strconv.Atoi(t)
	return err == nil
}

// extractModelNumbers picks out tokens that plausibly name a model number:
// after stripping hyphens/ー they contain both a letter and a digit and are
// at least two characters long (wh1000xm4, cfi1200a, ps5, rtx4090). The
// stripped form is what gets stored and compared, so "wh-1000xm4" and
// "wh1000xm4" are the same model.
func extractModelNumbers(tokens []string) map[string]bool {
	models := make(map[string]bool)
	for _, t := range tokens {
		stripped := modelTrimRe.ReplaceAllString(t, "")
		if len(stripped) < 2 || !hasASCIILetter(stripped) || !hasASCIIDigit(stripped) {
			continue
		}
		if specUnitRe.MatchString(stripped) {
			continue
		}
		models[stripped] = true
	}
	return models
}

func hasASCIILetter(s string) bool {
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			return true
		}
	}
	return false
}

func hasASCIIDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

// modelsColorSuffixMatch treats "ps5white" and "ps5" as the same model:
// a shared alphanumeric prefix with an alphabetic suffix of at least two
// characters is a color/edition qualifier, not a different model.
func modelsColorSuffixMatch(a, b string) bool {
	shorter, longer := a, b
	if len(a) > len(b) {
		shorter, longer = b, a
	}
	if !strings.HasPrefix(longer, shorter) {
		return false
	}
	suffix := strings.TrimPrefix(longer, shorter)
	if len(suffix) < 2 {
		return false
	}
	for _, r := range suffix {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// countModelFamilies groups model tokens by their paired-prefix family so
// that "v8 sv8" counts as one family (a single paired series+code) while
// "v8 v10" counts as two distinct families.
func countModelFamilies(models map[string]bool) int {
	families := make(map[string]bool)
	for m := range models {
		assigned := false
		for base, variants := range pairedPrefixes {
			if strings.HasPrefix(m, base) {
				families[base] = true
				assigned = true
				break
			}
			for _, v := range variants {
				if strings.HasPrefix(m, v) {
					families[base] = true
					assigned = true
					break
				}
			}
			if assigned {
				break
			}
		}
		if !assigned {
			families[m] = true
		}
	}
	return len(families)
}

func compareModels(yModels, aModels map[string]bool) (match, conflict bool) {
	if len(yModels) == 0 || len(aModels) == 0 {
		return false, false
	}
	for ym := range yModels {
		for am := range aModels {
			if ym == am || modelsColorSuffixMatch(ym, am) {
				return true, false
			}
		}
	}
	if countModelFamilies(yModels) > 1 && countModelFamilies(aModels) > 1 {
		return false, false
	}
	return false, true
}

func extractBrand(tokens []string) string {
	for _, t := range tokens {
		if brandCanonicalSet[t] {
			return t
		}
		if alias, ok := brandAliases[t]; ok {
			return alias
		}
	}
	return ""
}

func compareBrands(yBrand, aBrand string) (match, conflict bool) {
	if yBrand == "" || aBrand == "" {
		return false, false
	}
	if yBrand == aBrand {
		return true, false
	}
	return false, true
}

func jaccard(a, b []string) float64 {
	setA := make(map[string]bool, len(a))
	for _, t := range a {
		if isMeaningful(t) {
			setA[t] = true
		}
	}
	setB := make(map[string]bool, len(b))
	for _, t := range b {
		if isMeaningful(t) {
			setB[t] = true
		}
	}
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}
	intersection := 0
	for t := range setA {
		if setB[t] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// MatchProducts scores a Yahoo Auctions title against an Amazon catalog
// title. keepaModelMatch lets a caller pass along a model match already
// confirmed by the analytics provider's own catalog data, which is
// weighted like any other model signal.
func MatchProducts(yahooTitle, amazonTitle string, keepaModelMatch bool) MatchResult {
	yNorm := jpcollate.Normalize(yahooTitle)
	aNorm := jpcollate.Normalize(amazonTitle)

	yTokens := mergeProductNumberTokens(canonicalizeTokens(jpcollate.Tokenize(yNorm)))
	aTokens := mergeProductNumberTokens(canonicalizeTokens(jpcollate.Tokenize(aNorm)))

	yModels := extractModelNumbers(yTokens)
	aModels := extractModelNumbers(aTokens)
	modelMatch, modelConflict := compareModels(yModels, aModels)

	yBrand := extractBrand(yTokens)
	aBrand := extractBrand(aTokens)
	brandMatch, brandConflict := compareBrands(yBrand, aBrand)

	score := 0.0
	if modelMatch {
		score += scoreModelMatch
	} else if modelConflict {
		score -= penaltyModelConflict
	}
	if brandMatch {
		score += scoreBrandMatch
	} else if brandConflict {
		score -= penaltyBrandConflict
	}

	yTypes := extractProductTypes(yTokens)
	aTypes := extractProductTypes(aTokens)
	typeConflict := len(yTypes) > 0 && len(aTypes) > 0 && !setsEqual(yTypes, aTypes)
	if typeConflict {
		score -= penaltyTypeConflict
	}

	// A title whose model section names more than one model while also
	// carrying a "用" (for-use-with) token is signaling a multi-model
	// compatible accessory, not the product itself.
	yAccessory := (hasAccessoryWords(yTokens) || accessoryInLeadingTokens(yTokens) ||
		(countModelFamilies(yModels) > 1 && containsYou(yTokens))) && !hasMainProductWords(yTokens)
	aAccessory := (hasAccessoryWords(aTokens) || accessoryInLeadingTokens(aTokens) ||
		(countModelFamilies(aModels) > 1 && containsYou(aTokens))) && !hasMainProductWords(aTokens)
	accessoryConflict := yAccessory != aAccessory
	if accessoryConflict {
		if accessoryInLeadingTokens(yTokens) || accessoryInLeadingTokens(aTokens) {
			score -= penaltyAccessoryLead
		} else {
			score -= penaltyAccessory
		}
	}

	// Same base model but a different named variant (Slim vs Fluffy) is a
	// different product despite the shared model number — only checked
	// once a model match has already been established.
	if modelMatch && submodelConflict(yTokens, aTokens) {
		modelMatch = false
		modelConflict = true
		score -= penaltySubmodel
	}

	qtyConflict := quantityConflict(yNorm, aNorm)
	if qtyConflict {
		score -= penaltyQtyConflict
	}

	overlap := jaccard(yTokens, aTokens)
	score += overlap * scoreTokenOverlap

	if keepaModelMatch {
		score += scoreKeepaModel
	}
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}

	return MatchResult{
		Score:             score,
		ModelMatch:        modelMatch,
		ModelConflict:     modelConflict,
		BrandMatch:        brandMatch,
		BrandConflict:     brandConflict,
		TypeConflict:      typeConflict,
		QtyConflict:       qtyConflict,
		AccessoryConflict: accessoryConflict,
		TokenOverlap:      overlap,
		KeepaModelMatch:   keepaModelMatch,
	}
}

func setsEqual(a, b map[int]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

const (
	keywordJaccardThreshold = 0.60
	bigramShortKeywordLen   = 6
	bigramJaccardThreshold  = 0.70
)

// KeywordsAreSimilar decides whether two watched keywords are close
// enough to be treated as duplicates for scan scheduling purposes. A
// brand or model mismatch vetoes similarity outright; otherwise token
// Jaccard decides, falling back to character-bigram Jaccard for short
// keyword pairs where tokenization yields too few tokens to compare.
func KeywordsAreSimilar(kw1, kw2 string, threshold float64) bool {
	if threshold <= 0 {
		threshold = keywordJaccardThreshold
	}
	n1 := jpcollate.Normalize(kw1)
	n2 := jpcollate.Normalize(kw2)
	if n1 == n2 {
		return true
	}
	t1 := canonicalizeTokens(jpcollate.Tokenize(n1))
	t2 := canonicalizeTokens(jpcollate.Tokenize(n2))

	b1, b2 := extractBrand(t1), extractBrand(t2)
	if (b1 != "") != (b2 != "") {
		return false
	}
	if b1 != "" && b2 != "" && b1 != b2 {
		return false
	}
	m1, m2 := extractModelNumbers(t1), extractModelNumbers(t2)
	if len(m1) > 0 && len(m2) > 0 {
		match, _ := compareModels(m1, m2)
		if !match {
			return false
		}
	}

	if len([]rune(n1)) <= bigramShortKeywordLen || len([]rune(n2)) <= bigramShortKeywordLen {
		return bigramJaccard(n1, n2) >= bigramJaccardThreshold
	}
	return jaccard(t1, t2) >= threshold
}

func bigramJaccard(a, b string) float64 {
	bigramSet := func(s string) map[string]bool {
		runes := []rune(s)
		set := make(map[string]bool)
		for i := 0; i+1 < len(runes); i++ {
			set[string(runes[i:i+2])] = true
		}
		return set
	}
	setA, setB := bigramSet(a), bigramSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}
	intersection := 0
	for g := range setA {
		if setB[g] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// ExtractProductInfo pulls the brand, model-number set and meaningful key
// tokens out of a title, for use by the keyword discovery engine when
// seeding new candidates from a confirmed deal's title.
func ExtractProductInfo(title string) (brand string, models map[string]bool, keyTokens []string) {
	norm := jpcollate.Normalize(title)
	tokens := mergeProductNumberTokens(canonicalizeTokens(jpcollate.Tokenize(norm)))
	brand = extractBrand(tokens)
	models = extractModelNumbers(tokens)
	for _, t := range tokens {
		if isMeaningful(t) {
			keyTokens = append(keyTokens, t)
		}
	}
	return brand, models, keyTokens
}
