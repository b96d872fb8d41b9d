package matcher

// productTypeGroups partitions type tokens into interchangeable sets;
// tokens present in both titles but from different groups signal a
// product-type conflict (パック ≠ BOX ≠ 本体 ≠ ケース).
var productTypeGroups = []map[string]bool{
	set("本体", "ほんたい"),
	set("けーす", "case", "かばー", "cover"),
	set("ぱっく", "pack"),
	set("box", "ぼっくす"),
	set("せっと", "set"),
	set("ばんどる", "bundle"),
	set("りふぃる", "refill", "かえ", "替え"),
	set("こんとろーらー", "controller"),
	set("充電", "じゅうでん", "charger"),
	set("拡張", "かくちょう", "expansion"),
	set("ぷろも", "promo", "promotional"),
	set("すたーたー", "starter"),
	set("ぶーすたー", "booster"),
}

// typeTokenToGroup maps a type token to its group index in productTypeGroups.
var typeTokenToGroup = func() map[string]int {
	out := make(map[string]int)
	for gi, group := range productTypeGroups {
		for tok := range group {
			out[tok] = gi
		}
	}
	return out
}()

func set(items ...string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, it := range items {
		out[it] = true
	}
	return out
}

// extractProductTypes returns the set of product-type group indices found
// among tokens.
func extractProductTypes(tokens []string) map[int]bool {
	groups := make(map[int]bool)
	for _, t := range tokens {
		if gi, ok := typeTokenToGroup[t]; ok {
			groups[gi] = true
		}
	}
	return groups
}

func intSetsDisjoint(a, b map[int]bool) bool {
	for k := range a {
		if b[k] {
			return false
		}
	}
	return true
}
