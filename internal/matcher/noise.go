package matcher

// noiseWords are excluded from the Jaccard similarity and key-token
// extraction — listing boilerplate and particles carry no product signal.
var noiseWords = map[string]bool{
	// Japanese listing noise
	"送料": true, "無料": true, "中古": true, "美品": true, "新品": true,
	"未使用": true, "未開封": true, "即決": true,
	"まとめ": true, "じゃんく": true, "動作": true, "確認": true, "済み": true, "付き": true,
	"箱": true, "あり": true, "なし": true, "のみ": true, "非売品": true, "正規品": true,
	"国内": true, "海外": true, "保証": true, "付属": true, "欠品": true,
	// Japanese particles
	"の": true, "が": true, "で": true, "に": true, "は": true, "を": true, "と": true, "も": true, "や": true,
	"から": true, "まで": true, "より": true, "など": true, "ほど": true,
	// English noise
	"a": true, "the": true, "and": true, "or": true, "for": true, "with": true,
	"in": true, "on": true, "at": true, "to": true, "of": true,
	"is": true, "it": true, "no": true, "not": true, "be": true, "an": true, "as": true, "by": true,
	"new": true, "used": true, "free": true, "shipping": true, "japan": true, "import": true,
}

const minMeaningfulTokenLen = 2

// isMeaningful reports whether a token carries product signal: long
// enough and not listing boilerplate.
func isMeaningful(token string) bool {
	return len([]rune(token)) >= minMeaningfulTokenLen && !noiseWords[token]
}
