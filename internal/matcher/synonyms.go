package matcher

// productSynonyms maps a normalised Japanese token to a canonical English
// product-category word, so that "ヘッドホン" and "headphone" compare equal
// after canonicalization.
var productSynonyms = map[string]string{
	// Game consoles
	"すいっち": "switch", "switch": "switch",
	"ふぁみこん": "famicom", "famicom": "famicom",
	"すーふぁみ": "super famicom",
	"げーむぼーい": "gameboy", "gameboy": "gameboy",
	// Audio
	"へっどほん": "headphone", "headphone": "headphone", "headphones": "headphone",
	"いやほん": "earphone", "earphone": "earphone", "earphones": "earphone",
	"いやーぴーす": "earpiece",
	"すぴーかー": "speaker", "speaker": "speaker", "speakers": "speaker",
	// Accessories
	"こんとろーらー": "controller", "controller": "controller",
	"りもこん": "remote",
	"けーす": "case", "case": "case",
	"かばー": "cover", "cover": "cover",
	"ちゃーじゃー": "charger", "charger": "charger",
	"あだぷたー": "adapter", "adapter": "adapter",
	"けーぶる": "cable", "cable": "cable",
	// Devices
	"すまほ": "smartphone", "すまーとふぉん": "smartphone", "smartphone": "smartphone",
	"たぶれっと": "tablet", "tablet": "tablet",
	"のーとぱそこん": "laptop", "laptop": "laptop",
	"でぃすぷれい": "display", "display": "display",
	"もにたー": "monitor", "monitor": "monitor",
	"きーぼーど": "keyboard", "keyboard": "keyboard",
	"まうす": "mouse", "mouse": "mouse",
	"ぷりんたー": "printer", "printer": "printer",
	"かめら": "camera", "camera": "camera",
	"れんず": "lens", "lens": "lens",
	// GoPro series name
	"ひーろー": "hero", "hero": "hero",
	// Condition / edition
	"でじたる": "digital", "digital": "digital",
	"わいやれす": "wireless", "wireless": "wireless",
	"ぶるーとぅーす": "bluetooth", "bluetooth": "bluetooth",
}
