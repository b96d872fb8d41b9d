// Package jpcollate provides the Japanese/English text-normalisation
// primitives shared by the product matcher and the auction-site scraper:
// NFKC folding, katakana→hiragana transliteration, and CJK/Latin boundary
// splitting ahead of tokenization.
package jpcollate

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const kataHiraOffset = 0x60 // ord('ア') - ord('あ')

// kataToHira converts every katakana rune in s (U+30A1-U+30F6) to its
// hiragana counterpart, leaving everything else — including the
// long-vowel mark U+30FC, which falls outside this range — untouched.
func kataToHira(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 0x30A1 && r <= 0x30F6 {
			b.WriteRune(r - kataHiraOffset)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsCJK reports whether r falls in a CJK ideograph or kana block.
func IsCJK(r rune) bool {
	switch {
	case r >= 0x3040 && r <= 0x309F: // Hiragana
		return true
	case r >= 0x30A0 && r <= 0x30FF: // Katakana
		return true
	case r >= 0x4E00 && r <= 0x9FFF: // CJK Unified Ideographs
		return true
	case r >= 0x3400 && r <= 0x4DBF: // CJK Extension A
		return true
	case r >= 0xFF65 && r <= 0xFF9F: // Halfwidth katakana
		return true
	}
	return false
}

// insertBoundarySpaces inserts a space at every CJK↔Latin/digit boundary
// where neither side is already whitespace, e.g. "ニンテンドーSwitch" →
// "ニンテンドー Switch".
func insertBoundarySpaces(s string) string {
	runes := []rune(s)
	if len(runes) < 2 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	b.WriteRune(runes[0])
	for i := 1; i < len(runes); i++ {
		prev, curr := runes[i-1], runes[i]
		if prev != ' ' && curr != ' ' && IsCJK(prev) != IsCJK(curr) {
			b.WriteRune(' ')
		}
		b.WriteRune(curr)
	}
	return b.String()
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize applies NFKC folding, lowercasing, katakana→hiragana mapping
// and CJK/Latin boundary spacing, then collapses whitespace runs.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(s)
	s = kataToHira(s)
	s = insertBoundarySpaces(s)
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

var tokenDelimiter = regexp.MustCompile(`[\s/\[\]()（）【】「」『』、。,.]+`)

// Tokenize splits normalized text into tokens on whitespace and a fixed
// punctuation set, including full-width brackets and punctuation.
func Tokenize(s string) []string {
	raw := tokenDelimiter.Split(s, -1)
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
