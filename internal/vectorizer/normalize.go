// Package vectorizer converts raw Arabic text into sparse TF-IDF vectors
// over a fixed vocabulary frozen at training time.
package vectorizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const tatweel = 'ـ'

// foldRune maps Arabic letter variants to the canonical forms the training
// pipeline used. These rules are part of the frozen artifact contract and
// must not drift from the training-time normalizer.
func foldRune(r rune) rune {
	switch r {
	case 'آ', 'أ', 'إ', 'ٱ': // آ أ إ ٱ
		return 'ا' // ا
	case 'ى': // ى
		return 'ي' // ي
	case 'ة': // ة
		return 'ه' // ه
	default:
		return unicode.ToLower(r)
	}
}

// normalizer strips combining marks (Arabic harakat included), drops the
// tatweel stretching character, folds letter variants, and recomposes.
var normalizer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	runes.Remove(runes.Predicate(func(r rune) bool { return r == tatweel })),
	runes.Map(foldRune),
	norm.NFC,
)

// Normalize applies the training-time normalization rules to raw text.
func Normalize(text string) string {
	out, _, err := transform.String(normalizer, text)
	if err != nil {
		// The chain cannot fail on valid UTF-8; invalid bytes fall back to
		// the raw input so tokenization still sees something deterministic.
		return text
	}
	return out
}

// Tokenize splits normalized text into terms: maximal runs of letters or
// digits, keeping only terms of two or more runes. Single-rune terms carry
// no signal and were excluded at training time.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	terms := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= 2 {
			terms = append(terms, f)
		}
	}
	return terms
}
