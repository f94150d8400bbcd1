// Package keyword parses a user query string into an ordered,
// deduplicated set of normalized keywords and applies the German
// abbreviation substitution pass (spec §4.3), grounded directly on
// original_source/core/keyword.c.
package keyword

import (
	"bytes"
	"sort"

	"github.com/k0kubun/dingdef/internal/text"
	"github.com/k0kubun/dingdef/internal/tokenizer"
)

func isQuerySpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n'
}

// Parse case-folds query, splits it on whitespace, and returns the
// ordered, deduplicated keyword set: non-empty, >= text.MIN unicode
// characters, not a common word, and not a byte-prefix of a keyword
// already accepted. Final ordering is descending unicode-character
// length, ties broken by ascending lexicographic byte order.
func Parse(query string) [][]byte {
	buf := []byte(query)
	text.Fold(buf)

	var keywords [][]byte
	n := len(buf)
	i := 0
	for i < n {
		for i < n && isQuerySpace(buf[i]) {
			i++
		}
		start := i
		for i < n && !isQuerySpace(buf[i]) {
			i++
		}
		if i == start {
			continue
		}
		word := buf[start:i]

		if text.IsCommonWord(word) {
			continue
		}
		charCount, res := text.SequencesCount(word)
		if res != text.SequenceOK || charCount < text.MIN {
			continue
		}
		if isPrefixOfAny(keywords, word) {
			continue
		}
		keywords = append(keywords, word)
	}

	sortKeywords(keywords)
	return keywords
}

// ParseText builds a keyword set the same way Parse does (common-word
// filtering, length filtering, prefix dedup, descending-length sort),
// but splits text using the corpus tokenizer's full delimiter rule
// (§4.2's "ad-hoc scanning" mode) instead of whitespace-only splitting.
// This lets free-form prose — punctuation, quotes, parentheses and
// all — be scanned for lookupable words, unlike Parse which expects a
// user-typed query.
func ParseText(input []byte) [][]byte {
	buf := append([]byte(nil), input...)
	text.Fold(buf)

	var keywords [][]byte
	collector := textWordCollector{buf: buf, keywords: &keywords}
	tokenizer.TokenizeString(buf, collector)

	sortKeywords(keywords)
	return keywords
}

type textWordCollector struct {
	buf      []byte
	keywords *[][]byte
}

func (c textWordCollector) OnWord(offset, length int) bool {
	word := c.buf[offset : offset+length]
	if text.IsCommonWord(word) {
		return true
	}
	charCount, res := text.SequencesCount(word)
	if res != text.SequenceOK || charCount < text.MIN {
		return true
	}
	if isPrefixOfAny(*c.keywords, word) {
		return true
	}
	*c.keywords = append(*c.keywords, word)
	return true
}

// isPrefixOfAny reports whether word is a byte-prefix of any keyword
// already in the set (deen_keywords_has_prefix: the check runs in
// this direction only — a longer keyword sharing a prefix with an
// already-accepted shorter one is still accepted).
func isPrefixOfAny(keywords [][]byte, word []byte) bool {
	for _, kw := range keywords {
		if bytes.HasPrefix(kw, word) {
			return true
		}
	}
	return false
}

func sortKeywords(keywords [][]byte) {
	charLen := func(kw []byte) int {
		n, res := text.SequencesCount(kw)
		if res != text.SequenceOK {
			n = len(kw)
		}
		return n
	}
	sort.SliceStable(keywords, func(i, j int) bool {
		li, lj := charLen(keywords[i]), charLen(keywords[j])
		if li != lj {
			return li > lj
		}
		return bytes.Compare(keywords[i], keywords[j]) < 0
	})
}

// abbreviation substitution table: two ASCII letters -> the UTF-8
// bytes of the corresponding upper-case German accented letter. This
// is a one-way substitution: Fold itself never produces these two-byte
// ASCII sequences from an accented letter, only Adjust consumes them
// (spec §4.3, §9).
var abbrevSubs = [][2][2]byte{
	{{'E', 'E'}, {0xC3, 0x8B}}, // EE -> Ë
	{{'U', 'E'}, {0xC3, 0x9C}}, // UE -> Ü
	{{'O', 'E'}, {0xC3, 0x96}}, // OE -> Ö
	{{'A', 'E'}, {0xC3, 0x84}}, // AE -> Ä
	{{'I', 'E'}, {0xC3, 0x8F}}, // IE -> Ï
	{{'S', 'S'}, {0xC3, 0x9F}}, // SS -> ß
}

// Adjust applies the German-abbreviation substitution pass in place
// to every keyword in the set and returns whether any substitution
// occurred. Adjust is a partial fixed point: applying it twice gives
// the same result as applying it once, since the two-byte ASCII
// patterns it searches for never reappear after substitution.
func Adjust(keywords [][]byte) bool {
	any := false
	for _, kw := range keywords {
		if adjustWord(kw) {
			any = true
		}
	}
	return any
}

func adjustWord(word []byte) bool {
	changed := false
	for _, sub := range abbrevSubs {
		if substituteInPlace(word, sub[0], sub[1]) {
			changed = true
		}
	}
	return changed
}

func substituteInPlace(word []byte, from, to [2]byte) bool {
	changed := false
	for i := 0; i+1 < len(word); i++ {
		if word[i] == from[0] && word[i+1] == from[1] {
			word[i] = to[0]
			word[i+1] = to[1]
			changed = true
		}
	}
	return changed
}

// AllPresent reports whether every keyword occurs, case-sensitively
// over already-folded bytes, somewhere in haystack (spec §4.6
// keywords_all_present; both sides must already be folded upper-case
// since the comparison is bytewise, not rune-aware).
func AllPresent(keywords [][]byte, haystack []byte) bool {
	for _, kw := range keywords {
		if !bytes.Contains(haystack, kw) {
			return false
		}
	}
	return true
}
