// Package entry parses a single corpus line into its German/English
// halves and senses, and scores an entry against a keyword set (spec
// §4.4), grounded on original_source/core/entry.h.
package entry

import (
	"bytes"
	"math"
	"strings"

	"github.com/k0kubun/dingdef/internal/text"
	"github.com/k0kubun/dingdef/util"
)

// BaseEnglish is the per-sense-index penalty added for matches found
// on the English side, so a hit on the German side always ranks no
// worse than the same-depth hit on the English side.
const BaseEnglish = 1

// Sentinel is returned by Distance when at least one keyword is
// unmatched; the query engine rejects any entry scoring Sentinel
// before ranking (spec §4.4 invariant, relied on by §4.6).
const Sentinel = math.MaxInt

// Entry is a single dictionary line. Entries are ephemeral: they are
// materialized per query and discarded after ranking (spec §3).
type Entry struct {
	GermanText    string
	EnglishText   string
	GermanSenses  []string
	EnglishSenses []string
	Ref           int64
}

// Parse splits line at the first "::" into German/English text, and
// each side at every "|" into trimmed senses; no escape sequence for
// "|" is recognised. It returns false if line contains no "::".
func Parse(line []byte, ref int64) (*Entry, bool) {
	idx := bytes.Index(line, []byte("::"))
	if idx < 0 {
		return nil, false
	}
	german := strings.TrimSpace(string(line[:idx]))
	english := strings.TrimSpace(string(line[idx+2:]))
	return &Entry{
		GermanText:    german,
		EnglishText:   english,
		GermanSenses:  splitSenses(german),
		EnglishSenses: splitSenses(english),
		Ref:           ref,
	}, true
}

func splitSenses(s string) []string {
	return util.TransformSlice(strings.Split(s, "|"), strings.TrimSpace)
}

// Distance scores e against keywords (already normalized/folded,
// length-sorted). matched is scratch space of len(keywords) bools,
// reused by the caller across entries to avoid reallocating per
// candidate. Lower is better; Sentinel means some keyword never
// matched and the entry must be rejected before ranking.
func Distance(e *Entry, keywords [][]byte, matched []bool) int {
	for i := range matched {
		matched[i] = false
	}

	score := 0
	for s, sense := range e.GermanSenses {
		folded := foldCopy(sense)
		for ki, kw := range keywords {
			if matched[ki] {
				continue
			}
			if bytes.Contains(folded, kw) {
				matched[ki] = true
				score += s
			}
		}
	}
	for s, sense := range e.EnglishSenses {
		folded := foldCopy(sense)
		for ki, kw := range keywords {
			if matched[ki] {
				continue
			}
			if bytes.Contains(folded, kw) {
				matched[ki] = true
				score += s + BaseEnglish
			}
		}
	}

	for _, m := range matched {
		if !m {
			return Sentinel
		}
	}
	return score
}

func foldCopy(s string) []byte {
	buf := []byte(s)
	text.Fold(buf)
	return buf
}
