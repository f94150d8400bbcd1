package text

import "github.com/k0kubun/dingdef/util"

// commonWords is the fixed, case-folded set of short high-frequency
// German and English words excluded from indexing and from keyword
// lists (spec §3). The set must stay identical between install and
// query or recall suffers — it is defined exactly once here and
// imported by both the tokenizer/indexer and the keyword parser.
var commonWords = buildCommonWords()

func buildCommonWords() map[string]struct{} {
	words := []string{
		// German articles, pronouns, prepositions, auxiliaries.
		"DER", "DIE", "DAS", "DEM", "DEN", "DES",
		"EIN", "EINE", "EINEN", "EINEM", "EINER", "EINES",
		"ICH", "DU", "ER", "SIE", "ES", "WIR", "IHR",
		"MIR", "MICH", "DICH", "IHM", "IHN", "IHNEN", "UNS", "EUCH",
		"MEIN", "DEIN", "SEIN", "IHRE", "UNSER", "EUER",
		"UND", "ODER", "ABER", "DOCH", "DENN", "ALS", "WIE",
		"AUF", "AUS", "BEI", "BIS", "FÜR", "MIT", "NACH",
		"VON", "VOR", "ZU", "ZUM", "ZUR", "UM", "AN", "IN", "IM",
		"IST", "SIND", "WAR", "WAREN", "HAT", "HABEN", "HATTE",
		"WIRD", "WERDEN", "WURDE", "KANN", "SOLL", "NICHT", "AUCH",
		"NUR", "SO", "SEHR", "NOCH", "SCHON",
		// English articles, pronouns, prepositions, auxiliaries.
		"THE", "AND", "OR", "BUT", "IF", "OF", "TO", "IN", "ON",
		"AT", "BY", "FOR", "WITH", "FROM", "INTO", "ONTO", "OVER",
		"I", "YOU", "HE", "SHE", "IT", "WE", "THEY",
		"ME", "HIM", "HER", "US", "THEM",
		"MY", "YOUR", "HIS", "ITS", "OUR", "THEIR",
		"AM", "IS", "ARE", "WAS", "WERE", "BE", "BEEN", "BEING",
		"HAS", "HAVE", "HAD", "DO", "DOES", "DID",
		"WILL", "WOULD", "CAN", "COULD", "SHALL", "SHOULD", "MAY", "MIGHT",
		"NOT", "NO", "SO", "AS", "THAN", "THEN",
		"A", "AN", "THIS", "THAT", "THESE", "THOSE",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// IsCommonWord reports whether upperWord (already folded) is a common
// word. The comparison is case-sensitive byte comparison against the
// fixed table, since inputs are always already folded (spec §4.1).
func IsCommonWord(upperWord []byte) bool {
	_, ok := commonWords[string(upperWord)]
	return ok
}

// CommonWordsSorted returns the common-word table in deterministic
// (sorted) order, for trace dumps where map iteration order would
// otherwise make output noisy to diff across runs.
func CommonWordsSorted() []string {
	out := make([]string, 0, len(commonWords))
	util.CanonicalMapIter(commonWords)(func(w string, _ struct{}) bool {
		out = append(out, w)
		return true
	})
	return out
}
