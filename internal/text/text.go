// Package text implements UTF-8 sequence scanning and classification,
// in-place case folding with German-accent awareness, crop-to-N-characters,
// and the common-word filter shared by the tokenizer, indexer and
// keyword parser (spec §4.1).
package text

// SequenceResult classifies a single UTF-8 byte sequence.
type SequenceResult int

const (
	SequenceOK SequenceResult = iota
	SequenceBad
	SequenceIncomplete
)

// DEPTH is the max unicode character length of a prefix.
const DEPTH = 5

// MIN is the min unicode character length of an indexable word or
// queryable keyword.
const MIN = 3

// SequenceLen returns the byte length of the UTF-8 sequence starting
// at c[0], given that len(c) bytes are available to inspect.
func SequenceLen(c []byte) (int, SequenceResult) {
	if len(c) == 0 {
		return 0, SequenceIncomplete
	}

	b0 := c[0]
	var want int
	switch {
	case b0&0x80 == 0x00:
		want = 1
	case b0&0xE0 == 0xC0:
		want = 2
	case b0&0xF0 == 0xE0:
		want = 3
	case b0&0xF8 == 0xF0:
		want = 4
	default:
		return 0, SequenceBad
	}

	if len(c) < want {
		return 0, SequenceIncomplete
	}
	for i := 1; i < want; i++ {
		if c[i]&0xC0 != 0x80 {
			return 0, SequenceBad
		}
	}
	return want, SequenceOK
}

// SequencesCount counts the number of complete UTF-8 sequences in c.
func SequencesCount(c []byte) (int, SequenceResult) {
	count := 0
	i := 0
	for i < len(c) {
		n, res := SequenceLen(c[i:])
		if res != SequenceOK {
			return 0, res
		}
		i += n
		count++
	}
	return count, SequenceOK
}

// CropToUnicodeLen truncates buf in place to the first n complete
// UTF-8 sequences (or fewer, if buf ends early) and returns the slice
// retained and the actual character count.
func CropToUnicodeLen(buf []byte, n int) ([]byte, int) {
	i := 0
	chars := 0
	for chars < n && i < len(buf) {
		seqLen, res := SequenceLen(buf[i:])
		if res != SequenceOK {
			break
		}
		i += seqLen
		chars++
	}
	return buf[:i], chars
}

type germanPair struct {
	lower [2]byte
	upper [2]byte
}

// germanAccents is the fold table for the six German accented
// lowercase letters. ß folds to itself, never to SS (spec §4.1, §9).
var germanAccents = []germanPair{
	{[2]byte{0xC3, 0xA4}, [2]byte{0xC3, 0x84}}, // ä -> Ä
	{[2]byte{0xC3, 0xB6}, [2]byte{0xC3, 0x96}}, // ö -> Ö
	{[2]byte{0xC3, 0xBC}, [2]byte{0xC3, 0x9C}}, // ü -> Ü
	{[2]byte{0xC3, 0xAB}, [2]byte{0xC3, 0x8B}}, // ë -> Ë
	{[2]byte{0xC3, 0xAF}, [2]byte{0xC3, 0x8F}}, // ï -> Ï
	{[2]byte{0xC3, 0x9F}, [2]byte{0xC3, 0x9F}}, // ß -> ß
}

// Fold upper-cases buf in place: US-ASCII lowercase letters get their
// upper-case byte, and the six German accented lowercase letters get
// their two-byte upper-case sequence substituted in place. All other
// bytes are unchanged. Fold never changes the byte length of buf.
func Fold(buf []byte) {
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		if b >= 'a' && b <= 'z' {
			buf[i] = b - ('a' - 'A')
			continue
		}
		if b == 0xC3 && i+1 < len(buf) {
			for _, pair := range germanAccents {
				if buf[i] == pair.lower[0] && buf[i+1] == pair.lower[1] {
					buf[i] = pair.upper[0]
					buf[i+1] = pair.upper[1]
					break
				}
			}
			i++
		}
	}
}

// IsUSASCIIClean reports whether every byte in buf has its high bit clear.
func IsUSASCIIClean(buf []byte) bool {
	for _, b := range buf {
		if b&0x80 != 0 {
			return false
		}
	}
	return true
}

var usASCIIEquivalents = map[[2]byte]string{
	{0xC3, 0x84}: "Ae",
	{0xC3, 0x96}: "Oe",
	{0xC3, 0x9C}: "Ue",
	{0xC3, 0xA4}: "ae",
	{0xC3, 0xB6}: "oe",
	{0xC3, 0xBC}: "ue",
	{0xC3, 0x8B}: "Ee",
	{0xC3, 0xAB}: "ee",
	{0xC3, 0x8F}: "Ie",
	{0xC3, 0xAF}: "ie",
	{0xC3, 0x9F}: "ss",
}

// USASCIIEquivalent returns a short ASCII transliteration for the
// UTF-8 sequence at the start of c, if one is known. Used by the
// terminal rendering fallback (spec §4.1, §6).
func USASCIIEquivalent(c []byte) (string, bool) {
	if len(c) < 2 {
		return "", false
	}
	v, ok := usASCIIEquivalents[[2]byte{c[0], c[1]}]
	return v, ok
}
