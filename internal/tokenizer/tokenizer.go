// Package tokenizer extracts words from a corpus file or an in-memory
// buffer, following the dictionary corpus's word-boundary rule (spec
// §4.2): a word is a maximal run of bytes none of which is whitespace,
// punctuation, a structural delimiter, a digit or a control byte;
// multi-byte UTF-8 bytes (high bit set) are always word-constituent.
package tokenizer

import (
	"io"
	"os"

	"github.com/k0kubun/dingdef/internal/progress"
)

// FileWordHandler receives each word found during file iteration. It
// returns false to halt iteration early. The word slice is only valid
// for the duration of the call — the tokenizer reuses its backing
// array for the next word.
type FileWordHandler interface {
	OnWord(word []byte, ref int64, frac float64) bool
}

// StringWordHandler receives the (offset, length) of each word found
// during in-memory iteration. It returns false to halt iteration early.
type StringWordHandler interface {
	OnWord(offset, length int) bool
}

// DefaultBufSize is used by TokenizeFile when bufSize <= 0.
const DefaultBufSize = 64 * 1024

func isDelimiter(b byte) bool {
	if b&0x80 != 0 {
		// Multi-byte UTF-8 lead/continuation byte: word-constituent.
		return false
	}
	if b <= 0x20 || b == 0x7F {
		// Whitespace and control bytes (0x00-0x20 inclusive covers
		// space, tab, newline, CR and all C0 controls; 0x7F is DEL).
		return true
	}
	if b >= '0' && b <= '9' {
		return true
	}
	switch b {
	case '|', ':', ';', '{', '}', '(', ')', '[', ']', '/', '\\', '"', '\'', '<', '>':
		return true
	case '.', ',', '!', '?', '-', '#', '$', '%', '&', '*', '+', '=', '@', '^', '_', '`', '~':
		// Remaining ASCII punctuation.
		return true
	}
	return false
}

// TokenizeFile reads f (positioned at the start) in bufSize chunks
// and invokes handler for every word found. ref is the byte offset of
// the start of the line containing the word, i.e. the position just
// after the most recent newline (0 for words on the first line). frac is bytes consumed / file size, clamped to
// [0,1]. Cancellation (via cancelled, which may be nil) is polled
// before every word, not just at chunk boundaries. completed is false
// if the handler returned false or cancellation was observed.
func TokenizeFile(f *os.File, bufSize int, cancelled func() bool, handler FileWordHandler) (completed bool, err error) {
	if bufSize <= 0 {
		bufSize = DefaultBufSize
	}

	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	fileSize := info.Size()
	if fileSize == 0 {
		return true, nil
	}

	chunk := make([]byte, bufSize)
	var wordBuf []byte
	wordStart := int64(-1)
	lastNewline := int64(0)
	absPos := int64(0)

	flush := func(endPos int64) (cont bool, halted bool) {
		if wordStart < 0 {
			return true, false
		}
		wordStart = -1
		if cancelled != nil && cancelled() {
			return false, true
		}
		frac := progress.Clamp01(float64(endPos) / float64(fileSize))
		cont = handler.OnWord(wordBuf, lastNewline, frac)
		wordBuf = wordBuf[:0]
		return cont, false
	}

	for {
		n, readErr := f.Read(chunk)
		if n > 0 {
			for i := 0; i < n; i++ {
				b := chunk[i]
				pos := absPos + int64(i)
				if isDelimiter(b) {
					cont, halted := flush(pos)
					if halted || !cont {
						return false, nil
					}
					if b == '\n' {
						lastNewline = pos + 1
					}
				} else {
					if wordStart < 0 {
						wordStart = pos
					}
					wordBuf = append(wordBuf, b)
				}
			}
			absPos += int64(n)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return false, readErr
		}
		if n == 0 {
			break
		}
	}

	cont, halted := flush(absPos)
	if halted || !cont {
		return false, nil
	}
	return true, nil
}

// TokenizeString applies the same word-boundary rule to an in-memory
// buffer, reporting only (offset, length) pairs. Used for query
// parsing and ad-hoc scanning (spec §4.2).
func TokenizeString(buf []byte, handler StringWordHandler) {
	n := len(buf)
	wordStart := -1
	for i := 0; i < n; i++ {
		if isDelimiter(buf[i]) {
			if wordStart >= 0 {
				if !handler.OnWord(wordStart, i-wordStart) {
					return
				}
				wordStart = -1
			}
		} else if wordStart < 0 {
			wordStart = i
		}
	}
	if wordStart >= 0 {
		handler.OnWord(wordStart, n-wordStart)
	}
}
