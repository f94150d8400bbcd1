// Package render decides whether the terminal can display UTF-8 text
// and falls back to an ASCII transliteration when it can't, grounded
// on original_source/cli/rendercommon.c.
package render

import (
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/k0kubun/dingdef/internal/text"
)

// TermIsUTF8 reports whether LANG names a UTF-8 locale, following the
// original's exact suffix check.
func TermIsUTF8() bool {
	return langIsUTF8(os.Getenv("LANG"))
}

func langIsUTF8(lang string) bool {
	return len(lang) > 6 && strings.HasSuffix(lang, ".UTF-8")
}

// IsTerminal reports whether f is an interactive terminal, used to
// decide whether progress output should redraw in place.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// WriteStr writes buf to w, transliterating to US-ASCII when utf8Capable
// is false: known German-letter sequences use their two-letter
// equivalent (e.g. ö -> oe), and any other multi-byte sequence becomes
// '?'. When utf8Capable is true, buf is written through unchanged.
func WriteStr(w io.Writer, buf []byte, utf8Capable bool) error {
	if utf8Capable {
		_, err := w.Write(buf)
		return err
	}

	if text.IsUSASCIIClean(buf) {
		_, err := w.Write(buf)
		return err
	}

	for i := 0; i < len(buf); {
		n, res := text.SequenceLen(buf[i:])
		switch res {
		case text.SequenceOK:
			if n == 1 {
				if _, err := w.Write(buf[i : i+1]); err != nil {
					return err
				}
			} else if eq, ok := text.USASCIIEquivalent(buf[i:]); ok {
				if _, err := io.WriteString(w, eq); err != nil {
					return err
				}
			} else {
				if _, err := io.WriteString(w, "?"); err != nil {
					return err
				}
			}
			i += n
		default:
			// Bad or incomplete trailing sequence: stop rather than
			// emit garbage, matching the original's early return.
			return nil
		}
	}
	return nil
}
