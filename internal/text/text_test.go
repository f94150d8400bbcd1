package text

import (
	"bytes"
	"testing"
)

func TestSequenceLen(t *testing.T) {
	cases := []struct {
		name    string
		in      []byte
		wantLen int
		wantRes SequenceResult
	}{
		{"ascii", []byte("A"), 1, SequenceOK},
		{"two-byte", []byte{0xC3, 0x84}, 2, SequenceOK},
		{"three-byte", []byte{0xE2, 0x82, 0xAC}, 3, SequenceOK},
		{"four-byte", []byte{0xF0, 0x9F, 0x98, 0x80}, 4, SequenceOK},
		{"incomplete", []byte{0xC3}, 0, SequenceIncomplete},
		{"bad-continuation", []byte{0xC3, 0x20}, 0, SequenceBad},
		{"bad-leading", []byte{0xFF}, 0, SequenceBad},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			n, res := SequenceLen(c.in)
			if n != c.wantLen || res != c.wantRes {
				t.Fatalf("SequenceLen(%v) = (%d, %v), want (%d, %v)", c.in, n, res, c.wantLen, c.wantRes)
			}
		})
	}
}

func TestSequencesCount(t *testing.T) {
	n, res := SequencesCount([]byte("Haus"))
	if res != SequenceOK || n != 4 {
		t.Fatalf("got (%d, %v)", n, res)
	}

	n, res = SequencesCount([]byte{'H', 0xC3, 0x84, 's'})
	if res != SequenceOK || n != 3 {
		t.Fatalf("got (%d, %v)", n, res)
	}
}

func TestFoldASCII(t *testing.T) {
	buf := []byte("Hausaufgabe")
	Fold(buf)
	if string(buf) != "HAUSAUFGABE" {
		t.Fatalf("got %q", buf)
	}
}

func TestFoldGermanAccents(t *testing.T) {
	// öl -> ÖL
	buf := []byte{0xC3, 0xB6, 'l'}
	Fold(buf)
	want := []byte{0xC3, 0x96, 'L'}
	if !bytes.Equal(buf, want) {
		t.Fatalf("got %v, want %v", buf, want)
	}
}

func TestFoldEszettFoldsToItself(t *testing.T) {
	buf := []byte{0xC3, 0x9F} // ß
	Fold(buf)
	want := []byte{0xC3, 0x9F}
	if !bytes.Equal(buf, want) {
		t.Fatalf("eszett must fold to itself, got %v", buf)
	}
}

func TestCropToUnicodeLenExact(t *testing.T) {
	buf := []byte("HAUSE")
	cropped, n := CropToUnicodeLen(buf, DEPTH)
	if n != 5 || string(cropped) != "HAUSE" {
		t.Fatalf("got (%q, %d)", cropped, n)
	}
}

func TestCropToUnicodeLenTruncates(t *testing.T) {
	buf := []byte("HAUPTBAHNHOF")
	cropped, n := CropToUnicodeLen(buf, DEPTH)
	if n != 5 || string(cropped) != "HAUPT" {
		t.Fatalf("got (%q, %d)", cropped, n)
	}
}

func TestCropToUnicodeLenShorterThanN(t *testing.T) {
	buf := []byte("HI")
	cropped, n := CropToUnicodeLen(buf, DEPTH)
	if n != 2 || string(cropped) != "HI" {
		t.Fatalf("got (%q, %d)", cropped, n)
	}
}

// Property: crop(fold(s), DEPTH) == fold(s) for any s of length <= DEPTH.
func TestCropIdempotentOnShortInputs(t *testing.T) {
	inputs := []string{"HI", "HAUS", "ÖL", "AB"}
	for _, s := range inputs {
		buf := []byte(s)
		Fold(buf)
		folded := append([]byte(nil), buf...)
		cropped, _ := CropToUnicodeLen(buf, DEPTH)
		if !bytes.Equal(cropped, folded) {
			t.Fatalf("crop not idempotent for %q: got %v, want %v", s, cropped, folded)
		}
	}
}

func TestIsCommonWord(t *testing.T) {
	if !IsCommonWord([]byte("THE")) {
		t.Fatal("THE should be common")
	}
	if !IsCommonWord([]byte("DER")) {
		t.Fatal("DER should be common")
	}
	if IsCommonWord([]byte("HAUS")) {
		t.Fatal("HAUS should not be common")
	}
}

func TestIsUSASCIIClean(t *testing.T) {
	if !IsUSASCIIClean([]byte("Haus")) {
		t.Fatal("expected clean")
	}
	if IsUSASCIIClean([]byte{0xC3, 0x84}) {
		t.Fatal("expected not clean")
	}
}

func TestUSASCIIEquivalent(t *testing.T) {
	v, ok := USASCIIEquivalent([]byte{0xC3, 0x84})
	if !ok || v != "Ae" {
		t.Fatalf("got (%q, %v)", v, ok)
	}
	v, ok = USASCIIEquivalent([]byte{0xC3, 0x9F})
	if !ok || v != "ss" {
		t.Fatalf("got (%q, %v)", v, ok)
	}
	_, ok = USASCIIEquivalent([]byte("a"))
	if ok {
		t.Fatal("single ascii byte should have no equivalent entry")
	}
}
