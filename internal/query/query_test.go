package query

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/k0kubun/dingdef/internal/installer"
	"github.com/k0kubun/dingdef/internal/keyword"
)

const sampleCorpus = `Haus n | Gebaeude :: house | building
Hausaufgabe n :: homework
Boot n :: boat
Kartoffelsalat n :: potato salad
Öltank n :: oil tank
`

func installSample(t *testing.T, corpus string) string {
	t.Helper()
	src := writeTempCorpus(t, corpus)
	root := t.TempDir()
	in := &installer.Installer{Root: root, BufSize: 64}
	if err := in.InstallFromPath(context.Background(), src, nil, nil); err != nil {
		t.Fatal(err)
	}
	return root
}

func writeTempCorpus(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSearchFindsExactWord(t *testing.T) {
	root := installSample(t, sampleCorpus)
	e := &Engine{Root: root, Limit: 10}
	kws := keyword.Parse("haus")
	res, err := e.Search(context.Background(), kws, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	// §8 scenario 2: "haus" is a prefix of both the indexed "HAUS" key
	// (Haus) and the indexed "HAUSA" key (Hausaufgabe), so both entries
	// must come back, not just the exact-word match.
	if len(res.Matches) != 2 {
		t.Fatalf("got %d matches, want 2 (Haus and Hausaufgabe): %+v", len(res.Matches), res.Matches)
	}
	foundHaus, foundHausaufgabe := false, false
	for _, m := range res.Matches {
		switch m.Entry.GermanText {
		case "Haus n | Gebaeude":
			foundHaus = true
		case "Hausaufgabe n":
			foundHausaufgabe = true
		}
	}
	if !foundHaus {
		t.Errorf("expected to find the Haus entry, got %+v", res.Matches)
	}
	if !foundHausaufgabe {
		t.Errorf("expected to find the Hausaufgabe entry, got %+v", res.Matches)
	}
}

func TestSearchResultsInAscendingScoreOrder(t *testing.T) {
	root := installSample(t, sampleCorpus)
	e := &Engine{Root: root, Limit: 10}
	kws := keyword.Parse("haus")
	res, err := e.Search(context.Background(), kws, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Matches) == 0 {
		t.Fatal("expected matches")
	}
	for i := 1; i < len(res.Matches); i++ {
		if res.Matches[i].Score < res.Matches[i-1].Score {
			t.Fatalf("results not in ascending score order: %+v", res.Matches)
		}
	}
}

func TestSearchNoResultsForAbsentWord(t *testing.T) {
	root := installSample(t, sampleCorpus)
	e := &Engine{Root: root, Limit: 10}
	kws := keyword.Parse("zzznonexistent")
	res, err := e.Search(context.Background(), kws, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Matches) != 0 {
		t.Fatalf("got %+v", res.Matches)
	}
}

func TestSearchAbbreviationFallback(t *testing.T) {
	root := installSample(t, sampleCorpus)
	e := &Engine{Root: root, Limit: 10}
	// The corpus spells the word with the accented letter (Öltank),
	// so a plain ASCII query finds nothing on the first pass and the
	// engine must retry once with the keyword-adjustment pass applied
	// (AE/OE/UE/... -> accented) to find it.
	kws := keyword.Parse("oeltank")
	res, err := e.Search(context.Background(), kws, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Matches) == 0 {
		t.Fatal("expected the abbreviation fallback to find the accented entry")
	}
	if res.Matches[0].Entry.EnglishText != "oil tank" {
		t.Fatalf("got %+v", res.Matches[0].Entry)
	}
}

func TestSearchEmptyKeywordsReturnsEmpty(t *testing.T) {
	root := installSample(t, sampleCorpus)
	e := &Engine{Root: root, Limit: 10}
	res, err := e.Search(context.Background(), nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Matches) != 0 {
		t.Fatal("expected no matches for an empty keyword set")
	}
}

// subMinKeywords builds a keyword set directly, bypassing
// keyword.Parse's length filter, to exercise the engine's
// full-corpus-scan fallback for keywords shorter than text.MIN
// (spec §4.6 step 2) — every sample-corpus line contains "N"
// somewhere, so this matches every entry via the full-text filter.
func subMinKeywords() [][]byte {
	return [][]byte{[]byte("N")}
}

func TestSearchRespectsLimit(t *testing.T) {
	root := installSample(t, sampleCorpus)
	e := &Engine{Root: root, Limit: 1}
	res, err := e.Search(context.Background(), subMinKeywords(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Matches) > 1 {
		t.Fatalf("got %d matches, want at most 1", len(res.Matches))
	}
}

func TestSearchCancellationTruncates(t *testing.T) {
	root := installSample(t, sampleCorpus)
	e := &Engine{Root: root, Limit: 10}
	calls := 0
	cancelled := func() bool {
		calls++
		return calls > 1
	}
	res, err := e.Search(context.Background(), subMinKeywords(), nil, cancelled)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Truncated {
		t.Fatal("expected a truncated result")
	}
}
