// Package query implements the search pipeline: prefix lookup against
// the index, candidate intersection, corpus reads, full-keyword
// filtering and bounded-heap ranking (spec §4.6).
package query

import (
	"container/heap"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/k0kubun/dingdef/internal/entry"
	"github.com/k0kubun/dingdef/internal/index"
	"github.com/k0kubun/dingdef/internal/index/sqlitestore"
	"github.com/k0kubun/dingdef/internal/installer"
	"github.com/k0kubun/dingdef/internal/keyword"
	"github.com/k0kubun/dingdef/internal/progress"
	"github.com/k0kubun/dingdef/internal/text"
)

// maxLineLength bounds a single corpus line read; a line longer than
// this is truncated rather than risking an unbounded allocation on a
// malformed or adversarial corpus file.
const maxLineLength = 64 * 1024

// ProgressFunc reports scan progress during the filter/rank phase
// (entries scanned / candidate count), invoked only on percentage change.
type ProgressFunc func(fraction float64)

// CancelFunc reports whether the caller wants to abort, polled once
// per candidate entry.
type CancelFunc func() bool

// Match is one ranked search result.
type Match struct {
	Entry *entry.Entry
	Score int
}

// Result is the outcome of a Search call.
type Result struct {
	Matches   []Match
	Truncated bool
}

// Engine runs searches against a single installed root directory.
type Engine struct {
	Root  string
	Limit int
}

// Search runs the full query pipeline for keywords (already
// normalized and length-sorted by internal/keyword.Parse).
func (e *Engine) Search(ctx context.Context, keywords [][]byte, progressCB ProgressFunc, cancelled CancelFunc) (*Result, error) {
	if len(keywords) == 0 {
		return &Result{}, nil
	}
	if progressCB == nil {
		progressCB = func(float64) {}
	}
	if cancelled == nil {
		cancelled = func() bool { return false }
	}

	store, err := sqlitestore.Open(installer.IndexPath(e.Root))
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}
	defer store.Close()

	corpus, err := os.Open(installer.DataPath(e.Root))
	if err != nil {
		return nil, fmt.Errorf("opening corpus: %w", err)
	}
	defer corpus.Close()

	return e.search(ctx, store, corpus, keywords, progressCB, cancelled, true)
}

func (e *Engine) search(
	ctx context.Context,
	store index.Store,
	corpus *os.File,
	keywords [][]byte,
	progressCB ProgressFunc,
	cancelled CancelFunc,
	allowFallback bool,
) (*Result, error) {
	candidates, err := candidateRefs(ctx, store, corpus, keywords)
	if err != nil {
		return nil, err
	}

	matches, truncated := e.rankCandidates(corpus, candidates, keywords, progressCB, cancelled)

	if len(matches) == 0 && allowFallback {
		adjusted := make([][]byte, len(keywords))
		for i, kw := range keywords {
			cp := make([]byte, len(kw))
			copy(cp, kw)
			adjusted[i] = cp
		}
		if keyword.Adjust(adjusted) {
			return e.search(ctx, store, corpus, adjusted, progressCB, cancelled, false)
		}
	}

	return &Result{Matches: matches, Truncated: truncated}, nil
}

func (e *Engine) rankCandidates(
	corpus *os.File,
	candidates []int64,
	keywords [][]byte,
	progressCB ProgressFunc,
	cancelled CancelFunc,
) ([]Match, bool) {
	limit := e.Limit
	if limit <= 0 {
		limit = 1
	}

	h := &matchHeap{}
	heap.Init(h)

	matched := make([]bool, len(keywords))
	var tracker progress.Tracker
	truncated := false

	for i, ref := range candidates {
		if cancelled() {
			truncated = true
			break
		}

		if tracker.Changed(float64(i) / float64(len(candidates))) {
			progressCB(float64(i) / float64(len(candidates)))
		}

		line, err := readLineAt(corpus, ref)
		if err != nil {
			continue
		}
		ent, ok := entry.Parse(line, ref)
		if !ok {
			continue
		}

		folded := append([]byte(nil), line...)
		text.Fold(folded)
		if !keyword.AllPresent(keywords, folded) {
			continue
		}

		score := entry.Distance(ent, keywords, matched)
		if score == entry.Sentinel {
			continue
		}

		if h.Len() < limit {
			heap.Push(h, Match{Entry: ent, Score: score})
		} else if h.Len() > 0 && score < (*h)[0].Score {
			heap.Pop(h)
			heap.Push(h, Match{Entry: ent, Score: score})
		}
	}

	results := make([]Match, h.Len())
	for i := len(results) - 1; i >= 0; i-- {
		results[i] = heap.Pop(h).(Match)
	}
	return results, truncated
}

// candidateRefs intersects the sorted ref lists for every keyword long
// enough to be indexable; keywords shorter than text.MIN are skipped,
// and when no keyword is long enough every corpus line becomes a
// candidate (spec §4.6 step 2).
func candidateRefs(ctx context.Context, store index.Store, corpus *os.File, keywords [][]byte) ([]int64, error) {
	var lists [][]int64

	for _, kw := range keywords {
		n, res := text.SequencesCount(kw)
		if res != text.SequenceOK || n < text.MIN {
			continue
		}
		cropped, _ := text.CropToUnicodeLen(append([]byte(nil), kw...), text.DEPTH)
		// Lookup matches any stored key that cropped is a prefix of, not
		// just an exact key, so a keyword shorter than an indexed word
		// still finds it (e.g. "haus" finds both "Haus" and "Hausaufgabe").
		refs, err := store.Lookup(ctx, string(cropped))
		if err != nil {
			return nil, err
		}
		lists = append(lists, refs)
	}

	if len(lists) == 0 {
		// No keyword was long enough to consult the index at all: the
		// only way to honor a sub-MIN keyword is a full corpus scan,
		// relying entirely on the full-keyword filter below.
		return scanAllRefs(corpus)
	}

	result := lists[0]
	for _, l := range lists[1:] {
		result = intersectSorted(result, l)
		if len(result) == 0 {
			break
		}
	}
	return result, nil
}

func intersectSorted(a, b []int64) []int64 {
	var out []int64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

// scanAllRefs enumerates the byte offset of every line in the corpus
// (the convention is the same as the tokenizer's ref: the offset
// immediately after the previous newline, 0 for the first line).
func scanAllRefs(corpus *os.File) ([]int64, error) {
	if _, err := corpus.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	var refs []int64
	buf := make([]byte, 64*1024)
	var pos int64
	atLineStart := true

	for {
		n, err := corpus.Read(buf)
		for i := 0; i < n; i++ {
			if atLineStart {
				refs = append(refs, pos+int64(i))
				atLineStart = false
			}
			if buf[i] == '\n' {
				atLineStart = true
			}
		}
		pos += int64(n)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
	}
	return refs, nil
}

func readLineAt(f *os.File, ref int64) ([]byte, error) {
	if _, err := f.Seek(ref, io.SeekStart); err != nil {
		return nil, err
	}

	buf := make([]byte, maxLineLength)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return nil, err
	}
	buf = buf[:n]

	if nl := indexByte(buf, '\n'); nl >= 0 {
		return buf[:nl], nil
	}
	return buf, nil
}

func indexByte(buf []byte, b byte) int {
	for i, c := range buf {
		if c == b {
			return i
		}
	}
	return -1
}

// matchHeap is a max-heap on Score: its root is always the current
// worst surviving match, so a bounded top-N ranking can evict it in
// O(log N) when a better candidate arrives (spec §4.6 step 6).
type matchHeap []Match

func (h matchHeap) Len() int            { return len(h) }
func (h matchHeap) Less(i, j int) bool  { return h[i].Score > h[j].Score }
func (h matchHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *matchHeap) Push(x interface{}) { *h = append(*h, x.(Match)) }
func (h *matchHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
