// Package installer drives the install pipeline: verify corpus
// format, initialize the data directory, copy the corpus, build the
// inverted index, and report progress (spec §4.5), grounded on
// original_source/core/install.c.
package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/k0kubun/dingdef/internal/dingerr"
	"github.com/k0kubun/dingdef/internal/index"
	"github.com/k0kubun/dingdef/internal/index/sqlitestore"
	"github.com/k0kubun/dingdef/internal/progress"
	"github.com/k0kubun/dingdef/internal/text"
	"github.com/k0kubun/dingdef/internal/tokenizer"
)

// DataLeaf and IndexLeaf are the canonical filenames under a data
// root directory (spec §6).
const (
	DataLeaf  = "ding.txt"
	IndexLeaf = "ding.idx"
)

// checkBufferSize is how much of the candidate file is inspected
// during format verification.
const checkBufferSize = 4 * 1024

// copyBufferSize is the buffer used to copy the corpus into place.
const copyBufferSize = 4 * 1024

// State is a step of the install state machine (spec §3).
type State int

const (
	StateIdle State = iota
	StateStarting
	StateIndexing
	StateCompleted
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateIndexing:
		return "indexing"
	case StateCompleted:
		return "completed"
	case StateError:
		return "error"
	default:
		return "???"
	}
}

// ProgressFunc is invoked as the install advances; fraction is in
// [0,1]. Implementations should be cheap — it may be called once per
// distinct ref during indexing.
type ProgressFunc func(state State, fraction float64)

// CancelFunc reports whether the caller wants to abort. It is polled
// once per word during indexing (not merely per chunk).
type CancelFunc func() bool

// DataPath and IndexPath return the canonical file paths under root.
func DataPath(root string) string  { return filepath.Join(root, DataLeaf) }
func IndexPath(root string) string { return filepath.Join(root, IndexLeaf) }

// IsInstalled reports whether root already holds an installed corpus.
func IsInstalled(root string) bool {
	_, err := os.Stat(DataPath(root))
	return err == nil
}

// CheckFormat verifies that path looks like a dictionary corpus: not
// gzip-compressed (by extension), readable, and containing at least
// one non-comment, non-blank line with "::" within the first 4 KB.
// It returns nil if the format looks acceptable.
func CheckFormat(path string) error {
	if len(path) > 3 && path[len(path)-3:] == ".gz" {
		return dingerr.New(dingerr.IsCompressed, "corpus file appears to be gzip-compressed")
	}

	f, err := os.Open(path)
	if err != nil {
		return dingerr.Wrap(dingerr.IOProblem, err)
	}
	defer f.Close()

	buf := make([]byte, checkBufferSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return dingerr.New(dingerr.TooSmall, "corpus file is too small to verify")
	}
	buf = buf[:n]

	foundOK := false
	start := 0
	for start < len(buf) {
		nl := start
		for nl < len(buf) && buf[nl] != '\n' {
			nl++
		}
		line := buf[start:nl]
		if len(line) > 0 && line[0] != '#' && bytesContains(line, "::") {
			foundOK = true
			break
		}
		start = nl + 1
	}

	if !foundOK {
		return dingerr.New(dingerr.BadFormat, "no valid dictionary line found in the first 4KB")
	}
	return nil
}

func bytesContains(line []byte, sub string) bool {
	return len(sub) <= len(line) && indexOf(line, sub) >= 0
}

func indexOf(line []byte, sub string) int {
	n, m := len(line), len(sub)
	for i := 0; i+m <= n; i++ {
		if string(line[i:i+m]) == sub {
			return i
		}
	}
	return -1
}

// Installer runs the install pipeline against a single root
// directory. BufSize controls the tokenizer's file read chunk size.
type Installer struct {
	Root    string
	BufSize int
}

// InstallFromPath runs the full pipeline against corpusPath (spec
// §4.5). progressCB and cancelled may be nil.
func (in *Installer) InstallFromPath(ctx context.Context, corpusPath string, progressCB ProgressFunc, cancelled CancelFunc) error {
	if progressCB == nil {
		progressCB = func(State, float64) {}
	}
	if cancelled == nil {
		cancelled = func() bool { return false }
	}

	progressCB(StateStarting, 0)

	if err := CheckFormat(corpusPath); err != nil {
		progressCB(StateError, 0)
		return err
	}

	if err := in.initDataDir(); err != nil {
		progressCB(StateError, 0)
		return err
	}

	if cancelled() {
		return in.cancelAndCleanup(progressCB)
	}

	dataPath := DataPath(in.Root)
	if err := copyFile(corpusPath, dataPath); err != nil {
		progressCB(StateError, 0)
		in.cleanupArtifacts()
		return dingerr.Wrap(dingerr.IOProblem, err)
	}

	if cancelled() {
		return in.cancelAndCleanup(progressCB)
	}

	store, err := sqlitestore.Open(IndexPath(in.Root))
	if err != nil {
		progressCB(StateError, 0)
		in.cleanupArtifacts()
		return dingerr.Wrap(dingerr.IOProblem, err)
	}
	defer store.Close()

	if cancelled() {
		return in.cancelAndCleanup(progressCB)
	}

	if err := store.BeginTx(ctx); err != nil {
		progressCB(StateError, 0)
		in.cleanupArtifacts()
		return dingerr.Wrap(dingerr.IOProblem, err)
	}

	f, err := os.Open(dataPath)
	if err != nil {
		store.Rollback(ctx)
		progressCB(StateError, 0)
		in.cleanupArtifacts()
		return dingerr.Wrap(dingerr.IOProblem, err)
	}
	defer f.Close()

	st := &installState{
		ctx:        ctx,
		store:      store,
		progressCB: progressCB,
		currentRef: -1,
	}

	completed, err := tokenizer.TokenizeFile(f, in.BufSize, cancelled, st)
	if err == nil {
		st.flush()
	}

	if err != nil || st.err != nil {
		store.Rollback(ctx)
		progressCB(StateError, 0)
		in.cleanupArtifacts()
		if err != nil {
			return dingerr.Wrap(dingerr.IOProblem, err)
		}
		return st.err
	}

	if !completed {
		// Either the caller's handler halted (not used here) or
		// cancellation was observed mid-scan.
		store.Rollback(ctx)
		return in.cancelAndCleanup(progressCB)
	}

	if err := store.Commit(ctx); err != nil {
		progressCB(StateError, 0)
		in.cleanupArtifacts()
		return dingerr.Wrap(dingerr.IOProblem, err)
	}

	progressCB(StateCompleted, 1.0)
	return nil
}

func (in *Installer) cancelAndCleanup(progressCB ProgressFunc) error {
	in.cleanupArtifacts()
	progressCB(StateIdle, 0)
	return dingerr.New(dingerr.Cancelled, "install cancelled")
}

func (in *Installer) initDataDir() error {
	if err := os.MkdirAll(in.Root, 0o777); err != nil {
		return dingerr.Wrap(dingerr.IOProblem, err)
	}
	in.cleanupArtifacts()
	return nil
}

func (in *Installer) cleanupArtifacts() {
	os.Remove(DataPath(in.Root))
	os.Remove(IndexPath(in.Root))
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	buf := make([]byte, copyBufferSize)
	_, err = io.CopyBuffer(out, in, buf)
	return err
}

// installState tracks progress through a single install's tokenizer
// callback. One instance is reused across every word found in the
// corpus (spec §9's context-struct-with-callbacks design note).
type installState struct {
	ctx        context.Context
	store      index.Store
	progressCB ProgressFunc

	currentRef int64
	tracker    progress.Tracker
	prefixes   [][]byte
	err        error
}

func (s *installState) OnWord(word []byte, ref int64, frac float64) bool {
	if ref != s.currentRef {
		s.flush()
		s.currentRef = ref

		if s.tracker.Changed(frac) {
			s.progressCB(StateIndexing, frac)
		}
	}

	if len(word) < text.MIN {
		return true
	}

	upper := make([]byte, len(word))
	copy(upper, word)
	text.Fold(upper)

	if text.IsCommonWord(upper) {
		return true
	}

	cropped, n := text.CropToUnicodeLen(upper, text.DEPTH)
	if n < text.MIN {
		return true
	}

	s.addPrefixIfNotPresent(cropped)
	return true
}

func (s *installState) addPrefixIfNotPresent(prefix []byte) {
	lo, hi := 0, len(s.prefixes)
	for lo < hi {
		mid := (lo + hi) / 2
		if compareBytes(s.prefixes[mid], prefix) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(s.prefixes) && compareBytes(s.prefixes[lo], prefix) == 0 {
		return
	}
	cp := make([]byte, len(prefix))
	copy(cp, prefix)
	s.prefixes = append(s.prefixes, nil)
	copy(s.prefixes[lo+1:], s.prefixes[lo:])
	s.prefixes[lo] = cp
}

func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return int(a[i]) - int(b[i])
		}
	}
	return len(a) - len(b)
}

func (s *installState) flush() {
	if len(s.prefixes) == 0 || s.currentRef < 0 {
		return
	}
	for _, p := range s.prefixes {
		if err := s.store.Add(s.ctx, string(p), s.currentRef); err != nil {
			s.err = fmt.Errorf("adding prefix %q at ref %d: %w", p, s.currentRef, err)
			return
		}
	}
	s.prefixes = s.prefixes[:0]
}
