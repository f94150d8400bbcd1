package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.sqlite")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddAndLookup(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	if err := s.BeginTx(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(ctx, "HAUS", 0); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(ctx, "HAUS", 42); err != nil {
		t.Fatal(err)
	}
	if err := s.Commit(ctx); err != nil {
		t.Fatal(err)
	}

	refs, err := s.Lookup(ctx, "HAUS")
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 2 || refs[0] != 0 || refs[1] != 42 {
		t.Fatalf("got %v", refs)
	}
}

func TestAddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	for i := 0; i < 2; i++ {
		if err := s.BeginTx(ctx); err != nil {
			t.Fatal(err)
		}
		if err := s.Add(ctx, "BOOT", 7); err != nil {
			t.Fatal(err)
		}
		if err := s.Commit(ctx); err != nil {
			t.Fatal(err)
		}
	}

	refs, err := s.Lookup(ctx, "BOOT")
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 1 || refs[0] != 7 {
		t.Fatalf("got %v, want single ref 7", refs)
	}
}

func TestLookupMatchesLongerStoredKeys(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	if err := s.BeginTx(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(ctx, "HAUS", 0); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(ctx, "HAUSA", 1); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(ctx, "HOMEW", 2); err != nil {
		t.Fatal(err)
	}
	if err := s.Commit(ctx); err != nil {
		t.Fatal(err)
	}

	refs, err := s.Lookup(ctx, "HAUS")
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 2 || refs[0] != 0 || refs[1] != 1 {
		t.Fatalf("Lookup(HAUS) = %v, want [0 1] (both HAUS and HAUSA)", refs)
	}

	refs, err = s.Lookup(ctx, "HOM")
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 1 || refs[0] != 2 {
		t.Fatalf("Lookup(HOM) = %v, want [2] (prefix of stored HOMEW)", refs)
	}
}

func TestLookupDoesNotMatchUnrelatedNeighbor(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	if err := s.BeginTx(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(ctx, "HAUS", 0); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(ctx, "HAUT", 1); err != nil {
		t.Fatal(err)
	}
	if err := s.Commit(ctx); err != nil {
		t.Fatal(err)
	}

	refs, err := s.Lookup(ctx, "HAUS")
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 1 || refs[0] != 0 {
		t.Fatalf("Lookup(HAUS) = %v, want [0] only, not the unrelated HAUT key", refs)
	}
}

func TestLookupMissingPrefixReturnsEmpty(t *testing.T) {
	s := openTemp(t)
	refs, err := s.Lookup(context.Background(), "NOPE")
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 0 {
		t.Fatalf("got %v", refs)
	}
}

func TestRollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	if err := s.BeginTx(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(ctx, "KELLER", 1); err != nil {
		t.Fatal(err)
	}
	if err := s.Rollback(ctx); err != nil {
		t.Fatal(err)
	}

	refs, err := s.Lookup(ctx, "KELLER")
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 0 {
		t.Fatalf("got %v, want empty after rollback", refs)
	}
}

func TestBeginTxTwiceFails(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	if err := s.BeginTx(ctx); err != nil {
		t.Fatal(err)
	}
	defer s.Rollback(ctx)
	if err := s.BeginTx(ctx); err == nil {
		t.Fatal("expected error on nested BeginTx")
	}
}
