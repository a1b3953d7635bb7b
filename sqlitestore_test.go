package titanium

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "records.db")

	s, err := NewSQLiteStore(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Close()

	rec := Record{Signature: 9, TaskName: "t", Version: 3, Payload: "hello"}
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok, err := s.Load(ctx, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected entry to be found")
	}
	if got.TaskName != "t" || got.Version != 3 || got.Payload != "hello" {
		t.Errorf("got %+v, want TaskName=t Version=3 Payload=hello", got)
	}
}

func TestSQLiteStoreUpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "records.db")

	s, err := NewSQLiteStore(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Close()

	if err := s.Save(ctx, Record{Signature: 1, TaskName: "first", Payload: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Save(ctx, Record{Signature: 1, TaskName: "second", Payload: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _, err := s.Load(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TaskName != "second" {
		t.Errorf("got TaskName=%v, want second after overwrite", got.TaskName)
	}
}

func TestSQLiteStoreInvalidate(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "records.db")

	s, err := NewSQLiteStore(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Close()

	if err := s.Save(ctx, Record{Signature: 2, Payload: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Invalidate(ctx, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	exists, err := s.Exists(ctx, 2)
	if err != nil || exists {
		t.Fatalf("got (exists=%v, err=%v), want (false, nil)", exists, err)
	}
}
