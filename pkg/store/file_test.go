package store

import (
	"context"
	"testing"
	"time"
)

func TestFileStorePutGet(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer s.Close(context.Background())

	run := &Run{ID: "run-1", NetworkHash: "abc", Status: StatusSucceeded, CreatedAt: time.Now()}
	if err := s.Put(context.Background(), run); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.NetworkHash != "abc" || got.Status != StatusSucceeded {
		t.Errorf("Get returned %+v, want matching run-1", got)
	}
}

func TestFileStoreGetMissingReturnsErrNotFound(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer s.Close(context.Background())

	if _, err := s.Get(context.Background(), "missing"); err != ErrNotFound {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestFileStoreListOrdersNewestFirst(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer s.Close(context.Background())

	base := time.Now()
	runs := []*Run{
		{ID: "run-a", CreatedAt: base},
		{ID: "run-b", CreatedAt: base.Add(time.Minute)},
		{ID: "run-c", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, r := range runs {
		if err := s.Put(context.Background(), r); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	got, err := s.List(context.Background(), 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List returned %d runs, want 2", len(got))
	}
	if got[0].ID != "run-c" || got[1].ID != "run-b" {
		t.Errorf("List order = [%s %s], want [run-c run-b]", got[0].ID, got[1].ID)
	}
}

func TestNewIDIsUnique(t *testing.T) {
	a, err := NewID()
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	b, err := NewID()
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	if a == b {
		t.Error("NewID returned the same value twice")
	}
}
