package history

import (
	"fmt"
	"sync"
	"testing"
)

func baseSnapshot() Snapshot {
	return Snapshot{
		ProjectTitle:    "Landing Page",
		FreelancerEmail: "dev@example.com",
		State:           "PENDING",
		ProjectStatus:   "Pending",
		Version:         1,
	}
}

func TestJournalLifecycle(t *testing.T) {
	svc := New(t.TempDir())

	snap := baseSnapshot()
	first, err := svc.RecordTransition(snap.ProjectTitle, snap.FreelancerEmail, snap, "dev@example.com", "submit application")
	if err != nil {
		t.Fatalf("RecordTransition() error = %v", err)
	}
	if first.Hash == "" {
		t.Fatal("expected commit hash")
	}

	snap.State = "ACCEPTED"
	snap.ProjectStatus = "Active"
	snap.Version = 2
	second, err := svc.RecordTransition(snap.ProjectTitle, snap.FreelancerEmail, snap, "client@example.com", "accept application")
	if err != nil {
		t.Fatalf("RecordTransition() error = %v", err)
	}

	entries, err := svc.History(snap.ProjectTitle, snap.FreelancerEmail, 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Hash != second.Hash {
		t.Errorf("expected newest-first ordering, head = %+v", entries[0])
	}
	if entries[0].Actor != "client@example.com" {
		t.Errorf("unexpected actor: %q", entries[0].Actor)
	}

	recorded, err := svc.SnapshotAt(snap.ProjectTitle, snap.FreelancerEmail, first.Hash)
	if err != nil {
		t.Fatalf("SnapshotAt() error = %v", err)
	}
	if recorded.State != "PENDING" || recorded.Version != 1 {
		t.Errorf("unexpected snapshot at first commit: %+v", recorded)
	}
}

func TestHistoryForUnknownApplication(t *testing.T) {
	svc := New(t.TempDir())

	entries, err := svc.History("No Such Project", "nobody@example.com", 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty history, got %d entries", len(entries))
	}
}

func TestJournalsAreIsolatedPerApplication(t *testing.T) {
	svc := New(t.TempDir())

	a := baseSnapshot()
	b := baseSnapshot()
	b.FreelancerEmail = "other@example.com"

	if _, err := svc.RecordTransition(a.ProjectTitle, a.FreelancerEmail, a, "dev@example.com", "submit application"); err != nil {
		t.Fatalf("RecordTransition() error = %v", err)
	}
	if _, err := svc.RecordTransition(b.ProjectTitle, b.FreelancerEmail, b, "other@example.com", "submit application"); err != nil {
		t.Fatalf("RecordTransition() error = %v", err)
	}

	entries, err := svc.History(a.ProjectTitle, a.FreelancerEmail, 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry for first applicant, got %d", len(entries))
	}
}

func TestConcurrentRecordTransition(t *testing.T) {
	svc := New(t.TempDir())

	const writers = 12
	var wg sync.WaitGroup
	errCh := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			snap := baseSnapshot()
			snap.Version = int64(idx + 1)
			if _, err := svc.RecordTransition(snap.ProjectTitle, snap.FreelancerEmail, snap, "dev@example.com", fmt.Sprintf("transition %02d", idx)); err != nil {
				errCh <- err
			}
		}(i)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			t.Fatalf("RecordTransition() concurrent error = %v", err)
		}
	}

	entries, err := svc.History("Landing Page", "dev@example.com", 100)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(entries) != writers {
		t.Fatalf("expected %d commits, got %d", writers, len(entries))
	}
}
